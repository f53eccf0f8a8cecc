package auth

import (
	"context"

	"github.com/goliatone/go-errors"
)

// MaxLoginAttempts is the maximum number of attempts a user gets
// in a period
var MaxLoginAttempts = 5

// CoolDownPeriod is the period in which we enforce a cool down
var CoolDownPeriod = "24h"

// LoginTracker records attempted and successful logins
type LoginTracker interface {
	TrackAttemptedLogin(ctx context.Context, user *User) error
	TrackSuccessfulLogin(ctx context.Context, user *User) error
}

// IdentityResolver resolves login identifiers against the identity store.
// Lookup order is a fixed contract: email first, username second. A miss
// on both paths yields the same uniform not-found error so callers cannot
// tell which identifiers exist.
type IdentityResolver struct {
	store   IdentityStore
	tracker LoginTracker
	logger  Logger
}

var _ CredentialResolver = (*IdentityResolver)(nil)

// NewIdentityResolver will create a new IdentityResolver
func NewIdentityResolver(store IdentityStore) *IdentityResolver {
	r := &IdentityResolver{
		store:  store,
		logger: defLogger{},
	}

	if tracker, ok := store.(LoginTracker); ok {
		r.tracker = tracker
	}

	return r
}

func (r *IdentityResolver) WithLogger(l Logger) *IdentityResolver {
	if l != nil {
		r.logger = l
	}
	return r
}

// ResolveIdentity resolves an identifier to a canonical identity record.
// An identifier matching both an email record and a different username
// record resolves to the email match.
func (r *IdentityResolver) ResolveIdentity(ctx context.Context, identifier string) (Identity, error) {
	user, err := r.resolveUser(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if err := ensureAuthenticatableUser(user); err != nil {
		return nil, err
	}

	return identityFromUser(user), nil
}

// VerifyIdentity will find the user, compare the password, and return
// the identity. Lookup misses and password mismatches produce the same
// error.
func (r *IdentityResolver) VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error) {
	user, err := r.resolveUser(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, err
	}

	if err := ensureAuthenticatableUser(user); err != nil {
		return nil, err
	}

	if user.LoginAttemptAt != nil {
		expired, err := CooldownExpired(*user.LoginAttemptAt, CoolDownPeriod)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to calculate login attempt cooldown")
		}

		if expired {
			user.LoginAttempts = 0
		}
	}

	// too many attempts in the window, cool off
	if user.LoginAttempts > MaxLoginAttempts {
		return nil, ErrTooManyLoginAttempts
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if r.tracker != nil {
			if err2 := r.tracker.TrackAttemptedLogin(ctx, user); err2 != nil {
				return nil, errors.Wrap(err2, errors.CategoryInternal, "failed to track login attempt")
			}
		}

		return nil, ErrMismatchedHashAndPassword
	}

	if r.tracker != nil {
		if err := r.tracker.TrackSuccessfulLogin(ctx, user); err != nil {
			r.logger.Error("failed to track successful login", "error", err)
		}
	}

	return identityFromUser(user), nil
}

// FindIdentityByIdentifier keeps the Authenticator contract: id lookups
// for session hydration go through here
func (r *IdentityResolver) FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	user, err := r.store.FindByID(ctx, identifier)
	if err != nil {
		if !errors.IsNotFound(err) {
			return nil, err
		}

		user, err = r.resolveUser(ctx, identifier)
		if err != nil {
			return nil, err
		}
	}

	if err := ensureAuthenticatableUser(user); err != nil {
		return nil, err
	}

	return identityFromUser(user), nil
}

func (r *IdentityResolver) resolveUser(ctx context.Context, identifier string) (*User, error) {
	user, err := r.store.FindByEmail(ctx, identifier)
	if err == nil {
		return user, nil
	}
	if !errors.IsNotFound(err) {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during resolution")
	}

	user, err = r.store.FindByUsername(ctx, identifier)
	if err == nil {
		return user, nil
	}
	if !errors.IsNotFound(err) {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during resolution")
	}

	// same error for both paths, carrying the identifier server-side only
	nf := ErrIdentityNotFound.Clone().WithMetadata(map[string]any{"identifier": identifier})
	nf.Source = ErrIdentityNotFound
	return nil, nf
}

// NewIdentityFromUser builds an Identity view over a user record
func NewIdentityFromUser(user *User) Identity {
	if user == nil {
		return nil
	}
	return identityFromUser(user)
}

type authIdentity struct {
	id       string
	username string
	email    string
	role     string
	status   UserStatus
}

func identityFromUser(user *User) authIdentity {
	return authIdentity{
		id:       user.ID.String(),
		email:    user.Email,
		username: user.Username,
		role:     string(user.Role),
		status:   user.Status,
	}
}

func (a authIdentity) ID() string {
	return a.id
}

func (a authIdentity) Username() string {
	return a.username
}

func (a authIdentity) Email() string {
	return a.email
}

func (a authIdentity) Role() string {
	return a.role
}

func (a authIdentity) Status() UserStatus {
	if a.status == "" {
		return UserStatusActive
	}
	return a.status
}

var _ Identity = authIdentity{}
