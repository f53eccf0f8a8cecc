package oauth2

import (
	"context"

	"github.com/goliatone/go-errors"
	auth "github.com/ojtech/go-auth"
)

// Provisioner maps normalized provider profiles onto local identities.
//
// Two branches, keyed by email:
//   - an existing identity matched by email gets its display name refreshed
//     and nothing else; roles, password, and provider linkage are left as
//     stored even when the provider payload differs (first-provider-wins).
//   - an unseen email creates a new identity with the default role and the
//     email marked verified, trusting the completed provider handshake.
type Provisioner struct {
	users  auth.IdentityStore
	roles  auth.RoleCatalog
	logger auth.Logger
}

// ProvisionResult carries the resolved identity plus the raw provider
// attributes needed by the token issue step that follows.
type ProvisionResult struct {
	User      *auth.User
	Identity  auth.Identity
	Profile   *Profile
	IsNewUser bool
}

// NewProvisioner creates a provisioner over the given stores.
func NewProvisioner(users auth.IdentityStore, roles auth.RoleCatalog) *Provisioner {
	return &Provisioner{
		users:  users,
		roles:  roles,
		logger: auth.NewDefaultLogger(),
	}
}

func (p *Provisioner) WithLogger(l auth.Logger) *Provisioner {
	if l != nil {
		p.logger = l
	}
	return p
}

// Provision runs the provisioning flow for a completed provider handshake.
// Failures other than explicit authentication failures are wrapped as a
// generic authentication service failure preserving the cause.
func (p *Provisioner) Provision(ctx context.Context, providerName string, profile *Profile) (*ProvisionResult, error) {
	if profile == nil || profile.Email == "" {
		return nil, ErrEmailNotAvailable
	}

	user, err := p.users.FindByEmail(ctx, profile.Email)
	if err == nil {
		return p.refreshExisting(ctx, user, profile)
	}

	if !errors.IsNotFound(err) {
		return nil, wrapAuthServiceFailure(err)
	}

	return p.createFromProfile(ctx, providerName, profile)
}

// refreshExisting updates only the mutable display name from the provider
// payload. Provider linkage stays as stored. A suspended, disabled, or
// pending account is rejected here, before any token issue step runs.
func (p *Provisioner) refreshExisting(ctx context.Context, user *auth.User, profile *Profile) (*ProvisionResult, error) {
	if err := auth.EnsureAuthenticatable(user); err != nil {
		return nil, err
	}

	if profile.DisplayName != "" && profile.DisplayName != user.DisplayName {
		user.DisplayName = profile.DisplayName

		saved, err := p.users.Save(ctx, user)
		if err != nil {
			return nil, wrapAuthServiceFailure(err)
		}
		user = saved
	}

	return &ProvisionResult{
		User:      user,
		Identity:  auth.NewIdentityFromUser(user),
		Profile:   profile,
		IsNewUser: false,
	}, nil
}

func (p *Provisioner) createFromProfile(ctx context.Context, providerName string, profile *Profile) (*ProvisionResult, error) {
	role := auth.DefaultRole()

	// a missing default role is a deployment misconfiguration
	if _, err := p.roles.FindRoleByName(ctx, string(role)); err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrDefaultRoleMissing.Clone().WithMetadata(map[string]any{
				"role": string(role),
			})
		}
		return nil, wrapAuthServiceFailure(err)
	}

	user := &auth.User{
		Role:          role,
		DisplayName:   profile.DisplayName,
		Username:      profile.DisplayName,
		Email:         profile.Email,
		EmailVerified: true,
		Provider:      providerName,
		ProviderID:    profile.ExternalID,
		AvatarURL:     profile.ImageURL,
		Status:        auth.UserStatusActive,
	}

	created, err := p.users.Create(ctx, user)
	if err != nil {
		// a concurrent first login won the uniqueness race
		if errors.Is(err, auth.ErrDuplicateIdentity) || isConflict(err) {
			return nil, ErrProvisioningConflict.Clone().WithMetadata(map[string]any{
				"provider":    providerName,
				"external_id": profile.ExternalID,
			})
		}
		return nil, wrapAuthServiceFailure(err)
	}

	p.logger.Info(
		"provisioned identity from provider",
		"provider", providerName,
		"external_id", profile.ExternalID,
		"user_id", created.ID.String(),
	)

	return &ProvisionResult{
		User:      created,
		Identity:  auth.NewIdentityFromUser(created),
		Profile:   profile,
		IsNewUser: true,
	}, nil
}

func isConflict(err error) bool {
	var richErr *errors.Error
	return errors.As(err, &richErr) && richErr.Category == errors.CategoryConflict
}
