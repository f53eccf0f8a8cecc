package auth

import (
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole string

const (
	// RoleStudent is the lowest-privilege role, assigned to every
	// self-registered or provider-provisioned account
	RoleStudent UserRole = "student"
	// RoleEmployer is the employer/NLO role (posts jobs, reviews applications)
	RoleEmployer UserRole = "employer"
	// RoleAdmin is the platform administrator role
	RoleAdmin UserRole = "admin"
)

// UserStatus is the account lifecycle status
type UserStatus string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusDisabled  UserStatus = "disabled"
)

// User is the durable identity record. A fully local account carries a
// password hash; a provider-linked account carries Provider + ProviderID
// and may lack one. Never both absent.
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role           UserRole       `bun:"user_role,notnull" json:"user_role,omitempty"`
	DisplayName    string         `bun:"display_name" json:"display_name,omitempty"`
	Username       string         `bun:"username,notnull,unique" json:"username,omitempty"`
	Email          string         `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash   string         `bun:"password_hash" json:"-"`
	EmailVerified  bool           `bun:"is_email_verified" json:"is_email_verified,omitempty"`
	Provider       string         `bun:"provider" json:"provider,omitempty"`
	ProviderID     string         `bun:"provider_id" json:"provider_id,omitempty"`
	AvatarURL      string         `bun:"avatar_url" json:"avatar_url,omitempty"`
	Status         UserStatus     `bun:"status" json:"status,omitempty"`
	LoginAttempts  int            `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt *time.Time     `bun:"login_attempt_at" json:"login_attempt_at,omitempty"`
	LoggedInAt     *time.Time     `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	Metadata       map[string]any `bun:"metadata" json:"metadata,omitempty"`
	CreatedAt      *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// IsProviderLinked reports whether the account was provisioned from an
// external identity provider
func (u *User) IsProviderLinked() bool {
	return u.Provider != "" && u.ProviderID != ""
}

// HasCredential reports whether the account can authenticate at all
func (u *User) HasCredential() bool {
	return u.PasswordHash != "" || u.IsProviderLinked()
}

// EnsureStatus defaults the lifecycle status for legacy rows
func (u *User) EnsureStatus() {
	if u.Status == "" {
		u.Status = UserStatusActive
	}
}

// AddMetadata will append information to a metadata attribute
func (u *User) AddMetadata(key string, val any) *User {
	if u.Metadata == nil {
		u.Metadata = make(map[string]any)
	}
	u.Metadata[key] = val
	return u
}

// Role is a catalog entry from the closed role set. Assignment references
// the catalog so a deployment missing a role is detectable at provisioning
// time instead of at authorization time.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:rol"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          UserRole   `bun:"name,notnull,unique" json:"name,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

func statusAuthError(status UserStatus) error {
	switch status {
	case UserStatusSuspended:
		return ErrUserSuspended
	case UserStatusDisabled:
		return ErrUserDisabled
	case UserStatusPending:
		return ErrUserPending
	default:
		return nil
	}
}

// EnsureAuthenticatable verifies an account can sign in at all: it must
// exist, be in an authenticatable lifecycle status, and hold at least one
// usable credential. Both the password and the provider login paths gate
// on it so a suspended account cannot sneak in through a provider.
func EnsureAuthenticatable(user *User) error {
	return ensureAuthenticatableUser(user)
}

func ensureAuthenticatableUser(user *User) error {
	if user == nil {
		return ErrIdentityNotFound
	}

	user.EnsureStatus()
	if err := statusAuthError(user.Status); err != nil {
		return err
	}

	if !user.HasCredential() {
		return errors.New("account has no usable credential", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode("NO_CREDENTIAL").
			WithMetadata(map[string]any{"user_id": user.ID.String()})
	}

	return nil
}
