package auth

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated identity
type Identity interface {
	ID() string
	Username() string
	Email() string
	Role() string
}

// Authenticator holds methods to deal with password authentication
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (string, error)
	SessionFromToken(token string) (Session, error)
	IdentityFromSession(ctx context.Context, session Session) (Identity, error)
}

// IdentityStore abstracts durable lookup and persistence of user records.
// FindByEmail matches case-insensitively; both finders return
// ErrIdentityNotFound (or an error satisfying errors.IsNotFound) when no
// record exists.
type IdentityStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Save(ctx context.Context, user *User) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
}

// RoleCatalog resolves role records from the closed role set
type RoleCatalog interface {
	FindRoleByName(ctx context.Context, name string) (*Role, error)
}

// CredentialResolver resolves a login identifier to a canonical identity
type CredentialResolver interface {
	ResolveIdentity(ctx context.Context, identifier string) (Identity, error)
	VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error)
}

// TokenIssuer is the consuming contract for token generation
type TokenIssuer interface {
	Generate(identity Identity) (string, error)
}

// TokenValidator validates raw bearer tokens into structured claims
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenService issues and validates tokens
type TokenService interface {
	TokenIssuer
	TokenValidator
	SignClaims(claims *JWTClaims) (string, error)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() int
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// NewDefaultLogger returns the stdout logger used when none is provided
func NewDefaultLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
