package auth

import (
	"context"
	"reflect"
)

// Auther resolves credentials and issues tokens for authenticated identities
type Auther struct {
	resolver       CredentialResolver
	tokenService   TokenService
	tokenValidator TokenValidator
	logger         Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(resolver CredentialResolver, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		resolver:     resolver,
		tokenService: tokenService,
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenValidator sets a custom token validator for externally issued tokens.
func (s *Auther) WithTokenValidator(validator TokenValidator) *Auther {
	s.tokenValidator = validator
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the identifier/password pair and returns a signed token
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, error) {
	identity, err := s.resolver.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		return "", err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		return "", ErrIdentityNotFound
	}

	return s.tokenService.Generate(identity)
}

// SessionFromToken validates a raw token and projects it into a session
func (s *Auther) SessionFromToken(raw string) (Session, error) {
	validator := s.tokenValidator
	if validator == nil {
		validator = s.tokenService
	}

	claims, err := validator.Validate(raw)
	if err != nil {
		s.logger.Error("SessionFromToken validation failed", "error", err)
		return nil, err
	}

	session, err := sessionFromAuthClaims(claims)
	if err != nil {
		s.logger.Error("SessionFromToken failed to create session from claims", "error", err)
		return nil, err
	}

	return session, nil
}

// IdentityFromSession re-hydrates the identity behind a validated session.
// The session subject is the user id, so id-capable resolvers are
// preferred over the email/username contract.
func (s *Auther) IdentityFromSession(ctx context.Context, session Session) (Identity, error) {
	if finder, ok := s.resolver.(interface {
		FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error)
	}); ok {
		return finder.FindIdentityByIdentifier(ctx, session.GetUserID())
	}

	identity, err := s.resolver.ResolveIdentity(ctx, session.GetUserID())
	if err != nil {
		s.logger.Error("IdentityFromSession resolve error", "error", err)
		return nil, err
	}

	return identity, nil
}
