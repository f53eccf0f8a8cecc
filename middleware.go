package auth

import (
	"context"
	"runtime/debug"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/ojtech/go-auth/middleware/jwtware"
)

// ValidatorAdapter bridges a TokenValidator into the jwtware contract
type ValidatorAdapter struct {
	Validator TokenValidator
}

func (a ValidatorAdapter) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := a.Validator.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// ContextEnricherAdapter adapts jwtware.AuthClaims to auth.AuthClaims and stores
// claims + principal in the standard context for downstream guard usage.
func ContextEnricherAdapter(c context.Context, claims jwtware.AuthClaims) context.Context {
	authClaims, ok := claims.(AuthClaims)
	if !ok {
		return c
	}
	return EnrichContext(c, authClaims)
}

// ProtectedRoute builds the JWT guard for routes that require authentication
func ProtectedRoute(cfg Config, validator TokenValidator, errorHandler router.ErrorHandler) router.MiddlewareFunc {
	return jwtware.New(jwtware.Config{
		ErrorHandler: errorHandler,
		SigningKey: jwtware.SigningKey{
			Key:    []byte(cfg.GetSigningKey()),
			JWTAlg: cfg.GetSigningMethod(),
		},
		AuthScheme:      cfg.GetAuthScheme(),
		ContextKey:      cfg.GetContextKey(),
		TokenLookup:     cfg.GetTokenLookup(),
		TokenValidator:  ValidatorAdapter{Validator: validator},
		ContextEnricher: ContextEnricherAdapter,
	})
}

// ProtectedRouteWithMinimumRole is ProtectedRoute plus a role hierarchy floor
func ProtectedRouteWithMinimumRole(cfg Config, validator TokenValidator, minRole UserRole, errorHandler router.ErrorHandler) router.MiddlewareFunc {
	return jwtware.New(jwtware.Config{
		ErrorHandler: errorHandler,
		SigningKey: jwtware.SigningKey{
			Key:    []byte(cfg.GetSigningKey()),
			JWTAlg: cfg.GetSigningMethod(),
		},
		AuthScheme:      cfg.GetAuthScheme(),
		ContextKey:      cfg.GetContextKey(),
		TokenLookup:     cfg.GetTokenLookup(),
		TokenValidator:  ValidatorAdapter{Validator: validator},
		ContextEnricher: ContextEnricherAdapter,
		MinimumRole:     string(minRole),
	})
}

// RecoverMiddleware converts handler panics into the generic server failure
// response. The panic value and stack are logged server side only.
func RecoverMiddleware(mapper *FailureMapper, logger Logger) router.MiddlewareFunc {
	if logger == nil {
		logger = defLogger{}
	}
	if mapper == nil {
		mapper = NewFailureMapper(logger)
	}

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			defer func() {
				if r := recover(); r != nil {
					logger.Error(
						"recovered handler panic",
						"panic", r,
						"path", ctx.OriginalURL(),
						"stack", string(debug.Stack()),
					)

					err := errors.New("recovered from panic", errors.CategoryInternal).
						WithCode(errors.CodeInternal)

					_ = mapper.Respond(ctx, err)
				}
			}()

			return ctx.Next()
		}
	}
}
