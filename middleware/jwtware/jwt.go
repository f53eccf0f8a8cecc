// Package jwtware guards routes with bearer-token authentication and the
// platform's role ladder. Platform-issued tokens are checked through a
// TokenValidator; externally issued tokens can be verified against JWK
// Sets instead.
package jwtware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-router"
)

var (
	defaultTokenLookup       = "header:" + router.HeaderAuthorization
	ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")
	ErrInsufficientRole      = errors.New("insufficient role")
)

// TokenValidator validates a raw token and returns structured claims.
// Declared here rather than imported so the middleware has no dependency
// on the root package.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// AuthClaims is the claim surface the guard needs: identity attributes
// plus the two role predicates.
type AuthClaims interface {
	Subject() string
	UserID() string
	Username() string
	Email() string
	Role() string
	HasRole(role string) bool
	IsAtLeast(minRole string) bool
}

type Config struct {
	// Filter skips the guard entirely when it returns true
	Filter         func(router.Context) bool
	SuccessHandler router.HandlerFunc
	ErrorHandler   router.ErrorHandler

	SigningKey  SigningKey
	SigningKeys map[string]SigningKey
	KeyFunc     jwt.Keyfunc
	JWKSetURLs  []string

	ContextKey  string
	TokenLookup string
	AuthScheme  string

	// TokenValidator checks platform-issued tokens. When nil, a JWKS
	// validator is built from the configured key material.
	TokenValidator TokenValidator

	// RoleChecker overrides the built-in role predicates
	RoleChecker func(AuthClaims, string) bool
	// RequiredRole demands an exact role match
	RequiredRole string
	// MinimumRole demands at least this rung of the role ladder
	MinimumRole string

	// ContextEnricher propagates validated claims into the standard
	// context after a successful check
	ContextEnricher func(c context.Context, claims AuthClaims) context.Context
}

type SigningKey struct {
	JWTAlg string
	Key    any
}

// New builds the guard middleware. Configuration problems are programmer
// errors and panic at construction time, not per request.
func New(config ...Config) router.MiddlewareFunc {
	cfg := applyDefaults(config...)
	extractors := buildExtractors(cfg.TokenLookup, cfg.AuthScheme)

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			raw, err := extractToken(ctx, extractors)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			claims, err := cfg.TokenValidator.Validate(raw)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			if err := authorize(claims, cfg); err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			ctx.Locals(cfg.ContextKey, claims)

			if cfg.ContextEnricher != nil {
				ctx.SetContext(cfg.ContextEnricher(ctx.Context(), claims))
			}

			return cfg.SuccessHandler(ctx)
		}
	}
}

// authorize runs the configured role checks against the claims
func authorize(claims AuthClaims, cfg Config) error {
	if cfg.RequiredRole != "" && !claims.HasRole(cfg.RequiredRole) {
		return fmt.Errorf("%w: required role %q not found", ErrInsufficientRole, cfg.RequiredRole)
	}

	if cfg.MinimumRole != "" && !claims.IsAtLeast(cfg.MinimumRole) {
		return fmt.Errorf("%w: minimum role %q required", ErrInsufficientRole, cfg.MinimumRole)
	}

	if cfg.RoleChecker != nil {
		role := cfg.RequiredRole
		if role == "" {
			role = cfg.MinimumRole
		}
		if role != "" && !cfg.RoleChecker(claims, role) {
			return fmt.Errorf("%w: custom role check failed for role %q", ErrInsufficientRole, role)
		}
	}

	return nil
}

func applyDefaults(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}
	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}
	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.SigningKey.Key == nil && len(cfg.SigningKeys) == 0 && len(cfg.JWKSetURLs) == 0 && cfg.KeyFunc == nil {
		panic("AUTH: JWT middleware configuration: At least one of the following is required: KeyFunc, JWKSetURLs, SigningKeys, or SigningKey.")
	}

	if cfg.KeyFunc == nil {
		cfg.KeyFunc = buildKeyFunc(cfg)
	}

	if cfg.TokenValidator == nil {
		cfg.TokenValidator = &keyfuncValidator{keyFunc: cfg.KeyFunc}
	}

	return cfg
}

func buildKeyFunc(cfg Config) jwt.Keyfunc {
	if len(cfg.SigningKeys) == 0 && len(cfg.JWKSetURLs) == 0 {
		return staticKeyFunc(cfg.SigningKey)
	}

	var givenKeys map[string]keyfunc.GivenKey
	if cfg.SigningKeys != nil {
		givenKeys = make(map[string]keyfunc.GivenKey, len(cfg.SigningKeys))
		for kid, key := range cfg.SigningKeys {
			givenKeys[kid] = keyfunc.NewGivenCustom(key.Key, keyfunc.GivenKeyOptions{
				Algorithm: key.JWTAlg,
			})
		}
	}

	if len(cfg.JWKSetURLs) == 0 {
		return keyfunc.NewGiven(givenKeys).Keyfunc
	}

	kf, err := remoteKeyFunc(givenKeys, cfg.JWKSetURLs)
	if err != nil {
		panic("Failed to create keyfunc from JWK Set URL: " + err.Error())
	}
	return kf
}

// defaultErrorHandler answers 403 for failed role checks and 401 for
// everything else, matching the wire shape of the central failure mapper
func defaultErrorHandler(c router.Context, err error) error {
	if errors.Is(err, ErrInsufficientRole) {
		return c.JSON(router.StatusForbidden, map[string]any{
			"status":  router.StatusForbidden,
			"error":   "Forbidden",
			"message": "You do not have permission to access this resource",
			"path":    c.OriginalURL(),
		})
	}

	return c.JSON(router.StatusUnauthorized, map[string]any{
		"status":  router.StatusUnauthorized,
		"error":   "Unauthorized",
		"message": "Authentication failed: " + err.Error(),
		"path":    c.OriginalURL(),
	})
}

func remoteKeyFunc(givenKeys map[string]keyfunc.GivenKey, urls []string) (jwt.Keyfunc, error) {
	opts := keyfunc.Options{
		GivenKeys: givenKeys,
		RefreshErrorHandler: func(err error) {
			log.Printf("failed to do a background refresh of JWT set: %s", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}

	m := make(map[string]keyfunc.Options, len(urls))
	for _, url := range urls {
		m[url] = opts
	}

	multi, err := keyfunc.GetMultiple(m, keyfunc.MultipleOptions{
		KeySelector: keyfunc.KeySelectorFirst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get JWT URLs: %w", err)
	}

	return multi.Keyfunc, nil
}

func staticKeyFunc(key SigningKey) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		if key.JWTAlg != "" {
			alg, ok := token.Header["alg"].(string)
			if !ok {
				return nil, fmt.Errorf("unexpected JWT signing method: expected %q got: missing json type", key.JWTAlg)
			}
			if alg != key.JWTAlg {
				return nil, fmt.Errorf("unexpected jwt signing method: expected: %q: got: %q", key.JWTAlg, alg)
			}
		}
		return key.Key, nil
	}
}

// keyfuncValidator verifies externally issued tokens against the
// configured key material and adapts their registered claims.
type keyfuncValidator struct {
	keyFunc jwt.Keyfunc
}

func (v *keyfuncValidator) Validate(tokenString string) (AuthClaims, error) {
	token, err := jwt.Parse(tokenString, v.keyFunc)
	if err != nil {
		return nil, err
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrJWTMissingOrMalformed
	}

	return externalClaims(mapClaims), nil
}

// externalClaims reads identity attributes out of bare registered claims.
// Tokens minted outside the platform carry no role, so they sit on the
// lowest rung of the ladder.
type externalClaims jwt.MapClaims

func (c externalClaims) stringClaim(name string) string {
	if v, ok := c[name].(string); ok {
		return v
	}
	return ""
}

func (c externalClaims) Subject() string  { return c.stringClaim("sub") }
func (c externalClaims) UserID() string   { return c.stringClaim("sub") }
func (c externalClaims) Username() string { return c.stringClaim("preferred_username") }
func (c externalClaims) Email() string    { return c.stringClaim("email") }

func (c externalClaims) Role() string {
	if role := c.stringClaim("role"); role != "" {
		return role
	}
	return "student"
}

func (c externalClaims) HasRole(role string) bool {
	return c.Role() == role
}

func (c externalClaims) IsAtLeast(minRole string) bool {
	mine, ok := roleRank[c.Role()]
	if !ok {
		return false
	}
	min, ok := roleRank[minRole]
	return ok && mine >= min
}

var roleRank = map[string]int{
	"student":  0,
	"employer": 1,
	"admin":    2,
}

type tokenExtractor func(c router.Context) (string, error)

// buildExtractors parses a lookup spec like
// "header:Authorization,cookie:jwt,query:auth_token,param:token"
// into the ordered extractor chain.
func buildExtractors(tokenLookup, authScheme string) []tokenExtractor {
	var extractors []tokenExtractor

	for _, part := range strings.Split(tokenLookup, ",") {
		source, name, found := strings.Cut(strings.TrimSpace(part), ":")
		if !found {
			continue
		}
		name = strings.TrimSpace(name)

		switch strings.TrimSpace(source) {
		case "header":
			extractors = append(extractors, fromHeader(name, authScheme))
		case "query":
			extractors = append(extractors, fromQuery(name))
		case "param":
			extractors = append(extractors, fromParam(name))
		case "cookie":
			extractors = append(extractors, fromCookie(name))
		}
	}

	return extractors
}

// extractToken tries each extractor in order, keeping the first hit
func extractToken(ctx router.Context, extractors []tokenExtractor) (string, error) {
	var raw string
	var err error

	for _, extract := range extractors {
		raw, err = extract(ctx)
		if raw != "" && err == nil {
			break
		}
	}

	if raw == "" && err == nil {
		err = ErrJWTMissingOrMalformed
	}
	return raw, err
}

func fromHeader(header, authScheme string) tokenExtractor {
	scheme := strings.TrimSpace(authScheme)
	return func(c router.Context) (string, error) {
		value := c.Header(header)
		if scheme == "" {
			if value == "" {
				return "", ErrJWTMissingOrMalformed
			}
			return strings.TrimSpace(value), nil
		}

		l := len(scheme)
		if len(value) > l+1 && strings.EqualFold(value[:l], scheme) {
			return strings.TrimSpace(value[l:]), nil
		}
		return "", ErrJWTMissingOrMalformed
	}
}

func fromQuery(param string) tokenExtractor {
	return func(c router.Context) (string, error) {
		token := c.Query(param, "")
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

func fromParam(param string) tokenExtractor {
	return func(c router.Context) (string, error) {
		token := c.Param(param)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

func fromCookie(name string) tokenExtractor {
	return func(c router.Context) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}
