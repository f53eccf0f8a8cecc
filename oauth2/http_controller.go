package oauth2

import (
	"net/http"
	"time"

	"github.com/goliatone/go-router"
	auth "github.com/ojtech/go-auth"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPController handles the OAuth2 HTTP routes.
type HTTPController struct {
	flow   *Flow
	config HTTPConfig
	logger auth.Logger
}

// HTTPConfig configures the HTTP controller.
type HTTPConfig struct {
	// StateCookieName holds the one-time state for the CSRF double check
	// (default: "oauth_state")
	StateCookieName string

	// CookieSecure sets the Secure flag on the state cookie
	CookieSecure bool

	// ErrorRedirect is the redirect target for auth errors
	ErrorRedirect string

	// ErrorHandler handles errors (optional)
	ErrorHandler func(ctx router.Context, err error) error

	// Logger is optional
	Logger auth.Logger
}

// NewHTTPController creates a new OAuth2 HTTP controller.
func NewHTTPController(flow *Flow, cfg HTTPConfig) *HTTPController {
	if cfg.StateCookieName == "" {
		cfg.StateCookieName = "oauth_state"
	}
	if cfg.ErrorRedirect == "" {
		cfg.ErrorRedirect = "/login?error=auth_failed"
	}

	logger := cfg.Logger
	if logger == nil {
		logger = auth.NewDefaultLogger()
	}

	return &HTTPController{
		flow:   flow,
		config: cfg,
		logger: logger,
	}
}

// RegisterRoutes registers the OAuth2 routes.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar) {
	group.Get("/providers", c.ListProviders)
	group.Get("/:provider/callback", c.Callback)
	group.Get("/:provider", c.BeginAuth)
}

// ListProviders returns the registered provider names.
func (c *HTTPController) ListProviders(ctx router.Context) error {
	return ctx.JSON(router.StatusOK, map[string]any{
		"providers": c.flow.Providers(),
	})
}

// BeginAuth starts the OAuth flow and redirects to the provider.
func (c *HTTPController) BeginAuth(ctx router.Context) error {
	providerName := ctx.Param("provider")
	redirectURI := ctx.Query("redirect_uri", "")

	redirect, err := c.flow.BeginAuth(ctx.Context(), providerName, redirectURI)
	if err != nil {
		return c.handleError(ctx, err)
	}

	c.setStateCookie(ctx, redirect.State)

	return ctx.Redirect(redirect.URL, http.StatusTemporaryRedirect)
}

// Callback handles the provider callback. The one-time state cookie is
// cleared on every exit path.
func (c *HTTPController) Callback(ctx router.Context) error {
	providerName := ctx.Param("provider")
	code := ctx.Query("code", "")
	state := ctx.Query("state", "")
	cookieState := ctx.Cookies(c.config.StateCookieName)

	defer c.clearStateCookie(ctx)

	if errCode := ctx.Query("error", ""); errCode != "" {
		errDesc := ctx.Query("error_description", "")
		redirectURL := appendQueryParam(c.config.ErrorRedirect, "oauth_error", errCode)
		if errDesc != "" {
			redirectURL = appendQueryParam(redirectURL, "desc", errDesc)
		}
		return ctx.Redirect(redirectURL, http.StatusTemporaryRedirect)
	}

	if code == "" || state == "" {
		redirectURL := appendQueryParam(c.config.ErrorRedirect, "error", "missing_params")
		return ctx.Redirect(redirectURL, http.StatusTemporaryRedirect)
	}

	if cookieState == "" || cookieState != state {
		return c.handleError(ctx, ErrInvalidState.Clone().WithMetadata(map[string]any{
			"reason": "state cookie mismatch",
		}))
	}

	result, err := c.flow.CompleteAuth(ctx.Context(), providerName, code, state)
	if err != nil {
		return c.handleError(ctx, err)
	}

	return ctx.Redirect(result.RedirectURI, http.StatusTemporaryRedirect)
}

func (c *HTTPController) setStateCookie(ctx router.Context, state string) {
	ctx.Cookie(&router.Cookie{
		Name:     c.config.StateCookieName,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
		Secure:   c.config.CookieSecure,
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

func (c *HTTPController) clearStateCookie(ctx router.Context) {
	ctx.Cookie(&router.Cookie{
		Name:     c.config.StateCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		Secure:   c.config.CookieSecure,
		HTTPOnly: true,
		SameSite: "Lax",
	})
}

func (c *HTTPController) handleError(ctx router.Context, err error) error {
	c.logger.Error("oauth flow failed", "error", err, "path", ctx.OriginalURL())

	if c.config.ErrorHandler != nil {
		return c.config.ErrorHandler(ctx, err)
	}

	redirectURL := appendQueryParam(c.config.ErrorRedirect, "error", err.Error())
	return ctx.Redirect(redirectURL, http.StatusTemporaryRedirect)
}
