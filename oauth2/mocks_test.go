package oauth2

import (
	"context"
	"net/http"

	"github.com/goliatone/go-router"
)

// testWebContext is a recording router.Context for controller tests:
// request attributes are plain maps, response calls are captured.
type testWebContext struct {
	params  map[string]string
	queries map[string]string
	cookies map[string]string
	locals  map[string]any
	headers map[string]string
	origURL string
	stdCtx  context.Context

	cookiesSet   []*router.Cookie
	jsonStatus   int
	jsonBody     any
	redirectURL  string
	redirectCode int
	nextCalled   bool
}

var _ router.Context = (*testWebContext)(nil)

func newTestWebContext() *testWebContext {
	return &testWebContext{
		params:  map[string]string{},
		queries: map[string]string{},
		cookies: map[string]string{},
		locals:  map[string]any{},
		headers: map[string]string{},
		stdCtx:  context.Background(),
	}
}

func (c *testWebContext) Method() string { return http.MethodGet }
func (c *testWebContext) Path() string   { return c.origURL }

func (c *testWebContext) Param(name string, defaultValue ...string) string {
	if v, ok := c.params[name]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (c *testWebContext) ParamsInt(key string, defaultValue int) int { return defaultValue }

func (c *testWebContext) Query(name string, defaultValue string) string {
	if v, ok := c.queries[name]; ok {
		return v
	}
	return defaultValue
}

func (c *testWebContext) QueryInt(name string, defaultValue int) int { return defaultValue }
func (c *testWebContext) Queries() map[string]string                 { return c.queries }
func (c *testWebContext) Body() []byte                               { return nil }

func (c *testWebContext) Locals(key any, value ...any) any {
	name, _ := key.(string)
	if len(value) > 0 {
		c.locals[name] = value[0]
		return nil
	}
	return c.locals[name]
}

func (c *testWebContext) Render(name string, bind any, layouts ...string) error { return nil }

func (c *testWebContext) Cookie(cookie *router.Cookie) {
	c.cookiesSet = append(c.cookiesSet, cookie)
}

func (c *testWebContext) Cookies(key string, defaultValue ...string) string {
	if v, ok := c.cookies[key]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (c *testWebContext) CookieParser(out any) error { return nil }

func (c *testWebContext) Redirect(location string, status ...int) error {
	c.redirectURL = location
	c.redirectCode = http.StatusFound
	if len(status) > 0 {
		c.redirectCode = status[0]
	}
	return nil
}

func (c *testWebContext) RedirectToRoute(routeName string, params router.ViewContext, status ...int) error {
	return nil
}

func (c *testWebContext) RedirectBack(fallback string, status ...int) error {
	return c.Redirect(fallback, status...)
}

func (c *testWebContext) Header(key string) string { return c.headers[key] }
func (c *testWebContext) Referer() string          { return "" }
func (c *testWebContext) OriginalURL() string      { return c.origURL }

func (c *testWebContext) Status(code int) router.Context { return c }
func (c *testWebContext) Send(body []byte) error         { return nil }
func (c *testWebContext) SendString(body string) error   { return nil }

func (c *testWebContext) JSON(code int, v any) error {
	c.jsonStatus = code
	c.jsonBody = v
	return nil
}

func (c *testWebContext) NoContent(code int) error { return nil }

func (c *testWebContext) SetHeader(k, v string) router.Context {
	c.headers[k] = v
	return c
}

func (c *testWebContext) Set(key string, value any)               { c.locals[key] = value }
func (c *testWebContext) Get(key string, def any) any             { return def }
func (c *testWebContext) GetString(key string, def string) string { return def }
func (c *testWebContext) GetInt(key string, def int) int          { return def }
func (c *testWebContext) GetBool(key string, def bool) bool       { return def }

func (c *testWebContext) Bind(v any) error               { return nil }
func (c *testWebContext) Context() context.Context       { return c.stdCtx }
func (c *testWebContext) SetContext(ctx context.Context) { c.stdCtx = ctx }

func (c *testWebContext) Next() error {
	c.nextCalled = true
	return nil
}
