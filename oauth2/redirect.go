package oauth2

import (
	"net/url"
	"strings"
)

// ResolveRedirectTarget validates a client supplied redirect URI and
// returns it when acceptable, otherwise the configured fallback.
//
// Validation is deliberately scheme-only: the URI must parse and carry an
// http or https scheme. Host allow-listing is left to the deployment in
// front of this library; tightening the check here changes observable
// behavior for existing consumers.
func ResolveRedirectTarget(requested, fallback string) string {
	if requested == "" {
		return fallback
	}

	parsed, err := url.Parse(requested)
	if err != nil {
		return fallback
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return requested
	default:
		return fallback
	}
}

// AppendTokenParam appends the issued token as the `token` query parameter.
func AppendTokenParam(rawURL, token string) string {
	return appendQueryParam(rawURL, "token", token)
}

func appendQueryParam(rawURL, key, value string) string {
	if rawURL == "" {
		return ""
	}

	parsed, err := url.Parse(rawURL)
	if err == nil {
		query := parsed.Query()
		query.Set(key, value)
		parsed.RawQuery = query.Encode()
		return parsed.String()
	}

	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + url.QueryEscape(key) + "=" + url.QueryEscape(value)
}
