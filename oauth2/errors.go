package oauth2

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeUnsupportedProvider = "oauth_unsupported_provider"
	TextCodeInvalidState        = "oauth_invalid_state"
	TextCodeStateExpired        = "oauth_state_expired"
	TextCodeTokenExchangeFail   = "oauth_token_exchange_failed"
	TextCodeProfileFail         = "oauth_profile_failed"
	TextCodeEmailNotAvailable   = "oauth_email_not_available"
	TextCodeDefaultRoleMissing  = "oauth_default_role_missing"
	TextCodeProvisionConflict   = "oauth_provisioning_conflict"
)

// ErrUnsupportedProvider is returned when a requested provider has no
// registered adapter.
var ErrUnsupportedProvider = goerrors.New("login with this provider is not supported", goerrors.CategoryAuth).
	WithTextCode(TextCodeUnsupportedProvider).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidState is returned when the OAuth state is invalid or tampered.
var ErrInvalidState = goerrors.New("invalid oauth state", goerrors.CategoryBadInput).
	WithTextCode(TextCodeInvalidState).
	WithCode(goerrors.CodeBadRequest)

// ErrStateExpired is returned when the OAuth state has expired.
var ErrStateExpired = goerrors.New("oauth state expired", goerrors.CategoryBadInput).
	WithTextCode(TextCodeStateExpired).
	WithCode(goerrors.CodeBadRequest)

// ErrTokenExchangeFailed is returned when a provider token exchange fails.
var ErrTokenExchangeFailed = goerrors.New("token exchange failed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExchangeFail).
	WithCode(goerrors.CodeUnauthorized)

// ErrProfileFailed is returned when fetching the provider profile fails.
var ErrProfileFailed = goerrors.New("failed to fetch provider profile", goerrors.CategoryAuth).
	WithTextCode(TextCodeProfileFail).
	WithCode(goerrors.CodeUnauthorized)

// ErrEmailNotAvailable is returned when the normalized provider profile
// carries no email address.
var ErrEmailNotAvailable = goerrors.New("email not available from provider", goerrors.CategoryAuth).
	WithTextCode(TextCodeEmailNotAvailable).
	WithCode(goerrors.CodeUnauthorized)

// ErrDefaultRoleMissing is returned when the default provisioning role is
// absent from the role catalog. This is a deployment misconfiguration, not
// a user-facing failure.
var ErrDefaultRoleMissing = goerrors.New("default role is missing from the role catalog", goerrors.CategoryInternal).
	WithTextCode(TextCodeDefaultRoleMissing).
	WithCode(goerrors.CodeInternal)

// ErrProvisioningConflict is returned when a concurrent first login won the
// uniqueness race. Callers may retry the flow.
var ErrProvisioningConflict = goerrors.New("identity was provisioned concurrently, retry", goerrors.CategoryConflict).
	WithTextCode(TextCodeProvisionConflict).
	WithCode(goerrors.CodeConflict)

// ProviderError captures normalized provider response details.
type ProviderError struct {
	Provider    string
	Operation   string
	Status      int
	Code        string
	Description string
	Err         error
	Raw         map[string]any
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "provider error"
	}

	scope := "provider"
	if e.Provider != "" && e.Operation != "" {
		scope = fmt.Sprintf("%s %s", e.Provider, e.Operation)
	} else if e.Provider != "" {
		scope = e.Provider
	} else if e.Operation != "" {
		scope = e.Operation
	}

	if e.Description != "" {
		return fmt.Sprintf("%s failed: %s", scope, e.Description)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s failed: %s", scope, e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", scope, e.Err)
	}

	return fmt.Sprintf("%s failed", scope)
}

func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *ProviderError) Metadata() map[string]any {
	if e == nil {
		return nil
	}

	meta := map[string]any{}
	if e.Provider != "" {
		meta["provider"] = e.Provider
	}
	if e.Operation != "" {
		meta["operation"] = e.Operation
	}
	if e.Status != 0 {
		meta["status"] = e.Status
	}
	if e.Code != "" {
		meta["code"] = e.Code
	}
	if e.Description != "" {
		meta["description"] = e.Description
	}
	if len(e.Raw) > 0 {
		meta["raw"] = e.Raw
	}

	return meta
}

func wrapProviderError(base *goerrors.Error, provider, operation string, err error) error {
	if base == nil {
		return err
	}

	meta := map[string]any{}
	if provider != "" {
		meta["provider"] = provider
	}
	if operation != "" {
		meta["operation"] = operation
	}

	var perr *ProviderError
	if errors.As(err, &perr) && perr != nil {
		for k, v := range perr.Metadata() {
			meta[k] = v
		}
	} else if err != nil {
		meta["error"] = err.Error()
	}

	clone := base.Clone()
	if clone == nil {
		clone = base
	}
	if err != nil {
		clone.Source = err
	}
	if len(meta) > 0 {
		clone.WithMetadata(meta)
	}

	return clone
}

// wrapAuthServiceFailure re-raises unexpected provisioning failures as a
// generic authentication service failure, preserving the cause. Explicit
// authentication failures pass through untouched.
func wrapAuthServiceFailure(err error) error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Category == goerrors.CategoryAuth {
		return err
	}

	return goerrors.Wrap(err, goerrors.CategoryAuth, "authentication service failure").
		WithCode(goerrors.CodeUnauthorized)
}
