package auth

import (
	stderrors "errors"
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeIdentityNotFound = "IDENTITY_NOT_FOUND"
	TextCodeRoleNotFound     = "ROLE_NOT_FOUND"
	TextCodeBadCredentials   = "BAD_CREDENTIALS"
	TextCodeTokenExpired     = "TOKEN_EXPIRED"
	TextCodeTokenMalformed   = "TOKEN_MALFORMED"
	TextCodeTooManyAttempts  = "TOO_MANY_LOGIN_ATTEMPTS"
	TextCodeAccessDenied     = "ACCESS_DENIED"
	TextCodeUploadTooLarge   = "UPLOAD_TOO_LARGE"
	TextCodeIdentityConflict = "IDENTITY_CONFLICT"
	TextCodeUserSuspended    = "USER_SUSPENDED"
	TextCodeUserDisabled     = "USER_DISABLED"
	TextCodeUserPending      = "USER_PENDING"
)

// ErrIdentityNotFound is returned when no identity matches a lookup. The
// message is deliberately uniform: it never reveals whether the email or
// the username path was tried.
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode(TextCodeIdentityNotFound)

// ErrRoleNotFound is returned when a role name is absent from the catalog
var ErrRoleNotFound = errors.New("role not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound).
	WithTextCode(TextCodeRoleNotFound)

// ErrMismatchedHashAndPassword is the uniform bad-credentials error
var ErrMismatchedHashAndPassword = errors.New("invalid credentials", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeBadCredentials)

// ErrTooManyLoginAttempts is returned when the cooldown window is active
var ErrTooManyLoginAttempts = errors.New("too many login attempts", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTooManyAttempts)

// ErrTokenExpired is returned for expired bearer tokens
var ErrTokenExpired = errors.New("authentication token expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed is returned for tokens that fail to parse or verify
var ErrTokenMalformed = errors.New("invalid authentication token", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenMalformed)

// ErrAccessDenied is the only error surfaced for authorization failures.
// The fixed message keeps internal detail out of responses.
var ErrAccessDenied = errors.New("access denied", errors.CategoryAuthz).
	WithCode(errors.CodeForbidden).
	WithTextCode(TextCodeAccessDenied)

// ErrUploadTooLarge is raised when a request body exceeds the upload limit
var ErrUploadTooLarge = errors.New("upload exceeds the maximum allowed size", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest).
	WithTextCode(TextCodeUploadTooLarge)

// ErrDuplicateIdentity is the retryable conflict a losing writer receives
// when two flows race to create the same identity
var ErrDuplicateIdentity = errors.New("identity already exists", errors.CategoryConflict).
	WithCode(errors.CodeConflict).
	WithTextCode(TextCodeIdentityConflict)

// ErrUserSuspended blocks authentication for suspended accounts
var ErrUserSuspended = errors.New("account is suspended", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeUserSuspended)

// ErrUserDisabled blocks authentication for disabled accounts
var ErrUserDisabled = errors.New("account is disabled", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeUserDisabled)

// ErrUserPending blocks authentication until the account is activated
var ErrUserPending = errors.New("account is pending activation", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeUserPending)

// ErrNoEmptyString guards hashing empty passwords
var ErrNoEmptyString = stderrors.New("empty string not allowed")

// ErrUnableToFindSession is the error when our request has no token
var ErrUnableToFindSession = stderrors.New("unable to find session")

// ErrUnableToDecodeSession unable to decode JWT claims
var ErrUnableToDecodeSession = stderrors.New("unable to decode session")

// ErrUnableToParseData parse error
var ErrUnableToParseData = stderrors.New("unable to parse data")

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
