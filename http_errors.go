package auth

import (
	"fmt"
	"net/http"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// ErrorResponse is the stable wire shape for every failed request.
// Constructed exactly once per failure by the FailureMapper and never
// mutated afterwards.
type ErrorResponse struct {
	Status  int      `json:"status"`
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Path    string   `json:"path"`
	Errors  []string `json:"errors,omitempty"`
}

const (
	msgAccessDenied    = "You do not have permission to access this resource"
	msgAuthFailedFix   = "Authentication failed: "
	msgValidation      = "Validation failed"
	msgUploadTooLarge  = "Upload exceeds the maximum allowed size"
	msgInternalGeneric = "An unexpected error occurred"
)

// FailureMapper is the single point translating any error raised during
// request handling into an HTTP status plus ErrorResponse. Internal-tier
// detail is logged here and never returned to the caller.
type FailureMapper struct {
	logger Logger
}

// NewFailureMapper creates a mapper with the given logger
func NewFailureMapper(logger Logger) *FailureMapper {
	if logger == nil {
		logger = defLogger{}
	}
	return &FailureMapper{logger: logger}
}

// Map converts a failure into its wire representation. Total: every
// error yields exactly one response, unknown kinds land in the 500 tier.
func (m *FailureMapper) Map(err error, path string) (int, *ErrorResponse) {
	if err == nil {
		return m.internal(nil, path)
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		return m.validationFailure(fieldErrs, path)
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return m.internal(err, path)
	}

	switch richErr.Category {
	case errors.CategoryNotFound:
		return respond(http.StatusNotFound, richErr.Message, path, nil)

	case errors.CategoryBadInput:
		if richErr.TextCode == TextCodeUploadTooLarge {
			return respond(http.StatusBadRequest, msgUploadTooLarge, path, nil)
		}
		return respond(http.StatusBadRequest, richErr.Message, path, nil)

	case errors.CategoryAuthz:
		// fixed message, internal detail stays server side
		m.logger.Debug("access denied", "error", richErr.Message, "path", path)
		return respond(http.StatusForbidden, msgAccessDenied, path, nil)

	case errors.CategoryAuth:
		return respond(http.StatusUnauthorized, msgAuthFailedFix+richErr.Message, path, nil)

	case errors.CategoryValidation:
		return respond(http.StatusBadRequest, msgValidation, path, fieldMessages(richErr))

	case errors.CategoryConflict:
		return respond(http.StatusConflict, richErr.Message, path, nil)

	default:
		return m.internal(richErr, path)
	}
}

// Respond writes the mapped failure to the wire
func (m *FailureMapper) Respond(ctx router.Context, err error) error {
	status, body := m.Map(err, ctx.OriginalURL())
	return ctx.JSON(status, body)
}

func (m *FailureMapper) validationFailure(fieldErrs validation.Errors, path string) (int, *ErrorResponse) {
	fields := make([]string, 0, len(fieldErrs))
	for field := range fieldErrs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	details := make([]string, 0, len(fields))
	for _, field := range fields {
		details = append(details, fmt.Sprintf("%s: %s", field, fieldErrs[field].Error()))
	}

	return respond(http.StatusBadRequest, msgValidation, path, details)
}

func (m *FailureMapper) internal(err error, path string) (int, *ErrorResponse) {
	var detail any = "unknown failure"
	if err != nil {
		detail = err.Error()
	}

	var richErr *errors.Error
	if errors.As(err, &richErr) {
		m.logger.Error(
			"Unhandled failure",
			"error", detail,
			"category", richErr.Category,
			"path", path,
			"details", print.MaybePrettyJSON(richErr.Metadata),
		)
	} else {
		m.logger.Error("Unhandled failure", "error", detail, "path", path)
	}

	return respond(http.StatusInternalServerError, msgInternalGeneric, path, nil)
}

func fieldMessages(richErr *errors.Error) []string {
	raw, ok := richErr.Metadata["fields"]
	if !ok {
		return nil
	}

	switch fields := raw.(type) {
	case []string:
		return fields
	case map[string]string:
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out := make([]string, 0, len(keys))
		for _, k := range keys {
			out = append(out, fmt.Sprintf("%s: %s", k, fields[k]))
		}
		return out
	default:
		return nil
	}
}

func respond(status int, message, path string, details []string) (int, *ErrorResponse) {
	return status, &ErrorResponse{
		Status:  status,
		Error:   http.StatusText(status),
		Message: message,
		Path:    path,
		Errors:  details,
	}
}
