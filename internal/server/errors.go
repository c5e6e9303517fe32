package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/hr-pulse/internal/prediction"
	"github.com/jonathan/hr-pulse/internal/storage"
	"go.uber.org/zap"
)

// ErrMalformedBody is a request body that is not parseable JSON or multipart.
type ErrMalformedBody struct {
	Cause error
}

func (e *ErrMalformedBody) Error() string {
	return fmt.Sprintf("malformed request body: %v", e.Cause)
}

func (e *ErrMalformedBody) Unwrap() error {
	return e.Cause
}

// ErrValidation represents a validation error
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrUpstream is a failure of a backing service such as the database.
type ErrUpstream struct {
	Service string
	Cause   error
}

func (e *ErrUpstream) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Cause)
}

func (e *ErrUpstream) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		malformed   *ErrMalformedBody
		validation  *ErrValidation
		predValid   *prediction.ValidationError
		unavailable *prediction.ModelUnavailableError
		inference   *prediction.InferenceError
		upstream    *ErrUpstream
		tooLarge    *storage.TooLargeError
		maxBytes    *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooLarge), errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &malformed):
		return http.StatusBadRequest
	case errors.As(err, &validation), errors.As(err, &predValid):
		return http.StatusUnprocessableEntity
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &inference):
		return http.StatusInternalServerError
	case errors.As(err, &upstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorField returns the offending field of a validation error, if any.
func errorField(err error) string {
	var validation *ErrValidation
	if errors.As(err, &validation) {
		return validation.Field
	}
	var predValid *prediction.ValidationError
	if errors.As(err, &predValid) {
		return predValid.Field
	}
	return ""
}

// extractValidationErrors converts the first validator failure into an *ErrValidation.
func extractValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		first := validationErrors[0]
		field := first.Field()
		if ns := first.Namespace(); ns != "" {
			if i := strings.IndexByte(ns, '.'); i >= 0 {
				field = ns[i+1:]
			}
		}
		return &ErrValidation{Field: field, Message: validationMessage(first)}
	}
	return &ErrValidation{Field: "body", Message: err.Error()}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "finite":
		return "must be a finite number"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func errorLogFields(err error, status int) []zap.Field {
	return []zap.Field{zap.Error(err), zap.Int("status", status)}
}

// writeError maps err to its status and writes {"error": ..., "field": ...}.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	body := map[string]string{"error": err.Error()}
	if field := errorField(err); field != "" {
		body["field"] = field
	}
	switch {
	case status >= http.StatusInternalServerError:
		s.log.Error("request failed", errorLogFields(err, status)...)
	default:
		s.log.Debug("request rejected", errorLogFields(err, status)...)
	}
	s.jsonResponse(w, status, body)
}
