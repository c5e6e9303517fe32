package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jonathan/hr-pulse/internal/logger"
	"github.com/jonathan/hr-pulse/internal/schemas"
	"github.com/jonathan/hr-pulse/internal/server/middleware"
	"github.com/jonathan/hr-pulse/internal/types"
	"go.uber.org/zap"
)

const maxPredictBodyBytes = 64 << 10

// handlePredictSalary handles POST /predict-salary.
func (s *Server) handlePredictSalary(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPredictBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, maxErr)
			return
		}
		s.writeError(w, &ErrMalformedBody{Cause: err})
		return
	}
	if !json.Valid(body) {
		s.writeError(w, &ErrMalformedBody{Cause: errors.New("invalid JSON")})
		return
	}

	if err := schemas.Validate(schemas.PredictRequest, body); err != nil {
		var schemaErr *schemas.ValidationError
		if errors.As(err, &schemaErr) {
			first := schemaErr.First()
			s.writeError(w, &ErrValidation{Field: first.Field, Message: first.Message})
			return
		}
		s.writeError(w, err)
		return
	}

	var req types.PredictSalaryRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, decodeError(err))
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, extractValidationErrors(err))
		return
	}

	if s.predictor == nil {
		s.writeError(w, s.modelErr)
		return
	}

	res, err := s.predictor.PredictSalary(*req.Rating, req.Skills)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if len(res.UnmatchedSkills) > 0 {
		s.log.Debug("skills outside the training vocabulary ignored",
			append(logger.StringFields(
				logger.StringField{Key: logger.FieldRequestID, Value: middleware.RequestIDFromContext(r.Context())},
			), zap.String("skills", strings.Join(res.UnmatchedSkills, ",")))...,
		)
	}

	s.jsonResponse(w, http.StatusOK, types.PredictSalaryResponse{PredictedSalaryK: res.PredictedSalaryK})
}

// decodeError maps a JSON decode failure to a client error. Values of the wrong
// type or outside the target's range name the offending field.
func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return &ErrValidation{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("%s is not a valid %s", typeErr.Value, typeErr.Type),
		}
	}
	return &ErrMalformedBody{Cause: err}
}
