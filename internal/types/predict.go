// Package types provides the request and response bodies of the HTTP API.
package types

import (
	"math"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator with the custom tags registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(jsonTagName)
		_ = validate.RegisterValidation("finite", isFinite)
	})
	return validate
}

// jsonTagName reports validation failures under the JSON field name.
func jsonTagName(fld reflect.StructField) string {
	name := fld.Tag.Get("json")
	for i := 0; i < len(name); i++ {
		if name[i] == ',' {
			name = name[:i]
			break
		}
	}
	if name == "-" {
		return ""
	}
	return name
}

func isFinite(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		v := fl.Field().Float()
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	default:
		return true
	}
}

// PredictSalaryRequest is the body of POST /predict-salary.
type PredictSalaryRequest struct {
	Rating *float64 `json:"rating" validate:"required,finite"`
	Skills []string `json:"skills" validate:"required"`
}

// PredictSalaryResponse is the success body of POST /predict-salary.
type PredictSalaryResponse struct {
	PredictedSalaryK float64 `json:"predicted_salary_k"`
}

// Validate validates the PredictSalaryRequest using the validator.
func (r *PredictSalaryRequest) Validate() error {
	return Validator().Struct(r)
}
