package services

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the JSON error envelope. Details carries per-field
// validation failures when present.
type ErrorResponse struct {
	Code        string            `json:"code"`
	Description string            `json:"description"`
	Details     map[string]string `json:"details,omitempty"`
}

// ValidationHelper provides shared request validation.
type ValidationHelper struct {
	validator *validator.Validate
}

func NewValidationHelper() *ValidationHelper {
	return &ValidationHelper{
		validator: validator.New(),
	}
}

func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// SendValidationError sends a Request.Validation envelope, expanding
// validator field errors into Details.
func SendValidationError(w http.ResponseWriter, description string, validationErr error) {
	resp := ErrorResponse{Code: "Request.Validation", Description: description}
	if fieldErrs, ok := validationErr.(validator.ValidationErrors); ok {
		resp.Details = make(map[string]string)
		for _, fe := range fieldErrs {
			resp.Details[fe.Field()] = fmt.Sprintf("Field validation failed on '%s' tag", fe.Tag())
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(resp)
}

// WriteError renders a typed service error with its mapped HTTP status.
func WriteError(w http.ResponseWriter, err *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.httpStatus())
	json.NewEncoder(w).Encode(ErrorResponse{Code: err.Code, Description: err.Description})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
