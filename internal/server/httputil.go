package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"yusaek/internal/grid"
	"yusaek/internal/pipeline"
	"yusaek/internal/session"
)

// Response is the envelope every JSON endpoint answers with.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// apiError carries the status and code an error maps to.
type apiError struct {
	status  int
	code    string
	message string
	details map[string]string
}

func (e *apiError) Error() string {
	return e.message
}

func badRequest(message string) *apiError {
	return &apiError{status: http.StatusBadRequest, code: "BAD_REQUEST", message: message}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, err error) {
	e := classify(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.status)
	_ = json.NewEncoder(w).Encode(Response{
		Success: false,
		Error:   &ErrorBody{Code: e.code, Message: e.message, Details: e.details},
	})
}

func classify(err error) *apiError {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae
	}
	var fe *pipeline.FormatError
	switch {
	case errors.As(err, &fe):
		return &apiError{status: http.StatusUnprocessableEntity, code: "FORMAT_ERROR", message: fe.Reason}
	case errors.Is(err, grid.ErrUnsupportedFormat):
		return &apiError{status: http.StatusBadRequest, code: "UNSUPPORTED_FORMAT", message: err.Error()}
	case errors.Is(err, session.ErrNotLoaded):
		return &apiError{status: http.StatusBadRequest, code: "NOT_LOADED", message: "upload an order sheet first"}
	case errors.Is(err, session.ErrEmptyCode):
		return &apiError{status: http.StatusBadRequest, code: "EMPTY_CODE", message: "code is empty"}
	case errors.Is(err, session.ErrNoDefects):
		return &apiError{status: http.StatusBadRequest, code: "NO_DEFECTS", message: "defect list is empty"}
	}
	return &apiError{status: http.StatusInternalServerError, code: "INTERNAL_ERROR", message: "an unexpected error occurred"}
}

var validate = validator.New()

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest("invalid JSON body")
	}
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return badRequest(err.Error())
		}
		details := make(map[string]string, len(verrs))
		for _, e := range verrs {
			details[e.Field()] = formatValidationError(e)
		}
		return &apiError{status: http.StatusBadRequest, code: "VALIDATION_ERROR", message: "validation failed", details: details}
	}
	return nil
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return "must be at most " + e.Param() + " characters"
	default:
		return "invalid value"
	}
}
