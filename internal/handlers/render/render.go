package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var validate = validator.New()

func init() {
	configureValidator(validate)
}

type Struct any

// Response body of every API route
// Fields after Error are set by some failures only
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`

	Fields           map[string]string `json:"fields,omitempty"`
	MissingVariables []string          `json:"missingVariables,omitempty"`
	Help             string            `json:"help,omitempty"`
	Hint             string            `json:"hint,omitempty"`
	Details          any               `json:"details,omitempty"`
}

// Request body may provide its own message for failed validation
type validationMessager interface {
	ValidationMessage() string
}

// Render success envelope
func Success(w http.ResponseWriter, code int, message string, data any) {
	jsonWithStatus(w, Envelope{Status: StatusSuccess, Message: message, Data: data}, code)
}

// Render error envelope with message only
func Error(w http.ResponseWriter, code int, message string) {
	jsonWithStatus(w, Envelope{Status: StatusError, Message: message}, code)
}

// Render error envelope with extra fields set by caller
func Fail(w http.ResponseWriter, code int, env Envelope) {
	env.Status = StatusError
	jsonWithStatus(w, env, code)
}

// Render json DecodeError
func DecodeError(w http.ResponseWriter, err error) {
	var (
		typeErr  *json.UnmarshalTypeError
		bytesErr *http.MaxBytesError
	)

	// Try to provide more specific error message based on error type
	switch {
	case errors.As(err, &bytesErr):
		Error(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body is too large (limit %d bytes)", bytesErr.Limit))
		return
	case errors.Is(err, io.EOF):
		Error(w, http.StatusBadRequest, "Request body is required")
		return
	case errors.As(err, &typeErr):
		Error(w, http.StatusBadRequest, fmt.Sprintf("Invalid data type for field '%s'", typeErr.Field))
	default:
		Error(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse JSON: %s", err.Error()))
	}
}

// Render ValidationErrors
func ValidationErrors(w http.ResponseWriter, message string, errs validator.ValidationErrors) {
	if message == "" {
		message = "Request validation failed"
	}

	response := Envelope{
		Status:  StatusError,
		Message: message,
		Fields:  make(map[string]string, len(errs)),
	}

	// Create user-friendly error messages based on validation tag
	for _, fieldError := range errs {
		var text string
		switch fieldError.Tag() {
		case "required":
			text = "This field is required"
		case "min":
			text = fmt.Sprintf("Value is too short (minimum %s)", fieldError.Param())
		case "email":
			text = "Invalid email address"
		case "e164":
			text = "Phone number must be in E.164 format, e.g. +15551234567"
		default:
			text = "Invalid value"
		}

		response.Fields[fieldError.Field()] = text
	}

	jsonWithStatus(w, response, http.StatusBadRequest)
}

// BindAndValidate decodes JSON request body into type T and validates it using struct tags.
// Returns the decoded value and writes appropriate error responses for decoding or validation failures.
func BindAndValidate[T Struct](w http.ResponseWriter, r *http.Request) (T, error) {
	var value T

	err := json.NewDecoder(r.Body).Decode(&value)
	if err != nil {
		DecodeError(w, err)
		return value, err
	}

	err = validate.Struct(value)
	if err != nil {
		var message string
		if m, ok := any(value).(validationMessager); ok {
			message = m.ValidationMessage()
		}

		// pretty sure cast will be ok cause expecting T is valid struct
		errs := err.(validator.ValidationErrors)
		ValidationErrors(w, message, errs)
		return value, err
	}

	return value, nil
}

// renderJSONWithStatus sends data as json and enforces status code
func jsonWithStatus(w http.ResponseWriter, data any, code int) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)

	if err := enc.Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}
