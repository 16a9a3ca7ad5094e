package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

// RequestValidationError describes a request body that could not be used
type RequestValidationError struct {
	Field   string
	Message string
}

func (e RequestValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// decodeJSON reads a JSON body into v and runs its validate tags
func (h *Handlers) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return RequestValidationError{Message: "request body is empty"}
		}
		return RequestValidationError{Message: "invalid JSON: " + err.Error()}
	}

	if err := h.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return RequestValidationError{
				Field:   jsonFieldName(fe.Namespace()),
				Message: fmt.Sprintf("failed %q check", fe.Tag()),
			}
		}
		return RequestValidationError{Message: err.Error()}
	}
	return nil
}

// decodeJSONList reads a JSON array body. Elements are validated by the caller.
func decodeJSONList[T any](w http.ResponseWriter, r *http.Request) ([]T, error) {
	var items []T
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&items); err != nil {
		return nil, RequestValidationError{Message: "invalid JSON: " + err.Error()}
	}
	return items, nil
}

// jsonFieldName turns "loginRequest.Username" into "username"
func jsonFieldName(namespace string) string {
	if _, field, ok := strings.Cut(namespace, "."); ok {
		namespace = field
	}
	return strings.ToLower(namespace)
}

// badRequest writes a 400 for a decode or validation failure
func (h *Handlers) badRequest(w http.ResponseWriter, err error) {
	h.jsonError(w, err.Error(), http.StatusBadRequest)
}
