package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mesh-intelligence/docflow/pkg/types"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// StatusFor maps an error to its HTTP status by category.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, types.ErrResourceExhausted):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// fail maps err to a status and writes it. Internal errors are logged and
// their message hidden from the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "op", op, "path", r.URL.Path, "err", err)
		s.respondError(w, status, op+" failed")
		return
	}
	s.logger.Debug("request rejected", "op", op, "status", status, "err", err)
	s.respondError(w, status, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding response", "err", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: message, Code: status})
}

func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := toSnake(e.Field())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, e.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, e.Param()))
		case "datetime":
			msgs = append(msgs, fmt.Sprintf("%s must be a date formatted %s", field, e.Param()))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
