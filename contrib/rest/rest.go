// Package rest holds the HTTP helpers used by generated controllers.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/syssam/dbmlgen"
	"github.com/syssam/dbmlgen/dialect/sql"
)

// RequestIDHeader carries the request id set by RequestID.
const RequestIDHeader = "X-Request-ID"

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("rest: encode response", "error", err)
	}
}

// Error writes {"error": msg} with the given status.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Error: msg})
}

// NoContent writes an empty 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// ID returns the {id} path value as an integer.
func ID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("rest: invalid id %q", raw)
	}
	return id, nil
}

// Decode reads a JSON object from the request body.
func Decode(r *http.Request) (sql.Record, error) {
	var rec sql.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("rest: decode body: %w", err)
	}
	if rec == nil {
		rec = sql.Record{}
	}
	return rec, nil
}

// Fail maps err to a status code and writes it as an error response.
// Unexpected errors are logged and reported without detail.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case dbmlgen.IsNotFound(err):
		Error(w, http.StatusNotFound, err.Error())
	case dbmlgen.IsValidationError(err):
		Error(w, http.StatusUnprocessableEntity, err.Error())
	case dbmlgen.IsConstraintError(err):
		Error(w, http.StatusConflict, err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "request_id", RequestIDFrom(r.Context()), "error", err)
		Error(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

type ctxKey struct{}

// RequestID tags each request with an id, reusing the one sent by the
// client when present. The id is echoed in the response header, stored in
// the request context and added to the records logged by Fail.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// RequestIDFrom returns the id stored by RequestID, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
