package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/baharkarakas/qa-forum/internal/apperr"
)

const maxBodyBytes = 1 << 20

type APIError struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details interface{}) {
	WriteJSON(w, status, APIError{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

type kindInfo struct {
	status int
	code   string
}

var kinds = map[apperr.Kind]kindInfo{
	apperr.InvalidInput:    {http.StatusBadRequest, "invalid_input"},
	apperr.Unauthenticated: {http.StatusUnauthorized, "unauthenticated"},
	apperr.Forbidden:       {http.StatusForbidden, "forbidden"},
	apperr.NotFound:        {http.StatusNotFound, "not_found"},
	apperr.Conflict:        {http.StatusConflict, "conflict"},
	apperr.RateLimited:     {http.StatusTooManyRequests, "rate_limited"},
	apperr.Internal:        {http.StatusInternalServerError, "internal_error"},
}

// WriteAppError renders err using its kind. Internal failures are logged
// with the request id and reach the client only as a generic message.
func WriteAppError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	info, ok := kinds[kind]
	if !ok {
		info = kinds[apperr.Internal]
	}
	if kind == apperr.Internal {
		slog.ErrorContext(r.Context(), "request failed",
			slog.String("request_id", RequestID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("err", err),
		)
	}
	var details interface{}
	if fields := apperr.FieldsOf(err); len(fields) > 0 {
		details = fields
	}
	WriteError(w, info.status, info.code, apperr.Message(err), details)
}

// DecodeJSON reads a single JSON object from the request body.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperr.New(apperr.InvalidInput, "request body is empty")
		case errors.As(err, &tooBig):
			return apperr.New(apperr.InvalidInput, "request body too large")
		default:
			return apperr.New(apperr.InvalidInput, "malformed JSON body")
		}
	}
	return nil
}

type requestIDKey struct{}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestID(ctx context.Context) string {
	s, _ := ctx.Value(requestIDKey{}).(string)
	return s
}
