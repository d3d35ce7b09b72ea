package httppresentation

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/apperror"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Code    apperror.Code `json:"code,omitempty"`
	Message string        `json:"message"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.Validation("request body is required")
		}
		return apperror.Validation("malformed request body: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusFor maps the closed error taxonomy onto HTTP status codes.
func statusFor(e *apperror.Error) int {
	switch e.Code {
	case apperror.CodeInvalidPaymentMethod:
		return http.StatusBadRequest
	case apperror.CodeInsufficientBalance:
		return http.StatusUnprocessableEntity
	}
	switch e.Kind() {
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindAlreadyExists, apperror.KindConflict:
		return http.StatusConflict
	case apperror.KindAccessDenied:
		return http.StatusForbidden
	case apperror.KindValidation, apperror.KindInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	if appErr, ok := apperror.As(err); ok {
		writeJSON(w, statusFor(appErr), errorBody{Code: appErr.Code, Message: appErr.Error()})
		return
	}
	logctx.FromOr(r.Context(), h.log).Error("http_internal_error",
		observability.F("route", routeFromContext(r.Context())),
		observability.F("error", err),
	)
	writeJSON(w, http.StatusInternalServerError, errorBody{Message: "internal server error"})
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Validation("path parameter %s must be a positive integer, got %q", name, raw)
	}
	return id, nil
}

func queryInt64(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, apperror.Validation("query parameter %s is required", name)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperror.Validation("query parameter %s must be an integer, got %q", name, raw)
	}
	return v, nil
}

func queryIntDefault(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Validation("query parameter %s must be an integer, got %q", name, raw)
	}
	return v, nil
}

func queryRequired(r *http.Request, name string) (string, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return "", apperror.Validation("query parameter %s is required", name)
	}
	return v, nil
}
