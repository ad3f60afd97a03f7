package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

// statusFor maps a service failure kind to its HTTP status.
func statusFor(kind error) int {
	switch {
	case errors.Is(kind, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(kind, service.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(kind, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(kind, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(kind, service.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(kind, service.ErrDispatchFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError is the single error boundary. Typed failures keep their message;
// anything else is logged and hidden behind a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := service.AsError(err)
	if !ok {
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		accountsdk.ErrInternal.WriteError(w)
		return
	}

	status := statusFor(e.Kind)
	if status == http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		accountsdk.ErrInternal.WriteError(w)
		return
	}
	if e.Err != nil {
		slogx.FromContext(r.Context()).Debug("request rejected", "kind", e.Kind, "err", e.Err)
	}
	accountsdk.NewAPIError(status, e.Message).WriteError(w)
}

// writeAuthError answers auth-gate failures with a bearer challenge.
func writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrUnauthorized) {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	}
	writeError(w, r, err)
}
