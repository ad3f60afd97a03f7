package http

import (
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
)

// SessionHandler serves endpoints behind the auth-gate.
type SessionHandler struct {
	AccountService *service.AccountService
}

func principal(w http.ResponseWriter, r *http.Request) (domain.Account, bool) {
	acc, ok := httpx.PrincipalFrom[domain.Account](r.Context())
	if !ok || acc.ID == "" {
		httpx.WriteBearerError(w, "invalid_token", service.MsgNotAuthorized)
		return domain.Account{}, false
	}
	return acc, true
}

// HandleCurrent returns the caller's account.
//
//	@Summary		Current account
//	@Tags			Session
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	accountsdk.UserResponse
//	@Failure		401	{object}	accountsdk.ErrorResponse	"Not authorized"
//	@Router			/current [get]
func (h *SessionHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	acc, ok := principal(w, r)
	if !ok {
		return
	}

	acc, err := h.AccountService.Current(r.Context(), acc.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, userResponse(acc))
}

// HandleLogout ends the caller's session.
//
//	@Summary		Log out
//	@Description	Unbinds the session token. It is rejected from then on, even before it expires.
//	@Tags			Session
//	@Security		BearerAuth
//	@Success		204
//	@Failure		401	{object}	accountsdk.ErrorResponse	"Not authorized"
//	@Router			/logout [post]
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	acc, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.AccountService.Logout(r.Context(), acc.ID); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
