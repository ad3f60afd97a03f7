package http

import (
	"net/http"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
)

// AccountsHandler serves the unauthenticated account lifecycle endpoints.
type AccountsHandler struct {
	AccountService *service.AccountService
}

func userResponse(a domain.Account) accountsdk.UserResponse {
	return accountsdk.UserResponse{
		Email:        a.Email,
		Subscription: string(a.Subscription),
	}
}

// HandleRegister creates an account and sends its verification email.
//
//	@Summary		Register an account
//	@Description	Creates an unverified account and emails a verification link. The account is not created when the email cannot be sent.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.RegisterRequest	true	"Email, password and optional subscription"
//	@Success		201		{object}	accountsdk.RegisterResponse
//	@Failure		400		{object}	accountsdk.ErrorResponse	"Validation failed"
//	@Failure		409		{object}	accountsdk.ErrorResponse	"Email already in use"
//	@Failure		502		{object}	accountsdk.ErrorResponse	"Verification email could not be sent"
//	@Router			/register [post]
func (h *AccountsHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		accountsdk.ErrMalformedBody.WriteError(w)
		return
	}
	if details := req.Validate(); details != nil {
		accountsdk.ValidationError(details).WriteError(w)
		return
	}

	acc, err := h.AccountService.Register(r.Context(), service.RegisterInput{
		Email:        req.Email,
		Password:     req.Password,
		Subscription: req.Subscription,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, accountsdk.RegisterResponse{User: userResponse(acc)})
}

// HandleVerify consumes a verification link.
//
//	@Summary		Verify email
//	@Tags			Accounts
//	@Produce		json
//	@Param			verificationToken	path		string	true	"Token from the verification email"
//	@Success		200					{object}	accountsdk.MessageResponse
//	@Failure		404					{object}	accountsdk.ErrorResponse	"Unknown or already used token"
//	@Router			/verify/{verificationToken} [get]
func (h *AccountsHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	if _, err := h.AccountService.Verify(r.Context(), r.PathValue("verificationToken")); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accountsdk.MessageResponse{Message: "Email confirm successfully"})
}

// HandleResendVerification sends the verification email again.
//
//	@Summary		Resend verification email
//	@Description	Re-sends the existing verification link. Fails for verified accounts.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.ResendVerificationRequest	true	"Account email"
//	@Success		200		{object}	accountsdk.MessageResponse
//	@Failure		400		{object}	accountsdk.ErrorResponse	"Missing email or already verified"
//	@Failure		404		{object}	accountsdk.ErrorResponse	"Unknown email"
//	@Failure		502		{object}	accountsdk.ErrorResponse	"Verification email could not be sent"
//	@Router			/verify [post]
func (h *AccountsHandler) HandleResendVerification(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.ResendVerificationRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		accountsdk.ErrMalformedBody.WriteError(w)
		return
	}
	if details := req.Validate(); details != nil {
		accountsdk.ValidationError(details).WriteError(w)
		return
	}

	if err := h.AccountService.ResendVerification(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accountsdk.MessageResponse{Message: "Verification email sent"})
}

// HandleLogin exchanges credentials for a session token.
//
//	@Summary		Log in
//	@Description	Returns a bearer token. Logging in again replaces the previous session.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	accountsdk.LoginResponse
//	@Failure		400		{object}	accountsdk.ErrorResponse	"Validation failed"
//	@Failure		401		{object}	accountsdk.ErrorResponse	"Bad credentials or unverified account"
//	@Router			/login [post]
func (h *AccountsHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req accountsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		accountsdk.ErrMalformedBody.WriteError(w)
		return
	}
	if details := req.Validate(); details != nil {
		accountsdk.ValidationError(details).WriteError(w)
		return
	}

	sess, err := h.AccountService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accountsdk.LoginResponse{
		Token: sess.Token,
		User:  userResponse(sess.Account),
	})
}
