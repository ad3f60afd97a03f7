package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/idx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

// TokenIssuer signs and verifies session tokens. *jwtx.TokenIssuer implements it.
type TokenIssuer interface {
	Issue(accountID string) (string, error)
	Verify(token string) (string, error)
}

// AccountService drives the account lifecycle: registration, email
// verification, login, logout and the bearer-token auth gate.
type AccountService struct {
	Store  store.Store
	Hasher cryptox.PasswordHasher
	Tokens TokenIssuer
	Mailer *VerificationMailer

	// NewID defaults to a fresh ULID.
	NewID func() string
}

// RegisterInput carries the registration form. Subscription may be empty.
type RegisterInput struct {
	Email        string
	Password     string
	Subscription string
}

// Session is the outcome of a successful login.
type Session struct {
	Token   string
	Account domain.Account
}

func (s *AccountService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return idx.New().String()
}

// Register creates an unverified account and mails its verification link.
// The account is only created once the mail transport accepted the message.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (domain.Account, error) {
	l := slogx.FromContext(ctx)

	email := domain.NormalizeEmail(in.Email)
	if email == "" {
		return domain.Account{}, fail(ErrBadRequest, MsgMissingEmail)
	}
	if in.Password == "" {
		return domain.Account{}, fail(ErrBadRequest, "Missing required field password")
	}
	sub, ok := domain.ParseSubscription(strings.TrimSpace(in.Subscription))
	if !ok {
		return domain.Account{}, fail(ErrBadRequest, MsgInvalidSubscription)
	}

	_, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.Account{}, fail(ErrConflict, MsgEmailInUse)
	case !errors.Is(err, store.ErrNotFound):
		return domain.Account{}, fmt.Errorf("lookup account: %w", err)
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash password: %w", err)
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.Account{}, err
	}

	if err := s.Mailer.Send(ctx, email, token); err != nil {
		l.Error("verification email not dispatched", "email", email, "err", err)
		return domain.Account{}, err
	}

	acc, err := s.Store.Accounts().CreateAccount(ctx, domain.Account{
		ID:                s.newID(),
		Email:             email,
		PasswordHash:      hash,
		AvatarURL:         domain.DefaultAvatarURL(email),
		Subscription:      sub,
		VerificationToken: &token,
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Account{}, fail(ErrConflict, MsgEmailInUse)
		}
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	l.Info("account registered", slog.String("account_id", acc.ID))
	return acc, nil
}

// Verify consumes a verification token. A token can succeed at most once.
func (s *AccountService) Verify(ctx context.Context, token string) (domain.Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Account{}, fail(ErrNotFound, MsgNotFound)
	}

	var acc domain.Account
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		found, err := tx.Accounts().GetAccountByVerificationToken(ctx, token)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fail(ErrNotFound, MsgNotFound)
			}
			return fmt.Errorf("lookup verification token: %w", err)
		}

		acc, err = tx.Accounts().MarkVerified(ctx, found.ID, token)
		if err != nil {
			// Consumed by a concurrent request between the lookup and the update.
			if errors.Is(err, store.ErrNotFound) {
				return fail(ErrNotFound, MsgNotFound)
			}
			return fmt.Errorf("mark verified: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}

	slogx.FromContext(ctx).Info("account verified", slog.String("account_id", acc.ID))
	return acc, nil
}

// ResendVerification mails the existing verification token again. The token
// is not rotated.
func (s *AccountService) ResendVerification(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return fail(ErrBadRequest, MsgMissingEmail)
	}

	acc, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(ErrNotFound, MsgNotFound)
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	if acc.Verified || acc.VerificationToken == nil {
		return fail(ErrBadRequest, MsgAlreadyVerified)
	}

	if err := s.Mailer.Send(ctx, acc.Email, *acc.VerificationToken); err != nil {
		slogx.FromContext(ctx).Error("verification email not dispatched", "account_id", acc.ID, "err", err)
		return err
	}

	slogx.FromContext(ctx).Info("verification email resent", slog.String("account_id", acc.ID))
	return nil
}

// Login checks credentials and binds a fresh bearer token to the account.
// Unknown email and wrong password produce the same failure.
func (s *AccountService) Login(ctx context.Context, email, password string) (Session, error) {
	l := slogx.FromContext(ctx)
	email = domain.NormalizeEmail(email)

	acc, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a hash so unknown emails cost about the same as wrong passwords.
			_, _ = s.Hasher.Hash(password)
			l.Info("login failed", "reason", "unknown_email")
			return Session{}, fail(ErrUnauthorized, MsgInvalidCredentials)
		}
		return Session{}, fmt.Errorf("lookup account: %w", err)
	}

	if err := s.Hasher.Verify(password, acc.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Error("stored password hash unusable", "account_id", acc.ID, "err", err)
		}
		l.Info("login failed", "reason", "bad_password", "account_id", acc.ID)
		return Session{}, fail(ErrUnauthorized, MsgInvalidCredentials)
	}

	if !acc.Verified {
		l.Info("login refused", "reason", "unverified", "account_id", acc.ID)
		return Session{}, fail(ErrUnauthorized, MsgNotVerified)
	}

	token, err := s.Tokens.Issue(acc.ID)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}

	// Re-check against the stored row before binding the session; the store
	// update itself only matches verified accounts.
	current, err := s.Store.Accounts().GetAccountByID(ctx, acc.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, fail(ErrUnauthorized, MsgInvalidCredentials)
		}
		return Session{}, fmt.Errorf("reload account: %w", err)
	}
	if !current.Verified {
		return Session{}, fail(ErrUnauthorized, MsgNotVerified)
	}

	acc, err = s.Store.Accounts().SetSessionFingerprint(ctx, acc.ID, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, fail(ErrUnauthorized, MsgNotVerified)
		}
		return Session{}, fmt.Errorf("store session: %w", err)
	}

	l.Info("login succeeded", slog.String("account_id", acc.ID))
	return Session{Token: token, Account: acc}, nil
}

// Authenticate resolves a bearer token to its account. The token must verify
// and must be the one currently bound to the account, so logout revokes it
// regardless of expiry.
func (s *AccountService) Authenticate(ctx context.Context, token string) (domain.Account, error) {
	if token == "" {
		return domain.Account{}, fail(ErrUnauthorized, MsgNotAuthorized)
	}

	accountID, err := s.Tokens.Verify(token)
	if err != nil {
		return domain.Account{}, failWith(ErrUnauthorized, MsgNotAuthorized, err)
	}

	acc, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, fail(ErrUnauthorized, MsgNotAuthorized)
		}
		return domain.Account{}, fmt.Errorf("lookup account: %w", err)
	}

	if acc.SessionFingerprint == nil || !cryptox.MatchFingerprint(token, *acc.SessionFingerprint) {
		return domain.Account{}, fail(ErrUnauthorized, MsgNotAuthorized)
	}
	return acc, nil
}

// Current returns the stored account of an authenticated caller.
func (s *AccountService) Current(ctx context.Context, accountID string) (domain.Account, error) {
	acc, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, fail(ErrUnauthorized, MsgNotAuthorized)
		}
		return domain.Account{}, fmt.Errorf("lookup account: %w", err)
	}
	return acc, nil
}

// Logout drops the bound session so the bearer token stops resolving.
func (s *AccountService) Logout(ctx context.Context, accountID string) error {
	if _, err := s.Store.Accounts().ClearSessionFingerprint(ctx, accountID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fail(ErrUnauthorized, MsgNotAuthorized)
		}
		return fmt.Errorf("clear session: %w", err)
	}
	slogx.FromContext(ctx).Info("logout", slog.String("account_id", accountID))
	return nil
}
