package postgres

import (
	"context"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
)

const accountColumns = `id, email, password_hash, avatar_url, subscription, verified,
	verification_token, session_fingerprint, created_at, updated_at`

const (
	queryGetAccountByID = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	queryGetAccountByEmail = `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`

	queryGetAccountByVerificationToken = `SELECT ` + accountColumns + ` FROM accounts WHERE verification_token = $1`

	queryCreateAccount = `INSERT INTO accounts (id, email, password_hash, avatar_url, subscription, verification_token)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING ` + accountColumns

	queryMarkVerified = `UPDATE accounts
	SET verified = TRUE, verification_token = NULL, updated_at = now()
	WHERE id = $1 AND verified = FALSE AND verification_token = $2
	RETURNING ` + accountColumns

	querySetSessionFingerprint = `UPDATE accounts
	SET session_fingerprint = $2, updated_at = now()
	WHERE id = $1 AND verified = TRUE
	RETURNING ` + accountColumns

	queryClearSessionFingerprint = `UPDATE accounts
	SET session_fingerprint = NULL, updated_at = now()
	WHERE id = $1
	RETURNING ` + accountColumns

	querySetAvatarURL = `UPDATE accounts
	SET avatar_url = $2, updated_at = now()
	WHERE id = $1
	RETURNING ` + accountColumns

	queryCountAccounts = `SELECT COUNT(*) FROM accounts`
)

type accountsRepo struct {
	q querier
}

func (r *accountsRepo) getOne(ctx context.Context, sql string, args ...any) (domain.Account, error) {
	var (
		a            domain.Account
		subscription string
	)
	err := r.q.QueryRow(ctx, sql, args...).Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.AvatarURL,
		&subscription,
		&a.Verified,
		&a.VerificationToken,
		&a.SessionFingerprint,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, mapPgError(err)
	}
	a.Subscription = domain.Subscription(subscription)
	return a, nil
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	return r.getOne(ctx, queryGetAccountByID, id)
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.getOne(ctx, queryGetAccountByEmail, email)
}

func (r *accountsRepo) GetAccountByVerificationToken(ctx context.Context, token string) (domain.Account, error) {
	if token == "" {
		return domain.Account{}, store.ErrNotFound
	}
	return r.getOne(ctx, queryGetAccountByVerificationToken, token)
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) (domain.Account, error) {
	return r.getOne(ctx, queryCreateAccount,
		a.ID,
		a.Email,
		a.PasswordHash,
		a.AvatarURL,
		string(a.Subscription),
		a.VerificationToken,
	)
}

func (r *accountsRepo) MarkVerified(ctx context.Context, id, token string) (domain.Account, error) {
	return r.getOne(ctx, queryMarkVerified, id, token)
}

func (r *accountsRepo) SetSessionFingerprint(ctx context.Context, id, fingerprint string) (domain.Account, error) {
	return r.getOne(ctx, querySetSessionFingerprint, id, fingerprint)
}

func (r *accountsRepo) ClearSessionFingerprint(ctx context.Context, id string) (domain.Account, error) {
	return r.getOne(ctx, queryClearSessionFingerprint, id)
}

func (r *accountsRepo) SetAvatarURL(ctx context.Context, id, avatarURL string) (domain.Account, error) {
	return r.getOne(ctx, querySetAvatarURL, id, avatarURL)
}

func (r *accountsRepo) CountAccounts(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, queryCountAccounts).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
