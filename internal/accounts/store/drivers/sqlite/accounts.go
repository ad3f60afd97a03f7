package sqlite

import (
	"context"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/sqlite/gen"
)

type accountsRepo struct {
	q *gen.Queries
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row, err := r.q.GetAccountByID(ctx, id)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return mapAccount(row), nil
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	row, err := r.q.GetAccountByEmail(ctx, email)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return mapAccount(row), nil
}

func (r *accountsRepo) GetAccountByVerificationToken(ctx context.Context, token string) (domain.Account, error) {
	if token == "" {
		return domain.Account{}, store.ErrNotFound
	}
	row, err := r.q.GetAccountByVerificationToken(ctx, mapStringNull(token))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return mapAccount(row), nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) (domain.Account, error) {
	err := r.q.CreateAccount(ctx, gen.CreateAccountParams{
		ID:                a.ID,
		Email:             a.Email,
		PasswordHash:      a.PasswordHash,
		AvatarUrl:         a.AvatarURL,
		Subscription:      string(a.Subscription),
		VerificationToken: mapOptionalString(a.VerificationToken),
	})
	if err != nil {
		return domain.Account{}, mapUniqueViolation(err)
	}
	return r.GetAccountByID(ctx, a.ID)
}

func (r *accountsRepo) MarkVerified(ctx context.Context, id, token string) (domain.Account, error) {
	n, err := r.q.MarkAccountVerified(ctx, gen.MarkAccountVerifiedParams{
		ID:                id,
		VerificationToken: mapStringNull(token),
	})
	return r.afterUpdate(ctx, id, n, err)
}

func (r *accountsRepo) SetSessionFingerprint(ctx context.Context, id, fingerprint string) (domain.Account, error) {
	n, err := r.q.SetAccountSessionFingerprint(ctx, gen.SetAccountSessionFingerprintParams{
		SessionFingerprint: mapStringNull(fingerprint),
		ID:                 id,
	})
	return r.afterUpdate(ctx, id, n, err)
}

func (r *accountsRepo) ClearSessionFingerprint(ctx context.Context, id string) (domain.Account, error) {
	n, err := r.q.ClearAccountSessionFingerprint(ctx, id)
	return r.afterUpdate(ctx, id, n, err)
}

func (r *accountsRepo) SetAvatarURL(ctx context.Context, id, avatarURL string) (domain.Account, error) {
	n, err := r.q.SetAccountAvatarURL(ctx, gen.SetAccountAvatarURLParams{
		AvatarUrl: avatarURL,
		ID:        id,
	})
	return r.afterUpdate(ctx, id, n, err)
}

func (r *accountsRepo) CountAccounts(ctx context.Context) (int64, error) {
	return r.q.CountAccounts(ctx)
}

// afterUpdate turns a zero-row update into ErrNotFound and reloads the row.
func (r *accountsRepo) afterUpdate(ctx context.Context, id string, n int64, err error) (domain.Account, error) {
	if err != nil {
		return domain.Account{}, err
	}
	if n == 0 {
		return domain.Account{}, store.ErrNotFound
	}
	return r.GetAccountByID(ctx, id)
}
