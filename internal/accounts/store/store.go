package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this and expose repositories as methods so a Tx-scoped store can
// hand out the same repositories bound to the transaction.
type Store interface {
	Accounts() Accounts

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. It commits when fn returns nil
	// and rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Accounts is the credential store. Every mutation is a single statement, so
// each field update is atomic without an enclosing transaction.
type Accounts interface {
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByEmail expects an already normalised email.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	GetAccountByVerificationToken(ctx context.Context, token string) (domain.Account, error)

	// CreateAccount inserts a new account (id is provided by the app via ULID).
	// It returns ErrAlreadyExists when the email is taken.
	CreateAccount(ctx context.Context, a domain.Account) (domain.Account, error)

	// MarkVerified sets verified and clears the verification token in one
	// statement. Only unverified accounts holding token are matched.
	MarkVerified(ctx context.Context, id, token string) (domain.Account, error)

	// SetSessionFingerprint binds a session to the account. It only matches
	// verified accounts.
	SetSessionFingerprint(ctx context.Context, id, fingerprint string) (domain.Account, error)

	ClearSessionFingerprint(ctx context.Context, id string) (domain.Account, error)

	SetAvatarURL(ctx context.Context, id, avatarURL string) (domain.Account, error)

	CountAccounts(ctx context.Context) (int64, error)
}
