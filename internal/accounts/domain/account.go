package domain

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"
)

// Account is the single persisted identity record.
type Account struct {
	ID           string
	Email        string
	PasswordHash string // argon2id or bcrypt encoded
	AvatarURL    string
	Subscription Subscription
	Verified     bool

	// VerificationToken is non-nil only while Verified is false.
	VerificationToken *string

	// SessionFingerprint is the SHA-256 fingerprint of the live bearer token,
	// nil when no session exists.
	SessionFingerprint *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasSession reports whether a bearer token is currently bound to the account.
func (a Account) HasSession() bool {
	return a.SessionFingerprint != nil && *a.SessionFingerprint != ""
}

// NormalizeEmail trims and lower-cases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DefaultAvatarURL returns the gravatar placeholder for an email.
func DefaultAvatarURL(email string) string {
	sum := md5.Sum([]byte(NormalizeEmail(email)))
	return "//www.gravatar.com/avatar/" + hex.EncodeToString(sum[:])
}
