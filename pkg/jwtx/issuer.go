package jwtx

import (
	"time"
)

// TokenIssuer mints and checks session tokens bound to an account id.
// The secret is injected once at construction and never rotated.
type TokenIssuer struct {
	signer   Signer
	verifier Verifier
	issuer   string
	ttl      time.Duration
	now      func() time.Time
}

type TokenIssuerOptions struct {
	Secret []byte
	Issuer string
	TTL    time.Duration    // defaults to DefaultSessionTTL
	Now    func() time.Time // defaults to time.Now
}

func NewTokenIssuer(opts TokenIssuerOptions) (*TokenIssuer, error) {
	if opts.TTL <= 0 {
		opts.TTL = DefaultSessionTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	signer, err := NewSignerHS256(opts.Secret)
	if err != nil {
		return nil, err
	}
	verifier, err := NewVerifierHS256(opts.Secret, opts.Issuer, opts.Now)
	if err != nil {
		return nil, err
	}

	return &TokenIssuer{
		signer:   signer,
		verifier: verifier,
		issuer:   opts.Issuer,
		ttl:      opts.TTL,
		now:      opts.Now,
	}, nil
}

// Issue signs a token for accountID expiring TTL from now.
func (i *TokenIssuer) Issue(accountID string) (string, error) {
	claims := NewSessionClaims(accountID, i.issuer, i.ttl, i.now().UTC())
	return i.signer.Sign(claims)
}

// Verify returns the account id embedded in token.
func (i *TokenIssuer) Verify(token string) (string, error) {
	claims, err := i.Parse(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Parse returns the full claims of a valid token.
func (i *TokenIssuer) Parse(token string) (Claims, error) {
	return i.verifier.Verify(token)
}

// TTL reports the configured session lifetime.
func (i *TokenIssuer) TTL() time.Duration { return i.ttl }
