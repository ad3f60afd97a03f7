package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const exampleIssuer = "accounts-test"

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newIssuer(t *testing.T, now func() time.Time) *jwtx.TokenIssuer {
	t.Helper()
	iss, err := jwtx.NewTokenIssuer(jwtx.TokenIssuerOptions{
		Secret: testSecret,
		Issuer: exampleIssuer,
		Now:    now,
	})
	require.NoError(t, err)
	return iss
}

func TestIssueAndVerify(t *testing.T) {
	iss := newIssuer(t, nil)

	token, err := iss.Issue("01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV")
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(token, "."))

	accountID, err := iss.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV", accountID)
}

func TestIssuedTokenExpiresIn23Hours(t *testing.T) {
	iss := newIssuer(t, nil)
	require.Equal(t, 23*time.Hour, iss.TTL())

	token, err := iss.Issue("acc-1")
	require.NoError(t, err)

	claims, err := iss.Parse(token)
	require.NoError(t, err)
	require.Equal(t, exampleIssuer, claims.Issuer)
	require.NotEmpty(t, claims.ID)
	require.WithinDuration(t, time.Now().Add(23*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTwoTokensForSameAccountDiffer(t *testing.T) {
	iss := newIssuer(t, nil)

	a, err := iss.Issue("acc-1")
	require.NoError(t, err)
	b, err := iss.Issue("acc-1")
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuedAt := time.Now().Add(-24 * time.Hour)
	token, err := newIssuer(t, func() time.Time { return issuedAt }).Issue("acc-1")
	require.NoError(t, err)

	_, err = newIssuer(t, nil).Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestVerifyRejectsTokenSignedWithOtherSecret(t *testing.T) {
	other, err := jwtx.NewTokenIssuer(jwtx.TokenIssuerOptions{
		Secret: []byte("ffffffffffffffffffffffffffffffff"),
		Issuer: exampleIssuer,
	})
	require.NoError(t, err)

	token, err := other.Issue("acc-1")
	require.NoError(t, err)

	_, err = newIssuer(t, nil).Verify(token)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	iss := newIssuer(t, nil)
	token, err := iss.Issue("acc-1")
	require.NoError(t, err)

	forged, err := iss.Issue("acc-2")
	require.NoError(t, err)

	a := strings.Split(token, ".")
	b := strings.Split(forged, ".")
	spliced := strings.Join([]string{a[0], b[1], a[2]}, ".")

	_, err = iss.Verify(spliced)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestVerifyRejectsMalformedTokens(t *testing.T) {
	iss := newIssuer(t, nil)

	for _, raw := range []string{"", "abc", "a.b.c", "a.b"} {
		_, err := iss.Verify(raw)
		require.ErrorIs(t, err, jwtx.ErrMalformed, raw)
	}
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	claims := jwtx.NewSessionClaims("acc-1", exampleIssuer, time.Hour, time.Now())
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = newIssuer(t, nil).Verify(token)
	require.Error(t, err)
}

func TestVerifyRejectsTokenWithoutExpiry(t *testing.T) {
	claims := jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "acc-1", Issuer: exampleIssuer}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = newIssuer(t, nil).Verify(token)
	require.ErrorIs(t, err, jwtx.ErrMalformed)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	other, err := jwtx.NewTokenIssuer(jwtx.TokenIssuerOptions{Secret: testSecret, Issuer: "someone-else"})
	require.NoError(t, err)

	token, err := other.Issue("acc-1")
	require.NoError(t, err)

	_, err = newIssuer(t, nil).Verify(token)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestNewTokenIssuerRejectsShortSecret(t *testing.T) {
	_, err := jwtx.NewTokenIssuer(jwtx.TokenIssuerOptions{Secret: []byte("short")})
	require.ErrorIs(t, err, jwtx.ErrWeakSecret)
}
