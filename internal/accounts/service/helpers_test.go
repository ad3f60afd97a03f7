package service_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/sqlite"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
	"github.com/aussiebroadwan/accounts/pkg/mailx"
)

const (
	testSecret  = "0123456789abcdef0123456789abcdef-test"
	testIssuer  = "accounts-test"
	testBaseURL = "http://localhost:8080"
)

type dispatcherMock struct {
	mock.Mock

	mu   sync.Mutex
	sent []mailx.Envelope
}

func (m *dispatcherMock) Send(ctx context.Context, env mailx.Envelope) error {
	m.mu.Lock()
	m.sent = append(m.sent, env)
	m.mu.Unlock()
	return m.Called(ctx, env).Error(0)
}

func (m *dispatcherMock) last(t *testing.T) mailx.Envelope {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}

type harness struct {
	svc    *service.AccountService
	store  *sqlite.Store
	mail   *dispatcherMock
	tokens *jwtx.TokenIssuer
	now    time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	now := time.Now().UTC().Truncate(time.Second)
	tokens, err := jwtx.NewTokenIssuer(jwtx.TokenIssuerOptions{
		Secret: []byte(testSecret),
		Issuer: testIssuer,
		Now:    func() time.Time { return now },
	})
	require.NoError(t, err)

	d := &dispatcherMock{}
	d.On("Send", mock.Anything, mock.Anything).Return(nil).Maybe()

	return &harness{
		svc: &service.AccountService{
			Store:  st,
			Hasher: cryptox.Argon2Hasher{Pepper: "pepper"},
			Tokens: tokens,
			Mailer: &service.VerificationMailer{BaseURL: testBaseURL, Dispatcher: d},
		},
		store:  st,
		mail:   d,
		tokens: tokens,
		now:    now,
	}
}

// tokenFromMail pulls the verification token out of the last link sent.
func (h *harness) tokenFromMail(t *testing.T) string {
	t.Helper()
	env := h.mail.last(t)
	_, after, found := strings.Cut(env.Text, testBaseURL+"/verify/")
	require.True(t, found, "link missing from %q", env.Text)
	return strings.TrimSpace(after)
}

// registerVerified registers email and consumes its verification link.
func (h *harness) registerVerified(t *testing.T, email, password string) string {
	t.Helper()
	ctx := context.Background()
	acc, err := h.svc.Register(ctx, service.RegisterInput{Email: email, Password: password})
	require.NoError(t, err)
	_, err = h.svc.Verify(ctx, h.tokenFromMail(t))
	require.NoError(t, err)
	return acc.ID
}

func requireKind(t *testing.T, err error, kind error, msg string) {
	t.Helper()
	require.ErrorIs(t, err, kind)
	e, ok := service.AsError(err)
	require.True(t, ok, "expected *service.Error, got %T", err)
	require.Equal(t, msg, e.Message)
}
