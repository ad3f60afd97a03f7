package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/mailx"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an unverified account and mails the link", func(t *testing.T) {
		h := newHarness(t)
		email := gofakeit.Email()

		acc, err := h.svc.Register(ctx, service.RegisterInput{Email: "  " + email + " ", Password: "s3cret!"})
		require.NoError(t, err)
		require.Equal(t, domain.NormalizeEmail(email), acc.Email)
		require.Equal(t, domain.SubscriptionStarter, acc.Subscription)
		require.Equal(t, domain.DefaultAvatarURL(email), acc.AvatarURL)
		require.False(t, acc.Verified)
		require.NotNil(t, acc.VerificationToken)
		require.GreaterOrEqual(t, len(*acc.VerificationToken), 22, "at least 128 bits")
		require.NotEqual(t, "s3cret!", acc.PasswordHash)

		env := h.mail.last(t)
		assert.Equal(t, acc.Email, env.To)
		assert.Equal(t, "Verify email", env.Subject)
		assert.Contains(t, env.HTML, testBaseURL+"/verify/"+*acc.VerificationToken)
		assert.Contains(t, env.Text, testBaseURL+"/verify/"+*acc.VerificationToken)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.svc.Register(ctx, service.RegisterInput{Email: "dup@example.com", Password: "pw"})
		require.NoError(t, err)

		_, err = h.svc.Register(ctx, service.RegisterInput{Email: "DUP@example.com", Password: "pw2"})
		requireKind(t, err, service.ErrConflict, service.MsgEmailInUse)

		n, err := h.store.Accounts().CountAccounts(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
		h.mail.AssertNumberOfCalls(t, "Send", 1)
	})

	t.Run("tokens differ between accounts", func(t *testing.T) {
		h := newHarness(t)
		a, err := h.svc.Register(ctx, service.RegisterInput{Email: "a@example.com", Password: "pw"})
		require.NoError(t, err)
		b, err := h.svc.Register(ctx, service.RegisterInput{Email: "b@example.com", Password: "pw"})
		require.NoError(t, err)
		require.NotEqual(t, *a.VerificationToken, *b.VerificationToken)
		require.NotEqual(t, a.ID, b.ID)
	})

	t.Run("dispatch failure aborts creation", func(t *testing.T) {
		h := newHarness(t)
		h.mail.ExpectedCalls = nil
		h.mail.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

		_, err := h.svc.Register(ctx, service.RegisterInput{Email: "x@example.com", Password: "pw"})
		requireKind(t, err, service.ErrDispatchFailure, service.MsgMailNotSent)

		n, err := h.store.Accounts().CountAccounts(ctx)
		require.NoError(t, err)
		require.Zero(t, n)
	})

	t.Run("subscription", func(t *testing.T) {
		h := newHarness(t)
		acc, err := h.svc.Register(ctx, service.RegisterInput{Email: "pro@example.com", Password: "pw", Subscription: "pro"})
		require.NoError(t, err)
		require.Equal(t, domain.SubscriptionPro, acc.Subscription)

		_, err = h.svc.Register(ctx, service.RegisterInput{Email: "gold@example.com", Password: "pw", Subscription: "gold"})
		requireKind(t, err, service.ErrBadRequest, service.MsgInvalidSubscription)
	})

	t.Run("missing fields", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.svc.Register(ctx, service.RegisterInput{Password: "pw"})
		require.ErrorIs(t, err, service.ErrBadRequest)
		_, err = h.svc.Register(ctx, service.RegisterInput{Email: "a@example.com"})
		require.ErrorIs(t, err, service.ErrBadRequest)
		h.mail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	acc, err := h.svc.Register(ctx, service.RegisterInput{Email: "v@example.com", Password: "pw"})
	require.NoError(t, err)
	token := *acc.VerificationToken

	verified, err := h.svc.Verify(ctx, token)
	require.NoError(t, err)
	require.True(t, verified.Verified)
	require.Nil(t, verified.VerificationToken)

	_, err = h.svc.Verify(ctx, token)
	requireKind(t, err, service.ErrNotFound, service.MsgNotFound)

	_, err = h.svc.Verify(ctx, "never-issued")
	requireKind(t, err, service.ErrNotFound, service.MsgNotFound)

	_, err = h.svc.Verify(ctx, "")
	require.ErrorIs(t, err, service.ErrNotFound)
}

// noTxStore refuses to open transactions.
type noTxStore struct {
	store.Store
	err error
}

func (s noTxStore) WithTx(context.Context, func(store.Tx) error) error { return s.err }

func TestVerifyRunsInTransaction(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	acc, err := h.svc.Register(ctx, service.RegisterInput{Email: "tx@example.com", Password: "pw"})
	require.NoError(t, err)

	busy := errors.New("database is locked")
	svc := *h.svc
	svc.Store = noTxStore{Store: h.store, err: busy}

	_, err = svc.Verify(ctx, *acc.VerificationToken)
	require.ErrorIs(t, err, busy)
	_, ok := service.AsError(err)
	require.False(t, ok, "infrastructure errors are not typed failures")

	got, err := h.store.Accounts().GetAccountByID(ctx, acc.ID)
	require.NoError(t, err)
	require.False(t, got.Verified)
	require.NotNil(t, got.VerificationToken)

	_, err = h.svc.Verify(ctx, *acc.VerificationToken)
	require.NoError(t, err)
}

func TestResendVerification(t *testing.T) {
	ctx := context.Background()

	t.Run("resends the same token", func(t *testing.T) {
		h := newHarness(t)
		acc, err := h.svc.Register(ctx, service.RegisterInput{Email: "r@example.com", Password: "pw"})
		require.NoError(t, err)

		require.NoError(t, h.svc.ResendVerification(ctx, "R@example.com"))
		h.mail.AssertNumberOfCalls(t, "Send", 2)
		require.Equal(t, *acc.VerificationToken, h.tokenFromMail(t))
	})

	t.Run("missing email", func(t *testing.T) {
		h := newHarness(t)
		err := h.svc.ResendVerification(ctx, "   ")
		requireKind(t, err, service.ErrBadRequest, service.MsgMissingEmail)
	})

	t.Run("unknown email", func(t *testing.T) {
		h := newHarness(t)
		err := h.svc.ResendVerification(ctx, "ghost@example.com")
		require.ErrorIs(t, err, service.ErrNotFound)
		h.mail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("already verified sends nothing", func(t *testing.T) {
		h := newHarness(t)
		h.registerVerified(t, "done@example.com", "pw")
		h.mail.AssertNumberOfCalls(t, "Send", 1)

		err := h.svc.ResendVerification(ctx, "done@example.com")
		requireKind(t, err, service.ErrBadRequest, service.MsgAlreadyVerified)
		h.mail.AssertNumberOfCalls(t, "Send", 1)
	})

	t.Run("dispatch failure surfaces", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.svc.Register(ctx, service.RegisterInput{Email: "f@example.com", Password: "pw"})
		require.NoError(t, err)

		h.mail.ExpectedCalls = nil
		h.mail.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down"))
		err = h.svc.ResendVerification(ctx, "f@example.com")
		require.ErrorIs(t, err, service.ErrDispatchFailure)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("unverified account gets no session", func(t *testing.T) {
		h := newHarness(t)
		acc, err := h.svc.Register(ctx, service.RegisterInput{Email: "u@example.com", Password: "pw"})
		require.NoError(t, err)

		_, err = h.svc.Login(ctx, "u@example.com", "pw")
		requireKind(t, err, service.ErrUnauthorized, service.MsgNotVerified)

		got, err := h.store.Accounts().GetAccountByID(ctx, acc.ID)
		require.NoError(t, err)
		require.False(t, got.HasSession())
		require.Equal(t, acc.UpdatedAt, got.UpdatedAt, "account not mutated")
	})

	t.Run("verified account gets a 23h token", func(t *testing.T) {
		h := newHarness(t)
		id := h.registerVerified(t, "ok@example.com", "pw")

		sess, err := h.svc.Login(ctx, "OK@example.com", "pw")
		require.NoError(t, err)
		require.NotEmpty(t, sess.Token)
		require.Equal(t, id, sess.Account.ID)
		require.True(t, sess.Account.HasSession())
		require.True(t, cryptox.MatchFingerprint(sess.Token, *sess.Account.SessionFingerprint))

		claims, err := h.tokens.Parse(sess.Token)
		require.NoError(t, err)
		require.Equal(t, id, claims.Subject)
		require.WithinDuration(t, h.now.Add(23*time.Hour), claims.ExpiresAt.Time, time.Second)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		h := newHarness(t)
		h.registerVerified(t, "same@example.com", "pw")

		_, errBadPw := h.svc.Login(ctx, "same@example.com", "nope")
		_, errUnknown := h.svc.Login(ctx, "who@example.com", "pw")

		requireKind(t, errBadPw, service.ErrUnauthorized, service.MsgInvalidCredentials)
		requireKind(t, errUnknown, service.ErrUnauthorized, service.MsgInvalidCredentials)
		require.Equal(t, errBadPw.Error(), errUnknown.Error())
	})
}

func TestAuthenticateAndLogout(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.registerVerified(t, "s@example.com", "pw")

	sess, err := h.svc.Login(ctx, "s@example.com", "pw")
	require.NoError(t, err)

	acc, err := h.svc.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	require.Equal(t, id, acc.ID)

	cur, err := h.svc.Current(ctx, acc.ID)
	require.NoError(t, err)
	require.Equal(t, "s@example.com", cur.Email)
	require.Equal(t, domain.SubscriptionStarter, cur.Subscription)

	t.Run("garbage token", func(t *testing.T) {
		_, err := h.svc.Authenticate(ctx, "not.a.jwt")
		requireKind(t, err, service.ErrUnauthorized, service.MsgNotAuthorized)
		_, err = h.svc.Authenticate(ctx, "")
		require.ErrorIs(t, err, service.ErrUnauthorized)
	})

	t.Run("newer login replaces the session", func(t *testing.T) {
		second, err := h.svc.Login(ctx, "s@example.com", "pw")
		require.NoError(t, err)

		_, err = h.svc.Authenticate(ctx, sess.Token)
		require.ErrorIs(t, err, service.ErrUnauthorized)
		_, err = h.svc.Authenticate(ctx, second.Token)
		require.NoError(t, err)
		sess = second
	})

	t.Run("logout revokes the token before expiry", func(t *testing.T) {
		require.NoError(t, h.svc.Logout(ctx, id))

		_, err := h.svc.Authenticate(ctx, sess.Token)
		requireKind(t, err, service.ErrUnauthorized, service.MsgNotAuthorized)

		// Still a well-formed, unexpired JWT: the store rejected it.
		sub, err := h.tokens.Verify(sess.Token)
		require.NoError(t, err)
		require.Equal(t, id, sub)
	})

	t.Run("logout of unknown account", func(t *testing.T) {
		require.ErrorIs(t, h.svc.Logout(ctx, "missing"), service.ErrUnauthorized)
	})
}

func TestVerificationMailerLink(t *testing.T) {
	m := &service.VerificationMailer{BaseURL: "https://accounts.example.com/", Dispatcher: mailx.LogDispatcher{}}
	require.Equal(t, "https://accounts.example.com/verify/abc_-1", m.Link("abc_-1"))

	env, err := m.Envelope("a@example.com", "abc")
	require.NoError(t, err)
	require.Contains(t, env.HTML, `href="https://accounts.example.com/verify/abc"`)
	require.NoError(t, env.Validate())
}
