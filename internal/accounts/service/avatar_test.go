package service_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/imagex"
	"github.com/aussiebroadwan/accounts/pkg/storagex"
)

func writeTempPNG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{G: 255, A: 255})
	f, err := os.CreateTemp(dir, "upload-*")
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return f.Name()
}

func newAvatarService(t *testing.T, h *harness, st store.Store) (*service.AvatarService, *storagex.Local) {
	t.Helper()
	local, err := storagex.NewLocal(t.TempDir())
	require.NoError(t, err)
	if st == nil {
		st = h.store
	}
	return &service.AvatarService{
		Store:      st,
		Normalizer: imagex.AvatarResizer,
		Storage:    local,
	}, local
}

func TestUpdateAvatar(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.registerVerified(t, "pic@example.com", "pw")
	avatars, local := newAvatarService(t, h, nil)
	tmp := t.TempDir()

	t.Run("valid image is resized and recorded", func(t *testing.T) {
		src := writeTempPNG(t, tmp, 1024, 77)

		url, err := avatars.UpdateAvatar(ctx, id, service.Upload{TempPath: src, OriginalName: "me.png"})
		require.NoError(t, err)
		require.Equal(t, "avatars/"+id+"_me.png", url)

		w, hgt, err := imagex.Dimensions(filepath.Join(local.Dir(), id+"_me.png"))
		require.NoError(t, err)
		require.Equal(t, 250, w)
		require.Equal(t, 250, hgt)

		acc, err := h.store.Accounts().GetAccountByID(ctx, id)
		require.NoError(t, err)
		require.Equal(t, url, acc.AvatarURL)

		_, err = os.Stat(src)
		require.ErrorIs(t, err, os.ErrNotExist, "temp upload consumed")
	})

	t.Run("corrupt file leaves avatar unchanged", func(t *testing.T) {
		src := filepath.Join(tmp, "corrupt")
		require.NoError(t, os.WriteFile(src, []byte("GIF89a but not really"), 0o600))

		_, err := avatars.UpdateAvatar(ctx, id, service.Upload{TempPath: src, OriginalName: "bad.gif"})
		requireKind(t, err, service.ErrUnsupportedFormat, service.MsgUnsupportedImage)

		acc, err := h.store.Accounts().GetAccountByID(ctx, id)
		require.NoError(t, err)
		require.Equal(t, "avatars/"+id+"_me.png", acc.AvatarURL)

		_, err = os.Stat(filepath.Join(local.Dir(), id+"_bad.gif"))
		require.ErrorIs(t, err, os.ErrNotExist)
		_, err = os.Stat(src)
		require.ErrorIs(t, err, os.ErrNotExist, "temp upload removed on failure")
	})

	t.Run("client path components are dropped", func(t *testing.T) {
		src := writeTempPNG(t, tmp, 10, 10)
		url, err := avatars.UpdateAvatar(ctx, id, service.Upload{TempPath: src, OriginalName: "../../etc/pic.png"})
		require.NoError(t, err)
		require.Equal(t, "avatars/"+id+"_pic.png", url)
	})

	t.Run("stored name follows the encoded format", func(t *testing.T) {
		src := writeTempPNG(t, tmp, 30, 30)
		url, err := avatars.UpdateAvatar(ctx, id, service.Upload{TempPath: src, OriginalName: "snap #2.webp"})
		require.NoError(t, err)
		require.Equal(t, "avatars/"+id+"_snap__2.png", url)

		_, err = os.Stat(filepath.Join(local.Dir(), id+"_snap__2.png"))
		require.NoError(t, err)
	})

	t.Run("oversized dimensions are rejected before decode", func(t *testing.T) {
		strict := &service.AvatarService{
			Store:      h.store,
			Normalizer: imagex.Resizer{Width: 250, Height: 250, MaxPixels: 100},
			Storage:    local,
		}
		src := writeTempPNG(t, tmp, 40, 40)

		_, err := strict.UpdateAvatar(ctx, id, service.Upload{TempPath: src, OriginalName: "big.png"})
		requireKind(t, err, service.ErrUnsupportedFormat, service.MsgUnsupportedImage)

		_, err = os.Stat(filepath.Join(local.Dir(), id+"_big.png"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("missing upload", func(t *testing.T) {
		_, err := avatars.UpdateAvatar(ctx, id, service.Upload{})
		requireKind(t, err, service.ErrBadRequest, service.MsgMissingAvatar)
	})

	t.Run("unknown account", func(t *testing.T) {
		src := writeTempPNG(t, tmp, 10, 10)
		_, err := avatars.UpdateAvatar(ctx, "missing", service.Upload{TempPath: src, OriginalName: "x.png"})
		require.ErrorIs(t, err, service.ErrNotFound)
	})
}

// failingAvatarStore fails SetAvatarURL, as if the account vanished mid-update.
type failingAvatarStore struct {
	store.Store
	err error
}

func (s failingAvatarStore) Accounts() store.Accounts {
	return failingAccounts{Accounts: s.Store.Accounts(), err: s.err}
}

type failingAccounts struct {
	store.Accounts
	err error
}

func (a failingAccounts) SetAvatarURL(context.Context, string, string) (domain.Account, error) {
	return domain.Account{}, a.err
}

func TestUpdateAvatarStoreFailureRemovesFile(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	id := h.registerVerified(t, "gone@example.com", "pw")

	t.Run("not found", func(t *testing.T) {
		avatars, local := newAvatarService(t, h, failingAvatarStore{Store: h.store, err: store.ErrNotFound})
		src := writeTempPNG(t, t.TempDir(), 40, 40)

		_, err := avatars.UpdateAvatar(ctx, id, service.Upload{TempPath: src, OriginalName: "new.png"})
		require.ErrorIs(t, err, service.ErrNotFound)

		_, err = os.Stat(filepath.Join(local.Dir(), id+"_new.png"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("database error", func(t *testing.T) {
		boom := errors.New("database is locked")
		avatars, local := newAvatarService(t, h, failingAvatarStore{Store: h.store, err: boom})
		src := writeTempPNG(t, t.TempDir(), 40, 40)

		_, err := avatars.UpdateAvatar(ctx, id, service.Upload{TempPath: src, OriginalName: "new.png"})
		require.ErrorIs(t, err, boom)
		_, ok := service.AsError(err)
		require.False(t, ok, "infrastructure errors are not typed failures")

		_, err = os.Stat(filepath.Join(local.Dir(), id+"_new.png"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}
