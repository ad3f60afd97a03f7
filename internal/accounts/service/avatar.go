package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/imagex"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
	"github.com/aussiebroadwan/accounts/pkg/storagex"
)

// Normalizer rewrites an image file in place and reports the extension of the
// format it wrote. imagex.Resizer implements it.
type Normalizer interface {
	NormalizeFile(path string) (string, error)
}

// Upload is a received file already spooled to a temp path.
type Upload struct {
	TempPath     string
	OriginalName string
}

// AvatarService replaces an account's avatar image.
type AvatarService struct {
	Store      store.Store
	Normalizer Normalizer
	Storage    storagex.Storage
}

// UpdateAvatar normalises the upload, moves it into storage and records the
// new URL. The temp file is always consumed. When the store update fails a
// newly placed file is removed again so avatarURL never points at an orphan.
func (s *AvatarService) UpdateAvatar(ctx context.Context, accountID string, up Upload) (string, error) {
	l := slogx.FromContext(ctx)

	if up.TempPath == "" {
		return "", fail(ErrBadRequest, MsgMissingAvatar)
	}
	defer func() {
		if err := os.Remove(up.TempPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			l.Warn("temp upload not removed", "path", up.TempPath, "err", err)
		}
	}()

	original := filepath.Base(strings.TrimSpace(up.OriginalName))
	if original == "" || original == "." || original == string(filepath.Separator) {
		return "", fail(ErrBadRequest, MsgMissingAvatar)
	}

	prev, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", fail(ErrNotFound, MsgNotFound)
		}
		return "", fmt.Errorf("lookup account: %w", err)
	}

	ext, err := s.Normalizer.NormalizeFile(up.TempPath)
	if err != nil {
		if errors.Is(err, imagex.ErrUnsupportedFormat) {
			l.Info("avatar rejected", "account_id", accountID, "err", err)
			return "", failWith(ErrUnsupportedFormat, MsgUnsupportedImage, err)
		}
		return "", fmt.Errorf("normalize avatar: %w", err)
	}

	rel, err := s.Storage.Put(ctx, up.TempPath, storagex.AvatarName(accountID, original, ext))
	if err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}

	if _, err := s.Store.Accounts().SetAvatarURL(ctx, accountID, rel); err != nil {
		// Same name as before: the file is the account's current avatar, keep it.
		if rel != prev.AvatarURL {
			if rmErr := s.Storage.Remove(ctx, rel); rmErr != nil {
				l.Error("orphaned avatar not removed", "path", rel, "err", rmErr)
			}
		}
		if errors.Is(err, store.ErrNotFound) {
			return "", fail(ErrNotFound, MsgNotFound)
		}
		return "", fmt.Errorf("record avatar: %w", err)
	}

	l.Info("avatar updated", slog.String("account_id", accountID), slog.String("avatar_url", rel))
	return rel, nil
}
