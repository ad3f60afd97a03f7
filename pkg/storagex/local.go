package storagex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
)

// Local stores files under <Root>/avatars on the local filesystem.
type Local struct {
	root string
}

// NewLocal prepares the avatars directory under root.
func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(filepath.Join(root, AvatarPrefix), 0o755); err != nil {
		return nil, fmt.Errorf("storagex: create avatars dir: %w", err)
	}
	return &Local{root: root}, nil
}

// Dir returns the directory avatars are written to.
func (l *Local) Dir() string {
	return filepath.Join(l.root, AvatarPrefix)
}

// Put renames tempPath into the avatars directory. When the temp dir lives on a
// different filesystem the file is copied next to the target first so the final
// step is still a rename.
func (l *Local) Put(ctx context.Context, tempPath, name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dst := filepath.Join(l.Dir(), name)
	err := os.Rename(tempPath, dst)
	if errors.Is(err, syscall.EXDEV) {
		err = l.copyThenRename(tempPath, dst)
	}
	if err != nil {
		return "", fmt.Errorf("storagex: place %s: %w", name, err)
	}
	return servedPath(name), nil
}

// Remove deletes a stored avatar. Missing files are not an error.
func (l *Local) Remove(_ context.Context, relPath string) error {
	name, err := nameFromServed(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(l.Dir(), name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storagex: remove %s: %w", name, err)
	}
	return nil
}

func (l *Local) copyThenRename(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(l.Dir(), ".incoming-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return err
	}
	return os.Remove(src)
}
