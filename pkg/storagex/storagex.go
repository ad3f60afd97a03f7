// Package storagex places processed files into durable, publicly served storage.
package storagex

import (
	"context"
	"errors"
	"mime"
	"path"
	"strings"
)

// AvatarPrefix is the public path segment under which avatars are served.
const AvatarPrefix = "avatars"

// ErrInvalidName is returned for object names that would escape the prefix.
var ErrInvalidName = errors.New("storagex: invalid object name")

// Storage moves a local temp file into durable storage.
type Storage interface {
	// Put moves the file at tempPath to name and returns the served relative path
	// (for example "avatars/<name>"). tempPath is consumed on success.
	Put(ctx context.Context, tempPath, name string) (string, error)
	// Remove deletes a previously stored object by its served relative path.
	Remove(ctx context.Context, relPath string) error
}

// AvatarName derives the stored file name for an owner and an uploaded file
// name. Characters outside [A-Za-z0-9._-] become '_'. When ext is set and
// names a different media type than the original extension, the original
// extension is replaced by ext.
func AvatarName(ownerID, originalName, ext string) string {
	base := path.Base(strings.ReplaceAll(originalName, "\\", "/"))
	if ext != "" {
		if cur := path.Ext(base); cur == "" || mime.TypeByExtension(cur) != mime.TypeByExtension(ext) {
			base = strings.TrimSuffix(base, cur) + ext
		}
	}
	return ownerID + "_" + strings.Map(safeRune, base)
}

func safeRune(r rune) rune {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return r
	case r == '.', r == '-', r == '_':
		return r
	}
	return '_'
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\") {
		return ErrInvalidName
	}
	return nil
}

func servedPath(name string) string {
	return AvatarPrefix + "/" + name
}

func nameFromServed(relPath string) (string, error) {
	name, ok := strings.CutPrefix(relPath, AvatarPrefix+"/")
	if !ok {
		return "", ErrInvalidName
	}
	return name, checkName(name)
}
