package accountsdk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
)

// AvatarField is the multipart field PATCH /avatar reads.
const AvatarField = "avatar"

// Session performs authenticated requests with a bearer token.
// It is safe for concurrent use.
type Session struct {
	client *Client

	mu    sync.RWMutex
	token string
	user  UserResponse
}

// Token returns the bearer token.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the account returned at login, if the session came from Login.
func (s *Session) User() UserResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Current fetches the caller's email and subscription.
func (s *Session) Current(ctx context.Context) (*UserResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/current", nil, nil)
	if err != nil {
		return nil, err
	}
	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout ends the session server-side. The token is unusable afterwards.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/logout", nil, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// UpdateAvatar uploads image as the caller's avatar.
func (s *Session) UpdateAvatar(ctx context.Context, filename string, image io.Reader) (*AvatarResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(AvatarField, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("failed to copy image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPatch, "/avatar", &buf, map[string]string{
		"Content-Type": mw.FormDataContentType(),
	})
	if err != nil {
		return nil, err
	}
	var out AvatarResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
