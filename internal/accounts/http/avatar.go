package http

import (
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

// AvatarHandler receives avatar uploads, spools them to TempDir and hands
// them to the AvatarService.
type AvatarHandler struct {
	AvatarService  *service.AvatarService
	TempDir        string
	MaxUploadBytes int64
}

// ServeHTTP replaces the caller's avatar.
//
//	@Summary		Update avatar
//	@Description	Accepts any decodable image, resizes it to 250x250 and returns its public path.
//	@Tags			Session
//	@Security		BearerAuth
//	@Accept			mpfd
//	@Produce		json
//	@Param			avatar	formData	file	true	"Image file"
//	@Success		200		{object}	accountsdk.AvatarResponse
//	@Failure		400		{object}	accountsdk.ErrorResponse	"Missing file"
//	@Failure		401		{object}	accountsdk.ErrorResponse	"Not authorized"
//	@Failure		413		{object}	accountsdk.ErrorResponse	"Upload too large"
//	@Failure		415		{object}	accountsdk.ErrorResponse	"Unsupported image format"
//	@Router			/avatar [patch]
func (h *AvatarHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	acc, ok := principal(w, r)
	if !ok {
		return
	}
	log := slogx.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	file, header, err := r.FormFile(accountsdk.AvatarField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			accountsdk.NewAPIError(http.StatusRequestEntityTooLarge, "Upload too large").WriteError(w)
			return
		}
		accountsdk.NewAPIError(http.StatusBadRequest, service.MsgMissingAvatar).WriteError(w)
		return
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	tmpPath, err := h.spool(file)
	if err != nil {
		log.Error("failed to spool upload", "err", err)
		accountsdk.ErrInternal.WriteError(w)
		return
	}

	url, err := h.AvatarService.UpdateAvatar(r.Context(), acc.ID, service.Upload{
		TempPath:     tmpPath,
		OriginalName: header.Filename,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accountsdk.AvatarResponse{AvatarURL: url})
}

// spool copies the upload into a fresh file under TempDir.
func (h *AvatarHandler) spool(src io.Reader) (string, error) {
	f, err := os.CreateTemp(h.TempDir, "upload-*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, src); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
