package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
)

func TestWriteError(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"conflict", &service.Error{Kind: service.ErrConflict, Message: service.MsgEmailInUse}, http.StatusConflict, service.MsgEmailInUse},
		{"bad request", &service.Error{Kind: service.ErrBadRequest, Message: service.MsgMissingEmail}, http.StatusBadRequest, service.MsgMissingEmail},
		{"unauthorized", &service.Error{Kind: service.ErrUnauthorized, Message: service.MsgNotVerified}, http.StatusUnauthorized, service.MsgNotVerified},
		{"not found", &service.Error{Kind: service.ErrNotFound, Message: service.MsgNotFound}, http.StatusNotFound, service.MsgNotFound},
		{"unsupported", &service.Error{Kind: service.ErrUnsupportedFormat, Message: service.MsgUnsupportedImage, Err: errors.New("png: invalid format")}, http.StatusUnsupportedMediaType, service.MsgUnsupportedImage},
		{"dispatch", &service.Error{Kind: service.ErrDispatchFailure, Message: service.MsgMailNotSent}, http.StatusBadGateway, service.MsgMailNotSent},
		{"wrapped", fmt.Errorf("outer: %w", &service.Error{Kind: service.ErrConflict, Message: service.MsgEmailInUse}), http.StatusConflict, service.MsgEmailInUse},
		{"untyped", errors.New("disk on fire"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)

			require.Equal(t, tc.status, rec.Code)
			var body accountsdk.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.message, body.Message)
		})
	}
}

func TestWriteErrorHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), fmt.Errorf("lookup account: %w", errors.New("secret dsn in message")))

	assert.NotContains(t, rec.Body.String(), "secret dsn")
}
