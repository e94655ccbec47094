package upload

import (
	"chat-sync/errors"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

var png = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

func TestCloudinaryUploader_Upload(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal(http.MethodPost, r.Method)
		req.NoError(r.ParseMultipartForm(1 << 20))
		req.Equal("avatars", r.FormValue("upload_preset"))

		file, header, err := r.FormFile("file")
		req.NoError(err)
		defer file.Close()
		req.Equal("me.png", header.Filename)
		content, err := io.ReadAll(file)
		req.NoError(err)
		req.Equal(png, content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"secure_url":"https://img.example/me.png","public_id":"me"}`))
	}))
	defer server.Close()

	uploader := NewCloudinaryUploader(log, server.Client(), server.URL, "avatars", 0)
	url, err := uploader.Upload(context.Background(), "/tmp/me.png", png)
	req.NoError(err)
	req.Equal("https://img.example/me.png", url)
}

func TestCloudinaryUploader_RejectsNonPicture(t *testing.T) {
	req := require.New(t)
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	uploader := NewCloudinaryUploader(slog.Default(), server.Client(), server.URL, "avatars", 0)
	_, err := uploader.Upload(context.Background(), "notes.txt", []byte("just some text"))
	req.ErrorIs(err, errors.ErrInvalidImage)

	uploader = NewCloudinaryUploader(slog.Default(), server.Client(), server.URL, "avatars", 4)
	_, err = uploader.Upload(context.Background(), "me.png", png)
	req.ErrorIs(err, errors.ErrInvalidImage)
	req.Zero(hits.Load())
}

func TestCloudinaryUploader_HostFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"missing url", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"public_id":"me"}`))
		}},
		{"garbage", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()
			uploader := NewCloudinaryUploader(slog.Default(), server.Client(), server.URL, "avatars", 0)
			_, err := uploader.Upload(context.Background(), "me.png", png)
			require.ErrorIs(t, err, errors.ErrUploadFailed)
		})
	}
}
