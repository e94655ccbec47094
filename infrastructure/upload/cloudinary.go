//go:generate go run go.uber.org/mock/mockgen -source=cloudinary.go -destination=../../mocks/mock_uploader.go -package=mocks
package upload

import (
	"bytes"
	"chat-sync/domain/mimetypes"
	"chat-sync/errors"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
)

// IUploader pushes a picture to the image host and returns its public URL.
type IUploader interface {
	Upload(ctx context.Context, filename string, content []byte) (string, error)
}

// CloudinaryUploader posts unsigned uploads to a Cloudinary-compatible
// endpoint: multipart form with "file" and "upload_preset", JSON answer
// carrying "secure_url".
type CloudinaryUploader struct {
	log      *slog.Logger
	client   *http.Client
	endpoint string
	preset   string
	maxBytes int
}

func NewCloudinaryUploader(log *slog.Logger, client *http.Client, endpoint, preset string, maxBytes int) *CloudinaryUploader {
	return &CloudinaryUploader{log: log, client: client, endpoint: endpoint, preset: preset, maxBytes: maxBytes}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

func (u *CloudinaryUploader) Upload(ctx context.Context, filename string, content []byte) (string, error) {
	if u.maxBytes > 0 && len(content) > u.maxBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", errors.ErrInvalidImage, len(content), u.maxBytes)
	}
	mt, ok := mimetypes.DetectPicture(content)
	if !ok {
		return "", fmt.Errorf("%w: %s is not a picture", errors.ErrInvalidImage, filename)
	}

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	part, err := form.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", err
	}
	if _, err = part.Write(content); err != nil {
		return "", err
	}
	if err = form.WriteField("upload_preset", u.preset); err != nil {
		return "", err
	}
	if err = form.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		u.log.Error("Image host unreachable", "endpoint", u.endpoint, "error", err)
		return "", fmt.Errorf("%w: %v", errors.ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		u.log.Warn("Image host refused upload", "status", resp.StatusCode, "body", string(raw))
		return "", fmt.Errorf("%w: status %d", errors.ErrUploadFailed, resp.StatusCode)
	}

	var decoded uploadResponse
	if err = json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrUploadFailed, err)
	}
	if decoded.SecureURL == "" {
		return "", fmt.Errorf("%w: no secure_url in response", errors.ErrUploadFailed)
	}
	u.log.Debug("Picture uploaded", "mime", mt, "url", decoded.SecureURL)
	return decoded.SecureURL, nil
}
