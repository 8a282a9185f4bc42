package blob

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/artlens/guide/backend/internal/config"
)

var dataURLPattern = regexp.MustCompile(`^data:(.*?);base64,(.*)$`)

// Uploader stores an image and returns its public URL. Callers treat upload
// failures as non-fatal: they log the error and carry on without a URL.
type Uploader interface {
	UploadDataURL(ctx context.Context, dataURL, keyPrefix string) (string, error)
}

// HTTPUploader PUTs objects to an S3-style endpoint with public-read access.
type HTTPUploader struct {
	endpoint      string
	token         string
	publicBaseURL string
	client        *http.Client
}

// New builds an uploader from configuration.
func New(cfg config.BlobConfig) *HTTPUploader {
	return &HTTPUploader{
		endpoint:      strings.TrimRight(cfg.Endpoint, "/"),
		token:         cfg.Token,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		client:        &http.Client{Timeout: 30 * time.Second},
	}
}

// UploadDataURL decodes a base64 data URL and stores it under keyPrefix.
func (u *HTTPUploader) UploadDataURL(ctx context.Context, dataURL, keyPrefix string) (string, error) {
	match := dataURLPattern.FindStringSubmatch(dataURL)
	if match == nil {
		return "", fmt.Errorf("not a base64 data URL")
	}

	mimeType := match[1]
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	payload, err := base64.StdEncoding.DecodeString(match[2])
	if err != nil {
		return "", fmt.Errorf("decode image payload: %w", err)
	}

	objectKey := fmt.Sprintf("%s/%d.%s", keyPrefix, time.Now().UnixMilli(), extensionFromMime(mimeType))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u.endpoint+"/"+objectKey, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+u.token)
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("x-amz-acl", "public-read")

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("upload image: unexpected status %d", resp.StatusCode)
	}

	return u.publicBaseURL + "/" + objectKey, nil
}

func extensionFromMime(mimeType string) string {
	parts := strings.SplitN(mimeType, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "bin"
	}
	if strings.Contains(parts[1], "jpeg") {
		return "jpg"
	}
	return parts[1]
}
