package blob

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artlens/guide/backend/internal/config"
)

func TestUploadDataURL(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("fake image bytes"))

	var gotPath, gotAuth, gotContentType, gotACL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotACL = r.Header.Get("x-amz-acl")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	uploader := New(config.BlobConfig{
		Endpoint:      server.URL,
		Token:         "secret-token",
		PublicBaseURL: "https://cdn.example.com",
	})

	url, err := uploader.UploadDataURL(context.Background(), "data:image/jpeg;base64,"+payload, "labels")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/labels/"))
	assert.True(t, strings.HasSuffix(url, ".jpg"), "jpeg should map to .jpg, got %s", url)
	assert.True(t, strings.HasPrefix(gotPath, "/labels/"))
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "image/jpeg", gotContentType)
	assert.Equal(t, "public-read", gotACL)
}

func TestUploadDataURLRejectsMalformedInput(t *testing.T) {
	uploader := New(config.BlobConfig{Endpoint: "http://localhost:1", Token: "t", PublicBaseURL: "http://localhost:1"})

	_, err := uploader.UploadDataURL(context.Background(), "https://example.com/not-a-data-url.png", "labels")
	assert.Error(t, err)

	_, err = uploader.UploadDataURL(context.Background(), "data:image/png;base64,!!!not-base64!!!", "labels")
	assert.Error(t, err)
}

func TestUploadDataURLServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	uploader := New(config.BlobConfig{Endpoint: server.URL, Token: "t", PublicBaseURL: server.URL})

	_, err := uploader.UploadDataURL(context.Background(), "data:image/png;base64,QUFBQQ==", "labels")
	assert.Error(t, err)
}

func TestExtensionFromMime(t *testing.T) {
	assert.Equal(t, "jpg", extensionFromMime("image/jpeg"))
	assert.Equal(t, "png", extensionFromMime("image/png"))
	assert.Equal(t, "bin", extensionFromMime("application"))
}
