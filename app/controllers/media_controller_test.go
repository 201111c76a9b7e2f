package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bantay-ph/bantay-api/internal/pkg/blobstore"
)

type stubBlobStore struct {
	uploads []string
	deletes []string
}

func (s *stubBlobStore) Upload(ctx context.Context, body io.Reader, folder, filename string) (*blobstore.UploadResult, error) {
	key := folder + "/" + filename
	s.uploads = append(s.uploads, key)
	return &blobstore.UploadResult{URL: "https://media.test/" + key, Key: key}, nil
}

func (s *stubBlobStore) Delete(ctx context.Context, key string) error {
	s.deletes = append(s.deletes, key)
	return nil
}

func newMediaApp(t *testing.T) (*fiber.App, *stubBlobStore) {
	t.Helper()
	store := &stubBlobStore{}
	mediaStore = store
	app := fiber.New()
	app.Post("/media", HandleUploadMedia)
	return app, store
}

func multipartUpload(t *testing.T, filename, folder string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("not really an image"))
	require.NoError(t, err)
	if folder != "" {
		require.NoError(t, writer.WriteField("folder", folder))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/media", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadMediaReturnsURLAndKey(t *testing.T) {
	app, store := newMediaApp(t)

	resp, err := app.Test(multipartUpload(t, "photo.jpg", "finders"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "finders/photo.jpg", body["key"])
	assert.Equal(t, "https://media.test/finders/photo.jpg", body["url"])
	assert.Equal(t, []string{"finders/photo.jpg"}, store.uploads)
}

func TestUploadMediaDefaultsToPersonsFolder(t *testing.T) {
	app, store := newMediaApp(t)

	resp, err := app.Test(multipartUpload(t, "photo.png", ""))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, []string{"persons/photo.png"}, store.uploads)
}

func TestUploadMediaRejectsUnsupportedType(t *testing.T) {
	app, store := newMediaApp(t)

	resp, err := app.Test(multipartUpload(t, "payload.exe", "persons"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, store.uploads)
}

func TestUploadMediaRejectsUnknownFolder(t *testing.T) {
	app, store := newMediaApp(t)

	resp, err := app.Test(multipartUpload(t, "photo.jpg", "secrets"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, store.uploads)
}

func TestUploadMediaRequiresFile(t *testing.T) {
	app, _ := newMediaApp(t)

	req := httptest.NewRequest(http.MethodPost, "/media", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
