package service

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadForm(t *testing.T, contentType string, body []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="cover.png"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func newTestStorage(t *testing.T) *StorageService {
	cfg := testConfig()
	cfg.UploadDir = t.TempDir()
	return NewStorageService(cfg, nopLog)
}

func TestStorageSave(t *testing.T) {
	svc := newTestStorage(t)
	header := uploadForm(t, "image/png", []byte("\x89PNG fake"))
	file, err := header.Open()
	require.NoError(t, err)
	defer file.Close()

	obj, err := svc.Save(BucketCovers, file, header)
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(obj.Name))
	assert.Equal(t, "http://portal.test/uploads/covers/"+obj.Name, obj.URL)

	data, err := os.ReadFile(filepath.Join(svc.cfg.UploadDir, "covers", obj.Name))
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG fake", string(data))

	require.NoError(t, svc.Remove(BucketCovers, obj.Name))
	require.NoError(t, svc.Remove(BucketCovers, obj.Name), "missing file is not an error")
	assert.Error(t, svc.Remove(BucketCovers, "../escape.png"))
}

func TestStorageRejects(t *testing.T) {
	svc := newTestStorage(t)

	header := uploadForm(t, "application/pdf", []byte("%PDF"))
	file, err := header.Open()
	require.NoError(t, err)
	defer file.Close()
	_, err = svc.Save(BucketAvatars, file, header)
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	big := uploadForm(t, "image/jpeg", bytes.Repeat([]byte("x"), 2<<20))
	bigFile, err := big.Open()
	require.NoError(t, err)
	defer bigFile.Close()
	_, err = svc.Save(BucketAvatars, bigFile, big)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestParseBucket(t *testing.T) {
	b, err := ParseBucket("personnel")
	require.NoError(t, err)
	assert.NotEmpty(t, b.WritePermissions())

	b, err = ParseBucket("avatars")
	require.NoError(t, err)
	assert.Empty(t, b.WritePermissions())

	_, err = ParseBucket("secrets")
	assert.ErrorIs(t, err, ErrUnknownBucket)
}
