package storage_test

import (
	"bytes"
	"catalog_server/lib"
	"catalog_server/storage"
	"catalog_server/structs"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	gifBytes = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
)

func uploadsConfig() *structs.UploadsConfig {
	return &structs.UploadsConfig{
		Dir:          "uploads",
		PublicPrefix: "/uploads",
		FieldName:    "images",
		MaxFileBytes: 5 << 20,
		MaxFiles:     5,
		AllowedTypes: []string{"jpeg", "jpg", "png", "gif"},
	}
}

func upload(name string, content []byte) structs.ImageUpload {
	return structs.ImageUpload{
		FieldName: "images",
		FileName:  name,
		Size:      int64(len(content)),
		Content:   bytes.NewReader(content),
	}
}

func TestGenerateFilename(t *testing.T) {
	name := storage.GenerateFilename("images", "Photo.PNG")

	assert.Regexp(t, regexp.MustCompile(`^images-\d+-\d+\.png$`), name)
	assert.NotEqual(t, name, storage.GenerateFilename("images", "Photo.PNG"))
}

func TestValidateUpload(t *testing.T) {
	cfg := uploadsConfig()

	t.Run("accepts png", func(t *testing.T) {
		u := upload("a.png", pngBytes)
		require.NoError(t, storage.ValidateUpload(u, cfg))

		// content must be rewound
		pos, err := u.Content.Seek(0, 1)
		require.NoError(t, err)
		assert.Zero(t, pos)
	})

	t.Run("accepts gif", func(t *testing.T) {
		assert.NoError(t, storage.ValidateUpload(upload("a.gif", gifBytes), cfg))
	})

	t.Run("rejects wrong extension", func(t *testing.T) {
		err := storage.ValidateUpload(upload("a.txt", pngBytes), cfg)
		var ue *lib.UploadError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, "Only image files (jpeg, jpg, png, gif) are allowed!", ue.Message)
	})

	t.Run("rejects spoofed content", func(t *testing.T) {
		err := storage.ValidateUpload(upload("a.png", []byte("just some text")), cfg)
		var ue *lib.UploadError
		assert.ErrorAs(t, err, &ue)
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		u := upload("a.png", pngBytes)
		u.Size = cfg.MaxFileBytes + 1
		err := storage.ValidateUpload(u, cfg)
		var ue *lib.UploadError
		assert.ErrorAs(t, err, &ue)
	})
}

func TestLocalStore(t *testing.T) {
	// Setup
	root := t.TempDir()
	store, err := storage.NewLocal(root, "/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	// Execute
	ref, err := store.Save(ctx, "images-1-2.png", bytes.NewReader(pngBytes))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "/uploads/images-1-2.png", ref)
	assert.True(t, store.Owns(ref))

	data, err := os.ReadFile(filepath.Join(root, "images-1-2.png"))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)

	require.NoError(t, store.Delete(ctx, ref))
	_, err = os.Stat(filepath.Join(root, "images-1-2.png"))
	assert.True(t, os.IsNotExist(err))

	// deleting again is fine
	assert.NoError(t, store.Delete(ctx, ref))
}

func TestLocalStore_IgnoresForeignRefs(t *testing.T) {
	store, err := storage.NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	assert.False(t, store.Owns("https://example.com/images/ps5-1.jpg"))
	assert.False(t, store.Owns("/uploads/../etc/passwd"))
	assert.False(t, store.Owns("/uploads/"))
	assert.NoError(t, store.Delete(context.Background(), "https://example.com/images/ps5-1.jpg"))
}

func TestLocalStore_SaveRefusesOverwrite(t *testing.T) {
	store, err := storage.NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Save(ctx, "same.png", bytes.NewReader(pngBytes))
	require.NoError(t, err)
	_, err = store.Save(ctx, "same.png", bytes.NewReader(pngBytes))
	assert.Error(t, err)
}

func TestResolveURL(t *testing.T) {
	assert.Equal(t, "http://localhost:5000/uploads/a.png", storage.ResolveURL("http://localhost:5000/", "/uploads/a.png"))
	assert.Equal(t, "https://cdn.example.com/a.png", storage.ResolveURL("http://localhost:5000", "https://cdn.example.com/a.png"))
	assert.Equal(t, "", storage.ResolveURL("http://localhost:5000", ""))
}

func TestStripBase(t *testing.T) {
	assert.Equal(t, "/uploads/a.png", storage.StripBase("http://localhost:5000", "http://localhost:5000/uploads/a.png"))
	assert.Equal(t, "https://cdn.example.com/a.png", storage.StripBase("http://localhost:5000", "https://cdn.example.com/a.png"))
	assert.True(t, strings.HasPrefix(storage.StripBase("", "/uploads/a.png"), "/uploads"))
}
