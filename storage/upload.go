package storage

import (
	"catalog_server/lib"
	"catalog_server/structs"
	"fmt"
	"io"
	"math/rand/v2"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// GenerateFilename builds "<field>-<unix millis>-<random>.<ext>", keeping the original extension.
func GenerateFilename(field, original string) string {
	return fmt.Sprintf("%s-%d-%d%s",
		field,
		time.Now().UnixMilli(),
		rand.IntN(1_000_000_000),
		strings.ToLower(filepath.Ext(original)),
	)
}

// uploadTypeMessage renders the rejection message for the configured type list.
func uploadTypeMessage(allowed []string) string {
	return fmt.Sprintf("Only image files (%s) are allowed!", strings.Join(allowed, ", "))
}

// MaxFilesMessage is returned when a product would end up with too many images.
func MaxFilesMessage(max int) string {
	return fmt.Sprintf("You can upload a maximum of %d images.", max)
}

// ValidateUpload checks extension, sniffed content type and size of one file.
// The content is rewound so it can be saved afterwards.
func ValidateUpload(upload structs.ImageUpload, cfg *structs.UploadsConfig) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(upload.FileName)), ".")
	if !slices.Contains(cfg.AllowedTypes, ext) {
		return &lib.UploadError{Message: uploadTypeMessage(cfg.AllowedTypes)}
	}

	if cfg.MaxFileBytes > 0 && upload.Size > cfg.MaxFileBytes {
		return &lib.UploadError{Message: fmt.Sprintf("File %s is too large (max %d MB)", upload.FileName, cfg.MaxFileBytes>>20)}
	}

	if upload.Content == nil {
		return &lib.UploadError{Message: fmt.Sprintf("File %s is empty", upload.FileName)}
	}

	mtype, err := mimetype.DetectReader(upload.Content)
	if err != nil {
		return fmt.Errorf("failed to sniff %s: %w", upload.FileName, err)
	}
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind %s: %w", upload.FileName, err)
	}

	if !allowedMime(mtype.String(), cfg.AllowedTypes) {
		return &lib.UploadError{Message: uploadTypeMessage(cfg.AllowedTypes)}
	}
	return nil
}

func allowedMime(mime string, allowed []string) bool {
	mime, _, _ = strings.Cut(mime, ";")
	major, sub, ok := strings.Cut(mime, "/")
	if !ok || major != "image" {
		return false
	}
	return slices.Contains(allowed, sub)
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
