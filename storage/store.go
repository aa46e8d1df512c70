// Package storage keeps uploaded product images and resolves image refs to public URLs.
//
// A ref is what gets stored on the product row: "/uploads/<file>" for the local driver, an
// absolute URL for the s3 driver. Refs not owned by the active store (seed data, foreign URLs)
// are passed through untouched.
package storage

import (
	"catalog_server/structs"
	"context"
	"fmt"
	"io"
	"strings"
)

// ImageStore is implemented by every image driver.
type ImageStore interface {
	// Save writes r under name and returns the ref to store on the product.
	Save(ctx context.Context, name string, r io.Reader) (string, error)

	// Delete removes the file behind ref. Missing files are not an error.
	Delete(ctx context.Context, ref string) error

	// Owns reports whether ref points into this store.
	Owns(ref string) bool
}

// New returns the driver selected in cfg.
func New(ctx context.Context, cfg *structs.Config) (ImageStore, error) {
	switch cfg.Storage.Driver {
	case "", "local":
		local, err := NewLocal(cfg.Uploads.Dir, cfg.Uploads.PublicPrefix)
		if err != nil {
			return nil, err
		}
		return local, nil
	case "s3":
		bucket, err := NewS3(ctx, cfg.Storage)
		if err != nil {
			return nil, err
		}
		return bucket, nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Storage.Driver)
	}
}

// ResolveURL turns a stored ref into a URL a browser can load. Absolute refs are returned as is.
func ResolveURL(baseURL, ref string) string {
	if ref == "" || isAbsolute(ref) {
		return ref
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(ref, "/")
}

// StripBase is the inverse of ResolveURL for refs that were resolved against baseURL.
func StripBase(baseURL, url string) string {
	base := strings.TrimRight(baseURL, "/")
	if base != "" && strings.HasPrefix(url, base+"/") {
		return strings.TrimPrefix(url, base)
	}
	return url
}

func isAbsolute(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
