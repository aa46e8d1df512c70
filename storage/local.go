package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore writes images below root and serves them under publicPrefix.
type LocalStore struct {
	root         string // absolute root directory
	publicPrefix string // /uploads
}

func NewLocal(root, publicPrefix string) (*LocalStore, error) {
	// Make root absolute relative to working directory.
	if !filepath.IsAbs(root) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("storage/local: getwd: %w", err)
		}
		root = filepath.Join(cwd, root)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage/local: mkdir %s: %w", root, err)
	}
	return &LocalStore{
		root:         root,
		publicPrefix: "/" + strings.Trim(publicPrefix, "/"),
	}, nil
}

// Root is the directory served under the public prefix.
func (d *LocalStore) Root() string {
	return d.root
}

func (d *LocalStore) PublicPrefix() string {
	return d.publicPrefix
}

func (d *LocalStore) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name = filepath.Base(name)
	full := filepath.Join(d.root, name)

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage/local: create %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("storage/local: write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("storage/local: close %s: %w", name, err)
	}
	return path.Join(d.publicPrefix, name), nil
}

func (d *LocalStore) Delete(ctx context.Context, ref string) error {
	if !d.Owns(ref) {
		return nil
	}
	name := path.Base(ref)
	err := os.Remove(filepath.Join(d.root, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage/local: delete %s: %w", name, err)
	}
	return nil
}

func (d *LocalStore) Owns(ref string) bool {
	if !strings.HasPrefix(ref, d.publicPrefix+"/") {
		return false
	}
	name := strings.TrimPrefix(ref, d.publicPrefix+"/")
	return name != "" && !strings.Contains(name, "/") && name != ".." && name != "."
}
