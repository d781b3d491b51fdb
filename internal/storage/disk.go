// Package storage saves uploaded images on the local filesystem or in an
// S3-compatible bucket and maps stored paths to public URLs.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/grocery_shop/internal/config"
)

const (
	DirGroceries  = "groceries"
	DirCategories = "categories"
	DirBanners    = "banners"
	DirProfiles   = "profiles"
)

type Disk interface {
	Put(ctx context.Context, path string, r io.Reader, contentType string) error
	Delete(ctx context.Context, path string) error
	// URL returns the public URL of path.
	URL(path string) string
	// PathFromURL is the inverse of URL. It reports false for URLs this disk did not issue.
	PathFromURL(url string) (string, bool)
}

func New(ctx context.Context, cfg config.Storage) (Disk, error) {
	switch cfg.Disk {
	case "", "local":
		return NewLocal(cfg.LocalRoot, cfg.LocalURL)
	case "s3":
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage: unknown disk %q", cfg.Disk)
	}
}

var allowedExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
}

var ErrUnsupportedType = fmt.Errorf("unsupported image type")

// FileName builds "<unix-ms>-<uuid><ext>" for an uploaded file.
func FileName(original string) (string, error) {
	ext := strings.ToLower(filepath.Ext(original))
	if _, ok := allowedExt[ext]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext), nil
}

// SaveUpload stores fh under dir and returns its public URL.
func SaveUpload(ctx context.Context, d Disk, dir string, fh *multipart.FileHeader) (string, error) {
	name, err := FileName(fh.Filename)
	if err != nil {
		return "", err
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("storage: open upload: %w", err)
	}
	defer f.Close()

	p := path.Join(dir, name)
	if err := d.Put(ctx, p, f, allowedExt[filepath.Ext(name)]); err != nil {
		return "", err
	}
	return d.URL(p), nil
}

// Remove deletes the file behind url when it belongs to d; foreign URLs
// (seeded /images paths, external links) are left alone.
func Remove(ctx context.Context, d Disk, url string) error {
	p, ok := d.PathFromURL(url)
	if !ok {
		return nil
	}
	return d.Delete(ctx, p)
}

func trimBase(base, url string) (string, bool) {
	prefix := strings.TrimRight(base, "/") + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	p := strings.TrimPrefix(url, prefix)
	if p == "" || strings.Contains(p, "..") {
		return "", false
	}
	return p, true
}
