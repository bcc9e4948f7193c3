// Package storage persists uploaded images on local disk and exposes them as
// public URLs under /uploads.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStorage writes uploads under a base directory, one subdirectory per
// category (jobs, supports, profiles).
type LocalStorage struct {
	dir     string
	baseURL string
}

// NewLocalStorage constructs storage rooted at dir, serving under baseURL.
func NewLocalStorage(dir, baseURL string) *LocalStorage {
	return &LocalStorage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Save stores the uploaded file under category and returns its public URL.
func (s *LocalStorage) Save(category, field string, file *multipart.FileHeader) (string, error) {
	targetDir := filepath.Join(s.dir, category)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := uniqueName(field, file.Filename)
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(targetDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/uploads/%s/%s", s.baseURL, category, name), nil
}

// Remove deletes the artifact behind a previously returned URL. The file name
// is taken from the URL tail so stale base URLs still resolve.
func (s *LocalStorage) Remove(category, url string) error {
	name := path.Base(url)
	if name == "." || name == "/" || name == "" {
		return fmt.Errorf("invalid upload url %q", url)
	}
	return os.Remove(filepath.Join(s.dir, category, name))
}

// Dir returns the storage root, for static serving.
func (s *LocalStorage) Dir() string {
	return s.dir
}

func uniqueName(field, original string) string {
	ext := filepath.Ext(original)
	return fmt.Sprintf("%s-%d-%s%s", field, time.Now().UnixNano(), uuid.NewString(), ext)
}
