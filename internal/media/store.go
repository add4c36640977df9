package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AssetStore is the durable image storage collaborator. Store must be
// idempotent for a given path: ingestion derives paths from the record id,
// so a retried submission overwrites rather than orphaning new copies.
type AssetStore interface {
	Store(data []byte, path string) (string, error)
	PublicURL(path string) string
}

// LocalStore writes assets under the media dir served at {base}/media/*.
type LocalStore struct {
	Dir     string
	BaseURL string
}

func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalStore) Store(data []byte, path string) (string, error) {
	clean := filepath.Clean(path)
	if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid asset path %q", path)
	}
	full := filepath.Join(s.Dir, clean)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", err
	}
	return s.PublicURL(clean), nil
}

func (s *LocalStore) PublicURL(path string) string {
	return s.BaseURL + "/media/" + strings.TrimLeft(filepath.ToSlash(path), "/")
}
