package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// UploadStore persists donated files (cover images, e-book payloads) on disk
// under a base directory. Stored names are collision-resistant: a generated
// prefix plus the sanitised original file name.
type UploadStore struct {
	baseDir      string
	publicPrefix string
}

// NewUploadStore ensures the base directory exists and returns a handle.
func NewUploadStore(baseDir, publicPrefix string) (*UploadStore, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if publicPrefix == "" {
		publicPrefix = "/uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &UploadStore{baseDir: baseDir, publicPrefix: strings.TrimRight(publicPrefix, "/")}, nil
}

// SaveStream copies the reader into a freshly named file under subdir and
// returns the public URL path for the stored file.
func (s *UploadStore) SaveStream(subdir, originalName string, r io.Reader) (string, error) {
	name := fmt.Sprintf("%s_%s", uuid.NewString(), sanitizeName(originalName))
	rel := path.Join(subdir, name)

	full := filepath.Join(s.baseDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("prepare upload directory: %w", err)
	}

	file, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer file.Close() //nolint:errcheck

	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write upload stream: %w", err)
	}

	return s.publicPrefix + "/" + rel, nil
}

// Open returns a read-only handle for a stored file given its public path.
func (s *UploadStore) Open(publicPath string) (*os.File, error) {
	rel := strings.TrimPrefix(publicPath, s.publicPrefix+"/")
	file, err := os.Open(filepath.Join(s.baseDir, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("open upload file: %w", err)
	}
	return file, nil
}

// Delete removes a stored file if present.
func (s *UploadStore) Delete(publicPath string) error {
	rel := strings.TrimPrefix(publicPath, s.publicPrefix+"/")
	if err := os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(rel))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}

// BaseDir exposes the storage root (served as the static uploads prefix).
func (s *UploadStore) BaseDir() string {
	return s.baseDir
}

// PublicPrefix exposes the URL prefix the base directory is mounted under.
func (s *UploadStore) PublicPrefix() string {
	return s.publicPrefix
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}
