// Package upload writes multipart file payloads to the public directory and
// hands back the path clients use to fetch them. There is no deduplication,
// hashing or content scanning at this layer; body-size limits are enforced
// upstream by the HTTP server.
package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"mime/multipart"
)

// Purposes name the public subdirectory a file lands in.
const (
	PurposeAvatars   = "avatars"   // user avatars
	PurposeUploads   = "uploads"   // product images
	PurposeDocuments = "documents" // reservation identity/contract documents
)

var whitespace = regexp.MustCompile(`\s+`)

// Store writes uploads under a base directory injected at construction so
// tests can point it at a temp dir.
type Store struct {
	BaseDir string
}

func NewStore(baseDir string) *Store { return &Store{BaseDir: baseDir} }

// Save writes the uploaded file under BaseDir/purpose and returns its
// public path ("/uploads/1700000000000_photo.jpg"). The stored name is
// "{epochMillis}_{originalName}" with whitespace collapsed to underscores,
// which keeps names collision-resistant without a lookup.
//
// A nil or zero-byte file is treated as "no file": Save returns an empty
// path and no error, and the caller keeps its reference field null.
func (s *Store) Save(fh *multipart.FileHeader, purpose string) (string, error) {
	if fh == nil || fh.Size == 0 {
		return "", nil
	}

	name := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), sanitizeName(fh.Filename))
	dir := filepath.Join(s.BaseDir, purpose)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return "/" + purpose + "/" + name, nil
}

// sanitizeName strips any path components from the client-supplied name and
// replaces whitespace with underscores.
func sanitizeName(raw string) string {
	base := filepath.Base(raw)
	if base == "." || base == string(filepath.Separator) {
		base = "file"
	}
	return whitespace.ReplaceAllString(base, "_")
}
