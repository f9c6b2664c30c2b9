package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"resume-tailor/internal/shared/storage/object"
)

// Store implements ObjectStore using the local filesystem. Files are served
// read-only by the API under publicBaseURL.
type Store struct {
	baseDir       string
	publicBaseURL string
}

// New creates a new local object store rooted at baseDir whose objects resolve under publicBaseURL.
func New(baseDir, publicBaseURL string) *Store {
	return &Store{baseDir: baseDir, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

// BaseDir returns the directory served under the public URL.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// Upload writes the reader to disk at storagePath.
func (s *Store) Upload(ctx context.Context, storagePath string, r io.Reader, contentType string) (object.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return object.Artifact{}, err
	}
	fullPath, err := s.resolve(storagePath)
	if err != nil {
		return object.Artifact{}, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return object.Artifact{}, fmt.Errorf("%w: mkdir: %v", object.ErrStorage, err)
	}
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return object.Artifact{}, fmt.Errorf("%w: open file: %v", object.ErrStorage, err)
	}

	var sniff [512]byte
	n, readErr := io.ReadFull(r, sniff[:])
	if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
		f.Close()
		return object.Artifact{}, fmt.Errorf("%w: read sniff: %v", object.ErrStorage, readErr)
	}
	if contentType == "" {
		contentType = http.DetectContentType(sniff[:n])
	}

	size := int64(0)
	if n > 0 {
		if _, err := f.Write(sniff[:n]); err != nil {
			f.Close()
			return object.Artifact{}, fmt.Errorf("%w: write sniff: %v", object.ErrStorage, err)
		}
		size += int64(n)
	}
	written, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		return object.Artifact{}, fmt.Errorf("%w: write body: %v", object.ErrStorage, err)
	}
	size += written
	if err := f.Close(); err != nil {
		return object.Artifact{}, fmt.Errorf("%w: close: %v", object.ErrStorage, err)
	}

	return object.Artifact{
		PublicURL:   s.publicBaseURL + "/" + storagePath,
		StoragePath: storagePath,
		ContentType: contentType,
		SizeBytes:   size,
	}, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath, err := s.resolve(storagePath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", object.ErrNotFound, storagePath)
		}
		return nil, fmt.Errorf("%w: open %s: %v", object.ErrStorage, storagePath, err)
	}
	return f, nil
}

// Delete removes a stored object. Missing objects are not an error.
func (s *Store) Delete(ctx context.Context, storagePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath, err := s.resolve(storagePath)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: delete %s: %v", object.ErrStorage, storagePath, err)
	}
	return nil
}

// PathFromURL strips the public base URL.
func (s *Store) PathFromURL(publicURL string) (string, bool) {
	prefix := s.publicBaseURL + "/"
	if s.publicBaseURL == "" || !strings.HasPrefix(publicURL, prefix) {
		return "", false
	}
	p := strings.TrimPrefix(publicURL, prefix)
	if !object.ValidPath(p) {
		return "", false
	}
	return p, true
}

func (s *Store) resolve(storagePath string) (string, error) {
	if !object.ValidPath(storagePath) {
		return "", fmt.Errorf("%w: invalid storage key %q", object.ErrStorage, storagePath)
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(filepath.Clean(storagePath))), nil
}

var _ object.ObjectStore = (*Store)(nil)
