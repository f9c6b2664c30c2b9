package object

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

var (
	// ErrStorage wraps every failure talking to the backing store.
	ErrStorage = errors.New("object storage error")
	// ErrNotFound indicates the object does not exist.
	ErrNotFound = errors.New("object not found")
)

// Artifact references an uploaded object.
type Artifact struct {
	PublicURL   string
	StoragePath string
	ContentType string
	SizeBytes   int64
}

// ObjectStore defines the contract for saving and retrieving binary objects.
// Uploaded objects are publicly readable at Artifact.PublicURL.
type ObjectStore interface {
	Upload(ctx context.Context, storagePath string, r io.Reader, contentType string) (Artifact, error)
	Open(ctx context.Context, storagePath string) (io.ReadCloser, error)
	Delete(ctx context.Context, storagePath string) error
	// PathFromURL maps a public URL issued by this store back to its storage path.
	PathFromURL(publicURL string) (string, bool)
}

// maxDownloadBytes bounds documents pulled into memory.
const maxDownloadBytes = 32 << 20

// Download reads a whole object.
func Download(ctx context.Context, store ObjectStore, storagePath string) ([]byte, error) {
	rc, err := store.Open(ctx, storagePath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, maxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrStorage, storagePath, err)
	}
	if len(data) > maxDownloadBytes {
		return nil, fmt.Errorf("%w: object %s exceeds %d bytes", ErrStorage, storagePath, maxDownloadBytes)
	}
	return data, nil
}

// BuildPath joins segments into a slash-separated key, dropping empty and traversal segments.
func BuildPath(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		seg = strings.Trim(strings.TrimSpace(seg), "/")
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		parts = append(parts, seg)
	}
	return path.Clean(strings.Join(parts, "/"))
}

// ValidPath rejects absolute keys and keys escaping the store root.
func ValidPath(storagePath string) bool {
	if storagePath == "" || strings.HasPrefix(storagePath, "/") || strings.Contains(storagePath, "\\") {
		return false
	}
	clean := path.Clean(storagePath)
	return clean != "." && clean != ".." && !strings.HasPrefix(clean, "../")
}
