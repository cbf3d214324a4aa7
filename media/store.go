// Package media stores image blobs for the journal. The board's "save as
// photo" export is the only producer on the live side.
package media

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrNotFound = errors.New("media not found")
	ErrBadKey   = errors.New("invalid media key")
)

type Store interface {
	Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Presigner is implemented by stores that can hand out direct download
// links instead of streaming through the server.
type Presigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// ValidKey accepts flat file names only.
func ValidKey(key string) error {
	if key == "" || key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return ErrBadKey
	}
	return nil
}
