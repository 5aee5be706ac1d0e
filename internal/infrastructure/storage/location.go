// Package storage moves data drops and run reports in and out of object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

const uriScheme = "s3://"

var (
	// ErrObjectNotFound is returned when the requested key does not exist
	ErrObjectNotFound = errors.New("object not found")
	// ErrObjectTooLarge is returned when an object exceeds the caller's byte limit
	ErrObjectTooLarge = errors.New("object exceeds size limit")
)

// ObjectStore reads and writes whole objects
type ObjectStore interface {
	Get(ctx context.Context, loc Location, maxBytes int64) ([]byte, error)
	Put(ctx context.Context, loc Location, data []byte, contentType string) error
}

// Location addresses one object. An empty Bucket means the store's default bucket.
type Location struct {
	Bucket string
	Key    string
}

// String renders the location as an s3:// URI
func (l Location) String() string {
	return uriScheme + l.Bucket + "/" + l.Key
}

// IsURI reports whether ref looks like an s3:// URI
func IsURI(ref string) bool {
	return strings.HasPrefix(ref, uriScheme)
}

// ParseLocation parses "s3://bucket/key"
func ParseLocation(uri string) (Location, error) {
	rest, ok := strings.CutPrefix(uri, uriScheme)
	if !ok {
		return Location{}, fmt.Errorf("not an s3 uri: %q", uri)
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return Location{}, fmt.Errorf("s3 uri needs a bucket and a key: %q", uri)
	}
	return Location{Bucket: bucket, Key: key}, nil
}

// ResolveLocation turns ref into a Location. Full s3:// URIs are used as they are;
// a bare key is placed under prefix in the default bucket.
func ResolveLocation(ref, prefix string) (Location, error) {
	if IsURI(ref) {
		return ParseLocation(ref)
	}
	key := strings.TrimPrefix(strings.TrimSpace(ref), "/")
	if key == "" {
		return Location{}, errors.New("storage key is required")
	}
	if prefix != "" && !strings.HasPrefix(key, prefix) {
		key = path.Join(prefix, key)
	}
	return Location{Key: key}, nil
}
