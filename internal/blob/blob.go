// Package blob holds the binary payload type shared by the object store drivers and
// the archive code, plus the normalizer that pins a MIME type on every payload.
package blob

import (
	"context"
	"errors"
)

// DefaultType is used when neither the payload nor the caller knows the MIME type.
const DefaultType = "application/octet-stream"

// Blob is a binary payload with its declared MIME type.
type Blob struct {
	Data []byte
	Type string
}

// Size returns the payload length in bytes.
func (b *Blob) Size() int64 {
	if b == nil {
		return 0
	}
	return int64(len(b.Data))
}

// Normalize returns a copy of b whose Type is never empty: the blob's own type wins,
// then preferredType, then DefaultType. A nil blob normalizes to an empty payload.
func Normalize(b *Blob, preferredType string) *Blob {
	out := &Blob{}
	if b != nil {
		out.Data = b.Data
		out.Type = b.Type
	}
	if out.Type == "" {
		out.Type = preferredType
	}
	if out.Type == "" {
		out.Type = DefaultType
	}
	if out.Data == nil {
		out.Data = []byte{}
	}
	return out
}

// Setter is the write half of an object store.
type Setter interface {
	Set(ctx context.Context, key string, b *Blob) error
}

// SetNormalized normalizes b and writes it under key. Every write into an object
// store goes through here so stored payloads always carry a type.
func SetNormalized(ctx context.Context, s Setter, key string, b *Blob, preferredType string) error {
	if key == "" {
		return errors.New("blob: empty key")
	}
	return s.Set(ctx, key, Normalize(b, preferredType))
}
