// Package urlcache hands out stable display handles for stored photos. A handle is
// computed once per key and reused until the key is invalidated.
package urlcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/plantbygpt/plantbygpt/internal/blob"
)

// Getter loads photo payloads.
type Getter interface {
	Get(ctx context.Context, key string) (*blob.Blob, error)
}

// Handle is what the UI needs to show a photo.
type Handle struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	ETag string `json:"etag"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// Cache maps photo keys to handles.
type Cache struct {
	blobs   Getter
	mu      sync.RWMutex
	handles map[string]Handle
	// gen is bumped by every invalidation; loads started under an older
	// generation return their handle but never store it.
	gen   uint64
	group singleflight.Group
}

// New returns an empty cache reading from blobs.
func New(blobs Getter) *Cache {
	return &Cache{blobs: blobs, handles: make(map[string]Handle)}
}

// GetOrCreate returns the cached handle for key, loading the photo on first use.
// Concurrent first calls for the same key share one load.
func (c *Cache) GetOrCreate(ctx context.Context, key string) (Handle, error) {
	if key == "" {
		return Handle{}, errors.New("urlcache: empty key")
	}
	c.mu.RLock()
	h, ok := c.handles[key]
	gen := c.gen
	c.mu.RUnlock()
	if ok {
		return h, nil
	}

	flight := key + "\x00" + strconv.FormatUint(gen, 10)
	v, err, _ := c.group.Do(flight, func() (interface{}, error) {
		b, err := c.blobs.Get(ctx, key)
		if err != nil {
			return Handle{}, err
		}
		h := newHandle(key, b)
		c.mu.Lock()
		if c.gen == gen {
			c.handles[key] = h
		}
		c.mu.Unlock()
		return h, nil
	})
	if err != nil {
		return Handle{}, err
	}
	return v.(Handle), nil
}

// Invalidate forgets the handle for key. A load already in flight is not cached.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.handles, key)
	c.gen++
	c.mu.Unlock()
}

// InvalidateAll forgets every handle.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.handles = make(map[string]Handle)
	c.gen++
	c.mu.Unlock()
}

// Len returns the number of cached handles.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.handles)
}

func newHandle(key string, b *blob.Blob) Handle {
	nb := blob.Normalize(b, "")
	sum := sha256.Sum256(nb.Data)
	etag := hex.EncodeToString(sum[:])
	return Handle{
		Key:  key,
		URL:  fmt.Sprintf("/api/photos/%s?v=%s", url.PathEscape(key), etag[:12]),
		ETag: etag,
		Type: nb.Type,
		Size: nb.Size(),
	}
}
