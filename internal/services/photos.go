package services

import (
	"context"
	"errors"
	"slices"

	"github.com/gabriel-vasile/mimetype"

	"github.com/plantbygpt/plantbygpt/internal/blob"
	"github.com/plantbygpt/plantbygpt/internal/model"
	"github.com/plantbygpt/plantbygpt/internal/store"
	"github.com/plantbygpt/plantbygpt/internal/urlcache"
)

// SavePhoto stores an uploaded photo under a fresh img_ key and returns its handle.
// When the upload carries no type the bytes are sniffed.
func (j *Journal) SavePhoto(ctx context.Context, data []byte, declaredType string) (urlcache.Handle, error) {
	size := int64(len(data))
	if size == 0 {
		return urlcache.Handle{}, NewValidationError("photo", "is empty")
	}
	if size > j.maxImageBytes {
		return urlcache.Handle{}, OversizeInputError{What: "photo", Size: size, Limit: j.maxImageBytes}
	}
	if declaredType == "" {
		declaredType = mimetype.Detect(data).String()
	}
	key := "img_" + j.newID()
	if err := blob.SetNormalized(ctx, j.store.Blobs(), key, &blob.Blob{Data: data}, declaredType); err != nil {
		return urlcache.Handle{}, err
	}
	j.log.Debug().Str("key", key).Int64("size", size).Str("type", declaredType).Msg("photo saved")
	return j.urls.GetOrCreate(ctx, key)
}

// Photo returns a stored photo with its display handle.
func (j *Journal) Photo(ctx context.Context, key string) (*blob.Blob, urlcache.Handle, error) {
	b, err := j.store.Blobs().Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, urlcache.Handle{}, NewNotFoundError("photo", key)
	}
	if err != nil {
		return nil, urlcache.Handle{}, err
	}
	h, err := j.PhotoHandle(ctx, key)
	if err != nil {
		return nil, urlcache.Handle{}, err
	}
	return b, h, nil
}

// PhotoHandle returns the cached display handle for key.
func (j *Journal) PhotoHandle(ctx context.Context, key string) (urlcache.Handle, error) {
	h, err := j.urls.GetOrCreate(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return urlcache.Handle{}, NewNotFoundError("photo", key)
	}
	return h, err
}

// ListPhotos returns every stored photo key.
func (j *Journal) ListPhotos(ctx context.Context) ([]string, error) {
	return j.store.Blobs().Keys(ctx)
}

// DeletePhoto removes a photo and every reference to it in the journal.
func (j *Journal) DeletePhoto(ctx context.Context, key string) error {
	if key == "" {
		return NewValidationError("key", "is required")
	}
	return j.mutate(ctx, func(st *model.ApplicationState) ([]string, error) {
		unref := func(keys []string) []string {
			return slices.DeleteFunc(keys, func(k string) bool { return k == key })
		}
		for i := range st.Plants {
			if st.Plants[i].CoverPhotoKey == key {
				st.Plants[i].CoverPhotoKey = ""
			}
		}
		for i := range st.Events {
			st.Events[i].PhotoKeys = unref(st.Events[i].PhotoKeys)
		}
		for i := range st.GeneralLogs {
			st.GeneralLogs[i].Photos = unref(st.GeneralLogs[i].Photos)
		}
		for i := range st.Expenses {
			st.Expenses[i].Photos = unref(st.Expenses[i].Photos)
		}
		for i := range st.Knowledges {
			st.Knowledges[i].CoverPhotoKeys = unref(st.Knowledges[i].CoverPhotoKeys)
		}
		return []string{key}, nil
	})
}
