package services

import (
	"context"
	"slices"
	"strings"

	"github.com/plantbygpt/plantbygpt/internal/model"
)

func (j *Journal) prepareKnowledge(k *model.KnowledgeEntry) {
	if k.Type == "" {
		k.Type = model.KnowledgeDocument
	}
	k.URL = strings.TrimSpace(k.URL)
	k.Tags = orEmpty(k.Tags)
	k.CoverPhotoKeys = orEmpty(k.CoverPhotoKeys)
}

// AddKnowledge stores a care note or bookmarked web page. Web entries need a URL.
func (j *Journal) AddKnowledge(ctx context.Context, k model.KnowledgeEntry) (*model.KnowledgeEntry, error) {
	if k.ID == "" {
		k.ID = j.newID()
	}
	j.prepareKnowledge(&k)
	now := j.now()
	if k.CreatedAt.IsZero() {
		k.CreatedAt = now
	}
	k.UpdatedAt = now
	if err := j.check(k); err != nil {
		return nil, err
	}
	err := j.mutate(ctx, func(st *model.ApplicationState) ([]string, error) {
		if st.KnowledgeIndex(k.ID) >= 0 {
			return nil, NewConflictError("knowledge", k.ID+" already exists")
		}
		st.Knowledges = append([]model.KnowledgeEntry{k}, st.Knowledges...)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// UpdateKnowledge replaces an entry, keeping its creation time.
func (j *Journal) UpdateKnowledge(ctx context.Context, k model.KnowledgeEntry) (*model.KnowledgeEntry, error) {
	j.prepareKnowledge(&k)
	k.UpdatedAt = j.now()
	if err := j.check(k); err != nil {
		return nil, err
	}
	err := j.mutate(ctx, func(st *model.ApplicationState) ([]string, error) {
		i := st.KnowledgeIndex(k.ID)
		if i < 0 {
			return nil, NewNotFoundError("knowledge", k.ID)
		}
		prev := st.Knowledges[i]
		k.CreatedAt = prev.CreatedAt
		st.Knowledges[i] = k
		return dropped(prev.CoverPhotoKeys, k.CoverPhotoKeys), nil
	})
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// DeleteKnowledge removes an entry and its cover photos.
func (j *Journal) DeleteKnowledge(ctx context.Context, id string) error {
	return j.mutate(ctx, func(st *model.ApplicationState) ([]string, error) {
		i := st.KnowledgeIndex(id)
		if i < 0 {
			return nil, NewNotFoundError("knowledge", id)
		}
		covers := st.Knowledges[i].CoverPhotoKeys
		st.Knowledges = slices.Delete(st.Knowledges, i, i+1)
		return covers, nil
	})
}
