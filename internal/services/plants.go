package services

import (
	"context"
	"slices"
	"strings"

	"github.com/plantbygpt/plantbygpt/internal/mirror"
	"github.com/plantbygpt/plantbygpt/internal/model"
)

// AddLocation appends a named spot to the location list.
func (j *Journal) AddLocation(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return NewValidationError("location", "is required")
	}
	return j.mutate(ctx, func(st *model.ApplicationState) ([]string, error) {
		if st.HasLocation(name) {
			return nil, NewConflictError("location", name+" already exists")
		}
		st.Locations = append(st.Locations, name)
		return nil, nil
	})
}

// RemoveLocation deletes a location; plants placed there become unplaced.
func (j *Journal) RemoveLocation(ctx context.Context, name string) error {
	return j.mutate(ctx, func(st *model.ApplicationState) ([]string, error) {
		i := slices.Index(st.Locations, name)
		if i < 0 {
			return nil, NewNotFoundError("location", name)
		}
		st.Locations = slices.Delete(st.Locations, i, i+1)
		for k := range st.Plants {
			if st.Plants[k].Location == name {
				st.Plants[k].Location = ""
			}
		}
		return nil, nil
	})
}

// AddPlant stores a new plant. Missing id and start date are filled in.
func (j *Journal) AddPlant(ctx context.Context, p model.Plant) (*model.Plant, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.ID == "" {
		p.ID = j.newID()
	}
	if p.StartDate.IsZero() {
		p.StartDate = j.now()
	}
	if err := j.check(p); err != nil {
		return nil, err
	}
	err := j.mutate(ctx, func(st *model.ApplicationState) ([]string, error) {
		if st.PlantIndex(p.ID) >= 0 {
			return nil, NewConflictError("plant", p.ID+" already exists")
		}
		st.Plants = append([]model.Plant{p}, st.Plants...)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePlant replaces the editable fields of an existing plant. LastWateredAt is
// derived from water events and is kept as stored.
func (j *Journal) UpdatePlant(ctx context.Context, p model.Plant) (*model.Plant, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := j.check(p); err != nil {
		return nil, err
	}
	var out model.Plant
	err := j.mutate(ctx, func(st *model.ApplicationState) ([]string, error) {
		i := st.PlantIndex(p.ID)
		if i < 0 {
			return nil, NewNotFoundError("plant", p.ID)
		}
		cur := &st.Plants[i]
		old := cur.CoverPhotoKey
		cur.Name = p.Name
		cur.Location = p.Location
		if !p.StartDate.IsZero() {
			cur.StartDate = p.StartDate
		}
		cur.CoverPhotoKey = p.CoverPhotoKey
		out = *cur
		if old != p.CoverPhotoKey {
			return []string{old}, nil
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePlant removes a plant with its events, their mirror logs and photos. Logs
// that mention other plants survive with the plant unlinked; expenses keep their
// record but lose the plant reference.
func (j *Journal) DeletePlant(ctx context.Context, id string) error {
	return j.mutate(ctx, func(st *model.ApplicationState) ([]string, error) {
		i := st.PlantIndex(id)
		if i < 0 {
			return nil, NewNotFoundError("plant", id)
		}
		cover := st.Plants[i].CoverPhotoKey
		removed := mirror.RemovePlant(st, id)
		st.Plants = slices.Delete(st.Plants, i, i+1)
		for k := range st.Expenses {
			if st.Expenses[k].RelatedPlantID == id {
				st.Expenses[k].RelatedPlantID = ""
			}
		}
		j.log.Info().Str("plant_id", id).Int("events_removed", len(removed.Events)).Msg("plant deleted")
		return append(removed.PhotoKeys(), cover), nil
	})
}
