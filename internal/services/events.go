package services

import (
	"context"
	"time"

	"github.com/plantbygpt/plantbygpt/internal/mirror"
	"github.com/plantbygpt/plantbygpt/internal/model"
)

// AddEvent records a care event for a plant and creates its mirror log. A water
// event moves the plant's last-watered time forward.
func (j *Journal) AddEvent(ctx context.Context, e model.Event) (*model.Event, error) {
	if e.Type == model.EventLog {
		return nil, ErrDerivedEvent
	}
	if e.ID == "" {
		e.ID = j.newID()
	}
	if e.At.IsZero() {
		e.At = j.now()
	}
	e.Tags = orEmpty(e.Tags)
	e.PhotoKeys = orEmpty(e.PhotoKeys)
	e.LogID = ""
	if err := j.check(e); err != nil {
		return nil, err
	}
	err := j.mutate(ctx, func(st *model.ApplicationState) ([]string, error) {
		pi := st.PlantIndex(e.PlantID)
		if pi < 0 {
			return nil, NewNotFoundError("plant", e.PlantID)
		}
		if st.EventIndex(e.ID) >= 0 {
			return nil, NewConflictError("event", e.ID+" already exists")
		}
		st.Events = append([]model.Event{e}, st.Events...)
		if e.Type == model.EventWater {
			p := &st.Plants[pi]
			if p.LastWateredAt == nil || e.At.After(*p.LastWateredAt) {
				at := e.At
				p.LastWateredAt = &at
			}
		}
		mirror.SyncEvent(st, e)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateEvent replaces an event and re-syncs its mirror log. Companion events of a
// log are rejected with ErrDerivedEvent.
func (j *Journal) UpdateEvent(ctx context.Context, e model.Event) (*model.Event, error) {
	if e.Type == model.EventLog {
		return nil, ErrDerivedEvent
	}
	e.Tags = orEmpty(e.Tags)
	e.PhotoKeys = orEmpty(e.PhotoKeys)
	e.LogID = ""
	if err := j.check(e); err != nil {
		return nil, err
	}
	err := j.mutate(ctx, func(st *model.ApplicationState) ([]string, error) {
		i := st.EventIndex(e.ID)
		if i < 0 {
			return nil, NewNotFoundError("event", e.ID)
		}
		prev := st.Events[i]
		if mirror.IsCompanionEvent(prev) {
			return nil, ErrDerivedEvent
		}
		if st.PlantIndex(e.PlantID) < 0 {
			return nil, NewNotFoundError("plant", e.PlantID)
		}
		if e.At.IsZero() {
			e.At = prev.At
		}
		st.Events[i] = e
		mirror.SyncEvent(st, e)
		recomputeWatered(st, prev.PlantID)
		if e.PlantID != prev.PlantID {
			recomputeWatered(st, e.PlantID)
		}
		return dropped(prev.PhotoKeys, e.PhotoKeys), nil
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// DeleteEvent removes an event, its mirror log and its photos.
func (j *Journal) DeleteEvent(ctx context.Context, id string) error {
	return j.mutate(ctx, func(st *model.ApplicationState) ([]string, error) {
		i := st.EventIndex(id)
		if i < 0 {
			return nil, NewNotFoundError("event", id)
		}
		plantID := st.Events[i].PlantID
		removed := mirror.RemoveEvent(st, id)
		recomputeWatered(st, plantID)
		return removed.PhotoKeys(), nil
	})
}

// recomputeWatered sets the plant's last-watered time to its latest remaining water
// event. Without water events the stored value is kept.
func recomputeWatered(st *model.ApplicationState, plantID string) {
	pi := st.PlantIndex(plantID)
	if pi < 0 {
		return
	}
	var latest *time.Time
	for _, e := range st.Events {
		if e.PlantID != plantID || e.Type != model.EventWater {
			continue
		}
		if latest == nil || e.At.After(*latest) {
			at := e.At
			latest = &at
		}
	}
	if latest != nil {
		st.Plants[pi].LastWateredAt = latest
	}
}
