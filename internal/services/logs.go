package services

import (
	"context"
	"time"

	"github.com/plantbygpt/plantbygpt/internal/mirror"
	"github.com/plantbygpt/plantbygpt/internal/model"
)

// prepareLog applies the creation defaults: daily type, current date, and the pin
// and completion timestamps. Only todo logs can be completed.
func (j *Journal) prepareLog(l *model.Log) {
	if l.Type == "" {
		l.Type = model.LogDaily
	}
	if l.Date.IsZero() {
		l.Date = j.now()
	}
	l.Tags = orEmpty(l.Tags)
	l.Photos = orEmpty(l.Photos)
	l.RelatedPlants = orEmpty(l.RelatedPlants)

	if l.Type != model.LogTodo {
		l.IsCompleted = false
		l.CompletedAt = nil
	}
	if l.IsCompleted && l.CompletedAt == nil {
		l.CompletedAt = stamp(j.now())
	}
	if !l.IsCompleted {
		l.CompletedAt = nil
	}
	if l.IsPinned && l.PinnedAt == nil {
		l.PinnedAt = stamp(j.now())
	}
	if !l.IsPinned {
		l.PinnedAt = nil
	}
}

// AddLog stores a new log and creates companion events for its related plants.
func (j *Journal) AddLog(ctx context.Context, l model.Log) (*model.Log, error) {
	if l.ID == "" {
		l.ID = j.newID()
	}
	l.SourceEventID = ""
	j.prepareLog(&l)
	if err := j.check(l); err != nil {
		return nil, err
	}
	err := j.mutate(ctx, func(st *model.ApplicationState) ([]string, error) {
		if st.LogIndex(l.ID) >= 0 {
			return nil, NewConflictError("log", l.ID+" already exists")
		}
		st.GeneralLogs = append([]model.Log{l}, st.GeneralLogs...)
		mirror.SyncLog(st, l)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// UpdateLog replaces a log and re-syncs its companions. A mirror log keeps its source
// event link and related plant, and never holds photos.
func (j *Journal) UpdateLog(ctx context.Context, l model.Log) (*model.Log, error) {
	j.prepareLog(&l)
	if err := j.check(l); err != nil {
		return nil, err
	}
	err := j.mutate(ctx, func(st *model.ApplicationState) ([]string, error) {
		i := st.LogIndex(l.ID)
		if i < 0 {
			return nil, NewNotFoundError("log", l.ID)
		}
		prev := st.GeneralLogs[i]
		l.SourceEventID = prev.SourceEventID
		if mirror.IsMirrorLog(prev) {
			l.RelatedPlants = prev.RelatedPlants
			l.Photos = []string{}
		}
		st.GeneralLogs[i] = l
		mirror.SyncLog(st, l)
		return dropped(prev.Photos, l.Photos), nil
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// DeleteLog removes a log with its companion events and photos. Deleting a mirror
// log also deletes the event it came from.
func (j *Journal) DeleteLog(ctx context.Context, id string) error {
	return j.mutate(ctx, func(st *model.ApplicationState) ([]string, error) {
		i := st.LogIndex(id)
		if i < 0 {
			return nil, NewNotFoundError("log", id)
		}
		source := st.GeneralLogs[i].SourceEventID
		var plantID string
		if k := st.EventIndex(source); source != "" && k >= 0 {
			plantID = st.Events[k].PlantID
		}
		removed := mirror.RemoveLog(st, id)
		if plantID != "" {
			recomputeWatered(st, plantID)
		}
		return removed.PhotoKeys(), nil
	})
}

func stamp(t time.Time) *time.Time { return &t }
