// Package mirror keeps events and logs reconciled. A non-log event owns one mirror
// log; a log with related plants owns one companion event per plant. Derived records
// carry deterministic ids so every sync is idempotent, and they never own photos.
package mirror

import (
	"slices"

	"github.com/plantbygpt/plantbygpt/internal/model"
)

// EventLogID is the id of the mirror log generated for an event.
func EventLogID(eventID string) string { return "log_event_" + eventID }

// LogEventID is the id of the companion event generated for a log and one plant.
func LogEventID(logID, plantID string) string { return "event_log_" + logID + "_" + plantID }

// IsMirrorLog reports whether l was generated from an event.
func IsMirrorLog(l model.Log) bool { return l.SourceEventID != "" }

// IsCompanionEvent reports whether e was generated from a log.
func IsCompanionEvent(e model.Event) bool { return e.Type == model.EventLog }

// Removed lists the records dropped by a removal.
type Removed struct {
	Events []model.Event
	Logs   []model.Log
}

// PhotoKeys returns the photos owned by removed records.
func (r Removed) PhotoKeys() []string {
	var keys []string
	for _, e := range r.Events {
		keys = append(keys, e.PhotoKeys...)
	}
	for _, l := range r.Logs {
		keys = append(keys, l.Photos...)
	}
	return keys
}

func (r *Removed) merge(o Removed) {
	r.Events = append(r.Events, o.Events...)
	r.Logs = append(r.Logs, o.Logs...)
}

// SyncLog upserts one companion event per existing related plant of l and drops the
// companions of plants no longer related. Mirror logs get no companions.
func SyncLog(st *model.ApplicationState, l model.Log) {
	want := map[string]bool{}
	if !IsMirrorLog(l) {
		for _, pid := range l.RelatedPlants {
			if pid != "" && st.PlantIndex(pid) >= 0 {
				want[LogEventID(l.ID, pid)] = true
			}
		}
	}

	st.Events = slices.DeleteFunc(st.Events, func(e model.Event) bool {
		return e.LogID == l.ID && IsCompanionEvent(e) && !want[e.ID]
	})
	if len(want) == 0 {
		return
	}

	note := l.Title
	if note == "" {
		note = l.Content
	}
	for _, pid := range l.RelatedPlants {
		id := LogEventID(l.ID, pid)
		if !want[id] {
			continue
		}
		delete(want, id) // duplicates in relatedPlants
		ev := model.Event{
			ID:        id,
			PlantID:   pid,
			Type:      model.EventLog,
			At:        l.Date,
			Tags:      append([]string{}, l.Tags...),
			Note:      note,
			PhotoKeys: []string{},
			LogID:     l.ID,
		}
		if i := st.EventIndex(id); i >= 0 {
			st.Events[i] = ev
		} else {
			st.Events = append([]model.Event{ev}, st.Events...)
		}
	}
}

// SyncEvent upserts the mirror log of a non-log event. Pin and completion flags set
// on an existing mirror log survive the sync.
func SyncEvent(st *model.ApplicationState, ev model.Event) {
	if IsCompanionEvent(ev) {
		return
	}
	ml := model.Log{
		ID:            EventLogID(ev.ID),
		Type:          model.LogDaily,
		Title:         ev.Type,
		Content:       ev.Note,
		Date:          ev.At,
		Tags:          append([]string{}, ev.Tags...),
		Photos:        []string{},
		RelatedPlants: []string{ev.PlantID},
		SourceEventID: ev.ID,
	}
	if i := st.LogIndex(ml.ID); i >= 0 {
		prev := st.GeneralLogs[i]
		ml.IsPinned, ml.PinnedAt = prev.IsPinned, prev.PinnedAt
		ml.IsCompleted, ml.CompletedAt = prev.IsCompleted, prev.CompletedAt
		ml.Weather, ml.Mood = prev.Weather, prev.Mood
		st.GeneralLogs[i] = ml
		return
	}
	st.GeneralLogs = append([]model.Log{ml}, st.GeneralLogs...)
}

// RemoveLog removes the log with id, its companion events, and, for a mirror log,
// the event it was generated from.
func RemoveLog(st *model.ApplicationState, id string) Removed {
	var out Removed
	i := st.LogIndex(id)
	if i < 0 {
		return out
	}
	l := st.GeneralLogs[i]
	st.GeneralLogs = slices.Delete(st.GeneralLogs, i, i+1)
	out.Logs = append(out.Logs, l)

	st.Events = slices.DeleteFunc(st.Events, func(e model.Event) bool {
		if e.LogID == id && IsCompanionEvent(e) {
			out.Events = append(out.Events, e)
			return true
		}
		return false
	})

	if IsMirrorLog(l) {
		if j := st.EventIndex(l.SourceEventID); j >= 0 {
			out.Events = append(out.Events, st.Events[j])
			st.Events = slices.Delete(st.Events, j, j+1)
		}
	}
	return out
}

// RemoveEvent removes the event with id and its mirror log. Removing a companion
// event also unlinks its plant from the owning log so a later sync does not bring
// it back.
func RemoveEvent(st *model.ApplicationState, id string) Removed {
	var out Removed
	i := st.EventIndex(id)
	if i < 0 {
		return out
	}
	ev := st.Events[i]
	st.Events = slices.Delete(st.Events, i, i+1)
	out.Events = append(out.Events, ev)

	if IsCompanionEvent(ev) {
		if j := st.LogIndex(ev.LogID); j >= 0 {
			l := &st.GeneralLogs[j]
			l.RelatedPlants = slices.DeleteFunc(l.RelatedPlants, func(p string) bool { return p == ev.PlantID })
		}
		return out
	}

	if j := st.LogIndex(EventLogID(id)); j >= 0 {
		out.Logs = append(out.Logs, st.GeneralLogs[j])
		st.GeneralLogs = slices.Delete(st.GeneralLogs, j, j+1)
	}
	return out
}

// RemovePlant drops every event of the plant (with their mirror logs) and unlinks
// the plant from the remaining logs, re-syncing their companions.
func RemovePlant(st *model.ApplicationState, plantID string) Removed {
	var out Removed
	var ids []string
	for _, e := range st.Events {
		if e.PlantID == plantID {
			ids = append(ids, e.ID)
		}
	}
	for _, id := range ids {
		out.merge(RemoveEvent(st, id))
	}
	for i := range st.GeneralLogs {
		l := &st.GeneralLogs[i]
		if slices.Contains(l.RelatedPlants, plantID) {
			l.RelatedPlants = slices.DeleteFunc(l.RelatedPlants, func(p string) bool { return p == plantID })
			SyncLog(st, *l)
		}
	}
	return out
}
