package model

import "time"

// NewState returns an empty state seeded with the default locations.
func NewState() *ApplicationState {
	s := &ApplicationState{}
	s.Normalize()
	return s
}

// Normalize fills every optional or evolved field with its current-schema default so
// that states from older versions behave like freshly created ones. It is idempotent.
func (s *ApplicationState) Normalize() {
	if s.Locations == nil {
		s.Locations = append([]string(nil), DefaultLocations...)
	}
	if s.Plants == nil {
		s.Plants = []Plant{}
	}
	if s.Events == nil {
		s.Events = []Event{}
	}
	if s.GeneralLogs == nil {
		s.GeneralLogs = []Log{}
	}
	if s.Expenses == nil {
		s.Expenses = []Expense{}
	}
	if s.Knowledges == nil {
		s.Knowledges = []KnowledgeEntry{}
	}
	for i := range s.Events {
		s.Events[i].normalize()
	}
	for i := range s.GeneralLogs {
		s.GeneralLogs[i].normalize()
	}
	for i := range s.Expenses {
		s.Expenses[i].normalize()
	}
	for i := range s.Knowledges {
		s.Knowledges[i].normalize()
	}
}

func (e *Event) normalize() {
	e.Tags = orEmpty(e.Tags)
	e.PhotoKeys = orEmpty(e.PhotoKeys)
}

func (l *Log) normalize() {
	if l.Type == "" {
		l.Type = LogDaily
	}
	l.Photos = orEmpty(l.Photos)
	l.Tags = orEmpty(l.Tags)
	l.RelatedPlants = orEmpty(l.RelatedPlants)
}

func (x *Expense) normalize() {
	x.Photos = orEmpty(x.Photos)
	x.Tags = orEmpty(x.Tags)
}

func (k *KnowledgeEntry) normalize() {
	k.Type = knowledgeType(k.Type)
	k.Tags = orEmpty(k.Tags)
	k.CoverPhotoKeys = orEmpty(k.CoverPhotoKeys)
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Clone returns a deep copy of the state.
func (s *ApplicationState) Clone() *ApplicationState {
	if s == nil {
		return nil
	}
	out := &ApplicationState{
		Locations:   cloneStrings(s.Locations),
		Plants:      make([]Plant, len(s.Plants)),
		Events:      make([]Event, len(s.Events)),
		GeneralLogs: make([]Log, len(s.GeneralLogs)),
		Expenses:    make([]Expense, len(s.Expenses)),
		Knowledges:  make([]KnowledgeEntry, len(s.Knowledges)),
	}
	for i, p := range s.Plants {
		p.LastWateredAt = cloneTime(p.LastWateredAt)
		out.Plants[i] = p
	}
	for i, e := range s.Events {
		e.Tags = cloneStrings(e.Tags)
		e.PhotoKeys = cloneStrings(e.PhotoKeys)
		out.Events[i] = e
	}
	for i, l := range s.GeneralLogs {
		l.Tags = cloneStrings(l.Tags)
		l.Photos = cloneStrings(l.Photos)
		l.RelatedPlants = cloneStrings(l.RelatedPlants)
		l.CompletedAt = cloneTime(l.CompletedAt)
		l.PinnedAt = cloneTime(l.PinnedAt)
		out.GeneralLogs[i] = l
	}
	for i, x := range s.Expenses {
		x.Photos = cloneStrings(x.Photos)
		x.Tags = cloneStrings(x.Tags)
		out.Expenses[i] = x
	}
	for i, k := range s.Knowledges {
		k.Tags = cloneStrings(k.Tags)
		k.CoverPhotoKeys = cloneStrings(k.CoverPhotoKeys)
		out.Knowledges[i] = k
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
