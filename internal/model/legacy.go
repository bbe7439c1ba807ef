package model

import (
	"bytes"
	"encoding/json"
)

// Older archives stored single photo keys where the current schema keeps lists, and
// array-valued weather/mood on logs. Each entity folds its old shapes here and
// nowhere else.

// UnmarshalJSON accepts photoKeys as a list or a bare string, and the legacy
// singular photoKey field.
func (e *Event) UnmarshalJSON(data []byte) error {
	type plain Event
	var aux struct {
		plain
		PhotoKeys json.RawMessage `json:"photoKeys"`
		PhotoKey  string          `json:"photoKey"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*e = Event(aux.plain)
	keys, err := foldKeys(aux.PhotoKeys, aux.PhotoKey)
	if err != nil {
		return err
	}
	e.PhotoKeys = keys
	return nil
}

// UnmarshalJSON folds the legacy coverPhotoKey into coverPhotoKeys and maps retired
// entry types onto document/web.
func (k *KnowledgeEntry) UnmarshalJSON(data []byte) error {
	type plain KnowledgeEntry
	var aux struct {
		plain
		CoverPhotoKeys json.RawMessage `json:"coverPhotoKeys"`
		CoverPhotoKey  string          `json:"coverPhotoKey"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*k = KnowledgeEntry(aux.plain)
	keys, err := foldKeys(aux.CoverPhotoKeys, aux.CoverPhotoKey)
	if err != nil {
		return err
	}
	k.CoverPhotoKeys = keys
	k.Type = knowledgeType(k.Type)
	return nil
}

// UnmarshalJSON accepts weather and mood given as a list, keeping the first value.
func (l *Log) UnmarshalJSON(data []byte) error {
	type plain Log
	var aux struct {
		plain
		Weather json.RawMessage `json:"weather"`
		Mood    json.RawMessage `json:"mood"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*l = Log(aux.plain)
	var err error
	if l.Weather, err = firstString(aux.Weather); err != nil {
		return err
	}
	if l.Mood, err = firstString(aux.Mood); err != nil {
		return err
	}
	return nil
}

func knowledgeType(t string) string {
	switch t {
	case "", "markdown":
		return KnowledgeDocument
	case "article", "video", "xiaohongshu":
		return KnowledgeWeb
	}
	return t
}

// foldKeys reads a key list that may be a JSON array, a bare string or absent, and
// falls back to the legacy single key. Empty keys are dropped.
func foldKeys(raw json.RawMessage, legacy string) ([]string, error) {
	keys := []string{}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		var list []string
		if raw[0] == '[' {
			if err := json.Unmarshal(raw, &list); err != nil {
				return nil, err
			}
		} else {
			var one string
			if err := json.Unmarshal(raw, &one); err != nil {
				return nil, err
			}
			list = []string{one}
		}
		for _, k := range list {
			if k != "" {
				keys = append(keys, k)
			}
		}
		return keys, nil
	}
	if legacy != "" {
		keys = append(keys, legacy)
	}
	return keys, nil
}

func firstString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '[' {
		var list []string
		if err := json.Unmarshal(raw, &list); err != nil {
			return "", err
		}
		if len(list) == 0 {
			return "", nil
		}
		return list[0], nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}
