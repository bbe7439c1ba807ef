package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_LegacySinglePhotoKey(t *testing.T) {
	var e Event
	require.NoError(t, json.Unmarshal([]byte(`{"id":"e1","plantId":"p1","type":"water","photoKey":"img_b"}`), &e))
	assert.Equal(t, []string{"img_b"}, e.PhotoKeys)
}

func TestEvent_PhotoKeysShapes(t *testing.T) {
	cases := map[string][]string{
		`{"id":"e1","photoKeys":["a","","b"]}`:         {"a", "b"},
		`{"id":"e1","photoKeys":"a"}`:                  {"a"},
		`{"id":"e1","photoKeys":null,"photoKey":"z"}`:  {"z"},
		`{"id":"e1","photoKeys":["a"],"photoKey":"z"}`: {"a"},
		`{"id":"e1","photoKey":""}`:                    {},
		`{"id":"e1"}`:                                  {},
	}
	for in, want := range cases {
		var e Event
		require.NoError(t, json.Unmarshal([]byte(in), &e), in)
		assert.Equal(t, want, e.PhotoKeys, in)
	}
}

func TestKnowledge_LegacyCoverAndType(t *testing.T) {
	var k KnowledgeEntry
	require.NoError(t, json.Unmarshal([]byte(`{"id":"k1","type":"markdown","coverPhotoKey":"img_k"}`), &k))
	assert.Equal(t, []string{"img_k"}, k.CoverPhotoKeys)
	assert.Equal(t, KnowledgeDocument, k.Type)

	var w KnowledgeEntry
	require.NoError(t, json.Unmarshal([]byte(`{"id":"k2","type":"video","url":"https://x"}`), &w))
	assert.Equal(t, KnowledgeWeb, w.Type)
	assert.Equal(t, []string{}, w.CoverPhotoKeys)
}

func TestLog_ArrayWeatherAndMood(t *testing.T) {
	var l Log
	require.NoError(t, json.Unmarshal([]byte(`{"id":"l1","weather":["sunny","windy"],"mood":[]}`), &l))
	assert.Equal(t, "sunny", l.Weather)
	assert.Equal(t, "", l.Mood)

	var l2 Log
	require.NoError(t, json.Unmarshal([]byte(`{"id":"l2","weather":"rain","mood":"calm"}`), &l2))
	assert.Equal(t, "rain", l2.Weather)
	assert.Equal(t, "calm", l2.Mood)
}

func TestLoaders_RejectWrongTypes(t *testing.T) {
	var e Event
	assert.Error(t, json.Unmarshal([]byte(`{"photoKeys":42}`), &e))
	var l Log
	assert.Error(t, json.Unmarshal([]byte(`{"weather":{}}`), &l))
}

func TestNormalize_FillsDefaults(t *testing.T) {
	var s ApplicationState
	require.NoError(t, json.Unmarshal([]byte(`{
		"plants":[{"id":"p1","name":"Echeveria"}],
		"events":[{"id":"e1","plantId":"p1","type":"water"}],
		"generalLogs":[{"id":"l1","title":"t"}],
		"expenses":[{"id":"x1","amount":3}]
	}`), &s))
	s.Normalize()

	assert.Equal(t, DefaultLocations, s.Locations)
	assert.Equal(t, "", s.Plants[0].CoverPhotoKey)
	assert.Equal(t, []string{}, s.Events[0].Tags)
	assert.Equal(t, []string{}, s.Events[0].PhotoKeys)
	assert.Equal(t, LogDaily, s.GeneralLogs[0].Type)
	assert.Equal(t, []string{}, s.GeneralLogs[0].Photos)
	assert.Equal(t, []string{}, s.GeneralLogs[0].RelatedPlants)
	assert.Equal(t, []string{}, s.Expenses[0].Photos)
	assert.Equal(t, []KnowledgeEntry{}, s.Knowledges)
}

func TestNormalize_KeepsExplicitEmptyLocations(t *testing.T) {
	s := ApplicationState{Locations: []string{}}
	s.Normalize()
	assert.Empty(t, s.Locations)
}

func TestNormalize_Idempotent(t *testing.T) {
	s := NewState()
	s.Plants = append(s.Plants, Plant{ID: "p1", Name: "Haworthia"})
	once := s.Clone()
	s.Normalize()
	assert.Equal(t, once, s)
}

func TestClone_IsDeep(t *testing.T) {
	ts := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	s := NewState()
	s.Plants = []Plant{{ID: "p1", LastWateredAt: &ts}}
	s.Events = []Event{{ID: "e1", Tags: []string{"a"}, PhotoKeys: []string{"k"}}}

	c := s.Clone()
	c.Events[0].Tags[0] = "changed"
	*c.Plants[0].LastWateredAt = ts.Add(time.Hour)
	c.Locations[0] = "Balcony"

	assert.Equal(t, "a", s.Events[0].Tags[0])
	assert.Equal(t, ts, *s.Plants[0].LastWateredAt)
	assert.Equal(t, DefaultLocations[0], s.Locations[0])
}
