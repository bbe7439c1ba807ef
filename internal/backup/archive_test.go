package backup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantbygpt/plantbygpt/internal/model"
)

func TestExtFromMIME(t *testing.T) {
	cases := map[string]string{
		"image/jpeg":               "jpg",
		"IMAGE/JPG":                "jpg",
		"image/png":                "png",
		"image/webp":               "webp",
		"image/gif":                "gif",
		"image/bmp":                "bmp",
		"image/heic":               "heic",
		"application/octet-stream": "bin",
		"":                         "bin",
	}
	for in, want := range cases {
		assert.Equal(t, want, ExtFromMIME(in), in)
	}
}

func TestFileName(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 59, 0, time.Local)
	assert.Equal(t, "PlantByGPT-backup-20240102-0304.zip", FileName("PlantByGPT", ts))
	assert.Equal(t, "PlantByGPT-state-20240102-0304.json", StateFileName("PlantByGPT", ts))
}

func TestCollectReferencedKeys_OrderAndDedupe(t *testing.T) {
	st := &model.ApplicationState{
		Plants: []model.Plant{{ID: "p1", CoverPhotoKey: "a"}, {ID: "p2"}},
		Events: []model.Event{{ID: "e1", PhotoKeys: []string{"b", "a", ""}}},
		GeneralLogs: []model.Log{
			{ID: "l1", Photos: []string{"c"}},
		},
		Expenses:   []model.Expense{{ID: "x1", Photos: []string{"d", "b"}}},
		Knowledges: []model.KnowledgeEntry{{ID: "k1", CoverPhotoKeys: []string{"e", "c"}}},
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, CollectReferencedKeys(st))
	assert.Nil(t, CollectReferencedKeys(nil))
	assert.Empty(t, CollectReferencedKeys(model.NewState()))
}

func TestImportJSON(t *testing.T) {
	_, err := ImportJSON([]byte("{not json"))
	assert.True(t, IsFormatError(err))

	_, err = ImportJSON([]byte(`{"plants":[]}`))
	assert.True(t, IsSchemaError(err))

	_, err = ImportJSON([]byte(`[]`))
	assert.True(t, IsSchemaError(err))

	st, err := ImportJSON([]byte(`{"plants":[{"id":"p1","name":"Fern"}],"events":[{"id":"e1","plantId":"p1","type":"water","photoKeys":"img_1"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"img_1"}, st.Events[0].PhotoKeys)
	assert.Equal(t, model.DefaultLocations, st.Locations)
}

func TestExportJSON_RoundTrip(t *testing.T) {
	st := model.NewState()
	st.Plants = append(st.Plants, model.Plant{ID: "p1", Name: "Fern"})
	data, err := ExportJSON(st)
	require.NoError(t, err)

	back, err := ImportJSON(data)
	require.NoError(t, err)
	assert.Equal(t, "Fern", back.Plants[0].Name)
}
