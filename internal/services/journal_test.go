package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantbygpt/plantbygpt/internal/backup"
	"github.com/plantbygpt/plantbygpt/internal/blob"
	"github.com/plantbygpt/plantbygpt/internal/config"
	"github.com/plantbygpt/plantbygpt/internal/mirror"
	"github.com/plantbygpt/plantbygpt/internal/model"
	"github.com/plantbygpt/plantbygpt/internal/store"
	"github.com/plantbygpt/plantbygpt/internal/store/memstore"
)

var (
	t0      = time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	pngData = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR")
)

func newJournal(t *testing.T) (*Journal, *memstore.Store) {
	t.Helper()
	s := memstore.New()
	cfg := config.NewForTesting()
	cfg.MaxImageBytes = 64
	j := NewJournal(s, cfg, zerolog.Nop())
	var seq atomic.Int64
	j.newID = func() string { return fmt.Sprintf("id%d", seq.Add(1)) }
	j.now = func() time.Time { return t0 }
	return j, s
}

func mustPlant(t *testing.T, j *Journal, name string) *model.Plant {
	t.Helper()
	p, err := j.AddPlant(context.Background(), model.Plant{Name: name, Location: "South window"})
	require.NoError(t, err)
	return p
}

func putPhoto(t *testing.T, s *memstore.Store, key string) {
	t.Helper()
	require.NoError(t, s.Blobs().Set(context.Background(), key, &blob.Blob{Data: []byte(key), Type: "image/jpeg"}))
}

func hasBlob(t *testing.T, s *memstore.Store, key string) bool {
	t.Helper()
	_, err := s.Blobs().Get(context.Background(), key)
	if errors.Is(err, store.ErrNotFound) {
		return false
	}
	require.NoError(t, err)
	return true
}

func TestState_EmptyStoreHasDefaults(t *testing.T) {
	j, _ := newJournal(t)
	st, err := j.State(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultLocations, st.Locations)
	assert.Empty(t, st.Plants)
}

func TestLocations(t *testing.T) {
	j, _ := newJournal(t)
	ctx := context.Background()

	require.NoError(t, j.AddLocation(ctx, "  Balcony "))
	assert.True(t, IsConflictError(j.AddLocation(ctx, "Balcony")))
	assert.True(t, IsValidationError(j.AddLocation(ctx, " ")))

	p, err := j.AddPlant(ctx, model.Plant{Name: "Aloe", Location: "Balcony"})
	require.NoError(t, err)

	require.NoError(t, j.RemoveLocation(ctx, "Balcony"))
	assert.True(t, IsNotFoundError(j.RemoveLocation(ctx, "Balcony")))

	st, err := j.State(ctx)
	require.NoError(t, err)
	assert.False(t, st.HasLocation("Balcony"))
	assert.Equal(t, "", st.Plants[st.PlantIndex(p.ID)].Location)
}

func TestAddPlant_Validation(t *testing.T) {
	j, _ := newJournal(t)
	_, err := j.AddPlant(context.Background(), model.Plant{Name: "   "})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	var ve ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "name", ve.Field)
}

func TestAddPlant_Defaults(t *testing.T) {
	j, _ := newJournal(t)
	p := mustPlant(t, j, "Haworthia")
	assert.Equal(t, "id1", p.ID)
	assert.Equal(t, t0, p.StartDate)
}

func TestUpdatePlant_ReleasesOldCover(t *testing.T) {
	j, s := newJournal(t)
	ctx := context.Background()
	putPhoto(t, s, "img_old")
	putPhoto(t, s, "img_new")

	p, err := j.AddPlant(ctx, model.Plant{Name: "Echeveria", CoverPhotoKey: "img_old"})
	require.NoError(t, err)
	p.CoverPhotoKey = "img_new"
	_, err = j.UpdatePlant(ctx, *p)
	require.NoError(t, err)

	assert.False(t, hasBlob(t, s, "img_old"))
	assert.True(t, hasBlob(t, s, "img_new"))

	_, err = j.UpdatePlant(ctx, model.Plant{ID: "missing", Name: "x"})
	assert.True(t, IsNotFoundError(err))
}

func TestAddEvent_WaterUpdatesPlantAndMirrors(t *testing.T) {
	j, _ := newJournal(t)
	ctx := context.Background()
	p := mustPlant(t, j, "Jade")

	later := t0.Add(48 * time.Hour)
	ev, err := j.AddEvent(ctx, model.Event{PlantID: p.ID, Type: model.EventWater, At: later, Note: "soaked"})
	require.NoError(t, err)

	st, err := j.State(ctx)
	require.NoError(t, err)
	plant := st.Plants[st.PlantIndex(p.ID)]
	require.NotNil(t, plant.LastWateredAt)
	assert.True(t, plant.LastWateredAt.Equal(later))

	// an older water event does not move the time backwards
	_, err = j.AddEvent(ctx, model.Event{PlantID: p.ID, Type: model.EventWater, At: t0})
	require.NoError(t, err)
	st, _ = j.State(ctx)
	assert.True(t, st.Plants[st.PlantIndex(p.ID)].LastWateredAt.Equal(later))

	i := st.LogIndex(mirror.EventLogID(ev.ID))
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, "soaked", st.GeneralLogs[i].Content)
}

func TestAddEvent_Rejections(t *testing.T) {
	j, _ := newJournal(t)
	ctx := context.Background()
	p := mustPlant(t, j, "Jade")

	_, err := j.AddEvent(ctx, model.Event{PlantID: "nope", Type: model.EventWater})
	assert.True(t, IsNotFoundError(err))

	_, err = j.AddEvent(ctx, model.Event{PlantID: p.ID, Type: "dance"})
	assert.True(t, IsValidationError(err))

	_, err = j.AddEvent(ctx, model.Event{PlantID: p.ID, Type: model.EventLog})
	assert.ErrorIs(t, err, ErrDerivedEvent)
}

func TestUpdateEvent_DerivedEventRejected(t *testing.T) {
	j, _ := newJournal(t)
	ctx := context.Background()
	p := mustPlant(t, j, "Jade")
	l, err := j.AddLog(ctx, model.Log{Title: "repotted both", RelatedPlants: []string{p.ID}})
	require.NoError(t, err)

	companion := model.Event{ID: mirror.LogEventID(l.ID, p.ID), PlantID: p.ID, Type: model.EventWater}
	_, err = j.UpdateEvent(ctx, companion)
	assert.ErrorIs(t, err, ErrDerivedEvent)
	assert.True(t, IsConflictError(err))
}

func TestUpdateEvent_ReleasesDroppedPhotos(t *testing.T) {
	j, s := newJournal(t)
	ctx := context.Background()
	putPhoto(t, s, "img_1")
	putPhoto(t, s, "img_2")
	p := mustPlant(t, j, "Jade")

	ev, err := j.AddEvent(ctx, model.Event{PlantID: p.ID, Type: model.EventPest, PhotoKeys: []string{"img_1", "img_2"}})
	require.NoError(t, err)
	ev.PhotoKeys = []string{"img_2"}
	ev.Note = "mealybugs gone"
	_, err = j.UpdateEvent(ctx, *ev)
	require.NoError(t, err)

	assert.False(t, hasBlob(t, s, "img_1"))
	assert.True(t, hasBlob(t, s, "img_2"))

	st, _ := j.State(ctx)
	ml := st.GeneralLogs[st.LogIndex(mirror.EventLogID(ev.ID))]
	assert.Equal(t, "mealybugs gone", ml.Content)
}

func TestDeleteEvent_RemovesMirrorAndPhotos(t *testing.T) {
	j, s := newJournal(t)
	ctx := context.Background()
	putPhoto(t, s, "img_1")
	p := mustPlant(t, j, "Jade")
	ev, err := j.AddEvent(ctx, model.Event{PlantID: p.ID, Type: model.EventWater, PhotoKeys: []string{"img_1"}})
	require.NoError(t, err)

	require.NoError(t, j.DeleteEvent(ctx, ev.ID))
	st, _ := j.State(ctx)
	assert.Empty(t, st.Events)
	assert.Empty(t, st.GeneralLogs)
	assert.False(t, hasBlob(t, s, "img_1"))
	assert.True(t, IsNotFoundError(j.DeleteEvent(ctx, ev.ID)))
}

func TestDeletePlant_Cascades(t *testing.T) {
	j, s := newJournal(t)
	ctx := context.Background()
	for _, k := range []string{"img_cover", "img_event", "img_log", "img_shared"} {
		putPhoto(t, s, k)
	}
	doomed, err := j.AddPlant(ctx, model.Plant{Name: "Doomed", CoverPhotoKey: "img_cover"})
	require.NoError(t, err)
	keeper := mustPlant(t, j, "Keeper")

	_, err = j.AddEvent(ctx, model.Event{PlantID: doomed.ID, Type: model.EventRepot, PhotoKeys: []string{"img_event", "img_shared"}})
	require.NoError(t, err)
	_, err = j.AddEvent(ctx, model.Event{PlantID: keeper.ID, Type: model.EventWater, PhotoKeys: []string{"img_shared"}})
	require.NoError(t, err)
	shared, err := j.AddLog(ctx, model.Log{Title: "both", Photos: []string{"img_log"}, RelatedPlants: []string{doomed.ID, keeper.ID}})
	require.NoError(t, err)
	_, err = j.AddExpense(ctx, model.Expense{Category: "pot", Amount: 12, RelatedPlantID: doomed.ID})
	require.NoError(t, err)

	require.NoError(t, j.DeletePlant(ctx, doomed.ID))

	st, err := j.State(ctx)
	require.NoError(t, err)
	assert.Negative(t, st.PlantIndex(doomed.ID))
	for _, e := range st.Events {
		assert.NotEqual(t, doomed.ID, e.PlantID)
	}
	li := st.LogIndex(shared.ID)
	require.GreaterOrEqual(t, li, 0)
	assert.Equal(t, []string{keeper.ID}, st.GeneralLogs[li].RelatedPlants)
	assert.Equal(t, "", st.Expenses[0].RelatedPlantID)

	assert.False(t, hasBlob(t, s, "img_cover"))
	assert.False(t, hasBlob(t, s, "img_event"))
	assert.True(t, hasBlob(t, s, "img_shared"), "still referenced by the keeper's event")
	assert.True(t, hasBlob(t, s, "img_log"), "shared log survives")
}

func TestAddLog_Defaults(t *testing.T) {
	j, _ := newJournal(t)
	ctx := context.Background()

	l, err := j.AddLog(ctx, model.Log{Title: "note", IsCompleted: true, IsPinned: true})
	require.NoError(t, err)
	assert.Equal(t, model.LogDaily, l.Type)
	assert.Equal(t, t0, l.Date)
	assert.False(t, l.IsCompleted, "only todo logs complete")
	assert.Nil(t, l.CompletedAt)
	require.NotNil(t, l.PinnedAt)
	assert.Equal(t, t0, *l.PinnedAt)

	todo, err := j.AddLog(ctx, model.Log{Type: model.LogTodo, Title: "buy soil", IsCompleted: true})
	require.NoError(t, err)
	require.NotNil(t, todo.CompletedAt)
	assert.Equal(t, t0, *todo.CompletedAt)

	_, err = j.AddLog(ctx, model.Log{Type: "yearly"})
	assert.True(t, IsValidationError(err))
}

func TestUpdateLog_SyncsCompanionsAndPhotos(t *testing.T) {
	j, s := newJournal(t)
	ctx := context.Background()
	putPhoto(t, s, "img_a")
	a := mustPlant(t, j, "A")
	b := mustPlant(t, j, "B")

	l, err := j.AddLog(ctx, model.Log{Title: "t", Photos: []string{"img_a"}, RelatedPlants: []string{a.ID, b.ID}})
	require.NoError(t, err)
	st, _ := j.State(ctx)
	assert.Len(t, st.Events, 2)

	l.RelatedPlants = []string{b.ID}
	l.Photos = nil
	_, err = j.UpdateLog(ctx, *l)
	require.NoError(t, err)

	st, _ = j.State(ctx)
	require.Len(t, st.Events, 1)
	assert.Equal(t, b.ID, st.Events[0].PlantID)
	assert.False(t, hasBlob(t, s, "img_a"))
}

func TestDeleteLog_MirrorRemovesSourceEvent(t *testing.T) {
	j, _ := newJournal(t)
	ctx := context.Background()
	p := mustPlant(t, j, "Jade")
	ev, err := j.AddEvent(ctx, model.Event{PlantID: p.ID, Type: model.EventMove})
	require.NoError(t, err)

	require.NoError(t, j.DeleteLog(ctx, mirror.EventLogID(ev.ID)))
	st, _ := j.State(ctx)
	assert.Empty(t, st.Events)
	assert.Empty(t, st.GeneralLogs)
}

func TestExpenses(t *testing.T) {
	j, s := newJournal(t)
	ctx := context.Background()
	putPhoto(t, s, "img_receipt")

	_, err := j.AddExpense(ctx, model.Expense{Category: "soil", Amount: 0})
	assert.True(t, IsValidationError(err))
	_, err = j.AddExpense(ctx, model.Expense{Category: " ", Amount: 3})
	assert.True(t, IsValidationError(err))
	_, err = j.AddExpense(ctx, model.Expense{Category: "soil", Amount: 3, Currency: "GBP"})
	assert.True(t, IsValidationError(err))

	may := time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)
	june := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
	x1, err := j.AddExpense(ctx, model.Expense{Type: "soil", Category: "mix", Amount: 10, Date: may, Photos: []string{"img_receipt"}})
	require.NoError(t, err)
	assert.Equal(t, "CNY", x1.Currency)
	_, err = j.AddExpense(ctx, model.Expense{Type: "pot", Category: "terracotta", Amount: 5.5, Date: june})
	require.NoError(t, err)
	_, err = j.AddExpense(ctx, model.Expense{Category: "tool", Amount: 99, Currency: "USD", Date: june})
	require.NoError(t, err)

	sum, err := j.ExpenseSummary(ctx, "CNY")
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Count)
	assert.InDelta(t, 15.5, sum.Total, 1e-9)
	assert.Equal(t, map[string]float64{"2024-05": 10, "2024-06": 5.5}, sum.Monthly)
	assert.Equal(t, map[string]float64{"soil": 10, "pot": 5.5}, sum.ByType)

	_, err = j.ExpenseSummary(ctx, "BTC")
	assert.True(t, IsValidationError(err))

	require.NoError(t, j.DeleteExpense(ctx, x1.ID))
	assert.False(t, hasBlob(t, s, "img_receipt"))
}

func TestKnowledge(t *testing.T) {
	j, s := newJournal(t)
	ctx := context.Background()
	putPhoto(t, s, "img_k")

	_, err := j.AddKnowledge(ctx, model.KnowledgeEntry{Type: model.KnowledgeWeb, Title: "guide", URL: "  "})
	assert.True(t, IsValidationError(err))

	k, err := j.AddKnowledge(ctx, model.KnowledgeEntry{Title: "watering", Content: "# soak and dry", CoverPhotoKeys: []string{"img_k"}})
	require.NoError(t, err)
	assert.Equal(t, model.KnowledgeDocument, k.Type)
	assert.Equal(t, t0, k.CreatedAt)

	later := t0.Add(time.Hour)
	j.now = func() time.Time { return later }
	k.CoverPhotoKeys = nil
	k.CreatedAt = time.Time{}
	updated, err := j.UpdateKnowledge(ctx, *k)
	require.NoError(t, err)
	assert.Equal(t, t0, updated.CreatedAt)
	assert.Equal(t, later, updated.UpdatedAt)
	assert.False(t, hasBlob(t, s, "img_k"))

	require.NoError(t, j.DeleteKnowledge(ctx, k.ID))
	assert.True(t, IsNotFoundError(j.DeleteKnowledge(ctx, k.ID)))
}

func TestSavePhoto(t *testing.T) {
	j, s := newJournal(t)
	ctx := context.Background()

	h, err := j.SavePhoto(ctx, pngData, "")
	require.NoError(t, err)
	assert.Equal(t, "img_id1", h.Key)
	assert.Equal(t, "image/png", h.Type, "empty declared type is sniffed")
	assert.True(t, hasBlob(t, s, h.Key))

	h2, err := j.SavePhoto(ctx, []byte("jpeg-ish"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", h2.Type)

	_, err = j.SavePhoto(ctx, bytes.Repeat([]byte{1}, 65), "image/png")
	assert.True(t, IsOversizeInputError(err))
	_, err = j.SavePhoto(ctx, nil, "image/png")
	assert.True(t, IsValidationError(err))

	_, _, err = j.Photo(ctx, "img_missing")
	assert.True(t, IsNotFoundError(err))

	keys, err := j.ListPhotos(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"img_id1", "img_id2"}, keys)
}

func TestDeletePhoto_RemovesReferences(t *testing.T) {
	j, s := newJournal(t)
	ctx := context.Background()
	putPhoto(t, s, "img_x")
	p, err := j.AddPlant(ctx, model.Plant{Name: "Aloe", CoverPhotoKey: "img_x"})
	require.NoError(t, err)
	_, err = j.AddEvent(ctx, model.Event{PlantID: p.ID, Type: model.EventSnapshot, PhotoKeys: []string{"img_x"}})
	require.NoError(t, err)

	require.NoError(t, j.DeletePhoto(ctx, "img_x"))
	st, _ := j.State(ctx)
	assert.Empty(t, backup.CollectReferencedKeys(st))
	assert.False(t, hasBlob(t, s, "img_x"))
}

func TestBackupRoundTripAndCacheInvalidation(t *testing.T) {
	j, _ := newJournal(t)
	ctx := context.Background()
	h, err := j.SavePhoto(ctx, pngData, "image/png")
	require.NoError(t, err)
	_, err = j.AddPlant(ctx, model.Plant{Name: "Aloe", CoverPhotoKey: h.Key})
	require.NoError(t, err)
	assert.Equal(t, 1, j.URLs().Len())

	var buf bytes.Buffer
	report, err := j.ExportBackup(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Archived)
	assert.Equal(t, "PlantByGPT-backup-20240401-1000.zip", j.BackupFileName())
	assert.Equal(t, "PlantByGPT-state-20240401-1000.json", j.StateFileName())

	other, _ := newJournal(t)
	imported, err := other.ImportBackup(ctx, buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{h.Key}, imported.Restored)

	st, err := other.State(ctx)
	require.NoError(t, err)
	require.Len(t, st.Plants, 1)
	assert.Equal(t, h.Key, st.Plants[0].CoverPhotoKey)

	_, err = j.ImportBackup(ctx, buf.Bytes())
	require.NoError(t, err)
	assert.Zero(t, j.URLs().Len(), "import invalidates every cached handle")
}

func TestImportBackup_RejectedArchiveChangesNothing(t *testing.T) {
	j, _ := newJournal(t)
	ctx := context.Background()
	mustPlant(t, j, "Survivor")

	_, err := j.ImportBackup(ctx, []byte("definitely not a zip"))
	assert.True(t, backup.IsFormatError(err))

	st, _ := j.State(ctx)
	require.Len(t, st.Plants, 1)
	assert.Equal(t, "Survivor", st.Plants[0].Name)

	j.maxArchiveBytes = 4
	_, err = j.ImportBackup(ctx, []byte("12345"))
	assert.True(t, IsOversizeInputError(err))
}

func TestImportJSON(t *testing.T) {
	j, _ := newJournal(t)
	ctx := context.Background()
	mustPlant(t, j, "Old")

	err := j.ImportJSON(ctx, []byte(`{"plants":[]}`))
	assert.True(t, backup.IsSchemaError(err))

	require.NoError(t, j.ImportJSON(ctx, []byte(`{"plants":[{"id":"p9","name":"New"}],"events":[],"locations":[]}`)))
	st, _ := j.State(ctx)
	require.Len(t, st.Plants, 1)
	assert.Equal(t, "New", st.Plants[0].Name)
	assert.Empty(t, st.Locations, "an explicit empty location list is kept")

	out, err := j.ExportJSON(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"name": "New"`)
}

func TestConcurrentEditsAreNotLost(t *testing.T) {
	j, _ := newJournal(t)
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := j.AddPlant(ctx, model.Plant{Name: fmt.Sprintf("plant-%d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	st, err := j.State(ctx)
	require.NoError(t, err)
	assert.Len(t, st.Plants, 20)
}

// flakyStore fails Save, or Set for chosen keys, on demand.
type flakyStore struct {
	*memstore.Store
	saveErr error
	setErr  map[string]error
}

func (f *flakyStore) State() store.States { return flakyStates{States: f.Store.State(), f: f} }
func (f *flakyStore) Blobs() store.Blobs  { return flakyBlobs{Blobs: f.Store.Blobs(), f: f} }

type flakyStates struct {
	store.States
	f *flakyStore
}

func (s flakyStates) Save(ctx context.Context, st *model.ApplicationState) error {
	if s.f.saveErr != nil {
		return s.f.saveErr
	}
	return s.States.Save(ctx, st)
}

type flakyBlobs struct {
	store.Blobs
	f *flakyStore
}

func (b flakyBlobs) Set(ctx context.Context, key string, bl *blob.Blob) error {
	if err := b.f.setErr[key]; err != nil {
		return err
	}
	return b.Blobs.Set(ctx, key, bl)
}

// archiveWith exports a journal whose plants use the given photos as covers.
func archiveWith(t *testing.T, photos map[string]string) []byte {
	t.Helper()
	ctx := context.Background()
	src, s := newJournal(t)
	for key, data := range photos {
		require.NoError(t, s.Blobs().Set(ctx, key, &blob.Blob{Data: []byte(data), Type: "image/png"}))
		_, err := src.AddPlant(ctx, model.Plant{Name: key, CoverPhotoKey: key})
		require.NoError(t, err)
	}
	var buf bytes.Buffer
	_, err := src.ExportBackup(ctx, &buf)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestImportBackup_FailedImportInvalidatesHandles(t *testing.T) {
	ctx := context.Background()
	archive := archiveWith(t, map[string]string{"img_a": "NEW_A", "img_k": "NEWBYTES"})

	cases := map[string]func(f *flakyStore){
		"save fails": func(f *flakyStore) { f.saveErr = errors.New("disk full") },
		"restore fails midway": func(f *flakyStore) {
			f.setErr = map[string]error{"img_k": errors.New("disk full")}
		},
	}
	for name, breakStore := range cases {
		breakStore := breakStore
		t.Run(name, func(t *testing.T) {
			fs := &flakyStore{Store: memstore.New()}
			j := NewJournal(fs, config.NewForTesting(), zerolog.Nop())
			require.NoError(t, fs.Store.Blobs().Set(ctx, "img_a", &blob.Blob{Data: []byte("OLD"), Type: "image/png"}))
			before, err := j.PhotoHandle(ctx, "img_a")
			require.NoError(t, err)
			assert.EqualValues(t, 3, before.Size)

			breakStore(fs)
			_, err = j.ImportBackup(ctx, archive)
			require.Error(t, err)

			// img_a is restored first in key order, so its bytes changed either way.
			after, err := j.PhotoHandle(ctx, "img_a")
			require.NoError(t, err)
			assert.EqualValues(t, 5, after.Size)
			assert.NotEqual(t, before.ETag, after.ETag)
		})
	}
}
