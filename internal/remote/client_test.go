package remote

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantbygpt/plantbygpt/internal/api"
	"github.com/plantbygpt/plantbygpt/internal/config"
	"github.com/plantbygpt/plantbygpt/internal/model"
	"github.com/plantbygpt/plantbygpt/internal/services"
	"github.com/plantbygpt/plantbygpt/internal/store/memstore"
)

func newService(t *testing.T) (*httptest.Server, *services.Journal) {
	t.Helper()
	cfg := config.NewForTesting()
	j := services.NewJournal(memstore.New(), cfg, zerolog.Nop())
	health := api.NewHealthHandler(func() bool { return true }, nil)
	srv := httptest.NewServer(api.NewRouter(j, health, api.Limits{}, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv, j
}

func TestHealth(t *testing.T) {
	srv, _ := newService(t)
	status, err := New(srv.URL, 5*time.Second).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", status)
}

func TestBackupRoundTrip(t *testing.T) {
	ctx := context.Background()
	src, srcJournal := newService(t)
	_, err := srcJournal.AddPlant(ctx, model.Plant{Name: "Jade"})
	require.NoError(t, err)

	var buf bytes.Buffer
	name, err := New(src.URL+"/", 5*time.Second).ExportBackup(ctx, &buf)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "PlantByGPT-backup-"))
	assert.True(t, strings.HasSuffix(name, ".zip"))

	dst, dstJournal := newService(t)
	report, err := New(dst.URL, 5*time.Second).ImportBackup(ctx, buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 3, report.BackupVersion)

	st, err := dstJournal.State(ctx)
	require.NoError(t, err)
	require.Len(t, st.Plants, 1)
	assert.Equal(t, "Jade", st.Plants[0].Name)
}

func TestImportBackup_Rejected(t *testing.T) {
	srv, _ := newService(t)
	_, err := New(srv.URL, 5*time.Second).ImportBackup(context.Background(), []byte("not a zip"))
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Message, "not a valid backup")
}

func TestExportBackup_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := New(srv.URL, 5*time.Second).ExportBackup(context.Background(), &bytes.Buffer{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "nope", apiErr.Message)
}
