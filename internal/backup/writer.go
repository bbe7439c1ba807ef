package backup

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/plantbygpt/plantbygpt/internal/blob"
	"github.com/plantbygpt/plantbygpt/internal/model"
	"github.com/plantbygpt/plantbygpt/internal/store"
)

// DefaultConcurrency bounds parallel photo reads when no limit is configured.
const DefaultConcurrency = 4

// BlobGetter is the read half of an object store.
type BlobGetter interface {
	Get(ctx context.Context, key string) (*blob.Blob, error)
}

// ExportReport summarizes one export.
type ExportReport struct {
	Keys     int       `json:"keys"`
	Archived int       `json:"archived"`
	Skipped  []string  `json:"skipped"`
	Warnings []Warning `json:"warnings"`
	Manifest Manifest  `json:"-"`
}

// Writer produces archives from a state plus the photos it references.
type Writer struct {
	blobs       BlobGetter
	log         zerolog.Logger
	concurrency int
	now         func() time.Time
}

// NewWriter returns a Writer reading photos from blobs with at most concurrency
// reads in flight.
func NewWriter(blobs BlobGetter, log zerolog.Logger, concurrency int) *Writer {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Writer{blobs: blobs, log: log, concurrency: concurrency, now: time.Now}
}

// Export streams a zip archive of st into out. Photos that cannot be read are left
// out of images/ and the manifest and reported as warnings; only a cancelled context
// or a failed write aborts the export. The store and st are never modified.
func (w *Writer) Export(ctx context.Context, st *model.ApplicationState, out io.Writer) (_ *ExportReport, err error) {
	defer func() { observe("export", err) }()
	if st == nil {
		return nil, errors.New("backup: nil state")
	}

	snapshot, err := json.MarshalIndent(Snapshot{
		BackupVersion: CurrentVersion,
		ExportedAt:    w.now().UTC().Format(time.RFC3339),
		State:         st,
	}, "", "  ")
	if err != nil {
		return nil, err
	}

	keys := CollectReferencedKeys(st)
	blobs, err := w.fetch(ctx, keys)
	if err != nil {
		return nil, err
	}

	report := &ExportReport{Keys: len(keys), Skipped: []string{}, Warnings: []Warning{}, Manifest: Manifest{}}
	zw := zip.NewWriter(out)
	if err := writeEntry(zw, SnapshotName, zip.Deflate, snapshot); err != nil {
		return nil, err
	}
	if _, err := zw.CreateHeader(&zip.FileHeader{Name: ImagesDir, Method: zip.Store}); err != nil {
		return nil, err
	}

	for i, key := range keys {
		b := blobs[i]
		if b == nil {
			report.Skipped = append(report.Skipped, key)
			report.Warnings = append(report.Warnings, Warning{
				Kind:    WarningMissingBinary,
				Key:     key,
				Message: "photo is referenced but could not be read",
			})
			photosSkippedTotal.WithLabelValues("export").Inc()
			continue
		}
		typ := b.Type
		if typ == "" {
			typ = blob.DefaultType
		}
		name := key + "." + ExtFromMIME(typ)
		// photos are already compressed
		if err := writeEntry(zw, ImagesDir+name, zip.Store, b.Data); err != nil {
			return nil, err
		}
		report.Manifest[key] = ManifestEntry{FileName: name, Type: typ, Size: int64(len(b.Data))}
		report.Archived++
		photosArchivedTotal.Inc()
	}

	manifest, err := json.MarshalIndent(report.Manifest, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := writeEntry(zw, ManifestName, zip.Deflate, manifest); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	w.log.Info().
		Int("keys", report.Keys).
		Int("archived", report.Archived).
		Int("skipped", len(report.Skipped)).
		Msg("backup exported")
	return report, nil
}

// fetch reads every key in parallel. The result is aligned with keys; a nil entry
// marks a photo that could not be read.
func (w *Writer) fetch(ctx context.Context, keys []string) ([]*blob.Blob, error) {
	out := make([]*blob.Blob, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			b, err := w.blobs.Get(gctx, key)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				ev := w.log.Warn().Str("key", key)
				if !errors.Is(err, store.ErrNotFound) {
					ev = ev.Err(err)
				}
				ev.Msg("skipping photo missing from object store")
				return nil
			}
			out[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func writeEntry(zw *zip.Writer, name string, method uint16, data []byte) error {
	f, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: method})
	if err != nil {
		return err
	}
	_, err = f.Write(data)
	return err
}
