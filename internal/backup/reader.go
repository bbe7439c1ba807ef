package backup

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/plantbygpt/plantbygpt/internal/blob"
	"github.com/plantbygpt/plantbygpt/internal/model"
)

// ImportReport summarizes one import.
type ImportReport struct {
	BackupVersion int       `json:"backupVersion"`
	ExportedAt    string    `json:"exportedAt"`
	Restored      []string  `json:"restored"`
	Warnings      []Warning `json:"warnings"`
}

// Default decompressed size caps for archive entries.
const (
	DefaultMaxJSONBytes  int64 = 512 << 20
	DefaultMaxImageBytes int64 = 8 << 20
)

// errEntryTooLarge is returned by readEntry when an entry inflates past its cap.
var errEntryTooLarge = errors.New("archive entry exceeds the size limit")

// Reader restores archives into an object store.
type Reader struct {
	blobs         blob.Setter
	log           zerolog.Logger
	maxJSONBytes  int64
	maxImageBytes int64
}

// NewReader returns a Reader that writes restored photos into blobs.
func NewReader(blobs blob.Setter, log zerolog.Logger) *Reader {
	return &Reader{
		blobs:         blobs,
		log:           log,
		maxJSONBytes:  DefaultMaxJSONBytes,
		maxImageBytes: DefaultMaxImageBytes,
	}
}

// WithLimits caps the decompressed size of the JSON entries and of each photo.
// Non-positive values keep the current cap.
func (r *Reader) WithLimits(maxJSONBytes, maxImageBytes int64) *Reader {
	if maxJSONBytes > 0 {
		r.maxJSONBytes = maxJSONBytes
	}
	if maxImageBytes > 0 {
		r.maxImageBytes = maxImageBytes
	}
	return r
}

// Import validates data as an archive, restores its photos into the object store
// and returns the decoded state. Every fatal check runs before the first photo is
// written, so a FormatError or SchemaError leaves the store untouched. Replacing the
// live state with the result is the caller's job.
func (r *Reader) Import(ctx context.Context, data []byte) (_ *model.ApplicationState, _ *ImportReport, err error) {
	defer func() { observe("import", err) }()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, NewFormatError("the file is not a zip archive", err)
	}

	files := make(map[string]*zip.File, len(zr.File))
	hasImages := false
	for _, f := range zr.File {
		files[f.Name] = f
		if strings.HasPrefix(f.Name, ImagesDir) {
			hasImages = true
		}
	}

	sf, ok := files[SnapshotName]
	if !ok {
		return nil, nil, NewFormatError("not a recognized backup (backup.json is missing)", nil)
	}
	raw, err := readEntry(sf, r.maxJSONBytes)
	if err != nil {
		return nil, nil, NewFormatError("backup.json could not be read", err)
	}
	var snap struct {
		BackupVersion int             `json:"backupVersion"`
		ExportedAt    string          `json:"exportedAt"`
		State         json.RawMessage `json:"state"`
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, nil, NewFormatError("backup.json is not valid JSON", err)
	}
	st, err := DecodeState(snap.State)
	if err != nil {
		return nil, nil, err
	}

	var manifest Manifest
	mf, hasManifest := files[ManifestName]
	if hasManifest && hasImages {
		rawManifest, err := readEntry(mf, r.maxJSONBytes)
		if err != nil {
			return nil, nil, NewFormatError("images-manifest.json could not be read", err)
		}
		if err := json.Unmarshal(rawManifest, &manifest); err != nil {
			return nil, nil, NewFormatError("images-manifest.json is not valid JSON", err)
		}
	}

	report := &ImportReport{
		BackupVersion: snap.BackupVersion,
		ExportedAt:    snap.ExportedAt,
		Restored:      []string{},
		Warnings:      []Warning{},
	}

	switch {
	case hasImages && !hasManifest:
		report.Warnings = append(report.Warnings, Warning{
			Kind:    WarningLegacyFormat,
			Message: "archive has images/ but no images-manifest.json; photos were not restored",
		})
		r.log.Warn().Msg("legacy backup without image manifest, photos skipped")
	case hasImages:
		if err := r.restore(ctx, files, manifest, report); err != nil {
			return nil, nil, err
		}
	}

	r.log.Info().
		Int("backup_version", report.BackupVersion).
		Int("plants", len(st.Plants)).
		Int("events", len(st.Events)).
		Int("restored", len(report.Restored)).
		Int("warnings", len(report.Warnings)).
		Msg("backup imported")
	return st, report, nil
}

// restore writes manifest entries into the object store in key order. Entries whose
// file is missing or unreadable are skipped with a warning; a failing store aborts.
func (r *Reader) restore(ctx context.Context, files map[string]*zip.File, manifest Manifest, report *ImportReport) error {
	keys := make([]string, 0, len(manifest))
	for k := range manifest {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		entry := manifest[key]
		f, ok := files[ImagesDir+entry.FileName]
		if key == "" || entry.FileName == "" || !ok {
			r.skip(report, key, "manifest entry has no matching file in images/")
			continue
		}
		data, err := readEntry(f, r.maxImageBytes)
		if errors.Is(err, errEntryTooLarge) {
			r.skip(report, key, "photo file in archive is larger than the image size limit")
			continue
		}
		if err != nil {
			r.log.Warn().Str("key", key).Err(err).Msg("unreadable photo in archive")
			r.skip(report, key, "photo file in archive could not be read")
			continue
		}
		if err := blob.SetNormalized(ctx, r.blobs, key, &blob.Blob{Data: data}, entry.Type); err != nil {
			return errors.Wrapf(err, "restore photo %s", key)
		}
		report.Restored = append(report.Restored, key)
		photosRestoredTotal.Inc()
	}
	return nil
}

func (r *Reader) skip(report *ImportReport, key, msg string) {
	report.Warnings = append(report.Warnings, Warning{Kind: WarningMissingBinary, Key: key, Message: msg})
	photosSkippedTotal.WithLabelValues("import").Inc()
	r.log.Warn().Str("key", key).Msg(msg)
}

// readEntry inflates f, failing with errEntryTooLarge once more than limit bytes
// come out. The header size is checked first but not trusted.
func readEntry(f *zip.File, limit int64) ([]byte, error) {
	if f.UncompressedSize64 > uint64(limit) {
		return nil, errEntryTooLarge
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errEntryTooLarge
	}
	return data, nil
}
