package services

import (
	"context"
	"io"

	"github.com/plantbygpt/plantbygpt/internal/backup"
)

// BackupFileName is the suggested download name for an archive made now.
func (j *Journal) BackupFileName() string {
	return backup.FileName(j.appName, j.now())
}

// StateFileName is the suggested download name for a text export made now.
func (j *Journal) StateFileName() string {
	return backup.StateFileName(j.appName, j.now())
}

// ExportBackup writes an archive of the journal and its photos to w. Edits wait
// until the export finishes so the archive is a consistent snapshot.
func (j *Journal) ExportBackup(ctx context.Context, w io.Writer) (*backup.ExportReport, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	st, err := j.State(ctx)
	if err != nil {
		return nil, err
	}
	return j.writer.Export(ctx, st, w)
}

// ImportBackup restores an archive. The journal is replaced only after the archive
// validated and its photos were written; a rejected archive changes nothing.
func (j *Journal) ImportBackup(ctx context.Context, data []byte) (*backup.ImportReport, error) {
	if size := int64(len(data)); size > j.maxArchiveBytes {
		return nil, OversizeInputError{What: "backup archive", Size: size, Limit: j.maxArchiveBytes}
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	st, report, err := j.reader.Import(ctx, data)
	if err != nil {
		if !backup.IsFormatError(err) && !backup.IsSchemaError(err) {
			// some photos may already have been overwritten
			j.urls.InvalidateAll()
		}
		return nil, err
	}
	if err := j.replace(ctx, st); err != nil {
		j.urls.InvalidateAll()
		return nil, err
	}
	return report, nil
}

// ExportJSON renders the journal as editable JSON without photos.
func (j *Journal) ExportJSON(ctx context.Context) ([]byte, error) {
	st, err := j.State(ctx)
	if err != nil {
		return nil, err
	}
	return backup.ExportJSON(st)
}

// ImportJSON replaces the journal with a JSON text export. Photos are untouched.
func (j *Journal) ImportJSON(ctx context.Context, data []byte) error {
	if size := int64(len(data)); size > j.maxArchiveBytes {
		return OversizeInputError{What: "state JSON", Size: size, Limit: j.maxArchiveBytes}
	}
	st, err := backup.ImportJSON(data)
	if err != nil {
		return err
	}
	return j.ReplaceState(ctx, st)
}
