package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/plantbygpt/plantbygpt/internal/api/respond"
)

// ExportBackup GET /api/backup streams a zip of the journal and its photos.
// Photos that could not be read are listed in X-Backup-Skipped.
func (h *Handler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	report, err := h.journal.ExportBackup(r.Context(), &buf)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	attachment(w, "application/zip", h.journal.BackupFileName())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Backup-Skipped", strconv.Itoa(len(report.Skipped)))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// ImportBackup POST /api/backup replaces the journal with an uploaded archive.
func (h *Handler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r, h.limits.MaxArchiveBytes)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	report, err := h.journal.ImportBackup(r.Context(), data)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	h.log.Info().
		Int("backup_version", report.BackupVersion).
		Int("restored", len(report.Restored)).
		Int("warnings", len(report.Warnings)).
		Msg("backup imported")
	respond.WriteJSON(w, http.StatusOK, report)
}
