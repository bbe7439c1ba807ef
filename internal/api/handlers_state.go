package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/plantbygpt/plantbygpt/internal/api/respond"
)

// decodeJSON reads a JSON request body into v, answering 400 on malformed input.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, h.limits.MaxArchiveBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.WriteTooLarge(w, err.Error())
			return false
		}
		respond.WriteBadRequest(w, "Invalid JSON")
		return false
	}
	return true
}

// readBody reads at most limit bytes of the request body. A larger body yields an
// *http.MaxBytesError.
func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
}

func attachment(w http.ResponseWriter, contentType, name string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
}

// GetState GET /api/state
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	st, err := h.journal.State(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, st)
}

// PutState PUT /api/state replaces the journal with a text JSON export.
func (h *Handler) PutState(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r, h.limits.MaxArchiveBytes)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	if err := h.journal.ImportJSON(r.Context(), data); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	st, err := h.journal.State(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, st)
}

// ExportState GET /api/state/export
func (h *Handler) ExportState(w http.ResponseWriter, r *http.Request) {
	data, err := h.journal.ExportJSON(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	attachment(w, "application/json", h.journal.StateFileName())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
