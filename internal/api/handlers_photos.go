package api

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/plantbygpt/plantbygpt/internal/api/respond"
)

// UploadPhoto POST /api/photos takes the raw image as the request body. A missing or
// generic Content-Type lets the service sniff the bytes.
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r, h.limits.MaxImageBytes)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	declared, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if declared == "application/octet-stream" {
		declared = ""
	}
	handle, err := h.journal.SavePhoto(r.Context(), data, declared)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, handle)
}

// ListPhotos GET /api/photos
func (h *Handler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	keys, err := h.journal.ListPhotos(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	if keys == nil {
		keys = []string{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"keys": keys, "count": len(keys)})
}

// GetPhoto GET /api/photos/{key}
func (h *Handler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	b, handle, err := h.journal.Photo(r.Context(), mux.Vars(r)["key"])
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	etag := strconv.Quote(handle.ETag)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", handle.Type)
	w.Header().Set("Content-Length", strconv.Itoa(len(b.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b.Data)
}

// DeletePhoto DELETE /api/photos/{key}
func (h *Handler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	if err := h.journal.DeletePhoto(r.Context(), mux.Vars(r)["key"]); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
