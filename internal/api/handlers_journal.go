package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/plantbygpt/plantbygpt/internal/api/respond"
	"github.com/plantbygpt/plantbygpt/internal/model"
)

// AddLocation POST /api/locations
func (h *Handler) AddLocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := h.journal.AddLocation(r.Context(), req.Name); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, req)
}

// RemoveLocation DELETE /api/locations/{name}
func (h *Handler) RemoveLocation(w http.ResponseWriter, r *http.Request) {
	if err := h.journal.RemoveLocation(r.Context(), mux.Vars(r)["name"]); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddPlant POST /api/plants
func (h *Handler) AddPlant(w http.ResponseWriter, r *http.Request) {
	var p model.Plant
	if !h.decodeJSON(w, r, &p) {
		return
	}
	out, err := h.journal.AddPlant(r.Context(), p)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// UpdatePlant PUT /api/plants/{id}
func (h *Handler) UpdatePlant(w http.ResponseWriter, r *http.Request) {
	var p model.Plant
	if !h.decodeJSON(w, r, &p) {
		return
	}
	p.ID = mux.Vars(r)["id"]
	out, err := h.journal.UpdatePlant(r.Context(), p)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeletePlant DELETE /api/plants/{id}
func (h *Handler) DeletePlant(w http.ResponseWriter, r *http.Request) {
	if err := h.journal.DeletePlant(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddEvent POST /api/events
func (h *Handler) AddEvent(w http.ResponseWriter, r *http.Request) {
	var e model.Event
	if !h.decodeJSON(w, r, &e) {
		return
	}
	out, err := h.journal.AddEvent(r.Context(), e)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// UpdateEvent PUT /api/events/{id}
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var e model.Event
	if !h.decodeJSON(w, r, &e) {
		return
	}
	e.ID = mux.Vars(r)["id"]
	out, err := h.journal.UpdateEvent(r.Context(), e)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteEvent DELETE /api/events/{id}
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.journal.DeleteEvent(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddLog POST /api/logs
func (h *Handler) AddLog(w http.ResponseWriter, r *http.Request) {
	var l model.Log
	if !h.decodeJSON(w, r, &l) {
		return
	}
	out, err := h.journal.AddLog(r.Context(), l)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// UpdateLog PUT /api/logs/{id}
func (h *Handler) UpdateLog(w http.ResponseWriter, r *http.Request) {
	var l model.Log
	if !h.decodeJSON(w, r, &l) {
		return
	}
	l.ID = mux.Vars(r)["id"]
	out, err := h.journal.UpdateLog(r.Context(), l)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteLog DELETE /api/logs/{id}
func (h *Handler) DeleteLog(w http.ResponseWriter, r *http.Request) {
	if err := h.journal.DeleteLog(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
