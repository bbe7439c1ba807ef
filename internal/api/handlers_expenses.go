package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/plantbygpt/plantbygpt/internal/api/respond"
	"github.com/plantbygpt/plantbygpt/internal/model"
)

// AddExpense POST /api/expenses
func (h *Handler) AddExpense(w http.ResponseWriter, r *http.Request) {
	var x model.Expense
	if !h.decodeJSON(w, r, &x) {
		return
	}
	out, err := h.journal.AddExpense(r.Context(), x)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// DeleteExpense DELETE /api/expenses/{id}
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.journal.DeleteExpense(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExpenseSummary GET /api/expenses/summary?currency=CNY
func (h *Handler) ExpenseSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.journal.ExpenseSummary(r.Context(), r.URL.Query().Get("currency"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, sum)
}

// AddKnowledge POST /api/knowledges
func (h *Handler) AddKnowledge(w http.ResponseWriter, r *http.Request) {
	var k model.KnowledgeEntry
	if !h.decodeJSON(w, r, &k) {
		return
	}
	out, err := h.journal.AddKnowledge(r.Context(), k)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// UpdateKnowledge PUT /api/knowledges/{id}
func (h *Handler) UpdateKnowledge(w http.ResponseWriter, r *http.Request) {
	var k model.KnowledgeEntry
	if !h.decodeJSON(w, r, &k) {
		return
	}
	k.ID = mux.Vars(r)["id"]
	out, err := h.journal.UpdateKnowledge(r.Context(), k)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// DeleteKnowledge DELETE /api/knowledges/{id}
func (h *Handler) DeleteKnowledge(w http.ResponseWriter, r *http.Request) {
	if err := h.journal.DeleteKnowledge(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
