// Package api exposes the journal over HTTP.
package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/plantbygpt/plantbygpt/internal/api/recovery"
	"github.com/plantbygpt/plantbygpt/internal/services"
)

// Limits caps request bodies.
type Limits struct {
	MaxImageBytes   int64
	MaxArchiveBytes int64
}

// NewRouter registers every journal route on a fresh mux router.
func NewRouter(journal *services.Journal, health *HealthHandler, limits Limits, log zerolog.Logger) *mux.Router {
	if limits.MaxImageBytes <= 0 {
		limits.MaxImageBytes = 8 << 20
	}
	if limits.MaxArchiveBytes <= 0 {
		limits.MaxArchiveBytes = 512 << 20
	}
	root := mux.NewRouter()
	root.Use(recovery.Middleware(log))
	root.Use(instrument)

	h := &Handler{journal: journal, limits: limits, log: log}

	root.HandleFunc("/api/health", health.CheckHealth).Methods("GET")
	root.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// State
	root.HandleFunc("/api/state", h.GetState).Methods("GET")
	root.HandleFunc("/api/state", h.PutState).Methods("PUT")
	root.HandleFunc("/api/state/export", h.ExportState).Methods("GET")

	// Locations and plants
	root.HandleFunc("/api/locations", h.AddLocation).Methods("POST")
	root.HandleFunc("/api/locations/{name}", h.RemoveLocation).Methods("DELETE")
	root.HandleFunc("/api/plants", h.AddPlant).Methods("POST")
	root.HandleFunc("/api/plants/{id}", h.UpdatePlant).Methods("PUT")
	root.HandleFunc("/api/plants/{id}", h.DeletePlant).Methods("DELETE")

	// Events and logs
	root.HandleFunc("/api/events", h.AddEvent).Methods("POST")
	root.HandleFunc("/api/events/{id}", h.UpdateEvent).Methods("PUT")
	root.HandleFunc("/api/events/{id}", h.DeleteEvent).Methods("DELETE")
	root.HandleFunc("/api/logs", h.AddLog).Methods("POST")
	root.HandleFunc("/api/logs/{id}", h.UpdateLog).Methods("PUT")
	root.HandleFunc("/api/logs/{id}", h.DeleteLog).Methods("DELETE")

	// Expenses and knowledge
	root.HandleFunc("/api/expenses", h.AddExpense).Methods("POST")
	root.HandleFunc("/api/expenses/summary", h.ExpenseSummary).Methods("GET")
	root.HandleFunc("/api/expenses/{id}", h.DeleteExpense).Methods("DELETE")
	root.HandleFunc("/api/knowledges", h.AddKnowledge).Methods("POST")
	root.HandleFunc("/api/knowledges/{id}", h.UpdateKnowledge).Methods("PUT")
	root.HandleFunc("/api/knowledges/{id}", h.DeleteKnowledge).Methods("DELETE")

	// Photos
	root.HandleFunc("/api/photos", h.ListPhotos).Methods("GET")
	root.HandleFunc("/api/photos", h.UploadPhoto).Methods("POST")
	root.HandleFunc("/api/photos/{key}", h.GetPhoto).Methods("GET")
	root.HandleFunc("/api/photos/{key}", h.DeletePhoto).Methods("DELETE")

	// Backup
	root.HandleFunc("/api/backup", h.ExportBackup).Methods("GET")
	root.HandleFunc("/api/backup", h.ImportBackup).Methods("POST")

	return root
}

// Handler provides HTTP transport for journal operations.
type Handler struct {
	journal *services.Journal
	limits  Limits
	log     zerolog.Logger
}
