package backup

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "plantbygpt",
			Subsystem: "backup",
			Name:      "operations_total",
			Help:      "Archive exports and imports by outcome.",
		},
		[]string{"operation", "result"},
	)

	photosArchivedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "plantbygpt",
			Subsystem: "backup",
			Name:      "photos_archived_total",
			Help:      "Photos written into export archives.",
		},
	)

	photosRestoredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "plantbygpt",
			Subsystem: "backup",
			Name:      "photos_restored_total",
			Help:      "Photos written back into the object store by imports.",
		},
	)

	photosSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "plantbygpt",
			Subsystem: "backup",
			Name:      "photos_skipped_total",
			Help:      "Referenced photos that could not be archived or restored.",
		},
		[]string{"operation"},
	)
)

func observe(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	operationsTotal.WithLabelValues(operation, result).Inc()
}
