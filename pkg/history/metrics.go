package history

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for history maintenance.
var (
	recordsMerged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sorare_history_records_merged_total",
		Help: "Total new records inserted into player histories",
	})

	historiesPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sorare_history_persists_total",
		Help: "Total player history files written",
	})
)
