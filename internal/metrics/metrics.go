package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Publishes counts publish transactions by terminal outcome.
	Publishes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shellos_packages_publishes_total",
		Help: "Publish transactions by outcome.",
	}, []string{"outcome"})

	// UploadedBytes counts bytes durably stored by successful uploads.
	UploadedBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shellos_packages_uploaded_bytes_total",
		Help: "Artifact bytes successfully uploaded.",
	})

	// CatalogRefreshes counts snapshot replacements in the catalog subscriber.
	CatalogRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shellos_packages_catalog_refreshes_total",
		Help: "Catalog snapshot reloads triggered by push notifications.",
	})
)
