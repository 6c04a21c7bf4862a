package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}

var (
	// UploadsTotal counts ingestion outcomes by media kind.
	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "media_uploads_total",
		Help: "Upload attempts by kind and outcome.",
	}, []string{"kind", "outcome"})

	// ResolutionsTotal counts retrievals by the tier that answered.
	ResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "media_resolutions_total",
		Help: "Retrieval resolutions by answering tier.",
	}, []string{"tier"})

	// MigrationFilesTotal counts per-file migration outcomes.
	MigrationFilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "media_migration_files_total",
		Help: "Migration job per-file outcomes.",
	}, []string{"outcome"})
)
