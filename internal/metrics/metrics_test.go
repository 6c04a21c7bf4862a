package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRegisterExposesPrometheusEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	Register(router, "/metrics")

	UploadsTotal.WithLabelValues("image", "success").Inc()
	ResolutionsTotal.WithLabelValues("store_url").Inc()
	MigrationFilesTotal.WithLabelValues("migrated").Inc()

	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	body := rr.Body.String()
	for _, name := range []string{"media_uploads_total", "media_resolutions_total", "media_migration_files_total"} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %s in metrics output", name)
		}
	}
}
