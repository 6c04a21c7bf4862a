package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/devotionhub/media-service/internal/config"
	"github.com/devotionhub/media-service/internal/logger"
	"github.com/devotionhub/media-service/internal/media"
	"github.com/devotionhub/media-service/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config        config.Config
	Log           *zap.Logger
	DB            *pgxpool.Pool
	ObjectStore   *minio.Client
	MediaService  *media.Service
	MediaResolver *media.Resolver
	MediaMigrator *media.Migrator
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware(deps.Log))

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	api := router.Group("/v1")
	media.RegisterRoutes(api, deps.MediaService, deps.MediaResolver)

	admin := api.Group("/admin")
	admin.Use(adminAuth(deps.Config.Admin.Token))
	media.RegisterAdminRoutes(admin, deps.MediaMigrator)

	return router
}

// adminAuth guards privileged routes with a static bearer token. An empty
// configured token disables the admin surface entirely.
func adminAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "admin endpoints are disabled",
			})
			return
		}

		supplied := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "unauthorized",
			})
			return
		}

		c.Next()
	}
}
