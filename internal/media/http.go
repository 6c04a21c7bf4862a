package media

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ScopeHeader selects the alternate public path prefix for image uploads.
const ScopeHeader = "X-Media-Scope"

const scopeGallery = "gallery"

// RegisterRoutes mounts the media operations under the provided router group.
func RegisterRoutes(group *gin.RouterGroup, service *Service, resolver *Resolver) {
	handler := &httpHandler{service: service, resolver: resolver}
	group.POST("/media/upload", handler.upload)
	group.GET("/media/:folder/:filename", handler.resolve)
}

// RegisterAdminRoutes mounts the privileged migration triggers.
func RegisterAdminRoutes(group *gin.RouterGroup, migrator *Migrator) {
	handler := &adminHandler{migrator: migrator}
	group.POST("/media/migrate", handler.migrate)
	group.POST("/media/reconcile", handler.reconcile)
}

type httpHandler struct {
	service  *Service
	resolver *Resolver
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

func (h *httpHandler) upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "file field is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "could not read upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		fail(c, http.StatusBadRequest, "could not read upload")
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")

	kind := Kind(c.DefaultPostForm("kind", c.Query("kind")))
	if kind == "" {
		kind = kindForMimeType(mimeType)
	}

	result, err := h.service.Upload(c.Request.Context(), UploadInput{
		Data:         data,
		MimeType:     mimeType,
		OriginalName: fileHeader.Filename,
		Kind:         kind,
		AltPath:      c.GetHeader(ScopeHeader) == scopeGallery,
	})
	if err != nil {
		var vErr *ValidationError
		switch {
		case errors.As(err, &vErr):
			fail(c, http.StatusBadRequest, vErr.Error())
		case errors.Is(err, ErrStorageUnavailable):
			fail(c, http.StatusBadGateway, "remote storage unavailable")
		default:
			fail(c, http.StatusInternalServerError, "failed to store upload")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"filename": result.Filename,
		"path":     result.Path,
		"url":      result.URL,
	})
}

func (h *httpHandler) resolve(c *gin.Context) {
	folder := Folder(c.Param("folder"))
	if !folder.Valid() {
		fail(c, http.StatusNotFound, "unknown media folder")
		return
	}

	res, err := h.resolver.Resolve(c.Request.Context(), folder, c.Param("filename"))
	if err != nil {
		switch {
		case errors.Is(err, ErrTraversalRejected):
			fail(c, http.StatusBadRequest, "invalid filename")
		case errors.Is(err, ErrMediaNotFound):
			fail(c, http.StatusNotFound, "media not found")
		default:
			fail(c, http.StatusInternalServerError, "failed to resolve media")
		}
		return
	}

	if res.RedirectURL != "" {
		c.Redirect(http.StatusFound, res.RedirectURL)
		return
	}

	c.Header("Cache-Control", ImmutableCacheControl)
	c.Data(http.StatusOK, res.MimeType, res.Data)
}

type adminHandler struct {
	migrator *Migrator
}

func (h *adminHandler) migrate(c *gin.Context) {
	report, err := h.migrator.Run(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, "migration failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"migrated": report.Migrated,
		"skipped":  report.Skipped,
		"errors":   report.Errors,
	})
}

func (h *adminHandler) reconcile(c *gin.Context) {
	var entries []ReconcileEntry
	if err := c.ShouldBindJSON(&entries); err != nil {
		fail(c, http.StatusBadRequest, "body must be a list of filename/url pairs")
		return
	}

	report, err := h.migrator.Reconcile(c.Request.Context(), entries)
	if err != nil {
		fail(c, http.StatusInternalServerError, "reconciliation failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"migrated": report.Migrated,
		"skipped":  report.Skipped,
		"errors":   report.Errors,
	})
}

func kindForMimeType(mimeType string) Kind {
	if _, ok := allowedVideoTypes[mimeType]; ok {
		return KindVideo
	}
	return KindImage
}
