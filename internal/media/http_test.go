package media

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, repo *fakeStore, origin *fakeOrigin, uploadsRoot string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	service := NewService(repo, origin, testMediaConfig(), zap.NewNop())
	resolver := NewResolver(repo, uploadsRoot, zap.NewNop())

	router := gin.New()
	RegisterRoutes(router.Group("/v1"), service, resolver)
	return router
}

func multipartUpload(t *testing.T, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestUploadThenResolveRedirectsToSameURL(t *testing.T) {
	repo := newFakeStore()
	router := newTestRouter(t, repo, &fakeOrigin{}, t.TempDir())

	body, contentType := multipartUpload(t, "photo.jpg", "image/jpeg", bytes.Repeat([]byte("x"), 2*1024*1024))
	req := httptest.NewRequest(http.MethodPost, "/v1/media/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp struct {
		Success  bool   `json:"success"`
		Filename string `json:"filename"`
		Path     string `json:"path"`
		URL      string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Regexp(t, `^image-\d+-\d+\.jpg$`, resp.Filename)
	assert.NotEmpty(t, resp.URL)

	get := httptest.NewRequest(http.MethodGet, "/v1/media/images/"+resp.Filename, nil)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, get)

	assert.Equal(t, http.StatusFound, getRec.Code)
	assert.Equal(t, resp.URL, getRec.Header().Get("Location"))
}

func TestUploadMissingFileFieldReturnsEnvelope(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &fakeOrigin{}, t.TempDir())

	req := httptest.NewRequest(http.MethodPost, "/v1/media/upload", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"success":false`)
}

func TestUploadOversizedReturnsValidationMessage(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &fakeOrigin{}, t.TempDir())

	body, contentType := multipartUpload(t, "big.png", "image/png", bytes.Repeat([]byte("x"), 6*1024*1024))
	req := httptest.NewRequest(http.MethodPost, "/v1/media/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "size")
}

func TestUploadGalleryScopeChangesReturnedPathOnly(t *testing.T) {
	repo := newFakeStore()
	router := newTestRouter(t, repo, &fakeOrigin{}, t.TempDir())

	body, contentType := multipartUpload(t, "banner.png", "image/png", []byte("pixels"))
	req := httptest.NewRequest(http.MethodPost, "/v1/media/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(ScopeHeader, "gallery")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp struct {
		Path     string `json:"path"`
		Filename string `json:"filename"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp.Path, "/v1/media/gallery/images/")
	assert.Equal(t, FolderImages, repo.records[resp.Filename].Folder)
}

func TestResolveBlobSendsCacheHeaders(t *testing.T) {
	repo := newFakeStore()
	repo.records["old-banner.png"] = Record{
		Filename: "old-banner.png",
		MimeType: "image/png",
		Data:     []byte("png bytes"),
		Folder:   FolderImages,
	}
	router := newTestRouter(t, repo, &fakeOrigin{}, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/v1/media/images/old-banner.png", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Equal(t, ImmutableCacheControl, rr.Header().Get("Cache-Control"))
	assert.Equal(t, "png bytes", rr.Body.String())
}

func TestResolveTraversalFilenameRejected(t *testing.T) {
	repo := newFakeStore()
	router := newTestRouter(t, repo, &fakeOrigin{}, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/v1/media/images/..hidden.png", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Zero(t, repo.finds, "store must not be consulted")
}

func TestResolveUnknownFolderReturns404(t *testing.T) {
	router := newTestRouter(t, newFakeStore(), &fakeOrigin{}, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/v1/media/documents/a.pdf", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), `"success":false`)
}

func TestResolveStoreFailureReturns500Envelope(t *testing.T) {
	repo := newFakeStore()
	repo.findErr = assert.AnError
	router := newTestRouter(t, repo, &fakeOrigin{}, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/v1/media/images/any.png", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), `"success":false`)
}
