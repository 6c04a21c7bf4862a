package media

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/devotionhub/media-service/internal/config"
	"github.com/devotionhub/media-service/internal/metrics"
	"go.uber.org/zap"
)

// allowed mime types for video uploads; images accept any image/* type.
var allowedVideoTypes = map[string]struct{}{
	"video/mp4":       {},
	"video/webm":      {},
	"video/ogg":       {},
	"video/quicktime": {},
}

type recordInserter interface {
	Insert(ctx context.Context, rec Record) (Record, error)
}

// OriginUpload is what the remote origin reports back for a stored object.
type OriginUpload struct {
	URL      string
	PublicID string
}

type remoteOrigin interface {
	Upload(ctx context.Context, folder, filename, contentType string, data []byte) (OriginUpload, error)
	Remove(ctx context.Context, publicID string) error
}

// Service runs the upload ingestion pipeline.
type Service struct {
	repo   recordInserter
	origin remoteOrigin
	cfg    config.MediaConfig
	log    *zap.Logger
}

// NewService constructs an ingestion service.
func NewService(repo recordInserter, origin remoteOrigin, cfg config.MediaConfig, log *zap.Logger) *Service {
	return &Service{repo: repo, origin: origin, cfg: cfg, log: log}
}

// UploadInput carries one in-memory upload buffer and its declared metadata.
type UploadInput struct {
	Data         []byte
	MimeType     string
	OriginalName string
	Kind         Kind
	// AltPath routes image uploads under the alternate public prefix. It
	// affects only the returned path, never storage.
	AltPath bool
}

// Upload validates the buffer, transfers it to the remote origin and writes
// exactly one metadata record. Validation runs before any network call; an
// origin failure leaves no partial state behind.
func (s *Service) Upload(ctx context.Context, in UploadInput) (UploadResult, error) {
	if err := s.validate(in); err != nil {
		metrics.UploadsTotal.WithLabelValues(string(in.Kind), "rejected").Inc()
		return UploadResult{}, err
	}

	filename := newFilename(in.Kind, in.OriginalName)
	folder := in.Kind.Folder()
	originFolder := s.cfg.Project + "/" + string(folder)

	up, err := s.origin.Upload(ctx, originFolder, filename, in.MimeType, in.Data)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(string(in.Kind), "origin_error").Inc()
		return UploadResult{}, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	rec := Record{
		Filename:     filename,
		OriginalName: in.OriginalName,
		MimeType:     in.MimeType,
		SizeBytes:    int64(len(in.Data)),
		URL:          up.URL,
		PublicID:     up.PublicID,
		Folder:       folder,
	}

	if _, err := s.repo.Insert(ctx, rec); err != nil {
		// The remote transfer already succeeded; try to undo it so the
		// origin does not accumulate orphans, then surface the failure.
		if rmErr := s.origin.Remove(ctx, up.PublicID); rmErr != nil {
			s.log.Error("orphaned remote object after metadata write failure",
				zap.String("filename", filename),
				zap.String("public_id", up.PublicID),
				zap.Error(rmErr),
			)
		}
		metrics.UploadsTotal.WithLabelValues(string(in.Kind), "persistence_error").Inc()
		return UploadResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	metrics.UploadsTotal.WithLabelValues(string(in.Kind), "success").Inc()

	return UploadResult{
		Filename: filename,
		Path:     s.publicPath(in, folder, filename),
		URL:      up.URL,
	}, nil
}

func (s *Service) validate(in UploadInput) error {
	switch in.Kind {
	case KindImage:
		if !strings.HasPrefix(in.MimeType, "image/") {
			return &ValidationError{Constraint: "type", Detail: fmt.Sprintf("%q is not an image type", in.MimeType)}
		}
		if int64(len(in.Data)) > s.cfg.MaxImageBytes {
			return &ValidationError{Constraint: "size", Detail: fmt.Sprintf("image exceeds %d bytes", s.cfg.MaxImageBytes)}
		}
	case KindVideo:
		if _, ok := allowedVideoTypes[in.MimeType]; !ok {
			return &ValidationError{Constraint: "type", Detail: fmt.Sprintf("%q is not an allowed video type", in.MimeType)}
		}
		if int64(len(in.Data)) > s.cfg.MaxVideoBytes {
			return &ValidationError{Constraint: "size", Detail: fmt.Sprintf("video exceeds %d bytes", s.cfg.MaxVideoBytes)}
		}
	default:
		return &ValidationError{Constraint: "type", Detail: fmt.Sprintf("unsupported kind %q", in.Kind)}
	}
	return nil
}

func (s *Service) publicPath(in UploadInput, folder Folder, filename string) string {
	prefix := s.cfg.PublicPrefix
	if in.AltPath && in.Kind == KindImage {
		prefix = s.cfg.AltImagePrefix
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(prefix, "/"), folder, filename)
}

// newFilename combines the kind prefix, a millisecond timestamp and a random
// integer, keeping the original extension. Uniqueness comes from the
// construction itself; no existence check is made.
func newFilename(kind Kind, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%s-%d-%d%s", kind, time.Now().UnixMilli(), rand.Int63n(1_000_000_000), ext)
}
