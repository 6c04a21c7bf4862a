package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/devotionhub/media-service/internal/metrics"
	"go.uber.org/zap"
)

// ImmutableCacheControl is sent with byte responses; stored content never
// changes under a given filename.
const ImmutableCacheControl = "public, max-age=31536000, immutable"

type recordFinder interface {
	FindByFilename(ctx context.Context, filename string) (Record, error)
}

// Resolution is a single answer from the resolver: either a redirect target
// or a byte payload with its content type.
type Resolution struct {
	RedirectURL string
	Data        []byte
	MimeType    string
}

// Resolver answers retrieval requests by consulting an ordered list of
// sources and short-circuiting on the first that has an answer. It is a
// pure read path with no side effects.
type Resolver struct {
	repo        recordFinder
	uploadsRoot string
	log         *zap.Logger
	tiers       []tier
}

type tier struct {
	name    string
	resolve func(ctx context.Context, rec Record, found bool, folder Folder, filename string) (Resolution, bool, error)
}

// NewResolver constructs a resolver over the metadata store and the legacy
// disk tree rooted at uploadsRoot.
func NewResolver(repo recordFinder, uploadsRoot string, log *zap.Logger) *Resolver {
	r := &Resolver{repo: repo, uploadsRoot: uploadsRoot, log: log}
	r.tiers = []tier{
		{name: "store_url", resolve: r.storeURL},
		{name: "store_blob", resolve: r.storeBlob},
		{name: "legacy_disk", resolve: r.legacyDisk},
	}
	return r
}

// Resolve produces a redirect or byte answer for the requested filename.
// Filenames carrying traversal sequences or separators are rejected before
// any lookup. Infrastructure failures are reported distinct from
// ErrMediaNotFound so callers can tell a missing asset from a degraded
// service.
func (r *Resolver) Resolve(ctx context.Context, folder Folder, filename string) (Resolution, error) {
	if unsafeFilename(filename) {
		return Resolution{}, ErrTraversalRejected
	}

	rec, found, err := r.lookup(ctx, filename)
	if err != nil {
		return Resolution{}, err
	}

	for _, t := range r.tiers {
		res, ok, err := t.resolve(ctx, rec, found, folder, filename)
		if err != nil {
			return Resolution{}, err
		}
		if ok {
			metrics.ResolutionsTotal.WithLabelValues(t.name).Inc()
			return res, nil
		}
	}

	metrics.ResolutionsTotal.WithLabelValues("none").Inc()
	return Resolution{}, ErrMediaNotFound
}

func (r *Resolver) lookup(ctx context.Context, filename string) (Record, bool, error) {
	rec, err := r.repo.FindByFilename(ctx, filename)
	if err != nil {
		if errors.Is(err, ErrMediaNotFound) {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("metadata lookup: %w", err)
	}
	return rec, true, nil
}

func (r *Resolver) storeURL(_ context.Context, rec Record, found bool, _ Folder, _ string) (Resolution, bool, error) {
	if !found || rec.URL == "" {
		return Resolution{}, false, nil
	}
	return Resolution{RedirectURL: rec.URL}, true, nil
}

func (r *Resolver) storeBlob(_ context.Context, rec Record, found bool, _ Folder, filename string) (Resolution, bool, error) {
	// A nil blob means no blob at all; an empty non-nil blob is a stored
	// zero-byte asset and must still be served.
	if !found || rec.Data == nil {
		if found && rec.URL == "" {
			// Defensive: a record with neither url nor blob should not
			// exist. Treat it as absent rather than serving nothing.
			r.log.Warn("media record has neither url nor data", zap.String("filename", filename))
		}
		return Resolution{}, false, nil
	}
	return Resolution{Data: rec.Data, MimeType: rec.MimeType}, true, nil
}

func (r *Resolver) legacyDisk(_ context.Context, _ Record, found bool, folder Folder, filename string) (Resolution, bool, error) {
	if found {
		// The store answered (or holds an invalid record); disk serves only
		// files predating the store.
		return Resolution{}, false, nil
	}

	path := filepath.Join(r.uploadsRoot, string(folder), filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Resolution{}, false, nil
		}
		return Resolution{}, false, fmt.Errorf("read legacy file %s: %w", path, err)
	}

	return Resolution{Data: data, MimeType: mimeTypeForExtension(filename, folder)}, true, nil
}

func unsafeFilename(filename string) bool {
	return filename == "" ||
		strings.Contains(filename, "..") ||
		strings.ContainsAny(filename, `/\`)
}
