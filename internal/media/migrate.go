package media

import (
	"context"
	"errors"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/devotionhub/media-service/internal/metrics"
	"go.uber.org/zap"
)

type migrationStore interface {
	FindByFilename(ctx context.Context, filename string) (Record, error)
	Insert(ctx context.Context, rec Record) (Record, error)
	UpsertRemote(ctx context.Context, filename, url, publicID, mimeType string, folder Folder) (Record, error)
}

// Migrator reconciles the legacy disk tree into the metadata store so the
// resolver can stop depending on its disk fallback tier.
type Migrator struct {
	repo        migrationStore
	uploadsRoot string
	log         *zap.Logger
}

// NewMigrator constructs a migrator over the legacy tree at uploadsRoot.
func NewMigrator(repo migrationStore, uploadsRoot string, log *zap.Logger) *Migrator {
	return &Migrator{repo: repo, uploadsRoot: uploadsRoot, log: log}
}

// Run walks both legacy folders and inserts a blob-backed record for every
// file the store does not know yet. Files already present are skipped,
// making the job safe to re-run; any per-file failure (including a
// duplicate-key insert from a concurrent run) is counted and the batch
// continues.
func (m *Migrator) Run(ctx context.Context) (MigrationReport, error) {
	var report MigrationReport

	for _, folder := range []Folder{FolderImages, FolderVideos} {
		dir := filepath.Join(m.uploadsRoot, string(folder))
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			m.log.Error("read legacy folder", zap.String("dir", dir), zap.Error(err))
			report.Errors++
			metrics.MigrationFilesTotal.WithLabelValues("errored").Inc()
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			m.migrateFile(ctx, folder, dir, entry.Name(), &report)
		}
	}

	m.log.Info("migration run finished",
		zap.Int("migrated", report.Migrated),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", report.Errors),
	)
	return report, nil
}

func (m *Migrator) migrateFile(ctx context.Context, folder Folder, dir, name string, report *MigrationReport) {
	_, err := m.repo.FindByFilename(ctx, name)
	switch {
	case err == nil:
		report.Skipped++
		metrics.MigrationFilesTotal.WithLabelValues("skipped").Inc()
		return
	case !errors.Is(err, ErrMediaNotFound):
		m.log.Error("lookup during migration", zap.String("filename", name), zap.Error(err))
		report.Errors++
		metrics.MigrationFilesTotal.WithLabelValues("errored").Inc()
		return
	}

	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		m.log.Error("read legacy file", zap.String("path", path), zap.Error(err))
		report.Errors++
		metrics.MigrationFilesTotal.WithLabelValues("errored").Inc()
		return
	}

	if data == nil {
		// zero-byte files still carry a blob; nil would read as blob-less
		data = []byte{}
	}

	rec := Record{
		Filename:     name,
		OriginalName: name,
		MimeType:     mimeTypeForExtension(name, folder),
		SizeBytes:    int64(len(data)),
		Data:         data,
		Folder:       folder,
	}

	if _, err := m.repo.Insert(ctx, rec); err != nil {
		m.log.Error("insert migrated record", zap.String("filename", name), zap.Error(err))
		report.Errors++
		metrics.MigrationFilesTotal.WithLabelValues("errored").Inc()
		return
	}

	report.Migrated++
	metrics.MigrationFilesTotal.WithLabelValues("migrated").Inc()
}

// Reconcile attaches out-of-band remote provenance to records, creating
// them when absent. Entries with a blank or literal "null" URL are skipped.
func (m *Migrator) Reconcile(ctx context.Context, entries []ReconcileEntry) (MigrationReport, error) {
	var report MigrationReport

	for _, entry := range entries {
		name := strings.TrimSpace(entry.Filename)
		rawURL := strings.TrimSpace(entry.URL)
		if name == "" || rawURL == "" || strings.EqualFold(rawURL, "null") {
			report.Skipped++
			continue
		}

		folder := folderForFilename(name)
		publicID := publicIDFromURL(rawURL)
		mimeType := mimeTypeForExtension(name, folder)

		if _, err := m.repo.UpsertRemote(ctx, name, rawURL, publicID, mimeType, folder); err != nil {
			m.log.Error("reconcile record", zap.String("filename", name), zap.Error(err))
			report.Errors++
			continue
		}
		report.Migrated++
	}

	return report, nil
}

// folderForFilename classifies a generated filename by its kind prefix.
func folderForFilename(filename string) Folder {
	if strings.HasPrefix(filename, string(KindVideo)+"-") {
		return FolderVideos
	}
	return FolderImages
}

// publicIDFromURL derives the origin's object identifier from a permanent
// URL: the path without its leading slash and extension.
func publicIDFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return ""
	}
	p := strings.TrimPrefix(u.Path, "/")
	return strings.TrimSuffix(p, filepath.Ext(p))
}

var extensionTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".ogg":  "video/ogg",
	".ogv":  "video/ogg",
	".mov":  "video/quicktime",
}

// mimeTypeForExtension infers a content type from the file extension alone;
// content sniffing is deliberately not performed.
func mimeTypeForExtension(filename string, _ Folder) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if i := strings.IndexByte(t, ';'); i > 0 {
			t = t[:i]
		}
		return t
	}
	return "application/octet-stream"
}
