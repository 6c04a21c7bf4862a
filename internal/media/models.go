package media

import "time"

// Folder classifies an asset into one of the two legacy disk directories.
type Folder string

const (
	FolderImages Folder = "images"
	FolderVideos Folder = "videos"
)

// Valid reports whether the folder is one of the known classifications.
func (f Folder) Valid() bool {
	return f == FolderImages || f == FolderVideos
}

// Kind is the upload-time media category.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Valid reports whether the kind is supported.
func (k Kind) Valid() bool {
	return k == KindImage || k == KindVideo
}

// Folder maps a kind to the folder its assets live under.
func (k Kind) Folder() Folder {
	if k == KindVideo {
		return FolderVideos
	}
	return FolderImages
}

// Record is the metadata entry for a stored asset, keyed by its generated
// globally unique filename. Exactly one of URL or Data produces the bytes:
// remote-backed records carry a URL, disk-migrated records carry the blob.
type Record struct {
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	SizeBytes    int64     `json:"size_bytes"`
	URL          string    `json:"url,omitempty"`
	PublicID     string    `json:"public_id,omitempty"`
	Data         []byte    `json:"-"`
	Folder       Folder    `json:"folder"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UploadResult is returned to the caller after a successful ingestion so an
// absolute link can be constructed without a follow-up read.
type UploadResult struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	URL      string `json:"url"`
}

// MigrationReport summarizes one backfill run.
type MigrationReport struct {
	Migrated int `json:"migrated"`
	Skipped  int `json:"skipped"`
	Errors   int `json:"errors"`
}

// ReconcileEntry is an out-of-band provenance pair mapping a filename to a
// previously known remote URL.
type ReconcileEntry struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
}
