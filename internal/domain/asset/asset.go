package asset

import (
	"context"
	"io"
	"time"
)

// DefaultContentType is used when a blob declares no content type.
const DefaultContentType = "application/octet-stream"

// Asset is a physical file stored in one repository.
type Asset struct {
	Name           string
	Repository     string
	BlobRef        string
	DownloadCount  int64
	LastDownloaded *time.Time
}

// Blob is an open binary stream with its declared headers.
// The caller must close Body.
type Blob struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// UnitOfWork is the transactional view of asset storage for one download.
// Reads are immediate; writes are buffered until the scope ends.
type UnitOfWork interface {
	// FindByName returns the first asset with name in the given repositories, in order.
	FindByName(ctx context.Context, name string, repositories []string) (Asset, error)
	// MarkDownloaded records a download of a at the given time.
	MarkDownloaded(a *Asset, at time.Time)
	// Save buffers the asset's changes.
	Save(a *Asset) error
	// OpenBlob opens the blob stored under ref.
	OpenBlob(ctx context.Context, ref string) (Blob, error)
}
