package core

import (
	"context"
	"io"

	"github.com/dkeye/Punk/internal/domain"
)

//go:generate mockgen -destination=mock/blob_mock.go -package=mock github.com/dkeye/Punk/internal/core BlobStore

// BlobRange is a slice of a stored file. End is inclusive. The caller
// closes Body.
type BlobRange struct {
	Body     io.ReadCloser
	Start    int64
	End      int64
	Size     int64
	MimeType string
}

// BlobStore keeps attachment bytes per room.
type BlobStore interface {
	StoreAttachment(ctx context.Context, room domain.RoomCode, r io.Reader, filename, mimeType string) (domain.Attachment, error)
	// DeleteAttachment removes the file and its thumbnail. Missing files are not an error.
	DeleteAttachment(ctx context.Context, room domain.RoomCode, storedName string) error
	// ReadRange reads [start, end]. A negative end reads to the end of the file.
	ReadRange(ctx context.Context, room domain.RoomCode, storedName string, start, end int64) (BlobRange, error)
}
