package ports

import (
	"context"
	"io"

	"github.com/brandreg/crm-api/internal/core/domain"
)

// FileStore is the file storage collaborator: it accepts a binary stream and
// returns a stable reference usable later for retrieval. The core stores
// only the reference, never the bytes.
type FileStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// DocumentRenderer is the document-rendering collaborator: given a job's
// structured fields it produces a renderable power-of-attorney document.
type DocumentRenderer interface {
	PowerOfAttorney(job *domain.Job) ([]byte, error)
}
