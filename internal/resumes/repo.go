package resumes

import (
	"context"
	"time"
)

// Repo persists résumé records.
type Repo interface {
	Create(ctx context.Context, resume Resume) error
	GetByID(ctx context.Context, id string) (Resume, error)
	ListByDeveloper(ctx context.Context, developerID string) ([]Resume, error)
	// AttachPDF sets the portable URL only while it is still absent and
	// reports whether this call won.
	AttachPDF(ctx context.Context, id, pdfURL string, now time.Time) (bool, error)
}
