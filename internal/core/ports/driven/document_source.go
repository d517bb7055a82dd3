package driven

import (
	"context"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
)

// DocumentSource yields the raw knowledge documents and the structured fact
// table assembled from them. Load reads everything fresh; unreadable or
// malformed source files are skipped, not fatal.
type DocumentSource interface {
	Load(ctx context.Context) ([]domain.Document, domain.FactTable, error)
}
