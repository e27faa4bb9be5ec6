package driven

import (
	"context"

	"github.com/kinolens/kinolens-cli/internal/core/domain"
)

// DatasetLoader reads a tabular review dataset into memory.
// Load validates the source schema once; errors wrap domain.ErrDataSource
// when the file is missing, unreadable, or lacks required columns.
type DatasetLoader interface {
	Load(ctx context.Context, path string) (*domain.Dataset, error)
}
