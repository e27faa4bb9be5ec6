package driven

import (
	"context"

	"github.com/kinolens/kinolens-cli/internal/core/domain"
)

// ResultExporter persists the tabular aggregation results into a
// queryable file inside dir, written once per run. Export failures are
// reported as warnings by the pipeline, never as fatal errors.
type ResultExporter interface {
	Export(ctx context.Context, res *domain.AnalysisResults, dir string) (string, error)
}
