package driven

import (
	"context"

	"github.com/kinolens/kinolens-cli/internal/core/domain"
)

// ReportWriter renders all aggregation results into a single document
// inside dir and returns its path. The content is a pure function of
// res: it is identical whether charts were generated or not. Errors
// wrap domain.ErrReportWrite and are fatal to the run.
type ReportWriter interface {
	Write(ctx context.Context, res *domain.AnalysisResults, dir string) (string, error)
}
