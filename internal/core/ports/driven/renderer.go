package driven

import (
	"context"

	"github.com/kinolens/kinolens-cli/internal/core/domain"
)

// ChartRenderer turns aggregation results into image artifacts inside
// dir. A failure on one chart must not stop the others: RenderAll
// returns the paths it wrote plus one warning per skipped artifact.
// Empty results are rendered as placeholder charts, not errors.
type ChartRenderer interface {
	RenderAll(ctx context.Context, res *domain.AnalysisResults, dir string) (artifacts []string, warnings []string)
}
