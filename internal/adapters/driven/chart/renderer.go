// Package chart renders aggregation results into PNG artifacts with
// gonum/plot. The renderer is purely presentational: every number it
// draws was computed by the aggregator or the lexical analyzer.
package chart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/kinolens/kinolens-cli/internal/core/domain"
	"github.com/kinolens/kinolens-cli/internal/core/ports/driven"
	"github.com/kinolens/kinolens-cli/internal/logger"
)

// Ensure Renderer implements the interface.
var _ driven.ChartRenderer = (*Renderer)(nil)

// Renderer draws one PNG per aggregation result category. Artifacts are
// numerically prefixed so directory listings show them in analysis
// order, matching the report's chart inventory.
type Renderer struct {
	dpi     int
	hasCJK  bool
	noFonts bool // tests disable the font probe
}

// Option configures the renderer.
type Option func(*Renderer)

// WithoutFontProbe skips CJK font discovery. Used by tests.
func WithoutFontProbe() Option {
	return func(r *Renderer) { r.noFonts = true }
}

// New creates a renderer drawing at the given DPI. The system is probed
// once for a CJK font so Chinese movie names and keywords render; when
// none is found the charts still draw with degraded labels.
func New(dpi int, opts ...Option) *Renderer {
	r := &Renderer{dpi: dpi}
	for _, opt := range opts {
		opt(r)
	}
	if !r.noFonts {
		r.hasCJK = registerCJKFont()
		if !r.hasCJK {
			logger.Warn("no CJK font found; Chinese chart labels may not render")
		}
	}
	return r
}

// chartSpec binds an artifact file name to its panel builder and size.
type chartSpec struct {
	name   string
	width  vg.Length
	height vg.Length
	build  func(res *domain.AnalysisResults) [][]*plot.Plot
}

func (r *Renderer) specs() []chartSpec {
	in := vg.Inch
	return []chartSpec{
		{"01_sentiment_distribution.png", 12 * in, 5 * in, sentimentPanels},
		{"02_score_distribution.png", 10 * in, 5 * in, scorePanels},
		{"03_top_keywords.png", 10 * in, 8 * in, keywordPanels},
		{"04_keyword_subsets.png", 14 * in, 7 * in, subsetKeywordPanels},
		{"05_top_movies.png", 10 * in, 10 * in, moviePanels},
		{"06_likes_analysis.png", 12 * in, 5 * in, likesPanels},
		{"07_time_trend.png", 10 * in, 8 * in, yearlyPanels},
		{"08_monthly_trend.png", 12 * in, 8 * in, monthlyPanels},
		{"09_correlation_heatmap.png", 16 * in, 6 * in, correlationPanels},
		{"10_scatter_matrix.png", 12 * in, 12 * in, scatterPanels},
		{"11_comprehensive_dashboard.png", 14 * in, 12 * in, dashboardPanels},
	}
}

// RenderAll draws every chart into dir. A failing chart is skipped with
// a warning; the remaining charts still render. The returned slices
// list written artifact paths and per-chart warnings respectively.
func (r *Renderer) RenderAll(ctx context.Context, res *domain.AnalysisResults, dir string) ([]string, []string) {
	var artifacts, warnings []string

	for _, spec := range r.specs() {
		if err := ctx.Err(); err != nil {
			warnings = append(warnings, fmt.Sprintf("charts aborted: %v", err))
			break
		}

		path := filepath.Join(dir, spec.name)
		if err := r.renderOne(spec, res, path); err != nil {
			warnings = append(warnings, fmt.Errorf("%w: %s: %v", domain.ErrRender, spec.name, err).Error())
			logger.Warn("skipping %s: %v", spec.name, err)
			continue
		}
		artifacts = append(artifacts, path)
	}

	return artifacts, warnings
}

// renderOne builds and writes a single artifact. Panics inside a panel
// builder are contained here so one bad label cannot take down the run.
func (r *Renderer) renderOne(spec chartSpec, res *domain.AnalysisResults, path string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic while drawing: %v", rec)
		}
	}()

	plots := spec.build(res)
	return r.writePNG(plots, spec.width, spec.height, path)
}

// writePNG composes the panel grid onto one canvas and writes it
// atomically: a temp file in the target directory, then a rename, so an
// interrupted run never leaves a corrupt artifact.
func (r *Renderer) writePNG(plots [][]*plot.Plot, w, h vg.Length, path string) error {
	canvas := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(r.dpi))
	dc := draw.New(canvas)

	rows := len(plots)
	cols := 0
	for _, row := range plots {
		if len(row) > cols {
			cols = len(row)
		}
	}

	tiles := draw.Tiles{
		Rows: rows,
		Cols: cols,
		PadX: vg.Millimeter * 4,
		PadY: vg.Millimeter * 4,
	}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		for j := range plots[i] {
			if plots[i][j] != nil {
				plots[i][j].Draw(canvases[i][j])
			}
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".chart-*.png")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	png := vgimg.PngCanvas{Canvas: canvas}
	if _, err := png.WriteTo(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
