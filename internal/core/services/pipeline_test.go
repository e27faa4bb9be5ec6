package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinolens/kinolens-cli/internal/core/domain"
	"github.com/kinolens/kinolens-cli/internal/core/ports/driven"
)

// mockLoader returns a canned dataset or error.
type mockLoader struct {
	ds  *domain.Dataset
	err error
}

var _ driven.DatasetLoader = (*mockLoader)(nil)

func (m *mockLoader) Load(_ context.Context, _ string) (*domain.Dataset, error) {
	return m.ds, m.err
}

// mockRenderer records the results it was given.
type mockRenderer struct {
	artifacts []string
	warnings  []string
	got       *domain.AnalysisResults
}

var _ driven.ChartRenderer = (*mockRenderer)(nil)

func (m *mockRenderer) RenderAll(_ context.Context, res *domain.AnalysisResults, _ string) ([]string, []string) {
	m.got = res
	return m.artifacts, m.warnings
}

type mockReport struct {
	path string
	err  error
	got  *domain.AnalysisResults
}

var _ driven.ReportWriter = (*mockReport)(nil)

func (m *mockReport) Write(_ context.Context, res *domain.AnalysisResults, _ string) (string, error) {
	m.got = res
	return m.path, m.err
}

type mockExporter struct {
	path   string
	err    error
	called bool
}

var _ driven.ResultExporter = (*mockExporter)(nil)

func (m *mockExporter) Export(_ context.Context, _ *domain.AnalysisResults, _ string) (string, error) {
	m.called = true
	return m.path, m.err
}

// tenReviews builds a dataset of ten reviews over two movies with the
// star sequence 5,5,4,3,2,1,5,4,3,2.
func tenReviews() *domain.Dataset {
	stars := []int{5, 5, 4, 3, 2, 1, 5, 4, 3, 2}
	records := make([]domain.RawReview, len(stars))
	for i, s := range stars {
		movie := "Alpha"
		if i >= 5 {
			movie = "Beta"
		}
		records[i] = domain.RawReview{
			ID:        int64(i + 1),
			MovieName: movie,
			Score:     fptr(7.5),
			Username:  "viewer",
			Star:      iptr(s),
			Comment:   "剧情 精彩",
			Date:      "2021-05-01",
		}
	}
	return &domain.Dataset{
		Records: records,
		Summary: domain.LoadSummary{Records: len(records), Fields: 9, DistinctMovies: 2, DistinctUsers: 1},
	}
}

func pipelineConfig(t *testing.T) domain.Config {
	t.Helper()
	cfg := domain.DefaultConfig()
	cfg.InputPath = "reviews.csv"
	cfg.OutputDir = t.TempDir()
	return cfg
}

func TestRun_Success(t *testing.T) {
	renderer := &mockRenderer{artifacts: []string{"01.png", "02.png"}}
	report := &mockReport{path: "analysis_report.md"}
	p := New(&mockLoader{ds: tenReviews()}, spaceSegmenter{}, renderer, report, nil, pipelineConfig(t))

	run, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, run.RunID)
	assert.Equal(t, domain.StageOK, run.Stages[StageLoad])
	assert.Equal(t, domain.StageOK, run.Stages[StagePreprocess])
	assert.Equal(t, domain.StageOK, run.Stages[StageLexical])
	assert.Equal(t, domain.StageOK, run.Stages[StageAggregate])
	assert.Equal(t, domain.StageOK, run.Stages[StageCharts])
	assert.Equal(t, domain.StageOK, run.Stages[StageReport])
	assert.NotContains(t, run.Stages, StageExport)

	assert.Equal(t, []string{"01.png", "02.png", "analysis_report.md"}, run.Artifacts)
	assert.Equal(t, "analysis_report.md", run.ReportPath)
	assert.Equal(t, 10, run.Stats.Retained)

	// The star partition 5,5,4,3,2,1,5,4,3,2 labels 5 positive, 2
	// neutral, 3 negative.
	require.NotNil(t, renderer.got)
	agg := renderer.got.Aggregate
	require.NotNil(t, agg)
	assert.Equal(t, []domain.SentimentCount{
		{Sentiment: domain.Negative, Count: 3},
		{Sentiment: domain.Neutral, Count: 2},
		{Sentiment: domain.Positive, Count: 5},
	}, agg.Sentiment)

	require.NotNil(t, renderer.got.Lexical)
	assert.Empty(t, run.Warnings)
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := pipelineConfig(t)
	cfg.InputPath = ""
	p := New(&mockLoader{ds: tenReviews()}, spaceSegmenter{}, &mockRenderer{}, &mockReport{}, nil, cfg)

	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestRun_LoadFailureIsFatal(t *testing.T) {
	loadErr := errors.New("no such file")
	p := New(&mockLoader{err: loadErr}, spaceSegmenter{}, &mockRenderer{}, &mockReport{}, nil, pipelineConfig(t))

	run, err := p.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, loadErr)
	assert.Equal(t, domain.StageFailed, run.Stages[StageLoad])
	assert.NotContains(t, run.Stages, StagePreprocess)
}

func TestRun_PreprocessFailureIsFatal(t *testing.T) {
	// All records lack a star rating, so nothing survives cleaning.
	ds := &domain.Dataset{Records: []domain.RawReview{{MovieName: "A"}}}
	p := New(&mockLoader{ds: ds}, spaceSegmenter{}, &mockRenderer{}, &mockReport{}, nil, pipelineConfig(t))

	run, err := p.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDataSource)
	assert.Equal(t, domain.StageFailed, run.Stages[StagePreprocess])
}

func TestRun_ReportFailureIsFatal(t *testing.T) {
	report := &mockReport{err: domain.ErrReportWrite}
	p := New(&mockLoader{ds: tenReviews()}, spaceSegmenter{}, &mockRenderer{}, report, nil, pipelineConfig(t))

	run, err := p.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrReportWrite)
	assert.Equal(t, domain.StageFailed, run.Stages[StageReport])
	assert.Empty(t, run.ReportPath)
}

func TestRun_ChartWarningsDoNotChangeReportInput(t *testing.T) {
	renderer := &mockRenderer{
		artifacts: []string{"01.png"},
		warnings:  []string{"chart 02 failed"},
	}
	report := &mockReport{path: "analysis_report.md"}
	p := New(&mockLoader{ds: tenReviews()}, spaceSegmenter{}, renderer, report, nil, pipelineConfig(t))

	run, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.StageFailed, run.Stages[StageCharts])
	assert.Contains(t, run.Warnings, "chart 02 failed")

	// The report sees the results without the chart warning: its content
	// must not depend on chart generation.
	require.NotNil(t, report.got)
	assert.NotContains(t, report.got.Warnings, "chart 02 failed")
}

func TestRun_ExporterOnlyWhenConfigured(t *testing.T) {
	exporter := &mockExporter{path: "stats.db"}
	cfg := pipelineConfig(t)
	p := New(&mockLoader{ds: tenReviews()}, spaceSegmenter{}, &mockRenderer{}, &mockReport{path: "r.md"}, exporter, cfg)

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, exporter.called)

	cfg.ExportDB = true
	exporter = &mockExporter{path: "stats.db"}
	p = New(&mockLoader{ds: tenReviews()}, spaceSegmenter{}, &mockRenderer{}, &mockReport{path: "r.md"}, exporter, cfg)

	run, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, exporter.called)
	assert.Equal(t, domain.StageOK, run.Stages[StageExport])
	assert.Contains(t, run.Artifacts, "stats.db")
}

func TestRun_ExportFailureIsWarning(t *testing.T) {
	exporter := &mockExporter{err: errors.New("disk full")}
	cfg := pipelineConfig(t)
	cfg.ExportDB = true
	p := New(&mockLoader{ds: tenReviews()}, spaceSegmenter{}, &mockRenderer{}, &mockReport{path: "r.md"}, exporter, cfg)

	run, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StageFailed, run.Stages[StageExport])
	require.NotEmpty(t, run.Warnings)
	assert.Contains(t, run.Warnings[len(run.Warnings)-1], "result export failed")
}

func TestRun_OutputDirCreated(t *testing.T) {
	cfg := pipelineConfig(t)
	cfg.OutputDir = filepath.Join(cfg.OutputDir, "nested", "out")
	p := New(&mockLoader{ds: tenReviews()}, spaceSegmenter{}, &mockRenderer{}, &mockReport{path: "r.md"}, nil, cfg)

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.DirExists(t, cfg.OutputDir)
}

func TestRun_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(&mockLoader{ds: tenReviews()}, spaceSegmenter{}, &mockRenderer{}, &mockReport{}, nil, pipelineConfig(t))
	_, err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
