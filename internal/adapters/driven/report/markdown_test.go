package report

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinolens/kinolens-cli/internal/core/domain"
)

func sampleResults() *domain.AnalysisResults {
	return &domain.AnalysisResults{
		Summary: domain.LoadSummary{
			Records:        12,
			DistinctMovies: 2,
			DistinctUsers:  5,
			EarliestDate:   "2020-01-01",
			LatestDate:     "2021-12-31",
		},
		Stats: domain.PreprocessStats{Input: 12, Retained: 10},
		Aggregate: &domain.AggregateResult{
			Sentiment: []domain.SentimentCount{
				{Sentiment: domain.Negative, Count: 3},
				{Sentiment: domain.Neutral, Count: 2},
				{Sentiment: domain.Positive, Count: 5},
			},
			Scores: domain.ScoreDistribution{Mean: 7.5, Median: 7.8},
			Movies: domain.TopMovies{
				ByReviews: []domain.MovieStats{
					{Name: "流浪地球", Score: 7.9, ReviewCount: 6, AvgStar: 4.2, TotalLikes: 120},
					{Name: "你好李焕英", Score: 8.1, ReviewCount: 4, AvgStar: 3.8, TotalLikes: 40},
				},
			},
			Likes: domain.LikesAnalysis{LikedReviews: 7},
			Yearly: []domain.YearStats{
				{Year: 2020, Count: 4, AvgScore: 7.2, AvgStar: 3.9},
				{Year: 2021, Count: 6, AvgScore: 7.8, AvgStar: 4.1},
			},
			Monthly: []domain.MonthStats{
				{Year: 2020, Month: 3, Count: 4, PositiveRate: 50},
				{Year: 2021, Month: 6, Count: 6, PositiveRate: 70},
			},
			Corr: domain.Correlation{
				Features: []string{"score", "star", "like", "length", "sentiment"},
				Matrix: [][]float64{
					{1, 0.8, 0.1, 0.2, 0.7},
					{0.8, 1, 0.2, 0.3, 0.9},
					{0.1, 0.2, 1, 0.4, 0.1},
					{0.2, 0.3, 0.4, 1, 0.2},
					{0.7, 0.9, 0.1, 0.2, 1},
				},
			},
		},
		Lexical: &domain.LexicalResult{
			Overall: []domain.TermCount{{Term: "精彩", Count: 9}, {Term: "剧情", Count: 7}},
			Topics:  []domain.TermScore{{Term: "特效", Score: 0.42, Count: 5}},
		},
	}
}

func TestWrite_CreatesReport(t *testing.T) {
	dir := t.TempDir()

	path, err := NewMarkdown().Write(context.Background(), sampleResults(), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(raw)

	assert.Contains(t, content, "# Film Review Analysis Report")
	assert.Contains(t, content, "## Overview")
	assert.Contains(t, content, "12 loaded, 10 retained")
	assert.Contains(t, content, "**positive**: 5 reviews (50.00%)")
	assert.Contains(t, content, "**精彩**: 9 occurrences")
	assert.Contains(t, content, "流浪地球")
	assert.Contains(t, content, "**Peak year**: 2021 (6 reviews)")
	assert.Contains(t, content, "**score vs star**: 0.800")
	assert.Contains(t, content, "11_comprehensive_dashboard.png")
	assert.NotContains(t, content, "## Warnings")

	// The full matrix table carries one labeled row per feature.
	assert.Contains(t, content, "| | score | star | like | length | sentiment |")
	for _, feature := range []string{"score", "star", "like", "length", "sentiment"} {
		assert.Contains(t, content, "| **"+feature+"** |")
	}
	assert.Contains(t, content, "| **sentiment** | 0.700 | 0.900 | 0.100 | 0.200 | 1.000 |")
}

func TestWrite_IsDeterministic(t *testing.T) {
	first, err := NewMarkdown().Write(context.Background(), sampleResults(), t.TempDir())
	require.NoError(t, err)
	second, err := NewMarkdown().Write(context.Background(), sampleResults(), t.TempDir())
	require.NoError(t, err)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestWrite_OverwritesPreviousReport(t *testing.T) {
	dir := t.TempDir()
	m := NewMarkdown()

	_, err := m.Write(context.Background(), sampleResults(), dir)
	require.NoError(t, err)

	res := sampleResults()
	res.Stats.Retained = 3
	path, err := m.Write(context.Background(), res, dir)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "12 loaded, 3 retained")
}

func TestWrite_NaNCorrelationRendersAsNA(t *testing.T) {
	res := sampleResults()
	res.Aggregate.Corr.Matrix[0][1] = math.NaN()
	res.Aggregate.Corr.Matrix[1][0] = math.NaN()

	path, err := NewMarkdown().Write(context.Background(), res, t.TempDir())
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, "**score vs star**: n/a")
	assert.NotContains(t, content, "NaN")
}

func TestWrite_MissingLexicalSection(t *testing.T) {
	res := sampleResults()
	res.Lexical = nil

	path, err := NewMarkdown().Write(context.Background(), res, t.TempDir())
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, "Keyword extraction did not run")
	// Degraded keywords never remove the other sections.
	assert.Contains(t, content, "## Top Movies")
	assert.Contains(t, content, "## Correlations")
}

func TestWrite_WarningsSection(t *testing.T) {
	res := sampleResults()
	res.Warnings = []string{"dropped 2 records with a missing or invalid star rating"}

	path, err := NewMarkdown().Write(context.Background(), res, t.TempDir())
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "## Warnings")
	assert.Contains(t, string(raw), "dropped 2 records")
}

func TestWrite_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMarkdown().Write(ctx, sampleResults(), t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWrite_BadDirectory(t *testing.T) {
	_, err := NewMarkdown().Write(context.Background(), sampleResults(), filepath.Join(t.TempDir(), "missing", "dir"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrReportWrite)
}
