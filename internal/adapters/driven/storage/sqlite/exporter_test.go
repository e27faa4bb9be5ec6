package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinolens/kinolens-cli/internal/core/domain"
)

func exportResults() *domain.AnalysisResults {
	return &domain.AnalysisResults{
		Aggregate: &domain.AggregateResult{
			Movies: domain.TopMovies{
				ByReviews: []domain.MovieStats{
					{Name: "流浪地球", Score: 7.9, ReviewCount: 6, TotalLikes: 120, AvgStar: 4.2},
					{Name: "你好李焕英", Score: 8.1, ReviewCount: 4, TotalLikes: 40, AvgStar: 3.8},
				},
				ByScore: []domain.MovieStats{
					{Name: "你好李焕英", Score: 8.1, ReviewCount: 4, TotalLikes: 40, AvgStar: 3.8},
					{Name: "误杀", Score: 7.5, ReviewCount: 2, TotalLikes: 10, AvgStar: 3.9},
				},
			},
			Yearly: []domain.YearStats{
				{Year: 2020, Count: 5, AvgScore: 7.3, AvgStar: 3.9},
				{Year: 2021, Count: 7, AvgScore: 7.9, AvgStar: 4.1},
			},
			Monthly: []domain.MonthStats{
				{Year: 2021, Month: 2, Count: 7, PositiveRate: 71.4},
			},
		},
		Lexical: &domain.LexicalResult{
			Overall:  []domain.TermCount{{Term: "精彩", Count: 9}, {Term: "剧情", Count: 7}},
			Positive: []domain.TermCount{{Term: "精彩", Count: 8}},
			Negative: []domain.TermCount{{Term: "拖沓", Count: 2}},
		},
	}
}

func openDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func count(t *testing.T, db *sql.DB, query string, args ...interface{}) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(query, args...).Scan(&n))
	return n
}

func TestExport_WritesAllTables(t *testing.T) {
	dir := t.TempDir()

	path, err := NewExporter().Export(context.Background(), exportResults(), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), path)

	db := openDB(t, path)

	// ByReviews and ByScore overlap on one movie; three distinct rows.
	assert.Equal(t, 3, count(t, db, `SELECT COUNT(*) FROM movie_stats`))
	assert.Equal(t, 2, count(t, db, `SELECT COUNT(*) FROM yearly_trend`))
	assert.Equal(t, 1, count(t, db, `SELECT COUNT(*) FROM monthly_trend`))
	assert.Equal(t, 4, count(t, db, `SELECT COUNT(*) FROM keywords`))

	var score float64
	var reviews int
	require.NoError(t, db.QueryRow(
		`SELECT score, review_count FROM movie_stats WHERE name = ?`, "流浪地球").Scan(&score, &reviews))
	assert.InDelta(t, 7.9, score, 1e-9)
	assert.Equal(t, 6, reviews)

	var term string
	require.NoError(t, db.QueryRow(
		`SELECT term FROM keywords WHERE subset = ? AND rank = 1`, "overall").Scan(&term))
	assert.Equal(t, "精彩", term)
}

func TestExport_NilLexicalSkipsKeywords(t *testing.T) {
	res := exportResults()
	res.Lexical = nil

	path, err := NewExporter().Export(context.Background(), res, t.TempDir())
	require.NoError(t, err)

	db := openDB(t, path)
	assert.Equal(t, 0, count(t, db, `SELECT COUNT(*) FROM keywords`))
	assert.Equal(t, 3, count(t, db, `SELECT COUNT(*) FROM movie_stats`))
}

func TestExport_ReplacesPreviousDatabase(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter()

	_, err := e.Export(context.Background(), exportResults(), dir)
	require.NoError(t, err)

	res := exportResults()
	res.Aggregate.Yearly = res.Aggregate.Yearly[:1]
	path, err := e.Export(context.Background(), res, dir)
	require.NoError(t, err)

	db := openDB(t, path)
	assert.Equal(t, 1, count(t, db, `SELECT COUNT(*) FROM yearly_trend`))
}

func TestExport_NoAggregateIsAnError(t *testing.T) {
	_, err := NewExporter().Export(context.Background(), &domain.AnalysisResults{}, t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyResult)
}

func TestExport_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExporter().Export(ctx, exportResults(), t.TempDir())
	assert.Error(t, err)
}
