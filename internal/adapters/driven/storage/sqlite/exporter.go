// Package sqlite exports the tabular aggregation results into a
// queryable SQLite file, one per run.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/kinolens/kinolens-cli/internal/core/domain"
	"github.com/kinolens/kinolens-cli/internal/core/ports/driven"
)

// FileName is the database artifact written into the output directory.
const FileName = "stats.db"

// Ensure Exporter implements the interface.
var _ driven.ResultExporter = (*Exporter)(nil)

// Exporter writes aggregation result tables into a fresh SQLite file.
type Exporter struct{}

// NewExporter creates a result exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

const schema = `
CREATE TABLE movie_stats (
	name         TEXT PRIMARY KEY,
	score        REAL NOT NULL,
	review_count INTEGER NOT NULL,
	total_likes  INTEGER NOT NULL,
	avg_star     REAL NOT NULL
);
CREATE TABLE yearly_trend (
	year      INTEGER PRIMARY KEY,
	count     INTEGER NOT NULL,
	avg_score REAL NOT NULL,
	avg_star  REAL NOT NULL
);
CREATE TABLE monthly_trend (
	year          INTEGER NOT NULL,
	month         INTEGER NOT NULL,
	count         INTEGER NOT NULL,
	positive_rate REAL NOT NULL,
	PRIMARY KEY (year, month)
);
CREATE TABLE keywords (
	subset TEXT NOT NULL,
	rank   INTEGER NOT NULL,
	term   TEXT NOT NULL,
	count  INTEGER NOT NULL,
	PRIMARY KEY (subset, rank)
);
`

// Export writes the movie, trend and keyword tables into dir/stats.db.
// An existing database from a previous run is replaced, never appended
// to. All inserts run in one transaction so an interrupted export never
// leaves a partial file behind the final rename.
func (e *Exporter) Export(ctx context.Context, res *domain.AnalysisResults, dir string) (string, error) {
	if res.Aggregate == nil {
		return "", fmt.Errorf("%w: nothing to export", domain.ErrEmptyResult)
	}

	path := filepath.Join(dir, FileName)
	tmpDir, err := os.MkdirTemp(dir, ".export-*")
	if err != nil {
		return "", fmt.Errorf("creating export scratch dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	tmpPath := filepath.Join(tmpDir, FileName)
	db, err := sql.Open("sqlite", tmpPath)
	if err != nil {
		return "", fmt.Errorf("opening database: %w", err)
	}

	if err := e.fill(ctx, db, res); err != nil {
		db.Close()
		return "", err
	}
	if err := db.Close(); err != nil {
		return "", fmt.Errorf("closing database: %w", err)
	}

	os.Remove(path)
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("finalising database: %w", err)
	}
	return path, nil
}

func (e *Exporter) fill(ctx context.Context, db *sql.DB, res *domain.AnalysisResults) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	agg := res.Aggregate
	// ByReviews and ByScore overlap; insert each movie once.
	seen := make(map[string]struct{})
	for _, movies := range [][]domain.MovieStats{agg.Movies.ByReviews, agg.Movies.ByScore} {
		for _, m := range movies {
			if _, ok := seen[m.Name]; ok {
				continue
			}
			seen[m.Name] = struct{}{}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO movie_stats (name, score, review_count, total_likes, avg_star) VALUES (?, ?, ?, ?, ?)`,
				m.Name, m.Score, m.ReviewCount, m.TotalLikes, m.AvgStar); err != nil {
				return fmt.Errorf("inserting movie stats: %w", err)
			}
		}
	}

	for _, y := range agg.Yearly {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO yearly_trend (year, count, avg_score, avg_star) VALUES (?, ?, ?, ?)`,
			y.Year, y.Count, y.AvgScore, y.AvgStar); err != nil {
			return fmt.Errorf("inserting yearly trend: %w", err)
		}
	}
	for _, m := range agg.Monthly {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO monthly_trend (year, month, count, positive_rate) VALUES (?, ?, ?, ?)`,
			m.Year, m.Month, m.Count, m.PositiveRate); err != nil {
			return fmt.Errorf("inserting monthly trend: %w", err)
		}
	}

	if res.Lexical != nil {
		subsets := map[string][]domain.TermCount{
			"overall":  res.Lexical.Overall,
			"positive": res.Lexical.Positive,
			"negative": res.Lexical.Negative,
		}
		for subset, terms := range subsets {
			for rank, t := range terms {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO keywords (subset, rank, term, count) VALUES (?, ?, ?, ?)`,
					subset, rank+1, t.Term, t.Count); err != nil {
					return fmt.Errorf("inserting keywords: %w", err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing export: %w", err)
	}
	return nil
}
