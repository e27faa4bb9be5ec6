// Package dataset loads tabular review data from CSV or XLSX sources.
// The schema is validated once at load time: rows become typed
// domain.RawReview records, never untyped field lookups.
package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kinolens/kinolens-cli/internal/core/domain"
	"github.com/kinolens/kinolens-cli/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.DatasetLoader = (*Loader)(nil)

// Required source columns, by header name.
const (
	colID          = "ID"
	colMovieName   = "Movie_Name"
	colScore       = "Score"
	colReviewCount = "Review_Count"
	colUsername    = "Username"
	colStar        = "Star"
	colComment     = "Comment"
	colDate        = "Date"
	colLike        = "Like"
)

var requiredColumns = []string{
	colID, colMovieName, colScore, colReviewCount,
	colUsername, colStar, colComment, colDate, colLike,
}

// Loader reads a review dataset, choosing the format by file extension.
type Loader struct{}

// NewLoader creates a dataset loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the file at path into a Dataset. Unknown extensions,
// unreadable files, and schema mismatches all wrap domain.ErrDataSource.
func (l *Loader) Load(ctx context.Context, path string) (*domain.Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadCSV(ctx, path)
	case ".xlsx":
		return loadXLSX(ctx, path)
	default:
		return nil, fmt.Errorf("%w: unsupported file format %q (want .csv or .xlsx)",
			domain.ErrDataSource, filepath.Ext(path))
	}
}

// columnIndex maps the required columns to their positions in header.
// Header matching is exact and case-sensitive.
func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: schema is missing required columns: %s",
			domain.ErrDataSource, strings.Join(missing, ", "))
	}
	return idx, nil
}

// buildDataset converts raw string rows into the typed record table and
// computes the load summary. Unparsable optional fields become nil
// pointers; typed policy decisions belong to the preprocessor.
func buildDataset(header []string, rows [][]string) (*domain.Dataset, error) {
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	cell := func(row []string, col string) string {
		i := idx[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]domain.RawReview, 0, len(rows))
	movies := make(map[string]struct{})
	users := make(map[string]struct{})
	var earliest, latest string

	for n, row := range rows {
		raw := domain.RawReview{
			MovieName:   cell(row, colMovieName),
			Username:    cell(row, colUsername),
			Comment:     cell(row, colComment),
			Date:        cell(row, colDate),
			ReviewCount: parseInt(cell(row, colReviewCount)),
			Like:        parseInt(cell(row, colLike)),
		}

		if id, err := strconv.ParseInt(cell(row, colID), 10, 64); err == nil {
			raw.ID = id
		} else {
			raw.ID = int64(n + 1)
		}
		if v, err := strconv.ParseFloat(cell(row, colScore), 64); err == nil {
			raw.Score = &v
		}
		if v, err := strconv.Atoi(cell(row, colStar)); err == nil {
			raw.Star = &v
		}

		movies[raw.MovieName] = struct{}{}
		if raw.Username != "" {
			users[raw.Username] = struct{}{}
		}
		if raw.Date != "" {
			if earliest == "" || raw.Date < earliest {
				earliest = raw.Date
			}
			if raw.Date > latest {
				latest = raw.Date
			}
		}

		records = append(records, raw)
	}

	return &domain.Dataset{
		Records: records,
		Summary: domain.LoadSummary{
			Records:        len(records),
			Fields:         len(header),
			DistinctMovies: len(movies),
			DistinctUsers:  len(users),
			EarliestDate:   earliest,
			LatestDate:     latest,
		},
	}, nil
}

func parseInt(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
