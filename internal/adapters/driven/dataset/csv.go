package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kinolens/kinolens-cli/internal/core/domain"
	"github.com/kinolens/kinolens-cli/internal/logger"
)

// loadCSV reads a comma-separated dataset. The first row is the header.
func loadCSV(ctx context.Context, path string) (*domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataSource, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows are handled per-cell

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header of %s: %v", domain.ErrDataSource, path, err)
	}

	var rows [][]string
	for {
		if len(rows)%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A single unparsable line is a malformed record, not a
			// broken source; skip it.
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				logger.Debug("%v: %s line %d", domain.ErrMalformedRecord, path, parseErr.Line)
				continue
			}
			return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrDataSource, path, err)
		}
		rows = append(rows, row)
	}

	return buildDataset(header, rows)
}
