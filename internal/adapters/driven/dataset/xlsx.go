package dataset

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/kinolens/kinolens-cli/internal/core/domain"
)

// loadXLSX reads the first sheet of a spreadsheet dataset. The first
// row is the header.
func loadXLSX(ctx context.Context, path string) (*domain.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataSource, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s contains no sheets", domain.ErrDataSource, path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %q of %s: %v", domain.ErrDataSource, sheets[0], path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s sheet %q is empty", domain.ErrDataSource, path, sheets[0])
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return buildDataset(rows[0], rows[1:])
}
