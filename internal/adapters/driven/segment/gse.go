// Package segment provides the Chinese word segmenter used by the
// lexical analyzer.
package segment

import (
	"fmt"

	"github.com/go-ego/gse"

	"github.com/kinolens/kinolens-cli/internal/core/ports/driven"
)

// Ensure GSE implements the interface.
var _ driven.Segmenter = (*GSE)(nil)

// GSE wraps a dictionary-based gse segmenter. The zero dictionary load
// uses the embedded simplified-Chinese dictionary. Safe for concurrent
// use once constructed.
type GSE struct {
	seg gse.Segmenter
}

// NewGSE creates a segmenter with the default Chinese dictionary.
func NewGSE() (*GSE, error) {
	g := &GSE{}
	if err := g.seg.LoadDict(); err != nil {
		return nil, fmt.Errorf("loading segmentation dictionary: %w", err)
	}
	return g, nil
}

// Cut splits text into words using dictionary matching with the HMM
// fallback for out-of-vocabulary runs.
func (g *GSE) Cut(text string) []string {
	return g.seg.Cut(text, true)
}
