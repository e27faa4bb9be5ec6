package driven

// Segmenter splits review text into words. The production adapter is a
// dictionary-based Chinese segmenter; tests substitute simpler cuts.
// Implementations must be safe for concurrent use.
type Segmenter interface {
	Cut(text string) []string
}
