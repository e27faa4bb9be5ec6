package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Sentiment is the label derived from a reviewer's star rating.
type Sentiment int

// Sentiment labels in ordinal order. The ordinal encoding is used
// directly as the numeric sentiment feature in the correlation matrix.
const (
	Negative Sentiment = iota
	Neutral
	Positive
)

// String returns the lowercase English name of the label.
func (s Sentiment) String() string {
	switch s {
	case Negative:
		return "negative"
	case Neutral:
		return "neutral"
	case Positive:
		return "positive"
	default:
		return "unknown"
	}
}

// Ordinal returns the numeric encoding used for correlation features.
func (s Sentiment) Ordinal() float64 { return float64(s) }

// RawReview is one row as read from the tabular source, before any
// cleaning. Optional numeric fields are pointers so that a missing cell
// is distinguishable from a zero value.
type RawReview struct {
	ID          int64
	MovieName   string
	Score       *float64
	ReviewCount int
	Username    string
	Star        *int
	Comment     string
	Date        string
	Like        int
}

// Review is one cleaned record. Every Review carries exactly one
// sentiment label and fully typed fields; downstream stages never see
// missing values.
type Review struct {
	ID          int64
	MovieName   string
	Score       float64
	ReviewCount int
	Username    string
	Star        int
	Comment     string
	Like        int

	Timestamp time.Time
	Year      int
	Month     time.Month
	// TimeValid is false when the source timestamp was malformed.
	// Such records are excluded from time-bucket aggregations only.
	TimeValid bool

	Sentiment Sentiment
	// Length is the rune count of the trimmed comment.
	Length int
}

// CommentLength counts the meaningful characters of a comment after
// trimming surrounding whitespace.
func CommentLength(comment string) int {
	return utf8.RuneCountInString(strings.TrimSpace(comment))
}

// LoadSummary describes the dataset as read from the source, prior to
// preprocessing.
type LoadSummary struct {
	Records        int
	Fields         int
	DistinctMovies int
	DistinctUsers  int
	EarliestDate   string
	LatestDate     string
}

// Dataset is the raw table returned by a DatasetLoader.
type Dataset struct {
	Records []RawReview
	Summary LoadSummary
}

// PreprocessStats counts the anomalies recovered during cleaning.
type PreprocessStats struct {
	Input           int // rows in
	Retained        int // rows out
	DroppedNoStar   int // rows dropped for a missing or out-of-range star
	FilledComments  int // empty or missing comments replaced with ""
	FilledUsernames int // missing usernames replaced with the default
	ImputedScores   int // missing scores imputed from movie or global mean
	BadTimestamps   int // rows with TimeValid == false
	Sampled         bool
}

// CleanTable is the preprocessed review table. It is immutable after
// preprocessing and may be read concurrently without locking.
type CleanTable struct {
	Reviews []Review
	Stats   PreprocessStats
}
