package domain

// Aggregation results. Each type is a named, immutable derived table
// produced once by the aggregator or the lexical analyzer and consumed
// by exactly one chart and at most one report section.

// StarCount is one row of the star-rating distribution.
type StarCount struct {
	Star  int
	Count int
}

// SentimentCount is one row of the sentiment distribution.
type SentimentCount struct {
	Sentiment Sentiment
	Count     int
}

// HistBin is one bin of a histogram. Low/High bound the bin; Count is
// the number of records falling inside it.
type HistBin struct {
	Low   float64
	High  float64
	Count int
}

// ScoreDistribution summarises the movie-score column.
type ScoreDistribution struct {
	Bins   []HistBin
	Mean   float64
	Median float64
}

// MovieStats aggregates all retained reviews of a single movie.
type MovieStats struct {
	Name        string
	Score       float64 // movie score from the source metadata
	ReviewCount int     // retained reviews of this movie
	TotalLikes  int
	AvgStar     float64
}

// TopMovies ranks movies by two metrics. Ties are broken by movie name
// ascending so reruns produce identical rankings.
type TopMovies struct {
	ByReviews []MovieStats // review count descending
	ByScore   []MovieStats // movie score descending
}

// StarLikes is the like-count summary for one star rating.
type StarLikes struct {
	Star      int
	Count     int
	MeanLikes float64
}

// LikesAnalysis summarises reviewer engagement.
type LikesAnalysis struct {
	ByStar []StarLikes
	// LogHist bins log10(like+1) over reviews with at least one like.
	LogHist []HistBin
	// LikedReviews counts reviews with Like > 0.
	LikedReviews int
}

// YearStats is one yearly trend bucket.
type YearStats struct {
	Year     int
	Count    int
	AvgScore float64
	AvgStar  float64
}

// MonthStats is one monthly trend bucket.
type MonthStats struct {
	Year  int
	Month int
	Count int
	// PositiveRate is count(positive)/count(total) for the bucket,
	// expressed as a percentage.
	PositiveRate float64
}

// SentimentStarCrosstab is the sentiment composition of each star
// rating, column-normalized: Share[s][j] is the percentage of reviews
// rated Stars[j] that carry sentiment s, so every column sums to 100.
// Star ratings with no retained reviews are omitted.
type SentimentStarCrosstab struct {
	Stars []int
	// Share[sentiment ordinal][star index], in percent.
	Share [][]float64
}

// Correlation is the pairwise Pearson matrix over the fixed numeric
// feature set. Entries are NaN when a feature has zero variance.
type Correlation struct {
	Features []string
	Matrix   [][]float64
}

// ScatterSample is a fixed-seed uniform sample of the numeric features,
// one column per feature, used only for the scatter-matrix artifact.
type ScatterSample struct {
	Features []string
	// Columns[i][k] is the value of feature i for sampled record k.
	Columns [][]float64
}

// AggregateResult bundles everything the aggregator produces.
type AggregateResult struct {
	Stars     []StarCount
	Sentiment []SentimentCount
	Scores    ScoreDistribution
	Movies    TopMovies
	Likes     LikesAnalysis
	Yearly    []YearStats
	Monthly   []MonthStats
	Corr      Correlation
	Crosstab  SentimentStarCrosstab
	Scatter   ScatterSample
}

// TermCount is one row of a term-frequency ranking.
type TermCount struct {
	Term  string
	Count int
}

// TermScore is one row of the TF-IDF topic ranking.
type TermScore struct {
	Term  string
	Score float64
	Count int
}

// LexicalResult holds the keyword rankings. Subset rankings are empty
// but non-nil when a sentiment class has no reviews.
type LexicalResult struct {
	Overall  []TermCount
	Positive []TermCount
	Negative []TermCount
	Topics   []TermScore
	// TotalTokens counts every token that survived stop-word removal.
	TotalTokens int
}

// AnalysisResults is the complete set of derived data consumed by the
// chart renderer, the report builder, and the SQLite exporter. Lexical
// is nil when the lexical stage failed; consumers render placeholders
// for the affected artifacts.
type AnalysisResults struct {
	Summary   LoadSummary
	Stats     PreprocessStats
	Aggregate *AggregateResult
	Lexical   *LexicalResult
	Warnings  []string
}
