package services

import (
	"context"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/kinolens/kinolens-cli/internal/core/domain"
	"github.com/kinolens/kinolens-cli/internal/logger"
)

const (
	// topMoviesN bounds both movie rankings.
	topMoviesN = 10

	scoreHistBins = 30
	likesHistBins = 20

	// scatterSampleCap caps the scatter-matrix sample, mirroring the
	// chart's readability limit rather than any statistical need.
	scatterSampleCap = 5000
)

// corrFeatures is the fixed feature set of the correlation matrix, in
// presentation order.
var corrFeatures = []string{"score", "star", "like", "length", "sentiment"}

// Aggregate computes every grouped summary from the cleaned table:
// star and sentiment distributions, the score histogram, per-movie
// rankings, like-count analysis, yearly and monthly trends, the
// correlation matrix, and the scatter sample.
//
// Movies or buckets with zero retained records are omitted, not
// reported as zero rows. Time buckets only consider records whose
// timestamp parsed; every other aggregation uses the full table.
func Aggregate(ctx context.Context, table *domain.CleanTable, cfg domain.Config) (*domain.AggregateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &domain.AggregateResult{
		Stars:     starDistribution(table.Reviews),
		Sentiment: sentimentDistribution(table.Reviews),
		Scores:    scoreDistribution(table.Reviews),
		Movies:    topMovies(table.Reviews),
		Likes:     likesAnalysis(table.Reviews),
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res.Yearly = yearlyTrend(table.Reviews)
	res.Monthly = monthlyTrend(table.Reviews)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cols := featureColumns(table.Reviews)
	res.Corr = correlationMatrix(cols)
	res.Crosstab = sentimentStarCrosstab(table.Reviews)
	res.Scatter = scatterSample(cols, cfg.SampleSeed)

	logger.Info("aggregated %d reviews into %d movies, %d yearly and %d monthly buckets",
		len(table.Reviews), len(res.Movies.ByReviews), len(res.Yearly), len(res.Monthly))

	return res, nil
}

func starDistribution(reviews []domain.Review) []domain.StarCount {
	counts := make(map[int]int)
	for i := range reviews {
		counts[reviews[i].Star]++
	}

	out := make([]domain.StarCount, 0, len(counts))
	for star := 1; star <= 5; star++ {
		if c, ok := counts[star]; ok {
			out = append(out, domain.StarCount{Star: star, Count: c})
		}
	}
	return out
}

func sentimentDistribution(reviews []domain.Review) []domain.SentimentCount {
	var counts [3]int
	for i := range reviews {
		counts[reviews[i].Sentiment]++
	}

	out := make([]domain.SentimentCount, 0, 3)
	for _, s := range []domain.Sentiment{domain.Negative, domain.Neutral, domain.Positive} {
		out = append(out, domain.SentimentCount{Sentiment: s, Count: counts[s]})
	}
	return out
}

func scoreDistribution(reviews []domain.Review) domain.ScoreDistribution {
	values := make([]float64, len(reviews))
	for i := range reviews {
		values[i] = reviews[i].Score
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	return domain.ScoreDistribution{
		Bins:   histogram(values, scoreHistBins),
		Mean:   stat.Mean(values, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
	}
}

func topMovies(reviews []domain.Review) domain.TopMovies {
	type acc struct {
		stats   domain.MovieStats
		starSum int
	}
	byName := make(map[string]*acc)
	for i := range reviews {
		r := &reviews[i]
		a, ok := byName[r.MovieName]
		if !ok {
			// The movie score is metadata repeated on every row; the
			// first retained row fixes it.
			a = &acc{stats: domain.MovieStats{Name: r.MovieName, Score: r.Score}}
			byName[r.MovieName] = a
		}
		a.stats.ReviewCount++
		a.stats.TotalLikes += r.Like
		a.starSum += r.Star
	}

	all := make([]domain.MovieStats, 0, len(byName))
	for _, a := range byName {
		a.stats.AvgStar = float64(a.starSum) / float64(a.stats.ReviewCount)
		all = append(all, a.stats)
	}

	byReviews := append([]domain.MovieStats(nil), all...)
	sort.Slice(byReviews, func(i, j int) bool {
		if byReviews[i].ReviewCount != byReviews[j].ReviewCount {
			return byReviews[i].ReviewCount > byReviews[j].ReviewCount
		}
		return byReviews[i].Name < byReviews[j].Name
	})

	byScore := append([]domain.MovieStats(nil), all...)
	sort.Slice(byScore, func(i, j int) bool {
		if byScore[i].Score != byScore[j].Score {
			return byScore[i].Score > byScore[j].Score
		}
		return byScore[i].Name < byScore[j].Name
	})

	return domain.TopMovies{
		ByReviews: truncateMovies(byReviews, topMoviesN),
		ByScore:   truncateMovies(byScore, topMoviesN),
	}
}

func truncateMovies(m []domain.MovieStats, n int) []domain.MovieStats {
	if len(m) > n {
		return m[:n]
	}
	return m
}

func likesAnalysis(reviews []domain.Review) domain.LikesAnalysis {
	sums := make(map[int]int)
	counts := make(map[int]int)
	var logged []float64
	liked := 0

	for i := range reviews {
		r := &reviews[i]
		sums[r.Star] += r.Like
		counts[r.Star]++
		if r.Like > 0 {
			liked++
			logged = append(logged, math.Log10(float64(r.Like)+1))
		}
	}

	byStar := make([]domain.StarLikes, 0, len(counts))
	for star := 1; star <= 5; star++ {
		if c, ok := counts[star]; ok {
			byStar = append(byStar, domain.StarLikes{
				Star:      star,
				Count:     c,
				MeanLikes: float64(sums[star]) / float64(c),
			})
		}
	}

	return domain.LikesAnalysis{
		ByStar:       byStar,
		LogHist:      histogram(logged, likesHistBins),
		LikedReviews: liked,
	}
}

func yearlyTrend(reviews []domain.Review) []domain.YearStats {
	type acc struct {
		count    int
		scoreSum float64
		starSum  int
	}
	buckets := make(map[int]*acc)
	for i := range reviews {
		r := &reviews[i]
		if !r.TimeValid {
			continue
		}
		a, ok := buckets[r.Year]
		if !ok {
			a = &acc{}
			buckets[r.Year] = a
		}
		a.count++
		a.scoreSum += r.Score
		a.starSum += r.Star
	}

	out := make([]domain.YearStats, 0, len(buckets))
	for year, a := range buckets {
		out = append(out, domain.YearStats{
			Year:     year,
			Count:    a.count,
			AvgScore: a.scoreSum / float64(a.count),
			AvgStar:  float64(a.starSum) / float64(a.count),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

func monthlyTrend(reviews []domain.Review) []domain.MonthStats {
	type key struct {
		year  int
		month int
	}
	type acc struct {
		count    int
		positive int
	}
	buckets := make(map[key]*acc)
	for i := range reviews {
		r := &reviews[i]
		if !r.TimeValid {
			continue
		}
		k := key{r.Year, int(r.Month)}
		a, ok := buckets[k]
		if !ok {
			a = &acc{}
			buckets[k] = a
		}
		a.count++
		if r.Sentiment == domain.Positive {
			a.positive++
		}
	}

	out := make([]domain.MonthStats, 0, len(buckets))
	for k, a := range buckets {
		out = append(out, domain.MonthStats{
			Year:         k.year,
			Month:        k.month,
			Count:        a.count,
			PositiveRate: float64(a.positive) / float64(a.count) * 100,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// featureColumns extracts the numeric feature columns used by the
// correlation matrix and the scatter sample, in corrFeatures order.
func featureColumns(reviews []domain.Review) [][]float64 {
	cols := make([][]float64, len(corrFeatures))
	for i := range cols {
		cols[i] = make([]float64, len(reviews))
	}
	for k := range reviews {
		r := &reviews[k]
		cols[0][k] = r.Score
		cols[1][k] = float64(r.Star)
		cols[2][k] = float64(r.Like)
		cols[3][k] = float64(r.Length)
		cols[4][k] = r.Sentiment.Ordinal()
	}
	return cols
}

// correlationMatrix computes pairwise Pearson coefficients. A feature
// with zero variance yields NaN entries rather than a panic; the matrix
// is symmetric by construction.
func correlationMatrix(cols [][]float64) domain.Correlation {
	n := len(cols)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			c := stat.Correlation(cols[i], cols[j], nil)
			matrix[i][j] = c
			matrix[j][i] = c
		}
	}
	return domain.Correlation{Features: append([]string(nil), corrFeatures...), Matrix: matrix}
}

// sentimentStarCrosstab computes the column-normalized sentiment
// composition of each star rating: how the reviews at every rating
// split across the three labels, in percent. Ratings with no retained
// reviews are omitted like the star distribution.
func sentimentStarCrosstab(reviews []domain.Review) domain.SentimentStarCrosstab {
	var counts [3][5]int
	var totals [5]int
	for i := range reviews {
		r := &reviews[i]
		counts[r.Sentiment][r.Star-1]++
		totals[r.Star-1]++
	}

	var stars []int
	for s := 0; s < 5; s++ {
		if totals[s] > 0 {
			stars = append(stars, s+1)
		}
	}

	share := make([][]float64, 3)
	for sent := range share {
		share[sent] = make([]float64, len(stars))
		for j, star := range stars {
			share[sent][j] = float64(counts[sent][star-1]) / float64(totals[star-1]) * 100
		}
	}
	return domain.SentimentStarCrosstab{Stars: stars, Share: share}
}

// scatterSample draws a fixed-seed uniform sample of the feature
// columns for the scatter-matrix artifact.
func scatterSample(cols [][]float64, seed int64) domain.ScatterSample {
	n := len(cols[0])
	k := n
	if k > scatterSampleCap {
		k = scatterSampleCap
	}

	idx := rand.New(rand.NewSource(seed)).Perm(n)[:k]
	sort.Ints(idx)

	sampled := make([][]float64, len(cols))
	for i, col := range cols {
		sampled[i] = make([]float64, 0, k)
		for _, j := range idx {
			sampled[i] = append(sampled[i], col[j])
		}
	}
	return domain.ScatterSample{Features: append([]string(nil), corrFeatures...), Columns: sampled}
}

// histogram bins values into equal-width bins over [min, max]. The
// result is empty when there are no values; a single distinct value
// collapses into one bin.
func histogram(values []float64, bins int) []domain.HistBin {
	if len(values) == 0 {
		return []domain.HistBin{}
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return []domain.HistBin{{Low: lo, High: hi, Count: len(values)}}
	}

	width := (hi - lo) / float64(bins)
	out := make([]domain.HistBin, bins)
	for i := range out {
		out[i].Low = lo + float64(i)*width
		out[i].High = out[i].Low + width
	}
	for _, v := range values {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1 // hi lands in the last bin
		}
		out[i].Count++
	}
	return out
}
