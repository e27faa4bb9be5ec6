package services

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/kinolens/kinolens-cli/internal/core/domain"
	"github.com/kinolens/kinolens-cli/internal/logger"
)

// timestampLayouts are tried in order when parsing review dates.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
}

// cancelCheckInterval is how many rows are processed between context
// checks inside per-record loops.
const cancelCheckInterval = 10000

// Preprocess cleans the raw dataset into the immutable review table.
//
// The fill policies are deterministic and documented on the fields of
// domain.PreprocessStats: records without a valid 1-5 star rating are
// dropped, missing comments become the empty string, missing usernames
// become domain.DefaultUsername, and missing movie scores are imputed
// with the per-movie mean (global mean when the movie has none).
// Malformed timestamps keep the record but mark it invalid for
// time-bucket aggregations.
//
// Every retained record carries exactly one sentiment label on return;
// no missing value leaks into later stages.
func Preprocess(ctx context.Context, ds *domain.Dataset, cfg domain.Config) (*domain.CleanTable, error) {
	if ds == nil || len(ds.Records) == 0 {
		return nil, fmt.Errorf("%w: dataset is empty", domain.ErrDataSource)
	}

	stats := domain.PreprocessStats{Input: len(ds.Records)}

	movieSum, movieN := make(map[string]float64), make(map[string]int)
	var globalSum float64
	var globalN int
	for i := range ds.Records {
		if s := ds.Records[i].Score; s != nil {
			movieSum[ds.Records[i].MovieName] += *s
			movieN[ds.Records[i].MovieName]++
			globalSum += *s
			globalN++
		}
	}
	globalMean := 0.0
	if globalN > 0 {
		globalMean = globalSum / float64(globalN)
	}

	reviews := make([]domain.Review, 0, len(ds.Records))
	for i := range ds.Records {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if i > 0 {
				logger.Progress(i, len(ds.Records))
			}
		}

		raw := &ds.Records[i]

		if raw.Star == nil || *raw.Star < 1 || *raw.Star > 5 {
			stats.DroppedNoStar++
			continue
		}

		r := domain.Review{
			ID:          raw.ID,
			MovieName:   raw.MovieName,
			ReviewCount: raw.ReviewCount,
			Username:    raw.Username,
			Star:        *raw.Star,
			Comment:     raw.Comment,
			Like:        raw.Like,
		}
		if r.Like < 0 {
			r.Like = 0
		}

		if strings.TrimSpace(r.Comment) == "" {
			r.Comment = ""
			stats.FilledComments++
		}
		if strings.TrimSpace(r.Username) == "" {
			r.Username = domain.DefaultUsername
			stats.FilledUsernames++
		}

		if raw.Score != nil {
			r.Score = *raw.Score
		} else {
			if n := movieN[r.MovieName]; n > 0 {
				r.Score = movieSum[r.MovieName] / float64(n)
			} else {
				r.Score = globalMean
			}
			stats.ImputedScores++
		}

		if ts, ok := parseTimestamp(raw.Date); ok {
			r.Timestamp = ts
			r.Year = ts.Year()
			r.Month = ts.Month()
			r.TimeValid = true
		} else {
			stats.BadTimestamps++
		}

		r.Sentiment = cfg.Classify(r.Star)
		r.Length = domain.CommentLength(r.Comment)

		reviews = append(reviews, r)
	}

	if len(reviews) == 0 {
		return nil, fmt.Errorf("%w: no valid records remain after cleaning", domain.ErrDataSource)
	}

	if cfg.SampleSize > 0 && len(reviews) > cfg.SampleSize {
		reviews = sampleReviews(reviews, cfg.SampleSize, cfg.SampleSeed)
		stats.Sampled = true
		logger.Info("sampled %d of %d records (seed %d)", len(reviews), stats.Input, cfg.SampleSeed)
	}
	stats.Retained = len(reviews)

	logger.Info("preprocessing retained %d/%d records (%d dropped, %d bad timestamps)",
		stats.Retained, stats.Input, stats.DroppedNoStar, stats.BadTimestamps)

	return &domain.CleanTable{Reviews: reviews, Stats: stats}, nil
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// sampleReviews draws a uniform random sample of size k. The seed is
// fixed by configuration so reruns select the same records; the sample
// keeps the original record order.
func sampleReviews(reviews []domain.Review, k int, seed int64) []domain.Review {
	r := rand.New(rand.NewSource(seed))
	idx := r.Perm(len(reviews))[:k]
	sort.Ints(idx)

	out := make([]domain.Review, 0, k)
	for _, i := range idx {
		out = append(out, reviews[i])
	}
	return out
}
