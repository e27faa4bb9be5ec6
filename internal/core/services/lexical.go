package services

import (
	"context"
	"math"
	"sort"
	"unicode/utf8"

	"github.com/kinolens/kinolens-cli/internal/core/domain"
	"github.com/kinolens/kinolens-cli/internal/core/ports/driven"
	"github.com/kinolens/kinolens-cli/internal/logger"
)

// minTokenRunes is the shortest token kept after segmentation.
// Single-character Chinese tokens are overwhelmingly function words.
const minTokenRunes = 2

// AnalyzeText tokenizes every comment, removes stop words, and builds
// the term-frequency rankings (overall, positive subset, negative
// subset) plus the TF-IDF topic ranking.
//
// Each review is one document for TF-IDF. Term frequency is normalized
// by document token count; inverse document frequency uses the smoothed
// form log(1 + N/(1+df)) so terms present in every document keep a
// strictly positive weight. Rankings are capped at cfg.TopN with ties
// broken by count descending, then term ascending, so identical input
// yields byte-identical rankings.
//
// Comments that are empty or dissolve entirely into stop words simply
// contribute zero terms; subset rankings for an absent sentiment class
// come back empty but non-nil.
func AnalyzeText(ctx context.Context, table *domain.CleanTable, seg driven.Segmenter, cfg domain.Config) (*domain.LexicalResult, error) {
	stop := buildStopwords(cfg.ExtraStopwords)

	overall := make(map[string]int)
	positive := make(map[string]int)
	negative := make(map[string]int)
	df := make(map[string]int)

	// Per-document term counts, kept for the TF-IDF pass once the
	// document frequencies are known.
	docs := make([]termDoc, 0, len(table.Reviews))

	total := 0
	for i := range table.Reviews {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if i > 0 {
				logger.Progress(i, len(table.Reviews))
			}
		}

		r := &table.Reviews[i]
		if utf8.RuneCountInString(r.Comment) < minTokenRunes {
			continue
		}

		var doc termDoc
		for _, w := range seg.Cut(r.Comment) {
			if utf8.RuneCountInString(w) < minTokenRunes {
				continue
			}
			if _, ok := stop[w]; ok {
				continue
			}

			overall[w]++
			switch r.Sentiment {
			case domain.Positive:
				positive[w]++
			case domain.Negative:
				negative[w]++
			}

			if doc.terms == nil {
				doc.terms = make(map[string]int)
			}
			doc.terms[w]++
			doc.len++
			total++
		}

		if doc.len > 0 {
			for t := range doc.terms {
				df[t]++
			}
			docs = append(docs, doc)
		}
	}

	logger.Info("segmentation extracted %d tokens across %d documents", total, len(docs))

	res := &domain.LexicalResult{
		Overall:     topTerms(overall, cfg.TopN),
		Positive:    topTerms(positive, cfg.TopN),
		Negative:    topTerms(negative, cfg.TopN),
		Topics:      topTopics(docs, df, overall, cfg.TopN),
		TotalTokens: total,
	}
	return res, nil
}

// topTerms ranks a frequency table: count descending, term ascending.
// The result is never nil.
func topTerms(freq map[string]int, n int) []domain.TermCount {
	ranked := make([]domain.TermCount, 0, len(freq))
	for t, c := range freq {
		ranked = append(ranked, domain.TermCount{Term: t, Count: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Term < ranked[j].Term
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// termDoc is one review as a TF-IDF document.
type termDoc struct {
	terms map[string]int
	len   int
}

// topTopics scores every term by summed TF-IDF over the corpus and
// returns the top n: score descending, term ascending.
func topTopics(docs []termDoc, df map[string]int, freq map[string]int, n int) []domain.TermScore {
	if len(docs) == 0 {
		return []domain.TermScore{}
	}

	nDocs := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for t, d := range df {
		idf[t] = math.Log(1 + nDocs/float64(1+d))
	}

	scores := make(map[string]float64, len(df))
	for _, doc := range docs {
		docLen := float64(doc.len)
		for t, c := range doc.terms {
			scores[t] += float64(c) / docLen * idf[t]
		}
	}

	ranked := make([]domain.TermScore, 0, len(scores))
	for t, s := range scores {
		ranked = append(ranked, domain.TermScore{Term: t, Score: s, Count: freq[t]})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Term < ranked[j].Term
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
