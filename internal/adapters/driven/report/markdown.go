// Package report assembles the aggregation results into the markdown
// analysis report. The document is a pure function of the results: it
// is byte-identical whether charts were rendered or not.
package report

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/kinolens/kinolens-cli/internal/core/domain"
	"github.com/kinolens/kinolens-cli/internal/core/ports/driven"
)

// FileName is the report artifact written into the output directory.
const FileName = "analysis_report.md"

// Ensure Markdown implements the interface.
var _ driven.ReportWriter = (*Markdown)(nil)

// Markdown writes the sectioned analysis report.
type Markdown struct{}

// NewMarkdown creates a markdown report writer.
func NewMarkdown() *Markdown {
	return &Markdown{}
}

// Write renders the report into dir and returns its path. The file is
// written to a temp file first and renamed into place so an interrupted
// run never leaves a truncated report. Errors wrap domain.ErrReportWrite.
func (m *Markdown) Write(ctx context.Context, res *domain.AnalysisResults, dir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	content := render(res)
	path := filepath.Join(dir, FileName)

	tmp, err := os.CreateTemp(dir, ".report-*.md")
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrReportWrite, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: %v", domain.ErrReportWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrReportWrite, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrReportWrite, err)
	}
	return path, nil
}

func render(res *domain.AnalysisResults) string {
	var b strings.Builder

	b.WriteString("# Film Review Analysis Report\n\n")
	writeOverview(&b, res)
	writeSentiment(&b, res)
	writeKeywords(&b, res)
	writeMovies(&b, res)
	writeTrends(&b, res)
	writeCorrelations(&b, res)
	writeFindings(&b, res)
	writeInventory(&b)
	writeWarnings(&b, res)

	b.WriteString("---\n")
	b.WriteString("*Generated by the KinoLens review analysis pipeline.*\n")
	return b.String()
}

func writeOverview(b *strings.Builder, res *domain.AnalysisResults) {
	b.WriteString("## Overview\n\n")
	fmt.Fprintf(b, "- **Records**: %d loaded, %d retained after cleaning\n",
		res.Summary.Records, res.Stats.Retained)
	fmt.Fprintf(b, "- **Movies**: %d\n", res.Summary.DistinctMovies)
	fmt.Fprintf(b, "- **Users**: %d\n", res.Summary.DistinctUsers)
	if res.Summary.EarliestDate != "" {
		fmt.Fprintf(b, "- **Time range**: %s to %s\n", res.Summary.EarliestDate, res.Summary.LatestDate)
	}
	if res.Stats.Sampled {
		b.WriteString("- **Sampling**: analysis ran on a fixed-seed uniform sample\n")
	}
	b.WriteString("\n")
}

func writeSentiment(b *strings.Builder, res *domain.AnalysisResults) {
	b.WriteString("## Sentiment Distribution\n\n")
	if res.Aggregate == nil {
		b.WriteString("No aggregation results available.\n\n")
		return
	}

	total := 0
	for _, s := range res.Aggregate.Sentiment {
		total += s.Count
	}
	for _, s := range res.Aggregate.Sentiment {
		pct := 0.0
		if total > 0 {
			pct = float64(s.Count) / float64(total) * 100
		}
		fmt.Fprintf(b, "- **%s**: %d reviews (%.2f%%)\n", s.Sentiment, s.Count, pct)
	}
	b.WriteString("\n")
}

func writeKeywords(b *strings.Builder, res *domain.AnalysisResults) {
	b.WriteString("## Keywords\n\n")
	lex := res.Lexical
	if lex == nil {
		b.WriteString("Keyword extraction did not run for this dataset.\n\n")
		return
	}
	if len(lex.Overall) == 0 {
		b.WriteString("No keywords were extracted (all comments empty or stop words).\n\n")
		return
	}

	b.WriteString("### Top terms\n\n")
	for i, t := range lex.Overall {
		if i == 20 {
			break
		}
		fmt.Fprintf(b, "%d. **%s**: %d occurrences\n", i+1, t.Term, t.Count)
	}

	if len(lex.Topics) > 0 {
		b.WriteString("\n### TF-IDF topics\n\n")
		for i, t := range lex.Topics {
			if i == 10 {
				break
			}
			fmt.Fprintf(b, "%d. **%s** (%.4f)\n", i+1, t.Term, t.Score)
		}
	}
	b.WriteString("\n")
}

func writeMovies(b *strings.Builder, res *domain.AnalysisResults) {
	b.WriteString("## Top Movies\n\n")
	if res.Aggregate == nil || len(res.Aggregate.Movies.ByReviews) == 0 {
		b.WriteString("No per-movie statistics available.\n\n")
		return
	}

	for i, m := range res.Aggregate.Movies.ByReviews {
		fmt.Fprintf(b, "%d. **%s**\n", i+1, m.Name)
		fmt.Fprintf(b, "   - score: %.1f\n", m.Score)
		fmt.Fprintf(b, "   - reviews: %d\n", m.ReviewCount)
		fmt.Fprintf(b, "   - mean star rating: %.2f\n", m.AvgStar)
		fmt.Fprintf(b, "   - total likes: %d\n", m.TotalLikes)
	}
	b.WriteString("\n")
}

func writeTrends(b *strings.Builder, res *domain.AnalysisResults) {
	b.WriteString("## Time Trends\n\n")
	agg := res.Aggregate
	if agg == nil || len(agg.Yearly) == 0 {
		b.WriteString("No records carried a valid timestamp; time trends were skipped.\n\n")
		return
	}

	first := agg.Yearly[0]
	last := agg.Yearly[len(agg.Yearly)-1]
	peak := agg.Yearly[0]
	for _, y := range agg.Yearly[1:] {
		if y.Count > peak.Count {
			peak = y
		}
	}
	fmt.Fprintf(b, "- **Span**: %d - %d\n", first.Year, last.Year)
	fmt.Fprintf(b, "- **Peak year**: %d (%d reviews)\n", peak.Year, peak.Count)

	if len(agg.Monthly) > 0 {
		sum := 0.0
		for _, m := range agg.Monthly {
			sum += m.PositiveRate
		}
		fmt.Fprintf(b, "- **Mean monthly positive rate**: %.2f%%\n", sum/float64(len(agg.Monthly)))
	}
	b.WriteString("\n")
}

func corrValue(c domain.Correlation, a, b string) string {
	ia, ib := -1, -1
	for i, f := range c.Features {
		if f == a {
			ia = i
		}
		if f == b {
			ib = i
		}
	}
	if ia < 0 || ib < 0 {
		return "n/a"
	}
	v := c.Matrix[ia][ib]
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", v)
}

func writeCorrelations(b *strings.Builder, res *domain.AnalysisResults) {
	b.WriteString("## Correlations\n\n")
	if res.Aggregate == nil || len(res.Aggregate.Corr.Matrix) == 0 {
		b.WriteString("No correlation matrix available.\n\n")
		return
	}

	c := res.Aggregate.Corr
	fmt.Fprintf(b, "- **score vs star**: %s\n", corrValue(c, "score", "star"))
	fmt.Fprintf(b, "- **like vs star**: %s\n", corrValue(c, "like", "star"))
	fmt.Fprintf(b, "- **length vs star**: %s\n", corrValue(c, "length", "star"))
	b.WriteString("\n")

	b.WriteString("| |")
	for _, f := range c.Features {
		fmt.Fprintf(b, " %s |", f)
	}
	b.WriteString("\n|---|")
	for range c.Features {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	for _, f := range c.Features {
		fmt.Fprintf(b, "| **%s** |", f)
		for j := range c.Features {
			fmt.Fprintf(b, " %s |", corrValue(c, f, c.Features[j]))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeFindings(b *strings.Builder, res *domain.AnalysisResults) {
	b.WriteString("## Key Findings\n\n")
	agg := res.Aggregate
	if agg == nil {
		b.WriteString("No findings available.\n\n")
		return
	}

	fmt.Fprintf(b, "1. **Scale**: %d reviews across %d movies were analyzed.\n",
		res.Stats.Retained, res.Summary.DistinctMovies)

	total := 0
	positive := 0
	for _, s := range agg.Sentiment {
		total += s.Count
		if s.Sentiment == domain.Positive {
			positive = s.Count
		}
	}
	if total > 0 {
		fmt.Fprintf(b, "2. **Sentiment**: %.1f%% of reviews are positive.\n",
			float64(positive)/float64(total)*100)
	}
	fmt.Fprintf(b, "3. **Scores**: mean %.2f, median %.2f.\n", agg.Scores.Mean, agg.Scores.Median)
	if res.Summary.DistinctMovies > 0 {
		fmt.Fprintf(b, "4. **Engagement**: on average %.0f reviews per movie.\n",
			float64(res.Stats.Retained)/float64(res.Summary.DistinctMovies))
	}
	if res.Stats.Retained > 0 {
		fmt.Fprintf(b, "5. **Interactions**: %d reviews received likes (%.1f%%).\n",
			agg.Likes.LikedReviews,
			float64(agg.Likes.LikedReviews)/float64(res.Stats.Retained)*100)
	}
	b.WriteString("\n")
}

func writeInventory(b *strings.Builder) {
	b.WriteString("## Chart Inventory\n\n")
	charts := []struct{ file, desc string }{
		{"01_sentiment_distribution.png", "star rating and sentiment distributions"},
		{"02_score_distribution.png", "movie score histogram"},
		{"03_top_keywords.png", "top keyword frequencies"},
		{"04_keyword_subsets.png", "positive/negative keywords and TF-IDF topics"},
		{"05_top_movies.png", "movie rankings"},
		{"06_likes_analysis.png", "like count analysis"},
		{"07_time_trend.png", "yearly trends"},
		{"08_monthly_trend.png", "monthly trends"},
		{"09_correlation_heatmap.png", "feature correlations and sentiment-star crosstab"},
		{"10_scatter_matrix.png", "feature scatter matrix"},
		{"11_comprehensive_dashboard.png", "combined dashboard"},
	}
	for i, c := range charts {
		fmt.Fprintf(b, "%d. `%s` - %s\n", i+1, c.file, c.desc)
	}
	b.WriteString("\n")
}

func writeWarnings(b *strings.Builder, res *domain.AnalysisResults) {
	if len(res.Warnings) == 0 {
		return
	}
	b.WriteString("## Warnings\n\n")
	for _, w := range res.Warnings {
		fmt.Fprintf(b, "- %s\n", w)
	}
	b.WriteString("\n")
}
