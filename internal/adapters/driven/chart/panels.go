package chart

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/kinolens/kinolens-cli/internal/core/domain"
)

// Panel colors.
var (
	colorBlue   = color.RGBA{R: 0x74, G: 0xc0, B: 0xfc, A: 0xff}
	colorGreen  = color.RGBA{R: 0x51, G: 0xcf, B: 0x66, A: 0xff}
	colorOrange = color.RGBA{R: 0xff, G: 0xa5, B: 0x00, A: 0xff}
	colorRed    = color.RGBA{R: 0xff, G: 0x6b, B: 0x6b, A: 0xff}
	colorCoral  = color.RGBA{R: 0xff, G: 0x7f, B: 0x50, A: 0xff}
	colorSteel  = color.RGBA{R: 0x46, G: 0x82, B: 0xb4, A: 0xff}
)

// maxLabelRunes truncates long movie names on axis labels.
const maxLabelRunes = 15

func newPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(13)
	return p
}

// placeholder renders an empty-state panel instead of failing the chart.
func placeholder(title, note string) *plot.Plot {
	p := newPlot(title)
	lbl, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: 0.5, Y: 0.5}},
		Labels: []string{note},
	})
	if err == nil {
		p.Add(lbl)
	}
	p.HideAxes()
	return p
}

func grid(rows ...[]*plot.Plot) [][]*plot.Plot { return rows }

func row(panels ...*plot.Plot) []*plot.Plot { return panels }

func barPanel(title, valueLabel string, names []string, values []float64, c color.Color, horizontal bool) *plot.Plot {
	p := newPlot(title)
	if len(values) == 0 {
		return placeholder(title, "no data")
	}

	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(14))
	if err != nil {
		return placeholder(title, "no data")
	}
	bars.Color = c
	bars.LineStyle.Width = 0
	bars.Horizontal = horizontal
	p.Add(bars)

	if horizontal {
		p.NominalY(names...)
		p.X.Label.Text = valueLabel
	} else {
		p.NominalX(names...)
		p.Y.Label.Text = valueLabel
	}
	return p
}

func histPanel(title, xLabel string, bins []domain.HistBin, c color.Color) *plot.Plot {
	if len(bins) == 0 {
		return placeholder(title, "no data")
	}

	values := make(plotter.Values, len(bins))
	names := make([]string, len(bins))
	for i, b := range bins {
		values[i] = float64(b.Count)
		if i%5 == 0 {
			names[i] = fmt.Sprintf("%.1f", b.Low)
		}
	}

	p := barPanel(title, "count", names, values, c, false)
	p.X.Label.Text = xLabel
	return p
}

func linePanel(title, xLabel, yLabel string, xys plotter.XYs, c color.Color) *plot.Plot {
	p := newPlot(title)
	if len(xys) == 0 {
		return placeholder(title, "no data")
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return placeholder(title, "no data")
	}
	line.Color = c
	line.Width = vg.Points(1.5)
	p.Add(line, plotter.NewGrid())
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

func shorten(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}

// reverseTerms flips a ranking so rank 1 draws at the top of a
// horizontal bar panel.
func reverseTerms(terms []domain.TermCount) ([]string, []float64) {
	names := make([]string, len(terms))
	values := make([]float64, len(terms))
	for i, t := range terms {
		j := len(terms) - 1 - i
		names[j] = t.Term
		values[j] = float64(t.Count)
	}
	return names, values
}

func reverseMovies(movies []domain.MovieStats, value func(domain.MovieStats) float64) ([]string, []float64) {
	names := make([]string, len(movies))
	values := make([]float64, len(movies))
	for i, m := range movies {
		j := len(movies) - 1 - i
		names[j] = shorten(m.Name, maxLabelRunes)
		values[j] = value(m)
	}
	return names, values
}

// --- Panel builders, one per artifact ---

func sentimentPanels(res *domain.AnalysisResults) [][]*plot.Plot {
	agg := res.Aggregate
	if agg == nil {
		return grid(row(placeholder("Star rating distribution", "no data")))
	}

	starNames := make([]string, len(agg.Stars))
	starValues := make([]float64, len(agg.Stars))
	for i, s := range agg.Stars {
		starNames[i] = strconv.Itoa(s.Star) + "★"
		starValues[i] = float64(s.Count)
	}

	sentNames := make([]string, len(agg.Sentiment))
	sentValues := make([]float64, len(agg.Sentiment))
	for i, s := range agg.Sentiment {
		sentNames[i] = s.Sentiment.String()
		sentValues[i] = float64(s.Count)
	}

	return grid(row(
		barPanel("Star rating distribution", "reviews", starNames, starValues, colorBlue, false),
		barPanel("Sentiment distribution", "reviews", sentNames, sentValues, colorGreen, false),
	))
}

func scorePanels(res *domain.AnalysisResults) [][]*plot.Plot {
	agg := res.Aggregate
	if agg == nil || len(agg.Scores.Bins) == 0 {
		return grid(row(placeholder("Movie score distribution", "no data")))
	}

	xLabel := fmt.Sprintf("score (mean %.2f, median %.2f)", agg.Scores.Mean, agg.Scores.Median)
	return grid(row(histPanel("Movie score distribution", xLabel, agg.Scores.Bins, colorBlue)))
}

func keywordPanels(res *domain.AnalysisResults) [][]*plot.Plot {
	lex := res.Lexical
	if lex == nil || len(lex.Overall) == 0 {
		return grid(row(placeholder("Top keywords", "no keywords extracted")))
	}

	top := lex.Overall
	if len(top) > 30 {
		top = top[:30]
	}
	names, values := reverseTerms(top)
	return grid(row(barPanel("Top keywords", "frequency", names, values, colorSteel, true)))
}

func subsetKeywordPanels(res *domain.AnalysisResults) [][]*plot.Plot {
	lex := res.Lexical
	if lex == nil {
		return grid(row(placeholder("Keywords by sentiment", "no keywords extracted")))
	}

	panel := func(title string, terms []domain.TermCount, c color.Color) *plot.Plot {
		if len(terms) == 0 {
			return placeholder(title, "no reviews in this class")
		}
		if len(terms) > 20 {
			terms = terms[:20]
		}
		names, values := reverseTerms(terms)
		return barPanel(title, "frequency", names, values, c, true)
	}

	topics := make([]domain.TermCount, 0, 20)
	for _, t := range lex.Topics {
		if len(topics) == 20 {
			break
		}
		topics = append(topics, domain.TermCount{Term: t.Term, Count: t.Count})
	}

	return grid(row(
		panel("Positive review keywords", lex.Positive, colorGreen),
		panel("Negative review keywords", lex.Negative, colorRed),
		panel("TF-IDF topics", topics, colorSteel),
	))
}

func moviePanels(res *domain.AnalysisResults) [][]*plot.Plot {
	agg := res.Aggregate
	if agg == nil || len(agg.Movies.ByReviews) == 0 {
		return grid(row(placeholder("Top movies", "no data")))
	}

	names, values := reverseMovies(agg.Movies.ByReviews, func(m domain.MovieStats) float64 {
		return float64(m.ReviewCount)
	})
	byCount := barPanel("Most reviewed movies", "reviews", names, values, colorBlue, true)

	names, values = reverseMovies(agg.Movies.ByScore, func(m domain.MovieStats) float64 {
		return m.Score
	})
	byScore := barPanel("Highest scored movies", "score", names, values, colorGreen, true)
	byScore.X.Max = 10

	return grid(row(byCount), row(byScore))
}

func likesPanels(res *domain.AnalysisResults) [][]*plot.Plot {
	agg := res.Aggregate
	if agg == nil {
		return grid(row(placeholder("Likes analysis", "no data")))
	}

	names := make([]string, len(agg.Likes.ByStar))
	values := make([]float64, len(agg.Likes.ByStar))
	for i, s := range agg.Likes.ByStar {
		names[i] = strconv.Itoa(s.Star) + "★"
		values[i] = s.MeanLikes
	}

	return grid(row(
		barPanel("Mean likes per star rating", "mean likes", names, values, colorOrange, false),
		histPanel("Like count distribution", "log10(likes+1)", agg.Likes.LogHist, colorCoral),
	))
}

func yearlyPanels(res *domain.AnalysisResults) [][]*plot.Plot {
	agg := res.Aggregate
	if agg == nil || len(agg.Yearly) == 0 {
		return grid(row(placeholder("Yearly review volume", "no records with valid timestamps")))
	}

	counts := make(plotter.XYs, len(agg.Yearly))
	scores := make(plotter.XYs, len(agg.Yearly))
	stars := make(plotter.XYs, len(agg.Yearly))
	for i, y := range agg.Yearly {
		x := float64(y.Year)
		counts[i] = plotter.XY{X: x, Y: float64(y.Count)}
		scores[i] = plotter.XY{X: x, Y: y.AvgScore}
		stars[i] = plotter.XY{X: x, Y: y.AvgStar}
	}

	volume := linePanel("Yearly review volume", "year", "reviews", counts, colorSteel)

	trend := newPlot("Yearly mean score and star rating")
	scoreLine, err1 := plotter.NewLine(scores)
	starLine, err2 := plotter.NewLine(stars)
	if err1 != nil || err2 != nil {
		return grid(row(volume))
	}
	scoreLine.Color = colorGreen
	scoreLine.Width = vg.Points(1.5)
	starLine.Color = colorOrange
	starLine.Width = vg.Points(1.5)
	trend.Add(scoreLine, starLine, plotter.NewGrid())
	trend.Legend.Add("mean score", scoreLine)
	trend.Legend.Add("mean star", starLine)
	trend.Legend.Top = true
	trend.X.Label.Text = "year"

	return grid(row(volume), row(trend))
}

func monthlyPanels(res *domain.AnalysisResults) [][]*plot.Plot {
	agg := res.Aggregate
	if agg == nil || len(agg.Monthly) == 0 {
		return grid(row(placeholder("Monthly review volume", "no records with valid timestamps")))
	}

	counts := make(plotter.XYs, len(agg.Monthly))
	rates := make(plotter.XYs, len(agg.Monthly))
	for i, m := range agg.Monthly {
		x := float64(m.Year) + float64(m.Month-1)/12
		counts[i] = plotter.XY{X: x, Y: float64(m.Count)}
		rates[i] = plotter.XY{X: x, Y: m.PositiveRate}
	}

	rateP := linePanel("Monthly positive review rate", "year", "positive %", rates, colorGreen)
	rateP.Y.Min = 0
	rateP.Y.Max = 100

	return grid(
		row(linePanel("Monthly review volume", "year", "reviews", counts, colorSteel)),
		row(rateP),
	)
}

// corrGrid adapts a correlation matrix to the heat-map grid interface.
// NaN entries (zero-variance features) are drawn as zero and annotated
// as "n/a" by the text overlay.
type corrGrid struct {
	m [][]float64
}

func (g corrGrid) Dims() (c, r int)   { return len(g.m), len(g.m) }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }
func (g corrGrid) Z(c, r int) float64 {
	v := g.m[r][c]
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// crosstabGrid adapts the sentiment-star percentage table to the
// heat-map grid interface.
type crosstabGrid struct {
	share [][]float64
}

func (g crosstabGrid) Dims() (c, r int) { return len(g.share[0]), len(g.share) }
func (g crosstabGrid) X(c int) float64  { return float64(c) }
func (g crosstabGrid) Y(r int) float64  { return float64(r) }
func (g crosstabGrid) Z(c, r int) float64 {
	return g.share[r][c]
}

func crosstabPanel(ct domain.SentimentStarCrosstab) *plot.Plot {
	const title = "Sentiment share by star rating (%)"
	if len(ct.Stars) == 0 {
		return placeholder(title, "no data")
	}

	hm := plotter.NewHeatMap(crosstabGrid{share: ct.Share}, palette.Heat(64, 1))
	hm.Min = 0
	hm.Max = 100

	p := newPlot(title)
	p.Add(hm)

	starNames := make([]string, len(ct.Stars))
	for i, s := range ct.Stars {
		starNames[i] = strconv.Itoa(s) + "★"
	}
	p.NominalX(starNames...)
	p.NominalY(domain.Negative.String(), domain.Neutral.String(), domain.Positive.String())
	p.X.Label.Text = "star rating"

	xys := make([]plotter.XY, 0, len(ct.Share)*len(ct.Stars))
	texts := make([]string, 0, len(ct.Share)*len(ct.Stars))
	for i := range ct.Share {
		for j := range ct.Share[i] {
			xys = append(xys, plotter.XY{X: float64(j), Y: float64(i)})
			texts = append(texts, fmt.Sprintf("%.1f", ct.Share[i][j]))
		}
	}
	if lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts}); err == nil {
		p.Add(lbl)
	}
	return p
}

func correlationPanels(res *domain.AnalysisResults) [][]*plot.Plot {
	agg := res.Aggregate
	if agg == nil || len(agg.Corr.Matrix) == 0 {
		return grid(row(placeholder("Feature correlations", "no data")))
	}

	pal := moreland.SmoothBlueRed()
	pal.SetMin(-1)
	pal.SetMax(1)
	hm := plotter.NewHeatMap(corrGrid{m: agg.Corr.Matrix}, pal.Palette(64))
	hm.Min = -1
	hm.Max = 1

	p := newPlot("Feature correlations (Pearson)")
	p.Add(hm)
	p.NominalX(agg.Corr.Features...)
	p.NominalY(agg.Corr.Features...)

	n := len(agg.Corr.Matrix)
	xys := make([]plotter.XY, 0, n*n)
	texts := make([]string, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			xys = append(xys, plotter.XY{X: float64(j), Y: float64(i)})
			v := agg.Corr.Matrix[i][j]
			if math.IsNaN(v) {
				texts = append(texts, "n/a")
			} else {
				texts = append(texts, fmt.Sprintf("%.2f", v))
			}
		}
	}
	if lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts}); err == nil {
		p.Add(lbl)
	}

	return grid(row(p, crosstabPanel(agg.Crosstab)))
}

func scatterPanels(res *domain.AnalysisResults) [][]*plot.Plot {
	agg := res.Aggregate
	if agg == nil || len(agg.Scatter.Columns) == 0 {
		return grid(row(placeholder("Feature scatter matrix", "no data")))
	}

	features := agg.Scatter.Features
	cols := agg.Scatter.Columns
	n := len(features)

	panels := make([][]*plot.Plot, n)
	for i := 0; i < n; i++ {
		panels[i] = make([]*plot.Plot, n)
		for j := 0; j < n; j++ {
			if i == j {
				panels[i][j] = histPanel(features[i], features[i], displayBins(cols[i], 20), colorBlue)
				continue
			}

			xys := make(plotter.XYs, len(cols[j]))
			for k := range cols[j] {
				xys[k] = plotter.XY{X: cols[j][k], Y: cols[i][k]}
			}
			p := newPlot("")
			sc, err := plotter.NewScatter(xys)
			if err != nil {
				panels[i][j] = placeholder("", "no data")
				continue
			}
			sc.GlyphStyle.Radius = vg.Points(1)
			sc.GlyphStyle.Color = color.RGBA{R: 0x46, G: 0x82, B: 0xb4, A: 0x60}
			p.Add(sc)
			p.X.Label.Text = features[j]
			p.Y.Label.Text = features[i]
			panels[i][j] = p
		}
	}
	return panels
}

func dashboardPanels(res *domain.AnalysisResults) [][]*plot.Plot {
	agg := res.Aggregate
	if agg == nil {
		return grid(row(placeholder("Dashboard", "no data")))
	}

	sentiments := sentimentPanels(res)[0]
	scoreHist := scorePanels(res)[0][0]

	var yearly, monthly *plot.Plot
	if len(agg.Yearly) > 0 {
		yearly = yearlyPanels(res)[0][0]
	} else {
		yearly = placeholder("Yearly review volume", "no records with valid timestamps")
	}
	if len(agg.Monthly) > 0 {
		monthly = monthlyPanels(res)[1][0]
	} else {
		monthly = placeholder("Monthly positive review rate", "no records with valid timestamps")
	}

	var movies *plot.Plot
	if len(agg.Movies.ByReviews) > 0 {
		movies = moviePanels(res)[0][0]
	} else {
		movies = placeholder("Most reviewed movies", "no data")
	}

	var keywords *plot.Plot
	if res.Lexical != nil && len(res.Lexical.Overall) > 0 {
		keywords = keywordPanels(res)[0][0]
	} else {
		keywords = placeholder("Top keywords", "no keywords extracted")
	}

	return grid(
		row(scoreHist, sentiments[0], sentiments[1]),
		row(yearly, monthly, correlationPanels(res)[0][0]),
		row(movies, keywords, likesPanels(res)[0][0]),
	)
}

// displayBins bins a column purely for the scatter-matrix diagonal;
// the analytical histograms all come precomputed from the aggregator.
func displayBins(values []float64, n int) []domain.HistBin {
	if len(values) == 0 {
		return nil
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
	width := (hi - lo) / float64(n)
	bins := make([]domain.HistBin, n)
	for i := range bins {
		bins[i].Low = lo + float64(i)*width
		bins[i].High = bins[i].Low + width
	}
	for _, v := range values {
		i := int((v - lo) / width)
		if i >= n {
			i = n - 1
		}
		bins[i].Count++
	}
	return bins
}
