// Package hotspot scores areas by incident volume and trend for operational
// triage dashboards. The scoring is a deliberate heuristic built on an
// exponentially weighted regression, not a statistically rigorous forecast;
// it ranks areas for attention and makes no safety-critical claim.
package hotspot

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/bantay-ph/bantay-api/app/repository"
	"github.com/bantay-ph/bantay-api/internal/pkg/apperrors"
	"github.com/bantay-ph/bantay-api/internal/pkg/cache"
	"github.com/bantay-ph/bantay-api/internal/pkg/env"
)

const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"

	RiskHigh   = "high"
	RiskMedium = "medium"
	RiskLow    = "low"

	// stableSlopeband is the half-width of the slope band treated as no
	// trend.
	stableSlopeBand = 0.1

	// topAreas bounds the ranking output.
	topAreas = 10
)

// AreaScore is one ranked area in the analysis output.
type AreaScore struct {
	Barangay      string         `json:"barangay"`
	City          string         `json:"city"`
	MonthlyCounts []MonthCount   `json:"monthly_counts"`
	TypeCounts    map[string]int `json:"type_counts"`
	Total         int            `json:"total"`
	Slope         float64        `json:"slope"`
	Trend         string         `json:"trend"`
	Prediction    int            `json:"predicted_next_month"`
	RiskScore     int            `json:"risk_score"`
	RiskLevel     string         `json:"risk_level"`
}

// MonthCount is one month of an area's incident series.
type MonthCount struct {
	Month string `json:"month"` // YYYY-MM
	Count int    `json:"count"`
}

// Analysis is the ranked hotspot report.
type Analysis struct {
	GeneratedAt time.Time   `json:"generated_at"`
	Areas       []AreaScore `json:"areas"`
}

// Analyzer aggregates historical reports into per-area risk scores. Results
// are cached in redis because the aggregation scans the full report history.
type Analyzer struct {
	reports  repository.ReportRepository
	cacheTTL time.Duration
}

func New(reports repository.ReportRepository) *Analyzer {
	ttl, err := time.ParseDuration(env.GetEnv("HOTSPOT_CACHE_TTL", "10m"))
	if err != nil || ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Analyzer{reports: reports, cacheTTL: ttl}
}

// Analyze returns the top areas ranked by risk score descending. The filter
// narrows the underlying report scan (type, city, date range).
func (a *Analyzer) Analyze(ctx context.Context, filter repository.ReportFilter) (*Analysis, error) {
	key := cacheKey(filter)
	if cached, err := cache.Get(key); err == nil && cached != "" {
		var analysis Analysis
		if err := json.Unmarshal([]byte(cached), &analysis); err == nil {
			return &analysis, nil
		}
	}

	counts, err := a.reports.MonthlyAreaCounts(filter)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindStorage, err, "hotspot aggregation failed")
	}

	analysis := &Analysis{
		GeneratedAt: time.Now(),
		Areas:       scoreAreas(counts),
	}

	if payload, err := json.Marshal(analysis); err == nil {
		if err := cache.Set(key, string(payload), a.cacheTTL); err != nil {
			log.Debugf("[Hotspot] result caching failed: %v", err)
		}
	}
	return analysis, nil
}

func cacheKey(filter repository.ReportFilter) string {
	from, to := "", ""
	if filter.From != nil {
		from = filter.From.Format("2006-01-02")
	}
	if filter.To != nil {
		to = filter.To.Format("2006-01-02")
	}
	return fmt.Sprintf("hotspot:%s:%s:%s:%s:%s", filter.Type, filter.City, filter.Barangay, from, to)
}

type areaSeries struct {
	barangay string
	city     string
	months   map[string]int
	types    map[string]int
}

// scoreAreas rolls the raw aggregation buckets into ranked AreaScores.
func scoreAreas(counts []repository.AreaMonthCount) []AreaScore {
	byArea := make(map[string]*areaSeries)
	for _, c := range counts {
		key := c.Barangay + "|" + c.City
		series, ok := byArea[key]
		if !ok {
			series = &areaSeries{
				barangay: c.Barangay,
				city:     c.City,
				months:   make(map[string]int),
				types:    make(map[string]int),
			}
			byArea[key] = series
		}
		series.months[c.Month] += c.Count
		series.types[c.Type] += c.Count
	}

	scores := make([]AreaScore, 0, len(byArea))
	maxTotal := 0
	for _, series := range byArea {
		monthly := sortedMonths(series.months)
		values := make([]float64, len(monthly))
		total := 0
		for i, m := range monthly {
			values[i] = float64(m.Count)
			total += m.Count
		}
		if total > maxTotal {
			maxTotal = total
		}

		slope := weightedSlope(values)
		scores = append(scores, AreaScore{
			Barangay:      series.barangay,
			City:          series.city,
			MonthlyCounts: monthly,
			TypeCounts:    series.types,
			Total:         total,
			Slope:         slope,
			Trend:         trendOf(slope),
			Prediction:    predictNext(values, slope),
		})
	}

	for i := range scores {
		scores[i].RiskScore = riskScore(scores[i].Total, maxTotal, scores[i].Trend)
		scores[i].RiskLevel = riskLevel(scores[i].RiskScore)
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].RiskScore != scores[j].RiskScore {
			return scores[i].RiskScore > scores[j].RiskScore
		}
		return scores[i].Barangay < scores[j].Barangay
	})
	if len(scores) > topAreas {
		scores = scores[:topAreas]
	}
	return scores
}

func sortedMonths(months map[string]int) []MonthCount {
	out := make([]MonthCount, 0, len(months))
	for month, count := range months {
		out = append(out, MonthCount{Month: month, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// weightedSlope fits a least-squares line through the series with the later
// points weighted exponentially heavier: point i of n carries weight
// exp(i/n). The normalizer is the weight sum, not the point count, which is
// the standard weighted form of (n*Sxy - Sx*Sy)/(n*Sxx - Sx*Sx).
// Returns 0 for series too short to carry a trend.
func weightedSlope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	var sumW, sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		w := math.Exp(float64(i) / float64(n))
		sumW += w
		sumX += w * x
		sumY += w * y
		sumXY += w * x * y
		sumXX += w * x * x
	}

	denom := sumW*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (sumW*sumXY - sumX*sumY) / denom
}

func trendOf(slope float64) string {
	switch {
	case slope > stableSlopeBand:
		return TrendIncreasing
	case slope < -stableSlopeBand:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// predictNext estimates the next month: the exponentially weighted average
// of the last three months plus the trend slope, floored at zero.
func predictNext(values []float64, slope float64) int {
	if len(values) == 0 {
		return 0
	}
	window := values
	if len(window) > 3 {
		window = window[len(window)-3:]
	}

	var weighted, sumW float64
	for i, v := range window {
		w := math.Exp(float64(i))
		weighted += w * v
		sumW += w
	}

	predicted := weighted/sumW + slope
	if predicted < 0 {
		return 0
	}
	return int(math.Round(predicted))
}

func riskScore(total, maxTotal int, trend string) int {
	if maxTotal == 0 {
		return 0
	}
	factor := 1.0
	switch trend {
	case TrendIncreasing:
		factor = 1.2
	case TrendDecreasing:
		factor = 0.8
	}
	return int(math.Round(float64(total) / float64(maxTotal) * 100 * factor))
}

func riskLevel(score int) string {
	switch {
	case score >= 75:
		return RiskHigh
	case score >= 50:
		return RiskMedium
	default:
		return RiskLow
	}
}
