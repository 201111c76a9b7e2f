package hotspot

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bantay-ph/bantay-api/app/repository"
)

func TestWeightedSlopeIncreasingSeries(t *testing.T) {
	slope := weightedSlope([]float64{2, 3, 5, 8})
	assert.Positive(t, slope)
	assert.Equal(t, TrendIncreasing, trendOf(slope))
}

func TestWeightedSlopeDecreasingSeries(t *testing.T) {
	slope := weightedSlope([]float64{9, 6, 4, 1})
	assert.Negative(t, slope)
	assert.Equal(t, TrendDecreasing, trendOf(slope))
}

func TestWeightedSlopeFlatAndShortSeries(t *testing.T) {
	assert.InDelta(t, 0, weightedSlope([]float64{4, 4, 4, 4}), 1e-9)
	assert.Zero(t, weightedSlope([]float64{7}))
	assert.Zero(t, weightedSlope(nil))
	assert.Equal(t, TrendStable, trendOf(0))
}

func TestPredictionFollowsWeightedWindow(t *testing.T) {
	values := []float64{2, 3, 5, 8}
	slope := weightedSlope(values)

	// weighted average of the last three months, oldest to newest
	w0, w1, w2 := math.Exp(0), math.Exp(1), math.Exp(2)
	expected := (w0*3 + w1*5 + w2*8) / (w0 + w1 + w2)
	expected += slope

	assert.Equal(t, int(math.Round(expected)), predictNext(values, slope))
}

func TestPredictionFlooredAtZero(t *testing.T) {
	values := []float64{8, 4, 1, 0}
	slope := weightedSlope(values)
	require.Negative(t, slope)
	assert.GreaterOrEqual(t, predictNext(values, slope), 0)
	assert.Zero(t, predictNext([]float64{0, 0, 0}, -5))
}

func TestRiskScoreTrendFactor(t *testing.T) {
	assert.Equal(t, 120, riskScore(10, 10, TrendIncreasing))
	assert.Equal(t, 80, riskScore(10, 10, TrendDecreasing))
	assert.Equal(t, 100, riskScore(10, 10, TrendStable))
	assert.Equal(t, 50, riskScore(5, 10, TrendStable))
	assert.Zero(t, riskScore(5, 0, TrendStable))
}

func TestRiskLevels(t *testing.T) {
	assert.Equal(t, RiskHigh, riskLevel(75))
	assert.Equal(t, RiskMedium, riskLevel(74))
	assert.Equal(t, RiskMedium, riskLevel(50))
	assert.Equal(t, RiskLow, riskLevel(49))
}

func countsFor(barangay string, monthly []int) []repository.AreaMonthCount {
	var out []repository.AreaMonthCount
	for i, count := range monthly {
		out = append(out, repository.AreaMonthCount{
			Barangay: barangay,
			City:     "Manila",
			Month:    fmt.Sprintf("2026-%02d", i+1),
			Type:     "missing",
			Count:    count,
		})
	}
	return out
}

func TestScoreAreasRanksByRisk(t *testing.T) {
	counts := append(countsFor("Ermita", []int{2, 3, 5, 8}), countsFor("Paco", []int{2, 1, 1, 0})...)

	scores := scoreAreas(counts)
	require.Len(t, scores, 2)

	assert.Equal(t, "Ermita", scores[0].Barangay)
	assert.Equal(t, TrendIncreasing, scores[0].Trend)
	assert.Equal(t, 18, scores[0].Total)
	assert.Equal(t, 120, scores[0].RiskScore, "the busiest increasing area caps the scale")
	assert.Equal(t, RiskHigh, scores[0].RiskLevel)

	assert.Equal(t, "Paco", scores[1].Barangay)
	assert.Equal(t, TrendDecreasing, scores[1].Trend)
	assert.Less(t, scores[1].RiskScore, scores[0].RiskScore)
}

func TestScoreAreasMergesTypesPerMonth(t *testing.T) {
	counts := countsFor("Ermita", []int{3, 4})
	counts = append(counts, repository.AreaMonthCount{
		Barangay: "Ermita", City: "Manila", Month: "2026-01", Type: "abducted", Count: 2,
	})

	scores := scoreAreas(counts)
	require.Len(t, scores, 1)
	assert.Equal(t, 9, scores[0].Total)
	assert.Equal(t, MonthCount{Month: "2026-01", Count: 5}, scores[0].MonthlyCounts[0])
	assert.Equal(t, map[string]int{"missing": 7, "abducted": 2}, scores[0].TypeCounts)
}

func TestScoreAreasTopTen(t *testing.T) {
	var counts []repository.AreaMonthCount
	for i := 0; i < 14; i++ {
		counts = append(counts, countsFor(fmt.Sprintf("Barangay %02d", i), []int{i + 1, i + 2})...)
	}

	scores := scoreAreas(counts)
	assert.Len(t, scores, topAreas)
	for i := 1; i < len(scores); i++ {
		assert.GreaterOrEqual(t, scores[i-1].RiskScore, scores[i].RiskScore, "descending by risk")
	}
}

func TestScoreAreasEmptyInput(t *testing.T) {
	assert.Empty(t, scoreAreas(nil))
}
