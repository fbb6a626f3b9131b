package main

import (
	"encoding/json"
	"math"
	"math/rand"
)

const (
	// DefaultIterations is the Monte Carlo sample count when none is given
	DefaultIterations = 1000
	// DefaultSmoothingAlpha is the exponential smoothing factor when none is given
	DefaultSmoothingAlpha = 0.3
	// NPVDiscountRate is the fixed annual discount rate used for net present value
	NPVDiscountRate = 0.07
)

// RevenueProjection summarises a Monte Carlo revenue simulation
type RevenueProjection struct {
	Mean       float64 `json:"mean"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	StdDev     float64 `json:"stdDev"`
	Iterations int     `json:"iterations"`
}

// ROIResult is the outcome of a language services investment case
type ROIResult struct {
	TotalCost     float64 `json:"totalCost"`
	TotalRevenue  float64 `json:"totalRevenue"`
	NetProfit     float64 `json:"netProfit"`
	ROI           float64 `json:"roi"`           // percentage, 1 decimal
	PaybackPeriod float64 `json:"paybackPeriod"` // years, 1 decimal
	NPV           float64 `json:"npv"`
}

// MarshalJSON writes non-finite fields as null. A zero total cost or a zero
// net annual cash flow makes ROI or payback infinite.
func (r ROIResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TotalCost     *float64 `json:"totalCost"`
		TotalRevenue  *float64 `json:"totalRevenue"`
		NetProfit     *float64 `json:"netProfit"`
		ROI           *float64 `json:"roi"`
		PaybackPeriod *float64 `json:"paybackPeriod"`
		NPV           *float64 `json:"npv"`
	}{
		TotalCost:     finiteOrNil(r.TotalCost),
		TotalRevenue:  finiteOrNil(r.TotalRevenue),
		NetProfit:     finiteOrNil(r.NetProfit),
		ROI:           finiteOrNil(r.ROI),
		PaybackPeriod: finiteOrNil(r.PaybackPeriod),
		NPV:           finiteOrNil(r.NPV),
	})
}

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// CompetitiveScore is a weighted competitive advantage score and its band
type CompetitiveScore struct {
	Score    float64             `json:"score"`
	Category CompetitiveCategory `json:"category"`
}

// FrictionScore is a patient journey friction score and its band
type FrictionScore struct {
	Score    float64  `json:"score"`
	Severity Severity `json:"severity"`
}

// CoverageArea is a circular catchment around a clinic
type CoverageArea struct {
	Lat    float64
	Lng    float64
	Radius float64
}

// roundTo rounds v to the given number of decimal places
func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// SimulateRevenueProjection samples conversion rate (±20%) and revenue per
// patient (±15%) iterations times and reports the rounded distribution.
// rng must not be shared between goroutines.
func SimulateRevenueProjection(rng *rand.Rand, basePatients, conversionRate, revenuePerPatient float64, iterations int) RevenueProjection {
	if iterations <= 0 {
		iterations = DefaultIterations
	}

	results := make([]float64, iterations)
	sum := 0.0
	minRevenue := math.Inf(1)
	maxRevenue := math.Inf(-1)
	for i := range results {
		conversion := conversionRate * (0.8 + rng.Float64()*0.4)
		revenuePer := revenuePerPatient * (0.85 + rng.Float64()*0.3)

		patients := math.Floor(basePatients * conversion)
		revenue := patients * revenuePer
		results[i] = revenue

		sum += revenue
		minRevenue = math.Min(minRevenue, revenue)
		maxRevenue = math.Max(maxRevenue, revenue)
	}

	mean := sum / float64(iterations)
	variance := 0.0
	for _, r := range results {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(iterations)

	return RevenueProjection{
		Mean:       math.Round(mean),
		Min:        math.Round(minRevenue),
		Max:        math.Round(maxRevenue),
		StdDev:     math.Round(math.Sqrt(variance)),
		Iterations: iterations,
	}
}

// CalculateMarketPenetration returns a 0-100 penetration score, discounted
// by 5 points per competitor.
func CalculateMarketPenetration(currentPatients, targetPopulation float64, competitors int) float64 {
	raw := currentPatients / targetPopulation * 100
	competitorAdjustment := math.Max(0, 100-float64(competitors)*5)
	return math.Min(100, raw*(competitorAdjustment/100))
}

// CalculateLanguagePriority scores a language from its log-scaled speaker
// count, growth rate and healthcare demand. Languages already supported
// lose 10 points.
func CalculateLanguagePriority(speakers, growthRate float64, demand DemandLevel, currentSupport bool) int {
	speakerScore := math.Log10(speakers) * 20
	growthScore := growthRate * 10
	supportPenalty := 0.0
	if currentSupport {
		supportPenalty = -10
	}
	return int(math.Round(speakerScore + growthScore + demand.Score() + supportPenalty))
}

// CalculateDiversityIndex is Simpson's diversity index, 1 - Σ(p_i)².
// 0 means a single group; values approach 1 as groups multiply evenly.
func CalculateDiversityIndex(populations []float64) float64 {
	total := 0.0
	for _, p := range populations {
		total += p
	}
	sumOfSquares := 0.0
	for _, p := range populations {
		share := p / total
		sumOfSquares += share * share
	}
	return 1 - sumOfSquares
}

// CalculateCAGR returns the compound annual growth rate as a percentage
func CalculateCAGR(startValue, endValue, years float64) float64 {
	return (math.Pow(endValue/startValue, 1/years) - 1) * 100
}

// CalculateAcquisitionCost applies the language barrier (+80%) and missing
// cultural support (+40%) multipliers to a base acquisition cost.
func CalculateAcquisitionCost(baseCAC float64, languageBarrier, culturalSupport bool) float64 {
	multiplier := 1.0
	if languageBarrier {
		multiplier *= 1.8
	}
	if !culturalSupport {
		multiplier *= 1.4
	}
	return math.Round(baseCAC * multiplier)
}

// CalculateLanguageServicesROI evaluates a language services investment over
// a horizon. Zero cost or zero net annual revenue produce Inf/NaN unguarded.
func CalculateLanguageServicesROI(implementationCost, annualMaintenanceCost, additionalPatients, revenuePerPatient float64, years int) ROIResult {
	totalCost := implementationCost + annualMaintenanceCost*float64(years)
	annualRevenue := additionalPatients * revenuePerPatient
	totalRevenue := annualRevenue * float64(years)
	netProfit := totalRevenue - totalCost
	roi := netProfit / totalCost * 100

	paybackPeriod := implementationCost / (annualRevenue - annualMaintenanceCost)

	npv := -implementationCost
	cashFlow := annualRevenue - annualMaintenanceCost
	for year := 1; year <= years; year++ {
		npv += cashFlow / math.Pow(1+NPVDiscountRate, float64(year))
	}

	return ROIResult{
		TotalCost:     totalCost,
		TotalRevenue:  totalRevenue,
		NetProfit:     netProfit,
		ROI:           roundTo(roi, 1),
		PaybackPeriod: roundTo(paybackPeriod, 1),
		NPV:           math.Round(npv),
	}
}

// ForecastExponentialSmoothing projects periods points from the last
// historical value. Without new observations the recurrence converges at
// once, so the forecast is a flat line.
func ForecastExponentialSmoothing(historicalData []float64, periods int, alpha float64) []float64 {
	if len(historicalData) == 0 || periods <= 0 {
		return []float64{}
	}
	if alpha <= 0 {
		alpha = DefaultSmoothingAlpha
	}

	forecast := make([]float64, 0, periods)
	lastValue := historicalData[len(historicalData)-1]
	lastSmoothed := lastValue
	for i := 0; i < periods; i++ {
		predicted := lastSmoothed + alpha*(lastValue-lastSmoothed)
		forecast = append(forecast, math.Round(predicted))
		lastValue = predicted
		lastSmoothed = predicted
	}
	return forecast
}

// CalculateCompetitiveAdvantage weights the four competitive pillars (each 0-100)
func CalculateCompetitiveAdvantage(languageSupport, culturalCompetency, technologyAdoption, marketPresence float64) CompetitiveScore {
	score := languageSupport*0.35 + culturalCompetency*0.25 +
		technologyAdoption*0.25 + marketPresence*0.15

	category := CategoryNiche
	switch {
	case score >= 80:
		category = CategoryLeader
	case score >= 60:
		category = CategoryChallenger
	case score >= 40:
		category = CategoryFollower
	}

	return CompetitiveScore{Score: math.Round(score), Category: category}
}

// AnalyzeGeographicCoverage returns the percentage of targetArea covered by
// the sum of circular catchments, capped at 100. Overlaps are not removed.
func AnalyzeGeographicCoverage(locations []CoverageArea, targetArea float64) float64 {
	totalCoverage := 0.0
	for _, loc := range locations {
		totalCoverage += math.Pi * loc.Radius * loc.Radius
	}
	return math.Min(100, totalCoverage/targetArea*100)
}

// CalculateFrictionScore scores patient journey friction from a language
// barrier flag and three 0-100 difficulty ratings.
func CalculateFrictionScore(languageBarrier bool, appointmentDifficulty, formComplexity, communicationGaps float64) FrictionScore {
	score := 0.0
	if languageBarrier {
		score += 40
	}
	score += appointmentDifficulty * 0.3
	score += formComplexity * 0.2
	score += communicationGaps * 0.5

	severity := SeverityLow
	switch {
	case score >= 75:
		severity = SeverityCritical
	case score >= 50:
		severity = SeverityHigh
	case score >= 25:
		severity = SeverityMedium
	}

	return FrictionScore{Score: math.Round(score), Severity: severity}
}

// CalculateGrowthProjection compounds current at growthRate percent per year
func CalculateGrowthProjection(current, growthRate float64, years int) float64 {
	return math.Round(current * math.Pow(1+growthRate/100, float64(years)))
}
