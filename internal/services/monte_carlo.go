package services

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/psephos-ai/psephos-go/internal/models"
)

// Simulation fallbacks applied when a caller passes zero values.
const (
	DefaultIterations      = 10000
	DefaultConfidenceLevel = 0.95
)

// MonteCarloSimulator draws pseudo-random normal samples around a projected
// baseline and extracts distribution statistics from the sorted sample set.
// The simulator owns its random stream so concurrent per-party simulations
// stay independent.
type MonteCarloSimulator struct {
	rng *rand.Rand
}

// NewMonteCarloSimulator creates a simulator seeded from the wall clock.
func NewMonteCarloSimulator() *MonteCarloSimulator {
	return NewMonteCarloSimulatorWithSeed(time.Now().UnixNano())
}

// NewMonteCarloSimulatorWithSeed creates a simulator with a fixed seed for
// reproducible runs.
func NewMonteCarloSimulatorWithSeed(seed int64) *MonteCarloSimulator {
	return &MonteCarloSimulator{rng: rand.New(rand.NewSource(seed))}
}

// Run simulates iterations samples of max(0, baseValue + trendAdjustment +
// z*volatility) with z a standard normal variate, and summarizes the sorted
// distribution. Purely numeric; never errors.
//
// The median is the element at index floor(n/2) of the sorted samples. For
// even n this is not the averaged-midpoint convention; downstream consumers
// depend on the exact values, so the convention is kept as is.
func (s *MonteCarloSimulator) Run(baseValue, volatility, trendAdjustment float64, iterations int, confidenceLevel float64) *models.MonteCarloResult {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	if confidenceLevel <= 0 || confidenceLevel >= 1 {
		confidenceLevel = DefaultConfidenceLevel
	}

	samples := make([]float64, iterations)
	for i := 0; i < iterations; i++ {
		sample := baseValue + trendAdjustment + s.normal()*volatility
		if sample < 0 {
			sample = 0
		}
		samples[i] = sample
	}
	sort.Float64s(samples)

	var sum float64
	for _, v := range samples {
		sum += v
	}
	mean := sum / float64(iterations)

	n := float64(iterations)
	lowerIdx := int(n * (1 - confidenceLevel) / 2)
	upperIdx := int(n * (1 - (1-confidenceLevel)/2))
	if upperIdx >= iterations {
		upperIdx = iterations - 1
	}

	return &models.MonteCarloResult{
		Samples:           samples,
		Mean:              mean,
		Median:            samples[iterations/2],
		Lower:             samples[lowerIdx],
		Upper:             samples[upperIdx],
		StandardDeviation: sampleStdDev(samples, mean),
	}
}

// normal draws one standard normal variate via the Box-Muller transform.
func (s *MonteCarloSimulator) normal() float64 {
	u1 := s.rng.Float64()
	u2 := s.rng.Float64()
	if u1 == 0 {
		u1 = math.SmallestNonzeroFloat64
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

func sampleStdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sumSq float64
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}
