package scoring

import (
	"fmt"
	"math"
)

// Fixed parameters of the love score model. Observed averages are blended
// toward GlobalAverage until a creator accumulates enough ratings to stand
// on its own signal.
const (
	GlobalAverage = 3.5
	MinVotes      = 10.0

	logScaleBase     = 1000.0
	engagementWeight = 0.5

	sqrtDivisor = 10.0
	sqrtWeight  = 0.5

	cappedGrowth = 1.02
	cappedLimit  = 1.10
)

// Quality is the Bayesian-shrunk average rating: the observed average
// weighted against GlobalAverage in proportion to the number of ratings.
// At zero ratings it equals GlobalAverage exactly; with many ratings it
// approaches the observed average.
func Quality(avgRating float64, totalRatings int64) float64 {
	n := float64(totalRatings)
	weighted := (n/(n+MinVotes))*avgRating + (MinVotes/(n+MinVotes))*GlobalAverage
	return round4(weighted)
}

// Engagement rewards rating volume on a log scale. It grows without bound
// but slowly: 1.0 at zero ratings, 1.5 at 999 ratings.
func Engagement(totalRatings int64) float64 {
	n := float64(totalRatings)
	return 1.0 + (math.Log(n+1)/math.Log(logScaleBase))*engagementWeight
}

// Strategy computes the track-record multiplier for a creator's catalog
// size. Creators with a single game always get exactly 1.0.
type Strategy interface {
	Name() string
	Multiplier(gameCount int) float64
}

type sqrtStrategy struct{}

func (sqrtStrategy) Name() string { return "sqrt" }

func (sqrtStrategy) Multiplier(gameCount int) float64 {
	if gameCount <= 1 {
		return 1.0
	}
	return 1.0 + (math.Sqrt(float64(gameCount))/sqrtDivisor)*sqrtWeight
}

type cappedStrategy struct{}

func (cappedStrategy) Name() string { return "capped" }

func (cappedStrategy) Multiplier(gameCount int) float64 {
	if gameCount <= 1 {
		return 1.0
	}
	return math.Min(math.Pow(cappedGrowth, float64(gameCount-1)), cappedLimit)
}

// NewStrategy returns the track-record strategy registered under name.
func NewStrategy(name string) (Strategy, error) {
	switch name {
	case "sqrt":
		return sqrtStrategy{}, nil
	case "capped":
		return cappedStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown scoring strategy: %s", name)
	}
}

// Score computes the composite love score: quality times engagement times
// track record, rounded to four decimals. A creator with no games scores
// exactly 0.0. A creator whose games have no ratings scores exactly
// GlobalAverage regardless of catalog size.
func Score(avgRating float64, totalRatings int64, gameCount int, trackRecord Strategy) float64 {
	if gameCount == 0 {
		return 0.0
	}
	if totalRatings == 0 {
		return round4(GlobalAverage)
	}

	return round4(Quality(avgRating, totalRatings) * Engagement(totalRatings) * trackRecord.Multiplier(gameCount))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
