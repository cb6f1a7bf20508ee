package grade

import "math"

// Band maps percentages at or above Min onto Value. Lower values are better.
type Band struct {
	Min   float64 `json:"min"`
	Value float64 `json:"value"`
}

const (
	BestScale  = 1.0
	WorstScale = 5.0

	// below this percentage the precise scale bottoms out at WorstScale
	preciseFloor = 50.0
)

var bands = []Band{
	{Min: 97.5, Value: 1.0},
	{Min: 94.5, Value: 1.25},
	{Min: 91.5, Value: 1.5},
	{Min: 88.5, Value: 1.75},
	{Min: 85.5, Value: 2.0},
	{Min: 82.5, Value: 2.25},
	{Min: 79.5, Value: 2.5},
	{Min: 76.5, Value: 2.75},
	{Min: 74.5, Value: 3.0},
	{Min: 69.5, Value: 3.5},
	{Min: 64.5, Value: 4.0},
	{Min: 59.5, Value: 4.5},
}

// Bands returns a copy of the scale table, best band first.
func Bands() []Band {
	out := make([]Band, len(bands))
	copy(out, bands)
	return out
}

// ToBracketedScale returns the value of the band the percentage falls in.
func ToBracketedScale(percentage float64) float64 {
	p := clampPercentage(percentage)
	for _, b := range bands {
		if p >= b.Min {
			return b.Value
		}
	}
	return WorstScale
}

// ToPreciseScale interpolates linearly between consecutive band boundaries.
// It agrees with ToBracketedScale on every boundary and never increases as
// the percentage grows.
func ToPreciseScale(percentage float64) float64 {
	p := clampPercentage(percentage)
	if p >= bands[0].Min {
		return BestScale
	}
	upper := bands[0]
	for _, b := range bands[1:] {
		if p >= b.Min {
			return interpolate(p, upper, b)
		}
		upper = b
	}
	if p >= preciseFloor {
		return interpolate(p, upper, Band{Min: preciseFloor, Value: WorstScale})
	}
	return WorstScale
}

// interpolate for lower.Min <= p < upper.Min
func interpolate(p float64, upper, lower Band) float64 {
	return upper.Value + (upper.Min-p)/(upper.Min-lower.Min)*(lower.Value-upper.Value)
}

func clampPercentage(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
