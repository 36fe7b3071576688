package horizon

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// FitQuality summarises how well a polynomial matches its fit points.
type FitQuality struct {
	// RMSE is the root-mean-square vertical residual in pixels.
	RMSE float64 `json:"rmse"`

	// MaxResidual is the largest absolute vertical residual in pixels.
	MaxResidual float64 `json:"max_residual"`

	// RSquared is the coefficient of determination. When every fit point has
	// the same y it is 1 for an exact fit and 0 otherwise.
	RSquared float64 `json:"r_squared"`
}

// Quality measures c against the points it was fitted to.
func Quality(c Coefficients, points []Point) FitQuality {
	if len(points) == 0 {
		return FitQuality{}
	}

	estimates := make([]float64, len(points))
	values := make([]float64, len(points))
	var sumSq, maxAbs float64
	for i, p := range points {
		estimates[i] = c.At(p.X)
		values[i] = p.Y
		r := values[i] - estimates[i]
		sumSq += r * r
		if a := math.Abs(r); a > maxAbs {
			maxAbs = a
		}
	}

	q := FitQuality{
		RMSE:        math.Sqrt(sumSq / float64(len(points))),
		MaxResidual: maxAbs,
	}
	if stat.Variance(values, nil) > 0 {
		q.RSquared = stat.RSquaredFrom(estimates, values, nil)
	} else if sumSq == 0 {
		q.RSquared = 1
	}
	return q
}
