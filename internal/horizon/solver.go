package horizon

import (
	"fmt"
	"math"
)

// pivotTolerance is the smallest pivot accepted, relative to the magnitude of
// the same diagonal entry before elimination. Rows that are linear
// combinations of earlier rows reduce to rounding noise around 1e-16 of that
// magnitude; genuine low-degree fits stay many orders above it.
const pivotTolerance = 1e-10

// Coefficients is a polynomial y = Σ cᵢ·xⁱ in ascending power order, so
// Coefficients[0] is the constant term. A fit always returns a fresh slice.
type Coefficients []float64

// Degree returns the polynomial degree, or -1 for an empty vector.
func (c Coefficients) Degree() int {
	return len(c) - 1
}

// Fit computes the least-squares polynomial of the given degree through
// points.
//
// The normal equations
//
//	M[r][c] = Σ xᵢ^(r+c)    b[r] = Σ xᵢ^r · yᵢ    for r, c in [0, degree]
//
// are solved by Gaussian elimination without row exchanges followed by
// back-substitution.
//
// # Errors
//
//   - ErrInvalidDegree if degree < 0
//   - ErrInsufficientData if len(points) < degree+1; no solve is attempted
//   - ErrDegenerateSystem if a pivot is zero, non-finite or negligible
//     (for instance all x values identical with degree >= 1)
//
// Fit is deterministic: the same points in the same order always give the
// same coefficients.
func Fit(points []Point, degree int) (Coefficients, error) {
	if degree < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDegree, degree)
	}
	if len(points) < degree+1 {
		return nil, fmt.Errorf("%w: degree %d needs %d points, have %d",
			ErrInsufficientData, degree, degree+1, len(points))
	}

	system := normalEquations(points, degree)
	if err := system.eliminate(); err != nil {
		return nil, err
	}
	return system.backSubstitute()
}

// augmented is an (n+1)×(n+2) matrix [M | b]. scale keeps |M[i][i]| as
// it was before elimination, for the pivot check.
type augmented struct {
	n     int
	rows  [][]float64
	scale []float64
}

func normalEquations(points []Point, n int) *augmented {
	a := &augmented{
		n:     n,
		rows:  make([][]float64, n+1),
		scale: make([]float64, n+1),
	}
	for row := 0; row <= n; row++ {
		a.rows[row] = make([]float64, n+2)
		for col := 0; col <= n; col++ {
			var sum float64
			for _, p := range points {
				sum += math.Pow(p.X, float64(row+col))
			}
			a.rows[row][col] = sum
		}

		var rhs float64
		for _, p := range points {
			rhs += math.Pow(p.X, float64(row)) * p.Y
		}
		a.rows[row][n+1] = rhs
		a.scale[row] = math.Abs(a.rows[row][row])
	}
	return a
}

// checkPivot fails for a pivot that cannot be divided by safely.
func (a *augmented) checkPivot(i int) error {
	pivot := a.rows[i][i]
	if math.IsNaN(pivot) || math.IsInf(pivot, 0) {
		return fmt.Errorf("%w: non-finite pivot in row %d", ErrDegenerateSystem, i)
	}
	if pivot == 0 || math.Abs(pivot) <= pivotTolerance*a.scale[i] {
		return fmt.Errorf("%w: negligible pivot %g in row %d", ErrDegenerateSystem, pivot, i)
	}
	return nil
}

// eliminate reduces the matrix to upper triangular form. For each pivot row
// i, column i is cleared from every row below it.
func (a *augmented) eliminate() error {
	n := a.n
	for i := 0; i < n; i++ {
		if err := a.checkPivot(i); err != nil {
			return err
		}
		for k := i + 1; k <= n; k++ {
			t := a.rows[k][i] / a.rows[i][i]
			for j := 0; j <= n+1; j++ {
				a.rows[k][j] -= t * a.rows[i][j]
			}
		}
	}
	return nil
}

// backSubstitute solves the triangular system from the last row up.
func (a *augmented) backSubstitute() (Coefficients, error) {
	n := a.n
	coeffs := make(Coefficients, n+1)
	for i := n; i >= 0; i-- {
		if err := a.checkPivot(i); err != nil {
			return nil, err
		}
		v := a.rows[i][n+1]
		for j := i + 1; j <= n; j++ {
			v -= a.rows[i][j] * coeffs[j]
		}
		v /= a.rows[i][i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: coefficient %d is not finite", ErrDegenerateSystem, i)
		}
		coeffs[i] = v
	}
	return coeffs, nil
}
