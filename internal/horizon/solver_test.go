package horizon

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/mat"
)

// approxEqual compares with tol used as an absolute bound near zero and a
// relative bound elsewhere.
func approxEqual(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol*math.Max(1, math.Abs(want))
}

// sample evaluates c at each x.
func sample(c Coefficients, xs ...float64) []Point {
	pts := make([]Point, len(xs))
	for i, x := range xs {
		pts[i] = Point{X: x, Y: c.At(x)}
	}
	return pts
}

func TestFit_ExactData(t *testing.T) {
	tests := []struct {
		name  string
		want  Coefficients
		xs    []float64
	}{
		{"constant", Coefficients{5}, []float64{0, 1, 2}},
		{"line through two points", Coefficients{1, 2}, []float64{0, 1}},
		{"line overdetermined", Coefficients{1, 2}, []float64{0, 1, 2, 3}},
		{"small parabola", Coefficients{2, 3, -0.5}, []float64{1, 2, 3}},
		{"pixel-scale parabola", Coefficients{100, -0.05, 0.0002}, []float64{0, 150, 300}},
		{"pixel-scale parabola wide", Coefficients{480, -0.1, 0.0003}, []float64{0, 320, 639}},
		{"cubic", Coefficients{10, 0.5, -0.002, 1e-6}, []float64{0, 100, 200, 300}},
		{"cubic overdetermined", Coefficients{10, 0.5, -0.002, 1e-6}, []float64{0, 50, 100, 150, 200, 250, 300}},
		{"negative abscissas", Coefficients{-3, 0.25}, []float64{-50, 10, 640}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Fit(sample(tt.want, tt.xs...), tt.want.Degree())
			if err != nil {
				t.Fatalf("Fit failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d coefficients, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if !approxEqual(got[i], tt.want[i], 1e-6) {
					t.Errorf("c[%d]: got %g, want %g", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFit_DegenerateIdenticalX(t *testing.T) {
	for _, x := range []float64{0, 5, 7.3, 123, 640} {
		for degree := 1; degree <= 3; degree++ {
			pts := make([]Point, 6)
			for i := range pts {
				pts[i] = Point{X: x, Y: float64(i + 1)}
			}

			got, err := Fit(pts, degree)
			if !errors.Is(err, ErrDegenerateSystem) {
				t.Errorf("x=%v degree=%d: got err %v, want ErrDegenerateSystem", x, degree, err)
			}
			if got != nil {
				t.Errorf("x=%v degree=%d: got coefficients %v alongside error", x, degree, got)
			}
		}
	}
}

func TestFit_DegenerateTooFewDistinctX(t *testing.T) {
	// Four points but only two distinct abscissas cannot determine a parabola.
	pts := []Point{{0, 1}, {100, 2}, {0, 3}, {100, 4}}

	_, err := Fit(pts, 2)
	if !errors.Is(err, ErrDegenerateSystem) {
		t.Fatalf("got err %v, want ErrDegenerateSystem", err)
	}
}

// A cubic over a narrow cluster of abscissas far from x=0 falls below the
// pivot tolerance, while the same spacing near the origin and a parabola over
// the cluster both fit.
func TestFit_NarrowClusterFarFromOrigin(t *testing.T) {
	cubic := Coefficients{10, 0.5, -0.01, 0.0001}
	var near, far []float64
	for i := 0; i < 9; i++ {
		near = append(near, float64(5*i))
		far = append(far, 800+float64(5*i))
	}

	_, err := Fit(sample(cubic, far...), 3)
	if !errors.Is(err, ErrDegenerateSystem) {
		t.Errorf("cubic over [800, 840]: got err %v, want ErrDegenerateSystem", err)
	}

	if _, err := Fit(sample(cubic, far...), 2); err != nil {
		t.Errorf("parabola over [800, 840]: %v", err)
	}

	pts := sample(cubic, near...)
	got, err := Fit(pts, 3)
	if err != nil {
		t.Fatalf("cubic over [0, 40]: %v", err)
	}
	if q := Quality(got, pts); q.MaxResidual > 1e-3 {
		t.Errorf("cubic over [0, 40]: max residual %g", q.MaxResidual)
	}
}

func TestFit_InsufficientBoundary(t *testing.T) {
	pts := []Point{{0, 3}, {1, 5}, {2, 4}, {3, 8}, {4, 6}, {5, 9}}

	for degree := 0; degree <= 4; degree++ {
		_, err := Fit(pts[:degree], degree)
		if !errors.Is(err, ErrInsufficientData) {
			t.Errorf("degree %d with %d points: got err %v, want ErrInsufficientData", degree, degree, err)
		}

		_, err = Fit(pts[:degree+1], degree)
		if errors.Is(err, ErrInsufficientData) {
			t.Errorf("degree %d with %d points: unexpected ErrInsufficientData", degree, degree+1)
		}
	}
}

func TestFit_InvalidDegree(t *testing.T) {
	_, err := Fit([]Point{{0, 0}, {1, 1}}, -1)
	if !errors.Is(err, ErrInvalidDegree) {
		t.Fatalf("got err %v, want ErrInvalidDegree", err)
	}
}

func TestFit_Deterministic(t *testing.T) {
	pts := noisyPoints(Coefficients{120, 0.2, -0.0004}, 0, 640, 20)

	first, err := Fit(pts, 2)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Fit(pts, 2)
		if err != nil {
			t.Fatalf("Fit failed: %v", err)
		}
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
}

func TestFit_DoesNotModifyInput(t *testing.T) {
	pts := noisyPoints(Coefficients{10, 1}, 0, 100, 10)
	orig := append([]Point(nil), pts...)

	if _, err := Fit(pts, 1); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if diff := cmp.Diff(orig, pts); diff != "" {
		t.Errorf("input modified (-orig +now):\n%s", diff)
	}
}

// noisyPoints samples c on [from, to] with a deterministic ±3px wobble.
func noisyPoints(c Coefficients, from, to, step float64) []Point {
	var pts []Point
	for x := from; x <= to; x += step {
		pts = append(pts, Point{X: x, Y: c.At(x) + 3*math.Sin(x)})
	}
	return pts
}

// leastSquaresQR solves the same least-squares problem through a QR
// factorisation of the Vandermonde matrix.
func leastSquaresQR(t *testing.T, pts []Point, degree int) Coefficients {
	t.Helper()

	a := mat.NewDense(len(pts), degree+1, nil)
	b := mat.NewVecDense(len(pts), nil)
	for i, p := range pts {
		for j := 0; j <= degree; j++ {
			a.Set(i, j, math.Pow(p.X, float64(j)))
		}
		b.SetVec(i, p.Y)
	}

	var qr mat.QR
	qr.Factorize(a)

	var x mat.VecDense
	if err := qr.SolveVecTo(&x, false, b); err != nil {
		t.Fatalf("QR solve failed: %v", err)
	}

	out := make(Coefficients, degree+1)
	for j := range out {
		out[j] = x.AtVec(j)
	}
	return out
}

func TestFit_MatchesQRLeastSquares(t *testing.T) {
	tests := []struct {
		name   string
		base   Coefficients
	}{
		{"line", Coefficients{200, -0.1}},
		{"parabola", Coefficients{120, 0.2, -0.0004}},
		{"cubic", Coefficients{120, 0.2, -0.0004, 3e-7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pts := noisyPoints(tt.base, 0, 640, 20)
			degree := tt.base.Degree()

			got, err := Fit(pts, degree)
			if err != nil {
				t.Fatalf("Fit failed: %v", err)
			}
			want := leastSquaresQR(t, pts, degree)

			if diff := cmp.Diff(want, got, cmpopts.EquateApprox(1e-6, 1e-9)); diff != "" {
				t.Errorf("Fit differs from QR solution (-qr +fit):\n%s", diff)
			}
		})
	}
}
