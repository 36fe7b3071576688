package horizon

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSegment_Derived(t *testing.T) {
	tests := []struct {
		name    string
		seg     Segment
		length  float64
		span    int
	}{
		{"horizontal", Seg(0, 10, 30, 10), 30, 30},
		{"vertical", Seg(5, 0, 5, 40), 40, 0},
		{"3-4-5", Seg(0, 0, 3, 4), 5, 3},
		{"reversed", Seg(30, 4, 0, 0), 30.265492, 30},
		{"degenerate", Seg(7, 7, 7, 7), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.seg.Length(); !approxEqual(got, tt.length, 1e-6) {
				t.Errorf("Length: got %f, want %f", got, tt.length)
			}
			if got := tt.seg.HorizontalSpan(); got != tt.span {
				t.Errorf("HorizontalSpan: got %d, want %d", got, tt.span)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	segs := []Segment{
		Seg(0, 100, 100, 98),  // long, flat
		Seg(50, 50, 55, 52),   // short
		Seg(10, 10, 12, 90),   // long, near vertical
		Seg(200, 90, 300, 50), // long, sloped
		Seg(3, 3, 3, 3),       // zero length
	}

	tests := []struct {
		name      string
		minLength float64
		minSpan   float64
		want      []Segment
	}{
		{"both filters", 20, 15, []Segment{segs[0], segs[3]}},
		{"length only", 20, 0, []Segment{segs[0], segs[2], segs[3]}},
		{"span only", 0, 15, []Segment{segs[0], segs[3]}},
		{"no filtering keeps zero length", 0, 0, segs},
		{"nothing survives", 1000, 0, []Segment{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(segs, tt.minLength, tt.minSpan)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Classify mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClassify_ZeroLengthRejected(t *testing.T) {
	got := Classify([]Segment{Seg(4, 4, 4, 4)}, 0.5, 0)
	if len(got) != 0 {
		t.Errorf("zero-length segment accepted with minLength > 0: %v", got)
	}
}

func TestClassify_DoesNotModifyInput(t *testing.T) {
	segs := []Segment{Seg(0, 0, 100, 0), Seg(0, 0, 1, 1), Seg(0, 0, 50, 50)}
	orig := append([]Segment(nil), segs...)

	Classify(segs, 10, 10)

	if diff := cmp.Diff(orig, segs); diff != "" {
		t.Errorf("input modified (-orig +now):\n%s", diff)
	}
}

func TestClassifyStages(t *testing.T) {
	segs := []Segment{
		Seg(0, 100, 100, 98),
		Seg(100, 98, 200, 90),
		Seg(200, 90, 300, 50),
		Seg(10, 10, 12, 90),
		Seg(0, 0, 5, 5),
	}

	got := ClassifyStages(segs, 20, 15)

	if len(got.LengthSurvivors) != 4 {
		t.Errorf("LengthSurvivors: got %d, want 4", len(got.LengthSurvivors))
	}
	if len(got.Accepted) != 3 {
		t.Errorf("Accepted: got %d, want 3", len(got.Accepted))
	}
	if got.RejectedShort != 1 {
		t.Errorf("RejectedShort: got %d, want 1", got.RejectedShort)
	}
	if got.RejectedSteep != 1 {
		t.Errorf("RejectedSteep: got %d, want 1", got.RejectedSteep)
	}
}

func TestClassify_MonotoneInMinLength(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	segs := make([]Segment, 200)
	for i := range segs {
		segs[i] = Seg(rng.Intn(640), rng.Intn(480), rng.Intn(640), rng.Intn(480))
	}

	thresholds := []float64{0, 1, 10, 25, 50, 100, 250, 500, 1000}
	for i := 1; i < len(thresholds); i++ {
		t1, t2 := thresholds[i-1], thresholds[i]
		loose := Classify(segs, t1, 5)
		strict := Classify(segs, t2, 5)

		in := make(map[Segment]int)
		for _, s := range loose {
			in[s]++
		}
		for _, s := range strict {
			if in[s] == 0 {
				t.Fatalf("minLength %v accepted %v which %v rejected", t2, s, t1)
			}
			in[s]--
		}
	}
}

func TestEndpointsOf(t *testing.T) {
	got := EndpointsOf([]Segment{Seg(0, 100, 100, 98), Seg(100, 98, 200, 90)})
	want := []Point{{0, 100}, {100, 98}, {100, 98}, {200, 90}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EndpointsOf mismatch (-want +got):\n%s", diff)
	}
}
