package detection

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/ironsheep/horizon-tools-mcp/internal/horizon"
	"github.com/ironsheep/horizon-tools-mcp/internal/imaging"
)

const (
	numAngles = 180

	// lineBand is how far (in pixels) an edge pixel may lie from a peak line
	// and still be attributed to it.
	lineBand = 1.5

	// peakRadius is the half-size of the accumulator neighbourhood a peak
	// must dominate.
	peakRadius = 2

	defaultMaxSegments = 200
)

// HoughDetector finds line segments with a pure Go Hough transform.
//
// Edge pixels vote in a (rho, theta) accumulator with 1 pixel and 1 degree
// resolution. Each accumulator peak with at least HoughThreshold votes is
// walked: the unclaimed edge pixels along its line are ordered, split into
// runs wherever the gap exceeds MaxLineGap, and every run at least
// MinLineLength long becomes a segment. Pixels of an emitted segment are
// claimed and never reused.
type HoughDetector struct {
	// MaxSegments bounds the number of segments returned.
	MaxSegments int
}

// NewHoughDetector returns a HoughDetector with the default segment bound.
func NewHoughDetector() *HoughDetector {
	return &HoughDetector{MaxSegments: defaultMaxSegments}
}

// Name implements Detector.
func (d *HoughDetector) Name() string { return "hough" }

// Detect implements Detector.
func (d *HoughDetector) Detect(img image.Image, p horizon.ParameterSet) (*Stages, error) {
	frame := horizon.FrameOf(img.Bounds())
	if frame.Width == 0 || frame.Height == 0 {
		return nil, fmt.Errorf("empty image: %dx%d", frame.Width, frame.Height)
	}

	edges := imaging.Canny(img, p.BlurKernelSize, p.CannyLow, p.CannyHigh)
	segments := d.segments(edges, p)

	return &Stages{Edges: edges, Segments: segments, Frame: frame}, nil
}

type peak struct {
	rho   int
	theta int
	votes int
}

// trig caches cos and sin for every accumulator angle.
type trig struct {
	cos [numAngles]float64
	sin [numAngles]float64
}

func newTrig() *trig {
	t := &trig{}
	for i := 0; i < numAngles; i++ {
		a := float64(i) * math.Pi / 180.0
		t.cos[i] = math.Cos(a)
		t.sin[i] = math.Sin(a)
	}
	return t
}

func (d *HoughDetector) segments(edges *image.Gray, p horizon.ParameterSet) []horizon.Segment {
	width := edges.Bounds().Dx()
	height := edges.Bounds().Dy()

	pixels := make([]image.Point, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if edges.Pix[y*edges.Stride+x] != 0 {
				pixels = append(pixels, image.Point{X: x, Y: y})
			}
		}
	}
	if len(pixels) == 0 {
		return []horizon.Segment{}
	}

	tr := newTrig()
	maxDist := int(math.Ceil(math.Hypot(float64(width), float64(height))))
	rows := 2*maxDist + 1
	acc := make([][]int, rows)
	for i := range acc {
		acc[i] = make([]int, numAngles)
	}

	// Vote in Hough space
	for _, px := range pixels {
		for theta := 0; theta < numAngles; theta++ {
			rho := float64(px.X)*tr.cos[theta] + float64(px.Y)*tr.sin[theta]
			acc[int(math.Round(rho))+maxDist][theta]++
		}
	}

	peaks := findPeaks(acc, maxDist, p.HoughThreshold)

	maxSegments := d.MaxSegments
	if maxSegments <= 0 {
		maxSegments = defaultMaxSegments
	}

	claimed := make([]bool, len(pixels))
	remaining := len(pixels)
	segments := make([]horizon.Segment, 0)

	for _, pk := range peaks {
		if len(segments) >= maxSegments || remaining == 0 {
			break
		}

		for _, run := range walkLine(pixels, claimed, tr, pk, p.MaxLineGap) {
			if len(segments) >= maxSegments {
				break
			}
			first, last := pixels[run[0]], pixels[run[len(run)-1]]
			seg := horizon.Seg(first.X, first.Y, last.X, last.Y)
			if seg.Length() < float64(p.MinLineLength) {
				continue
			}
			for _, i := range run {
				claimed[i] = true
			}
			remaining -= len(run)
			segments = append(segments, leftToRight(seg))
		}
	}

	return segments
}

// findPeaks returns the accumulator cells with at least threshold votes that
// dominate their neighbourhood, strongest first. Theta wraps around.
func findPeaks(acc [][]int, maxDist, threshold int) []peak {
	if threshold < 1 {
		threshold = 1
	}

	peaks := make([]peak, 0)
	for r := range acc {
		for theta := 0; theta < numAngles; theta++ {
			votes := acc[r][theta]
			if votes < threshold {
				continue
			}
			isMax := true
			for dr := -peakRadius; dr <= peakRadius && isMax; dr++ {
				for dt := -peakRadius; dt <= peakRadius && isMax; dt++ {
					if dr == 0 && dt == 0 {
						continue
					}
					nr := r + dr
					nt := (theta + dt + numAngles) % numAngles
					if nr < 0 || nr >= len(acc) {
						continue
					}
					n := acc[nr][nt]
					// Ties go to the earlier cell so a plateau yields one peak.
					if n > votes || (n == votes && (nr < r || (nr == r && nt < theta))) {
						isMax = false
					}
				}
			}
			if isMax {
				peaks = append(peaks, peak{rho: r - maxDist, theta: theta, votes: votes})
			}
		}
	}

	sort.SliceStable(peaks, func(i, j int) bool {
		return peaks[i].votes > peaks[j].votes
	})
	return peaks
}

// walkLine collects the unclaimed pixels near the peak line, orders them
// along the line and splits them into runs at gaps wider than maxGap. Runs
// are returned as indices into pixels.
func walkLine(pixels []image.Point, claimed []bool, tr *trig, pk peak, maxGap int) [][]int {
	cosA, sinA := tr.cos[pk.theta], tr.sin[pk.theta]
	rho := float64(pk.rho)

	type onLine struct {
		idx int
		t   float64
	}
	near := make([]onLine, 0)
	for i, px := range pixels {
		if claimed[i] {
			continue
		}
		x, y := float64(px.X), float64(px.Y)
		if math.Abs(x*cosA+y*sinA-rho) <= lineBand {
			// Position along the line direction (-sin, cos).
			near = append(near, onLine{idx: i, t: -x*sinA + y*cosA})
		}
	}
	if len(near) == 0 {
		return nil
	}

	sort.SliceStable(near, func(i, j int) bool { return near[i].t < near[j].t })

	limit := float64(maxGap) + 1
	runs := make([][]int, 0)
	run := []int{near[0].idx}
	for i := 1; i < len(near); i++ {
		if near[i].t-near[i-1].t > limit {
			runs = append(runs, run)
			run = nil
		}
		run = append(run, near[i].idx)
	}
	runs = append(runs, run)
	return runs
}

// leftToRight orders a segment's endpoints by abscissa, then ordinate.
func leftToRight(s horizon.Segment) horizon.Segment {
	if s.X1 > s.X2 || (s.X1 == s.X2 && s.Y1 > s.Y2) {
		return horizon.Seg(s.X2, s.Y2, s.X1, s.Y1)
	}
	return s
}
