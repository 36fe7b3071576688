package server

import (
	"fmt"
	"image"

	"github.com/ironsheep/horizon-tools-mcp/internal/detection"
	"github.com/ironsheep/horizon-tools-mcp/internal/horizon"
	"github.com/ironsheep/horizon-tools-mcp/internal/imaging"
)

// curveSamples bounds the number of curve points returned in a DetectResult.
const curveSamples = 33

// session is the active image being tuned and the products of its latest
// recompute cycle.
type session struct {
	path     string
	image    image.Image
	detector detection.Detector
	stages   *detection.Stages
	result   *horizon.Result
}

// inputs returns what the stage overlays are drawn from.
func (s *session) inputs() imaging.StageInputs {
	return imaging.StageInputs{
		Base:   s.image,
		Edges:  s.stages.Edges,
		Raw:    s.stages.Segments,
		Result: s.result,
	}
}

// CurvePoint is one sampled pixel of the fitted horizon.
type CurvePoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DetectResult summarises one recompute cycle.
type DetectResult struct {
	Path     string `json:"path"`
	Detector string `json:"detector"`
	State    string `json:"state"`

	Status     horizon.Status `json:"status"`
	Diagnostic string         `json:"diagnostic,omitempty"`

	Width  int `json:"width"`
	Height int `json:"height"`

	EdgePixels      int `json:"edge_pixels"`
	Segments        int `json:"segments"`
	LengthSurvivors int `json:"length_survivors"`
	Accepted        int `json:"accepted"`
	RejectedShort   int `json:"rejected_short"`
	RejectedSteep   int `json:"rejected_steep"`
	Points          int `json:"points"`

	Coefficients []float64          `json:"coefficients,omitempty"`
	Quality      *horizon.FitQuality `json:"quality,omitempty"`

	// Curve samples the plotted curve evenly, always including both ends.
	Curve []CurvePoint `json:"curve,omitempty"`

	Params horizon.ParameterSet `json:"params"`
}

// runCycle detects segments on img and recomputes the fit with the pipeline's
// current parameters.
func runCycle(img image.Image, det detection.Detector, p *horizon.Pipeline) (*detection.Stages, *horizon.Result, error) {
	stages, err := det.Detect(img, p.Params())
	if err != nil {
		return nil, nil, fmt.Errorf("%s detection failed: %w", det.Name(), err)
	}
	res, err := p.Recompute(stages.Segments, stages.Frame)
	if err != nil {
		return nil, nil, fmt.Errorf("recompute failed: %w", err)
	}
	return stages, res, nil
}

func summarize(path string, det detection.Detector, stages *detection.Stages, res *horizon.Result) *DetectResult {
	cls := res.Classification
	out := &DetectResult{
		Path:            path,
		Detector:        det.Name(),
		State:           res.State().String(),
		Status:          res.Status,
		Diagnostic:      res.Diagnostic,
		Width:           res.Frame.Width,
		Height:          res.Frame.Height,
		EdgePixels:      imaging.CountEdges(stages.Edges),
		Segments:        len(stages.Segments),
		LengthSurvivors: len(cls.LengthSurvivors),
		Accepted:        len(cls.Accepted),
		RejectedShort:   cls.RejectedShort,
		RejectedSteep:   cls.RejectedSteep,
		Points:          len(res.Points),
		Quality:         res.Quality,
		Curve:           sampleCurve(res.Curve, curveSamples),
		Params:          res.Params,
	}
	if res.Coefficients != nil {
		out.Coefficients = []float64(res.Coefficients)
	}
	return out
}

// sampleCurve picks at most n evenly spaced points, keeping the first and
// the last.
func sampleCurve(curve []image.Point, n int) []CurvePoint {
	if len(curve) == 0 {
		return nil
	}
	if n < 2 {
		n = 2
	}

	idx := make([]int, 0, n)
	if len(curve) <= n {
		for i := range curve {
			idx = append(idx, i)
		}
	} else {
		last := len(curve) - 1
		for k := 0; k < n; k++ {
			idx = append(idx, k*last/(n-1))
		}
	}

	out := make([]CurvePoint, len(idx))
	for i, j := range idx {
		out[i] = CurvePoint{X: curve[j].X, Y: curve[j].Y}
	}
	return out
}
