//go:build gocv

package detection

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"

	"github.com/ironsheep/horizon-tools-mcp/internal/horizon"
)

// OpenCVDetector finds line segments with OpenCV's probabilistic Hough
// transform. Only built with the gocv tag since it needs the OpenCV shared
// libraries.
type OpenCVDetector struct{}

// Name implements Detector.
func (OpenCVDetector) Name() string { return "opencv" }

// Detect implements Detector.
func (OpenCVDetector) Detect(img image.Image, p horizon.ParameterSet) (*Stages, error) {
	frame := horizon.FrameOf(img.Bounds())
	if frame.Width == 0 || frame.Height == 0 {
		return nil, fmt.Errorf("empty image: %dx%d", frame.Width, frame.Height)
	}

	nrgba := imaging.Clone(img)
	mat, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC4, nrgba.Pix)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorRGBAToGray)

	k := horizon.OddKernelSize(p.BlurKernelSize)
	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(k, k), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, float32(p.CannyLow), float32(p.CannyHigh))

	lines := gocv.NewMat()
	defer lines.Close()
	gocv.HoughLinesPWithParams(edges, &lines, 1, float32(math.Pi/180), p.HoughThreshold,
		float32(p.MinLineLength), float32(p.MaxLineGap))

	segments := make([]horizon.Segment, 0, lines.Rows())
	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		segments = append(segments, horizon.Seg(int(v[0]), int(v[1]), int(v[2]), int(v[3])))
	}

	edgeMap := image.NewGray(image.Rect(0, 0, frame.Width, frame.Height))
	copy(edgeMap.Pix, edges.ToBytes())

	return &Stages{Edges: edgeMap, Segments: segments, Frame: frame}, nil
}

func init() {
	Register(OpenCVDetector{})
}
