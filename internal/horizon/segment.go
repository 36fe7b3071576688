package horizon

import (
	"fmt"
	"image"
	"math"
)

// Segment is a straight line candidate with two integer endpoints, as
// produced by a line detector. Segments are values and are never modified.
type Segment struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Seg builds a Segment from its endpoint coordinates.
func Seg(x1, y1, x2, y2 int) Segment {
	return Segment{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Length returns the Euclidean distance between the endpoints.
func (s Segment) Length() float64 {
	dx := float64(s.X2 - s.X1)
	dy := float64(s.Y2 - s.Y1)
	return math.Sqrt(dx*dx + dy*dy)
}

// HorizontalSpan returns |X2 - X1|.
func (s Segment) HorizontalSpan() int {
	if s.X2 < s.X1 {
		return s.X1 - s.X2
	}
	return s.X2 - s.X1
}

// Endpoints returns both endpoints as real-valued points.
func (s Segment) Endpoints() (Point, Point) {
	return Point{X: float64(s.X1), Y: float64(s.Y1)},
		Point{X: float64(s.X2), Y: float64(s.Y2)}
}

func (s Segment) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", s.X1, s.Y1, s.X2, s.Y2)
}

// Point is a real-valued 2D coordinate used for fitting.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pixel rounds the point to the nearest integer pixel coordinate.
func (p Point) Pixel() image.Point {
	return image.Point{X: int(math.Round(p.X)), Y: int(math.Round(p.Y))}
}

// Frame holds the pixel dimensions of the image the segments came from.
type Frame struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// FrameOf returns the frame of an image's bounds.
func FrameOf(r image.Rectangle) Frame {
	return Frame{Width: r.Dx(), Height: r.Dy()}
}

// Validate reports negative dimensions.
func (f Frame) Validate() error {
	if f.Width < 0 || f.Height < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidFrame, f.Width, f.Height)
	}
	return nil
}

// Contains reports whether the pixel lies inside the frame.
func (f Frame) Contains(p image.Point) bool {
	return p.X >= 0 && p.X < f.Width && p.Y >= 0 && p.Y < f.Height
}

// EndpointsOf returns both endpoints of every segment, in segment order.
// Shared endpoints of adjacent segments appear twice.
func EndpointsOf(segments []Segment) []Point {
	points := make([]Point, 0, 2*len(segments))
	for _, s := range segments {
		a, b := s.Endpoints()
		points = append(points, a, b)
	}
	return points
}
