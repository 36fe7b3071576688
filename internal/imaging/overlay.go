package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/horizon-tools-mcp/internal/horizon"
)

// Stage names, one per intermediate image of a detection run.
const (
	StageEdges          = "edges"
	StageAllLines       = "all_lines"
	StageLengthFiltered = "length_filtered"
	StageHorizontal     = "horizontal"
	StageHorizon        = "horizon"
)

// Stages lists every stage name in pipeline order.
func Stages() []string {
	return []string{StageEdges, StageAllLines, StageLengthFiltered, StageHorizontal, StageHorizon}
}

// Default overlay colours.
const (
	ColorRaw      = "#ff0000"
	ColorAccepted = "#0000ff"
	ColorCurve    = "#00ff00"
	ColorNotice   = "#ff0000"
	ColorGrid     = "#ffff00"
)

// noticeOrigin is where status notices are drawn (baseline-left).
var noticeOrigin = image.Point{X: 50, Y: 50}

// StageInputs holds what the overlays of one detection run are drawn from.
type StageInputs struct {
	// Base is the original color image.
	Base image.Image

	// Edges is the edge map the segments were detected on.
	Edges *image.Gray

	// Raw are the segments as reported by the detector.
	Raw []horizon.Segment

	// Result is the pipeline outcome for Raw.
	Result *horizon.Result
}

// OverlayResult contains one rendered stage encoded as base64 PNG.
type OverlayResult struct {
	Stage       string `json:"stage"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// RenderStage draws the named stage:
//   - edges: the edge map
//   - all_lines: every detected segment in red, 1px
//   - length_filtered: segments that passed the length filter in blue, 2px
//   - horizontal: segments that passed both filters in blue, 2px
//   - horizon: the fitted curve as green dots, or a red notice when no
//     curve could be fitted
func RenderStage(in StageInputs, stage string) (*image.NRGBA, error) {
	if in.Base == nil {
		return nil, fmt.Errorf("no image")
	}

	switch stage {
	case StageEdges:
		if in.Edges == nil {
			return nil, fmt.Errorf("no edge map")
		}
		return imaging.Clone(in.Edges), nil
	case StageAllLines:
		dst := imaging.Clone(in.Base)
		DrawSegments(dst, in.Raw, mustColor(ColorRaw), 1)
		return dst, nil
	}

	if in.Result == nil {
		return nil, fmt.Errorf("no pipeline result")
	}

	dst := imaging.Clone(in.Base)
	switch stage {
	case StageLengthFiltered:
		DrawSegments(dst, in.Result.Classification.LengthSurvivors, mustColor(ColorAccepted), 2)
	case StageHorizontal:
		DrawSegments(dst, in.Result.Classification.Accepted, mustColor(ColorAccepted), 2)
	case StageHorizon:
		switch in.Result.Status {
		case horizon.StatusCurve:
			DrawCurve(dst, in.Result.Curve, mustColor(ColorCurve))
		case horizon.StatusInsufficientData:
			DrawNotice(dst, "Not enough points!", noticeOrigin, mustColor(ColorNotice))
		default:
			DrawNotice(dst, "Degenerate fit!", noticeOrigin, mustColor(ColorNotice))
		}
	default:
		return nil, fmt.Errorf("unknown stage: %s", stage)
	}
	return dst, nil
}

// RenderAll draws every stage that the inputs allow.
func RenderAll(in StageInputs) (map[string]image.Image, error) {
	out := make(map[string]image.Image, len(Stages()))
	for _, stage := range Stages() {
		img, err := RenderStage(in, stage)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", stage, err)
		}
		out[stage] = img
	}
	return out, nil
}

// OverlayOptions adjust a rendered stage before encoding.
type OverlayOptions struct {
	// Grid draws a coordinate grid every Grid pixels when positive.
	Grid int

	// GridColor is the grid colour as hex. Defaults to ColorGrid.
	GridColor string

	// Region names a part of the image to zoom into (see NamedRegion).
	Region string

	// Crop is an explicit zoom rectangle. It wins over Region.
	Crop *Region

	// Scale resizes the zoomed region. Zero keeps the size.
	Scale float64
}

// Overlay renders a stage, applies the options and encodes it as base64 PNG.
// The grid is drawn before zooming, so grid lines sit at image coordinates.
func Overlay(in StageInputs, stage string, opts OverlayOptions) (*OverlayResult, error) {
	img, err := RenderStage(in, stage)
	if err != nil {
		return nil, err
	}

	if opts.Grid > 0 {
		hex := opts.GridColor
		if hex == "" {
			hex = ColorGrid
		}
		c, err := ParseColor(hex)
		if err != nil {
			return nil, err
		}
		DrawGrid(img, opts.Grid, c)
	}

	zoom := opts.Crop
	if zoom == nil && opts.Region != "" {
		r, err := NamedRegion(img.Bounds(), opts.Region)
		if err != nil {
			return nil, err
		}
		zoom = &r
	}
	if zoom != nil || (opts.Scale > 0 && opts.Scale != 1.0) {
		r := Region{X2: img.Bounds().Dx(), Y2: img.Bounds().Dy()}
		if zoom != nil {
			r = *zoom
		}
		if img, err = Zoom(img, r, opts.Scale); err != nil {
			return nil, err
		}
	}

	encoded, err := EncodePNG(img)
	if err != nil {
		return nil, err
	}
	return &OverlayResult{
		Stage:       stage,
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    "image/png",
	}, nil
}

// DrawSegments draws each segment with a square brush of the given thickness.
func DrawSegments(dst *image.NRGBA, segments []horizon.Segment, c color.Color, thickness int) {
	for _, s := range segments {
		drawLine(dst, s.X1, s.Y1, s.X2, s.Y2, c, thickness)
	}
}

// DrawCurve draws a filled dot of radius 1 at every curve point inside dst.
// Points outside the image are skipped.
func DrawCurve(dst *image.NRGBA, pts []image.Point, c color.Color) {
	bounds := dst.Bounds()
	for _, p := range pts {
		if !p.In(bounds) {
			continue
		}
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx*dx+dy*dy > 1 {
					continue
				}
				if q := p.Add(image.Point{X: dx, Y: dy}); q.In(bounds) {
					dst.Set(q.X, q.Y, c)
				}
			}
		}
	}
}

// DrawNotice writes text with its baseline starting at origin.
func DrawNotice(dst *image.NRGBA, text string, origin image.Point, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(origin.X, origin.Y),
	}
	d.DrawString(text)
}

// DrawGrid draws a coordinate grid every spacing pixels.
func DrawGrid(dst *image.NRGBA, spacing int, c color.Color) {
	if spacing <= 0 {
		return
	}
	bounds := dst.Bounds()
	for x := bounds.Min.X + spacing; x < bounds.Max.X; x += spacing {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			dst.Set(x, y, c)
		}
	}
	for y := bounds.Min.Y + spacing; y < bounds.Max.Y; y += spacing {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dst.Set(x, y, c)
		}
	}
}

// ParseColor parses a hex color such as "#00ff00" or "#0f0".
func ParseColor(hex string) (color.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

func mustColor(hex string) color.Color {
	c, err := ParseColor(hex)
	if err != nil {
		panic(err)
	}
	return c
}

// EncodePNG encodes an image as base64 PNG.
func EncodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// drawLine rasterises a line with Bresenham's algorithm, stamping a square
// brush of the given thickness at each step. Pixels outside dst are skipped.
func drawLine(dst *image.NRGBA, x0, y0, x1, y1 int, c color.Color, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	bounds := dst.Bounds()
	lo := -(thickness - 1) / 2
	hi := lo + thickness

	stamp := func(x, y int) {
		for dy := lo; dy < hi; dy++ {
			for dx := lo; dx < hi; dx++ {
				p := image.Point{X: x + dx, Y: y + dy}
				if p.In(bounds) {
					dst.Set(p.X, p.Y, c)
				}
			}
		}
	}

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy

	for {
		stamp(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
