package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/ironsheep/horizon-tools-mcp/internal/horizon"
)

// ChartResult contains a fit diagnostic chart encoded as base64 PNG.
type ChartResult struct {
	Status      horizon.Status `json:"status"`
	Points      int            `json:"points"`
	ImageBase64 string         `json:"image_base64"`
	MimeType    string         `json:"mime_type"`
}

// FitChart plots the fit points of a result together with its curve.
//
// The Y axis is inverted so the chart reads like the image: y grows
// downward. For non-curve results only the points are drawn and the title
// carries the diagnostic. Width and height are in inches.
func FitChart(res *horizon.Result, width, height vg.Length) ([]byte, error) {
	if res == nil {
		return nil, fmt.Errorf("no pipeline result")
	}

	p := plot.New()
	p.Title.Text = chartTitle(res)
	p.X.Label.Text = "x (px)"
	p.Y.Label.Text = "y (px)"
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	p.X.Min = 0
	p.X.Max = float64(res.Frame.Width)
	p.Add(plotter.NewGrid())

	if len(res.Points) > 0 {
		pts := make(plotter.XYs, len(res.Points))
		for i, pt := range res.Points {
			pts[i].X = pt.X
			pts[i].Y = pt.Y
		}
		scatter, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to build scatter: %w", err)
		}
		scatter.GlyphStyle.Color = color.RGBA{R: 0, G: 0, B: 255, A: 255}
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		scatter.GlyphStyle.Radius = vg.Points(3)
		p.Add(scatter)
		p.Legend.Add("fit points", scatter)
	}

	if res.Status == horizon.StatusCurve && len(res.Curve) > 0 {
		curve := make(plotter.XYs, len(res.Curve))
		for i, c := range res.Curve {
			curve[i].X = float64(c.X)
			curve[i].Y = res.Coefficients.At(float64(c.X))
		}
		line, err := plotter.NewLine(curve)
		if err != nil {
			return nil, fmt.Errorf("failed to build curve: %w", err)
		}
		line.LineStyle.Color = color.RGBA{R: 0, G: 160, B: 0, A: 255}
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add("fitted horizon", line)
	}

	w, err := p.WriterTo(width, height, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}
	return buf.Bytes(), nil
}

// Chart renders FitChart and wraps it as base64 PNG.
func Chart(res *horizon.Result, width, height vg.Length) (*ChartResult, error) {
	data, err := FitChart(res, width, height)
	if err != nil {
		return nil, err
	}
	return &ChartResult{
		Status:      res.Status,
		Points:      len(res.Points),
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    "image/png",
	}, nil
}

func chartTitle(res *horizon.Result) string {
	if res.Status != horizon.StatusCurve {
		return fmt.Sprintf("horizon fit: %s", res.Diagnostic)
	}
	return fmt.Sprintf("horizon fit: degree %d, %d points", res.Coefficients.Degree(), len(res.Points))
}
