package horizon

import "image"

// At evaluates the polynomial at x as a direct power sum.
func (c Coefficients) At(x float64) float64 {
	var y float64
	power := 1.0
	for _, ci := range c {
		y += ci * power
		power *= x
	}
	return y
}

// Evaluate returns the unrounded curve point at x. Use Point.Pixel to get the
// plotting coordinate.
func Evaluate(c Coefficients, x float64) Point {
	return Point{X: x, Y: c.At(x)}
}

// Plot evaluates the polynomial at every integer x in [0, width) and rounds
// each point to a pixel. Points may fall outside the image vertically; it is
// up to the renderer to clip them. A non-positive width yields no points.
func Plot(c Coefficients, width int) []image.Point {
	if width <= 0 {
		return []image.Point{}
	}
	pts := make([]image.Point, width)
	for x := 0; x < width; x++ {
		pts[x] = Evaluate(c, float64(x)).Pixel()
	}
	return pts
}
