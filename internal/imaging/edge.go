package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/horizon-tools-mcp/internal/horizon"
)

// EdgeDetectResult contains an edge-detected image encoded as base64 PNG.
//
// The result is a grayscale image where white pixels (255) represent detected
// edges and black pixels (0) represent non-edges.
type EdgeDetectResult struct {
	// Width of the output image in pixels (same as input).
	Width int `json:"width"`

	// Height of the output image in pixels (same as input).
	Height int `json:"height"`

	// EdgePixels is the number of pixels marked as edges.
	EdgePixels int `json:"edge_pixels"`

	// The settings the map was computed with, kernel size after coercion.
	BlurKsize     int `json:"blur_ksize"`
	ThresholdLow  int `json:"threshold_low"`
	ThresholdHigh int `json:"threshold_high"`

	// ImageBase64 is the edge image encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png" for edge detection results.
	MimeType string `json:"mime_type"`
}

// EdgeDetect runs Canny and returns the edge map as base64 PNG.
func EdgeDetect(img image.Image, kernelSize, thresholdLow, thresholdHigh int) (*EdgeDetectResult, error) {
	edges := Canny(img, kernelSize, thresholdLow, thresholdHigh)

	encoded, err := EncodePNG(edges)
	if err != nil {
		return nil, err
	}

	return &EdgeDetectResult{
		Width:         edges.Bounds().Dx(),
		Height:        edges.Bounds().Dy(),
		EdgePixels:    CountEdges(edges),
		BlurKsize:     horizon.OddKernelSize(kernelSize),
		ThresholdLow:  thresholdLow,
		ThresholdHigh: thresholdHigh,
		ImageBase64:   encoded,
		MimeType:      "image/png",
	}, nil
}

// Canny performs Canny edge detection.
//
// Parameters:
//   - img: Source image (color or grayscale).
//   - kernelSize: Gaussian blur kernel size. Coerced to a positive odd value.
//   - thresholdLow: Gradient magnitude (0-255 scale) below which pixels are
//     discarded.
//   - thresholdHigh: Gradient magnitude above which pixels are strong edges.
//
// The returned image has its origin at (0, 0) regardless of the source
// bounds. Edge pixels are 255, everything else 0.
//
// # Algorithm
//
//  1. Grayscale conversion (imaging.Grayscale)
//  2. Gaussian blur with a kernelSize×kernelSize kernel (bild convolution);
//     sigma follows OpenCV's default for a given size:
//     0.3*((k-1)*0.5 - 1) + 0.8
//  3. Sobel gradients: magnitude = sqrt(Gx² + Gy²), direction = atan2(Gy, Gx)
//  4. Non-maximum suppression along the gradient direction
//  5. Hysteresis: strong pixels seed a flood fill through 8-connected weak
//     pixels
func Canny(img image.Image, kernelSize, thresholdLow, thresholdHigh int) *image.Gray {
	gray := imaging.Grayscale(img)
	width := gray.Bounds().Dx()
	height := gray.Bounds().Dy()

	blurred := blurGray(gray, horizon.OddKernelSize(kernelSize))

	magnitude := make([][]float64, height)
	direction := make([][]float64, height)

	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	for y := 0; y < height; y++ {
		magnitude[y] = make([]float64, width)
		direction[y] = make([]float64, width)

		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					gx += blurred[py][px] * sobelX[ky+1][kx+1]
					gy += blurred[py][px] * sobelY[ky+1][kx+1]
				}
			}
			magnitude[y][x] = math.Sqrt(gx*gx + gy*gy)
			direction[y][x] = math.Atan2(gy, gx)
		}
	}

	suppressed := suppressNonMaxima(magnitude, direction, width, height)
	return hysteresis(suppressed, width, height, float64(thresholdLow), float64(thresholdHigh))
}

// CountEdges returns the number of non-zero pixels in an edge map.
func CountEdges(edges *image.Gray) int {
	n := 0
	for _, v := range edges.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// blurGray returns the blurred luminance on a 0-255 scale.
func blurGray(gray *image.NRGBA, size int) [][]float64 {
	bounds := gray.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	var src image.Image = gray
	if size > 1 {
		src = convolution.Convolve(gray, gaussianKernel(size), &convolution.Options{Wrap: false, KeepAlpha: true})
	}

	out := make([][]float64, height)
	for y := 0; y < height; y++ {
		out[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			r, _, _, _ := src.At(x+src.Bounds().Min.X, y+src.Bounds().Min.Y).RGBA()
			out[y][x] = float64(r >> 8)
		}
	}
	return out
}

// gaussianKernel builds a normalised size×size Gaussian kernel.
func gaussianKernel(size int) *convolution.Kernel {
	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	half := size / 2

	k := convolution.NewKernel(size, size)
	var sum float64
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x - half)
			dy := float64(y - half)
			v := math.Exp(-(dx*dx + dy*dy) / (2 * sigma * sigma))
			k.Matrix[y*size+x] = v
			sum += v
		}
	}
	for i := range k.Matrix {
		k.Matrix[i] /= sum
	}
	return k
}

// suppressNonMaxima keeps only pixels that are local maxima along their
// gradient direction. Border pixels are always suppressed.
func suppressNonMaxima(magnitude, direction [][]float64, width, height int) [][]float64 {
	suppressed := make([][]float64, height)
	for y := 0; y < height; y++ {
		suppressed[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			if y == 0 || y == height-1 || x == 0 || x == width-1 {
				continue
			}

			angle := direction[y][x]
			mag := magnitude[y][x]
			if mag == 0 {
				continue
			}

			var n1, n2 float64
			if (angle >= -math.Pi/8 && angle < math.Pi/8) || (angle >= 7*math.Pi/8 || angle < -7*math.Pi/8) {
				n1 = magnitude[y][x-1]
				n2 = magnitude[y][x+1]
			} else if (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8) {
				n1 = magnitude[y-1][x-1]
				n2 = magnitude[y+1][x+1]
			} else if (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8) {
				n1 = magnitude[y-1][x]
				n2 = magnitude[y+1][x]
			} else {
				n1 = magnitude[y-1][x+1]
				n2 = magnitude[y+1][x-1]
			}

			if mag >= n1 && mag >= n2 {
				suppressed[y][x] = mag
			}
		}
	}
	return suppressed
}

// hysteresis marks strong pixels and every weak pixel connected to one.
func hysteresis(suppressed [][]float64, width, height int, low, high float64) *image.Gray {
	result := image.NewGray(image.Rect(0, 0, width, height))
	edge := color.Gray{Y: 255}

	var stack []image.Point
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if suppressed[y][x] >= high && suppressed[y][x] > 0 {
				result.SetGray(x, y, edge)
				stack = append(stack, image.Point{X: x, Y: y})
			}
		}
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := p.X+dx, p.Y+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				v := suppressed[ny][nx]
				if v > 0 && v >= low && result.GrayAt(nx, ny).Y == 0 {
					result.SetGray(nx, ny, edge)
					stack = append(stack, image.Point{X: nx, Y: ny})
				}
			}
		}
	}
	return result
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
