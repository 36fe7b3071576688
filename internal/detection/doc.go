// Package detection finds the raw line segments a horizon is fitted to.
//
// A Detector takes an image and the tunable parameters and returns the
// intermediate products of one run: the binary edge map and the detected
// segments. Segment coordinates are 0-based with the origin at the top-left
// pixel of the edge map.
//
// # Detectors
//
// Detectors are looked up by name:
//
//   - hough: pure Go Canny edges and a Hough transform that walks each
//     accumulator peak into gap-split segments. Always available.
//   - opencv: OpenCV's Canny and probabilistic Hough transform through gocv.
//     Only compiled in with the gocv build tag.
//
// # Parameters
//
// Detectors read BlurKernelSize, CannyLow, CannyHigh, HoughThreshold,
// MinLineLength and MaxLineGap. HoughThreshold is a vote count. The segment
// filters and the curve fit in package horizon run on the result.
//
// # Performance Considerations
//
// The pure Go transform costs 180 accumulator votes per edge pixel plus one
// pass over the edge pixels per peak walked. Raising CannyLow/CannyHigh or
// HoughThreshold is the cheapest way to speed it up on busy images.
package detection
