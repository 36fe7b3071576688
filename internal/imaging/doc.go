// Package imaging provides the image-side collaborators of horizon detection.
//
// This package loads images, computes Canny edge maps for the segment
// detectors, and renders every intermediate stage of a detection run: the
// edge map, all detected segments, the segments surviving each classifier
// filter, and the fitted horizon. It also draws fit diagnostic charts and
// writes snapshots of all stages to disk.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//
// Edge maps and rendered stages always have their origin at (0, 0), even when
// the source image bounds do not. Segment coordinates refer to that origin.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Canny, the render functions
// and FitChart are stateless and can be called concurrently. Rendering always
// works on a copy of the source image.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - File I/O errors during image loading or snapshot writing
//   - Unknown stage names
//   - Encoding errors during image output
//
// # Performance Considerations
//
// For repeated operations on the same image, use ImageCache to avoid redundant
// disk reads. Canny allocates several float64 planes the size of the image.
package imaging
