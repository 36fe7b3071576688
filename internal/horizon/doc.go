// Package horizon estimates a horizon curve from candidate line segments.
//
// The package is the numerical core of the server. It takes the segments an
// external line detector found in an image, filters them by geometric criteria,
// fits a low-degree polynomial through the endpoints of the survivors and
// evaluates that polynomial across the image width.
//
// # Pipeline
//
// One recompute cycle runs four stages in a fixed order:
//
//  1. Classification: drop segments shorter than MinLineLength, then drop
//     survivors whose horizontal span is below MinHorizontalSpan
//  2. Point extraction: both endpoints of every accepted segment become fit
//     points (duplicates are kept)
//  3. Fitting: least-squares polynomial of the requested degree, solved from the
//     normal equations by Gaussian elimination and back-substitution
//  4. Evaluation: one plotted pixel per integer x in [0, width)
//
// Every cycle starts from the raw segments. Nothing is carried between cycles
// except the ParameterSet owned by a Pipeline.
//
// # Results and Errors
//
// A cycle ends in exactly one of three statuses:
//   - StatusCurve: a fitted polynomial and its plotted points
//   - StatusInsufficientData: fewer fit points than degree+1
//   - StatusDegenerateSystem: the elimination met a zero or negligible pivot
//
// The two failure statuses are recoverable outcomes, not Go errors. Go errors
// are reserved for contract violations such as a negative frame size or a
// negative degree.
//
// # Numerical Limits
//
// Elimination runs without pivoting. That is adequate for the degrees typical
// of horizon curves (up to 3). Higher degrees are accepted but the normal
// equations become badly conditioned quickly, and such fits are more likely to
// be reported as degenerate.
//
// Conditioning also depends on where the abscissas lie, since x is not
// centred before solving. Points bunched into a narrow band far from x=0 make
// the higher rows of the system nearly dependent: nine points spread over
// x in [800, 840] fit a parabola but are reported degenerate for a cubic,
// while the same spacing over [0, 40] fits a cubic without trouble. A horizon
// spanning most of the frame width is not affected.
//
// # Thread Safety
//
// Classify, Fit, Evaluate, Plot and Recompute are pure functions and may be
// called concurrently. A Pipeline holds mutable state and must not be shared
// between goroutines without external locking.
package horizon
