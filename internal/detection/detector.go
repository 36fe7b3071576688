package detection

import (
	"fmt"
	"image"
	"sort"
	"sync"

	"github.com/ironsheep/horizon-tools-mcp/internal/horizon"
)

// DefaultDetector is the detector used when none is named.
const DefaultDetector = "hough"

// Stages holds the intermediate products of one detection run.
type Stages struct {
	// Edges is the binary edge map the segments were found on (0 or 255).
	Edges *image.Gray

	// Segments are the raw detected segments, in edge map coordinates.
	Segments []horizon.Segment

	// Frame is the size of the analysed image.
	Frame horizon.Frame
}

// Detector turns an image into raw line segments.
//
// Implementations read BlurKernelSize, CannyLow, CannyHigh, HoughThreshold,
// MinLineLength and MaxLineGap from the parameter set. They must be safe for
// concurrent use.
type Detector interface {
	Name() string
	Detect(img image.Image, p horizon.ParameterSet) (*Stages, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Detector)
)

// Register makes a detector available by its name, replacing any detector
// registered under the same name.
func Register(d Detector) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.Name()] = d
}

// Lookup returns the named detector. An empty name selects DefaultDetector.
func Lookup(name string) (Detector, error) {
	if name == "" {
		name = DefaultDetector
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown detector %q (available: %v)", name, namesLocked())
	}
	return d, nil
}

// Names lists the registered detectors, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return namesLocked()
}

func namesLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(NewHoughDetector())
}
