package horizon

import (
	"fmt"
	"sort"
)

// ParameterSet holds the tunable knobs of one detection run. The first seven
// configure the external detector and the classifier; Degree selects the
// polynomial fitted through the accepted segments.
//
// Values are plain integers. Range enforcement and the odd blur kernel rule
// are the caller's job (see Clamp); the pipeline never rewrites a
// ParameterSet it was handed.
type ParameterSet struct {
	BlurKernelSize    int `json:"blur_ksize"`
	CannyLow          int `json:"canny_low"`
	CannyHigh         int `json:"canny_high"`
	HoughThreshold    int `json:"hough_threshold"`
	MinLineLength     int `json:"min_line_length"`
	MaxLineGap        int `json:"max_line_gap"`
	MinHorizontalSpan int `json:"min_horizontal_span"`
	Degree            int `json:"degree"`
}

// DefaultParameters returns the defaults used when nothing has been tuned.
func DefaultParameters() ParameterSet {
	return ParameterSet{
		BlurKernelSize:    7,
		CannyLow:          50,
		CannyHigh:         150,
		HoughThreshold:    50,
		MinLineLength:     30,
		MaxLineGap:        20,
		MinHorizontalSpan: 10,
		Degree:            2,
	}
}

// Knob describes one named parameter and its declared range.
type Knob struct {
	Name    string `json:"name"`
	Min     int    `json:"min"`
	Max     int    `json:"max"`
	Default int    `json:"default"`

	get func(*ParameterSet) *int
}

var knobs = []Knob{
	{Name: "blur_ksize", Min: 1, Max: 31, get: func(p *ParameterSet) *int { return &p.BlurKernelSize }},
	{Name: "canny_low", Min: 0, Max: 500, get: func(p *ParameterSet) *int { return &p.CannyLow }},
	{Name: "canny_high", Min: 0, Max: 500, get: func(p *ParameterSet) *int { return &p.CannyHigh }},
	{Name: "hough_threshold", Min: 0, Max: 200, get: func(p *ParameterSet) *int { return &p.HoughThreshold }},
	{Name: "min_line_length", Min: 0, Max: 300, get: func(p *ParameterSet) *int { return &p.MinLineLength }},
	{Name: "max_line_gap", Min: 0, Max: 100, get: func(p *ParameterSet) *int { return &p.MaxLineGap }},
	{Name: "min_horizontal_span", Min: 0, Max: 50, get: func(p *ParameterSet) *int { return &p.MinHorizontalSpan }},
	{Name: "degree", Min: 0, Max: 5, get: func(p *ParameterSet) *int { return &p.Degree }},
}

func init() {
	def := DefaultParameters()
	for i := range knobs {
		knobs[i].Default = *knobs[i].get(&def)
	}
}

// Knobs lists every parameter with its range, in declaration order.
func Knobs() []Knob {
	out := make([]Knob, len(knobs))
	copy(out, knobs)
	return out
}

// KnobNames returns the parameter names sorted alphabetically.
func KnobNames() []string {
	names := make([]string, len(knobs))
	for i, k := range knobs {
		names[i] = k.Name
	}
	sort.Strings(names)
	return names
}

func lookupKnob(name string) (Knob, bool) {
	for _, k := range knobs {
		if k.Name == name {
			return k, true
		}
	}
	return Knob{}, false
}

// Get returns the value of the named parameter.
func (p ParameterSet) Get(name string) (int, error) {
	k, ok := lookupKnob(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	return *k.get(&p), nil
}

// With returns a copy of p with one named parameter replaced. The value is
// stored as given; call Clamp to bring it into range.
func (p ParameterSet) With(name string, value int) (ParameterSet, error) {
	k, ok := lookupKnob(name)
	if !ok {
		return p, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	*k.get(&p) = value
	return p, nil
}

// Clamp returns a copy of p with every knob clamped to its declared range and
// the blur kernel coerced to a positive odd size (an even size is rounded up).
func (p ParameterSet) Clamp() ParameterSet {
	for _, k := range knobs {
		v := k.get(&p)
		*v = clampInt(*v, k.Min, k.Max)
	}
	p.BlurKernelSize = OddKernelSize(p.BlurKernelSize)
	return p
}

// Validate reports the first knob outside its range, or an even blur kernel.
func (p ParameterSet) Validate() error {
	for _, k := range knobs {
		v := *k.get(&p)
		if v < k.Min || v > k.Max {
			return fmt.Errorf("%w: %s=%d not in [%d, %d]", ErrParameterRange, k.Name, v, k.Min, k.Max)
		}
	}
	if p.BlurKernelSize%2 == 0 {
		return fmt.Errorf("%w: blur_ksize=%d must be odd", ErrParameterRange, p.BlurKernelSize)
	}
	return nil
}

// OddKernelSize coerces a blur kernel size to a positive odd integer:
// values below 1 become 1 and even values are incremented.
func OddKernelSize(k int) int {
	if k < 1 {
		k = 1
	}
	if k%2 == 0 {
		k++
	}
	return k
}

// clampInt constrains an integer value to the range [min, max].
func clampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
