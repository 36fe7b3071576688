package horizon

import (
	"errors"
	"fmt"
	"image"
)

// State is a step of the recompute state machine.
type State int

const (
	StateIdle State = iota
	StateClassifying
	StateFitting
	StateEvaluating
	StateReady
	StateInsufficientData
	StateDegenerateSystem
)

var stateNames = [...]string{
	StateIdle:             "idle",
	StateClassifying:      "classifying",
	StateFitting:          "fitting",
	StateEvaluating:       "evaluating",
	StateReady:            "ready",
	StateInsufficientData: "insufficient_data",
	StateDegenerateSystem: "degenerate_system",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether a cycle stops in s.
func (s State) Terminal() bool {
	return s == StateReady || s == StateInsufficientData || s == StateDegenerateSystem
}

// Status tags the outcome of a recompute cycle.
type Status string

const (
	StatusCurve            Status = "curve"
	StatusInsufficientData Status = "insufficient_data"
	StatusDegenerateSystem Status = "degenerate_system"
)

// Result is the outcome of one recompute cycle.
type Result struct {
	Status Status `json:"status"`

	// Diagnostic is a human-readable reason for a non-curve status.
	Diagnostic string `json:"diagnostic,omitempty"`

	Frame          Frame          `json:"frame"`
	Params         ParameterSet   `json:"params"`
	Classification Classification `json:"classification"`

	// Points are the fit points extracted from the accepted segments.
	Points []Point `json:"points"`

	// Coefficients, Curve and Quality are set only for StatusCurve.
	Coefficients Coefficients  `json:"coefficients,omitempty"`
	Curve        []image.Point `json:"curve,omitempty"`
	Quality      *FitQuality   `json:"quality,omitempty"`
}

// State returns the terminal state matching the result status.
func (r *Result) State() State {
	switch r.Status {
	case StatusCurve:
		return StateReady
	case StatusInsufficientData:
		return StateInsufficientData
	default:
		return StateDegenerateSystem
	}
}

// Recompute runs one full cycle over raw segments with the given parameters:
// classify, extract endpoints, fit, and evaluate across the frame width.
//
// The returned error is non-nil only for contract violations (negative frame
// dimensions or a negative degree). Insufficient and degenerate fits are
// reported through Result.Status.
func Recompute(raw []Segment, frame Frame, params ParameterSet) (*Result, error) {
	return recompute(raw, frame, params, nil)
}

func recompute(raw []Segment, frame Frame, params ParameterSet, step func(State)) (*Result, error) {
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	if params.Degree < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDegree, params.Degree)
	}
	if step == nil {
		step = func(State) {}
	}

	step(StateClassifying)
	cls := ClassifyStages(raw, float64(params.MinLineLength), float64(params.MinHorizontalSpan))
	res := &Result{
		Frame:          frame,
		Params:         params,
		Classification: cls,
		Points:         EndpointsOf(cls.Accepted),
	}

	step(StateFitting)
	coeffs, err := Fit(res.Points, params.Degree)
	switch {
	case errors.Is(err, ErrInsufficientData):
		res.Status = StatusInsufficientData
		res.Diagnostic = err.Error()
		step(StateInsufficientData)
		return res, nil
	case errors.Is(err, ErrDegenerateSystem):
		res.Status = StatusDegenerateSystem
		res.Diagnostic = err.Error()
		step(StateDegenerateSystem)
		return res, nil
	case err != nil:
		return nil, err
	}

	step(StateEvaluating)
	q := Quality(coeffs, res.Points)
	res.Status = StatusCurve
	res.Coefficients = coeffs
	res.Curve = Plot(coeffs, frame.Width)
	res.Quality = &q
	step(StateReady)
	return res, nil
}

// ParamChange is a single named parameter-change event.
type ParamChange struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Pipeline owns the current ParameterSet and the state of the most recent
// cycle. It keeps no segments, points or curves between cycles.
//
// A Pipeline is not safe for concurrent use; callers must serialise
// Apply, SetParams and Recompute.
type Pipeline struct {
	params ParameterSet
	state  State

	// OnTransition, if set, is called on every state change.
	OnTransition func(from, to State)
}

// NewPipeline returns an idle pipeline holding params after Clamp.
func NewPipeline(params ParameterSet) *Pipeline {
	return &Pipeline{params: params.Clamp(), state: StateIdle}
}

// Params returns the current parameter snapshot.
func (p *Pipeline) Params() ParameterSet {
	return p.params
}

// State returns the state the last cycle ended in, or StateIdle.
func (p *Pipeline) State() State {
	return p.state
}

// SetParams replaces the whole parameter snapshot. Values are clamped and the
// blur kernel made odd.
func (p *Pipeline) SetParams(params ParameterSet) ParameterSet {
	p.params = params.Clamp()
	return p.params
}

// Apply handles one parameter-change event and returns the resulting
// snapshot. Out-of-range values are clamped; unknown names are rejected and
// leave the snapshot unchanged.
func (p *Pipeline) Apply(change ParamChange) (ParameterSet, error) {
	next, err := p.params.With(change.Name, change.Value)
	if err != nil {
		return p.params, err
	}
	p.params = next.Clamp()
	return p.params, nil
}

// Recompute runs a full cycle on raw with the current parameters. It always
// starts again from classification, whatever state the previous cycle ended
// in.
func (p *Pipeline) Recompute(raw []Segment, frame Frame) (*Result, error) {
	res, err := recompute(raw, frame, p.params, p.transition)
	if err != nil {
		p.transition(StateIdle)
		return nil, err
	}
	return res, nil
}

func (p *Pipeline) transition(to State) {
	from := p.state
	p.state = to
	if p.OnTransition != nil {
		p.OnTransition(from, to)
	}
}
