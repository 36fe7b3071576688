package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/plot/vg"

	"github.com/ironsheep/horizon-tools-mcp/internal/detection"
	"github.com/ironsheep/horizon-tools-mcp/internal/horizon"
	"github.com/ironsheep/horizon-tools-mcp/internal/imaging"
)

// errNoActiveImage is returned by tools that work on the tuning session
// before horizon_load was called.
var errNoActiveImage = errors.New("no active image: call horizon_load first")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "horizon_load", "horizon_set_param").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
// Insufficient and degenerate fits are ordinary results, not errors.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.debugf("tool %s failed: %v", params.Name, err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Image Information
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_edge_detect":
		return s.handleImageEdgeDetect(args)

	// Tuning Session
	case "horizon_load":
		return s.handleHorizonLoad(args)
	case "horizon_get_params":
		return s.handleHorizonGetParams(args)
	case "horizon_set_param":
		return s.handleHorizonSetParam(args)

	// One-shot Detection
	case "horizon_detect":
		return s.handleHorizonDetect(args)

	// Stage Rendering
	case "horizon_overlay":
		return s.handleHorizonOverlay(args)
	case "horizon_fit_chart":
		return s.handleHorizonFitChart(args)
	case "horizon_snapshot":
		return s.handleHorizonSnapshot(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Image Information Handlers ===

type imagePathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imagePathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type imageEdgeDetectArgs struct {
	Path          string `json:"path"`
	BlurKsize     *int   `json:"blur_ksize"`
	ThresholdLow  *int   `json:"threshold_low"`
	ThresholdHigh *int   `json:"threshold_high"`
}

// handleImageEdgeDetect runs Canny with the given settings. Omitted settings
// take the tuning defaults; an explicit 0 is kept.
func (s *Server) handleImageEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a imageEdgeDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	defaults := horizon.DefaultParameters()
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EdgeDetect(img,
		intOr(a.BlurKsize, defaults.BlurKernelSize),
		intOr(a.ThresholdLow, defaults.CannyLow),
		intOr(a.ThresholdHigh, defaults.CannyHigh))
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

// === Tuning Session Handlers ===

type horizonLoadArgs struct {
	Path     string `json:"path"`
	Detector string `json:"detector"`
}

// handleHorizonLoad makes an image the active one and runs a full cycle on
// it with the current parameters. Parameters carry over between images.
func (s *Server) handleHorizonLoad(args json.RawMessage) (interface{}, error) {
	var a horizonLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if a.Detector == "" {
		a.Detector = s.config.detector()
	}
	det, err := detection.Lookup(a.Detector)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stages, res, err := runCycle(img, det, s.pipeline)
	if err != nil {
		return nil, err
	}
	s.active = &session{path: a.Path, image: img, detector: det, stages: stages, result: res}
	s.debugf("loaded %s: %s, %d segments", a.Path, res.Status, len(stages.Segments))

	return summarize(a.Path, det, stages, res), nil
}

// ParamsResult describes the tuning session's parameters.
type ParamsResult struct {
	Params     horizon.ParameterSet `json:"params"`
	Knobs      []horizon.Knob       `json:"knobs"`
	State      string               `json:"state"`
	ActivePath string               `json:"active_path,omitempty"`
	Detector   string               `json:"detector"`
	Detectors  []string             `json:"detectors"`
}

func (s *Server) handleHorizonGetParams(args json.RawMessage) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := &ParamsResult{
		Params:    s.pipeline.Params(),
		Knobs:     horizon.Knobs(),
		State:     s.pipeline.State().String(),
		Detector:  s.config.detector(),
		Detectors: detection.Names(),
	}
	if s.active != nil {
		out.ActivePath = s.active.path
		out.Detector = s.active.detector.Name()
	}
	return out, nil
}

type horizonSetParamArgs struct {
	Name  string `json:"name"`
	Value *int   `json:"value"`
}

// SetParamResult reports a parameter-change event and, with an active image,
// the cycle it triggered.
type SetParamResult struct {
	Name      string               `json:"name"`
	Requested int                  `json:"requested"`
	Value     int                  `json:"value"`
	Clamped   bool                 `json:"clamped"`
	Params    horizon.ParameterSet `json:"params"`
	Result    *DetectResult        `json:"result,omitempty"`
}

func (s *Server) handleHorizonSetParam(args json.RawMessage) (interface{}, error) {
	var a horizonSetParamArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Value == nil {
		return nil, fmt.Errorf("value is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.pipeline.Params()
	params, err := s.pipeline.Apply(horizon.ParamChange{Name: a.Name, Value: *a.Value})
	if err != nil {
		return nil, err
	}
	applied, _ := params.Get(a.Name)
	out := &SetParamResult{
		Name:      a.Name,
		Requested: *a.Value,
		Value:     applied,
		Clamped:   applied != *a.Value,
		Params:    params,
	}

	if s.active == nil {
		s.debugf("param %s = %d (requested %d)", a.Name, applied, *a.Value)
		return out, nil
	}

	stages, res, err := runCycle(s.active.image, s.active.detector, s.pipeline)
	if err != nil {
		// Keep parameters and products of the last good cycle together.
		s.pipeline.SetParams(prev)
		return nil, err
	}
	s.debugf("param %s = %d (requested %d)", a.Name, applied, *a.Value)
	s.active.stages = stages
	s.active.result = res
	out.Result = summarize(s.active.path, s.active.detector, stages, res)
	return out, nil
}

// === One-shot Detection Handlers ===

type horizonDetectArgs struct {
	Path     string         `json:"path"`
	Detector string         `json:"detector"`
	Params   map[string]int `json:"params"`
}

// handleHorizonDetect runs one cycle with the session parameters overridden
// by the given ones. The session itself is left untouched.
func (s *Server) handleHorizonDetect(args json.RawMessage) (interface{}, error) {
	var a horizonDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	s.mu.Lock()
	params := s.pipeline.Params()
	s.mu.Unlock()

	names := make([]string, 0, len(a.Params))
	for name := range a.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		next, err := params.With(name, a.Params[name])
		if err != nil {
			return nil, err
		}
		params = next
	}

	return s.Detect(a.Path, a.Detector, params)
}

// Detect runs one cycle on the image at path with params, outside the tuning
// session. An empty detector name selects the configured one.
func (s *Server) Detect(path, detector string, params horizon.ParameterSet) (*DetectResult, error) {
	if detector == "" {
		detector = s.config.detector()
	}
	det, err := detection.Lookup(detector)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}

	stages, res, err := runCycle(img, det, horizon.NewPipeline(params))
	if err != nil {
		return nil, err
	}
	return summarize(path, det, stages, res), nil
}

// === Stage Rendering Handlers ===

type horizonOverlayArgs struct {
	Stage     string          `json:"stage"`
	Region    string          `json:"region"`
	Crop      *imaging.Region `json:"crop"`
	Scale     float64         `json:"scale"`
	Grid      int             `json:"grid"`
	GridColor string          `json:"grid_color"`
}

func (s *Server) handleHorizonOverlay(args json.RawMessage) (interface{}, error) {
	var a horizonOverlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Stage == "" {
		a.Stage = imaging.StageHorizon
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil, errNoActiveImage
	}

	return imaging.Overlay(s.active.inputs(), a.Stage, imaging.OverlayOptions{
		Grid:      a.Grid,
		GridColor: a.GridColor,
		Region:    a.Region,
		Crop:      a.Crop,
		Scale:     a.Scale,
	})
}

type horizonFitChartArgs struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s *Server) handleHorizonFitChart(args json.RawMessage) (interface{}, error) {
	var a horizonFitChartArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Width <= 0 {
		a.Width = 6
	}
	if a.Height <= 0 {
		a.Height = 4
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil, errNoActiveImage
	}

	return imaging.Chart(s.active.result, vg.Length(a.Width)*vg.Inch, vg.Length(a.Height)*vg.Inch)
}

type horizonSnapshotArgs struct {
	Dir string `json:"dir"`
}

func (s *Server) handleHorizonSnapshot(args json.RawMessage) (interface{}, error) {
	var a horizonSnapshotArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Dir == "" {
		a.Dir = s.config.snapshotDir()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return nil, errNoActiveImage
	}

	images, err := imaging.RenderAll(s.active.inputs())
	if err != nil {
		return nil, err
	}
	res, err := imaging.Snapshot(a.Dir, images, s.pipeline.Params())
	if err != nil {
		return nil, err
	}
	s.debugf("snapshot written to %s", res.Dir)
	return res, nil
}
