package server

import (
	"github.com/ironsheep/horizon-tools-mcp/internal/horizon"
	"github.com/ironsheep/horizon-tools-mcp/internal/imaging"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Image Information
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_edge_detect",
			Description: "Run Canny edge detection (Gaussian blur, Sobel gradients, non-maximum suppression, hysteresis) and return the edge map as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"blur_ksize": map[string]interface{}{
						"type":        "integer",
						"description": "Gaussian blur kernel size, forced odd. Default 7",
						"default":     7,
					},
					"threshold_low": map[string]interface{}{
						"type":        "integer",
						"description": "Low hysteresis threshold. Default 50",
						"default":     50,
					},
					"threshold_high": map[string]interface{}{
						"type":        "integer",
						"description": "High hysteresis threshold. Default 150",
						"default":     150,
					},
				},
				"required": []string{"path"},
			},
		},

		// Tuning Session
		{
			Name:        "horizon_load",
			Description: "Make an image the active one for horizon tuning and run a full detection cycle on it with the current parameters. Returns the fit status, filter counts, polynomial coefficients and sampled curve points.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":     pathProperty(),
					"detector": detectorProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "horizon_get_params",
			Description: "Get the current tuning parameters with their valid ranges, the pipeline state and the available detectors.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "horizon_set_param",
			Description: "Change one tuning parameter. Out-of-range values are clamped and blur_ksize is forced odd. If an image is active the whole detection cycle is rerun and its result returned.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "string",
						"enum":        horizon.KnobNames(),
						"description": "Parameter name",
					},
					"value": map[string]interface{}{
						"type":        "integer",
						"description": "New value",
					},
				},
				"required": []string{"name", "value"},
			},
		},

		// One-shot Detection
		{
			Name:        "horizon_detect",
			Description: "Detect the horizon in an image with the current parameters, optionally overridden. Does not change the active image or the tuning parameters. Too few points or a degenerate fit are reported in the status, not as errors.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":     pathProperty(),
					"detector": detectorProperty(),
					"params": map[string]interface{}{
						"type":                 "object",
						"description":          "Parameter overrides by name, e.g. {\"degree\": 3, \"min_line_length\": 40}",
						"additionalProperties": map[string]interface{}{"type": "integer"},
					},
				},
				"required": []string{"path"},
			},
		},

		// Stage Rendering
		{
			Name:        "horizon_overlay",
			Description: "Render one stage of the active image's detection as base64-encoded PNG: edges, all_lines (red), length_filtered (blue), horizontal (blue) or horizon (green curve, or a red notice when no curve could be fitted). Optionally add a grid and zoom into a region.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"stage": map[string]interface{}{
						"type":        "string",
						"enum":        imaging.Stages(),
						"description": "Stage to render. Default horizon",
						"default":     imaging.StageHorizon,
					},
					"region": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"top-left", "top-right", "bottom-left", "bottom-right", "top-half", "bottom-half", "left-half", "right-half", "center"},
						"description": "Named region to zoom into",
					},
					"crop": map[string]interface{}{
						"type":        "object",
						"description": "Explicit zoom rectangle {x1, y1, x2, y2}; x2 and y2 are exclusive. Wins over region",
						"properties": map[string]interface{}{
							"x1": map[string]interface{}{"type": "integer"},
							"y1": map[string]interface{}{"type": "integer"},
							"x2": map[string]interface{}{"type": "integer"},
							"y2": map[string]interface{}{"type": "integer"},
						},
						"required": []string{"x1", "y1", "x2", "y2"},
					},
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor for the zoomed image. Default 1.0",
						"default":     1.0,
					},
					"grid": map[string]interface{}{
						"type":        "integer",
						"description": "Draw a coordinate grid every N pixels. Default none",
					},
					"grid_color": map[string]interface{}{
						"type":        "string",
						"description": "Grid color as hex. Default #ffff00",
						"default":     imaging.ColorGrid,
					},
				},
			},
		},
		{
			Name:        "horizon_fit_chart",
			Description: "Plot the active image's fit points and fitted curve as a diagnostic chart (base64-encoded PNG). The Y axis grows downward like image rows.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"width": map[string]interface{}{
						"type":        "number",
						"description": "Chart width in inches. Default 6",
						"default":     6,
					},
					"height": map[string]interface{}{
						"type":        "number",
						"description": "Chart height in inches. Default 4",
						"default":     4,
					},
				},
			},
		},
		{
			Name:        "horizon_snapshot",
			Description: "Save every stage image of the active image plus the current parameters (params.json) into a new directory named by a UUID.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"dir": map[string]interface{}{
						"type":        "string",
						"description": "Parent directory for the snapshot. Default HORIZON_MCP_SNAPSHOT_DIR or the OS temp directory",
					},
				},
			},
		},
	}
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func detectorProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Segment detector: hough (pure Go, default) or opencv (when built with gocv)",
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
