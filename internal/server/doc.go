// Package server implements the MCP (Model Context Protocol) server for
// horizon detection and interactive tuning.
//
// This package provides a JSON-RPC 2.0 server that exposes the horizon
// pipeline through the MCP protocol. A client loads an image, changes one
// tuning parameter at a time and inspects each stage of the result, much like
// dragging sliders in a live tuning window.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Image Information:
//   - image_dimensions: Get width and height
//   - image_edge_detect: Canny edge map
//
// Tuning Session:
//   - horizon_load: Make an image active and run a full cycle
//   - horizon_get_params: Current parameters, ranges and state
//   - horizon_set_param: Change one parameter and rerun the cycle
//
// One-shot Detection:
//   - horizon_detect: Run a cycle with overrides, session untouched
//
// Stage Rendering:
//   - horizon_overlay: Render one stage, optionally gridded and zoomed
//   - horizon_fit_chart: Plot fit points and curve
//   - horizon_snapshot: Save every stage and the parameters to disk
//
// # Tuning Session
//
// The server holds one horizon.Pipeline and at most one active image.
// Parameters persist across horizon_load calls. Every parameter change reruns
// segment detection and the fit from scratch; nothing from an earlier cycle
// is reused.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// Too few fit points and a singular fit are not errors. They come back as an
// ordinary result whose status is insufficient_data or degenerate_system.
//
// # Usage
//
//	srv := server.New(server.ConfigFromEnv(version))
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
