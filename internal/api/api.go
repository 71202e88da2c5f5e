// Package api defines the JSON request and response bodies of the HTTP
// surface. The server encodes them and pipeline.Remote decodes them, so both
// sides agree on one set of types.
//
// Every response embeds Status: {"success": true, ...} on success and
// {"success": false, "message": "..."} on failure.
package api

import (
	"errors"

	"github.com/ironsheep/equation-board/internal/geometry"
	"github.com/ironsheep/equation-board/internal/sampler"
)

// Endpoint paths.
const (
	PathSolve   = "/solve"
	PathGraph   = "/graph"
	PathExtract = "/extract-equation"
	PathHealth  = "/healthz"
	PathCatalog = "/api"
	PathSession = "/ws"
)

// Status is the envelope shared by all responses.
type Status struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// OK returns a successful status.
func OK() Status { return Status{Success: true} }

// Fail returns a failed status carrying a user-visible message.
func Fail(message string) Status { return Status{Success: false, Message: message} }

// Err converts a failed status into an error; it returns nil on success.
func (s Status) Err() error {
	if s.Success {
		return nil
	}
	if s.Message == "" {
		return errors.New("request failed")
	}
	return errors.New(s.Message)
}

// SolveRequest asks for the value of an equation or expression.
type SolveRequest struct {
	Equation string             `json:"equation"`
	Scope    map[string]float64 `json:"scope,omitempty"`
}

// SolveResponse carries the computed value.
type SolveResponse struct {
	Status
	Result *float64 `json:"result,omitempty"`
	// Solution is Result formatted for display.
	Solution string `json:"solution,omitempty"`
}

// GraphRequest is a descriptor to sample.
type GraphRequest = sampler.Descriptor

// GraphResponse carries the sampled series.
type GraphResponse struct {
	Status
	Data              []sampler.Point `json:"data"`
	Variable          string          `json:"variable,omitempty"`
	DependentVariable string          `json:"dependentVariable,omitempty"`
}

// ExtractRequest submits a snapshot as a base64 string or data URL.
type ExtractRequest struct {
	Image string `json:"image"`
}

// ExtractResponse carries the recognized descriptor.
type ExtractResponse struct {
	Status
	Expression        string                   `json:"expression,omitempty"`
	DependentVariable string                   `json:"dependentVariable,omitempty"`
	Scope             map[string]float64       `json:"scope,omitempty"`
	Ranges            map[string]sampler.Range `json:"ranges,omitempty"`
	// Equation is "dep = expression" for display.
	Equation string `json:"equation,omitempty"`
}

// NewExtractResponse fills a successful response from d.
func NewExtractResponse(d sampler.Descriptor) ExtractResponse {
	return ExtractResponse{
		Status:            OK(),
		Expression:        d.Expression,
		DependentVariable: d.DependentVariable,
		Scope:             d.Scope,
		Ranges:            d.Ranges,
		Equation:          d.Equation(),
	}
}

// Descriptor returns the descriptor carried by a successful response.
func (r ExtractResponse) Descriptor() sampler.Descriptor {
	return sampler.Descriptor{
		Expression:        r.Expression,
		DependentVariable: r.DependentVariable,
		Scope:             r.Scope,
		Ranges:            r.Ranges,
	}
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status
	Version    string `json:"version"`
	Recognizer string `json:"recognizer"`
}

// Websocket message types sent by the board client.
const (
	MsgObjects    = "objects"
	MsgTranscript = "transcript"
	MsgVoiceStart = "voice_start"
	MsgCapture    = "capture"
	MsgSolve      = "solve"
	MsgGraph      = "graph"
	MsgClear      = "clear"
	MsgDblClick   = "dblclick"
)

// Websocket message types sent by the server.
const (
	MsgBoardAdd     = "board.add"
	MsgBoardClear   = "board.clear"
	MsgDrawingMode  = "drawing_mode"
	MsgChartDestroy = "chart.destroy"
	MsgChartRender  = "chart.render"
	MsgNotice       = "notice"
	MsgStatus       = "status"
)

// SessionMessage is one websocket frame. Type selects which of the other
// fields are meaningful.
type SessionMessage struct {
	Type string `json:"type"`

	// objects, board.add
	Objects []geometry.Object `json:"objects,omitempty"`
	Object  *geometry.Object  `json:"object,omitempty"`

	// transcript
	Transcript string `json:"transcript,omitempty"`

	// dblclick
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	// drawing_mode
	On *bool `json:"on,omitempty"`

	// chart.render
	Series *sampler.Series `json:"series,omitempty"`
	Label  string          `json:"label,omitempty"`

	// notice
	Message string `json:"message,omitempty"`

	// status
	State    string `json:"state,omitempty"`
	Equation string `json:"equation,omitempty"`
	Busy     bool   `json:"busy,omitempty"`
}
