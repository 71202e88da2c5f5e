package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ironsheep/equation-board/internal/api"
	"github.com/ironsheep/equation-board/internal/imaging"
	"github.com/ironsheep/equation-board/internal/recognition"
	"github.com/ironsheep/equation-board/internal/sampler"
)

// maxResponseBytes bounds how much of a server response is read.
const maxResponseBytes = 8 << 20

// RemoteError is a failure reported by, or on the way to, a remote server.
// Network errors and {"success": false} answers look the same to callers.
type RemoteError struct {
	Path    string
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request failed"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, msg)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Remote calls a deployed server's HTTP endpoints.
type Remote struct {
	baseURL string
	client  *http.Client
}

// NewRemote creates a Remote for the server at baseURL. A nil client uses
// http.DefaultClient.
func NewRemote(baseURL string, client *http.Client) *Remote {
	if client == nil {
		client = http.DefaultClient
	}
	return &Remote{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (r *Remote) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return &RemoteError{Path: path, Err: fmt.Errorf("failed to encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &RemoteError{Path: path, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return &RemoteError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	// The server answers with a JSON envelope even for rejected requests, so
	// the body is decoded before the status code is considered.
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &RemoteError{Path: path, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &RemoteError{Path: path, Err: fmt.Errorf("malformed response (%s): %w", resp.Status, err)}
	}
	return nil
}

// Extract posts the snapshot to the extraction endpoint.
func (r *Remote) Extract(ctx context.Context, img recognition.Image) (*sampler.Descriptor, error) {
	if len(img.Data) == 0 {
		return nil, recognition.Fail(recognition.NoImageMessage, nil)
	}
	mimeType := img.MimeType
	if mimeType == "" {
		mimeType = imaging.JPEG.MimeType()
	}

	var resp api.ExtractResponse
	req := api.ExtractRequest{Image: imaging.EncodeDataURL(mimeType, img.Data)}
	if err := r.post(ctx, api.PathExtract, req, &resp); err != nil {
		return nil, recognition.Fail("", err)
	}
	if !resp.Success {
		return nil, recognition.Fail(resp.Message, &RemoteError{Path: api.PathExtract, Message: resp.Message})
	}
	if resp.Expression == "" {
		return nil, recognition.Fail("", &RemoteError{Path: api.PathExtract, Message: "response has no expression"})
	}

	d := resp.Descriptor()
	return &d, nil
}

// Solve posts the equation to the solve endpoint.
func (r *Remote) Solve(ctx context.Context, equation string, scope map[string]float64) (float64, error) {
	var resp api.SolveResponse
	if err := r.post(ctx, api.PathSolve, api.SolveRequest{Equation: equation, Scope: scope}, &resp); err != nil {
		return 0, err
	}
	if !resp.Success {
		return 0, &RemoteError{Path: api.PathSolve, Message: resp.Message}
	}
	if resp.Result == nil {
		return 0, &RemoteError{Path: api.PathSolve, Err: errors.New("response has no result")}
	}
	return *resp.Result, nil
}

// Graph posts the descriptor to the graph endpoint.
func (r *Remote) Graph(ctx context.Context, d sampler.Descriptor) (*sampler.Series, error) {
	var resp api.GraphResponse
	if err := r.post(ctx, api.PathGraph, d, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &RemoteError{Path: api.PathGraph, Message: resp.Message}
	}

	series := &sampler.Series{
		Variable:          resp.Variable,
		DependentVariable: resp.DependentVariable,
		Points:            resp.Data,
	}
	if series.DependentVariable == "" {
		series.DependentVariable = d.DependentVariable
	}
	if series.Variable == "" {
		series.Variable, _ = sampler.SelectVariable(d.Scope, d.Ranges)
	}
	if rng, ok := d.Ranges[series.Variable]; ok {
		series.Range = rng
	}
	if series.Points == nil {
		series.Points = []sampler.Point{}
	}
	return series, nil
}
