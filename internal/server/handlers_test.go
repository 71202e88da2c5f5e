package server

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/ironsheep/equation-board/internal/api"
	"github.com/ironsheep/equation-board/internal/imaging"
	"github.com/ironsheep/equation-board/internal/pipeline"
	"github.com/ironsheep/equation-board/internal/recognition"
	"github.com/ironsheep/equation-board/internal/sampler"
)

// pngDataURL encodes a solid test image as a PNG data URL.
func pngDataURL(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return imaging.EncodeDataURL("image/png", buf.Bytes())
}

func TestHandleSolve(t *testing.T) {
	srv := newTestServer(t, pipeline.NewLocal(nil, 0, sampler.DefaultRange))

	tests := []struct {
		name         string
		req          api.SolveRequest
		wantResult   float64
		wantSolution string
	}{
		{"assignment", api.SolveRequest{Equation: "y = 2 + 3"}, 5, "5"},
		{"bare expression", api.SolveRequest{Equation: "2 * (3 + 4)"}, 14, "14"},
		{"power", api.SolveRequest{Equation: "2^10"}, 1024, "1024"},
		{"with scope", api.SolveRequest{Equation: "y = x * 2", Scope: map[string]float64{"x": 4}}, 8, "8"},
		{"rounded display", api.SolveRequest{Equation: "0.1 + 0.2"}, 0.1 + 0.2, "0.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got api.SolveResponse
			if status := post(t, srv.URL+api.PathSolve, mustJSON(t, tt.req), &got); status != 200 {
				t.Fatalf("status: got %d, want 200", status)
			}
			if !got.Success {
				t.Fatalf("expected success, got message %q", got.Message)
			}
			if got.Result == nil || math.Abs(*got.Result-tt.wantResult) > 1e-12 {
				t.Errorf("result: got %v, want %v", got.Result, tt.wantResult)
			}
			if got.Solution != tt.wantSolution {
				t.Errorf("solution: got %q, want %q", got.Solution, tt.wantSolution)
			}
		})
	}
}

func TestHandleSolve_Failures(t *testing.T) {
	srv := newTestServer(t, pipeline.NewLocal(nil, 0, sampler.DefaultRange))

	tests := []struct {
		name     string
		equation string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"dangling operator", "2 +"},
		{"unknown variable", "y = x + 1"},
		{"division by zero", "1 / 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got api.SolveResponse
			if status := post(t, srv.URL+api.PathSolve, mustJSON(t, api.SolveRequest{Equation: tt.equation}), &got); status != 200 {
				t.Errorf("status: got %d, want 200", status)
			}
			if got.Success {
				t.Fatal("expected success=false")
			}
			if got.Message != pipeline.MsgInvalidEquation {
				t.Errorf("message: got %q, want %q", got.Message, pipeline.MsgInvalidEquation)
			}
			if got.Result != nil {
				t.Errorf("result: got %v, want none", *got.Result)
			}
		})
	}
}

func TestHandleGraph(t *testing.T) {
	srv := newTestServer(t, pipeline.NewLocal(nil, 100, sampler.DefaultRange))

	req := api.GraphRequest{
		Expression:        "(x-1)*(x-4)",
		DependentVariable: "y",
		Scope:             map[string]float64{"x": 0},
		Ranges:            map[string]sampler.Range{"x": {-10, 10}},
	}

	var got api.GraphResponse
	if status := post(t, srv.URL+api.PathGraph, mustJSON(t, req), &got); status != 200 {
		t.Fatalf("status: got %d, want 200", status)
	}
	if !got.Success {
		t.Fatalf("expected success, got message %q", got.Message)
	}
	if len(got.Data) != 101 {
		t.Fatalf("points: got %d, want 101", len(got.Data))
	}
	if got.Data[0].X != -10 || got.Data[100].X != 10 {
		t.Errorf("endpoints: got x=%v..%v, want -10..10", got.Data[0].X, got.Data[100].X)
	}
	if got.Data[0].Y != 154 {
		t.Errorf("y(-10): got %v, want 154", got.Data[0].Y)
	}
	for i := 1; i < len(got.Data); i++ {
		if got.Data[i].X <= got.Data[i-1].X {
			t.Fatalf("x not ascending at %d: %v <= %v", i, got.Data[i].X, got.Data[i-1].X)
		}
	}
	if got.Variable != "x" || got.DependentVariable != "y" {
		t.Errorf("variables: got %q/%q, want x/y", got.Variable, got.DependentVariable)
	}
}

func TestHandleGraph_UndefinedPointsDropped(t *testing.T) {
	srv := newTestServer(t, pipeline.NewLocal(nil, 100, sampler.DefaultRange))

	var got api.GraphResponse
	post(t, srv.URL+api.PathGraph, `{"expression": "1/x", "scope": {"x": 0}}`, &got)
	if !got.Success {
		t.Fatalf("expected success, got message %q", got.Message)
	}
	if len(got.Data) != 100 {
		t.Errorf("points: got %d, want 100 (x=0 dropped)", len(got.Data))
	}

	got = api.GraphResponse{}
	post(t, srv.URL+api.PathGraph, `{"expression": "sqrt(x)", "scope": {"x": 0}, "ranges": {"x": [-10, -1]}}`, &got)
	if !got.Success {
		t.Fatalf("expected success for an all-undefined series, got message %q", got.Message)
	}
	if got.Data == nil || len(got.Data) != 0 {
		t.Errorf("data: got %v, want empty array", got.Data)
	}
}

func TestHandleGraph_Failures(t *testing.T) {
	srv := newTestServer(t, pipeline.NewLocal(nil, 100, sampler.DefaultRange))

	tests := []struct {
		name string
		body string
	}{
		{"no expression", `{"scope": {"x": 0}}`},
		{"does not parse", `{"expression": "x +", "scope": {"x": 0}}`},
		{"two variables", `{"expression": "a*b", "scope": {"a": 1, "b": 2}}`},
		{"inverted range", `{"expression": "x", "scope": {"x": 0}, "ranges": {"x": [5, -5]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got api.GraphResponse
			post(t, srv.URL+api.PathGraph, tt.body, &got)
			if got.Success {
				t.Fatal("expected success=false")
			}
			if got.Message != pipeline.MsgInvalidParameters {
				t.Errorf("message: got %q, want %q", got.Message, pipeline.MsgInvalidParameters)
			}
		})
	}
}

func TestHandleExtract(t *testing.T) {
	var received recognition.Image
	recognizer := recognition.RecognizerFunc(func(_ context.Context, img recognition.Image) (*sampler.Descriptor, error) {
		received = img
		return &sampler.Descriptor{
			Expression:        "x^2",
			DependentVariable: "y",
			Scope:             map[string]float64{"x": 0},
			Ranges:            map[string]sampler.Range{"x": {-5, 5}},
		}, nil
	})
	srv := newTestServer(t, pipeline.NewLocal(recognizer, 0, sampler.DefaultRange))

	var got api.ExtractResponse
	post(t, srv.URL+api.PathExtract, mustJSON(t, api.ExtractRequest{Image: pngDataURL(t, 40, 20, color.White)}), &got)
	if !got.Success {
		t.Fatalf("expected success, got message %q", got.Message)
	}
	if got.Expression != "x^2" || got.DependentVariable != "y" {
		t.Errorf("descriptor: got %q/%q", got.Expression, got.DependentVariable)
	}
	if got.Equation != "y = x^2" {
		t.Errorf("equation: got %q, want %q", got.Equation, "y = x^2")
	}
	if r := got.Ranges["x"]; r != (sampler.Range{-5, 5}) {
		t.Errorf("range: got %v, want [-5 5]", r)
	}

	if received.MimeType != "image/png" {
		t.Errorf("MimeType: got %q, want image/png", received.MimeType)
	}
	if received.Raster == nil || received.Raster.Bounds().Dx() != 40 {
		t.Errorf("raster not decoded: %v", received.Raster)
	}
}

func TestHandleExtract_Failures(t *testing.T) {
	recognizer := recognition.RecognizerFunc(func(_ context.Context, img recognition.Image) (*sampler.Descriptor, error) {
		switch img.Raster.Bounds().Dx() {
		case 13:
			return nil, recognition.Fail("Unable to read the equation.", errors.New("model said no"))
		case 14:
			return nil, nil
		case 15:
			return &sampler.Descriptor{Expression: "2x + 1", Scope: map[string]float64{"x": 0}}, nil
		}
		return nil, recognition.Fail("", errors.New("upstream 500: secret details"))
	})
	srv := newTestServer(t, pipeline.NewLocal(recognizer, 0, sampler.DefaultRange))

	tests := []struct {
		name        string
		image       string
		wantMessage string
	}{
		{"missing image", "", recognition.NoImageMessage},
		{"not base64", "data:image/png;base64,!!!", recognition.GenericMessage},
		{"not an image", "data:text/plain;base64,aGVsbG8gd29ybGQ=", recognition.GenericMessage},
		{"recognizer message", pngDataURL(t, 13, 13, color.White), "Unable to read the equation."},
		{"internal error hidden", pngDataURL(t, 20, 20, color.White), recognition.GenericMessage},
		{"no descriptor", pngDataURL(t, 14, 14, color.White), recognition.GenericMessage},
		{"expression does not compile", pngDataURL(t, 15, 15, color.White), pipeline.MsgInvalidEquation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got api.ExtractResponse
			if status := post(t, srv.URL+api.PathExtract, mustJSON(t, api.ExtractRequest{Image: tt.image}), &got); status != 200 {
				t.Errorf("status: got %d, want 200", status)
			}
			if got.Success {
				t.Fatal("expected success=false")
			}
			if got.Message != tt.wantMessage {
				t.Errorf("message: got %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestHandleExtract_RemoteBackend(t *testing.T) {
	upstream := newTestServer(t, pipeline.NewLocal(recognition.RecognizerFunc(
		func(context.Context, recognition.Image) (*sampler.Descriptor, error) {
			return &sampler.Descriptor{Expression: "2*x", Scope: map[string]float64{"x": 0}}, nil
		}), 0, sampler.DefaultRange))
	proxy := newTestServer(t, pipeline.NewRemote(upstream.URL, nil))

	var got api.ExtractResponse
	post(t, proxy.URL+api.PathExtract, mustJSON(t, api.ExtractRequest{Image: pngDataURL(t, 8, 8, color.Black)}), &got)
	if !got.Success || got.Expression != "2*x" {
		t.Errorf("got %+v, want the upstream descriptor", got)
	}

	var solved api.SolveResponse
	post(t, proxy.URL+api.PathSolve, `{"equation": "2 +"}`, &solved)
	if solved.Success || solved.Message != pipeline.MsgInvalidEquation {
		t.Errorf("got %+v, want the upstream failure message", solved)
	}
}
