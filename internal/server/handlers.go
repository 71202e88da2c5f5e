package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ironsheep/equation-board/internal/api"
	"github.com/ironsheep/equation-board/internal/imaging"
	"github.com/ironsheep/equation-board/internal/pipeline"
	"github.com/ironsheep/equation-board/internal/recognition"
	"github.com/ironsheep/equation-board/internal/sampler"
)

// Messages for requests that never reach a handler.
const (
	MsgBadRequest    = "Invalid request body."
	MsgTooLarge      = "Request body too large."
	MsgInternalError = "Internal server error."
)

// endpoint adapts a typed handler to http.HandlerFunc.
//
// The body is decoded into Req under the server's size limit. An oversized
// body is answered with 413 and an undecodable one with 400; both still carry
// the {"success":false,"message":...} envelope. Otherwise the handler's
// response is written with 200, whether it reports success or not.
func endpoint[Req, Resp any](s *Server, handle func(context.Context, Req) Resp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)

		var req Req
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				s.logger.Warn("request body too large", "path", r.URL.Path, "limit", tooLarge.Limit)
				writeJSON(w, http.StatusRequestEntityTooLarge, api.Fail(MsgTooLarge))
				return
			}
			s.logger.Debug("invalid request body", "path", r.URL.Path, "error", err)
			writeJSON(w, http.StatusBadRequest, api.Fail(MsgBadRequest))
			return
		}

		writeJSON(w, http.StatusOK, handle(r.Context(), req))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// backendMessage prefers the message reported by a remote back end.
func backendMessage(err error, fallback string) string {
	var remote *pipeline.RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	return fallback
}

// === Pipeline endpoints ===

func (s *Server) handleSolve(ctx context.Context, req api.SolveRequest) api.SolveResponse {
	if strings.TrimSpace(req.Equation) == "" {
		return api.SolveResponse{Status: api.Fail(pipeline.MsgInvalidEquation)}
	}

	v, err := s.backend.Solve(ctx, req.Equation, req.Scope)
	if err != nil {
		s.logger.Debug("solve failed", "equation", req.Equation, "error", err)
		return api.SolveResponse{Status: api.Fail(backendMessage(err, pipeline.MsgInvalidEquation))}
	}

	return api.SolveResponse{
		Status:   api.OK(),
		Result:   &v,
		Solution: pipeline.FormatResult(v),
	}
}

func (s *Server) handleGraph(ctx context.Context, req api.GraphRequest) api.GraphResponse {
	series, err := s.backend.Graph(ctx, req)
	if err != nil {
		s.logger.Debug("graph failed", "expression", req.Expression, "error", err)
		return api.GraphResponse{Status: api.Fail(backendMessage(err, pipeline.MsgInvalidParameters))}
	}

	points := series.Points
	if points == nil {
		points = []sampler.Point{}
	}
	return api.GraphResponse{
		Status:            api.OK(),
		Data:              points,
		Variable:          series.Variable,
		DependentVariable: series.DependentVariable,
	}
}

func (s *Server) handleExtract(ctx context.Context, req api.ExtractRequest) api.ExtractResponse {
	if strings.TrimSpace(req.Image) == "" {
		return api.ExtractResponse{Status: api.Fail(recognition.NoImageMessage)}
	}

	upload, err := imaging.DecodeDataURL(req.Image)
	if err != nil {
		s.logger.Debug("undecodable image", "error", err)
		return api.ExtractResponse{Status: api.Fail(recognition.GenericMessage)}
	}

	d, err := s.backend.Extract(ctx, recognition.Image{
		Data:     upload.Data,
		MimeType: upload.MimeType,
		Raster:   upload.Image,
	})
	if err == nil {
		err = pipeline.CheckDescriptor(d)
	}
	if err != nil {
		s.logger.Warn("extraction failed", "width", upload.Width, "height", upload.Height, "error", err)
		return api.ExtractResponse{Status: api.Fail(recognition.UserMessage(err))}
	}

	s.logger.Info("equation extracted", "equation", d.Equation())
	return api.NewExtractResponse(*d)
}

// === Service endpoints ===

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, api.HealthResponse{
		Status:     api.OK(),
		Version:    s.version,
		Recognizer: s.recognizer,
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Catalog{
		Status:    api.OK(),
		Endpoints: Endpoints(),
	})
}
