// Package server exposes the equation board over HTTP.
//
// # Endpoints
//
// Three JSON endpoints implement the pipeline's wire contracts:
//   - POST /solve: evaluate {equation, scope} to a number
//   - POST /graph: sample {expression, dependentVariable, scope, ranges}
//   - POST /extract-equation: recognize the equation in {image}
//
// Two more describe the server:
//   - GET /healthz: version and recognizer
//   - GET /api: the endpoint catalog with input schemas
//
// When a static directory is configured and exists, it is served at /.
//
// # Responses
//
// Every JSON response carries "success" and, on failure, a user-facing
// "message". Application failures (an expression that does not parse, an
// image that cannot be read) are answered with 200. An undecodable body is
// answered with 400 and an oversized one with 413, both in the same envelope.
// Panics are logged with their stack and answered with 500 and a generic
// message. Internal error text never reaches the client.
//
// # Sessions
//
// GET /ws upgrades to a websocket whiteboard session. Each connection gets
// its own pipeline.Orchestrator. The session mirrors the client's board,
// replaced wholesale by "objects" frames, and turns the orchestrator's
// surface, chart and notifier calls into frames:
//
//	client → server: objects, transcript, voice_start, capture, solve, graph, clear, dblclick
//	server → client: board.add, board.clear, drawing_mode, chart.destroy, chart.render, notice, status
//
// capture, solve, graph and transcript run off the read loop, so a clear or
// voice_start received meanwhile supersedes them. A "status" frame follows
// every step.
//
// # Usage
//
//	backend := pipeline.NewLocal(recognizer, 100, sampler.DefaultRange)
//	srv := server.New(backend, server.WithStaticDir("public"))
//	http.ListenAndServe(":3000", srv.Handler())
package server
