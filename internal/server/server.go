package server

import (
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ironsheep/equation-board/internal/api"
	"github.com/ironsheep/equation-board/internal/imaging"
	"github.com/ironsheep/equation-board/internal/pipeline"
	"github.com/ironsheep/equation-board/internal/voice"
)

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes = 10 << 20

// Server serves the equation board over HTTP.
type Server struct {
	backend pipeline.Backend
	logger  *slog.Logger

	version     string
	recognizer  string
	maxBody     int64
	staticDir   string
	interpreter *voice.Interpreter
	format      imaging.Format

	upgrader websocket.Upgrader

	// sessions tracks open websocket sessions so Close can wait for them.
	sessions sync.WaitGroup
	mu       sync.Mutex
	conns    map[*session]struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithVersion sets the version reported by the health endpoint.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithRecognizerName sets the recognizer name reported by the health endpoint.
func WithRecognizerName(name string) Option {
	return func(s *Server) { s.recognizer = name }
}

// WithMaxBodyBytes limits the size of request bodies and websocket frames.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// WithStaticDir serves the board client from dir. A directory that does not
// exist is ignored.
func WithStaticDir(dir string) Option {
	return func(s *Server) { s.staticDir = dir }
}

// WithInterpreter sets the voice command interpreter used by sessions.
func WithInterpreter(in *voice.Interpreter) Option {
	return func(s *Server) { s.interpreter = in }
}

// WithSnapshotFormat sets the encoding of session snapshots sent to the
// recognizer.
func WithSnapshotFormat(f imaging.Format) Option {
	return func(s *Server) { s.format = f }
}

// New creates a Server that runs the pipeline against backend.
func New(backend pipeline.Backend, opts ...Option) *Server {
	s := &Server{
		backend: backend,
		logger:  slog.Default(),
		version: "dev",
		maxBody: DefaultMaxBodyBytes,
		format:  imaging.JPEG,
		conns:   make(map[*session]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.interpreter == nil {
		s.interpreter = voice.New()
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}
	return s
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST "+api.PathSolve, endpoint(s, s.handleSolve))
	mux.HandleFunc("POST "+api.PathGraph, endpoint(s, s.handleGraph))
	mux.HandleFunc("POST "+api.PathExtract, endpoint(s, s.handleExtract))
	mux.HandleFunc("GET "+api.PathHealth, s.handleHealth)
	mux.HandleFunc("GET "+api.PathCatalog, s.handleCatalog)
	mux.HandleFunc("GET "+api.PathSession, s.handleSession)

	if s.staticDir != "" {
		if info, err := os.Stat(s.staticDir); err == nil && info.IsDir() {
			mux.Handle("GET /", http.FileServer(http.Dir(s.staticDir)))
		} else {
			s.logger.Warn("static directory not found, board client not served", "dir", s.staticDir)
		}
	}

	return s.recoverer(s.logRequests(mux))
}

// Close ends every open websocket session and waits for their in-flight
// work to finish. HTTP requests are drained by http.Server.Shutdown.
func (s *Server) Close() {
	s.mu.Lock()
	for sess := range s.conns {
		sess.close()
	}
	s.mu.Unlock()
	s.sessions.Wait()
}

func (s *Server) track(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[sess] = struct{}{}
	s.sessions.Add(1)
}

func (s *Server) untrack(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conns[sess]; ok {
		delete(s.conns, sess)
		s.sessions.Done()
	}
}
