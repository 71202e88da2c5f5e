package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ironsheep/equation-board/internal/api"
	"github.com/ironsheep/equation-board/internal/geometry"
	"github.com/ironsheep/equation-board/internal/pipeline"
	"github.com/ironsheep/equation-board/internal/sampler"
	"github.com/ironsheep/equation-board/internal/voice"
)

// writeWait bounds a single websocket write.
const writeWait = 10 * time.Second

// session is one connected whiteboard. It mirrors the client's board and
// acts as the orchestrator's Surface, ChartRenderer and Notifier, turning
// their calls into outbound frames.
type session struct {
	conn   *websocket.Conn
	logger *slog.Logger
	orch   *pipeline.Orchestrator

	ctx    context.Context
	cancel context.CancelFunc
	work   sync.WaitGroup

	writeMu sync.Mutex

	boardMu sync.Mutex
	objects []geometry.Object

	closeOnce sync.Once
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(s.maxBody)

	sess := &session{
		conn:   conn,
		logger: s.logger.With("session", conn.RemoteAddr().String()),
	}
	sess.ctx, sess.cancel = context.WithCancel(context.Background())
	sess.orch = pipeline.New(sess, sess, sess, s.backend,
		pipeline.WithInterpreter(s.interpreter),
		pipeline.WithSnapshotFormat(s.format),
		pipeline.WithLogger(sess.logger),
	)

	s.track(sess)
	defer s.untrack(sess)

	sess.logger.Info("session opened")
	sess.run()
	sess.logger.Info("session closed")
}

// run reads frames until the connection closes, then abandons in-flight
// work and waits for it.
func (sess *session) run() {
	defer sess.shutdown()

	sess.sendStatus()
	for {
		typ, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				sess.logger.Debug("websocket read failed", "error", err)
			}
			return
		}
		if typ != websocket.TextMessage {
			continue
		}

		var msg api.SessionMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sess.logger.Debug("malformed session message", "error", err)
			sess.Notify("Malformed message.")
			continue
		}
		sess.dispatch(msg)
	}
}

func (sess *session) dispatch(msg api.SessionMessage) {
	switch msg.Type {
	case api.MsgObjects:
		sess.replaceObjects(msg.Objects)
	case api.MsgDblClick:
		sess.orch.Placeholder(msg.X, msg.Y)
	case api.MsgClear:
		sess.orch.Clear()
		sess.sendStatus()
	case api.MsgVoiceStart:
		sess.orch.Abandon()
		sess.sendStatus()
	case api.MsgCapture:
		sess.async("capture", sess.orch.Capture)
	case api.MsgSolve:
		sess.async("solve", sess.orch.Solve)
	case api.MsgGraph:
		sess.async("graph", sess.orch.Graph)
	case api.MsgTranscript:
		transcript := msg.Transcript
		sess.async("transcript", func(ctx context.Context) error {
			_, err := sess.orch.HandleTranscript(ctx, transcript)
			return err
		})
	default:
		sess.logger.Debug("unknown session message", "type", msg.Type)
		sess.Notify(fmt.Sprintf("Unknown message type %q.", msg.Type))
	}
}

// async runs a pipeline step off the read loop so that a later clear or
// voice_start can supersede it.
func (sess *session) async(op string, fn func(context.Context) error) {
	sess.work.Add(1)
	go func() {
		defer sess.work.Done()
		err := fn(sess.ctx)
		switch {
		case err == nil:
		case errors.Is(err, pipeline.ErrStale), errors.Is(err, pipeline.ErrBusy):
			sess.logger.Debug("step skipped", "op", op, "error", err)
		case errors.Is(err, voice.ErrUnrecognizedCommand):
		default:
			sess.logger.Debug("step failed", "op", op, "error", err)
		}
		sess.sendStatus()
	}()
}

func (sess *session) shutdown() {
	sess.orch.Abandon()
	sess.cancel()
	sess.work.Wait()
	sess.close()
}

func (sess *session) close() {
	sess.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = sess.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_ = sess.conn.Close()
	})
}

func (sess *session) send(msg api.SessionMessage) {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()

	_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := sess.conn.WriteJSON(msg); err != nil {
		sess.logger.Debug("websocket write failed", "type", msg.Type, "error", err)
	}
}

func (sess *session) sendStatus() {
	msg := api.SessionMessage{
		Type:  api.MsgStatus,
		State: sess.orch.State().String(),
		Busy:  sess.orch.Busy(),
	}
	if d, ok := sess.orch.Descriptor(); ok {
		msg.Equation = d.Equation()
	}
	sess.send(msg)
}

func (sess *session) replaceObjects(objects []geometry.Object) {
	sess.boardMu.Lock()
	defer sess.boardMu.Unlock()
	sess.objects = append(sess.objects[:0:0], objects...)
}

// === pipeline.Surface ===

func (sess *session) Objects() []geometry.Object {
	sess.boardMu.Lock()
	defer sess.boardMu.Unlock()

	out := make([]geometry.Object, 0, len(sess.objects))
	for _, obj := range sess.objects {
		dup, err := obj.Clone()
		if err != nil {
			sess.logger.Warn("skipping object", "error", err)
			continue
		}
		out = append(out, dup)
	}
	return out
}

func (sess *session) Add(obj geometry.Object) {
	sess.boardMu.Lock()
	sess.objects = append(sess.objects, obj)
	sess.boardMu.Unlock()

	sess.send(api.SessionMessage{Type: api.MsgBoardAdd, Object: &obj})
}

func (sess *session) Clear() {
	sess.boardMu.Lock()
	sess.objects = nil
	sess.boardMu.Unlock()

	sess.send(api.SessionMessage{Type: api.MsgBoardClear})
}

func (sess *session) SetDrawingMode(on bool) {
	sess.send(api.SessionMessage{Type: api.MsgDrawingMode, On: &on})
}

// === pipeline.ChartRenderer ===

func (sess *session) Render(series sampler.Series) {
	sess.send(api.SessionMessage{Type: api.MsgChartRender, Series: &series, Label: series.Label()})
}

func (sess *session) Destroy() {
	sess.send(api.SessionMessage{Type: api.MsgChartDestroy})
}

// === pipeline.Notifier ===

func (sess *session) Notify(message string) {
	sess.send(api.SessionMessage{Type: api.MsgNotice, Message: message})
}
