package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/promptflow/internal/surface"
)

// surfaceRequest is the incoming WebSocket message format.
type surfaceRequest struct {
	Surface string `json:"surface"` // "workflow" or "message"
	Action  string `json:"action"`  // "launch", "dismiss", "input", "submit" or "snapshot"
	Input   string `json:"input,omitempty"`
}

// surfaceEvent is the outgoing WebSocket message format.
type surfaceEvent struct {
	Type     string            `json:"type"` // "snapshot", "result" or "error"
	Surface  string            `json:"surface,omitempty"`
	Snapshot *surface.Snapshot `json:"snapshot,omitempty"`
	Result   interface{}       `json:"result,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// session is one connected client with its own pair of surfaces.
type session struct {
	s        *Server
	conn     *websocket.Conn
	writeMu  sync.Mutex
	workflow *surface.Workflow
	message  *surface.Message
}

func (s *Server) handleSurfaces(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	var wg sync.WaitGroup
	defer wg.Wait()

	// Requests in flight are abandoned when the client disconnects.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sess := &session{s: s, conn: conn}

	if s.deps.Workflow != nil {
		sess.workflow = surface.NewWorkflow(s.deps.Workflow, s.logger)
		sess.workflow.OnChange(sess.sendSnapshot)
		sess.sendSnapshot(sess.workflow.Snapshot())
	}
	if s.deps.Embedding != nil {
		sess.message = surface.NewMessage(s.deps.Embedding, s.logger)
		sess.message.OnChange(sess.sendSnapshot)
		sess.sendSnapshot(sess.message.Snapshot())
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read", "error", err)
			}
			return
		}

		var req surfaceRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			sess.sendError("", "invalid message format")
			continue
		}

		target := sess.lookup(req.Surface)
		if target == nil {
			sess.sendError(req.Surface, "unknown surface: "+req.Surface)
			continue
		}

		switch req.Action {
		case "launch":
			target.Launch()
		case "dismiss":
			target.Dismiss()
		case "input":
			if err := target.SetInput(req.Input); errors.Is(err, surface.ErrBusy) {
				sess.sendError(req.Surface, "input is disabled while a request is in progress")
			}
		case "snapshot":
			sess.sendSnapshot(target.Snapshot())
		case "submit":
			wg.Add(1)
			go func() {
				defer wg.Done()
				sess.submit(ctx, req.Surface, target)
			}()
		default:
			sess.sendError(req.Surface, "unknown action: "+req.Action)
		}
	}
}

func (sess *session) lookup(name string) surface.Surface {
	switch {
	case name == surface.NameWorkflow && sess.workflow != nil:
		return sess.workflow
	case name == surface.NameMessage && sess.message != nil:
		return sess.message
	}
	return nil
}

func (sess *session) submit(ctx context.Context, name string, target surface.Surface) {
	err := target.Submit(ctx)
	switch {
	case errors.Is(err, surface.ErrBusy):
		sess.sendError(name, "a request is already in progress")
	case errors.Is(err, surface.ErrClosed):
		sess.sendError(name, "surface is not open")
	case err != nil:
		// The surface snapshot already carries the inline message.
	default:
		sess.sendResult(name)
	}
}

func (sess *session) sendResult(name string) {
	var result interface{}
	switch name {
	case surface.NameWorkflow:
		out := sess.workflow.LastOutcome()
		if out == nil {
			return
		}
		result = out
	case surface.NameMessage:
		out := sess.message.LastResult()
		if out == nil {
			return
		}
		result = out
	}
	sess.send(surfaceEvent{Type: "result", Surface: name, Result: result})
}

func (sess *session) sendSnapshot(snap surface.Snapshot) {
	sess.send(surfaceEvent{Type: "snapshot", Surface: snap.Surface, Snapshot: &snap})
}

func (sess *session) sendError(name, message string) {
	sess.send(surfaceEvent{Type: "error", Surface: name, Error: message})
}

func (sess *session) send(ev surfaceEvent) {
	sess.writeMu.Lock()
	defer sess.writeMu.Unlock()
	if err := sess.conn.WriteJSON(ev); err != nil {
		sess.s.logger.Debug("websocket write", "error", err)
	}
}
