package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/promptflow/internal/builder"
	"github.com/ziadkadry99/promptflow/internal/db"
	"github.com/ziadkadry99/promptflow/internal/history"
	"github.com/ziadkadry99/promptflow/internal/pipeline"
	"github.com/ziadkadry99/promptflow/internal/prompt"
	"github.com/ziadkadry99/promptflow/internal/surface"
	"github.com/ziadkadry99/promptflow/internal/tools"
	"github.com/ziadkadry99/promptflow/internal/workflow"
)

type fakeWorkflow struct {
	store *workflow.MemoryStore
	err   error
}

func (f *fakeWorkflow) Run(ctx context.Context, p string) (*pipeline.WorkflowOutcome, error) {
	if f.err != nil {
		return nil, f.err
	}
	if strings.TrimSpace(p) == "" {
		return nil, prompt.ErrEmptyPrompt
	}
	if err := f.store.AddBlock(ctx, "b1", "gmail", p, workflow.Position{X: 800, Y: 300}); err != nil {
		return nil, err
	}
	return &pipeline.WorkflowOutcome{Result: &builder.Result{BlockIDs: []string{"b1"}}, Model: "gpt-3.5-turbo"}, nil
}

type fakeEmbedding struct {
	err error
}

func (f *fakeEmbedding) Embed(ctx context.Context, text string) (*tools.EmbeddingsOutput, error) {
	return f.Run(ctx, map[string]string{tools.ParamInput: text})
}

func (f *fakeEmbedding) Run(_ context.Context, params map[string]string) (*tools.EmbeddingsOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	if params[tools.ParamInput] == "" {
		return nil, &tools.ParamError{Key: tools.ParamInput, Reason: "is required"}
	}
	return &tools.EmbeddingsOutput{Embeddings: [][]float32{{0.5, 0.25}}, Model: "text-embedding-3-small"}, nil
}

func setupServer(t *testing.T, wf *fakeWorkflow, emb *fakeEmbedding) *Server {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return New(Config{Port: 0}, Deps{
		Workflow:  wf,
		Graph:     wf.store,
		Embedding: emb,
		History:   history.NewStore(database),
	})
}

func newFakeWorkflow() *fakeWorkflow {
	return &fakeWorkflow{store: workflow.NewMemoryStore()}
}

func TestHealthCheck(t *testing.T) {
	srv := setupServer(t, newFakeWorkflow(), &fakeEmbedding{})

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := New(Config{Port: 0, AllowedOrigins: []string{"*"}}, Deps{})

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestCORSRejectsForeignOrigin(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		allowed bool
	}{
		{"localhost default", nil, "http://localhost:5173", true},
		{"loopback default", nil, "http://127.0.0.1:3000", true},
		{"foreign default", nil, "https://evil.example", false},
		{"configured", []string{"https://app.example.com"}, "https://app.example.com", true},
		{"configured wildcard", []string{"https://*.example.com"}, "https://ui.example.com", true},
		{"not configured", []string{"https://app.example.com"}, "http://localhost:5173", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(Config{AllowedOrigins: tt.origins}, Deps{})

			req := httptest.NewRequest("OPTIONS", "/api/workflows/generate", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", "POST")
			w := httptest.NewRecorder()
			srv.Router().ServeHTTP(w, req)

			acao := w.Header().Get("Access-Control-Allow-Origin")
			if tt.allowed && acao != tt.origin {
				t.Errorf("Allow-Origin = %q, want %q", acao, tt.origin)
			}
			if !tt.allowed && acao != "" {
				t.Errorf("Allow-Origin = %q, want none", acao)
			}
			if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
				t.Errorf("Allow-Credentials = %q, want none", got)
			}
		})
	}
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	srv := setupServer(t, newFakeWorkflow(), &fakeEmbedding{})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/surfaces"

	header := http.Header{"Origin": []string{"https://evil.example"}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err == nil {
		conn.Close()
		t.Fatal("expected foreign origin to be rejected")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %v", resp)
	}

	header = http.Header{"Origin": []string{"http://localhost:5173"}}
	conn, _, err = websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("localhost origin: %v", err)
	}
	conn.Close()
}

func TestGenerateEndpoint(t *testing.T) {
	wf := newFakeWorkflow()
	srv := setupServer(t, wf, &fakeEmbedding{})

	body := bytes.NewBufferString(`{"prompt":"Fetch Mail"}`)
	req := httptest.NewRequest("POST", "/api/workflows/generate", body)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp generateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Outcome == nil || len(resp.Outcome.Result.BlockIDs) != 1 {
		t.Errorf("unexpected outcome: %+v", resp.Outcome)
	}
	if resp.Graph == nil || len(resp.Graph.Blocks) != 1 {
		t.Errorf("expected graph with one block, got %+v", resp.Graph)
	}
}

func TestGenerateEndpointErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		body       string
		wantStatus int
		wantKind   string
	}{
		{"bad body", nil, "{", http.StatusBadRequest, ""},
		{"empty prompt", nil, `{"prompt":"  "}`, http.StatusBadRequest, pipeline.KindEmptyPrompt},
		{"missing credential", pipeline.ErrMissingCredential, `{"prompt":"x"}`, http.StatusServiceUnavailable, pipeline.KindMissingCredential},
		{"parse", &builder.ParseError{Err: errors.New("bad")}, `{"prompt":"x"}`, http.StatusBadGateway, pipeline.KindParse},
		{"provider", &prompt.ProviderError{Provider: "openai", Err: errors.New("down")}, `{"prompt":"x"}`, http.StatusBadGateway, pipeline.KindProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wf := newFakeWorkflow()
			wf.err = tt.err
			srv := setupServer(t, wf, &fakeEmbedding{})

			req := httptest.NewRequest("POST", "/api/workflows/generate", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			srv.Router().ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			var resp errorResponse
			json.Unmarshal(w.Body.Bytes(), &resp)
			if resp.Kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", resp.Kind, tt.wantKind)
			}
			if resp.Error == "" {
				t.Error("expected an error message")
			}
		})
	}
}

func TestCurrentWorkflowEndpoint(t *testing.T) {
	wf := newFakeWorkflow()
	if err := wf.store.AddBlock(context.Background(), "a", "gmail", "Fetch Mail", workflow.Position{}); err != nil {
		t.Fatal(err)
	}
	srv := setupServer(t, wf, &fakeEmbedding{})

	req := httptest.NewRequest("GET", "/api/workflows/current", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var g workflow.Graph
	if err := json.Unmarshal(w.Body.Bytes(), &g); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(g.Blocks) != 1 || g.Blocks[0].Name != "Fetch Mail" {
		t.Errorf("unexpected graph: %+v", g)
	}

	req = httptest.NewRequest("GET", "/api/workflows/current?format=mermaid", nil)
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if !strings.HasPrefix(w.Body.String(), "graph LR") {
		t.Errorf("expected mermaid output, got %q", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("unexpected content type %q", ct)
	}
}

func TestEmbeddingsEndpoint(t *testing.T) {
	srv := setupServer(t, newFakeWorkflow(), &fakeEmbedding{})

	req := httptest.NewRequest("POST", "/api/embeddings", strings.NewReader(`{"input":"hello"}`))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var out tools.EmbeddingsOutput
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out.Embeddings) != 1 || out.Model != "text-embedding-3-small" {
		t.Errorf("unexpected output: %+v", out)
	}

	req = httptest.NewRequest("POST", "/api/embeddings", strings.NewReader(`{}`))
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing input, got %d", w.Code)
	}
}

func TestDescriptorEndpoint(t *testing.T) {
	srv := setupServer(t, newFakeWorkflow(), &fakeEmbedding{})

	req := httptest.NewRequest("GET", "/api/tools/embeddings", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	var d tools.Descriptor
	if err := json.Unmarshal(w.Body.Bytes(), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Type != "openai_embeddings" || len(d.Fields) != 3 {
		t.Errorf("unexpected descriptor: %+v", d)
	}
}

func TestHistoryRoutesMounted(t *testing.T) {
	srv := setupServer(t, newFakeWorkflow(), &fakeEmbedding{})

	req := httptest.NewRequest("GET", "/api/history", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestUnconfiguredPipelines(t *testing.T) {
	srv := New(Config{}, Deps{})
	for _, tc := range []struct{ method, path string }{
		{"POST", "/api/workflows/generate"},
		{"GET", "/api/workflows/current"},
		{"POST", "/api/embeddings"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(`{}`))
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s %s: expected 503, got %d", tc.method, tc.path, w.Code)
		}
	}
}

func dialSurfaces(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/surfaces"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("expected 101, got %d", resp.StatusCode)
	}
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) surfaceEvent {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ev surfaceEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read: %v", err)
	}
	return ev
}

func TestWebSocketInitialSnapshots(t *testing.T) {
	conn := dialSurfaces(t, setupServer(t, newFakeWorkflow(), &fakeEmbedding{}))

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		ev := readEvent(t, conn)
		if ev.Type != "snapshot" || ev.Snapshot.State != surface.StateClosed {
			t.Errorf("unexpected initial event: %+v", ev)
		}
		seen[ev.Surface] = true
	}
	if !seen[surface.NameWorkflow] || !seen[surface.NameMessage] {
		t.Errorf("expected both surfaces, got %v", seen)
	}
}

func TestWebSocketWorkflowSubmit(t *testing.T) {
	wf := newFakeWorkflow()
	conn := dialSurfaces(t, setupServer(t, wf, &fakeEmbedding{}))
	readEvent(t, conn)
	readEvent(t, conn)

	send := func(req surfaceRequest) {
		if err := conn.WriteJSON(req); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	send(surfaceRequest{Surface: "workflow", Action: "launch"})
	if ev := readEvent(t, conn); ev.Snapshot == nil || ev.Snapshot.State != surface.StateOpen {
		t.Fatalf("expected open snapshot, got %+v", ev)
	}

	send(surfaceRequest{Surface: "workflow", Action: "input", Input: "Fetch Mail"})
	if ev := readEvent(t, conn); ev.Snapshot == nil || ev.Snapshot.Input != "Fetch Mail" {
		t.Fatalf("expected input snapshot, got %+v", ev)
	}

	send(surfaceRequest{Surface: "workflow", Action: "submit"})
	if ev := readEvent(t, conn); ev.Snapshot == nil || !ev.Snapshot.Busy {
		t.Fatalf("expected busy snapshot, got %+v", ev)
	}
	if ev := readEvent(t, conn); ev.Snapshot == nil || ev.Snapshot.State != surface.StateClosed || ev.Snapshot.Input != "" {
		t.Fatalf("expected closed snapshot, got %+v", ev)
	}
	if ev := readEvent(t, conn); ev.Type != "result" || ev.Surface != "workflow" {
		t.Fatalf("expected result, got %+v", ev)
	}
	if n := len(wf.store.Graph().Blocks); n != 1 {
		t.Errorf("expected 1 block in store, got %d", n)
	}
}

func TestWebSocketMessageFailure(t *testing.T) {
	conn := dialSurfaces(t, setupServer(t, newFakeWorkflow(), &fakeEmbedding{err: pipeline.ErrMissingCredential}))
	readEvent(t, conn)
	readEvent(t, conn)

	conn.WriteJSON(surfaceRequest{Surface: "message", Action: "launch"})
	readEvent(t, conn)
	conn.WriteJSON(surfaceRequest{Surface: "message", Action: "input", Input: "hello"})
	readEvent(t, conn)
	conn.WriteJSON(surfaceRequest{Surface: "message", Action: "submit"})
	readEvent(t, conn) // busy

	ev := readEvent(t, conn)
	if ev.Snapshot == nil {
		t.Fatalf("expected snapshot, got %+v", ev)
	}
	s := ev.Snapshot
	if s.State != surface.StateOpen || s.Input != "" || s.Error != "OpenAI API key not found" {
		t.Errorf("unexpected failure snapshot: %+v", s)
	}
}

func TestWebSocketSubmitClosed(t *testing.T) {
	conn := dialSurfaces(t, setupServer(t, newFakeWorkflow(), &fakeEmbedding{}))
	readEvent(t, conn)
	readEvent(t, conn)

	conn.WriteJSON(surfaceRequest{Surface: "workflow", Action: "submit"})
	ev := readEvent(t, conn)
	if ev.Type != "error" || !strings.Contains(ev.Error, "not open") {
		t.Errorf("expected not-open error, got %+v", ev)
	}
}

func TestWebSocketInvalidRequests(t *testing.T) {
	conn := dialSurfaces(t, setupServer(t, newFakeWorkflow(), &fakeEmbedding{}))
	readEvent(t, conn)
	readEvent(t, conn)

	conn.WriteMessage(websocket.TextMessage, []byte("not json"))
	if ev := readEvent(t, conn); ev.Type != "error" || ev.Error != "invalid message format" {
		t.Errorf("unexpected event: %+v", ev)
	}

	conn.WriteJSON(surfaceRequest{Surface: "canvas", Action: "launch"})
	if ev := readEvent(t, conn); ev.Type != "error" || !strings.Contains(ev.Error, "unknown surface") {
		t.Errorf("unexpected event: %+v", ev)
	}

	conn.WriteJSON(surfaceRequest{Surface: "workflow", Action: "explode"})
	if ev := readEvent(t, conn); ev.Type != "error" || !strings.Contains(ev.Error, "unknown action") {
		t.Errorf("unexpected event: %+v", ev)
	}
}
