package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/promptflow/internal/pipeline"
	"github.com/ziadkadry99/promptflow/internal/tools"
	"github.com/ziadkadry99/promptflow/internal/workflow"
)

func (s *Server) registerRoutes(r chi.Router) {
	r.Post("/api/workflows/generate", s.handleGenerate)
	r.Get("/api/workflows/current", s.handleCurrent)
	r.Post("/api/embeddings", s.handleEmbeddings)
	r.Get("/api/tools/embeddings", s.handleDescriptor)
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Outcome *pipeline.WorkflowOutcome `json:"outcome"`
	Graph   *workflow.Graph           `json:"graph,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.deps.Workflow == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "workflow generation not configured"})
		return
	}
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	out, err := s.deps.Workflow.Run(r.Context(), req.Prompt)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := generateResponse{Outcome: out}
	if s.deps.Graph != nil {
		g := s.deps.Graph.Graph()
		resp.Graph = &g
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	if s.deps.Graph == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "workflow store not configured"})
		return
	}
	g := s.deps.Graph.Graph()
	if r.URL.Query().Get("format") == "mermaid" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(workflow.Mermaid(g)))
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleEmbeddings(w http.ResponseWriter, r *http.Request) {
	if s.deps.Embedding == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "embeddings not configured"})
		return
	}
	var params map[string]string
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	out, err := s.deps.Embedding.Run(r.Context(), params)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDescriptor(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tools.OpenAIEmbeddings)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := pipeline.ErrorKind(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError && !errors.Is(err, pipeline.ErrMissingCredential) {
		s.logger.Error("request failed", "error", err, "kind", kind)
	}
	writeJSON(w, status, errorResponse{Error: pipeline.UserMessage(err), Kind: kind})
}

func statusFor(kind string) int {
	switch kind {
	case pipeline.KindEmptyPrompt, pipeline.KindInvalidParam:
		return http.StatusBadRequest
	case pipeline.KindMissingCredential:
		return http.StatusServiceUnavailable
	case pipeline.KindProvider, pipeline.KindParse:
		return http.StatusBadGateway
	case pipeline.KindCanceled:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
