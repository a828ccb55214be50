// Package server is the HTTP control surface for the agent service. Auth is
// upstream: the gateway resolves the session and passes the tenant in
// X-Organization-ID, which this layer trusts.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gymleadhub/atlas-agent/internal/agent"
	"github.com/gymleadhub/atlas-agent/internal/core"
	"github.com/gymleadhub/atlas-agent/internal/scheduler"
	"github.com/gymleadhub/atlas-agent/internal/tools"
)

// Server holds the HTTP dependencies.
type Server struct {
	Orchestrator *agent.Orchestrator
	Runner       *scheduler.Runner
	Registry     *tools.Registry
	Logger       *slog.Logger

	httpServer *http.Server
}

// New creates a server.
func New(orch *agent.Orchestrator, runner *scheduler.Runner, registry *tools.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		Orchestrator: orch,
		Runner:       runner,
		Registry:     registry,
		Logger:       logger,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/ai-agents/conversations/message", s.handleMessage)
	mux.HandleFunc("POST /api/ai-agents/scheduler/check", s.handleSchedulerCheck)
	mux.HandleFunc("POST /api/ai-agents/scheduler/stop", s.handleSchedulerStop)
	mux.HandleFunc("GET /api/ai-agents/scheduler/status", s.handleSchedulerStatus)
	mux.HandleFunc("GET /api/ai-agents/tools", s.handleListTools)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// Start listens on addr until the context is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("http server listening", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

type messageRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	AgentID        string `json:"agent_id"`
	Message        string `json:"message"`
}

type messageResponse struct {
	ConversationID string     `json:"conversation_id"`
	Response       string     `json:"response"`
	ToolsUsed      []string   `json:"tools_used,omitempty"`
	Usage          core.Usage `json:"usage"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	orgID := r.Header.Get("X-Organization-ID")
	if orgID == "" {
		writeError(w, http.StatusUnauthorized, "missing organization")
		return
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.AgentID == "" {
		writeError(w, http.StatusBadRequest, "agent_id is required")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	result := s.Orchestrator.Execute(r.Context(), agent.ExecuteRequest{
		OrganizationID: orgID,
		AgentID:        req.AgentID,
		ConversationID: req.ConversationID,
		UserID:         r.Header.Get("X-User-ID"),
		Message:        req.Message,
	})
	if !result.Success {
		writeError(w, statusForTurnError(result.Error), result.Error)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{
		ConversationID: result.ConversationID,
		Response:       result.Response,
		ToolsUsed:      result.ToolsUsed,
		Usage:          result.Usage,
	})
}

// statusForTurnError maps orchestrator failures onto HTTP codes. The
// orchestrator returns errors as strings, so sentinel matching happens on the
// message.
func statusForTurnError(msg string) int {
	switch msg {
	case core.ErrAgentNotFound.Error(), core.ErrConversationNotFound.Error():
		return http.StatusNotFound
	case core.ErrAgentDisabled.Error():
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleSchedulerCheck(w http.ResponseWriter, r *http.Request) {
	n := s.Runner.CheckScheduledTasks(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"checked": n,
		"status":  s.Runner.Status(),
	})
}

func (s *Server) handleSchedulerStop(w http.ResponseWriter, r *http.Request) {
	s.Runner.Stop()
	writeJSON(w, http.StatusOK, map[string]any{"status": s.Runner.Status()})
}

func (s *Server) handleSchedulerStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Runner.Status())
}

type toolListing struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Parameters  any    `json:"parameters,omitempty"`
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	all := s.Registry.All()
	out := make([]toolListing, 0, len(all))
	for _, tool := range all {
		out = append(out, toolListing{
			Name:        tool.Name(),
			Description: tool.Description(),
			Category:    tool.Category(),
			Parameters:  tool.Parameters(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": out})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
