// Package server exposes the GitHub webhook endpoint and a read-only workflow status API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ShayCichocki/devteam/internal/github"
	"github.com/ShayCichocki/devteam/internal/orchestrator"
	"github.com/ShayCichocki/devteam/pkg/models"
)

// EventHandler runs the workflow for a webhook event.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev *models.GitHubEvent) error
}

// Workflows lists tracked workflows.
type Workflows interface {
	List() []orchestrator.Snapshot
	Get(id string) (*orchestrator.WorkflowState, bool)
}

// Config for the HTTP server.
type Config struct {
	Handler   EventHandler
	Workflows Workflows
	// WebhookSecret verifies X-Hub-Signature-256. Empty disables the check.
	WebhookSecret string
	// Events, when set, are drained and logged until the channel closes.
	Events <-chan orchestrator.WorkflowEvent
}

// Server serves webhooks and status. Webhook events are dispatched in the background.
type Server struct {
	cfg    Config
	router chi.Router
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds the server routes.
func New(cfg Config) (*Server, error) {
	if cfg.Handler == nil {
		return nil, errors.New("server: nil event handler")
	}
	if cfg.Workflows == nil {
		return nil, errors.New("server: nil workflow source")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:    cfg,
		router: chi.NewRouter(),
		ctx:    ctx,
		cancel: cancel,
	}

	s.router.Use(middleware.Recoverer)
	s.router.Post("/webhook", s.handleWebhook)

	hcfg := huma.DefaultConfig("AI Dev Team API", "1.0.0")
	hcfg.OpenAPIPath = "/openapi"
	hcfg.DocsPath = ""
	// Plain bodies: no $schema links.
	hcfg.CreateHooks = nil
	hcfg.Transformers = nil
	api := humachi.New(s.router, hcfg)
	registerHealth(api)
	registerWorkflows(api, cfg.Workflows)

	if cfg.Events != nil {
		go s.drain(cfg.Events)
	}
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Wait blocks until every dispatched webhook has been handled.
func (s *Server) Wait() {
	s.wg.Wait()
}

// Shutdown cancels in-flight dispatches and waits for them to return.
func (s *Server) Shutdown() {
	s.cancel()
	s.wg.Wait()
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		s.Shutdown()
	}()

	log.Printf("[server] listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type webhookReply struct {
	Status string `json:"status"`
	Event  string `json:"event,omitempty"`
	Action string `json:"action,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ev, err := github.ParseWebhook(r, s.cfg.WebhookSecret)
	if err != nil {
		log.Printf("[server] rejected webhook: %v", err)
		writeJSON(w, http.StatusBadRequest, webhookReply{Status: "rejected", Error: err.Error()})
		return
	}

	status := "ignored"
	if orchestrator.Handles(ev.Type, ev.Action) {
		status = "accepted"
		s.dispatch(ev)
	}
	writeJSON(w, http.StatusAccepted, webhookReply{Status: status, Event: ev.Type, Action: ev.Action})
}

// dispatch handles ev on a context detached from the request.
func (s *Server) dispatch(ev *models.GitHubEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.cfg.Handler.HandleEvent(s.ctx, ev); err != nil {
			log.Printf("[server] %s/%s failed: %v", ev.Type, ev.Action, err)
		}
	}()
}

func (s *Server) drain(events <-chan orchestrator.WorkflowEvent) {
	for ev := range events {
		log.Printf("[events] %s", ev)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[server] write response: %v", err)
	}
}

type healthBody struct {
	Status string `json:"status" example:"healthy"`
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct{ Body healthBody }, error) {
		return &struct{ Body healthBody }{Body: healthBody{Status: "healthy"}}, nil
	})
}

type workflowList struct {
	Workflows []orchestrator.Snapshot `json:"workflows"`
}

func registerWorkflows(api huma.API, workflows Workflows) {
	huma.Register(api, huma.Operation{
		OperationID: "list-workflows",
		Method:      http.MethodGet,
		Path:        "/api/workflows",
		Summary:     "List tracked workflows",
	}, func(ctx context.Context, _ *struct{}) (*struct{ Body workflowList }, error) {
		list := workflows.List()
		if list == nil {
			list = []orchestrator.Snapshot{}
		}
		return &struct{ Body workflowList }{Body: workflowList{Workflows: list}}, nil
	})

	type workflowPath struct {
		ID string `path:"id" doc:"Work item id"`
	}
	huma.Register(api, huma.Operation{
		OperationID: "get-workflow",
		Method:      http.MethodGet,
		Path:        "/api/workflows/{id}",
		Summary:     "Get one workflow",
	}, func(ctx context.Context, input *workflowPath) (*struct{ Body orchestrator.Snapshot }, error) {
		st, ok := workflows.Get(input.ID)
		if !ok {
			return nil, huma.Error404NotFound(fmt.Sprintf("workflow %s not found", input.ID))
		}
		return &struct{ Body orchestrator.Snapshot }{Body: st.Snapshot()}, nil
	})
}
