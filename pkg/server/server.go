package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"nftdash/pkg/dashboard"
	"nftdash/pkg/models"
	"nftdash/pkg/observability"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Server struct {
	ctrl    *dashboard.Controller
	metrics *observability.Metrics
	logger  *zap.Logger
	clients map[*websocket.Conn]bool
	mu      sync.Mutex
	mux     *http.ServeMux
}

func NewServer(ctrl *dashboard.Controller, metrics *observability.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		ctrl:    ctrl,
		metrics: metrics,
		logger:  logger.Named("server"),
		clients: make(map[*websocket.Conn]bool),
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/state", s.handleState)
	s.mux.HandleFunc("/api/activate", s.handleActivate)
	s.mux.HandleFunc("/api/interval", s.handleInterval)
	s.mux.HandleFunc("/api/marketplace/metric", s.handleMetric)
	s.mux.HandleFunc("/api/token", s.handleToken)
	s.mux.HandleFunc("/api/owned", s.handleOwned)
	s.mux.HandleFunc("/ws", s.handleWS)
	s.mux.Handle("/metrics", s.metrics.Handler())
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context, port int) error {
	s.listenToController(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("API server listening", zap.Int("port", port))
	fmt.Printf("API Server listening on :%d\n", port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type stateResponse struct {
	Active dashboard.ViewID      `json:"active"`
	Views  []dashboard.ViewState `json:"views"`
}

type errorResponse struct {
	Error string               `json:"error"`
	State *dashboard.ViewState `json:"state,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error, state *dashboard.ViewState) {
	status := http.StatusInternalServerError
	msg := err.Error()

	var vErr *dashboard.ValidationError
	switch {
	case errors.As(err, &vErr):
		status = http.StatusBadRequest
		msg = vErr.Message
	case errors.Is(err, dashboard.ErrUnknownView),
		errors.Is(err, dashboard.ErrInvalidInterval),
		errors.Is(err, dashboard.ErrUnknownMetric):
		status = http.StatusBadRequest
	case errors.Is(err, dashboard.ErrCacheUninitialized):
		status = http.StatusConflict
	}
	writeJSON(w, status, errorResponse{Error: msg, State: state})
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return false
	}
	return true
}

func (s *Server) snapshot() stateResponse {
	return stateResponse{Active: s.ctrl.Active(), Views: s.ctrl.Snapshots()}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	view, err := dashboard.ParseView(r.URL.Query().Get("view"))
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	st, err := s.ctrl.Activate(r.Context(), view)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleInterval(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	q := r.URL.Query()
	view, err := dashboard.ParseView(q.Get("view"))
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	interval, err := models.ParseInterval(q.Get("interval"))
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", dashboard.ErrInvalidInterval, err), nil)
		return
	}
	st, err := s.ctrl.SetInterval(r.Context(), view, interval)
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleMetric(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	metric, err := dashboard.ParseMetric(r.URL.Query().Get("metric"))
	if err != nil {
		s.writeError(w, err, nil)
		return
	}
	st, err := s.ctrl.ToggleMarketplace(metric)
	if err != nil {
		s.writeError(w, err, &st)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	st, err := s.ctrl.LookupToken(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		s.writeError(w, err, &st)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleOwned(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	panel, err := s.ctrl.LookupOwned(r.Context(), r.URL.Query().Get("address"))
	if err != nil {
		var vErr *dashboard.ValidationError
		if errors.As(err, &vErr) {
			writeJSON(w, http.StatusBadRequest, panel)
			return
		}
		s.writeError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, panel)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	// Send initial state before registering so it is always the first message.
	s.mu.Lock()
	err = conn.WriteJSON(map[string]interface{}{
		"type": "initial",
		"data": s.snapshot(),
	})
	if err == nil {
		s.clients[conn] = true
	}
	s.mu.Unlock()
	if err != nil {
		return
	}

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// listenToController subscribes immediately and forwards events to every
// websocket client until ctx is cancelled.
func (s *Server) listenToController(ctx context.Context) {
	sub := s.ctrl.Subscribe()
	go s.forward(ctx, sub)
}

func (s *Server) forward(ctx context.Context, sub dashboard.Subscriber) {
	defer s.ctrl.Unsubscribe(sub)

	for {
		select {
		case event, ok := <-sub:
			if !ok {
				return
			}
			s.broadcast(event)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) broadcast(event dashboard.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for client := range s.clients {
		if err := client.WriteJSON(event); err != nil {
			_ = client.Close()
			delete(s.clients, client)
		}
	}
}
