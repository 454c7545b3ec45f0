package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/dispatch/internal/hub"
	"gitlab.ozon.dev/pupkingeorgij/dispatch/internal/order"
)

// OrderLister is the read-only view the plain endpoints need.
type OrderLister interface {
	List() []order.Order
}

type Server struct {
	orders  OrderLister
	handler hub.EventHandler
	logger  *zap.Logger
	server  *http.Server
}

func New(orders OrderLister, handler hub.EventHandler, logger *zap.Logger) *Server {
	return &Server{
		orders:  orders,
		handler: handler,
		logger:  logger,
	}
}

func (s *Server) Run(port int) error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
		// No ReadTimeout/WriteTimeout: they would cut long-lived websocket
		// connections. Only the handshake is bounded.
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("server starting", zap.Int("port", port))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) setupRoutes() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	router.HandleFunc("/orders", s.handleListOrders).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)

	return router
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"service": "dispatch-relay",
		"events":  "/ws",
		"orders":  "/orders",
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListOrders(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.orders.List())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	hub.ServeWS(s.handler, s.logger, w, r)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}
