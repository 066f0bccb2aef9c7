package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/idlease/idleased/pkg/server/leasepool"
)

// LeaseResponse is the success payload for /next and /heartbeat/{id}.
type LeaseResponse struct {
	ID  int   `json:"id"`
	Exp int64 `json:"exp"`
}

// ErrorDetail carries the fixed allocator error code and message.
type ErrorDetail struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// ErrorResponse is the failure payload. Allocator failures are returned with
// HTTP 200, same as successes; callers distinguish the two by payload shape.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// StatusResponse reports pool bounds and live occupancy.
type StatusResponse struct {
	IDMin     int    `json:"id_min"`
	IDMax     int    `json:"id_max"`
	TimeoutMs int64  `json:"timeout_ms"`
	Available int    `json:"available"`
	Leased    int    `json:"leased"`
	Reclaimed uint64 `json:"reclaimed"`
}

// Server is the HTTP layer over one Allocator.
type Server struct {
	allocator *leasepool.Allocator
	registry  *prometheus.Registry
	metrics   *metrics
}

func New(allocator *leasepool.Allocator) *Server {
	s := &Server{
		allocator: allocator,
		registry:  prometheus.NewRegistry(),
	}
	s.metrics = newMetrics(s.registry, allocator)
	return s
}

// Router builds the route table. The heartbeat id segment is constrained to
// digits; anything else is not a route.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogger)
	r.HandleFunc("/next", s.getNext).Methods("GET")
	r.HandleFunc("/heartbeat/{id:[0-9]+}", s.getHeartbeat).Methods("GET")
	r.HandleFunc("/status", s.getStatus).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods("GET")
	return r
}

func sendJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

// sendAllocatorError sends the coded error payload. The transport status
// stays 200: allocator failures are expected outcomes, not HTTP errors.
func sendAllocatorError(w http.ResponseWriter, allocErr *leasepool.Error) {
	sendJSON(w, ErrorResponse{
		Error: ErrorDetail{
			Code: allocErr.Code,
			Msg:  allocErr.Msg,
		},
	})
}

func (s *Server) getNext(w http.ResponseWriter, r *http.Request) {
	logger := log.WithField("api", "next")

	lease, err := s.allocator.AcquireNext()
	if err != nil {
		var allocErr *leasepool.Error
		if !errors.As(err, &allocErr) {
			logger.WithError(err).Error("Failed to acquire id")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		s.metrics.acquireFailures.Inc()
		logger.Info("Pool exhausted")
		sendAllocatorError(w, allocErr)
		return
	}

	s.metrics.acquires.Inc()
	logger.WithFields(log.Fields{
		"id":  lease.ID,
		"exp": lease.Exp,
	}).Debug("Issued lease")
	sendJSON(w, LeaseResponse{ID: lease.ID, Exp: lease.Exp})
}

func (s *Server) getHeartbeat(w http.ResponseWriter, r *http.Request) {
	logger := log.WithField("api", "heartbeat")
	vars := mux.Vars(r)

	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		logger.WithError(err).Error("Invalid id")
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	lease, err := s.allocator.Heartbeat(id)
	if err != nil {
		var allocErr *leasepool.Error
		if !errors.As(err, &allocErr) {
			logger.WithField("id", id).WithError(err).Error("Failed to renew lease")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		switch allocErr {
		case leasepool.ErrIDExpired:
			s.metrics.heartbeats.WithLabelValues("expired").Inc()
			// The holder kept using this id past its expiry; it may have
			// been shared with a new holder in the meantime.
			logger.WithField("id", id).Warn("Heartbeat on expired lease, id reclaimed")
		default:
			s.metrics.heartbeats.WithLabelValues("nonexistent").Inc()
			logger.WithField("id", id).Info("Heartbeat on unknown id")
		}
		sendAllocatorError(w, allocErr)
		return
	}

	s.metrics.heartbeats.WithLabelValues("ok").Inc()
	logger.WithFields(log.Fields{
		"id":  lease.ID,
		"exp": lease.Exp,
	}).Debug("Renewed lease")
	sendJSON(w, LeaseResponse{ID: lease.ID, Exp: lease.Exp})
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.allocator.Stats()
	sendJSON(w, StatusResponse{
		IDMin:     stats.Min,
		IDMax:     stats.Max,
		TimeoutMs: stats.TimeoutMs,
		Available: stats.Available,
		Leased:    stats.Leased,
		Reclaimed: stats.Reclaimed,
	})
}
