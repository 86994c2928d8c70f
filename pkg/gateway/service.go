package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"avicbot/pkg/bus"
	"avicbot/pkg/channel"
	"avicbot/pkg/config"
	"avicbot/pkg/metrics"
)

const (
	defaultStatusHost = "127.0.0.1"
	defaultStatusPort = 18790
)

// Dispatcher maps one inbound message to at most one reply.
type Dispatcher interface {
	Dispatch(bus.InboundMessage) (bus.OutboundMessage, bool)
}

// connectionReporter is implemented by adapters that know whether their
// transport is currently up.
type connectionReporter interface {
	Connected() bool
}

// Service glues one chat adapter to the responder and serves the optional
// status endpoints beside it.
type Service struct {
	cfg        *config.Config
	log        *slog.Logger
	dispatcher Dispatcher
	adapter    channel.Adapter
	metrics    *metrics.Metrics

	mu        sync.RWMutex
	startedAt time.Time
	state     channelState
	handled   int64
	replied   int64
}

type channelState struct {
	Running   bool   `json:"running"`
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}

type statusResponse struct {
	Status          string                  `json:"status"`
	UptimeSeconds   int64                   `json:"uptime_seconds"`
	MessagesHandled int64                   `json:"messages_handled"`
	RepliesSent     int64                   `json:"replies_sent"`
	Channels        map[string]channelState `json:"channels"`
}

// NewService wires the dispatcher into the adapter. A nil metrics value
// disables counting and the /metrics endpoint.
func NewService(cfg *config.Config, dispatcher Dispatcher, adapter channel.Adapter, m *metrics.Metrics, log *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if adapter == nil {
		return nil, errors.New("channel adapter is required")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		cfg:        cfg,
		log:        log.With("component", "gateway.service"),
		dispatcher: dispatcher,
		adapter:    adapter,
		metrics:    m,
	}, nil
}

// Run serves the channel until it stops. It returns nil on a requested
// shutdown or context cancellation and the transport error otherwise.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.startedAt = time.Now().UTC()
	s.mu.Unlock()

	serverErrors := make(chan error, 1)
	if s.cfg.Status.Enabled {
		go s.runStatusServer(runCtx, serverErrors)
	}

	name := s.adapter.Name()
	s.setChannelState(channelState{Running: true})
	s.metrics.SetConnected(true)

	channelErr := make(chan error, 1)
	go func() {
		channelErr <- s.adapter.Run(runCtx, s.handleInbound)
	}()

	var err error
	select {
	case err = <-channelErr:
	case err = <-serverErrors:
		cancel()
		<-channelErr
	}

	s.metrics.SetConnected(false)
	s.setChannelState(channelState{Running: false, Error: errorString(err)})

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run %s channel: %w", name, err)
	}

	s.log.Info("Channel stopped", "channel", name)
	return nil
}

func (s *Service) handleInbound(_ context.Context, inbound bus.InboundMessage) (bus.OutboundMessage, bool) {
	if s.metrics != nil {
		s.metrics.MessagesReceived.Inc()
	}

	reply, ok := s.dispatcher.Dispatch(inbound)

	s.mu.Lock()
	s.handled++
	if ok {
		s.replied++
	}
	s.mu.Unlock()

	if !ok {
		s.log.Debug("No trigger matched", "id", inbound.ID, "sender", inbound.Sender)
		return bus.OutboundMessage{}, false
	}

	s.metrics.ObserveReply(reply)
	s.log.Debug("Trigger matched", "id", inbound.ID, "kind", reply.Kind, "trigger", reply.Trigger)
	return reply, true
}

func (s *Service) runStatusServer(ctx context.Context, errCh chan<- error) {
	host := strings.TrimSpace(s.cfg.Status.Host)
	if host == "" {
		host = defaultStatusHost
	}

	port := s.cfg.Status.Port
	if port <= 0 {
		port = defaultStatusPort
	}

	addr := host + ":" + strconv.Itoa(port)
	server := &http.Server{
		Addr:              addr,
		Handler:           s.statusHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.log.Info("Status server started", "address", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		errCh <- fmt.Errorf("start status server: %w", err)
	}
}

func (s *Service) statusHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}

	return mux
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondStatus(w, http.StatusOK, "ok")
}

func (s *Service) handleReady(w http.ResponseWriter, _ *http.Request) {
	statusCode := http.StatusOK
	status := "ready"
	if !s.isReady() {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	s.respondStatus(w, statusCode, status)
}

func (s *Service) respondStatus(w http.ResponseWriter, statusCode int, status string) {
	payload := s.currentStatus(status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("Failed to write status response", "error", err)
	}
}

func (s *Service) currentStatus(status string) statusResponse {
	connected := s.connected()

	s.mu.RLock()
	defer s.mu.RUnlock()

	uptime := int64(0)
	if !s.startedAt.IsZero() {
		uptime = int64(time.Since(s.startedAt).Seconds())
	}

	state := s.state
	state.Connected = connected

	return statusResponse{
		Status:          status,
		UptimeSeconds:   uptime,
		MessagesHandled: s.handled,
		RepliesSent:     s.replied,
		Channels:        map[string]channelState{s.adapter.Name(): state},
	}
}

func (s *Service) isReady() bool {
	connected := s.connected()

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.Running && connected
}

// connected falls back to the running flag for adapters that cannot report
// their transport state.
func (s *Service) connected() bool {
	if reporter, ok := s.adapter.(connectionReporter); ok {
		return reporter.Connected()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Running
}

func (s *Service) setChannelState(state channelState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

func errorString(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}
