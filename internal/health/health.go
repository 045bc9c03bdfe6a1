// Package health serves liveness and readiness probes for the connector
// process.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fd1az/balancer-connector/internal/logger"
)

const checkTimeout = 5 * time.Second

// CheckFunc reports whether a dependency is usable, with a short note.
type CheckFunc func(ctx context.Context) (bool, string)

// Check is the outcome of one CheckFunc.
type Check struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// Status is the /health body.
type Status struct {
	Status    string           `json:"status"`
	Version   string           `json:"version,omitempty"`
	Uptime    string           `json:"uptime"`
	Timestamp string           `json:"timestamp"`
	Checks    map[string]Check `json:"checks"`
}

// Server answers /health, /ready and /live on its own port.
type Server struct {
	addr    string
	version string
	started time.Time
	log     logger.LoggerInterface

	mu     sync.RWMutex
	checks map[string]CheckFunc

	srv *http.Server
}

func NewServer(port int, version string, log logger.LoggerInterface) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		addr:    net.JoinHostPort("", strconv.Itoa(port)),
		version: version,
		started: time.Now(),
		log:     log,
		checks:  map[string]CheckFunc{},
	}
}

// RegisterCheck adds or replaces the check called name.
func (s *Server) RegisterCheck(name string, fn CheckFunc) {
	s.mu.Lock()
	s.checks[name] = fn
	s.mu.Unlock()
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.health)
	r.Get("/ready", s.ready)
	r.Get("/live", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("alive"))
	})
	return r
}

// Start listens in the background. A listener failure is logged and the
// process keeps running without probes.
func (s *Server) Start() error {
	s.srv = &http.Server{Addr: s.addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		err := s.srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Warn(context.Background(), "health server stopped", "addr", s.addr, "error", err)
		}
	}()
	return nil
}

func (s *Server) Close() error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

// run evaluates every check concurrently under one deadline.
func (s *Server) run(ctx context.Context) map[string]Check {
	s.mu.RLock()
	checks := make(map[string]CheckFunc, len(s.checks))
	for name, fn := range s.checks {
		checks[name] = fn
	}
	s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make(map[string]Check, len(checks))
	)
	for name, fn := range checks {
		wg.Add(1)
		go func(name string, fn CheckFunc) {
			defer wg.Done()
			ok, msg := fn(ctx)
			mu.Lock()
			out[name] = Check{Healthy: ok, Message: msg}
			mu.Unlock()
		}(name, fn)
	}
	wg.Wait()
	return out
}

func failing(results map[string]Check) []string {
	var names []string
	for name, c := range results {
		if !c.Healthy {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	results := s.run(r.Context())
	status := Status{
		Status:    "ok",
		Version:   s.version,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    results,
	}
	code := http.StatusOK
	if len(failing(results)) > 0 {
		status.Status = "degraded"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}

// ready answers 200 only when every check passes, naming the failures
// otherwise.
func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	if bad := failing(s.run(r.Context())); len(bad) > 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready: " + strings.Join(bad, ", ")))
		return
	}
	_, _ = w.Write([]byte("ready"))
}
