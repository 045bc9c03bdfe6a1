// Package api is the gateway HTTP surface over the swap and chain contexts.
package api

import (
	"context"
	"errors"
	"math/big"
	"net"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	chainApp "github.com/fd1az/balancer-connector/business/chain/app"
	chainDomain "github.com/fd1az/balancer-connector/business/chain/domain"
	swapApp "github.com/fd1az/balancer-connector/business/swap/app"
	"github.com/fd1az/balancer-connector/internal/asset"
	"github.com/fd1az/balancer-connector/internal/logger"
)

const (
	defaultAddress        = ":8080"
	defaultRequestTimeout = 30 * time.Second
)

// Connectors hands out swap connectors.
type Connectors interface {
	GetInstance(chain, network string) (*swapApp.Connector, error)
}

// Chains is the chain-side surface the gateway needs.
type Chains interface {
	Endpoint(chain, network string) (*chainApp.Endpoint, error)
	Poll(ctx context.Context, chain, network string, hash common.Hash) (*chainDomain.Receipt, error)
	Balances(ctx context.Context, chain, network string, owner common.Address, symbols []string) ([]asset.Amount, error)
}

// Config configures the HTTP server.
type Config struct {
	Address           string
	AllowedOrigins    []string
	RequestsPerMinute int
	RequestTimeout    time.Duration
}

// Server serves the gateway API.
type Server struct {
	config     Config
	connectors Connectors
	chains     Chains
	logger     logger.LoggerInterface
	zl         zerolog.Logger
	handler    http.Handler
	httpServer *http.Server
}

// NewServer creates a Server. Nothing listens until Start.
func NewServer(cfg Config, connectors Connectors, chains Chains, log logger.LoggerInterface) *Server {
	if cfg.Address == "" {
		cfg.Address = defaultAddress
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if log == nil {
		log = logger.Nop()
	}

	zl := zerolog.Nop()
	if z, ok := log.(interface{ Zerolog() *zerolog.Logger }); ok {
		zl = z.Zerolog().With().Str("component", "gateway").Logger()
	}

	s := &Server{
		config:     cfg,
		connectors: connectors,
		chains:     chains,
		logger:     log,
		zl:         zl,
	}
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	mux := chi.NewMux()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(s.requestLogger)
	mux.Use(s.recoverer)
	mux.Use(middleware.Timeout(s.config.RequestTimeout))
	if s.config.RequestsPerMinute > 0 {
		mux.Use(httprate.LimitByIP(s.config.RequestsPerMinute, time.Minute))
	}

	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": map[string]any{"code": "NOT_FOUND", "message": "no such route"},
		})
	})

	mux.Route("/amm", func(r chi.Router) {
		r.Post("/price", s.handlePrice)
		r.Post("/trade", s.handleTrade)
	})
	mux.Route("/chain", func(r chi.Router) {
		r.Post("/poll", s.handlePoll)
		r.Post("/balances", s.handleBalances)
		r.Get("/tokens", s.handleTokens)
	})

	return otelhttp.NewHandler(newCORS(s.config.AllowedOrigins).Handler(mux), "gateway")
}

func newCORS(origins []string) *cors.Cors {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	// credentials are not allowed with a wildcard origin
	credentials := !(len(origins) == 1 && origins[0] == "*")

	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: credentials,
		MaxAge:           300,
	})
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address in the background. A bind
// failure is returned synchronously.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(context.Background(), "gateway server failed", "error", err)
		}
	}()

	s.logger.Info(context.Background(), "gateway listening", "address", ln.Addr().String())
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Close implements io.Closer with a bounded shutdown.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Stop(ctx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.zl.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("request")
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				s.zl.Error().
					Interface("panic", rvr).
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("path", r.URL.Path).
					Msg("recovered from panic")
				writeJSON(w, http.StatusInternalServerError, map[string]any{
					"error": map[string]any{"code": "INTERNAL_ERROR", "message": "internal server error"},
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func parseWei(s string) (*big.Int, bool) {
	if s == "" {
		return nil, true
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, false
	}
	return v, true
}
