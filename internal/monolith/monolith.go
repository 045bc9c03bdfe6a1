// Package monolith provides the application container and module interface.
package monolith

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/multierr"

	"github.com/fd1az/balancer-connector/internal/config"
	"github.com/fd1az/balancer-connector/internal/di"
	"github.com/fd1az/balancer-connector/internal/logger"
)

// Monolith is the main application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	Services() di.ServiceRegistry
	// OnClose registers a resource released by Close, in reverse order.
	OnClose(c io.Closer)
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

type app struct {
	config    *config.Config
	logger    logger.LoggerInterface
	container di.Container

	mu      sync.Mutex
	closers []io.Closer
}

// New creates a new Monolith instance. Nothing is dialed here; chain
// clients are opened by the modules that own them.
func New(cfg *config.Config, log logger.LoggerInterface) *app {
	container := di.NewContainer()

	container.Register("config", cfg)
	container.Register("logger", log)

	return &app{
		config:    cfg,
		logger:    log,
		container: container,
	}
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *app) Container() di.Container {
	return a.container
}

func (a *app) OnClose(c io.Closer) {
	a.mu.Lock()
	a.closers = append(a.closers, c)
	a.mu.Unlock()
}

// RegisterModules runs each module's registration in order and stops at the
// first failure.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return fmt.Errorf("register %T: %w", m, err)
		}
	}
	return nil
}

// StartModules starts modules in the order given. Later modules resolve
// services the earlier ones built, so order is dependency order.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.Startup(ctx, a); err != nil {
			return fmt.Errorf("start %T: %w", m, err)
		}
	}
	return nil
}

// Close releases registered resources and combines their errors.
func (a *app) Close() error {
	a.mu.Lock()
	closers := a.closers
	a.closers = nil
	a.mu.Unlock()

	var err error
	for i := len(closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, closers[i].Close())
	}
	return err
}
