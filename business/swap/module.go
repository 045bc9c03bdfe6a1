// Package swap implements the swap bounded context: routing, quoting and
// building Balancer Vault trades per (chain, network).
package swap

import (
	"context"

	chainApp "github.com/fd1az/balancer-connector/business/chain/app"
	chainDI "github.com/fd1az/balancer-connector/business/chain/di"
	"github.com/fd1az/balancer-connector/business/swap/app"
	swapDI "github.com/fd1az/balancer-connector/business/swap/di"
	"github.com/fd1az/balancer-connector/business/swap/domain"
	"github.com/fd1az/balancer-connector/business/swap/infra/balancer"
	"github.com/fd1az/balancer-connector/internal/apperror"
	"github.com/fd1az/balancer-connector/internal/config"
	"github.com/fd1az/balancer-connector/internal/di"
	"github.com/fd1az/balancer-connector/internal/logger"
	"github.com/fd1az/balancer-connector/internal/monolith"
)

// Module implements the swap bounded context.
type Module struct{}

// RegisterServices registers the router and the connector registry.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, swapDI.PathRouter, func(sr di.ServiceRegistry) app.PathRouter {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		router, err := balancer.NewRouter(nil, balancer.RouterConfig{
			APIURL:            cfg.Balancer.APIURL,
			RequestTimeout:    cfg.Balancer.RequestTimeout,
			RequestsPerSecond: cfg.Balancer.RequestsPerSecond,
			PoolCacheTTL:      cfg.Balancer.PoolCacheTTL,
		}, log)
		if err != nil {
			panic("failed to create balancer router: " + err.Error())
		}
		return router
	})

	di.RegisterToken(c, swapDI.Registry, func(sr di.ServiceRegistry) *app.Registry {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		chains := chainDI.GetChainService(sr)
		router := swapDI.GetPathRouter(sr)

		return app.NewRegistry(func(chain, network string) (*app.Connector, error) {
			e, err := chains.Endpoint(chain, network)
			if err != nil {
				return nil, err
			}
			return NewConnector(e, router, cfg.Balancer, log)
		})
	})

	return nil
}

// NewConnector assembles an uninitialized connector on top of a chain
// endpoint. It performs no I/O.
func NewConnector(e *chainApp.Endpoint, router app.PathRouter, cfg config.BalancerConfig, log logger.LoggerInterface) (*app.Connector, error) {
	caller, ok := e.Node.(balancer.EthCaller)
	if !ok {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithMessage("network "+e.Key()+" cannot serve eth_call"))
	}

	vault := cfg.VaultAddressHex()
	sim, err := balancer.NewSimulator(caller, vault, log)
	if err != nil {
		return nil, err
	}
	enc, err := balancer.NewEncoder(vault)
	if err != nil {
		return nil, err
	}

	builder := app.NewTradeBuilder(sim, enc, app.TradeBuilderConfig{
		AllowedSlippage: cfg.AllowedSlippage,
		DeadlineOffset:  cfg.DeadlineOffset,
	})

	return app.NewConnector(app.ConnectorConfig{
		Chain:           e.Node,
		Router:          router,
		Builder:         builder,
		Broadcaster:     e.Sender,
		AllowedSlippage: cfg.AllowedSlippage,
		Logger:          log,
	})
}

// NewMonitor builds the per-block quote monitor for mc. Flag overrides are
// applied to mc by the caller.
func NewMonitor(sr di.ServiceRegistry, mc config.MonitorConfig, reporter app.Reporter) (*app.Monitor, error) {
	log := sr.Get("logger").(logger.LoggerInterface)

	pair, err := domain.ParsePair(mc.Pair)
	if err != nil {
		return nil, err
	}
	side, err := domain.ParseSide(mc.Side)
	if err != nil {
		return nil, err
	}

	e, err := chainDI.GetChainService(sr).Endpoint(mc.Chain, mc.Network)
	if err != nil {
		return nil, err
	}
	connector, err := swapDI.GetRegistry(sr).GetInstance(mc.Chain, mc.Network)
	if err != nil {
		return nil, err
	}

	return app.NewMonitor(connector, e.Blocks, e.Gas, reporter, app.MonitorConfig{
		Pair:     pair,
		Side:     side,
		Amount:   mc.Amount,
		Slippage: mc.Slippage,
	}, log), nil
}

// Startup initializes a connector for every network that connected.
// Networks that are not ready are left for lazy initialization.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	registry := swapDI.GetRegistry(mono.Services())
	chains := chainDI.GetChainService(mono.Services())

	for _, e := range chains.Endpoints() {
		if !e.Node.Ready() {
			continue
		}
		c, err := registry.GetInstance(e.Chain, e.Network)
		if err != nil {
			return err
		}
		if err := c.Init(ctx); err != nil {
			log.Warn(ctx, "connector init failed", "network", e.Key(), "error", err)
			continue
		}
		log.Info(ctx, "connector ready", "network", e.Key(), "wallet", e.Sender != nil)
	}

	log.Info(ctx, "swap module started")
	return nil
}
