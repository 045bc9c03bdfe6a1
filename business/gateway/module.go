// Package gateway exposes the swap and chain contexts over HTTP.
package gateway

import (
	"context"

	chainDI "github.com/fd1az/balancer-connector/business/chain/di"
	"github.com/fd1az/balancer-connector/business/gateway/api"
	gatewayDI "github.com/fd1az/balancer-connector/business/gateway/di"
	swapDI "github.com/fd1az/balancer-connector/business/swap/di"
	"github.com/fd1az/balancer-connector/internal/config"
	"github.com/fd1az/balancer-connector/internal/di"
	"github.com/fd1az/balancer-connector/internal/logger"
	"github.com/fd1az/balancer-connector/internal/monolith"
)

// Module implements the gateway bounded context. It depends on the chain
// and swap modules being registered first.
type Module struct{}

func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, gatewayDI.Server, func(sr di.ServiceRegistry) *api.Server {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		return api.NewServer(api.Config{
			Address:           cfg.Gateway.Address,
			AllowedOrigins:    cfg.Gateway.AllowedOrigins,
			RequestsPerMinute: cfg.Gateway.RequestsPerMinute,
			RequestTimeout:    cfg.Gateway.RequestTimeout,
		}, swapDI.GetRegistry(sr), chainDI.GetChainService(sr), log)
	})
	return nil
}

// Startup binds the listener. A bind failure aborts startup.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	srv := gatewayDI.GetServer(mono.Services())
	if err := srv.Start(); err != nil {
		return err
	}
	mono.OnClose(srv)

	mono.Logger().Info(ctx, "gateway module started")
	return nil
}
