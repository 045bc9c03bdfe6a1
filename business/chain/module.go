// Package chain implements the chain bounded context: node connections,
// heads, gas, balances and transaction submission per configured network.
package chain

import (
	"context"
	"math/big"

	"github.com/fd1az/balancer-connector/business/chain/app"
	chainDI "github.com/fd1az/balancer-connector/business/chain/di"
	"github.com/fd1az/balancer-connector/business/chain/infra/ethereum"
	"github.com/fd1az/balancer-connector/internal/config"
	"github.com/fd1az/balancer-connector/internal/di"
	"github.com/fd1az/balancer-connector/internal/logger"
	"github.com/fd1az/balancer-connector/internal/monolith"
)

// Module implements the chain bounded context.
type Module struct{}

// RegisterServices registers the chain service with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, chainDI.ChainService, func(sr di.ServiceRegistry) *app.ChainService {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		endpoints := make([]*app.Endpoint, 0, 1+len(cfg.Chains))
		for _, cc := range cfg.AllChains() {
			e, err := NewEndpoint(cc, cfg.Wallet, log)
			if err != nil {
				panic("failed to create endpoint " + cc.Key() + ": " + err.Error())
			}
			endpoints = append(endpoints, e)
		}

		svc, err := app.NewChainService(log, endpoints...)
		if err != nil {
			panic("failed to create chain service: " + err.Error())
		}
		return svc
	})

	return nil
}

// NewEndpoint builds the ethereum adapters for one chain config. The
// broadcaster is only created when a wallet key is configured.
func NewEndpoint(cc config.ChainConfig, wallet config.WalletConfig, log logger.LoggerInterface) (*app.Endpoint, error) {
	node, err := ethereum.NewNetwork(ethereum.NetworkConfig{
		Chain:         cc.Chain,
		Network:       cc.Network,
		ChainID:       cc.ChainID,
		HTTPURL:       cc.HTTPURL,
		TokenListPath: cc.TokenListPath,
	}, nil, log)
	if err != nil {
		return nil, err
	}

	gasCfg := ethereum.DefaultGasOracleConfig(cc.Key())
	if cc.GasCacheTTL > 0 {
		gasCfg.PriceTTL = cc.GasCacheTTL
	}
	if cc.MaxGasPrice > 0 {
		gasCfg.Ceiling = new(big.Int).Mul(new(big.Int).SetUint64(cc.MaxGasPrice), big.NewInt(1_000_000_000))
	}
	gas, err := ethereum.NewGasOracle(node, gasCfg, log)
	if err != nil {
		return nil, err
	}

	headCfg := ethereum.DefaultHeadSubscriberConfig(cc.Key(), cc.WebSocketURL)
	headCfg.MaxReconnects = cc.MaxReconnects
	if cc.InitialBackoff > 0 {
		headCfg.InitialBackoff = cc.InitialBackoff
	}
	if cc.MaxBackoff > 0 {
		headCfg.MaxBackoff = cc.MaxBackoff
	}
	heads, err := ethereum.NewHeadSubscriber(node, headCfg, log)
	if err != nil {
		return nil, err
	}

	balances, err := ethereum.NewBalanceReader(node)
	if err != nil {
		return nil, err
	}

	e := &app.Endpoint{
		Chain:        cc.Chain,
		Network:      cc.Network,
		NativeSymbol: cc.NativeSymbol,
		Node:         node,
		Blocks:       heads,
		Gas:          gas,
		Balances:     balances,
		Receipts:     ethereum.NewReceiptPoller(node),
	}

	if wallet.PrivateKey != "" {
		sender, err := ethereum.NewBroadcaster(node, gas, cc.ChainID, wallet.PrivateKey, log)
		if err != nil {
			return nil, err
		}
		e.Sender = sender
	}
	return e, nil
}

// Startup connects every configured network. A network that fails to
// connect is logged and left not ready; it does not stop the process.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	svc := chainDI.GetChainService(mono.Services())
	mono.OnClose(svc)

	if err := svc.Connect(ctx); err != nil {
		log.Warn(ctx, "some networks failed to connect", "error", err)
	}

	log.Info(ctx, "chain module started", "networks", len(svc.Endpoints()))
	return nil
}
