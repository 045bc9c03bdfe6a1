package app

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/multierr"

	"github.com/fd1az/balancer-connector/business/chain/domain"
	"github.com/fd1az/balancer-connector/internal/apperror"
	"github.com/fd1az/balancer-connector/internal/asset"
	"github.com/fd1az/balancer-connector/internal/logger"
)

// TxSender signs and submits transactions from one account.
type TxSender interface {
	Send(ctx context.Context, tx domain.TxRequest, overrides domain.TxOverrides) (*domain.TxResult, error)
	Address() common.Address
}

// Endpoint bundles the adapters serving one network.
type Endpoint struct {
	Chain        string
	Network      string
	NativeSymbol string

	Node     Network
	Blocks   BlockSubscriber
	Gas      GasOracle
	Balances BalanceReader
	Receipts ReceiptReader
	Sender   TxSender // nil when no wallet is configured
}

// Key returns the lowercased "chain/network" lookup key.
func (e *Endpoint) Key() string {
	return endpointKey(e.Chain, e.Network)
}

func endpointKey(chain, network string) string {
	return strings.ToLower(chain) + "/" + strings.ToLower(network)
}

// ChainService coordinates the configured networks.
type ChainService struct {
	endpoints map[string]*Endpoint
	logger    logger.LoggerInterface
}

// NewChainService creates a ChainService over endpoints.
func NewChainService(log logger.LoggerInterface, endpoints ...*Endpoint) (*ChainService, error) {
	if log == nil {
		log = logger.Nop()
	}
	s := &ChainService{
		endpoints: make(map[string]*Endpoint, len(endpoints)),
		logger:    log,
	}
	for _, e := range endpoints {
		if e.Node == nil {
			return nil, apperror.New(apperror.CodeConfigurationError,
				apperror.WithMessage("endpoint has no node"),
				apperror.WithContext(e.Key()))
		}
		if _, dup := s.endpoints[e.Key()]; dup {
			return nil, apperror.New(apperror.CodeConfigurationError,
				apperror.WithMessage("duplicate endpoint"),
				apperror.WithContext(e.Key()))
		}
		s.endpoints[e.Key()] = e
	}
	return s, nil
}

// Endpoint returns the adapters for (chain, network).
func (s *ChainService) Endpoint(chain, network string) (*Endpoint, error) {
	e, ok := s.endpoints[endpointKey(chain, network)]
	if !ok {
		return nil, apperror.New(apperror.CodeUnsupportedNetwork,
			apperror.WithContext(chain+"/"+network))
	}
	return e, nil
}

// Endpoints returns every endpoint ordered by key.
func (s *ChainService) Endpoints() []*Endpoint {
	out := make([]*Endpoint, 0, len(s.endpoints))
	for _, e := range s.endpoints {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Connect dials every network. Failures are collected, not fatal: an
// unreachable network only makes its connectors report NOT_READY.
func (s *ChainService) Connect(ctx context.Context) error {
	var errs error
	for _, e := range s.Endpoints() {
		if err := e.Node.Connect(ctx); err != nil {
			s.logger.Error(ctx, "network connect failed", "network", e.Key(), "error", err)
			errs = multierr.Append(errs, err)
			continue
		}
		s.logger.Info(ctx, "network connected", "network", e.Key(), "chain_id", e.Node.ChainID())
	}
	return errs
}

// Ready reports whether every network is connected. The message lists the
// ones that are not.
func (s *ChainService) Ready(_ context.Context) (bool, string) {
	var down []string
	for _, e := range s.Endpoints() {
		if !e.Node.Ready() {
			down = append(down, e.Key())
		}
	}
	if len(down) > 0 {
		return false, "not ready: " + strings.Join(down, ", ")
	}
	return true, fmt.Sprintf("%d networks ready", len(s.endpoints))
}

// Poll returns the receipt status of hash.
func (s *ChainService) Poll(ctx context.Context, chain, network string, hash common.Hash) (*domain.Receipt, error) {
	e, err := s.Endpoint(chain, network)
	if err != nil {
		return nil, err
	}
	if !e.Node.Ready() {
		return nil, apperror.New(apperror.CodeNotReady, apperror.WithContext(e.Key()))
	}
	return e.Receipts.Status(ctx, hash)
}

// Balances reads owner's balance of each symbol. An empty symbol list
// reads every token the network knows.
func (s *ChainService) Balances(ctx context.Context, chain, network string, owner common.Address, symbols []string) ([]asset.Amount, error) {
	e, err := s.Endpoint(chain, network)
	if err != nil {
		return nil, err
	}
	if !e.Node.Ready() {
		return nil, apperror.New(apperror.CodeNotReady, apperror.WithContext(e.Key()))
	}

	tokens, err := s.resolve(ctx, e, symbols)
	if err != nil {
		return nil, err
	}

	out := make([]asset.Amount, 0, len(tokens))
	for _, t := range tokens {
		amount, err := e.Balances.Balance(ctx, owner, t)
		if err != nil {
			return nil, err
		}
		out = append(out, amount)
	}
	return out, nil
}

func (s *ChainService) resolve(ctx context.Context, e *Endpoint, symbols []string) ([]*asset.Token, error) {
	records, err := e.Node.TokenList(ctx)
	if err != nil {
		return nil, err
	}
	reg, err := asset.NewRegistryFromRecords(e.Node.ChainID(), records)
	if err != nil {
		return nil, err
	}
	if len(symbols) == 0 {
		return reg.All(), nil
	}

	tokens := make([]*asset.Token, 0, len(symbols))
	for _, sym := range symbols {
		if e.NativeSymbol != "" && strings.EqualFold(sym, e.NativeSymbol) {
			tokens = append(tokens, nativeToken(e.Node.ChainID(), e.NativeSymbol))
			continue
		}
		t, err := reg.Lookup(sym)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, nil
}

func nativeToken(chainID uint64, symbol string) *asset.Token {
	return asset.MustNewToken(chainID, asset.TokenRecord{
		Address:  asset.NativeAddress.Hex(),
		Symbol:   strings.ToUpper(symbol),
		Name:     strings.ToUpper(symbol),
		Decimals: 18,
	})
}

// Close releases every endpoint.
func (s *ChainService) Close() error {
	var errs error
	for _, e := range s.Endpoints() {
		if c, ok := e.Blocks.(io.Closer); ok {
			errs = multierr.Append(errs, c.Close())
		}
		if c, ok := e.Gas.(io.Closer); ok {
			errs = multierr.Append(errs, c.Close())
		}
		errs = multierr.Append(errs, e.Node.Close())
	}
	return errs
}
