package balancer

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/balancer-connector/business/swap/app"
	"github.com/fd1az/balancer-connector/business/swap/domain"
	"github.com/fd1az/balancer-connector/internal/apperror"
	"github.com/fd1az/balancer-connector/internal/circuitbreaker"
	"github.com/fd1az/balancer-connector/internal/logger"
)

//go:generate mockgen -destination=mock/eth_caller.go -package=mock . EthCaller

// EthCaller is the read-only slice of an ethclient the simulator needs.
type EthCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

var _ app.Simulator = (*Simulator)(nil)

// Simulator prices a quote on-chain through Vault.queryBatchSwap.
type Simulator struct {
	caller   EthCaller
	vault    common.Address
	vaultABI abi.ABI
	cb       *circuitbreaker.CircuitBreaker[[]byte]
	logger   logger.LoggerInterface
	tracer   trace.Tracer
}

// NewSimulator creates a Simulator against the Vault at vault.
func NewSimulator(caller EthCaller, vault common.Address, log logger.LoggerInterface) (*Simulator, error) {
	parsed, err := parseVaultABI()
	if err != nil {
		return nil, fmt.Errorf("failed to parse vault ABI: %w", err)
	}
	if vault == (common.Address{}) {
		vault = DefaultVaultAddress
	}
	if log == nil {
		log = logger.Nop()
	}

	s := &Simulator{
		caller:   caller,
		vault:    vault,
		vaultABI: parsed,
		logger:   log,
		tracer:   otel.Tracer(tracerName),
	}

	cbCfg := circuitbreaker.DefaultConfig("balancer-vault-query")
	cbCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		s.logger.Warn(context.Background(), "circuit breaker state change",
			"name", name, "from", from.String(), "to", to.String())
	}
	s.cb = circuitbreaker.New[[]byte](cbCfg)

	return s, nil
}

// Query runs queryBatchSwap for the selected path. The input delta is the
// amount in; the negated output delta is the amount out.
func (s *Simulator) Query(ctx context.Context, q *domain.Quote, sender, recipient common.Address) (*domain.QueryOutput, error) {
	ctx, span := s.tracer.Start(ctx, "balancer.query_batch_swap",
		trace.WithAttributes(
			attribute.String("direction", q.Direction.String()),
			attribute.Int("hops", q.SelectedPath.Hops()),
		),
	)
	defer span.End()

	amount := q.SelectedPath.InputAmountRaw
	if q.Direction == domain.GivenOut {
		amount = q.SelectedPath.OutputAmountRaw
	}

	b, err := layoutBatch(q, amount)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	data, err := s.vaultABI.Pack("queryBatchSwap", uint8(q.Direction), b.steps, b.assets, funds(sender, recipient))
	if err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeEncodingFailed, apperror.WithCause(err))
	}

	raw, err := s.cb.Execute(func() ([]byte, error) {
		return s.caller.CallContract(ctx, ethereum.CallMsg{
			From: sender,
			To:   &s.vault,
			Data: data,
		}, nil)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query reverted")
		return nil, apperror.New(apperror.CodeSimulationFailed,
			apperror.WithContext("queryBatchSwap"),
			apperror.WithCause(err))
	}

	outputs, err := s.vaultABI.Unpack("queryBatchSwap", raw)
	if err != nil || len(outputs) != 1 {
		span.SetStatus(codes.Error, "undecodable result")
		return nil, apperror.New(apperror.CodeSimulationFailed,
			apperror.WithMessage("undecodable queryBatchSwap result"),
			apperror.WithCause(err))
	}
	deltas, ok := outputs[0].([]*big.Int)
	if !ok || len(deltas) != len(b.assets) {
		return nil, apperror.New(apperror.CodeSimulationFailed,
			apperror.WithMessage(fmt.Sprintf("expected %d asset deltas", len(b.assets))))
	}

	out := &domain.QueryOutput{
		AssetDeltas: deltas,
		AmountIn:    new(big.Int).Set(deltas[b.inIndex]),
		AmountOut:   new(big.Int).Neg(deltas[b.outIndex]),
	}

	span.SetAttributes(
		attribute.String("amount_in", out.AmountIn.String()),
		attribute.String("amount_out", out.AmountOut.String()),
	)
	span.SetStatus(codes.Ok, "simulated")

	s.logger.Debug(ctx, "vault query",
		"direction", q.Direction.String(),
		"amount_in", out.AmountIn.String(),
		"amount_out", out.AmountOut.String(),
	)
	return out, nil
}
