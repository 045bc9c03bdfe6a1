package app

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/balancer-connector/business/swap/domain"
	"github.com/fd1az/balancer-connector/internal/apperror"
)

const tracerName = "github.com/fd1az/balancer-connector/business/swap/app"

// DefaultDeadlineOffset puts build-time deadlines effectively in the far
// future.
const DefaultDeadlineOffset = 365 * 24 * time.Hour

// TradeBuilderConfig configures build-time policy.
type TradeBuilderConfig struct {
	AllowedSlippage string
	DeadlineOffset  time.Duration
	Now             func() time.Time
}

// BuildRequest names the accounts a quote is built for.
type BuildRequest struct {
	Quote     *domain.Quote
	Sender    common.Address
	Recipient common.Address
}

// TradeBuilder turns quotes into signable calls. It never signs.
type TradeBuilder struct {
	simulator Simulator
	encoder   CallEncoder
	config    TradeBuilderConfig
	tracer    trace.Tracer
}

// NewTradeBuilder creates a TradeBuilder. A zero offset means
// DefaultDeadlineOffset and a nil clock means time.Now.
func NewTradeBuilder(simulator Simulator, encoder CallEncoder, cfg TradeBuilderConfig) *TradeBuilder {
	if cfg.DeadlineOffset <= 0 {
		cfg.DeadlineOffset = DefaultDeadlineOffset
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &TradeBuilder{
		simulator: simulator,
		encoder:   encoder,
		config:    cfg,
		tracer:    otel.Tracer(tracerName),
	}
}

// Query simulates the quote and returns authoritative amounts.
func (b *TradeBuilder) Query(ctx context.Context, quote *domain.Quote, sender, recipient common.Address) (*domain.QueryOutput, error) {
	out, err := b.simulator.Query(ctx, quote, sender, recipient)
	if err != nil {
		if apperror.HasCode(err, apperror.CodeSimulationFailed) {
			return nil, err
		}
		return nil, apperror.New(apperror.CodeSimulationFailed,
			apperror.WithContext(quote.TokenIn.Symbol()+"->"+quote.TokenOut.Symbol()),
			apperror.WithCause(err))
	}
	if out == nil || out.AmountIn == nil || out.AmountOut == nil ||
		out.AmountIn.Sign() <= 0 || out.AmountOut.Sign() <= 0 {
		return nil, apperror.New(apperror.CodeSimulationFailed,
			apperror.WithMessage("simulation returned no positive amounts"))
	}
	return out, nil
}

// Build queries, bounds and encodes the quote. The slippage bound comes
// from configuration, not from the quote, and the deadline is bound here.
func (b *TradeBuilder) Build(ctx context.Context, req BuildRequest) (*domain.BuiltTransaction, error) {
	ctx, span := b.tracer.Start(ctx, "swap.build",
		trace.WithAttributes(
			attribute.String("direction", req.Quote.Direction.String()),
			attribute.Int("hops", req.Quote.SelectedPath.Hops()),
		),
	)
	defer span.End()

	query, err := b.Query(ctx, req.Quote, req.Sender, req.Recipient)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "simulation failed")
		return nil, err
	}

	slippage, err := ResolveSlippage("", b.config.AllowedSlippage)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	deadline := b.config.Now().Add(b.config.DeadlineOffset)

	var limit, inputLimit *big.Int
	if req.Quote.Direction == domain.GivenIn {
		limit = MinAmountOut(query.AmountOut, slippage)
		inputLimit = query.AmountIn
	} else {
		limit = MaxAmountIn(query.AmountIn, slippage)
		inputLimit = limit
	}

	call, err := b.encoder.Encode(req.Quote, domain.SwapCall{
		Sender:    req.Sender,
		Recipient: req.Recipient,
		Query:     query,
		Limit:     limit,
		Deadline:  deadline,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "encode failed")
		return nil, apperror.Wrap(err, apperror.CodeEncodingFailed, "swap calldata")
	}

	value := new(big.Int)
	if req.Quote.TokenIn.IsNative() {
		value.Set(inputLimit)
	}

	span.SetAttributes(
		attribute.String("limit", limit.String()),
		attribute.Int("slippage_pct", slippage),
	)
	span.SetStatus(codes.Ok, "built")

	return &domain.BuiltTransaction{
		To:              call.To,
		Data:            call.Data,
		Value:           value,
		Deadline:        deadline,
		Limit:           limit,
		SlippagePercent: slippage,
		Query:           query,
	}, nil
}
