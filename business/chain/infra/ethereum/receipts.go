package ethereum

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/balancer-connector/business/chain/app"
	"github.com/fd1az/balancer-connector/business/chain/domain"
	"github.com/fd1az/balancer-connector/internal/apperror"
)

var _ app.ReceiptReader = (*ReceiptPoller)(nil)

// ReceiptPoller reads transaction receipts.
type ReceiptPoller struct {
	backend Backend
	tracer  trace.Tracer
}

// NewReceiptPoller creates a ReceiptPoller over backend.
func NewReceiptPoller(backend Backend) *ReceiptPoller {
	return &ReceiptPoller{backend: backend, tracer: otel.Tracer(tracerName)}
}

// Status returns the receipt of hash. A transaction the node has no
// receipt for is reported as pending.
func (p *ReceiptPoller) Status(ctx context.Context, hash common.Hash) (*domain.Receipt, error) {
	ctx, span := p.tracer.Start(ctx, "eth.tx_status",
		trace.WithAttributes(attribute.String("hash", hash.Hex())),
	)
	defer span.End()

	client, err := p.backend.Client()
	if err != nil {
		return nil, err
	}

	receipt, err := client.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return &domain.Receipt{Hash: hash, Status: domain.TxPending}, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeRPCError,
			apperror.WithContext("eth_getTransactionReceipt"),
			apperror.WithCause(err))
	}

	out := &domain.Receipt{
		Hash:    hash,
		Status:  domain.TxFailed,
		GasUsed: receipt.GasUsed,
	}
	if receipt.Status == types.ReceiptStatusSuccessful {
		out.Status = domain.TxConfirmed
	}
	if receipt.BlockNumber != nil {
		out.BlockNumber = receipt.BlockNumber.Uint64()
	}
	span.SetAttributes(attribute.String("status", out.Status.String()))
	return out, nil
}

// WaitMined polls Status every interval until hash leaves the pending
// state or ctx ends.
func (p *ReceiptPoller) WaitMined(ctx context.Context, hash common.Hash, interval time.Duration) (*domain.Receipt, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		r, err := p.Status(ctx, hash)
		if err != nil {
			return nil, err
		}
		if r.Status != domain.TxPending {
			return r, nil
		}

		select {
		case <-ctx.Done():
			return nil, apperror.New(apperror.CodeTxNotFound,
				apperror.WithMessage("transaction not mined before deadline"),
				apperror.WithContext(hash.Hex()),
				apperror.WithCause(ctx.Err()))
		case <-ticker.C:
		}
	}
}
