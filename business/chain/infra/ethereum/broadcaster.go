package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/balancer-connector/business/chain/app"
	"github.com/fd1az/balancer-connector/business/chain/domain"
	"github.com/fd1az/balancer-connector/internal/apperror"
	"github.com/fd1az/balancer-connector/internal/logger"
)

var (
	_ app.TxSender      = (*Broadcaster)(nil)
	_ app.ReceiptReader = (*Broadcaster)(nil)
)

// FeeSource fills the gas fields a caller left empty.
type FeeSource interface {
	SuggestFees(ctx context.Context) (tipCap, feeCap *big.Int, err error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
}

// Broadcaster signs EIP-1559 transactions with one key and submits them.
type Broadcaster struct {
	backend  Backend
	fees     FeeSource
	receipts *ReceiptPoller
	logger   logger.LoggerInterface

	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
	signer  types.Signer

	// held from nonce lookup to submission so concurrent sends get
	// consecutive nonces
	nonceMu sync.Mutex

	tracer     trace.Tracer
	broadcasts metric.Int64Counter
}

// NewBroadcaster parses privateKeyHex (0x optional) and binds it to chainID.
func NewBroadcaster(backend Backend, fees FeeSource, chainID uint64, privateKeyHex string, log logger.LoggerInterface) (*Broadcaster, error) {
	privateKeyHex = strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	if privateKeyHex == "" {
		return nil, apperror.New(apperror.CodeWalletNotConfigured)
	}
	key, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithMessage("invalid wallet private key"),
			apperror.WithCause(err))
	}
	if log == nil {
		log = logger.Nop()
	}

	id := new(big.Int).SetUint64(chainID)
	b := &Broadcaster{
		backend:  backend,
		fees:     fees,
		receipts: NewReceiptPoller(backend),
		logger:   log,
		key:      key,
		from:     crypto.PubkeyToAddress(key.PublicKey),
		chainID:  id,
		signer:   types.LatestSignerForChainID(id),
		tracer:   otel.Tracer(tracerName),
	}

	b.broadcasts, err = otel.Meter(meterName).Int64Counter(
		"eth_broadcasts_total",
		metric.WithDescription("Transactions submitted"),
		metric.WithUnit("{tx}"),
	)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	return b, nil
}

// Address is the signing account.
func (b *Broadcaster) Address() common.Address {
	return b.from
}

// Send fills missing overrides from the node, signs and submits tx.
func (b *Broadcaster) Send(ctx context.Context, req domain.TxRequest, overrides domain.TxOverrides) (*domain.TxResult, error) {
	ctx, span := b.tracer.Start(ctx, "eth.send_transaction",
		trace.WithAttributes(
			attribute.String("from", b.from.Hex()),
			attribute.String("to", req.To.Hex()),
		),
	)
	defer span.End()

	client, err := b.backend.Client()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	value := req.Value
	if value == nil {
		value = new(big.Int)
	}

	b.nonceMu.Lock()
	defer b.nonceMu.Unlock()

	var nonce uint64
	if overrides.Nonce != nil {
		nonce = *overrides.Nonce
	} else if nonce, err = client.PendingNonceAt(ctx, b.from); err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeRPCError,
			apperror.WithContext("eth_getTransactionCount"),
			apperror.WithCause(err))
	}

	tipCap, feeCap := overrides.MaxPriorityFeePerGas, overrides.MaxFeePerGas
	if tipCap == nil || feeCap == nil {
		suggestedTip, suggestedFee, err := b.fees.SuggestFees(ctx)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if tipCap == nil {
			tipCap = suggestedTip
		}
		if feeCap == nil {
			feeCap = suggestedFee
		}
	}
	if feeCap.Cmp(tipCap) < 0 {
		feeCap = new(big.Int).Set(tipCap)
	}

	var gas uint64
	if overrides.GasLimit != nil {
		gas = *overrides.GasLimit
	} else {
		to := req.To
		gas, err = b.fees.EstimateGas(ctx, ethereum.CallMsg{
			From:  b.from,
			To:    &to,
			Value: value,
			Data:  req.Data,
		})
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	to := req.To
	signed, err := types.SignNewTx(b.key, b.signer, &types.DynamicFeeTx{
		ChainID:   b.chainID,
		Nonce:     nonce,
		GasTipCap: tipCap,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      req.Data,
	})
	if err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeBroadcastFailed,
			apperror.WithMessage("signing failed"),
			apperror.WithCause(err))
	}

	if err := client.SendTransaction(ctx, signed); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rejected")
		b.broadcasts.Add(ctx, 1, metric.WithAttributes(attribute.Bool("accepted", false)))
		return nil, apperror.New(apperror.CodeBroadcastFailed,
			apperror.WithContext(signed.Hash().Hex()),
			apperror.WithCause(err))
	}
	b.broadcasts.Add(ctx, 1, metric.WithAttributes(attribute.Bool("accepted", true)))

	span.SetAttributes(
		attribute.String("hash", signed.Hash().Hex()),
		attribute.Int64("nonce", int64(nonce)),
		attribute.Int64("gas", int64(gas)),
	)
	span.SetStatus(codes.Ok, "submitted")

	b.logger.Info(ctx, "transaction submitted",
		"hash", signed.Hash().Hex(),
		"nonce", nonce,
		"gas", gas,
		"max_fee", feeCap.String(),
	)

	return &domain.TxResult{
		Hash:                 signed.Hash(),
		From:                 b.from,
		Nonce:                nonce,
		GasLimit:             gas,
		MaxFeePerGas:         feeCap,
		MaxPriorityFeePerGas: tipCap,
	}, nil
}

// Status returns the receipt status of hash.
func (b *Broadcaster) Status(ctx context.Context, hash common.Hash) (*domain.Receipt, error) {
	return b.receipts.Status(ctx, hash)
}

// WaitMined blocks until hash is mined or ctx ends.
func (b *Broadcaster) WaitMined(ctx context.Context, hash common.Hash, interval time.Duration) (*domain.Receipt, error) {
	return b.receipts.WaitMined(ctx, hash, interval)
}
