package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	chainDomain "github.com/fd1az/balancer-connector/business/chain/domain"
	swapApp "github.com/fd1az/balancer-connector/business/swap/app"
	"github.com/fd1az/balancer-connector/business/swap/domain"
	"github.com/fd1az/balancer-connector/internal/apperror"
	"github.com/fd1az/balancer-connector/internal/asset"
)

// Vault swaps do not report gas before simulation, so price responses
// carry a per-hop estimate.
const (
	baseSwapGas   uint64 = 90_000
	perHopSwapGas uint64 = 60_000
)

// EstimateSwapGas is the gas a swap over hops pools is assumed to use.
func EstimateSwapGas(hops int) uint64 {
	if hops < 1 {
		hops = 1
	}
	return baseSwapGas + perHopSwapGas*uint64(hops)
}

type estimate struct {
	connector *swapApp.Connector
	side      domain.Side
	base      *asset.Token
	quote     *asset.Token
	amount    asset.Amount
	result    *domain.Quote
}

func (s *Server) estimate(ctx context.Context, p tradeParams) (*estimate, error) {
	if err := required("chain", p.Chain, "network", p.Network, "base", p.Base,
		"quote", p.Quote, "amount", p.Amount, "side", p.Side); err != nil {
		return nil, err
	}
	side, err := domain.ParseSide(p.Side)
	if err != nil {
		return nil, err
	}

	c, err := s.connectors.GetInstance(p.Chain, p.Network)
	if err != nil {
		return nil, err
	}
	if err := c.Init(ctx); err != nil {
		return nil, err
	}

	base, err := c.Token(p.Base)
	if err != nil {
		return nil, err
	}
	quote, err := c.Token(p.Quote)
	if err != nil {
		return nil, err
	}
	amount, err := asset.ParseString(base, p.Amount)
	if err != nil || amount.IsZero() {
		return nil, apperror.New(apperror.CodeInvalidAmount,
			apperror.WithMessage("amount must be a positive decimal within the base token precision"),
			apperror.WithContext(p.Amount))
	}

	opts := swapApp.EstimateOptions{AllowedSlippage: p.AllowedSlippage, PoolID: p.PoolID}
	var q *domain.Quote
	if side == domain.SideBuy {
		q, err = c.EstimateBuyTrade(ctx, quote, base, amount.Raw(), opts)
	} else {
		q, err = c.EstimateSellTrade(ctx, base, quote, amount.Raw(), opts)
	}
	if err != nil {
		return nil, err
	}

	return &estimate{connector: c, side: side, base: base, quote: quote, amount: amount, result: q}, nil
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req PriceRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	est, err := s.estimate(r.Context(), req.tradeParams)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := est.result

	resp := PriceResponse{
		Network:        est.connector.Name(),
		Timestamp:      start.UnixMilli(),
		Base:           est.base.Symbol(),
		Quote:          est.quote.Symbol(),
		Amount:         est.amount.ToDecimal(),
		RawAmount:      est.amount.Raw().String(),
		ExpectedAmount: q.QuoteAmount().ToDecimal(),
		Price:          q.AdjustedPrice(),
		MaxSlippage:    q.MaxSlippagePercent,
		Paths:          len(q.AllPaths),
		Hops:           q.SelectedPath.Hops(),
		GasLimit:       EstimateSwapGas(q.SelectedPath.Hops()),
	}

	if e, err := s.chains.Endpoint(req.Chain, req.Network); err == nil && e.Gas != nil {
		if gp, err := e.Gas.GetGasPrice(r.Context()); err == nil {
			resp.GasPrice = gp.Gwei()
			resp.GasCost = chainDomain.NewGasCost(resp.GasLimit, gp).Native()
		} else {
			s.logger.Warn(r.Context(), "gas price unavailable", "network", est.connector.Name(), "error", err)
		}
	}

	resp.Latency = latencySince(start)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req TradeRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	limit := decimal.Zero
	if req.LimitPrice != "" {
		var err error
		if limit, err = decimal.NewFromString(req.LimitPrice); err != nil || limit.IsNegative() {
			s.writeError(w, r, apperror.New(apperror.CodeInvalidInput,
				apperror.WithMessage("limitPrice must be a non-negative decimal"),
				apperror.WithContext(req.LimitPrice)))
			return
		}
	}
	overrides, err := req.overrides()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	est, err := s.estimate(r.Context(), req.tradeParams)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := est.result

	sender := est.connector.Sender()
	if req.Address != "" {
		if !common.IsHexAddress(req.Address) {
			s.writeError(w, r, apperror.New(apperror.CodeInvalidAddress, apperror.WithContext(req.Address)))
			return
		}
		// the Vault pays out to the signer, so the caller must be it
		if sender != (common.Address{}) && common.HexToAddress(req.Address) != sender {
			s.writeError(w, r, apperror.New(apperror.CodeValidationError,
				apperror.WithMessage("address does not match the configured wallet"),
				apperror.WithContext(req.Address)))
			return
		}
	}

	if err := swapApp.CheckLimitPrice(est.side, q.AdjustedPrice(), limit); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := est.connector.ExecuteTrade(r.Context(), q, sender, sender, overrides)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := TradeResponse{
		Network:   est.connector.Name(),
		Timestamp: start.UnixMilli(),
		Base:      est.base.Symbol(),
		Quote:     est.quote.Symbol(),
		Amount:    est.amount.ToDecimal(),
		RawAmount: est.amount.Raw().String(),
		Price:     q.AdjustedPrice(),
		Limit:     res.Built.Limit.String(),
		Deadline:  res.Built.Deadline.Unix(),
		Nonce:     res.Tx.Nonce,
		TxHash:    res.Tx.Hash.Hex(),
		GasLimit:  res.Tx.GasLimit,
	}
	if est.side == domain.SideBuy {
		resp.ExpectedIn = q.AmountIn().ToDecimal()
	} else {
		resp.ExpectedOut = q.AmountOut().ToDecimal()
	}

	resp.Latency = latencySince(start)
	writeJSON(w, http.StatusOK, resp)
}

func (req TradeRequest) overrides() (chainDomain.TxOverrides, error) {
	maxFee, ok := parseWei(req.MaxFeePerGas)
	if !ok {
		return chainDomain.TxOverrides{}, apperror.New(apperror.CodeInvalidInput,
			apperror.WithMessage("maxFeePerGas must be a wei integer"), apperror.WithContext(req.MaxFeePerGas))
	}
	tip, ok := parseWei(req.MaxPriorityFeePerGas)
	if !ok {
		return chainDomain.TxOverrides{}, apperror.New(apperror.CodeInvalidInput,
			apperror.WithMessage("maxPriorityFeePerGas must be a wei integer"), apperror.WithContext(req.MaxPriorityFeePerGas))
	}
	return chainDomain.TxOverrides{
		GasLimit:             req.GasLimit,
		Nonce:                req.Nonce,
		MaxFeePerGas:         maxFee,
		MaxPriorityFeePerGas: tip,
	}, nil
}

func (s *Server) handlePoll(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req PollRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := required("chain", req.Chain, "network", req.Network, "txHash", req.TxHash); err != nil {
		s.writeError(w, r, err)
		return
	}
	raw := common.FromHex(req.TxHash)
	if len(raw) != common.HashLength {
		s.writeError(w, r, apperror.New(apperror.CodeInvalidInput,
			apperror.WithMessage("txHash must be 32 bytes of hex"), apperror.WithContext(req.TxHash)))
		return
	}

	receipt, err := s.chains.Poll(r.Context(), req.Chain, req.Network, common.BytesToHash(raw))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, PollResponse{
		Network:     req.Chain + "/" + req.Network,
		Timestamp:   start.UnixMilli(),
		TxHash:      receipt.Hash.Hex(),
		TxStatus:    int(receipt.Status),
		BlockNumber: receipt.BlockNumber,
		GasUsed:     receipt.GasUsed,
	})
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req BalancesRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := required("chain", req.Chain, "network", req.Network, "address", req.Address); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !common.IsHexAddress(req.Address) {
		s.writeError(w, r, apperror.New(apperror.CodeInvalidAddress, apperror.WithContext(req.Address)))
		return
	}

	amounts, err := s.chains.Balances(r.Context(), req.Chain, req.Network, common.HexToAddress(req.Address), req.TokenSymbols)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	balances := make(map[string]decimal.Decimal, len(amounts))
	for _, a := range amounts {
		balances[a.Token().Symbol()] = a.ToDecimal()
	}
	writeJSON(w, http.StatusOK, BalancesResponse{
		Network:   req.Chain + "/" + req.Network,
		Timestamp: start.UnixMilli(),
		Latency:   latencySince(start),
		Balances:  balances,
	})
}

func (s *Server) handleTokens(w http.ResponseWriter, r *http.Request) {
	chain, network := r.URL.Query().Get("chain"), r.URL.Query().Get("network")
	if err := required("chain", chain, "network", network); err != nil {
		s.writeError(w, r, err)
		return
	}

	c, err := s.connectors.GetInstance(chain, network)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := c.Init(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	reg, err := c.Tokens()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	tokens := make([]TokenInfo, 0, reg.Count())
	for _, t := range reg.All() {
		tokens = append(tokens, TokenInfo{
			ChainID:  t.ChainID(),
			Address:  t.Address().Hex(),
			Symbol:   t.Symbol(),
			Name:     t.Name(),
			Decimals: t.Decimals(),
		})
	}
	writeJSON(w, http.StatusOK, TokensResponse{Network: c.Name(), Tokens: tokens})
}
