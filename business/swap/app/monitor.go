package app

import (
	"context"
	"sync"
	"time"

	chainDomain "github.com/fd1az/balancer-connector/business/chain/domain"
	"github.com/fd1az/balancer-connector/business/swap/domain"
	"github.com/fd1az/balancer-connector/internal/apperror"
	"github.com/fd1az/balancer-connector/internal/asset"
	"github.com/fd1az/balancer-connector/internal/logger"
)

// MonitorConfig is the pair the monitor re-quotes on every block.
type MonitorConfig struct {
	Pair     domain.Pair
	Side     domain.Side
	Amount   string // whole tokens of the base, e.g. "1.5"
	Slippage string
}

// Monitor quotes one pair per new block and reports the result.
type Monitor struct {
	connector *Connector
	blocks    BlockSource
	gas       GasSource
	reporter  Reporter
	config    MonitorConfig
	logger    logger.LoggerInterface

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMonitor creates a Monitor. gas may be nil.
func NewMonitor(
	connector *Connector,
	blocks BlockSource,
	gas GasSource,
	reporter Reporter,
	config MonitorConfig,
	log logger.LoggerInterface,
) *Monitor {
	if log == nil {
		log = logger.Nop()
	}
	return &Monitor{
		connector: connector,
		blocks:    blocks,
		gas:       gas,
		reporter:  reporter,
		config:    config,
		logger:    log,
	}
}

// Start initializes the connector, subscribes to heads and begins the
// quote loop.
func (m *Monitor) Start(ctx context.Context) error {
	m.logger.Info(ctx, "starting quote monitor", "pair", m.config.Pair.String(), "side", string(m.config.Side))

	initStart := time.Now()
	if err := m.connector.Init(ctx); err != nil {
		return err
	}
	initLatency := time.Since(initStart)

	ctx, m.cancel = context.WithCancel(ctx)

	blocks, err := m.blocks.Subscribe(ctx)
	if err != nil {
		m.cancel()
		return err
	}

	if err := m.reporter.Start(ctx); err != nil {
		m.cancel()
		return err
	}
	m.reporter.UpdateConnectionStatus(m.connector.Name(), true, initLatency)

	m.wg.Add(1)
	go m.run(ctx, blocks)

	return nil
}

func (m *Monitor) run(ctx context.Context, blocks <-chan *chainDomain.Block) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info(ctx, "monitor stopping", "reason", ctx.Err())
			return
		case block, ok := <-blocks:
			if !ok {
				m.logger.Warn(ctx, "block subscription closed")
				m.reporter.UpdateConnectionStatus(m.connector.Name(), false, 0)
				return
			}
			if block == nil {
				continue
			}
			m.reporter.Report(m.QuoteBlock(ctx, latest(block, blocks)))
		}
	}
}

// latest drains already queued heads so a slow quote never falls behind.
func latest(block *chainDomain.Block, blocks <-chan *chainDomain.Block) *chainDomain.Block {
	for {
		select {
		case next, ok := <-blocks:
			if !ok || next == nil {
				return block
			}
			block = next
		default:
			return block
		}
	}
}

// QuoteBlock prices the configured pair at block.
func (m *Monitor) QuoteBlock(ctx context.Context, block *chainDomain.Block) domain.QuoteReport {
	start := time.Now()
	report := domain.QuoteReport{
		Block:     block,
		Pair:      m.config.Pair,
		Side:      m.config.Side,
		Timestamp: start,
	}

	report.Quote, report.Err = m.quote(ctx)
	report.Latency = time.Since(start)

	if m.gas != nil {
		gp, err := m.gas.GetGasPrice(ctx)
		if err != nil {
			m.logger.Warn(ctx, "gas price unavailable", "error", err)
		} else {
			report.GasPrice = gp
		}
	}

	if report.Err != nil {
		m.logger.Debug(ctx, "block quote failed", "block", block.Number, "error", report.Err)
	} else {
		m.logger.Debug(ctx, "block quoted", "block", block.Number,
			"price", report.Quote.AdjustedPrice().String(), "latency", report.Latency)
	}
	return report
}

func (m *Monitor) quote(ctx context.Context) (*domain.Quote, error) {
	base, err := m.connector.Token(m.config.Pair.Base)
	if err != nil {
		return nil, err
	}
	quote, err := m.connector.Token(m.config.Pair.Quote)
	if err != nil {
		return nil, err
	}

	amount, err := asset.ParseString(base, m.config.Amount)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidAmount, m.config.Amount)
	}

	opts := EstimateOptions{AllowedSlippage: m.config.Slippage}
	if m.config.Side == domain.SideBuy {
		return m.connector.EstimateBuyTrade(ctx, quote, base, amount.Raw(), opts)
	}
	return m.connector.EstimateSellTrade(ctx, base, quote, amount.Raw(), opts)
}

// Stop ends the quote loop and the reporter.
func (m *Monitor) Stop() error {
	m.logger.Info(context.Background(), "stopping quote monitor")
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	return m.reporter.Stop()
}
