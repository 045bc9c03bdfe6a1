package reporter

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fd1az/balancer-connector/business/swap/app"
	"github.com/fd1az/balancer-connector/business/swap/domain"
	"github.com/fd1az/balancer-connector/pkg/ui"
)

var _ app.Reporter = (*TUIReporter)(nil)

// TUIReporter implements Reporter by sending messages to the Bubble Tea
// program.
type TUIReporter struct {
	send func(tea.Msg)
}

// NewTUIReporter creates a TUIReporter. A nil send uses ui.Send.
func NewTUIReporter(send func(tea.Msg)) *TUIReporter {
	if send == nil {
		send = ui.Send
	}
	return &TUIReporter{send: send}
}

// Start marks the head subscription step as being set up.
func (r *TUIReporter) Start(ctx context.Context) error {
	r.send(ui.StartupMsg{Step: "router", Status: "connecting"})
	return nil
}

// Report sends one block's quote to the TUI.
func (r *TUIReporter) Report(report domain.QuoteReport) {
	if report.Block != nil {
		r.send(ui.BlockMsg{Number: report.Block.Number, Timestamp: report.Block.Timestamp})
	}
	if report.GasPrice != nil {
		r.send(ui.GasPriceMsg{GweiPrice: report.GasPrice.Gwei().InexactFloat64()})
	}
	r.send(QuoteMsg(report))
}

// QuoteMsg formats a report for display.
func QuoteMsg(report domain.QuoteReport) ui.QuoteMsg {
	msg := ui.QuoteMsg{
		BlockNumber: blockNumber(report),
		Timestamp:   report.Timestamp,
		Pair:        report.Pair.String(),
		Side:        string(report.Side),
		Latency:     report.Latency,
	}
	if report.Err != nil {
		msg.Error = report.Err.Error()
		return msg
	}

	q := report.Quote
	msg.AmountIn = q.AmountIn().String()
	msg.AmountOut = q.AmountOut().String()
	msg.Price = q.AdjustedPrice()
	msg.Limit = bound(q)
	msg.Slippage = q.MaxSlippagePercent
	msg.Hops = q.SelectedPath.Hops()
	msg.Paths = len(q.AllPaths)
	return msg
}

// UpdateConnectionStatus sends connection status to the TUI.
func (r *TUIReporter) UpdateConnectionStatus(name string, connected bool, latency time.Duration) {
	r.send(ui.ConnectionStatusMsg{Name: name, Connected: connected, Latency: latency})
}

// Stop is a no-op; the program is owned by main.
func (r *TUIReporter) Stop() error {
	return nil
}
