package reporter

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fd1az/balancer-connector/business/swap/app"
	"github.com/fd1az/balancer-connector/business/swap/domain"
)

var _ app.Reporter = (*ConsoleReporter)(nil)

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a ConsoleReporter writing to out, or stdout
// when out is nil.
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleReporter{out: out}
}

// Start initializes the console reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	fmt.Fprintln(r.out, "Quote Watcher Started")
	fmt.Fprintln(r.out, "=====================")
	return nil
}

// Report prints one block's quote.
func (r *ConsoleReporter) Report(report domain.QuoteReport) {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "--------------------------------------------------------------------------------")
	fmt.Fprintf(r.out, "Block:          #%d\n", blockNumber(report))
	fmt.Fprintf(r.out, "Timestamp:      %s\n", report.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(r.out, "Pair:           %s (%s)\n", report.Pair.String(), report.Side)

	if report.Err != nil {
		fmt.Fprintf(r.out, "Error:          %s\n", report.Err)
		return
	}

	q := report.Quote
	fmt.Fprintf(r.out, "Pay:            %s\n", q.AmountIn().String())
	fmt.Fprintf(r.out, "Receive:        %s\n", q.AmountOut().String())
	fmt.Fprintf(r.out, "Price:          %s %s\n", q.AdjustedPrice().StringFixed(6), q.Price().Pair())
	fmt.Fprintf(r.out, "Bound:          %s (%d%% slippage)\n", bound(q), q.MaxSlippagePercent)
	fmt.Fprintf(r.out, "Route:          %d hop(s), best of %d path(s)\n", q.SelectedPath.Hops(), len(q.AllPaths))
	if report.GasPrice != nil {
		fmt.Fprintf(r.out, "Gas:            %s gwei\n", report.GasPrice.Gwei().StringFixed(2))
	}
	fmt.Fprintf(r.out, "Latency:        %s\n", report.Latency.Round(time.Millisecond))
}

// UpdateConnectionStatus outputs connection status changes.
func (r *ConsoleReporter) UpdateConnectionStatus(name string, connected bool, latency time.Duration) {
	status := "disconnected"
	if connected {
		status = fmt.Sprintf("connected (%s)", latency.Round(time.Millisecond))
	}
	fmt.Fprintf(r.out, "[%s] %s: %s\n", time.Now().Format("15:04:05"), name, status)
}

// Stop gracefully shuts down the console reporter.
func (r *ConsoleReporter) Stop() error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Quote Watcher Stopped")
	return nil
}
