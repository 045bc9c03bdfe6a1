package components

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fd1az/balancer-connector/pkg/ui/theme"
)

// QuoteDetail is the latest quote as displayed in the main panel.
type QuoteDetail struct {
	BlockNumber uint64
	Pair        string
	Side        string
	AmountIn    string
	AmountOut   string
	Price       decimal.Decimal
	Limit       string
	Slippage    int
	Hops        int
	Paths       int
	Error       string
}

// QuoteComponent renders the latest quote and how it moved from the
// previous one.
type QuoteComponent struct {
	pair     string
	current  *QuoteDetail
	previous decimal.Decimal
}

// NewQuoteComponent creates a quote panel for pair.
func NewQuoteComponent(pair string) *QuoteComponent {
	return &QuoteComponent{pair: pair}
}

// Update replaces the displayed quote. Failed quotes keep the previous
// price as the reference.
func (q *QuoteComponent) Update(d QuoteDetail) {
	if q.current != nil && q.current.Error == "" {
		q.previous = q.current.Price
	}
	if d.Pair != "" {
		q.pair = d.Pair
	}
	q.current = &d
}

// Change is the relative move against the previous successful quote, in
// basis points. It is zero until two quotes exist.
func (q *QuoteComponent) Change() decimal.Decimal {
	if q.current == nil || q.current.Error != "" || q.previous.IsZero() {
		return decimal.Zero
	}
	return q.current.Price.Sub(q.previous).Div(q.previous).Mul(decimal.NewFromInt(10_000))
}

// View renders the quote panel.
func (q *QuoteComponent) View() string {

	var b strings.Builder
	b.WriteString(theme.Header.Render(fmt.Sprintf("QUOTE (%s)", q.pair)))
	b.WriteString("\n\n")

	if q.current == nil {
		b.WriteString(theme.Faint.Render("  Waiting for the first block..."))
		return b.String()
	}
	d := q.current

	if d.Error != "" {
		fmt.Fprintf(&b, "  Block #%d\n\n", d.BlockNumber)
		b.WriteString(theme.Bad.Render("  " + d.Error))
		b.WriteString("\n")
		return b.String()
	}

	change := q.Change()
	changeStyle := theme.Good
	if change.IsNegative() {
		changeStyle = theme.Bad
	}

	fmt.Fprintf(&b, "  %-12s %s\n", "Block", theme.Faint.Render(fmt.Sprintf("#%d", d.BlockNumber)))
	fmt.Fprintf(&b, "  %-12s %s\n", "Side", theme.Value.Render(d.Side))
	fmt.Fprintf(&b, "  %-12s %s\n", "Pay", theme.Value.Render(d.AmountIn))
	fmt.Fprintf(&b, "  %-12s %s\n", "Receive", theme.Value.Render(d.AmountOut))
	fmt.Fprintf(&b, "  %-12s %s %s\n", "Price", theme.Value.Render(d.Price.StringFixed(6)),
		changeStyle.Render(fmt.Sprintf("(%+.1f bps)", change.InexactFloat64())))
	b.WriteString(theme.Faint.Render("  " + strings.Repeat("─", 40)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %-12s %s\n", "Slippage", theme.Faint.Render(fmt.Sprintf("%d%%", d.Slippage)))
	fmt.Fprintf(&b, "  %-12s %s\n", "Bound", theme.Faint.Render(d.Limit))
	fmt.Fprintf(&b, "  %-12s %s\n", "Route", theme.Faint.Render(fmt.Sprintf("%d hop(s), best of %d path(s)", d.Hops, d.Paths)))

	return b.String()
}
