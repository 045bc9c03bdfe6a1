// Package components provides reusable TUI components.
package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/shopspring/decimal"

	"github.com/fd1az/balancer-connector/pkg/ui/theme"
)

// QuoteRow is one block in the quote history.
type QuoteRow struct {
	BlockNumber uint64
	Time        string
	Side        string
	Price       decimal.Decimal
	Hops        int
	LatencyMs   int64
	Error       string
}

// HistoryComponent renders recent block quotes, newest first.
type HistoryComponent struct {
	rows    []QuoteRow
	maxRows int
	table   table.Model
}

// NewHistoryComponent creates a history holding at most maxRows quotes
// and showing height of them at once.
func NewHistoryComponent(maxRows, height int) *HistoryComponent {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Block", Width: 10},
			{Title: "Time", Width: 8},
			{Title: "Side", Width: 4},
			{Title: "Price", Width: 18},
			{Title: "Hops", Width: 4},
			{Title: "ms", Width: 6},
		}),
		table.WithHeight(height),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).Foreground(theme.Lilac)
	t.SetStyles(styles)

	return &HistoryComponent{
		rows:    make([]QuoteRow, 0, maxRows),
		maxRows: maxRows,
		table:   t,
	}
}

// Add prepends a quote to the history.
func (h *HistoryComponent) Add(row QuoteRow) {
	h.rows = append([]QuoteRow{row}, h.rows...)
	if len(h.rows) > h.maxRows {
		h.rows = h.rows[:h.maxRows]
	}
	h.sync()
}

// Len returns the number of stored quotes.
func (h *HistoryComponent) Len() int {
	return len(h.rows)
}

// Clear drops all quotes.
func (h *HistoryComponent) Clear() {
	h.rows = h.rows[:0]
	h.sync()
}

// ScrollUp moves the cursor one row up.
func (h *HistoryComponent) ScrollUp() {
	h.table.MoveUp(1)
}

// ScrollDown moves the cursor one row down.
func (h *HistoryComponent) ScrollDown() {
	h.table.MoveDown(1)
}

func (h *HistoryComponent) sync() {
	rows := make([]table.Row, 0, len(h.rows))
	for _, r := range h.rows {
		price := r.Price.StringFixed(6)
		if r.Error != "" {
			price = "no quote"
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", r.BlockNumber),
			r.Time,
			r.Side,
			price,
			fmt.Sprintf("%d", r.Hops),
			fmt.Sprintf("%d", r.LatencyMs),
		})
	}
	h.table.SetRows(rows)
}

// View renders the history table.
func (h *HistoryComponent) View() string {
	if len(h.rows) == 0 {
		return theme.Header.Render("HISTORY") + "\n\n" +
			theme.Faint.Render("  No quotes yet...")
	}
	return theme.Header.Render(fmt.Sprintf("HISTORY (last %d)", h.maxRows)) + "\n\n" + h.table.View()
}
