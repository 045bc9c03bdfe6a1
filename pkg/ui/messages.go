// Package ui provides the Bubble Tea TUI for the quote watcher.
package ui

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteMsg is one block's quote. All values are formatted by the reporter;
// the UI only displays them.
type QuoteMsg struct {
	BlockNumber uint64
	Timestamp   time.Time
	Pair        string
	Side        string
	AmountIn    string
	AmountOut   string
	Price       decimal.Decimal
	Limit       string // "min out 1.23 DAI" or "max in 4.56 DAI"
	Slippage    int
	Hops        int
	Paths       int
	Latency     time.Duration
	Error       string // set when the block could not be quoted
}

// Failed reports whether the block produced no quote.
func (m QuoteMsg) Failed() bool {
	return m.Error != ""
}

// ConnectionStatusMsg reports whether the named connector is serving quotes.
type ConnectionStatusMsg struct {
	Name      string
	Connected bool
	Latency   time.Duration
}

// BlockMsg moves the head shown in the header.
type BlockMsg struct {
	Number    uint64
	Timestamp time.Time
}

// GasPriceMsg carries the network gas price read for the current block.
type GasPriceMsg struct {
	GweiPrice float64
}

// ErrorMsg ends startup with a fatal error.
type ErrorMsg struct {
	Error error
}

// TickMsg drives the spinner and the clock.
type TickMsg struct{}

// StartModulesMsg sent through Send runs OnStartModules, the same hook that
// leaving the welcome screen fires.
type StartModulesMsg struct{}

// LogMsg appends a line to the footer log.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// StartupMsg advances one row of the startup checklist.
type StartupMsg struct {
	Step    string // "config", "chain", "tokens", "router"
	Status  string // "connecting", "connected", "failed"
	Message string
}
