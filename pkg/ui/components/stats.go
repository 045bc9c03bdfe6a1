package components

import (
	"fmt"
	"time"

	"github.com/fd1az/balancer-connector/pkg/ui/theme"
)

// Stats holds watcher counters for display.
type Stats struct {
	Blocks    int64
	Quotes    int64
	Failures  int64
	latencies time.Duration
}

// StatsComponent renders watcher statistics.
type StatsComponent struct {
	stats Stats
}

// NewStatsComponent creates a new stats component.
func NewStatsComponent() *StatsComponent {
	return &StatsComponent{}
}

// Record counts one block and whether it was quoted.
func (s *StatsComponent) Record(quoted bool, latency time.Duration) {
	s.stats.Blocks++
	if quoted {
		s.stats.Quotes++
		s.stats.latencies += latency
	} else {
		s.stats.Failures++
	}
}

// Get returns a copy of the counters.
func (s *StatsComponent) Get() Stats {
	return s.stats
}

// AvgLatency is the mean latency of successful quotes.
func (s Stats) AvgLatency() time.Duration {
	if s.Quotes == 0 {
		return 0
	}
	return s.latencies / time.Duration(s.Quotes)
}

// View renders the stats component.
func (s *StatsComponent) View() string {

	failures := theme.Value.Render(fmt.Sprintf("%d", s.stats.Failures))
	if s.stats.Failures > 0 {
		failures = theme.BadBold.Render(fmt.Sprintf("%d", s.stats.Failures))
	}

	return theme.Faint.Render("STATS") + "\n" +
		fmt.Sprintf("Blocks: %s  │  Quoted: %s  │  Failed: %s  │  Avg latency: %s",
			theme.Value.Render(fmt.Sprintf("%d", s.stats.Blocks)),
			theme.Value.Render(fmt.Sprintf("%d", s.stats.Quotes)),
			failures,
			theme.Value.Render(fmt.Sprintf("%dms", s.stats.AvgLatency().Milliseconds())),
		)
}
