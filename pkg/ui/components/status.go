package components

import (
	"fmt"
	"sort"
	"time"

	"github.com/fd1az/balancer-connector/pkg/ui/theme"
)

// ConnectionStatus represents a connection's status.
type ConnectionStatus struct {
	Name       string
	Connected  bool
	Latency    time.Duration
	LastUpdate time.Time
}

// StatusComponent renders connection status.
type StatusComponent struct {
	connections map[string]ConnectionStatus
}

// NewStatusComponent creates a new status component.
func NewStatusComponent() *StatusComponent {
	return &StatusComponent{connections: make(map[string]ConnectionStatus)}
}

// Update updates a connection's status.
func (s *StatusComponent) Update(status ConnectionStatus) {
	s.connections[status.Name] = status
}

// Connected reports whether name is known and connected.
func (s *StatusComponent) Connected(name string) bool {
	return s.connections[name].Connected
}

// View renders the connections in name order on one line.
func (s *StatusComponent) View() string {
	if len(s.connections) == 0 {
		return theme.Faint.Render("○ no connections")
	}

	names := make([]string, 0, len(s.connections))
	for name := range s.connections {
		names = append(names, name)
	}
	sort.Strings(names)

	var result string
	for i, name := range names {
		conn := s.connections[name]
		style := theme.GoodBold
		line := "● " + name
		if !conn.Connected {
			style = theme.BadBold
			line = "○ " + name + " (disconnected)"
		} else if conn.Latency > 0 {
			line += fmt.Sprintf(" (%dms)", conn.Latency.Milliseconds())
		}
		if i > 0 {
			result += "  │  "
		}
		result += style.Render(line)
	}
	return result
}
