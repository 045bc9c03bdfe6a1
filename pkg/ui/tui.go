package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/balancer-connector/pkg/ui/components"
	"github.com/fd1az/balancer-connector/pkg/ui/theme"
)

// StartupStep represents a step in the startup process.
type StartupStep struct {
	Name   string
	Status string // "pending", "connecting", "connected", "failed"
}

// Phase represents the current UI phase.
type Phase string

const (
	PhaseWelcome   Phase = "welcome"
	PhaseStartup   Phase = "startup"
	PhaseDashboard Phase = "dashboard"
)

// WelcomeDuration is how long the welcome screen shows before auto-advancing.
const WelcomeDuration = 2 * time.Second

// maxErrors is the size of the persistent error panel.
const maxErrors = 3

var startupOrder = []string{"config", "chain", "tokens", "router"}

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	quote   *components.QuoteComponent
	history *components.HistoryComponent
	stats   *components.StatsComponent
	status  *components.StatusComponent

	keys KeyMap
	help help.Model

	phase        Phase
	welcomeStart time.Time

	quitting     bool
	paused       bool
	width        int
	height       int
	currentBlock uint64
	gasPrice     float64
	lastUpdate   time.Time
	lastQuote    time.Time
	errors       []ErrorEntry
	logs         []string
	activityFeed []string

	startupComplete bool
	startupSteps    map[string]*StartupStep
	startupTime     time.Time
}

// New creates a new TUI model for pair.
func New(pair string) Model {
	now := time.Now()
	return Model{
		quote:        components.NewQuoteComponent(pair),
		history:      components.NewHistoryComponent(50, 10),
		stats:        components.NewStatsComponent(),
		status:       components.NewStatusComponent(),
		keys:         DefaultKeyMap(),
		help:         help.New(),
		phase:        PhaseWelcome,
		welcomeStart: now,
		errors:       make([]ErrorEntry, 0, maxErrors),
		logs:         make([]string, 0, 5),
		activityFeed: make([]string, 0, 6),
		startupSteps: map[string]*StartupStep{
			"config": {Name: "Loading configuration", Status: "pending"},
			"chain":  {Name: "Connecting to node", Status: "pending"},
			"tokens": {Name: "Loading token list", Status: "pending"},
			"router": {Name: "Subscribing to heads", Status: "pending"},
		},
		startupTime: now,
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Phase returns the current phase.
func (m Model) Phase() Phase {
	return m.phase
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		if m.phase == PhaseWelcome {
			m = m.leaveWelcome()
			return m, tickCmd()
		}
		switch {
		case key.Matches(msg, m.keys.Clear):
			m.history.Clear()
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
		case key.Matches(msg, m.keys.Up):
			m.history.ScrollUp()
		case key.Matches(msg, m.keys.Down):
			m.history.ScrollDown()
		case key.Matches(msg, m.keys.ClearErrors):
			m.errors = make([]ErrorEntry, 0, maxErrors)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case TickMsg:
		if m.phase == PhaseWelcome && time.Since(m.welcomeStart) >= WelcomeDuration {
			m = m.leaveWelcome()
		}
		return m, tickCmd()

	case QuoteMsg:
		if m.paused {
			return m, nil
		}
		m = m.applyQuote(msg)

	case ConnectionStatusMsg:
		m.status.Update(components.ConnectionStatus{
			Name:       msg.Name,
			Connected:  msg.Connected,
			Latency:    msg.Latency,
			LastUpdate: time.Now(),
		})
		m.lastUpdate = time.Now()
		m.startupSteps["config"].Status = "done"
		if msg.Connected {
			m.startupSteps["chain"].Status = "connected"
			m.startupSteps["tokens"].Status = "done"
		} else {
			m.startupSteps["chain"].Status = "connecting"
		}
		m.checkStartup()

	case BlockMsg:
		m.currentBlock = msg.Number
		m.lastUpdate = time.Now()
		m.startupSteps["router"].Status = "done"
		m.checkStartup()

	case GasPriceMsg:
		m.gasPrice = msg.GweiPrice
		m.lastUpdate = time.Now()

	case ErrorMsg:
		m = m.addError(msg.Error.Error())
		m.logs = addLine(m.logs, 5, fmt.Sprintf("error: %s", msg.Error.Error()))

	case LogMsg:
		m.logs = addLine(m.logs, 5, fmt.Sprintf("%s: %s", msg.Level, msg.Message))

	case StartupMsg:
		if step, ok := m.startupSteps[msg.Step]; ok {
			step.Status = msg.Status
		}
		m.checkStartup()
	}

	return m, nil
}

func (m Model) leaveWelcome() Model {
	m.phase = PhaseStartup
	m.startupTime = time.Now()
	// Update must not call Send itself
	if OnStartModules != nil {
		go OnStartModules()
	}
	return m
}

func (m *Model) checkStartup() {
	for _, step := range m.startupSteps {
		if step.Status != "connected" && step.Status != "done" {
			return
		}
	}
	m.startupComplete = true
}

func (m Model) applyQuote(msg QuoteMsg) Model {
	m.currentBlock = msg.BlockNumber
	m.lastUpdate = time.Now()
	m.lastQuote = time.Now()
	m.startupComplete = true

	m.quote.Update(components.QuoteDetail{
		BlockNumber: msg.BlockNumber,
		Pair:        msg.Pair,
		Side:        msg.Side,
		AmountIn:    msg.AmountIn,
		AmountOut:   msg.AmountOut,
		Price:       msg.Price,
		Limit:       msg.Limit,
		Slippage:    msg.Slippage,
		Hops:        msg.Hops,
		Paths:       msg.Paths,
		Error:       msg.Error,
	})
	m.history.Add(components.QuoteRow{
		BlockNumber: msg.BlockNumber,
		Time:        msg.Timestamp.Format("15:04:05"),
		Side:        msg.Side,
		Price:       msg.Price,
		Hops:        msg.Hops,
		LatencyMs:   msg.Latency.Milliseconds(),
		Error:       msg.Error,
	})
	m.stats.Record(!msg.Failed(), msg.Latency)

	if msg.Failed() {
		m = m.addError(fmt.Sprintf("block #%d: %s", msg.BlockNumber, msg.Error))
		m.activityFeed = addLine(m.activityFeed, 6, fmt.Sprintf("[%s] #%d no quote", msg.Timestamp.Format("15:04:05"), msg.BlockNumber))
	} else {
		m.activityFeed = addLine(m.activityFeed, 6, fmt.Sprintf("[%s] #%d %s %s -> %s",
			msg.Timestamp.Format("15:04:05"), msg.BlockNumber, msg.Side, msg.AmountIn, msg.AmountOut))
	}
	return m
}

func (m Model) addError(text string) Model {
	m.errors = append(m.errors, ErrorEntry{Message: text, Timestamp: time.Now()})
	if len(m.errors) > maxErrors {
		m.errors = m.errors[len(m.errors)-maxErrors:]
	}
	return m
}

// addLine appends line and keeps the last limit entries.
func addLine(lines []string, limit int, line string) []string {
	lines = append(lines, line)
	if len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return lines
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	switch m.phase {
	case PhaseWelcome:
		return m.renderWelcomeScreen()
	case PhaseStartup:
		if m.currentBlock == 0 && !m.startupComplete {
			return m.renderStartupScreen()
		}
	}

	var b strings.Builder

	b.WriteString(theme.Title.Render(" Balancer Quote Watcher "))
	b.WriteString("\n\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	left := m.quote.View()
	right := m.renderActivityFeed() + "\n\n" + m.history.View()

	if m.width > 100 {
		l := theme.Box.Width(m.width/2 - 2).Render(left)
		r := theme.Box.Width(m.width/2 - 2).Render(right)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, l, r))
	} else {
		width := m.width - 4
		if width < 40 {
			width = 40
		}
		b.WriteString(theme.Box.Width(width).Render(left))
		b.WriteString("\n")
		b.WriteString(theme.Box.Width(width).Render(right))
	}
	b.WriteString("\n")
	b.WriteString(m.stats.View())
	b.WriteString("\n\n")

	if len(m.errors) > 0 {
		b.WriteString(theme.BadBold.Render("ERRORS"))
		b.WriteString(theme.Faint.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, e := range m.errors {
			ago := time.Since(e.Timestamp).Round(time.Second)
			b.WriteString(theme.Bad.Render(fmt.Sprintf("  • %s ", e.Message)))
			b.WriteString(theme.Faint.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.paused {
		b.WriteString(theme.Paused.Render("⏸ PAUSED"))
		b.WriteString(" • ")
	}
	b.WriteString(theme.Help.Render(m.help.View(m.keys)))

	return b.String()
}

func (m Model) renderActivityFeed() string {
	var sb strings.Builder
	sb.WriteString(theme.Header.Render("LIVE ACTIVITY"))
	sb.WriteString("\n\n")

	if len(m.activityFeed) == 0 {
		sb.WriteString(theme.Faint.Render("  Waiting for blocks..."))
		return sb.String()
	}
	for _, line := range m.activityFeed {
		if strings.Contains(line, "no quote") {
			sb.WriteString(theme.Bad.Render("  " + line))
		} else {
			sb.WriteString(theme.Faint.Render("  " + line))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) renderWelcomeScreen() string {
	titleStyle := theme.Header
	greenStyle := theme.Good

	dots := strings.Repeat(".", int(time.Since(m.welcomeStart).Milliseconds()/300)%4)

	logo := `
   ██████╗  █████╗ ██╗      █████╗ ███╗   ██╗ ██████╗███████╗██████╗
   ██╔══██╗██╔══██╗██║     ██╔══██╗████╗  ██║██╔════╝██╔════╝██╔══██╗
   ██████╔╝███████║██║     ███████║██╔██╗ ██║██║     █████╗  ██████╔╝
   ██╔══██╗██╔══██║██║     ██╔══██║██║╚██╗██║██║     ██╔══╝  ██╔══██╗
   ██████╔╝██║  ██║███████╗██║  ██║██║ ╚████║╚██████╗███████╗██║  ██║
   ╚═════╝ ╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝╚═╝  ╚═══╝ ╚═════╝╚══════╝╚═╝  ╚═╝
`
	var sb strings.Builder
	sb.WriteString("\n\n\n\n")
	sb.WriteString(titleStyle.Render(logo))
	sb.WriteString("\n")
	sb.WriteString(theme.Faint.Render("                  Q U O T E   W A T C H E R"))
	sb.WriteString("\n\n\n")
	sb.WriteString(greenStyle.Render(fmt.Sprintf("                      Initializing%s", dots)))
	sb.WriteString("\n\n")
	sb.WriteString(theme.Faint.Render("               Press any key to skip, or wait..."))
	sb.WriteString("\n")
	return sb.String()
}

func (m Model) renderStartupScreen() string {
	successStyle := theme.Good
	failedStyle := theme.Bad

	var sb strings.Builder
	sb.WriteString("\n\n")
	sb.WriteString(theme.Header.Render("  Balancer Quote Watcher"))
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render("  Starting up..."))
	sb.WriteString("\n\n")

	for _, k := range startupOrder {
		step := m.startupSteps[k]

		var icon, statusText string
		style := theme.Faint
		switch step.Status {
		case "connected", "done":
			icon, statusText, style = "✓", "Ready", successStyle
		case "connecting":
			spinners := []string{"◐", "◓", "◑", "◒"}
			icon = spinners[int(time.Since(m.startupTime).Milliseconds()/200)%len(spinners)]
			statusText, style = "Connecting...", theme.Warn
		case "failed":
			icon, statusText, style = "✗", "Failed", failedStyle
		default:
			icon, statusText = "○", "Pending"
		}

		sb.WriteString(fmt.Sprintf("  %s %s %s\n", style.Render(icon), theme.Faint.Render(step.Name), style.Render(statusText)))
	}

	sb.WriteString("\n")
	sb.WriteString(theme.Faint.Render(fmt.Sprintf("  Elapsed: %s", time.Since(m.startupTime).Round(time.Second))))
	sb.WriteString("\n\n")
	sb.WriteString(theme.Faint.Render("  Waiting for the first block..."))
	sb.WriteString("\n")
	for _, line := range m.logs {
		sb.WriteString(theme.Faint.Render("  " + line))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) renderStatusBar() string {
	var parts []string

	if time.Since(m.lastQuote) < 500*time.Millisecond {
		spinners := []string{"⟳", "◐", "◓", "◑", "◒"}
		idx := int(time.Now().UnixMilli()/100) % len(spinners)
		parts = append(parts, theme.GoodBold.Render(spinners[idx]+" Quoting"))
	}

	parts = append(parts, fmt.Sprintf("Block: #%d", m.currentBlock))
	if m.gasPrice > 0 {
		parts = append(parts, fmt.Sprintf("Gas: %.1f gwei", m.gasPrice))
	}
	parts = append(parts, m.status.View())

	if !m.lastUpdate.IsZero() {
		ago := time.Since(m.lastUpdate).Round(time.Second)
		parts = append(parts, theme.Faint.Render(fmt.Sprintf("Updated: %s ago", ago)))
	}

	return strings.Join(parts, "  │  ")
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// OnStartModules is called when the welcome screen completes and modules
// should start. main sets it before running the program.
var OnStartModules func()

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
	if _, ok := msg.(StartModulesMsg); ok && OnStartModules != nil {
		OnStartModules()
	}
}
