// Package inspecttui implements a terminal dashboard that connects to
// a bridged host's devrelay websocket feed and renders every observed
// Router invocation as it happens.
package inspecttui

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gorilla/websocket"
)

// Event mirrors extensions/devrelay.Event without importing that
// package, since this TUI only ever needs the wire shape.
type Event struct {
	ClientID  string    `json:"client_id"`
	Route     string    `json:"route"`
	Seq       string    `json:"seq"`
	Preview   string    `json:"preview,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type eventMsg Event
type connErrMsg error
type connClosedMsg struct{}

// App is the root bubbletea model.
type App struct {
	conn   *websocket.Conn
	events chan tea.Msg

	lines    []string
	viewport viewport.Model

	connected bool
	lastErr   error

	width, height int
	ready         bool
}

// NewApp dials wsURL and builds the dashboard model.
func NewApp(wsURL string) (App, error) {
	if _, err := url.Parse(wsURL); err != nil {
		return App{}, fmt.Errorf("inspecttui: invalid websocket url: %w", err)
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return App{}, fmt.Errorf("inspecttui: dial: %w", err)
	}
	return App{
		conn:      conn,
		events:    make(chan tea.Msg, 64),
		connected: true,
	}, nil
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.readLoop, a.waitForEvent)
}

func (a App) readLoop() tea.Msg {
	for {
		_, data, err := a.conn.ReadMessage()
		if err != nil {
			a.events <- connClosedMsg{}
			return nil
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			a.events <- connErrMsg(err)
			continue
		}
		a.events <- eventMsg(ev)
	}
}

func (a App) waitForEvent() tea.Msg {
	return <-a.events
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if !a.ready {
			a.viewport = viewport.New(a.width, a.height-2)
			a.ready = true
		} else {
			a.viewport.Width = a.width
			a.viewport.Height = a.height - 2
		}
		a.viewport.SetContent(a.renderLines())
		return a, nil

	case eventMsg:
		a.lines = append(a.lines, formatEvent(Event(msg)))
		if len(a.lines) > 2000 {
			a.lines = a.lines[len(a.lines)-2000:]
		}
		a.viewport.SetContent(a.renderLines())
		a.viewport.GotoBottom()
		return a, a.waitForEvent

	case connErrMsg:
		a.lastErr = msg
		return a, a.waitForEvent

	case connClosedMsg:
		a.connected = false
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if a.conn != nil {
				a.conn.Close()
			}
			return a, tea.Quit
		}
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

func (a App) View() string {
	if !a.ready {
		return "connecting...\n"
	}
	status := successStyle.Render("connected")
	if !a.connected {
		status = errorStyle.Render("disconnected")
	}
	header := titleStyle.Render(fmt.Sprintf("bridge-inspect  %s  events: %d", status, len(a.lines)))
	footer := helpStyle.Render("q: quit")
	return header + "\n" + a.viewport.View() + "\n" + footer
}

func (a App) renderLines() string {
	var sb strings.Builder
	if len(a.lines) == 0 {
		sb.WriteString(subtitleStyle.Render("waiting for invocations..."))
	}
	for _, line := range a.lines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatEvent(ev Event) string {
	ts := ev.Timestamp.Format("15:04:05.000")
	line := fmt.Sprintf("%s  %s  %s  seq=%s",
		subtitleStyle.Render(ts),
		labelStyle.Render(ev.ClientID),
		valueStyle.Render(ev.Route),
		ev.Seq)
	if ev.Preview != "" {
		line += "  " + subtitleStyle.Render(ev.Preview)
	}
	return line
}

// Run starts the TUI, rendering to output (os.Stdout if nil).
func Run(wsURL string, output io.Writer) error {
	app, err := NewApp(wsURL)
	if err != nil {
		return err
	}
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if output != nil {
		opts = append(opts, tea.WithOutput(output))
	}
	p := tea.NewProgram(app, opts...)
	_, err = p.Run()
	return err
}

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorSuccess = lipgloss.Color("#22C55E")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorText    = lipgloss.Color("#CDD6F4")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).MarginBottom(1)
	subtitleStyle = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
	labelStyle    = lipgloss.NewStyle().Foreground(colorInfo).Bold(true).Width(16)
	valueStyle    = lipgloss.NewStyle().Foreground(colorText)
	successStyle  = lipgloss.NewStyle().Foreground(colorSuccess)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	helpStyle     = lipgloss.NewStyle().Foreground(colorMuted)
)
