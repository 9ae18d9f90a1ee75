package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/vitaminmoo/iqos-tool/internal/commands"
	"github.com/vitaminmoo/iqos-tool/internal/device"
)

// link is one live connection as the TUI sees it.
type link struct {
	handle  *device.Handle
	name    string
	address string
	close   func() error

	updates chan device.Profile
	done    chan struct{}
}

// dialFunc finds and attaches a device.
type dialFunc func(ctx context.Context) (*link, error)

func bleDial(env *commands.Env) dialFunc {
	return func(ctx context.Context) (*link, error) {
		s, err := commands.Connect(ctx, env)
		if err != nil {
			return nil, err
		}
		p := s.Peripheral()
		return &link{
			handle:  s.Handle(),
			name:    p.Name,
			address: p.Address,
			close:   p.Disconnect,
		}, nil
	}
}

// Model is the main Bubbletea model for the TUI.
type Model struct {
	ctx  context.Context
	env  *commands.Env
	dial dialFunc

	// State
	width      int
	height     int
	connecting bool
	link       *link
	profile    device.Profile
	commands   []device.CommandName
	cursor     int
	running    device.CommandName
	errorMsg   string
	statusMsg  string

	// Components
	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	styles  Styles
	gauge   Gauge
}

// --- Custom messages for async operations ---

// linkMsg signals a connection attempt result.
type linkMsg struct {
	link *link
	err  error
}

// profileMsg delivers a changed identity profile.
type profileMsg device.Profile

// execMsg signals a command finished writing.
type execMsg struct {
	name   device.CommandName
	result device.Result
	err    error
}

// NewModel creates a new TUI model that connects over Bluetooth.
func NewModel(ctx context.Context, env *commands.Env) Model {
	return newModel(ctx, env, bleDial(env))
}

func newModel(ctx context.Context, env *commands.Env, dial dialFunc) Model {
	h := help.New()
	h.ShowAll = false

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#3CC8BE"))

	return Model{
		ctx:        ctx,
		env:        env,
		dial:       dial,
		connecting: true,
		keys:       DefaultKeyMap(),
		help:       h,
		spinner:    s,
		styles:     DefaultStyles(),
		gauge:      NewGauge(),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.connectCmd(), m.spinner.Tick)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case linkMsg:
		m.connecting = false
		if msg.err != nil {
			m.errorMsg = fmt.Sprintf("Connection failed: %v", msg.err)
			return m, nil
		}
		return m.attach(msg.link)

	case profileMsg:
		if m.link == nil {
			return m, nil
		}
		m.profile = device.Profile(msg)
		m.gauge.Set(m.profile.BatteryLevel)
		return m, waitForProfile(m.link)

	case execMsg:
		m.running = ""
		if msg.err != nil {
			m.statusMsg = ""
			m.errorMsg = fmt.Sprintf("%s failed after %d/%d frames: %v",
				msg.name, msg.result.FramesWritten, msg.result.FramesTotal, msg.err)
			return m, nil
		}
		m.errorMsg = ""
		m.statusMsg = fmt.Sprintf("%s done (%d frames)", msg.name, msg.result.FramesWritten)
		return m, nil
	}
	return m, nil
}

// attach adopts a new connection and starts listening for profile changes.
func (m Model) attach(l *link) (tea.Model, tea.Cmd) {
	l.updates = make(chan device.Profile, 16)
	l.done = make(chan struct{})
	updates := l.updates
	l.handle.Identity().OnChange(func(p device.Profile) {
		select {
		case updates <- p:
		default:
		}
	})

	m.link = l
	m.errorMsg = ""
	m.statusMsg = "Connected"
	m.profile = l.handle.Identity().Snapshot()
	m.gauge.Set(m.profile.BatteryLevel)
	m.commands = l.handle.Family().Commands()
	m.cursor = 0
	return m, waitForProfile(l)
}

// disconnect drops the current connection, if any.
func (m *Model) disconnect() {
	if m.link == nil {
		return
	}
	close(m.link.done)
	if m.link.close != nil {
		if err := m.link.close(); err != nil {
			m.env.Log.Warn("Disconnect failed", zap.Error(err))
		}
	}
	m.link = nil
	m.commands = nil
	m.profile = device.Profile{}
	m.gauge.Reset()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.disconnect()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Connect):
		if m.connecting || m.running != "" {
			return m, nil
		}
		m.disconnect()
		m.connecting = true
		m.errorMsg = ""
		m.statusMsg = ""
		return m, tea.Batch(m.connectCmd(), m.spinner.Tick)

	case key.Matches(msg, m.keys.Up):
		if len(m.commands) > 0 {
			m.cursor--
			if m.cursor < 0 {
				m.cursor = len(m.commands) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if len(m.commands) > 0 {
			m.cursor++
			if m.cursor >= len(m.commands) {
				m.cursor = 0
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if m.link == nil || m.running != "" || len(m.commands) == 0 {
			return m, nil
		}
		name := m.commands[m.cursor]
		m.running = name
		m.errorMsg = ""
		m.statusMsg = ""
		return m, tea.Batch(m.execCmd(name), m.spinner.Tick)

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m, nil
}

// View renders the model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderTitleBar())
	b.WriteString("\n\n")

	if m.link == nil {
		if m.connecting {
			b.WriteString(m.spinner.View())
			b.WriteString(" ")
			b.WriteString(m.styles.Warning.Render("Searching for device..."))
		} else {
			if m.errorMsg != "" {
				b.WriteString(m.styles.Error.Render(m.errorMsg))
				b.WriteString("\n")
			}
			connectKey := m.keys.Connect.Help().Key
			b.WriteString(m.styles.Muted.Render(fmt.Sprintf("Press '%s' to connect", connectKey)))
		}
	} else {
		b.WriteString(m.viewDevice())
		b.WriteString("\n")
		b.WriteString(m.viewCommands())
		b.WriteString("\n")
		b.WriteString(m.viewStatus())
	}

	helpView := m.styles.Help.Render(m.help.View(m.keys))
	return m.styles.App.Render(b.String() + "\n" + helpView)
}

// renderTitleBar renders the title with connection status.
func (m Model) renderTitleBar() string {
	parts := []string{m.styles.Title.Render("IQOS")}

	switch {
	case m.connecting:
		parts = append(parts, m.spinner.View()+" "+m.styles.Warning.Render("Connecting..."))
	case m.link != nil:
		parts = append(parts, m.styles.Online.Render("●"))
		parts = append(parts, m.styles.Muted.Render(m.link.address))
		parts = append(parts, m.styles.Muted.Render(m.link.handle.Family().String()))
	default:
		parts = append(parts, m.styles.Offline.Render("○ Offline"))
	}

	return strings.Join(parts, "  ")
}

func (m Model) viewDevice() string {
	var b strings.Builder
	p := m.profile

	b.WriteString(m.styles.Section.Render("Device"))
	b.WriteString("\n")
	b.WriteString(m.renderField("Advertised", m.link.name))
	if p.CustomName != "" {
		b.WriteString(m.renderField("Name", p.CustomName))
	}
	b.WriteString(m.renderField("Model", p.ModelNumber))
	b.WriteString(m.renderField("Serial", p.SerialNumber))
	b.WriteString(m.renderField("Software", p.SoftwareRevision))
	b.WriteString(m.renderField("Manufacturer", p.ManufacturerName))

	battery := m.gauge.View()
	if m.gauge.Low() {
		battery = m.styles.Warning.Render(battery)
	}
	b.WriteString(m.styles.Label.Render("Battery") + battery + "\n")

	return b.String()
}

func (m Model) viewCommands() string {
	var b strings.Builder

	b.WriteString(m.styles.Section.Render("Commands"))
	b.WriteString("\n")

	family := m.link.handle.Family()
	if len(m.commands) == 0 {
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("No commands for %s devices", family)))
		b.WriteString("\n")
		return b.String()
	}
	if m.link.handle.State() != device.StateReady {
		b.WriteString(m.styles.Warning.Render("No control point found; commands will be rejected"))
		b.WriteString("\n")
	}

	for i, name := range m.commands {
		cmd, _ := family.Command(name)
		frames := m.styles.ItemFrames.Render(fmt.Sprintf(" (%d frame%s)", len(cmd), plural(len(cmd))))
		if i == m.cursor {
			b.WriteString(m.styles.ItemSelected.Render("> " + string(name)))
		} else {
			b.WriteString(m.styles.Item.Render("  " + string(name)))
		}
		b.WriteString(frames)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewStatus() string {
	switch {
	case m.running != "":
		return m.spinner.View() + " " + m.styles.Warning.Render("Writing "+string(m.running)+"...")
	case m.errorMsg != "":
		return m.styles.Error.Render(m.errorMsg)
	case m.statusMsg != "":
		return m.styles.Success.Render(m.statusMsg)
	}
	return ""
}

// renderField renders a label: value pair.
func (m Model) renderField(label, value string) string {
	if value == "" {
		value = m.styles.Muted.Render("(not reported)")
	} else {
		value = m.styles.Value.Render(value)
	}
	return m.styles.Label.Render(label) + value + "\n"
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// --- Commands ---

func (m Model) connectCmd() tea.Cmd {
	ctx, dial := m.ctx, m.dial
	return func() tea.Msg {
		l, err := dial(ctx)
		return linkMsg{link: l, err: err}
	}
}

// waitForProfile blocks until the next profile change or until l is closed.
func waitForProfile(l *link) tea.Cmd {
	updates, done := l.updates, l.done
	return func() tea.Msg {
		select {
		case p := <-updates:
			return profileMsg(p)
		case <-done:
			return nil
		}
	}
}

func (m Model) execCmd(name device.CommandName) tea.Cmd {
	ctx, h, timeout := m.ctx, m.link.handle, m.env.Config.Device.WriteTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		res, err := h.Execute(ctx, name)
		return execMsg{name: name, result: res, err: err}
	}
}
