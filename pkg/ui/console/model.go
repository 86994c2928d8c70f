package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"avicbot/pkg/bus"
)

const (
	roleViewer = "viewer"
	roleBot    = "bot"
	roleSilent = "silent"
)

type entry struct {
	role   string
	sender string
	lines  []string
}

type model struct {
	dispatch DispatchFunc
	session  Session

	theme     theme
	input     textinput.Model
	viewport  viewport.Model
	entries   []entry
	width     int
	height    int
	isReady   bool
	followLog bool
	replies   int
	stopped   bool
}

func newModel(dispatch DispatchFunc, session Session) *model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = "Type a chat line, e.g. !commands"
	in.Focus()
	in.CharLimit = 500

	return &model{
		dispatch:  dispatch,
		session:   session,
		theme:     defaultTheme(),
		input:     in,
		viewport:  viewport.New(80, 12),
		width:     100,
		height:    28,
		followLog: true,
	}
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.resizeComponents()
		m.refreshViewport(false)
		m.isReady = true
		return m, nil
	case tea.MouseMsg:
		m.handleViewportMouse(typed)
		return m, nil
	case tea.KeyMsg:
		switch typed.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		}

		if m.handleViewportKey(typed) {
			return m, nil
		}

		if typed.String() == "enter" {
			return m, m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit feeds the typed line through the responder as if it came from chat.
func (m *model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}
	if isExitCommand(text) {
		return tea.Quit
	}

	m.input.SetValue("")
	m.entries = append(m.entries, entry{role: roleViewer, sender: m.session.Sender, lines: []string{text}})

	reply, ok := m.dispatch(bus.InboundMessage{
		ID:          uuid.NewString(),
		Channel:     m.session.Channel,
		Sender:      strings.ToLower(m.session.Sender),
		DisplayName: m.session.Sender,
		Text:        text,
	})
	if !ok {
		m.entries = append(m.entries, entry{role: roleSilent})
		m.refreshViewport(true)
		return nil
	}

	m.replies++
	m.entries = append(m.entries, entry{role: roleBot, sender: reply.Trigger, lines: reply.Lines})
	m.refreshViewport(true)

	if reply.Shutdown {
		m.stopped = true
		return tea.Quit
	}

	return nil
}

func (m *model) View() string {
	if !m.isReady {
		m.resizeComponents()
		m.refreshViewport(false)
	}

	header := m.theme.header.Width(m.width - 2).Render("avicbot console")
	meta := m.theme.headerMeta.Render(fmt.Sprintf(
		"channel:%s · nick:%s · as:%s · lines:%d · replies:%d",
		displayOrNA(m.session.Channel),
		displayOrNA(m.session.Nick),
		displayOrNA(m.session.Sender),
		viewerLines(m.entries),
		m.replies,
	))
	line := m.theme.divider.Width(m.width - 2).Render(strings.Repeat("═", max(8, m.width-2)))

	status := m.theme.status.Render("Enter send  ·  PgUp/PgDn scroll  ·  End jump latest  ·  Ctrl+C/Esc quit")
	if m.stopped {
		status = m.theme.statusStop.Render("bot asked to leave")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		meta,
		line,
		m.theme.viewport.Width(m.width-2).Render(m.viewport.View()),
		status,
		m.theme.inputLabel.Render(displayOrNA(m.session.Sender))+" "+m.theme.hint.Render("(type /exit, quit, or :q)"),
		m.theme.input.Width(m.width-2).Render(m.input.View()),
	)
}

func (m *model) resizeComponents() {
	w := max(50, m.width-6)
	h := max(8, m.height-10)

	m.viewport.Width = w
	m.viewport.Height = h
	m.input.Width = w - 2
}

func (m *model) refreshViewport(forceBottom bool) {
	previousOffset := m.viewport.YOffset

	sections := make([]string, 0, len(m.entries))
	for _, item := range m.entries {
		switch item.role {
		case roleViewer:
			sections = append(sections, lipgloss.JoinVertical(lipgloss.Left,
				m.theme.viewerTitle.Render(item.sender),
				m.theme.viewerBox.Width(m.viewport.Width).Render(strings.Join(item.lines, "\n")),
			))
		case roleBot:
			sections = append(sections, lipgloss.JoinVertical(lipgloss.Left,
				m.theme.botTitle.Render(displayOrNA(m.session.Nick)+" ← "+item.sender),
				m.theme.botBox.Width(m.viewport.Width).Render(strings.Join(item.lines, "\n")),
			))
		case roleSilent:
			sections = append(sections, m.theme.silentLine.Render("(no trigger, no reply)"))
		}
	}

	m.viewport.SetContent(strings.Join(sections, "\n"))
	if m.followLog || forceBottom {
		m.viewport.GotoBottom()
		m.followLog = true
		return
	}

	maxOffset := max(0, m.viewport.TotalLineCount()-m.viewport.Height)
	m.viewport.SetYOffset(min(previousOffset, maxOffset))
}

func (m *model) handleViewportKey(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "pgup", "ctrl+b", "alt+up", "ctrl+up":
		m.viewport.PageUp()
		m.followLog = false
		return true
	case "pgdown", "ctrl+f", "alt+down", "ctrl+down":
		m.viewport.PageDown()
		if m.viewport.AtBottom() {
			m.followLog = true
		}
		return true
	case "home":
		m.viewport.GotoTop()
		m.followLog = false
		return true
	case "end":
		m.viewport.GotoBottom()
		m.followLog = true
		return true
	default:
		return false
	}
}

func (m *model) handleViewportMouse(msg tea.MouseMsg) bool {
	if msg.Action != tea.MouseActionPress {
		return false
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.viewport.ScrollUp(3)
		m.followLog = false
		return true
	case tea.MouseButtonWheelDown:
		m.viewport.ScrollDown(3)
		if m.viewport.AtBottom() {
			m.followLog = true
		}
		return true
	default:
		return false
	}
}

func displayOrNA(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "n/a"
	}

	return trimmed
}

func viewerLines(entries []entry) int {
	count := 0
	for _, item := range entries {
		if item.role == roleViewer {
			count++
		}
	}

	return count
}

func isExitCommand(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "exit", "/exit", "quit", ":q":
		return true
	default:
		return false
	}
}
