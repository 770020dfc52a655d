package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/cijene/internal/applog"
)

var logLevels = []string{"", "INF", "WRN", "ERR"}

type logsState struct {
	viewport viewport.Model
	lines    []string
	minLevel string
	follow   bool
	err      error
}

func logLevelLabel(level string) string {
	if level == "" {
		return "all"
	}
	return level + "+"
}

func (m *Model) resizeLogs() {
	m.logs.viewport.Width = max(m.width-2, 0)
	m.logs.viewport.Height = max(m.contentHeight()-2, 0)
	m.refreshLogContent()
}

func (m *Model) handleLogs(msg logsMsg) {
	if msg.err != nil {
		m.logs.err = msg.err
		return
	}
	m.logs.err = nil
	m.logs.lines = msg.lines
	m.refreshLogContent()
}

// refreshLogContent re-renders the filtered lines into the viewport.
func (m *Model) refreshLogContent() {
	styles := m.theme.Styles()
	lines := applog.Filter(m.logs.lines, m.logs.minLevel)
	rendered := make([]string, len(lines))
	current := ""
	for i, line := range lines {
		if lvl := applog.Level(line); lvl != "" {
			current = lvl
		}
		switch current {
		case "ERR", "FTL", "PNC":
			rendered[i] = styles.DangerText.Render(line)
		case "WRN":
			rendered[i] = styles.WarningText.Render(line)
		case "DBG", "TRC":
			rendered[i] = styles.FaintText.Render(line)
		default:
			rendered[i] = styles.Text.Render(line)
		}
	}
	m.logs.viewport.SetContent(strings.Join(rendered, "\n"))
	if m.logs.follow {
		m.logs.viewport.GotoBottom()
	}
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "F":
		for i, lvl := range logLevels {
			if lvl == m.logs.minLevel {
				m.logs.minLevel = logLevels[cycle(i, len(logLevels))]
				break
			}
		}
		m.refreshLogContent()
		return m, nil
	case "p":
		m.logs.follow = !m.logs.follow
		if m.logs.follow {
			m.logs.viewport.GotoBottom()
		}
		return m, nil
	case "r":
		return m, m.loadLogsCmd()
	case "g", "home":
		m.logs.follow = false
		m.logs.viewport.GotoTop()
		return m, nil
	case "G", "end":
		m.logs.follow = true
		m.logs.viewport.GotoBottom()
		return m, nil
	case "esc":
		m.view = ViewChains
		return m, nil
	}

	var cmd tea.Cmd
	m.logs.viewport, cmd = m.logs.viewport.Update(msg)
	if !m.logs.viewport.AtBottom() {
		m.logs.follow = false
	}
	return m, cmd
}

func (m Model) renderLogs() string {
	title := label(m.snap.Language, "Logs") + " · " + m.logPath + " · " + logLevelLabel(m.logs.minLevel)
	if m.logs.follow {
		title += " · following"
	}
	var content string
	switch {
	case m.logPath == "":
		content = m.theme.Styles().MutedText.Render("File logging is disabled.")
	case m.logs.err != nil:
		content = m.theme.Styles().DangerText.Render("Error: "+m.logs.err.Error()) + "\n" +
			m.theme.Styles().MutedText.Render("press r to retry")
	case len(m.logs.lines) == 0:
		content = m.theme.Styles().MutedText.Render("No log entries yet.")
	default:
		content = m.logs.viewport.View()
	}
	return m.renderTitledBox(title, content, m.width, m.contentHeight(), true)
}
