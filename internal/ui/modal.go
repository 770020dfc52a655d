package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/cijene/internal/auth"
	"github.com/five82/cijene/internal/notify"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

const (
	fieldEmail = iota
	fieldPassword
	fieldConfirm
	fieldUsername
	fieldCount
)

// loginModal signs in to, or registers, a local account.
type loginModal struct {
	svc      *auth.Service
	register bool
	inputs   [fieldCount]textinput.Model
	focus    int
	err      string
	busy     bool
}

func newLoginModal(svc *auth.Service) *loginModal {
	m := &loginModal{svc: svc}
	placeholders := [fieldCount]string{"email", "password", "confirm password", "username (optional)"}
	for i := range m.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 100
		in.Prompt = ""
		if i == fieldPassword || i == fieldConfirm {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		m.inputs[i] = in
	}
	m.inputs[fieldEmail].Focus()
	return m
}

func (m *loginModal) fields() int {
	if m.register {
		return fieldCount
	}
	return fieldConfirm
}

func (m *loginModal) setFocus(i int) tea.Cmd {
	m.focus = (i + m.fields()) % m.fields()
	var cmd tea.Cmd
	for j := range m.inputs {
		if j == m.focus {
			cmd = m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	return cmd
}

// Update implements Modal.
func (m *loginModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil, false
	}
	if m.busy {
		return m, nil, false
	}
	switch keyMsg.String() {
	case "esc":
		return m, nil, true
	case "ctrl+c":
		return m, tea.Quit, true
	case "tab", "down":
		return m, m.setFocus(m.focus + 1), false
	case "shift+tab", "up":
		return m, m.setFocus(m.focus - 1), false
	case "ctrl+r":
		m.register = !m.register
		m.err = ""
		return m, m.setFocus(fieldEmail), false
	case "enter":
		if m.focus < m.fields()-1 {
			return m, m.setFocus(m.focus + 1), false
		}
		m.busy = true
		m.err = ""
		return m, m.submit(), false
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(keyMsg)
	return m, cmd, false
}

// submit runs the login or registration as a command.
func (m *loginModal) submit() tea.Cmd {
	svc := m.svc
	email := strings.TrimSpace(m.inputs[fieldEmail].Value())
	password := m.inputs[fieldPassword].Value()
	if !m.register {
		return func() tea.Msg {
			user, err := svc.Login(auth.LoginRequest{Email: email, Password: password})
			return authResultMsg{user: user, err: err}
		}
	}
	req := auth.RegisterRequest{
		Email:           email,
		Password:        password,
		ConfirmPassword: m.inputs[fieldConfirm].Value(),
		Username:        strings.TrimSpace(m.inputs[fieldUsername].Value()),
	}
	return func() tea.Msg {
		user, err := svc.Register(req)
		return authResultMsg{user: user, err: err}
	}
}

// View implements Modal.
func (m *loginModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	title := "Log in"
	if m.register {
		title = "Create account"
	}

	labels := [fieldCount]string{"Email", "Password", "Confirm", "Username"}
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(title))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("Favorites require an account."))
	b.WriteString("\n\n")
	for i := 0; i < m.fields(); i++ {
		name := styles.MutedText.Width(10).Render(labels[i])
		if i == m.focus {
			name = styles.AccentText.Width(10).Render(labels[i])
		}
		b.WriteString(name + m.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	switch {
	case m.busy:
		b.WriteString(styles.InfoText.Render("Checking..."))
	case m.err != "":
		b.WriteString(styles.DangerText.Render(m.err))
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("enter submit · tab next · ctrl+r " + ternary(m.register, "log in instead", "register") + " · esc cancel"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2).
		Width(min(60, max(width-4, 30)))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)))
}

// handleAuthResult closes the login modal on success or shows the form error.
func (m Model) handleAuthResult(msg authResultMsg) (Model, tea.Cmd) {
	login, _ := m.modal.(*loginModal)
	if msg.err != nil {
		if login != nil {
			_, text := notify.Classify(msg.err)
			login.err = text
			login.busy = false
		}
		return m, nil
	}
	m.modal = nil
	m.notifier.Success("Welcome", msg.user.Username)
	m.view = ViewFavorites
	return m, nil
}
