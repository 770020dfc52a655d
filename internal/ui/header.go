package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/five82/cijene/internal/notify"
)

type tab struct {
	key  string
	view View
}

var tabs = []tab{
	{"1", ViewChains},
	{"2", ViewStores},
	{"3", ViewProducts},
	{"4", ViewFavorites},
	{"5", ViewCompare},
	{"6", ViewSettings},
	{"7", ViewArchives},
	{"l", ViewLogs},
}

// renderHeader renders the app name, view tabs and connection status.
// Inactive tabs shrink to their keys when everything does not fit.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	lang := m.snap.Language

	right := m.renderStatus(bg, styles)
	compact := m.compactTabs(lipgloss.Width(right))
	active := m.activeTab()

	parts := []string{bg.Render("cijene", styles.AccentText.Bold(true))}
	for _, t := range tabs {
		name := label(lang, viewTitles[t.view])
		switch {
		case t.view == active:
			parts = append(parts, bg.Render(t.key+" "+name, styles.Text.Bold(true).Underline(true)))
		case compact:
			parts = append(parts, bg.Render(t.key, styles.MutedText))
		default:
			parts = append(parts, bg.Render(t.key, styles.MutedText)+bg.Spaces(1)+bg.Render(name, styles.FaintText))
		}
	}
	left := bg.Join(parts, 2)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		return bg.FillLine(bg.Spaces(1)+left, m.width)
	}
	return bg.FillLine(bg.Spaces(1)+left+bg.Spaces(gap)+right, m.width)
}

// activeTab is the tab highlighted for the current view.
func (m Model) activeTab() View {
	if m.view == ViewDetail {
		return ViewProducts
	}
	return m.view
}

// tabText is the plain text of t as drawn in the header.
func (m Model) tabText(t tab, compact bool) string {
	if compact && t.view != m.activeTab() {
		return t.key
	}
	return t.key + " " + label(m.snap.Language, viewTitles[t.view])
}

// compactTabs reports whether the full tab labels and a status of
// statusWidth cells overflow the header.
func (m Model) compactTabs(statusWidth int) bool {
	width := 1 + len("cijene")
	for _, t := range tabs {
		width += 2 + runewidth.StringWidth(m.tabText(t, false))
	}
	return width+1+statusWidth+1 > m.width
}

func (m Model) renderStatus(bg BgStyle, styles Styles) string {
	lang := m.snap.Language
	var parts []string

	if m.apiAuth.err != nil {
		parts = append(parts, bg.Render("API credentials rejected", styles.DangerText))
	}
	switch {
	case m.remoteSnap.IsOffline():
		parts = append(parts, bg.Render("● "+label(lang, "Offline"), styles.DangerText))
	case m.remoteSnap.HasChains:
		parts = append(parts, bg.Render("● "+label(lang, "Online"), styles.SuccessText))
	default:
		parts = append(parts, bg.Render("○ "+label(lang, "Loading"), styles.MutedText))
	}
	if v := m.remoteSnap.Version; v != "" {
		parts = append(parts, bg.Render("API "+v, styles.MutedText))
	}
	if h := m.remoteSnap.Health; h != "" && !m.remoteSnap.Healthy() {
		parts = append(parts, bg.Render(label(lang, "Health")+" "+h, styles.WarningText))
	}
	if m.auth != nil && m.auth.Enabled() {
		if user, ok := m.auth.CurrentUser(); ok {
			parts = append(parts, bg.Render(user.Username, styles.InfoText))
		} else {
			parts = append(parts, bg.Render("guest", styles.FaintText))
		}
	}
	return strings.Join(parts, bg.Sep(" │ "))
}

type command struct{ key, desc string }

// viewCommands returns the command bar hints for the active view.
func (m Model) viewCommands() []command {
	switch m.view {
	case ViewChains:
		return []command{{"/", "Filter"}, {"s", "Sort"}, {"S", "Reverse"}, {"m", "Min stores"}, {"M", "Min products"}, {"space", "Preferred"}, {"enter", "Stores"}, {"r", "Refresh"}}
	case ViewStores:
		return []command{{"/", "Search"}, {"f", "Favorite"}, {"s", "Sort"}, {"m", "City"}, {"M", "Type"}, {"n", "Nearby"}, {"enter", "Details"}, {"r", "Refresh"}}
	case ViewProducts:
		return []command{{"/", "Search"}, {"d", "Date"}, {"f", "Favorite"}, {"c", "Compare"}, {"s", "Sort"}, {"b", ternary(m.snap.SidebarOpen, "Hide history", "History")}, {"enter", "Prices"}, {"r", "Refresh"}}
	case ViewDetail:
		return []command{{"esc", "Back"}, {"f", "Favorite"}, {"c", "Compare"}, {"s", "Sort"}, {"m", "Chain"}, {"o", "Specials"}, {"r", "Refresh"}}
	case ViewFavorites:
		return []command{{"tab", "Products/Stores"}, {"f", "Remove"}, {"c", "Compare"}, {"enter", "Open"}, {"X", "Clear"}}
	case ViewCompare:
		return []command{{"x", "Remove"}, {"X", "Clear"}, {"enter", "Open"}, {"r", "Refresh"}}
	case ViewSettings:
		return []command{{"j/k", "Select"}, {"←/→", "Change"}, {"enter", "Apply"}}
	case ViewArchives:
		return []command{{"j/k", "Select"}, {"enter", "Download"}, {"r", "Refresh"}}
	case ViewLogs:
		return []command{{"F", "Level " + logLevelLabel(m.logs.minLevel)}, {"p", ternary(m.logs.follow, "Pause", "Follow")}, {"j/k", "Scroll"}, {"r", "Reload"}}
	}
	return nil
}

// renderCommandBar renders key hints, the focused input or the newest
// notification.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	if m.inputTarget != inputNone {
		return bg.FillLine(bg.Spaces(1)+m.input.View(), m.width)
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, 10)
	for _, c := range m.viewCommands() {
		segments = append(segments, bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments, bg.Render("?", styles.AccentText)+colon+bg.Render("Help", styles.MutedText))
	bar := bg.Join(segments, 2)

	if n, ok := m.notifier.Latest(m.now); ok {
		text := notificationText(n)
		room := m.width - lipgloss.Width(bar) - 4
		if room < 20 {
			return bg.FillLine(bg.Spaces(1)+bg.Render(truncate(text, m.width-2), notificationStyle(n.Type, styles)), m.width)
		}
		text = truncate(text, room)
		gap := m.width - lipgloss.Width(bar) - runewidth.StringWidth(text) - 2
		return bg.FillLine(bg.Spaces(1)+bar+bg.Spaces(gap)+bg.Render(text, notificationStyle(n.Type, styles)), m.width)
	}
	return bg.FillLine(bg.Spaces(1)+bar, m.width)
}

// notificationText flattens a notification into one line.
func notificationText(n notify.Notification) string {
	text := n.Title
	if n.Message != "" {
		text = fmt.Sprintf("%s: %s", n.Title, n.Message)
	}
	if n.Retryable {
		text += " (r to retry)"
	}
	return text
}

func notificationStyle(t notify.Type, styles Styles) lipgloss.Style {
	switch t {
	case notify.TypeSuccess:
		return styles.SuccessText
	case notify.TypeError:
		return styles.DangerText
	case notify.TypeWarning:
		return styles.WarningText
	default:
		return styles.InfoText
	}
}
