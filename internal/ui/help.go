package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}

// helpSections groups the key map for the help overlay.
func (m Model) helpSections() []helpSection {
	k := m.keys
	return []helpSection{
		{
			title: "Views",
			items: []helpItem{
				{"1-7", "Chains/Stores/Products/Favorites/Compare/Settings/Archives"},
				{k.ViewLogs.Help().Key, k.ViewLogs.Help().Desc},
				{k.Escape.Help().Key, k.Escape.Help().Desc},
			},
		},
		{
			title: "Navigation",
			items: []helpItem{
				{"j/k", "Move down/up"},
				{"g/G", "Go to top/bottom"},
				{"pgup/pgdown", "Page up/down"},
				{k.Confirm.Help().Key, k.Confirm.Help().Desc},
				{"click", "Select row; click ☆ to favorite"},
			},
		},
		{
			title: "Lists",
			items: []helpItem{
				{k.Search.Help().Key, k.Search.Help().Desc},
				{k.Favorite.Help().Key, k.Favorite.Help().Desc},
				{k.Compare.Help().Key, k.Compare.Help().Desc},
				{"s/S", "Cycle sort / reverse"},
				{"m/M", "Cycle filters"},
				{k.NearMe.Help().Key, "Stores near default location"},
				{k.Date.Help().Key, k.Date.Help().Desc},
				{k.Special.Help().Key, k.Special.Help().Desc},
				{k.Sidebar.Help().Key, k.Sidebar.Help().Desc},
				{k.Refresh.Help().Key, k.Refresh.Help().Desc},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{k.Help.Help().Key, k.Help.Help().Desc},
				{"q/ctrl+c", "Quit"},
			},
		},
	}
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	sections := m.helpSections()
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Warning)).Width(14)
	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, item := range section.items {
			b.WriteString(keyStyle.Render(item.key))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}
		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(min(66, max(m.width-4, 20)))

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
