package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/five82/cijene/internal/notify"
)

// Screen rows above a box's content: header, command bar and the box's top
// border. List views add one more for their column header.
const (
	boxContentTop = 3
	listRowsTop   = boxContentTop + 1
	starColumn    = 1
	starWidth     = 2
)

// renderTitledBox renders content in a box with the title embedded in the top
// border: ┌─── Title ───┐
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	borderColorStr, bgColorStr := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColorStr, bgColorStr = m.theme.BorderFocus, m.theme.FocusBg
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := max(width-2, 0)
	title = truncate(title, max(innerWidth-4, 0))
	titleLen := runewidth.StringWidth(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)
	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(lipgloss.Color(bgColorStr))
	contentLines := strings.Split(content, "\n")
	boxHeight := max(height-2, 0)

	lines := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		lines = append(lines, bg.Render("│", borderStyle)+contentStyle.Render(line)+bg.Render("│", borderStyle))
	}
	return topBorder + "\n" + strings.Join(lines, "\n") + "\n" + bottomBorder
}

// splitWidths divides the screen between a list pane and a detail pane.
func (m Model) splitWidths() (int, int) {
	list := m.width * 55 / 100
	if m.width >= 160 {
		list = m.width * 45 / 100
	}
	return list, m.width - list
}

// visibleRange returns the slice of rows to draw so selected stays in view.
func visibleRange(total, selected, height int) (int, int) {
	if height <= 0 || total <= height {
		return 0, total
	}
	start := 0
	if selected >= height {
		start = selected - height + 1
	}
	return start, min(start+height, total)
}

// listHeight is the number of rows a list box can show below its header.
func (m Model) listHeight(reserved int) int {
	return max(m.contentHeight()-2-1-reserved, 1)
}

// renderRows draws rows with the selection highlighted.
func (m Model) renderRows(rows []string, selected, width, height int, bgColor string) string {
	start, end := visibleRange(len(rows), selected, height)
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		if i == selected {
			lines = append(lines, lipgloss.NewStyle().
				Background(lipgloss.Color(m.theme.SelectionBg)).
				Foreground(lipgloss.Color(m.theme.SelectionText)).
				Width(width).
				Render(rows[i]))
			continue
		}
		lines = append(lines, lipgloss.NewStyle().
			Background(lipgloss.Color(bgColor)).
			Foreground(lipgloss.Color(m.theme.Text)).
			Width(width).
			Render(rows[i]))
	}
	return strings.Join(lines, "\n")
}

// star renders the favorite marker column.
func star(active bool) string {
	if active {
		return "★ "
	}
	return "☆ "
}

// renderInlineError renders an error block with the retry hint.
func (m Model) renderInlineError(err error) string {
	styles := m.theme.Styles()
	_, message := notify.Classify(err)
	lines := []string{
		styles.DangerText.Render("Error: " + message),
	}
	if notify.IsRetryable(err) {
		lines = append(lines, styles.MutedText.Render("press r to retry"))
	}
	return strings.Join(lines, "\n")
}

// renderLoading renders the loading indicator.
func (m Model) renderLoading() string {
	return m.theme.Styles().InfoText.Render(label(m.snap.Language, "Loading") + "...")
}

// selectRow clamps a cursor move within n rows.
func selectRow(selected, n int, key string, page int) int {
	if n == 0 {
		return 0
	}
	switch key {
	case "j", "down":
		selected++
	case "k", "up":
		selected--
	case "g", "home":
		selected = 0
	case "G", "end":
		selected = n - 1
	case "pgdown", "ctrl+d":
		selected += max(page, 1)
	case "pgup", "ctrl+u":
		selected -= max(page, 1)
	}
	return min(max(selected, 0), n-1)
}

// isNavKey reports whether key moves a list cursor.
func isNavKey(key string) bool {
	switch key {
	case "j", "down", "k", "up", "g", "home", "G", "end", "pgdown", "ctrl+d", "pgup", "ctrl+u":
		return true
	}
	return false
}
