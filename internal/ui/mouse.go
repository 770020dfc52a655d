package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/five82/cijene/internal/toggle"
)

// handleMouse selects rows on click. A click on the star column toggles the
// favorite and stops there, so the row itself is not opened.
func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if m.showHelp || m.modal != nil || m.inputTarget != inputNone {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return m.handleKey(tea.KeyMsg{Type: tea.KeyUp})
	case tea.MouseButtonWheelDown:
		return m.handleKey(tea.KeyMsg{Type: tea.KeyDown})
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if msg.Y == 0 {
		return m.clickTab(msg.X)
	}

	row, ok := m.rowAt(msg.X, msg.Y)
	if !ok {
		return m, nil
	}
	onStar := msg.X >= starColumn && msg.X < starColumn+starWidth
	ev := &toggle.Click{}

	switch m.view {
	case ViewStores:
		stores := m.visibleStores()
		if row >= len(stores) {
			return m, nil
		}
		m.stores.selected = row
		if onStar {
			return m.toggleFavorite(toggle.StoreFavorite(m.store, stores[row]), ev)
		}
		m.store.AddRecentlyViewedStore(stores[row])
	case ViewProducts:
		products := m.visibleProducts()
		if row >= len(products) {
			return m, nil
		}
		m.products.selected = row
		if onStar {
			var cmd tea.Cmd
			if m, cmd = m.toggleFavorite(toggle.ProductFavorite(m.store, products[row]), ev); ev.Stopped() {
				return m, cmd
			}
		}
		return m.openDetail(products[row])
	case ViewFavorites:
		if row >= m.favoriteCount() {
			return m, nil
		}
		m.favorites.selected = row
		if b, ok := m.favoriteBinding(row); ok && onStar {
			return m.toggleFavorite(b, ev)
		}
		if ev.Stopped() {
			return m, nil
		}
		return m.openFavorite(row)
	case ViewChains:
		if row < len(m.visibleChains()) {
			m.chains.selected = row
		}
	case ViewDetail:
		if row < len(m.detail.visiblePrices()) {
			m.detail.selected = row
		}
	case ViewArchives:
		if row < len(m.archives.items) {
			m.archives.selected = row
		}
	}
	return m, nil
}

// rowAt maps a screen position to a row index in the active list.
func (m Model) rowAt(x, y int) (int, bool) {
	top := listRowsTop
	height := m.listHeight(1)
	selected := 0
	total := 0
	start := -1 // derived from the scroll window unless the list is paged
	switch m.view {
	case ViewChains:
		selected, total = m.chains.selected, len(m.visibleChains())
		if listWidth, _ := m.splitWidths(); x >= listWidth {
			return 0, false
		}
	case ViewStores:
		selected, total = m.stores.selected, len(m.visibleStores())
		if listWidth, _ := m.splitWidths(); x >= listWidth {
			return 0, false
		}
	case ViewProducts:
		selected, total = m.products.selected, len(m.visibleProducts())
		if listWidth, _ := m.splitWidths(); m.snap.SidebarOpen && x >= listWidth {
			return 0, false
		}
	case ViewFavorites:
		height = m.favoritesPerPage()
		selected, total = m.favorites.selected, m.favoriteCount()
		start = m.favoritesPageStart()
	case ViewArchives:
		height = m.listHeight(2)
		selected, total = m.archives.selected, len(m.archives.items)
	case ViewDetail:
		top = boxContentTop + 5
		height = m.listHeight(4)
		selected, total = m.detail.selected, len(m.detail.visiblePrices())
	default:
		return 0, false
	}
	if y < top || y >= top+height {
		return 0, false
	}
	if start < 0 {
		start, _ = visibleRange(total, selected, height)
	}
	row := start + y - top
	if row >= total {
		return 0, false
	}
	return row, true
}

// clickTab switches views from the header tabs.
func (m Model) clickTab(x int) (Model, tea.Cmd) {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	compact := m.compactTabs(lipgloss.Width(m.renderStatus(NewBgStyle(m.theme.Surface), styles)))

	// "cijene" plus padding, then each tab followed by two spaces.
	pos := 1 + len("cijene") + 2
	for _, t := range tabs {
		width := runewidth.StringWidth(m.tabText(t, compact))
		if x >= pos && x < pos+width {
			return m.switchView(t.view)
		}
		pos += width + 2
	}
	return m, nil
}
