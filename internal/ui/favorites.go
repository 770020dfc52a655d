package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/cijene/internal/catalog"
	"github.com/five82/cijene/internal/toggle"
)

const (
	favoriteProductsTab = iota
	favoriteStoresTab
)

type favoritesState struct {
	tab      int
	selected int
}

func (m Model) favoriteCount() int {
	if m.favorites.tab == favoriteStoresTab {
		return len(m.snap.FavoriteStores)
	}
	return len(m.snap.FavoriteProducts)
}

// favoriteBinding returns the toggle for the favorite at row i.
func (m Model) favoriteBinding(i int) (toggle.Binding, bool) {
	if m.favorites.tab == favoriteStoresTab {
		if i < 0 || i >= len(m.snap.FavoriteStores) {
			return toggle.Binding{}, false
		}
		return toggle.StoreFavorite(m.store, m.snap.FavoriteStores[i]), true
	}
	if i < 0 || i >= len(m.snap.FavoriteProducts) {
		return toggle.Binding{}, false
	}
	return toggle.ProductFavorite(m.store, m.snap.FavoriteProducts[i]), true
}

// favoritesPerPage is the page size of the favorites list, which gives up a
// row each to the tabs line and the page footer.
func (m Model) favoritesPerPage() int {
	return m.listHeight(2)
}

// favoritesPageStart is the index of the first row on the selected page.
func (m Model) favoritesPageStart() int {
	perPage := m.favoritesPerPage()
	return (m.favorites.selected / perPage) * perPage
}

func (m Model) handleFavoritesKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()
	if isNavKey(key) {
		m.favorites.selected = selectRow(m.favorites.selected, m.favoriteCount(), key, m.favoritesPerPage())
		return m, nil
	}
	switch key {
	case "tab", "shift+tab":
		m.favorites.tab = 1 - m.favorites.tab
		m.favorites.selected = 0
	case "f", "x":
		if b, ok := m.favoriteBinding(m.favorites.selected); ok {
			b.Toggle(nil)
			m.favorites.selected = max(min(m.favorites.selected, m.favoriteCount()-2), 0)
		}
	case "c":
		if m.favorites.tab == favoriteProductsTab && m.favorites.selected < len(m.snap.FavoriteProducts) {
			return m.toggleCompare(m.snap.FavoriteProducts[m.favorites.selected], nil)
		}
	case "X":
		m.store.ClearFavorites()
		m.favorites.selected = 0
	case "enter":
		return m.openFavorite(m.favorites.selected)
	}
	return m, nil
}

// openFavorite opens a favorite product's prices, or records a favorite
// store as recently viewed. Either way the saved copy is refreshed from the
// API in the background.
func (m Model) openFavorite(i int) (Model, tea.Cmd) {
	if m.favorites.tab == favoriteProductsTab {
		if i < 0 || i >= len(m.snap.FavoriteProducts) {
			return m, nil
		}
		p := m.snap.FavoriteProducts[i]
		next, cmd := m.openDetail(p)
		return next, tea.Batch(cmd, next.refreshFavoriteProductCmd(p))
	}
	if i >= 0 && i < len(m.snap.FavoriteStores) {
		st := m.snap.FavoriteStores[i]
		m.store.AddRecentlyViewedStore(st)
		m.notifier.Info(st.Name, strings.TrimSpace(st.Address+", "+st.City))
		return m, m.refreshFavoriteStoreCmd(st)
	}
	return m, nil
}

func (m Model) handleFavoriteProduct(msg favoriteProductMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Debug().Err(msg.err).Str("key", msg.key).Msg("favorite product refresh failed")
		return m, nil
	}
	if msg.product.Key() != msg.key {
		m.logger.Debug().Str("key", msg.key).Str("got", msg.product.Key()).Msg("favorite product changed identity")
		return m, nil
	}
	m.store.RefreshFavoriteProduct(msg.product)
	if m.view == ViewDetail && m.detail.product.Key() == msg.key {
		m.detail.product = msg.product
	}
	return m, nil
}

func (m Model) handleFavoriteStore(msg favoriteStoreMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Debug().Err(msg.err).Str("key", msg.key).Msg("favorite store refresh failed")
		return m, nil
	}
	if msg.store.Key() != msg.key {
		return m, nil
	}
	m.store.RefreshFavoriteStore(msg.store)
	return m, nil
}

func (m Model) renderFavorites() string {
	height := m.contentHeight()
	lang := m.snap.Language
	styles := m.theme.Styles()
	innerWidth := m.width - 2

	productsTab := fmt.Sprintf("Products (%d)", len(m.snap.FavoriteProducts))
	storesTab := fmt.Sprintf("Stores (%d)", len(m.snap.FavoriteStores))
	if m.favorites.tab == favoriteProductsTab {
		productsTab = styles.AccentText.Bold(true).Render("[" + productsTab + "]")
		storesTab = styles.MutedText.Render(storesTab)
	} else {
		productsTab = styles.MutedText.Render(productsTab)
		storesTab = styles.AccentText.Bold(true).Render("[" + storesTab + "]")
	}

	var b strings.Builder
	b.WriteString(productsTab + "  " + storesTab)
	b.WriteString("\n")

	var rows []string
	if m.favorites.tab == favoriteProductsTab {
		for _, p := range m.snap.FavoriteProducts {
			rows = append(rows, m.productRow(p, innerWidth))
		}
	} else {
		for _, st := range m.snap.FavoriteStores {
			rows = append(rows, m.storeRow(st, m.nearPoint(), innerWidth))
		}
	}
	if len(rows) == 0 {
		b.WriteString(styles.MutedText.Render("Nothing here yet. Press f on a product or store to add it."))
		return m.renderTitledBox(label(lang, "Favorites"), b.String(), m.width, height, true)
	}

	perPage := m.favoritesPerPage()
	page := catalog.Paginate(rows, m.favorites.selected/perPage+1, perPage)
	b.WriteString(m.renderRows(page.Items, m.favorites.selected-m.favoritesPageStart(), innerWidth, perPage, m.theme.FocusBg))
	if page.TotalPages > 1 {
		b.WriteString("\n")
		for i := len(page.Items); i < perPage; i++ {
			b.WriteString("\n")
		}
		nav := fmt.Sprintf("Page %d of %d", page.Page, page.TotalPages)
		if page.HasPrev() {
			nav = "‹ " + nav
		}
		if page.HasNext() {
			nav += " ›"
		}
		b.WriteString(styles.FaintText.Render(nav + " · pgup/pgdown"))
	}
	return m.renderTitledBox(label(lang, "Favorites"), b.String(), m.width, height, true)
}
