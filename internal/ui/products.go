package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/cijene/internal/catalog"
	"github.com/five82/cijene/internal/cijene"
	"github.com/five82/cijene/internal/notify"
	"github.com/five82/cijene/internal/search"
	"github.com/five82/cijene/internal/state"
	"github.com/five82/cijene/internal/toggle"
)

const (
	productsPerPage = 50
	// historyPreview is how many recently viewed entries the history shows.
	historyPreview = 8
)

type productsState struct {
	query     string
	date      string
	dateErr   string
	sort      int
	direction catalog.Direction
	result    []cijene.Product
	total     int
	selected  int
	loading   bool
	searched  bool
	err       error
	tracker   *search.Tracker

	suggest     *search.Tracker
	debounce    *search.Debouncer
	suggestions []cijene.Product
	suggestIdx  int
}

func newProductsState() productsState {
	return productsState{
		tracker:    &search.Tracker{},
		suggest:    &search.Tracker{},
		debounce:   &search.Debouncer{},
		suggestIdx: -1,
	}
}

func (m Model) productFilter() catalog.ProductFilter {
	return catalog.ProductFilter{
		Sort:      catalog.ProductSorts[m.products.sort],
		Direction: m.products.direction,
	}
}

func (m Model) visibleProducts() []cijene.Product {
	return m.productFilter().Apply(m.products.result)
}

func (m Model) selectedProduct() (cijene.Product, bool) {
	products := m.visibleProducts()
	if m.products.selected < 0 || m.products.selected >= len(products) {
		return cijene.Product{}, false
	}
	return products[m.products.selected], true
}

// searchProducts starts a product search, superseding any in flight.
func (m Model) searchProducts() (Model, tea.Cmd) {
	if m.products.query == "" {
		return m, nil
	}
	query := cijene.ProductSearch{
		Query:   m.products.query,
		Chains:  m.preferredChainFilter(),
		Date:    m.products.date,
		Page:    1,
		PerPage: productsPerPage,
	}
	if cijene.ValidEAN(m.products.query) {
		query.Query, query.EAN = "", m.products.query
	}
	ctx, gen := m.products.tracker.Begin(m.ctx)
	m.products.loading = true
	m.products.err = nil
	return m, m.searchProductsCmd(ctx, gen, query)
}

func (m Model) handleProducts(msg productsMsg) (Model, tea.Cmd) {
	if !m.products.tracker.IsCurrent(msg.gen) {
		return m, nil
	}
	m.products.loading = false
	m.products.searched = true
	if msg.err != nil {
		m.products.err = msg.err
		m.report(msg.err, notify.Inline)
		return m, nil
	}
	m.products.result = msg.result.Products
	m.products.total = msg.result.TotalCount
	m.products.selected = 0
	return m, nil
}

func (m Model) handleSuggestTick(msg suggestTickMsg) (Model, tea.Cmd) {
	if m.inputTarget != inputProducts || !m.products.debounce.Ready(msg.seq) {
		return m, nil
	}
	ctx, gen := m.products.suggest.Begin(m.ctx)
	return m, m.suggestCmd(ctx, gen, msg.query)
}

func (m Model) handleSuggestions(msg suggestionsMsg) (Model, tea.Cmd) {
	if !m.products.suggest.IsCurrent(msg.gen) || m.inputTarget != inputProducts {
		return m, nil
	}
	if msg.err != nil {
		// Suggestions are best effort; the full search reports errors.
		m.logger.Debug().Err(msg.err).Msg("suggestions failed")
		m.products.suggestions = nil
		return m, nil
	}
	m.products.suggestions = msg.items
	m.products.suggestIdx = -1
	return m, nil
}

func (m Model) handleProductsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()
	if isNavKey(key) {
		m.products.selected = selectRow(m.products.selected, len(m.visibleProducts()), key, m.listHeight(1))
		return m, nil
	}
	switch key {
	case "d":
		return m.focusInput(inputDate, m.products.date, "Price date YYYY-MM-DD, empty for latest")
	case "f":
		if p, ok := m.selectedProduct(); ok {
			return m.toggleFavorite(toggle.ProductFavorite(m.store, p), nil)
		}
	case "c":
		if p, ok := m.selectedProduct(); ok {
			return m.toggleCompare(p, nil)
		}
	case "s":
		m.products.sort = cycle(m.products.sort, len(catalog.ProductSorts))
	case "S":
		m.products.direction = m.products.direction.Toggle()
	case "enter":
		if p, ok := m.selectedProduct(); ok {
			return m.openDetail(p)
		}
	case "b":
		m.store.ToggleSidebar()
	case "r":
		return m.searchProducts()
	}
	return m, nil
}

// toggleCompare flips compare membership, warning when the list is full.
func (m Model) toggleCompare(p cijene.Product, ev toggle.Event) (Model, tea.Cmd) {
	b := toggle.ProductCompare(m.store, p)
	if !b.Active() && len(m.snap.CompareProducts) >= state.MaxCompareProducts {
		if ev != nil {
			ev.StopPropagation()
		}
		m.notifier.Warning("Compare list full", fmt.Sprintf("You can compare up to %d products.", state.MaxCompareProducts))
		return m, nil
	}
	b.Toggle(ev)
	return m, nil
}

func (m Model) renderProducts() string {
	height := m.contentHeight()
	lang := m.snap.Language
	styles := m.theme.Styles()
	f := m.productFilter()
	products := m.visibleProducts()
	listWidth := m.width
	sideWidth := 0
	if m.snap.SidebarOpen {
		listWidth, sideWidth = m.splitWidths()
	}
	innerWidth := listWidth - 2

	title := fmt.Sprintf("%s · %s", label(lang, "Products"), sortLabel(string(f.Sort), f.Direction))
	if m.products.searched {
		title = fmt.Sprintf("%s (%d/%d) · %s", label(lang, "Products"), len(products), m.products.total, sortLabel(string(f.Sort), f.Direction))
	}
	if m.products.query != "" {
		title += " · /" + truncate(m.products.query, 20)
	}

	var b strings.Builder
	header := "date: " + ternary(m.products.date == "", "latest", m.products.date)
	if len(m.snap.PreferredChains) > 0 {
		header += " · chains: " + strings.Join(m.snap.PreferredChains, ", ")
	}
	b.WriteString(styles.MutedText.Render(header))
	if m.products.dateErr != "" {
		b.WriteString("  " + styles.DangerText.Render(m.products.dateErr))
	}
	b.WriteString("\n")

	switch {
	case m.inputTarget == inputProducts && len(m.products.suggestions) > 0:
		b.WriteString(m.renderSuggestions(innerWidth))
	case m.products.loading:
		b.WriteString(m.renderLoading())
	case m.products.err != nil:
		b.WriteString(m.renderInlineError(m.products.err))
	case !m.products.searched:
		b.WriteString(m.renderProductHistory())
	case len(products) == 0:
		b.WriteString(styles.MutedText.Render(label(lang, "No results")))
	default:
		rows := make([]string, len(products))
		for i, p := range products {
			rows[i] = m.productRow(p, innerWidth)
		}
		b.WriteString(m.renderRows(rows, m.products.selected, innerWidth, m.listHeight(1), m.theme.FocusBg))
	}
	list := m.renderTitledBox(title, b.String(), listWidth, height, true)
	if sideWidth == 0 {
		return list
	}
	side := m.renderTitledBox("History", m.renderProductHistory(), sideWidth, height, false)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, side)
}

func (m Model) renderSuggestions(width int) string {
	styles := m.theme.Styles()
	rows := make([]string, len(m.products.suggestions))
	for i, p := range m.products.suggestions {
		rows[i] = "  " + truncate(productLabel(p), width-2)
	}
	return styles.FaintText.Render("Suggestions (↑/↓, enter opens)") + "\n" +
		m.renderRows(rows, m.products.suggestIdx, width, len(rows), m.theme.FocusBg)
}

func (m Model) renderProductHistory() string {
	styles := m.theme.Styles()
	var lines []string
	if len(m.snap.ProductSearchHistory) > 0 {
		lines = append(lines, styles.AccentText.Render("Recent searches"))
		for _, q := range m.snap.ProductSearchHistory {
			lines = append(lines, "  "+q)
		}
		lines = append(lines, "")
	}
	if len(m.snap.RecentlyViewedProducts) > 0 {
		lines = append(lines, styles.AccentText.Render("Recently viewed"))
		for _, p := range catalog.Paginate(m.snap.RecentlyViewedProducts, 1, historyPreview).Items {
			lines = append(lines, "  "+productLabel(p))
		}
		lines = append(lines, "")
	}
	lines = append(lines, styles.FaintText.Render("press / to search products by name or barcode"))
	return strings.Join(lines, "\n")
}

// productLabel joins name, brand and quantity.
func productLabel(p cijene.Product) string {
	parts := []string{p.Name}
	if p.Brand != "" {
		parts = append(parts, p.Brand)
	}
	if q := strings.TrimSpace(p.Quantity + " " + p.Unit); q != "" {
		parts = append(parts, q)
	}
	return strings.Join(parts, " · ")
}

func (m Model) productRow(p cijene.Product, width int) string {
	compare := ternary(m.store.IsProductInCompare(p.Key()), "⇄ ", "  ")
	nameWidth := max(width-starWidth-2-52, 12)
	return star(m.store.IsFavoriteProduct(p.Key())) + compare +
		cell(p.Name, nameWidth) + cell(p.Brand, 16) + cell(strings.TrimSpace(p.Quantity+" "+p.Unit), 10) + cell(p.Category, 12) + cell(p.EAN, 14)
}
