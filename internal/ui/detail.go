package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/cijene/internal/catalog"
	"github.com/five82/cijene/internal/cijene"
	"github.com/five82/cijene/internal/notify"
	"github.com/five82/cijene/internal/search"
	"github.com/five82/cijene/internal/toggle"
)

type detailState struct {
	product     cijene.Product
	cmp         *cijene.PriceComparison
	loading     bool
	err         error
	chain       int
	specialOnly bool
	sort        int
	selected    int
	tracker     *search.Tracker
}

func newDetailState() detailState {
	return detailState{tracker: &search.Tracker{}}
}

// chainOptions lists "" (every chain) followed by the chains with prices.
func (s detailState) chainOptions() []string {
	if s.cmp == nil {
		return []string{""}
	}
	return append([]string{""}, s.cmp.Chains...)
}

func (s detailState) filter() catalog.PriceFilter {
	return catalog.PriceFilter{
		Chain:       optionAt(s.chainOptions(), s.chain),
		SpecialOnly: s.specialOnly,
		Sort:        catalog.PriceSorts[s.sort],
	}
}

func (s detailState) visiblePrices() []cijene.Price {
	if s.cmp == nil {
		return nil
	}
	return s.filter().Apply(s.cmp.Prices)
}

// openDetail shows p's price comparison and records it as recently viewed.
func (m Model) openDetail(p cijene.Product) (Model, tea.Cmd) {
	if m.view != ViewDetail {
		m.backView = m.view
	}
	m.view = ViewDetail
	m.detail = detailState{product: p, tracker: m.detail.tracker}
	m.store.AddRecentlyViewedProduct(p)
	return m.loadDetail()
}

func (m Model) loadDetail() (Model, tea.Cmd) {
	ctx, gen := m.detail.tracker.Begin(m.ctx)
	m.detail.loading = true
	m.detail.err = nil
	return m, m.compareCmd(ctx, true, gen, m.detail.product, cijene.PriceQuery{})
}

func (m Model) handleComparison(msg comparisonMsg) (Model, tea.Cmd) {
	if !msg.detail {
		m.handleCompareColumn(msg)
		return m, nil
	}
	if !m.detail.tracker.IsCurrent(msg.gen) {
		return m, nil
	}
	m.detail.loading = false
	if msg.err != nil {
		m.detail.err = msg.err
		m.report(msg.err, notify.Inline)
		return m, nil
	}
	cmp := msg.cmp
	m.detail.cmp = &cmp
	m.detail.chain, m.detail.selected = 0, 0
	return m, nil
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()
	if isNavKey(key) {
		m.detail.selected = selectRow(m.detail.selected, len(m.detail.visiblePrices()), key, m.listHeight(4))
		return m, nil
	}
	switch key {
	case "esc":
		m.detail.tracker.Cancel()
		m.view = m.backView
	case "f":
		return m.toggleFavorite(toggle.ProductFavorite(m.store, m.detail.product), nil)
	case "c":
		return m.toggleCompare(m.detail.product, nil)
	case "s":
		m.detail.sort = cycle(m.detail.sort, len(catalog.PriceSorts))
	case "m":
		m.detail.chain = cycle(m.detail.chain, len(m.detail.chainOptions()))
		m.detail.selected = 0
	case "o":
		m.detail.specialOnly = !m.detail.specialOnly
		m.detail.selected = 0
	case "r":
		return m.loadDetail()
	}
	return m, nil
}

func (m Model) renderDetail() string {
	height := m.contentHeight()
	lang := m.snap.Language
	styles := m.theme.Styles()
	currency := m.snap.Currency
	p := m.detail.product
	innerWidth := m.width - 2

	marks := strings.TrimSpace(star(m.store.IsFavoriteProduct(p.Key())))
	if m.store.IsProductInCompare(p.Key()) {
		marks += " ⇄"
	}
	title := fmt.Sprintf("%s · %s", label(lang, "Prices"), truncate(p.Name, 40))

	var b strings.Builder
	b.WriteString(styles.StarText.Render(marks) + " " + styles.Text.Bold(true).Render(productLabel(p)))
	b.WriteString("\n")
	meta := []string{}
	if p.EAN != "" {
		meta = append(meta, "EAN "+p.EAN)
	}
	if p.Category != "" {
		meta = append(meta, p.Category)
	}
	b.WriteString(styles.MutedText.Render(strings.Join(meta, " · ")))
	b.WriteString("\n")

	switch {
	case m.detail.loading:
		b.WriteString(m.renderLoading())
		return m.renderTitledBox(title, b.String(), m.width, height, true)
	case m.detail.err != nil:
		b.WriteString(m.renderInlineError(m.detail.err))
		return m.renderTitledBox(title, b.String(), m.width, height, true)
	case m.detail.cmp == nil:
		return m.renderTitledBox(title, b.String(), m.width, height, true)
	}

	cmp := m.detail.cmp
	prices := m.detail.visiblePrices()
	f := m.detail.filter()

	summary := fmt.Sprintf("%s %s · %s %s · %s %s · %d stores · %d chains",
		label(lang, "Best"), formatPrice(cmp.MinPrice, currency),
		label(lang, "Worst"), formatPrice(cmp.MaxPrice, currency),
		label(lang, "Average"), formatPrice(cmp.AvgPrice, currency),
		len(cmp.Prices), len(cmp.Chains))
	b.WriteString(styles.AccentText.Render(summary))
	b.WriteString("\n")

	filterLine := fmt.Sprintf("chain: %s · specials only: %s · sort: %s",
		ternary(f.Chain == "", "all", f.Chain), ternary(f.SpecialOnly, "yes", "no"), f.Sort)
	if best, ok := catalog.BestPrice(prices); ok {
		worst, _ := catalog.WorstPrice(prices)
		if saving := worst.Effective() - best.Effective(); saving > 0 {
			filterLine += " · save up to " + formatPrice(saving, currency)
		}
	}
	b.WriteString(styles.MutedText.Render(filterLine))
	b.WriteString("\n")

	if len(prices) == 0 {
		b.WriteString(styles.MutedText.Render(label(lang, "No results")))
		return m.renderTitledBox(title, b.String(), m.width, height, true)
	}

	best, _ := catalog.BestPrice(prices)
	b.WriteString(styles.MutedText.Render(priceRowHeader(innerWidth)))
	b.WriteString("\n")
	rows := make([]string, len(prices))
	for i, price := range prices {
		rows[i] = m.priceRow(price, price.Effective() == best.Effective(), innerWidth)
	}
	b.WriteString(m.renderRows(rows, m.detail.selected, innerWidth, m.listHeight(4), m.theme.FocusBg))
	return m.renderTitledBox(title, b.String(), m.width, height, true)
}

func priceRowHeader(width int) string {
	storeWidth := max(width-2-12-12-12-12-11, 12)
	return "  " + cell("Chain", 12) + cell("Store", storeWidth) + cell("Regular", 12) + cell("Special", 12) + cell("Effective", 12) + cell("Date", 11)
}

func (m Model) priceRow(p cijene.Price, best bool, width int) string {
	currency := m.snap.Currency
	storeWidth := max(width-2-12-12-12-12-11, 12)
	special := ""
	if p.HasSpecial() {
		special = formatPrice(*p.SpecialPrice, currency)
	}
	store := strings.TrimSpace(strings.Trim(p.StoreAddress+", "+p.StoreCity, ", "))
	return ternary(best, "✓ ", "  ") + cell(p.Chain, 12) + cell(store, storeWidth) +
		cell(formatPrice(p.Price, currency), 12) + cell(special, 12) + cell(formatPrice(p.Effective(), currency), 12) + cell(p.Date, 11)
}
