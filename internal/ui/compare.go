package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/cijene/internal/catalog"
	"github.com/five82/cijene/internal/cijene"
	"github.com/five82/cijene/internal/notify"
	"github.com/five82/cijene/internal/state"
)

// compareState caches one price comparison per compared product key.
type compareState struct {
	results  map[string]cijene.PriceComparison
	errs     map[string]error
	loading  map[string]bool
	gens     map[string]uint64
	selected int
}

func newCompareState() compareState {
	return compareState{
		results: make(map[string]cijene.PriceComparison),
		errs:    make(map[string]error),
		loading: make(map[string]bool),
		gens:    make(map[string]uint64),
	}
}

// loadCompareCmds fetches prices for compared products. Without force only
// products with no cached result are fetched.
func (m Model) loadCompareCmds(force bool) tea.Cmd {
	var cmds []tea.Cmd
	for _, p := range m.snap.CompareProducts {
		key := p.Key()
		if !force {
			if _, ok := m.compare.results[key]; ok || m.compare.loading[key] {
				continue
			}
		}
		m.compare.gens[key]++
		m.compare.loading[key] = true
		delete(m.compare.errs, key)
		cmds = append(cmds, m.compareCmd(m.ctx, false, m.compare.gens[key], p, cijene.PriceQuery{}))
	}
	return tea.Batch(cmds...)
}

func (m Model) handleCompareColumn(msg comparisonMsg) {
	if m.compare.gens[msg.key] != msg.gen {
		return
	}
	delete(m.compare.loading, msg.key)
	if msg.err != nil {
		m.compare.errs[msg.key] = msg.err
		m.report(msg.err, notify.Inline)
		return
	}
	delete(m.compare.errs, msg.key)
	m.compare.results[msg.key] = msg.cmp
}

func (m Model) handleCompareKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	products := m.snap.CompareProducts
	switch msg.String() {
	case "left", "k", "up", "h":
		m.compare.selected = max(m.compare.selected-1, 0)
	case "right", "j", "down":
		m.compare.selected = min(m.compare.selected+1, max(len(products)-1, 0))
	case "x", "delete":
		if m.compare.selected < len(products) {
			m.store.RemoveCompareProduct(products[m.compare.selected].Key())
			m.compare.selected = max(min(m.compare.selected, len(products)-2), 0)
		}
	case "X":
		m.store.ClearCompareProducts()
		m.compare.selected = 0
	case "enter":
		if m.compare.selected < len(products) {
			return m.openDetail(products[m.compare.selected])
		}
	case "r":
		return m, m.loadCompareCmds(true)
	}
	return m, nil
}

// cheapestKey returns the compared product with the lowest best price.
func (m Model) cheapestKey() string {
	key, best := "", 0.0
	for _, p := range m.snap.CompareProducts {
		cmp, ok := m.compare.results[p.Key()]
		if !ok || len(cmp.Prices) == 0 || cmp.MinPrice <= 0 {
			continue
		}
		if key == "" || cmp.MinPrice < best {
			key, best = p.Key(), cmp.MinPrice
		}
	}
	return key
}

func (m Model) renderCompare() string {
	height := m.contentHeight()
	lang := m.snap.Language
	products := m.snap.CompareProducts
	title := fmt.Sprintf("%s (%d/%d)", label(lang, "Compare"), len(products), state.MaxCompareProducts)

	if len(products) == 0 {
		styles := m.theme.Styles()
		return m.renderTitledBox(title, styles.MutedText.Render("No products to compare. Press c on a product to add it."), m.width, height, true)
	}

	cheapest := m.cheapestKey()
	colWidth := max(m.width/len(products), 20)
	cols := make([]string, 0, len(products))
	for i, p := range products {
		width := colWidth
		if i == len(products)-1 {
			width = max(m.width-colWidth*(len(products)-1), 20)
		}
		content := m.compareColumn(p, p.Key() == cheapest, width-4)
		cols = append(cols, m.renderTitledBox(truncate(p.Name, width-6), content, width, height, i == m.compare.selected))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) compareColumn(p cijene.Product, cheapest bool, width int) string {
	styles := m.theme.Styles()
	lang := m.snap.Language
	currency := m.snap.Currency
	key := p.Key()

	lines := []string{
		styles.Text.Bold(true).Render(truncate(p.Name, width)),
		styles.MutedText.Render(truncate(productLabel(p), width)),
		"",
	}
	switch {
	case m.compare.loading[key]:
		lines = append(lines, m.renderLoading())
		return strings.Join(lines, "\n")
	case m.compare.errs[key] != nil:
		lines = append(lines, m.renderInlineError(m.compare.errs[key]))
		return strings.Join(lines, "\n")
	}
	cmp, ok := m.compare.results[key]
	if !ok {
		return strings.Join(lines, "\n")
	}
	if len(cmp.Prices) == 0 {
		lines = append(lines, styles.MutedText.Render(label(lang, "No results")))
		return strings.Join(lines, "\n")
	}
	lines = append(lines,
		styles.MutedText.Render(label(lang, "Best")+": ")+styles.SuccessText.Render(formatPrice(cmp.MinPrice, currency)),
		styles.MutedText.Render(label(lang, "Worst")+": ")+styles.DangerText.Render(formatPrice(cmp.MaxPrice, currency)),
		styles.MutedText.Render(label(lang, "Average")+": ")+styles.Text.Render(formatPrice(cmp.AvgPrice, currency)),
		styles.MutedText.Render(fmt.Sprintf("%d stores · %d chains", len(cmp.Prices), len(cmp.Chains))),
	)
	if best, ok := catalog.BestPrice(cmp.Prices); ok {
		lines = append(lines, styles.MutedText.Render("Cheapest at: ")+styles.Text.Render(truncate(best.Chain, width-13)))
	}
	if cheapest {
		lines = append(lines, "", styles.SuccessText.Render("Lowest price"))
	}
	return strings.Join(lines, "\n")
}
