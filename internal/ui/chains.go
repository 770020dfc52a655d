package ui

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/cijene/internal/catalog"
	"github.com/five82/cijene/internal/cijene"
)

var (
	minStoresSteps   = []int{0, 10, 50, 100}
	minProductsSteps = []int{0, 1000, 10000, 50000}
)

type chainsState struct {
	query       string
	sort        int
	direction   catalog.Direction
	minStores   int
	minProducts int
	selected    int
	loading     bool
}

func (s chainsState) filter() catalog.ChainFilter {
	return catalog.ChainFilter{
		Query:       s.query,
		MinStores:   minStoresSteps[s.minStores],
		MinProducts: minProductsSteps[s.minProducts],
		Sort:        catalog.ChainSorts[s.sort],
		Direction:   s.direction,
	}
}

func (m Model) visibleChains() []cijene.Chain {
	return m.chains.filter().Apply(m.remoteSnap.Chains)
}

func (m Model) selectedChain() (cijene.Chain, bool) {
	chains := m.visibleChains()
	if m.chains.selected < 0 || m.chains.selected >= len(chains) {
		return cijene.Chain{}, false
	}
	return chains[m.chains.selected], true
}

func (m Model) handleChainsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()
	if isNavKey(key) {
		m.chains.selected = selectRow(m.chains.selected, len(m.visibleChains()), key, m.listHeight(1))
		return m, nil
	}
	switch key {
	case "s":
		m.chains.sort = cycle(m.chains.sort, len(catalog.ChainSorts))
	case "S":
		m.chains.direction = m.chains.direction.Toggle()
	case "m":
		m.chains.minStores = cycle(m.chains.minStores, len(minStoresSteps))
		m.chains.selected = 0
	case "M":
		m.chains.minProducts = cycle(m.chains.minProducts, len(minProductsSteps))
		m.chains.selected = 0
	case " ":
		if c, ok := m.selectedChain(); ok {
			if slices.Contains(m.snap.PreferredChains, c.Code) {
				m.store.RemovePreferredChain(c.Code)
			} else {
				m.store.AddPreferredChain(c.Code)
			}
		}
	case "enter":
		if c, ok := m.selectedChain(); ok {
			m.stores.chain = c.Code
			m.view = ViewStores
			return m.searchStores()
		}
	case "r":
		m.chains.loading = true
		return m, m.refreshChainsCmd()
	}
	return m, nil
}

func (m Model) renderChains() string {
	height := m.contentHeight()
	lang := m.snap.Language
	snap := m.remoteSnap

	if !snap.HasChains {
		switch {
		case snap.LastError != nil:
			return m.renderTitledBox(label(lang, "Chains"), m.renderInlineError(snap.LastError), m.width, height, true)
		default:
			return m.renderTitledBox(label(lang, "Chains"), m.renderLoading(), m.width, height, true)
		}
	}

	chains := m.visibleChains()
	f := m.chains.filter()
	title := fmt.Sprintf("%s (%d/%d) · %s", label(lang, "Chains"), len(chains), len(snap.Chains), sortLabel(string(f.Sort), f.Direction))
	if f.Query != "" {
		title += " · /" + truncate(f.Query, 16)
	}
	if m.chains.loading {
		title += " · " + label(lang, "Loading") + "..."
	}

	listWidth, detailWidth := m.splitWidths()
	innerWidth := listWidth - 2
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.MutedText.Render(chainRowHeader(innerWidth)))
	b.WriteString("\n")
	if len(chains) == 0 {
		b.WriteString(styles.MutedText.Render(label(lang, "No results")))
	} else {
		rows := make([]string, len(chains))
		for i, c := range chains {
			rows[i] = m.chainRow(c, innerWidth)
		}
		b.WriteString(m.renderRows(rows, m.chains.selected, innerWidth, m.listHeight(1), m.theme.FocusBg))
	}
	summary := catalog.SummarizeChains(chains)
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(fmt.Sprintf("%d chains · %s stores · %s products · avg %d stores",
		summary.Chains, formatCount(summary.TotalStores), formatCount(summary.TotalProducts), summary.AverageStores)))

	list := m.renderTitledBox(title, b.String(), listWidth, height, true)

	var detail string
	if c, ok := m.selectedChain(); ok {
		detail = m.chainDetail(c)
	}
	pane := m.renderTitledBox("Details", detail, detailWidth, height, false)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, pane)
}

func chainRowHeader(width int) string {
	nameWidth := max(width-34, 10)
	return "  " + cell("Name", nameWidth) + cell("Stores", 8) + cell("Products", 11) + cell("Updated", 12)
}

func (m Model) chainRow(c cijene.Chain, width int) string {
	nameWidth := max(width-34, 10)
	marker := "  "
	if slices.Contains(m.snap.PreferredChains, c.Code) {
		marker = "• "
	}
	return marker + cell(c.Name, nameWidth) + cell(formatCount(c.StoresCount), 8) + cell(formatCount(c.ProductsCount), 11) + cell(formatAge(c.LastUpdatedTime(), m.now), 12)
}

func (m Model) chainDetail(c cijene.Chain) string {
	styles := m.theme.Styles()
	preferred := slices.Contains(m.snap.PreferredChains, c.Code)
	lines := []string{
		styles.Text.Bold(true).Render(c.Name),
		styles.MutedText.Render("Code: ") + styles.Text.Render(c.Code),
		styles.MutedText.Render("Stores: ") + styles.Text.Render(formatCount(c.StoresCount)),
		styles.MutedText.Render("Products: ") + styles.Text.Render(formatCount(c.ProductsCount)),
		styles.MutedText.Render("Last updated: ") + styles.Text.Render(ternary(c.LastUpdated == "", "unknown", c.LastUpdated)),
		styles.MutedText.Render("Preferred: ") + styles.Text.Render(ternary(preferred, "yes", "no")),
		"",
		styles.FaintText.Render("enter lists this chain's stores"),
	}
	return strings.Join(lines, "\n")
}
