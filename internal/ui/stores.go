package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/cijene/internal/catalog"
	"github.com/five82/cijene/internal/cijene"
	"github.com/five82/cijene/internal/geo"
	"github.com/five82/cijene/internal/notify"
	"github.com/five82/cijene/internal/search"
	"github.com/five82/cijene/internal/state"
	"github.com/five82/cijene/internal/toggle"
)

const storesPerPage = 100

type storesState struct {
	query     string
	chain     string
	city      int
	storeType int
	nearby    bool
	sort      int
	direction catalog.Direction
	result    []cijene.Store
	total     int
	selected  int
	loading   bool
	searched  bool
	err       error
	tracker   *search.Tracker
}

func newStoresState() storesState {
	return storesState{tracker: &search.Tracker{}}
}

// cityOptions lists "" (any city) followed by the cities in the results.
func (s storesState) cityOptions() []string {
	return append([]string{""}, catalog.UniqueCities(s.result)...)
}

func (s storesState) typeOptions() []string {
	return append([]string{""}, catalog.UniqueStoreTypes(s.result)...)
}

func optionAt(options []string, i int) string {
	if i < 0 || i >= len(options) {
		return ""
	}
	return options[i]
}

func (m Model) storeFilter() catalog.StoreFilter {
	f := catalog.StoreFilter{
		City:      optionAt(m.stores.cityOptions(), m.stores.city),
		StoreType: optionAt(m.stores.typeOptions(), m.stores.storeType),
		Sort:      catalog.StoreSorts[m.stores.sort],
		Direction: m.stores.direction,
	}
	if m.stores.nearby {
		f.Near = m.nearPoint()
		if f.Near != nil {
			f.Radius = float64(m.snap.SearchRadius)
		}
	}
	return f
}

func (m Model) visibleStores() []cijene.Store {
	return m.storeFilter().Apply(m.stores.result)
}

func (m Model) selectedStore() (cijene.Store, bool) {
	stores := m.visibleStores()
	if m.stores.selected < 0 || m.stores.selected >= len(stores) {
		return cijene.Store{}, false
	}
	return stores[m.stores.selected], true
}

// searchStores starts a store search, superseding any in flight.
func (m Model) searchStores() (Model, tea.Cmd) {
	query := cijene.StoreSearch{
		Query:   m.stores.query,
		Page:    1,
		PerPage: storesPerPage,
	}
	if m.stores.chain != "" {
		query.Chains = []string{m.stores.chain}
	} else {
		query.Chains = m.preferredChainFilter()
	}
	if m.stores.nearby {
		if p := m.nearPoint(); p != nil {
			lat, lon := p.Lat, p.Lon
			query.Latitude, query.Longitude = &lat, &lon
			query.Radius = max(m.snap.SearchRadius, 500)
		}
	}
	ctx, gen := m.stores.tracker.Begin(m.ctx)
	m.stores.loading = true
	m.stores.err = nil
	return m, m.searchStoresCmd(ctx, gen, query)
}

func (m Model) handleStores(msg storesMsg) (Model, tea.Cmd) {
	if !m.stores.tracker.IsCurrent(msg.gen) {
		return m, nil
	}
	m.stores.loading = false
	m.stores.searched = true
	if msg.err != nil {
		m.stores.err = msg.err
		m.report(msg.err, notify.Inline)
		return m, nil
	}
	m.stores.result = msg.result.Stores
	m.stores.total = msg.result.TotalCount
	m.stores.city, m.stores.storeType, m.stores.selected = 0, 0, 0
	return m, nil
}

func (m Model) handleStoresKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()
	if isNavKey(key) {
		m.stores.selected = selectRow(m.stores.selected, len(m.visibleStores()), key, m.listHeight(1))
		return m, nil
	}
	switch key {
	case "f":
		if st, ok := m.selectedStore(); ok {
			return m.toggleFavorite(toggle.StoreFavorite(m.store, st), nil)
		}
	case "s":
		m.stores.sort = cycle(m.stores.sort, len(catalog.StoreSorts))
	case "S":
		m.stores.direction = m.stores.direction.Toggle()
	case "m":
		m.stores.city = cycle(m.stores.city, len(m.stores.cityOptions()))
		m.stores.selected = 0
	case "M":
		m.stores.storeType = cycle(m.stores.storeType, len(m.stores.typeOptions()))
		m.stores.selected = 0
	case "n":
		if m.nearPoint() == nil {
			m.notifier.Warning("No location", "Set a default location in Settings first.")
			return m, nil
		}
		m.stores.nearby = !m.stores.nearby
		return m.searchStores()
	case "x":
		if m.stores.chain != "" {
			m.stores.chain = ""
			return m.searchStores()
		}
	case "enter":
		if st, ok := m.selectedStore(); ok {
			m.store.AddRecentlyViewedStore(st)
		}
	case "L":
		if st, ok := m.selectedStore(); ok && st.HasCoordinates() {
			m.store.SetDefaultLocation(storeLocation(st))
			m.notifier.Success("Location updated", "Searching near "+st.Name)
		}
	case "r":
		return m.searchStores()
	}
	return m, nil
}

// toggleFavorite flips a favorite binding behind the login gate.
func (m Model) toggleFavorite(b toggle.Binding, ev toggle.Event) (Model, tea.Cmd) {
	if !m.favoritesAllowed() {
		if ev != nil {
			ev.StopPropagation()
		}
		m.modal = newLoginModal(m.auth)
		return m, nil
	}
	b.Toggle(ev)
	return m, nil
}

func (m Model) renderStores() string {
	height := m.contentHeight()
	lang := m.snap.Language
	styles := m.theme.Styles()
	f := m.storeFilter()
	stores := m.visibleStores()

	title := fmt.Sprintf("%s · %s", label(lang, "Stores"), sortLabel(string(f.Sort), f.Direction))
	if m.stores.searched {
		title = fmt.Sprintf("%s (%d/%d) · %s", label(lang, "Stores"), len(stores), m.stores.total, sortLabel(string(f.Sort), f.Direction))
	}
	if m.stores.query != "" {
		title += " · /" + truncate(m.stores.query, 16)
	}

	listWidth, detailWidth := m.splitWidths()
	innerWidth := listWidth - 2

	var b strings.Builder
	b.WriteString(styles.MutedText.Render(m.storeFilterLine(f)))
	b.WriteString("\n")
	switch {
	case m.stores.loading:
		b.WriteString(m.renderLoading())
	case m.stores.err != nil:
		b.WriteString(m.renderInlineError(m.stores.err))
	case !m.stores.searched:
		b.WriteString(m.renderStoreHistory())
	case len(stores) == 0:
		b.WriteString(styles.MutedText.Render(label(lang, "No results")))
	default:
		rows := make([]string, len(stores))
		for i, st := range stores {
			rows[i] = m.storeRow(st, f.Near, innerWidth)
		}
		b.WriteString(m.renderRows(rows, m.stores.selected, innerWidth, m.listHeight(1), m.theme.FocusBg))
	}
	list := m.renderTitledBox(title, b.String(), listWidth, height, true)

	var detail string
	if st, ok := m.selectedStore(); ok && m.stores.err == nil && !m.stores.loading {
		detail = m.storeDetail(st, f.Near)
	}
	pane := m.renderTitledBox("Details", detail, detailWidth, height, false)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, pane)
}

func (m Model) storeFilterLine(f catalog.StoreFilter) string {
	parts := []string{"city: " + ternary(f.City == "", "any", f.City), "type: " + ternary(f.StoreType == "", "any", f.StoreType)}
	if m.stores.chain != "" {
		parts = append(parts, "chain: "+m.stores.chain+" (x clears)")
	}
	if f.Near != nil {
		parts = append(parts, "within "+geo.FormatDistance(f.Radius))
	}
	return strings.Join(parts, " · ")
}

func (m Model) renderStoreHistory() string {
	styles := m.theme.Styles()
	var lines []string
	if len(m.snap.StoreSearchHistory) > 0 {
		lines = append(lines, styles.AccentText.Render("Recent searches"))
		for _, q := range m.snap.StoreSearchHistory {
			lines = append(lines, "  "+q)
		}
		lines = append(lines, "")
	}
	if len(m.snap.RecentlyViewedStores) > 0 {
		lines = append(lines, styles.AccentText.Render("Recently viewed"))
		for _, st := range catalog.Paginate(m.snap.RecentlyViewedStores, 1, historyPreview).Items {
			lines = append(lines, "  "+st.Name+" · "+st.City)
		}
		lines = append(lines, "")
	}
	lines = append(lines, styles.FaintText.Render("press / to search stores, r to list all"))
	return strings.Join(lines, "\n")
}

func (m Model) storeRow(st cijene.Store, near *geo.Point, width int) string {
	distance := ""
	if near != nil && (st.Distance != nil || st.HasCoordinates()) {
		distance = geo.FormatDistance(catalog.StoreDistance(st, near))
	}
	nameWidth := max(width-starWidth-36, 10)
	return star(m.store.IsFavoriteStore(st.Key())) + cell(st.Name, nameWidth) + cell(st.City, 14) + cell(st.Chain, 12) + cell(distance, 10)
}

func (m Model) storeDetail(st cijene.Store, near *geo.Point) string {
	styles := m.theme.Styles()
	field := func(name, value string) string {
		if value == "" {
			value = "—"
		}
		return styles.MutedText.Render(name+": ") + styles.Text.Render(value)
	}
	lines := []string{
		styles.Text.Bold(true).Render(st.Name),
		field("Chain", st.Chain),
		field("Address", st.Address),
		field("City", st.City),
		field("Type", st.StoreType),
		field("Phone", st.Phone),
	}
	if st.HasCoordinates() {
		lines = append(lines, field("Coordinates", geo.FormatCoordinates(geo.Point{Lat: *st.Latitude, Lon: *st.Longitude})))
	}
	if near != nil && (st.Distance != nil || st.HasCoordinates()) {
		lines = append(lines, field("Distance", geo.FormatDistance(catalog.StoreDistance(st, near))))
	}
	lines = append(lines, "", styles.StarText.Render(strings.TrimSpace(star(m.store.IsFavoriteStore(st.Key()))))+styles.MutedText.Render(" f toggles favorite"))
	return strings.Join(lines, "\n")
}

// storeLocation converts a store's coordinates to a default location.
func storeLocation(st cijene.Store) state.Location {
	loc := state.Location{Country: state.DefaultCountry}
	if st.HasCoordinates() {
		lat, lon := *st.Latitude, *st.Longitude
		loc.Lat, loc.Lon = &lat, &lon
	}
	if st.City != "" {
		city := st.City
		loc.City = &city
	}
	return loc
}
