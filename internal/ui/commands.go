package ui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/cijene/internal/applog"
	"github.com/five82/cijene/internal/auth"
	"github.com/five82/cijene/internal/cijene"
	"github.com/five82/cijene/internal/geo"
	"github.com/five82/cijene/internal/search"
)

// Messages

type tickMsg time.Time

type chainsMsg struct{ err error }

type storesMsg struct {
	gen    uint64
	result cijene.StoreSearchResult
	err    error
}

type productsMsg struct {
	gen    uint64
	result cijene.ProductSearchResult
	err    error
}

type suggestTickMsg struct {
	seq   uint64
	query string
}

type suggestionsMsg struct {
	gen   uint64
	items []cijene.Product
	err   error
}

// comparisonMsg carries prices for either the detail view or one compare
// column, identified by key.
type comparisonMsg struct {
	detail bool
	key    string
	gen    uint64
	cmp    cijene.PriceComparison
	err    error
}

type logsMsg struct {
	lines []string
	err   error
}

type locationMsg struct {
	pos geo.Position
	err error
}

// locationUpdateMsg carries one watched position and the channel to keep
// reading from.
type locationUpdateMsg struct {
	update geo.Update
	ch     <-chan geo.Update
}

type storeChangedMsg struct{}

type favoriteProductMsg struct {
	key     string
	product cijene.Product
	err     error
}

type favoriteStoreMsg struct {
	key   string
	store cijene.Store
	err   error
}

type authResultMsg struct {
	user auth.User
	err  error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func suggestTickCmd(seq uint64, query string) tea.Cmd {
	return tea.Tick(search.DebounceDelay, func(time.Time) tea.Msg {
		return suggestTickMsg{seq: seq, query: query}
	})
}

// request runs fn with the model's request timeout derived from ctx.
func (m Model) request(ctx context.Context, fn func(ctx context.Context) tea.Msg) tea.Cmd {
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return fn(ctx)
	}
}

// refreshChainsCmd reloads the chains list outside the poller schedule.
func (m Model) refreshChainsCmd() tea.Cmd {
	api, remote := m.api, m.remote
	return m.request(m.ctx, func(ctx context.Context) tea.Msg {
		chains, err := api.ListChains(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				remote.Update(nil, "", err)
			}
			return chainsMsg{err: err}
		}
		remote.Update(chains, "", nil)
		return chainsMsg{}
	})
}

func (m Model) searchStoresCmd(ctx context.Context, gen uint64, query cijene.StoreSearch) tea.Cmd {
	api := m.api
	return m.request(ctx, func(ctx context.Context) tea.Msg {
		result, err := api.SearchStores(ctx, query)
		return storesMsg{gen: gen, result: result, err: err}
	})
}

func (m Model) searchProductsCmd(ctx context.Context, gen uint64, query cijene.ProductSearch) tea.Cmd {
	api := m.api
	return m.request(ctx, func(ctx context.Context) tea.Msg {
		result, err := api.SearchProducts(ctx, query)
		return productsMsg{gen: gen, result: result, err: err}
	})
}

func (m Model) suggestCmd(ctx context.Context, gen uint64, query string) tea.Cmd {
	api := m.api
	return m.request(ctx, func(ctx context.Context) tea.Msg {
		items, err := api.SuggestProducts(ctx, query, search.MaxSuggestions)
		return suggestionsMsg{gen: gen, items: search.Limit(items), err: err}
	})
}

func (m Model) compareCmd(ctx context.Context, detail bool, gen uint64, product cijene.Product, query cijene.PriceQuery) tea.Cmd {
	api := m.api
	return m.request(ctx, func(ctx context.Context) tea.Msg {
		cmp, err := api.ComparePrices(ctx, product, query)
		return comparisonMsg{detail: detail, key: product.Key(), gen: gen, cmp: cmp, err: err}
	})
}

func (m Model) loadLogsCmd() tea.Cmd {
	path := m.logPath
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := applog.Tail(path, logTailLines)
		return logsMsg{lines: lines, err: err}
	}
}

func (m Model) locateCmd() tea.Cmd {
	tracker := m.location
	if tracker == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		pos, err := tracker.Current(ctx)
		return locationMsg{pos: pos, err: err}
	}
}

// watchLocationCmd starts watching the tracker and waits for its first report.
func (m Model) watchLocationCmd() tea.Cmd {
	tracker := m.location
	if tracker == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return nextLocationCmd(tracker.Watch(ctx, locationWatchInterval))()
	}
}

// nextLocationCmd waits for the next watched position. A closed channel
// ends the watch.
func nextLocationCmd(ch <-chan geo.Update) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-ch
		if !ok {
			return nil
		}
		return locationUpdateMsg{update: update, ch: ch}
	}
}

// waitForStoreChange blocks until the state store signals a change.
func waitForStoreChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

func (m Model) refreshFavoriteProductCmd(p cijene.Product) tea.Cmd {
	api, key := m.api, p.Key()
	byEAN := p.EAN != "" && cijene.ValidEAN(p.EAN)
	return m.request(m.ctx, func(ctx context.Context) tea.Msg {
		var fresh cijene.Product
		var err error
		if byEAN {
			fresh, err = api.GetProductByEAN(ctx, key)
		} else {
			fresh, err = api.GetProduct(ctx, key)
		}
		return favoriteProductMsg{key: key, product: fresh, err: err}
	})
}

func (m Model) refreshFavoriteStoreCmd(st cijene.Store) tea.Cmd {
	if st.ID == "" {
		return nil
	}
	api, key, id := m.api, st.Key(), st.ID
	return m.request(m.ctx, func(ctx context.Context) tea.Msg {
		fresh, err := api.GetStore(ctx, id)
		return favoriteStoreMsg{key: key, store: fresh, err: err}
	})
}
