package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/five82/cijene/internal/auth"
	"github.com/five82/cijene/internal/catalog"
	"github.com/five82/cijene/internal/cijene"
	"github.com/five82/cijene/internal/geo"
	"github.com/five82/cijene/internal/notify"
	"github.com/five82/cijene/internal/search"
	"github.com/five82/cijene/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewChains View = iota
	ViewStores
	ViewProducts
	ViewDetail
	ViewFavorites
	ViewCompare
	ViewSettings
	ViewLogs
	ViewArchives
)

var viewTitles = map[View]string{
	ViewChains:    "Chains",
	ViewStores:    "Stores",
	ViewProducts:  "Products",
	ViewDetail:    "Product",
	ViewFavorites: "Favorites",
	ViewCompare:   "Compare",
	ViewSettings:  "Settings",
	ViewLogs:      "Logs",
	ViewArchives:  "Archives",
}

// inputTarget names what the shared search input is editing.
type inputTarget int

const (
	inputNone inputTarget = iota
	inputChains
	inputStores
	inputProducts
	inputDate
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultRefreshEvery   = time.Second
	logTailLines          = 500
	locationWatchInterval = time.Minute
)

// Options configures the UI.
type Options struct {
	Context  context.Context
	API      cijene.API
	Store    *state.Store
	Remote   *state.Remote
	Auth     *auth.Service
	Notifier *notify.Center
	Location *geo.Tracker
	LogPath  string
	Logger   zerolog.Logger
	// DataDir receives downloaded price archives.
	DataDir string
	// RequestTimeout bounds every API command, retries included.
	RequestTimeout time.Duration
	RefreshEvery   time.Duration
	// SystemDark selects the palette for the "system" theme preference.
	SystemDark bool
}

// apiAuthStatus records the last credential rejection reported by the API.
type apiAuthStatus struct {
	err *cijene.Error
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx          context.Context
	api          cijene.API
	store        *state.Store
	remote       *state.Remote
	auth         *auth.Service
	notifier     *notify.Center
	location     *geo.Tracker
	logPath      string
	dataDir      string
	logger       zerolog.Logger
	timeout      time.Duration
	refreshEvery time.Duration
	keys         keyMap

	// UI state
	theme      Theme
	systemDark bool
	view       View
	backView   View
	width      int
	height     int
	ready      bool
	now        time.Time

	// Data state
	snap       state.Snapshot
	remoteSnap state.RemoteSnapshot
	apiAuth    *apiAuthStatus

	// Store change signal, fed by a state subscription
	changes     chan struct{}
	unsubscribe func()

	// Shared search input
	input       textinput.Model
	inputTarget inputTarget

	chains    chainsState
	stores    storesState
	products  productsState
	detail    detailState
	favorites favoritesState
	compare   compareState
	settings  settingsState
	logs      logsState
	archives  archivesState

	// Overlays
	showHelp bool
	modal    Modal
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	refreshEvery := opts.RefreshEvery
	if refreshEvery <= 0 {
		refreshEvery = defaultRefreshEvery
	}
	remote := opts.Remote
	if remote == nil {
		remote = &state.Remote{}
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NewCenter(opts.Logger)
	}

	input := textinput.New()
	input.Prompt = "/ "
	input.CharLimit = 100

	m := Model{
		ctx:          ctx,
		api:          opts.API,
		store:        opts.Store,
		remote:       remote,
		auth:         opts.Auth,
		notifier:     notifier,
		location:     opts.Location,
		logPath:      opts.LogPath,
		dataDir:      opts.DataDir,
		logger:       opts.Logger.With().Str("component", "ui").Logger(),
		timeout:      timeout,
		refreshEvery: refreshEvery,
		keys:         DefaultKeyMap(),
		systemDark:   opts.SystemDark,
		view:         ViewChains,
		now:          time.Now(),
		apiAuth:      &apiAuthStatus{},
		input:        input,
		stores:       newStoresState(),
		products:     newProductsState(),
		detail:       newDetailState(),
		compare:      newCompareState(),
		archives:     newArchivesState(),
		changes:      make(chan struct{}, 1),
		logs:         logsState{follow: true, viewport: viewport.New(0, 0)},
	}
	status := m.apiAuth
	notifier.SetAuthHandler(func(err *cijene.Error) { status.err = err })

	changes := m.changes
	m.unsubscribe = m.store.Subscribe(func(state.Snapshot) {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	m.snap = m.store.Snapshot()
	m.remoteSnap = remote.Snapshot()
	m.theme = ResolveTheme(m.snap.Theme, m.systemDark)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.refreshEvery), waitForStoreChange(m.changes), m.watchLocationCmd())
}

// Close releases the store subscription.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.snap = next.store.Snapshot()
	next.theme = ResolveTheme(next.snap.Theme, next.systemDark)
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeLogs()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case chainsMsg:
		m.chains.loading = false
		m.remoteSnap = m.remote.Snapshot()
		if msg.err != nil {
			m.report(msg.err, notify.Global)
		}
		return m, nil

	case storesMsg:
		return m.handleStores(msg)

	case productsMsg:
		return m.handleProducts(msg)

	case suggestTickMsg:
		return m.handleSuggestTick(msg)

	case suggestionsMsg:
		return m.handleSuggestions(msg)

	case comparisonMsg:
		return m.handleComparison(msg)

	case logsMsg:
		m.handleLogs(msg)
		return m, nil

	case locationMsg:
		return m.handleLocation(msg)

	case locationUpdateMsg:
		return m.handleLocationUpdate(msg)

	case storeChangedMsg:
		m.snap = m.store.Snapshot()
		return m, waitForStoreChange(m.changes)

	case archivesMsg:
		return m.handleArchives(msg)

	case archiveDownloadedMsg:
		return m.handleArchiveDownloaded(msg)

	case favoriteProductMsg:
		return m.handleFavoriteProduct(msg)

	case favoriteStoreMsg:
		return m.handleFavoriteStore(msg)

	case authResultMsg:
		return m.handleAuthResult(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}
	if m.inputTarget != inputNone {
		return m.handleInputKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "?":
		m.showHelp = true
		return m, nil
	case "1":
		return m.switchView(ViewChains)
	case "2":
		return m.switchView(ViewStores)
	case "3":
		return m.switchView(ViewProducts)
	case "4":
		return m.switchView(ViewFavorites)
	case "5":
		return m.switchView(ViewCompare)
	case "6":
		return m.switchView(ViewSettings)
	case "7":
		return m.switchView(ViewArchives)
	case "l":
		return m.switchView(ViewLogs)
	case "/":
		return m.startSearch()
	}

	switch m.view {
	case ViewChains:
		return m.handleChainsKey(msg)
	case ViewStores:
		return m.handleStoresKey(msg)
	case ViewProducts:
		return m.handleProductsKey(msg)
	case ViewDetail:
		return m.handleDetailKey(msg)
	case ViewFavorites:
		return m.handleFavoritesKey(msg)
	case ViewCompare:
		return m.handleCompareKey(msg)
	case ViewSettings:
		return m.handleSettingsKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	case ViewArchives:
		return m.handleArchivesKey(msg)
	}
	return m, nil
}

// switchView activates v, loading whatever it needs.
func (m Model) switchView(v View) (Model, tea.Cmd) {
	if v == ViewFavorites && !m.favoritesAllowed() {
		m.modal = newLoginModal(m.auth)
		return m, nil
	}
	m.view = v
	switch v {
	case ViewLogs:
		return m, m.loadLogsCmd()
	case ViewCompare:
		return m, m.loadCompareCmds(false)
	case ViewArchives:
		if !m.archives.loaded && !m.archives.loading {
			return m.loadArchives()
		}
	}
	return m, nil
}

// favoritesAllowed reports whether the login gate lets the user at favorites.
func (m Model) favoritesAllowed() bool {
	return m.auth == nil || m.auth.Allowed()
}

// startSearch focuses the shared input on the active view's query.
func (m Model) startSearch() (Model, tea.Cmd) {
	switch m.view {
	case ViewChains:
		return m.focusInput(inputChains, m.chains.query, "Filter chains by name or code")
	case ViewStores:
		return m.focusInput(inputStores, m.stores.query, "Search stores by address")
	case ViewProducts, ViewFavorites, ViewCompare, ViewDetail:
		m.view = ViewProducts
		return m.focusInput(inputProducts, m.products.query, "Search products by name or EAN")
	}
	return m, nil
}

func (m Model) focusInput(target inputTarget, value, placeholder string) (Model, tea.Cmd) {
	m.inputTarget = target
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m *Model) blurInput() {
	m.inputTarget = inputNone
	m.input.Blur()
	m.products.suggestions = nil
	m.products.suggestIdx = -1
}

// handleInputKey routes keys to the focused search input.
func (m Model) handleInputKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	target := m.inputTarget
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.blurInput()
		return m, nil
	case "enter":
		value := search.Normalize(m.input.Value())
		if target == inputProducts && m.products.suggestIdx >= 0 && m.products.suggestIdx < len(m.products.suggestions) {
			p := m.products.suggestions[m.products.suggestIdx]
			m.blurInput()
			return m.openDetail(p)
		}
		m.blurInput()
		return m.commitInput(target, value)
	case "up", "down":
		if target == inputProducts && len(m.products.suggestions) > 0 {
			m.products.suggestIdx = moveSuggestion(m.products.suggestIdx, len(m.products.suggestions), msg.String() == "down")
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	value := m.input.Value()
	switch target {
	case inputChains:
		m.chains.query = search.Normalize(value)
		m.chains.selected = 0
	case inputProducts:
		seq := m.products.debounce.Bump()
		m.products.suggestIdx = -1
		if !search.ShouldSuggest(value) {
			m.products.suggest.Cancel()
			m.products.suggestions = nil
			return m, cmd
		}
		return m, tea.Batch(cmd, suggestTickCmd(seq, value))
	}
	return m, cmd
}

// moveSuggestion steps the highlighted suggestion, with -1 meaning the
// typed query itself.
func moveSuggestion(idx, n int, down bool) int {
	if down {
		if idx < n-1 {
			return idx + 1
		}
		return idx
	}
	if idx > -1 {
		return idx - 1
	}
	return idx
}

func (m Model) commitInput(target inputTarget, value string) (Model, tea.Cmd) {
	switch target {
	case inputChains:
		m.chains.query = value
		m.chains.selected = 0
	case inputStores:
		m.stores.query = value
		if value != "" {
			m.store.AddStoreSearch(value)
		}
		return m.searchStores()
	case inputProducts:
		m.products.query = value
		if value == "" {
			m.products.result = nil
			m.products.searched = false
			m.products.err = nil
			return m, nil
		}
		m.store.AddProductSearch(value)
		return m.searchProducts()
	case inputDate:
		if value != "" && !cijene.ValidDate(value) {
			m.products.dateErr = "Invalid date format. Use YYYY-MM-DD."
			return m, nil
		}
		m.products.dateErr = ""
		m.products.date = value
		if m.products.query != "" {
			return m.searchProducts()
		}
	}
	return m, nil
}

// handleTick processes the refresh tick.
func (m Model) handleTick(now time.Time) (Model, tea.Cmd) {
	m.now = now
	m.remoteSnap = m.remote.Snapshot()
	m.notifier.Prune(now)

	cmds := []tea.Cmd{tickCmd(m.refreshEvery)}
	if m.view == ViewLogs && m.logs.follow {
		cmds = append(cmds, m.loadLogsCmd())
	}
	return m, tea.Batch(cmds...)
}

// report routes err through the notification policy and logs it.
func (m Model) report(err error, scope notify.Scope) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	m.logger.Debug().Err(err).Msg("request failed")
	m.notifier.Report(err, scope)
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	return b.String()
}

// contentHeight is the space left for the active view below the bars.
func (m Model) contentHeight() int {
	return max(m.height-2, 3)
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.view {
	case ViewChains:
		return m.renderChains()
	case ViewStores:
		return m.renderStores()
	case ViewProducts:
		return m.renderProducts()
	case ViewDetail:
		return m.renderDetail()
	case ViewFavorites:
		return m.renderFavorites()
	case ViewCompare:
		return m.renderCompare()
	case ViewSettings:
		return m.renderSettings()
	case ViewLogs:
		return m.renderLogs()
	case ViewArchives:
		return m.renderArchives()
	}
	return ""
}

// renderEmpty centers a muted message in the content area.
func (m Model) renderEmpty(message string) string {
	styles := m.theme.Styles()
	return lipgloss.Place(m.width, m.contentHeight(), lipgloss.Center, lipgloss.Center, styles.MutedText.Render(message))
}

// nearPoint returns the default location, falling back to the tracker's
// last known position.
func (m Model) nearPoint() *geo.Point {
	if p := m.defaultPoint(); p != nil {
		return p
	}
	if m.location == nil {
		return nil
	}
	if pos, ok := m.location.Last(); ok {
		return &pos.Point
	}
	return nil
}

// defaultPoint returns the saved default location when it has coordinates.
func (m Model) defaultPoint() *geo.Point {
	loc := m.snap.DefaultLocation
	if !loc.HasCoordinates() {
		return nil
	}
	return &geo.Point{Lat: *loc.Lat, Lon: *loc.Lon}
}

// preferredChainFilter returns the preferred chains, or nil when none are set.
func (m Model) preferredChainFilter() []string {
	if len(m.snap.PreferredChains) == 0 {
		return nil
	}
	return append([]string(nil), m.snap.PreferredChains...)
}

// cycle returns the index after i in a list of n options.
func cycle(i, n int) int {
	if n == 0 {
		return 0
	}
	return (i + 1) % n
}

// sortLabel renders a sort key and direction for titles.
func sortLabel(key string, dir catalog.Direction) string {
	arrow := "↑"
	if dir == catalog.Desc {
		arrow = "↓"
	}
	return key + " " + arrow
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	if opts.Store == nil {
		return errors.New("ui: store is required")
	}
	if opts.API == nil {
		return errors.New("ui: api client is required")
	}
	opts.SystemDark = lipgloss.HasDarkBackground()
	m := New(opts)
	defer m.Close()
	programOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
	if opts.Context != nil {
		programOpts = append(programOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, programOpts...)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}
