package ui

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/cijene/internal/cijene"
	"github.com/five82/cijene/internal/notify"
	"github.com/five82/cijene/internal/persist"
	"github.com/five82/cijene/internal/search"
)

// archivesDir is the data directory subfolder that receives downloads.
const archivesDir = "archives"

type archivesState struct {
	items       []cijene.Archive
	selected    int
	loading     bool
	loaded      bool
	err         error
	downloading string // date of the archive being saved
	tracker     *search.Tracker
}

func newArchivesState() archivesState {
	return archivesState{tracker: &search.Tracker{}}
}

type archivesMsg struct {
	gen   uint64
	items []cijene.Archive
	err   error
}

type archiveDownloadedMsg struct {
	date  string
	path  string
	bytes int64
	err   error
}

// archivePath is where the archive for date is saved.
func (m Model) archivePath(date string) string {
	return filepath.Join(m.dataDir, archivesDir, date+".zip")
}

func (m Model) loadArchives() (Model, tea.Cmd) {
	ctx, gen := m.archives.tracker.Begin(m.ctx)
	m.archives.loading = true
	m.archives.err = nil
	api := m.api
	return m, m.request(ctx, func(ctx context.Context) tea.Msg {
		items, err := api.ListArchives(ctx)
		return archivesMsg{gen: gen, items: items, err: err}
	})
}

func (m Model) handleArchives(msg archivesMsg) (Model, tea.Cmd) {
	if !m.archives.tracker.IsCurrent(msg.gen) {
		return m, nil
	}
	m.archives.loading = false
	m.archives.loaded = true
	if msg.err != nil {
		m.archives.err = msg.err
		m.report(msg.err, notify.Inline)
		return m, nil
	}
	m.archives.items = msg.items
	m.archives.selected = min(m.archives.selected, max(len(msg.items)-1, 0))
	return m, nil
}

// downloadArchive saves the selected archive into the data directory. The
// client bounds the transfer with its download timeout, so the shorter
// request budget does not apply.
func (m Model) downloadArchive() (Model, tea.Cmd) {
	if m.archives.selected < 0 || m.archives.selected >= len(m.archives.items) {
		return m, nil
	}
	if m.archives.downloading != "" {
		m.notifier.Info("Download in progress", m.archives.downloading)
		return m, nil
	}
	if m.dataDir == "" {
		m.notifier.Warning("Downloads unavailable", "No data directory is configured.")
		return m, nil
	}

	date := m.archives.items[m.archives.selected].Date
	m.archives.downloading = date
	api, ctx, path := m.api, m.ctx, m.archivePath(date)
	return m, func() tea.Msg {
		n, err := persist.WriteFileAtomic(path, func(w io.Writer) (int64, error) {
			return api.DownloadArchive(ctx, date, w)
		})
		return archiveDownloadedMsg{date: date, path: path, bytes: n, err: err}
	}
}

func (m Model) handleArchiveDownloaded(msg archiveDownloadedMsg) (Model, tea.Cmd) {
	if m.archives.downloading == msg.date {
		m.archives.downloading = ""
	}
	if msg.err != nil {
		m.logger.Warn().Err(msg.err).Str("date", msg.date).Msg("archive download failed")
		m.report(msg.err, notify.Global)
		return m, nil
	}
	m.logger.Info().Str("date", msg.date).Str("path", msg.path).Int64("bytes", msg.bytes).Msg("archive saved")
	m.notifier.Success("Archive saved", fmt.Sprintf("%s (%s)", msg.path, formatBytes(msg.bytes)))
	return m, nil
}

func (m Model) handleArchivesKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()
	if isNavKey(key) {
		m.archives.selected = selectRow(m.archives.selected, len(m.archives.items), key, m.listHeight(2))
		return m, nil
	}
	switch key {
	case "enter":
		return m.downloadArchive()
	case "r":
		return m.loadArchives()
	}
	return m, nil
}

func (m Model) renderArchives() string {
	height := m.contentHeight()
	lang := m.snap.Language
	styles := m.theme.Styles()
	innerWidth := m.width - 2

	title := fmt.Sprintf("%s (%d)", label(lang, "Archives"), len(m.archives.items))
	if m.archives.downloading != "" {
		title += " · saving " + m.archives.downloading + "..."
	}

	var b strings.Builder
	b.WriteString(styles.MutedText.Render("  " + cell("Date", 12) + cell("Size", 12) + cell("Updated", 28)))
	b.WriteString("\n")
	switch {
	case m.archives.loading:
		b.WriteString(m.renderLoading())
	case m.archives.err != nil:
		b.WriteString(m.renderInlineError(m.archives.err))
	case len(m.archives.items) == 0:
		b.WriteString(styles.MutedText.Render(label(lang, "No results")))
	default:
		rows := make([]string, len(m.archives.items))
		for i, a := range m.archives.items {
			marker := ternary(a.Date == m.archives.downloading, "↓ ", "  ")
			rows[i] = marker + cell(a.Date, 12) + cell(formatBytes(a.Size), 12) + cell(a.Updated, 28)
		}
		b.WriteString(m.renderRows(rows, m.archives.selected, innerWidth, m.listHeight(2), m.theme.FocusBg))
		if m.archives.selected < len(m.archives.items) {
			b.WriteString("\n")
			b.WriteString(styles.FaintText.Render(truncate(m.archives.items[m.archives.selected].URL, innerWidth)))
		}
	}
	return m.renderTitledBox(title, b.String(), m.width, height, true)
}
