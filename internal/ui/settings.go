package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/cijene/internal/geo"
	"github.com/five82/cijene/internal/notify"
	"github.com/five82/cijene/internal/state"
)

const radiusStep = 500

type settingRow int

const (
	settingTheme settingRow = iota
	settingCurrency
	settingLanguage
	settingRadius
	settingLocation
	settingPreferredChains
	settingClearHistory
	settingClearRecent
	settingClearFavorites
	settingAccount
	settingReset
	settingCount
)

type settingsState struct {
	selected int
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "j", "down":
		m.settings.selected = min(m.settings.selected+1, int(settingCount)-1)
		return m, nil
	case "k", "up":
		m.settings.selected = max(m.settings.selected-1, 0)
		return m, nil
	case "left", "-":
		return m.adjustSetting(settingRow(m.settings.selected), -1)
	case "right", "+", "=", "enter", " ":
		return m.adjustSetting(settingRow(m.settings.selected), 1)
	}
	return m, nil
}

// adjustSetting changes or triggers the setting in row. dir is -1 for left,
// 1 for right or enter.
func (m Model) adjustSetting(row settingRow, dir int) (Model, tea.Cmd) {
	snap := m.snap
	switch row {
	case settingTheme:
		m.store.SetTheme(nextTheme(snap.Theme))
	case settingCurrency:
		m.store.SetCurrency(ternary(snap.Currency == state.CurrencyEUR, state.CurrencyHRK, state.CurrencyEUR))
	case settingLanguage:
		m.store.SetLanguage(ternary(snap.Language == state.LanguageEnglish, state.LanguageCroatian, state.LanguageEnglish))
	case settingRadius:
		m.store.SetSearchRadius(snap.SearchRadius + dir*radiusStep)
	case settingLocation:
		if dir < 0 {
			m.store.SetDefaultLocation(state.Location{Country: state.DefaultCountry})
			return m, nil
		}
		if m.location == nil {
			m.notifier.Warning("Location unavailable", (&geo.Error{Code: geo.PositionUnavailable}).Error())
			return m, nil
		}
		return m, m.locateCmd()
	case settingPreferredChains:
		m.store.SetPreferredChains(nil)
	case settingClearHistory:
		m.store.ClearSearchHistory()
		m.notifier.Success("Search history cleared", "")
	case settingClearRecent:
		m.store.ClearRecentlyViewed()
		m.notifier.Success("Recently viewed cleared", "")
	case settingClearFavorites:
		m.store.ClearFavorites()
		m.notifier.Success("Favorites cleared", "")
	case settingAccount:
		return m.accountAction()
	case settingReset:
		m.store.ResetAppState()
		m.notifier.Success("Settings reset", "All preferences were restored to defaults.")
	}
	return m, nil
}

// accountAction logs out the current user or opens the login modal.
func (m Model) accountAction() (Model, tea.Cmd) {
	if m.auth == nil || !m.auth.Enabled() {
		m.notifier.Info("Accounts disabled", "Start with -require-login to use local accounts.")
		return m, nil
	}
	if _, ok := m.auth.CurrentUser(); ok {
		if err := m.auth.Logout(); err != nil {
			m.report(err, notify.Global)
			return m, nil
		}
		if m.view == ViewFavorites {
			m.view = ViewSettings
		}
		m.notifier.Success("Logged out", "")
		return m, nil
	}
	m.modal = newLoginModal(m.auth)
	return m, nil
}

func (m Model) handleLocation(msg locationMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Debug().Err(msg.err).Msg("location lookup failed")
		m.notifier.Warning("Location unavailable", msg.err.Error())
		return m, nil
	}
	lat, lon := msg.pos.Lat, msg.pos.Lon
	loc := state.Location{Lat: &lat, Lon: &lon, City: m.snap.DefaultLocation.City, Country: state.DefaultCountry}
	m.store.SetDefaultLocation(loc)
	m.notifier.Success("Location updated", geo.FormatCoordinates(msg.pos.Point))
	return m, nil
}

// handleLocationUpdate keeps watching. The tracker remembers the position
// for nearby searches; the saved default location is left alone.
func (m Model) handleLocationUpdate(msg locationUpdateMsg) (Model, tea.Cmd) {
	if err := msg.update.Err; err != nil {
		m.logger.Debug().Err(err).Msg("location watch failed")
	} else {
		m.logger.Debug().Str("position", geo.FormatCoordinates(msg.update.Position.Point)).Msg("location updated")
	}
	return m, nextLocationCmd(msg.ch)
}

func (m Model) settingValue(row settingRow) (string, string) {
	snap := m.snap
	switch row {
	case settingTheme:
		return "Theme", string(snap.Theme) + " (" + m.theme.Name + ")"
	case settingCurrency:
		return "Currency", string(snap.Currency)
	case settingLanguage:
		return "Language", ternary(snap.Language == state.LanguageCroatian, "Hrvatski", "English")
	case settingRadius:
		return "Search radius", geo.FormatDistance(float64(snap.SearchRadius))
	case settingLocation:
		value := "not set (enter locates)"
		if p := m.defaultPoint(); p != nil {
			value = geo.FormatCoordinates(*p)
			if snap.DefaultLocation.City != nil {
				value += ", " + *snap.DefaultLocation.City
			}
			value += " (← clears)"
		}
		return "Default location", value
	case settingPreferredChains:
		if len(snap.PreferredChains) == 0 {
			return "Preferred chains", "all (space on a chain adds it)"
		}
		return "Preferred chains", strings.Join(snap.PreferredChains, ", ") + " (enter clears)"
	case settingClearHistory:
		return "Search history", fmt.Sprintf("%d entries (enter clears)", len(snap.ProductSearchHistory)+len(snap.StoreSearchHistory))
	case settingClearRecent:
		return "Recently viewed", fmt.Sprintf("%d entries (enter clears)", len(snap.RecentlyViewedProducts)+len(snap.RecentlyViewedStores))
	case settingClearFavorites:
		return "Favorites", fmt.Sprintf("%d entries (enter clears)", len(snap.FavoriteProducts)+len(snap.FavoriteStores))
	case settingAccount:
		if m.auth == nil || !m.auth.Enabled() {
			return "Account", "disabled"
		}
		if user, ok := m.auth.CurrentUser(); ok {
			return "Account", user.Email + " (enter logs out)"
		}
		return "Account", "guest (enter logs in)"
	case settingReset:
		return "Reset", "restore all defaults"
	}
	return "", ""
}

func (m Model) renderSettings() string {
	styles := m.theme.Styles()
	innerWidth := m.width - 2
	rows := make([]string, 0, int(settingCount))
	for i := settingRow(0); i < settingCount; i++ {
		name, value := m.settingValue(i)
		rows = append(rows, "  "+cell(name, 20)+value)
	}
	content := m.renderRows(rows, m.settings.selected, innerWidth, len(rows), m.theme.FocusBg) +
		"\n\n" + styles.FaintText.Render("←/→ change · enter applies · settings are saved automatically")
	return m.renderTitledBox(label(m.snap.Language, "Settings"), content, m.width, m.contentHeight(), true)
}
