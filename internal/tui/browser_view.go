package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/blackwell-systems/levelshelf/internal/browse"
	"github.com/blackwell-systems/levelshelf/internal/catalog"
	"github.com/blackwell-systems/levelshelf/internal/grid"
)

const (
	minCardWidth     = 12
	defaultCardWidth = 22
	// cardChrome is border plus horizontal padding.
	cardChrome = 4
	// maxDots switches the pager to numbers beyond this many pages.
	maxDots = 12
)

var footerShortcuts = []ShortcutEntry{
	{Key: "tab", Label: "tab switch"},
	{Key: "", Label: "/ search"},
	{Key: "enter", Label: "enter select"},
	{Key: "i", Label: "i install"},
	{Key: "a", Label: "a queue"},
	{Key: "", Label: "? help"},
	{Key: "", Label: "q quit"},
}

func (m BrowserModel) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")
	s.WriteString(m.renderSearch())
	s.WriteString("\n\n")
	s.WriteString(m.renderGrid())
	s.WriteString("\n")
	s.WriteString(m.renderPager())
	s.WriteString("\n\n")
	if details := m.renderDetails(); details != "" {
		s.WriteString(details)
		s.WriteString("\n\n")
	}
	if line := m.renderStatus(); line != "" {
		s.WriteString(line)
		s.WriteString("\n")
	}

	if m.help.ShowAll {
		s.WriteString(m.help.View(m.keys))
	} else {
		s.WriteString(RenderFooterBar(footerShortcuts, m.activeCmd))
	}
	return s.String()
}

func (m BrowserModel) renderTabs() string {
	b := m.deps.Browser
	tabs := b.Tabs()
	parts := make([]string, 0, len(tabs))
	for _, t := range tabs {
		label := t.String()
		if t == browse.TabQueue && m.deps.Queue != nil {
			label = fmt.Sprintf("%s (%d)", label, m.deps.Queue.Len())
		}
		if s := b.Session(t); s != nil && s.Loading {
			label += " " + m.spinner.View()
		}
		if t == b.Active() {
			parts = append(parts, StyleTabActive.Render(label))
		} else {
			parts = append(parts, StyleTab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m BrowserModel) renderSearch() string {
	if m.searching {
		return m.search.View()
	}
	b := m.deps.Browser
	s := b.Session(b.Active())
	if s == nil || s.Query.Raw == "" {
		return StyleHelp.Render("/ to search")
	}
	return StyleNormal.Render("Search: ") + StyleHighlight.Render(s.Query.Raw) + StyleHelp.Render("  (esc to clear)")
}

func (m BrowserModel) cardWidth() int {
	if m.width == 0 {
		return defaultCardWidth
	}
	w := m.width/m.deps.Browser.Columns() - cardChrome
	if w < minCardWidth {
		w = minCardWidth
	}
	return w
}

func (m BrowserModel) renderGrid() string {
	b := m.deps.Browser
	page := b.Current()
	if len(page.Items) == 0 {
		if s := b.Session(b.Active()); s != nil && s.Loading {
			return m.spinner.View() + " loading…"
		}
		return StyleHelp.Render("No levels")
	}

	byID := make(map[string]catalog.Level, len(page.Items))
	for _, l := range page.Items {
		byID[l.ID] = l
	}

	g := b.Grid()
	cur := g.Cursor()
	w := m.cardWidth()
	rows := make([]string, 0, g.Rows())
	for r := 0; r < g.Rows(); r++ {
		cells := make([]string, 0, g.Width(r))
		for c := 0; c < g.Width(r); c++ {
			id, _ := g.At(grid.Cursor{Col: c, Row: r})
			cells = append(cells, m.renderCard(byID[id], w, cur == grid.Cursor{Col: c, Row: r}))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m BrowserModel) renderCard(l catalog.Level, width int, selected bool) string {
	title := ansi.Truncate(displayName(l), width, "…")
	artist := ansi.Truncate(l.Artist, width, "…")
	if artist == "" {
		artist = " "
	}

	marks := DifficultyStyle(l.Difficulty).Render(l.Difficulty.Label())
	if m.isInstalled(l) {
		marks += " " + StyleInstalled.Render("✓")
	}
	if m.deps.Queue != nil && m.deps.Queue.Contains(l.ID) {
		marks += " " + StyleTag.Render("♪")
	}
	if l.Locked {
		marks += " " + StyleHelp.Render("locked")
	}

	style := StyleCard
	titleStyle := StyleNormal.Bold(true)
	if selected {
		style = StyleCardSelected
		titleStyle = StyleHighlight
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		StyleHelp.Render(artist),
		marks,
	)
	return style.Width(width + 2).Render(body)
}

func (m BrowserModel) isInstalled(l catalog.Level) bool {
	if l.Installed() {
		return true
	}
	if m.deps.Catalog == nil {
		return false
	}
	_, ok := m.deps.Catalog.ByID(l.ID)
	return ok
}

func (m BrowserModel) renderPager() string {
	page := m.deps.Browser.Current()
	pages := page.Count + 1

	pg := m.pager
	if pages > maxDots {
		pg.Type = paginator.Arabic
	}
	pg.TotalPages = pages
	pg.Page = page.Index

	return pg.View() + StyleHelp.Render(fmt.Sprintf("  page %d/%d · %d levels", page.Index+1, pages, page.Total))
}

func (m BrowserModel) renderDetails() string {
	l, ok := m.deps.Browser.Submit()
	if !ok {
		return ""
	}

	var s strings.Builder
	if m.protocol != ProtocolNone && m.deps.Icons != nil {
		if icon, ok := m.deps.Icons.Get(l.ID); ok {
			if img := RenderIcon(icon, m.protocol); img != "" {
				s.WriteString(img)
				s.WriteString("\n")
			}
		}
	}

	s.WriteString(StyleHeader.Render(displayName(*l)))
	s.WriteString(StyleHelp.Render("  " + l.ID))
	s.WriteString("\n")

	var credits []string
	if l.Artist != "" {
		credits = append(credits, "by "+l.Artist)
	}
	if l.Creator != "" {
		credits = append(credits, "mapped by "+l.Creator)
	}
	if len(credits) > 0 {
		s.WriteString(StyleNormal.Render(strings.Join(credits, " · ")))
		s.WriteString("\n")
	}
	if len(l.Tags) > 0 {
		s.WriteString(StyleTag.Render("[" + strings.Join(l.Tags, ", ") + "]"))
		s.WriteString("\n")
	}
	if l.Description != "" {
		width := m.width - 2
		if width <= 0 {
			width = 80
		}
		s.WriteString(StyleHelp.Render(ansi.Truncate(l.Description, width, "…")))
	}
	return strings.TrimRight(s.String(), "\n")
}

func (m BrowserModel) renderStatus() string {
	var prefix string
	if len(m.installing) > 0 {
		prefix = m.spinner.View() + " "
	}
	if m.status == "" {
		return strings.TrimSpace(prefix)
	}
	if m.statusErr {
		return prefix + StyleError.Render(m.status)
	}
	return prefix + StyleInstalled.Render(m.status)
}
