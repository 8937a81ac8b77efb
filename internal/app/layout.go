package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/dmawson/scopeshot/internal/session"
	"github.com/dmawson/scopeshot/internal/ui"
	"github.com/dmawson/scopeshot/internal/version"
)

const sidebarWidth = 22 // 20 content + 2 border/padding

func renderInstrumentBar(selected *session.Instrument, width int, sidebarFocused bool) string {
	display := "(none)"
	class := "(no profile)"
	if selected != nil {
		display = selected.Resource.Identity.Model
		if display == "" {
			display = selected.Resource.VisaID()
		}
		if selected.Class != "" {
			class = selected.Class
		}
	}
	content := fmt.Sprintf("Instrument: %s  Profile: %s", display, class)
	hint := ""
	if sidebarFocused {
		hint = ui.DimStyle.Render("  [i] change")
	}
	return ui.StatusBarStyle.Width(width).Render(content + hint)
}

func renderSidebar(pages []PageID, active PageID, pageMap map[PageID]Page, height int, focused bool) string {
	var b strings.Builder
	title := ""
	if focused {
		title = ui.BoldStyle.Render("scopeshot [FOCUSED]")
	} else {
		title = ui.TitleStyle.Render("scopeshot")
	}
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(ui.DimStyle.Render("v" + version.Version))
	b.WriteString("\n\n")

	for _, id := range pages {
		p := pageMap[id]
		if id == active {
			b.WriteString(ui.SidebarActiveStyle.Render("▸ " + p.Name()))
		} else {
			b.WriteString(ui.SidebarItemStyle.Render("  " + p.Name()))
		}
		b.WriteString("\n")
	}

	style := ui.SidebarStyle.Height(height)
	if focused {
		style = style.BorderForeground(ui.Primary)
	}
	return style.Render(b.String())
}

func renderStatusBar(pageHelp []key.Binding, width int, focus FocusArea) string {
	var parts []string

	// Focus-specific instructions
	if focus == FocusSidebar {
		parts = append(parts,
			ui.StatusKey("↑/↓", "navigate"),
			ui.StatusKey("enter", "select"),
			ui.StatusKey("i", "instrument"),
		)
	} else {
		// Page-specific keys when content is focused
		for _, kb := range pageHelp {
			if kb.Enabled() {
				parts = append(parts, ui.StatusKey(kb.Help().Key, kb.Help().Desc))
			}
		}
	}

	// Always add global keys
	parts = append(parts,
		ui.StatusKey("tab", "focus"),
		ui.StatusKey("?", "help"),
		ui.StatusKey("q", "quit"),
	)

	line := strings.Join(parts, "  ")
	return ui.StatusBarStyle.Width(width).Render(line)
}

func renderLayout(instrumentBar, sidebar, content, statusBar string) string {
	main := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, content)
	return lipgloss.JoinVertical(lipgloss.Left, instrumentBar, main, statusBar)
}
