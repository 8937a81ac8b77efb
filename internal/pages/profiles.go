package pages

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dmawson/scopeshot/internal/app"
	"github.com/dmawson/scopeshot/internal/profile"
	"github.com/dmawson/scopeshot/internal/ui"
)

// ProfilesPage is a read-only view of the loaded capture recipes.
type ProfilesPage struct {
	profiles *profile.Store
	names    []string
	cursor   int

	width, height int
}

func NewProfilesPage(profiles *profile.Store) *ProfilesPage {
	return &ProfilesPage{
		profiles: profiles,
		names:    profiles.Names(),
	}
}

func (p *ProfilesPage) Init() tea.Cmd { return nil }

func (p *ProfilesPage) Update(msg tea.Msg) (app.Page, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "down", "j":
			if p.cursor < len(p.names)-1 {
				p.cursor++
			}
		case "up", "k":
			if p.cursor > 0 {
				p.cursor--
			}
		}
	}
	return p, nil
}

func (p *ProfilesPage) View() string {
	var b strings.Builder
	b.WriteString(ui.Title("Profiles"))
	b.WriteString("\n")

	if len(p.names) == 0 {
		b.WriteString("  " + ui.DimStyle.Render("No profiles loaded.") + "\n")
		return b.String()
	}

	for i, name := range p.names {
		cursor := "  "
		if i == p.cursor {
			cursor = ui.BoldStyle.Render("> ")
		}
		b.WriteString(fmt.Sprintf("%s%s\n", cursor, name))
	}

	b.WriteString("\n")
	b.WriteString(p.renderDetail(p.names[p.cursor]))
	return b.String()
}

func (p *ProfilesPage) renderDetail(name string) string {
	prof, err := p.profiles.Resolve(name)
	if err != nil {
		return "  " + ui.DimStyle.Render(err.Error()) + "\n"
	}

	var b strings.Builder
	sectionLabel := ui.BoldStyle

	sep := strings.Repeat("─", max(p.width-len(name)-8, 10))
	b.WriteString("  " + sectionLabel.Render("── "+name+" "+sep) + "\n")

	b.WriteString(fmt.Sprintf("  Query:   %s", prof.QueryMode))
	if prof.QueryCommand != "" {
		b.WriteString("  " + ui.AccentStyle.Render(prof.QueryCommand))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Format:  %s\n", prof.OutputFormat))
	if d := prof.Delay(); d > 0 {
		b.WriteString(fmt.Sprintf("  Delay:   %s\n", d))
	}

	if len(prof.SetupCommands) == 0 {
		b.WriteString("  Setup:   " + ui.DimStyle.Render("(none)") + "\n")
	} else {
		b.WriteString("  Setup:\n")
		for _, c := range prof.SetupCommands {
			b.WriteString("    " + ui.DimStyle.Render(c) + "\n")
		}
	}
	return b.String()
}

func (p *ProfilesPage) Name() string { return "Profiles" }

func (p *ProfilesPage) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "browse")),
	}
}

func (p *ProfilesPage) SetSize(w, h int) {
	p.width = w
	p.height = h
}
