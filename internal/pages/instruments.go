package pages

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dmawson/scopeshot/internal/app"
	"github.com/dmawson/scopeshot/internal/session"
	"github.com/dmawson/scopeshot/internal/ui"
)

// InstrumentsPage lists discovered instruments and lets the user pick the
// active one.
type InstrumentsPage struct {
	runner session.Runner

	instruments []session.Instrument
	cursor      int
	discovering bool
	selectedID  string

	width, height int
	message       string
}

func NewInstrumentsPage(runner session.Runner) *InstrumentsPage {
	return &InstrumentsPage{runner: runner}
}

func (p *InstrumentsPage) Init() tea.Cmd {
	p.discovering = true
	return p.runner.Discover()
}

func (p *InstrumentsPage) Update(msg tea.Msg) (app.Page, tea.Cmd) {
	switch msg := msg.(type) {
	case session.DiscoveredMsg:
		p.discovering = false
		p.instruments = msg.Instruments
		if p.cursor >= len(p.instruments) {
			p.cursor = len(p.instruments) - 1
		}
		if p.cursor < 0 {
			p.cursor = 0
		}
		if len(p.instruments) == 0 {
			p.message = "No instruments found. Check connections and press f to rescan."
		} else {
			p.message = ""
		}
		return p, nil

	case app.InstrumentSelectedMsg:
		p.selectedID = msg.Instrument.Resource.VisaID()
		return p, nil

	case tea.KeyMsg:
		if p.discovering {
			return p, nil
		}
		switch msg.String() {
		case "f":
			p.discovering = true
			p.message = ""
			return p, p.runner.Discover()
		case "down", "j":
			if p.cursor < len(p.instruments)-1 {
				p.cursor++
			}
		case "up", "k":
			if p.cursor > 0 {
				p.cursor--
			}
		case "enter":
			if p.cursor < len(p.instruments) {
				selected := p.instruments[p.cursor]
				p.selectedID = selected.Resource.VisaID()
				return p, func() tea.Msg {
					return app.InstrumentSelectedMsg{Instrument: selected}
				}
			}
		}
	}
	return p, nil
}

func (p *InstrumentsPage) View() string {
	var b strings.Builder
	b.WriteString(ui.Title("Instruments"))
	b.WriteString("\n")

	if p.discovering {
		b.WriteString("  Scanning serial ports and network endpoints...\n")
		return b.String()
	}

	if p.message != "" {
		b.WriteString("  " + ui.DimStyle.Render(p.message) + "\n")
		return b.String()
	}

	for i, inst := range p.instruments {
		cursor := "  "
		if i == p.cursor {
			cursor = ui.BoldStyle.Render("> ")
		}

		mark := "  "
		if inst.Resource.VisaID() == p.selectedID {
			mark = ui.AccentStyle.Render("* ")
		}

		class := inst.Class
		if class == "" {
			class = ui.DimStyle.Render("(no profile)")
		}

		line := fmt.Sprintf("%s%s%-24s %-32s %s",
			cursor, mark, inst.Resource.Identity.Model, inst.Resource.VisaID(), class)
		b.WriteString(line + "\n")
	}

	b.WriteString(fmt.Sprintf("\n  %d instrument(s)\n", len(p.instruments)))
	return b.String()
}

func (p *InstrumentsPage) Name() string { return "Instruments" }

func (p *InstrumentsPage) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "rescan")),
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	}
}

func (p *InstrumentsPage) SetSize(w, h int) {
	p.width = w
	p.height = h
}
