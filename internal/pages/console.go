package pages

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wrap"

	"github.com/dmawson/scopeshot/internal/app"
	"github.com/dmawson/scopeshot/internal/session"
	"github.com/dmawson/scopeshot/internal/store"
	"github.com/dmawson/scopeshot/internal/ui"
)

// ConsolePage sends raw SCPI commands to the selected instrument and shows
// the replies. Unfocused single-key shortcuts cover the common cleanup
// commands.
type ConsolePage struct {
	runner session.Runner
	store  *store.Store

	inst    *session.Instrument
	input   textinput.Model
	output  strings.Builder
	vp      viewport.Model
	sending bool

	width, height int
	message       string
}

func NewConsolePage(runner session.Runner, s *store.Store) *ConsolePage {
	ti := textinput.New()
	ti.Placeholder = "*IDN?"
	ti.CharLimit = 256
	ti.Prompt = "> "

	return &ConsolePage{
		runner: runner,
		store:  s,
		input:  ti,
		vp:     viewport.New(0, 0),
	}
}

func (p *ConsolePage) Init() tea.Cmd { return nil }

func (p *ConsolePage) Update(msg tea.Msg) (app.Page, tea.Cmd) {
	switch msg := msg.(type) {
	case app.InstrumentSelectedMsg:
		inst := msg.Instrument
		p.inst = &inst
		p.message = ""
		return p, nil

	case session.ReplyMsg:
		p.sending = false
		if msg.Err != nil {
			p.appendLine(ui.DimStyle.Render("! ") + msg.Err.Error())
			return p, nil
		}
		reply := strings.TrimRight(msg.Reply, "\r\n")
		if reply != "" {
			p.appendLine(reply)
		}
		if p.store != nil && p.inst != nil {
			p.store.AddCommand(store.CommandRecord{
				VisaID:    p.inst.Resource.VisaID(),
				Command:   msg.Command,
				Reply:     reply,
				Timestamp: time.Now(),
			})
		}
		return p, nil

	case tea.KeyMsg:
		return p.handleKey(msg)
	}

	var cmd tea.Cmd
	p.vp, cmd = p.vp.Update(msg)
	return p, cmd
}

func (p *ConsolePage) handleKey(msg tea.KeyMsg) (app.Page, tea.Cmd) {
	keyStr := msg.String()

	if p.input.Focused() {
		switch keyStr {
		case "enter":
			command := strings.TrimSpace(p.input.Value())
			p.input.SetValue("")
			if command == "" {
				return p, nil
			}
			return p, p.send(command)
		case "esc":
			p.input.Blur()
			return p, nil
		}
		var cmd tea.Cmd
		p.input, cmd = p.input.Update(msg)
		return p, cmd
	}

	switch keyStr {
	case "i", "enter":
		p.input.Focus()
		return p, p.input.Focus()
	case "c":
		return p, p.send("*CLS")
	case "r":
		return p, p.send("*RST")
	case "e":
		return p, p.send("SYST:ERR?")
	case "x":
		p.output.Reset()
		p.vp.SetContent("")
		return p, nil
	}

	var cmd tea.Cmd
	p.vp, cmd = p.vp.Update(msg)
	return p, cmd
}

func (p *ConsolePage) send(command string) tea.Cmd {
	if p.inst == nil {
		p.message = "No instrument selected"
		return nil
	}
	p.sending = true
	p.message = ""
	p.appendLine(ui.BoldStyle.Render("> " + command))
	return p.runner.Send(*p.inst, command)
}

func (p *ConsolePage) appendLine(line string) {
	p.output.WriteString(line + "\n")
	content := p.output.String()
	if p.vp.Width > 0 {
		content = wrap.String(content, p.vp.Width)
	}
	p.vp.SetContent(content)
	p.vp.GotoBottom()
}

func (p *ConsolePage) View() string {
	var b strings.Builder
	b.WriteString(ui.Title("Console"))
	b.WriteString("\n")

	if p.inst == nil {
		b.WriteString("  " + ui.DimStyle.Render("No instrument selected.") + "\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("  %s (%s)\n\n", p.inst.Resource.Identity.Model, p.inst.Resource.VisaID()))

	p.input.Width = p.width - 8
	b.WriteString("  " + p.input.View() + "\n\n")

	if p.sending {
		b.WriteString("  " + ui.AccentStyle.Render("Waiting for reply...") + "\n")
	}
	if p.message != "" {
		b.WriteString("  " + p.message + "\n")
	}

	b.WriteString(p.vp.View())
	return b.String()
}

func (p *ConsolePage) Name() string { return "Console" }

func (p *ConsolePage) ShortHelp() []key.Binding {
	if p.input.Focused() {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "unfocus")),
		}
	}
	return []key.Binding{
		key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "type command")),
		key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "*CLS")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "*RST")),
		key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "SYST:ERR?")),
		key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear")),
	}
}

func (p *ConsolePage) InputCaptured() bool {
	return p.input.Focused()
}

func (p *ConsolePage) SetSize(w, h int) {
	p.width = w
	p.height = h
	vpHeight := h - 10
	if vpHeight < 3 {
		vpHeight = 3
	}
	p.vp.Width = w - 4
	p.vp.Height = vpHeight
}
