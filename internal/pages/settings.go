package pages

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dmawson/scopeshot/internal/app"
	"github.com/dmawson/scopeshot/internal/config"
	"github.com/dmawson/scopeshot/internal/ui"
)

type settingField struct {
	label string
	key   string
}

var settingFields = []settingField{
	{"Refresh Interval (ms)", "refresh_interval_ms"},
	{"Save Directory", "save_dir"},
	{"Save Format", "save_format"},
	{"Baud Rate", "baud_rate"},
	{"Timeout (ms)", "timeout_ms"},
	{"Chunk Size", "chunk_size"},
}

// SettingsPage edits the runtime configuration. Changes that other pages
// care about are broadcast as messages; s persists the file.
type SettingsPage struct {
	cfg     *config.Config
	cfgPath string

	cursor  int
	editing bool
	input   textinput.Model

	width, height int
	message       string
}

func NewSettingsPage(cfg *config.Config, cfgPath string) *SettingsPage {
	ti := textinput.New()
	ti.CharLimit = 128
	return &SettingsPage{
		cfg:     cfg,
		cfgPath: cfgPath,
		input:   ti,
	}
}

func (p *SettingsPage) Init() tea.Cmd { return nil }

func (p *SettingsPage) Update(msg tea.Msg) (app.Page, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if p.editing {
			switch msg.String() {
			case "enter":
				cmd := p.applyValue(p.input.Value())
				p.editing = false
				p.input.Blur()
				return p, cmd
			case "esc":
				p.editing = false
				p.input.Blur()
				return p, nil
			}
			var cmd tea.Cmd
			p.input, cmd = p.input.Update(msg)
			return p, cmd
		}

		switch msg.String() {
		case "down", "j":
			if p.cursor < len(settingFields)-1 {
				p.cursor++
			}
		case "up", "k":
			if p.cursor > 0 {
				p.cursor--
			}
		case "enter", "e":
			p.editing = true
			p.input.SetValue(p.getValue(p.cursor))
			p.input.Focus()
			return p, p.input.Focus()
		case "s":
			if err := config.Save(*p.cfg, p.cfgPath); err != nil {
				p.message = fmt.Sprintf("Error saving: %v", err)
			} else {
				p.message = "Settings saved"
			}
		}
	}
	return p, nil
}

func (p *SettingsPage) View() string {
	var inner strings.Builder

	for i, f := range settingFields {
		cursor := "  "
		if i == p.cursor {
			cursor = ui.BoldStyle.Render("> ")
		}

		val := p.getValue(i)
		if val == "" {
			val = ui.DimStyle.Render("(not set)")
		}

		line := fmt.Sprintf("%s%-24s %s", cursor, f.label, val)
		inner.WriteString(line)
		inner.WriteString("\n")
	}

	if p.editing {
		inner.WriteString("\n")
		inner.WriteString(fmt.Sprintf("  Edit %s:\n", settingFields[p.cursor].label))
		inner.WriteString("  " + p.input.View())
		inner.WriteString("\n")
	}

	if p.message != "" {
		inner.WriteString("\n  " + p.message)
	}

	return ui.Panel("Settings", inner.String(), p.width, 0, false)
}

func (p *SettingsPage) Name() string { return "Settings" }

func (p *SettingsPage) ShortHelp() []key.Binding {
	if p.editing {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		}
	}
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit")),
		key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save to disk")),
	}
}

func (p *SettingsPage) InputCaptured() bool {
	return p.editing
}

func (p *SettingsPage) SetSize(w, h int) {
	p.width = w
	p.height = h
}

func (p *SettingsPage) getValue(idx int) string {
	switch settingFields[idx].key {
	case "refresh_interval_ms":
		return strconv.Itoa(p.cfg.RefreshIntervalMs)
	case "save_dir":
		return p.cfg.SaveDir
	case "save_format":
		return p.cfg.SaveFormat
	case "baud_rate":
		return strconv.Itoa(p.cfg.BaudRate)
	case "timeout_ms":
		return strconv.Itoa(p.cfg.TimeoutMs)
	case "chunk_size":
		return strconv.Itoa(p.cfg.ChunkSize)
	}
	return ""
}

func (p *SettingsPage) applyValue(val string) tea.Cmd {
	var cmd tea.Cmd
	switch settingFields[p.cursor].key {
	case "refresh_interval_ms":
		n, err := strconv.Atoi(val)
		if err != nil {
			return nil
		}
		p.cfg.RefreshIntervalMs = n
		interval := p.cfg.RefreshInterval()
		cmd = func() tea.Msg {
			return app.RefreshIntervalChangedMsg{Interval: interval}
		}
	case "save_dir":
		p.cfg.SaveDir = val
		cmd = func() tea.Msg {
			return app.SaveDirChangedMsg{Dir: val}
		}
	case "save_format":
		format := strings.ToUpper(strings.TrimSpace(val))
		switch format {
		case "PNG", "BMP", "JPG":
		default:
			p.message = fmt.Sprintf("Unknown format %q", val)
			return nil
		}
		p.cfg.SaveFormat = format
		cmd = func() tea.Msg {
			return app.SaveFormatChangedMsg{Format: format}
		}
	case "baud_rate":
		if n, err := strconv.Atoi(val); err == nil {
			p.cfg.BaudRate = n
		}
	case "timeout_ms":
		if n, err := strconv.Atoi(val); err == nil {
			p.cfg.TimeoutMs = n
		}
	case "chunk_size":
		if n, err := strconv.Atoi(val); err == nil {
			p.cfg.ChunkSize = n
		}
	}
	p.message = fmt.Sprintf("%s updated", settingFields[p.cursor].label)
	return cmd
}
