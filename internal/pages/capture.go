package pages

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dmawson/scopeshot/internal/app"
	"github.com/dmawson/scopeshot/internal/config"
	"github.com/dmawson/scopeshot/internal/imaging"
	"github.com/dmawson/scopeshot/internal/profile"
	"github.com/dmawson/scopeshot/internal/session"
	"github.com/dmawson/scopeshot/internal/store"
	"github.com/dmawson/scopeshot/internal/ui"
)

// refreshTickMsg drives auto-refresh. The sequence number invalidates
// ticks scheduled before the last toggle.
type refreshTickMsg struct {
	seq int
}

// CapturePage triggers screenshot captures on the selected instrument,
// optionally on a periodic timer, and saves the last payload to disk.
type CapturePage struct {
	runner session.Runner
	store  *store.Store
	cfg    *config.Config

	inst      *session.Instrument
	capturing bool

	auto     bool
	interval time.Duration
	tickSeq  int

	lastData     []byte
	lastFormat   profile.Format
	lastDuration time.Duration
	lastTime     time.Time
	lastErr      error
	savedPath    string

	saveDir    string
	saveFormat string

	// Injected for tests.
	saveFn func(data []byte, declared profile.Format, path string) error
	now    func() time.Time

	width, height int
	message       string
}

func NewCapturePage(runner session.Runner, s *store.Store, cfg *config.Config) *CapturePage {
	return &CapturePage{
		runner:     runner,
		store:      s,
		cfg:        cfg,
		interval:   cfg.RefreshInterval(),
		saveDir:    cfg.SaveDir,
		saveFormat: cfg.SaveFormat,
		saveFn:     imaging.Save,
		now:        time.Now,
	}
}

func (p *CapturePage) Init() tea.Cmd { return nil }

func (p *CapturePage) Update(msg tea.Msg) (app.Page, tea.Cmd) {
	switch msg := msg.(type) {
	case app.InstrumentSelectedMsg:
		inst := msg.Instrument
		p.inst = &inst
		p.stopAuto()
		p.lastData = nil
		p.lastErr = nil
		p.savedPath = ""
		p.message = ""
		return p, nil

	case app.RefreshIntervalChangedMsg:
		p.interval = msg.Interval
		return p, nil

	case app.SaveDirChangedMsg:
		p.saveDir = msg.Dir
		return p, nil

	case app.SaveFormatChangedMsg:
		p.saveFormat = msg.Format
		return p, nil

	case session.CaptureDoneMsg:
		if !p.capturing {
			return p, nil
		}
		p.capturing = false
		p.lastData = msg.Data
		p.lastFormat = msg.Format
		p.lastDuration = msg.Duration
		p.lastTime = p.now()
		p.lastErr = msg.Err
		p.savedPath = ""
		p.recordCapture(msg, "")
		if msg.Err != nil {
			p.message = fmt.Sprintf("Capture failed: %v", msg.Err)
			p.stopAuto()
			return p, nil
		}
		p.message = ""
		if p.auto {
			return p, p.scheduleTick()
		}
		return p, nil

	case refreshTickMsg:
		if !p.auto || msg.seq != p.tickSeq {
			return p, nil
		}
		if p.capturing {
			return p, p.scheduleTick()
		}
		return p, p.startCapture()

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			if p.capturing {
				return p, nil
			}
			return p, p.startCapture()
		case "a":
			if p.auto {
				p.stopAuto()
				p.message = "Auto-refresh off"
				return p, nil
			}
			if p.inst == nil {
				p.message = "No instrument selected"
				return p, nil
			}
			p.auto = true
			p.message = fmt.Sprintf("Auto-refresh every %s", p.interval)
			if p.capturing {
				return p, nil
			}
			return p, p.startCapture()
		case "s":
			p.saveLast()
			return p, nil
		}
	}
	return p, nil
}

func (p *CapturePage) startCapture() tea.Cmd {
	if p.inst == nil {
		p.message = "No instrument selected"
		return nil
	}
	p.capturing = true
	return p.runner.Capture(*p.inst)
}

func (p *CapturePage) stopAuto() {
	p.auto = false
	p.tickSeq++
}

func (p *CapturePage) scheduleTick() tea.Cmd {
	seq := p.tickSeq
	return tea.Tick(p.interval, func(time.Time) tea.Msg {
		return refreshTickMsg{seq: seq}
	})
}

// saveLast writes the most recent payload into the configured directory,
// converting to the configured format when it differs.
func (p *CapturePage) saveLast() {
	if len(p.lastData) == 0 {
		p.message = "Nothing to save"
		return
	}

	target := p.targetFormat()
	name := fmt.Sprintf("%s_%s.%s",
		sanitizeFilename(p.inst.Resource.Identity.Model),
		p.now().Format("20060102_150405"),
		target.Ext())
	path := filepath.Join(p.saveDir, name)

	if err := p.saveFn(p.lastData, p.lastFormat, path); err != nil {
		p.message = fmt.Sprintf("Save failed: %v", err)
		return
	}
	p.savedPath = path
	p.message = "Saved " + path
	if p.store != nil {
		p.store.AddCapture(store.CaptureRecord{
			Instrument:   p.inst.Resource.Identity.Model,
			ProfileClass: p.inst.Class,
			VisaID:       p.inst.Resource.VisaID(),
			Timestamp:    p.lastTime,
			Success:      true,
			Duration:     p.lastDuration.String(),
			File:         path,
		})
	}
}

func (p *CapturePage) recordCapture(msg session.CaptureDoneMsg, file string) {
	if p.store == nil {
		return
	}
	rec := store.CaptureRecord{
		Instrument:   msg.Instrument.Resource.Identity.Model,
		ProfileClass: msg.Instrument.Class,
		VisaID:       msg.Instrument.Resource.VisaID(),
		Timestamp:    p.now(),
		Success:      msg.Err == nil,
		Duration:     msg.Duration.String(),
		File:         file,
	}
	if msg.Err != nil {
		rec.Error = msg.Err.Error()
	}
	p.store.AddCapture(rec)
}

func (p *CapturePage) targetFormat() profile.Format {
	switch strings.ToUpper(p.saveFormat) {
	case "BMP":
		return profile.BMP
	case "JPG", "JPEG":
		return profile.JPG
	}
	return profile.PNG
}

func sanitizeFilename(s string) string {
	s = strings.TrimSpace(s)
	replacer := strings.NewReplacer(" ", "-", "/", "-", "\\", "-", ":", "-")
	return replacer.Replace(s)
}

func (p *CapturePage) View() string {
	var b strings.Builder
	b.WriteString(ui.Title("Capture"))
	b.WriteString("\n")

	if p.inst == nil {
		b.WriteString("  " + ui.DimStyle.Render("No instrument selected. Pick one on the Instruments page or press i.") + "\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("  Instrument: %s (%s)\n", p.inst.Resource.Identity.Model, p.inst.Resource.VisaID()))
	class := p.inst.Class
	if class == "" {
		class = "(none)"
	}
	b.WriteString(fmt.Sprintf("  Profile:    %s\n\n", class))

	switch {
	case p.capturing:
		b.WriteString("  " + ui.AccentStyle.Render("Capturing...") + "\n")
	case p.lastErr != nil:
		b.WriteString("  " + ui.ErrorBadge("Failed") + "  " + p.lastErr.Error() + "\n")
	case len(p.lastData) > 0:
		b.WriteString("  " + ui.SuccessBadge("OK") + fmt.Sprintf("  %d bytes (%s) in %s at %s\n",
			len(p.lastData), p.lastFormat, p.lastDuration.Round(time.Millisecond), p.lastTime.Format("15:04:05")))
		if p.savedPath != "" {
			b.WriteString("  Saved to " + p.savedPath + "\n")
		}
	default:
		b.WriteString("  " + ui.DimStyle.Render("Press r to capture a screenshot.") + "\n")
	}

	if p.auto {
		b.WriteString("\n  " + ui.AccentStyle.Render(fmt.Sprintf("Auto-refresh on (%s)", p.interval)) + "\n")
	}

	if p.message != "" {
		b.WriteString("\n  " + p.message + "\n")
	}

	return b.String()
}

func (p *CapturePage) Name() string { return "Capture" }

func (p *CapturePage) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "capture")),
		key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "auto-refresh")),
		key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
	}
}

func (p *CapturePage) SetSize(w, h int) {
	p.width = w
	p.height = h
}
