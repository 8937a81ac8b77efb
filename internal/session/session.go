// Package session bridges the TUI to the instrument side of the
// application: discovery, screenshot capture and raw console commands,
// each exposed as a bubbletea command producing a typed message.
package session

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/dmawson/scopeshot/internal/capture"
	"github.com/dmawson/scopeshot/internal/profile"
	"github.com/dmawson/scopeshot/internal/registry"
	"github.com/dmawson/scopeshot/internal/scpi"
	"github.com/dmawson/scopeshot/internal/textshot"
)

// Instrument is one discovered device with its resolved profile class.
// Class is empty when the model is not in the registry; such instruments
// can still be driven from the console but not captured.
type Instrument struct {
	Resource scpi.Resource
	Class    string
}

// DiscoveredMsg carries the result of a discovery sweep.
type DiscoveredMsg struct {
	Instruments []Instrument
}

// CaptureDoneMsg carries the outcome of one screenshot capture.
type CaptureDoneMsg struct {
	Instrument Instrument
	Data       []byte
	Format     profile.Format
	Duration   time.Duration
	Err        error
}

// ReplyMsg carries the outcome of a raw console command.
type ReplyMsg struct {
	Command string
	Reply   string
	Err     error
}

// Runner is the operation surface pages depend on. Tests substitute a
// recording fake.
type Runner interface {
	Discover() tea.Cmd
	Capture(inst Instrument) tea.Cmd
	Send(inst Instrument, command string) tea.Cmd
}

// Live is the Runner backed by real connections.
type Live struct {
	Profiles     *profile.Store
	Registry     *registry.Registry
	Opts         scpi.Options
	TCPEndpoints []string
	BaudRate     int

	dispatcher *capture.Dispatcher
	connect    func(scpi.Resource, scpi.Options) (scpi.Transport, error)
	discover   func([]string, int, scpi.Options) []scpi.Resource
}

// NewLive builds a Live runner from the loaded profile store and registry.
func NewLive(profiles *profile.Store, reg *registry.Registry, opts scpi.Options, tcpEndpoints []string, baudRate int) *Live {
	return &Live{
		Profiles:     profiles,
		Registry:     reg,
		Opts:         opts,
		TCPEndpoints: tcpEndpoints,
		BaudRate:     baudRate,
		dispatcher:   capture.New(),
		connect:      scpi.Connect,
		discover:     scpi.Discover,
	}
}

// Discover probes serial ports and configured TCP endpoints.
func (l *Live) Discover() tea.Cmd {
	return func() tea.Msg {
		logrus.Info("discovering instruments")
		resources := l.discover(l.TCPEndpoints, l.BaudRate, l.Opts)

		instruments := make([]Instrument, 0, len(resources))
		for _, r := range resources {
			class, err := l.Registry.Lookup(r.Identity.Model)
			if err != nil {
				logrus.Warnf("no profile class for model %q", r.Identity.Model)
				class = ""
			}
			instruments = append(instruments, Instrument{Resource: r, Class: class})
		}
		logrus.Infof("discovery finished: %d instrument(s)", len(instruments))
		return DiscoveredMsg{Instruments: instruments}
	}
}

// Capture grabs a screenshot from the instrument using its profile class.
func (l *Live) Capture(inst Instrument) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		data, format, err := l.captureOnce(inst)
		msg := CaptureDoneMsg{
			Instrument: inst,
			Data:       data,
			Format:     format,
			Duration:   time.Since(start),
			Err:        err,
		}
		if err != nil {
			logrus.Errorf("capture %s failed: %v", inst.Resource.VisaID(), err)
		} else {
			logrus.Infof("capture %s: %d bytes (%s) in %s",
				inst.Resource.VisaID(), len(data), format, msg.Duration)
		}
		return msg
	}
}

func (l *Live) captureOnce(inst Instrument) ([]byte, profile.Format, error) {
	if inst.Class == "" {
		return nil, "", fmt.Errorf("no profile class for %q", inst.Resource.Identity.Model)
	}

	t, err := l.connect(inst.Resource, l.Opts)
	if err != nil {
		return nil, "", err
	}
	defer t.Close()

	// Text-only instruments render their display instead of dumping it.
	if strings.Contains(inst.Class, textshot.ClassName) {
		data, err := textshot.Capture(t)
		if err != nil {
			return nil, "", err
		}
		return data, profile.PNG, nil
	}

	p, err := l.Profiles.Resolve(inst.Class)
	if err != nil {
		return nil, "", err
	}
	res, err := l.dispatcher.Capture(t, p)
	if err != nil {
		return nil, "", err
	}
	return res.Data, res.Format, nil
}

// Send writes a raw SCPI command; commands ending in '?' are queries.
func (l *Live) Send(inst Instrument, command string) tea.Cmd {
	return func() tea.Msg {
		t, err := l.connect(inst.Resource, l.Opts)
		if err != nil {
			return ReplyMsg{Command: command, Err: err}
		}
		defer t.Close()

		logrus.Infof("console %s: %s", inst.Resource.VisaID(), command)
		if isQuery(command) {
			reply, err := t.Query(command)
			return ReplyMsg{Command: command, Reply: reply, Err: err}
		}
		return ReplyMsg{Command: command, Err: t.Write(command)}
	}
}

func isQuery(command string) bool {
	head := strings.Fields(command)
	return len(head) > 0 && strings.HasSuffix(head[0], "?")
}
