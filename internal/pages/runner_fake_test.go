package pages

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dmawson/scopeshot/internal/session"
)

type sendCall struct {
	inst    session.Instrument
	command string
}

type fakeRunner struct {
	nextMsg tea.Msg

	discoverCalls int
	captureCalls  []session.Instrument
	sendCalls     []sendCall
}

func (f *fakeRunner) cmd() tea.Cmd {
	return func() tea.Msg {
		return f.nextMsg
	}
}

func (f *fakeRunner) Discover() tea.Cmd {
	f.discoverCalls++
	return f.cmd()
}

func (f *fakeRunner) Capture(inst session.Instrument) tea.Cmd {
	f.captureCalls = append(f.captureCalls, inst)
	return f.cmd()
}

func (f *fakeRunner) Send(inst session.Instrument, command string) tea.Cmd {
	f.sendCalls = append(f.sendCalls, sendCall{inst: inst, command: command})
	return f.cmd()
}
