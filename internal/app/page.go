package app

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dmawson/scopeshot/internal/session"
)

// PageID identifies each page in the application.
type PageID int

const (
	InstrumentsPage PageID = iota
	CapturePage
	ConsolePage
	ProfilesPage
	SettingsPage
)

var PageOrder = []PageID{
	InstrumentsPage,
	CapturePage,
	ConsolePage,
	ProfilesPage,
	SettingsPage,
}

// Page is the interface every page in the application implements.
type Page interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Page, tea.Cmd)
	View() string
	Name() string
	ShortHelp() []key.Binding
	SetSize(width, height int)
}

// InputCapturer is an optional interface for pages with text inputs.
// When InputCaptured returns true, the app forwards all keys directly
// to the page instead of processing shortcuts like q, ?, left, etc.
type InputCapturer interface {
	InputCaptured() bool
}

// InstrumentSelectedMsg is broadcast to all pages when an instrument is
// selected, from the table or from the picker overlay.
type InstrumentSelectedMsg struct {
	Instrument session.Instrument
}

// RefreshIntervalChangedMsg is broadcast when the auto-refresh period
// setting changes.
type RefreshIntervalChangedMsg struct {
	Interval time.Duration
}

// SaveDirChangedMsg is broadcast when the screenshot directory setting
// changes.
type SaveDirChangedMsg struct {
	Dir string
}

// SaveFormatChangedMsg is broadcast when the default save format setting
// changes.
type SaveFormatChangedMsg struct {
	Format string
}
