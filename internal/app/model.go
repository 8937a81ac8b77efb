package app

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dmawson/scopeshot/internal/session"
	"github.com/dmawson/scopeshot/internal/ui"
)

type FocusArea int

const (
	FocusSidebar FocusArea = iota
	FocusContent
)

type Model struct {
	pages      map[PageID]Page
	activePage PageID
	focus      FocusArea
	width      int
	height     int
	showHelp   bool

	selected    *session.Instrument
	instruments []session.Instrument
	picker      *Picker
}

func New(pages map[PageID]Page) Model {
	return Model{pages: pages}
}

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, p := range m.pages {
		if cmd := p.Init(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		contentWidth := m.width - sidebarWidth
		contentHeight := m.height - 2 - 1 // status bar + instrument bar
		for _, p := range m.pages {
			p.SetSize(contentWidth, contentHeight)
		}
		return m, nil

	case session.DiscoveredMsg:
		// Remember the list for the picker overlay, then let every page
		// react as well.
		m.instruments = msg.Instruments
		if m.picker != nil {
			m.picker.SetItems(m.pickerItems())
		}
		return m.broadcast(msg)

	case PickerSelectedMsg:
		m.picker = nil
		for _, inst := range m.instruments {
			if inst.Resource.VisaID() == msg.Value {
				selected := inst
				m.selected = &selected
				return m.broadcast(InstrumentSelectedMsg{Instrument: inst})
			}
		}
		return m, nil

	case PickerClosedMsg:
		m.picker = nil
		return m, nil

	case InstrumentSelectedMsg:
		selected := msg.Instrument
		m.selected = &selected
		return m.broadcast(msg)

	case tea.KeyMsg:
		// When picker is open, forward all keys to picker
		if m.picker != nil {
			var cmd tea.Cmd
			m.picker, cmd = m.picker.Update(msg)
			return m, cmd
		}

		// When a page has an active text input, forward all keys
		// directly to the page — only ctrl+c still quits.
		if m.focus == FocusContent {
			if ic, ok := m.pages[m.activePage].(InputCapturer); ok && ic.InputCaptured() {
				if msg.String() == "ctrl+c" {
					return m, tea.Quit
				}
				page := m.pages[m.activePage]
				newPage, cmd := page.Update(msg)
				m.pages[m.activePage] = newPage
				return m, cmd
			}
		}

		// Global key handling
		switch {
		case key.Matches(msg, GlobalKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, GlobalKeys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		case key.Matches(msg, GlobalKeys.ToggleFocus):
			if m.focus == FocusSidebar {
				m.focus = FocusContent
				return m, nil
			}
			// When content focused, fall through to page handler
		}

		// Sidebar-only shortcuts
		if m.focus == FocusSidebar {
			if key.Matches(msg, GlobalKeys.InstrumentPicker) {
				m.picker = NewPicker("Select Instrument")
				contentWidth := m.width - sidebarWidth
				contentHeight := m.height - 2 - 1
				m.picker.SetSize(contentWidth, contentHeight)
				m.picker.SetItems(m.pickerItems())
				return m, nil
			}
		}

		// Handle arrow keys based on focus
		if m.focus == FocusSidebar {
			switch msg.String() {
			case "up":
				m.prevPage()
				return m, nil
			case "down":
				m.nextPage()
				return m, nil
			case "enter", "right":
				m.focus = FocusContent
				return m, nil
			}
		} else if m.focus == FocusContent {
			if msg.String() == "left" {
				m.focus = FocusSidebar
				return m, nil
			}
		}
	}

	// Key messages: only forward to active page when content is focused
	if _, isKey := msg.(tea.KeyMsg); isKey {
		if m.focus != FocusContent {
			return m, nil
		}
		page := m.pages[m.activePage]
		newPage, cmd := page.Update(msg)
		m.pages[m.activePage] = newPage
		return m, cmd
	}

	// Non-key messages (capture results, ticks, etc.): forward to all
	// pages so responses reach the page that initiated the command
	return m.broadcast(msg)
}

func (m Model) broadcast(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	for id, page := range m.pages {
		newPage, cmd := page.Update(msg)
		m.pages[id] = newPage
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m Model) pickerItems() []PickerItem {
	var items []PickerItem
	for _, inst := range m.instruments {
		desc := inst.Class
		if desc == "" {
			desc = "no profile"
		}
		items = append(items, PickerItem{
			Label: inst.Resource.Identity.Model,
			Value: inst.Resource.VisaID(),
			Desc:  desc,
		})
	}
	return items
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	contentWidth := m.width - sidebarWidth
	contentHeight := m.height - 2 - 1 // status bar + instrument bar

	page := m.pages[m.activePage]

	instrumentBar := renderInstrumentBar(m.selected, m.width, m.focus == FocusSidebar)
	sidebar := renderSidebar(PageOrder, m.activePage, m.pages, contentHeight, m.focus == FocusSidebar)
	content := ui.ContentStyle.
		Width(contentWidth).
		Height(contentHeight).
		Render(page.View())

	// Overlay picker on content area when open
	if m.picker != nil {
		m.picker.SetSize(contentWidth, contentHeight)
		pickerView := m.picker.View()
		content = lipgloss.Place(
			contentWidth, contentHeight,
			lipgloss.Center, lipgloss.Center,
			pickerView,
		)
	}

	statusBar := renderStatusBar(page.ShortHelp(), m.width, m.focus)

	return renderLayout(instrumentBar, sidebar, content, statusBar)
}

func (m *Model) nextPage() {
	for i, id := range PageOrder {
		if id == m.activePage {
			m.activePage = PageOrder[(i+1)%len(PageOrder)]
			return
		}
	}
}

func (m *Model) prevPage() {
	for i, id := range PageOrder {
		if id == m.activePage {
			m.activePage = PageOrder[(i-1+len(PageOrder))%len(PageOrder)]
			return
		}
	}
}
