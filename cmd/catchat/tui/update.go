package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg), nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case loginMsg:
		m.busy = false
		m.notices = msg.Notices
		if msg.ShowMain {
			m.view = mainView
			m.chats = msg.Chats
			m.cursor = 0
			m.selectedID = ""
			m.history = nil
			m.label = ""
			m.password.SetValue("")
			m.focus = focusChats
			m.refreshViewport()
		} else {
			m.password.SetValue("")
		}
		return m, nil

	case logoutMsg:
		m.busy = false
		m.notices = msg.Notices
		m.view = loginView
		m.chats = msg.Chats
		m.history = msg.History
		m.selectedID = ""
		m.cursor = 0
		m.label = ""
		m.username.SetValue("")
		m.password.SetValue("")
		m.input.SetValue("")
		m.loginFocus = 0
		m.username.Focus()
		m.password.Blur()
		return m, nil

	case refreshMsg:
		m.busy = false
		m.notices = msg.Notices
		m.chats = msg.Chats
		m.selectedID = msg.SelectedID
		m.clampCursor()
		return m, nil

	case selectMsg:
		m.busy = false
		m.notices = msg.Notices
		m.selectedID = msg.SelectedID
		m.history = msg.History
		m.label = msg.Label
		m.refreshViewport()
		return m, nil

	case createMsg:
		m.busy = false
		m.notices = msg.Notices
		m.chats = msg.Chats
		m.selectedID = ""
		m.history = nil
		m.label = ""
		m.clampCursor()
		m.refreshViewport()
		return m, nil

	case deleteMsg:
		m.busy = false
		m.notices = msg.Notices
		m.chats = msg.Chats
		m.selectedID = ""
		m.history = msg.History
		m.label = ""
		m.clampCursor()
		m.refreshViewport()
		return m, nil

	case renameMsg:
		m.busy = false
		m.notices = msg.Notices
		m.chats = msg.Chats
		m.selectedID = ""
		m.history = nil
		m.label = ""
		m.clampCursor()
		m.refreshViewport()
		return m, nil

	case sendMsg:
		m.busy = false
		m.notices = msg.Notices
		m.history = msg.History
		m.input.SetValue(msg.Input)
		m.refreshViewport()
		return m, nil
	}

	return m, nil
}

func (m Model) resize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	chatWidth := m.width - sidebarWidth - 4
	if chatWidth < 20 {
		chatWidth = 20
	}
	chatHeight := m.height - 6
	if chatHeight < 5 {
		chatHeight = 5
	}

	if !m.ready {
		m.viewport = viewport.New(chatWidth, chatHeight)
		m.ready = true
	} else {
		m.viewport.Width = chatWidth
		m.viewport.Height = chatHeight
	}
	m.input.Width = chatWidth - 4

	m.renderer, _ = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(chatWidth-2),
	)
	m.refreshViewport()
	return m
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.chats) {
		m.cursor = len(m.chats) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// One operation at a time: drop keys while one is running.
	if m.busy {
		return m, nil
	}

	if m.view == loginView {
		return m.handleLoginKey(msg)
	}
	if m.prompt != promptNone {
		return m.handlePromptKey(msg)
	}
	return m.handleMainKey(msg)
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.loginFocus = (m.loginFocus + 1) % 2
		if m.loginFocus == 0 {
			m.username.Focus()
			m.password.Blur()
		} else {
			m.username.Blur()
			m.password.Focus()
		}
		return m, textinput.Blink

	case "enter":
		m.busy = true
		m.notices = nil
		return m, tea.Batch(m.spin.Tick, m.loginCmd(m.username.Value(), m.password.Value()))
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.prompt = promptNone
		m.promptInput.SetValue("")
		m.promptInput.Blur()
		return m, nil

	case "enter":
		kind := m.prompt
		value := m.promptInput.Value()
		m.prompt = promptNone
		m.promptInput.SetValue("")
		m.promptInput.Blur()
		m.busy = true
		m.notices = nil
		if kind == promptCreate {
			return m, tea.Batch(m.spin.Tick, m.createCmd(value))
		}
		return m, tea.Batch(m.spin.Tick, m.renameCmd(value))
	}

	var cmd tea.Cmd
	m.promptInput, cmd = m.promptInput.Update(msg)
	return m, cmd
}

func (m Model) handleMainKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		if m.focus == focusChats {
			m.focus = focusInput
			m.input.Focus()
		} else {
			m.focus = focusChats
			m.input.Blur()
		}
		return m, textinput.Blink

	case "ctrl+n":
		m.prompt = promptCreate
		m.promptInput.Placeholder = "New chat name"
		m.promptInput.Focus()
		return m, textinput.Blink

	case "ctrl+r":
		m.prompt = promptRename
		m.promptInput.Placeholder = "Set new name"
		m.promptInput.Focus()
		return m, textinput.Blink

	case "ctrl+d":
		m.busy = true
		m.notices = nil
		return m, tea.Batch(m.spin.Tick, m.deleteCmd())

	case "ctrl+l":
		m.busy = true
		m.notices = nil
		return m, tea.Batch(m.spin.Tick, m.refreshCmd())

	case "ctrl+q":
		m.busy = true
		m.notices = nil
		return m, tea.Batch(m.spin.Tick, m.logoutCmd())

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.focus == focusChats {
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "j":
			if m.cursor < len(m.chats)-1 {
				m.cursor++
			}
			return m, nil
		case "enter":
			if len(m.chats) == 0 {
				return m, nil
			}
			m.busy = true
			m.notices = nil
			return m, tea.Batch(m.spin.Tick, m.selectCmd(m.chats[m.cursor].ID))
		}
		return m, nil
	}

	if msg.String() == "enter" {
		m.busy = true
		m.notices = nil
		return m, tea.Batch(m.spin.Tick, m.sendCmd(m.input.Value()))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
