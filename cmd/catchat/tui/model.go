// Package tui is the terminal presentation adapter. It renders session
// state and invokes one synchronization operation per user action; every
// re-render uses exactly the values the operation returned.
package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"catchat/internal/catapi"
	"catchat/internal/chat"
)

type view int

const (
	loginView view = iota
	mainView
)

// promptKind says what a modal text prompt is collecting.
type promptKind int

const (
	promptNone promptKind = iota
	promptCreate
	promptRename
)

// focusArea is the active component in the main view.
type focusArea int

const (
	focusChats focusArea = iota
	focusInput
)

// Model drives the two-view interface: a login form and the chat screen.
// Operations run in tea commands; busy gates input so at most one
// operation is in flight against the session at a time.
type Model struct {
	ops *chat.Ops

	view view
	busy bool

	// login form
	username   textinput.Model
	password   textinput.Model
	loginFocus int

	// main screen
	chats      []catapi.ChatRef
	cursor     int
	selectedID string
	label      string
	history    []catapi.Turn
	input      textinput.Model
	viewport   viewport.Model
	spin       spinner.Model
	renderer   *glamour.TermRenderer
	focus      focusArea

	// modal prompt for create/rename
	prompt      promptKind
	promptInput textinput.Model

	notices []chat.Notice

	width  int
	height int
	ready  bool
}

// New builds the initial model around the operation set.
func New(ops *chat.Ops) Model {
	username := textinput.New()
	username.Placeholder = "Username"
	username.Focus()

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	input := textinput.New()
	input.Placeholder = "Type here..."
	input.CharLimit = 0

	promptInput := textinput.New()
	promptInput.CharLimit = 128

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ops:         ops,
		view:        loginView,
		username:    username,
		password:    password,
		input:       input,
		promptInput: promptInput,
		spin:        sp,
		label:       chat.LabelNoChat,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick)
}
