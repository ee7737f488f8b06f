// Package chat implements the synchronization operations that keep the
// in-memory session consistent with server state. Each operation is a
// short-lived transaction: validate preconditions, call the API, update the
// session, return the new display values for the UI to render.

package chat

import "catchat/internal/catapi"

// NoticeLevel classifies a user-visible message.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeSuccess
	NoticeWarn
)

// Notice is a message the presentation layer shows to the user. Every
// notice is also written to the structured log by the operation that
// produced it.
type Notice struct {
	Level NoticeLevel
	Text  string
}

// History status labels shown above the chat view.
const (
	LabelNoChat     = "Select a chat to see messages"
	LabelLoadError  = "Error loading messages"
	LabelParseError = "Could not parse message response"
)

// LoginResult carries the outcome of a login attempt. On failure the
// session stays empty and ShowLogin remains true.
type LoginResult struct {
	ShowLogin bool
	ShowMain  bool
	Token     string
	Chats     []catapi.ChatRef
	Notices   []Notice
}

// LogoutResult echoes the fully cleared state so the UI can reset every
// component, including the login inputs.
type LogoutResult struct {
	ShowLogin bool
	ShowMain  bool
	Chats     []catapi.ChatRef
	History   []catapi.Turn
	Notices   []Notice
}

// RefreshResult is the outcome of a manual chat-list refresh. The selected
// id is echoed untouched.
type RefreshResult struct {
	Chats      []catapi.ChatRef
	SelectedID string
	Notices    []Notice
}

// SelectResult is the outcome of choosing (or clearing) a chat.
type SelectResult struct {
	SelectedID string
	History    []catapi.Turn
	Label      string
	Notices    []Notice
}

// CreateResult is the outcome of creating a chat. The name input is always
// cleared and the selection reset; the user picks the new chat explicitly.
type CreateResult struct {
	Chats     []catapi.ChatRef
	NameInput string
	Notices   []Notice
}

// DeleteResult is the outcome of deleting the selected chat. Selection and
// history are always cleared once the delete was attempted.
type DeleteResult struct {
	Chats   []catapi.ChatRef
	History []catapi.Turn
	Notices []Notice
}

// RenameResult is the outcome of renaming the selected chat. The rename
// input is cleared whether or not the call succeeded.
type RenameResult struct {
	Chats       []catapi.ChatRef
	RenameInput string
	Notices     []Notice
}

// SendResult is the outcome of the send-and-reconcile transaction. Input
// holds what the message box should contain afterwards: empty after a
// successful send, the original text after a failed one so the user can
// retry without retyping.
type SendResult struct {
	History []catapi.Turn
	Input   string
	Notices []Notice
}
