// Package session holds the in-memory state of one authenticated user
// session: token, cached chat list, selection, and the currently displayed
// history. It is created empty at startup, populated by login, and fully
// cleared by logout. Nothing here is persisted.
package session

import "catchat/internal/catapi"

// Session is the single mutable record shared by all synchronization
// operations. Mutation is single-goroutine: the UI serializes operations,
// so no locking is needed.
type Session struct {
	Token      string
	Chats      []catapi.ChatRef
	SelectedID string
	History    []catapi.Turn
}

// Authenticated reports whether a login has produced a token.
func (s *Session) Authenticated() bool {
	return s.Token != ""
}

// ClearSelection drops the selected chat and its displayed history.
func (s *Session) ClearSelection() {
	s.SelectedID = ""
	s.History = nil
}

// Reset returns the session to its initial empty state.
func (s *Session) Reset() {
	s.Token = ""
	s.Chats = nil
	s.SelectedID = ""
	s.History = nil
}

// NameForID resolves a chat's display name from its id by scanning the
// list. Ids are unique, so the first match is the only match.
func NameForID(id string, chats []catapi.ChatRef) (string, bool) {
	for _, c := range chats {
		if c.ID == id {
			return c.Name, true
		}
	}
	return "", false
}
