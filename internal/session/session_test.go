package session

import (
	"testing"

	"catchat/internal/catapi"
)

func TestNameForID(t *testing.T) {
	chats := []catapi.ChatRef{
		{Name: "Trip", ID: "id-1"},
		{Name: "Work", ID: "id-2"},
	}

	tests := []struct {
		name     string
		id       string
		wantName string
		wantOK   bool
	}{
		{"first entry", "id-1", "Trip", true},
		{"second entry", "id-2", "Work", true},
		{"unknown id", "id-404", "", false},
		{"empty id", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, ok := NameForID(tt.id, chats)
			if name != tt.wantName || ok != tt.wantOK {
				t.Errorf("NameForID(%q) = (%q, %v), want (%q, %v)", tt.id, name, ok, tt.wantName, tt.wantOK)
			}
		})
	}

	if _, ok := NameForID("id-1", nil); ok {
		t.Error("NameForID on nil list should miss")
	}
}

func TestReset(t *testing.T) {
	s := &Session{
		Token:      "tok",
		Chats:      []catapi.ChatRef{{Name: "Trip", ID: "id-1"}},
		SelectedID: "id-1",
		History:    []catapi.Turn{{Role: catapi.RoleUser, Content: "hi"}},
	}

	s.Reset()

	if s.Token != "" || s.SelectedID != "" {
		t.Errorf("Reset left token %q selection %q", s.Token, s.SelectedID)
	}
	if len(s.Chats) != 0 || len(s.History) != 0 {
		t.Errorf("Reset left %d chats, %d turns", len(s.Chats), len(s.History))
	}
	if s.Authenticated() {
		t.Error("Authenticated should be false after Reset")
	}
}

func TestClearSelection(t *testing.T) {
	s := &Session{
		Token:      "tok",
		SelectedID: "id-1",
		History:    []catapi.Turn{{Role: catapi.RoleUser, Content: "hi"}},
	}

	s.ClearSelection()

	if s.SelectedID != "" || s.History != nil {
		t.Errorf("ClearSelection left selection %q, history %v", s.SelectedID, s.History)
	}
	if !s.Authenticated() {
		t.Error("ClearSelection must not drop the token")
	}
}
