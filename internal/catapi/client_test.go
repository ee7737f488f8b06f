package catapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantToken    string
		wantErr      bool
		unauthorized bool
	}{
		{
			name:      "success",
			status:    http.StatusOK,
			body:      `{"access_token":"tok-123"}`,
			wantToken: "tok-123",
		},
		{
			name:         "bad credentials",
			status:       http.StatusUnauthorized,
			body:         `{"detail":"invalid credentials"}`,
			wantErr:      true,
			unauthorized: true,
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    `boom`,
			wantErr: true,
		},
		{
			name:    "missing token in 2xx",
			status:  http.StatusOK,
			body:    `{}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/auth/token" {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				if r.Method != http.MethodPost {
					t.Errorf("unexpected method: %s", r.Method)
				}
				var creds map[string]string
				if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
					t.Errorf("failed to decode credentials: %v", err)
				}
				if creds["username"] != "alice" {
					t.Errorf("unexpected username: %q", creds["username"])
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New(srv.URL, nil)
			token, err := c.Authenticate(context.Background(), "alice", "secret")

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				var ae *AuthError
				if !errors.As(err, &ae) {
					t.Fatalf("expected AuthError, got %T: %v", err, err)
				}
				if IsUnauthorized(err) != tt.unauthorized {
					t.Errorf("IsUnauthorized = %v, want %v", IsUnauthorized(err), tt.unauthorized)
				}
				return
			}
			if err != nil {
				t.Fatalf("Authenticate failed: %v", err)
			}
			if token != tt.wantToken {
				t.Errorf("token = %q, want %q", token, tt.wantToken)
			}
		})
	}
}

func TestListChats(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []ChatRef
	}{
		{
			name: "named chats",
			body: `{"points":[{"id":"id-1","metadata":{"name":"Trip"}},{"id":"id-2","metadata":{"name":"Work"}}]}`,
			want: []ChatRef{{Name: "Trip", ID: "id-1"}, {Name: "Work", ID: "id-2"}},
		},
		{
			name: "missing name defaults",
			body: `{"points":[{"id":"id-1","metadata":{}}]}`,
			want: []ChatRef{{Name: UnnamedChat, ID: "id-1"}},
		},
		{
			name: "empty payload",
			body: `{}`,
			want: []ChatRef{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Authorization"); got != "Bearer tok" {
					t.Errorf("Authorization = %q", got)
				}
				if got := r.Header.Get("Content-Type"); got != "application/json" {
					t.Errorf("Content-Type = %q", got)
				}
				if r.Header.Get("X-Request-Id") == "" {
					t.Error("X-Request-Id header missing")
				}
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New(srv.URL, nil)
			chats, err := c.ListChats(context.Background(), "tok")
			if err != nil {
				t.Fatalf("ListChats failed: %v", err)
			}
			if len(chats) != len(tt.want) {
				t.Fatalf("got %d chats, want %d", len(chats), len(tt.want))
			}
			for i := range chats {
				if chats[i] != tt.want[i] {
					t.Errorf("chat[%d] = %+v, want %+v", i, chats[i], tt.want[i])
				}
			}
			for _, c := range chats {
				if c.ID == "" {
					t.Error("chat with empty id")
				}
			}
		})
	}
}

func TestMissingTokenRefusedWithoutCall(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	c := New(srv.URL, nil)

	if _, err := c.ListChats(context.Background(), ""); err == nil {
		t.Error("ListChats with empty token should fail")
	}
	if err := c.SendMessage(context.Background(), "", "id", "hi"); err == nil {
		t.Error("SendMessage with empty token should fail")
	}

	var ae *AuthError
	_, err := c.ListMessages(context.Background(), "", "id")
	if !errors.As(err, &ae) {
		t.Fatalf("expected AuthError, got %T", err)
	}
	if ae.Detail != "missing token" {
		t.Errorf("Detail = %q, want %q", ae.Detail, "missing token")
	}

	if calls != 0 {
		t.Errorf("server was called %d times, want 0", calls)
	}
}

func TestListMessages(t *testing.T) {
	t.Run("text and bot on one point yields user then assistant", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("chat_id"); got != "id-1" {
				t.Errorf("chat_id = %q", got)
			}
			w.Write([]byte(`{"Name":"Trip","Messages":{"points":[{"metadata":{"text":"hello","bot":"hi there"}}]}}`))
		}))
		defer srv.Close()

		c := New(srv.URL, nil)
		hist, err := c.ListMessages(context.Background(), "tok", "id-1")
		if err != nil {
			t.Fatalf("ListMessages failed: %v", err)
		}
		if hist.Name != "Trip" {
			t.Errorf("Name = %q", hist.Name)
		}
		if len(hist.Turns) != 2 {
			t.Fatalf("got %d turns, want 2", len(hist.Turns))
		}
		if hist.Turns[0].Role != RoleUser || hist.Turns[0].Content != "hello" {
			t.Errorf("turn[0] = %+v", hist.Turns[0])
		}
		if hist.Turns[1].Role != RoleAssistant || hist.Turns[1].Content != "hi there" {
			t.Errorf("turn[1] = %+v", hist.Turns[1])
		}
	})

	t.Run("empty metadata contributes no turns", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"Messages":{"points":[{"metadata":{}},{"metadata":{"bot":"just me"}}]}}`))
		}))
		defer srv.Close()

		c := New(srv.URL, nil)
		hist, err := c.ListMessages(context.Background(), "tok", "id-1")
		if err != nil {
			t.Fatalf("ListMessages failed: %v", err)
		}
		if hist.Name != "Current Chat" {
			t.Errorf("Name = %q, want default", hist.Name)
		}
		if len(hist.Turns) != 1 {
			t.Fatalf("got %d turns, want 1", len(hist.Turns))
		}
		if hist.Turns[0].Role != RoleAssistant {
			t.Errorf("turn[0].Role = %q", hist.Turns[0].Role)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		c := New(srv.URL, nil)
		_, err := c.ListMessages(context.Background(), "tok", "id-1")
		if err == nil {
			t.Fatal("expected error")
		}
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("expected ErrMalformedResponse, got %v", err)
		}
	})
}

func TestWriteEndpoints(t *testing.T) {
	var gotMethod, gotPath string
	var gotQuery url.Values
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	ctx := context.Background()

	if err := c.CreateChat(ctx, "tok", "Trip"); err != nil {
		t.Fatalf("CreateChat failed: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/createChat" {
		t.Errorf("CreateChat sent %s %s", gotMethod, gotPath)
	}
	var payload struct {
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("CreateChat body: %v", err)
	}
	if payload.Metadata["name"] != "Trip" || payload.Metadata["content"] != "Trip" {
		t.Errorf("CreateChat metadata = %v", payload.Metadata)
	}

	if err := c.DeleteChat(ctx, "tok", "id-1"); err != nil {
		t.Fatalf("DeleteChat failed: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/delete_chat" || gotQuery.Get("chat_id") != "id-1" {
		t.Errorf("DeleteChat sent %s %s %v", gotMethod, gotPath, gotQuery)
	}

	if err := c.RenameChat(ctx, "tok", "id-1", "New Name"); err != nil {
		t.Fatalf("RenameChat failed: %v", err)
	}
	if gotPath != "/memory/collections/points/changeNameChat" {
		t.Errorf("RenameChat path = %s", gotPath)
	}
	if gotQuery.Get("chat_id") != "id-1" || gotQuery.Get("name") != "New Name" {
		t.Errorf("RenameChat query = %v", gotQuery)
	}

	if err := c.SendMessage(ctx, "tok", "id-1", "hello cat"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/message" {
		t.Errorf("SendMessage sent %s %s", gotMethod, gotPath)
	}
	var msg map[string]string
	if err := json.Unmarshal(gotBody, &msg); err != nil {
		t.Fatalf("SendMessage body: %v", err)
	}
	if msg["text"] != "hello cat" || msg["chat_id"] != "id-1" {
		t.Errorf("SendMessage payload = %v", msg)
	}
}

func TestErrorDetailExtraction(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantDetail string
	}{
		{
			name:       "json body is compacted",
			body:       "{\n  \"detail\": \"chat not found\"\n}",
			wantDetail: `{"detail":"chat not found"}`,
		},
		{
			name:       "plain text passed through",
			body:       "internal server error",
			wantDetail: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New(srv.URL, nil)
			err := c.CreateChat(context.Background(), "tok", "x")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %T: %v", err, err)
			}
			if apiErr.Status != http.StatusBadRequest {
				t.Errorf("Status = %d", apiErr.Status)
			}
			if apiErr.Detail != tt.wantDetail {
				t.Errorf("Detail = %q, want %q", apiErr.Detail, tt.wantDetail)
			}
			if !strings.Contains(apiErr.Error(), "creating chat") {
				t.Errorf("Error() = %q, missing op context", apiErr.Error())
			}
		})
	}
}
