package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"catchat/internal/catapi"
	"catchat/internal/session"
)

// settleDelay is the buffer between a successful send and the follow-up
// history fetch. The backend processes messages asynchronously, so the new
// turns may not be visible immediately; the delay biases the fetch toward
// seeing them. It is a workaround for eventual consistency, not a
// synchronization primitive.
const settleDelay = time.Second

// API is the slice of the Cheshire Cat client the operations need.
// *catapi.Client satisfies it; tests substitute a scripted fake.
type API interface {
	Authenticate(ctx context.Context, username, password string) (string, error)
	ListChats(ctx context.Context, token string) ([]catapi.ChatRef, error)
	CreateChat(ctx context.Context, token, name string) error
	DeleteChat(ctx context.Context, token, id string) error
	RenameChat(ctx context.Context, token, id, name string) error
	ListMessages(ctx context.Context, token, id string) (catapi.History, error)
	SendMessage(ctx context.Context, token, id, text string) error
}

// Ops binds the API client to the session and exposes one method per user
// action. Methods are not reentrant: the presentation layer runs at most
// one operation at a time against the same session.
type Ops struct {
	api    API
	sess   *session.Session
	log    *zap.Logger
	settle time.Duration
}

// Option configures an Ops.
type Option func(*Ops)

// WithSettleDelay overrides the post-send settle delay. Tests use this to
// avoid real waits.
func WithSettleDelay(d time.Duration) Option {
	return func(o *Ops) {
		o.settle = d
	}
}

// NewOps creates the operation set for one session.
func NewOps(api API, sess *session.Session, log *zap.Logger, opts ...Option) *Ops {
	if log == nil {
		log = zap.NewNop()
	}
	o := &Ops{
		api:    api,
		sess:   sess,
		log:    log,
		settle: settleDelay,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Session exposes the underlying state for rendering. The presentation
// layer reads it, never writes it.
func (o *Ops) Session() *session.Session {
	return o.sess
}

func (o *Ops) warn(notices []Notice, text string) []Notice {
	o.log.Warn(text)
	return append(notices, Notice{Level: NoticeWarn, Text: text})
}

func (o *Ops) success(notices []Notice, text string) []Notice {
	o.log.Info(text)
	return append(notices, Notice{Level: NoticeSuccess, Text: text})
}

func (o *Ops) info(notices []Notice, text string) []Notice {
	o.log.Info(text)
	return append(notices, Notice{Level: NoticeInfo, Text: text})
}

// refreshChats replaces the cached chat list wholesale. Without a token it
// silently yields an empty list; a fetch failure degrades to an empty list
// with a warning rather than a hard error. When resetSelection is set the
// current selection and history are dropped, matching the behavior of the
// create, rename and delete paths.
func (o *Ops) refreshChats(ctx context.Context, resetSelection bool, notices []Notice) []Notice {
	if !o.sess.Authenticated() {
		o.sess.Chats = nil
		return notices
	}

	chats, err := o.api.ListChats(ctx, o.sess.Token)
	if err != nil {
		notices = o.warn(notices, err.Error())
		chats = nil
	}
	o.sess.Chats = chats

	if resetSelection {
		o.sess.ClearSelection()
	}
	return notices
}

// Login authenticates and, on success, performs the initial chat-list
// refresh and switches to the main view. Any failure leaves the session
// empty and the login view showing.
func (o *Ops) Login(ctx context.Context, username, password string) LoginResult {
	failed := LoginResult{ShowLogin: true}

	if username == "" || password == "" {
		failed.Notices = o.warn(nil, "Username and Password are required.")
		return failed
	}

	token, err := o.api.Authenticate(ctx, username, password)
	if err != nil {
		o.sess.Reset()
		if catapi.IsUnauthorized(err) {
			failed.Notices = o.warn(nil, "Invalid username or password.")
		} else {
			failed.Notices = o.warn(nil, err.Error())
		}
		return failed
	}

	o.sess.Reset()
	o.sess.Token = token

	var notices []Notice
	notices = o.success(notices, "Login successful.")
	notices = o.refreshChats(ctx, false, notices)

	return LoginResult{
		ShowMain: true,
		Token:    token,
		Chats:    o.sess.Chats,
		Notices:  notices,
	}
}

// Logout tears down every piece of session state locally. There is no
// server-side call.
func (o *Ops) Logout() LogoutResult {
	o.sess.Reset()
	return LogoutResult{
		ShowLogin: true,
		Notices:   o.info(nil, "User logged out."),
	}
}

// RefreshChats reloads the chat list on user request. Unlike the refreshes
// embedded in create, rename and delete, it leaves the selection alone.
func (o *Ops) RefreshChats(ctx context.Context) RefreshResult {
	notices := o.refreshChats(ctx, false, nil)
	return RefreshResult{
		Chats:      o.sess.Chats,
		SelectedID: o.sess.SelectedID,
		Notices:    notices,
	}
}

// SelectChat makes id the current chat and loads its history. An empty id
// clears the selection.
func (o *Ops) SelectChat(ctx context.Context, id string) SelectResult {
	if id == "" {
		o.sess.ClearSelection()
		return SelectResult{Label: LabelNoChat}
	}

	var notices []Notice
	hist, err := o.api.ListMessages(ctx, o.sess.Token, id)
	o.sess.SelectedID = id
	if err != nil {
		notices = o.warn(notices, err.Error())
		o.sess.History = nil
		label := LabelLoadError
		if errors.Is(err, catapi.ErrMalformedResponse) {
			label = LabelParseError
		}
		return SelectResult{SelectedID: id, Label: label, Notices: notices}
	}

	o.sess.History = hist.Turns
	return SelectResult{
		SelectedID: id,
		History:    hist.Turns,
		Label:      fmt.Sprintf("History for: %s", hist.Name),
		Notices:    notices,
	}
}

// CreateChat creates a chat and refreshes the list. The new chat is not
// auto-selected.
func (o *Ops) CreateChat(ctx context.Context, name string) CreateResult {
	var notices []Notice
	if err := o.api.CreateChat(ctx, o.sess.Token, name); err != nil {
		notices = o.warn(notices, err.Error())
	} else {
		notices = o.success(notices, fmt.Sprintf("Chat '%s' created successfully!", name))
	}

	notices = o.refreshChats(ctx, true, notices)
	return CreateResult{
		Chats:   o.sess.Chats,
		Notices: notices,
	}
}

// DeleteChat deletes the selected chat. Once the call has been attempted
// the selection and displayed history are cleared regardless of the wire
// outcome: the chat can no longer be shown either way.
func (o *Ops) DeleteChat(ctx context.Context) DeleteResult {
	if o.sess.SelectedID == "" {
		return DeleteResult{
			Chats:   o.sess.Chats,
			History: o.sess.History,
			Notices: o.warn(nil, "No chat selected to delete."),
		}
	}

	name, ok := session.NameForID(o.sess.SelectedID, o.sess.Chats)
	if !ok {
		name = o.sess.SelectedID
	}

	var notices []Notice
	if err := o.api.DeleteChat(ctx, o.sess.Token, o.sess.SelectedID); err != nil {
		notices = o.warn(notices, err.Error())
	}
	notices = o.success(notices, fmt.Sprintf("Chat '%s' deleted.", name))

	notices = o.refreshChats(ctx, true, notices)
	return DeleteResult{
		Chats:   o.sess.Chats,
		Notices: notices,
	}
}

// RenameChat renames the selected chat and refreshes the list. The refresh
// happens whether or not the rename succeeded; without confirmation of
// server-side partial effects, re-reading is the only safe move.
func (o *Ops) RenameChat(ctx context.Context, newName string) RenameResult {
	if o.sess.SelectedID == "" {
		return RenameResult{
			Chats:       o.sess.Chats,
			RenameInput: newName,
			Notices:     o.warn(nil, "Please select a chat to rename."),
		}
	}
	if strings.TrimSpace(newName) == "" {
		return RenameResult{
			Chats:       o.sess.Chats,
			RenameInput: newName,
			Notices:     o.warn(nil, "New name cannot be empty."),
		}
	}

	var notices []Notice
	id := o.sess.SelectedID
	if err := o.api.RenameChat(ctx, o.sess.Token, id, newName); err != nil {
		notices = o.warn(notices, err.Error())
	} else {
		notices = o.success(notices, fmt.Sprintf("Chat %s renamed to '%s'.", id, newName))
	}

	notices = o.refreshChats(ctx, true, notices)
	return RenameResult{
		Chats:   o.sess.Chats,
		Notices: notices,
	}
}

// SendMessage sends text to the selected chat and reconciles the displayed
// history with the server. Two paths:
//
//  1. Send succeeded: wait the settle delay, fetch the full history and
//     return it as authoritative; the input is cleared.
//  2. Send failed: no wait, re-fetch the current history for redisplay and
//     hand the typed text back untouched so the user can retry.
func (o *Ops) SendMessage(ctx context.Context, text string) SendResult {
	if o.sess.SelectedID == "" {
		return SendResult{
			History: o.sess.History,
			Input:   text,
			Notices: o.warn(nil, "Cannot send message: no chat selected."),
		}
	}
	if strings.TrimSpace(text) == "" {
		return SendResult{
			History: o.sess.History,
			Input:   text,
			Notices: o.warn(nil, "Cannot send an empty message."),
		}
	}

	var notices []Notice
	sendErr := o.api.SendMessage(ctx, o.sess.Token, o.sess.SelectedID, text)
	if sendErr != nil {
		notices = o.warn(notices, sendErr.Error())
	} else {
		o.waitSettle(ctx)
	}

	hist, err := o.api.ListMessages(ctx, o.sess.Token, o.sess.SelectedID)
	if err != nil {
		notices = o.warn(notices, err.Error())
		hist = catapi.History{}
	}
	o.sess.History = hist.Turns

	input := ""
	if sendErr != nil {
		input = text
	}
	return SendResult{
		History: o.sess.History,
		Input:   input,
		Notices: notices,
	}
}

// waitSettle blocks for the settle delay, or less if the context ends
// first.
func (o *Ops) waitSettle(ctx context.Context) {
	if o.settle <= 0 {
		return
	}
	t := time.NewTimer(o.settle)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
