package catapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBaseURL points at a local Cheshire Cat instance.
const DefaultBaseURL = "http://localhost:1865"

// Endpoint paths, kept together for easier auditing against the server.
const (
	pathToken       = "/auth/token"
	pathListChats   = "/memory/collections/chat/points/by_metadata_chat"
	pathCreateChat  = "/createChat"
	pathDeleteChat  = "/delete_chat"
	pathRenameChat  = "/memory/collections/points/changeNameChat"
	pathGetMessages = "/giveAll"
	pathSendMessage = "/message"
)

// Client issues authenticated calls against the Cheshire Cat API. It holds
// no session state: the caller passes the bearer token into every method.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// New creates a Client for the given base URL. An empty baseURL falls back
// to DefaultBaseURL.
func New(baseURL string, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

// newRequest builds an authenticated JSON request. Constructing headers
// without a token is itself an authentication failure: no request leaves
// the process without credentials.
func (c *Client) newRequest(ctx context.Context, method, path, token string, query url.Values, body any) (*http.Request, error) {
	if token == "" {
		return nil, &AuthError{Detail: "missing token"}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, u, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-Id", uuid.NewString())
	return req, nil
}

// do executes a request and returns the response for a 2xx status, or an
// APIError with the extracted body detail otherwise.
func (c *Client) do(op string, req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("api call failed",
			zap.String("op", op),
			zap.String("request_id", req.Header.Get("X-Request-Id")),
			zap.Error(err))
		return nil, &APIError{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(op, resp)
		resp.Body.Close()
		c.log.Warn("api call rejected",
			zap.String("op", op),
			zap.String("request_id", req.Header.Get("X-Request-Id")),
			zap.Int("status", apiErr.Status),
			zap.String("detail", apiErr.Detail))
		return nil, apiErr
	}
	c.log.Debug("api call ok",
		zap.String("op", op),
		zap.String("request_id", req.Header.Get("X-Request-Id")),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))
	return resp, nil
}

// Authenticate exchanges credentials for a bearer token. A 401 maps to an
// AuthError with Unauthorized set; every other failure, including a 2xx
// response without a token, maps to a generic AuthError.
func (c *Client) Authenticate(ctx context.Context, username, password string) (string, error) {
	payload := map[string]string{"username": username, "password": password}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", &AuthError{Detail: "failed to encode credentials", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathToken, &buf)
	if err != nil {
		return "", &AuthError{Detail: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("authentication failed", zap.Error(err))
		return "", &AuthError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.log.Warn("authentication rejected", zap.Int("status", resp.StatusCode))
		return "", &AuthError{Unauthorized: true}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := extractDetail(resp)
		c.log.Warn("authentication failed",
			zap.Int("status", resp.StatusCode),
			zap.String("detail", detail))
		return "", &AuthError{Detail: detail}
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", &AuthError{Detail: "malformed token response", Err: err}
	}
	if tok.AccessToken == "" {
		return "", &AuthError{Detail: "no token received"}
	}
	return tok.AccessToken, nil
}

// ListChats fetches all chats for the authenticated user. An absent or
// empty points payload is an empty list, not an error.
func (c *Client) ListChats(ctx context.Context, token string) ([]ChatRef, error) {
	req, err := c.newRequest(ctx, http.MethodPost, pathListChats, token, nil, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do("fetching chats", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed chatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &APIError{Op: "fetching chats", Detail: "malformed response", Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}

	chats := make([]ChatRef, 0, len(parsed.Points))
	for _, p := range parsed.Points {
		name := p.Metadata.Name
		if name == "" {
			name = UnnamedChat
		}
		chats = append(chats, ChatRef{Name: name, ID: p.ID})
	}
	return chats, nil
}

// CreateChat creates a new chat with the given name.
func (c *Client) CreateChat(ctx context.Context, token, name string) error {
	payload := map[string]any{
		"metadata": map[string]string{"name": name, "content": name},
	}
	req, err := c.newRequest(ctx, http.MethodPost, pathCreateChat, token, nil, payload)
	if err != nil {
		return err
	}
	resp, err := c.do("creating chat", req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// DeleteChat deletes a chat by id.
func (c *Client) DeleteChat(ctx context.Context, token, id string) error {
	query := url.Values{"chat_id": {id}}
	req, err := c.newRequest(ctx, http.MethodDelete, pathDeleteChat, token, query, nil)
	if err != nil {
		return err
	}
	resp, err := c.do("deleting chat", req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// RenameChat changes a chat's display name.
func (c *Client) RenameChat(ctx context.Context, token, id, name string) error {
	query := url.Values{"chat_id": {id}, "name": {name}}
	req, err := c.newRequest(ctx, http.MethodPost, pathRenameChat, token, query, nil)
	if err != nil {
		return err
	}
	resp, err := c.do("renaming chat", req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// ListMessages fetches the full history of a chat. Each returned point may
// contribute a user turn (metadata.text), an assistant turn (metadata.bot),
// both, or neither; when both are present the user turn comes first.
func (c *Client) ListMessages(ctx context.Context, token, id string) (History, error) {
	query := url.Values{"chat_id": {id}}
	req, err := c.newRequest(ctx, http.MethodPost, pathGetMessages, token, query, nil)
	if err != nil {
		return History{}, err
	}
	resp, err := c.do("fetching messages", req)
	if err != nil {
		return History{}, err
	}
	defer resp.Body.Close()

	var parsed messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return History{}, &APIError{Op: "fetching messages", Detail: "malformed response", Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}

	hist := History{Name: parsed.Name}
	if hist.Name == "" {
		hist.Name = "Current Chat"
	}
	for _, p := range parsed.Messages.Points {
		if p.Metadata.Text != "" {
			hist.Turns = append(hist.Turns, Turn{Role: RoleUser, Content: p.Metadata.Text})
		}
		if p.Metadata.Bot != "" {
			hist.Turns = append(hist.Turns, Turn{Role: RoleAssistant, Content: p.Metadata.Bot})
		}
	}
	return hist, nil
}

// SendMessage submits a user message to a chat. The reply is not part of
// the response; the caller re-fetches history to observe it.
func (c *Client) SendMessage(ctx context.Context, token, id, text string) error {
	payload := map[string]string{"text": text, "chat_id": id}
	req, err := c.newRequest(ctx, http.MethodPost, pathSendMessage, token, nil, payload)
	if err != nil {
		return err
	}
	resp, err := c.do("sending message", req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
