package catapi

// TurnRole tags a history entry as one side of the conversation.
type TurnRole string

const (
	RoleUser      TurnRole = "user"
	RoleAssistant TurnRole = "assistant"
)

// Turn is one message entry in a chat's history.
type Turn struct {
	Role    TurnRole `json:"role"`
	Content string   `json:"content"`
}

// ChatRef identifies one server-side chat in the chat list.
type ChatRef struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// History is the parsed result of a list-messages call.
type History struct {
	Name  string // server-side chat name, "Current Chat" when omitted
	Turns []Turn
}

// UnnamedChat is the display name used when the server omits one.
const UnnamedChat = "Unnamed Chat"

// Wire shapes. The memory endpoints return vector-store points whose
// metadata carries the chat-level fields.

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type chatPoint struct {
	ID       string `json:"id"`
	Metadata struct {
		Name string `json:"name"`
	} `json:"metadata"`
}

type chatsResponse struct {
	Points []chatPoint `json:"points"`
}

type messagePoint struct {
	Metadata struct {
		Text string `json:"text"`
		Bot  string `json:"bot"`
	} `json:"metadata"`
}

type messagesResponse struct {
	Name     string `json:"Name"`
	Messages struct {
		Points []messagePoint `json:"points"`
	} `json:"Messages"`
}
