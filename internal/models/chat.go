package models

type ChatType string

const (
	ChatTypeChat   ChatType = "chat"
	ChatTypeNested ChatType = "nested"
	ChatTypeHidden ChatType = "hidden"
	ChatTypeGroup  ChatType = "group"
)

// KnownChatType reports whether t is a recognized edge type.
func KnownChatType(t ChatType) bool {
	switch t {
	case ChatTypeChat, ChatTypeNested, ChatTypeHidden, ChatTypeGroup:
		return true
	}
	return false
}

type MessageType string

const (
	MessageTypeString       MessageType = "string"
	MessageTypeMethod       MessageType = "method"
	MessageTypeRAGGenerator MessageType = "rag_message_generator"
	MessageTypeNone         MessageType = "none"
)

// KnownMessageType reports whether t is a recognized message payload type.
func KnownMessageType(t MessageType) bool {
	switch t {
	case MessageTypeString, MessageTypeMethod, MessageTypeRAGGenerator, MessageTypeNone:
		return true
	}
	return false
}

// Message is the payload carried by a chat edge. Content is nil for type
// "none".
type Message struct {
	Type         MessageType    `json:"type"`
	Content      *string        `json:"content"`
	UseCarryover bool           `json:"useCarryover"`
	Context      map[string]any `json:"context"`
}

type SummaryMethod string

const (
	SummaryReflectionWithLLM SummaryMethod = "reflectionWithLlm"
	SummaryLastMsg           SummaryMethod = "lastMsg"
	SummaryNone              SummaryMethod = ""
)

type Summary struct {
	Method SummaryMethod  `json:"method"`
	Prompt string         `json:"prompt"`
	Args   map[string]any `json:"args"`
}

// NestedChatMessages is the message/reply pair a nested chat edge carries.
type NestedChatMessages struct {
	Message *Message `json:"message,omitempty"`
	Reply   *Message `json:"reply,omitempty"`
}

type ChatData struct {
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	SourceType    AgentType          `json:"sourceType"`
	TargetType    AgentType          `json:"targetType"`
	Message       Message            `json:"message"`
	Summary       Summary            `json:"summary"`
	NestedChat    NestedChatMessages `json:"nestedChat"`
	Order         int                `json:"order"`
	Position      int                `json:"position"`
	MaxTurns      *int               `json:"maxTurns,omitempty"`
	ClearHistory  bool               `json:"clearHistory"`
	Prerequisites []string           `json:"prerequisites"`
	Condition     *Condition         `json:"condition,omitempty"`
	Available     *Condition         `json:"available,omitempty"`
}

// Chat is one directed conversational connection between two agents.
type Chat struct {
	ID     string         `json:"id"`
	Type   ChatType       `json:"type"`
	Source string         `json:"source"`
	Target string         `json:"target"`
	Data   ChatData       `json:"data"`
	Rest   map[string]any `json:"-"`
}

// NewChatData returns chat data with defaults applied. Order -1 means
// "unordered"; the position field is a 0-based sibling index.
func NewChatData() ChatData {
	return ChatData{
		Message:       Message{Type: MessageTypeNone, Context: map[string]any{}},
		Summary:       Summary{Method: SummaryNone, Args: map[string]any{}},
		Order:         -1,
		ClearHistory:  true,
		Prerequisites: []string{},
	}
}
