package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/rosettacloud/shellchat/pkg/wire"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleError     Role = "error"
)

// Message is a single entry in the conversation log.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage stamps a message with a fresh id and the current time.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewSessionID returns the opaque identifier correlating all requests from
// one client instance to server-side conversational context. It is generated
// once at construction and never persisted; a new client is a new session.
func NewSessionID() string {
	return uuid.NewString()
}

// Source re-exports the wire citation type so subscribers do not need to
// import the codec package.
type Source = wire.Source
