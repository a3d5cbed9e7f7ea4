package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"auditflow/internal/api"
	"auditflow/internal/logging"
	"auditflow/internal/session"
)

// ErrEmptyMessage rejects blank or whitespace-only input before any message
// is appended or any request is issued.
var ErrEmptyMessage = errors.New("chat: empty message")

// apology replaces a placeholder whose request failed; the failure never
// escapes the channel.
const apology = "Sorry, something went wrong while answering that. Please try again."

// Role tags a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry. IDs are unique and strictly increasing in
// send order. Loading marks an assistant placeholder whose answer has not
// arrived yet.
type Message struct {
	ID      int64          `json:"id"`
	Role    Role           `json:"role"`
	Content string         `json:"content"`
	Loading bool           `json:"loading,omitempty"`
	Sources []api.Citation `json:"sources,omitempty"`
}

// Channel is the conversational Q&A surface over a completed audit. The
// transcript is append-only and lives only as long as the session.
type Channel struct {
	client *api.Client
	store  *session.Store
	logger *slog.Logger

	mu       sync.Mutex
	nextID   int64
	welcomed bool
	messages []Message
}

// NewChannel constructs a chat channel bound to the session store.
func NewChannel(client *api.Client, store *session.Store, logger *slog.Logger) *Channel {
	return &Channel{
		client: client,
		store:  store,
		logger: logging.NewComponentLogger(logger, "chat"),
	}
}

// Welcome seeds the locally generated greeting the first time the audit
// reaches completion. The service keeps no chat history, so the greeting is
// synthesized client-side. Calling it again, or before completion, is a
// no-op.
func (c *Channel) Welcome() {
	if !c.store.AuditCompleted() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.welcomed {
		return
	}
	c.welcomed = true

	target := c.store.RootURL()
	if target == "" {
		target = "your site"
	}
	c.messages = append(c.messages, Message{
		ID:      c.allocateID(),
		Role:    RoleAssistant,
		Content: fmt.Sprintf("The audit of %s is complete. Ask me anything about the results.", target),
	})
}

// Send submits one question. Empty input and a not-yet-completed audit are
// validation failures that leave the transcript untouched. A transport
// failure degrades to a fixed apology in the transcript and is not returned
// as an error.
func (c *Channel) Send(ctx context.Context, text string) (Message, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Message{}, ErrEmptyMessage
	}
	if !c.store.AuditCompleted() {
		return Message{}, session.ErrNotCompleted
	}

	c.mu.Lock()
	c.messages = append(c.messages, Message{
		ID:      c.allocateID(),
		Role:    RoleUser,
		Content: trimmed,
	})
	placeholderID := c.allocateID()
	c.messages = append(c.messages, Message{
		ID:      placeholderID,
		Role:    RoleAssistant,
		Loading: true,
	})
	sessionID := c.store.SessionID()
	c.mu.Unlock()

	reply, err := c.client.Chat(ctx, sessionID, trimmed)

	c.mu.Lock()
	defer c.mu.Unlock()
	final := c.resolvePlaceholder(placeholderID, reply, err)
	if err != nil {
		c.logger.Warn("chat request failed",
			logging.String(logging.FieldSessionID, sessionID),
			logging.Error(err),
		)
	}
	return final, nil
}

// resolvePlaceholder fills the pending assistant message; the caller holds
// the lock.
func (c *Channel) resolvePlaceholder(id int64, reply *api.ChatReply, err error) Message {
	for i := range c.messages {
		if c.messages[i].ID != id {
			continue
		}
		c.messages[i].Loading = false
		if err != nil || reply == nil {
			c.messages[i].Content = apology
		} else {
			c.messages[i].Content = reply.Response
			c.messages[i].Sources = reply.Sources
		}
		return c.messages[i]
	}
	// The placeholder is appended under the same lock that resolves it, so
	// this branch is unreachable unless the transcript was corrupted.
	return Message{}
}

// Messages returns a copy of the transcript in append order.
func (c *Channel) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Channel) allocateID() int64 {
	c.nextID++
	return c.nextID
}
