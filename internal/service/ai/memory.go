package ai

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/schema"
)

// Memory holds the conversation context replayed to the model, kept apart from
// the transcript rendered to the user.
type Memory interface {
	Load(ctx context.Context, sessionID string) ([]*schema.Message, error)
	Save(ctx context.Context, sessionID, question, answer string) error
	Clear(ctx context.Context, sessionID string) error
}

// BufferMemory keeps every exchange of a session in process memory.
type BufferMemory struct {
	mu       sync.RWMutex
	sessions map[string][]*schema.Message
}

func NewBufferMemory() *BufferMemory {
	return &BufferMemory{sessions: make(map[string][]*schema.Message)}
}

func (m *BufferMemory) Load(_ context.Context, sessionID string) ([]*schema.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	history := m.sessions[sessionID]
	cloned := make([]*schema.Message, 0, len(history))
	for _, msg := range history {
		copyMsg := *msg
		cloned = append(cloned, &copyMsg)
	}
	return cloned, nil
}

func (m *BufferMemory) Save(_ context.Context, sessionID, question, answer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = append(m.sessions[sessionID],
		schema.UserMessage(question),
		schema.AssistantMessage(answer, nil),
	)
	return nil
}

func (m *BufferMemory) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}
