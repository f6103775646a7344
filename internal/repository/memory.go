package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"folio-api/internal/domain"
)

// Memory keeps contact messages in process. It backs local runs without a table.
type Memory struct {
	mu       sync.Mutex
	messages []domain.ContactMessage
	ids      map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{ids: map[string]struct{}{}}
}

func (m *Memory) PutContactMessage(_ context.Context, msg domain.ContactMessage) error {
	if msg.ID == "" {
		return errors.New("repository: PutContactMessage: id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ids[msg.ID]; ok {
		return fmt.Errorf("repository: PutContactMessage %s: %w", msg.ID, ErrDuplicateMessage)
	}
	m.ids[msg.ID] = struct{}{}
	m.messages = append(m.messages, msg)
	return nil
}

// Messages returns the stored messages in arrival order.
func (m *Memory) Messages() []domain.ContactMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ContactMessage(nil), m.messages...)
}
