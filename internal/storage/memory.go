package storage

import (
	"sync"
	"time"

	"github.com/sailorhq/speaknote/internal/models"
)

// MemoryStorage is a map-backed Storage used in tests and for throwaway runs.
// It cannot execute raw SQL, so the query executor still needs a real
// database handle.
type MemoryStorage struct {
	mu       sync.RWMutex
	nextID   int64
	notes    []*models.Note
	messages []*models.Message
	thread   *models.Thread
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{nextID: 1}
}

func (s *MemoryStorage) SaveNote(note *models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	note.ID = s.nextID
	s.nextID++
	if note.Status == "" {
		note.Status = models.StatusPending
	}
	if note.CreateDate == "" {
		note.CreateDate = time.Now().Format(time.RFC3339)
	}
	s.notes = append(s.notes, note)
	return nil
}

func (s *MemoryStorage) ListNotes() ([]*models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notes := make([]*models.Note, len(s.notes))
	copy(notes, s.notes)
	return notes, nil
}

func (s *MemoryStorage) SaveMessage(msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, msg)
	return nil
}

func (s *MemoryStorage) ListMessages(limit int) ([]*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := make([]*models.Message, 0, limit)
	for i := len(s.messages) - 1; i >= 0 && len(messages) < limit; i-- {
		messages = append(messages, s.messages[i])
	}
	return messages, nil
}

func (s *MemoryStorage) GetThread() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.thread == nil {
		return "", nil
	}
	return s.thread.ID, nil
}

func (s *MemoryStorage) SaveThread(threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.thread = &models.Thread{ID: threadID, CreatedAt: now, LastUsedAt: now}
	return nil
}

func (s *MemoryStorage) UpdateThreadLastUsed() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.thread != nil {
		s.thread.LastUsedAt = time.Now()
	}
	return nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
