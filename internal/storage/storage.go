package storage

import "github.com/sailorhq/speaknote/internal/models"

// NoteStorage is the typed access path for notes, used by the front-ends for
// listing and by sample seeding. Assistant-produced statements bypass it and
// go through the query executor instead.
type NoteStorage interface {
	SaveNote(note *models.Note) error
	ListNotes() ([]*models.Note, error)
}

// MessageStorage persists the conversation transcript.
type MessageStorage interface {
	SaveMessage(msg *models.Message) error
	ListMessages(limit int) ([]*models.Message, error)
}

// ThreadStorage persists the single remote conversation thread id so the same
// conversation resumes across process restarts.
type ThreadStorage interface {
	GetThread() (string, error)
	SaveThread(threadID string) error
	UpdateThreadLastUsed() error
}

type Storage interface {
	NoteStorage
	MessageStorage
	ThreadStorage
	Close() error
}
