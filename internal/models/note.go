package models

// NoteStatus is the lifecycle state of a note. New notes default to Pending
// and only change via explicit status-updating statements.
type NoteStatus string

const (
	StatusPending   NoteStatus = "Pending"
	StatusCompleted NoteStatus = "Completed"
	StatusUnknown   NoteStatus = "Unknown"
	StatusRecurring NoteStatus = "Recurring"
)

// ParseNoteStatus maps a stored status string to a NoteStatus,
// falling back to Unknown for unrecognized values.
func ParseNoteStatus(s string) NoteStatus {
	switch NoteStatus(s) {
	case StatusPending, StatusCompleted, StatusUnknown, StatusRecurring:
		return NoteStatus(s)
	default:
		return StatusUnknown
	}
}

type Note struct {
	ID         int64      `json:"id"`
	Subject    string     `json:"subject"`
	Details    string     `json:"details,omitempty"`
	CreateDate string     `json:"create_date"`
	Deadline   string     `json:"deadline,omitempty"`
	Location   string     `json:"location,omitempty"`
	Category   string     `json:"category"`
	Status     NoteStatus `json:"status"`
}
