package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/sailorhq/speaknote/internal/models"
)

//go:embed migrations.sql migrations_postgres.sql
var migrations embed.FS

type DatabaseConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// SQLStorage backs the note store with a single shared database/sql handle.
// The default driver is SQLite (local file or :memory:); PostgreSQL is
// available for shared deployments.
type SQLStorage struct {
	db     *sql.DB
	driver string
	logger *zap.Logger
}

func NewSQLStorage(config DatabaseConfig, logger *zap.Logger) (*SQLStorage, error) {
	var driverName, dsn, migrationFile string

	switch config.Driver {
	case "", "sqlite", "sqlite3":
		driverName = "sqlite3"
		dsn = config.Path
		migrationFile = "migrations.sql"
	case "postgres":
		driverName = "postgres"
		dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)
		migrationFile = "migrations_postgres.sql"
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", config.Driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	storage := &SQLStorage{db: db, driver: driverName, logger: logger}

	// Initialize database schema
	if err := storage.initializeSchema(migrationFile); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return storage, nil
}

func (s *SQLStorage) initializeSchema(migrationFile string) error {
	migrationSQL, err := migrations.ReadFile(migrationFile)
	if err != nil {
		return fmt.Errorf("error reading migrations file: %v", err)
	}

	_, err = s.db.Exec(string(migrationSQL))
	if err != nil {
		return fmt.Errorf("error executing migrations: %v", err)
	}

	return nil
}

// DB exposes the shared handle the query executor runs raw statements through.
func (s *SQLStorage) DB() *sql.DB {
	return s.db
}

// bind rewrites ? placeholders to $n for the PostgreSQL driver.
func (s *SQLStorage) bind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *SQLStorage) SaveNote(note *models.Note) error {
	if note.Status == "" {
		note.Status = models.StatusPending
	}

	if s.driver == "postgres" {
		query := s.bind(`
			INSERT INTO notes (subject, details, deadline, location, category, status)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING id, createDate`)
		err := s.db.QueryRow(query,
			note.Subject,
			nullable(note.Details),
			nullable(note.Deadline),
			nullable(note.Location),
			note.Category,
			string(note.Status),
		).Scan(&note.ID, &note.CreateDate)
		if err != nil {
			return fmt.Errorf("error creating note: %v", err)
		}
		return nil
	}

	result, err := s.db.Exec(`
		INSERT INTO notes (subject, details, deadline, location, category, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		note.Subject,
		nullable(note.Details),
		nullable(note.Deadline),
		nullable(note.Location),
		note.Category,
		string(note.Status),
	)
	if err != nil {
		return fmt.Errorf("error creating note: %v", err)
	}

	note.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("error getting note id: %v", err)
	}
	return nil
}

func (s *SQLStorage) ListNotes() ([]*models.Note, error) {
	rows, err := s.db.Query(`
		SELECT id, subject, details, createDate, deadline, location, category, status
		FROM notes
		ORDER BY createDate DESC`)
	if err != nil {
		return nil, fmt.Errorf("error querying notes: %v", err)
	}
	defer rows.Close()

	var notes []*models.Note
	for rows.Next() {
		note := &models.Note{}
		var details, deadline, location sql.NullString
		var status string
		err := rows.Scan(
			&note.ID,
			&note.Subject,
			&details,
			&note.CreateDate,
			&deadline,
			&location,
			&note.Category,
			&status,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning note: %v", err)
		}
		note.Details = details.String
		note.Deadline = deadline.String
		note.Location = location.String
		note.Status = models.ParseNoteStatus(status)
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notes: %v", err)
	}

	return notes, nil
}

func (s *SQLStorage) SaveMessage(msg *models.Message) error {
	_, err := s.db.Exec(s.bind(`
		INSERT INTO messages (id, role, content, created_at)
		VALUES (?, ?, ?, ?)`),
		msg.ID, msg.Role, msg.Content, msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error saving message: %v", err)
	}
	return nil
}

func (s *SQLStorage) ListMessages(limit int) ([]*models.Message, error) {
	rows, err := s.db.Query(s.bind(`
		SELECT id, role, content, created_at
		FROM messages
		ORDER BY created_at DESC
		LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %v", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		msg := &models.Message{}
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning message: %v", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %v", err)
	}

	return messages, nil
}

func (s *SQLStorage) GetThread() (string, error) {
	var threadID string
	err := s.db.QueryRow(`SELECT thread_id FROM thread WHERE id = 1`).Scan(&threadID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("error querying thread: %v", err)
	}
	return threadID, nil
}

func (s *SQLStorage) SaveThread(threadID string) error {
	_, err := s.db.Exec(s.bind(`
		INSERT INTO thread (id, thread_id)
		VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET thread_id = ?, last_used_at = CURRENT_TIMESTAMP`),
		threadID, threadID,
	)
	if err != nil {
		return fmt.Errorf("error saving thread: %v", err)
	}
	return nil
}

func (s *SQLStorage) UpdateThreadLastUsed() error {
	_, err := s.db.Exec(`UPDATE thread SET last_used_at = CURRENT_TIMESTAMP WHERE id = 1`)
	if err != nil {
		return fmt.Errorf("error updating thread: %v", err)
	}
	return nil
}

// SeedSampleNotes populates an empty notes table with a few starter records.
func (s *SQLStorage) SeedSampleNotes() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM notes`).Scan(&count); err != nil {
		return fmt.Errorf("error counting notes: %v", err)
	}
	if count > 0 {
		return nil
	}

	samples := []*models.Note{
		{
			Subject:  "Buy Eggs",
			Details:  "Buy two dozen eggs from Costco",
			Deadline: time.Now().AddDate(0, 0, 2).Format("2006-01-02"),
			Location: "Costco",
			Category: "Shopping",
			Status:   models.StatusPending,
		},
		{
			Subject:  "Truck Height Info",
			Details:  "Truck's height is 6 feet 4 without rack, 7.2 with rack",
			Category: "Vehicle Info",
			Status:   models.StatusUnknown,
		},
		{
			Subject:  "Buy Books",
			Details:  "Buy two books named '5 mins story' from Amazon",
			Location: "Amazon",
			Category: "Shopping",
			Status:   models.StatusPending,
		},
	}

	for _, note := range samples {
		if err := s.SaveNote(note); err != nil {
			return err
		}
	}

	s.logger.Info("Seeded sample notes", zap.Int("count", len(samples)))
	return nil
}

func (s *SQLStorage) Close() error {
	return s.db.Close()
}
