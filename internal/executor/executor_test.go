package executor

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `CREATE TABLE notes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		subject TEXT NOT NULL,
		details TEXT,
		createDate TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
		deadline TEXT,
		location TEXT,
		category TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Pending'
	)`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db
}

func seedNote(t *testing.T, db *sql.DB, subject, location string) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO notes (subject, location, category) VALUES (?, ?, 'Shopping')`,
		subject, location,
	)
	if err != nil {
		t.Fatalf("seed note: %v", err)
	}
}

func TestValidateRejectsBeforeStorage(t *testing.T) {
	cases := []struct {
		name  string
		query string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"statement chaining", "SELECT subject FROM notes; DROP TABLE notes"},
		{"comment truncation", "SELECT subject FROM notes -- WHERE status='Pending'"},
		{"backslash", `SELECT subject\nFROM notes`},
		{"over length", "SELECT subject FROM notes WHERE details = '" + strings.Repeat("x", 200) + "'"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// nil handle: validation must reject before any storage call.
			e := New(nil, zap.NewNop())
			_, err := e.Execute(context.Background(), tc.query)
			if !errors.Is(err, ErrInvalidQuery) {
				t.Errorf("error = %v, want ErrInvalidQuery", err)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		query string
		want  StatementType
	}{
		{"SELECT subject FROM notes", StatementSelect},
		{"select subject from notes", StatementSelect},
		{"  INSERT INTO notes (subject, category) VALUES ('a', 'b')", StatementInsert},
		{"Update notes SET status='Completed'", StatementUpdate},
		{"DELETE FROM notes WHERE id=1", StatementDelete},
		{"DROP TABLE notes", StatementOther},
		{"EXPLAIN SELECT 1", StatementOther},
	}
	for _, tc := range cases {
		if got := Classify(tc.query); got != tc.want {
			t.Errorf("Classify(%q) = %q, want %q", tc.query, got, tc.want)
		}
	}
}

func TestExecuteSelectJoinsFirstColumn(t *testing.T) {
	db := setupDB(t)
	seedNote(t, db, "Buy Eggs", "Costco")
	seedNote(t, db, "Buy Paper Towel", "Costco")
	e := New(db, zap.NewNop())

	result, err := e.Execute(context.Background(), "SELECT subject FROM notes WHERE location='Costco'")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Type != StatementSelect {
		t.Errorf("Type = %q, want select", result.Type)
	}
	if result.Rows != "Buy Eggs\nBuy Paper Towel\n" {
		t.Errorf("Rows = %q, want %q", result.Rows, "Buy Eggs\nBuy Paper Towel\n")
	}
}

func TestExecuteSelectEmptyResult(t *testing.T) {
	db := setupDB(t)
	e := New(db, zap.NewNop())

	result, err := e.Execute(context.Background(), "SELECT subject FROM notes WHERE location='Nowhere'")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Rows != "" {
		t.Errorf("Rows = %q, want empty", result.Rows)
	}
}

func TestExecuteInsertAndUpdate(t *testing.T) {
	db := setupDB(t)
	e := New(db, zap.NewNop())

	insert := "INSERT INTO notes (subject, details, deadline, category, status) " +
		"VALUES ('Buy Eggs', 'two eggs', NULL, 'Shopping', 'Pending')"
	result, err := e.Execute(context.Background(), insert)
	if err != nil {
		t.Fatalf("Execute insert: %v", err)
	}
	if result.Type != StatementInsert {
		t.Errorf("Type = %q, want insert", result.Type)
	}
	if result.Rows != "" {
		t.Errorf("mutation returned payload: %q", result.Rows)
	}

	update := "UPDATE notes SET status='Completed' WHERE subject='Buy Eggs'"
	if _, err := e.Execute(context.Background(), update); err != nil {
		t.Fatalf("Execute update: %v", err)
	}

	var status string
	if err := db.QueryRow("SELECT status FROM notes WHERE subject='Buy Eggs'").Scan(&status); err != nil {
		t.Fatal(err)
	}
	if status != "Completed" {
		t.Errorf("status = %q, want Completed", status)
	}
}

func TestExecuteRejectsUnrecognizedStatement(t *testing.T) {
	db := setupDB(t)
	e := New(db, zap.NewNop())

	_, err := e.Execute(context.Background(), "DROP TABLE notes")
	if !errors.Is(err, ErrExecution) {
		t.Errorf("error = %v, want ErrExecution", err)
	}

	// The table must still exist.
	if _, err := db.Exec("SELECT COUNT(*) FROM notes"); err != nil {
		t.Errorf("notes table gone after rejected statement: %v", err)
	}
}

func TestExecuteWrapsDriverErrors(t *testing.T) {
	db := setupDB(t)
	e := New(db, zap.NewNop())

	_, err := e.Execute(context.Background(), "SELECT nosuchcolumn FROM notes")
	if !errors.Is(err, ErrExecution) {
		t.Errorf("error = %v, want ErrExecution", err)
	}
}
