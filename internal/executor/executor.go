package executor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

var (
	// ErrInvalidQuery is a statement rejected by validation before it ever
	// touches the connection.
	ErrInvalidQuery = errors.New("query: invalid statement")
	// ErrConnection means no database handle is available.
	ErrConnection = errors.New("query: no database connection")
	// ErrExecution wraps any storage-layer failure during execution; raw
	// driver errors never leak past the executor.
	ErrExecution = errors.New("query: execution failed")
	// ErrDataNotFound means the pipeline produced nothing to execute or
	// narrate for the current utterance.
	ErrDataNotFound = errors.New("query: no data found")
)

// StatementType classifies a statement by its first keyword.
type StatementType string

const (
	StatementSelect StatementType = "select"
	StatementInsert StatementType = "insert"
	StatementUpdate StatementType = "update"
	StatementDelete StatementType = "delete"
	StatementOther  StatementType = "other"
)

// Result classifies an executed statement. Rows carries the rendered text of
// a select; mutations have no payload.
type Result struct {
	Type StatementType
	Rows string
}

// maxQueryLength defends against runaway or multi-statement output from the
// assistant.
const maxQueryLength = 200

// forbidden blocks statement chaining and comment-based truncation. This is a
// deliberately conservative deny-list, not a full SQL sanitizer: the
// statement originates from a semi-trusted assistant, and targeting
// correctness is entirely delegated to the statement text.
var forbidden = []string{";", "--", `\`}

// Executor runs one validated SQL statement at a time against the shared
// store handle and classifies the outcome.
type Executor struct {
	db     *sql.DB
	logger *zap.Logger
}

func New(db *sql.DB, logger *zap.Logger) *Executor {
	return &Executor{db: db, logger: logger}
}

// Validate rejects a statement before any storage call, in strict order:
// empty, over-length, forbidden characters.
func Validate(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: empty statement", ErrInvalidQuery)
	}
	if utf8.RuneCountInString(query) > maxQueryLength {
		return fmt.Errorf("%w: statement exceeds %d characters", ErrInvalidQuery, maxQueryLength)
	}
	for _, seq := range forbidden {
		if strings.Contains(query, seq) {
			return fmt.Errorf("%w: statement contains forbidden sequence %q", ErrInvalidQuery, seq)
		}
	}
	return nil
}

// Classify maps a statement to its type by case-insensitive prefix match on
// the first keyword.
func Classify(query string) StatementType {
	q := strings.ToLower(strings.TrimSpace(query))
	switch {
	case strings.HasPrefix(q, "select"):
		return StatementSelect
	case strings.HasPrefix(q, "insert"):
		return StatementInsert
	case strings.HasPrefix(q, "update"):
		return StatementUpdate
	case strings.HasPrefix(q, "delete"):
		return StatementDelete
	default:
		return StatementOther
	}
}

// Execute validates, classifies and runs a single statement. Select
// statements return each row's first column newline-joined; mutations mutate
// exactly the rows matched by their own predicate and return no payload.
func (e *Executor) Execute(ctx context.Context, query string) (Result, error) {
	if err := Validate(query); err != nil {
		return Result{}, err
	}
	if e.db == nil {
		return Result{}, ErrConnection
	}

	stmtType := Classify(query)
	result := Result{Type: stmtType}

	switch stmtType {
	case StatementSelect:
		rows, err := e.executeSelect(ctx, query)
		if err != nil {
			return Result{}, err
		}
		result.Rows = rows
	case StatementInsert, StatementUpdate, StatementDelete:
		if _, err := e.db.ExecContext(ctx, query); err != nil {
			e.logger.Error("Statement execution failed",
				zap.Error(err),
				zap.String("type", string(stmtType)))
			return Result{}, fmt.Errorf("%w: %v", ErrExecution, err)
		}
		e.logger.Info("Statement executed", zap.String("type", string(stmtType)))
	default:
		return Result{}, fmt.Errorf("%w: unrecognized statement type", ErrExecution)
	}

	return result, nil
}

func (e *Executor) executeSelect(ctx context.Context, query string) (string, error) {
	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExecution, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExecution, err)
	}

	var b strings.Builder
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		scanArgs := make([]any, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return "", fmt.Errorf("%w: %v", ErrExecution, err)
		}

		first := "Not found"
		if len(values) > 0 && values[0].Valid {
			first = values[0].String
		}
		b.WriteString(first)
		b.WriteString("\n")
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrExecution, err)
	}

	return b.String(), nil
}

// IsQueryError reports whether err belongs to the local execution taxonomy.
func IsQueryError(err error) bool {
	return errors.Is(err, ErrInvalidQuery) ||
		errors.Is(err, ErrConnection) ||
		errors.Is(err, ErrExecution) ||
		errors.Is(err, ErrDataNotFound)
}
