package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// PostgresStore persists balances on the students table and history in
// balance_history. Per-account serializability comes from a row lock
// on the student row: two concurrent changes to the same account queue
// behind the lock, changes to different accounts proceed independently.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ApplyChange(ctx context.Context, ch Change) (decimal.Decimal, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback()

	newBalance, err := ApplyChangeTx(ctx, tx, ch)
	if err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(); err != nil {
		return decimal.Zero, translatePQ(err)
	}
	return newBalance, nil
}

// ApplyChangeTx performs the locked read-modify-write and the history
// insert inside a caller-owned transaction, so callers can commit a
// causing record (e.g. a payment row) together with its ledger entry.
// The caller is responsible for ValidateChange and for commit/rollback.
func ApplyChangeTx(ctx context.Context, tx *sql.Tx, ch Change) (decimal.Decimal, error) {
	var previous decimal.Decimal
	err := tx.QueryRowContext(ctx,
		`SELECT balance FROM students WHERE id = $1 FOR UPDATE`,
		ch.StudentID,
	).Scan(&previous)
	if err == sql.ErrNoRows {
		return decimal.Zero, ErrAccountNotFound
	}
	if err != nil {
		return decimal.Zero, translatePQ(err)
	}

	newBalance := previous.Add(ch.Amount)

	_, err = tx.ExecContext(ctx,
		`UPDATE students SET balance = $1, updated_at = NOW() WHERE id = $2`,
		newBalance, ch.StudentID,
	)
	if err != nil {
		return decimal.Zero, translatePQ(err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO balance_history
			(student_id, previous_balance, new_balance, change_amount, change_type, reference_id, description, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`,
		ch.StudentID, previous, newBalance, ch.Amount, string(ch.Type),
		ch.ReferenceID, ch.Description, ch.CreatedBy,
	)
	if err != nil {
		return decimal.Zero, translatePQ(err)
	}

	return newBalance, nil
}

func (s *PostgresStore) Balance(ctx context.Context, studentID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.db.QueryRowContext(ctx,
		`SELECT balance FROM students WHERE id = $1`,
		studentID,
	).Scan(&balance)
	if err == sql.ErrNoRows {
		return decimal.Zero, ErrAccountNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

func (s *PostgresStore) History(ctx context.Context, studentID string, f HistoryFilter) ([]Entry, error) {
	query := `SELECT id, student_id, previous_balance, new_balance, change_amount, change_type, reference_id, description, created_by, created_at
			  FROM balance_history WHERE student_id = $1`
	args := []interface{}{studentID}
	argIndex := 2

	if f.ChangeType != "" {
		query += fmt.Sprintf(" AND change_type = $%d", argIndex)
		args = append(args, string(f.ChangeType))
		argIndex++
	}
	if f.DateFrom != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIndex)
		args = append(args, *f.DateFrom)
		argIndex++
	}
	if f.DateTo != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argIndex)
		args = append(args, *f.DateTo)
		argIndex++
	}

	query += " ORDER BY id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var description sql.NullString
		var createdAt time.Time
		if err := rows.Scan(
			&e.ID, &e.StudentID, &e.PreviousBalance, &e.NewBalance,
			&e.ChangeAmount, &e.ChangeType, &e.ReferenceID, &description,
			&e.CreatedBy, &createdAt,
		); err != nil {
			return nil, err
		}
		e.Description = description.String
		e.CreatedAt = createdAt
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// translatePQ maps Postgres serialization failures and deadlocks to
// ErrConflict so the service retries them.
func translatePQ(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01":
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
	}
	return err
}
