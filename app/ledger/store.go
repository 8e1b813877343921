package ledger

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrAccountNotFound is returned when the student's account does not exist.
var ErrAccountNotFound = errors.New("account not found")

// ErrConflict is returned by a store when a concurrent update to the
// same account prevented the write. The service retries a bounded
// number of times before giving up.
var ErrConflict = errors.New("concurrent balance update")

// Change describes one requested balance mutation.
type Change struct {
	StudentID   string
	Amount      decimal.Decimal
	Type        ChangeType
	Description string
	ReferenceID *string
	CreatedBy   *string
}

// Store persists balance changes. ApplyChange must update the stored
// balance and append the history entry in one atomic unit: a failure
// of either write leaves both untouched.
type Store interface {
	ApplyChange(ctx context.Context, ch Change) (decimal.Decimal, error)
	Balance(ctx context.Context, studentID string) (decimal.Decimal, error)
	History(ctx context.Context, studentID string, f HistoryFilter) ([]Entry, error)
}
