package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ChangeType categorises why a balance moved. The set is closed; any
// other value is rejected with a ValidationError.
type ChangeType string

const (
	ChangePayment    ChangeType = "payment"
	ChangeFeeApplied ChangeType = "fee_applied"
	ChangeAdjustment ChangeType = "adjustment"
	ChangeRefund     ChangeType = "refund"
)

// IsValid reports whether the change type is one of the closed set.
func (t ChangeType) IsValid() bool {
	switch t {
	case ChangePayment, ChangeFeeApplied, ChangeAdjustment, ChangeRefund:
		return true
	}
	return false
}

// Entry is one immutable record of a balance change. Entries are only
// ever appended; undoing one means appending a compensating entry.
type Entry struct {
	ID              int64           `json:"id"`
	StudentID       string          `json:"student_id"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	ChangeAmount    decimal.Decimal `json:"change_amount"`
	ChangeType      ChangeType      `json:"change_type"`
	ReferenceID     *string         `json:"reference_id,omitempty"`
	Description     string          `json:"description,omitempty"`
	CreatedBy       *string         `json:"created_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// HistoryFilter narrows a history query. Zero values mean no filter.
type HistoryFilter struct {
	ChangeType ChangeType
	DateFrom   *time.Time
	DateTo     *time.Time
}

// maxAttempts bounds retries on concurrent-update conflicts. Contention
// on a single student account is rare, so no backoff between attempts.
const maxAttempts = 3

// ValidateChange checks a change before it touches the store.
func ValidateChange(ch Change) error {
	if !ch.Type.IsValid() {
		return &ValidationError{Field: "change_type", Reason: string(ch.Type) + " is not a recognised change type"}
	}
	if ch.Amount.IsZero() {
		return &ValidationError{Field: "change_amount", Reason: "zero-amount changes are not recorded"}
	}
	return nil
}

// Service is the single mutation path for student balances. Every
// caller that moves money goes through ApplyChange; nothing else in
// the application writes the balance column or the history table.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// ApplyChange atomically adds amount to the student's balance and
// appends a history entry recording the delta, the reason and the
// actor. Both writes commit together or not at all. Returns the new
// balance. A nil actor marks a system-initiated change.
func (s *Service) ApplyChange(ctx context.Context, studentID string, amount decimal.Decimal, changeType ChangeType, description string, actor *string, referenceID *string) (decimal.Decimal, error) {
	ch := Change{
		StudentID:   studentID,
		Amount:      amount,
		Type:        changeType,
		Description: description,
		ReferenceID: referenceID,
		CreatedBy:   actor,
	}
	if err := ValidateChange(ch); err != nil {
		return decimal.Zero, err
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		newBalance, err := s.store.ApplyChange(ctx, ch)
		if err == nil {
			return newBalance, nil
		}
		if !errors.Is(err, ErrConflict) {
			return decimal.Zero, &PersistenceError{Op: "apply_change", Err: err}
		}
		lastErr = err
	}
	return decimal.Zero, &PersistenceError{Op: "apply_change", Err: lastErr}
}

// Reverse undoes the effect of an earlier change by applying the
// negated amount as an adjustment referencing the original event.
// History is never edited or deleted.
func (s *Service) Reverse(ctx context.Context, studentID string, originalAmount decimal.Decimal, description string, actor *string, referenceID *string) (decimal.Decimal, error) {
	return s.ApplyChange(ctx, studentID, originalAmount.Neg(), ChangeAdjustment, description, actor, referenceID)
}

// Balance returns the stored balance for the student. It always equals
// the sum of the account's history deltas plus its seed.
func (s *Service) Balance(ctx context.Context, studentID string) (decimal.Decimal, error) {
	bal, err := s.store.Balance(ctx, studentID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return decimal.Zero, err
		}
		return decimal.Zero, &PersistenceError{Op: "balance", Err: err}
	}
	return bal, nil
}

// History returns the student's entries in creation order, oldest
// first, optionally filtered by change type and date range.
func (s *Service) History(ctx context.Context, studentID string, f HistoryFilter) ([]Entry, error) {
	if f.ChangeType != "" && !f.ChangeType.IsValid() {
		return nil, &ValidationError{Field: "change_type", Reason: string(f.ChangeType) + " is not a recognised change type"}
	}
	entries, err := s.store.History(ctx, studentID, f)
	if err != nil {
		return nil, &PersistenceError{Op: "history", Err: err}
	}
	return entries, nil
}
