package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// MemoryStore keeps accounts in process memory. It serializes changes
// per account with a mutex map, so changes to different accounts do
// not contend. Used by tests and useful as a reference implementation
// of the store contract.
type MemoryStore struct {
	mu       sync.Mutex // protects the maps themselves
	locks    map[string]*sync.Mutex
	balances map[string]decimal.Decimal
	entries  map[string][]Entry
	nextID   int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		locks:    make(map[string]*sync.Mutex),
		balances: make(map[string]decimal.Decimal),
		entries:  make(map[string][]Entry),
	}
}

// CreateAccount registers an account with a zero balance. Seeding a
// non-zero opening balance goes through ApplyChange so it shows up in
// history like any other change.
func (s *MemoryStore) CreateAccount(studentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.balances[studentID]; !exists {
		s.balances[studentID] = decimal.Zero
	}
}

func (s *MemoryStore) accountLock(studentID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.locks[studentID]; !exists {
		s.locks[studentID] = &sync.Mutex{}
	}
	return s.locks[studentID]
}

func (s *MemoryStore) ApplyChange(ctx context.Context, ch Change) (decimal.Decimal, error) {
	lock := s.accountLock(ch.StudentID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	previous, exists := s.balances[ch.StudentID]
	s.mu.Unlock()
	if !exists {
		return decimal.Zero, ErrAccountNotFound
	}

	newBalance := previous.Add(ch.Amount)

	s.mu.Lock()
	s.nextID++
	entry := Entry{
		ID:              s.nextID,
		StudentID:       ch.StudentID,
		PreviousBalance: previous,
		NewBalance:      newBalance,
		ChangeAmount:    ch.Amount,
		ChangeType:      ch.Type,
		ReferenceID:     ch.ReferenceID,
		Description:     ch.Description,
		CreatedBy:       ch.CreatedBy,
		CreatedAt:       time.Now(),
	}
	s.balances[ch.StudentID] = newBalance
	s.entries[ch.StudentID] = append(s.entries[ch.StudentID], entry)
	s.mu.Unlock()

	return newBalance, nil
}

func (s *MemoryStore) Balance(ctx context.Context, studentID string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	balance, exists := s.balances[studentID]
	if !exists {
		return decimal.Zero, ErrAccountNotFound
	}
	return balance, nil
}

func (s *MemoryStore) History(ctx context.Context, studentID string, f HistoryFilter) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Entry
	for _, e := range s.entries[studentID] {
		if f.ChangeType != "" && e.ChangeType != f.ChangeType {
			continue
		}
		if f.DateFrom != nil && e.CreatedAt.Before(*f.DateFrom) {
			continue
		}
		if f.DateTo != nil && e.CreatedAt.After(*f.DateTo) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
