package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

func newTestService(t *testing.T, studentID string) (*Service, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	store.CreateAccount(studentID)
	return NewService(store), store
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestApplyChangeReturnsNewBalance(t *testing.T) {
	svc, _ := newTestService(t, "stu-1")
	ctx := context.Background()

	balance, err := svc.ApplyChange(ctx, "stu-1", dec("2500.50"), ChangeFeeApplied, "Term 1 fees", nil, nil)
	if err != nil {
		t.Fatalf("ApplyChange: %v", err)
	}
	if !balance.Equal(dec("2500.50")) {
		t.Errorf("balance: got %s, want 2500.50", balance)
	}

	balance, err = svc.ApplyChange(ctx, "stu-1", dec("-1000"), ChangePayment, "Payment received", nil, nil)
	if err != nil {
		t.Fatalf("ApplyChange: %v", err)
	}
	if !balance.Equal(dec("1500.50")) {
		t.Errorf("balance after payment: got %s, want 1500.50", balance)
	}
}

func TestBalanceEqualsSumOfHistoryDeltas(t *testing.T) {
	svc, _ := newTestService(t, "stu-1")
	ctx := context.Background()

	changes := []struct {
		amount     string
		changeType ChangeType
	}{
		{"5000", ChangeFeeApplied},
		{"-1200.25", ChangePayment},
		{"-800", ChangePayment},
		{"150.75", ChangeAdjustment},
		{"-50.50", ChangeRefund},
	}
	for _, ch := range changes {
		if _, err := svc.ApplyChange(ctx, "stu-1", dec(ch.amount), ch.changeType, "", nil, nil); err != nil {
			t.Fatalf("ApplyChange(%s): %v", ch.amount, err)
		}
	}

	entries, err := svc.History(ctx, "stu-1", HistoryFilter{})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.ChangeAmount)
	}

	balance, err := svc.Balance(ctx, "stu-1")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if !balance.Equal(sum) {
		t.Errorf("balance %s != sum of deltas %s", balance, sum)
	}
}

func TestHistoryEntriesChain(t *testing.T) {
	svc, _ := newTestService(t, "stu-1")
	ctx := context.Background()

	for _, amount := range []string{"3000", "-500", "-500", "250"} {
		changeType := ChangePayment
		if dec(amount).IsPositive() {
			changeType = ChangeFeeApplied
		}
		if _, err := svc.ApplyChange(ctx, "stu-1", dec(amount), changeType, "", nil, nil); err != nil {
			t.Fatalf("ApplyChange: %v", err)
		}
	}

	entries, err := svc.History(ctx, "stu-1", HistoryFilter{})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("entries: got %d, want 4", len(entries))
	}
	for i := range entries {
		if !entries[i].NewBalance.Equal(entries[i].PreviousBalance.Add(entries[i].ChangeAmount)) {
			t.Errorf("entry %d: new_balance %s != previous %s + delta %s",
				i, entries[i].NewBalance, entries[i].PreviousBalance, entries[i].ChangeAmount)
		}
		if i > 0 {
			if entries[i].ID <= entries[i-1].ID {
				t.Errorf("entry %d: id %d not greater than previous id %d", i, entries[i].ID, entries[i-1].ID)
			}
			if !entries[i].PreviousBalance.Equal(entries[i-1].NewBalance) {
				t.Errorf("entry %d: previous_balance %s != entry %d new_balance %s",
					i, entries[i].PreviousBalance, i-1, entries[i-1].NewBalance)
			}
		}
	}
}

func TestHistoryIsAppendOnly(t *testing.T) {
	svc, _ := newTestService(t, "stu-1")
	ctx := context.Background()

	if _, err := svc.ApplyChange(ctx, "stu-1", dec("1000"), ChangeFeeApplied, "", nil, nil); err != nil {
		t.Fatalf("ApplyChange: %v", err)
	}
	before, err := svc.History(ctx, "stu-1", HistoryFilter{})
	if err != nil {
		t.Fatalf("History: %v", err)
	}

	// Later operations, including mutating the returned slice, must not
	// change previously recorded entries.
	before[0].ChangeAmount = dec("9999")
	if _, err := svc.ApplyChange(ctx, "stu-1", dec("-400"), ChangePayment, "", nil, nil); err != nil {
		t.Fatalf("ApplyChange: %v", err)
	}

	after, err := svc.History(ctx, "stu-1", HistoryFilter{})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(after) != 2 {
		t.Fatalf("entries: got %d, want 2", len(after))
	}
	if !after[0].ChangeAmount.Equal(dec("1000")) {
		t.Errorf("first entry delta changed: got %s, want 1000", after[0].ChangeAmount)
	}
	if after[0].ID != 1 || !after[0].NewBalance.Equal(dec("1000")) {
		t.Errorf("first entry mutated: id=%d new_balance=%s", after[0].ID, after[0].NewBalance)
	}
}

func TestApplyChangeRejectsInvalidChangeType(t *testing.T) {
	svc, _ := newTestService(t, "stu-1")
	ctx := context.Background()

	_, err := svc.ApplyChange(ctx, "stu-1", dec("100"), ChangeType("bogus"), "", nil, nil)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	// Nothing was written.
	balance, err := svc.Balance(ctx, "stu-1")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if !balance.IsZero() {
		t.Errorf("balance: got %s, want 0", balance)
	}
	entries, err := svc.History(ctx, "stu-1", HistoryFilter{})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries: got %d, want 0", len(entries))
	}
}

func TestApplyChangeRejectsZeroAmount(t *testing.T) {
	svc, _ := newTestService(t, "stu-1")

	_, err := svc.ApplyChange(context.Background(), "stu-1", decimal.Zero, ChangeAdjustment, "", nil, nil)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestApplyChangeUnknownAccount(t *testing.T) {
	svc := NewService(NewMemoryStore())

	_, err := svc.ApplyChange(context.Background(), "missing", dec("100"), ChangePayment, "", nil, nil)
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestConcurrentChangesConverge(t *testing.T) {
	svc, _ := newTestService(t, "stu-1")
	ctx := context.Background()

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := svc.ApplyChange(ctx, "stu-1", dec("1"), ChangeAdjustment, "", nil, nil); err != nil {
				t.Errorf("ApplyChange: %v", err)
			}
		}()
	}
	wg.Wait()

	balance, err := svc.Balance(ctx, "stu-1")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if !balance.Equal(dec("100")) {
		t.Errorf("balance: got %s, want %d", balance, n)
	}

	entries, err := svc.History(ctx, "stu-1", HistoryFilter{})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != n {
		t.Fatalf("entries: got %d, want %d", len(entries), n)
	}
	for i := 1; i < len(entries); i++ {
		if !entries[i].PreviousBalance.Equal(entries[i-1].NewBalance) {
			t.Fatalf("entry %d breaks the chain: previous %s, prior new %s",
				i, entries[i].PreviousBalance, entries[i-1].NewBalance)
		}
	}
}

func TestPaymentThenDeletionReversesCleanly(t *testing.T) {
	svc, _ := newTestService(t, "stu-1")
	ctx := context.Background()
	actor := "user-1"
	paymentID := "P1"

	// Seed the opening balance of 5000 as a synthetic adjustment.
	if _, err := svc.ApplyChange(ctx, "stu-1", dec("5000"), ChangeAdjustment, "Opening balance", nil, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}

	balance, err := svc.ApplyChange(ctx, "stu-1", dec("-1000"), ChangePayment, "Payment received", &actor, &paymentID)
	if err != nil {
		t.Fatalf("payment: %v", err)
	}
	if !balance.Equal(dec("4000")) {
		t.Fatalf("balance after payment: got %s, want 4000", balance)
	}

	balance, err = svc.Reverse(ctx, "stu-1", dec("-1000"), "Payment P1 deleted", &actor, &paymentID)
	if err != nil {
		t.Fatalf("reversal: %v", err)
	}
	if !balance.Equal(dec("5000")) {
		t.Fatalf("balance after reversal: got %s, want 5000", balance)
	}

	entries, err := svc.History(ctx, "stu-1", HistoryFilter{})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries: got %d, want 3", len(entries))
	}
	payment, reversal := entries[1], entries[2]
	if !payment.PreviousBalance.Equal(dec("5000")) || !payment.NewBalance.Equal(dec("4000")) {
		t.Errorf("payment entry: prev %s new %s, want 5000 -> 4000", payment.PreviousBalance, payment.NewBalance)
	}
	if !reversal.PreviousBalance.Equal(dec("4000")) || !reversal.NewBalance.Equal(dec("5000")) {
		t.Errorf("reversal entry: prev %s new %s, want 4000 -> 5000", reversal.PreviousBalance, reversal.NewBalance)
	}
	if reversal.ChangeType != ChangeAdjustment {
		t.Errorf("reversal change type: got %s, want %s", reversal.ChangeType, ChangeAdjustment)
	}
	if reversal.ReferenceID == nil || *reversal.ReferenceID != paymentID {
		t.Errorf("reversal reference: got %v, want %s", reversal.ReferenceID, paymentID)
	}
}

func TestHistoryFilters(t *testing.T) {
	svc, _ := newTestService(t, "stu-1")
	ctx := context.Background()

	if _, err := svc.ApplyChange(ctx, "stu-1", dec("3000"), ChangeFeeApplied, "", nil, nil); err != nil {
		t.Fatalf("ApplyChange: %v", err)
	}
	if _, err := svc.ApplyChange(ctx, "stu-1", dec("-1000"), ChangePayment, "", nil, nil); err != nil {
		t.Fatalf("ApplyChange: %v", err)
	}
	if _, err := svc.ApplyChange(ctx, "stu-1", dec("-500"), ChangePayment, "", nil, nil); err != nil {
		t.Fatalf("ApplyChange: %v", err)
	}

	payments, err := svc.History(ctx, "stu-1", HistoryFilter{ChangeType: ChangePayment})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(payments) != 2 {
		t.Errorf("payment entries: got %d, want 2", len(payments))
	}
	for _, e := range payments {
		if e.ChangeType != ChangePayment {
			t.Errorf("filter leaked entry of type %s", e.ChangeType)
		}
	}

	_, err = svc.History(ctx, "stu-1", HistoryFilter{ChangeType: ChangeType("nope")})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("expected ValidationError for bad filter type, got %v", err)
	}
}

// conflictStore fails with ErrConflict a set number of times before
// delegating to the wrapped store.
type conflictStore struct {
	*MemoryStore
	mu        sync.Mutex
	conflicts int
}

func (s *conflictStore) ApplyChange(ctx context.Context, ch Change) (decimal.Decimal, error) {
	s.mu.Lock()
	remaining := s.conflicts
	if remaining > 0 {
		s.conflicts--
	}
	s.mu.Unlock()
	if remaining > 0 {
		return decimal.Zero, ErrConflict
	}
	return s.MemoryStore.ApplyChange(ctx, ch)
}

func TestApplyChangeRetriesConflicts(t *testing.T) {
	store := &conflictStore{MemoryStore: NewMemoryStore(), conflicts: 2}
	store.CreateAccount("stu-1")
	svc := NewService(store)

	balance, err := svc.ApplyChange(context.Background(), "stu-1", dec("100"), ChangeFeeApplied, "", nil, nil)
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if !balance.Equal(dec("100")) {
		t.Errorf("balance: got %s, want 100", balance)
	}
}

func TestApplyChangeGivesUpAfterRetryBudget(t *testing.T) {
	store := &conflictStore{MemoryStore: NewMemoryStore(), conflicts: maxAttempts}
	store.CreateAccount("stu-1")
	svc := NewService(store)

	_, err := svc.ApplyChange(context.Background(), "stu-1", dec("100"), ChangeFeeApplied, "", nil, nil)
	var pErr *PersistenceError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}

	// The failed call left no partial state behind.
	entries, err := svc.History(context.Background(), "stu-1", HistoryFilter{})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries after failed change: got %d, want 0", len(entries))
	}
}
