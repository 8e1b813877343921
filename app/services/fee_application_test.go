package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/bkorir-git/Student-finance-management-system/app/ledger"
	"github.com/bkorir-git/Student-finance-management-system/app/models"
)

type stubCatalog struct {
	totals map[string]string
}

func (c *stubCatalog) TotalForGrade(grade, term, academicYear string) (decimal.Decimal, error) {
	total, ok := c.totals[grade]
	if !ok {
		return decimal.Zero, nil
	}
	return decimal.RequireFromString(total), nil
}

func TestApplyGradeFeesChargesCatalogTotal(t *testing.T) {
	store := ledger.NewMemoryStore()
	store.CreateAccount("stu-1")
	svc := ledger.NewService(store)
	catalog := &stubCatalog{totals: map[string]string{"8": "12500.00"}}
	student := &models.Student{ID: "stu-1", Grade: "8"}
	actor := "user-1"

	amount, newBalance, err := ApplyGradeFees(context.Background(), svc, catalog, student, "", "", &actor)
	if err != nil {
		t.Fatalf("ApplyGradeFees: %v", err)
	}
	if !amount.Equal(decimal.RequireFromString("12500.00")) {
		t.Errorf("amount: got %s, want 12500.00", amount)
	}
	if !newBalance.Equal(decimal.RequireFromString("12500.00")) {
		t.Errorf("new balance: got %s, want 12500.00", newBalance)
	}

	entries, err := svc.History(context.Background(), "stu-1", ledger.HistoryFilter{})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries: got %d, want 1", len(entries))
	}
	if entries[0].ChangeType != ledger.ChangeFeeApplied {
		t.Errorf("change type: got %s, want %s", entries[0].ChangeType, ledger.ChangeFeeApplied)
	}
	if entries[0].CreatedBy == nil || *entries[0].CreatedBy != actor {
		t.Errorf("actor: got %v, want %s", entries[0].CreatedBy, actor)
	}
}

func TestApplyGradeFeesNoStructureConfigured(t *testing.T) {
	store := ledger.NewMemoryStore()
	store.CreateAccount("stu-1")
	svc := ledger.NewService(store)
	catalog := &stubCatalog{totals: map[string]string{}} // grade 9Z unconfigured
	student := &models.Student{ID: "stu-1", Grade: "9Z"}

	_, _, err := ApplyGradeFees(context.Background(), svc, catalog, student, "", "", nil)
	if !errors.Is(err, ErrNoFeeStructure) {
		t.Fatalf("expected ErrNoFeeStructure, got %v", err)
	}

	// The ledger was never called: no zero-delta entry, balance untouched.
	balance, err := svc.Balance(context.Background(), "stu-1")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if !balance.IsZero() {
		t.Errorf("balance: got %s, want 0", balance)
	}
	entries, err := svc.History(context.Background(), "stu-1", ledger.HistoryFilter{})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries: got %d, want 0", len(entries))
	}
}

func TestSeedOpeningBalanceRecordsAdjustment(t *testing.T) {
	store := ledger.NewMemoryStore()
	store.CreateAccount("stu-1")
	svc := ledger.NewService(store)

	newBalance, err := SeedOpeningBalance(context.Background(), svc, "stu-1", decimal.RequireFromString("7500"), nil)
	if err != nil {
		t.Fatalf("SeedOpeningBalance: %v", err)
	}
	if !newBalance.Equal(decimal.RequireFromString("7500")) {
		t.Errorf("balance: got %s, want 7500", newBalance)
	}

	entries, err := svc.History(context.Background(), "stu-1", ledger.HistoryFilter{})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries: got %d, want 1", len(entries))
	}
	if entries[0].ChangeType != ledger.ChangeAdjustment {
		t.Errorf("change type: got %s, want %s", entries[0].ChangeType, ledger.ChangeAdjustment)
	}
	if entries[0].CreatedBy != nil {
		t.Errorf("expected system-initiated entry, got actor %v", *entries[0].CreatedBy)
	}
}

func TestInitializeFromCatalogRequiresStructure(t *testing.T) {
	store := ledger.NewMemoryStore()
	store.CreateAccount("stu-1")
	svc := ledger.NewService(store)
	catalog := &stubCatalog{totals: map[string]string{"8": "3000"}}

	_, _, err := InitializeFromCatalog(context.Background(), svc, catalog, &models.Student{ID: "stu-1", Grade: "12"}, "", "", nil)
	if !errors.Is(err, ErrNoFeeStructure) {
		t.Fatalf("expected ErrNoFeeStructure, got %v", err)
	}

	amount, newBalance, err := InitializeFromCatalog(context.Background(), svc, catalog, &models.Student{ID: "stu-1", Grade: "8"}, "", "", nil)
	if err != nil {
		t.Fatalf("InitializeFromCatalog: %v", err)
	}
	if !amount.Equal(decimal.RequireFromString("3000")) || !newBalance.Equal(decimal.RequireFromString("3000")) {
		t.Errorf("got amount %s balance %s, want 3000 / 3000", amount, newBalance)
	}

	// Seeding is recorded as a synthetic adjustment, not fee_applied.
	entries, err := svc.History(context.Background(), "stu-1", ledger.HistoryFilter{})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries: got %d, want 1", len(entries))
	}
	if entries[0].ChangeType != ledger.ChangeAdjustment {
		t.Errorf("change type: got %s, want %s", entries[0].ChangeType, ledger.ChangeAdjustment)
	}
}
