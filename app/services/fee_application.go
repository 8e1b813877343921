package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bkorir-git/Student-finance-management-system/app/database"
	"github.com/bkorir-git/Student-finance-management-system/app/ledger"
	"github.com/bkorir-git/Student-finance-management-system/app/models"
)

// ErrNoFeeStructure is returned when the catalog has no active line
// items for a grade. Callers surface it as "not configured" and must
// not record a zero-delta ledger entry.
var ErrNoFeeStructure = errors.New("no fee structure defined for grade")

// FeeCatalog provides the total chargeable amount for a grade. The
// ledger treats the result as an opaque decimal input.
type FeeCatalog interface {
	TotalForGrade(grade, term, academicYear string) (decimal.Decimal, error)
}

// DBCatalog reads fee totals from the fee_structures table.
type DBCatalog struct {
	db *sql.DB
}

func NewDBCatalog(db *sql.DB) *DBCatalog {
	return &DBCatalog{db: db}
}

func (c *DBCatalog) TotalForGrade(grade, term, academicYear string) (decimal.Decimal, error) {
	return database.TotalFeesForGrade(c.db, grade, term, academicYear)
}

// ApplyGradeFees charges a student the catalog total for their grade.
// If the catalog total is zero the ledger is not called at all and
// ErrNoFeeStructure is returned. Returns the amount applied and the
// new balance.
func ApplyGradeFees(ctx context.Context, svc *ledger.Service, catalog FeeCatalog, student *models.Student, term, academicYear string, actor *string) (decimal.Decimal, decimal.Decimal, error) {
	total, err := catalog.TotalForGrade(student.Grade, term, academicYear)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if total.IsZero() {
		return decimal.Zero, decimal.Zero, ErrNoFeeStructure
	}

	description := fmt.Sprintf("Fee structure applied for Grade %s", student.Grade)
	newBalance, err := svc.ApplyChange(ctx, student.ID, total, ledger.ChangeFeeApplied, description, actor, nil)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return total, newBalance, nil
}

// SeedOpeningBalance records an explicit opening balance as a synthetic
// adjustment entry. Accounts start at zero; any non-zero opening value
// goes through the ledger like every other change.
func SeedOpeningBalance(ctx context.Context, svc *ledger.Service, studentID string, amount decimal.Decimal, actor *string) (decimal.Decimal, error) {
	return svc.ApplyChange(ctx, studentID, amount, ledger.ChangeAdjustment, "Opening balance", actor, nil)
}

// InitializeFromCatalog seeds a new student's balance from the fee
// catalog. This is an explicit operation: a zero stored balance never
// implies "initialize me" anywhere in the system.
func InitializeFromCatalog(ctx context.Context, svc *ledger.Service, catalog FeeCatalog, student *models.Student, term, academicYear string, actor *string) (decimal.Decimal, decimal.Decimal, error) {
	total, err := catalog.TotalForGrade(student.Grade, term, academicYear)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if total.IsZero() {
		return decimal.Zero, decimal.Zero, ErrNoFeeStructure
	}

	// Seeding is a synthetic adjustment, like any other opening balance;
	// fee_applied is reserved for charging an already-onboarded student.
	description := fmt.Sprintf("Opening balance from fee structure (Grade %s)", student.Grade)
	newBalance, err := svc.ApplyChange(ctx, student.ID, total, ledger.ChangeAdjustment, description, actor, nil)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return total, newBalance, nil
}
