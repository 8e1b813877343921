package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bkorir-git/Student-finance-management-system/app/ledger"
	"github.com/bkorir-git/Student-finance-management-system/app/models"
)

// PaymentFilters represents filtering options for payments
type PaymentFilters struct {
	Search   string
	Method   string
	DateFrom string
	DateTo   string
	Limit    int
	Offset   int
}

// CreateStudentPayment records a payment and applies the balance change
// through the ledger in a single transaction: the payment row, the
// updated balance and the ledger entry commit together or not at all.
func CreateStudentPayment(ctx context.Context, db *sql.DB, payment *models.Payment, actor *string) (decimal.Decimal, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback()

	query := `INSERT INTO payments (student_id, amount, fee_type, payment_method, payment_date, transaction_reference, receipt_number, notes, created_by)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING id, created_at`
	err = tx.QueryRowContext(ctx, query,
		payment.StudentID, payment.Amount, payment.FeeType,
		string(payment.PaymentMethod), payment.PaymentDate,
		nullIfEmpty(payment.TransactionReference), payment.ReceiptNumber,
		nullIfEmpty(payment.Notes), actor,
	).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to insert payment: %w", err)
	}

	change := ledger.Change{
		StudentID:   payment.StudentID,
		Amount:      payment.Amount.Neg(),
		Type:        ledger.ChangePayment,
		Description: "Payment received: " + payment.FeeType,
		ReferenceID: &payment.ID,
		CreatedBy:   actor,
	}
	if err := ledger.ValidateChange(change); err != nil {
		return decimal.Zero, err
	}
	newBalance, err := ledger.ApplyChangeTx(ctx, tx, change)
	if err != nil {
		return decimal.Zero, err
	}

	return newBalance, tx.Commit()
}

// DeleteStudentPayment removes a payment and restores the student's
// balance with a compensating adjustment entry referencing the deleted
// payment. The balance column is never touched directly.
func DeleteStudentPayment(ctx context.Context, db *sql.DB, paymentID string, actor *string) (*models.Payment, decimal.Decimal, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, decimal.Zero, err
	}
	defer tx.Rollback()

	// Lock the payment row so a concurrent delete of the same payment
	// blocks here and then sees no row, instead of compensating twice.
	payment := &models.Payment{ID: paymentID}
	err = tx.QueryRowContext(ctx,
		`SELECT student_id, amount, receipt_number FROM payments WHERE id = $1 FOR UPDATE`,
		paymentID,
	).Scan(&payment.StudentID, &payment.Amount, &payment.ReceiptNumber)
	if err != nil {
		return nil, decimal.Zero, err
	}

	change := ledger.Change{
		StudentID:   payment.StudentID,
		Amount:      payment.Amount,
		Type:        ledger.ChangeAdjustment,
		Description: fmt.Sprintf("Payment %s deleted", payment.ReceiptNumber),
		ReferenceID: &payment.ID,
		CreatedBy:   actor,
	}
	if err := ledger.ValidateChange(change); err != nil {
		return nil, decimal.Zero, err
	}
	newBalance, err := ledger.ApplyChangeTx(ctx, tx, change)
	if err != nil {
		return nil, decimal.Zero, err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, paymentID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to delete payment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, decimal.Zero, err
	}
	if affected == 0 {
		// Someone else deleted it first; roll back the compensating entry.
		return nil, decimal.Zero, sql.ErrNoRows
	}

	return payment, newBalance, tx.Commit()
}

// GetPaymentsWithFilters returns payments joined with student details,
// newest first, plus the total match count.
func GetPaymentsWithFilters(db *sql.DB, filters PaymentFilters) ([]*models.Payment, int, error) {
	where := "WHERE 1=1"
	var args []interface{}
	argIndex := 1

	if filters.Search != "" {
		where += fmt.Sprintf(" AND (s.full_name ILIKE $%d OR p.receipt_number ILIKE $%d OR p.transaction_reference ILIKE $%d)",
			argIndex, argIndex, argIndex)
		args = append(args, "%"+filters.Search+"%")
		argIndex++
	}
	if filters.Method != "" {
		where += fmt.Sprintf(" AND p.payment_method = $%d", argIndex)
		args = append(args, filters.Method)
		argIndex++
	}
	if filters.DateFrom != "" {
		where += fmt.Sprintf(" AND p.payment_date >= $%d", argIndex)
		args = append(args, filters.DateFrom)
		argIndex++
	}
	if filters.DateTo != "" {
		where += fmt.Sprintf(" AND p.payment_date <= $%d", argIndex)
		args = append(args, filters.DateTo)
		argIndex++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM payments p JOIN students s ON p.student_id = s.id ` + where
	if err := db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT p.id, p.student_id, p.amount, p.fee_type, p.payment_method, p.payment_date,
					 p.transaction_reference, p.receipt_number, p.notes, p.created_by, p.created_at, p.updated_at,
					 s.full_name, s.student_number
			  FROM payments p
			  JOIN students s ON p.student_id = s.id ` + where + `
			  ORDER BY p.payment_date DESC, p.created_at DESC`
	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, filters.Limit, filters.Offset)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		payments = append(payments, p)
	}
	return payments, total, rows.Err()
}

func GetPaymentByID(db *sql.DB, id string) (*models.Payment, error) {
	query := `SELECT p.id, p.student_id, p.amount, p.fee_type, p.payment_method, p.payment_date,
					 p.transaction_reference, p.receipt_number, p.notes, p.created_by, p.created_at, p.updated_at,
					 s.full_name, s.student_number
			  FROM payments p
			  JOIN students s ON p.student_id = s.id
			  WHERE p.id = $1`
	return scanPayment(db.QueryRow(query, id))
}

func scanPayment(scanner interface{ Scan(...interface{}) error }) (*models.Payment, error) {
	p := &models.Payment{}
	var method string
	var txnRef, notes sql.NullString
	err := scanner.Scan(
		&p.ID, &p.StudentID, &p.Amount, &p.FeeType, &method, &p.PaymentDate,
		&txnRef, &p.ReceiptNumber, &notes, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
		&p.StudentName, &p.StudentNumber,
	)
	if err != nil {
		return nil, err
	}
	p.PaymentMethod = models.PaymentMethod(method)
	p.TransactionReference = txnRef.String
	p.Notes = notes.String
	return p, nil
}
