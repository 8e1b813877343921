package database

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
)

func TestDeleteStudentPaymentRestoresBalance(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT student_id, amount, receipt_number FROM payments WHERE id = $1 FOR UPDATE`)).
		WithArgs("pay-1").
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "amount", "receipt_number"}).
			AddRow("stu-1", "1000", "RCP-20250114-A3F2C1"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT balance FROM students WHERE id = $1 FOR UPDATE`)).
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("4000"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE students SET balance = $1, updated_at = NOW() WHERE id = $2`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO balance_history").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM payments WHERE id = $1`)).
		WithArgs("pay-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	payment, newBalance, err := DeleteStudentPayment(context.Background(), db, "pay-1", nil)
	if err != nil {
		t.Fatalf("DeleteStudentPayment: %v", err)
	}
	if !newBalance.Equal(decimal.RequireFromString("5000")) {
		t.Errorf("new balance: got %s, want 5000", newBalance)
	}
	if payment.ReceiptNumber != "RCP-20250114-A3F2C1" {
		t.Errorf("receipt: got %s", payment.ReceiptNumber)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// A payment deleted by a concurrent request must not be compensated a
// second time: when the DELETE matches no rows the whole transaction,
// compensating entry included, rolls back.
func TestDeleteStudentPaymentAlreadyDeleted(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT student_id, amount, receipt_number FROM payments WHERE id = $1 FOR UPDATE`)).
		WithArgs("pay-1").
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "amount", "receipt_number"}).
			AddRow("stu-1", "1000", "RCP-20250114-A3F2C1"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT balance FROM students WHERE id = $1 FOR UPDATE`)).
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("4000"))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE students SET balance = $1, updated_at = NOW() WHERE id = $2`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO balance_history").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM payments WHERE id = $1`)).
		WithArgs("pay-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, _, err = DeleteStudentPayment(context.Background(), db, "pay-1", nil)
	if err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// The row lock on the payment select is what makes a concurrent delete
// of the same payment observe the first delete instead of racing it.
func TestDeleteStudentPaymentLocksPaymentRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT student_id, amount, receipt_number FROM payments WHERE id = $1 FOR UPDATE`)).
		WithArgs("pay-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, _, err = DeleteStudentPayment(context.Background(), db, "pay-1", nil)
	if err != sql.ErrNoRows {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
