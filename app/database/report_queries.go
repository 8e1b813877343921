package database

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bkorir-git/Student-finance-management-system/app/models"
)

// GradeTotal is one grade's share of collected payments.
type GradeTotal struct {
	Grade string          `json:"grade"`
	Total decimal.Decimal `json:"total"`
}

// MethodTotal is one payment method's share of collected payments.
type MethodTotal struct {
	Method string          `json:"method"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

// ReportSummary aggregates collection figures for a date range.
type ReportSummary struct {
	TotalCollected   decimal.Decimal `json:"total_collected"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	CollectionRate   float64         `json:"collection_rate"`
	PaymentCount     int             `json:"payment_count"`
}

func paymentDateRange(dateFrom, dateTo string, argIndex int) (string, []interface{}) {
	var clause string
	var args []interface{}
	if dateFrom != "" {
		clause += fmt.Sprintf(" AND p.payment_date >= $%d", argIndex)
		args = append(args, dateFrom)
		argIndex++
	}
	if dateTo != "" {
		clause += fmt.Sprintf(" AND p.payment_date <= $%d", argIndex)
		args = append(args, dateTo)
	}
	return clause, args
}

// GetPaymentsByGrade returns total collected per grade within an optional date range.
func GetPaymentsByGrade(db *sql.DB, dateFrom, dateTo string) ([]GradeTotal, error) {
	clause, args := paymentDateRange(dateFrom, dateTo, 1)
	query := `SELECT s.grade, COALESCE(SUM(p.amount), 0)
			  FROM payments p
			  JOIN students s ON p.student_id = s.id
			  WHERE 1=1` + clause + `
			  GROUP BY s.grade
			  ORDER BY s.grade`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []GradeTotal
	for rows.Next() {
		var gt GradeTotal
		if err := rows.Scan(&gt.Grade, &gt.Total); err != nil {
			return nil, err
		}
		results = append(results, gt)
	}
	return results, rows.Err()
}

// GetPaymentsByMethod returns count and total collected per payment method.
func GetPaymentsByMethod(db *sql.DB, dateFrom, dateTo string) ([]MethodTotal, error) {
	clause, args := paymentDateRange(dateFrom, dateTo, 1)
	query := `SELECT p.payment_method, COUNT(*), COALESCE(SUM(p.amount), 0)
			  FROM payments p
			  WHERE 1=1` + clause + `
			  GROUP BY p.payment_method
			  ORDER BY p.payment_method`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []MethodTotal
	for rows.Next() {
		var mt MethodTotal
		if err := rows.Scan(&mt.Method, &mt.Count, &mt.Total); err != nil {
			return nil, err
		}
		results = append(results, mt)
	}
	return results, rows.Err()
}

// GetReportSummary returns collected vs outstanding totals and the
// collection rate for an optional date range.
func GetReportSummary(db *sql.DB, dateFrom, dateTo string) (*ReportSummary, error) {
	summary := &ReportSummary{}

	clause, args := paymentDateRange(dateFrom, dateTo, 1)
	err := db.QueryRow(`SELECT COALESCE(SUM(p.amount), 0), COUNT(*) FROM payments p WHERE 1=1`+clause, args...).
		Scan(&summary.TotalCollected, &summary.PaymentCount)
	if err != nil {
		return nil, err
	}

	err = db.QueryRow(`SELECT COALESCE(SUM(balance), 0) FROM students WHERE is_active = true`).
		Scan(&summary.TotalOutstanding)
	if err != nil {
		return nil, err
	}

	expected := summary.TotalCollected.Add(summary.TotalOutstanding)
	if expected.IsPositive() {
		rate, _ := summary.TotalCollected.Div(expected).Mul(decimal.NewFromInt(100)).Round(1).Float64()
		summary.CollectionRate = rate
	}
	return summary, nil
}

// GetDefaulters returns active students whose balance exceeds the
// threshold, highest balance first.
func GetDefaulters(db *sql.DB, threshold decimal.Decimal) ([]*models.Student, error) {
	query := "SELECT " + studentColumns() + ` FROM students
			  WHERE is_active = true AND balance > $1
			  ORDER BY balance DESC`

	rows, err := db.Query(query, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []*models.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}
