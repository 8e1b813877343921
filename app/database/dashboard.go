package database

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// DashboardStats holds the headline figures for the dashboard page.
type DashboardStats struct {
	TotalStudents      int             `json:"total_students"`
	FeesCollected      decimal.Decimal `json:"fees_collected"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	MonthlyPayments    int             `json:"monthly_payments"`
}

// MonthTotal is one point in the payment trend series.
type MonthTotal struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// DayTotal is one day's payments in the calendar view.
type DayTotal struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// GetDashboardStats returns headline statistics for the dashboard.
func GetDashboardStats(db *sql.DB) (*DashboardStats, error) {
	stats := &DashboardStats{}

	err := db.QueryRow(`SELECT COUNT(*) FROM students WHERE is_active = true`).Scan(&stats.TotalStudents)
	if err != nil {
		return nil, err
	}

	err = db.QueryRow(`SELECT COALESCE(SUM(amount), 0) FROM payments`).Scan(&stats.FeesCollected)
	if err != nil {
		return nil, err
	}

	err = db.QueryRow(`SELECT COALESCE(SUM(balance), 0) FROM students WHERE is_active = true`).Scan(&stats.OutstandingBalance)
	if err != nil {
		return nil, err
	}

	firstOfMonth := time.Now().AddDate(0, 0, 1-time.Now().Day()).Format("2006-01-02")
	err = db.QueryRow(`SELECT COUNT(*) FROM payments WHERE payment_date >= $1`, firstOfMonth).Scan(&stats.MonthlyPayments)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// GetPaymentTrends returns total payments per month for the last n months,
// oldest first, with months that saw no payments reported as zero.
func GetPaymentTrends(db *sql.DB, months int) ([]MonthTotal, error) {
	if months <= 0 {
		months = 6
	}
	start := time.Now().AddDate(0, -(months - 1), 0)
	start = time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.Local)

	rows, err := db.Query(`
		SELECT date_trunc('month', payment_date) AS month, COALESCE(SUM(amount), 0)
		FROM payments
		WHERE payment_date >= $1
		GROUP BY month
		ORDER BY month`, start.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[string]decimal.Decimal)
	for rows.Next() {
		var month time.Time
		var amount decimal.Decimal
		if err := rows.Scan(&month, &amount); err != nil {
			return nil, err
		}
		totals[month.Format("Jan 2006")] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	trends := make([]MonthTotal, 0, months)
	for i := 0; i < months; i++ {
		month := start.AddDate(0, i, 0)
		label := month.Format("Jan 2006")
		amount, ok := totals[label]
		if !ok {
			amount = decimal.Zero
		}
		trends = append(trends, MonthTotal{Month: label, Amount: amount})
	}
	return trends, nil
}

// GetPaymentCalendar returns per-day payment counts and totals for one month,
// keyed by ISO date.
func GetPaymentCalendar(db *sql.DB, year, month int) (map[string]DayTotal, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	rows, err := db.Query(`
		SELECT payment_date, COUNT(*), COALESCE(SUM(amount), 0)
		FROM payments
		WHERE payment_date >= $1 AND payment_date < $2
		GROUP BY payment_date`,
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	calendar := make(map[string]DayTotal)
	for rows.Next() {
		var day time.Time
		var dt DayTotal
		if err := rows.Scan(&day, &dt.Count, &dt.Total); err != nil {
			return nil, err
		}
		calendar[day.Format("2006-01-02")] = dt
	}
	return calendar, rows.Err()
}
