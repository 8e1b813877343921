package services

import (
	"database/sql"
	"log"
)

// ReconcileBalances recomputes each student's ledger sum and compares
// it to the stored balance. Every change goes through the ledger, so a
// mismatch should never happen; this job exists to detect it early if
// it somehow does. Detection only, nothing is repaired automatically.
func ReconcileBalances(db *sql.DB) error {
	query := `
		SELECT s.id, s.student_number, s.balance, COALESCE(SUM(h.change_amount), 0) AS ledger_sum
		FROM students s
		LEFT JOIN balance_history h ON h.student_id = s.id
		GROUP BY s.id, s.student_number, s.balance
		HAVING s.balance <> COALESCE(SUM(h.change_amount), 0)
	`
	rows, err := db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	mismatches := 0
	for rows.Next() {
		var id, studentNumber, balance, ledgerSum string
		if err := rows.Scan(&id, &studentNumber, &balance, &ledgerSum); err != nil {
			return err
		}
		mismatches++
		log.Printf("BALANCE MISMATCH for %s (%s): stored=%s ledger=%s", studentNumber, id, balance, ledgerSum)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if mismatches == 0 {
		log.Println("Balance reconciliation completed: all accounts consistent")
	} else {
		log.Printf("Balance reconciliation completed: %d account(s) inconsistent", mismatches)
	}
	return nil
}
