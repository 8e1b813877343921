package database

import (
	"database/sql"
	"log"
)

// RunMigrations checks and applies necessary schema updates
func RunMigrations(db *sql.DB) error {
	log.Println("Running database migrations...")

	migrations := []struct {
		name string
		fn   func(*sql.DB) error
	}{
		{"users table", createUsersTable},
		{"students table", createStudentsTable},
		{"balance_history table", createBalanceHistoryTable},
		{"payments table", createPaymentsTable},
		{"fee_structures table", createFeeStructuresTable},
		{"system_logs table", createSystemLogsTable},
	}

	for _, m := range migrations {
		if err := m.fn(db); err != nil {
			log.Printf("Failed to run migration for %s: %v", m.name, err)
			return err
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createUsersTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username VARCHAR(80) UNIQUE NOT NULL,
			email VARCHAR(120) UNIQUE,
			password VARCHAR(255) NOT NULL,
			full_name VARCHAR(150),
			role VARCHAR(20) NOT NULL DEFAULT 'viewer',
			is_active BOOLEAN DEFAULT true,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS idx_users_username ON users (username);
	`
	_, err := db.Exec(query)
	return err
}

func createStudentsTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS students (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			student_number VARCHAR(20) UNIQUE NOT NULL,
			full_name VARCHAR(150) NOT NULL,
			grade VARCHAR(10) NOT NULL,
			guardian_name VARCHAR(150),
			guardian_contact VARCHAR(20) NOT NULL,
			guardian_email VARCHAR(120),
			address TEXT,
			balance NUMERIC(15,2) NOT NULL DEFAULT 0,
			is_active BOOLEAN DEFAULT true,
			enrollment_date DATE,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_students_full_name ON students (full_name);
		CREATE INDEX IF NOT EXISTS idx_students_grade ON students (grade);
		CREATE INDEX IF NOT EXISTS idx_students_balance ON students (balance);
	`
	_, err := db.Exec(query)
	return err
}

func createBalanceHistoryTable(db *sql.DB) error {
	// Append-only: rows are never updated or deleted. Reversals are new rows.
	query := `
		CREATE TABLE IF NOT EXISTS balance_history (
			id BIGSERIAL PRIMARY KEY,
			student_id UUID NOT NULL REFERENCES students(id),
			previous_balance NUMERIC(15,2) NOT NULL,
			new_balance NUMERIC(15,2) NOT NULL,
			change_amount NUMERIC(15,2) NOT NULL,
			change_type VARCHAR(20) NOT NULL CHECK (change_type IN ('payment', 'fee_applied', 'adjustment', 'refund')),
			reference_id VARCHAR(64),
			description TEXT,
			created_by UUID,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_balance_history_student ON balance_history (student_id);
		CREATE INDEX IF NOT EXISTS idx_balance_history_created_at ON balance_history (created_at);
	`
	_, err := db.Exec(query)
	return err
}

func createPaymentsTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS payments (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			student_id UUID NOT NULL REFERENCES students(id),
			amount NUMERIC(15,2) NOT NULL,
			fee_type VARCHAR(50) NOT NULL,
			payment_method VARCHAR(20) NOT NULL,
			payment_date DATE NOT NULL,
			transaction_reference VARCHAR(100),
			receipt_number VARCHAR(50) UNIQUE,
			notes TEXT,
			created_by UUID,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_payments_student ON payments (student_id);
		CREATE INDEX IF NOT EXISTS idx_payments_date ON payments (payment_date);
		CREATE INDEX IF NOT EXISTS idx_payments_method ON payments (payment_method);
	`
	_, err := db.Exec(query)
	return err
}

func createFeeStructuresTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS fee_structures (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			grade VARCHAR(10) NOT NULL,
			term VARCHAR(10) NOT NULL,
			fee_type VARCHAR(50) NOT NULL,
			amount NUMERIC(15,2) NOT NULL,
			description TEXT,
			academic_year VARCHAR(10),
			is_active BOOLEAN DEFAULT true,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			CONSTRAINT unique_fee UNIQUE (grade, term, fee_type, academic_year)
		);
		CREATE INDEX IF NOT EXISTS idx_fee_structures_grade ON fee_structures (grade);
		CREATE INDEX IF NOT EXISTS idx_fee_structures_term ON fee_structures (term);
	`
	_, err := db.Exec(query)
	return err
}

func createSystemLogsTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS system_logs (
			id BIGSERIAL PRIMARY KEY,
			user_id UUID,
			action VARCHAR(100) NOT NULL,
			entity_type VARCHAR(50),
			entity_id VARCHAR(64),
			details TEXT,
			ip_address VARCHAR(45),
			created_at TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_system_logs_action ON system_logs (action);
		CREATE INDEX IF NOT EXISTS idx_system_logs_created_at ON system_logs (created_at);
	`
	_, err := db.Exec(query)
	return err
}
