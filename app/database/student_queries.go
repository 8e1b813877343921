package database

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/bkorir-git/Student-finance-management-system/app/models"
)

// StudentFilters represents filtering options for students
type StudentFilters struct {
	Search string
	Grade  string
	Limit  int
	Offset int
}

func studentColumns() string {
	return `id, student_number, full_name, grade, guardian_name, guardian_contact,
			guardian_email, address, balance, is_active, enrollment_date, created_at, updated_at`
}

func scanStudent(scanner interface{ Scan(...interface{}) error }) (*models.Student, error) {
	s := &models.Student{}
	var guardianName, guardianEmail, address sql.NullString
	var enrollmentDate sql.NullTime
	err := scanner.Scan(
		&s.ID, &s.StudentNumber, &s.FullName, &s.Grade, &guardianName,
		&s.GuardianContact, &guardianEmail, &address, &s.Balance,
		&s.IsActive, &enrollmentDate, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.GuardianName = guardianName.String
	s.GuardianEmail = guardianEmail.String
	s.Address = address.String
	if enrollmentDate.Valid {
		s.EnrollmentDate = enrollmentDate.Time
	}
	return s, nil
}

// GetStudentsWithFilters returns active students matching the filters plus the total match count.
func GetStudentsWithFilters(db *sql.DB, filters StudentFilters) ([]*models.Student, int, error) {
	where := "WHERE is_active = true"
	var args []interface{}
	argIndex := 1

	if filters.Search != "" {
		where += fmt.Sprintf(" AND (full_name ILIKE $%d OR student_number ILIKE $%d OR guardian_contact ILIKE $%d)",
			argIndex, argIndex, argIndex)
		args = append(args, "%"+filters.Search+"%")
		argIndex++
	}
	if filters.Grade != "" {
		where += fmt.Sprintf(" AND grade = $%d", argIndex)
		args = append(args, filters.Grade)
		argIndex++
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM students " + where
	if err := db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + studentColumns() + " FROM students " + where + " ORDER BY full_name"
	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, filters.Limit, filters.Offset)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var students []*models.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, 0, err
		}
		students = append(students, s)
	}
	return students, total, rows.Err()
}

func GetStudentByID(db *sql.DB, id string) (*models.Student, error) {
	query := "SELECT " + studentColumns() + " FROM students WHERE id = $1"
	return scanStudent(db.QueryRow(query, id))
}

// NextStudentNumber generates the next sequential student number (STU001, STU002, ...).
// Ordering is on length before value: plain DESC is lexicographic and
// would rank STU999 above STU1000.
func NextStudentNumber(db *sql.DB) (string, error) {
	var last sql.NullString
	err := db.QueryRow(`SELECT student_number FROM students WHERE student_number LIKE 'STU%' ORDER BY length(student_number) DESC, student_number DESC LIMIT 1`).Scan(&last)
	if err != nil && err != sql.ErrNoRows {
		return "", err
	}
	next := 1
	if last.Valid {
		if n, err := strconv.Atoi(strings.TrimPrefix(last.String, "STU")); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("STU%03d", next), nil
}

// CreateStudent inserts a new student with a zero balance. Seeding an
// opening balance is a separate ledger operation, never a direct write.
func CreateStudent(db *sql.DB, student *models.Student) error {
	query := `INSERT INTO students (student_number, full_name, grade, guardian_name, guardian_contact, guardian_email, address, balance, enrollment_date)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8)
			  RETURNING id, balance, created_at, updated_at`
	return db.QueryRow(query,
		student.StudentNumber, student.FullName, student.Grade,
		nullIfEmpty(student.GuardianName), student.GuardianContact,
		nullIfEmpty(student.GuardianEmail), nullIfEmpty(student.Address),
		student.EnrollmentDate,
	).Scan(&student.ID, &student.Balance, &student.CreatedAt, &student.UpdatedAt)
}

func UpdateStudent(db *sql.DB, student *models.Student) error {
	query := `UPDATE students
			  SET full_name = $1, grade = $2, guardian_name = $3, guardian_contact = $4,
				  guardian_email = $5, address = $6, enrollment_date = $7, updated_at = NOW()
			  WHERE id = $8`
	_, err := db.Exec(query,
		student.FullName, student.Grade, nullIfEmpty(student.GuardianName),
		student.GuardianContact, nullIfEmpty(student.GuardianEmail),
		nullIfEmpty(student.Address), student.EnrollmentDate, student.ID,
	)
	return err
}

// SoftDeleteStudent deactivates a student. The row (and its ledger
// history) stays for audit.
func SoftDeleteStudent(db *sql.DB, id string) error {
	result, err := db.Exec(`UPDATE students SET is_active = false, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
