package database

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bkorir-git/Student-finance-management-system/app/models"
)

// FeeStructureFilters represents filtering options for fee structures
type FeeStructureFilters struct {
	Grade        string
	Term         string
	AcademicYear string
}

func feeStructureColumns() string {
	return `id, grade, term, fee_type, amount, description, academic_year, is_active, created_at, updated_at`
}

func scanFeeStructure(scanner interface{ Scan(...interface{}) error }) (*models.FeeStructure, error) {
	f := &models.FeeStructure{}
	var term string
	var description, academicYear sql.NullString
	err := scanner.Scan(
		&f.ID, &f.Grade, &term, &f.FeeType, &f.Amount, &description,
		&academicYear, &f.IsActive, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	f.Term = models.Term(term)
	f.Description = description.String
	f.AcademicYear = academicYear.String
	return f, nil
}

// GetFeeStructures returns active fee structures matching the filters,
// ordered by grade then term.
func GetFeeStructures(db *sql.DB, filters FeeStructureFilters) ([]*models.FeeStructure, error) {
	where := "WHERE is_active = true"
	var args []interface{}
	argIndex := 1

	if filters.Grade != "" {
		where += fmt.Sprintf(" AND grade = $%d", argIndex)
		args = append(args, filters.Grade)
		argIndex++
	}
	if filters.Term != "" {
		where += fmt.Sprintf(" AND term = $%d", argIndex)
		args = append(args, filters.Term)
		argIndex++
	}
	if filters.AcademicYear != "" {
		where += fmt.Sprintf(" AND academic_year = $%d", argIndex)
		args = append(args, filters.AcademicYear)
		argIndex++
	}

	query := "SELECT " + feeStructureColumns() + " FROM fee_structures " + where + " ORDER BY grade, term"
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fees []*models.FeeStructure
	for rows.Next() {
		f, err := scanFeeStructure(rows)
		if err != nil {
			return nil, err
		}
		fees = append(fees, f)
	}
	return fees, rows.Err()
}

func GetFeeStructureByID(db *sql.DB, id string) (*models.FeeStructure, error) {
	query := "SELECT " + feeStructureColumns() + " FROM fee_structures WHERE id = $1"
	return scanFeeStructure(db.QueryRow(query, id))
}

func CreateFeeStructure(db *sql.DB, fee *models.FeeStructure) error {
	query := `INSERT INTO fee_structures (grade, term, fee_type, amount, description, academic_year)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id, is_active, created_at, updated_at`
	return db.QueryRow(query,
		fee.Grade, string(fee.Term), fee.FeeType, fee.Amount,
		nullIfEmpty(fee.Description), nullIfEmpty(fee.AcademicYear),
	).Scan(&fee.ID, &fee.IsActive, &fee.CreatedAt, &fee.UpdatedAt)
}

func UpdateFeeStructure(db *sql.DB, fee *models.FeeStructure) error {
	query := `UPDATE fee_structures
			  SET grade = $1, term = $2, fee_type = $3, amount = $4, description = $5, academic_year = $6, updated_at = NOW()
			  WHERE id = $7`
	_, err := db.Exec(query,
		fee.Grade, string(fee.Term), fee.FeeType, fee.Amount,
		nullIfEmpty(fee.Description), nullIfEmpty(fee.AcademicYear), fee.ID,
	)
	return err
}

// SoftDeleteFeeStructure deactivates a fee structure line item.
func SoftDeleteFeeStructure(db *sql.DB, id string) error {
	result, err := db.Exec(`UPDATE fee_structures SET is_active = false, updated_at = NOW() WHERE id = $1`, id)
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

// TotalFeesForGrade sums the active fee structure line items for a
// grade, optionally narrowed by term and academic year. A zero total
// means no fee structure is configured; callers must treat that as
// "not configured" and skip the balance change entirely.
func TotalFeesForGrade(db *sql.DB, grade, term, academicYear string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM fee_structures WHERE grade = $1 AND is_active = true`
	args := []interface{}{grade}
	argIndex := 2

	if term != "" {
		query += fmt.Sprintf(" AND term = $%d", argIndex)
		args = append(args, term)
		argIndex++
	}
	if academicYear != "" {
		query += fmt.Sprintf(" AND academic_year = $%d", argIndex)
		args = append(args, academicYear)
		argIndex++
	}

	var total decimal.Decimal
	if err := db.QueryRow(query, args...).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
