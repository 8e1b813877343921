package database

import (
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestNextStudentNumber(t *testing.T) {
	tests := []struct {
		name string
		last interface{}
		want string
	}{
		{"first student", nil, "STU001"},
		{"simple increment", "STU007", "STU008"},
		{"three to four digits", "STU999", "STU1000"},
		{"four digits", "STU1000", "STU1001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock: %v", err)
			}
			defer db.Close()

			// Ordering must be length-first: lexicographic DESC would
			// rank STU999 above STU1000 and re-issue taken numbers.
			expect := mock.ExpectQuery(regexp.QuoteMeta(
				`SELECT student_number FROM students WHERE student_number LIKE 'STU%' ORDER BY length(student_number) DESC, student_number DESC LIMIT 1`))
			if tt.last == nil {
				expect.WillReturnError(sql.ErrNoRows)
			} else {
				expect.WillReturnRows(sqlmock.NewRows([]string{"student_number"}).AddRow(tt.last))
			}

			got, err := NextStudentNumber(db)
			if err != nil {
				t.Fatalf("NextStudentNumber: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}
