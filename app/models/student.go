package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Student represents an enrolled student and their fee account.
// Balance is the amount owed (positive) or credit held (negative);
// it is only ever mutated through the ledger, never directly.
type Student struct {
	ID              string          `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	StudentNumber   string          `json:"student_number" gorm:"uniqueIndex;not null" validate:"required"`
	FullName        string          `json:"full_name" gorm:"not null;index" validate:"required"`
	Grade           string          `json:"grade" gorm:"not null;index" validate:"required"`
	GuardianName    string          `json:"guardian_name,omitempty"`
	GuardianContact string          `json:"guardian_contact" gorm:"not null" validate:"required"`
	GuardianEmail   string          `json:"guardian_email,omitempty" validate:"omitempty,email"`
	Address         string          `json:"address,omitempty" gorm:"type:text"`
	Balance         decimal.Decimal `json:"balance" gorm:"type:numeric(15,2);default:0;index"`
	IsActive        bool            `json:"is_active" gorm:"default:true"`
	EnrollmentDate  time.Time       `json:"enrollment_date" gorm:"type:date"`
	CreatedAt       time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}
