package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeStructure represents one billable line item for a grade, e.g.
// "Grade 8 / Term 1 / Tuition". The total charged when fees are applied
// to a student is the sum of all active line items matching their grade.
type FeeStructure struct {
	ID           string          `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	Grade        string          `json:"grade" gorm:"not null;index" validate:"required"`
	Term         Term            `json:"term" gorm:"not null;index;type:varchar(10)" validate:"required"`
	FeeType      string          `json:"fee_type" gorm:"not null;index" validate:"required"`
	Amount       decimal.Decimal `json:"amount" gorm:"not null;type:numeric(15,2)" validate:"required"`
	Description  string          `json:"description,omitempty" gorm:"type:text"`
	AcademicYear string          `json:"academic_year,omitempty" gorm:"type:varchar(10)"`
	IsActive     bool            `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}
