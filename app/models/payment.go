package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment represents a fee payment received from (or on behalf of) a student.
// Recording a payment decreases the student's balance through the ledger;
// deleting one restores it with a compensating adjustment entry.
type Payment struct {
	ID                   string          `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	StudentID            string          `json:"student_id" gorm:"not null;index;type:uuid" validate:"required,uuid"`
	Amount               decimal.Decimal `json:"amount" gorm:"not null;type:numeric(15,2)" validate:"required"`
	FeeType              string          `json:"fee_type" gorm:"not null" validate:"required"`
	PaymentMethod        PaymentMethod   `json:"payment_method" gorm:"not null;index;type:varchar(20)" validate:"required"`
	PaymentDate          time.Time       `json:"payment_date" gorm:"not null;index;type:date" validate:"required"`
	TransactionReference string          `json:"transaction_reference,omitempty"`
	ReceiptNumber        string          `json:"receipt_number" gorm:"uniqueIndex"`
	Notes                string          `json:"notes,omitempty" gorm:"type:text"`
	CreatedBy            *string         `json:"created_by,omitempty" gorm:"index;type:uuid"`
	CreatedAt            time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt            time.Time       `json:"updated_at" gorm:"autoUpdateTime"`

	// Populated by joined queries for display
	StudentName   string `json:"student_name,omitempty" gorm:"-"`
	StudentNumber string `json:"student_number,omitempty" gorm:"-"`
}

// GenerateReceiptNumber returns a unique receipt number like RCP-20250114-A3F2C1.
func GenerateReceiptNumber() string {
	suffix := strings.ToUpper(uuid.NewString()[:6])
	return fmt.Sprintf("RCP-%s-%s", time.Now().Format("20060102"), suffix)
}
