package models

import "time"

// SystemLog is an audit record of a user action. Writing one is
// best-effort; it never fails the request that caused it.
type SystemLog struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     *string   `json:"user_id,omitempty" gorm:"index;type:uuid"`
	Action     string    `json:"action" gorm:"not null;index" validate:"required"`
	EntityType string    `json:"entity_type,omitempty" gorm:"type:varchar(50)"`
	EntityID   string    `json:"entity_id,omitempty"`
	Details    string    `json:"details,omitempty" gorm:"type:text"`
	IPAddress  string    `json:"ip_address,omitempty" gorm:"type:varchar(45)"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}
