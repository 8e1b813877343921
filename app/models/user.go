package models

import "time"

// User represents a back-office user. Role is a fixed enum; what the
// role may do comes from the static RolePermissions table in enums.go.
type User struct {
	ID        string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()" validate:"required,uuid"`
	Username  string     `json:"username" gorm:"uniqueIndex;not null" validate:"required"`
	Email     string     `json:"email,omitempty" gorm:"uniqueIndex" validate:"omitempty,email"`
	Password  string     `json:"-" gorm:"not null" validate:"required,min=8"`
	FullName  string     `json:"full_name,omitempty"`
	Role      Role       `json:"role" gorm:"not null;default:'viewer';type:varchar(20)"`
	IsActive  bool       `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" gorm:"index"`
}
