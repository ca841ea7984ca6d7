package domain

import "time"

// User is a registered account. A user owns at most one profile.
type User struct {
	ID            int64      `gorm:"primaryKey;column:id" json:"id"`
	Email         string     `gorm:"column:email;uniqueIndex;not null" json:"email"`
	PasswordHash  string     `gorm:"column:password_hash;not null" json:"-"`
	EmailVerified bool       `gorm:"column:email_verified;default:false" json:"email_verified"`
	LastLoginAt   *time.Time `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	IsActive      bool       `gorm:"column:is_active;default:true" json:"is_active"`

	// Relationships
	Profile *Profile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

// TableName returns the GORM table name.
func (User) TableName() string {
	return "users"
}
