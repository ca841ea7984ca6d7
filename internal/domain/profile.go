package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultTheme is applied to profiles that never picked one.
const DefaultTheme = "default"

// Profile is the public page of a user: a unique username plus the
// presentation fields rendered above the link list.
type Profile struct {
	ID          string    `gorm:"primaryKey;column:id;type:uuid" json:"id"`
	UserID      int64     `gorm:"column:user_id;uniqueIndex;not null" json:"user_id"`
	Username    string    `gorm:"column:username;uniqueIndex;not null" json:"username"`
	DisplayName *string   `gorm:"column:display_name" json:"display_name,omitempty"`
	Bio         *string   `gorm:"column:bio" json:"bio,omitempty"`
	AvatarURL   *string   `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	Theme       string    `gorm:"column:theme;default:default" json:"theme"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Links    []Link    `gorm:"foreignKey:ProfileID" json:"links,omitempty"`
	Sections []Section `gorm:"foreignKey:ProfileID" json:"sections,omitempty"`
}

// TableName returns the GORM table name.
func (Profile) TableName() string {
	return "profiles"
}

// BeforeCreate assigns a UUID primary key when none was set.
func (p *Profile) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
