package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Section is a named group of links on a profile page. SortOrder is a
// dense zero-based rank among all sections of the profile; sections
// form a single flat level.
type Section struct {
	ID        string    `gorm:"primaryKey;column:id;type:uuid" json:"id"`
	ProfileID string    `gorm:"column:profile_id;type:uuid;not null;index" json:"profile_id"`
	Title     string    `gorm:"column:title;not null" json:"title"`
	SortOrder int       `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Profile *Profile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
	Links   []Link   `gorm:"foreignKey:SectionID" json:"links,omitempty"`
}

// TableName returns the GORM table name.
func (Section) TableName() string {
	return "sections"
}

// BeforeCreate assigns a UUID primary key when none was set.
func (s *Section) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
