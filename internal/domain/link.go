package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultIconBgColor is the background color applied to links that
// never picked one.
const DefaultIconBgColor = "#F5FF7B"

// Link is a single entry on a profile page. SectionID is nil for links
// living in the unsectioned bucket; SortOrder is a dense zero-based
// rank that is only meaningful relative to other links sharing the
// same SectionID.
type Link struct {
	ID          string    `gorm:"primaryKey;column:id;type:uuid" json:"id"`
	ProfileID   string    `gorm:"column:profile_id;type:uuid;not null;index" json:"profile_id"`
	SectionID   *string   `gorm:"column:section_id;type:uuid;index" json:"section_id,omitempty"`
	Title       string    `gorm:"column:title;not null" json:"title"`
	URL         string    `gorm:"column:url;not null" json:"url"`
	Description *string   `gorm:"column:description" json:"description,omitempty"`
	IconKey     *string   `gorm:"column:icon_key" json:"icon_key,omitempty"`
	IconBgColor string    `gorm:"column:icon_bg_color;not null;default:#F5FF7B" json:"icon_bg_color"`
	IsActive    bool      `gorm:"column:is_active;default:true" json:"is_active"`
	SortOrder   int       `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Profile *Profile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
	Section *Section `gorm:"foreignKey:SectionID" json:"section,omitempty"`
}

// TableName returns the GORM table name.
func (Link) TableName() string {
	return "links"
}

// BeforeCreate assigns a UUID primary key when none was set.
func (l *Link) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
