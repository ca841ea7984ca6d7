package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClickEvent records a visitor clicking a link on a public profile page.
type ClickEvent struct {
	ID         string    `gorm:"primaryKey;column:id;type:uuid" json:"id"`
	LinkID     string    `gorm:"column:link_id;type:uuid;not null;index" json:"link_id"`
	ProfileID  string    `gorm:"column:profile_id;type:uuid;not null;index" json:"profile_id"`
	Referrer   *string   `gorm:"column:referrer" json:"referrer,omitempty"`
	UserAgent  *string   `gorm:"column:user_agent;type:text" json:"user_agent,omitempty"`
	DeviceType *string   `gorm:"column:device_type;size:10" json:"device_type,omitempty"` // 'desktop', 'mobile', 'tablet', 'bot'
	Country    *string   `gorm:"column:country;size:2" json:"country,omitempty"`
	ClickedAt  time.Time `gorm:"column:clicked_at;autoCreateTime;index" json:"clicked_at"`

	// Relationships
	Link    *Link    `gorm:"foreignKey:LinkID" json:"link,omitempty"`
	Profile *Profile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
}

// TableName returns the GORM table name.
func (ClickEvent) TableName() string {
	return "click_events"
}

// BeforeCreate assigns a UUID primary key when none was set.
func (c *ClickEvent) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
