package models

import (
	"time"
)

// Contact represents a person met during an encounter. SMSOptOut is a
// one-way latch: set when the messaging provider reports the number as
// opted out, never reset by this system.
type Contact struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EncounterID uint      `gorm:"index" json:"encounter_id"`
	Name        string    `gorm:"size:255" json:"name"`
	Phone       string    `gorm:"size:30" json:"phone"`
	Email       string    `gorm:"size:255" json:"email"`
	Instagram   string    `gorm:"size:30" json:"instagram"`
	SMSOptOut   bool      `gorm:"not null;default:false" json:"sms_opt_out"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Contact) TableName() string {
	return "contacts"
}
