package models

import (
	"time"
)

// Encounter statuses
const (
	EncounterStatusPending = "pending"
	EncounterStatusReady   = "ready"
)

// Encounter represents a photo encounter on the street
type Encounter struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Slug      string    `gorm:"size:120;not null;uniqueIndex" json:"slug"`
	Status    string    `gorm:"size:20;not null;default:pending" json:"status"`
	Lat       float64   `gorm:"type:decimal(9,6)" json:"lat"`
	Lng       float64   `gorm:"type:decimal(9,6)" json:"lng"`
	Address   string    `gorm:"size:500" json:"address"`
	PlaceName *string   `gorm:"size:255" json:"place_name"`
	Contacts  []Contact `gorm:"foreignKey:EncounterID" json:"contacts,omitempty"`
	Images    []Image   `gorm:"foreignKey:EncounterID" json:"images,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Encounter) TableName() string {
	return "encounters"
}

// Image represents a photo attached to an encounter
type Image struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EncounterID uint      `gorm:"index" json:"encounter_id"`
	URL         string    `gorm:"size:500;not null" json:"url"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Image) TableName() string {
	return "images"
}
