package models

import (
	"time"
)

// Report statuses
const (
	ReportStatusPending  = "pending"
	ReportStatusReviewed = "reviewed"
	ReportStatusApproved = "approved"
	ReportStatusRejected = "rejected"
)

// ReportStatuses is the set of valid review states
var ReportStatuses = map[string]bool{
	ReportStatusPending:  true,
	ReportStatusReviewed: true,
	ReportStatusApproved: true,
	ReportStatusRejected: true,
}

// Report represents a public image report. At most one report may exist
// per (image, ip) pair.
type Report struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	ReportedImageID  uint       `gorm:"not null;uniqueIndex:idx_reports_image_ip" json:"reported_image_id"`
	IP               string     `gorm:"size:45;not null;uniqueIndex:idx_reports_image_ip" json:"ip"`
	Reason           string     `gorm:"size:100;not null" json:"reason"`
	OtherReason      string     `gorm:"size:500" json:"other_reason,omitempty"`
	IsSubjectInImage bool       `gorm:"not null" json:"is_subject_in_image"`
	Status           string     `gorm:"size:20;not null;default:pending" json:"status"`
	UserAgent        string     `gorm:"size:500" json:"user_agent"`
	Browser          string     `gorm:"size:100" json:"browser"`
	OS               string     `gorm:"size:100" json:"os"`
	Device           string     `gorm:"size:50" json:"device"`
	ReviewNotes      string     `gorm:"size:1000" json:"review_notes,omitempty"`
	ReportedAt       time.Time  `gorm:"not null" json:"reported_at"`
	ReviewedAt       *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy       string     `gorm:"size:255" json:"reviewed_by,omitempty"`
}

func (Report) TableName() string {
	return "reports"
}
