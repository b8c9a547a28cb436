package models

import (
	"time"
)

type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportReviewed  ReportStatus = "reviewed"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

func ParseReportStatus(s string) (ReportStatus, bool) {
	switch ReportStatus(s) {
	case ReportPending, ReportReviewed, ReportResolved, ReportDismissed:
		return ReportStatus(s), true
	}
	return "", false
}

// Report points at a user, optionally via one content item or comment whose
// author becomes the reported party.
type Report struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	ReporterID uint         `gorm:"not null;index" json:"reporter_id"`
	Reporter   User         `gorm:"foreignKey:ReporterID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"reporter"`
	ReportedID uint         `gorm:"not null;index" json:"reported_id"`
	Reported   User         `gorm:"foreignKey:ReportedID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"reported"`
	Kind       ContentKind  `gorm:"size:10" json:"kind,omitempty"` // empty when the report targets a user or comment
	ItemID     uint         `gorm:"index" json:"-"`
	ItemPid    string       `gorm:"size:8" json:"item_id,omitempty"`
	CommentID  *uint        `gorm:"index" json:"-"`
	CommentCid string       `gorm:"size:8" json:"comment_id,omitempty"`
	Reason     string       `gorm:"size:500;not null" json:"reason"`
	Status     ReportStatus `gorm:"size:10;default:'pending';not null;index" json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}
