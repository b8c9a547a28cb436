package models

import (
	"time"
)

type BugSeverity string

const (
	SeverityLow      BugSeverity = "low"
	SeverityMedium   BugSeverity = "medium"
	SeverityHigh     BugSeverity = "high"
	SeverityCritical BugSeverity = "critical"
)

type BugStatus string

const (
	BugOpen     BugStatus = "open"
	BugResolved BugStatus = "resolved"
	BugClosed   BugStatus = "closed"
)

// Bug is always public while it lives; instead of a visibility flag it
// carries an expiry, after which reads must treat it as gone.
type Bug struct {
	ID          uint        `gorm:"primaryKey" json:"-"`
	Bid         string      `gorm:"uniqueIndex;size:8;not null" json:"id"`
	UserID      uint        `gorm:"not null;index" json:"user_id"`
	User        User        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Title       string      `gorm:"not null" json:"title"`
	Description string      `gorm:"type:text;not null" json:"description"`
	Severity    BugSeverity `gorm:"size:10;default:'medium';not null" json:"severity"`
	Status      BugStatus   `gorm:"size:10;default:'open';not null" json:"status"`
	Tags        string      `gorm:"size:200" json:"tags"`
	ExpiresAt   time.Time   `gorm:"not null;index" json:"expires_at"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (b *Bug) Expired(now time.Time) bool { return now.After(b.ExpiresAt) }
