package models

import "time"

// ReviewLog is one append-only retrospective note on a journal.
type ReviewLog struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	JournalID uint64 `gorm:"not null;index:idx_review_logs_journal_created,priority:1"`

	ReviewContent string `gorm:"column:review_content;type:text;not null"`
	Source        string `gorm:"type:varchar(20);not null;default:'ai'"`

	CreatedAt time.Time `gorm:"type:timestamptz;not null;index:idx_review_logs_journal_created,priority:2"`
}

func (ReviewLog) TableName() string {
	return "ai_review_logs"
}
