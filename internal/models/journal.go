package models

import (
	"time"

	"gorm.io/datatypes"
)

// Journal is the persisted (snake_case) form of an investment journal entry.
// Descriptive columns are opaque text and never parsed.
type Journal struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"`

	Date             string `gorm:"type:varchar(20);index"`
	Asset            string `gorm:"type:varchar(100);not null;index"`
	Amount           string `gorm:"type:varchar(50)"`
	Price            string `gorm:"type:varchar(50)"`
	Strategy         string `gorm:"type:varchar(50);index"`
	Reasons          string `gorm:"type:text"`
	Risks            string `gorm:"type:text"`
	ExpectedReturn   string `gorm:"column:expected_return;type:varchar(50)"`
	ExitPlan         string `gorm:"column:exit_plan;type:varchar(100)"`
	MarketConditions string `gorm:"column:market_conditions;type:text"`
	EmotionalState   string `gorm:"column:emotional_state;type:varchar(100)"`

	// AIReview is the single-review column kept for rows written before review logs existed.
	AIReview string `gorm:"column:ai_review;type:text"`

	Archived bool   `gorm:"not null;default:false;index"`
	ExitDate string `gorm:"column:exit_date;type:varchar(20)"`

	SellRecords datatypes.JSON `gorm:"column:sell_records;type:jsonb"`

	ReviewLogs []ReviewLog `gorm:"foreignKey:JournalID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Journal) TableName() string {
	return "journals"
}
