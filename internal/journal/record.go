package journal

import (
	"strings"

	"gorm.io/datatypes"

	"investjournal/internal/models"
)

// FromRecord converts a stored row and its review logs into an Entry. Data
// problems such as an undecodable sell ledger are reported through
// Entry.Warnings; the read itself never fails.
func FromRecord(row models.Journal, logs []models.ReviewLog) Entry {
	e := Entry{
		ID:               row.ID,
		Date:             row.Date,
		Asset:            row.Asset,
		Amount:           row.Amount,
		Price:            row.Price,
		Strategy:         row.Strategy,
		Reasons:          row.Reasons,
		Risks:            row.Risks,
		ExpectedReturn:   row.ExpectedReturn,
		ExitPlan:         row.ExitPlan,
		MarketConditions: row.MarketConditions,
		EmotionalState:   row.EmotionalState,
		Archived:         row.Archived,
		LegacyReview:     row.AIReview,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
	if row.Archived {
		e.ExitDate = row.ExitDate
	}

	ledger, err := DecodeSellRecords([]byte(row.SellRecords))
	if err != nil {
		e.Warnings = append(e.Warnings, "sell_records: "+err.Error())
		e.ledgerErr = err
	}
	e.SellRecords = ledger

	e.ReviewHistory = make([]ReviewLogEntry, 0, len(logs))
	for _, l := range logs {
		e.ReviewHistory = append(e.ReviewHistory, ReviewFromRecord(l))
	}
	return e
}

// ToRecord is the persisted form of e. ReviewHistory is not part of the row;
// review logs are written separately and only ever appended.
func ToRecord(e Entry) models.Journal {
	row := models.Journal{
		ID:               e.ID,
		Date:             strings.TrimSpace(e.Date),
		Asset:            strings.TrimSpace(e.Asset),
		Amount:           e.Amount,
		Price:            e.Price,
		Strategy:         e.Strategy,
		Reasons:          e.Reasons,
		Risks:            e.Risks,
		ExpectedReturn:   e.ExpectedReturn,
		ExitPlan:         e.ExitPlan,
		MarketConditions: e.MarketConditions,
		EmotionalState:   e.EmotionalState,
		AIReview:         e.LegacyReview,
		Archived:         e.Archived,
		SellRecords:      datatypes.JSON(EncodeSellRecords(e.SellRecords)),
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
	if e.Archived {
		row.ExitDate = e.ExitDate
	}
	return row
}

func ReviewFromRecord(l models.ReviewLog) ReviewLogEntry {
	source := l.Source
	if source == "" {
		source = SourceAI
	}
	return ReviewLogEntry{
		ID:        l.ID,
		JournalID: l.JournalID,
		Content:   l.ReviewContent,
		Source:    source,
		CreatedAt: l.CreatedAt,
	}
}

func ReviewToRecord(r ReviewLogEntry) models.ReviewLog {
	return models.ReviewLog{
		ID:            r.ID,
		JournalID:     r.JournalID,
		ReviewContent: r.Content,
		Source:        r.Source,
		CreatedAt:     r.CreatedAt,
	}
}
