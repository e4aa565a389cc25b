// Package journal holds the investment journal domain: entries, their sell
// ledger and review history, and the mapping between the snake_case wire form
// and the camelCase display form.
package journal

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Strategy labels offered by the journal form. StrategyOther accepts free text.
const (
	StrategyValue      = "价值投资"
	StrategyGrowth     = "成长投资"
	StrategyIndex      = "指数投资"
	StrategyDayTrading = "日内交易"
	StrategySwing      = "摇摆交易"
	StrategyTrend      = "趋势跟踪"
	StrategyBuyHold    = "买入持有"
	StrategyOther      = "其他"
)

func Strategies() []string {
	return []string{
		StrategyValue,
		StrategyGrowth,
		StrategyIndex,
		StrategyDayTrading,
		StrategySwing,
		StrategyTrend,
		StrategyBuyHold,
		StrategyOther,
	}
}

// IsKnownStrategy reports whether s is one of the fixed labels. Anything else
// is stored as-is and treated as an "other" strategy.
func IsKnownStrategy(s string) bool {
	s = strings.TrimSpace(s)
	for _, v := range Strategies() {
		if v == s {
			return true
		}
	}
	return false
}

// Review sources.
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
	SourceManual   = "manual"
	SourceLegacy   = "legacy"
)

// Entry is one recorded investment decision.
type Entry struct {
	ID uint64

	Date             string
	Asset            string
	Amount           string
	Price            string
	Strategy         string
	Reasons          string
	Risks            string
	ExpectedReturn   string
	ExitPlan         string
	MarketConditions string
	EmotionalState   string

	Archived bool
	ExitDate string

	SellRecords   SellLedger
	ReviewHistory []ReviewLogEntry

	// LegacyReview is the single ai_review column that predates the history.
	LegacyReview string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Warnings collects read-time data problems, e.g. an undecodable sell ledger.
	Warnings []string

	ledgerErr error
}

// LedgerErr reports whether the stored sell records failed to decode. It is
// only set on entries built by FromRecord.
func (e Entry) LedgerErr() error {
	if e.ledgerErr == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrLedgerUnreadable, e.ledgerErr)
}

// SellRecord is one partial or full exit.
type SellRecord struct {
	Date   string `json:"date"`
	Price  string `json:"price"`
	Amount string `json:"amount"`
	Reason string `json:"reason"`
}

// ReviewLogEntry is one retrospective note. Entries are never mutated after
// they are appended.
type ReviewLogEntry struct {
	ID        uint64
	JournalID uint64
	Content   string
	Source    string
	CreatedAt time.Time
}

// History returns the review history for reading. A journal that only carries
// the legacy single review is reported as a one-entry history.
func (e Entry) History() []ReviewLogEntry {
	if len(e.ReviewHistory) > 0 {
		return e.ReviewHistory
	}
	if strings.TrimSpace(e.LegacyReview) == "" {
		return []ReviewLogEntry{}
	}
	return []ReviewLogEntry{{
		JournalID: e.ID,
		Content:   e.LegacyReview,
		Source:    SourceLegacy,
		CreatedAt: e.CreatedAt,
	}}
}

// LatestReview is the content shown under the legacy aiReview name.
func (e Entry) LatestReview() string {
	h := e.History()
	if len(h) == 0 {
		return ""
	}
	return h[len(h)-1].Content
}

// Archive closes the position. An empty exitDate means today.
func (e *Entry) Archive(exitDate string, now time.Time) error {
	if e.Archived {
		return ErrAlreadyArchived
	}
	exitDate = strings.TrimSpace(exitDate)
	if exitDate == "" {
		exitDate = now.UTC().Format(DateLayout)
	}
	e.Archived = true
	e.ExitDate = exitDate
	return nil
}

func (e *Entry) Unarchive() error {
	if !e.Archived {
		return ErrNotArchived
	}
	e.Archived = false
	e.ExitDate = ""
	return nil
}

// Validate checks the fields a stored journal must carry.
func (e Entry) Validate() error {
	if strings.TrimSpace(e.Asset) == "" {
		return Required("asset")
	}
	if strings.TrimSpace(e.Date) == "" {
		return Required("date")
	}
	return nil
}

func (e *Entry) text(f Field) *string {
	switch f {
	case FieldDate:
		return &e.Date
	case FieldAsset:
		return &e.Asset
	case FieldAmount:
		return &e.Amount
	case FieldPrice:
		return &e.Price
	case FieldStrategy:
		return &e.Strategy
	case FieldReasons:
		return &e.Reasons
	case FieldRisks:
		return &e.Risks
	case FieldExpectedReturn:
		return &e.ExpectedReturn
	case FieldExitPlan:
		return &e.ExitPlan
	case FieldMarketConditions:
		return &e.MarketConditions
	case FieldEmotionalState:
		return &e.EmotionalState
	default:
		return nil
	}
}
