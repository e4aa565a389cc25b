package journal

import (
	"errors"
	"testing"
	"time"

	"gorm.io/datatypes"

	"investjournal/internal/models"
)

func TestArchiveLifecycle(t *testing.T) {
	now := time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC)
	e := Entry{Asset: "AAPL"}
	if err := e.Archive("", now); err != nil {
		t.Fatalf("err=%v", err)
	}
	if !e.Archived || e.ExitDate != "2024-06-01" {
		t.Fatalf("archived=%v exitDate=%q", e.Archived, e.ExitDate)
	}
	if err := e.Archive("2024-07-01", now); !errors.Is(err, ErrAlreadyArchived) {
		t.Fatalf("err=%v", err)
	}
	if e.ExitDate != "2024-06-01" {
		t.Fatalf("exitDate=%q changed", e.ExitDate)
	}
	if err := e.Unarchive(); err != nil || e.Archived || e.ExitDate != "" {
		t.Fatalf("unarchive err=%v entry=%+v", err, e)
	}
	if err := e.Unarchive(); !errors.Is(err, ErrNotArchived) {
		t.Fatalf("err=%v", err)
	}
}

func TestHistoryLegacyFallback(t *testing.T) {
	if h := (Entry{}).History(); h == nil || len(h) != 0 {
		t.Fatalf("history=%v want empty", h)
	}
	h := Entry{ID: 2, LegacyReview: "old"}.History()
	if len(h) != 1 || h[0].Source != SourceLegacy || h[0].JournalID != 2 {
		t.Fatalf("history=%+v", h)
	}
	e := Entry{LegacyReview: "old", ReviewHistory: []ReviewLogEntry{{Content: "new"}}}
	if e.LatestReview() != "new" {
		t.Fatalf("latest=%q", e.LatestReview())
	}
}

func TestRecordConversion(t *testing.T) {
	row := models.Journal{
		ID:             9,
		Asset:          "AAPL",
		ExpectedReturn: "20%",
		ExitDate:       "2024-01-01",
		SellRecords:    datatypes.JSON(`[{"date":"2024-01-01","reason":"x"}]`),
	}
	e := FromRecord(row, []models.ReviewLog{{ID: 1, JournalID: 9, ReviewContent: "r"}})
	if e.ExitDate != "" {
		t.Fatalf("exit date leaked from an active row: %q", e.ExitDate)
	}
	if len(e.SellRecords) != 1 || len(e.ReviewHistory) != 1 || e.ReviewHistory[0].Source != SourceAI {
		t.Fatalf("entry=%+v", e)
	}
	back := ToRecord(e)
	if back.ExpectedReturn != "20%" || string(back.SellRecords) != `[{"date":"2024-01-01","price":"","amount":"","reason":"x"}]` {
		t.Fatalf("row=%+v sell=%s", back, back.SellRecords)
	}
}

func TestStorageErrorWrapsOnce(t *testing.T) {
	base := errors.New("conn refused")
	err := Storage("list", Storage("inner", base))
	if !IsStorage(err) || !errors.Is(err, base) {
		t.Fatalf("err=%v", err)
	}
	var se *StorageError
	errors.As(err, &se)
	if se.Op != "inner" {
		t.Fatalf("op=%q want inner", se.Op)
	}
	if Storage("x", nil) != nil {
		t.Fatalf("nil error wrapped")
	}
}

func TestIsKnownStrategy(t *testing.T) {
	for _, s := range Strategies() {
		if !IsKnownStrategy(" " + s + " ") {
			t.Fatalf("%q should be known", s)
		}
	}
	if IsKnownStrategy("momentum scalping") {
		t.Fatalf("free text reported as a fixed label")
	}
}
