package repository

import (
	"context"
	"time"

	"investjournal/internal/models"
)

// JournalRepository is the persistent store of journals and their review logs.
// Lookups return (nil, nil) when the row does not exist.
type JournalRepository interface {
	InsertJournal(ctx context.Context, item *models.Journal) error
	GetJournalByID(ctx context.Context, id uint64) (*models.Journal, error)
	ListJournals(ctx context.Context, params ListJournalsParams) ([]models.Journal, error)
	CountJournals(ctx context.Context, params ListJournalsParams) (int64, error)

	// UpdateJournalLocked runs fn against the current row while holding its
	// row lock and saves the result in the same transaction. fn errors abort
	// the update and are returned unchanged.
	UpdateJournalLocked(ctx context.Context, id uint64, fn func(item *models.Journal) error) (*models.Journal, error)

	// DeleteJournal removes the journal and its review logs. It reports
	// whether a row was removed.
	DeleteJournal(ctx context.Context, id uint64) (bool, error)

	// AppendReviewLog inserts item under the journal row lock, moving
	// item.CreatedAt forward if needed so it sorts after every earlier log.
	// It reports false when the journal does not exist.
	AppendReviewLog(ctx context.Context, item *models.ReviewLog) (bool, error)
	ListReviewLogs(ctx context.Context, journalID uint64) ([]models.ReviewLog, error)
	ListReviewLogsByJournalIDs(ctx context.Context, journalIDs []uint64) (map[uint64][]models.ReviewLog, error)
}

type SettingsRepository interface {
	UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error
	GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error)
	ListSystemSettings(ctx context.Context, params ListSystemSettingsParams) ([]models.SystemSetting, error)
}

type Repository interface {
	JournalRepository
	SettingsRepository

	Ping(ctx context.Context) error
}

// ListJournalsParams filters journal listings. There is no pagination: the
// whole matching set is returned.
type ListJournalsParams struct {
	Archived *bool
	Strategy *string
	Asset    *string
	Since    *time.Time
	OrderBy  string
	Asc      *bool
}

type ListSystemSettingsParams struct {
	Prefix  *string
	OrderBy string
	Asc     *bool
}

// ReviewLogStep is the smallest gap kept between two review logs of the same
// journal; timestamptz stores microseconds.
const ReviewLogStep = time.Microsecond

// NextReviewLogTime returns want, or the earliest instant after last when want
// would not sort strictly after it.
func NextReviewLogTime(last, want time.Time) time.Time {
	want = want.UTC().Truncate(ReviewLogStep)
	if last.IsZero() {
		return want
	}
	last = last.UTC().Truncate(ReviewLogStep)
	if want.After(last) {
		return want
	}
	return last.Add(ReviewLogStep)
}
