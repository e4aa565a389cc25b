package gormrepository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"investjournal/internal/models"
	"investjournal/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("db not configured")
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// --- journals ---------------------------------------------------------------

func (s *Store) InsertJournal(ctx context.Context, item *models.Journal) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	item.ID = 0
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

func (s *Store) GetJournalByID(ctx context.Context, id uint64) (*models.Journal, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var item models.Journal
	err := s.db.WithContext(ctx).Model(&models.Journal{}).Where("id = ?", id).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListJournals(ctx context.Context, params repository.ListJournalsParams) ([]models.Journal, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyJournalFilters(s.db.WithContext(ctx).Model(&models.Journal{}), params)
	query = applyOrder(query, journalOrderColumn(params.OrderBy), params.Asc, "created_at")
	var items []models.Journal
	if err := query.Order("id desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountJournals(ctx context.Context, params repository.ListJournalsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := applyJournalFilters(s.db.WithContext(ctx).Model(&models.Journal{}), params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) UpdateJournalLocked(ctx context.Context, id uint64, fn func(item *models.Journal) error) (*models.Journal, error) {
	if s == nil || s.db == nil || id == 0 {
		return nil, nil
	}
	var out *models.Journal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := lockJournal(tx, id)
		if err != nil || item == nil {
			return err
		}
		if fn != nil {
			if err := fn(item); err != nil {
				return err
			}
		}
		item.ID = id
		if err := tx.Omit(clause.Associations).Save(item).Error; err != nil {
			return err
		}
		out = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) DeleteJournal(ctx context.Context, id uint64) (bool, error) {
	if s == nil || s.db == nil || id == 0 {
		return false, nil
	}
	deleted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("journal_id = ?", id).Delete(&models.ReviewLog{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Journal{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// --- review logs ------------------------------------------------------------

func (s *Store) AppendReviewLog(ctx context.Context, item *models.ReviewLog) (bool, error) {
	if s == nil || s.db == nil || item == nil || item.JournalID == 0 {
		return false, nil
	}
	found := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		journal, err := lockJournal(tx, item.JournalID)
		if err != nil || journal == nil {
			return err
		}
		found = true

		var last models.ReviewLog
		err = tx.Model(&models.ReviewLog{}).
			Where("journal_id = ?", item.JournalID).
			Order("created_at desc").
			Order("id desc").
			First(&last).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return err
		}
		item.ID = 0
		item.CreatedAt = repository.NextReviewLogTime(last.CreatedAt, item.CreatedAt)
		return tx.Create(item).Error
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (s *Store) ListReviewLogs(ctx context.Context, journalID uint64) ([]models.ReviewLog, error) {
	if s == nil || s.db == nil || journalID == 0 {
		return nil, nil
	}
	var items []models.ReviewLog
	if err := s.db.WithContext(ctx).
		Model(&models.ReviewLog{}).
		Where("journal_id = ?", journalID).
		Order("created_at asc").
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListReviewLogsByJournalIDs(ctx context.Context, journalIDs []uint64) (map[uint64][]models.ReviewLog, error) {
	out := map[uint64][]models.ReviewLog{}
	if s == nil || s.db == nil || len(journalIDs) == 0 {
		return out, nil
	}
	var items []models.ReviewLog
	if err := s.db.WithContext(ctx).
		Model(&models.ReviewLog{}).
		Where("journal_id IN ?", journalIDs).
		Order("journal_id asc").
		Order("created_at asc").
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	for _, item := range items {
		out[item.JournalID] = append(out[item.JournalID], item)
	}
	return out, nil
}

// --- system settings --------------------------------------------------------

func (s *Store) UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	item.Key = strings.TrimSpace(item.Key)
	if item.Key == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"value",
			"description",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	var item models.SystemSetting
	err := s.db.WithContext(ctx).Model(&models.SystemSetting{}).Where("key = ?", key).First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListSystemSettings(ctx context.Context, params repository.ListSystemSettingsParams) ([]models.SystemSetting, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.SystemSetting{})
	if params.Prefix != nil && strings.TrimSpace(*params.Prefix) != "" {
		query = query.Where("key LIKE ?", strings.TrimSpace(*params.Prefix)+"%")
	}
	query = applyOrder(query, params.OrderBy, params.Asc, "key")
	var items []models.SystemSetting
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- helpers ----------------------------------------------------------------

func lockJournal(tx *gorm.DB, id uint64) (*models.Journal, error) {
	var item models.Journal
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Model(&models.Journal{}).
		Where("id = ?", id).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func applyJournalFilters(query *gorm.DB, params repository.ListJournalsParams) *gorm.DB {
	if params.Archived != nil {
		query = query.Where("archived = ?", *params.Archived)
	}
	if params.Strategy != nil && strings.TrimSpace(*params.Strategy) != "" {
		query = query.Where("strategy = ?", strings.TrimSpace(*params.Strategy))
	}
	if params.Asset != nil && strings.TrimSpace(*params.Asset) != "" {
		query = query.Where("asset = ?", strings.TrimSpace(*params.Asset))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("created_at >= ?", *params.Since)
	}
	return query
}

// journalOrderColumn whitelists sortable columns; anything else falls back to created_at.
func journalOrderColumn(orderBy string) string {
	switch strings.TrimSpace(orderBy) {
	case "date", "asset", "strategy", "created_at", "updated_at", "exit_date", "id":
		return strings.TrimSpace(orderBy)
	default:
		return ""
	}
}

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	if column == "" {
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}
