// Package memory is an in-process repository used by db.driver=memory and by
// tests. It honours the same locking and ordering contract as the gorm store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/datatypes"

	"investjournal/internal/models"
	"investjournal/internal/repository"
)

type Store struct {
	mu sync.RWMutex

	nextJournalID uint64
	nextLogID     uint64
	nextSettingID uint64

	journals map[uint64]*models.Journal
	logs     map[uint64][]models.ReviewLog
	settings map[string]*models.SystemSetting

	// Now stamps created/updated times; tests may pin it.
	Now func() time.Time
}

func New() *Store {
	return &Store{
		journals: make(map[uint64]*models.Journal),
		logs:     make(map[uint64][]models.ReviewLog),
		settings: make(map[string]*models.SystemSetting),
	}
}

var _ repository.Repository = (*Store)(nil)

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) InsertJournal(ctx context.Context, item *models.Journal) error {
	if s == nil || item == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextJournalID++
	now := s.now()
	item.ID = s.nextJournalID
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	stored := cloneJournal(*item)
	s.journals[item.ID] = &stored
	return nil
}

func (s *Store) GetJournalByID(ctx context.Context, id uint64) (*models.Journal, error) {
	if s == nil || id == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.journals[id]
	if !ok {
		return nil, nil
	}
	out := cloneJournal(*item)
	return &out, nil
}

func (s *Store) ListJournals(ctx context.Context, params repository.ListJournalsParams) ([]models.Journal, error) {
	if s == nil {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	items := make([]models.Journal, 0, len(s.journals))
	for _, item := range s.journals {
		if matchJournal(*item, params) {
			items = append(items, cloneJournal(*item))
		}
	}
	s.mu.RUnlock()

	asc := params.Asc != nil && *params.Asc
	key := strings.TrimSpace(params.OrderBy)
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		var cmp int
		switch key {
		case "date":
			cmp = strings.Compare(a.Date, b.Date)
		case "asset":
			cmp = strings.Compare(a.Asset, b.Asset)
		case "strategy":
			cmp = strings.Compare(a.Strategy, b.Strategy)
		case "exit_date":
			cmp = strings.Compare(a.ExitDate, b.ExitDate)
		case "updated_at":
			cmp = a.UpdatedAt.Compare(b.UpdatedAt)
		case "id":
			cmp = 0
		default:
			cmp = a.CreatedAt.Compare(b.CreatedAt)
		}
		if cmp != 0 {
			if asc {
				return cmp < 0
			}
			return cmp > 0
		}
		if key == "id" && asc {
			return a.ID < b.ID
		}
		return a.ID > b.ID
	})
	return items, nil
}

func (s *Store) CountJournals(ctx context.Context, params repository.ListJournalsParams) (int64, error) {
	if s == nil {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, item := range s.journals {
		if matchJournal(*item, params) {
			total++
		}
	}
	return total, nil
}

// UpdateJournalLocked holds the store-wide write lock for the whole callback,
// which is stricter than the per-row lock of the gorm store.
func (s *Store) UpdateJournalLocked(ctx context.Context, id uint64, fn func(item *models.Journal) error) (*models.Journal, error) {
	if s == nil || id == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.journals[id]
	if !ok {
		return nil, nil
	}
	working := cloneJournal(*current)
	if fn != nil {
		if err := fn(&working); err != nil {
			return nil, err
		}
	}
	working.ID = id
	working.CreatedAt = current.CreatedAt
	working.UpdatedAt = s.now()
	working.ReviewLogs = nil
	s.journals[id] = &working

	out := cloneJournal(working)
	return &out, nil
}

func (s *Store) DeleteJournal(ctx context.Context, id uint64) (bool, error) {
	if s == nil || id == 0 {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.journals[id]; !ok {
		return false, nil
	}
	delete(s.journals, id)
	delete(s.logs, id)
	return true, nil
}

func (s *Store) AppendReviewLog(ctx context.Context, item *models.ReviewLog) (bool, error) {
	if s == nil || item == nil || item.JournalID == 0 {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.journals[item.JournalID]; !ok {
		return false, nil
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = s.now()
	}
	var last time.Time
	if existing := s.logs[item.JournalID]; len(existing) > 0 {
		last = existing[len(existing)-1].CreatedAt
	}
	s.nextLogID++
	item.ID = s.nextLogID
	item.CreatedAt = repository.NextReviewLogTime(last, item.CreatedAt)
	s.logs[item.JournalID] = append(s.logs[item.JournalID], *item)
	return true, nil
}

func (s *Store) ListReviewLogs(ctx context.Context, journalID uint64) ([]models.ReviewLog, error) {
	if s == nil || journalID == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.logs[journalID]
	out := make([]models.ReviewLog, len(items))
	copy(out, items)
	return out, nil
}

func (s *Store) ListReviewLogsByJournalIDs(ctx context.Context, journalIDs []uint64) (map[uint64][]models.ReviewLog, error) {
	out := map[uint64][]models.ReviewLog{}
	if s == nil {
		return out, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range journalIDs {
		items := s.logs[id]
		if len(items) == 0 {
			continue
		}
		cp := make([]models.ReviewLog, len(items))
		copy(cp, items)
		out[id] = cp
	}
	return out, nil
}

func (s *Store) UpsertSystemSetting(ctx context.Context, item *models.SystemSetting) error {
	if s == nil || item == nil {
		return nil
	}
	item.Key = strings.TrimSpace(item.Key)
	if item.Key == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if existing, ok := s.settings[item.Key]; ok {
		existing.Value = cloneJSON(item.Value)
		existing.Description = item.Description
		existing.UpdatedAt = now
		*item = *existing
		return nil
	}
	s.nextSettingID++
	item.ID = s.nextSettingID
	item.CreatedAt = now
	item.UpdatedAt = now
	stored := *item
	stored.Value = cloneJSON(item.Value)
	s.settings[item.Key] = &stored
	return nil
}

func (s *Store) GetSystemSettingByKey(ctx context.Context, key string) (*models.SystemSetting, error) {
	if s == nil {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.settings[strings.TrimSpace(key)]
	if !ok {
		return nil, nil
	}
	out := *item
	out.Value = cloneJSON(item.Value)
	return &out, nil
}

func (s *Store) ListSystemSettings(ctx context.Context, params repository.ListSystemSettingsParams) ([]models.SystemSetting, error) {
	if s == nil {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := ""
	if params.Prefix != nil {
		prefix = strings.TrimSpace(*params.Prefix)
	}
	s.mu.RLock()
	items := make([]models.SystemSetting, 0, len(s.settings))
	for key, item := range s.settings {
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			continue
		}
		out := *item
		out.Value = cloneJSON(item.Value)
		items = append(items, out)
	}
	s.mu.RUnlock()
	desc := params.Asc != nil && !*params.Asc
	sort.Slice(items, func(i, j int) bool {
		if desc {
			return items[i].Key > items[j].Key
		}
		return items[i].Key < items[j].Key
	})
	return items, nil
}

func matchJournal(item models.Journal, params repository.ListJournalsParams) bool {
	if params.Archived != nil && item.Archived != *params.Archived {
		return false
	}
	if params.Strategy != nil && strings.TrimSpace(*params.Strategy) != "" && item.Strategy != strings.TrimSpace(*params.Strategy) {
		return false
	}
	if params.Asset != nil && strings.TrimSpace(*params.Asset) != "" && item.Asset != strings.TrimSpace(*params.Asset) {
		return false
	}
	if params.Since != nil && !params.Since.IsZero() && item.CreatedAt.Before(*params.Since) {
		return false
	}
	return true
}

func cloneJournal(item models.Journal) models.Journal {
	item.SellRecords = cloneJSON(item.SellRecords)
	item.ReviewLogs = nil
	return item
}

func cloneJSON(v datatypes.JSON) datatypes.JSON {
	if v == nil {
		return nil
	}
	out := make(datatypes.JSON, len(v))
	copy(out, v)
	return out
}
