package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"investjournal/internal/cache"
	"investjournal/internal/journal"
	"investjournal/internal/models"
	"investjournal/internal/repository"
)

// JournalService owns journal CRUD. SellLedgerService, ArchivalService and
// ReviewService mutate journals through it so every write goes through the
// same row lock and list-cache invalidation.
type JournalService struct {
	Repo     repository.JournalRepository
	Cache    *cache.Mirror
	Settings *SystemSettingsService
	Logger   *zap.Logger

	Now func() time.Time
}

type ListFilter struct {
	// Archived nil lists every journal.
	Archived *bool
	Strategy string
	Asset    string
}

func (f ListFilter) cacheKey() string {
	archived := "all"
	if f.Archived != nil {
		archived = fmt.Sprintf("%t", *f.Archived)
	}
	return "archived=" + archived + "|strategy=" + strings.TrimSpace(f.Strategy) + "|asset=" + strings.TrimSpace(f.Asset)
}

func (s *JournalService) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *JournalService) logger() *zap.Logger {
	if s == nil || s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// List returns matching journals newest-created first.
func (s *JournalService) List(ctx context.Context, f ListFilter) ([]journal.Entry, error) {
	if s == nil || s.Repo == nil {
		return nil, journal.Storage("list", errors.New("journal repository not configured"))
	}
	useCache := s.cacheEnabled(ctx)
	var gen string
	if useCache {
		var cached []journal.Entry
		g, found, err := s.Cache.Load(ctx, f.cacheKey(), &cached)
		gen = g
		if err != nil {
			s.logger().Warn("journal list cache read failed", zap.Error(err))
		} else if found {
			return cached, nil
		}
	}

	params := repository.ListJournalsParams{
		Archived: f.Archived,
		OrderBy:  "created_at",
		Asc:      boolPtr(false),
	}
	if v := strings.TrimSpace(f.Strategy); v != "" {
		params.Strategy = &v
	}
	if v := strings.TrimSpace(f.Asset); v != "" {
		params.Asset = &v
	}
	rows, err := s.Repo.ListJournals(ctx, params)
	if err != nil {
		return nil, journal.Storage("list journals", err)
	}
	ids := make([]uint64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	logs, err := s.Repo.ListReviewLogsByJournalIDs(ctx, ids)
	if err != nil {
		return nil, journal.Storage("list review logs", err)
	}
	out := make([]journal.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.toEntry(row, logs[row.ID]))
	}

	if useCache {
		if err := s.Cache.Save(ctx, gen, f.cacheKey(), out); err != nil {
			s.logger().Warn("journal list cache write failed", zap.Error(err))
		}
	}
	return out, nil
}

// Create stores a new journal from a request body in either naming convention.
func (s *JournalService) Create(ctx context.Context, raw []byte) (journal.Entry, error) {
	d, err := journal.NormalizeInbound(raw)
	if err != nil {
		return journal.Entry{}, err
	}
	return s.CreateDraft(ctx, d)
}

func (s *JournalService) CreateDraft(ctx context.Context, d journal.Draft) (journal.Entry, error) {
	if s == nil || s.Repo == nil {
		return journal.Entry{}, journal.Storage("create", errors.New("journal repository not configured"))
	}
	e := d.NewEntry()
	if d.ID != nil {
		s.logger().Info("ignoring caller-supplied journal id", zap.String("id", *d.ID))
		e.Warnings = append(e.Warnings, "id: assigned by the store, ignored")
	}
	if d.Archived != nil && *d.Archived {
		e.Warnings = append(e.Warnings, "archived: new journals start active, ignored")
	}
	if strings.TrimSpace(e.Date) == "" {
		e.Date = s.now().Format(journal.DateLayout)
	}
	if err := e.Validate(); err != nil {
		return journal.Entry{}, err
	}

	now := s.now()
	e.CreatedAt = now
	e.UpdatedAt = now
	row := journal.ToRecord(e)
	if err := s.Repo.InsertJournal(ctx, &row); err != nil {
		return journal.Entry{}, journal.Storage("insert journal", err)
	}
	out := s.toEntry(row, nil)
	out.Warnings = append(e.Warnings, out.Warnings...)
	s.invalidate(ctx)

	s.logger().Info("journal created",
		zap.Uint64("journal_id", out.ID),
		zap.String("asset", out.Asset),
		zap.Bool("known_strategy", journal.IsKnownStrategy(out.Strategy)),
	)
	return out, nil
}

func (s *JournalService) Fetch(ctx context.Context, id uint64) (journal.Entry, error) {
	if s == nil || s.Repo == nil {
		return journal.Entry{}, journal.Storage("fetch", errors.New("journal repository not configured"))
	}
	row, err := s.Repo.GetJournalByID(ctx, id)
	if err != nil {
		return journal.Entry{}, journal.Storage("get journal", err)
	}
	if row == nil {
		return journal.Entry{}, journal.ErrNotFound
	}
	logs, err := s.Repo.ListReviewLogs(ctx, id)
	if err != nil {
		return journal.Entry{}, journal.Storage("list review logs", err)
	}
	return s.toEntry(*row, logs), nil
}

// Replace updates a journal in place. Fields present in raw overwrite the
// stored values; absent fields keep them.
func (s *JournalService) Replace(ctx context.Context, id uint64, raw []byte) (journal.Entry, error) {
	d, err := journal.NormalizeInbound(raw)
	if err != nil {
		return journal.Entry{}, err
	}
	return s.ReplaceDraft(ctx, id, d)
}

func (s *JournalService) ReplaceDraft(ctx context.Context, id uint64, d journal.Draft) (journal.Entry, error) {
	var warnings []string
	out, err := s.Mutate(ctx, id, "replace", d.HasSellRecords, func(e *journal.Entry) error {
		if d.HasSellRecords && e.LedgerErr() != nil {
			s.logger().Warn("replacing unreadable sell records", zap.Uint64("journal_id", id), zap.Error(e.LedgerErr()))
			warnings = append(warnings, "sell_records: unreadable stored value replaced")
		}
		warnings = append(warnings, d.Apply(e)...)
		return e.Validate()
	})
	if err != nil {
		return journal.Entry{}, err
	}
	out.Warnings = append(out.Warnings, warnings...)
	return out, nil
}

// Delete removes a journal and its review logs. Deleting a missing id is not
// an error; deleted reports whether anything was removed.
func (s *JournalService) Delete(ctx context.Context, id uint64) (bool, error) {
	if s == nil || s.Repo == nil {
		return false, journal.Storage("delete", errors.New("journal repository not configured"))
	}
	deleted, err := s.Repo.DeleteJournal(ctx, id)
	if err != nil {
		return false, journal.Storage("delete journal", err)
	}
	if deleted {
		s.invalidate(ctx)
		s.logger().Info("journal deleted", zap.Uint64("journal_id", id))
	}
	return deleted, nil
}

// Mutate applies fn to the stored journal under its row lock and saves the
// result. Errors returned by fn abort the write and are returned unchanged.
// When touchesLedger is false the stored sell_records value is written back
// byte for byte, so an undecodable ledger is never silently replaced.
func (s *JournalService) Mutate(ctx context.Context, id uint64, op string, touchesLedger bool, fn func(e *journal.Entry) error) (journal.Entry, error) {
	if s == nil || s.Repo == nil {
		return journal.Entry{}, journal.Storage(op, errors.New("journal repository not configured"))
	}
	var fnErr error
	row, err := s.Repo.UpdateJournalLocked(ctx, id, func(row *models.Journal) error {
		e := journal.FromRecord(*row, nil)
		if fnErr = fn(&e); fnErr != nil {
			return fnErr
		}
		next := journal.ToRecord(e)
		next.ID = row.ID
		next.CreatedAt = row.CreatedAt
		next.UpdatedAt = s.now()
		next.AIReview = row.AIReview
		if !touchesLedger {
			next.SellRecords = row.SellRecords
		}
		*row = next
		return nil
	})
	if fnErr != nil {
		return journal.Entry{}, fnErr
	}
	if err != nil {
		return journal.Entry{}, journal.Storage(op, err)
	}
	if row == nil {
		return journal.Entry{}, journal.ErrNotFound
	}
	s.invalidate(ctx)

	logs, err := s.Repo.ListReviewLogs(ctx, id)
	if err != nil {
		return journal.Entry{}, journal.Storage("list review logs", err)
	}
	return s.toEntry(*row, logs), nil
}

// WarmCache refreshes the cached active and archived listings.
func (s *JournalService) WarmCache(ctx context.Context) error {
	if s == nil || !s.cacheEnabled(ctx) {
		return nil
	}
	if err := s.Cache.Invalidate(ctx); err != nil {
		return err
	}
	for _, archived := range []bool{false, true} {
		if _, err := s.List(ctx, ListFilter{Archived: boolPtr(archived)}); err != nil {
			return err
		}
	}
	return nil
}

func (s *JournalService) toEntry(row models.Journal, logs []models.ReviewLog) journal.Entry {
	e := journal.FromRecord(row, logs)
	for _, w := range e.Warnings {
		s.logger().Warn("journal read with data problem", zap.Uint64("journal_id", row.ID), zap.String("warning", w))
	}
	return e
}

func (s *JournalService) cacheEnabled(ctx context.Context) bool {
	if s == nil || s.Cache == nil || s.Cache.Store == nil {
		return false
	}
	return s.Settings.IsEnabled(ctx, FeatureListCache, true)
}

func (s *JournalService) invalidate(ctx context.Context) {
	if s == nil || s.Cache == nil || s.Cache.Store == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx); err != nil {
		s.logger().Warn("journal list cache invalidation failed", zap.Error(err))
	}
}

func boolPtr(v bool) *bool {
	return &v
}
