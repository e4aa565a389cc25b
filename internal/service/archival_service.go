package service

import (
	"context"

	"go.uber.org/zap"

	"investjournal/internal/audit"
	"investjournal/internal/journal"
)

type ArchivalService struct {
	Journals *JournalService
	Audit    audit.Sink
	Logger   *zap.Logger
}

// Archive closes a journal. An empty exitDate means today. Archiving twice
// fails with journal.ErrAlreadyArchived and keeps the first exit date.
func (s *ArchivalService) Archive(ctx context.Context, id uint64, exitDate string) (journal.Entry, error) {
	now := s.Journals.now()
	out, err := s.Journals.Mutate(ctx, id, "archive", false, func(e *journal.Entry) error {
		return e.Archive(exitDate, now)
	})
	if err != nil {
		return journal.Entry{}, err
	}
	s.record(ctx, "journal_archived", out)
	return out, nil
}

// Unarchive reopens a journal archived by mistake and clears its exit date.
func (s *ArchivalService) Unarchive(ctx context.Context, id uint64) (journal.Entry, error) {
	out, err := s.Journals.Mutate(ctx, id, "unarchive", false, func(e *journal.Entry) error {
		return e.Unarchive()
	})
	if err != nil {
		return journal.Entry{}, err
	}
	s.record(ctx, "journal_unarchived", out)
	return out, nil
}

func (s *ArchivalService) record(ctx context.Context, action string, e journal.Entry) {
	if s == nil {
		return
	}
	if s.Logger != nil {
		s.Logger.Info(action, zap.Uint64("journal_id", e.ID), zap.String("exit_date", e.ExitDate))
	}
	if s.Audit != nil {
		s.Audit.Record(ctx, action, "info", map[string]any{
			"journal_id": e.ID,
			"asset":      e.Asset,
			"exit_date":  e.ExitDate,
		})
	}
}
