package service

import (
	"context"

	"go.uber.org/zap"

	"investjournal/internal/journal"
)

// SellLedgerService edits the sell records of one journal. Each call is a
// read-modify-write under the journal row lock, so concurrent appends never
// drop one another. Edits are refused with journal.ErrLedgerUnreadable when the
// stored ledger cannot be decoded; a full replace is the way to repair it.
type SellLedgerService struct {
	Journals *JournalService
	Logger   *zap.Logger
}

func (s *SellLedgerService) Append(ctx context.Context, id uint64, r journal.SellRecord) (journal.Entry, error) {
	out, err := s.Journals.Mutate(ctx, id, "append sell record", true, func(e *journal.Entry) error {
		if err := e.LedgerErr(); err != nil {
			return err
		}
		return e.SellRecords.Append(r)
	})
	if err != nil {
		return journal.Entry{}, err
	}
	s.log("sell record appended", id, len(out.SellRecords)-1)
	return out, nil
}

func (s *SellLedgerService) Update(ctx context.Context, id uint64, index int, r journal.SellRecord) (journal.Entry, error) {
	out, err := s.Journals.Mutate(ctx, id, "update sell record", true, func(e *journal.Entry) error {
		if err := e.LedgerErr(); err != nil {
			return err
		}
		return e.SellRecords.Update(index, r)
	})
	if err != nil {
		return journal.Entry{}, err
	}
	s.log("sell record updated", id, index)
	return out, nil
}

func (s *SellLedgerService) Remove(ctx context.Context, id uint64, index int) (journal.Entry, error) {
	out, err := s.Journals.Mutate(ctx, id, "remove sell record", true, func(e *journal.Entry) error {
		if err := e.LedgerErr(); err != nil {
			return err
		}
		return e.SellRecords.RemoveAt(index)
	})
	if err != nil {
		return journal.Entry{}, err
	}
	s.log("sell record removed", id, index)
	return out, nil
}

func (s *SellLedgerService) log(msg string, id uint64, index int) {
	if s == nil || s.Logger == nil {
		return
	}
	s.Logger.Info(msg, zap.Uint64("journal_id", id), zap.Int("index", index))
}
