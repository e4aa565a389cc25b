package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"investjournal/internal/ai"
	"investjournal/internal/audit"
	"investjournal/internal/journal"
)

const DefaultFallbackContent = "AI review generation failed, please retry later"

// ReviewService appends AI-drafted or hand-written retrospective notes to a
// journal's review history. AI failures never surface: they are recorded as a
// fallback entry so the history still shows the attempt.
type ReviewService struct {
	Journals *JournalService
	AI       ai.Completer
	Audit    audit.Sink
	Settings *SystemSettingsService
	Logger   *zap.Logger

	Timeout         time.Duration
	MaxTokens       int
	FallbackContent string
}

const promptHeader = "请根据以下投资日志内容，给出详细的复盘建议："

var promptLines = []struct {
	label string
	field journal.Field
}{
	{"资产", journal.FieldAsset},
	{"数量", journal.FieldAmount},
	{"价格", journal.FieldPrice},
	{"策略", journal.FieldStrategy},
	{"理由", journal.FieldReasons},
	{"风险", journal.FieldRisks},
	{"预期收益", journal.FieldExpectedReturn},
	{"退出计划", journal.FieldExitPlan},
	{"市场状况", journal.FieldMarketConditions},
	{"情绪状态", journal.FieldEmotionalState},
}

// BuildPrompt renders the descriptive fields of e. The same field values
// always produce the same prompt.
func BuildPrompt(e journal.Entry) string {
	v := journal.DenormalizeOutbound(e)
	var b strings.Builder
	b.WriteString(promptHeader)
	for _, line := range promptLines {
		text, _ := v.Text(string(line.field))
		b.WriteString("\n")
		b.WriteString(line.label)
		b.WriteString("：")
		b.WriteString(text)
	}
	return b.String()
}

// RequestReview asks the AI provider for a review of the stored journal and
// appends the result, or the fallback content when the call fails.
func (s *ReviewService) RequestReview(ctx context.Context, id uint64) (journal.ReviewLogEntry, error) {
	if s == nil || s.Journals == nil {
		return journal.ReviewLogEntry{}, journal.Storage("request review", errors.New("review service not configured"))
	}
	e, err := s.Journals.Fetch(ctx, id)
	if err != nil {
		return journal.ReviewLogEntry{}, err
	}

	content, source := s.generate(ctx, e)
	return s.append(ctx, id, content, source)
}

// AddManualEntry appends a caller-authored note without calling the AI provider.
func (s *ReviewService) AddManualEntry(ctx context.Context, id uint64, content string) (journal.ReviewLogEntry, error) {
	if strings.TrimSpace(content) == "" {
		return journal.ReviewLogEntry{}, journal.Required("content")
	}
	if s == nil || s.Journals == nil {
		return journal.ReviewLogEntry{}, journal.Storage("add review", errors.New("review service not configured"))
	}
	return s.append(ctx, id, content, journal.SourceManual)
}

// History returns the review history oldest first.
func (s *ReviewService) History(ctx context.Context, id uint64) ([]journal.ReviewLogEntry, error) {
	if s == nil || s.Journals == nil {
		return nil, journal.Storage("review history", errors.New("review service not configured"))
	}
	e, err := s.Journals.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.History(), nil
}

func (s *ReviewService) generate(ctx context.Context, e journal.Entry) (string, string) {
	if !s.Settings.IsEnabled(ctx, FeatureAIReview, true) {
		s.fallback(ctx, e.ID, errors.New("ai review switched off"))
		return s.fallbackContent(), journal.SourceFallback
	}
	if s.AI == nil {
		s.fallback(ctx, e.ID, ai.ErrNotConfigured)
		return s.fallbackContent(), journal.SourceFallback
	}

	callCtx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	start := time.Now()
	content, err := s.AI.Complete(callCtx, BuildPrompt(e), s.maxTokens())
	if err == nil && strings.TrimSpace(content) == "" {
		err = ai.ErrEmptyCompletion
	}
	if err != nil {
		s.fallback(ctx, e.ID, err)
		return s.fallbackContent(), journal.SourceFallback
	}
	s.logger().Info("ai review generated",
		zap.Uint64("journal_id", e.ID),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("chars", len(content)),
	)
	return strings.TrimSpace(content), journal.SourceAI
}

func (s *ReviewService) fallback(ctx context.Context, id uint64, cause error) {
	s.logger().Warn("ai review failed, storing fallback", zap.Uint64("journal_id", id), zap.Error(cause))
	if s.Audit != nil {
		s.Audit.Record(ctx, "journal_review_fallback", "warn", map[string]any{
			"journal_id": id,
			"error":      cause.Error(),
		})
	}
}

func (s *ReviewService) append(ctx context.Context, id uint64, content, source string) (journal.ReviewLogEntry, error) {
	repo := s.Journals.Repo
	if repo == nil {
		return journal.ReviewLogEntry{}, journal.Storage("append review", errors.New("journal repository not configured"))
	}
	item := journal.ReviewToRecord(journal.ReviewLogEntry{
		JournalID: id,
		Content:   content,
		Source:    source,
		CreatedAt: s.Journals.now(),
	})
	found, err := repo.AppendReviewLog(ctx, &item)
	if err != nil {
		return journal.ReviewLogEntry{}, journal.Storage("append review log", err)
	}
	if !found {
		return journal.ReviewLogEntry{}, journal.ErrNotFound
	}
	s.Journals.invalidate(ctx)
	return journal.ReviewFromRecord(item), nil
}

func (s *ReviewService) fallbackContent() string {
	if v := strings.TrimSpace(s.FallbackContent); v != "" {
		return v
	}
	return DefaultFallbackContent
}

func (s *ReviewService) maxTokens() int {
	if s.MaxTokens > 0 {
		return s.MaxTokens
	}
	return 1000
}

func (s *ReviewService) logger() *zap.Logger {
	if s == nil || s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
