package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"investjournal/internal/ai"
	"investjournal/internal/journal"
)

type recordedEvent struct {
	action string
	level  string
}

type fakeSink struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (s *fakeSink) Record(_ context.Context, action, level string, _ map[string]any) {
	s.mu.Lock()
	s.events = append(s.events, recordedEvent{action: action, level: level})
	s.mu.Unlock()
}

func TestBuildPromptIsDeterministic(t *testing.T) {
	e := journal.Entry{
		Asset:            "AAPL",
		Amount:           "10",
		Price:            "150",
		Strategy:         "价值投资",
		Reasons:          "moat",
		Risks:            "valuation",
		ExpectedReturn:   "20%",
		ExitPlan:         "stop at 130",
		MarketConditions: "bullish",
		EmotionalState:   "calm",
	}
	first := BuildPrompt(e)
	other := e
	other.ID = 99
	other.Archived = true
	other.SellRecords = journal.SellLedger{{Reason: "trim"}}
	if BuildPrompt(other) != first {
		t.Fatalf("prompt depends on non-descriptive fields")
	}

	want := "请根据以下投资日志内容，给出详细的复盘建议：\n资产：AAPL\n数量：10\n价格：150\n策略：价值投资\n理由：moat\n风险：valuation\n预期收益：20%\n退出计划：stop at 130\n市场状况：bullish\n情绪状态：calm"
	if first != want {
		t.Fatalf("prompt=%q\nwant=%q", first, want)
	}
}

func TestRequestReviewAppendsAIContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := mustCreate(t, f, aaplBody)

	var gotPrompt string
	var gotMax int
	reviews := &ReviewService{
		Journals:  f.journals,
		MaxTokens: 1000,
		AI: ai.CompleterFunc(func(_ context.Context, prompt string, maxTokens int) (string, error) {
			gotPrompt, gotMax = prompt, maxTokens
			return "  consider position sizing  ", nil
		}),
	}
	entry, err := reviews.RequestReview(ctx, created.ID)
	if err != nil {
		t.Fatalf("review err=%v", err)
	}
	if entry.Content != "consider position sizing" || entry.Source != journal.SourceAI {
		t.Fatalf("entry=%+v", entry)
	}
	if !strings.Contains(gotPrompt, "资产：AAPL") || gotMax != 1000 {
		t.Fatalf("prompt=%q max=%d", gotPrompt, gotMax)
	}

	got, _ := f.journals.Fetch(ctx, created.ID)
	if got.LatestReview() != "consider position sizing" {
		t.Fatalf("latest=%q", got.LatestReview())
	}
}

func TestRequestReviewFallbackOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := mustCreate(t, f, aaplBody)
	sink := &fakeSink{}
	reviews := &ReviewService{
		Journals: f.journals,
		Audit:    sink,
		AI: ai.CompleterFunc(func(context.Context, string, int) (string, error) {
			return "", errors.New("http 401")
		}),
	}
	entry, err := reviews.RequestReview(ctx, created.ID)
	if err != nil {
		t.Fatalf("review err=%v, failures must not surface", err)
	}
	if entry.Content != DefaultFallbackContent || entry.Source != journal.SourceFallback {
		t.Fatalf("entry=%+v", entry)
	}
	if len(sink.events) != 1 || sink.events[0].action != "journal_review_fallback" {
		t.Fatalf("audit events=%+v", sink.events)
	}
}

func TestRequestReviewTimeoutFallsBack(t *testing.T) {
	f := newFixture(t)
	created := mustCreate(t, f, aaplBody)
	reviews := &ReviewService{
		Journals: f.journals,
		Timeout:  20 * time.Millisecond,
		AI: ai.CompleterFunc(func(ctx context.Context, _ string, _ int) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}),
	}
	start := time.Now()
	entry, err := reviews.RequestReview(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("review err=%v", err)
	}
	if entry.Content != DefaultFallbackContent {
		t.Fatalf("content=%q", entry.Content)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("timeout not applied")
	}
}

func TestRequestReviewWithoutProviderOrSwitchedOff(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := mustCreate(t, f, aaplBody)

	reviews := &ReviewService{Journals: f.journals, FallbackContent: "try again"}
	entry, err := reviews.RequestReview(ctx, created.ID)
	if err != nil || entry.Content != "try again" {
		t.Fatalf("entry=%+v err=%v", entry, err)
	}

	called := false
	reviews.AI = ai.CompleterFunc(func(context.Context, string, int) (string, error) {
		called = true
		return "ok", nil
	})
	reviews.Settings = f.settings
	_ = f.settings.SetEnabled(ctx, FeatureAIReview, false)
	entry, _ = reviews.RequestReview(ctx, created.ID)
	if called || entry.Source != journal.SourceFallback {
		t.Fatalf("called=%v entry=%+v", called, entry)
	}
}

func TestRequestReviewHistoryIsAppendOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := mustCreate(t, f, aaplBody)

	n := 0
	reviews := &ReviewService{
		Journals: f.journals,
		AI: ai.CompleterFunc(func(context.Context, string, int) (string, error) {
			n++
			if n%2 == 0 {
				return "", errors.New("boom")
			}
			return "review", nil
		}),
	}
	// The clock is frozen, so every append asks for the same timestamp.
	const total = 5
	for i := 0; i < total; i++ {
		if _, err := reviews.RequestReview(ctx, created.ID); err != nil {
			t.Fatalf("review %d err=%v", i, err)
		}
	}
	history, err := reviews.History(ctx, created.ID)
	if err != nil {
		t.Fatalf("history err=%v", err)
	}
	if len(history) != total {
		t.Fatalf("history len=%d want=%d", len(history), total)
	}
	for i := 1; i < len(history); i++ {
		if !history[i].CreatedAt.After(history[i-1].CreatedAt) {
			t.Fatalf("entry %d at %v not after %v", i, history[i].CreatedAt, history[i-1].CreatedAt)
		}
	}
	for i, h := range history {
		wantSource := journal.SourceAI
		if (i+1)%2 == 0 {
			wantSource = journal.SourceFallback
		}
		if h.Source != wantSource {
			t.Fatalf("entry %d source=%q want=%q", i, h.Source, wantSource)
		}
	}
}

func TestRequestReviewMissingJournal(t *testing.T) {
	f := newFixture(t)
	reviews := &ReviewService{Journals: f.journals}
	if _, err := reviews.RequestReview(context.Background(), 404); !errors.Is(err, journal.ErrNotFound) {
		t.Fatalf("err=%v want=%v", err, journal.ErrNotFound)
	}
}

func TestAddManualEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := mustCreate(t, f, aaplBody)
	reviews := &ReviewService{Journals: f.journals}

	if _, err := reviews.AddManualEntry(ctx, created.ID, "   "); !journal.IsValidation(err) {
		t.Fatalf("err=%v want validation", err)
	}
	if _, err := reviews.AddManualEntry(ctx, 999, "note"); !errors.Is(err, journal.ErrNotFound) {
		t.Fatalf("err=%v want not found", err)
	}
	entry, err := reviews.AddManualEntry(ctx, created.ID, "sold too early")
	if err != nil {
		t.Fatalf("manual err=%v", err)
	}
	if entry.Source != journal.SourceManual || entry.JournalID != created.ID || entry.ID == 0 {
		t.Fatalf("entry=%+v", entry)
	}
}

func TestConcurrentReviewAppendsKeepEveryEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := mustCreate(t, f, aaplBody)
	reviews := &ReviewService{Journals: f.journals}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = reviews.AddManualEntry(ctx, created.ID, "note")
		}()
	}
	wg.Wait()
	history, _ := reviews.History(ctx, created.ID)
	if len(history) != 20 {
		t.Fatalf("history len=%d want=20", len(history))
	}
}
