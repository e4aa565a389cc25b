package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"investjournal/internal/ai"
	"investjournal/internal/handler"
	"investjournal/internal/repository/memory"
	"investjournal/internal/service"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := memory.New()
	settings := &service.SystemSettingsService{Repo: store}
	journals := &service.JournalService{Repo: store, Settings: settings}
	engine := gin.New()
	(&handler.JournalHandler{
		Journals: journals,
		Ledger:   &service.SellLedgerService{Journals: journals},
		Archival: &service.ArchivalService{Journals: journals},
	}).Register(engine)
	(&handler.ReviewHandler{Reviews: &service.ReviewService{
		Journals: journals,
		AI: ai.CompleterFunc(func(context.Context, string, int) (string, error) {
			return "Consider **position sizing**.", nil
		}),
	}}).Register(engine)
	(&handler.SwitchHandler{Settings: settings}).Register(engine)
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, srv *httptest.Server, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(strings.NewReader(stdin), &out)
	root.SetArgs(append([]string{"--api-base", srv.URL}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestJournalctlWorkflow(t *testing.T) {
	srv := newServer(t)

	out, err := run(t, srv, `{"date":"2024-01-01","asset":"AAPL","amount":"10","price":"150","strategy":"价值投资"}`, "create")
	if err != nil {
		t.Fatalf("create err=%v", err)
	}
	if !strings.Contains(out, "#1\t2024-01-01\tAAPL\t10 @ 150") {
		t.Fatalf("create out=%q", out)
	}

	out, err = run(t, srv, "", "sell", "add", "1", "--date", "2024-02-01", "--price", "160", "--amount", "5", "--reason", "trim")
	if err != nil {
		t.Fatalf("sell add err=%v", err)
	}
	if !strings.Contains(out, "sell[0]\t2024-02-01\t5 @ 160\ttrim") {
		t.Fatalf("sell add out=%q", out)
	}

	if _, err := run(t, srv, "", "sell", "rm", "1", "4"); err == nil || !strings.Contains(err.Error(), "http 404") {
		t.Fatalf("sell rm err=%v", err)
	}

	out, err = run(t, srv, "", "archive", "1", "--exit-date", "2024-05-01")
	if err != nil || !strings.Contains(out, "archived 2024-05-01") {
		t.Fatalf("archive out=%q err=%v", out, err)
	}
	if _, err := run(t, srv, "", "archive", "1"); err == nil || !strings.Contains(err.Error(), "http 409") {
		t.Fatalf("second archive err=%v", err)
	}

	out, _ = run(t, srv, "", "list")
	if strings.Contains(out, "AAPL") {
		t.Fatalf("active list out=%q", out)
	}
	out, _ = run(t, srv, "", "list", "--archived")
	if !strings.Contains(out, "AAPL") {
		t.Fatalf("archived list out=%q", out)
	}

	out, err = run(t, srv, "", "review", "1")
	if err != nil || !strings.Contains(out, "**position sizing**") {
		t.Fatalf("review out=%q err=%v", out, err)
	}
	if _, err := run(t, srv, "", "note", "1", "sold", "too", "early"); err != nil {
		t.Fatalf("note err=%v", err)
	}
	out, err = run(t, srv, "", "reviews", "1")
	if err != nil {
		t.Fatalf("reviews err=%v", err)
	}
	if strings.Index(out, "position sizing") > strings.Index(out, "sold too early") || !strings.Contains(out, "manual") {
		t.Fatalf("reviews out=%q", out)
	}

	out, err = run(t, srv, "", "delete", "1")
	if err != nil || !strings.Contains(out, "journal 1 deleted") {
		t.Fatalf("delete out=%q err=%v", out, err)
	}
	out, err = run(t, srv, "", "delete", "1")
	if err != nil || !strings.Contains(out, "did not exist") {
		t.Fatalf("second delete out=%q err=%v", out, err)
	}
}

func TestJournalctlSwitchesAndJSON(t *testing.T) {
	srv := newServer(t)
	if _, err := run(t, srv, "", "switches", "set", "ai_review", "off"); err != nil {
		t.Fatalf("set err=%v", err)
	}
	out, err := run(t, srv, "", "switches")
	if err != nil || !strings.Contains(out, "ai_review\toff") {
		t.Fatalf("switches out=%q err=%v", out, err)
	}
	out, err = run(t, srv, "", "-o", "json", "switches")
	if err != nil || !strings.Contains(out, `"enabled": false`) {
		t.Fatalf("json out=%q err=%v", out, err)
	}
	if _, err := run(t, srv, "", "switches", "set", "ai_review", "maybe"); err == nil {
		t.Fatalf("expected error for bad on/off value")
	}
}

func TestJournalctlRejectsBadInput(t *testing.T) {
	srv := newServer(t)
	cases := [][]string{
		{"get", "abc"},
		{"get", "0"},
		{"sell", "rm", "1", "-2"},
		{"-o", "yaml", "list"},
	}
	for _, args := range cases {
		if _, err := run(t, srv, "", args...); err == nil {
			t.Fatalf("args=%v expected error", args)
		}
	}
	if _, err := run(t, srv, "not json", "create"); err == nil || !strings.Contains(err.Error(), "not valid JSON") {
		t.Fatalf("create err=%v", err)
	}
}
