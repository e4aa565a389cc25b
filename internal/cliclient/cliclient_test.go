package cliclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestCallSendsTokenAndDecodesEnvelope(t *testing.T) {
	var gotAuth, gotQuery, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":0,"message":"ok","data":{"id":7},"meta":{"total":1}}`))
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL + "/", Token: " abc "}
	env, err := c.Call(context.Background(), http.MethodPost, "api/journals", url.Values{"asset": {"AAPL"}}, map[string]string{"asset": "AAPL"})
	if err != nil {
		t.Fatalf("call err=%v", err)
	}
	if gotAuth != "Bearer abc" || gotQuery != "asset=AAPL" || gotBody != `{"asset":"AAPL"}` {
		t.Fatalf("auth=%q query=%q body=%q", gotAuth, gotQuery, gotBody)
	}
	if string(env.Data) != `{"id":7}` || env.Meta["total"] != float64(1) {
		t.Fatalf("env=%+v", env)
	}
}

func TestCallReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":409,"message":"journal already archived"}`))
	}))
	defer srv.Close()

	_, err := (&Client{BaseURL: srv.URL}).Call(context.Background(), http.MethodPost, "/x", nil, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusConflict || apiErr.Message != "journal already archived" {
		t.Fatalf("err=%v", err)
	}
}

func TestCallRequiresBaseURL(t *testing.T) {
	if _, err := (&Client{}).Call(context.Background(), http.MethodGet, "/", nil, nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatJSON, "JSON": FormatJSON, "text": FormatText, " markdown ": FormatMarkdown} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q)=%q,%v want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("yaml"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestWriteReviews(t *testing.T) {
	items := []Review{
		{ID: 1, Content: "first **note**", Source: "ai", CreatedAt: "2024-03-15T09:30:00Z"},
		{ID: 2, Content: "second", Source: "manual", CreatedAt: "2024-03-16T09:30:00Z"},
	}
	var text bytes.Buffer
	if err := WriteReviews(&text, FormatText, items, 80); err != nil {
		t.Fatalf("text err=%v", err)
	}
	if !strings.Contains(text.String(), "## #1 · ai") || strings.Index(text.String(), "first") > strings.Index(text.String(), "second") {
		t.Fatalf("text=%q", text.String())
	}

	var md bytes.Buffer
	if err := WriteReviews(&md, FormatMarkdown, items, 80); err != nil {
		t.Fatalf("markdown err=%v", err)
	}
	if !strings.Contains(md.String(), "note") || !strings.Contains(md.String(), "second") {
		t.Fatalf("markdown=%q", md.String())
	}
}
