package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewWithoutKeyIsUnavailable(t *testing.T) {
	c, err := New(context.Background(), Options{Provider: "openai"})
	if err != nil {
		t.Fatalf("New err=%v", err)
	}
	_, err = c.Complete(context.Background(), "p", 10)
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err=%v want=%v", err, ErrNotConfigured)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	if _, err := New(context.Background(), Options{Provider: "bard", APIKey: "k"}); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func chatServer(t *testing.T, status int, content string, seen *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("path=%s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization=%q", got)
		}
		if seen != nil {
			b, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(b, seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		body, _ := json.Marshal(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "deepseek-v3",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
		_, _ = w.Write(body)
	}))
}

func TestOpenAICompleterSendsPrompt(t *testing.T) {
	var seen map[string]any
	srv := chatServer(t, http.StatusOK, "  keep a stop loss  ", &seen)
	defer srv.Close()

	c := NewOpenAICompleter(Options{BaseURL: srv.URL + "/v1", APIKey: "test-key", Model: "deepseek-v3", Timeout: 5 * time.Second})
	got, err := c.Complete(context.Background(), "review this", 1000)
	if err != nil {
		t.Fatalf("Complete err=%v", err)
	}
	if got != "keep a stop loss" {
		t.Fatalf("got=%q", got)
	}
	if seen["model"] != "deepseek-v3" {
		t.Fatalf("model=%v", seen["model"])
	}
	if mt, _ := seen["max_tokens"].(float64); mt != 1000 {
		t.Fatalf("max_tokens=%v want=1000", seen["max_tokens"])
	}
}

func TestOpenAICompleterEmptyContent(t *testing.T) {
	srv := chatServer(t, http.StatusOK, "   ", nil)
	defer srv.Close()

	c := NewOpenAICompleter(Options{BaseURL: srv.URL, APIKey: "test-key", Model: "m"})
	if _, err := c.Complete(context.Background(), "p", 10); !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("err=%v want=%v", err, ErrEmptyCompletion)
	}
}

func TestOpenAICompleterHTTPError(t *testing.T) {
	srv := chatServer(t, http.StatusInternalServerError, "", nil)
	defer srv.Close()

	c := NewOpenAICompleter(Options{BaseURL: srv.URL, APIKey: "test-key", Model: "m"})
	if _, err := c.Complete(context.Background(), "p", 10); err == nil {
		t.Fatalf("expected error on 500")
	}
}
