package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type logServer struct {
	mu     sync.Mutex
	logins int
	events []Event
	auth   []string
}

func (s *logServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.logins++
		s.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token":      "tok-1",
			"expires_at": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/api/v1/logs", func(w http.ResponseWriter, r *http.Request) {
		var ev Event
		_ = json.NewDecoder(r.Body).Decode(&ev)
		s.mu.Lock()
		s.events = append(s.events, ev)
		s.auth = append(s.auth, r.Header.Get("Authorization"))
		s.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})
	return mux
}

func TestClientRecordLogsInOnce(t *testing.T) {
	ls := &logServer{}
	srv := httptest.NewServer(ls.handler())
	defer srv.Close()

	c := &Client{BaseURL: srv.URL + "/", APIKey: "k", Agent: "journal-test"}
	ctx := WithRequestID(context.Background(), "req-1")
	c.Record(ctx, "journal_review_fallback", "warn", map[string]any{"journal_id": 7})
	c.Record(ctx, "journal_review_fallback", "warn", map[string]any{"journal_id": 8})

	if ls.logins != 1 {
		t.Fatalf("logins=%d want=1", ls.logins)
	}
	if len(ls.events) != 2 {
		t.Fatalf("events=%d want=2", len(ls.events))
	}
	ev := ls.events[0]
	if ev.Agent != "journal-test" || ev.Action != "journal_review_fallback" || ev.Level != "warn" {
		t.Fatalf("event=%+v", ev)
	}
	if ev.Metadata["request_id"] != "req-1" {
		t.Fatalf("request_id=%v", ev.Metadata["request_id"])
	}
	if ev.Metadata["event_id"] == nil || ev.Metadata["event_id"] == ls.events[1].Metadata["event_id"] {
		t.Fatalf("event ids=%v,%v", ev.Metadata["event_id"], ls.events[1].Metadata["event_id"])
	}
	if ls.auth[0] != "Bearer tok-1" {
		t.Fatalf("auth=%q", ls.auth[0])
	}
}

func TestClientRecordSwallowsErrors(t *testing.T) {
	c := &Client{BaseURL: "", APIKey: "k"}
	c.Record(context.Background(), "a", "info", nil)

	var nilClient *Client
	nilClient.Record(context.Background(), "a", "info", nil)
}

type recordingSink struct {
	actions []string
	details []map[string]any
}

func (r *recordingSink) Record(_ context.Context, action, _ string, details map[string]any) {
	r.actions = append(r.actions, action)
	r.details = append(r.details, details)
}

func TestWriteMiddlewareOnlyRecordsWrites(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sink := &recordingSink{}
	r := gin.New()
	r.Use(RequestIDMiddleware(), WriteMiddleware(sink))
	r.GET("/api/journals", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/journals", func(c *gin.Context) { c.Status(http.StatusCreated) })

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, "/api/journals", nil))
		if w.Header().Get(RequestIDHeader) == "" {
			t.Fatalf("%s: missing request id header", method)
		}
	}
	if len(sink.actions) != 1 {
		t.Fatalf("actions=%v want one", sink.actions)
	}
	if sink.details[0]["status"] != http.StatusCreated {
		t.Fatalf("status=%v", sink.details[0]["status"])
	}
}

func TestRequireBearerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequireBearerMiddleware(true))
	r.GET("/api/journals", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/journals", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("code=%d want=401", w.Code)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/journals", nil)
	req.Header.Set("Authorization", "Bearer x")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("code=%d want=200", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("healthz code=%d want=200", w.Code)
	}
}
