package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"investjournal/internal/journal"
	"investjournal/internal/service"
)

type ReviewHandler struct {
	Reviews *service.ReviewService
	// DisableHTML ignores format=html on history reads.
	DisableHTML bool
}

func (h *ReviewHandler) Register(r *gin.Engine) {
	g := r.Group("/api/journals/:id")
	g.POST("/ai-review", h.requestReview)
	g.GET("/review-logs", h.history)
	g.POST("/review-logs", h.addManual)
}

// @Summary Request an AI review
// @Description Appends a new review entry. Provider failures store a fallback entry instead of failing.
// @Tags reviews
// @Param id path int true "journal id"
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/journals/{id}/ai-review [post]
func (h *ReviewHandler) requestReview(c *gin.Context) {
	id, ok := h.journalID(c)
	if !ok {
		return
	}
	entry, err := h.Reviews.RequestReview(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, journal.NewReviewView(entry), map[string]any{"fallback": entry.Source == journal.SourceFallback})
}

type manualReviewRequest struct {
	Content       string `json:"content"`
	ReviewContent string `json:"review_content"`
}

// @Summary Add a manual review note
// @Tags reviews
// @Accept json
// @Param id path int true "journal id"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/journals/{id}/review-logs [post]
func (h *ReviewHandler) addManual(c *gin.Context) {
	id, ok := h.journalID(c)
	if !ok {
		return
	}
	body, ok := readBody(c)
	if !ok {
		return
	}
	var req manualReviewRequest
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			Error(c, http.StatusBadRequest, "invalid body", nil)
			return
		}
	}
	content := req.Content
	if strings.TrimSpace(content) == "" {
		content = req.ReviewContent
	}
	entry, err := h.Reviews.AddManualEntry(c.Request.Context(), id, content)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, journal.NewReviewView(entry), nil)
}

// @Summary Review history
// @Description Oldest first. format=html adds a rendered contentHtml field.
// @Tags reviews
// @Param id path int true "journal id"
// @Param format query string false "html"
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/journals/{id}/review-logs [get]
func (h *ReviewHandler) history(c *gin.Context) {
	id, ok := h.journalID(c)
	if !ok {
		return
	}
	items, err := h.Reviews.History(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	html := !h.DisableHTML && strings.EqualFold(strings.TrimSpace(c.Query("format")), "html")
	out := make([]journal.ReviewView, 0, len(items))
	for _, it := range items {
		v := journal.NewReviewView(it)
		if html {
			v.ContentHTML = renderMarkdown(it.Content)
		}
		out = append(out, v)
	}
	Ok(c, out, map[string]any{"total": len(out)})
}

func (h *ReviewHandler) journalID(c *gin.Context) (uint64, bool) {
	if h.Reviews == nil {
		Error(c, http.StatusInternalServerError, "review service unavailable", nil)
		return 0, false
	}
	id := uint64Param(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return 0, false
	}
	return id, true
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// renderMarkdown falls back to the raw text if conversion fails.
func renderMarkdown(src string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return src
	}
	return buf.String()
}
