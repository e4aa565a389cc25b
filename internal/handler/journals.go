package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"investjournal/internal/journal"
	"investjournal/internal/service"
)

const maxBodyBytes = 1 << 20

type JournalHandler struct {
	Journals *service.JournalService
	Ledger   *service.SellLedgerService
	Archival *service.ArchivalService
}

func (h *JournalHandler) Register(r *gin.Engine) {
	g := r.Group("/api/journals")
	g.GET("", h.list)
	g.GET("/archived", h.listArchived)
	g.GET("/strategies", h.strategies)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.replace)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/archive", h.archive)
	g.POST("/:id/unarchive", h.unarchive)
	g.POST("/:id/sell-records", h.appendSellRecord)
	g.PUT("/:id/sell-records/:index", h.updateSellRecord)
	g.DELETE("/:id/sell-records/:index", h.removeSellRecord)
}

// @Summary List journals
// @Description Newest first. Active journals only unless include_archived=true.
// @Tags journals
// @Param include_archived query bool false "include archived journals"
// @Param strategy query string false "exact strategy label"
// @Param asset query string false "exact asset"
// @Success 200 {object} apiResponse
// @Router /api/journals [get]
func (h *JournalHandler) list(c *gin.Context) {
	if h.Journals == nil {
		Error(c, http.StatusInternalServerError, "journal service unavailable", nil)
		return
	}
	f := service.ListFilter{
		Strategy: c.Query("strategy"),
		Asset:    c.Query("asset"),
	}
	if !boolQueryDefault(c, "include_archived", false) {
		f.Archived = boolPtr(false)
	}
	h.respondList(c, f)
}

// @Summary List archived journals
// @Tags journals
// @Success 200 {object} apiResponse
// @Router /api/journals/archived [get]
func (h *JournalHandler) listArchived(c *gin.Context) {
	if h.Journals == nil {
		Error(c, http.StatusInternalServerError, "journal service unavailable", nil)
		return
	}
	h.respondList(c, service.ListFilter{
		Archived: boolPtr(true),
		Strategy: c.Query("strategy"),
		Asset:    c.Query("asset"),
	})
}

func (h *JournalHandler) respondList(c *gin.Context, f service.ListFilter) {
	items, err := h.Journals.List(c.Request.Context(), f)
	if err != nil {
		Fail(c, err)
		return
	}
	out := make([]journal.View, 0, len(items))
	for _, it := range items {
		out = append(out, journal.DenormalizeOutbound(it))
	}
	Ok(c, out, map[string]any{"total": len(out)})
}

// @Summary Strategy labels
// @Description The fixed labels offered by the journal form; any other text is stored as-is.
// @Tags journals
// @Success 200 {object} apiResponse
// @Router /api/journals/strategies [get]
func (h *JournalHandler) strategies(c *gin.Context) {
	Ok(c, journal.Strategies(), map[string]any{"other": journal.StrategyOther})
}

// @Summary Create a journal
// @Description Accepts snake_case or camelCase field names; camelCase wins when both are sent.
// @Tags journals
// @Accept json
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/journals [post]
func (h *JournalHandler) create(c *gin.Context) {
	if h.Journals == nil {
		Error(c, http.StatusInternalServerError, "journal service unavailable", nil)
		return
	}
	body, ok := readBody(c)
	if !ok {
		return
	}
	item, err := h.Journals.Create(c.Request.Context(), body)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, journal.DenormalizeOutbound(item), nil)
}

// @Summary Get a journal
// @Tags journals
// @Param id path int true "journal id"
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/journals/{id} [get]
func (h *JournalHandler) get(c *gin.Context) {
	id, ok := h.journalID(c)
	if !ok {
		return
	}
	item, err := h.Journals.Fetch(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, journal.DenormalizeOutbound(item), nil)
}

// @Summary Replace a journal
// @Description In-place update. Fields absent from the body keep their stored values.
// @Tags journals
// @Accept json
// @Param id path int true "journal id"
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/journals/{id} [put]
func (h *JournalHandler) replace(c *gin.Context) {
	id, ok := h.journalID(c)
	if !ok {
		return
	}
	body, ok := readBody(c)
	if !ok {
		return
	}
	item, err := h.Journals.Replace(c.Request.Context(), id, body)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, journal.DenormalizeOutbound(item), nil)
}

// @Summary Delete a journal
// @Description Idempotent: deleting a missing id succeeds with deleted=false.
// @Tags journals
// @Param id path int true "journal id"
// @Success 200 {object} apiResponse
// @Router /api/journals/{id} [delete]
func (h *JournalHandler) delete(c *gin.Context) {
	id, ok := h.journalID(c)
	if !ok {
		return
	}
	deleted, err := h.Journals.Delete(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, gin.H{"id": id, "deleted": deleted}, nil)
}

// @Summary Archive a journal
// @Description Optional body {"exitDate": "2024-05-01"}; defaults to today.
// @Tags archival
// @Param id path int true "journal id"
// @Success 200 {object} apiResponse
// @Failure 409 {object} apiResponse
// @Router /api/journals/{id}/archive [post]
func (h *JournalHandler) archive(c *gin.Context) {
	id, ok := h.journalID(c)
	if !ok {
		return
	}
	if h.Archival == nil {
		Error(c, http.StatusInternalServerError, "archival service unavailable", nil)
		return
	}
	body, ok := readBody(c)
	if !ok {
		return
	}
	exitDate := ""
	if len(strings.TrimSpace(string(body))) > 0 {
		d, err := journal.NormalizeInbound(body)
		if err != nil {
			Fail(c, err)
			return
		}
		if d.ExitDate != nil {
			exitDate = *d.ExitDate
		}
	}
	item, err := h.Archival.Archive(c.Request.Context(), id, exitDate)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, journal.DenormalizeOutbound(item), nil)
}

// @Summary Unarchive a journal
// @Tags archival
// @Param id path int true "journal id"
// @Success 200 {object} apiResponse
// @Failure 409 {object} apiResponse
// @Router /api/journals/{id}/unarchive [post]
func (h *JournalHandler) unarchive(c *gin.Context) {
	id, ok := h.journalID(c)
	if !ok {
		return
	}
	if h.Archival == nil {
		Error(c, http.StatusInternalServerError, "archival service unavailable", nil)
		return
	}
	item, err := h.Archival.Unarchive(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, journal.DenormalizeOutbound(item), nil)
}

// @Summary Append a sell record
// @Tags sell-records
// @Accept json
// @Param id path int true "journal id"
// @Success 200 {object} apiResponse
// @Router /api/journals/{id}/sell-records [post]
func (h *JournalHandler) appendSellRecord(c *gin.Context) {
	id, record, ok := h.sellRecordRequest(c)
	if !ok {
		return
	}
	item, err := h.Ledger.Append(c.Request.Context(), id, record)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, journal.DenormalizeOutbound(item), nil)
}

// @Summary Update a sell record
// @Tags sell-records
// @Accept json
// @Param id path int true "journal id"
// @Param index path int true "zero-based record index"
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/journals/{id}/sell-records/{index} [put]
func (h *JournalHandler) updateSellRecord(c *gin.Context) {
	id, record, ok := h.sellRecordRequest(c)
	if !ok {
		return
	}
	item, err := h.Ledger.Update(c.Request.Context(), id, indexParam(c, "index"), record)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, journal.DenormalizeOutbound(item), nil)
}

// @Summary Remove a sell record
// @Tags sell-records
// @Param id path int true "journal id"
// @Param index path int true "zero-based record index"
// @Success 200 {object} apiResponse
// @Failure 404 {object} apiResponse
// @Router /api/journals/{id}/sell-records/{index} [delete]
func (h *JournalHandler) removeSellRecord(c *gin.Context) {
	id, ok := h.journalID(c)
	if !ok {
		return
	}
	if h.Ledger == nil {
		Error(c, http.StatusInternalServerError, "sell ledger service unavailable", nil)
		return
	}
	item, err := h.Ledger.Remove(c.Request.Context(), id, indexParam(c, "index"))
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, journal.DenormalizeOutbound(item), nil)
}

func (h *JournalHandler) sellRecordRequest(c *gin.Context) (uint64, journal.SellRecord, bool) {
	id, ok := h.journalID(c)
	if !ok {
		return 0, journal.SellRecord{}, false
	}
	if h.Ledger == nil {
		Error(c, http.StatusInternalServerError, "sell ledger service unavailable", nil)
		return 0, journal.SellRecord{}, false
	}
	body, ok := readBody(c)
	if !ok {
		return 0, journal.SellRecord{}, false
	}
	record, err := journal.DecodeSellRecord(body)
	if err != nil {
		Fail(c, err)
		return 0, journal.SellRecord{}, false
	}
	return id, record, true
}

func (h *JournalHandler) journalID(c *gin.Context) (uint64, bool) {
	if h.Journals == nil {
		Error(c, http.StatusInternalServerError, "journal service unavailable", nil)
		return 0, false
	}
	id := uint64Param(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return 0, false
	}
	return id, true
}

func readBody(c *gin.Context) ([]byte, bool) {
	if c.Request.Body == nil {
		return nil, true
	}
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(c, http.StatusRequestEntityTooLarge, "request body too large", nil)
			return nil, false
		}
		Error(c, http.StatusBadRequest, "read body: "+err.Error(), nil)
		return nil, false
	}
	return body, true
}
