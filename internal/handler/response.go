package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"investjournal/internal/journal"
)

type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, apiResponse{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}

// Fail maps a journal error onto its HTTP status.
func Fail(c *gin.Context, err error) {
	Error(c, statusFor(err), err.Error(), nil)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, journal.ErrNotFound):
		return http.StatusNotFound
	case journal.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, journal.ErrAlreadyArchived), errors.Is(err, journal.ErrNotArchived),
		errors.Is(err, journal.ErrLedgerUnreadable):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
