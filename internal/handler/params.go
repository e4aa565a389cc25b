package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func boolQueryDefault(c *gin.Context, key string, def bool) bool {
	if val := c.Query(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return def
}

// uint64Param returns 0 for anything that is not a plain decimal id.
func uint64Param(c *gin.Context, key string) uint64 {
	val := strings.TrimSpace(c.Param(key))
	if val == "" {
		return 0
	}
	out, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0
	}
	return out
}

// indexParam returns -1 when the path segment is not a non-negative integer.
func indexParam(c *gin.Context, key string) int {
	val := strings.TrimSpace(c.Param(key))
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return -1
	}
	return i
}

func boolPtr(v bool) *bool { return &v }
