package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterDocs(r *gin.Engine) {
	r.GET("/docs", func(c *gin.Context) {
		c.Header("Content-Type", "text/markdown; charset=utf-8")
		c.String(http.StatusOK, `# Investment Journal Service

Stores buy decisions, partial sells, archival state and review history.

## Field names

Requests may use snake_case or camelCase (expected_return / expectedReturn).
When both are present the camelCase value wins. Responses carry both.

## Auth

When server.require_bearer is on, /api/* and /swagger require a Bearer token
(validated by the gateway in front of this service). Health endpoints are public.

## Routes

- GET /healthz
- GET /readyz
- GET /swagger/index.html
- GET /api/journals?include_archived=true&strategy=&asset=
- GET /api/journals/archived
- GET /api/journals/strategies
- POST /api/journals
- GET /api/journals/{id}
- PUT /api/journals/{id}
- DELETE /api/journals/{id}
- POST /api/journals/{id}/archive
- POST /api/journals/{id}/unarchive
- POST /api/journals/{id}/sell-records
- PUT /api/journals/{id}/sell-records/{index}
- DELETE /api/journals/{id}/sell-records/{index}
- POST /api/journals/{id}/ai-review
- GET /api/journals/{id}/review-logs?format=html
- POST /api/journals/{id}/review-logs
- GET /api/system/switches
- PUT /api/system/switches/{name}
`)
	})
}
