package server

import (
	"net/http"

	"modelsagent/internal/core"
	"modelsagent/internal/metrics"

	"github.com/gin-gonic/gin"
)

// setStreamingHeaders sets streaming response HTTP headers
func setStreamingHeaders(c *gin.Context) {
	c.Header(core.HeaderContentType, core.ContentTypeEventStream)
	c.Header(core.HeaderCacheControl, core.CacheControlNoCache)
	c.Header(core.HeaderConnection, core.ConnectionKeepAlive)
}

// respondWithError returns a JSON error body
func respondWithError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}

// respondWithAppError maps err to its status code. Upstream and tool errors
// are not described to the caller.
func respondWithAppError(c *gin.Context, err error) int {
	status := core.HTTPStatus(err)
	message := http.StatusText(status)
	if status == http.StatusBadRequest {
		message = err.Error()
	}
	respondWithError(c, status, message)
	return status
}

func outcomeForStatus(status int) string {
	switch {
	case status == http.StatusOK:
		return metrics.OutcomeOK
	case status == http.StatusUnauthorized:
		return metrics.OutcomeUnauthorized
	case status >= 400 && status < 500:
		return metrics.OutcomeBadRequest
	default:
		return metrics.OutcomeError
	}
}
