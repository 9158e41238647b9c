package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"modelsagent/internal/convert"
	"modelsagent/internal/core"
	"modelsagent/internal/metrics"
	"modelsagent/internal/relay"
	"modelsagent/internal/util"

	"github.com/gin-gonic/gin"
)

// handleAgent runs one verified request through selection, dispatch and the
// completion stream. Errors before the first byte get a JSON status; after
// that the stream is closed without the end sentinel.
func (s *Server) handleAgent(c *gin.Context) {
	start := time.Now()
	ctx := c.Request.Context()
	logger := s.requestLogger(util.GenerateRequestID())

	body := c.MustGet(ctxKeyRawBody).([]byte)
	token := c.GetString(ctxKeyToken)

	messages, err := convert.Normalize(body)
	if err != nil {
		logger.Warn("Rejected request body: %v", err)
		s.metricsService.RecordRequest(outcomeForStatus(respondWithAppError(c, err)), time.Since(start))
		return
	}

	plan, err := s.requestProcessor.Plan(ctx, token, messages, logger)
	if err != nil {
		logger.Error("Planning failed: %v", err)
		s.metricsService.RecordRequest(outcomeForStatus(respondWithAppError(c, err)), time.Since(start))
		return
	}

	streamStart := time.Now()
	stream, err := s.completion.Stream(ctx, token, plan.TargetModel, plan.Messages)
	if err != nil {
		logger.Error("Completion with %s failed: %v", plan.TargetModel, err)
		s.metricsService.RecordRequest(outcomeForStatus(respondWithAppError(c, err)), time.Since(start))
		return
	}

	setStreamingHeaders(c)
	c.Status(http.StatusOK)

	err = relay.Forward(ctx, c.Writer, plan.References, stream)
	logger.Debug("stream took %v", time.Since(streamStart))

	switch {
	case err == nil:
		s.metricsService.RecordRequest(metrics.OutcomeOK, time.Since(start))
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		logger.Info("Client disconnected, stream closed")
		s.metricsService.RecordRequest(metrics.OutcomeAborted, time.Since(start))
	case errors.Is(err, core.ErrUpstream):
		logger.Error("Completion stream failed: %v", err)
		s.metricsService.RecordRequest(metrics.OutcomeError, time.Since(start))
	default:
		logger.Info("Stream write failed, client likely gone: %v", err)
		s.metricsService.RecordRequest(metrics.OutcomeAborted, time.Since(start))
	}
}
