package server

import (
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"modelsagent/internal/core"
	"modelsagent/internal/log"

	"github.com/gin-gonic/gin"
)

// Context keys set by the agent middleware chain
const (
	ctxKeyRawBody = "modelsagent.rawBody"
	ctxKeyToken   = "modelsagent.token"
)

func (s *Server) maxBodySizeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, core.MaxRequestBodySize)
		c.Next()
	}
}

type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitorInfo
	rate     int
	cleanup  time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

type visitorInfo struct {
	count    int
	lastSeen time.Time
}

func newRateLimiter(ratePerMinute int) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitorInfo),
		rate:     ratePerMinute,
		cleanup:  5 * time.Minute,
		done:     make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *rateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if time.Since(v.lastSeen) > time.Minute {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		case <-rl.done:
			return
		}
	}
}

// Stop ends the cleanup loop.
func (rl *rateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	v, exists := rl.visitors[ip]
	if !exists || time.Since(v.lastSeen) > time.Minute {
		rl.visitors[ip] = &visitorInfo{count: 1, lastSeen: time.Now()}
		return true
	}
	v.count++
	v.lastSeen = time.Now()
	return v.count <= rl.rate
}

func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !s.rateLimiter.allow(ip) {
			respondWithError(c, http.StatusTooManyRequests, "rate limit exceeded")
			c.Abort()
			return
		}
		c.Next()
	}
}

// verifySignature reads the body once and checks the platform signature over
// those exact bytes. The handler parses the same bytes from the context.
func (s *Server) verifySignature(c *gin.Context) {
	start := time.Now()

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.reject(c, start, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		s.reject(c, start, http.StatusBadRequest, "failed to read request body")
		return
	}

	token := c.GetHeader(core.HeaderToken)
	if token == "" {
		s.reject(c, start, http.StatusBadRequest, "missing "+core.HeaderToken+" header")
		return
	}

	ok, err := s.verifier.Verify(c.Request.Context(), body, c.GetHeader(core.HeaderSignature), c.GetHeader(core.HeaderKeyID), token)
	if err != nil || !ok {
		if err != nil {
			s.config.Logger.Warn("Signature verification failed: %v", err)
		} else {
			s.config.Logger.Warn("Signature does not match request body")
		}
		s.reject(c, start, http.StatusUnauthorized, "Unauthorized")
		return
	}

	c.Set(ctxKeyRawBody, body)
	c.Set(ctxKeyToken, token)
	c.Next()
}

func (s *Server) reject(c *gin.Context, start time.Time, status int, message string) {
	s.metricsService.RecordRequest(outcomeForStatus(status), time.Since(start))
	respondWithError(c, status, message)
	c.Abort()
}

// requestLogger scopes the server logger to the current request.
func (s *Server) requestLogger(requestID string) core.Logger {
	return log.ForRequest(s.config.Logger, requestID)
}
