package util

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"modelsagent/internal/core"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// MarshalJSON wraps Sonic for performance
func MarshalJSON(v any) ([]byte, error) {
	return sonic.Marshal(v)
}

// MarshalIndentJSON renders v as indented JSON for prompt text.
func MarshalIndentJSON(v any) ([]byte, error) {
	return sonic.ConfigStd.MarshalIndent(v, "", "  ")
}

// UnmarshalJSON wraps Sonic for performance
func UnmarshalJSON(data []byte, v any) error {
	return sonic.Unmarshal(data, v)
}

// GenerateRequestID returns a new request ID.
func GenerateRequestID() string {
	return uuid.NewString()
}

// GenerateRandomID generates a prefixed random ID (crypto-secure)
func GenerateRandomID(prefix string) string {
	b := make([]byte, 10)
	_, _ = rand.Read(b)
	return fmt.Sprintf("%s%s", prefix, hex.EncodeToString(b))
}

// NewJSONRequest creates an outbound HTTP request with JSON headers and an optional bearer token.
func NewJSONRequest(ctx context.Context, method, url string, payload any, token string) (*http.Request, error) {
	var body io.Reader

	if payload != nil {
		payloadBytes, err := MarshalJSON(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewBuffer(payloadBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set(core.HeaderAccept, core.ContentTypeJSON)
	if payload != nil {
		req.Header.Set(core.HeaderContentType, core.ContentTypeJSON)
	}
	if token != "" {
		req.Header.Set(core.HeaderAuthorization, core.AuthBearerPrefix+token)
	}

	return req, nil
}

// ReadLimitedBody reads at most core.MaxResponseBodySize bytes of an upstream response.
func ReadLimitedBody(resp *http.Response) ([]byte, error) {
	return io.ReadAll(io.LimitReader(resp.Body, core.MaxResponseBodySize))
}

// TruncateString truncates string and adds replacement text in the middle
func TruncateString(s string, prefixLen, suffixLen int, replacement string) string {
	if len(s) > prefixLen+suffixLen {
		return s[:prefixLen] + replacement + s[len(s)-suffixLen:]
	}
	return s
}

// ParseEnvList parses comma-separated env var to trimmed slice
func ParseEnvList(envVar string) []string {
	if envVar == "" {
		return nil
	}
	parts := strings.Split(envVar, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// GetEnvWithDefault gets env var with default value
func GetEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvDuration parses a duration env var ("30s", "1h"), falling back on absence or parse error.
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

// GetEnvInt parses a positive integer env var, falling back on absence or parse error.
func GetEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
