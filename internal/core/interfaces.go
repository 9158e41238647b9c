package core

import (
	"context"
	"time"
)

// Logger interface
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	Fatal(format string, args ...any)
}

// Cache interface
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, duration time.Duration)
	Stop()
}

// PublicKey is one entry of the calling platform's key set.
type PublicKey struct {
	Key           string `json:"key"`
	KeyIdentifier string `json:"key_identifier"`
	IsCurrent     bool   `json:"is_current"`
}

// KeyCache stores the most recently fetched public key set.
type KeyCache interface {
	GetKeys(ctx context.Context) ([]PublicKey, bool)
	SetKeys(ctx context.Context, keys []PublicKey, ttl time.Duration) error
	Close() error
}

// ModelCatalog resolves models against the external model catalog.
type ModelCatalog interface {
	ListModels(ctx context.Context) ([]ModelDescriptor, error)
	GetModel(ctx context.Context, name string) (ModelDescriptor, error)
	GetModelSchema(ctx context.Context, name string) (ModelSchema, error)
}

// MetricsCollector interface
type MetricsCollector interface {
	RecordRequest(outcome string, duration time.Duration)
	RecordToolSelected(tool string)
	RecordStreamChunk()
	RecordKeyCacheHit()
	RecordKeyCacheMiss()
	RecordUpstreamCall(target string, duration time.Duration, err error)
}

// NopLogger empty logger implementation
type NopLogger struct{}

func (*NopLogger) Debug(format string, args ...any) {}
func (*NopLogger) Info(format string, args ...any)  {}
func (*NopLogger) Warn(format string, args ...any)  {}
func (*NopLogger) Error(format string, args ...any) {}
func (*NopLogger) Fatal(format string, args ...any) {}

// NopMetrics empty metrics collector implementation
type NopMetrics struct{}

func (*NopMetrics) RecordRequest(outcome string, duration time.Duration)                {}
func (*NopMetrics) RecordToolSelected(tool string)                                      {}
func (*NopMetrics) RecordStreamChunk()                                                  {}
func (*NopMetrics) RecordKeyCacheHit()                                                  {}
func (*NopMetrics) RecordKeyCacheMiss()                                                 {}
func (*NopMetrics) RecordUpstreamCall(target string, duration time.Duration, err error) {}
