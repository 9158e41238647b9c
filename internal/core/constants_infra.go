package core

import "time"

// HTTP client config constants
const (
	HTTPMaxIdleConns          = 200
	HTTPMaxIdleConnsPerHost   = 50
	HTTPMaxConnsPerHost       = 100
	HTTPIdleConnTimeout       = 90 * time.Second
	HTTPTLSHandshakeTimeout   = 10 * time.Second
	HTTPResponseHeaderTimeout = 30 * time.Second
	HTTPExpectContinueTimeout = 5 * time.Second
	HTTPRequestTimeout        = 5 * time.Minute
)

// Per-call upstream timeouts
const (
	DefaultKeyFetchTimeout = 10 * time.Second
	DefaultCatalogTimeout  = 15 * time.Second
	DefaultToolCallTimeout = 60 * time.Second
)

// Cache config constants
const (
	CacheDefaultCapacity = 1000
	CacheCleanupInterval = 5 * time.Minute
	DefaultKeyCacheTTL   = 1 * time.Hour
	CacheKeyVersion      = "v1"
)

// Request limits
const (
	MaxRequestBodySize  = 10 << 20
	MaxResponseBodySize = 10 * 1024 * 1024
	DefaultRateLimit    = 120
)

// Tool validation constants
const (
	ToolNamePattern  = "^[a-zA-Z0-9_-]{1,64}$"
	SchemaTypeObject = "object"
	SchemaTypeString = "string"
)

// Logging config constants
const (
	MaxDebugFilePathLength = 260
)

// File permission constants
const (
	FilePermissionReadWrite = 0644
)
