package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"modelsagent/internal/core"
	"modelsagent/internal/util"
)

// ServerConfig server configuration
type ServerConfig struct {
	Port               string
	GinMode            string
	RateLimit          int
	Endpoints          EndpointSettings
	Models             ModelSettings
	Timeouts           TimeoutSettings
	KeyCacheTTL        time.Duration
	PromptsPath        string
	Prompts            core.PromptSet
	HTTPClientSettings HTTPClientSettings
	KeyCache           core.KeyCache
	Logger             core.Logger
}

// EndpointSettings are the base URLs of the external collaborators.
type EndpointSettings struct {
	KeysURL            string
	ToolCallingBaseURL string
	CompletionBaseURL  string
	CatalogBaseURL     string
	MarketplaceURL     string
}

// ModelSettings names the models used for internal calls.
type ModelSettings struct {
	ToolCalling string
	Default     string
}

// TimeoutSettings bounds every outbound call that is not a completion stream.
type TimeoutSettings struct {
	KeyFetch time.Duration
	Catalog  time.Duration
	ToolCall time.Duration
}

// HTTPClientSettings HTTP client configuration
type HTTPClientSettings struct {
	MaxIdleConns          int
	MaxIdleConnsPerHost   int
	MaxConnsPerHost       int
	IdleConnTimeout       time.Duration
	TLSHandshakeTimeout   time.Duration
	ResponseHeaderTimeout time.Duration
	RequestTimeout        time.Duration
}

// DefaultHTTPClientSettings default HTTP client settings
func DefaultHTTPClientSettings() HTTPClientSettings {
	return HTTPClientSettings{
		MaxIdleConns:          core.HTTPMaxIdleConns,
		MaxIdleConnsPerHost:   core.HTTPMaxIdleConnsPerHost,
		MaxConnsPerHost:       core.HTTPMaxConnsPerHost,
		IdleConnTimeout:       core.HTTPIdleConnTimeout,
		TLSHandshakeTimeout:   core.HTTPTLSHandshakeTimeout,
		ResponseHeaderTimeout: core.HTTPResponseHeaderTimeout,
		RequestTimeout:        core.HTTPRequestTimeout,
	}
}

// DefaultEndpointSettings returns the public endpoints of the calling platform and model services.
func DefaultEndpointSettings() EndpointSettings {
	return EndpointSettings{
		KeysURL:            core.DefaultKeysURL,
		ToolCallingBaseURL: core.DefaultToolCallingBaseURL,
		CompletionBaseURL:  core.DefaultCompletionBaseURL,
		CatalogBaseURL:     core.DefaultCatalogBaseURL,
		MarketplaceURL:     core.DefaultMarketplaceURL,
	}
}

// DefaultTimeoutSettings default per-call timeouts
func DefaultTimeoutSettings() TimeoutSettings {
	return TimeoutSettings{
		KeyFetch: core.DefaultKeyFetchTimeout,
		Catalog:  core.DefaultCatalogTimeout,
		ToolCall: core.DefaultToolCallTimeout,
	}
}

// LoadServerConfigFromEnv loads server config from environment variables
func LoadServerConfigFromEnv(logger core.Logger) (ServerConfig, error) {
	endpoints := EndpointSettings{
		KeysURL:            util.GetEnvWithDefault("KEYS_URL", core.DefaultKeysURL),
		ToolCallingBaseURL: util.GetEnvWithDefault("TOOL_CALLING_BASE_URL", core.DefaultToolCallingBaseURL),
		CompletionBaseURL:  util.GetEnvWithDefault("COMPLETION_BASE_URL", core.DefaultCompletionBaseURL),
		CatalogBaseURL:     util.GetEnvWithDefault("CATALOG_BASE_URL", core.DefaultCatalogBaseURL),
		MarketplaceURL:     util.GetEnvWithDefault("MARKETPLACE_URL", core.DefaultMarketplaceURL),
	}
	if err := endpoints.Validate(); err != nil {
		return ServerConfig{}, err
	}

	promptsPath := os.Getenv("PROMPTS_PATH")
	prompts, err := LoadPrompts(promptsPath)
	if err != nil {
		return ServerConfig{}, err
	}
	if promptsPath != "" {
		logger.Info("Loaded prompt set from %s", promptsPath)
	}

	config := ServerConfig{
		Port:      util.GetEnvWithDefault("PORT", core.DefaultPort),
		GinMode:   util.GetEnvWithDefault("GIN_MODE", core.DefaultGinMode),
		RateLimit: util.GetEnvInt("RATE_LIMIT", core.DefaultRateLimit),
		Endpoints: endpoints,
		Models: ModelSettings{
			ToolCalling: util.GetEnvWithDefault("TOOL_CALLING_MODEL", core.DefaultToolCallingModel),
			Default:     util.GetEnvWithDefault("DEFAULT_MODEL", core.DefaultModel),
		},
		Timeouts: TimeoutSettings{
			KeyFetch: util.GetEnvDuration("KEY_FETCH_TIMEOUT", core.DefaultKeyFetchTimeout),
			Catalog:  util.GetEnvDuration("CATALOG_TIMEOUT", core.DefaultCatalogTimeout),
			ToolCall: util.GetEnvDuration("TOOL_CALL_TIMEOUT", core.DefaultToolCallTimeout),
		},
		KeyCacheTTL:        util.GetEnvDuration("KEY_CACHE_TTL", core.DefaultKeyCacheTTL),
		PromptsPath:        promptsPath,
		Prompts:            prompts,
		HTTPClientSettings: DefaultHTTPClientSettings(),
	}

	logger.Info("Tool calling model: %s, default model: %s", config.Models.ToolCalling, config.Models.Default)
	return config, nil
}

// Validate checks that every endpoint is an absolute http(s) URL.
func (e EndpointSettings) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"KEYS_URL", e.KeysURL},
		{"TOOL_CALLING_BASE_URL", e.ToolCallingBaseURL},
		{"COMPLETION_BASE_URL", e.CompletionBaseURL},
		{"CATALOG_BASE_URL", e.CatalogBaseURL},
		{"MARKETPLACE_URL", e.MarketplaceURL},
	}
	for _, f := range fields {
		u, err := url.Parse(f.value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid %s: %q", f.name, f.value)
		}
	}
	return nil
}

// TrimBase strips the trailing slash of a base URL so paths can be appended.
func TrimBase(base string) string {
	return strings.TrimRight(base, "/")
}
