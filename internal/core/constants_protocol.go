package core

// Default config constants
const (
	DefaultPort             = "3000"
	DefaultGinMode          = "release"
	DefaultToolCallingModel = "gpt-4o"
	DefaultModel            = "gpt-4o-mini"
)

// Default upstream endpoints
const (
	DefaultKeysURL            = "https://api.github.com/meta/public_keys/copilot_api"
	DefaultToolCallingBaseURL = "https://api.githubcopilot.com"
	DefaultCompletionBaseURL  = "https://models.inference.ai.azure.com"
	DefaultCatalogBaseURL     = "https://modelcatalog.azure-api.net/v1"
	DefaultMarketplaceURL     = "https://github.com/marketplace/models"
)

// Content type and header constants
const (
	ContentTypeEventStream = "text/event-stream"
	ContentTypeJSON        = "application/json"
	CacheControlNoCache    = "no-cache"
	ConnectionKeepAlive    = "keep-alive"
	HeaderContentType      = "Content-Type"
	HeaderAuthorization    = "Authorization"
	HeaderAccept           = "Accept"
	HeaderCacheControl     = "Cache-Control"
	HeaderConnection       = "Connection"
	AuthBearerPrefix       = "Bearer "
)

// Calling platform headers
const (
	HeaderSignature = "Github-Public-Key-Signature"
	HeaderKeyID     = "Github-Public-Key-Identifier"
	HeaderToken     = "X-Github-Token"
)

// SSE stream constants
const (
	StreamChunkDoneMessage = "[DONE]"
	StreamChunkPrefix      = "data: "
	StreamEventPrefix      = "event: "
	ReferencesEventName    = "copilot_references"
)

// Role constants
const (
	RoleAssistant = "assistant"
	RoleUser      = "user"
	RoleSystem    = "system"
)

// Reference type constants
const (
	ReferenceTypeSelection = "client.selection"
	ReferenceTypeFile      = "client.file"
	ReferenceTypeModel     = "models.reference"
)

// ToolChoiceAuto lets the tool-calling provider pick zero or one tool.
const ToolChoiceAuto = "auto"
