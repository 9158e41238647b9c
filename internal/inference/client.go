package inference

import (
	"context"
	"net/http"
	"time"

	"modelsagent/internal/convert"
	"modelsagent/internal/core"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/ssestream"
)

// ClientConfig configures one OpenAI-compatible endpoint.
type ClientConfig struct {
	// Name labels upstream metrics and errors, e.g. "tool calling".
	Name       string
	BaseURL    string
	HTTPClient *http.Client
	// Timeout bounds non-streaming calls. Zero means no bound beyond ctx.
	Timeout time.Duration
	Metrics core.MetricsCollector
}

// Client talks to an OpenAI-compatible chat completions endpoint. The caller's
// token is sent per call, so one Client serves every request.
type Client struct {
	api     openai.Client
	name    string
	timeout time.Duration
	metrics core.MetricsCollector
}

// NewClient creates a client for cfg.BaseURL.
func NewClient(cfg ClientConfig) *Client {
	opts := []option.RequestOption{
		option.WithBaseURL(cfg.BaseURL),
		option.WithMaxRetries(0),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = &core.NopMetrics{}
	}
	return &Client{
		api:     openai.NewClient(opts...),
		name:    cfg.Name,
		timeout: cfg.Timeout,
		metrics: metrics,
	}
}

// SelectTool asks model whether one of defs should handle the conversation.
// A nil call with a nil error means the model chose no tool.
func (c *Client) SelectTool(ctx context.Context, token, model string, messages []core.ChatMessage, defs []core.ToolDefinition) (*core.FunctionCall, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: convert.ToOpenAIMessages(messages),
	}
	if tools := convert.ToOpenAITools(defs); len(tools) > 0 {
		params.Tools = tools
		params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String(core.ToolChoiceAuto)}
	}

	start := time.Now()
	resp, err := c.api.Chat.Completions.New(ctx, params, option.WithAPIKey(token))
	c.metrics.RecordUpstreamCall(c.name, time.Since(start), err)
	if err != nil {
		return nil, core.NewUpstreamError(c.name, err)
	}

	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		return nil, nil
	}
	fn := resp.Choices[0].Message.ToolCalls[0].Function
	return &core.FunctionCall{Name: fn.Name, Arguments: fn.Arguments}, nil
}

// Stream starts a streaming completion. The first chunk is read before
// Stream returns, so a rejected request fails here rather than mid-stream.
func (c *Client) Stream(ctx context.Context, token, model string, messages []core.ChatMessage) (*ChunkStream, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: convert.ToOpenAIMessages(messages),
	}

	start := time.Now()
	s := c.api.Chat.Completions.NewStreaming(ctx, params, option.WithAPIKey(token))
	cs := &ChunkStream{stream: s, metrics: c.metrics}
	cs.primed = s.Next()
	if !cs.primed {
		if err := s.Err(); err != nil {
			c.metrics.RecordUpstreamCall(c.name, time.Since(start), err)
			_ = s.Close()
			return nil, core.NewUpstreamError(c.name, err)
		}
	}
	c.metrics.RecordUpstreamCall(c.name, time.Since(start), nil)
	return cs, nil
}

// ChunkStream yields the raw JSON of each completion chunk in upstream order.
type ChunkStream struct {
	stream  *ssestream.Stream[openai.ChatCompletionChunk]
	metrics core.MetricsCollector
	primed  bool
	started bool
}

// Next advances to the next chunk.
func (s *ChunkStream) Next() bool {
	if !s.started {
		s.started = true
		if s.primed {
			s.metrics.RecordStreamChunk()
			return true
		}
		return false
	}
	if s.stream.Next() {
		s.metrics.RecordStreamChunk()
		return true
	}
	return false
}

// Current returns the current chunk exactly as the upstream sent it.
func (s *ChunkStream) Current() []byte {
	return []byte(s.stream.Current().RawJSON())
}

func (s *ChunkStream) Err() error {
	if err := s.stream.Err(); err != nil {
		return core.NewUpstreamError("completion stream", err)
	}
	return nil
}

// Close releases the upstream connection.
func (s *ChunkStream) Close() error {
	return s.stream.Close()
}
