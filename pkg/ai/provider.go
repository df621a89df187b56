package ai

import "context"

// CallOptions is the full configuration for one model call. Settings that a
// provider does not support must be reported as CallWarnings, not errors.
type CallOptions struct {
	System   string
	Messages []Message

	Tools      []ToolDefinition
	ToolChoice *ToolChoice

	MaxOutputTokens  int
	Temperature      *float64
	TopP             *float64
	TopK             *int
	PresencePenalty  *float64
	FrequencyPenalty *float64
	StopSequences    []string
	Seed             *int

	Headers         map[string]string
	ProviderOptions ProviderMetadata

	// IncludeRawChunks asks the provider to emit StreamPartRaw events
	// carrying the untranslated wire payloads.
	IncludeRawChunks bool
}

// Response is the result of a non-streaming model call.
type Response struct {
	Content      []ContentBlock
	FinishReason FinishReason
	Usage        Usage

	Warnings         []CallWarning
	Request          RequestMetadata
	Response         ResponseMetadata
	ProviderMetadata ProviderMetadata
}

// StreamResponse is the result of starting a streaming model call.
//
// Parts is closed by the producer when the stream ends. Producers must
// close it (and not panic) even when ctx is cancelled, so consumers can
// always range over it safely.
type StreamResponse struct {
	Parts   <-chan StreamPart
	Request RequestMetadata
}

// LanguageModel is implemented by provider adapters.
type LanguageModel interface {
	// Provider returns the provider identifier, e.g. "bedrock".
	Provider() string

	// ModelID returns the model identifier this instance calls.
	ModelID() string

	// Generate performs a blocking call and returns the complete response.
	Generate(ctx context.Context, opts CallOptions) (*Response, error)

	// Stream starts a streaming call. An error is returned only when the
	// call cannot be established; failures after that surface as
	// StreamPartError parts on the channel.
	Stream(ctx context.Context, opts CallOptions) (*StreamResponse, error)
}
