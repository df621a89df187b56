package core

import (
	"math"

	"github.com/saribmah/ai-sdk/pkg/ai"
)

// CallSettings are the model call parameters shared by streaming and
// non-streaming generation. Nil pointer fields are left to provider
// defaults.
type CallSettings struct {
	MaxOutputTokens  *int
	Temperature      *float64
	TopP             *float64
	TopK             *int
	PresencePenalty  *float64
	FrequencyPenalty *float64
	StopSequences    []string
	Seed             *int
	Headers          map[string]string
	MaxRetries       *int
}

// prepareCallSettings validates the settings before any provider call.
// Validation errors surface synchronously, never on the stream.
func prepareCallSettings(s CallSettings) (CallSettings, error) {
	if s.MaxOutputTokens != nil && *s.MaxOutputTokens < 1 {
		return s, &InvalidArgumentError{
			Parameter: "maxOutputTokens",
			Value:     *s.MaxOutputTokens,
			Message:   "must be at least 1",
		}
	}
	if s.Temperature != nil && !isFinite(*s.Temperature) {
		return s, &InvalidArgumentError{
			Parameter: "temperature",
			Value:     *s.Temperature,
			Message:   "must be a finite number",
		}
	}
	if s.TopP != nil {
		if !isFinite(*s.TopP) || *s.TopP < 0 || *s.TopP > 1 {
			return s, &InvalidArgumentError{
				Parameter: "topP",
				Value:     *s.TopP,
				Message:   "must be between 0 and 1",
			}
		}
	}
	if s.TopK != nil && *s.TopK < 1 {
		return s, &InvalidArgumentError{
			Parameter: "topK",
			Value:     *s.TopK,
			Message:   "must be at least 1",
		}
	}
	if s.PresencePenalty != nil && !isFinite(*s.PresencePenalty) {
		return s, &InvalidArgumentError{
			Parameter: "presencePenalty",
			Value:     *s.PresencePenalty,
			Message:   "must be a finite number",
		}
	}
	if s.FrequencyPenalty != nil && !isFinite(*s.FrequencyPenalty) {
		return s, &InvalidArgumentError{
			Parameter: "frequencyPenalty",
			Value:     *s.FrequencyPenalty,
			Message:   "must be a finite number",
		}
	}
	if s.MaxRetries != nil && *s.MaxRetries < 0 {
		return s, &InvalidArgumentError{
			Parameter: "maxRetries",
			Value:     *s.MaxRetries,
			Message:   "must not be negative",
		}
	}
	return s, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// applySettings copies the validated settings onto provider call options.
func applySettings(opts *ai.CallOptions, s CallSettings) {
	if s.MaxOutputTokens != nil {
		opts.MaxOutputTokens = *s.MaxOutputTokens
	}
	opts.Temperature = s.Temperature
	opts.TopP = s.TopP
	opts.TopK = s.TopK
	opts.PresencePenalty = s.PresencePenalty
	opts.FrequencyPenalty = s.FrequencyPenalty
	opts.StopSequences = s.StopSequences
	opts.Seed = s.Seed
	opts.Headers = s.Headers
}
