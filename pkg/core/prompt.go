package core

import "github.com/saribmah/ai-sdk/pkg/ai"

// Prompt is the user-facing input to a generation call. Exactly one of
// Text or Messages must be set; System is optional either way.
type Prompt struct {
	System   string
	Text     string
	Messages []ai.Message
}

// standardizePrompt validates the prompt and normalizes it to a message
// list plus system text.
func standardizePrompt(p Prompt) (string, []ai.Message, error) {
	switch {
	case p.Text != "" && len(p.Messages) > 0:
		return "", nil, &InvalidArgumentError{
			Parameter: "prompt",
			Value:     p.Text,
			Message:   "text and messages cannot both be set",
		}
	case p.Text != "":
		return p.System, []ai.Message{ai.NewUserTextMessage(p.Text)}, nil
	case len(p.Messages) > 0:
		for i, m := range p.Messages {
			if m == nil {
				return "", nil, &InvalidArgumentError{
					Parameter: "messages",
					Value:     i,
					Message:   "message must not be nil",
				}
			}
		}
		return p.System, p.Messages, nil
	default:
		return "", nil, &InvalidArgumentError{
			Parameter: "prompt",
			Value:     nil,
			Message:   "either text or messages must be set",
		}
	}
}
