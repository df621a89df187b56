package core

import (
	"encoding/json"

	"github.com/saribmah/ai-sdk/pkg/ai"
)

// StepMessages converts a frozen step into the messages appended to the
// conversation before the next step: one assistant message with the
// step's generated content, and, when client tools ran, one tool message
// with their results.
func StepMessages(step StepResult) []ai.Message {
	var assistant []ai.ContentBlock
	var results []ai.ContentBlock

	for _, p := range step.Content {
		switch part := p.(type) {
		case TextPart:
			if part.Text != "" {
				assistant = append(assistant, ai.TextContent{Type: "text", Text: part.Text})
			}
		case ReasoningPart:
			if part.Text != "" {
				assistant = append(assistant, ai.ReasoningContent{Type: "reasoning", Text: part.Text})
			}
		case FilePart:
			assistant = append(assistant, ai.FileContent{
				Type:      "file",
				Data:      part.File.Base64,
				MediaType: part.File.MediaType,
			})
		case ToolCallPart:
			assistant = append(assistant, ai.ToolCallContent{
				Type:             "tool_call",
				ToolCallID:       part.Call.ToolCallID,
				ToolName:         part.Call.ToolName,
				Input:            part.Call.Input,
				ProviderExecuted: part.Call.ProviderExecuted,
			})
		case ToolResultPart:
			// Provider-executed results already live in the provider's
			// conversation state; only client results go back.
			if !part.Result.ProviderExecuted {
				results = append(results, ai.ToolResultContent{
					Type:       "tool_result",
					ToolCallID: part.Result.ToolCallID,
					ToolName:   part.Result.ToolName,
					Output:     part.Result.Output,
				})
			}
		case ToolErrorPart:
			results = append(results, ai.ToolResultContent{
				Type:       "tool_result",
				ToolCallID: part.ToolCallID,
				ToolName:   part.ToolName,
				Output:     errorOutput(part.Err),
				IsError:    true,
			})
		}
	}

	var out []ai.Message
	if len(assistant) > 0 {
		out = append(out, ai.AssistantMessage{Role: ai.RoleAssistant, Content: assistant})
	}
	if len(results) > 0 {
		out = append(out, ai.ToolMessage{Role: ai.RoleTool, Content: results})
	}
	return out
}

func errorOutput(err error) json.RawMessage {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	b, _ := json.Marshal(msg)
	return b
}
