package core

import (
	"context"

	"github.com/saribmah/ai-sdk/pkg/ai"
)

// StepRequest describes the upcoming step for the prepare-step hook.
type StepRequest struct {
	StepNumber int
	Steps      []StepResult
	Messages   []ai.Message
	Model      ai.LanguageModel
}

// StepOverrides adjusts the upcoming step. Zero fields leave the
// corresponding setting unchanged.
type StepOverrides struct {
	Model       ai.LanguageModel
	System      *string
	Messages    []ai.Message
	ToolChoice  *ai.ToolChoice
	ActiveTools []string
}

// PrepareStepFunc runs before each model call. Returning nil keeps the
// step as planned.
type PrepareStepFunc func(ctx context.Context, req StepRequest) *StepOverrides
