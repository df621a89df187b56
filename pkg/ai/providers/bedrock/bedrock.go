// Package bedrock implements ai.LanguageModel for Amazon Bedrock's
// Converse and ConverseStream APIs.
//
// Authentication is handled by the AWS SDK v2 credential chain:
//  1. AWS_ACCESS_KEY_ID + AWS_SECRET_ACCESS_KEY (+ optional AWS_SESSION_TOKEN)
//  2. AWS_PROFILE, a named profile from ~/.aws/credentials
//  3. ~/.aws/credentials default profile
//  4. IAM instance roles / ECS task roles / IRSA
package bedrock

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brdoc "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/google/uuid"

	"github.com/saribmah/ai-sdk/pkg/ai"
)

// Model is an Amazon Bedrock language model.
type Model struct {
	modelID string
	region  string
	profile string
}

// New creates a Bedrock model. Region and profile may be empty; the AWS
// config chain supplies defaults.
func New(modelID, region, profile string) *Model {
	return &Model{modelID: modelID, region: region, profile: profile}
}

func (m *Model) Provider() string { return "bedrock" }
func (m *Model) ModelID() string  { return m.modelID }

func (m *Model) newClient(ctx context.Context) (*bedrockruntime.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if m.region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(m.region))
	}
	if m.profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(m.profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	return bedrockruntime.NewFromConfig(cfg), nil
}

// ---------------------------------------------------------------------------
// Generate
// ---------------------------------------------------------------------------

func (m *Model) Generate(ctx context.Context, opts ai.CallOptions) (*ai.Response, error) {
	client, err := m.newClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("bedrock: build client: %w", err)
	}

	input, warnings, err := m.buildInput(opts)
	if err != nil {
		return nil, fmt.Errorf("bedrock: build input: %w", err)
	}

	out, err := client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId:         input.ModelId,
		System:          input.System,
		Messages:        input.Messages,
		InferenceConfig: input.InferenceConfig,
		ToolConfig:      input.ToolConfig,
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock: Converse: %w", err)
	}

	resp := &ai.Response{
		FinishReason: mapStopReason(out.StopReason),
		Warnings:     warnings,
		Response: ai.ResponseMetadata{
			ID:        uuid.NewString(),
			ModelID:   m.modelID,
			Timestamp: time.Now().UnixMilli(),
		},
	}
	if out.Usage != nil {
		resp.Usage = convertUsage(out.Usage)
	}
	if msg, ok := out.Output.(*types.ConverseOutputMemberMessage); ok {
		resp.Content = convertOutputBlocks(msg.Value.Content)
	}
	return resp, nil
}

func convertOutputBlocks(blocks []types.ContentBlock) []ai.ContentBlock {
	var out []ai.ContentBlock
	for _, b := range blocks {
		switch blk := b.(type) {
		case *types.ContentBlockMemberText:
			out = append(out, ai.TextContent{Type: "text", Text: blk.Value})
		case *types.ContentBlockMemberReasoningContent:
			if rc, ok := blk.Value.(*types.ReasoningContentBlockMemberReasoningText); ok {
				out = append(out, ai.ReasoningContent{
					Type: "reasoning",
					Text: aws.ToString(rc.Value.Text),
				})
			}
		case *types.ContentBlockMemberToolUse:
			tu := blk.Value
			inputJSON, err := tu.Input.MarshalSmithyDocument()
			if err != nil {
				inputJSON = []byte("{}")
			}
			out = append(out, ai.ToolCallContent{
				Type:       "tool_call",
				ToolCallID: aws.ToString(tu.ToolUseId),
				ToolName:   aws.ToString(tu.Name),
				Input:      inputJSON,
			})
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Stream
// ---------------------------------------------------------------------------

func (m *Model) Stream(ctx context.Context, opts ai.CallOptions) (*ai.StreamResponse, error) {
	client, err := m.newClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("bedrock: build client: %w", err)
	}

	input, warnings, err := m.buildInput(opts)
	if err != nil {
		return nil, fmt.Errorf("bedrock: build input: %w", err)
	}

	resp, err := client.ConverseStream(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("bedrock: ConverseStream: %w", err)
	}

	reqBody, _ := json.Marshal(map[string]any{"model_id": m.modelID})
	parts := make(chan ai.StreamPart, 64)

	go m.pump(ctx, resp, opts, warnings, parts)

	return &ai.StreamResponse{
		Parts:   parts,
		Request: ai.RequestMetadata{Body: reqBody},
	}, nil
}

// pump translates Bedrock stream events into stream parts. It always
// closes the parts channel, including on cancellation.
func (m *Model) pump(
	ctx context.Context,
	resp *bedrockruntime.ConverseStreamOutput,
	opts ai.CallOptions,
	warnings []ai.CallWarning,
	parts chan<- ai.StreamPart,
) {
	defer close(parts)

	send := func(p ai.StreamPart) bool {
		select {
		case parts <- p:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if !send(ai.StreamPart{Type: ai.StreamPartStreamStart, Warnings: warnings}) {
		return
	}
	if !send(ai.StreamPart{Type: ai.StreamPartResponseMetadata, Response: &ai.ResponseMetadata{
		ID:        uuid.NewString(),
		ModelID:   m.modelID,
		Timestamp: time.Now().UnixMilli(),
	}}) {
		return
	}

	// blockKind remembers what each Bedrock content block index opened as.
	type blockState struct {
		kind     ai.StreamPartType // text-start, reasoning-start or tool-input-start
		toolID   string
		toolName string
		args     strings.Builder
	}
	blocks := map[int32]*blockState{}
	spanID := func(idx int32) string { return strconv.Itoa(int(idx)) }

	finishReason := ai.FinishReasonUnknown
	var usage ai.Usage

	stream := resp.GetStream()
	defer stream.Close()

	for event := range stream.Events() {
		if opts.IncludeRawChunks {
			if raw, err := json.Marshal(event); err == nil {
				if !send(ai.StreamPart{Type: ai.StreamPartRaw, Raw: raw}) {
					return
				}
			}
		}

		switch ev := event.(type) {
		case *types.ConverseStreamOutputMemberContentBlockStart:
			idx := aws.ToInt32(ev.Value.ContentBlockIndex)
			switch s := ev.Value.Start.(type) {
			case *types.ContentBlockStartMemberToolUse:
				st := &blockState{
					kind:     ai.StreamPartToolInputStart,
					toolID:   aws.ToString(s.Value.ToolUseId),
					toolName: aws.ToString(s.Value.Name),
				}
				blocks[idx] = st
				if !send(ai.StreamPart{
					Type:     ai.StreamPartToolInputStart,
					ID:       st.toolID,
					ToolName: st.toolName,
				}) {
					return
				}
			default:
				blocks[idx] = &blockState{kind: ai.StreamPartTextStart}
				if !send(ai.StreamPart{Type: ai.StreamPartTextStart, ID: spanID(idx)}) {
					return
				}
			}

		case *types.ConverseStreamOutputMemberContentBlockDelta:
			idx := aws.ToInt32(ev.Value.ContentBlockIndex)
			st, ok := blocks[idx]
			if !ok {
				// Bedrock omits ContentBlockStart for plain text blocks.
				st = &blockState{kind: ai.StreamPartTextStart}
				blocks[idx] = st
				if _, isReasoning := ev.Value.Delta.(*types.ContentBlockDeltaMemberReasoningContent); isReasoning {
					st.kind = ai.StreamPartReasoningStart
					if !send(ai.StreamPart{Type: ai.StreamPartReasoningStart, ID: spanID(idx)}) {
						return
					}
				} else if !send(ai.StreamPart{Type: ai.StreamPartTextStart, ID: spanID(idx)}) {
					return
				}
			}
			switch d := ev.Value.Delta.(type) {
			case *types.ContentBlockDeltaMemberText:
				if !send(ai.StreamPart{Type: ai.StreamPartTextDelta, ID: spanID(idx), Delta: d.Value}) {
					return
				}
			case *types.ContentBlockDeltaMemberReasoningContent:
				if rt, ok := d.Value.(*types.ReasoningContentBlockDeltaMemberText); ok {
					if !send(ai.StreamPart{Type: ai.StreamPartReasoningDelta, ID: spanID(idx), Delta: rt.Value}) {
						return
					}
				}
			case *types.ContentBlockDeltaMemberToolUse:
				chunk := aws.ToString(d.Value.Input)
				st.args.WriteString(chunk)
				if !send(ai.StreamPart{Type: ai.StreamPartToolInputDelta, ID: st.toolID, Delta: chunk}) {
					return
				}
			}

		case *types.ConverseStreamOutputMemberContentBlockStop:
			idx := aws.ToInt32(ev.Value.ContentBlockIndex)
			st, ok := blocks[idx]
			if !ok {
				continue
			}
			switch st.kind {
			case ai.StreamPartToolInputStart:
				if !send(ai.StreamPart{Type: ai.StreamPartToolInputEnd, ID: st.toolID}) {
					return
				}
				if !send(ai.StreamPart{Type: ai.StreamPartToolCall, ToolCall: &ai.ToolCallPart{
					ToolCallID: st.toolID,
					ToolName:   st.toolName,
					Input:      st.args.String(),
				}}) {
					return
				}
			case ai.StreamPartReasoningStart:
				if !send(ai.StreamPart{Type: ai.StreamPartReasoningEnd, ID: spanID(idx)}) {
					return
				}
			default:
				if !send(ai.StreamPart{Type: ai.StreamPartTextEnd, ID: spanID(idx)}) {
					return
				}
			}
			delete(blocks, idx)

		case *types.ConverseStreamOutputMemberMessageStop:
			finishReason = mapStopReason(ev.Value.StopReason)

		case *types.ConverseStreamOutputMemberMetadata:
			if ev.Value.Usage != nil {
				usage = convertUsage(ev.Value.Usage)
			}
		}
	}

	if err := stream.Err(); err != nil {
		send(ai.StreamPart{Type: ai.StreamPartError, Err: fmt.Errorf("bedrock: stream error: %w", err)})
		return
	}

	send(ai.StreamPart{
		Type:         ai.StreamPartFinish,
		FinishReason: finishReason,
		Usage:        usage,
	})
}

// ---------------------------------------------------------------------------
// Input building
// ---------------------------------------------------------------------------

func (m *Model) buildInput(opts ai.CallOptions) (*bedrockruntime.ConverseStreamInput, []ai.CallWarning, error) {
	input := &bedrockruntime.ConverseStreamInput{
		ModelId: aws.String(m.modelID),
	}
	var warnings []ai.CallWarning

	if opts.System != "" {
		input.System = []types.SystemContentBlock{
			&types.SystemContentBlockMemberText{Value: opts.System},
		}
	}

	ic := &types.InferenceConfiguration{}
	if opts.MaxOutputTokens > 0 {
		v := int32(opts.MaxOutputTokens)
		ic.MaxTokens = &v
	}
	if opts.Temperature != nil {
		v := float32(*opts.Temperature)
		ic.Temperature = &v
	}
	if opts.TopP != nil {
		v := float32(*opts.TopP)
		ic.TopP = &v
	}
	if len(opts.StopSequences) > 0 {
		ic.StopSequences = opts.StopSequences
	}
	input.InferenceConfig = ic

	warnings = appendUnsupported(warnings, opts.TopK != nil, "topK")
	warnings = appendUnsupported(warnings, opts.PresencePenalty != nil, "presencePenalty")
	warnings = appendUnsupported(warnings, opts.FrequencyPenalty != nil, "frequencyPenalty")
	warnings = appendUnsupported(warnings, opts.Seed != nil, "seed")

	msgs, err := convertMessages(opts.Messages)
	if err != nil {
		return nil, nil, err
	}
	input.Messages = msgs

	if len(opts.Tools) > 0 {
		toolList := make([]types.Tool, 0, len(opts.Tools))
		for _, t := range opts.Tools {
			var schema map[string]any
			_ = json.Unmarshal(t.InputSchema, &schema)
			toolList = append(toolList, &types.ToolMemberToolSpec{
				Value: types.ToolSpecification{
					Name:        aws.String(t.Name),
					Description: aws.String(t.Description),
					InputSchema: &types.ToolInputSchemaMemberJson{
						Value: brdoc.NewLazyDocument(schema),
					},
				},
			})
		}
		input.ToolConfig = &types.ToolConfiguration{
			Tools:      toolList,
			ToolChoice: convertToolChoice(opts.ToolChoice),
		}
	}

	return input, warnings, nil
}

func appendUnsupported(ws []ai.CallWarning, set bool, setting string) []ai.CallWarning {
	if !set {
		return ws
	}
	return append(ws, ai.CallWarning{Type: "unsupported-setting", Setting: setting})
}

func convertToolChoice(tc *ai.ToolChoice) types.ToolChoice {
	if tc == nil {
		return &types.ToolChoiceMemberAuto{Value: types.AutoToolChoice{}}
	}
	switch tc.Mode {
	case "required":
		return &types.ToolChoiceMemberAny{Value: types.AnyToolChoice{}}
	case "tool":
		return &types.ToolChoiceMemberTool{Value: types.SpecificToolChoice{
			Name: aws.String(tc.ToolName),
		}}
	default:
		return &types.ToolChoiceMemberAuto{Value: types.AutoToolChoice{}}
	}
}

// ---------------------------------------------------------------------------
// Message conversion
// ---------------------------------------------------------------------------

func convertMessages(msgs []ai.Message) ([]types.Message, error) {
	var out []types.Message
	for _, m := range msgs {
		switch msg := m.(type) {
		case ai.UserMessage:
			var blocks []types.ContentBlock
			for _, c := range msg.Content {
				switch blk := c.(type) {
				case ai.TextContent:
					blocks = append(blocks, &types.ContentBlockMemberText{Value: blk.Text})
				case ai.FileContent:
					data, err := base64.StdEncoding.DecodeString(blk.Data)
					if err != nil {
						return nil, fmt.Errorf("decode file content: %w", err)
					}
					blocks = append(blocks, &types.ContentBlockMemberImage{
						Value: types.ImageBlock{
							Format: imageFormat(blk.MediaType),
							Source: &types.ImageSourceMemberBytes{Value: data},
						},
					})
				}
			}
			out = append(out, types.Message{Role: types.ConversationRoleUser, Content: blocks})

		case ai.AssistantMessage:
			var blocks []types.ContentBlock
			for _, c := range msg.Content {
				switch blk := c.(type) {
				case ai.TextContent:
					if strings.TrimSpace(blk.Text) != "" {
						blocks = append(blocks, &types.ContentBlockMemberText{Value: blk.Text})
					}
				case ai.ToolCallContent:
					var inputMap map[string]any
					_ = json.Unmarshal(blk.Input, &inputMap)
					blocks = append(blocks, &types.ContentBlockMemberToolUse{
						Value: types.ToolUseBlock{
							ToolUseId: aws.String(blk.ToolCallID),
							Name:      aws.String(blk.ToolName),
							Input:     brdoc.NewLazyDocument(inputMap),
						},
					})
				}
			}
			if len(blocks) == 0 {
				continue
			}
			out = append(out, types.Message{Role: types.ConversationRoleAssistant, Content: blocks})

		case ai.ToolMessage:
			for _, c := range msg.Content {
				res, ok := c.(ai.ToolResultContent)
				if !ok {
					continue
				}
				status := types.ToolResultStatusSuccess
				if res.IsError {
					status = types.ToolResultStatusError
				}
				block := &types.ContentBlockMemberToolResult{
					Value: types.ToolResultBlock{
						ToolUseId: aws.String(res.ToolCallID),
						Status:    status,
						Content: []types.ToolResultContentBlock{
							&types.ToolResultContentBlockMemberText{Value: string(res.Output)},
						},
					},
				}
				// Bedrock requires tool results inside a user message.
				if len(out) > 0 && out[len(out)-1].Role == types.ConversationRoleUser {
					out[len(out)-1].Content = append(out[len(out)-1].Content, block)
				} else {
					out = append(out, types.Message{
						Role:    types.ConversationRoleUser,
						Content: []types.ContentBlock{block},
					})
				}
			}
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func mapStopReason(r types.StopReason) ai.FinishReason {
	switch r {
	case types.StopReasonEndTurn, types.StopReasonStopSequence:
		return ai.FinishReasonStop
	case types.StopReasonMaxTokens:
		return ai.FinishReasonLength
	case types.StopReasonToolUse:
		return ai.FinishReasonToolCalls
	case types.StopReasonContentFiltered, types.StopReasonGuardrailIntervened:
		return ai.FinishReasonContentFilter
	default:
		return ai.FinishReasonUnknown
	}
}

func convertUsage(u *types.TokenUsage) ai.Usage {
	in := int(aws.ToInt32(u.InputTokens))
	out := int(aws.ToInt32(u.OutputTokens))
	usage := ai.Usage{
		InputTokens:  in,
		OutputTokens: out,
		TotalTokens:  in + out,
	}
	if u.CacheReadInputTokens != nil {
		usage.CachedInputTokens = int(aws.ToInt32(u.CacheReadInputTokens))
	}
	return usage
}

func imageFormat(mediaType string) types.ImageFormat {
	switch mediaType {
	case "image/jpeg":
		return types.ImageFormatJpeg
	case "image/png":
		return types.ImageFormatPng
	case "image/gif":
		return types.ImageFormatGif
	case "image/webp":
		return types.ImageFormatWebp
	default:
		return types.ImageFormatPng
	}
}
