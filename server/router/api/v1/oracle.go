package v1

import (
	"context"

	"github.com/pkg/errors"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/policydesk/policydesk/server/profile"
)

// llmOracle implements Oracle over an OpenAI-compatible chat endpoint with
// native function calling, via langchaingo.
type llmOracle struct {
	client *openai.LLM
}

// NewLLMOracle builds the production oracle from the profile's LLM settings.
func NewLLMOracle(p *profile.Profile) (Oracle, error) {
	client, err := openai.New(
		openai.WithToken(p.LLMAPIKey),
		openai.WithBaseURL(p.LLMBaseURL),
		openai.WithModel(p.ChatModel),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create LLM client")
	}
	return &llmOracle{client: client}, nil
}

func (o *llmOracle) Decide(ctx context.Context, transcript []Message, tools []ToolDefinition) (*Decision, error) {
	content := make([]llms.MessageContent, 0, len(transcript))
	for _, m := range transcript {
		switch m.Role {
		case roleSystem:
			content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, m.Content))
		case roleUser:
			content = append(content, llms.TextParts(llms.ChatMessageTypeHuman, m.Content))
		case roleAssistant:
			if len(m.ToolCalls) == 0 {
				content = append(content, llms.TextParts(llms.ChatMessageTypeAI, m.Content))
				continue
			}
			mc := llms.MessageContent{Role: llms.ChatMessageTypeAI}
			if m.Content != "" {
				mc.Parts = append(mc.Parts, llms.TextContent{Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				mc.Parts = append(mc.Parts, llms.ToolCall{
					ID:   tc.ID,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}
			content = append(content, mc)
		case roleTool:
			content = append(content, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{llms.ToolCallResponse{
					ToolCallID: m.ToolCallID,
					Name:       m.ToolName,
					Content:    m.Content,
				}},
			})
		}
	}

	llmTools := make([]llms.Tool, 0, len(tools))
	for _, def := range tools {
		llmTools = append(llmTools, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		})
	}

	resp, err := o.client.GenerateContent(ctx, content, llms.WithTools(llmTools))
	if err != nil {
		return nil, errors.Wrap(err, "LLM request failed")
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("empty response from LLM")
	}

	choice := resp.Choices[0]
	decision := &Decision{Answer: choice.Content}
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil {
			continue
		}
		decision.ToolCalls = append(decision.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.FunctionCall.Name,
			Arguments: tc.FunctionCall.Arguments,
		})
	}
	return decision, nil
}
