package llm

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"github.com/sashabaranov/go-openai"

	"github.com/jackdwave/ai-chatbot/core"
)

// OpenAILLMService implements the chat LLMService interface using OpenAI
// streaming chat completions.
type OpenAILLMService struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	streaming   bool
}

// Config holds the configuration for the OpenAI service
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32

	// NoStreaming switches to single-shot completions. Text then arrives as
	// one delta instead of token-by-token.
	NoStreaming bool
}

// NewOpenAILLMService creates a new instance of OpenAILLMService
func NewOpenAILLMService(config Config) (*OpenAILLMService, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	model := config.Model
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAILLMService{
		client:      openai.NewClient(config.APIKey),
		model:       model,
		maxTokens:   config.MaxTokens,
		temperature: config.Temperature,
		streaming:   !config.NoStreaming,
	}, nil
}

// RunCompletion streams one completion. Text deltas go to outChan as they
// arrive; tool invocations are accumulated across chunks and sent to
// toolInvocationChan once complete. Returns after the model finished the
// response or the stream failed.
func (s *OpenAILLMService) RunCompletion(
	ctx context.Context,
	lctx core.LLMContext,
	outChan chan<- string,
	toolInvocationChan chan<- core.LLMToolCall,
) error {
	req := openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    s.convertMessages(lctx),
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
		Stream:      s.streaming,
	}

	if len(lctx.Tools) > 0 {
		tools, err := s.convertTools(lctx.Tools)
		if err != nil {
			return fmt.Errorf("failed to convert tools: %w", err)
		}
		req.Tools = tools
	}

	if !s.streaming {
		return s.runCompletion(ctx, req, outChan, toolInvocationChan)
	}

	stream, err := s.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to create completion stream: %w", err)
	}
	defer stream.Close()

	// OpenAI streams tool calls in chunks keyed by index; accumulate the
	// name and argument fragments until the finish reason flushes them.
	toolCallBuilder := make(map[int]*openai.ToolCall)

	flush := func() error {
		for _, toolCall := range toolCallBuilder {
			if toolCall.Function.Name == "" {
				continue
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case toolInvocationChan <- s.convertToolCall(*toolCall):
			}
		}
		toolCallBuilder = make(map[int]*openai.ToolCall)
		return nil
	}

	for {
		response, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return flush()
		}
		if err != nil {
			return fmt.Errorf("completion stream failed: %w", err)
		}
		if len(response.Choices) == 0 {
			continue
		}
		choice := response.Choices[0]

		if choice.Delta.Content != "" {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case outChan <- choice.Delta.Content:
			}
		}

		for _, toolCall := range choice.Delta.ToolCalls {
			if toolCall.Index == nil {
				continue
			}
			idx := *toolCall.Index

			if _, exists := toolCallBuilder[idx]; !exists {
				toolCallBuilder[idx] = &openai.ToolCall{
					Index:    toolCall.Index,
					ID:       toolCall.ID,
					Type:     toolCall.Type,
					Function: openai.FunctionCall{},
				}
			}
			if toolCall.Function.Name != "" {
				toolCallBuilder[idx].Function.Name = toolCall.Function.Name
			}
			if toolCall.Function.Arguments != "" {
				toolCallBuilder[idx].Function.Arguments += toolCall.Function.Arguments
			}
			if toolCall.ID != "" {
				toolCallBuilder[idx].ID = toolCall.ID
			}
		}

		if choice.FinishReason == openai.FinishReasonToolCalls {
			if err := flush(); err != nil {
				return err
			}
		}
	}
}

// runCompletion is the single-shot path: one response, content delivered as
// one delta, tool calls forwarded as-is.
func (s *OpenAILLMService) runCompletion(
	ctx context.Context,
	req openai.ChatCompletionRequest,
	outChan chan<- string,
	toolInvocationChan chan<- core.LLMToolCall,
) error {
	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to create completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil
	}
	choice := resp.Choices[0]

	if choice.Message.Content != "" {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case outChan <- choice.Message.Content:
		}
	}
	for _, toolCall := range choice.Message.ToolCalls {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case toolInvocationChan <- s.convertToolCall(toolCall):
		}
	}
	return nil
}

// convertMessages converts the model-visible context to OpenAI messages,
// with the system instruction prepended.
func (s *OpenAILLMService) convertMessages(lctx core.LLMContext) []openai.ChatCompletionMessage {
	openAIMessages := make([]openai.ChatCompletionMessage, 0, len(lctx.Messages)+1)
	if lctx.System != "" {
		openAIMessages = append(openAIMessages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: lctx.System,
		})
	}

	for _, msg := range lctx.Messages {
		openAIMsg := openai.ChatCompletionMessage{
			Role:    s.convertRole(msg.Role),
			Content: msg.Message,
		}

		if len(msg.ToolCalls) > 0 {
			calls := make([]openai.ToolCall, 0, len(msg.ToolCalls))
			for _, tc := range msg.ToolCalls {
				args, err := sonic.MarshalString(tc.Parameters)
				if err != nil {
					args = "{}"
				}
				calls = append(calls, openai.ToolCall{
					ID:   tc.CallID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.ToolId,
						Arguments: args,
					},
				})
			}
			openAIMsg.ToolCalls = calls
		}
		if msg.ToolCallID != "" {
			openAIMsg.ToolCallID = msg.ToolCallID
		}

		openAIMessages = append(openAIMessages, openAIMsg)
	}

	return openAIMessages
}

// convertTools converts core tools to OpenAI function definitions with a
// JSON-schema parameter object.
func (s *OpenAILLMService) convertTools(tools []core.LLMTool) ([]openai.Tool, error) {
	openAITools := make([]openai.Tool, 0, len(tools))

	for _, tool := range tools {
		properties := make(map[string]interface{})
		required := make([]string, 0)

		for _, param := range tool.Parameters {
			prop := map[string]interface{}{
				"type":        s.convertParameterType(param.Type),
				"description": param.Description,
			}
			if param.Example != "" {
				prop["example"] = param.Example
			}
			properties[param.Name] = prop
			if param.Required {
				required = append(required, param.Name)
			}
		}

		parameters := map[string]interface{}{
			"type":       "object",
			"properties": properties,
		}
		if len(required) > 0 {
			parameters["required"] = required
		}

		paramsJSON, err := sonic.Marshal(parameters)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal parameters: %w", err)
		}

		openAITools = append(openAITools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.ToolId,
				Description: tool.Description,
				Parameters:  paramsJSON,
			},
		})
	}

	return openAITools, nil
}

// convertRole converts core role to OpenAI role
func (s *OpenAILLMService) convertRole(role core.LLMMessageRole) string {
	switch role {
	case core.LLMMessageRoleUser:
		return openai.ChatMessageRoleUser
	case core.LLMMessageRoleAssistant:
		return openai.ChatMessageRoleAssistant
	case core.LLMMessageRoleSystem:
		return openai.ChatMessageRoleSystem
	case core.LLMMessageRoleTool:
		return openai.ChatMessageRoleTool
	default:
		return openai.ChatMessageRoleUser
	}
}

// convertParameterType converts core parameter type to JSON schema type
func (s *OpenAILLMService) convertParameterType(paramType core.LLMParamterType) string {
	switch paramType {
	case core.LLMParameterTypeString:
		return "string"
	case core.LLMParameterTypeInteger:
		return "number"
	case core.LLMParameterTypeBoolean:
		return "boolean"
	case core.LLMParameterTypeObject:
		return "object"
	default:
		return "string"
	}
}

// convertToolCall converts an assembled OpenAI tool call to a core tool call
func (s *OpenAILLMService) convertToolCall(toolCall openai.ToolCall) core.LLMToolCall {
	var parameters map[string]interface{}

	if toolCall.Function.Arguments != "" {
		err := sonic.Unmarshal([]byte(toolCall.Function.Arguments), &parameters)
		if err != nil {
			parameters = map[string]interface{}{
				"raw_arguments": toolCall.Function.Arguments,
			}
		}
	}

	return core.LLMToolCall{
		CallID:     toolCall.ID,
		ToolId:     toolCall.Function.Name,
		Parameters: parameters,
	}
}
