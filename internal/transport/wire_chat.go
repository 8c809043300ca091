package transport

import (
	"encoding/json"

	openai "github.com/sashabaranov/go-openai"
)

// Chat-completions dialect wire types (SSE streaming frames), grounded on
// the OpenAI streaming response shape.

type chatStreamFrame struct {
	Choices []chatStreamChoice `json:"choices"`
	Usage   *chatUsage         `json:"usage,omitempty"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatStreamChoice struct {
	Delta        chatStreamDelta `json:"delta"`
	FinishReason *string         `json:"finish_reason"`
}

type chatStreamDelta struct {
	Role             string           `json:"role,omitempty"`
	Content          string           `json:"content,omitempty"`
	Reasoning        string           `json:"reasoning,omitempty"`
	ReasoningContent string           `json:"reasoning_content,omitempty"`
	ToolCalls        []chatToolCallFr `json:"tool_calls,omitempty"`
}

type chatToolCallFr struct {
	Index    int             `json:"index"`
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Function chatFunctionFr  `json:"function"`
}

type chatFunctionFr struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type chatRequestBody struct {
	Model          string               `json:"model"`
	Messages       []openai.ChatCompletionMessage `json:"messages"`
	Temperature    *float64             `json:"temperature,omitempty"`
	TopP           *float64             `json:"top_p,omitempty"`
	MaxTokens      *int                 `json:"max_tokens,omitempty"`
	Tools          []openai.Tool        `json:"tools,omitempty"`
	ToolChoice     string               `json:"tool_choice,omitempty"`
	Stream         bool                 `json:"stream,omitempty"`
	StreamOptions  *chatStreamOptionsFr `json:"stream_options,omitempty"`
}

type chatStreamOptionsFr struct {
	IncludeUsage bool `json:"include_usage"`
}

// toWireMessages converts internal Messages to the OpenAI SDK message shape.
func toWireMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		wm := openai.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		if len(m.ToolCalls) > 0 {
			wm.ToolCalls = make([]openai.ToolCall, len(m.ToolCalls))
			for j, tc := range m.ToolCalls {
				wm.ToolCalls[j] = openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: string(tc.Arguments),
					},
				}
			}
		}
		out[i] = wm
	}
	return out
}

// toWireTools converts catalog tools to the OpenAI SDK tool shape. Parameters
// passes through as json.RawMessage to preserve deterministic key order,
// which matters for prompt-cache hit rate on the serving side.
func toWireTools(tools []Tool) []openai.Tool {
	if tools == nil {
		return nil
	}
	emptyParams := json.RawMessage(`{"type":"object","properties":{}}`)
	out := make([]openai.Tool, len(tools))
	for i, t := range tools {
		params := t.Parameters
		if len(params) == 0 {
			params = emptyParams
		}
		out[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  params,
			},
		}
	}
	return out
}
