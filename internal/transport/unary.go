package transport

import (
	"encoding/json"
	"strings"
)

// chatUnaryResponse is the non-streaming chat-completions response shape.
type chatUnaryResponse struct {
	Choices []struct {
		Message      chatStreamDelta `json:"message"`
		FinishReason string          `json:"finish_reason"`
	} `json:"choices"`
	Usage *chatUsage `json:"usage,omitempty"`
}

func decodeChatUnary(payload []byte, model string) (*Response, error) {
	var wire chatUnaryResponse
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, newError(KindDecode, "failed to decode chat completion", err)
	}

	resp := &Response{Model: model}
	if wire.Usage != nil {
		resp.Tokens = wire.Usage.CompletionTokens
		resp.Ctx = wire.Usage.TotalTokens
		if resp.Ctx == 0 {
			resp.Ctx = wire.Usage.PromptTokens + wire.Usage.CompletionTokens
		}
		resp.CumulativeUsage = Usage{InputTokens: wire.Usage.PromptTokens, OutputTokens: wire.Usage.CompletionTokens}
	}
	if len(wire.Choices) == 0 {
		return resp, nil
	}

	choice := wire.Choices[0]
	resp.FinishReason = choice.FinishReason
	resp.Text = cleanText(choice.Message.Content)
	resp.ReasoningText = choice.Message.Reasoning
	if resp.ReasoningText == "" {
		resp.ReasoningText = choice.Message.ReasoningContent
	}

	acc := newToolCallAccumulator()
	for i, tc := range choice.Message.ToolCalls {
		idx := tc.Index
		if idx == 0 && len(choice.Message.ToolCalls) > 1 {
			idx = i
		}
		acc.begin(idx, tc.ID, tc.Function.Name)
		acc.delta(idx, tc.Function.Arguments)
	}
	resp.ToolCalls = acc.finalize()

	return resp, nil
}

// responsesUnaryResponse is the non-streaming Responses API shape.
type responsesUnaryResponse struct {
	ID     string `json:"id"`
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content,omitempty"`
		CallID    string `json:"call_id,omitempty"`
		Name      string `json:"name,omitempty"`
		Arguments string `json:"arguments,omitempty"`
		Summary   []struct {
			Text string `json:"text"`
		} `json:"summary,omitempty"`
	} `json:"output"`
	Usage *struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage,omitempty"`
}

func decodeResponsesUnary(payload []byte, model string) (*Response, error) {
	var wire responsesUnaryResponse
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, newError(KindDecode, "failed to decode responses completion", err)
	}

	resp := &Response{Model: model, ResponseID: wire.ID}
	if wire.Usage != nil {
		resp.Tokens = wire.Usage.OutputTokens
		resp.Ctx = wire.Usage.InputTokens + wire.Usage.OutputTokens
		resp.CumulativeUsage = Usage{InputTokens: wire.Usage.InputTokens, OutputTokens: wire.Usage.OutputTokens}
	}

	var text, reasoning strings.Builder
	var calls []ToolCall
	for _, item := range wire.Output {
		switch item.Type {
		case "message":
			for _, c := range item.Content {
				text.WriteString(c.Text)
			}
		case "function_call":
			calls = append(calls, ToolCall{ID: item.CallID, Name: item.Name, Arguments: json.RawMessage(item.Arguments)})
		case "reasoning":
			for _, s := range item.Summary {
				reasoning.WriteString(s.Text)
			}
		}
	}
	resp.Text = cleanText(text.String())
	resp.ReasoningText = reasoning.String()
	resp.ToolCalls = calls
	return resp, nil
}
