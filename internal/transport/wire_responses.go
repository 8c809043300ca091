package transport

import "encoding/json"

// Responses dialect wire types, grounded on the teacher's Responses API
// support (parseResponsesSSEStream / toResponsesInput in openai_common.go).

type responsesRequestBody struct {
	Model              string                `json:"model"`
	Input              []responsesInputItem  `json:"input"`
	Tools              []responsesToolParam  `json:"tools,omitempty"`
	Temperature        *float64              `json:"temperature,omitempty"`
	Stream             bool                  `json:"stream"`
	PreviousResponseID string                `json:"previous_response_id,omitempty"`
}

type responsesInputItem struct {
	Type      string `json:"type"`
	Role      string `json:"role,omitempty"`
	Content   any    `json:"content,omitempty"`
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
	CallID    string `json:"call_id,omitempty"`
	Output    string `json:"output,omitempty"`
}

type responsesToolParam struct {
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"`
}

type responsesOutputTextDeltaFr struct {
	Delta string `json:"delta"`
}

type responsesReasoningDeltaFr struct {
	Delta string `json:"delta"`
}

type responsesOutputItemAddedFr struct {
	OutputIndex int                    `json:"output_index"`
	Item        responsesOutputItemFr  `json:"item"`
}

type responsesOutputItemFr struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Name   string `json:"name,omitempty"`
	CallID string `json:"call_id,omitempty"`
}

type responsesFuncCallArgsDeltaFr struct {
	OutputIndex int    `json:"output_index"`
	Delta       string `json:"delta"`
}

type responsesCompletedFr struct {
	Response struct {
		ID    string `json:"id"`
		Usage *struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage,omitempty"`
	} `json:"response"`
}

type responsesFailedFr struct {
	Response struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"response"`
}

// toResponsesInput converts internal Messages to Responses API input items.
func toResponsesInput(messages []Message) []responsesInputItem {
	var items []responsesInputItem
	for _, m := range messages {
		switch m.Role {
		case RoleTool:
			items = append(items, responsesInputItem{
				Type:   "function_call_output",
				CallID: m.ToolCallID,
				Output: m.Content,
			})
		case RoleAssistant:
			if len(m.ToolCalls) > 0 {
				if m.Content != "" {
					items = append(items, responsesInputItem{Type: "message", Role: "assistant", Content: m.Content})
				}
				for _, tc := range m.ToolCalls {
					items = append(items, responsesInputItem{
						Type:      "function_call",
						CallID:    tc.ID,
						Name:      tc.Name,
						Arguments: string(tc.Arguments),
					})
				}
				continue
			}
			items = append(items, responsesInputItem{Type: "message", Role: "assistant", Content: m.Content})
		case RoleSystem:
			items = append(items, responsesInputItem{Type: "message", Role: "developer", Content: m.Content})
		default:
			items = append(items, responsesInputItem{Type: "message", Role: m.Role, Content: m.Content})
		}
	}
	return items
}

func toResponsesTools(tools []Tool) []responsesToolParam {
	if tools == nil {
		return nil
	}
	emptyParams := json.RawMessage(`{"type":"object","properties":{}}`)
	out := make([]responsesToolParam, len(tools))
	for i, t := range tools {
		params := t.Parameters
		if len(params) == 0 {
			params = emptyParams
		}
		out[i] = responsesToolParam{Type: "function", Name: t.Name, Description: t.Description, Parameters: params}
	}
	return out
}
