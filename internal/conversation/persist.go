package conversation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xonecas/symbagent/internal/transport"
)

// savedMessage is the JSON-on-disk shape of one message; ToolCalls serialize
// arguments as raw JSON so round-tripping never re-escapes them.
type savedMessage struct {
	Role         string              `json:"role"`
	Content      string              `json:"content"`
	Reasoning    string              `json:"reasoning,omitempty"`
	ToolCalls    []savedToolCall     `json:"tool_calls,omitempty"`
	ToolCallID   string              `json:"tool_call_id,omitempty"`
	FunctionName string              `json:"function_name,omitempty"`
	CreatedAt    int64               `json:"created_at"`
	InputTokens  int                 `json:"input_tokens,omitempty"`
	OutputTokens int                 `json:"output_tokens,omitempty"`
}

type savedToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type savedFile struct {
	Name     string         `json:"name"`
	Messages []savedMessage `json:"messages"`
	Cost     Cost           `json:"cost"`
}

// Save writes the conversation to
// ~/.config/<app>/agent/conversations/<name>.json (spec.md §6).
func (c *Conversation) Save(dir, name string) error {
	c.name = name
	file := savedFile{Name: name, Cost: c.cost}
	for _, m := range c.messages {
		sm := savedMessage{
			Role:         m.Role,
			Content:      m.Content,
			Reasoning:    m.Reasoning,
			ToolCallID:   m.ToolCallID,
			FunctionName: m.FunctionName,
			CreatedAt:    m.CreatedAt.Unix(),
			InputTokens:  m.InputTokens,
			OutputTokens: m.OutputTokens,
		}
		for _, tc := range m.ToolCalls {
			sm.ToolCalls = append(sm.ToolCalls, savedToolCall{ID: tc.ID, Name: tc.Name, Arguments: tc.Arguments})
		}
		file.Messages = append(file.Messages, sm)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}

	path := filepath.Join(dir, name+".json")
	return os.WriteFile(path, data, 0600)
}

// Load reads a conversation previously written by Save.
func Load(dir, name string) (*Conversation, error) {
	path := filepath.Join(dir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read conversation: %w", err)
	}

	var file savedFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal conversation: %w", err)
	}

	c := &Conversation{name: file.Name, cost: file.Cost, trim: DefaultTrimConfig}
	for _, sm := range file.Messages {
		m := transport.Message{
			Role:         sm.Role,
			Content:      sm.Content,
			Reasoning:    sm.Reasoning,
			ToolCallID:   sm.ToolCallID,
			FunctionName: sm.FunctionName,
			CreatedAt:    unixTime(sm.CreatedAt),
			InputTokens:  sm.InputTokens,
			OutputTokens: sm.OutputTokens,
		}
		for _, tc := range sm.ToolCalls {
			m.ToolCalls = append(m.ToolCalls, transport.ToolCall{ID: tc.ID, Name: tc.Name, Arguments: tc.Arguments})
		}
		c.messages = append(c.messages, m)
		if m.Role == transport.RoleSystem {
			c.systemPrompt = m.Content
		}
	}
	return c, nil
}
