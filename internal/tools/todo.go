package tools

import (
	"context"
	"encoding/json"
	"sync"
)

// Scratchpad holds the agent's current plan/notes. Safe for concurrent
// access. Its content is injected into the conversation by the tool loop's
// recitation cadence so the agent's goals stay in recent attention, and it
// satisfies toolloop.ScratchpadReader by structural typing.
type Scratchpad struct {
	mu      sync.RWMutex
	content string
}

// Content returns the current scratchpad text.
func (s *Scratchpad) Content() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.content
}

// TodoWriteArgs are the arguments to the TodoWrite tool.
type TodoWriteArgs struct {
	Content string `json:"content"`
}

// NewTodoWriteTool builds the TodoWrite tool, grounded on the teacher's
// mcptools.NewTodoWriteTool/MakeTodoWriteHandler.
func NewTodoWriteTool(pad *Scratchpad) Tool {
	return Tool{
		Name:        "TodoWrite",
		Description: `Write or update your working plan/scratchpad. The content replaces any previous plan and is kept visible at the end of your context window. Use this to track goals, progress, and next steps for tasks with 3+ steps. Rewrite it as you complete steps to stay focused. Skip for simple single-step tasks.`,
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"content": {"type": "string", "description": "Your current plan, todo list, or working notes. This replaces the previous content entirely."}
			},
			"required": ["content"]
		}`),
		Handle: newTodoWriteHandler(pad),
	}
}

func newTodoWriteHandler(pad *Scratchpad) Handler {
	return func(_ context.Context, arguments json.RawMessage) (string, bool, error) {
		var args TodoWriteArgs
		if err := json.Unmarshal(arguments, &args); err != nil {
			return errf("Invalid arguments: %v", err)
		}
		if args.Content == "" {
			return errf("Content cannot be empty")
		}

		pad.mu.Lock()
		pad.content = args.Content
		pad.mu.Unlock()

		return ok("Plan updated.")
	}
}
