package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteArgs are the arguments to the Write tool.
type WriteArgs struct {
	File    string `json:"file"`
	Content string `json:"content"`
}

// NewWriteTool builds the Write tool: creates a new file or fully
// overwrites an existing one, grounded on the teacher's
// EditHandler.handleCreate path but exposed as its own named tool per
// spec.md §4.2's six named tools (shell, read, write, edit, web search,
// fetch).
func NewWriteTool(root string, tracker *ReadTracker) Tool {
	return Tool{
		Name:        "Write",
		Description: "Write content to a file, creating it (and any parent directories) if it doesn't exist, or overwriting it entirely if it does.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"file":    {"type": "string", "description": "Path to the file to write"},
				"content": {"type": "string", "description": "Full file content"}
			},
			"required": ["file", "content"]
		}`),
		Handle: newWriteHandler(root, tracker),
	}
}

func newWriteHandler(root string, tracker *ReadTracker) Handler {
	return func(ctx context.Context, arguments json.RawMessage) (string, bool, error) {
		var args WriteArgs
		if err := json.Unmarshal(arguments, &args); err != nil {
			return errf("Invalid arguments: %v", err)
		}
		if args.File == "" {
			return errf("file is required")
		}

		absPath, err := resolvePath(root, args.File)
		if err != nil {
			return errf("%v", err)
		}

		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			return errf("Failed to create directories: %v", err)
		}
		if err := os.WriteFile(absPath, []byte(args.Content), 0600); err != nil {
			return errf("Failed to write file: %v", err)
		}
		tracker.markRead(absPath)

		lines := strings.Count(args.Content, "\n") + 1
		return ok(fmt.Sprintf("Wrote %s (%d lines)", args.File, lines))
	}
}
