package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// defaultReadLines is spec.md §4.2's default page size for the Read tool.
const defaultReadLines = 1000

// ReadArgs are the arguments to the Read tool.
type ReadArgs struct {
	File   string `json:"file"`
	Offset int    `json:"offset,omitempty"` // 0-indexed line to start from
	Limit  int    `json:"limit,omitempty"`  // max lines to return, default 1000
}

// ReadTracker records which absolute paths have been read, so the Edit tool
// can require a prior Read the way the teacher's FileReadTracker does.
type ReadTracker struct {
	read map[string]bool
}

// NewReadTracker creates an empty tracker.
func NewReadTracker() *ReadTracker { return &ReadTracker{read: make(map[string]bool)} }

func (t *ReadTracker) markRead(path string) { t.read[path] = true }

// WasRead reports whether path has been read this session.
func (t *ReadTracker) WasRead(path string) bool { return t.read[path] }

// NewReadTool builds the Read tool, grounded on the teacher's
// mcptools.NewReadTool/ReadHandler, simplified to an offset/limit window
// instead of hash-anchored line tagging (spec.md §4.2 redesign).
func NewReadTool(root string, tracker *ReadTracker) Tool {
	return Tool{
		Name:        "Read",
		Description: `Reads a file and returns its content with line numbers. Defaults to the first 1000 lines; use offset/limit to page through longer files. You must Read a file before editing it with Edit.`,
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"file":   {"type": "string", "description": "Path to the file to read"},
				"offset": {"type": "integer", "description": "0-indexed line to start from (default 0)"},
				"limit":  {"type": "integer", "description": "Maximum number of lines to return (default 1000)"}
			},
			"required": ["file"]
		}`),
		Handle: newReadHandler(root, tracker),
	}
}

func newReadHandler(root string, tracker *ReadTracker) Handler {
	return func(ctx context.Context, arguments json.RawMessage) (string, bool, error) {
		var args ReadArgs
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

		content, err := os.ReadFile(absPath)
		if err != nil {
			return errf("Failed to read file: %v", err)
		}
		tracker.markRead(absPath)

		lines := strings.Split(string(content), "\n")
		limit := args.Limit
		if limit <= 0 {
			limit = defaultReadLines
		}
		offset := args.Offset
		if offset < 0 {
			offset = 0
		}
		if offset > len(lines) {
			offset = len(lines)
		}
		end := offset + limit
		truncated := end < len(lines)
		if end > len(lines) {
			end = len(lines)
		}

		var b strings.Builder
		for i := offset; i < end; i++ {
			fmt.Fprintf(&b, "%d\t%s\n", i+1, lines[i])
		}
		if truncated {
			fmt.Fprintf(&b, "\n[truncated: showing lines %d-%d of %d; resume with offset=%d]", offset+1, end, len(lines), end)
		}

		return ok(b.String())
	}
}
