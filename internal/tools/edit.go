package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// EditArgs are the arguments to the Edit tool: an exact-match,
// single-occurrence replacement (spec.md §4.2 redesign, dropping the
// teacher's hash-anchored line operations).
type EditArgs struct {
	File    string `json:"file"`
	OldText string `json:"old_text"`
	NewText string `json:"new_text"`
}

// NewEditTool builds the Edit tool.
func NewEditTool(root string, tracker *ReadTracker) Tool {
	return Tool{
		Name: "Edit",
		Description: `Edit a file by replacing one exact occurrence of old_text with new_text. You MUST Read the file first. old_text must appear exactly once in the file; if it appears zero or more than once, the edit fails.`,
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"file":     {"type": "string", "description": "Path to the file to edit"},
				"old_text": {"type": "string", "description": "Exact text to find; must appear exactly once"},
				"new_text": {"type": "string", "description": "Replacement text"}
			},
			"required": ["file", "old_text", "new_text"]
		}`),
		Handle: newEditHandler(root, tracker),
	}
}

func newEditHandler(root string, tracker *ReadTracker) Handler {
	return func(ctx context.Context, arguments json.RawMessage) (string, bool, error) {
		var args EditArgs
		if err := json.Unmarshal(arguments, &args); err != nil {
			return errf("Invalid arguments: %v", err)
		}
		if args.File == "" {
			return errf("file is required")
		}
		if args.OldText == "" {
			return errf("old_text cannot be empty")
		}

		absPath, err := resolvePath(root, args.File)
		if err != nil {
			return errf("%v", err)
		}
		if !tracker.WasRead(absPath) {
			return errf("You must Read the file before editing it. Use Read on %s first.", args.File)
		}

		before, err := os.ReadFile(absPath)
		if err != nil {
			return errf("Failed to read file: %v", err)
		}
		beforeStr := string(before)

		count := strings.Count(beforeStr, args.OldText)
		switch count {
		case 0:
			return errf("old_text not found in %s: no occurrence matches exactly", args.File)
		case 1:
			// exactly one — proceed.
		default:
			return errf("old_text is ambiguous in %s: matches %d occurrences, expected exactly 1", args.File, count)
		}

		idx := strings.Index(beforeStr, args.OldText)
		lineNum := strings.Count(beforeStr[:idx], "\n") + 1

		afterStr := beforeStr[:idx] + args.NewText + beforeStr[idx+len(args.OldText):]
		if err := os.WriteFile(absPath, []byte(afterStr), 0600); err != nil {
			return errf("Failed to write file: %v", err)
		}
		tracker.markRead(absPath)

		diff := unifiedDiff(args.File, beforeStr, afterStr)
		return ok(fmt.Sprintf("Edited %s at line %d:\n\n%s", args.File, lineNum, diff))
	}
}

// unifiedDiff renders a unified diff of before/after for the approval
// preview and tool-result text, grounded on the teacher's editor-preview
// diff in internal/tui/messages.go.
func unifiedDiff(displayPath, before, after string) string {
	uri := span.URIFromPath(displayPath)
	edits := myers.ComputeEdits(uri, before, after)
	if len(edits) == 0 {
		return "(no textual change)"
	}
	return fmt.Sprint(gotextdiff.ToUnified(displayPath, displayPath, before, edits))
}
