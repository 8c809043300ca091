package agent

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"github.com/xonecas/symbagent/internal/highlight"
)

// editPreview builds a read-only unified diff for a pending Edit call,
// without writing the file, for the "p" pager approval option. Grounded on
// internal/tools/edit.go's post-write unifiedDiff, run here against the
// on-disk file before the write happens.
func editPreview(root string, arguments json.RawMessage) string {
	var args struct {
		File    string `json:"file"`
		OldText string `json:"old_text"`
		NewText string `json:"new_text"`
	}
	if err := json.Unmarshal(arguments, &args); err != nil || args.File == "" {
		return ""
	}

	path := args.File
	if !strings.HasPrefix(path, "/") {
		path = root + "/" + path
	}
	before, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	beforeStr := string(before)
	if strings.Count(beforeStr, args.OldText) != 1 {
		return ""
	}
	idx := strings.Index(beforeStr, args.OldText)
	afterStr := beforeStr[:idx] + args.NewText + beforeStr[idx+len(args.OldText):]

	uri := span.URIFromPath(args.File)
	edits := myers.ComputeEdits(uri, beforeStr, afterStr)
	if len(edits) == 0 {
		return ""
	}
	return fmt.Sprint(gotextdiff.ToUnified(args.File, args.File, beforeStr, edits))
}

// writePreview renders a pending Write call's new content for the "p" pager
// option, syntax-highlighted by the file's extension (internal/highlight's
// DetectLanguage, otherwise unused once editPreview moved off plain text).
func (a *Approver) writePreview(arguments json.RawMessage) string {
	var args struct {
		File    string `json:"file"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(arguments, &args); err != nil || args.File == "" {
		return ""
	}
	lang := highlight.DetectLanguage(args.File)
	header := fmt.Sprintf("write %s\n\n", args.File)
	return header + a.highlight(args.Content, lang)
}
