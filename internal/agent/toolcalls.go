package agent

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xonecas/symbagent/internal/termio"
	"github.com/xonecas/symbagent/internal/toolloop"
	"github.com/xonecas/symbagent/internal/transport"
)

// onToolCall is the toolloop.Opts.OnToolCall hook: it paints a transient
// "running" line for the pending call (clearing any prior transient from a
// superseded nested call), then defers to the approver.
func (a *Agent) onToolCall(call transport.ToolCall, index int, resp *transport.Response) toolloop.Decision {
	if n := a.toolRender.OnNestedToolCall(); n > 0 {
		fmt.Fprintf(a.out, "%s%s%s", termio.CursorUp(n), termio.CarriageReturn, termio.ClearToEnd)
	}
	fmt.Fprintf(a.out, "\n→ %s\n", call.Name)
	a.toolRender.PaintTransient(1)

	if a.approver == nil {
		return toolloop.Decision{Tag: toolloop.Allow}
	}
	return a.approver.Decide(call, index, resp)
}

// onToolResult paints the tool's outcome as a sticky line and refreshes
// the project index when a Write or Edit tool touched a file, so the next
// system prompt reflects the change.
func (a *Agent) onToolResult(call transport.ToolCall, result string, isError bool) {
	status := "done"
	if isError {
		status = "error"
	}
	fmt.Fprintf(a.out, "  %s: %s\n", status, firstLine(result))
	a.toolRender.PaintSticky(1)

	if !isError {
		a.refreshIndexFor(call)
	}
}

// onToolWarning surfaces a tool-loop warning (synthetic step-exhaustion
// notice or a tool execution error) as plain output.
func (a *Agent) onToolWarning(message string, call *transport.ToolCall) {
	fmt.Fprintf(a.out, "\nwarning: %s\n", message)
}

func (a *Agent) refreshIndexFor(call transport.ToolCall) {
	if a.index == nil {
		return
	}
	if call.Name != "Write" && call.Name != "Edit" {
		return
	}
	var args struct {
		File string `json:"file"`
	}
	if err := json.Unmarshal(call.Arguments, &args); err != nil || args.File == "" {
		return
	}
	path := args.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.root, path)
	}
	a.index.UpdateFile(path)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + "…"
	}
	return s
}
