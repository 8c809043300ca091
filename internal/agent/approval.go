package agent

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/xonecas/symbagent/internal/highlight"
	"github.com/xonecas/symbagent/internal/tools"
	"github.com/xonecas/symbagent/internal/toolloop"
	"github.com/xonecas/symbagent/internal/transport"
)

// Approver implements the synchronous approval hook spec.md §4.6 wires into
// toolloop.Opts.OnToolCall: it prints "[name] Execute? [Y/n/p/e/m/a]",
// reads one line in sane (line-buffered) mode, and honors the six
// responses. Grounded on the teacher's check_command-based elevation
// (internal/shell/block.go) promoted to a controller-level policy.
type Approver struct {
	in     *bufio.Reader
	out    io.Writer
	root   string
	auto   map[string]bool
	always map[string]bool

	// Theme names the Chroma style used to highlight pager previews (edit
	// diffs, Write file contents). Empty means previews render as plain text.
	Theme string
}

// NewApprover builds an Approver. autoApprove names tools pre-approved by
// config (ToolsConfig.AutoApprove); always starts empty and accumulates
// names the user marks with "a" during the session.
func NewApprover(in io.Reader, out io.Writer, root string, autoApprove []string) *Approver {
	auto := make(map[string]bool, len(autoApprove))
	for _, name := range autoApprove {
		auto[name] = true
	}
	return &Approver{in: bufio.NewReader(in), out: out, root: root, auto: auto, always: map[string]bool{}}
}

// Decide is the toolloop.Opts.OnToolCall hook.
func (a *Approver) Decide(call transport.ToolCall, index int, resp *transport.Response) toolloop.Decision {
	if a.isAutoApproved(call) && a.elevationReason(call) == "" {
		return toolloop.Decision{Tag: toolloop.Allow}
	}

	for {
		a.printPrompt(call)
		line, err := a.in.ReadString('\n')
		if err != nil && line == "" {
			// stdin closed: treat as abort, matching spec.md's "n" behavior.
			return toolloop.Decision{Tag: toolloop.Abort}
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "", "y":
			return toolloop.Decision{Tag: toolloop.Allow}
		case "n":
			return toolloop.Decision{Tag: toolloop.Abort}
		case "p":
			a.showPager(call)
			continue
		case "e":
			edited, ok := a.editArguments(call)
			if !ok {
				continue
			}
			call.Arguments = edited
			return toolloop.Decision{Tag: toolloop.Modify, ModifiedCall: call}
		case "m":
			msg := a.readFollowUpMessage()
			return toolloop.Decision{Tag: toolloop.AbortWithMessage, AbortMessage: msg}
		case "a":
			a.always[call.Name] = true
			return toolloop.Decision{Tag: toolloop.Allow}
		default:
			fmt.Fprintln(a.out, "please answer y, n, p, e, m, or a")
		}
	}
}

func (a *Approver) isAutoApproved(call transport.ToolCall) bool {
	return a.auto[call.Name] || a.always[call.Name]
}

// elevationReason consults tools.CheckCommand for Shell calls, forcing
// approval even when the tool is otherwise auto-approved.
func (a *Approver) elevationReason(call transport.ToolCall) string {
	if call.Name != "Shell" {
		return ""
	}
	var args struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal(call.Arguments, &args); err != nil {
		return ""
	}
	return tools.CheckCommand(args.Command)
}

func (a *Approver) printPrompt(call transport.ToolCall) {
	if reason := a.elevationReason(call); reason != "" {
		fmt.Fprintf(a.out, "[%s] flagged as %s\n", call.Name, reason)
	}
	fmt.Fprintf(a.out, "[%s] Execute? [Y/n/p/e/m/a] ", call.Name)
}

func (a *Approver) readFollowUpMessage() string {
	fmt.Fprint(a.out, "message: ")
	line, _ := a.in.ReadString('\n')
	return strings.TrimSpace(line)
}

// showPager prints a preview of the call (an Edit diff or Write file content
// when possible, otherwise pretty-printed arguments) through $PAGER, falling
// back to less -R so the preview's ANSI highlighting survives the pipe.
func (a *Approver) showPager(call transport.ToolCall) {
	preview := a.preview(call)
	pagerEnv := os.Getenv("PAGER")
	var cmd *exec.Cmd
	if pagerEnv == "" {
		cmd = exec.Command("less", "-R")
	} else {
		cmd = exec.Command(pagerEnv)
	}
	cmd.Stdin = strings.NewReader(preview)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(a.out, "render.pager_failed: %v\n\n%s\n", err, preview)
	}
}

// preview renders a human-readable preview of call for the "p" pager option:
// a syntax-highlighted diff for Edit, syntax-highlighted file content for
// Write, or pretty-printed arguments for anything else.
func (a *Approver) preview(call transport.ToolCall) string {
	switch call.Name {
	case "Edit":
		if diff := editPreview(a.root, call.Arguments); diff != "" {
			return a.highlight(diff, "diff")
		}
	case "Write":
		if content := a.writePreview(call.Arguments); content != "" {
			return content
		}
	}
	var pretty strings.Builder
	pretty.WriteString(call.Name)
	pretty.WriteString("\n")
	indented, err := json.MarshalIndent(json.RawMessage(call.Arguments), "", "  ")
	if err != nil {
		pretty.Write(call.Arguments)
	} else {
		pretty.Write(indented)
	}
	return pretty.String()
}

// highlight colorizes source for lang using a.Theme, or returns it unchanged
// when no theme is configured (tests, or a caller that wants plain text).
func (a *Approver) highlight(source, lang string) string {
	if a.Theme == "" {
		return source
	}
	bg := highlight.ThemeBg(a.Theme)
	return highlight.Highlight(source, lang, a.Theme, bg)
}

// editArguments opens call's arguments as formatted JSON in $EDITOR and
// re-validates the result, per spec.md §4.6's "e" approval option.
func (a *Approver) editArguments(call transport.ToolCall) (json.RawMessage, bool) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		fmt.Fprintln(a.out, "approval.edit_failed: EDITOR is not set")
		return nil, false
	}

	indented, err := json.MarshalIndent(json.RawMessage(call.Arguments), "", "  ")
	if err != nil {
		indented = call.Arguments
	}

	tmp, err := os.CreateTemp("", "symbagent-args-*.json")
	if err != nil {
		fmt.Fprintf(a.out, "approval.edit_failed: %v\n", err)
		return nil, false
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(indented); err != nil {
		tmp.Close()
		fmt.Fprintf(a.out, "approval.edit_failed: %v\n", err)
		return nil, false
	}
	tmp.Close()

	cmd := exec.Command(editor, tmp.Name())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(a.out, "approval.edit_failed: %v\n", err)
		return nil, false
	}

	edited, err := os.ReadFile(tmp.Name())
	if err != nil {
		fmt.Fprintf(a.out, "approval.edit_failed: %v\n", err)
		return nil, false
	}
	if !json.Valid(edited) {
		fmt.Fprintln(a.out, "approval.edit_failed: edited arguments are not valid JSON")
		return nil, false
	}
	return json.RawMessage(edited), true
}
