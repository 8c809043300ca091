package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xonecas/symbagent/internal/shell"
)

// ShellArgs are the arguments to the Shell tool.
type ShellArgs struct {
	Command     string `json:"command"`
	Description string `json:"description"`
	Timeout     int    `json:"timeout,omitempty"`
}

const (
	defaultShellTimeoutSec = 60
	maxShellTimeoutSec     = 600
)

// NewShellTool builds the Shell tool, grounded on the teacher's
// mcptools.NewShellTool/ShellHandler.
func NewShellTool(sh *shell.Shell) Tool {
	return Tool{
		Name: "Shell",
		Description: `Execute a shell command in an in-process POSIX interpreter.
Commands run inside the project working directory. Shell state (cwd, env vars) persists across calls within the same session.
Dangerous commands (network, sudo, package managers, system modification) are blocked.`,
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"command":     {"type": "string", "description": "The shell command to execute"},
				"description": {"type": "string", "description": "Brief description of what this command does (5-10 words)"},
				"timeout":     {"type": "integer", "description": "Timeout in seconds (default 60)"}
			},
			"required": ["command", "description"]
		}`),
		Handle: newShellHandler(sh),
	}
}

func newShellHandler(sh *shell.Shell) Handler {
	return func(ctx context.Context, arguments json.RawMessage) (string, bool, error) {
		var args ShellArgs
		if err := json.Unmarshal(arguments, &args); err != nil {
			return errf("Invalid arguments: %v", err)
		}
		if args.Command == "" {
			return errf("command is required")
		}

		timeout := defaultShellTimeoutSec
		if args.Timeout > 0 {
			timeout = args.Timeout
		}
		if timeout > maxShellTimeoutSec {
			timeout = maxShellTimeoutSec
		}

		ctx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()

		var stdout, stderr bytes.Buffer
		execErr := sh.ExecStream(ctx, args.Command, &stdout, &stderr)
		exitCode := shell.ExitCode(execErr)
		output := formatShellOutput(stdout.String(), stderr.String(), exitCode, ctx.Err())
		if output == "" {
			output = "(no output)\n"
		}

		return output, exitCode != 0, nil
	}
}

func formatShellOutput(stdout, stderr string, exitCode int, ctxErr error) string {
	var b strings.Builder
	if stdout != "" {
		b.WriteString(stdout)
		if !strings.HasSuffix(stdout, "\n") {
			b.WriteByte('\n')
		}
	}
	if stderr != "" {
		b.WriteString(stderr)
		if !strings.HasSuffix(stderr, "\n") {
			b.WriteByte('\n')
		}
	}
	if ctxErr != nil {
		b.WriteString("[timed out]\n")
	}
	if exitCode != 0 {
		fmt.Fprintf(&b, "[exit code: %d]\n", exitCode)
	}
	return b.String()
}
