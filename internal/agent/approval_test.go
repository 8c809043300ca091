package agent

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/xonecas/symbagent/internal/toolloop"
	"github.com/xonecas/symbagent/internal/transport"
)

func TestApproverAllowsAutoApprovedTool(t *testing.T) {
	in := strings.NewReader("")
	var out strings.Builder
	a := NewApprover(in, &out, t.TempDir(), []string{"Read"})

	decision := a.Decide(transport.ToolCall{Name: "Read", Arguments: json.RawMessage(`{}`)}, 0, nil)
	if decision.Tag != toolloop.Allow {
		t.Errorf("decision = %+v, want Allow", decision)
	}
	if out.Len() != 0 {
		t.Errorf("expected no prompt printed for auto-approved tool, got: %q", out.String())
	}
}

func TestApproverBlankLineAllows(t *testing.T) {
	in := strings.NewReader("\n")
	var out strings.Builder
	a := NewApprover(in, &out, t.TempDir(), nil)

	decision := a.Decide(transport.ToolCall{Name: "Write"}, 0, nil)
	if decision.Tag != toolloop.Allow {
		t.Errorf("decision = %+v, want Allow", decision)
	}
}

func TestApproverNDenies(t *testing.T) {
	in := strings.NewReader("n\n")
	var out strings.Builder
	a := NewApprover(in, &out, t.TempDir(), nil)

	decision := a.Decide(transport.ToolCall{Name: "Shell"}, 0, nil)
	if decision.Tag != toolloop.Abort {
		t.Errorf("decision = %+v, want Abort", decision)
	}
}

func TestApproverMReadsFollowUpMessage(t *testing.T) {
	in := strings.NewReader("m\ndon't do that, read AGENTS.md instead\n")
	var out strings.Builder
	a := NewApprover(in, &out, t.TempDir(), nil)

	decision := a.Decide(transport.ToolCall{Name: "Shell"}, 0, nil)
	if decision.Tag != toolloop.AbortWithMessage {
		t.Fatalf("decision = %+v, want AbortWithMessage", decision)
	}
	if decision.AbortMessage != "don't do that, read AGENTS.md instead" {
		t.Errorf("abort message = %q", decision.AbortMessage)
	}
}

func TestApproverAMarksAlwaysApprovedForSession(t *testing.T) {
	in := strings.NewReader("a\n")
	var out strings.Builder
	a := NewApprover(in, &out, t.TempDir(), nil)

	decision := a.Decide(transport.ToolCall{Name: "WebFetch"}, 0, nil)
	if decision.Tag != toolloop.Allow {
		t.Fatalf("decision = %+v, want Allow", decision)
	}
	if !a.isAutoApproved(transport.ToolCall{Name: "WebFetch"}) {
		t.Errorf("expected WebFetch to be marked always-approved after 'a'")
	}
}

func TestApproverElevatesDestructiveShellEvenWhenAutoApproved(t *testing.T) {
	in := strings.NewReader("n\n")
	var out strings.Builder
	a := NewApprover(in, &out, t.TempDir(), []string{"Shell"})

	args, _ := json.Marshal(map[string]string{"command": "rm -rf /tmp/whatever"})
	decision := a.Decide(transport.ToolCall{Name: "Shell", Arguments: args}, 0, nil)
	if decision.Tag != toolloop.Abort {
		t.Errorf("decision = %+v, want Abort (elevation should force a prompt)", decision)
	}
	if !strings.Contains(out.String(), "recursive delete") {
		t.Errorf("expected elevation reason printed, got: %q", out.String())
	}
}
