package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/xonecas/symbagent/internal/conversation"
	"github.com/xonecas/symbagent/internal/tools"
	"github.com/xonecas/symbagent/internal/transport"
)

func newTestAgent(t *testing.T, client transport.Client) (*Agent, *strings.Builder) {
	t.Helper()
	var out strings.Builder
	a := New(Options{
		Conversation: conversation.New("base system prompt"),
		Client:       client,
		Model:        "test-model",
		MaxSteps:     10,
		BasePrompt:   "base system prompt",
		Catalog:      tools.NewCatalog(),
		Scratchpad:   &tools.Scratchpad{},
		Out:          &out,
		Width:        80,
		Root:         t.TempDir(),
	})
	return a, &out
}

func TestProcessResponseNoToolCallsCommitsAssistantMessage(t *testing.T) {
	client := transport.NewMock(&transport.Response{Text: "hello there"})
	a, _ := newTestAgent(t, client)

	if err := a.ProcessResponse(context.Background(), "hi"); err != nil {
		t.Fatalf("ProcessResponse: %v", err)
	}

	raw := a.conv.GetRawMessages()
	last := raw[len(raw)-1]
	if last.Role != transport.RoleAssistant || last.Content != "hello there" {
		t.Errorf("last message = %+v, want assistant 'hello there'", last)
	}
	if err := a.conv.ValidateInvariants(); err != nil {
		t.Errorf("ValidateInvariants: %v", err)
	}
}

func TestProcessResponseAbortWithMessageReentersLoop(t *testing.T) {
	client := transport.NewMock(
		&transport.Response{ToolCalls: []transport.ToolCall{{ID: "c1", Name: "Shell"}}},
		&transport.Response{Text: "acknowledged"},
	)
	a, _ := newTestAgent(t, client)
	// "m" followed by a follow-up line answers the approval prompt with
	// AbortWithMessage, which must re-enter the loop with that line as input.
	a.approver = NewApprover(strings.NewReader("m\nread AGENTS.md instead\n"), &strings.Builder{}, t.TempDir(), nil)

	if err := a.ProcessResponse(context.Background(), "delete the repo"); err != nil {
		t.Fatalf("ProcessResponse: %v", err)
	}

	raw := a.conv.GetRawMessages()
	last := raw[len(raw)-1]
	if last.Role != transport.RoleAssistant || last.Content != "acknowledged" {
		t.Errorf("last message = %+v, want assistant 'acknowledged'", last)
	}
	// spec.md §8 scenario 2: the aborted round's tool_trace was empty (c1
	// never ran), so that assistant turn is not committed at all — the
	// trace holds only [system, user, user, assistant], not a dangling
	// assistant(tool_calls=[c1]) plus a synthetic tool result for it.
	if len(raw) != 4 {
		t.Fatalf("len(raw) = %d, want 4 (system, user, user, assistant); raw = %+v", len(raw), raw)
	}
	if raw[0].Role != transport.RoleSystem || raw[1].Role != transport.RoleUser ||
		raw[2].Role != transport.RoleUser || raw[3].Role != transport.RoleAssistant {
		t.Fatalf("raw roles = %+v, want [system, user, user, assistant]", raw)
	}
	if err := a.conv.ValidateInvariants(); err != nil {
		t.Errorf("ValidateInvariants: %v", err)
	}
}

func TestProcessResponseModifyPersistsEditedArguments(t *testing.T) {
	client := transport.NewMock(
		&transport.Response{ToolCalls: []transport.ToolCall{{ID: "c1", Name: "Shell", Arguments: []byte(`{"command":"ls"}`)}}},
		&transport.Response{Text: "ran it"},
	)
	a, _ := newTestAgent(t, client)
	t.Setenv("EDITOR", "true") // leaves the temp file's (indented) content untouched
	a.approver = NewApprover(strings.NewReader("e\n"), &strings.Builder{}, t.TempDir(), nil)

	if err := a.ProcessResponse(context.Background(), "list files"); err != nil {
		t.Fatalf("ProcessResponse: %v", err)
	}

	raw := a.conv.GetRawMessages()
	var assistantWithCall *transport.Message
	for i := range raw {
		if raw[i].Role == transport.RoleAssistant && len(raw[i].ToolCalls) == 1 {
			assistantWithCall = &raw[i]
		}
	}
	if assistantWithCall == nil {
		t.Fatalf("no committed assistant message carries a tool_calls entry; raw = %+v", raw)
	}
	// spec.md §4.6's persist-tool-trace step: the call's persisted arguments
	// must be the edited ("modify") arguments, not the model's original
	// compact JSON — here, the editor's re-indented reformatting.
	got := string(assistantWithCall.ToolCalls[0].Arguments)
	if got == `{"command":"ls"}` {
		t.Fatalf("persisted arguments = %q, still the model's original — modify edit was not applied", got)
	}
	if !strings.Contains(got, "\n") {
		t.Fatalf("persisted arguments = %q, want the editor's indented reformatting", got)
	}
	if err := a.conv.ValidateInvariants(); err != nil {
		t.Errorf("ValidateInvariants: %v", err)
	}
}

func TestProcessResponseContextExhaustedFailsFast(t *testing.T) {
	client := transport.NewMock(&transport.Response{Text: "hi"})
	a, _ := newTestAgent(t, client)
	a.conv.AddUsage(0, 0, 0, 190000, 200000, 0, 0) // LastCtxPct = 95

	err := a.ProcessResponse(context.Background(), "continue")
	if err == nil {
		t.Fatal("expected context-exhausted error")
	}
}
