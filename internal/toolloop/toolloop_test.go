package toolloop

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/xonecas/symbagent/internal/conversation"
	"github.com/xonecas/symbagent/internal/transport"
)

type stubExecutor struct {
	calls   int
	result  string
	isError bool
	err     error
}

func (s *stubExecutor) Execute(ctx context.Context, name string, args json.RawMessage) (string, bool, error) {
	s.calls++
	return s.result, s.isError, s.err
}

func TestLoopReturnsImmediatelyWhenNoToolCalls(t *testing.T) {
	conv := conversation.New("sys")
	conv.AddUser("hello")
	client := transport.NewMock(&transport.Response{Text: "hi there"})

	resp, err := Loop(context.Background(), conv, Opts{Client: client, ExecuteTools: true})
	if err != nil {
		t.Fatalf("Loop: %v", err)
	}
	if resp.Text != "hi there" {
		t.Errorf("Text = %q", resp.Text)
	}
	if conv.Count() != 3 {
		t.Fatalf("count = %d, want 3 (system, user, assistant)", conv.Count())
	}
}

func TestLoopExecutesToolCallAndContinues(t *testing.T) {
	conv := conversation.New("sys")
	conv.AddUser("read the file")
	client := transport.NewMock(
		&transport.Response{ToolCalls: []transport.ToolCall{{ID: "c1", Name: "read"}}},
		&transport.Response{Text: "file contents were read"},
	)
	exec := &stubExecutor{result: "file body", isError: false}

	resp, err := Loop(context.Background(), conv, Opts{Client: client, ExecuteTools: true, Executor: exec})
	if err != nil {
		t.Fatalf("Loop: %v", err)
	}
	if exec.calls != 1 {
		t.Fatalf("executor calls = %d, want 1", exec.calls)
	}
	if resp.Text != "file contents were read" {
		t.Errorf("Text = %q", resp.Text)
	}
	if err := conv.ValidateInvariants(); err != nil {
		t.Fatalf("ValidateInvariants: %v", err)
	}
}

func TestLoopDenyDecisionSkipsExecution(t *testing.T) {
	conv := conversation.New("sys")
	conv.AddUser("delete everything")
	client := transport.NewMock(
		&transport.Response{ToolCalls: []transport.ToolCall{{ID: "c1", Name: "shell"}}},
		&transport.Response{Text: "ok, I will not do that"},
	)
	exec := &stubExecutor{result: "should not run"}

	opts := Opts{
		Client:       client,
		ExecuteTools: true,
		Executor:     exec,
		OnToolCall: func(call transport.ToolCall, index int, r *transport.Response) Decision {
			return Decision{Tag: Deny, DenyError: "denied by policy"}
		},
	}
	_, err := Loop(context.Background(), conv, opts)
	if err != nil {
		t.Fatalf("Loop: %v", err)
	}
	if exec.calls != 0 {
		t.Fatalf("executor should not have run, calls = %d", exec.calls)
	}
	if err := conv.ValidateInvariants(); err != nil {
		t.Fatalf("ValidateInvariants: %v", err)
	}
}

func TestLoopAbortWithMessageStopsAndReturnsReason(t *testing.T) {
	conv := conversation.New("sys")
	conv.AddUser("do something risky")
	client := transport.NewMock(
		&transport.Response{ToolCalls: []transport.ToolCall{{ID: "c1", Name: "shell"}}},
	)

	opts := Opts{
		Client:       client,
		ExecuteTools: true,
		OnToolCall: func(call transport.ToolCall, index int, r *transport.Response) Decision {
			return Decision{Tag: AbortWithMessage, AbortMessage: "user cancelled"}
		},
	}
	resp, err := Loop(context.Background(), conv, opts)
	if err != nil {
		t.Fatalf("Loop: %v", err)
	}
	if !resp.Aborted || resp.AbortMessage != "user cancelled" {
		t.Fatalf("resp = %+v", resp)
	}
	if conv.Count() != 2 {
		t.Fatalf("count = %d, want 2 (system, user only: tool_trace was empty, spec.md §8 scenario 2)", conv.Count())
	}
	if err := conv.ValidateInvariants(); err != nil {
		t.Fatalf("ValidateInvariants: %v (aborted round must not leave a dangling tool_call)", err)
	}
	conv.AddUser("read AGENTS.md instead")
	if err := conv.ValidateInvariants(); err != nil {
		t.Fatalf("ValidateInvariants after re-entering with the abort message: %v", err)
	}
}

func TestLoopAbortAtFirstCallCommitsNothing(t *testing.T) {
	conv := conversation.New("sys")
	conv.AddUser("do two risky things")
	client := transport.NewMock(
		&transport.Response{ToolCalls: []transport.ToolCall{
			{ID: "c1", Name: "shell"},
			{ID: "c2", Name: "shell"},
		}},
	)

	opts := Opts{
		Client:       client,
		ExecuteTools: true,
		OnToolCall: func(call transport.ToolCall, index int, r *transport.Response) Decision {
			return Decision{Tag: Abort}
		},
	}
	resp, err := Loop(context.Background(), conv, opts)
	if err != nil {
		t.Fatalf("Loop: %v", err)
	}
	if !resp.Aborted {
		t.Fatalf("resp = %+v, want Aborted", resp)
	}
	if conv.Count() != 2 {
		t.Fatalf("count = %d, want 2 (system, user only: tool_trace was empty, so the assistant turn is never committed, spec.md §8 scenario 2)", conv.Count())
	}
	if err := conv.ValidateInvariants(); err != nil {
		t.Fatalf("ValidateInvariants: %v", err)
	}
}

func TestLoopAbortMidRoundClosesOutRemainingCalls(t *testing.T) {
	conv := conversation.New("sys")
	conv.AddUser("do two things")
	client := transport.NewMock(
		&transport.Response{ToolCalls: []transport.ToolCall{
			{ID: "c1", Name: "read"},
			{ID: "c2", Name: "shell"},
		}},
	)
	exec := &stubExecutor{result: "ok"}

	opts := Opts{
		Client:       client,
		ExecuteTools: true,
		Executor:     exec,
		OnToolCall: func(call transport.ToolCall, index int, r *transport.Response) Decision {
			if index == 0 {
				return Decision{Tag: Allow}
			}
			return Decision{Tag: Abort}
		},
	}
	resp, err := Loop(context.Background(), conv, opts)
	if err != nil {
		t.Fatalf("Loop: %v", err)
	}
	if !resp.Aborted {
		t.Fatalf("resp = %+v, want Aborted", resp)
	}
	if exec.calls != 1 {
		t.Fatalf("executor calls = %d, want 1 (only c1 ran before the abort)", exec.calls)
	}
	if conv.Count() != 5 {
		t.Fatalf("count = %d, want 5 (system, user, assistant(tool_calls=[c1,c2]), tool(c1), tool(c2))", conv.Count())
	}
	if err := conv.ValidateInvariants(); err != nil {
		t.Fatalf("ValidateInvariants: %v (c1's real result and c2's synthetic abort result must both be present)", err)
	}
}

func TestLoopModifyDecisionReplacesArguments(t *testing.T) {
	conv := conversation.New("sys")
	conv.AddUser("write to file")
	client := transport.NewMock(
		&transport.Response{ToolCalls: []transport.ToolCall{{ID: "c1", Name: "write", Arguments: []byte(`{"path":"a"}`)}}},
		&transport.Response{Text: "done"},
	)
	exec := &stubExecutor{result: "wrote"}

	opts := Opts{
		Client:       client,
		ExecuteTools: true,
		Executor:     exec,
		OnToolCall: func(call transport.ToolCall, index int, r *transport.Response) Decision {
			call.Arguments = []byte(`{"path":"b"}`)
			return Decision{Tag: Modify, ModifiedCall: call}
		},
	}
	resp, err := Loop(context.Background(), conv, opts)
	if err != nil {
		t.Fatalf("Loop: %v", err)
	}
	if len(resp.ModifiedArgs) != 1 || string(resp.ModifiedArgs["c1"]) != `{"path":"b"}` {
		t.Fatalf("ModifiedArgs = %+v", resp.ModifiedArgs)
	}
}

func TestLoopToolExecutionErrorBecomesToolWarningAndResult(t *testing.T) {
	conv := conversation.New("sys")
	conv.AddUser("run it")
	client := transport.NewMock(
		&transport.Response{ToolCalls: []transport.ToolCall{{ID: "c1", Name: "shell"}}},
		&transport.Response{Text: "handled the failure"},
	)
	exec := &stubExecutor{err: errors.New("command not found")}
	var warned string

	opts := Opts{
		Client:       client,
		ExecuteTools: true,
		Executor:     exec,
		OnToolWarning: func(msg string, call *transport.ToolCall) {
			warned = msg
		},
	}
	_, err := Loop(context.Background(), conv, opts)
	if err != nil {
		t.Fatalf("Loop: %v", err)
	}
	if warned != "command not found" {
		t.Errorf("warned = %q", warned)
	}
}

func TestLoopExhaustsStepsAndReturnsLastResponseWithWarning(t *testing.T) {
	conv := conversation.New("sys")
	conv.AddUser("loop forever")
	client := transport.NewMock(&transport.Response{ToolCalls: []transport.ToolCall{{ID: "c1", Name: "read"}}})
	exec := &stubExecutor{result: "ok"}

	opts := Opts{Client: client, ExecuteTools: true, Executor: exec, MaxSteps: 2}
	resp, err := Loop(context.Background(), conv, opts)
	if err != nil {
		t.Fatalf("Loop: %v", err)
	}
	if !resp.StepsExhausted || resp.Warning == "" {
		t.Fatalf("expected StepsExhausted with a warning, got %+v", resp)
	}
}

func TestLoopCancelledResponseStopsWithoutExecutingTools(t *testing.T) {
	conv := conversation.New("sys")
	conv.AddUser("start")
	client := transport.NewMock(&transport.Response{Cancelled: true, Text: "partial"})
	exec := &stubExecutor{}

	resp, err := Loop(context.Background(), conv, Opts{Client: client, ExecuteTools: true, Executor: exec})
	if err != nil {
		t.Fatalf("Loop: %v", err)
	}
	if !resp.Cancelled {
		t.Error("expected Cancelled response to propagate")
	}
	if exec.calls != 0 {
		t.Error("should not execute tools on cancellation")
	}
}
