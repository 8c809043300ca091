// Package toolloop drives up to N assistant<->tool rounds against a
// transport.Client, dispatching approvals and executing tools, grounded on
// the teacher's internal/llm/loop.go ProcessTurn.
package toolloop

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/xonecas/symbagent/internal/conversation"
	"github.com/xonecas/symbagent/internal/transport"
)

// DecisionTag enumerates the approval outcomes from spec.md §4.3.
type DecisionTag int

const (
	Allow DecisionTag = iota
	Modify
	Deny
	Abort
	AbortWithMessage
)

// Decision is the synchronous approval hook's return value.
type Decision struct {
	Tag          DecisionTag
	ModifiedCall transport.ToolCall // set when Tag == Modify
	DenyError    string             // set when Tag == Deny
	AbortMessage string             // set when Tag == AbortWithMessage
}

// Executor dispatches one tool call to the static catalog.
type Executor interface {
	// Execute runs the named tool and returns its stringified result plus
	// whether the result represents an error (spec.md §4.2: Result always
	// carries {name, ok, error?}).
	Execute(ctx context.Context, name string, arguments json.RawMessage) (result string, isError bool, err error)
}

// ScratchpadReader provides read access to the agent's working plan, used by
// injectRecitation the way the teacher's internal/llm/loop.go does.
type ScratchpadReader interface {
	Content() string
}

// Opts configures one Loop invocation (spec.md §4.3 enumerated opts fields).
type Opts struct {
	Client         transport.Client
	Model          string
	Sampler        transport.Sampler
	Tools          []transport.Tool
	ExecuteTools   bool
	MaxSteps       int
	Stream         bool
	Endpoint       transport.Endpoint
	IsCancelled    func() bool
	Callbacks      transport.Callbacks
	Scratchpad     ScratchpadReader
	GoalReminder   string
	OnToolCall     func(call transport.ToolCall, index int, response *transport.Response) Decision
	OnToolResult   func(call transport.ToolCall, result string, isError bool)
	OnToolWarning  func(message string, call *transport.ToolCall)
	Executor       Executor
}

// Response is the outcome of a Loop invocation: the final transport response
// plus the tool-loop's own abort/cumulative-usage bookkeeping.
type Response struct {
	*transport.Response
	Aborted         bool
	AbortMessage    string
	StepsExhausted  bool   // true when max_steps was reached; Response carries a synthetic warning
	Warning         string
	ModifiedArgs    map[string]json.RawMessage // call id -> replacement args applied, for trace persistence
}

// Loop drives the tool-calling conversation per spec.md §4.3.
func Loop(ctx context.Context, conv *conversation.Conversation, opts Opts) (*Response, error) {
	if opts.MaxSteps == 0 {
		opts.MaxSteps = 60
	}

	modified := make(map[string]json.RawMessage)
	cumulative := transport.Usage{}
	var last *transport.Response

	for step := 0; step < opts.MaxSteps; step++ {
		injectRecitation(conv, opts.Scratchpad, opts.GoalReminder, step)

		resp, err := callTransport(ctx, conv, opts)
		if err != nil {
			return nil, fmt.Errorf("tool loop: transport call failed: %w", err)
		}
		cumulative.InputTokens += resp.CumulativeUsage.InputTokens
		cumulative.OutputTokens += resp.CumulativeUsage.OutputTokens
		resp.CumulativeUsage = cumulative
		last = resp

		if resp.Cancelled {
			conv.AddAssistant(resp.Text, resp.ReasoningText, nil)
			return &Response{Response: resp, ModifiedArgs: modified}, nil
		}

		if len(resp.ToolCalls) == 0 {
			conv.AddAssistant(resp.Text, resp.ReasoningText, nil)
			return &Response{Response: resp, ModifiedArgs: modified}, nil
		}

		if !opts.ExecuteTools {
			conv.AddAssistant(resp.Text, resp.ReasoningText, resp.ToolCalls)
			return &Response{Response: resp, ModifiedArgs: modified}, nil
		}

		aborted, abortMsg := executeRound(ctx, conv, opts, resp, modified)
		if aborted {
			return &Response{Response: resp, Aborted: true, AbortMessage: abortMsg, ModifiedArgs: modified}, nil
		}
	}

	// max_steps exhausted: return the last response carrying a synthetic
	// warning rather than issuing another transport call (spec.md §4.3 step 5).
	warning := fmt.Sprintf("tool call budget of %d steps exhausted before the model produced a final answer", opts.MaxSteps)
	if opts.OnToolWarning != nil {
		opts.OnToolWarning(warning, nil)
	}
	return &Response{Response: last, StepsExhausted: true, Warning: warning, ModifiedArgs: modified}, nil
}

// executeRound executes all tool calls in resp in declaration order,
// honoring each Decision. Returns (aborted, abortMessage).
//
// The assistant's tool_calls message is committed to conv lazily, on the
// first call that actually gets a tool result (allowed, modified, or
// denied) — not up front. spec.md §8 scenario 2 requires that when an
// abort happens before any call in the round has been processed, tool_trace
// is empty and the assistant turn is never committed at all: conversation
// holds only the original user turn and the re-entry user message, with no
// dangling tool_calls to close out.
func executeRound(ctx context.Context, conv *conversation.Conversation, opts Opts, resp *transport.Response, modified map[string]json.RawMessage) (bool, string) {
	committed := false
	commit := func() {
		if !committed {
			conv.AddAssistant(resp.Text, resp.ReasoningText, resp.ToolCalls)
			committed = true
		}
	}

	for i, call := range resp.ToolCalls {
		if call.ID == "" {
			call.ID = conversation.EnsureCallID()
			resp.ToolCalls[i].ID = call.ID
		}

		decision := Decision{Tag: Allow}
		if opts.OnToolCall != nil {
			decision = opts.OnToolCall(call, i, resp)
		}

		switch decision.Tag {
		case Abort:
			if committed {
				abortRemaining(conv, opts, resp.ToolCalls[i:], "aborted by user")
			}
			return true, ""
		case AbortWithMessage:
			if committed {
				abortRemaining(conv, opts, resp.ToolCalls[i:], "aborted: "+decision.AbortMessage)
			}
			return true, decision.AbortMessage
		case Deny:
			commit()
			conv.AddToolResult(call.ID, decision.DenyError)
			if opts.OnToolResult != nil {
				opts.OnToolResult(call, decision.DenyError, true)
			}
			continue
		case Modify:
			call = decision.ModifiedCall
			if call.ID == "" {
				call.ID = resp.ToolCalls[i].ID
			}
			modified[call.ID] = call.Arguments
		}

		commit()
		result, isError, execErr := executeOne(ctx, opts, call)
		if execErr != nil {
			result = execErr.Error()
			isError = true
			if opts.OnToolWarning != nil {
				opts.OnToolWarning(execErr.Error(), &call)
			}
		}
		conv.AddToolResult(call.ID, result)
		if opts.OnToolResult != nil {
			opts.OnToolResult(call, result, isError)
		}
	}
	return false, ""
}

// abortRemaining records a tool result for every call that would otherwise
// be dangling when a round is cut short by Abort/AbortWithMessage, keeping
// the conversation's invariant-1 pairing intact (spec.md §3) so the next
// user turn can be appended without a validation failure.
func abortRemaining(conv *conversation.Conversation, opts Opts, calls []transport.ToolCall, reason string) {
	for _, call := range calls {
		if call.ID == "" {
			call.ID = conversation.EnsureCallID()
		}
		conv.AddToolResult(call.ID, reason)
		if opts.OnToolResult != nil {
			opts.OnToolResult(call, reason, true)
		}
	}
}

func executeOne(ctx context.Context, opts Opts, call transport.ToolCall) (string, bool, error) {
	if opts.Executor == nil {
		return "", true, fmt.Errorf("tool.not_found: no executor configured for %q", call.Name)
	}
	result, isError, err := opts.Executor.Execute(ctx, call.Name, call.Arguments)
	if err != nil {
		log.Warn().Str("tool", call.Name).Err(err).Msg("toolloop: tool execution error")
	}
	return result, isError, err
}

func callTransport(ctx context.Context, conv *conversation.Conversation, opts Opts) (*transport.Response, error) {
	messages := conv.GetMessagesForAPI()
	apiOpts := transport.Opts{
		Tools:       opts.Tools,
		Endpoint:    opts.Endpoint,
		IsCancelled: opts.IsCancelled,
		PreviousID:  previousResponseID(messages),
	}
	if opts.Stream {
		return opts.Client.Stream(ctx, opts.Model, messages, opts.Sampler, opts.Callbacks, apiOpts)
	}
	return opts.Client.Complete(ctx, opts.Model, messages, opts.Sampler, apiOpts)
}

// previousResponseID returns the response_id to chain from when the latest
// turn tail is a contiguous run of tool results following an assistant
// response that recorded one (spec.md §6, Responses dialect continuation).
func previousResponseID(messages []transport.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == transport.RoleTool {
			continue
		}
		if messages[i].Role == transport.RoleAssistant {
			return messages[i].ResponseID
		}
		return ""
	}
	return ""
}
