// Package conversation implements the append-only message log, its
// invariants, usage/cost accounting, and trim-oldest-turn operator
// described in spec.md §3/§4.4.
package conversation

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xonecas/symbagent/internal/transport"
)

// Cost holds the running usage/cost totals named in spec.md §3.
type Cost struct {
	Requests      int
	InputTokens   int
	OutputTokens  int
	CachedTokens  int
	TotalCost     float64
	LastCtxTokens int
	LastCtxPct    float64
	PeakCtxTokens int
	PeakCtxPct    float64
	ContextWindow int
}

// TrimConfig holds the soft-truncation policy for old tool results
// (spec.md §9 Open Question: "replace tool content > 4KB older than the
// 3rd-most-recent turn with a short placeholder carrying the byte count").
type TrimConfig struct {
	MaxToolResultBytes int
	KeepRecentTurns    int
}

// DefaultTrimConfig is the policy spec.md §9 resolves the open question to.
var DefaultTrimConfig = TrimConfig{MaxToolResultBytes: 4096, KeepRecentTurns: 3}

// Conversation is the ordered message log plus system prompt and cost state.
type Conversation struct {
	name         string
	systemPrompt string
	messages     []transport.Message
	cost         Cost
	trim         TrimConfig
}

// New creates a Conversation with the given system prompt at index 0.
func New(systemPrompt string) *Conversation {
	c := &Conversation{trim: DefaultTrimConfig}
	c.SetSystemPrompt(systemPrompt)
	return c
}

// SetSystemPrompt replaces the system prompt, which always occupies index 0
// (spec.md §3 invariant 3).
func (c *Conversation) SetSystemPrompt(prompt string) {
	c.systemPrompt = prompt
	if len(c.messages) > 0 && c.messages[0].Role == transport.RoleSystem {
		c.messages[0].Content = prompt
		return
	}
	sys := transport.Message{Role: transport.RoleSystem, Content: prompt, CreatedAt: now()}
	c.messages = append([]transport.Message{sys}, c.messages...)
}

// AddUser appends a user message.
func (c *Conversation) AddUser(text string) {
	c.messages = append(c.messages, transport.Message{Role: transport.RoleUser, Content: text, CreatedAt: now()})
}

// AddAssistant appends an assistant message, minting ids for any tool call
// missing one (spec.md §3: "if missing, synthesize a locally-unique
// identifier before persistence").
func (c *Conversation) AddAssistant(text, reasoning string, toolCalls []transport.ToolCall) {
	for i := range toolCalls {
		if toolCalls[i].ID == "" {
			toolCalls[i].ID = EnsureCallID()
		}
	}
	c.messages = append(c.messages, transport.Message{
		Role:      transport.RoleAssistant,
		Content:   text,
		Reasoning: reasoning,
		ToolCalls: toolCalls,
		CreatedAt: now(),
	})
}

// AddToolResult appends a tool message answering callID.
func (c *Conversation) AddToolResult(callID, content string) {
	c.messages = append(c.messages, transport.Message{
		Role:       transport.RoleTool,
		ToolCallID: callID,
		Content:    content,
		CreatedAt:  now(),
	})
}

// ApplyModifiedArgs rewrites the Arguments of any already-persisted
// assistant tool_calls entry whose id is a key in modified, so the trace
// reflects the user's 'modify' edit rather than the model's original
// arguments (spec.md §4.6's persist-tool-trace step, §9).
func (c *Conversation) ApplyModifiedArgs(modified map[string]json.RawMessage) {
	if len(modified) == 0 {
		return
	}
	for i := range c.messages {
		if c.messages[i].Role != transport.RoleAssistant {
			continue
		}
		for j := range c.messages[i].ToolCalls {
			if args, ok := modified[c.messages[i].ToolCalls[j].ID]; ok {
				c.messages[i].ToolCalls[j].Arguments = args
			}
		}
	}
}

// Count returns the number of messages in the log.
func (c *Conversation) Count() int { return len(c.messages) }

// GetRawMessages returns the raw message slice (for persistence).
func (c *Conversation) GetRawMessages() []transport.Message { return c.messages }

// GetName returns the conversation's save-file name.
func (c *Conversation) GetName() string { return c.name }

// SetName sets the conversation's save-file name.
func (c *Conversation) SetName(name string) { c.name = name }

// Cost returns a copy of the current cost state.
func (c *Conversation) Cost() Cost { return c.cost }

// AddUsage updates cumulative counters and recomputes total_cost and
// last_ctx_pct / peak_ctx_* per spec.md §4.4.
func (c *Conversation) AddUsage(input, output, cached, ctx, ctxWindow int, promptPrice, completionPrice float64) {
	c.cost.Requests++
	c.cost.InputTokens += input
	c.cost.OutputTokens += output
	c.cost.CachedTokens += cached
	c.cost.LastCtxTokens = ctx
	c.cost.ContextWindow = ctxWindow

	if promptPrice > 0 || completionPrice > 0 {
		c.cost.TotalCost += float64(input)*promptPrice + float64(output)*completionPrice
	}

	if ctxWindow > 0 {
		c.cost.LastCtxPct = 100 * float64(ctx) / float64(ctxWindow)
	} else {
		c.cost.LastCtxPct = 0
	}

	if ctx > c.cost.PeakCtxTokens {
		c.cost.PeakCtxTokens = ctx
		c.cost.PeakCtxPct = c.cost.LastCtxPct
	}
}

// now is a seam so tests can avoid depending on wall-clock time.
var now = time.Now

func unixTime(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}

// EnsureCallID mints a deterministic-looking but collision-resistant tool
// call id, grounded on spec.md §9: "a deterministic mint that uses a
// counter plus a short random suffix".
var callCounter int

func EnsureCallID() string {
	callCounter++
	return fmt.Sprintf("call_%d_%s", callCounter, uuid.NewString()[:8])
}
