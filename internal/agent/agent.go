// Package agent implements the controller that glues user input, the
// streaming transport, the tool loop, approval prompts, and the markdown
// renderer into one interactive turn, per spec.md §4.6. Grounded on the
// teacher's internal/llm/loop.go ProcessTurn and internal/tui/update_llm.go,
// restructured from bubbletea's message-passing model into a single
// synchronous call since this driver owns its own terminal loop.
package agent

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xonecas/symbagent/internal/conversation"
	"github.com/xonecas/symbagent/internal/index"
	"github.com/xonecas/symbagent/internal/render"
	"github.com/xonecas/symbagent/internal/termio"
	"github.com/xonecas/symbagent/internal/tools"
	"github.com/xonecas/symbagent/internal/toolloop"
	"github.com/xonecas/symbagent/internal/transport"
)

// Options configures a new Agent.
type Options struct {
	Conversation    *conversation.Conversation
	Client          transport.Client
	Model           string
	Sampler         transport.Sampler
	Endpoint        transport.Endpoint
	ContextWindow   int
	PromptPrice     float64
	CompletionPrice float64
	MaxSteps        int
	BasePrompt      string
	Catalog         *tools.Catalog
	Scratchpad      *tools.Scratchpad
	Index           *index.Index
	Approver        *Approver
	Out             io.Writer
	Width           int
	SyntaxTheme     string
	Root            string
}

// Agent is the controller driving one conversation. It is not safe for
// concurrent use; only one turn runs at a time (spec.md §5: "single
// producer").
type Agent struct {
	conv            *conversation.Conversation
	client          transport.Client
	model           string
	sampler         transport.Sampler
	endpoint        transport.Endpoint
	contextWindow   int
	promptPrice     float64
	completionPrice float64
	maxSteps        int
	basePrompt      string
	catalog         *tools.Catalog
	scratchpad      *tools.Scratchpad
	index           *index.Index
	approver        *Approver
	out             io.Writer
	root            string

	renderer   *render.Renderer
	toolRender ToolRenderState
	thinking   ThinkingIndicator
	goal       string
}

// New builds an Agent from opts.
func New(opts Options) *Agent {
	return &Agent{
		conv:            opts.Conversation,
		client:          opts.Client,
		model:           opts.Model,
		sampler:         opts.Sampler,
		endpoint:        opts.Endpoint,
		contextWindow:   opts.ContextWindow,
		promptPrice:     opts.PromptPrice,
		completionPrice: opts.CompletionPrice,
		maxSteps:        opts.MaxSteps,
		basePrompt:      opts.BasePrompt,
		catalog:         opts.Catalog,
		scratchpad:      opts.Scratchpad,
		index:           opts.Index,
		approver:        opts.Approver,
		out:             opts.Out,
		root:            opts.Root,
		renderer:        render.New(opts.Out, opts.Width, opts.SyntaxTheme),
	}
}

// ProcessResponse drives one user turn to completion, per spec.md §4.6's
// process_response pseudocode: add the user message, guard against context
// exhaustion, rebuild the system prompt, run the tool loop, persist the
// trace, handle cancellation/abort, update usage, trim if needed, and
// finalize the renderer.
func (a *Agent) ProcessResponse(ctx context.Context, input string) error {
	a.goal = input
	for {
		a.conv.AddUser(input)

		preCtxPct := a.conv.Cost().LastCtxPct
		if preCtxPct >= 95 && a.conv.Count() <= 2 {
			return fmt.Errorf("context exhausted")
		}

		a.conv.SetSystemPrompt(BuildSystemPrompt(a.basePrompt, a.index))

		a.toolRender = ToolRenderState{}
		a.thinking = ThinkingIndicator{}

		cancel := termio.Install()
		result, err := toolloop.Loop(ctx, a.conv, toolloop.Opts{
			Client:        a.client,
			Model:         a.model,
			Sampler:       a.sampler,
			Tools:         a.catalog.Specs(),
			ExecuteTools:  true,
			MaxSteps:      a.maxSteps,
			Stream:        true,
			Endpoint:      a.endpoint,
			IsCancelled:   cancel.IsCancelled,
			Callbacks:     a.streamCallbacks(),
			Scratchpad:    a.scratchpad,
			GoalReminder:  a.goal,
			OnToolCall:    a.onToolCall,
			OnToolResult:  a.onToolResult,
			OnToolWarning: a.onToolWarning,
			Executor:      a.catalog,
		})
		cancel.Remove()
		if err != nil {
			a.renderer.Finalize()
			return err
		}

		a.conv.ApplyModifiedArgs(result.ModifiedArgs)

		if result.Cancelled {
			a.renderer.Finalize()
			return nil
		}

		if result.Aborted {
			a.renderer.Finalize()
			if result.AbortMessage != "" {
				input = result.AbortMessage
				continue
			}
			return nil
		}

		a.conv.AddUsage(result.CumulativeUsage.InputTokens, result.CumulativeUsage.OutputTokens, 0,
			result.Ctx, a.contextWindow, a.promptPrice, a.completionPrice)

		if a.conv.Cost().LastCtxPct >= 90 {
			for i := 0; i < 3; i++ {
				if !a.conv.TrimOldestTurn() {
					break
				}
			}
		}

		a.renderer.Finalize()
		return nil
	}
}

// streamCallbacks wires transport.Callbacks to the renderer and thinking
// indicator, per spec.md §4.6: reasoning chunks show the thinking
// indicator until the first output chunk, which clears it and resumes
// live text (clearing any sticky tool-call display first).
func (a *Agent) streamCallbacks() transport.Callbacks {
	return transport.Callbacks{
		Chunk: func(kind transport.ChunkKind, text string) {
			switch kind {
			case transport.ChunkReasoning:
				a.paintThinking()
			case transport.ChunkOutput:
				a.clearThinking()
				if n := a.toolRender.OnLiveText(); n > 0 {
					a.clearLines(n)
				}
				a.renderer.Handle(render.Event{Type: render.Text, Text: text})
			}
		},
		Error: func(message string) {
			fmt.Fprintf(a.out, "\ntransport error: %s\n", message)
		},
	}
}

// paintThinking starts (or redraws) the braille spinner line on a reasoning
// chunk, redrawing in place once already active.
func (a *Agent) paintThinking() {
	now := time.Now()
	if !a.thinking.Active() && !a.renderer.HadOutput() {
		a.thinking.Start(now)
		fmt.Fprintf(a.out, "\n%s", a.thinking.Frame(now))
		return
	}
	if a.thinking.Active() {
		fmt.Fprintf(a.out, "%s%s%s", termio.CarriageReturn, termio.ClearToEnd, a.thinking.Frame(now))
	}
}

// clearThinking erases the spinner line once real output starts.
func (a *Agent) clearThinking() {
	if !a.thinking.Active() {
		return
	}
	a.thinking.Stop()
	fmt.Fprintf(a.out, "%s%s", termio.CarriageReturn, termio.ClearToEnd)
}

// clearLines moves the cursor up n lines and clears to end of screen,
// erasing a prior tool-call display before new content is painted.
func (a *Agent) clearLines(n int) {
	fmt.Fprintf(a.out, "%s%s%s", termio.CursorUp(n), termio.CarriageReturn, termio.ClearToEnd)
}
