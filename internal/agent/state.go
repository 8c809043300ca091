package agent

import "time"

// ToolRenderState tracks how many screen lines the tool-call display has
// painted since the last live text chunk, split into sticky lines (a
// permanent per-call summary) and transient lines (an ephemeral status
// superseded by the next call). Grounded on spec.md §4.6's tool render
// state rule.
type ToolRenderState struct {
	stickyLines    int
	transientLines int
}

// PaintSticky records n additional sticky lines painted for a finished tool call.
func (s *ToolRenderState) PaintSticky(n int) {
	s.stickyLines += n
}

// PaintTransient replaces the current transient line count (e.g. a
// "running..." status) with n.
func (s *ToolRenderState) PaintTransient(n int) {
	s.transientLines = n
}

// OnLiveText reports how many lines to clear when a live streamed text
// chunk arrives after a tool chain has painted: sticky lines are no longer
// conceptually part of the new output once text resumes, so both sticky
// and transient lines clear together when any sticky lines exist;
// otherwise only the transient status clears.
func (s *ToolRenderState) OnLiveText() int {
	if s.stickyLines > 0 {
		n := s.stickyLines + s.transientLines
		s.stickyLines = 0
		s.transientLines = 0
		return n
	}
	n := s.transientLines
	s.transientLines = 0
	return n
}

// OnNestedToolCall reports how many lines to clear when a new tool call
// supersedes a prior non-sticky (transient) display.
func (s *ToolRenderState) OnNestedToolCall() int {
	n := s.transientLines
	s.transientLines = 0
	return n
}

// brailleFrames is the thinking-indicator animation sequence, grounded on
// the teacher's internal/tui/update_llm.go spinner.
var brailleFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// thinkingInterval is the frame advance cadence while a turn is in flight,
// matching the teacher's fast (100ms) spinner speed.
const thinkingInterval = 100 * time.Millisecond

// ThinkingIndicator shows an animated "thinking …" line while reasoning
// deltas arrive with no output text yet on the current turn, per spec.md
// §4.6.
type ThinkingIndicator struct {
	active bool
	frame  int
	last   time.Time
}

// Start activates the indicator at the first reasoning chunk of a turn.
func (t *ThinkingIndicator) Start(now time.Time) {
	t.active = true
	t.frame = 0
	t.last = now
}

// Stop clears the indicator, called before the first output chunk.
func (t *ThinkingIndicator) Stop() {
	t.active = false
}

// Active reports whether the indicator is currently showing.
func (t *ThinkingIndicator) Active() bool {
	return t.active
}

// Frame returns the indicator line to display, advancing the animation
// frame if enough time has elapsed since the last advance.
func (t *ThinkingIndicator) Frame(now time.Time) string {
	if !t.active {
		return ""
	}
	if now.Sub(t.last) >= thinkingInterval {
		t.frame = (t.frame + 1) % len(brailleFrames)
		t.last = now
	}
	return brailleFrames[t.frame] + " thinking …"
}
