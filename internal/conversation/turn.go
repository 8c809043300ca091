package conversation

import "github.com/xonecas/symbagent/internal/transport"

// ValidateInvariants re-checks the tool-call pairing invariants (1 and 2 of
// spec.md §3) over the current message log via transport.ValidateSequence.
// The system-prompt position and whole-turn trimming are not checked here.
func (c *Conversation) ValidateInvariants() error {
	return transport.ValidateSequence(c.messages)
}

// turnBounds returns [start, end) index ranges for each turn: a turn begins
// at a user message and ends immediately before the next user message
// (spec.md GLOSSARY: "Turn"). The system prompt at index 0 is never part of
// a turn.
func (c *Conversation) turnBounds() [][2]int {
	var turns [][2]int
	start := -1
	for i, m := range c.messages {
		if m.Role == transport.RoleUser {
			if start >= 0 {
				turns = append(turns, [2]int{start, i})
			}
			start = i
		}
	}
	if start >= 0 {
		turns = append(turns, [2]int{start, len(c.messages)})
	}
	return turns
}

// TrimOldestTurn removes the earliest complete turn. Returns false if only
// the system prompt plus the last (pending) turn remain — trimming further
// would leave nothing to trim from (spec.md §4.4).
func (c *Conversation) TrimOldestTurn() bool {
	turns := c.turnBounds()
	if len(turns) <= 1 {
		return false
	}

	oldest := turns[0]
	out := make([]transport.Message, 0, len(c.messages)-(oldest[1]-oldest[0]))
	out = append(out, c.messages[:oldest[0]]...)
	out = append(out, c.messages[oldest[1]:]...)
	c.messages = out
	return true
}

// TrimUpTo removes up to n oldest turns, stopping early if TrimOldestTurn
// reports it cannot trim further (spec.md §8: "pct >= 90 trims at most 3
// oldest turns per turn").
func (c *Conversation) TrimUpTo(n int) int {
	trimmed := 0
	for i := 0; i < n; i++ {
		if !c.TrimOldestTurn() {
			break
		}
		trimmed++
	}
	return trimmed
}
