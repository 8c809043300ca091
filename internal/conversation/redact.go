package conversation

import (
	"fmt"

	"github.com/xonecas/symbagent/internal/transport"
)

// GetMessagesForAPI returns a view suitable for sending to the transport:
// tool results older than the Nth-most-recent turn whose content exceeds
// MaxToolResultBytes are replaced whole (never partially edited) with a
// placeholder, preserving invariants 1-2 since the replacement keeps the
// same role and tool_call_id (spec.md §4.4, §9).
func (c *Conversation) GetMessagesForAPI() []transport.Message {
	turns := c.turnBounds()
	if len(turns) <= c.trim.KeepRecentTurns {
		return append([]transport.Message(nil), c.messages...)
	}

	cutoff := turns[len(turns)-c.trim.KeepRecentTurns][0]

	out := make([]transport.Message, len(c.messages))
	copy(out, c.messages)
	for i := 0; i < cutoff; i++ {
		if out[i].Role != transport.RoleTool {
			continue
		}
		if len(out[i].Content) <= c.trim.MaxToolResultBytes {
			continue
		}
		out[i].Content = fmt.Sprintf("[truncated: tool result was %d bytes, older than the %d most recent turns]",
			len(out[i].Content), c.trim.KeepRecentTurns)
	}
	return out
}
