package toolloop

import (
	"fmt"

	"github.com/xonecas/symbagent/internal/conversation"
)

// recitationInterval mirrors the teacher's loop.go cadence for re-injecting
// the scratchpad/goal so long tool chains don't drift off task.
const recitationInterval = 8

// injectRecitation appends a user reminder message every recitationInterval
// steps, carrying the live scratchpad contents and the original goal, the
// way the teacher's internal/llm/loop.go nudges long-running turns.
func injectRecitation(conv *conversation.Conversation, pad ScratchpadReader, goal string, step int) {
	if step == 0 || step%recitationInterval != 0 {
		return
	}
	if pad == nil && goal == "" {
		return
	}

	msg := "Reminder of your current goal and plan before continuing:\n"
	if goal != "" {
		msg += fmt.Sprintf("Goal: %s\n", goal)
	}
	if pad != nil {
		if content := pad.Content(); content != "" {
			msg += "Scratchpad:\n" + content
		}
	}
	conv.AddUser(msg)
}
