package transport

// ValidateSequence checks the conversation invariants from spec.md §3 before
// any network I/O: every assistant tool_calls id must be answered by exactly
// one tool message, in declaration order, before the next non-tool message;
// no tool message may reference an id that isn't currently outstanding; no
// id may be declared twice among the outstanding set.
func ValidateSequence(messages []Message) error {
	outstanding := make(map[string]bool)
	order := make([]string, 0, 4)

	flushUnanswered := func() error {
		if len(order) > 0 {
			return newError(KindSequence, "dangling_tool_call: "+order[0], nil)
		}
		return nil
	}

	for _, m := range messages {
		switch m.Role {
		case RoleAssistant:
			if err := flushUnanswered(); err != nil {
				return err
			}
			for _, tc := range m.ToolCalls {
				if outstanding[tc.ID] {
					return newError(KindSequence, "duplicate_call_id: "+tc.ID, nil)
				}
				outstanding[tc.ID] = true
				order = append(order, tc.ID)
			}
		case RoleTool:
			if len(order) == 0 || order[0] != m.ToolCallID {
				if !outstanding[m.ToolCallID] {
					return newError(KindSequence, "unknown_tool_call_id: "+m.ToolCallID, nil)
				}
				return newError(KindSequence, "invalid_role_ordering: tool result out of declaration order", nil)
			}
			delete(outstanding, m.ToolCallID)
			order = order[1:]
		default:
			if err := flushUnanswered(); err != nil {
				return err
			}
		}
	}

	return flushUnanswered()
}
