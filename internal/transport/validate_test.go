package transport

import "testing"

func TestValidateSequenceHappyPath(t *testing.T) {
	msgs := []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "c1", Name: "read"}}},
		{Role: RoleTool, ToolCallID: "c1", Content: "ok"},
		{Role: RoleAssistant, Content: "done"},
	}
	if err := ValidateSequence(msgs); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateSequenceDanglingToolCall(t *testing.T) {
	msgs := []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "c1", Name: "read"}}},
		{Role: RoleUser, Content: "again"},
	}
	err := ValidateSequence(msgs)
	if err == nil {
		t.Fatal("expected dangling_tool_call error")
	}
}

func TestValidateSequenceUnknownToolCallID(t *testing.T) {
	msgs := []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleTool, ToolCallID: "ghost", Content: "oops"},
	}
	err := ValidateSequence(msgs)
	if err == nil {
		t.Fatal("expected unknown_tool_call_id error")
	}
}

func TestValidateSequenceDuplicateCallID(t *testing.T) {
	msgs := []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "c1"}, {ID: "c1"}}},
	}
	err := ValidateSequence(msgs)
	if err == nil {
		t.Fatal("expected duplicate_call_id error")
	}
}

func TestValidateSequenceMultipleToolCallsInOrder(t *testing.T) {
	msgs := []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "c1"}, {ID: "c2"}}},
		{Role: RoleTool, ToolCallID: "c1", Content: "a"},
		{Role: RoleTool, ToolCallID: "c2", Content: "b"},
	}
	if err := ValidateSequence(msgs); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}
