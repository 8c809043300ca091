package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// lineReader runs a bufio.Scanner in its own goroutine and forwards each
// line on a channel, so the driving loop below can poll cancellation on a
// fixed cadence instead of blocking indefinitely inside scanner.Scan()
// (spec.md §4.1.5: "Poll is_cancelled() on each scheduler tick (~50ms
// granularity)").
type lineReader struct {
	lines chan string
	err   chan error
}

func startLineReader(r io.Reader) *lineReader {
	lr := &lineReader{lines: make(chan string, 64), err: make(chan error, 1)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	go func() {
		defer close(lr.lines)
		for scanner.Scan() {
			lr.lines <- scanner.Text()
		}
		lr.err <- scanner.Err()
		close(lr.err)
	}()
	return lr
}

const cancelPollInterval = 50 * time.Millisecond

// pumpLines drains body's SSE lines into handle, polling isCancelled and
// ctx.Done() every cancelPollInterval. Returns true if cancelled.
func pumpLines(ctx context.Context, body io.ReadCloser, isCancelled func() bool, handle func(line string) (done bool)) (cancelled bool) {
	defer body.Close()
	lr := startLineReader(body)
	ticker := time.NewTicker(cancelPollInterval)
	defer ticker.Stop()

	for {
		select {
		case line, ok := <-lr.lines:
			if !ok {
				return false
			}
			if handle(line) {
				return false
			}
		case <-ticker.C:
			if isCancelled != nil && isCancelled() {
				return true
			}
		case <-ctx.Done():
			return false
		}
	}
}

// parseChatSSE drains a chat-completions dialect SSE body into state,
// invoking cb.Chunk for each content/reasoning delta. Returns cancelled.
func parseChatSSE(ctx context.Context, body io.ReadCloser, isCancelled func() bool, state *accumState, cb Callbacks) bool {
	return pumpLines(ctx, body, isCancelled, func(line string) bool {
		if !strings.HasPrefix(line, "data: ") {
			return false
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			return true
		}

		var frame chatStreamFrame
		if err := json.Unmarshal([]byte(data), &frame); err != nil {
			log.Warn().Err(err).Str("data", data).Msg("transport: failed to parse chat SSE frame")
			return false
		}
		if frame.Usage != nil {
			state.sawUsage = true
			state.usage.InputTokens += frame.Usage.PromptTokens
			state.usage.OutputTokens += frame.Usage.CompletionTokens
		}
		if len(frame.Choices) == 0 {
			return false
		}
		choice := frame.Choices[0]
		if choice.FinishReason != nil {
			state.finishReason = *choice.FinishReason
		}
		applyChatDelta(state, choice.Delta, cb)
		return false
	})
}

func applyChatDelta(state *accumState, delta chatStreamDelta, cb Callbacks) {
	reasoning := delta.Reasoning
	if reasoning == "" {
		reasoning = delta.ReasoningContent
	}
	if reasoning != "" {
		state.reasoning.WriteString(reasoning)
		if cb.Chunk != nil {
			cb.Chunk(ChunkReasoning, reasoning)
		}
	}
	if delta.Content != "" {
		state.content.WriteString(delta.Content)
		if cb.Chunk != nil {
			cb.Chunk(ChunkOutput, delta.Content)
		}
	}
	for _, tc := range delta.ToolCalls {
		if tc.Function.Name != "" || tc.ID != "" {
			state.toolCalls.begin(tc.Index, tc.ID, tc.Function.Name)
		}
		if tc.Function.Arguments != "" {
			state.toolCalls.delta(tc.Index, tc.Function.Arguments)
		}
	}
}

// parseResponsesSSE drains a Responses-dialect SSE body into state.
func parseResponsesSSE(ctx context.Context, body io.ReadCloser, isCancelled func() bool, state *accumState, cb Callbacks) bool {
	outputToToolIdx := make(map[int]int)
	var currentEvent string

	return pumpLines(ctx, body, isCancelled, func(line string) bool {
		if strings.HasPrefix(line, "event: ") {
			currentEvent = strings.TrimPrefix(line, "event: ")
			return false
		}
		if !strings.HasPrefix(line, "data: ") {
			return false
		}
		data := strings.TrimPrefix(line, "data: ")
		event := currentEvent
		currentEvent = ""

		switch event {
		case "response.output_text.delta":
			var fr responsesOutputTextDeltaFr
			if json.Unmarshal([]byte(data), &fr) == nil && fr.Delta != "" {
				state.content.WriteString(fr.Delta)
				if cb.Chunk != nil {
					cb.Chunk(ChunkOutput, fr.Delta)
				}
			}
		case "response.reasoning_summary_text.delta":
			var fr responsesReasoningDeltaFr
			if json.Unmarshal([]byte(data), &fr) == nil && fr.Delta != "" {
				state.reasoning.WriteString(fr.Delta)
				if cb.Chunk != nil {
					cb.Chunk(ChunkReasoning, fr.Delta)
				}
			}
		case "response.output_item.added":
			var fr responsesOutputItemAddedFr
			if json.Unmarshal([]byte(data), &fr) == nil && fr.Item.Type == "function_call" {
				idx := len(outputToToolIdx)
				outputToToolIdx[fr.OutputIndex] = idx
				state.toolCalls.begin(idx, fr.Item.CallID, fr.Item.Name)
			}
		case "response.function_call_arguments.delta":
			var fr responsesFuncCallArgsDeltaFr
			if json.Unmarshal([]byte(data), &fr) == nil && fr.Delta != "" {
				idx, ok := outputToToolIdx[fr.OutputIndex]
				if ok {
					state.toolCalls.delta(idx, fr.Delta)
				}
			}
		case "response.completed":
			var fr responsesCompletedFr
			if json.Unmarshal([]byte(data), &fr) == nil {
				state.responseID = fr.Response.ID
				if fr.Response.Usage != nil {
					state.sawUsage = true
					state.usage.InputTokens += fr.Response.Usage.InputTokens
					state.usage.OutputTokens += fr.Response.Usage.OutputTokens
				}
			}
			return true
		case "response.failed":
			var fr responsesFailedFr
			_ = json.Unmarshal([]byte(data), &fr)
			if cb.Error != nil {
				cb.Error("responses API error " + fr.Response.Error.Code + ": " + fr.Response.Error.Message)
			}
			return true
		case "response.incomplete":
			return true
		}
		return false
	})
}
