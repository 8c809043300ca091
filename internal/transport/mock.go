package transport

import (
	"context"
	"sync"
)

// MockClient is a scriptable test double implementing Client, grounded on
// the teacher's internal/provider/mock.go.
type MockClient struct {
	mu sync.Mutex

	responses []*Response
	chatErr   error
	streamErr error
	calls     int
}

// NewMock creates a mock transport that returns responses in order, one per
// call to Stream or Complete; the last response repeats once exhausted.
func NewMock(responses ...*Response) *MockClient {
	return &MockClient{responses: responses}
}

// WithChatError makes Complete return err.
func (m *MockClient) WithChatError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chatErr = err
	return m
}

// WithStreamError makes Stream return err.
func (m *MockClient) WithStreamError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streamErr = err
	return m
}

func (m *MockClient) next() *Response {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.responses) == 0 {
		return &Response{}
	}
	idx := m.calls
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	m.calls++
	return m.responses[idx]
}

// Stream implements Client.Stream by replaying the scripted response as a
// single chunk, honoring callbacks.
func (m *MockClient) Stream(ctx context.Context, model string, messages []Message, sampler Sampler, callbacks Callbacks, opts Opts) (*Response, error) {
	if err := ValidateSequence(messages); err != nil {
		return nil, err
	}
	m.mu.Lock()
	err := m.streamErr
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	resp := m.next()
	if callbacks.Chunk != nil {
		if resp.ReasoningText != "" {
			callbacks.Chunk(ChunkReasoning, resp.ReasoningText)
		}
		if resp.Text != "" {
			callbacks.Chunk(ChunkOutput, resp.Text)
		}
	}
	if callbacks.Done != nil {
		callbacks.Done()
	}
	out := *resp
	out.Model = model
	return &out, nil
}

// Complete implements Client.Complete.
func (m *MockClient) Complete(ctx context.Context, model string, messages []Message, sampler Sampler, opts Opts) (*Response, error) {
	if err := ValidateSequence(messages); err != nil {
		return nil, err
	}
	m.mu.Lock()
	err := m.chatErr
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	resp := m.next()
	out := *resp
	out.Model = model
	return &out, nil
}

// ListModels implements Client.ListModels.
func (m *MockClient) ListModels(ctx context.Context) ([]string, error) {
	return []string{"mock-model"}, nil
}

// Close is a no-op for the mock client.
func (m *MockClient) Close() error { return nil }
