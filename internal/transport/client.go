package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// retryDelays caps the retry schedule at 2 attempts per spec.md §4.1.4.
var retryDelays = []time.Duration{2 * time.Second, 4 * time.Second}

// HTTPClient implements Client against a single OpenAI-compatible endpoint,
// grounded on the teacher's internal/provider/openai_common.go.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewHTTPClient creates a client for the given base URL (e.g.
// "https://api.example.com/v1"). apiKey is sent as a Bearer token.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

func (c *HTTPClient) headers() map[string]string {
	h := map[string]string{"Content-Type": "application/json"}
	if c.apiKey != "" {
		h["Authorization"] = "Bearer " + c.apiKey
	}
	return h
}

// Stream implements Client.Stream.
func (c *HTTPClient) Stream(ctx context.Context, model string, messages []Message, sampler Sampler, callbacks Callbacks, opts Opts) (*Response, error) {
	if err := ValidateSequence(messages); err != nil {
		return nil, err
	}

	body, url, err := c.buildRequest(model, messages, sampler, opts, true)
	if err != nil {
		return nil, err
	}

	state := newAccumState()
	var cancelled bool
	var lastStatus int

	for attempt := 0; attempt <= len(retryDelays); attempt++ {
		if attempt > 0 {
			if callbacks.Retry != nil {
				callbacks.Retry(attempt, lastStatus)
			}
			if err := sleepCancellable(ctx, retryDelays[attempt-1]); err != nil {
				return nil, newError(KindCancelled, "cancelled during retry backoff", err)
			}
			state = newAccumState()
		}

		respBody, status, err := c.doSSERequest(ctx, url, body)
		if err != nil {
			if isTransientStatus(status) && attempt < len(retryDelays) {
				lastStatus = status
				log.Warn().Int("status", status).Int("attempt", attempt+1).Msg("transport: retrying after transient error")
				continue
			}
			if status != 0 {
				return nil, newError(KindHTTPStatus, err.Error(), err)
			}
			return nil, newError(KindConnect, "failed to open stream", err)
		}

		switch opts.Endpoint {
		case EndpointResponses:
			cancelled = parseResponsesSSE(ctx, respBody, opts.IsCancelled, state, callbacks)
		default:
			cancelled = parseChatSSE(ctx, respBody, opts.IsCancelled, state, callbacks)
		}
		break
	}

	if callbacks.Done != nil {
		callbacks.Done()
	}

	resp := finalizeResponse(state, model, cancelled)
	return resp, nil
}

// Complete implements Client.Complete (unary request, no SSE).
func (c *HTTPClient) Complete(ctx context.Context, model string, messages []Message, sampler Sampler, opts Opts) (*Response, error) {
	if err := ValidateSequence(messages); err != nil {
		return nil, err
	}

	body, url, err := c.buildRequest(model, messages, sampler, opts, false)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(opts.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 600 * time.Second
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, newError(KindConnect, "failed to build request", err)
	}
	for k, v := range c.headers() {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newError(KindConnect, "request failed", err)
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Kind: KindHTTPStatus, StatusCode: resp.StatusCode, Reason: strings.TrimSpace(string(payload))}
	}

	if opts.Endpoint == EndpointResponses {
		return decodeResponsesUnary(payload, model)
	}
	return decodeChatUnary(payload, model)
}

// ListModels implements Client.ListModels.
func (c *HTTPClient) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, newError(KindConnect, "failed to build request", err)
	}
	for k, v := range c.headers() {
		req.Header.Set(k, v)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newError(KindConnect, "request failed", err)
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Kind: KindHTTPStatus, StatusCode: resp.StatusCode, Reason: strings.TrimSpace(string(payload))}
	}

	var listResp struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &listResp); err != nil {
		return nil, newError(KindDecode, "failed to decode models list", err)
	}
	ids := make([]string, len(listResp.Data))
	for i, m := range listResp.Data {
		ids[i] = m.ID
	}
	return ids, nil
}

// Close releases idle connections.
func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) buildRequest(model string, messages []Message, sampler Sampler, opts Opts, stream bool) (body []byte, url string, err error) {
	if opts.Endpoint == EndpointResponses {
		req := responsesRequestBody{
			Model:               model,
			Input:               toResponsesInput(messages),
			Tools:               toResponsesTools(opts.Tools),
			Temperature:         sampler.Temperature,
			Stream:              stream,
			PreviousResponseID:  opts.PreviousID,
		}
		body, err = json.Marshal(req)
		return body, c.baseURL + "/responses", err
	}

	req := chatRequestBody{
		Model:       model,
		Messages:    toWireMessages(messages),
		Temperature: sampler.Temperature,
		TopP:        sampler.TopP,
		MaxTokens:   sampler.MaxNewTokens,
		Tools:       toWireTools(opts.Tools),
		ToolChoice:  opts.ToolChoice,
		Stream:      stream,
	}
	if stream {
		req.StreamOptions = &chatStreamOptionsFr{IncludeUsage: true}
	}
	body, err = json.Marshal(req)
	return body, c.baseURL + "/chat/completions", err
}

func isTransientStatus(code int) bool {
	return code == 429 || code == 500 || code == 502 || code == 503 || code == 504
}

// doSSERequest issues one HTTP POST for SSE. Returns (body, statusCode, err).
// statusCode is 0 when the failure happened before a response was received.
func (c *HTTPClient) doSSERequest(ctx context.Context, url string, body []byte) (io.ReadCloser, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "text/event-stream")
	for k, v := range c.headers() {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, resp.StatusCode, fmt.Errorf("stream request status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	return resp.Body, resp.StatusCode, nil
}

func sleepCancellable(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func finalizeResponse(state *accumState, model string, cancelled bool) *Response {
	tokens := state.usage.OutputTokens
	ctx := state.usage.InputTokens + tokens

	resp := &Response{
		Text:            cleanText(state.content.String()),
		ReasoningText:   state.reasoning.String(),
		ToolCalls:       state.toolCalls.finalize(),
		Tokens:          tokens,
		Ctx:             ctx,
		Model:           model,
		ResponseID:      state.responseID,
		FinishReason:    state.finishReason,
		Cancelled:       cancelled,
		CumulativeUsage: state.usage,
	}
	if cancelled {
		resp.Text = state.content.String() // preserve partial text verbatim on cancel
	}
	return resp
}
