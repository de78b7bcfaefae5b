package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// EvaluatorClient POSTs the final result payload to the evaluation endpoint.
type EvaluatorClient struct {
	url        string
	httpClient *http.Client
}

// NewEvaluatorClient returns a client for url. A nil httpClient gets a 5s timeout.
func NewEvaluatorClient(url string, httpClient *http.Client) *EvaluatorClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &EvaluatorClient{url: url, httpClient: httpClient}
}

// Name implements Sink.
func (c *EvaluatorClient) Name() string { return "evaluator" }

// Deliver implements Sink. Any non-2xx response is an error.
func (c *EvaluatorClient) Deliver(ctx context.Context, r Report) error {
	return c.Send(ctx, r.Payload)
}

// Send posts a payload.
func (c *EvaluatorClient) Send(ctx context.Context, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("callback: marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("callback: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("callback: post result: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback: evaluator returned status %d", resp.StatusCode)
	}
	return nil
}
