package resultstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// KeyPrefix is the KV path under which analysis results are stored.
const KeyPrefix = "vigcrack/results/"

// Client stores analysis results in a remote KV HTTP service, keyed by
// the content hash of the analysed input.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger

	backoff func(attempt int) time.Duration
}

func NewClient(baseURL, apiKey string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log:     log,
		backoff: Backoff,
	}
}

// nodeRequest is the body for PUT /kv/{key}.
type nodeRequest struct {
	Value  any    `json:"value"`
	Source string `json:"source,omitempty"`
}

// nodeResponse is the response from GET /kv/{key}.
type nodeResponse struct {
	Key   string          `json:"key_path"`
	Value json.RawMessage `json:"value"`
}

// Key returns the KV path for a content hash.
func Key(contentHash string) string {
	return KeyPrefix + contentHash
}

// PutResult stores value under the content hash, retrying transient failures.
func (c *Client) PutResult(ctx context.Context, contentHash string, value any) error {
	body, err := json.Marshal(nodeRequest{Value: value, Source: "vigcrack"})
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return c.withRetry(ctx, "put", func() error {
		return c.put(ctx, Key(contentHash), body)
	})
}

// GetResult decodes the stored value for a content hash into dst. It
// reports false if nothing is stored.
func (c *Client) GetResult(ctx context.Context, contentHash string, dst any) (bool, error) {
	var node *nodeResponse
	err := c.withRetry(ctx, "get", func() error {
		var err error
		node, err = c.get(ctx, Key(contentHash))
		return err
	})
	if err != nil || node == nil {
		return false, err
	}
	if err := json.Unmarshal(node.Value, dst); err != nil {
		return false, fmt.Errorf("decode result %s: %w", contentHash, err)
	}
	return true, nil
}

func (c *Client) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !IsRetryable(err) || attempt >= MaxRetries {
			return err
		}
		wait := c.backoff(attempt)
		c.log.Warn("result store retry", "op", op, "attempt", attempt+1, "wait", wait, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (c *Client) put(ctx context.Context, key string, body []byte) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/kv/"+key, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &RetryableError{Err: fmt.Errorf("put result: %w", err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return statusError("put", key, resp)
	}
	return nil
}

func (c *Client) get(ctx context.Context, key string) (*nodeResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/kv/"+key, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("get result: %w", err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("get", key, resp)
	}

	var node nodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&node); err != nil {
		return nil, fmt.Errorf("decode node: %w", err)
	}
	return &node, nil
}

func statusError(op, key string, resp *http.Response) error {
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	err := fmt.Errorf("%s %s: status %d: %s", op, key, resp.StatusCode, string(respBody))
	if retryableStatus(resp.StatusCode) {
		return &RetryableError{StatusCode: resp.StatusCode, Err: err}
	}
	return err
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
