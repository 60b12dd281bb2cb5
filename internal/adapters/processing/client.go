// Package processing implements the HTTP adapter for the remote
// processing service.
package processing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/example/gemscreen/internal/metrics"
	"github.com/example/gemscreen/internal/ports/secondary"
)

// Client talks JSON over HTTP to the processing server.
type Client struct {
	httpClient *http.Client
	baseURL    string
	out        io.Writer
}

var _ secondary.ProcessingClient = (*Client)(nil)

// New builds a client for the server at baseURL. requestTimeout bounds a
// single HTTP exchange, not the whole completion wait. Progress lines from
// the completion wait go to out.
func New(baseURL string, requestTimeout time.Duration, out io.Writer) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		baseURL: baseURL,
		out:     out,
	}
}

type cleanupResponse struct {
	Deleted int `json:"deleted"`
}

type statusResponse struct {
	Status    string `json:"status"`
	Remaining int    `json:"remaining"`
}

// Cleanup removes server-side artifacts keyed under prefix.
func (c *Client) Cleanup(ctx context.Context, prefix string) (int, error) {
	endpoint := "/cleanup/" + url.PathEscape(prefix)
	var result cleanupResponse
	if err := c.post(ctx, endpoint, struct{}{}, &result); err != nil {
		return 0, err
	}
	return result.Deleted, nil
}

// SubmitBackgroundSub enqueues a background-subtraction-only job.
func (c *Client) SubmitBackgroundSub(ctx context.Context, payload secondary.BackgroundPayload) error {
	if err := c.post(ctx, "/process_bg_sub", payload, nil); err != nil {
		return err
	}
	metrics.JobsSubmitted.WithLabelValues("bg_sub").Inc()
	return nil
}

// SubmitFullProcess enqueues a full processing job. A non-positive
// TotalFOVs would leave the server's completion counter undefined, so it
// is rejected before anything is sent.
func (c *Client) SubmitFullProcess(ctx context.Context, payload secondary.ProcessPayload) error {
	if payload.TotalFOVs < 1 {
		return fmt.Errorf("total FOVs must be positive, got %d", payload.TotalFOVs)
	}
	if err := c.post(ctx, "/process", payload, nil); err != nil {
		return err
	}
	metrics.JobsSubmitted.WithLabelValues("full_process").Inc()
	return nil
}

// AwaitCompletion polls the server's per-well status until every job is
// finished. The first poll happens immediately, so an already-finished
// well returns without sleeping. Each change in the server's remaining-job
// count is reported as a progress line and mirrored into the jobs-remaining
// gauge.
func (c *Client) AwaitCompletion(ctx context.Context, wellID string, pollInterval, timeout time.Duration) error {
	endpoint := "/process/" + url.PathEscape(wellID) + "/status"
	deadline := time.Now().Add(timeout)
	lastRemaining := -1

	for {
		metrics.StatusPolls.Inc()
		var result statusResponse
		if err := c.get(ctx, endpoint, &result); err != nil {
			return err
		}
		if result.Status == "finished" {
			metrics.JobsRemaining.WithLabelValues(wellID).Set(0)
			return nil
		}
		metrics.JobsRemaining.WithLabelValues(wellID).Set(float64(result.Remaining))
		if result.Remaining != lastRemaining {
			fmt.Fprintf(c.out, "well %s: %d jobs remaining\n", wellID, result.Remaining)
			lastRemaining = result.Remaining
		}

		if time.Now().After(deadline) {
			metrics.CompletionTimeouts.Inc()
			return &secondary.CompletionTimeoutError{WellID: wellID, Elapsed: timeout}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

func (c *Client) post(ctx context.Context, endpoint string, body any, result any) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.doRequest(req, result)
}

func (c *Client) get(ctx context.Context, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.doRequest(req, result)
}

func (c *Client) doRequest(req *http.Request, result any) error {
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("processing server error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
