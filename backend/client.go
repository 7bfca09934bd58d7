package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client wraps the job backend's REST API: workflow submission, worker
// submission, job status and file download resolution. Network or
// backend-validation failures surface as submission errors; no retry is
// attempted at this layer — retry policy belongs to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// AddWorkflow submits the ordered job-step array of a voice-conversion
// workflow and returns the created event reference.
func (c *Client) AddWorkflow(ctx context.Context, wf Workflow) (EventRef, error) {
	var ref EventRef
	if err := c.post(ctx, "/workflow", wf, &ref); err != nil {
		return EventRef{}, fmt.Errorf("add workflow: %w", err)
	}
	return ref, nil
}

// AddCaptionerWorker submits a captioner worker job.
func (c *Client) AddCaptionerWorker(ctx context.Context, w CaptionerWorker) (EventRef, error) {
	var ref EventRef
	if err := c.post(ctx, "/worker/captioner", w, &ref); err != nil {
		return EventRef{}, fmt.Errorf("add captioner worker: %w", err)
	}
	return ref, nil
}

// FetchEvent retrieves the current status document for a job. An empty object
// response decodes to an EventResponse whose Empty method returns true.
func (c *Client) FetchEvent(ctx context.Context, eventID string) (EventResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/event/"+eventID, nil)
	if err != nil {
		return EventResponse{}, fmt.Errorf("fetch event: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return EventResponse{}, fmt.Errorf("fetch event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return EventResponse{}, fmt.Errorf("fetch event: status %d: %s", resp.StatusCode, string(respBody))
	}

	var event EventResponse
	if err := json.NewDecoder(resp.Body).Decode(&event); err != nil {
		return EventResponse{}, fmt.Errorf("fetch event: decode response: %w", err)
	}
	return event, nil
}

// DownloadURL resolves a backend file path to a downloadable URL via the
// download collaborator.
func (c *Client) DownloadURL(ctx context.Context, filePath string) (string, error) {
	var dl DownloadResponse
	body := map[string]string{"file_path": filePath}
	if err := c.post(ctx, "/download", body, &dl); err != nil {
		return "", fmt.Errorf("download url: %w", err)
	}
	return dl.DownloadURL, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
