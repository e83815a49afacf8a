package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/mentorhub/interviews/internal/models"
	"github.com/mentorhub/interviews/internal/service"
)

// Config holds lifecycle client configuration
type Config struct {
	BaseURL      string // e.g. http://localhost:8080/api/v1
	Token        string
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Timeout      time.Duration
}

// APIError is a non-success response from the lifecycle API
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps the response back to the lifecycle sentinel errors
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "job_not_found":
		return service.ErrJobNotFound
	case "not_configured_for_ai":
		return service.ErrNotConfiguredForAI
	case "already_completed":
		return service.ErrAlreadyCompleted
	case "invalid_candidate":
		return service.ErrInvalidCandidate
	case "interview_not_found":
		return service.ErrInterviewNotFound
	case "interview_closed":
		return service.ErrInterviewClosed
	case "terminated":
		return service.ErrInterviewTerminated
	case "forbidden":
		return service.ErrForbidden
	case "invalid_payload":
		return service.ErrInvalidPayload
	case "not_found":
		return service.ErrApplicationNotFound
	}
	return nil
}

// Client calls the interview lifecycle API with bounded retries
type Client struct {
	baseURL string
	token   string
	http    *retryablehttp.Client
}

// New creates a lifecycle client
func New(cfg Config) (*Client, error) {
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", cfg.BaseURL, err)
	}

	rc := retryablehttp.NewClient()
	rc.Logger = slog.Default()
	rc.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMin > 0 {
		rc.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		rc.RetryWaitMax = cfg.RetryWaitMax
	}
	if cfg.Timeout > 0 {
		rc.HTTPClient.Timeout = cfg.Timeout
	}
	// Keep the last response so API errors can be decoded after retries run out
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    rc,
	}, nil
}

// StartOrResume starts or resumes the caller's interview for a job
func (c *Client) StartOrResume(ctx context.Context, jobID uuid.UUID) (*service.StartResult, error) {
	var result service.StartResult
	body := map[string]string{"jobId": jobID.String()}
	if err := c.do(ctx, http.MethodPost, "/interviews/start", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get fetches an interview
func (c *Client) Get(ctx context.Context, interviewID uuid.UUID) (*models.InterviewRecord, error) {
	var rec models.InterviewRecord
	if err := c.do(ctx, http.MethodGet, "/interviews/"+interviewID.String(), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Finalize submits the scored result of an interview
func (c *Client) Finalize(ctx context.Context, interviewID uuid.UUID, input service.FinalizeInput) (*models.InterviewRecord, error) {
	var resp struct {
		OK        bool                    `json:"ok"`
		Interview *models.InterviewRecord `json:"interview"`
		Reason    string                  `json:"reason"`
	}
	err := c.do(ctx, http.MethodPost, "/interviews/"+interviewID.String()+"/complete", input, &resp)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code == "" {
		apiErr.Code = completeFailureCode(apiErr.StatusCode)
	}
	if err != nil {
		return nil, err
	}
	if !resp.OK || resp.Interview == nil {
		return nil, &APIError{StatusCode: http.StatusOK, Message: resp.Reason}
	}
	return resp.Interview, nil
}

// Terminate ends an interview with a reason. The server answers ok even when
// nothing changed.
func (c *Client) Terminate(ctx context.Context, interviewID uuid.UUID, reason string) error {
	body := map[string]string{"reason": reason}
	return c.do(ctx, http.MethodPost, "/interviews/"+interviewID.String()+"/terminate", body, nil)
}

// AdminTerminate ends any candidate's interview. Requires an admin token.
func (c *Client) AdminTerminate(ctx context.Context, interviewID uuid.UUID, reason string) error {
	body := map[string]string{"reason": reason}
	return c.do(ctx, http.MethodPost, "/admin/interviews/"+interviewID.String()+"/terminate", body, nil)
}

// Reconcile runs the application repair job on the server
func (c *Client) Reconcile(ctx context.Context, limit int) (int, error) {
	var resp map[string]int
	path := fmt.Sprintf("/admin/interviews/reconcile?limit=%d", limit)
	if err := c.do(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return 0, err
	}
	return resp["repaired"], nil
}

// ExpireStale terminates interviews open longer than olderThan on the server
func (c *Client) ExpireStale(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	var resp map[string]int
	path := fmt.Sprintf("/admin/interviews/expire-stale?olderThan=%s&limit=%d", url.QueryEscape(olderThan.String()), limit)
	if err := c.do(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return 0, err
	}
	return resp["expired"], nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var raw any
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		raw = b
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, raw)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var eb struct {
			Error  string `json:"error"`
			Code   string `json:"code"`
			Reason string `json:"reason"`
		}
		if json.Unmarshal(data, &eb) == nil {
			apiErr.Code = eb.Code
			apiErr.Message = eb.Error
			if apiErr.Message == "" {
				apiErr.Message = eb.Reason
			}
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// completeFailureCode recovers the error code of a failed complete call,
// whose body carries only a reason
func completeFailureCode(status int) string {
	switch status {
	case http.StatusConflict:
		return "terminated"
	case http.StatusNotFound:
		return "interview_not_found"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusBadRequest:
		return "invalid_payload"
	}
	return ""
}
