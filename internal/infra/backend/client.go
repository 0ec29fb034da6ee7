package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/analysis"
)

const (
	submitPath = "/api/scan"
	pollPath   = "/api/scan/{scan_id}"

	defaultTimeout = 30 * time.Second
)

// Client talks to the scan backend. It makes exactly one HTTP request per
// call; retries are the lifecycle's decision.
type Client struct {
	httpc  *resty.Client
	logger hclog.Logger
}

func New(baseURL string, timeout time.Duration, logger hclog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	httpc := resty.New()
	httpc.SetBaseURL(strings.TrimRight(baseURL, "/"))
	httpc.SetTimeout(timeout)
	httpc.SetHeader("Accept", "application/json")

	return &Client{httpc: httpc, logger: logger.Named("backend")}
}

// Submit POST /api/scan
func (c *Client) Submit(ctx context.Context, req analysis.ScanRequest) (analysis.ScanID, error) {
	var out submitResponse
	var apiErr errorResponse
	resp, err := c.httpc.R().
		SetContext(ctx).
		SetBody(newSubmitRequest(req)).
		SetResult(&out).
		SetError(&apiErr).
		Post(submitPath)
	if err != nil {
		return "", requestError("submit", resp, err)
	}
	if resp.IsError() {
		return "", statusError("submit", resp, apiErr)
	}
	if strings.TrimSpace(out.ScanID) == "" {
		return "", &analysis.ProtocolError{Op: "submit", Field: "scan_id"}
	}
	c.logger.Debug("scan submitted", "scan_id", out.ScanID, "duration", resp.Time())
	return analysis.ScanID(out.ScanID), nil
}

// Poll GET /api/scan/{scan_id}
func (c *Client) Poll(ctx context.Context, id analysis.ScanID) (analysis.PollResponse, error) {
	var out pollResponse
	var apiErr errorResponse
	resp, err := c.httpc.R().
		SetContext(ctx).
		SetPathParam("scan_id", string(id)).
		SetResult(&out).
		SetError(&apiErr).
		Get(pollPath)
	if err != nil {
		return analysis.PollResponse{}, requestError("poll", resp, err)
	}
	if resp.IsError() {
		return analysis.PollResponse{}, statusError("poll", resp, apiErr)
	}
	if strings.TrimSpace(out.Status) == "" {
		return analysis.PollResponse{}, &analysis.ProtocolError{Op: "poll", Field: "status"}
	}
	c.logger.Trace("scan polled", "scan_id", id, "status", out.Status, "progress", out.Progress)
	return out.toDomain(id), nil
}

// requestError classifies a failed resty call. Once a response arrived, a
// decode failure of a 2xx body is a protocol problem and is never retried.
func requestError(op string, resp *resty.Response, err error) error {
	if resp == nil || resp.RawResponse == nil ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &analysis.TransportError{Op: op, Err: err}
	}
	if resp.IsError() {
		return statusError(op, resp, errorResponse{})
	}
	return &analysis.ProtocolError{Op: op, Field: "body", Err: err}
}

func statusError(op string, resp *resty.Response, apiErr errorResponse) error {
	msg := apiErr.Error
	if msg == "" {
		msg = http.StatusText(resp.StatusCode())
	}
	return &analysis.TransportError{
		Op:         op,
		StatusCode: resp.StatusCode(),
		Err:        errors.New(msg),
	}
}

// String helps logging
func (c *Client) String() string {
	return fmt.Sprintf("backend(%s)", c.httpc.BaseURL)
}
