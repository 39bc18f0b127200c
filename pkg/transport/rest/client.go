package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/saturnines/ledger-core/pkg/auth"
	"github.com/saturnines/ledger-core/pkg/config"
	"github.com/saturnines/ledger-core/pkg/errors"
	"github.com/saturnines/ledger-core/pkg/report"
)

// errorBodyLimit bounds how much of a failed response is kept
const errorBodyLimit = 512

// ReportClient fetches raw reports from {BaseURL}/reports/{type}. Every
// request carries start_date, end_date, the caller's params and a fresh
// requestid so the upstream can deduplicate retried calls.
type ReportClient struct {
	BaseURL string
	Headers map[string]string
	Auth    auth.Handler
	HTTP    HTTPDoer
	Logger  *slog.Logger
}

// NewReportClient creates a client with a default http.Client
func NewReportClient(baseURL string, authHandler auth.Handler) *ReportClient {
	return &ReportClient{
		BaseURL: baseURL,
		Auth:    authHandler,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Logger:  slog.New(slog.DiscardHandler),
	}
}

// NewReportClientFromJob wires auth, headers, retry and timeout from a job
func NewReportClientFromJob(job *config.ReportJob, logger *slog.Logger) (*ReportClient, error) {
	authHandler, err := auth.CreateHandler(job.Auth)
	if err != nil {
		return nil, err
	}

	var transport http.RoundTripper = http.DefaultTransport
	if job.Retry != nil {
		transport = NewRetryTransport(transport, job.Retry)
	}

	c := NewReportClient(job.Endpoint, authHandler)
	c.Headers = job.Headers
	c.HTTP = &http.Client{
		Transport: transport,
		Timeout:   time.Duration(job.Timeout * float64(time.Second)),
	}
	if logger != nil {
		c.Logger = logger
	}
	return c, nil
}

// QueryReport implements report.Querier
func (c *ReportClient) QueryReport(ctx context.Context, reportType string, period report.Period, params map[string]string) (map[string]interface{}, error) {
	rr := &ReportRequest{
		BaseURL:    c.BaseURL,
		ReportType: reportType,
		Period:     period,
		Params:     params,
		Headers:    c.Headers,
		Auth:       c.Auth,
	}
	req, err := rr.Build(ctx)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrHTTPRequest, "build report request")
	}

	c.logger().Debug("report request", "url", req.URL.Redacted(), "requestid", rr.RequestID)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrHTTPRequest, "send report request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, errors.WrapError(
			&HTTPError{StatusCode: resp.StatusCode, Status: resp.Status, Body: strings.TrimSpace(string(body))},
			errors.ErrHTTPResponse,
			fmt.Sprintf("report %s", reportType),
		)
	}

	var raw map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, errors.WrapError(err, errors.ErrHTTPResponse, "decode report")
	}

	// some upstreams answer 200 with a fault document
	if fault, ok := raw["Fault"]; ok {
		return nil, errors.WrapError(fmt.Errorf("%v", fault), errors.ErrHTTPResponse, fmt.Sprintf("report %s", reportType))
	}

	return raw, nil
}

func (c *ReportClient) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}
