package rest

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/saturnines/ledger-core/pkg/auth"
	"github.com/saturnines/ledger-core/pkg/report"
)

var templatePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// ReportRequest describes one GET {BaseURL}/reports/{ReportType} call
type ReportRequest struct {
	BaseURL    string
	ReportType string
	Period     report.Period
	Params     map[string]string
	Headers    map[string]string
	// RequestID is generated when empty
	RequestID string
	Auth      auth.Handler
}

// Build creates the HTTP request. {{VAR}} in the base URL, header values and
// param values is replaced from the environment. start_date, end_date and
// requestid always win over Params.
func (r *ReportRequest) Build(ctx context.Context) (*http.Request, error) {
	if r.RequestID == "" {
		r.RequestID = uuid.NewString()
	}

	endpoint := strings.TrimRight(substituteTemplateVariables(r.BaseURL), "/") +
		"/reports/" + url.PathEscape(r.ReportType)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	for k, v := range r.Headers {
		req.Header.Set(k, substituteTemplateVariables(v))
	}

	q := req.URL.Query()
	for k, v := range r.Params {
		q.Set(k, substituteTemplateVariables(v))
	}
	q.Set("start_date", r.Period.StartDate())
	q.Set("end_date", r.Period.EndDate())
	q.Set("requestid", r.RequestID)
	req.URL.RawQuery = q.Encode()

	if r.Auth != nil {
		if err := r.Auth.ApplyAuth(req); err != nil {
			return nil, err
		}
	}

	return req, nil
}

// substituteTemplateVariables leaves unknown or empty variables untouched
func substituteTemplateVariables(text string) string {
	return templatePattern.ReplaceAllStringFunc(text, func(match string) string {
		varName := strings.TrimSpace(match[2 : len(match)-2])
		if value := os.Getenv(varName); value != "" {
			return value
		}
		return match
	})
}
