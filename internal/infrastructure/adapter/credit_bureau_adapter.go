package adapter

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

	"github.com/cenkalti/backoff/v4"

	"github.com/bibbank/riskcore/internal/domain/port"
)

// ---------------------------------------------------------------------------
// Credit Bureau Adapter – HTTP client for the national bureau
// ---------------------------------------------------------------------------

// Bureau identifies a credit bureau provider.
type Bureau string

const (
	BureauDataCredito Bureau = "DATACREDITO"
	BureauTransUnion  Bureau = "TRANSUNION"
)

// CreditBureauConfig holds configuration for the credit bureau adapter.
type CreditBureauConfig struct {
	Bureau  Bureau
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// MaxRetries bounds retries on transport errors and 5xx responses.
	MaxRetries uint64
	// InitialInterval is the first backoff delay; later delays grow exponentially.
	InitialInterval time.Duration
}

// DefaultCreditBureauConfig returns sensible defaults for development.
func DefaultCreditBureauConfig() CreditBureauConfig {
	return CreditBureauConfig{
		Bureau:          BureauDataCredito,
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		InitialInterval: 200 * time.Millisecond,
	}
}

// bureauReport is the JSON body returned by GET {base}/v1/reports/{nationalID}.
type bureauReport struct {
	Score int      `json:"score"`
	Flags []string `json:"flags"`
}

// CreditBureauAdapter implements port.CreditBureauClient over HTTP.
type CreditBureauAdapter struct {
	config CreditBureauConfig
	client *http.Client
	logger *slog.Logger
}

var _ port.CreditBureauClient = (*CreditBureauAdapter)(nil)

// NewCreditBureauAdapter creates a new adapter. A nil client gets one with the
// configured timeout.
func NewCreditBureauAdapter(config CreditBureauConfig, client *http.Client, logger *slog.Logger) *CreditBureauAdapter {
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}
	if config.InitialInterval <= 0 {
		config.InitialInterval = 200 * time.Millisecond
	}
	return &CreditBureauAdapter{
		config: config,
		client: client,
		logger: logger,
	}
}

// GetCreditReport fetches the applicant's bureau report, retrying transient
// failures with exponential backoff. 4xx responses are not retried.
func (a *CreditBureauAdapter) GetCreditReport(ctx context.Context, nationalID string) (port.CreditReport, error) {
	if strings.TrimSpace(nationalID) == "" {
		return port.CreditReport{}, fmt.Errorf("national ID is required")
	}

	endpoint, err := url.JoinPath(a.config.BaseURL, "v1", "reports", nationalID)
	if err != nil {
		return port.CreditReport{}, fmt.Errorf("build bureau url: %w", err)
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = a.config.InitialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, a.config.MaxRetries), ctx)

	var report bureauReport
	attempt := 0
	op := func() error {
		attempt++
		r, err := a.fetch(ctx, endpoint)
		if err != nil {
			return err
		}
		report = r
		return nil
	}
	notify := func(err error, wait time.Duration) {
		a.logger.WarnContext(ctx, "credit bureau request failed, retrying",
			"bureau", string(a.config.Bureau),
			"attempt", attempt,
			"wait", wait,
			"error", err,
		)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return port.CreditReport{}, fmt.Errorf("credit bureau request failed after %d attempts: %w", attempt, err)
	}

	return port.CreditReport{Score: report.Score, Flags: report.Flags}, nil
}

func (a *CreditBureauAdapter) fetch(ctx context.Context, endpoint string) (bureauReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return bureauReport{}, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if a.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.config.APIKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return bureauReport{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return bureauReport{}, fmt.Errorf("bureau returned %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return bureauReport{}, backoff.Permanent(fmt.Errorf("bureau returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var report bureauReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return bureauReport{}, backoff.Permanent(fmt.Errorf("decode bureau report: %w", err))
	}
	if report.Score == 0 {
		return bureauReport{}, backoff.Permanent(errors.New("bureau report has no score"))
	}
	return report, nil
}
