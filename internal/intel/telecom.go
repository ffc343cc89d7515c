// Package intel provides clients for external enrichment providers: the
// telecom SIM-swap lookup and the IP intelligence feed. Both are best-effort
// collaborators; detectors treat any error as "no signal".
package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/reshadx/fraudguard/internal/domain"
)

// TelecomClient queries the mobile operator's SIM-swap API over HTTP.
type TelecomClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewTelecomClient creates a telecom provider client. The timeout bounds
// every lookup.
func NewTelecomClient(baseURL, token string, timeout time.Duration) *TelecomClient {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &TelecomClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// CheckSimSwap asks the operator whether the number was recently moved to a
// new SIM.
func (c *TelecomClient) CheckSimSwap(ctx context.Context, phoneNumber string) (*domain.SimSwapStatus, error) {
	endpoint := fmt.Sprintf("%s/v1/sim-swap?msisdn=%s", c.baseURL, url.QueryEscape(phoneNumber))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sim-swap lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sim-swap lookup returned status %d", resp.StatusCode)
	}

	var status domain.SimSwapStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("sim-swap lookup returned invalid body: %w", err)
	}

	return &status, nil
}

// NoopTelecom is used when no telecom provider is configured. It never
// reports a swap.
type NoopTelecom struct{}

func (NoopTelecom) CheckSimSwap(ctx context.Context, phoneNumber string) (*domain.SimSwapStatus, error) {
	return &domain.SimSwapStatus{}, nil
}
