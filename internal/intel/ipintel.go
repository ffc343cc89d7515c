package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// IPIntelClient queries an IP intelligence feed over HTTP.
type IPIntelClient struct {
	baseURL string
	client  *http.Client
}

// NewIPIntelClient creates an IP intelligence client.
func NewIPIntelClient(baseURL string, timeout time.Duration) *IPIntelClient {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &IPIntelClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type ipReputation struct {
	Blacklisted bool `json:"blacklisted"`
	VPN         bool `json:"vpn"`
	Proxy       bool `json:"proxy"`
}

func (c *IPIntelClient) lookup(ctx context.Context, ip string) (*ipReputation, error) {
	endpoint := fmt.Sprintf("%s/v1/ip/%s", c.baseURL, url.PathEscape(ip))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ip lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ip lookup returned status %d", resp.StatusCode)
	}

	var rep ipReputation
	if err := json.NewDecoder(resp.Body).Decode(&rep); err != nil {
		return nil, fmt.Errorf("ip lookup returned invalid body: %w", err)
	}
	return &rep, nil
}

// IsBlacklisted reports whether the IP is on the feed's blocklist.
func (c *IPIntelClient) IsBlacklisted(ctx context.Context, ip string) (bool, error) {
	rep, err := c.lookup(ctx, ip)
	if err != nil {
		return false, err
	}
	return rep.Blacklisted, nil
}

// IsVPN reports whether the IP belongs to a VPN or proxy exit.
func (c *IPIntelClient) IsVPN(ctx context.Context, ip string) (bool, error) {
	rep, err := c.lookup(ctx, ip)
	if err != nil {
		return false, err
	}
	return rep.VPN || rep.Proxy, nil
}

// NoopIPIntel is used when no IP intelligence feed is configured. It reports
// every IP as clean.
type NoopIPIntel struct{}

func (NoopIPIntel) IsBlacklisted(ctx context.Context, ip string) (bool, error) { return false, nil }
func (NoopIPIntel) IsVPN(ctx context.Context, ip string) (bool, error)         { return false, nil }
