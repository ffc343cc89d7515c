package domain

import "context"

// SimSwapStatus is the telecom operator's answer for a phone number.
type SimSwapStatus struct {
	Swapped       bool `json:"swapped"`
	DaysSinceSwap int  `json:"daysSinceSwap"`
}

// TelecomProvider looks up confirmed SIM swaps with the mobile operator.
// Calls must honor the context deadline; callers treat any error as
// "no swap known".
type TelecomProvider interface {
	CheckSimSwap(ctx context.Context, phoneNumber string) (*SimSwapStatus, error)
}

// IPIntelProvider classifies IP addresses via an external intelligence feed.
type IPIntelProvider interface {
	IsBlacklisted(ctx context.Context, ip string) (bool, error)
	IsVPN(ctx context.Context, ip string) (bool, error)
}

// ProvidersConfig holds external provider settings.
type ProvidersConfig struct {
	TelecomURL   string `json:"telecomUrl"`
	TelecomToken string `json:"-"`
	IPIntelURL   string `json:"ipIntelUrl"`

	// TimeoutMs bounds every provider call. A timed-out enrichment call
	// degrades detection, it never fails the check.
	TimeoutMs int `json:"timeoutMs"`
}
