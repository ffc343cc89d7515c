package detector

import (
	"context"
	"log/slog"

	"github.com/reshadx/fraudguard/internal/domain"
)

// Lists resolves blacklist and whitelist membership for the user and, when a
// device is present, its IP. Blacklist is checked first; a blacklisted user
// never gets whitelist credit.
type Lists struct {
	repo domain.Repository
}

// NewLists creates the list checker.
func NewLists(repo domain.Repository) *Lists {
	return &Lists{repo: repo}
}

func (d *Lists) Name() string { return "lists" }

func (d *Lists) Evaluate(ctx context.Context, input *domain.CheckInput) domain.Finding {
	finding := domain.Finding{Detector: d.Name()}

	blacklisted, err := d.repo.IsBlacklisted(ctx, input.UserID)
	if err != nil {
		slog.Warn("lists: user blacklist lookup failed", "user_id", input.UserID, "error", err)
	}

	if !blacklisted && input.Device != nil && input.Device.IPAddress != "" {
		ipBlacklisted, err := d.repo.IsBlacklisted(ctx, input.Device.IPAddress)
		if err != nil {
			slog.Warn("lists: ip blacklist lookup failed", "ip", input.Device.IPAddress, "error", err)
		}
		blacklisted = ipBlacklisted
	}

	finding.Blacklisted = blacklisted
	if blacklisted {
		return finding
	}

	whitelisted, err := d.repo.IsWhitelisted(ctx, input.UserID)
	if err != nil {
		slog.Warn("lists: whitelist lookup failed", "user_id", input.UserID, "error", err)
	}
	finding.Whitelisted = whitelisted

	return finding
}
