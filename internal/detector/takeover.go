package detector

import (
	"context"
	"log/slog"
	"time"

	"github.com/reshadx/fraudguard/internal/domain"
)

const (
	passwordChangeWindow = time.Hour
	emailChangeWindow    = 24 * time.Hour

	passwordChangeScore = 60
	emailChangeScore    = 50
)

// AccountTakeover checks for recent credential changes. Unlike the other
// detectors, its two signals are additive: a fresh password change and a
// fresh email change both contribute when they both fire.
type AccountTakeover struct {
	repo domain.Repository
}

// NewAccountTakeover creates the account-takeover detector.
func NewAccountTakeover(repo domain.Repository) *AccountTakeover {
	return &AccountTakeover{repo: repo}
}

func (d *AccountTakeover) Name() string { return "account_takeover" }

func (d *AccountTakeover) Evaluate(ctx context.Context, input *domain.CheckInput) domain.Finding {
	finding := domain.Finding{Detector: d.Name()}

	profile, err := d.repo.GetUserProfile(ctx, input.UserID)
	if err != nil || profile == nil {
		if err != nil && err != domain.ErrNotFound {
			slog.Warn("account-takeover: profile lookup failed", "user_id", input.UserID, "error", err)
		}
		return finding
	}

	now := time.Now()

	if profile.PasswordChangedAt != nil && now.Sub(*profile.PasswordChangedAt) < passwordChangeWindow {
		finding.Score += passwordChangeScore
		finding.Flags = append(finding.Flags, domain.FraudFlag{
			Type:        domain.FlagAccountTakeover,
			Severity:    domain.SeverityCritical,
			Description: "password changed within the last hour",
			Score:       passwordChangeScore,
		})
	}

	if profile.EmailChangedAt != nil && now.Sub(*profile.EmailChangedAt) < emailChangeWindow {
		finding.Score += emailChangeScore
		finding.Flags = append(finding.Flags, domain.FraudFlag{
			Type:        domain.FlagAccountTakeover,
			Severity:    domain.SeverityHigh,
			Description: "email address changed within the last day",
			Score:       emailChangeScore,
		})
	}

	return finding
}
