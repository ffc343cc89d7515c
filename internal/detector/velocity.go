package detector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/reshadx/fraudguard/internal/domain"
)

const velocityWindow = time.Hour

// Velocity thresholds over the trailing hour.
const (
	velocityCritical = 20 // count above this: CRITICAL
	velocityHigh     = 10
	velocityMedium   = 5

	velocityCriticalScore = 70
	velocityHighScore     = 50
	velocityMediumScore   = 30
)

// Velocity flags bursts of transactions in the trailing hour.
type Velocity struct {
	repo domain.Repository
}

// NewVelocity creates the velocity checker.
func NewVelocity(repo domain.Repository) *Velocity {
	return &Velocity{repo: repo}
}

func (d *Velocity) Name() string { return "velocity" }

func (d *Velocity) Evaluate(ctx context.Context, input *domain.CheckInput) domain.Finding {
	finding := domain.Finding{Detector: d.Name()}

	since := time.Now().Add(-velocityWindow)
	count, err := d.repo.CountTransactions(ctx, input.UserID, since)
	if err != nil {
		slog.Warn("velocity: count failed", "user_id", input.UserID, "error", err)
		return finding
	}

	var severity domain.Severity
	var score int
	switch {
	case count > velocityCritical:
		severity, score = domain.SeverityCritical, velocityCriticalScore
	case count > velocityHigh:
		severity, score = domain.SeverityHigh, velocityHighScore
	case count > velocityMedium:
		severity, score = domain.SeverityMedium, velocityMediumScore
	default:
		return finding
	}

	finding.Score = score
	finding.Flags = []domain.FraudFlag{{
		Type:        domain.FlagVelocityExceeded,
		Severity:    severity,
		Description: fmt.Sprintf("%d transactions in the last hour", count),
		Score:       score,
	}}
	return finding
}
