package detector

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/reshadx/fraudguard/internal/domain"
)

const (
	historyWindow = 30 * 24 * time.Hour

	firstTransactionScore = 30
	zScoreAnomalyScore    = 50
	maxRatioAnomalyScore  = 45
	roundNumberScore      = 25

	zScoreThreshold = 3.0

	// roundNumberUnit is the minor-unit multiple the round-number heuristic
	// looks for (e.g. 1000.00 in a two-decimal currency).
	roundNumberUnit = 100_000
)

// TransactionPattern scores the transaction amount against the user's
// 30-day history: z-score anomaly, max-ratio anomaly, and the round-number
// heuristic.
type TransactionPattern struct {
	repo domain.Repository
}

// NewTransactionPattern creates the transaction pattern analyzer.
func NewTransactionPattern(repo domain.Repository) *TransactionPattern {
	return &TransactionPattern{repo: repo}
}

func (d *TransactionPattern) Name() string { return "transaction_pattern" }

func (d *TransactionPattern) Evaluate(ctx context.Context, input *domain.CheckInput) domain.Finding {
	finding := domain.Finding{Detector: d.Name()}

	if input.AmountMinor <= 0 {
		return finding
	}

	since := time.Now().Add(-historyWindow)
	history, err := d.repo.RecentTransactions(ctx, input.UserID, since)
	if err != nil {
		slog.Warn("transaction-pattern: history lookup failed", "user_id", input.UserID, "error", err)
		return finding
	}

	if len(history) == 0 {
		return d.flagged(finding, domain.SeverityMedium, firstTransactionScore,
			"first transaction for this user")
	}

	amount := float64(input.AmountMinor)
	mean, max, stddev := amountStats(history)

	// Rules are evaluated in order; the first match wins.
	z := 0.0
	if stddev > 0 {
		z = (amount - mean) / stddev
	}
	if z > zScoreThreshold {
		return d.flagged(finding, domain.SeverityHigh, zScoreAnomalyScore,
			fmt.Sprintf("amount is %.1f standard deviations above the 30-day mean", z))
	}

	if amount > 2*max {
		return d.flagged(finding, domain.SeverityHigh, maxRatioAnomalyScore,
			"amount exceeds twice the 30-day maximum")
	}

	if input.AmountMinor >= roundNumberUnit && input.AmountMinor%roundNumberUnit == 0 {
		return d.flagged(finding, domain.SeverityMedium, roundNumberScore,
			"large round-number amount")
	}

	return finding
}

func (d *TransactionPattern) flagged(finding domain.Finding, sev domain.Severity, score int, desc string) domain.Finding {
	finding.Score = score
	finding.Flags = []domain.FraudFlag{{
		Type:        domain.FlagUnusualTransaction,
		Severity:    sev,
		Description: desc,
		Score:       score,
	}}
	return finding
}

// amountStats returns the mean, max, and population standard deviation of
// the absolute transaction amounts.
func amountStats(history []*domain.Transaction) (mean, max, stddev float64) {
	n := float64(len(history))

	var sum float64
	for _, tx := range history {
		amt := math.Abs(float64(tx.AmountMinor))
		sum += amt
		if amt > max {
			max = amt
		}
	}
	mean = sum / n

	var variance float64
	for _, tx := range history {
		amt := math.Abs(float64(tx.AmountMinor))
		variance += (amt - mean) * (amt - mean)
	}
	stddev = math.Sqrt(variance / n)

	return mean, max, stddev
}
