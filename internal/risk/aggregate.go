// Package risk turns detector findings into a bounded score, a decision,
// and remediation guidance.
package risk

import (
	"github.com/reshadx/fraudguard/internal/domain"
)

// Assessment is the merged view of all detector findings.
type Assessment struct {
	Score int
	Level domain.RiskLevel
	Flags []domain.FraudFlag

	SimSwapDetected bool
	SimSwapRisk     int

	Blacklisted bool
	Whitelisted bool
}

// Aggregator merges detector findings into a clamped 0-100 score.
type Aggregator struct {
	// WhitelistCredit is subtracted from the raw sum for whitelisted,
	// non-blacklisted users.
	WhitelistCredit int
}

// NewAggregator creates an aggregator with the default whitelist credit.
func NewAggregator() *Aggregator {
	return &Aggregator{WhitelistCredit: 30}
}

// Aggregate sums every finding's score contribution, applies the list
// overrides, and clamps to [0, 100]. Flag order follows finding order, so a
// fixed detector registration order yields a deterministic flag list.
func (a *Aggregator) Aggregate(findings []domain.Finding) Assessment {
	var out Assessment

	sum := 0
	for _, f := range findings {
		sum += f.Score
		out.Flags = append(out.Flags, f.Flags...)

		if f.SimSwapDetected {
			out.SimSwapDetected = true
		}
		if f.SimSwapRisk > out.SimSwapRisk {
			out.SimSwapRisk = f.SimSwapRisk
		}
		if f.Blacklisted {
			out.Blacklisted = true
		}
		if f.Whitelisted {
			out.Whitelisted = true
		}
	}

	switch {
	case out.Blacklisted:
		// Blacklist overrides everything, including the whitelist.
		sum = 100
		out.Flags = append(out.Flags, domain.FraudFlag{
			Type:        domain.FlagBlacklisted,
			Severity:    domain.SeverityCritical,
			Description: "user or device IP is blacklisted",
			Score:       100,
		})
	case out.Whitelisted:
		sum -= a.WhitelistCredit
		if sum < 0 {
			sum = 0
		}
	}

	out.Score = clamp(sum)
	out.Level = domain.RiskLevelForScore(out.Score)

	return out
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
