package risk

import (
	"github.com/reshadx/fraudguard/internal/domain"
)

// Policy maps an aggregated score and flag list to a decision. Stateless:
// every check produces exactly one terminal decision.
type Policy struct {
	// DeclineThreshold is the minimum score for DECLINE.
	DeclineThreshold int

	// ReviewThreshold is the minimum score for REVIEW.
	ReviewThreshold int
}

// NewPolicy creates a policy with the default thresholds.
func NewPolicy() *Policy {
	return &Policy{
		DeclineThreshold: 70,
		ReviewThreshold:  40,
	}
}

// Decide applies the precedence rules. A CRITICAL-severity flag forces BLOCK
// regardless of score: severity, not just score, gates the hardest outcome.
func (p *Policy) Decide(score int, flags []domain.FraudFlag) domain.Decision {
	for _, f := range flags {
		if f.Severity == domain.SeverityCritical {
			return domain.DecisionBlock
		}
	}

	switch {
	case score >= p.DeclineThreshold:
		return domain.DecisionDecline
	case score >= p.ReviewThreshold:
		return domain.DecisionReview
	default:
		return domain.DecisionApprove
	}
}
