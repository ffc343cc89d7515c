package risk

import (
	"github.com/reshadx/fraudguard/internal/domain"
)

// Remediation guidance per flag type.
var recommendations = map[string]string{
	domain.FlagSimSwap:            "re-verify the user's identity through an alternate channel before allowing transactions",
	domain.FlagSuspiciousDevice:   "require step-up authentication for this session",
	domain.FlagUnusualTransaction: "confirm the transaction with the user out-of-band",
	domain.FlagVelocityExceeded:   "apply rate limiting and a cool-down period to this account",
}

const fallbackRecommendation = "queue the account for manual review"

// Recommend derives ordered, de-duplicated remediation guidance from the
// flag types. When the score is high but no specific guidance applies, a
// generic manual-review fallback is emitted.
func Recommend(score int, flags []domain.FraudFlag) []string {
	var out []string
	seen := make(map[string]bool)

	for _, f := range flags {
		rec, ok := recommendations[f.Type]
		if !ok || seen[f.Type] {
			continue
		}
		seen[f.Type] = true
		out = append(out, rec)
	}

	if len(out) == 0 && score >= 50 {
		out = append(out, fallbackRecommendation)
	}

	return out
}
