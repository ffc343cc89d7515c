package risk

import (
	"testing"

	"github.com/reshadx/fraudguard/internal/domain"
)

func TestAggregateSumsFindings(t *testing.T) {
	agg := NewAggregator()

	out := agg.Aggregate([]domain.Finding{
		{Detector: "a", Score: 30, Flags: []domain.FraudFlag{{Type: domain.FlagUnusualTransaction, Severity: domain.SeverityMedium, Score: 30}}},
		{Detector: "b", Score: 25, Flags: []domain.FraudFlag{{Type: domain.FlagSuspiciousDevice, Severity: domain.SeverityMedium, Score: 25}}},
	})

	if out.Score != 55 {
		t.Errorf("expected score 55, got %d", out.Score)
	}
	if out.Level != domain.RiskHigh {
		t.Errorf("expected HIGH, got %s", out.Level)
	}
	if len(out.Flags) != 2 {
		t.Errorf("expected 2 flags, got %d", len(out.Flags))
	}
	// Flags keep finding order.
	if out.Flags[0].Type != domain.FlagUnusualTransaction {
		t.Errorf("expected finding order preserved, got %s first", out.Flags[0].Type)
	}
}

func TestAggregateClampsTo100(t *testing.T) {
	agg := NewAggregator()

	out := agg.Aggregate([]domain.Finding{
		{Score: 80},
		{Score: 70},
		{Score: 60},
	})

	if out.Score != 100 {
		t.Errorf("expected clamp to 100, got %d", out.Score)
	}
	if out.Level != domain.RiskCritical {
		t.Errorf("expected CRITICAL, got %s", out.Level)
	}
}

func TestAggregateBlacklistOverride(t *testing.T) {
	agg := NewAggregator()

	// Blacklist wins even when the user is also whitelisted and the raw sum
	// is tiny.
	out := agg.Aggregate([]domain.Finding{
		{Score: 5},
		{Blacklisted: true, Whitelisted: true},
	})

	if out.Score != 100 {
		t.Errorf("expected score 100 for blacklisted user, got %d", out.Score)
	}
	if out.Level != domain.RiskCritical {
		t.Errorf("expected CRITICAL, got %s", out.Level)
	}

	found := false
	for _, f := range out.Flags {
		if f.Type == domain.FlagBlacklisted && f.Severity == domain.SeverityCritical {
			found = true
		}
	}
	if !found {
		t.Error("expected a CRITICAL BLACKLISTED flag")
	}
}

func TestAggregateWhitelistCredit(t *testing.T) {
	agg := NewAggregator()

	t.Run("SubtractsCredit", func(t *testing.T) {
		out := agg.Aggregate([]domain.Finding{
			{Score: 50},
			{Whitelisted: true},
		})
		if out.Score != 20 {
			t.Errorf("expected 50-30=20, got %d", out.Score)
		}
	})

	t.Run("FlooredAtZero", func(t *testing.T) {
		out := agg.Aggregate([]domain.Finding{
			{Score: 10},
			{Whitelisted: true},
		})
		if out.Score != 0 {
			t.Errorf("expected floor at 0, got %d", out.Score)
		}
		if out.Level != domain.RiskLow {
			t.Errorf("expected LOW, got %s", out.Level)
		}
	})
}

func TestAggregateCarriesSimSwapSignal(t *testing.T) {
	agg := NewAggregator()

	out := agg.Aggregate([]domain.Finding{
		{Detector: "sim_swap", Score: 20, SimSwapRisk: 20},
		{Detector: "velocity", Score: 30},
	})

	if out.SimSwapDetected {
		t.Error("soft sim-swap signal must not set detected")
	}
	if out.SimSwapRisk != 20 {
		t.Errorf("expected sim-swap risk 20, got %d", out.SimSwapRisk)
	}
	if out.Score != 50 {
		t.Errorf("expected soft signal to contribute to score, got %d", out.Score)
	}
}

func TestRiskLevelBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  domain.RiskLevel
	}{
		{0, domain.RiskLow},
		{29, domain.RiskLow},
		{30, domain.RiskMedium},
		{49, domain.RiskMedium},
		{50, domain.RiskHigh},
		{69, domain.RiskHigh},
		{70, domain.RiskCritical},
		{100, domain.RiskCritical},
	}

	for _, c := range cases {
		if got := domain.RiskLevelForScore(c.score); got != c.want {
			t.Errorf("score %d: expected %s, got %s", c.score, c.want, got)
		}
	}
}

func TestPolicyDecide(t *testing.T) {
	policy := NewPolicy()

	t.Run("CriticalFlagBlocksRegardlessOfScore", func(t *testing.T) {
		flags := []domain.FraudFlag{{Type: domain.FlagSimSwap, Severity: domain.SeverityCritical, Score: 20}}
		if got := policy.Decide(20, flags); got != domain.DecisionBlock {
			t.Errorf("expected BLOCK, got %s", got)
		}
	})

	t.Run("Thresholds", func(t *testing.T) {
		cases := []struct {
			score int
			want  domain.Decision
		}{
			{0, domain.DecisionApprove},
			{39, domain.DecisionApprove},
			{40, domain.DecisionReview},
			{69, domain.DecisionReview},
			{70, domain.DecisionDecline},
			{100, domain.DecisionDecline},
		}
		for _, c := range cases {
			if got := policy.Decide(c.score, nil); got != c.want {
				t.Errorf("score %d: expected %s, got %s", c.score, c.want, got)
			}
		}
	})
}

// Three MEDIUM velocity-style findings summing to 75 with one CRITICAL flag
// must block, not merely decline.
func TestCriticalFlagPrecedenceOverDecline(t *testing.T) {
	agg := NewAggregator()
	policy := NewPolicy()

	out := agg.Aggregate([]domain.Finding{
		{Score: 25, Flags: []domain.FraudFlag{{Type: domain.FlagVelocityExceeded, Severity: domain.SeverityMedium, Score: 25}}},
		{Score: 25, Flags: []domain.FraudFlag{{Type: domain.FlagUnusualTransaction, Severity: domain.SeverityMedium, Score: 25}}},
		{Score: 25, Flags: []domain.FraudFlag{{Type: domain.FlagSimSwap, Severity: domain.SeverityCritical, Score: 25}}},
	})

	if got := policy.Decide(out.Score, out.Flags); got != domain.DecisionBlock {
		t.Errorf("expected BLOCK with a critical flag present, got %s", got)
	}
}

func TestRecommend(t *testing.T) {
	t.Run("MapsFlagTypes", func(t *testing.T) {
		flags := []domain.FraudFlag{
			{Type: domain.FlagSimSwap},
			{Type: domain.FlagVelocityExceeded},
		}
		recs := Recommend(60, flags)
		if len(recs) != 2 {
			t.Fatalf("expected 2 recommendations, got %d", len(recs))
		}
	})

	t.Run("Deduplicates", func(t *testing.T) {
		flags := []domain.FraudFlag{
			{Type: domain.FlagSuspiciousDevice},
			{Type: domain.FlagSuspiciousDevice},
		}
		recs := Recommend(40, flags)
		if len(recs) != 1 {
			t.Errorf("expected 1 recommendation after dedup, got %d", len(recs))
		}
	})

	t.Run("FallbackForHighScoreWithoutGuidance", func(t *testing.T) {
		recs := Recommend(55, nil)
		if len(recs) != 1 || recs[0] != fallbackRecommendation {
			t.Errorf("expected manual-review fallback, got %v", recs)
		}
	})

	t.Run("NoFallbackForLowScore", func(t *testing.T) {
		recs := Recommend(20, nil)
		if len(recs) != 0 {
			t.Errorf("expected no recommendations, got %v", recs)
		}
	})
}
