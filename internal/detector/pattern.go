package detector

import (
	"context"

	"github.com/reshadx/fraudguard/internal/domain"
	"github.com/reshadx/fraudguard/internal/signature"
)

// PatternMatch evaluates registered fraud signatures against the input. With
// no signatures loaded it always reports nothing.
type PatternMatch struct {
	matcher *signature.Matcher
}

// NewPatternMatch creates the fraud pattern detector.
func NewPatternMatch(matcher *signature.Matcher) *PatternMatch {
	return &PatternMatch{matcher: matcher}
}

func (d *PatternMatch) Name() string { return "fraud_pattern" }

func (d *PatternMatch) Evaluate(ctx context.Context, input *domain.CheckInput) domain.Finding {
	finding := domain.Finding{Detector: d.Name()}

	if d.matcher == nil {
		return finding
	}

	for _, flag := range d.matcher.Match(ctx, input) {
		finding.Score += flag.Score
		finding.Flags = append(finding.Flags, flag)
	}

	return finding
}
