// Package engine orchestrates a fraud check: parallel detector fan-out,
// aggregation, decision, and fire-and-forget persistence.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reshadx/fraudguard/internal/domain"
	"github.com/reshadx/fraudguard/internal/risk"
)

// Detector is the subset of the detector package the engine needs; declared
// here so the engine depends on behavior, not the concrete package.
type Detector interface {
	Name() string
	Evaluate(ctx context.Context, input *domain.CheckInput) domain.Finding
}

// Committer is implemented by detectors that refresh signal state for the
// next check. Commits run only after every detector has joined, so within
// one invocation no detector ever observes another detector's writes.
type Committer interface {
	Commit(ctx context.Context, input *domain.CheckInput)
}

// Engine runs fraud checks end to end.
type Engine struct {
	detectors  []Detector
	aggregator *risk.Aggregator
	policy     *risk.Policy
	bus        domain.EventBus
	maxWorkers int
}

// New creates an engine over a fixed, ordered detector set. Detector order
// determines flag order in results.
func New(detectors []Detector, aggregator *risk.Aggregator, policy *risk.Policy, bus domain.EventBus, maxWorkers int) *Engine {
	if maxWorkers <= 0 {
		maxWorkers = 8
	}
	return &Engine{
		detectors:  detectors,
		aggregator: aggregator,
		policy:     policy,
		bus:        bus,
		maxWorkers: maxWorkers,
	}
}

// CheckFraud evaluates a single input and returns the result synchronously.
// Persistence and alerting happen off the request path: their failure is
// logged and never changes the returned decision.
func (e *Engine) CheckFraud(ctx context.Context, input *domain.CheckInput) (*domain.CheckResult, error) {
	start := time.Now()

	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("fraud check rejected: %w", err)
	}

	findings := e.runDetectors(ctx, input)

	// Signal refreshes happen only after the join; every detector evaluated
	// against the same pre-check snapshot.
	for _, det := range e.detectors {
		if c, ok := det.(Committer); ok {
			c.Commit(ctx, input)
		}
	}

	assessment := e.aggregator.Aggregate(findings)
	decision := e.policy.Decide(assessment.Score, assessment.Flags)

	result := &domain.CheckResult{
		ID:               uuid.New().String(),
		UserID:           input.UserID,
		RiskScore:        assessment.Score,
		RiskLevel:        assessment.Level,
		FraudProbability: float64(assessment.Score) / 100.0,
		Decision:         decision,
		Flags:            assessment.Flags,
		SimSwapDetected:  assessment.SimSwapDetected,
		SimSwapRisk:      assessment.SimSwapRisk,
		Recommendations:  risk.Recommend(assessment.Score, assessment.Flags),
		CalculatedAt:     time.Now().UTC(),
	}

	e.publish(result, input)

	slog.Info("fraud check completed",
		"check_id", result.ID,
		"user_id", result.UserID,
		"risk_score", result.RiskScore,
		"risk_level", result.RiskLevel,
		"decision", result.Decision,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}

// runDetectors fans out all detectors concurrently and joins before
// aggregation. Findings keep registration order regardless of completion
// order. A panicking detector degrades to its zero finding.
func (e *Engine) runDetectors(ctx context.Context, input *domain.CheckInput) []domain.Finding {
	findings := make([]domain.Finding, len(e.detectors))

	var wg sync.WaitGroup
	sem := make(chan struct{}, e.maxWorkers)

	for i, det := range e.detectors {
		wg.Add(1)
		go func(idx int, d Detector) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			defer func() {
				if r := recover(); r != nil {
					slog.Error("detector panicked",
						"detector", d.Name(),
						"user_id", input.UserID,
						"panic", r,
					)
					findings[idx] = domain.Finding{Detector: d.Name()}
				}
			}()

			findings[idx] = d.Evaluate(ctx, input)
		}(i, det)
	}

	wg.Wait()

	return findings
}

// publish hands the result to the bus for the audit worker. Uses a detached
// context so a cancelled request does not lose the audit trail.
func (e *Engine) publish(result *domain.CheckResult, input *domain.CheckInput) {
	if e.bus == nil {
		return
	}

	payload, err := json.Marshal(domain.CheckEnvelope{Result: result, Input: input})
	if err != nil {
		slog.Error("failed to encode check envelope", "check_id", result.ID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := e.bus.Publish(ctx, domain.TopicCheckCompleted, payload); err != nil {
		slog.Error("failed to publish check", "check_id", result.ID, "error", err)
	}

	if result.RiskLevel == domain.RiskHigh || result.RiskLevel == domain.RiskCritical {
		if err := e.bus.Publish(ctx, domain.TopicAlertRaised, payload); err != nil {
			slog.Error("failed to publish alert", "check_id", result.ID, "error", err)
		}
	}
}
