// Package worker persists completed checks and raises review alerts off the
// request path.
package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/reshadx/fraudguard/internal/domain"
)

// Worker consumes completed checks from the EventBus and writes the audit
// trail. A write failure is logged and counted; the check result the caller
// already received is never affected.
type Worker struct {
	bus  domain.EventBus
	repo domain.Repository

	subscriptions []domain.Subscription
	ctx           context.Context
	cancel        context.CancelFunc

	processed atomic.Int64
	failed    atomic.Int64
	alerts    atomic.Int64
}

// NewWorker creates an audit worker.
func NewWorker(bus domain.EventBus, repo domain.Repository) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		bus:    bus,
		repo:   repo,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start subscribes to the check-completed topic.
func (w *Worker) Start() error {
	sub, err := w.bus.Subscribe(w.ctx, domain.TopicCheckCompleted, w.handleCheck)
	if err != nil {
		return err
	}
	w.subscriptions = append(w.subscriptions, sub)

	slog.Info("audit worker started", "topic", domain.TopicCheckCompleted)
	return nil
}

// handleCheck persists one completed check and, for HIGH or CRITICAL risk,
// opens a pending alert.
func (w *Worker) handleCheck(ctx context.Context, msg *domain.Message) error {
	var env domain.CheckEnvelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		slog.Error("failed to parse check envelope",
			"message_id", msg.ID,
			"error", err,
		)
		w.failed.Add(1)
		return err
	}
	if env.Result == nil {
		slog.Error("check envelope missing result", "message_id", msg.ID)
		w.failed.Add(1)
		return nil
	}

	// Record the transaction so the velocity and pattern detectors see it on
	// the next check.
	if env.Input != nil && env.Input.TransactionID != "" && env.Input.AmountMinor > 0 {
		tx := &domain.Transaction{
			ID:          env.Input.TransactionID,
			UserID:      env.Input.UserID,
			AccountID:   env.Input.AccountID,
			RecipientID: env.Input.RecipientID,
			AmountMinor: env.Input.AmountMinor,
			CreatedAt:   env.Result.CalculatedAt,
		}
		if err := w.repo.SaveTransaction(ctx, tx); err != nil {
			slog.Error("failed to save transaction",
				"transaction_id", tx.ID,
				"error", err,
			)
		}
	}

	if err := w.repo.SaveCheck(ctx, env.Result, env.Input); err != nil {
		slog.Error("failed to save check",
			"check_id", env.Result.ID,
			"error", err,
		)
		w.failed.Add(1)
		return err
	}

	if env.Result.RiskLevel == domain.RiskHigh || env.Result.RiskLevel == domain.RiskCritical {
		if err := w.raiseAlert(ctx, env.Result); err != nil {
			w.failed.Add(1)
			return err
		}
	}

	w.processed.Add(1)

	slog.Debug("check persisted",
		"check_id", env.Result.ID,
		"user_id", env.Result.UserID,
		"risk_level", env.Result.RiskLevel,
	)

	return nil
}

func (w *Worker) raiseAlert(ctx context.Context, result *domain.CheckResult) error {
	alert := &domain.Alert{
		ID:        uuid.New().String(),
		CheckID:   result.ID,
		UserID:    result.UserID,
		RiskLevel: result.RiskLevel,
		RiskScore: result.RiskScore,
		Status:    domain.AlertPending,
		Reason:    alertReason(result),
		CreatedAt: time.Now().UTC(),
	}

	if err := w.repo.SaveAlert(ctx, alert); err != nil {
		slog.Error("failed to save alert",
			"check_id", result.ID,
			"error", err,
		)
		return err
	}

	w.alerts.Add(1)

	slog.Info("alert raised",
		"alert_id", alert.ID,
		"check_id", result.ID,
		"user_id", result.UserID,
		"risk_score", result.RiskScore,
	)

	return nil
}

// alertReason summarizes the flags for the review queue.
func alertReason(result *domain.CheckResult) string {
	if len(result.Flags) == 0 {
		return "elevated risk score"
	}
	reason := result.Flags[0].Description
	for i := 1; i < len(result.Flags); i++ {
		reason += "; " + result.Flags[i].Description
	}
	return reason
}

// Stop unsubscribes and stops the worker.
func (w *Worker) Stop() error {
	w.cancel()

	for _, sub := range w.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			slog.Error("failed to unsubscribe",
				"topic", sub.Topic(),
				"error", err,
			)
		}
	}
	w.subscriptions = nil

	slog.Info("audit worker stopped")
	return nil
}

// Stats reports worker counters.
type Stats struct {
	Processed         int64 `json:"processed"`
	Failed            int64 `json:"failed"`
	AlertsRaised      int64 `json:"alertsRaised"`
	SubscriptionCount int   `json:"subscriptionCount"`
}

// GetStats returns a snapshot of the worker counters.
func (w *Worker) GetStats() Stats {
	return Stats{
		Processed:         w.processed.Load(),
		Failed:            w.failed.Load(),
		AlertsRaised:      w.alerts.Load(),
		SubscriptionCount: len(w.subscriptions),
	}
}
