package detector

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/reshadx/fraudguard/internal/domain"
)

func seedHistory(repo *fakeRepo, userID string, amounts ...int64) {
	for i, amt := range amounts {
		repo.transactions = append(repo.transactions, &domain.Transaction{
			ID:          fmt.Sprintf("tx-%d", i),
			UserID:      userID,
			AmountMinor: amt,
			CreatedAt:   time.Now().Add(-time.Duration(i+1) * time.Hour),
		})
	}
}

func TestTransactionPatternFirstTransaction(t *testing.T) {
	repo := newFakeRepo()
	d := NewTransactionPattern(repo)

	finding := d.Evaluate(context.Background(), &domain.CheckInput{
		UserID:      "user-1",
		AmountMinor: 5_000,
	})

	if finding.Score != 30 {
		t.Errorf("expected score 30 for first transaction, got %d", finding.Score)
	}
	if len(finding.Flags) != 1 || finding.Flags[0].Severity != domain.SeverityMedium {
		t.Errorf("expected one MEDIUM flag, got %+v", finding.Flags)
	}
}

func TestTransactionPatternNoAmount(t *testing.T) {
	repo := newFakeRepo()
	d := NewTransactionPattern(repo)

	finding := d.Evaluate(context.Background(), &domain.CheckInput{UserID: "user-1"})

	if finding.Score != 0 || len(finding.Flags) != 0 {
		t.Errorf("expected zero finding without an amount, got %+v", finding)
	}
}

func TestTransactionPatternZScore(t *testing.T) {
	repo := newFakeRepo()
	// Varied history: mean 3000, stddev ~816.
	seedHistory(repo, "user-1", 2000, 3000, 4000)
	d := NewTransactionPattern(repo)

	finding := d.Evaluate(context.Background(), &domain.CheckInput{
		UserID:      "user-1",
		AmountMinor: 50_000,
	})

	if finding.Score != 50 {
		t.Errorf("expected z-score anomaly (50), got %d", finding.Score)
	}
	if len(finding.Flags) != 1 || finding.Flags[0].Severity != domain.SeverityHigh {
		t.Errorf("expected one HIGH flag, got %+v", finding.Flags)
	}
}

// With a flat history the stddev is zero, z stays zero, and the max-ratio
// rule catches the anomaly instead.
func TestTransactionPatternZeroStddevFallsThroughToMaxRatio(t *testing.T) {
	repo := newFakeRepo()
	seedHistory(repo, "user-1", 1000, 1000, 1000)
	d := NewTransactionPattern(repo)

	finding := d.Evaluate(context.Background(), &domain.CheckInput{
		UserID:      "user-1",
		AmountMinor: 5000,
	})

	if finding.Score != 45 {
		t.Errorf("expected max-ratio anomaly (45), got %d", finding.Score)
	}
}

func TestTransactionPatternRoundNumber(t *testing.T) {
	repo := newFakeRepo()
	// Wide history so neither anomaly rule fires on the probe amount.
	seedHistory(repo, "user-1", 50_000, 150_000, 250_000, 350_000)
	d := NewTransactionPattern(repo)

	t.Run("LargeRoundAmount", func(t *testing.T) {
		finding := d.Evaluate(context.Background(), &domain.CheckInput{
			UserID:      "user-1",
			AmountMinor: 300_000,
		})
		if finding.Score != 25 {
			t.Errorf("expected round-number flag (25), got %d", finding.Score)
		}
	})

	t.Run("NonRoundAmount", func(t *testing.T) {
		finding := d.Evaluate(context.Background(), &domain.CheckInput{
			UserID:      "user-1",
			AmountMinor: 300_050,
		})
		if finding.Score != 0 {
			t.Errorf("expected no flag for non-round amount, got %d", finding.Score)
		}
	})
}

func TestTransactionPatternNormalAmount(t *testing.T) {
	repo := newFakeRepo()
	seedHistory(repo, "user-1", 2000, 3000, 4000)
	d := NewTransactionPattern(repo)

	finding := d.Evaluate(context.Background(), &domain.CheckInput{
		UserID:      "user-1",
		AmountMinor: 3500,
	})

	if finding.Score != 0 || len(finding.Flags) != 0 {
		t.Errorf("expected zero finding for a typical amount, got %+v", finding)
	}
}
