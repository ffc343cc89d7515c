package detector

import (
	"context"
	"testing"
	"time"

	"github.com/reshadx/fraudguard/internal/domain"
)

func TestAccountTakeover(t *testing.T) {
	ctx := context.Background()

	t.Run("FreshPasswordChange", func(t *testing.T) {
		repo := newFakeRepo()
		repo.profiles["user-1"] = &domain.UserProfile{
			UserID:            "user-1",
			PasswordChangedAt: timePtr(time.Now().Add(-30 * time.Minute)),
		}
		d := NewAccountTakeover(repo)

		finding := d.Evaluate(ctx, &domain.CheckInput{UserID: "user-1"})

		if finding.Score != 60 {
			t.Errorf("expected score 60, got %d", finding.Score)
		}
		if len(finding.Flags) != 1 || finding.Flags[0].Severity != domain.SeverityCritical {
			t.Errorf("expected one CRITICAL flag, got %+v", finding.Flags)
		}
	})

	t.Run("FreshEmailChange", func(t *testing.T) {
		repo := newFakeRepo()
		repo.profiles["user-1"] = &domain.UserProfile{
			UserID:         "user-1",
			EmailChangedAt: timePtr(time.Now().Add(-12 * time.Hour)),
		}
		d := NewAccountTakeover(repo)

		finding := d.Evaluate(ctx, &domain.CheckInput{UserID: "user-1"})

		if finding.Score != 50 {
			t.Errorf("expected score 50, got %d", finding.Score)
		}
		if len(finding.Flags) != 1 || finding.Flags[0].Severity != domain.SeverityHigh {
			t.Errorf("expected one HIGH flag, got %+v", finding.Flags)
		}
	})

	t.Run("BothChangesAreAdditive", func(t *testing.T) {
		repo := newFakeRepo()
		repo.profiles["user-1"] = &domain.UserProfile{
			UserID:            "user-1",
			PasswordChangedAt: timePtr(time.Now().Add(-10 * time.Minute)),
			EmailChangedAt:    timePtr(time.Now().Add(-2 * time.Hour)),
		}
		d := NewAccountTakeover(repo)

		finding := d.Evaluate(ctx, &domain.CheckInput{UserID: "user-1"})

		if finding.Score != 110 {
			t.Errorf("expected additive score 110, got %d", finding.Score)
		}
		if len(finding.Flags) != 2 {
			t.Errorf("expected two ACCOUNT_TAKEOVER flags, got %d", len(finding.Flags))
		}
	})

	t.Run("StaleChangesIgnored", func(t *testing.T) {
		repo := newFakeRepo()
		repo.profiles["user-1"] = &domain.UserProfile{
			UserID:            "user-1",
			PasswordChangedAt: timePtr(time.Now().Add(-3 * time.Hour)),
			EmailChangedAt:    timePtr(time.Now().Add(-48 * time.Hour)),
		}
		d := NewAccountTakeover(repo)

		finding := d.Evaluate(ctx, &domain.CheckInput{UserID: "user-1"})

		if finding.Score != 0 || len(finding.Flags) != 0 {
			t.Errorf("expected zero finding for stale changes, got %+v", finding)
		}
	})

	t.Run("NoProfileDegrades", func(t *testing.T) {
		d := NewAccountTakeover(newFakeRepo())

		finding := d.Evaluate(ctx, &domain.CheckInput{UserID: "ghost"})

		if finding.Score != 0 {
			t.Errorf("expected zero finding without a profile, got %+v", finding)
		}
	})
}
