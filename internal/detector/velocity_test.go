package detector

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/reshadx/fraudguard/internal/domain"
)

func seedRecent(repo *fakeRepo, userID string, count int) {
	for i := 0; i < count; i++ {
		repo.transactions = append(repo.transactions, &domain.Transaction{
			ID:        fmt.Sprintf("recent-%d", i),
			UserID:    userID,
			CreatedAt: time.Now().Add(-time.Duration(i) * time.Minute),
		})
	}
}

func TestVelocityThresholds(t *testing.T) {
	cases := []struct {
		name      string
		count     int
		wantScore int
		wantSev   domain.Severity
	}{
		{"UnderThreshold", 5, 0, ""},
		{"Medium", 6, 30, domain.SeverityMedium},
		{"AtHighBoundary", 10, 30, domain.SeverityMedium},
		{"High", 11, 50, domain.SeverityHigh},
		{"AtCriticalBoundary", 20, 50, domain.SeverityHigh},
		{"Critical", 21, 70, domain.SeverityCritical},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			repo := newFakeRepo()
			seedRecent(repo, "user-1", c.count)
			d := NewVelocity(repo)

			finding := d.Evaluate(context.Background(), &domain.CheckInput{UserID: "user-1"})

			if finding.Score != c.wantScore {
				t.Errorf("count %d: expected score %d, got %d", c.count, c.wantScore, finding.Score)
			}
			if c.wantScore == 0 {
				if len(finding.Flags) != 0 {
					t.Errorf("expected no flags, got %+v", finding.Flags)
				}
				return
			}
			if len(finding.Flags) != 1 {
				t.Fatalf("expected one flag, got %d", len(finding.Flags))
			}
			if finding.Flags[0].Severity != c.wantSev {
				t.Errorf("expected severity %s, got %s", c.wantSev, finding.Flags[0].Severity)
			}
			if finding.Flags[0].Type != domain.FlagVelocityExceeded {
				t.Errorf("expected VELOCITY_EXCEEDED, got %s", finding.Flags[0].Type)
			}
		})
	}
}

func TestVelocityIgnoresOldTransactions(t *testing.T) {
	repo := newFakeRepo()
	for i := 0; i < 30; i++ {
		repo.transactions = append(repo.transactions, &domain.Transaction{
			ID:        fmt.Sprintf("old-%d", i),
			UserID:    "user-1",
			CreatedAt: time.Now().Add(-2 * time.Hour),
		})
	}
	d := NewVelocity(repo)

	finding := d.Evaluate(context.Background(), &domain.CheckInput{UserID: "user-1"})

	if finding.Score != 0 {
		t.Errorf("transactions outside the hour must not count, got %+v", finding)
	}
}
