package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/reshadx/fraudguard/internal/domain"
)

func testRepo(t *testing.T) domain.Repository {
	t.Helper()

	repo, err := New(domain.RepositoryConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestUserProfileRoundTrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	lastLogin := time.Now().Add(-time.Hour).UTC().Truncate(time.Second)
	profile := &domain.UserProfile{
		UserID:        "user-1",
		PhoneNumber:   "+254700000001",
		PhoneVerified: true,
		LastLoginAt:   &lastLogin,
	}

	if err := repo.SaveUserProfile(ctx, profile); err != nil {
		t.Fatalf("SaveUserProfile failed: %v", err)
	}

	got, err := repo.GetUserProfile(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUserProfile failed: %v", err)
	}
	if got.PhoneNumber != "+254700000001" || !got.PhoneVerified {
		t.Errorf("unexpected profile: %+v", got)
	}
	if got.LastLoginAt == nil || !got.LastLoginAt.Equal(lastLogin) {
		t.Errorf("expected last login %v, got %v", lastLogin, got.LastLoginAt)
	}
	if got.PasswordChangedAt != nil {
		t.Errorf("expected nil password change time, got %v", got.PasswordChangedAt)
	}

	t.Run("Upsert", func(t *testing.T) {
		profile.PhoneVerified = false
		if err := repo.SaveUserProfile(ctx, profile); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
		got, _ := repo.GetUserProfile(ctx, "user-1")
		if got.PhoneVerified {
			t.Error("expected phone_verified updated to false")
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := repo.GetUserProfile(ctx, "ghost")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestTransactionHistory(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for i, age := range []time.Duration{10 * time.Minute, 30 * time.Minute, 2 * time.Hour} {
		tx := &domain.Transaction{
			ID:          string(rune('a' + i)),
			UserID:      "user-1",
			AmountMinor: int64(1000 * (i + 1)),
			Currency:    "KES",
			CreatedAt:   now.Add(-age),
		}
		if err := repo.SaveTransaction(ctx, tx); err != nil {
			t.Fatalf("SaveTransaction failed: %v", err)
		}
	}

	t.Run("RecentOnly", func(t *testing.T) {
		txs, err := repo.RecentTransactions(ctx, "user-1", now.Add(-time.Hour))
		if err != nil {
			t.Fatalf("RecentTransactions failed: %v", err)
		}
		if len(txs) != 2 {
			t.Errorf("expected 2 transactions inside the hour, got %d", len(txs))
		}
		// Newest first.
		if len(txs) == 2 && txs[0].CreatedAt.Before(txs[1].CreatedAt) {
			t.Error("expected newest-first ordering")
		}
	})

	t.Run("Count", func(t *testing.T) {
		count, err := repo.CountTransactions(ctx, "user-1", now.Add(-time.Hour))
		if err != nil {
			t.Fatalf("CountTransactions failed: %v", err)
		}
		if count != 2 {
			t.Errorf("expected count 2, got %d", count)
		}
	})

	t.Run("OtherUserEmpty", func(t *testing.T) {
		count, _ := repo.CountTransactions(ctx, "user-2", now.Add(-24*time.Hour))
		if count != 0 {
			t.Errorf("expected 0 for other user, got %d", count)
		}
	})
}

func TestListEntries(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if err := repo.AddListEntry(ctx, &domain.ListEntry{
		Kind:   domain.ListBlacklist,
		Value:  "user-1",
		Reason: "confirmed fraud",
	}); err != nil {
		t.Fatalf("AddListEntry failed: %v", err)
	}

	blacklisted, err := repo.IsBlacklisted(ctx, "user-1")
	if err != nil {
		t.Fatalf("IsBlacklisted failed: %v", err)
	}
	if !blacklisted {
		t.Error("expected user-1 blacklisted")
	}

	whitelisted, _ := repo.IsWhitelisted(ctx, "user-1")
	if whitelisted {
		t.Error("blacklist entry must not appear on the whitelist")
	}

	t.Run("Remove", func(t *testing.T) {
		if err := repo.RemoveListEntry(ctx, domain.ListBlacklist, "user-1"); err != nil {
			t.Fatalf("RemoveListEntry failed: %v", err)
		}
		blacklisted, _ := repo.IsBlacklisted(ctx, "user-1")
		if blacklisted {
			t.Error("expected entry removed")
		}
	})

	t.Run("RemoveMissing", func(t *testing.T) {
		err := repo.RemoveListEntry(ctx, domain.ListBlacklist, "nobody")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("InvalidKind", func(t *testing.T) {
		err := repo.AddListEntry(ctx, &domain.ListEntry{Kind: "greylist", Value: "x"})
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestSignatures(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	sig := &domain.Signature{
		ID:         "sig-001",
		Name:       "Mule recipient",
		Expression: `recipient_id == "mule-1"`,
		Severity:   domain.SeverityHigh,
		Score:      60,
		Enabled:    true,
	}
	if err := repo.SaveSignature(ctx, sig); err != nil {
		t.Fatalf("SaveSignature failed: %v", err)
	}

	disabled := &domain.Signature{
		ID:         "sig-002",
		Name:       "Disabled",
		Expression: "amount > 0",
		Enabled:    false,
	}
	_ = repo.SaveSignature(ctx, disabled)

	// Disabled signatures stay listable so they can be reviewed and
	// re-enabled; only the matcher filters on the enabled flag.
	sigs, err := repo.ListSignatures(ctx)
	if err != nil {
		t.Fatalf("ListSignatures failed: %v", err)
	}
	if len(sigs) != 2 {
		t.Fatalf("expected both signatures listed, got %d", len(sigs))
	}

	byID := make(map[string]*domain.Signature, len(sigs))
	for _, s := range sigs {
		byID[s.ID] = s
	}
	if s := byID["sig-001"]; s == nil || !s.Enabled || s.Score != 60 {
		t.Errorf("unexpected enabled signature: %+v", s)
	}
	if s := byID["sig-002"]; s == nil || s.Enabled {
		t.Errorf("expected sig-002 listed as disabled, got %+v", s)
	}
}

func TestCheckAuditTrail(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	result := &domain.CheckResult{
		ID:               "check-1",
		UserID:           "user-1",
		RiskScore:        55,
		RiskLevel:        domain.RiskHigh,
		FraudProbability: 0.55,
		Decision:         domain.DecisionReview,
		Flags: []domain.FraudFlag{
			{Type: domain.FlagVelocityExceeded, Severity: domain.SeverityMedium, Description: "6 transactions in the last hour", Score: 30},
		},
		Recommendations: []string{"apply rate limiting and a cool-down period to this account"},
		CalculatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	input := &domain.CheckInput{UserID: "user-1", AmountMinor: 1000}

	if err := repo.SaveCheck(ctx, result, input); err != nil {
		t.Fatalf("SaveCheck failed: %v", err)
	}

	got, err := repo.GetCheck(ctx, "check-1")
	if err != nil {
		t.Fatalf("GetCheck failed: %v", err)
	}
	if got.RiskScore != 55 || got.RiskLevel != domain.RiskHigh || got.Decision != domain.DecisionReview {
		t.Errorf("unexpected check: %+v", got)
	}
	if len(got.Flags) != 1 || got.Flags[0].Type != domain.FlagVelocityExceeded {
		t.Errorf("flags did not round-trip: %+v", got.Flags)
	}
	if got.FraudProbability != 0.55 {
		t.Errorf("expected probability 0.55, got %f", got.FraudProbability)
	}

	t.Run("NotFound", func(t *testing.T) {
		_, err := repo.GetCheck(ctx, "nope")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestAlertLifecycle(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	alert := &domain.Alert{
		ID:        "alert-1",
		CheckID:   "check-1",
		UserID:    "user-1",
		RiskLevel: domain.RiskHigh,
		RiskScore: 60,
		Status:    domain.AlertPending,
		Reason:    "6 transactions in the last hour",
		CreatedAt: time.Now().UTC(),
	}
	if err := repo.SaveAlert(ctx, alert); err != nil {
		t.Fatalf("SaveAlert failed: %v", err)
	}

	t.Run("ListByStatus", func(t *testing.T) {
		alerts, err := repo.ListAlerts(ctx, domain.AlertPending, "", 10, 0)
		if err != nil {
			t.Fatalf("ListAlerts failed: %v", err)
		}
		if len(alerts) != 1 {
			t.Fatalf("expected 1 pending alert, got %d", len(alerts))
		}
	})

	t.Run("ListFiltersOutNonMatching", func(t *testing.T) {
		alerts, _ := repo.ListAlerts(ctx, domain.AlertApproved, "", 10, 0)
		if len(alerts) != 0 {
			t.Errorf("expected no approved alerts, got %d", len(alerts))
		}

		alerts, _ = repo.ListAlerts(ctx, "", domain.RiskCritical, 10, 0)
		if len(alerts) != 0 {
			t.Errorf("expected no critical alerts, got %d", len(alerts))
		}
	})

	t.Run("Review", func(t *testing.T) {
		if err := repo.ReviewAlert(ctx, "alert-1", domain.AlertApproved, "analyst-1"); err != nil {
			t.Fatalf("ReviewAlert failed: %v", err)
		}

		got, _ := repo.GetAlert(ctx, "alert-1")
		if got.Status != domain.AlertApproved {
			t.Errorf("expected APPROVED, got %s", got.Status)
		}
		if got.ReviewedBy != "analyst-1" || got.ReviewedAt == nil {
			t.Errorf("reviewer not recorded: %+v", got)
		}
	})

	t.Run("ReviewIsSingleShot", func(t *testing.T) {
		err := repo.ReviewAlert(ctx, "alert-1", domain.AlertRejected, "analyst-2")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound for already-reviewed alert, got %v", err)
		}
	})

	t.Run("InvalidStatus", func(t *testing.T) {
		err := repo.ReviewAlert(ctx, "alert-1", domain.AlertPending, "analyst-1")
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestFraudReports(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	report := &domain.FraudReport{
		ID:            "report-1",
		UserID:        "user-1",
		TransactionID: "tx-1",
		Reason:        "unauthorized transfer",
	}
	if err := repo.SaveFraudReport(ctx, report); err != nil {
		t.Fatalf("SaveFraudReport failed: %v", err)
	}

	t.Run("RequiresIDs", func(t *testing.T) {
		err := repo.SaveFraudReport(ctx, &domain.FraudReport{ID: "report-2"})
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}
