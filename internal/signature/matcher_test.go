package signature

import (
	"context"
	"testing"

	"github.com/reshadx/fraudguard/internal/domain"
)

func TestMatcherCreation(t *testing.T) {
	m, err := NewMatcher()
	if err != nil {
		t.Fatalf("failed to create matcher: %v", err)
	}
	defer m.Close()

	if m.Count() != 0 {
		t.Errorf("expected 0 signatures, got %d", m.Count())
	}
}

func TestLoadSignature(t *testing.T) {
	m, _ := NewMatcher()
	defer m.Close()

	sig := &domain.Signature{
		ID:         "sig-001",
		Name:       "Large transfer to flagged recipient",
		Expression: `amount > 1000000 && recipient_id == "mule-account"`,
		Severity:   domain.SeverityHigh,
		Score:      60,
		Enabled:    true,
	}

	if err := m.Load(sig); err != nil {
		t.Fatalf("failed to load signature: %v", err)
	}
	if m.Count() != 1 {
		t.Errorf("expected 1 signature, got %d", m.Count())
	}
}

func TestLoadInvalidSignature(t *testing.T) {
	m, _ := NewMatcher()
	defer m.Close()

	t.Run("BadSyntax", func(t *testing.T) {
		err := m.Load(&domain.Signature{
			ID:         "bad-syntax",
			Expression: "this is not CEL !!!",
		})
		if err == nil {
			t.Error("expected error for invalid CEL")
		}
	})

	t.Run("NonBoolResult", func(t *testing.T) {
		err := m.Load(&domain.Signature{
			ID:         "non-bool",
			Expression: "amount + 1",
		})
		if err == nil {
			t.Error("expected error for non-bool expression")
		}
	})
}

func TestMatch(t *testing.T) {
	m, _ := NewMatcher()
	defer m.Close()

	_ = m.Load(&domain.Signature{
		ID:         "sig-amount",
		Name:       "Suspicious amount",
		Expression: "amount >= 500000",
		Severity:   domain.SeverityHigh,
		Score:      55,
		Enabled:    true,
	})
	_ = m.Load(&domain.Signature{
		ID:         "sig-device",
		Name:       "Known bad device",
		Expression: `device_id == "emulator-1"`,
		Severity:   domain.SeverityCritical,
		Score:      90,
		Enabled:    true,
	})

	t.Run("SingleMatch", func(t *testing.T) {
		flags := m.Match(context.Background(), &domain.CheckInput{
			UserID:      "user-1",
			AmountMinor: 600000,
		})

		if len(flags) != 1 {
			t.Fatalf("expected 1 flag, got %d", len(flags))
		}
		if flags[0].Type != domain.FlagKnownFraudPattern {
			t.Errorf("expected KNOWN_FRAUD_PATTERN, got %s", flags[0].Type)
		}
		if flags[0].Score != 55 {
			t.Errorf("expected score 55, got %d", flags[0].Score)
		}
	})

	t.Run("MultipleMatches", func(t *testing.T) {
		flags := m.Match(context.Background(), &domain.CheckInput{
			UserID:      "user-1",
			AmountMinor: 600000,
			Device:      &domain.DeviceFingerprint{DeviceID: "emulator-1"},
		})
		if len(flags) != 2 {
			t.Errorf("expected 2 flags, got %d", len(flags))
		}
	})

	t.Run("NoMatch", func(t *testing.T) {
		flags := m.Match(context.Background(), &domain.CheckInput{
			UserID:      "user-1",
			AmountMinor: 100,
		})
		if len(flags) != 0 {
			t.Errorf("expected no flags, got %+v", flags)
		}
	})

	t.Run("NilDeviceUsesEmptyStrings", func(t *testing.T) {
		// Must not error when device fields are absent.
		flags := m.Match(context.Background(), &domain.CheckInput{UserID: "user-1"})
		if len(flags) != 0 {
			t.Errorf("expected no flags, got %+v", flags)
		}
	})
}

func TestReload(t *testing.T) {
	m, _ := NewMatcher()
	defer m.Close()

	_ = m.Load(&domain.Signature{ID: "old", Expression: "amount > 0", Enabled: true})

	err := m.Reload([]*domain.Signature{
		{ID: "new-1", Expression: "amount > 100", Enabled: true},
		{ID: "disabled", Expression: "amount > 200", Enabled: false},
	})
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	if m.Count() != 1 {
		t.Errorf("expected 1 signature after reload (disabled skipped), got %d", m.Count())
	}
}

func TestValidateDoesNotLoad(t *testing.T) {
	m, _ := NewMatcher()
	defer m.Close()

	err := m.Validate(&domain.Signature{ID: "v", Expression: "amount > 10"})
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if m.Count() != 0 {
		t.Errorf("validate must not load, got %d signatures", m.Count())
	}
}
