package detector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/reshadx/fraudguard/internal/domain"
)

// SIM-swap scoring ladder. First matching rule wins.
const (
	simSwapDeviceChangeRecent = 80 // new device, session < 24h old
	simSwapDeviceChangeStale  = 50 // new device, session < 72h old
	simSwapOTPFailures        = 60 // >= 3 failed OTP attempts in window
	simSwapVerificationLost   = 70 // phone-verified flipped true -> false
	simSwapConfirmedFresh     = 90 // operator-confirmed swap <= 1 day
	simSwapConfirmedRecent    = 60 // operator-confirmed swap <= 7 days
	simSwapConfirmedOld       = 20 // operator-confirmed swap <= 30 days (soft)

	otpFailureThreshold = 3

	// snapshotTTL keeps the phone-verified snapshot long enough to notice a
	// flip between checks.
	snapshotTTL = 30 * 24 * time.Hour
)

// SimSwap flags account-takeover risk from a SIM swap, the dominant
// mobile-money fraud vector.
type SimSwap struct {
	repo    domain.Repository
	signals domain.SignalStore
	telecom domain.TelecomProvider
	timeout time.Duration
}

// NewSimSwap creates the SIM-swap detector.
func NewSimSwap(repo domain.Repository, signals domain.SignalStore, telecom domain.TelecomProvider, timeout time.Duration) *SimSwap {
	return &SimSwap{repo: repo, signals: signals, telecom: telecom, timeout: timeout}
}

func (d *SimSwap) Name() string { return "sim_swap" }

// Evaluate walks the detection ladder. The 8-30 day operator-confirmed
// branch is deliberately asymmetric: it contributes score without setting
// SimSwapDetected, so it raises aggregate risk without hard-flagging the
// check.
func (d *SimSwap) Evaluate(ctx context.Context, input *domain.CheckInput) domain.Finding {
	finding := domain.Finding{Detector: d.Name()}

	profile, err := d.repo.GetUserProfile(ctx, input.UserID)
	if err != nil || profile == nil || profile.PhoneNumber == "" {
		if err != nil && err != domain.ErrNotFound {
			slog.Warn("sim-swap: profile lookup failed", "user_id", input.UserID, "error", err)
		}
		return finding
	}

	detected, risk := d.assess(ctx, input, profile)

	finding.SimSwapDetected = detected
	finding.SimSwapRisk = risk
	finding.Score = risk
	if detected {
		finding.Flags = []domain.FraudFlag{{
			Type:        domain.FlagSimSwap,
			Severity:    domain.SeverityCritical,
			Description: "possible SIM swap on the account phone number",
			Score:       risk,
		}}
	}

	// Refresh the phone-verified snapshot for the next check.
	d.storeVerifiedSnapshot(ctx, input.UserID, profile.PhoneVerified)

	return finding
}

func (d *SimSwap) assess(ctx context.Context, input *domain.CheckInput, profile *domain.UserProfile) (bool, int) {
	// Rule 2: device changed shortly after the current session started.
	if input.Device != nil && input.Device.DeviceID != "" {
		last, err := d.signals.Get(ctx, lastDeviceKey(input.UserID))
		if err != nil {
			slog.Warn("sim-swap: last-device read failed", "user_id", input.UserID, "error", err)
		}
		if last != nil && string(last) != input.Device.DeviceID && profile.LastLoginAt != nil {
			hours := time.Since(*profile.LastLoginAt).Hours()
			if hours < 24 {
				return true, simSwapDeviceChangeRecent
			}
			if hours < 72 {
				return true, simSwapDeviceChangeStale
			}
		}
	}

	// Rule 3: repeated OTP failures.
	failures, err := d.signals.CounterValue(ctx, OTPFailureKey(input.UserID))
	if err != nil {
		slog.Warn("sim-swap: otp counter read failed", "user_id", input.UserID, "error", err)
	}
	if failures >= otpFailureThreshold {
		return true, simSwapOTPFailures
	}

	// Rule 4: phone verification was lost since the previous snapshot.
	if snapshot, err := d.signals.Get(ctx, phoneVerifiedKey(input.UserID)); err != nil {
		slog.Warn("sim-swap: snapshot read failed", "user_id", input.UserID, "error", err)
	} else if string(snapshot) == "true" && !profile.PhoneVerified {
		return true, simSwapVerificationLost
	}

	// Rule 5: operator-confirmed swap.
	callCtx, cancel := withTimeout(ctx, d.timeout)
	defer cancel()

	status, err := d.telecom.CheckSimSwap(callCtx, profile.PhoneNumber)
	if err != nil {
		slog.Warn("sim-swap: telecom lookup failed", "user_id", input.UserID, "error", err)
		return false, 0
	}
	if status != nil && status.Swapped {
		switch {
		case status.DaysSinceSwap <= 1:
			return true, simSwapConfirmedFresh
		case status.DaysSinceSwap <= 7:
			return true, simSwapConfirmedRecent
		case status.DaysSinceSwap <= 30:
			// Soft signal: score without the hard flag.
			return false, simSwapConfirmedOld
		}
	}

	return false, 0
}

func (d *SimSwap) storeVerifiedSnapshot(ctx context.Context, userID string, verified bool) {
	if err := d.signals.Set(ctx, phoneVerifiedKey(userID), []byte(fmt.Sprintf("%t", verified)), snapshotTTL); err != nil {
		slog.Warn("sim-swap: snapshot write failed", "user_id", userID, "error", err)
	}
}
