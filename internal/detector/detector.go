// Package detector contains the independent fraud detectors. Each detector
// is side-effect-free apart from its own signal-store keys, never returns an
// error, and degrades to a zero Finding when a collaborator is unavailable.
package detector

import (
	"context"
	"time"

	"github.com/reshadx/fraudguard/internal/domain"
)

// Detector evaluates one fraud heuristic against a check input.
type Detector interface {
	Name() string
	Evaluate(ctx context.Context, input *domain.CheckInput) domain.Finding
}

// Signal-store key builders. Each detector owns its keys; concurrent checks
// for the same user race last-write-wins, which only ever weakens detection
// for that one call.
func lastDeviceKey(userID string) string {
	return "device:last:" + userID
}

func seenDeviceKey(userID, deviceID string) string {
	return "device:seen:" + userID + ":" + deviceID
}

func lastLocationKey(userID string) string {
	return "location:last:" + userID
}

// OTPFailureKey is the rolling counter the auth service increments on every
// failed OTP attempt. Exported so the auth integration and tests share it.
func OTPFailureKey(userID string) string {
	return "otp:failures:" + userID
}

func phoneVerifiedKey(userID string) string {
	return "phone:verified:" + userID
}

// withTimeout bounds an external provider call.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 2 * time.Second
	}
	return context.WithTimeout(ctx, d)
}
