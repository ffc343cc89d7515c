package detector

import (
	"context"
	"log/slog"
	"time"

	"github.com/reshadx/fraudguard/internal/domain"
)

const (
	unseenDeviceScore  = 30
	blacklistedIPScore = 80
	vpnScore           = 35

	deviceTTL = 30 * 24 * time.Hour
)

// Device checks the device fingerprint: unseen device, blacklisted IP, and
// VPN/proxy exit. It also maintains the per-user device signals the
// SIM-swap detector reads.
type Device struct {
	signals domain.SignalStore
	ipintel domain.IPIntelProvider
	timeout time.Duration
}

// NewDevice creates the device fingerprint analyzer.
func NewDevice(signals domain.SignalStore, ipintel domain.IPIntelProvider, timeout time.Duration) *Device {
	return &Device{signals: signals, ipintel: ipintel, timeout: timeout}
}

func (d *Device) Name() string { return "device_fingerprint" }

func (d *Device) Evaluate(ctx context.Context, input *domain.CheckInput) domain.Finding {
	finding := domain.Finding{Detector: d.Name()}

	if input.Device == nil || input.Device.DeviceID == "" {
		return finding
	}

	flag := d.assess(ctx, input)
	if flag != nil {
		finding.Score = flag.Score
		finding.Flags = []domain.FraudFlag{*flag}
	}

	return finding
}

// Commit records the device whether or not it was flagged (sliding window).
// Runs after the detector join: the SIM-swap detector reads the last-device
// key, so the refresh must not land while other detectors are still reading
// the pre-check state.
func (d *Device) Commit(ctx context.Context, input *domain.CheckInput) {
	if input.Device == nil || input.Device.DeviceID == "" {
		return
	}
	d.remember(ctx, input.UserID, input.Device.DeviceID)
}

func (d *Device) assess(ctx context.Context, input *domain.CheckInput) *domain.FraudFlag {
	seen, err := d.signals.Get(ctx, seenDeviceKey(input.UserID, input.Device.DeviceID))
	if err != nil {
		slog.Warn("device: seen-device read failed", "user_id", input.UserID, "error", err)
	}
	if seen == nil {
		return &domain.FraudFlag{
			Type:        domain.FlagSuspiciousDevice,
			Severity:    domain.SeverityMedium,
			Description: "device not previously seen for this user",
			Score:       unseenDeviceScore,
		}
	}

	ip := input.Device.IPAddress
	if ip == "" {
		return nil
	}

	callCtx, cancel := withTimeout(ctx, d.timeout)
	defer cancel()

	if blacklisted, err := d.ipintel.IsBlacklisted(callCtx, ip); err != nil {
		slog.Warn("device: ip blacklist lookup failed", "ip", ip, "error", err)
	} else if blacklisted {
		return &domain.FraudFlag{
			Type:        domain.FlagSuspiciousDevice,
			Severity:    domain.SeverityCritical,
			Description: "IP address is on a threat blocklist",
			Score:       blacklistedIPScore,
		}
	}

	if vpn, err := d.ipintel.IsVPN(callCtx, ip); err != nil {
		slog.Warn("device: vpn lookup failed", "ip", ip, "error", err)
	} else if vpn {
		return &domain.FraudFlag{
			Type:        domain.FlagSuspiciousDevice,
			Severity:    domain.SeverityMedium,
			Description: "IP address belongs to a VPN or proxy exit",
			Score:       vpnScore,
		}
	}

	return nil
}

func (d *Device) remember(ctx context.Context, userID, deviceID string) {
	if err := d.signals.Set(ctx, seenDeviceKey(userID, deviceID), []byte("1"), deviceTTL); err != nil {
		slog.Warn("device: seen-device write failed", "user_id", userID, "error", err)
	}
	if err := d.signals.Set(ctx, lastDeviceKey(userID), []byte(deviceID), deviceTTL); err != nil {
		slog.Warn("device: last-device write failed", "user_id", userID, "error", err)
	}
}
