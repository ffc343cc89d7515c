// Package domain defines the core types and interfaces for FraudGuard.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrInvalidInput is returned when a check input fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
)

// CheckInput is the payload for a fraud check. UserID is the only required
// field; every optional field enables a subset of detectors.
type CheckInput struct {
	UserID        string `json:"userId"`
	TransactionID string `json:"transactionId,omitempty"`
	AccountID     string `json:"accountId,omitempty"`

	// AmountMinor is the transaction amount in minor currency units.
	// Zero or negative means no amount was supplied.
	AmountMinor int64 `json:"amount,omitempty"`

	RecipientID string `json:"recipientId,omitempty"`

	Device   *DeviceFingerprint `json:"deviceFingerprint,omitempty"`
	Location *LocationData      `json:"location,omitempty"`
}

// Validate checks the input invariants.
func (in *CheckInput) Validate() error {
	if in == nil || in.UserID == "" {
		return ErrInvalidInput
	}
	if in.Location != nil && in.Location.Timestamp.IsZero() {
		return ErrInvalidInput
	}
	return nil
}

// DeviceFingerprint identifies the device a check originated from.
// Immutable value object for the duration of a check.
type DeviceFingerprint struct {
	DeviceID         string `json:"deviceId"`
	IPAddress        string `json:"ipAddress"`
	UserAgent        string `json:"userAgent"`
	ScreenResolution string `json:"screenResolution,omitempty"`
	Timezone         string `json:"timezone,omitempty"`
	Language         string `json:"language,omitempty"`
}

// LocationData is a caller-supplied location sample. Timestamp is the capture
// time on the device, not the receipt time, so that two samples can be
// compared for travel speed.
type LocationData struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Transaction is a historical transaction used by the pattern and velocity
// detectors.
type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	AccountID   string    `json:"accountId,omitempty"`
	RecipientID string    `json:"recipientId,omitempty"`
	AmountMinor int64     `json:"amount"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"createdAt"`
}
