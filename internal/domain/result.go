package domain

import (
	"time"
)

// Severity classifies how serious an individual fraud flag is.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// RiskLevel is the coarse bucket derived from the aggregate risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// RiskLevelForScore maps a clamped 0-100 score to its risk level.
func RiskLevelForScore(score int) RiskLevel {
	switch {
	case score >= 70:
		return RiskCritical
	case score >= 50:
		return RiskHigh
	case score >= 30:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Decision is the categorical outcome of a fraud check.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReview  Decision = "REVIEW"
	DecisionDecline Decision = "DECLINE"
	DecisionBlock   Decision = "BLOCK"
)

// Known flag types. The set is open: detectors and registered signatures may
// emit types not listed here.
const (
	FlagSimSwap            = "SIM_SWAP"
	FlagUnusualTransaction = "UNUSUAL_TRANSACTION"
	FlagSuspiciousDevice   = "SUSPICIOUS_DEVICE"
	FlagImpossibleTravel   = "IMPOSSIBLE_TRAVEL"
	FlagVelocityExceeded   = "VELOCITY_EXCEEDED"
	FlagAccountTakeover    = "ACCOUNT_TAKEOVER"
	FlagKnownFraudPattern  = "KNOWN_FRAUD_PATTERN"
	FlagBlacklisted        = "BLACKLISTED"
)

// FraudFlag is a single detector finding with its score contribution.
type FraudFlag struct {
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Score       int      `json:"score"` // 0-100 contribution
}

// Finding is the output of a single detector. Score is the detector's total
// contribution to the aggregate; it can differ from the sum of flag scores
// because some signals (the SIM-swap 8-30 day window) contribute to the score
// without raising a flag.
type Finding struct {
	Detector string      `json:"detector"`
	Score    int         `json:"score"`
	Flags    []FraudFlag `json:"flags,omitempty"`

	SimSwapDetected bool `json:"simSwapDetected,omitempty"`
	SimSwapRisk     int  `json:"simSwapRisk,omitempty"`

	Blacklisted bool `json:"blacklisted,omitempty"`
	Whitelisted bool `json:"whitelisted,omitempty"`
}

// CheckResult is the immutable outcome of one fraud check. It is a pure
// function of the input and the signal-store snapshot at check time.
type CheckResult struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`

	RiskScore        int       `json:"riskScore"` // 0-100
	RiskLevel        RiskLevel `json:"riskLevel"`
	FraudProbability float64   `json:"fraudProbability"`
	Decision         Decision  `json:"decision"`

	Flags []FraudFlag `json:"flags"`

	SimSwapDetected bool `json:"simSwapDetected"`
	SimSwapRisk     int  `json:"simSwapRisk"`

	Recommendations []string `json:"recommendations"`

	CalculatedAt time.Time `json:"calculatedAt"`
}
