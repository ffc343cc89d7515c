package domain

import (
	"context"
	"time"
)

// Repository is the relational store behind the engine: user profiles,
// transaction history, list membership, fraud signatures, and the audit
// trail of checks, alerts, and reports.
type Repository interface {
	// User profiles
	SaveUserProfile(ctx context.Context, profile *UserProfile) error
	GetUserProfile(ctx context.Context, userID string) (*UserProfile, error)

	// Transaction history
	SaveTransaction(ctx context.Context, tx *Transaction) error
	RecentTransactions(ctx context.Context, userID string, since time.Time) ([]*Transaction, error)
	CountTransactions(ctx context.Context, userID string, since time.Time) (int64, error)

	// Blacklist / whitelist. Value is a user ID or an IP address.
	AddListEntry(ctx context.Context, entry *ListEntry) error
	RemoveListEntry(ctx context.Context, kind, value string) error
	IsBlacklisted(ctx context.Context, value string) (bool, error)
	IsWhitelisted(ctx context.Context, value string) (bool, error)

	// Fraud signatures (pattern matcher extension point)
	SaveSignature(ctx context.Context, sig *Signature) error
	ListSignatures(ctx context.Context) ([]*Signature, error)

	// Audit trail
	SaveCheck(ctx context.Context, result *CheckResult, input *CheckInput) error
	GetCheck(ctx context.Context, checkID string) (*CheckResult, error)

	// Alerts
	SaveAlert(ctx context.Context, alert *Alert) error
	GetAlert(ctx context.Context, alertID string) (*Alert, error)
	ListAlerts(ctx context.Context, status AlertStatus, level RiskLevel, limit, offset int) ([]*Alert, error)
	ReviewAlert(ctx context.Context, alertID string, status AlertStatus, reviewer string) error

	// Fraud reports
	SaveFraudReport(ctx context.Context, report *FraudReport) error

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string

	// SQLite specific
	SQLitePath string

	// PostgreSQL specific
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
