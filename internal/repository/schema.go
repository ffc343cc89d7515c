package repository

// Schema definitions for the FraudGuard database.
// Compatible with both SQLite and PostgreSQL.

const schemaUserProfiles = `
CREATE TABLE IF NOT EXISTS user_profiles (
    user_id TEXT PRIMARY KEY,
    phone_number TEXT,
    phone_verified INTEGER NOT NULL DEFAULT 0,
    password_changed_at TIMESTAMP,
    email_changed_at TIMESTAMP,
    last_login_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

const schemaTransactions = `
CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    account_id TEXT,
    recipient_id TEXT,
    amount_minor INTEGER NOT NULL,
    currency TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id, created_at);
`

const schemaListEntries = `
CREATE TABLE IF NOT EXISTS list_entries (
    kind TEXT NOT NULL,
    value TEXT NOT NULL,
    reason TEXT,
    created_at TIMESTAMP NOT NULL,
    PRIMARY KEY (kind, value)
);
`

const schemaSignatures = `
CREATE TABLE IF NOT EXISTS fraud_signatures (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    expression TEXT NOT NULL,
    severity TEXT NOT NULL,
    score INTEGER NOT NULL,
    enabled INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

const schemaChecks = `
CREATE TABLE IF NOT EXISTS fraud_checks (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    risk_score INTEGER NOT NULL,
    risk_level TEXT NOT NULL,
    decision TEXT NOT NULL,
    sim_swap_detected INTEGER NOT NULL DEFAULT 0,
    sim_swap_risk INTEGER NOT NULL DEFAULT 0,
    flags TEXT NOT NULL,
    recommendations TEXT NOT NULL,
    input TEXT NOT NULL,
    calculated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fraud_checks_user ON fraud_checks(user_id, calculated_at);
CREATE INDEX IF NOT EXISTS idx_fraud_checks_level ON fraud_checks(risk_level);
`

const schemaAlerts = `
CREATE TABLE IF NOT EXISTS fraud_alerts (
    id TEXT PRIMARY KEY,
    check_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    risk_level TEXT NOT NULL,
    risk_score INTEGER NOT NULL,
    status TEXT NOT NULL,
    reason TEXT,
    created_at TIMESTAMP NOT NULL,
    reviewed_at TIMESTAMP,
    reviewed_by TEXT
);

CREATE INDEX IF NOT EXISTS idx_fraud_alerts_status ON fraud_alerts(status, created_at);
CREATE INDEX IF NOT EXISTS idx_fraud_alerts_user ON fraud_alerts(user_id);
`

const schemaFraudReports = `
CREATE TABLE IF NOT EXISTS fraud_reports (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    transaction_id TEXT NOT NULL,
    reason TEXT NOT NULL,
    details TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fraud_reports_user ON fraud_reports(user_id);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaUserProfiles,
		schemaTransactions,
		schemaListEntries,
		schemaSignatures,
		schemaChecks,
		schemaAlerts,
		schemaFraudReports,
	}
}
