// Package repository provides data persistence implementations.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/reshadx/fraudguard/internal/domain"
)

// Sentinels are shared with the domain package so callers can match on
// domain.ErrNotFound regardless of which layer produced the error.
var (
	ErrNotFound     = domain.ErrNotFound
	ErrInvalidInput = domain.ErrInvalidInput
)

// SQLRepository implements domain.Repository using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// New creates a new repository based on configuration.
func New(cfg domain.RepositoryConfig) (domain.Repository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:     db,
		driver: cfg.Driver,
	}

	// Run migrations
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// SaveUserProfile inserts or updates a user profile.
func (r *SQLRepository) SaveUserProfile(ctx context.Context, profile *domain.UserProfile) error {
	if profile == nil || profile.UserID == "" {
		return fmt.Errorf("%w: userID is required", ErrInvalidInput)
	}

	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	query := `
		INSERT INTO user_profiles (
			user_id, phone_number, phone_verified,
			password_changed_at, email_changed_at, last_login_at,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			phone_number = excluded.phone_number,
			phone_verified = excluded.phone_verified,
			password_changed_at = excluded.password_changed_at,
			email_changed_at = excluded.email_changed_at,
			last_login_at = excluded.last_login_at,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		profile.UserID, profile.PhoneNumber, boolToInt(profile.PhoneVerified),
		nullTime(profile.PasswordChangedAt), nullTime(profile.EmailChangedAt), nullTime(profile.LastLoginAt),
		profile.CreatedAt, profile.UpdatedAt,
	)
	return err
}

// GetUserProfile retrieves a user profile by ID.
func (r *SQLRepository) GetUserProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userID is required", ErrInvalidInput)
	}

	query := `
		SELECT user_id, phone_number, phone_verified,
			   password_changed_at, email_changed_at, last_login_at,
			   created_at, updated_at
		FROM user_profiles
		WHERE user_id = ?
	`

	var p domain.UserProfile
	var phone sql.NullString
	var verified int
	var pwChanged, emChanged, lastLogin sql.NullTime

	err := r.db.QueryRowContext(ctx, r.rebind(query), userID).Scan(
		&p.UserID, &phone, &verified,
		&pwChanged, &emChanged, &lastLogin,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	p.PhoneNumber = phone.String
	p.PhoneVerified = verified == 1
	p.PasswordChangedAt = timePtr(pwChanged)
	p.EmailChangedAt = timePtr(emChanged)
	p.LastLoginAt = timePtr(lastLogin)

	return &p, nil
}

// SaveTransaction stores a transaction.
func (r *SQLRepository) SaveTransaction(ctx context.Context, tx *domain.Transaction) error {
	if tx == nil || tx.UserID == "" {
		return fmt.Errorf("%w: userID is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO transactions (
			id, user_id, account_id, recipient_id,
			amount_minor, currency, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		tx.ID, tx.UserID, tx.AccountID, tx.RecipientID,
		tx.AmountMinor, tx.Currency, tx.CreatedAt,
	)
	return err
}

// RecentTransactions returns a user's transactions since the given time,
// newest first.
func (r *SQLRepository) RecentTransactions(ctx context.Context, userID string, since time.Time) ([]*domain.Transaction, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, user_id, account_id, recipient_id, amount_minor, currency, created_at
		FROM transactions
		WHERE user_id = ? AND created_at >= ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var accountID, recipientID sql.NullString

		if err := rows.Scan(&tx.ID, &tx.UserID, &accountID, &recipientID,
			&tx.AmountMinor, &tx.Currency, &tx.CreatedAt); err != nil {
			return nil, err
		}
		tx.AccountID = accountID.String
		tx.RecipientID = recipientID.String
		txs = append(txs, &tx)
	}

	return txs, rows.Err()
}

// CountTransactions counts a user's transactions since the given time.
func (r *SQLRepository) CountTransactions(ctx context.Context, userID string, since time.Time) (int64, error) {
	if userID == "" {
		return 0, fmt.Errorf("%w: userID is required", ErrInvalidInput)
	}

	query := `SELECT COUNT(*) FROM transactions WHERE user_id = ? AND created_at >= ?`

	var count int64
	err := r.db.QueryRowContext(ctx, r.rebind(query), userID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// AddListEntry adds a blacklist or whitelist entry.
func (r *SQLRepository) AddListEntry(ctx context.Context, entry *domain.ListEntry) error {
	if entry == nil || entry.Value == "" {
		return fmt.Errorf("%w: value is required", ErrInvalidInput)
	}
	if entry.Kind != domain.ListBlacklist && entry.Kind != domain.ListWhitelist {
		return fmt.Errorf("%w: unknown list kind %q", ErrInvalidInput, entry.Kind)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO list_entries (kind, value, reason, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (kind, value) DO UPDATE SET reason = excluded.reason
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		entry.Kind, entry.Value, entry.Reason, entry.CreatedAt)
	return err
}

// RemoveListEntry removes a list entry.
func (r *SQLRepository) RemoveListEntry(ctx context.Context, kind, value string) error {
	query := `DELETE FROM list_entries WHERE kind = ? AND value = ?`

	result, err := r.db.ExecContext(ctx, r.rebind(query), kind, value)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// IsBlacklisted reports whether a user ID or IP is blacklisted.
func (r *SQLRepository) IsBlacklisted(ctx context.Context, value string) (bool, error) {
	return r.onList(ctx, domain.ListBlacklist, value)
}

// IsWhitelisted reports whether a user ID is whitelisted.
func (r *SQLRepository) IsWhitelisted(ctx context.Context, value string) (bool, error) {
	return r.onList(ctx, domain.ListWhitelist, value)
}

func (r *SQLRepository) onList(ctx context.Context, kind, value string) (bool, error) {
	if value == "" {
		return false, nil
	}

	query := `SELECT COUNT(*) FROM list_entries WHERE kind = ? AND value = ?`

	var count int64
	if err := r.db.QueryRowContext(ctx, r.rebind(query), kind, value).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// SaveSignature inserts or updates a fraud signature.
func (r *SQLRepository) SaveSignature(ctx context.Context, sig *domain.Signature) error {
	if sig == nil || sig.ID == "" || sig.Expression == "" {
		return fmt.Errorf("%w: id and expression are required", ErrInvalidInput)
	}

	now := time.Now().UTC()
	if sig.CreatedAt.IsZero() {
		sig.CreatedAt = now
	}
	sig.UpdatedAt = now

	query := `
		INSERT INTO fraud_signatures (
			id, name, description, expression, severity, score, enabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			expression = excluded.expression,
			severity = excluded.severity,
			score = excluded.score,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		sig.ID, sig.Name, sig.Description, sig.Expression,
		string(sig.Severity), sig.Score, boolToInt(sig.Enabled),
		sig.CreatedAt, sig.UpdatedAt,
	)
	return err
}

// ListSignatures returns all registered fraud signatures, disabled ones
// included; the matcher skips disabled signatures when loading.
func (r *SQLRepository) ListSignatures(ctx context.Context) ([]*domain.Signature, error) {
	query := `
		SELECT id, name, description, expression, severity, score, enabled, created_at, updated_at
		FROM fraud_signatures
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sigs []*domain.Signature
	for rows.Next() {
		var s domain.Signature
		var desc sql.NullString
		var severity string
		var enabled int

		if err := rows.Scan(&s.ID, &s.Name, &desc, &s.Expression,
			&severity, &s.Score, &enabled, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.Description = desc.String
		s.Severity = domain.Severity(severity)
		s.Enabled = enabled == 1
		sigs = append(sigs, &s)
	}

	return sigs, rows.Err()
}

// SaveCheck persists a fraud check result as an audit row.
func (r *SQLRepository) SaveCheck(ctx context.Context, result *domain.CheckResult, input *domain.CheckInput) error {
	if result == nil || result.ID == "" {
		return fmt.Errorf("%w: check result is required", ErrInvalidInput)
	}

	flags, err := json.Marshal(result.Flags)
	if err != nil {
		return fmt.Errorf("failed to encode flags: %w", err)
	}
	recs, _ := json.Marshal(result.Recommendations)
	in, _ := json.Marshal(input)

	query := `
		INSERT INTO fraud_checks (
			id, user_id, risk_score, risk_level, decision,
			sim_swap_detected, sim_swap_risk, flags, recommendations,
			input, calculated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, r.rebind(query),
		result.ID, result.UserID, result.RiskScore,
		string(result.RiskLevel), string(result.Decision),
		boolToInt(result.SimSwapDetected), result.SimSwapRisk,
		string(flags), string(recs), string(in), result.CalculatedAt,
	)
	return err
}

// GetCheck retrieves a persisted fraud check by ID.
func (r *SQLRepository) GetCheck(ctx context.Context, checkID string) (*domain.CheckResult, error) {
	query := `
		SELECT id, user_id, risk_score, risk_level, decision,
			   sim_swap_detected, sim_swap_risk, flags, recommendations, calculated_at
		FROM fraud_checks
		WHERE id = ?
	`

	var res domain.CheckResult
	var level, decision, flags, recs string
	var simSwap int

	err := r.db.QueryRowContext(ctx, r.rebind(query), checkID).Scan(
		&res.ID, &res.UserID, &res.RiskScore, &level, &decision,
		&simSwap, &res.SimSwapRisk, &flags, &recs, &res.CalculatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	res.RiskLevel = domain.RiskLevel(level)
	res.Decision = domain.Decision(decision)
	res.SimSwapDetected = simSwap == 1
	res.FraudProbability = float64(res.RiskScore) / 100.0
	if err := json.Unmarshal([]byte(flags), &res.Flags); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}
	if err := json.Unmarshal([]byte(recs), &res.Recommendations); err != nil {
		return nil, fmt.Errorf("failed to parse recommendations: %w", err)
	}

	return &res, nil
}

// SaveAlert stores a fraud alert.
func (r *SQLRepository) SaveAlert(ctx context.Context, alert *domain.Alert) error {
	if alert == nil || alert.ID == "" {
		return fmt.Errorf("%w: alert is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO fraud_alerts (
			id, check_id, user_id, risk_level, risk_score,
			status, reason, created_at, reviewed_at, reviewed_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		alert.ID, alert.CheckID, alert.UserID,
		string(alert.RiskLevel), alert.RiskScore,
		string(alert.Status), alert.Reason,
		alert.CreatedAt, nullTime(alert.ReviewedAt), alert.ReviewedBy,
	)
	return err
}

// GetAlert retrieves an alert by ID.
func (r *SQLRepository) GetAlert(ctx context.Context, alertID string) (*domain.Alert, error) {
	query := `
		SELECT id, check_id, user_id, risk_level, risk_score,
			   status, reason, created_at, reviewed_at, reviewed_by
		FROM fraud_alerts
		WHERE id = ?
	`

	a, err := r.scanAlert(r.db.QueryRowContext(ctx, r.rebind(query), alertID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

// ListAlerts returns alerts filtered by status and risk level, newest first.
// Empty filters match everything.
func (r *SQLRepository) ListAlerts(ctx context.Context, status domain.AlertStatus, level domain.RiskLevel, limit, offset int) ([]*domain.Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, check_id, user_id, risk_level, risk_score,
			   status, reason, created_at, reviewed_at, reviewed_by
		FROM fraud_alerts
		WHERE (? = '' OR status = ?)
		  AND (? = '' OR risk_level = ?)
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query),
		string(status), string(status), string(level), string(level), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*domain.Alert
	for rows.Next() {
		a, err := r.scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

// ReviewAlert transitions an alert out of PENDING. Owned by the reviewing
// workflow, not the engine.
func (r *SQLRepository) ReviewAlert(ctx context.Context, alertID string, status domain.AlertStatus, reviewer string) error {
	switch status {
	case domain.AlertApproved, domain.AlertRejected, domain.AlertEscalated:
	default:
		return fmt.Errorf("%w: invalid review status %q", ErrInvalidInput, status)
	}

	query := `
		UPDATE fraud_alerts
		SET status = ?, reviewed_at = ?, reviewed_by = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, r.rebind(query),
		string(status), time.Now().UTC(), reviewer, alertID, string(domain.AlertPending))
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveFraudReport stores a user-filed fraud report.
func (r *SQLRepository) SaveFraudReport(ctx context.Context, report *domain.FraudReport) error {
	if report == nil || report.UserID == "" || report.TransactionID == "" {
		return fmt.Errorf("%w: userID and transactionID are required", ErrInvalidInput)
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO fraud_reports (id, user_id, transaction_id, reason, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		report.ID, report.UserID, report.TransactionID,
		report.Reason, report.Details, report.CreatedAt)
	return err
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLRepository) scanAlert(row rowScanner) (*domain.Alert, error) {
	var a domain.Alert
	var level, status string
	var reason, reviewedBy sql.NullString
	var reviewedAt sql.NullTime

	if err := row.Scan(&a.ID, &a.CheckID, &a.UserID, &level, &a.RiskScore,
		&status, &reason, &a.CreatedAt, &reviewedAt, &reviewedBy); err != nil {
		return nil, err
	}

	a.RiskLevel = domain.RiskLevel(level)
	a.Status = domain.AlertStatus(status)
	a.Reason = reason.String
	a.ReviewedAt = timePtr(reviewedAt)
	a.ReviewedBy = reviewedBy.String
	return &a, nil
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
