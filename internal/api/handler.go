package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/reshadx/fraudguard/internal/detector"
	"github.com/reshadx/fraudguard/internal/domain"
	"github.com/reshadx/fraudguard/internal/engine"
	"github.com/reshadx/fraudguard/internal/signature"
)

// otpFailureWindow bounds how long a failed OTP attempt counts against the
// SIM-swap detector.
const otpFailureWindow = 15 * time.Minute

// Handler holds dependencies for API handlers.
type Handler struct {
	repo     domain.Repository
	signals  domain.SignalStore
	bus      domain.EventBus
	engine   *engine.Engine
	simSwap  engine.Detector
	device   engine.Detector
	velocity engine.Detector
	matcher  *signature.Matcher
	version  string
}

// NewHandler creates a new API handler.
func NewHandler(repo domain.Repository, signals domain.SignalStore, bus domain.EventBus, eng *engine.Engine, simSwap, device, velocity engine.Detector, matcher *signature.Matcher, version string) *Handler {
	return &Handler{
		repo:     repo,
		signals:  signals,
		bus:      bus,
		engine:   eng,
		simSwap:  simSwap,
		device:   device,
		velocity: velocity,
		matcher:  matcher,
		version:  version,
	}
}

// Assess handles POST /risk/assess requests.
func (h *Handler) Assess(w http.ResponseWriter, r *http.Request) {
	var input domain.CheckInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	result, err := h.engine.CheckFraud(r.Context(), &input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "userId is required; location requires a timestamp",
			})
			return
		}
		slog.Error("fraud check failed", "user_id", input.UserID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "fraud check failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"assessment": result,
	})
}

// SimSwapCheckRequest is the request body for POST /risk/sim-swap/check.
type SimSwapCheckRequest struct {
	UserID string                    `json:"userId"`
	Device *domain.DeviceFingerprint `json:"deviceFingerprint,omitempty"`
}

// SimSwapCheck handles POST /risk/sim-swap/check. Runs only the SIM-swap
// detector, for callers that gate a single sensitive action.
func (h *Handler) SimSwapCheck(w http.ResponseWriter, r *http.Request) {
	var req SimSwapCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}
	if req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "userId is required",
		})
		return
	}

	finding := h.simSwap.Evaluate(r.Context(), &domain.CheckInput{
		UserID: req.UserID,
		Device: req.Device,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"userId":          req.UserID,
		"simSwapDetected": finding.SimSwapDetected,
		"riskScore":       finding.SimSwapRisk,
	})
}

// DeviceTrustScoreRequest is the request body for POST /risk/device/trust-score.
type DeviceTrustScoreRequest struct {
	UserID string                    `json:"userId"`
	Device *domain.DeviceFingerprint `json:"deviceFingerprint"`
}

// DeviceTrustScore runs only the device detector and inverts its risk into a
// trust score. Advisory: it never records the device as seen.
func (h *Handler) DeviceTrustScore(w http.ResponseWriter, r *http.Request) {
	var req DeviceTrustScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}
	if req.UserID == "" || req.Device == nil || req.Device.DeviceID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "userId and deviceFingerprint.deviceId are required",
		})
		return
	}

	finding := h.device.Evaluate(r.Context(), &domain.CheckInput{
		UserID: req.UserID,
		Device: req.Device,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"userId":     req.UserID,
		"deviceId":   req.Device.DeviceID,
		"trustScore": 100 - finding.Score,
		"riskScore":  finding.Score,
		"flags":      finding.Flags,
	})
}

// VelocityChecks handles GET /risk/velocity-checks?userId=. Reports the
// trailing-hour transaction count alongside the velocity detector's verdict.
func (h *Handler) VelocityChecks(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "userId query parameter is required",
		})
		return
	}

	count, err := h.repo.CountTransactions(r.Context(), userID, time.Now().Add(-time.Hour))
	if err != nil {
		slog.Error("failed to count transactions", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to run velocity check",
		})
		return
	}

	finding := h.velocity.Evaluate(r.Context(), &domain.CheckInput{UserID: userID})

	writeJSON(w, http.StatusOK, map[string]any{
		"userId":           userID,
		"windowMinutes":    60,
		"transactionCount": count,
		"riskScore":        finding.Score,
		"flags":            finding.Flags,
	})
}

// GetCheck retrieves a persisted check result by ID.
func (h *Handler) GetCheck(w http.ResponseWriter, r *http.Request) {
	checkID := chi.URLParam(r, "id")

	result, err := h.repo.GetCheck(r.Context(), checkID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "check not found",
			})
			return
		}
		slog.Error("failed to get check", "id", checkID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to load check",
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ListAlerts handles GET /risk/alerts with optional status, riskLevel, limit,
// and offset query parameters.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 50
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	offset := 0
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	alerts, err := h.repo.ListAlerts(r.Context(),
		domain.AlertStatus(q.Get("status")),
		domain.RiskLevel(q.Get("riskLevel")),
		limit, offset,
	)
	if err != nil {
		slog.Error("failed to list alerts", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to list alerts",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// ReviewAlertRequest is the request body for POST /risk/alerts/{id}/review.
type ReviewAlertRequest struct {
	Status   domain.AlertStatus `json:"status"`
	Reviewer string             `json:"reviewer"`
}

// ReviewAlert transitions a pending alert to a reviewed state.
func (h *Handler) ReviewAlert(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "id")

	var req ReviewAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	switch req.Status {
	case domain.AlertApproved, domain.AlertRejected, domain.AlertEscalated:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "status must be APPROVED, REJECTED, or ESCALATED",
		})
		return
	}
	if req.Reviewer == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "reviewer is required",
		})
		return
	}

	if err := h.repo.ReviewAlert(r.Context(), alertID, req.Status, req.Reviewer); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "no pending alert with that id",
			})
			return
		}
		slog.Error("failed to review alert", "id", alertID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to review alert",
		})
		return
	}

	alert, err := h.repo.GetAlert(r.Context(), alertID)
	if err != nil {
		slog.Error("failed to load reviewed alert", "id", alertID, "error", err)
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "alert reviewed",
		})
		return
	}

	slog.Info("alert reviewed", "alert_id", alertID, "status", req.Status, "reviewer", req.Reviewer)
	writeJSON(w, http.StatusOK, alert)
}

// FraudReportRequest is the request body for POST /risk/fraud/report.
type FraudReportRequest struct {
	UserID        string `json:"userId"`
	TransactionID string `json:"transactionId"`
	Reason        string `json:"reason"`
	Details       string `json:"details,omitempty"`
}

// ReportFraud files a user fraud report.
func (h *Handler) ReportFraud(w http.ResponseWriter, r *http.Request) {
	var req FraudReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}
	if req.UserID == "" || req.TransactionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "userId and transactionId are required",
		})
		return
	}

	report := &domain.FraudReport{
		ID:            uuid.New().String(),
		UserID:        req.UserID,
		TransactionID: req.TransactionID,
		Reason:        req.Reason,
		Details:       req.Details,
		CreatedAt:     time.Now().UTC(),
	}

	if err := h.repo.SaveFraudReport(r.Context(), report); err != nil {
		slog.Error("failed to save fraud report", "user_id", req.UserID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to save fraud report",
		})
		return
	}

	slog.Info("fraud report filed",
		"report_id", report.ID,
		"user_id", report.UserID,
		"transaction_id", report.TransactionID,
	)
	writeJSON(w, http.StatusCreated, report)
}

// ListSignatures returns all registered fraud signatures.
func (h *Handler) ListSignatures(w http.ResponseWriter, r *http.Request) {
	sigs, err := h.repo.ListSignatures(r.Context())
	if err != nil {
		slog.Error("failed to list signatures", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to list signatures",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"signatures": sigs,
		"count":      len(sigs),
		"loaded":     h.matcher.Count(),
	})
}

// CreateSignature registers a fraud signature and loads it into the matcher.
func (h *Handler) CreateSignature(w http.ResponseWriter, r *http.Request) {
	var sig domain.Signature
	if err := json.NewDecoder(r.Body).Decode(&sig); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}
	if sig.ID == "" || sig.Name == "" || sig.Expression == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "id, name, and expression are required",
		})
		return
	}
	if sig.Score < 0 || sig.Score > 100 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "score must be between 0 and 100",
		})
		return
	}

	if err := h.matcher.Validate(&sig); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid CEL expression: " + err.Error(),
		})
		return
	}

	now := time.Now().UTC()
	if sig.CreatedAt.IsZero() {
		sig.CreatedAt = now
	}
	sig.UpdatedAt = now

	if err := h.repo.SaveSignature(r.Context(), &sig); err != nil {
		slog.Error("failed to save signature", "id", sig.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to save signature",
		})
		return
	}

	if sig.Enabled {
		if err := h.matcher.Load(&sig); err != nil {
			slog.Error("failed to load signature", "id", sig.ID, "error", err)
		}
	}

	slog.Info("signature created", "id", sig.ID, "name", sig.Name)
	writeJSON(w, http.StatusCreated, &sig)
}

// ReloadSignatures reloads all signatures from the database into the matcher.
func (h *Handler) ReloadSignatures(w http.ResponseWriter, r *http.Request) {
	sigs, err := h.repo.ListSignatures(r.Context())
	if err != nil {
		slog.Error("failed to list signatures", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to load signatures from database",
		})
		return
	}

	if err := h.matcher.Reload(sigs); err != nil {
		slog.Error("failed to reload signatures", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to reload signatures: " + err.Error(),
		})
		return
	}

	slog.Info("signatures reloaded", "count", h.matcher.Count())
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "signatures reloaded successfully",
		"count":   h.matcher.Count(),
	})
}

// ListEntryRequest is the request body for POST /risk/lists/{kind}.
type ListEntryRequest struct {
	Value  string `json:"value"`
	Reason string `json:"reason,omitempty"`
}

// AddListEntry adds a user ID or IP address to the blacklist or whitelist.
func (h *Handler) AddListEntry(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if kind != domain.ListBlacklist && kind != domain.ListWhitelist {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "list kind must be blacklist or whitelist",
		})
		return
	}

	var req ListEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}
	if req.Value == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "value is required",
		})
		return
	}

	entry := &domain.ListEntry{
		Kind:      kind,
		Value:     req.Value,
		Reason:    req.Reason,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.repo.AddListEntry(r.Context(), entry); err != nil {
		slog.Error("failed to add list entry", "kind", kind, "value", req.Value, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to add list entry",
		})
		return
	}

	slog.Info("list entry added", "kind", kind, "value", req.Value)
	writeJSON(w, http.StatusCreated, entry)
}

// RemoveListEntry removes a value from the blacklist or whitelist.
func (h *Handler) RemoveListEntry(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	value := chi.URLParam(r, "value")

	if kind != domain.ListBlacklist && kind != domain.ListWhitelist {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "list kind must be blacklist or whitelist",
		})
		return
	}

	if err := h.repo.RemoveListEntry(r.Context(), kind, value); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "list entry not found",
			})
			return
		}
		slog.Error("failed to remove list entry", "kind", kind, "value", value, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to remove list entry",
		})
		return
	}

	slog.Info("list entry removed", "kind", kind, "value", value)
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "list entry removed",
	})
}

// UpsertProfileRequest is the request body for PUT /risk/users/{id}/profile.
type UpsertProfileRequest struct {
	PhoneNumber       string     `json:"phoneNumber,omitempty"`
	PhoneVerified     bool       `json:"phoneVerified"`
	PasswordChangedAt *time.Time `json:"passwordChangedAt,omitempty"`
	EmailChangedAt    *time.Time `json:"emailChangedAt,omitempty"`
	LastLoginAt       *time.Time `json:"lastLoginAt,omitempty"`
}

// UpsertProfile stores the account-state signals the SIM-swap and takeover
// detectors read.
func (h *Handler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req UpsertProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	now := time.Now().UTC()
	profile := &domain.UserProfile{
		UserID:            userID,
		PhoneNumber:       req.PhoneNumber,
		PhoneVerified:     req.PhoneVerified,
		PasswordChangedAt: req.PasswordChangedAt,
		EmailChangedAt:    req.EmailChangedAt,
		LastLoginAt:       req.LastLoginAt,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := h.repo.SaveUserProfile(r.Context(), profile); err != nil {
		slog.Error("failed to save profile", "user_id", userID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to save profile",
		})
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// OTPFailureRequest is the request body for POST /risk/events/otp-failure.
type OTPFailureRequest struct {
	UserID string `json:"userId"`
}

// RecordOTPFailure increments the failed-OTP counter the SIM-swap detector
// reads. The counter expires with its window.
func (h *Handler) RecordOTPFailure(w http.ResponseWriter, r *http.Request) {
	var req OTPFailureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}
	if req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "userId is required",
		})
		return
	}

	count, err := h.signals.IncrementCounter(r.Context(), detector.OTPFailureKey(req.UserID), otpFailureWindow)
	if err != nil {
		slog.Error("failed to record otp failure", "user_id", req.UserID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to record otp failure",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"userId":   req.UserID,
		"failures": count,
	})
}

// Health returns server health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	if h.repo != nil {
		if err := h.repo.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	if h.signals != nil {
		if err := h.signals.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": h.version,
	})
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
