package domain

import "time"

// AlertStatus tracks the review lifecycle of a fraud alert. The engine only
// ever creates PENDING alerts; transitions are owned by the reviewing
// workflow.
type AlertStatus string

const (
	AlertPending   AlertStatus = "PENDING"
	AlertApproved  AlertStatus = "APPROVED"
	AlertRejected  AlertStatus = "REJECTED"
	AlertEscalated AlertStatus = "ESCALATED"
)

// Alert is raised for checks whose risk level is HIGH or CRITICAL.
type Alert struct {
	ID        string      `json:"id"`
	CheckID   string      `json:"checkId"`
	UserID    string      `json:"userId"`
	RiskLevel RiskLevel   `json:"riskLevel"`
	RiskScore int         `json:"riskScore"`
	Status    AlertStatus `json:"status"`
	Reason    string      `json:"reason,omitempty"`

	CreatedAt  time.Time  `json:"createdAt"`
	ReviewedAt *time.Time `json:"reviewedAt,omitempty"`
	ReviewedBy string     `json:"reviewedBy,omitempty"`
}

// FraudReport is a user-filed report marking a transaction as fraudulent.
type FraudReport struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	TransactionID string    `json:"transactionId"`
	Reason        string    `json:"reason"`
	Details       string    `json:"details,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
