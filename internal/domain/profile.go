package domain

import "time"

// UserProfile holds the account-state signals detectors read.
type UserProfile struct {
	UserID        string `json:"userId"`
	PhoneNumber   string `json:"phoneNumber,omitempty"`
	PhoneVerified bool   `json:"phoneVerified"`

	PasswordChangedAt *time.Time `json:"passwordChangedAt,omitempty"`
	EmailChangedAt    *time.Time `json:"emailChangedAt,omitempty"`

	// LastLoginAt is the start of the user's most recent session.
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// List kinds for black/whitelist entries.
const (
	ListBlacklist = "blacklist"
	ListWhitelist = "whitelist"
)

// ListEntry is a blacklist or whitelist membership. Value is a user ID or an
// IP address.
type ListEntry struct {
	Kind      string    `json:"kind"`
	Value     string    `json:"value"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
