package domain

import "time"

// Signature is a registered fraud pattern. Expression is a CEL predicate over
// the check input; when it evaluates to true the signature's flag is raised.
// No signatures are bundled: the matcher reports nothing until some are
// registered.
type Signature struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	Expression string   `json:"expression"`
	Severity   Severity `json:"severity"`
	Score      int      `json:"score"` // 0-100 contribution when matched

	Enabled bool `json:"enabled"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}
