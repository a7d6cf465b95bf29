package models

import (
	"time"

	"github.com/google/uuid"
)

type SubpartStatus struct {
	ID    int64 `json:"id"`
	InUse int   `json:"inUse"`
}

// StatusChange is the audit record of one accepted bulk status update.
type StatusChange struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	CustomerID  int64           `json:"customer_id" db:"customer_id"`
	ModelID     int64           `json:"model_id" db:"model_id"`
	UserID      int64           `json:"user_id" db:"user_id"`
	Person      string          `json:"person" db:"person"`
	IP          string          `json:"ip" db:"ip"`
	Reason      string          `json:"reason" db:"reason"`
	Recipients  []string        `json:"recipients" db:"recipients"`
	Subparts    []SubpartStatus `json:"subparts" db:"subparts"`
	ReceiptKey  string          `json:"receipt_key,omitempty" db:"receipt_key"`
	SubmittedAt time.Time       `json:"submitted_at" db:"submitted_at"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// Session is the persisted login of one operator.
type Session struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Token     string    `json:"-" db:"token"`
	User      User      `json:"user" db:"user_json"`
	IP        string    `json:"ip" db:"ip"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
