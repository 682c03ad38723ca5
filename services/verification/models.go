package verification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Record is the single outstanding code for a (user, phone number) pair.
type Record struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	UserID      uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_phone_verifications_pair"`
	PhoneNumber string    `json:"phone_number" gorm:"size:32;not null;uniqueIndex:idx_phone_verifications_pair"`
	Code        string    `json:"-" gorm:"size:6;not null"`
	ExpiresAt   time.Time `json:"expires_at" gorm:"not null;index"`
	Verified    bool      `json:"verified" gorm:"not null"`
	Consumed    bool      `json:"consumed" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Record) TableName() string {
	return "phone_verifications"
}

func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// State is the derived lifecycle position of a record at a given instant.
type State string

const (
	StateNone     State = "none"
	StatePending  State = "pending"
	StateExpired  State = "expired"
	StateVerified State = "verified"
	StateConsumed State = "consumed"
)

func (r *Record) StateAt(now time.Time) State {
	switch {
	case r == nil:
		return StateNone
	case r.Consumed:
		return StateConsumed
	case r.Verified:
		return StateVerified
	case !now.Before(r.ExpiresAt):
		return StateExpired
	default:
		return StatePending
	}
}
