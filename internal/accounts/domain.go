package accounts

import "time"

// Status is the lifecycle state of a principal.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Role is the privilege level of a principal.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Principal represents a registered identity capable of attempting access.
type Principal struct {
	ID                int64
	Email             string
	PasswordHash      string
	Status            Status
	Role              Role
	RoleExpiresAt     *time.Time
	PINHash           *string
	EmailConfirmedAt  *time.Time
	FailedPINAttempts int
	LastFailedAt      *time.Time
	CreatedAt         time.Time
}

// EmailConfirmed reports whether the principal has consumed a confirmation token.
func (p *Principal) EmailConfirmed() bool {
	return p.EmailConfirmedAt != nil
}

// IsActive reports whether the account may pass the lifecycle gate. Both the
// status flag and the confirmation timestamp must be set.
func (p *Principal) IsActive() bool {
	return p.Status == StatusActive && p.EmailConfirmed()
}

// HasAdminAccess reports whether the principal holds administrator privilege at
// the given instant. Expiry is evaluated lazily: the stored role is never swept
// back to USER, the time-bounded predicate is the source of truth.
func (p *Principal) HasAdminAccess(now time.Time) bool {
	if p.Role != RoleAdmin {
		return false
	}
	if p.RoleExpiresAt == nil {
		return true
	}
	return !p.RoleExpiresAt.Before(now)
}
