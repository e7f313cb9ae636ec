package audit

import "time"

// Result classifies an access attempt outcome.
type Result string

const (
	ResultGrant Result = "GRANT"
	ResultDeny  Result = "DENY"
)

// ValidResult reports whether value names a known result.
func ValidResult(value string) bool {
	return value == string(ResultGrant) || value == string(ResultDeny)
}

// Entry is one immutable record of an access attempt. PrincipalID is nil when
// the attempt referenced an id with no matching account. Entries are never
// updated or deleted; corrections append new entries.
type Entry struct {
	ID          int64
	PrincipalID *int64
	Timestamp   time.Time
	Result      Result
	Reason      string
	Origin      *string
}

// Filters narrows a ledger query. Zero-valued fields are ignored.
type Filters struct {
	PrincipalID *int64
	Result      *Result
	Since       *time.Time
	Limit       int
}

// DashboardCounts carries the aggregates shown to administrators.
type DashboardCounts struct {
	AttemptsToday   int64 `json:"attempts_today"`
	DeniedToday     int64 `json:"denied_today"`
	PendingAccounts int64 `json:"pending_accounts"`
}
