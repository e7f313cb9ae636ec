package access

// Verdict is the outcome of one evaluation.
type Verdict string

const (
	VerdictGrant Verdict = "GRANT"
	VerdictDeny  Verdict = "DENY"
)

// ReasonCode is the closed set of machine-readable explanations attached to a
// verdict and persisted to the attempt ledger.
type ReasonCode string

const (
	ReasonUserNotFound  ReasonCode = "USER_NOT_FOUND"
	ReasonInactive      ReasonCode = "ACCOUNT_INACTIVE"
	ReasonInvalidPIN    ReasonCode = "INVALID_PIN"
	ReasonOutsideWindow ReasonCode = "OUTSIDE_ACCESS_WINDOW"
	ReasonGranted       ReasonCode = "ACCESS_GRANTED"
)

// Decision pairs a verdict with its reason code.
type Decision struct {
	Verdict Verdict    `json:"verdict"`
	Reason  ReasonCode `json:"reason"`
}

func deny(reason ReasonCode) Decision {
	return Decision{Verdict: VerdictDeny, Reason: reason}
}
