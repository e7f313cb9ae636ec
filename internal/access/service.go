package access

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gatehouse/gatehouse/internal/accounts"
	"github.com/gatehouse/gatehouse/internal/audit"
	"github.com/gatehouse/gatehouse/internal/shared"
	"github.com/gatehouse/gatehouse/internal/windows"
)

// RepositoryPort is the transactional boundary the evaluator runs against.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// Observer records evaluation outcomes for metrics. Implemented by
// observability.Metrics.
type Observer interface {
	ObserveEvaluation(verdict, reason string)
}

// Evaluator decides access attempts. It only reads principal and window state;
// the sole writes are the failure counters and one ledger entry per call.
type Evaluator struct {
	repo     RepositoryPort
	observer Observer
	logger   *slog.Logger
}

// NewEvaluator constructs an Evaluator. Observer may be nil.
func NewEvaluator(repo RepositoryPort, observer Observer, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{repo: repo, observer: observer, logger: logger}
}

// Evaluate runs the gates in fixed order, short-circuiting to DENY on the
// first failure: existence, lifecycle, PIN, access window. Every path appends
// exactly one ledger entry before returning. A storage failure aborts the
// whole evaluation with no verdict and no partial ledger write; callers must
// treat that as "access not decided" and refuse access.
func (e *Evaluator) Evaluate(ctx context.Context, principalID int64, pin string, now time.Time, origin string) (Decision, error) {
	now = now.UTC()
	var decision Decision

	err := e.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		principal, err := tx.GetPrincipalForUpdate(ctx, principalID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				decision = deny(ReasonUserNotFound)
				return tx.AppendLog(ctx, e.entry(nil, now, decision, origin))
			}
			return err
		}

		if !principal.IsActive() {
			decision = deny(ReasonInactive)
			return tx.AppendLog(ctx, e.entry(&principal.ID, now, decision, origin))
		}

		if principal.PINHash == nil || !accounts.VerifyPIN(*principal.PINHash, pin) {
			if err := tx.RecordFailure(ctx, principal.ID, now); err != nil {
				return err
			}
			decision = deny(ReasonInvalidPIN)
			return tx.AppendLog(ctx, e.entry(&principal.ID, now, decision, origin))
		}

		ws, err := tx.WindowsFor(ctx, principal.ID)
		if err != nil {
			return err
		}
		if !windows.RestrictedTo(ws).Permits(now) {
			decision = deny(ReasonOutsideWindow)
			return tx.AppendLog(ctx, e.entry(&principal.ID, now, decision, origin))
		}

		if err := tx.ResetFailures(ctx, principal.ID); err != nil {
			return err
		}
		decision = Decision{Verdict: VerdictGrant, Reason: ReasonGranted}
		return tx.AppendLog(ctx, e.entry(&principal.ID, now, decision, origin))
	})
	if err != nil {
		e.logger.Error("evaluate aborted", slog.Int64("principal_id", principalID), slog.Any("error", err))
		return Decision{}, err
	}

	if e.observer != nil {
		e.observer.ObserveEvaluation(string(decision.Verdict), string(decision.Reason))
	}
	return decision, nil
}

func (e *Evaluator) entry(principalID *int64, now time.Time, decision Decision, origin string) audit.Entry {
	var originPtr *string
	if origin != "" {
		originPtr = &origin
	}
	return audit.Entry{
		PrincipalID: principalID,
		Timestamp:   now,
		Result:      audit.Result(decision.Verdict),
		Reason:      string(decision.Reason),
		Origin:      originPtr,
	}
}
