package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/clinix-uz/clinix-sdk/modules/core/domain/aggregates/account"
)

// applier executes exactly one store operation per actionable outcome.
// Each row's mutation is independent; a failed row is demoted to Skipped
// and the batch continues. Partial-batch success is the intended failure
// mode so the caller learns exactly which rows succeeded.
type applier struct {
	repo    account.Repository
	timeout time.Duration
	log     *logrus.Logger
}

// apply walks outcomes in file order. It stops scheduling further rows on
// batch cancellation; already-applied mutations are not rolled back.
func (a applier) apply(ctx context.Context, outcomes []*Outcome) error {
	for _, o := range outcomes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !o.Actionable() {
			continue
		}
		if err := a.applyOne(ctx, o); err != nil {
			reason := ReasonStoreRejected
			if errors.Is(err, context.DeadlineExceeded) {
				reason = ReasonStoreTimeout
			}
			if a.log != nil {
				a.log.WithFields(logrus.Fields{
					"line":   o.Line,
					"email":  o.Email,
					"tag":    o.Tag,
					"reason": reason,
				}).WithError(err).Warn("bulk: store mutation failed, row skipped")
			}
			o.toSkipped(reason)
		}
	}
	return nil
}

func (a applier) applyOne(ctx context.Context, o *Outcome) error {
	opCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	switch o.Tag {
	case TagCreated:
		created, err := a.repo.Create(opCtx, *o.pendingCreate)
		if err != nil {
			return err
		}
		o.mutation = &Mutation{Tag: TagCreated, Account: created, Email: o.Email}
		return nil
	case TagUpdated:
		if err := a.repo.UpdateFields(opCtx, o.pendingID, o.pendingPatch); err != nil {
			return err
		}
		updated, err := a.repo.GetByID(opCtx, o.pendingID)
		if err != nil {
			// The update itself applied; only the event payload is lost.
			if a.log != nil {
				a.log.WithError(err).WithField("email", o.Email).
					Warn("bulk: re-read after update failed, event dropped")
			}
			return nil
		}
		o.mutation = &Mutation{Tag: TagUpdated, Account: updated, Changed: o.ChangedFields, Email: o.Email}
		return nil
	case TagDeleted:
		if err := a.repo.DeleteByEmail(opCtx, o.Email); err != nil {
			return err
		}
		o.mutation = &Mutation{Tag: TagDeleted, Email: o.Email}
		return nil
	}
	return nil
}
