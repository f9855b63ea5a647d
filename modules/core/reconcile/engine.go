package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/clinix-uz/clinix-sdk/modules/core/domain/aggregates/account"
	"github.com/clinix-uz/clinix-sdk/modules/core/domain/entities/reference"
)

const (
	DefaultMaxDeleteBatch = 500
	DefaultWorkers        = 4
	DefaultStoreTimeout   = 5 * time.Second
)

// Options are the caller-visible knobs of one reconciliation run.
type Options struct {
	// TargetRole selects the role requirement policy for the whole batch;
	// the caller scopes one role per bulk operation.
	TargetRole account.Role
	// MaxDeleteBatch bounds destructive batches; exceeding it rejects the
	// batch wholesale before any mutation.
	MaxDeleteBatch int
	// DryRun classifies and reports without invoking any mutation.
	DryRun bool
	// Workers bounds the parallel read-only stage.
	Workers int
	// StoreTimeout applies per store operation; a timed-out row is skipped,
	// not fatal.
	StoreTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxDeleteBatch <= 0 {
		o.MaxDeleteBatch = DefaultMaxDeleteBatch
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.StoreTimeout <= 0 {
		o.StoreTimeout = DefaultStoreTimeout
	}
	return o
}

// Engine is the bulk user reconciliation engine: a deterministic,
// idempotent batch processor over a delimited-text input. One Engine value
// serves one run; the reference directory is a per-run snapshot.
type Engine struct {
	repo account.Repository
	norm normalizer
	log  *logrus.Logger
}

func NewEngine(repo account.Repository, dir reference.Directory, log *logrus.Logger) *Engine {
	return &Engine{
		repo: repo,
		norm: normalizer{dir: dir},
		log:  log,
	}
}

// Add reconciles an add-mode batch: create missing accounts, update
// changed ones, leave the rest untouched. The returned error is non-nil
// only for structural failures; row-level failures land in the report.
func (e *Engine) Add(ctx context.Context, input string, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	if !opts.TargetRole.IsValid() {
		return nil, ErrInvalidRole.WithDetails("%q", string(opts.TargetRole))
	}

	rows, err := parseAddInput(input)
	if err != nil {
		return nil, err
	}

	states := e.normalizeAll(rows)
	markDuplicates(states)

	if err := e.classifyStage(ctx, states, opts, func(s *rowState, existing *account.Account) *Outcome {
		if reason, ok := validatePolicy(opts.TargetRole, &s.row); !ok {
			return skipped(s.row.Line, s.row.DisplayName, s.row.Email, reason)
		}
		return classifyAdd(opts.TargetRole, s.row, existing)
	}); err != nil {
		return nil, err
	}

	return e.finish(ctx, ModeAdd, states, opts)
}

// Delete reconciles a delete-mode batch. The batch-size ceiling is a hard
// precondition enforced before any store work begins.
func (e *Engine) Delete(ctx context.Context, input string, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	if !opts.TargetRole.IsValid() {
		return nil, ErrInvalidRole.WithDetails("%q", string(opts.TargetRole))
	}

	rows, err := parseDeleteInput(input)
	if err != nil {
		return nil, err
	}

	states := e.normalizeAll(rows)
	markDuplicates(states)

	candidates := 0
	for _, s := range states {
		if !s.terminal() {
			candidates++
		}
	}
	if candidates > opts.MaxDeleteBatch {
		return nil, ErrBatchTooLarge.WithDetails("%d rows, ceiling %d", candidates, opts.MaxDeleteBatch)
	}

	if err := e.classifyStage(ctx, states, opts, func(s *rowState, existing *account.Account) *Outcome {
		return classifyDelete(opts.TargetRole, s.row, existing)
	}); err != nil {
		return nil, err
	}

	return e.finish(ctx, ModeDelete, states, opts)
}

// normalizeAll runs the pure per-row normalization pass in file order.
// Unparseable and email-less rows become terminal here.
func (e *Engine) normalizeAll(rows []ImportRow) []*rowState {
	states := make([]*rowState, len(rows))
	for i, row := range rows {
		s := &rowState{}
		if row.Unparseable {
			s.outcome = skipped(row.Line, "", "", ReasonUnparseableRow)
			states[i] = s
			continue
		}
		normalized, reason, ok := e.norm.normalize(row)
		s.row = normalized
		if !ok {
			s.outcome = skipped(normalized.Line, normalized.DisplayName, normalized.Email, reason)
		}
		states[i] = s
	}
	return states
}

// classifyStage runs the read-only match+classify work across a bounded
// worker pool. Every row's decision depends only on its own normalized
// data plus one store lookup, so rows fan out freely; mutation order is
// restored afterwards because states keep file order.
func (e *Engine) classifyStage(
	ctx context.Context,
	states []*rowState,
	opts Options,
	classify func(*rowState, *account.Account) *Outcome,
) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for _, s := range states {
		if s.terminal() {
			continue
		}
		s := s
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			existing, reason, ok := e.match(gctx, s.row.Email, opts.StoreTimeout)
			if !ok {
				s.outcome = skipped(s.row.Line, s.row.DisplayName, s.row.Email, reason)
				return nil
			}
			s.outcome = classify(s, existing)
			return nil
		})
	}

	return g.Wait()
}

// match resolves a row against the account store by exact case-insensitive
// email equality. Email equality is the sole identity rule; no fuzzy
// matching, so reconciliation stays deterministic and auditable.
func (e *Engine) match(ctx context.Context, email string, timeout time.Duration) (*account.Account, Reason, bool) {
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	existing, err := e.repo.GetByEmail(opCtx, email)
	switch {
	case err == nil:
		return &existing, "", true
	case errors.Is(err, account.ErrAccountNotFound):
		return nil, "", true
	case errors.Is(err, context.DeadlineExceeded):
		return nil, ReasonStoreTimeout, false
	default:
		return nil, ReasonStoreRejected, false
	}
}

func (e *Engine) finish(ctx context.Context, mode Mode, states []*rowState, opts Options) (*Report, error) {
	outcomes := make([]*Outcome, len(states))
	for i, s := range states {
		outcomes[i] = s.outcome
	}

	runID := uuid.New()

	if !opts.DryRun {
		a := applier{repo: e.repo, timeout: opts.StoreTimeout, log: e.log}
		if err := a.apply(ctx, outcomes); err != nil {
			// Batch cancelled mid-run: the caller is gone and nobody
			// consumes the report. Applied mutations stand.
			return nil, err
		}
	}

	report := aggregate(runID, mode, opts.DryRun, outcomes)
	if e.log != nil {
		e.log.WithFields(logrus.Fields{
			"run_id":  runID,
			"mode":    mode,
			"dry_run": opts.DryRun,
			"counts":  report.Counts(),
		}).Info("bulk: reconciliation run finished")
	}
	return report, nil
}
