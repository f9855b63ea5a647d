package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/clinix-uz/clinix-sdk/modules/core/domain/aggregates/account"
	"github.com/clinix-uz/clinix-sdk/modules/core/domain/entities/reference"
	"github.com/clinix-uz/clinix-sdk/modules/core/reconcile"
	"github.com/clinix-uz/clinix-sdk/pkg/eventbus"
)

// BulkAccountService runs bulk reconciliation over the account store.
//
// It deliberately runs WITHOUT a wrapping transaction: each row mutation
// is independent, so one rejected row never rolls back its neighbours,
// and the concurrent match stage can fan out over the pool.
type BulkAccountService struct {
	repo      account.Repository
	refRepo   reference.Repository
	publisher eventbus.EventBus
	log       *logrus.Logger
}

func NewBulkAccountService(
	repo account.Repository,
	refRepo reference.Repository,
	publisher eventbus.EventBus,
	log *logrus.Logger,
) *BulkAccountService {
	return &BulkAccountService{
		repo:      repo,
		refRepo:   refRepo,
		publisher: publisher,
		log:       log,
	}
}

// Add reconciles an add-mode batch and publishes the run report.
func (s *BulkAccountService) Add(ctx context.Context, input string, opts reconcile.Options) (*reconcile.Report, error) {
	engine, err := s.newEngine(ctx)
	if err != nil {
		return nil, err
	}
	report, err := engine.Add(ctx, input, opts)
	if err != nil {
		return nil, err
	}
	s.publishEvents(report)
	return report, nil
}

// Delete reconciles a delete-mode batch and publishes the run report.
func (s *BulkAccountService) Delete(ctx context.Context, input string, opts reconcile.Options) (*reconcile.Report, error) {
	engine, err := s.newEngine(ctx)
	if err != nil {
		return nil, err
	}
	report, err := engine.Delete(ctx, input, opts)
	if err != nil {
		return nil, err
	}
	s.publishEvents(report)
	return report, nil
}

// publishEvents emits the run report followed by one account event per
// applied mutation, so subscribers of single-account CRUD see bulk
// mutations too. Dry runs emit only the report.
func (s *BulkAccountService) publishEvents(report *reconcile.Report) {
	s.publisher.Publish(reconcile.NewCompletedEvent(report))
	for _, m := range report.Mutations() {
		switch m.Tag {
		case reconcile.TagCreated:
			s.publisher.Publish(account.NewCreatedEvent(m.Account))
		case reconcile.TagUpdated:
			s.publisher.Publish(account.NewUpdatedEvent(m.Account, m.Changed))
		case reconcile.TagDeleted:
			s.publisher.Publish(account.NewDeletedEvent(m.Email))
		}
	}
}

// newEngine snapshots the reference directory for exactly one run.
func (s *BulkAccountService) newEngine(ctx context.Context) (*reconcile.Engine, error) {
	dir, err := reference.LoadDirectory(ctx, s.refRepo)
	if err != nil {
		return nil, err
	}
	return reconcile.NewEngine(s.repo, dir, s.log), nil
}
