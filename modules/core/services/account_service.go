package services

import (
	"context"

	"github.com/clinix-uz/clinix-sdk/modules/core/domain/aggregates/account"
	"github.com/clinix-uz/clinix-sdk/pkg/composables"
	"github.com/clinix-uz/clinix-sdk/pkg/eventbus"
)

type AccountService struct {
	repo      account.Repository
	publisher eventbus.EventBus
}

func NewAccountService(repo account.Repository, publisher eventbus.EventBus) *AccountService {
	return &AccountService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *AccountService) GetByEmail(ctx context.Context, email string) (account.Account, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *AccountService) GetAll(ctx context.Context) ([]account.Account, error) {
	return s.repo.GetAll(ctx)
}

func (s *AccountService) Count(ctx context.Context, params *account.FindParams) (int64, error) {
	return s.repo.Count(ctx, params)
}

func (s *AccountService) GetPaginated(ctx context.Context, params *account.FindParams) ([]account.Account, error) {
	return s.repo.GetPaginated(ctx, params)
}

func (s *AccountService) GetPaginatedWithTotal(ctx context.Context, params *account.FindParams) ([]account.Account, int64, error) {
	accounts, err := s.repo.GetPaginated(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

func (s *AccountService) Create(ctx context.Context, data account.Account) (account.Account, error) {
	var created account.Account
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.repo.Create(txCtx, data)
		return err
	})
	if err != nil {
		return account.Account{}, err
	}
	s.publisher.Publish(account.NewCreatedEvent(created))
	return created, nil
}

func (s *AccountService) GetByID(ctx context.Context, id uint) (account.Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AccountService) UpdateFields(ctx context.Context, id uint, patch account.Patch) (account.Account, error) {
	var updated account.Account
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.UpdateFields(txCtx, id, patch); err != nil {
			return err
		}
		var err error
		updated, err = s.repo.GetByID(txCtx, id)
		return err
	})
	if err != nil {
		return account.Account{}, err
	}
	changed := make([]account.Field, 0, len(patch))
	for f := range patch {
		changed = append(changed, f)
	}
	s.publisher.Publish(account.NewUpdatedEvent(updated, changed))
	return updated, nil
}

func (s *AccountService) DeleteByEmail(ctx context.Context, email string) error {
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.DeleteByEmail(txCtx, email)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish(account.NewDeletedEvent(email))
	return nil
}
