package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinix-uz/clinix-sdk/modules/core/domain/aggregates/account"
	"github.com/clinix-uz/clinix-sdk/modules/core/infrastructure/persistence"
	"github.com/clinix-uz/clinix-sdk/modules/core/services"
)

func setupAccountService(t *testing.T) (*services.AccountService, *persistence.InmemAccountRepository, *stubPublisher) {
	t.Helper()
	repo := persistence.NewInmemAccountRepository()
	publisher := &stubPublisher{}
	return services.NewAccountService(repo, publisher), repo, publisher
}

func TestAccountService_Create(t *testing.T) {
	t.Parallel()
	svc, repo, publisher := setupAccountService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, account.New(
		account.RoleStaff, "Anna", "Karimova", "anna@clinic.test", account.WithOffice(1),
	))
	require.NoError(t, err)
	assert.NotZero(t, created.ID())

	stored, err := repo.GetByEmail(ctx, "anna@clinic.test")
	require.NoError(t, err)
	assert.Equal(t, account.RoleStaff, stored.Role())

	events := publisher.published()
	require.Len(t, events, 1)
	ev, ok := events[0].(*account.CreatedEvent)
	require.True(t, ok)
	assert.Equal(t, "anna@clinic.test", ev.Result.Email())
}

func TestAccountService_Create_DuplicateEmail(t *testing.T) {
	t.Parallel()
	svc, _, publisher := setupAccountService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, account.New(account.RoleStaff, "Anna", "Karimova", "anna@clinic.test"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, account.New(account.RoleStaff, "Anna", "Karimova", "ANNA@clinic.test"))
	assert.ErrorIs(t, err, account.ErrEmailTaken)
	assert.Len(t, publisher.published(), 1)
}

func TestAccountService_UpdateFields(t *testing.T) {
	t.Parallel()
	svc, _, publisher := setupAccountService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, account.New(account.RoleStaff, "Anna", "Karimov", "anna@clinic.test"))
	require.NoError(t, err)

	updated, err := svc.UpdateFields(ctx, created.ID(), account.Patch{
		account.LastNameField: "Karimova",
	})
	require.NoError(t, err)
	assert.Equal(t, "Karimova", updated.LastName())
	assert.Equal(t, "Anna", updated.FirstName())

	stored, err := svc.GetByID(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, "Karimova", stored.LastName())

	events := publisher.published()
	require.Len(t, events, 2)
	ev, ok := events[1].(*account.UpdatedEvent)
	require.True(t, ok)
	assert.Equal(t, "Karimova", ev.Result.LastName())
	assert.Equal(t, []account.Field{account.LastNameField}, ev.Changed)
}

func TestAccountService_UpdateFields_NotFound(t *testing.T) {
	t.Parallel()
	svc, _, publisher := setupAccountService(t)

	_, err := svc.UpdateFields(context.Background(), 42, account.Patch{
		account.LastNameField: "Karimova",
	})
	assert.ErrorIs(t, err, account.ErrAccountNotFound)
	assert.Empty(t, publisher.published())
}

func TestAccountService_DeleteByEmail(t *testing.T) {
	t.Parallel()
	svc, repo, publisher := setupAccountService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, account.New(account.RoleStaff, "Anna", "Karimova", "anna@clinic.test"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteByEmail(ctx, "anna@clinic.test"))
	_, err = repo.GetByEmail(ctx, "anna@clinic.test")
	assert.ErrorIs(t, err, account.ErrAccountNotFound)

	events := publisher.published()
	require.Len(t, events, 2)
	ev, ok := events[1].(*account.DeletedEvent)
	require.True(t, ok)
	assert.Equal(t, "anna@clinic.test", ev.Email)

	assert.ErrorIs(t, svc.DeleteByEmail(ctx, "anna@clinic.test"), account.ErrAccountNotFound)
}

func TestAccountService_GetPaginatedWithTotal(t *testing.T) {
	t.Parallel()
	svc, _, _ := setupAccountService(t)
	ctx := context.Background()

	for _, seed := range []struct {
		role  account.Role
		email string
	}{
		{account.RoleStaff, "anna@clinic.test"},
		{account.RoleStaff, "bek@clinic.test"},
		{account.RoleNurse, "dina@clinic.test"},
	} {
		_, err := svc.Create(ctx, account.New(seed.role, "First", "Last", seed.email, account.WithOffice(1)))
		require.NoError(t, err)
	}

	page, total, err := svc.GetPaginatedWithTotal(ctx, &account.FindParams{
		Role:  account.RoleStaff,
		Limit: 1,
	})
	require.NoError(t, err)
	assert.Len(t, page, 1)
	assert.Equal(t, int64(2), total)

	count, err := svc.Count(ctx, &account.FindParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
