package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinix-uz/clinix-sdk/modules/core/domain/aggregates/account"
	"github.com/clinix-uz/clinix-sdk/modules/core/domain/entities/reference"
	"github.com/clinix-uz/clinix-sdk/modules/core/infrastructure/persistence"
	"github.com/clinix-uz/clinix-sdk/modules/core/reconcile"
	"github.com/clinix-uz/clinix-sdk/modules/core/services"
)

type stubPublisher struct {
	mu     sync.Mutex
	events []interface{}
}

func (p *stubPublisher) Publish(args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, args...)
}

func (p *stubPublisher) Subscribe(handler interface{})   {}
func (p *stubPublisher) Unsubscribe(handler interface{}) {}
func (p *stubPublisher) Clear()                          {}
func (p *stubPublisher) SubscribersCount() int           { return 0 }

func (p *stubPublisher) published() []interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]interface{}(nil), p.events...)
}

type stubReferenceRepository struct {
	refs []reference.Reference
}

func (r *stubReferenceRepository) GetAll(ctx context.Context) ([]reference.Reference, error) {
	return r.refs, nil
}

func testReferences() []reference.Reference {
	return []reference.Reference{
		{ID: 1, Kind: reference.KindOffice, Code: "OFF1", Name: "Front Desk"},
		{ID: 2, Kind: reference.KindOffice, Code: "OFF2", Name: "Triage"},
		{ID: 3, Kind: reference.KindCourse, Code: "NUR101", Name: "Nursing Basics"},
		{ID: 4, Kind: reference.KindYear, Code: "Y1", Name: "First Year"},
	}
}

func setupBulkService(t *testing.T) (*services.BulkAccountService, *persistence.InmemAccountRepository, *stubPublisher) {
	t.Helper()
	repo := persistence.NewInmemAccountRepository()
	publisher := &stubPublisher{}
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	svc := services.NewBulkAccountService(repo, &stubReferenceRepository{refs: testReferences()}, publisher, log)
	return svc, repo, publisher
}

func TestBulkAccountService_Add(t *testing.T) {
	t.Parallel()
	svc, repo, publisher := setupBulkService(t)
	ctx := context.Background()

	input := "id,first_name,middle_name,last_name,email,office,course,year\n" +
		"1,Anna,,Karimova,anna@clinic.test,OFF1,,\n" +
		"2,Bek,,Tashkentov,bek@clinic.test,OFF2,,\n"

	report, err := svc.Add(ctx, input, reconcile.Options{TargetRole: account.RoleStaff})
	require.NoError(t, err)
	assert.Len(t, report.Created, 2)
	assert.Empty(t, report.Skipped)

	stored, err := repo.GetByEmail(ctx, "anna@clinic.test")
	require.NoError(t, err)
	assert.Equal(t, account.RoleStaff, stored.Role())
	require.NotNil(t, stored.OfficeID())
	assert.Equal(t, uint(1), *stored.OfficeID())

	events := publisher.published()
	require.Len(t, events, 3)
	completed, ok := events[0].(*reconcile.CompletedEvent)
	require.True(t, ok)
	assert.Equal(t, report.RunID, completed.Result.RunID)

	createdEmails := make([]string, 0, 2)
	for _, e := range events[1:] {
		ev, ok := e.(*account.CreatedEvent)
		require.True(t, ok)
		createdEmails = append(createdEmails, ev.Result.Email())
	}
	assert.ElementsMatch(t, []string{"anna@clinic.test", "bek@clinic.test"}, createdEmails)
}

func TestBulkAccountService_Add_PublishesUpdateEvents(t *testing.T) {
	t.Parallel()
	svc, repo, publisher := setupBulkService(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, account.New(
		account.RoleStaff, "Anna", "Karimov", "anna@clinic.test", account.WithOffice(1),
	))
	require.NoError(t, err)

	input := "id,first_name,middle_name,last_name,email,office,course,year\n" +
		"1,Anna,,Karimova,anna@clinic.test,OFF1,,\n"

	report, err := svc.Add(ctx, input, reconcile.Options{TargetRole: account.RoleStaff})
	require.NoError(t, err)
	require.Len(t, report.Updated, 1)

	events := publisher.published()
	require.Len(t, events, 2)
	ev, ok := events[1].(*account.UpdatedEvent)
	require.True(t, ok)
	assert.Equal(t, "Karimova", ev.Result.LastName())
	assert.Equal(t, []account.Field{account.LastNameField}, ev.Changed)
}

func TestBulkAccountService_Add_DryRunMutatesNothing(t *testing.T) {
	t.Parallel()
	svc, repo, publisher := setupBulkService(t)
	ctx := context.Background()

	input := "id,first_name,middle_name,last_name,email,office,course,year\n" +
		"1,Anna,,Karimova,anna@clinic.test,OFF1,,\n"

	report, err := svc.Add(ctx, input, reconcile.Options{TargetRole: account.RoleStaff, DryRun: true})
	require.NoError(t, err)
	assert.Len(t, report.Created, 1)
	assert.True(t, report.DryRun)

	_, err = repo.GetByEmail(ctx, "anna@clinic.test")
	assert.ErrorIs(t, err, account.ErrAccountNotFound)

	// A dry run emits only the report, never account events.
	events := publisher.published()
	require.Len(t, events, 1)
	_, ok := events[0].(*reconcile.CompletedEvent)
	assert.True(t, ok)
}

func TestBulkAccountService_Delete(t *testing.T) {
	t.Parallel()
	svc, repo, publisher := setupBulkService(t)
	ctx := context.Background()

	office := uint(1)
	_, err := repo.Create(ctx, account.New(account.RoleStaff, "Anna", "Karimova", "anna@clinic.test", account.WithOffice(office)))
	require.NoError(t, err)

	input := "email\nanna@clinic.test\nghost@clinic.test\n"

	report, err := svc.Delete(ctx, input, reconcile.Options{TargetRole: account.RoleStaff})
	require.NoError(t, err)
	assert.Len(t, report.Deleted, 1)
	assert.Len(t, report.NotFound, 1)

	_, err = repo.GetByEmail(ctx, "anna@clinic.test")
	assert.ErrorIs(t, err, account.ErrAccountNotFound)

	events := publisher.published()
	require.Len(t, events, 2)
	ev, ok := events[1].(*account.DeletedEvent)
	require.True(t, ok)
	assert.Equal(t, "anna@clinic.test", ev.Email)
}

func TestBulkAccountService_Add_InvalidRole(t *testing.T) {
	t.Parallel()
	svc, _, publisher := setupBulkService(t)

	_, err := svc.Add(context.Background(), "email\n", reconcile.Options{TargetRole: "janitor"})
	require.Error(t, err)
	assert.ErrorIs(t, err, reconcile.ErrInvalidRole)
	assert.Empty(t, publisher.published())
}
