package controllers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinix-uz/clinix-sdk/modules/core/domain/aggregates/account"
	"github.com/clinix-uz/clinix-sdk/modules/core/domain/entities/reference"
	"github.com/clinix-uz/clinix-sdk/modules/core/infrastructure/persistence"
	"github.com/clinix-uz/clinix-sdk/modules/core/presentation/controllers"
	"github.com/clinix-uz/clinix-sdk/modules/core/reconcile"
	"github.com/clinix-uz/clinix-sdk/modules/core/services"
	"github.com/clinix-uz/clinix-sdk/pkg/eventbus"
)

type staticReferenceRepository struct {
	refs []reference.Reference
}

func (r *staticReferenceRepository) GetAll(ctx context.Context) ([]reference.Reference, error) {
	return r.refs, nil
}

func setupRouter(t *testing.T) (*mux.Router, *persistence.InmemAccountRepository) {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	repo := persistence.NewInmemAccountRepository()
	refRepo := &staticReferenceRepository{refs: []reference.Reference{
		{ID: 1, Kind: reference.KindOffice, Code: "OFF1", Name: "Front Desk"},
		{ID: 2, Kind: reference.KindCourse, Code: "NUR101", Name: "Nursing Basics"},
		{ID: 3, Kind: reference.KindYear, Code: "Y1", Name: "First Year"},
	}}
	bulk := services.NewBulkAccountService(repo, refRepo, eventbus.NewEventPublisher(log), log)

	r := mux.NewRouter()
	controllers.NewBulkAccountsController(bulk, reconcile.Options{}).Register(r)
	return r, repo
}

func TestBulkAccountsController_BulkAdd(t *testing.T) {
	t.Parallel()
	router, repo := setupRouter(t)

	body := "id,first_name,middle_name,last_name,email,office,course,year\n" +
		"1,Anna,,Karimova,anna@clinic.test,OFF1,,\n"

	req := httptest.NewRequest(http.MethodPost, "/core/accounts/bulk-add?role=staff", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var report reconcile.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Len(t, report.Created, 1)
	assert.Equal(t, reconcile.ModeAdd, report.Mode)

	_, err := repo.GetByEmail(context.Background(), "anna@clinic.test")
	require.NoError(t, err)
}

func TestBulkAccountsController_BulkAdd_DryRunParam(t *testing.T) {
	t.Parallel()
	router, repo := setupRouter(t)

	body := "id,first_name,middle_name,last_name,email,office,course,year\n" +
		"1,Anna,,Karimova,anna@clinic.test,OFF1,,\n"

	// ParseBool forms like "1" count as true.
	req := httptest.NewRequest(http.MethodPost, "/core/accounts/bulk-add?role=staff&dry_run=1", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var report reconcile.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.True(t, report.DryRun)

	_, err := repo.GetByEmail(context.Background(), "anna@clinic.test")
	assert.ErrorIs(t, err, account.ErrAccountNotFound)

	req = httptest.NewRequest(http.MethodPost, "/core/accounts/bulk-add?role=staff&dry_run=maybe", strings.NewReader(body))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "BULK_INVALID_PARAMS")
}

func TestBulkAccountsController_BulkAdd_InvalidRole(t *testing.T) {
	t.Parallel()
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/core/accounts/bulk-add?role=janitor", strings.NewReader("email\n"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "BULK_INVALID_PARAMS")
}

func TestBulkAccountsController_BulkDelete_BatchTooLarge(t *testing.T) {
	t.Parallel()
	router, _ := setupRouter(t)

	var sb strings.Builder
	sb.WriteString("email\n")
	for i := 0; i < 3; i++ {
		sb.WriteString("user")
		sb.WriteByte(byte('0' + i))
		sb.WriteString("@clinic.test\n")
	}

	req := httptest.NewRequest(
		http.MethodPost,
		"/core/accounts/bulk-delete?role=staff&max_batch_size=2",
		strings.NewReader(sb.String()),
	)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "BULK_BATCH_TOO_LARGE")
}

func TestBulkAccountsController_BulkAdd_SkippedExport(t *testing.T) {
	t.Parallel()
	router, repo := setupRouter(t)

	office := uint(1)
	_, err := repo.Create(context.Background(), account.New(account.RoleNurse, "Nina", "Aliyeva", "nina@clinic.test", account.WithOffice(office)))
	require.NoError(t, err)

	// nina already exists with a different role, so the row is skipped.
	body := "id,first_name,middle_name,last_name,email,office,course,year\n" +
		"1,Nina,,Aliyeva,nina@clinic.test,OFF1,,\n"

	req := httptest.NewRequest(http.MethodPost, "/core/accounts/bulk-add?role=staff&export=skipped", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "role_mismatch")
}
