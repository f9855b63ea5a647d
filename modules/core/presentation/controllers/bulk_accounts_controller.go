package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/clinix-uz/clinix-sdk/modules/core/presentation/controllers/dtos"
	"github.com/clinix-uz/clinix-sdk/modules/core/reconcile"
	"github.com/clinix-uz/clinix-sdk/modules/core/services"
	"github.com/clinix-uz/clinix-sdk/pkg/httpapi"
	"github.com/clinix-uz/clinix-sdk/pkg/middleware"
	"github.com/clinix-uz/clinix-sdk/pkg/serrors"
)

const maxUploadSize = 32 << 20 // 32 MiB

// BulkAccountsController exposes the bulk reconciliation endpoints. The
// input sheet arrives either as a raw text/csv body or as the "file" part
// of a multipart form.
type BulkAccountsController struct {
	bulk *services.BulkAccountService
	// base carries the deployment-wide engine knobs; request parameters
	// overlay it per run.
	base     reconcile.Options
	basePath string
}

func NewBulkAccountsController(bulk *services.BulkAccountService, base reconcile.Options) *BulkAccountsController {
	return &BulkAccountsController{
		bulk:     bulk,
		base:     base,
		basePath: "/core/accounts",
	}
}

func (c *BulkAccountsController) Key() string {
	return c.basePath
}

func (c *BulkAccountsController) Register(r *mux.Router) {
	api := r.PathPrefix(c.basePath).Subrouter()
	api.HandleFunc("/bulk-add", c.BulkAdd).Methods(http.MethodPost)
	api.HandleFunc("/bulk-delete", c.BulkDelete).Methods(http.MethodPost)
}

func (c *BulkAccountsController) BulkAdd(w http.ResponseWriter, r *http.Request) {
	c.run(w, r, c.bulk.Add)
}

func (c *BulkAccountsController) BulkDelete(w http.ResponseWriter, r *http.Request) {
	c.run(w, r, c.bulk.Delete)
}

type runFunc func(ctx context.Context, input string, opts reconcile.Options) (*reconcile.Report, error)

func (c *BulkAccountsController) run(w http.ResponseWriter, r *http.Request, fn runFunc) {
	log := middleware.UseLogger(r.Context())
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	input, err := readSheet(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BULK_BAD_REQUEST", err.Error(), nil)
		return
	}

	dto, errs, ok := parseRunDTO(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "BULK_INVALID_PARAMS", "invalid run parameters", errs)
		return
	}

	report, err := fn(r.Context(), input, dto.Overlay(c.base))
	if err != nil {
		var coded *serrors.Error
		if errors.As(err, &coded) {
			_ = httpapi.WriteCodedError(w, http.StatusUnprocessableEntity, err)
			return
		}
		log.WithError(err).Error("bulk: run failed")
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
		return
	}

	switch r.URL.Query().Get("export") {
	case "skipped":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "skipped-"+report.RunID.String()+".csv"))
		_, _ = w.Write(report.SkippedCSV())
	case "skipped.xlsx":
		payload, err := report.SkippedWorkbook(r.Context())
		if err != nil {
			log.WithError(err).Error("bulk: skipped workbook export failed")
			_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "skipped-"+report.RunID.String()+".xlsx"))
		_, _ = w.Write(payload)
	default:
		_ = httpapi.WriteJSON(w, http.StatusOK, report)
	}
}

// readSheet extracts the input sheet from the request body. Multipart
// uploads use the "file" part; everything else is read as the raw body.
func readSheet(r *http.Request) (string, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			return "", fmt.Errorf("failed to parse multipart form: %w", err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return "", fmt.Errorf("missing file part: %w", err)
		}
		defer file.Close()
		payload, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
		if err != nil {
			return "", err
		}
		return string(payload), nil
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxUploadSize))
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

func parseRunDTO(r *http.Request) (*dtos.BulkRunDTO, map[string]string, bool) {
	q := r.URL.Query()
	dto := &dtos.BulkRunDTO{
		Role: q.Get("role"),
	}
	if raw := q.Get("dry_run"); raw != "" {
		dry, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, map[string]string{"DryRun": "must be a boolean"}, false
		}
		dto.DryRun = dry
	}
	if raw := q.Get("max_batch_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return nil, map[string]string{"MaxBatchSize": "must be an integer"}, false
		}
		dto.MaxBatchSize = size
	}
	if errs, ok := dto.Ok(); !ok {
		return nil, errs, false
	}
	return dto, nil, true
}
