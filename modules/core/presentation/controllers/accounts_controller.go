package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/clinix-uz/clinix-sdk/modules/core/domain/aggregates/account"
	"github.com/clinix-uz/clinix-sdk/modules/core/presentation/controllers/dtos"
	"github.com/clinix-uz/clinix-sdk/modules/core/services"
	"github.com/clinix-uz/clinix-sdk/pkg/httpapi"
)

const defaultPageSize = 50

// AccountsController exposes single-account CRUD next to the bulk
// endpoints under the same path prefix.
type AccountsController struct {
	service  *services.AccountService
	basePath string
}

func NewAccountsController(service *services.AccountService) *AccountsController {
	return &AccountsController{
		service:  service,
		basePath: "/core/accounts",
	}
}

func (c *AccountsController) Key() string {
	return c.basePath
}

func (c *AccountsController) Register(r *mux.Router) {
	api := r.PathPrefix(c.basePath).Subrouter()
	api.HandleFunc("", c.List).Methods(http.MethodGet)
	api.HandleFunc("", c.Create).Methods(http.MethodPost)
	api.HandleFunc("", c.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/{id:[0-9]+}", c.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/{id:[0-9]+}", c.Update).Methods(http.MethodPatch)
}

// accountListResponse pairs one page of accounts with the filtered total.
type accountListResponse struct {
	Items []*dtos.AccountResponse `json:"items"`
	Total int64                   `json:"total"`
}

func (c *AccountsController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := &account.FindParams{
		Role:   account.Role(q.Get("role")),
		Search: q.Get("search"),
		Limit:  defaultPageSize,
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "ACCOUNT_INVALID_PARAMS", "limit must be a positive integer", nil)
			return
		}
		params.Limit = limit
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "ACCOUNT_INVALID_PARAMS", "offset must be a non-negative integer", nil)
			return
		}
		params.Offset = offset
	}
	if params.Role != "" && !params.Role.IsValid() {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ACCOUNT_INVALID_PARAMS", "unknown role filter", nil)
		return
	}

	accounts, total, err := c.service.GetPaginatedWithTotal(r.Context(), params)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
		return
	}
	items := make([]*dtos.AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, dtos.NewAccountResponse(a))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, &accountListResponse{Items: items, Total: total})
}

func (c *AccountsController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ACCOUNT_INVALID_PARAMS", "invalid account id", nil)
		return
	}
	found, err := c.service.GetByID(r.Context(), uint(id))
	if err != nil {
		c.writeLookupError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.NewAccountResponse(found))
}

func (c *AccountsController) Create(w http.ResponseWriter, r *http.Request) {
	dto := &dtos.AccountCreateDTO{}
	if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ACCOUNT_BAD_REQUEST", "invalid JSON payload", nil)
		return
	}
	if errs, ok := dto.Ok(); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ACCOUNT_INVALID_PARAMS", "invalid account payload", errs)
		return
	}

	created, err := c.service.Create(r.Context(), dto.ToEntity())
	if err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			_ = httpapi.WriteError(w, http.StatusConflict, "ACCOUNT_EMAIL_TAKEN", "email already taken", nil)
			return
		}
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, dtos.NewAccountResponse(created))
}

func (c *AccountsController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ACCOUNT_INVALID_PARAMS", "invalid account id", nil)
		return
	}
	dto := &dtos.AccountUpdateDTO{}
	if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ACCOUNT_BAD_REQUEST", "invalid JSON payload", nil)
		return
	}
	if errs, ok := dto.Ok(); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ACCOUNT_INVALID_PARAMS", "invalid account payload", errs)
		return
	}
	patch := dto.ToPatch()
	if len(patch) == 0 {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ACCOUNT_EMPTY_PATCH", "no fields to update", nil)
		return
	}

	updated, err := c.service.UpdateFields(r.Context(), uint(id), patch)
	if err != nil {
		c.writeLookupError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, dtos.NewAccountResponse(updated))
}

// Delete removes one account by its email, the same identity rule the
// bulk delete uses.
func (c *AccountsController) Delete(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ACCOUNT_INVALID_PARAMS", "email parameter is required", nil)
		return
	}
	if err := c.service.DeleteByEmail(r.Context(), email); err != nil {
		c.writeLookupError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *AccountsController) writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, account.ErrAccountNotFound) {
		_ = httpapi.WriteError(w, http.StatusNotFound, "ACCOUNT_NOT_FOUND", "account not found", nil)
		return
	}
	_ = httpapi.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
}
