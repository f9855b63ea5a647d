package persistence

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/clinix-uz/clinix-sdk/modules/core/domain/aggregates/account"
)

// InmemAccountRepository keeps accounts in memory, keyed by lowercased
// email. It backs the test suites.
type InmemAccountRepository struct {
	mu     sync.RWMutex
	byMail map[string]account.Account
	nextID uint
}

func NewInmemAccountRepository() *InmemAccountRepository {
	return &InmemAccountRepository{
		byMail: make(map[string]account.Account),
		nextID: 1,
	}
}

func (r *InmemAccountRepository) all() []account.Account {
	accounts := make([]account.Account, 0, len(r.byMail))
	for _, a := range r.byMail {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID() < accounts[j].ID() })
	return accounts
}

func (r *InmemAccountRepository) matches(a account.Account, params *account.FindParams) bool {
	if params.Role != "" && a.Role() != params.Role {
		return false
	}
	if params.Search != "" {
		needle := strings.ToLower(params.Search)
		haystack := strings.ToLower(a.DisplayName() + " " + a.Email())
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func (r *InmemAccountRepository) GetAll(ctx context.Context) ([]account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.all(), nil
}

func (r *InmemAccountRepository) GetPaginated(ctx context.Context, params *account.FindParams) ([]account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []account.Account
	for _, a := range r.all() {
		if r.matches(a, params) {
			out = append(out, a)
		}
	}
	if params.Offset > 0 {
		if params.Offset >= len(out) {
			return nil, nil
		}
		out = out[params.Offset:]
	}
	if params.Limit > 0 && params.Limit < len(out) {
		out = out[:params.Limit]
	}
	return out, nil
}

func (r *InmemAccountRepository) Count(ctx context.Context, params *account.FindParams) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, a := range r.byMail {
		if r.matches(a, params) {
			count++
		}
	}
	return count, nil
}

func (r *InmemAccountRepository) GetByID(ctx context.Context, id uint) (account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.byMail {
		if a.ID() == id {
			return a, nil
		}
	}
	return account.Account{}, fmt.Errorf("id: %d: %w", id, account.ErrAccountNotFound)
}

func (r *InmemAccountRepository) GetByEmail(ctx context.Context, email string) (account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, found := r.byMail[strings.ToLower(strings.TrimSpace(email))]
	if !found {
		return account.Account{}, fmt.Errorf("email: %s: %w", email, account.ErrAccountNotFound)
	}
	return a, nil
}

func (r *InmemAccountRepository) Create(ctx context.Context, data account.Account) (account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(data.Email())
	if _, found := r.byMail[key]; found {
		return account.Account{}, fmt.Errorf("email: %s: %w", data.Email(), account.ErrEmailTaken)
	}
	now := time.Now()
	created := account.Hydrate(
		r.nextID,
		data.Role(),
		data.FirstName(), data.MiddleName(), data.LastName(), data.Email(),
		data.OfficeID(), data.CourseID(), data.YearID(),
		now, now,
	)
	r.nextID++
	r.byMail[key] = created
	return created, nil
}

func (r *InmemAccountRepository) UpdateFields(ctx context.Context, id uint, patch account.Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, a := range r.byMail {
		if a.ID() != id {
			continue
		}
		r.byMail[key] = applyPatch(a, patch)
		return nil
	}
	return fmt.Errorf("id: %d: %w", id, account.ErrAccountNotFound)
}

func (r *InmemAccountRepository) DeleteByEmail(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(strings.TrimSpace(email))
	if _, found := r.byMail[key]; !found {
		return fmt.Errorf("email: %s: %w", email, account.ErrAccountNotFound)
	}
	delete(r.byMail, key)
	return nil
}

func applyPatch(a account.Account, patch account.Patch) account.Account {
	value := func(f account.Field) any {
		if v, ok := patch[f]; ok {
			return v
		}
		return a.FieldValue(f)
	}
	asString := func(v any) string {
		s, _ := v.(string)
		return s
	}
	asRef := func(v any) *uint {
		id, _ := v.(*uint)
		return id
	}
	return account.Hydrate(
		a.ID(),
		a.Role(),
		asString(value(account.FirstNameField)),
		asString(value(account.MiddleNameField)),
		asString(value(account.LastNameField)),
		a.Email(),
		asRef(value(account.OfficeField)),
		asRef(value(account.CourseField)),
		asRef(value(account.YearField)),
		a.CreatedAt(),
		time.Now(),
	)
}
