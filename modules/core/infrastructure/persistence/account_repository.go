package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clinix-uz/clinix-sdk/modules/core/domain/aggregates/account"
	"github.com/clinix-uz/clinix-sdk/modules/core/infrastructure/persistence/models"
	"github.com/clinix-uz/clinix-sdk/pkg/composables"
	"github.com/clinix-uz/clinix-sdk/pkg/repo"
)

const (
	accountFindQuery = `
        SELECT
            a.id,
            a.role,
            a.first_name,
            a.middle_name,
            a.last_name,
            a.email,
            a.office_id,
            a.course_id,
            a.year_id,
            a.created_at,
            a.updated_at
        FROM accounts a`

	accountCountQuery = `SELECT COUNT(a.id) FROM accounts a`

	accountInsertQuery = `
        INSERT INTO accounts (role, first_name, middle_name, last_name, email, office_id, course_id, year_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id`

	accountDeleteByEmailQuery = `DELETE FROM accounts WHERE lower(email) = lower($1)`
)

type PgAccountRepository struct {
	fieldMap map[account.Field]string
}

func NewAccountRepository() account.Repository {
	return &PgAccountRepository{
		fieldMap: map[account.Field]string{
			account.FirstNameField:  "first_name",
			account.MiddleNameField: "middle_name",
			account.LastNameField:   "last_name",
			account.OfficeField:     "office_id",
			account.CourseField:     "course_id",
			account.YearField:       "year_id",
		},
	}
}

func (g *PgAccountRepository) buildFilters(params *account.FindParams) ([]string, []interface{}) {
	var where []string
	var args []interface{}

	if params.Role != "" {
		args = append(args, string(params.Role))
		where = append(where, fmt.Sprintf("a.role = $%d", len(args)))
	}

	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		index := len(args)
		where = append(where, fmt.Sprintf(
			"(a.first_name ILIKE $%d OR a.last_name ILIKE $%d OR a.middle_name ILIKE $%d OR a.email ILIKE $%d)",
			index, index, index, index,
		))
	}

	return where, args
}

func (g *PgAccountRepository) queryAccounts(ctx context.Context, query string, args ...interface{}) ([]account.Account, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []account.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(
			&a.ID,
			&a.Role,
			&a.FirstName,
			&a.MiddleName,
			&a.LastName,
			&a.Email,
			&a.OfficeID,
			&a.CourseID,
			&a.YearID,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		entity, err := ToDomainAccount(&a)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, entity)
	}
	return accounts, rows.Err()
}

func (g *PgAccountRepository) GetAll(ctx context.Context) ([]account.Account, error) {
	accounts, err := g.queryAccounts(ctx, accountFindQuery+" ORDER BY a.id")
	if err != nil {
		return nil, errors.Wrap(err, "failed to get all accounts")
	}
	return accounts, nil
}

func (g *PgAccountRepository) GetPaginated(ctx context.Context, params *account.FindParams) ([]account.Account, error) {
	where, args := g.buildFilters(params)
	query := repo.Join(
		accountFindQuery,
		repo.JoinWhere(where...),
		"ORDER BY a.id",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	accounts, err := g.queryAccounts(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get paginated accounts")
	}
	return accounts, nil
}

func (g *PgAccountRepository) Count(ctx context.Context, params *account.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}

	where, args := g.buildFilters(params)
	query := repo.Join(accountCountQuery, repo.JoinWhere(where...))

	var count int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count accounts")
	}
	return count, nil
}

func (g *PgAccountRepository) GetByID(ctx context.Context, id uint) (account.Account, error) {
	accounts, err := g.queryAccounts(ctx, accountFindQuery+" WHERE a.id = $1", id)
	if err != nil {
		return account.Account{}, errors.Wrap(err, fmt.Sprintf("failed to query account with id: %d", id))
	}
	if len(accounts) == 0 {
		return account.Account{}, fmt.Errorf("id: %d: %w", id, account.ErrAccountNotFound)
	}
	return accounts[0], nil
}

func (g *PgAccountRepository) GetByEmail(ctx context.Context, email string) (account.Account, error) {
	accounts, err := g.queryAccounts(ctx, accountFindQuery+" WHERE lower(a.email) = lower($1)", email)
	if err != nil {
		return account.Account{}, errors.Wrap(err, fmt.Sprintf("failed to query account with email: %s", email))
	}
	if len(accounts) == 0 {
		return account.Account{}, fmt.Errorf("email: %s: %w", email, account.ErrAccountNotFound)
	}
	return accounts[0], nil
}

func (g *PgAccountRepository) Create(ctx context.Context, data account.Account) (account.Account, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return account.Account{}, errors.Wrap(err, "failed to get transaction")
	}

	dbAccount := toDBAccount(data)
	now := time.Now()

	var id uint
	if err := tx.QueryRow(
		ctx,
		accountInsertQuery,
		dbAccount.Role,
		dbAccount.FirstName,
		dbAccount.MiddleName,
		dbAccount.LastName,
		dbAccount.Email,
		dbAccount.OfficeID,
		dbAccount.CourseID,
		dbAccount.YearID,
		now,
		now,
	).Scan(&id); err != nil {
		return account.Account{}, mapAccountPgError(err)
	}

	dbAccount.ID = id
	dbAccount.CreatedAt = now
	dbAccount.UpdatedAt = now
	return ToDomainAccount(dbAccount)
}

func (g *PgAccountRepository) UpdateFields(ctx context.Context, id uint, patch account.Patch) error {
	if len(patch) == 0 {
		return nil
	}

	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	var sets []string
	var args []interface{}
	// ComparableFields order keeps the generated SQL deterministic.
	for _, f := range account.ComparableFields {
		value, ok := patch[f]
		if !ok {
			continue
		}
		column, ok := g.fieldMap[f]
		if !ok {
			return fmt.Errorf("unknown patch field: %v", f)
		}
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	args = append(args, time.Now())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)

	query := fmt.Sprintf("UPDATE accounts SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return mapAccountPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("id: %d: %w", id, account.ErrAccountNotFound)
	}
	return nil
}

func (g *PgAccountRepository) DeleteByEmail(ctx context.Context, email string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	tag, err := tx.Exec(ctx, accountDeleteByEmailQuery, email)
	if err != nil {
		return errors.Wrap(err, "failed to delete account")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("email: %s: %w", email, account.ErrAccountNotFound)
	}
	return nil
}

// mapAccountPgError translates constraint violations into domain errors.
func mapAccountPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
		return fmt.Errorf("%s: %w", pgErr.ConstraintName, account.ErrEmailTaken)
	}
	return err
}
