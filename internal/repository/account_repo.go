package repository

import (
	"context"

	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/internal/query"
)

type AccountRepository struct {
	db DBTX
}

func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = "id, email, username, password_hash, role, status, verified, created_at, updated_at"

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	sql := `
		INSERT INTO accounts (email, username, password_hash, role, status, verified)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(ctx, sql,
		account.Email,
		account.Username,
		account.PasswordHash,
		account.Role,
		account.Status,
		account.Verified,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	sql := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanAccount(r.db.QueryRow(ctx, sql, id))
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	sql := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`
	return r.scanAccount(r.db.QueryRow(ctx, sql, username))
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	sql := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.scanAccount(r.db.QueryRow(ctx, sql, email))
}

func (r *AccountRepository) UpdateStatus(ctx context.Context, id int64, status string) (*models.Account, error) {
	sql := `
		UPDATE accounts
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + accountColumns
	return r.scanAccount(r.db.QueryRow(ctx, sql, id, status))
}

func (r *AccountRepository) SetVerified(ctx context.Context, id int64, verified bool) (*models.Account, error) {
	sql := `
		UPDATE accounts
		SET verified = $2,
			status = CASE WHEN $2 AND status = 'pending' THEN 'active' ELSE status END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + accountColumns
	return r.scanAccount(r.db.QueryRow(ctx, sql, id, verified))
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1
	`, id, passwordHash)
	return err
}

type AccountListFilter struct {
	Role   string
	Status string
	Limit  int
	Offset int
}

// List serves the admin moderation screen. The filter set is open-ended, so
// the statement is assembled by the query builder instead of hand-written SQL.
func (r *AccountRepository) List(ctx context.Context, filter AccountListFilter) ([]models.Account, int, error) {
	where := map[string]any{}
	if filter.Role != "" {
		where["role"] = filter.Role
	}
	if filter.Status != "" {
		where["status"] = filter.Status
	}

	countSQL, countArgs, err := query.Statement{
		Action: query.Count,
		Table:  "accounts",
		Where:  where,
	}.Build()
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listSQL, listArgs, err := query.Statement{
		Action:   query.Read,
		Table:    "accounts",
		Columns:  []string{"id", "email", "username", "password_hash", "role", "status", "verified", "created_at", "updated_at"},
		Where:    where,
		OrderBy:  "created_at",
		Desc:     true,
		Sortable: []string{"created_at", "username", "email"},
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}.Build()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	accounts := make([]models.Account, 0)
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(
			&account.ID,
			&account.Email,
			&account.Username,
			&account.PasswordHash,
			&account.Role,
			&account.Status,
			&account.Verified,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return accounts, total, nil
}

func (r *AccountRepository) scanAccount(row interface{ Scan(dest ...any) error }) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.Username,
		&account.PasswordHash,
		&account.Role,
		&account.Status,
		&account.Verified,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}
