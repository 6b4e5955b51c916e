package repository

import (
	"context"
	"time"

	"github.com/sabirama/tutorial-hub-sub000/internal/models"
)

// TokenRepository is the session store behind the auth middleware: every
// issued token is recorded, and a token is only honored while its row is
// unrevoked and unexpired.
type TokenRepository struct {
	db DBTX
}

func NewTokenRepository(db DBTX) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(ctx context.Context, accountID int64, tokenID string, expiresAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO auth_tokens (account_id, token_id, expires_at)
		VALUES ($1, $2, $3)
	`, accountID, tokenID, expiresAt)
	return err
}

func (r *TokenRepository) GetByTokenID(ctx context.Context, tokenID string) (*models.AuthToken, error) {
	sql := `
		SELECT id, account_id, token_id, expires_at, revoked_at, created_at
		FROM auth_tokens
		WHERE token_id = $1
	`
	var token models.AuthToken
	err := r.db.QueryRow(ctx, sql, tokenID).Scan(
		&token.ID,
		&token.AccountID,
		&token.TokenID,
		&token.ExpiresAt,
		&token.RevokedAt,
		&token.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *TokenRepository) Revoke(ctx context.Context, tokenID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE auth_tokens
		SET revoked_at = NOW()
		WHERE token_id = $1 AND revoked_at IS NULL
	`, tokenID)
	return err
}

func (r *TokenRepository) RevokeAllForAccount(ctx context.Context, accountID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE auth_tokens
		SET revoked_at = NOW()
		WHERE account_id = $1 AND revoked_at IS NULL
	`, accountID)
	return err
}

// DeleteExpired clears rows whose expiry is long past. Called opportunistically
// at startup; correctness never depends on it.
func (r *TokenRepository) DeleteExpired(ctx context.Context, olderThan time.Duration) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM auth_tokens
		WHERE expires_at < NOW() - make_interval(secs => $1)
	`, olderThan.Seconds())
	return err
}
