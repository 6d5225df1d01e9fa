package repository

import (
	"context"
	"errors"
	"time"

	"github.com/forgo/aisle/api/internal/database"
	"github.com/forgo/aisle/api/internal/model"
)

// TokenRepository handles refresh token data access
type TokenRepository struct {
	db database.Database
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db database.Database) *TokenRepository {
	return &TokenRepository{db: db}
}

// CreateRefreshToken stores a new refresh token
func (r *TokenRepository) CreateRefreshToken(ctx context.Context, token *model.RefreshToken) error {
	query := `
		CREATE refresh_token CONTENT {
			user: type::record($user),
			token_hash: $token_hash,
			expires_at: <datetime>$expires_at,
			created_on: time::now(),
			revoked: false
		}
	`
	vars := map[string]interface{}{
		"user":       token.UserID,
		"token_hash": token.TokenHash,
		"expires_at": formatTime(token.ExpiresAt),
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	token.ID = created.ID
	token.CreatedOn = created.CreatedOn
	return nil
}

// GetRefreshTokenByHash retrieves a refresh token by its hash
func (r *TokenRepository) GetRefreshTokenByHash(ctx context.Context, hash string) (*model.RefreshToken, error) {
	query := `SELECT * FROM refresh_token WHERE token_hash = $hash LIMIT 1`
	vars := map[string]interface{}{"hash": hash}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	token, data, err := decodeRecord[model.RefreshToken](result, map[string]string{"user": "user_id"})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	token.TokenHash = getString(data, "token_hash")
	return token, nil
}

// ConsumeRefreshToken revokes a live refresh token and reports whether
// this call was the one that revoked it. Of two concurrent refreshes with
// the same token only one sees true.
func (r *TokenRepository) ConsumeRefreshToken(ctx context.Context, hash string) (bool, error) {
	query := `UPDATE refresh_token SET revoked = true WHERE token_hash = $hash AND revoked = false RETURN BEFORE`
	result, err := r.db.Query(ctx, query, map[string]interface{}{"hash": hash})
	if err != nil {
		return false, err
	}
	return len(decodeRecords[model.RefreshToken](result, map[string]string{"user": "user_id"})) > 0, nil
}

// RevokeAllUserTokens revokes all refresh tokens for a user
func (r *TokenRepository) RevokeAllUserTokens(ctx context.Context, userID string) error {
	query := `UPDATE refresh_token SET revoked = true WHERE user = type::record($user)`
	return r.db.Execute(ctx, query, map[string]interface{}{"user": userID})
}

// DeleteExpiredTokens removes expired tokens and tokens revoked more than
// a week ago
func (r *TokenRepository) DeleteExpiredTokens(ctx context.Context) error {
	query := `
		DELETE refresh_token WHERE expires_at < time::now();
		DELETE refresh_token WHERE revoked = true AND created_on < <datetime>$cutoff;
	`
	vars := map[string]interface{}{
		"cutoff": formatTime(time.Now().Add(-7 * 24 * time.Hour)),
	}
	return r.db.Execute(ctx, query, vars)
}
