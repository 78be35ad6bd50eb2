package sqldb

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/SimpnicServerTeam/scs-link-auth/internal/db"
	"github.com/SimpnicServerTeam/scs-link-auth/internal/models"
	"github.com/SimpnicServerTeam/scs-link-auth/internal/repository"
)

const tokenColumns = "id, user_id, token, type, is_revoked, expires_at, metadata, created_at, updated_at"

var _ repository.TokenRepository = (*TokenRepository)(nil)

// TokenRepository implements repository.TokenRepository through the gateway.
type TokenRepository struct {
	gw *db.Gateway
}

// NewTokenRepository creates a gateway-backed token repository.
func NewTokenRepository(gw *db.Gateway) *TokenRepository {
	return &TokenRepository{gw: gw}
}

func (r *TokenRepository) Create(ctx context.Context, params repository.NewTokenParams) (*models.Token, error) {
	id := r.gw.GenerateID()
	now := r.gw.Now()

	var metadata any
	if params.Metadata != nil {
		encoded, err := json.Marshal(params.Metadata)
		if err != nil {
			return nil, fmt.Errorf("encode token metadata: %w", err)
		}
		metadata = string(encoded)
	}

	_, err := r.gw.Run(ctx,
		`INSERT INTO tokens (id, user_id, token, type, is_revoked, expires_at, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, params.UserID, params.Token, params.Type, false, params.ExpiresAt, metadata, now, now)
	if err != nil {
		return nil, err
	}

	return &models.Token{
		ID:        id,
		UserID:    params.UserID,
		Token:     params.Token,
		Type:      params.Type,
		ExpiresAt: params.ExpiresAt,
		Metadata:  params.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (r *TokenRepository) FindByToken(ctx context.Context, token string) (*models.Token, error) {
	row, ok, err := r.gw.First(ctx,
		`SELECT `+tokenColumns+` FROM tokens WHERE token = ?`, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repository.ErrTokenNotFound
	}
	return buildToken(row), nil
}

func (r *TokenRepository) Revoke(ctx context.Context, token string) (bool, error) {
	res, err := r.gw.Run(ctx,
		`UPDATE tokens SET is_revoked = ?, updated_at = ? WHERE token = ? AND is_revoked = ?`,
		true, r.gw.Now(), token, false)
	if err != nil {
		return false, err
	}
	return res.Changes > 0, nil
}

func (r *TokenRepository) RevokeAllForUser(ctx context.Context, userID, tokenType string) (int64, error) {
	query := `UPDATE tokens SET is_revoked = ?, updated_at = ? WHERE user_id = ? AND is_revoked = ?`
	args := []any{true, r.gw.Now(), userID, false}
	if tokenType != "" {
		query += ` AND type = ?`
		args = append(args, tokenType)
	}

	res, err := r.gw.Run(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.Changes, nil
}

func (r *TokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.gw.Run(ctx,
		`DELETE FROM tokens WHERE expires_at <= ?`, r.gw.Now())
	if err != nil {
		return 0, err
	}
	return res.Changes, nil
}

func buildToken(row db.Row) *models.Token {
	t := &models.Token{
		ID:        fieldString(row, "id"),
		UserID:    fieldString(row, "user_id"),
		Token:     fieldString(row, "token"),
		Type:      fieldString(row, "type"),
		IsRevoked: fieldBool(row, "is_revoked"),
		ExpiresAt: fieldTime(row, "expires_at"),
		CreatedAt: fieldTime(row, "created_at"),
		UpdatedAt: fieldTime(row, "updated_at"),
	}
	if raw := fieldString(row, "metadata"); raw != "" {
		// Metadata written by this repository is always a JSON object;
		// anything else is left out of the model rather than failing a read.
		var decoded map[string]any
		if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
			t.Metadata = decoded
		}
	}
	return t
}
