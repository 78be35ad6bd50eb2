package sqldb

import (
	"context"
	"time"

	"github.com/SimpnicServerTeam/scs-link-auth/internal/db"
	"github.com/SimpnicServerTeam/scs-link-auth/internal/models"
	"github.com/SimpnicServerTeam/scs-link-auth/internal/repository"
)

const magicLinkColumns = "id, user_id, token, is_used, expires_at, created_at, updated_at"

var _ repository.MagicLinkRepository = (*MagicLinkRepository)(nil)

// MagicLinkRepository implements repository.MagicLinkRepository through the
// gateway. Consumption is a single conditional update so concurrent callers
// cannot both win the single use.
type MagicLinkRepository struct {
	gw *db.Gateway
}

// NewMagicLinkRepository creates a gateway-backed magic-link repository.
func NewMagicLinkRepository(gw *db.Gateway) *MagicLinkRepository {
	return &MagicLinkRepository{gw: gw}
}

func (r *MagicLinkRepository) Create(ctx context.Context, userID, token string, expiresAt time.Time) (*models.MagicLink, error) {
	id := r.gw.GenerateID()
	now := r.gw.Now()

	_, err := r.gw.Run(ctx,
		`INSERT INTO magic_links (id, user_id, token, is_used, expires_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, userID, token, false, expiresAt, now, now)
	if err != nil {
		return nil, err
	}

	return &models.MagicLink{
		ID:        id,
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (r *MagicLinkRepository) FindByToken(ctx context.Context, token string, includeExpired bool) (*models.MagicLink, error) {
	query := `SELECT ` + magicLinkColumns + ` FROM magic_links WHERE token = ? AND is_used = ?`
	args := []any{token, false}
	if !includeExpired {
		query += ` AND expires_at > ?`
		args = append(args, r.gw.Now())
	}

	row, ok, err := r.gw.First(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repository.ErrMagicLinkNotFound
	}
	return buildMagicLink(row), nil
}

func (r *MagicLinkRepository) MarkUsed(ctx context.Context, token string) (bool, error) {
	res, err := r.gw.Run(ctx,
		`UPDATE magic_links SET is_used = ?, updated_at = ? WHERE token = ? AND is_used = ?`,
		true, r.gw.Now(), token, false)
	if err != nil {
		return false, err
	}
	return res.Changes > 0, nil
}

func (r *MagicLinkRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.gw.Run(ctx,
		`DELETE FROM magic_links WHERE expires_at <= ?`, r.gw.Now())
	if err != nil {
		return 0, err
	}
	return res.Changes, nil
}

func buildMagicLink(row db.Row) *models.MagicLink {
	return &models.MagicLink{
		ID:        fieldString(row, "id"),
		UserID:    fieldString(row, "user_id"),
		Token:     fieldString(row, "token"),
		IsUsed:    fieldBool(row, "is_used"),
		ExpiresAt: fieldTime(row, "expires_at"),
		CreatedAt: fieldTime(row, "created_at"),
		UpdatedAt: fieldTime(row, "updated_at"),
	}
}
