package sqldb

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/SimpnicServerTeam/scs-link-auth/internal/db"
	"github.com/SimpnicServerTeam/scs-link-auth/internal/models"
	"github.com/SimpnicServerTeam/scs-link-auth/internal/repository"
)

const userColumns = "id, email, name, phone, is_email_verified, last_login, created_at, updated_at"

var _ repository.UserRepository = (*UserRepository)(nil)

// UserRepository implements repository.UserRepository through the gateway.
type UserRepository struct {
	gw *db.Gateway
}

// NewUserRepository creates a gateway-backed user repository.
func NewUserRepository(gw *db.Gateway) *UserRepository {
	return &UserRepository{gw: gw}
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
// Every lookup and write goes through this, which is what makes email
// uniqueness case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserRepository) Create(ctx context.Context, email, name string) (*models.User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, errors.New("email cannot be empty")
	}

	id := r.gw.GenerateID()
	now := r.gw.Now()

	_, err := r.gw.Run(ctx,
		`INSERT INTO users (id, email, name, phone, is_email_verified, last_login, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, NULL, ?, ?)`,
		id, email, name, "", false, now, now)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, repository.ErrDuplicateEmail
		}
		return nil, err
	}

	return &models.User{
		ID:        id,
		Email:     email,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	row, ok, err := r.gw.First(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`,
		NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return buildUser(row), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	row, ok, err := r.gw.First(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return buildUser(row), nil
}

func (r *UserRepository) FindOrCreate(ctx context.Context, email, name string) (*models.User, error) {
	user, err := r.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	user, err = r.Create(ctx, email, name)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		// Lost a create race; the row exists now.
		return r.FindByEmail(ctx, email)
	}
	return user, err
}

func (r *UserRepository) Update(ctx context.Context, id string, patch repository.UserPatch) (*models.User, error) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)

	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, *patch.Phone)
	}
	if patch.IsEmailVerified != nil {
		sets = append(sets, "is_email_verified = ?")
		args = append(args, *patch.IsEmailVerified)
	}
	if len(sets) == 0 {
		return nil, repository.ErrNoValidFields
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, r.gw.Now(), id)

	res, err := r.gw.Run(ctx,
		`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, err
	}
	if res.Changes == 0 {
		return nil, repository.ErrUserNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.gw.Run(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	return res.Changes > 0, nil
}

func (r *UserRepository) MarkVerified(ctx context.Context, id string, at time.Time) error {
	res, err := r.gw.Run(ctx,
		`UPDATE users SET is_email_verified = ?, last_login = ?, updated_at = ? WHERE id = ?`,
		true, at, at, id)
	if err != nil {
		return err
	}
	if res.Changes == 0 {
		return repository.ErrUserNotFound
	}
	return nil
}

func buildUser(row db.Row) *models.User {
	return &models.User{
		ID:              fieldString(row, "id"),
		Email:           fieldString(row, "email"),
		Name:            fieldString(row, "name"),
		Phone:           fieldString(row, "phone"),
		IsEmailVerified: fieldBool(row, "is_email_verified"),
		LastLogin:       fieldTimePtr(row, "last_login"),
		CreatedAt:       fieldTime(row, "created_at"),
		UpdatedAt:       fieldTime(row, "updated_at"),
	}
}
