package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/nvoxel/auth-service/internal/model"
	"github.com/nvoxel/auth-service/internal/utils"
)

// UserRepo provides persistence for user accounts.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

const userColumns = "id,email,name,password_hash,role,email_verified,deleted_at,created_at,updated_at"

// Create hashes the password and inserts a new user, returning the stored
// row. Emails are normalized to lower case before insertion so the unique
// index enforces case-insensitive uniqueness.
func (r *UserRepo) Create(ctx context.Context, email, name, password string, role model.Role, cost int) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, name, password_hash, role) VALUES (?,?,?,?)",
		email, name, hash, string(role))
	if err != nil {
		// MySQL error 1062 = duplicate entry for a unique key
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByEmail fetches an active user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? AND deleted_at IS NULL LIMIT 1", email))
}

// GetByID fetches an active user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? AND deleted_at IS NULL LIMIT 1", id))
}

// List returns all active users ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE deleted_at IS NULL ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpdateRole changes a user's role.
func (r *UserRepo) UpdateRole(ctx context.Context, id uint64, role model.Role) error {
	return r.exec(ctx,
		"UPDATE users SET role=?, updated_at=UTC_TIMESTAMP() WHERE id=? AND deleted_at IS NULL",
		string(role), id)
}

// MarkEmailVerified flips the email_verified flag.
func (r *UserRepo) MarkEmailVerified(ctx context.Context, id uint64) error {
	return r.exec(ctx,
		"UPDATE users SET email_verified=1, updated_at=UTC_TIMESTAMP() WHERE id=? AND deleted_at IS NULL", id)
}

// SoftDelete marks a user as deleted. The row stays for audit purposes but
// no query in this repository will return it afterwards.
func (r *UserRepo) SoftDelete(ctx context.Context, id uint64) error {
	return r.exec(ctx,
		"UPDATE users SET deleted_at=UTC_TIMESTAMP(), updated_at=UTC_TIMESTAMP() WHERE id=? AND deleted_at IS NULL", id)
}

func (r *UserRepo) exec(ctx context.Context, query string, args ...interface{}) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

func scanUser(s rowScanner) (model.User, error) {
	var (
		u         model.User
		role      string
		deletedAt sql.NullTime
	)
	err := s.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role,
		&u.EmailVerified, &deletedAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Role = model.Role(role)
	if deletedAt.Valid {
		t := deletedAt.Time
		u.DeletedAt = &t
	}
	return u, nil
}
