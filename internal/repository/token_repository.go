package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/nvoxel/auth-service/internal/model"
)

// TokenRepo persists and rotates refresh tokens. Rows hold only the SHA-256
// hash of the raw token. Rotation runs inside a transaction with a row lock
// so the check-and-transition on a single record is mutually exclusive
// across concurrent attempts: of two refreshes presenting the same raw
// token, exactly one commits and the other observes a terminal row.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Store inserts a refresh token hash row and returns its id.
func (r *TokenRepo) Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, exp)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Rotate atomically retires the row matching oldHash and inserts its
// successor with newHash. It returns the owning user id alongside any
// error, because the reuse case needs the id to revoke the user's whole
// session set.
//
// Outcomes:
//   - ErrTokenNotFound: no row matches oldHash.
//   - ErrTokenExpired:  the row exists but expires_at has passed.
//   - ErrTokenReused:   the row was already rotated or revoked; userID is
//     still returned so the caller can invalidate every session.
//   - nil: the old row is marked rotated (revoked_at + replaced_by_token_id
//     set) and the new row is active.
func (r *TokenRepo) Rotate(ctx context.Context, oldHash, newHash string, exp time.Time) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var (
		id        uint64
		userID    uint64
		expiresAt time.Time
		revokedAt sql.NullTime
	)
	// FOR UPDATE serializes concurrent rotations of the same row: the
	// loser blocks here until the winner commits, then sees revoked_at set.
	err = tx.QueryRowContext(ctx,
		"SELECT id, user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash=? LIMIT 1 FOR UPDATE",
		oldHash).Scan(&id, &userID, &expiresAt, &revokedAt)
	if err == sql.ErrNoRows {
		return 0, ErrTokenNotFound
	}
	if err != nil {
		return 0, err
	}
	if revokedAt.Valid {
		return userID, ErrTokenReused
	}
	if time.Now().UTC().After(expiresAt) {
		return userID, ErrTokenExpired
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, newHash, exp)
	if err != nil {
		return userID, err
	}
	newID, err := res.LastInsertId()
	if err != nil {
		return userID, err
	}
	// Guarded update: revoked_at IS NULL re-checks the state even though
	// the row lock already excludes racing writers.
	upd, err := tx.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP(), replaced_by_token_id=? WHERE id=? AND revoked_at IS NULL",
		newID, id)
	if err != nil {
		return userID, err
	}
	n, err := upd.RowsAffected()
	if err != nil {
		return userID, err
	}
	if n == 0 {
		return userID, ErrTokenReused
	}
	if err := tx.Commit(); err != nil {
		return userID, err
	}
	return userID, nil
}

// Revoke marks the row matching tokenHash as revoked. Revoking an unknown
// or already-revoked token is a no-op success, so logout cannot be used to
// probe whether a token exists.
func (r *TokenRepo) Revoke(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE token_hash=? AND revoked_at IS NULL",
		tokenHash)
	return err
}

// RevokeAllForUser revokes every active token of a user in one bulk
// statement. This is the reuse-detection response: it kills all chains, not
// just the one the presented token belongs to.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE user_id=? AND revoked_at IS NULL",
		userID)
	return err
}

// ListActiveForUser returns the user's unrevoked, unexpired tokens. Each
// one is the head of a rotation chain, i.e. a live session.
func (r *TokenRepo) ListActiveForUser(ctx context.Context, userID uint64) ([]model.RefreshToken, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, user_id, token_hash, issued_at, expires_at, revoked_at, replaced_by_token_id "+
			"FROM refresh_tokens WHERE user_id=? AND revoked_at IS NULL AND expires_at > UTC_TIMESTAMP() ORDER BY id",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.RefreshToken
	for rows.Next() {
		var (
			t          model.RefreshToken
			revokedAt  sql.NullTime
			replacedBy sql.NullInt64
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.IssuedAt,
			&t.ExpiresAt, &revokedAt, &replacedBy); err != nil {
			return nil, err
		}
		if revokedAt.Valid {
			rt := revokedAt.Time
			t.RevokedAt = &rt
		}
		if replacedBy.Valid {
			rb := uint64(replacedBy.Int64)
			t.ReplacedByTokenID = &rb
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
