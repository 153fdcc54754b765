package model

import "time"

// User represents an application user record as stored in the `users`
// table. Each field corresponds to a column. PasswordHash never leaves the
// repository/handler boundary; response types in the handler package carry
// only the public fields.
//
// Fields:
//  ID            – primary key identifier of the user.
//  Email         – unique email address, stored lower-cased.
//  Name          – optional display name.
//  PasswordHash  – bcrypt hashed password.
//  Role          – role name (USER or ADMIN).
//  EmailVerified – whether the address has been confirmed.
//  DeletedAt     – soft-delete timestamp (null while active).
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type User struct {
	ID            uint64     // users.id
	Email         string     // users.email
	Name          string     // users.name
	PasswordHash  string     // users.password_hash
	Role          Role       // users.role
	EmailVerified bool       // users.email_verified
	DeletedAt     *time.Time // users.deleted_at (nullable)
	CreatedAt     time.Time  // users.created_at
	UpdatedAt     time.Time  // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table. Each token
// belongs to a user; only the SHA-256 hash of the raw value is stored.
// ReplacedByTokenID links a rotated token to its successor, forming a
// singly-linked chain rooted at the original login. A row is terminal once
// RevokedAt is set: with a successor it was rotated, without one it was
// revoked by logout or reuse detection.
//
// Fields:
//  ID                – primary key identifier.
//  UserID            – owner of the token.
//  TokenHash         – SHA-256 hex digest of the raw token value.
//  IssuedAt          – when the token was created.
//  ExpiresAt         – expiration timestamp.
//  RevokedAt         – when the token left the active state (null if active).
//  ReplacedByTokenID – id of the successor token after rotation (nullable).
type RefreshToken struct {
	ID                uint64     // refresh_tokens.id
	UserID            uint64     // refresh_tokens.user_id
	TokenHash         string     // refresh_tokens.token_hash
	IssuedAt          time.Time  // refresh_tokens.issued_at
	ExpiresAt         time.Time  // refresh_tokens.expires_at
	RevokedAt         *time.Time // refresh_tokens.revoked_at (nullable)
	ReplacedByTokenID *uint64    // refresh_tokens.replaced_by_token_id (nullable)
}
