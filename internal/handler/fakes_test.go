package handler_test

// In-memory fakes for the handler store interfaces. They mirror the
// repository semantics closely enough for the handler contract: the token
// fake guards its state with a mutex and rotates through a single
// check-and-transition, so concurrent refreshes of one token see exactly
// one winner, the same guarantee the SQL transaction gives.

import (
	"context"
	"sync"
	"time"

	"github.com/nvoxel/auth-service/internal/model"
	"github.com/nvoxel/auth-service/internal/queue"
	"github.com/nvoxel/auth-service/internal/repository"
	"github.com/nvoxel/auth-service/internal/utils"
)

type fakeUsers struct {
	mu   sync.Mutex
	seq  uint64
	rows map[uint64]*model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{rows: map[uint64]*model.User{}}
}

func (f *fakeUsers) Create(_ context.Context, email, name, password string, role model.Role, cost int) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if u.Email == email && u.DeletedAt == nil {
			return model.User{}, repository.ErrEmailExists
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	f.seq++
	now := time.Now().UTC()
	u := &model.User{
		ID: f.seq, Email: email, Name: name, PasswordHash: hash,
		Role: role, CreatedAt: now, UpdatedAt: now,
	}
	f.rows[u.ID] = u
	return *u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.rows {
		if u.Email == email && u.DeletedAt == nil {
			return *u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok || u.DeletedAt != nil {
		return model.User{}, repository.ErrNotFound
	}
	return *u, nil
}

func (f *fakeUsers) List(_ context.Context) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for i := uint64(1); i <= f.seq; i++ {
		if u, ok := f.rows[i]; ok && u.DeletedAt == nil {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) UpdateRole(_ context.Context, id uint64, role model.Role) error {
	return f.mutate(id, func(u *model.User) { u.Role = role })
}

func (f *fakeUsers) MarkEmailVerified(_ context.Context, id uint64) error {
	return f.mutate(id, func(u *model.User) { u.EmailVerified = true })
}

func (f *fakeUsers) SoftDelete(_ context.Context, id uint64) error {
	now := time.Now().UTC()
	return f.mutate(id, func(u *model.User) { u.DeletedAt = &now })
}

func (f *fakeUsers) mutate(id uint64, fn func(*model.User)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.rows[id]
	if !ok || u.DeletedAt != nil {
		return repository.ErrNotFound
	}
	fn(u)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

type tokenRow struct {
	id         uint64
	userID     uint64
	hash       string
	issuedAt   time.Time
	expiresAt  time.Time
	revokedAt  *time.Time
	replacedBy *uint64
}

type fakeTokens struct {
	mu   sync.Mutex
	seq  uint64
	rows map[string]*tokenRow // keyed by token hash
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{rows: map[string]*tokenRow{}}
}

func (f *fakeTokens) Store(_ context.Context, userID uint64, tokenHash string, exp time.Time) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(userID, tokenHash, exp), nil
}

func (f *fakeTokens) insert(userID uint64, tokenHash string, exp time.Time) uint64 {
	f.seq++
	f.rows[tokenHash] = &tokenRow{
		id: f.seq, userID: userID, hash: tokenHash,
		issuedAt: time.Now().UTC(), expiresAt: exp,
	}
	return f.seq
}

func (f *fakeTokens) Rotate(_ context.Context, oldHash, newHash string, exp time.Time) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[oldHash]
	if !ok {
		return 0, repository.ErrTokenNotFound
	}
	if row.revokedAt != nil {
		return row.userID, repository.ErrTokenReused
	}
	if time.Now().UTC().After(row.expiresAt) {
		return row.userID, repository.ErrTokenExpired
	}
	newID := f.insert(row.userID, newHash, exp)
	now := time.Now().UTC()
	row.revokedAt = &now
	row.replacedBy = &newID
	return row.userID, nil
}

func (f *fakeTokens) Revoke(_ context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row, ok := f.rows[tokenHash]; ok && row.revokedAt == nil {
		now := time.Now().UTC()
		row.revokedAt = &now
	}
	return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	for _, row := range f.rows {
		if row.userID == userID && row.revokedAt == nil {
			row.revokedAt = &now
		}
	}
	return nil
}

func (f *fakeTokens) ListActiveForUser(_ context.Context, userID uint64) ([]model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	var out []model.RefreshToken
	for _, row := range f.rows {
		if row.userID == userID && row.revokedAt == nil && row.expiresAt.After(now) {
			out = append(out, model.RefreshToken{
				ID: row.id, UserID: row.userID, TokenHash: row.hash,
				IssuedAt: row.issuedAt, ExpiresAt: row.expiresAt,
			})
		}
	}
	return out, nil
}

func (f *fakeTokens) activeCount(userID uint64) int {
	toks, _ := f.ListActiveForUser(context.Background(), userID)
	return len(toks)
}

// fakeEvents records published security events for assertions.
type fakeEvents struct {
	mu     sync.Mutex
	events []queue.SecurityEvent
}

func (f *fakeEvents) Publish(_ context.Context, ev queue.SecurityEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeEvents) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, ev := range f.events {
		out = append(out, ev.Kind)
	}
	return out
}
