package handler

import (
	"context"  // provides context with cancellation for DB calls
	"errors"   // sentinel error matching
	"log/slog" // structured logging
	"net/http" // HTTP status codes and primitives
	"regexp"   // email shape validation
	"strings"  // string manipulation utilities
	"time"     // timeouts for DB calls and token expiries

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/nvoxel/auth-service/internal/config"     // app configuration
	"github.com/nvoxel/auth-service/internal/middleware" // context accessors for verified claims
	"github.com/nvoxel/auth-service/internal/model"      // domain types
	"github.com/nvoxel/auth-service/internal/queue"      // security event payloads
	"github.com/nvoxel/auth-service/internal/repository" // DB repositories and sentinel errors
	"github.com/nvoxel/auth-service/internal/utils"      // hashing, token issuing, response envelope
)

// dbTimeout bounds every store call made by a handler. A store that hangs
// past this fails the request with a 500 instead of blocking the worker.
const dbTimeout = 5 * time.Second

// UserStore is the slice of the user repository the auth endpoints need.
type UserStore interface {
	Create(ctx context.Context, email, name, password string, role model.Role, cost int) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// TokenStore is the refresh token store consumed by the auth endpoints.
type TokenStore interface {
	Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) (uint64, error)
	Rotate(ctx context.Context, oldHash, newHash string, exp time.Time) (uint64, error)
	Revoke(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
	ListActiveForUser(ctx context.Context, userID uint64) ([]model.RefreshToken, error)
}

// EventPublisher emits security events to the broker. Publishing is
// best-effort: handlers fire it on a separate goroutine and never fail a
// request over a broker problem.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.SecurityEvent) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Logger *slog.Logger
	Users  UserStore
	Tokens TokenStore
	Events EventPublisher
}

func NewAuthHandler(cfg config.Config, logger *slog.Logger, u UserStore, t TokenStore, ev EventPublisher) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Logger: logger, Users: u, Tokens: t, Events: ev}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenPayload struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
type userPayload struct {
	ID            uint64    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name,omitempty"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
type authPayload struct {
	User         userPayload  `json:"user"`
	AccessToken  tokenPayload `json:"accessToken"`
	RefreshToken tokenPayload `json:"refreshToken"`
}

// toUserPayload strips a user down to its public fields. The password hash
// never crosses this boundary.
func toUserPayload(u model.User) userPayload {
	return userPayload{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          string(u.Role),
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt.UTC(),
		UpdatedAt:     u.UpdatedAt.UTC(),
	}
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Register: create user and return tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, utils.CodeValidation, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if !emailRe.MatchString(req.Email) {
		return utils.Fail(c, http.StatusBadRequest, utils.CodeValidation, "valid email required")
	}
	if len(req.Password) < 8 {
		return utils.Fail(c, http.StatusBadRequest, utils.CodeValidation, "password must be at least 8 characters")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Email, req.Name, req.Password, model.RoleUser, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return utils.Fail(c, http.StatusConflict, utils.CodeDuplicateEmail, "email already registered")
		}
		h.Logger.Error("register: create user failed", "err", err)
		return utils.Internal(c)
	}

	pair, err := h.issuePair(ctx, u)
	if err != nil {
		h.Logger.Error("register: issue tokens failed", "err", err)
		return utils.Internal(c)
	}

	h.publish(queue.SecurityEvent{
		Kind: queue.EventUserRegistered, UserID: u.ID, Email: u.Email,
		IP: c.RealIP(), OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	return utils.OK(c, http.StatusCreated, "registered", pair)
}

// Login: verify credentials and return a new pair. The failure answer is
// identical for an unknown email and for a wrong password, so the endpoint
// leaks nothing about which half was wrong.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, utils.CodeValidation, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return utils.Fail(c, http.StatusBadRequest, utils.CodeValidation, "email/password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.Fail(c, http.StatusUnauthorized, utils.CodeInvalidCredentials, "invalid credentials")
		}
		h.Logger.Error("login: query failed", "err", err)
		return utils.Internal(c)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return utils.Fail(c, http.StatusUnauthorized, utils.CodeInvalidCredentials, "invalid credentials")
	}

	pair, err := h.issuePair(ctx, u)
	if err != nil {
		h.Logger.Error("login: issue tokens failed", "err", err)
		return utils.Internal(c)
	}

	h.publish(queue.SecurityEvent{
		Kind: queue.EventUserLoggedIn, UserID: u.ID, Email: u.Email,
		IP: c.RealIP(), OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	return utils.OK(c, http.StatusOK, "logged in", pair)
}

// Refresh: exchange a refresh token for a new pair, rotating it. The old
// record and its successor are linked inside one store transaction, so of
// two concurrent calls with the same raw token exactly one succeeds.
// Presenting an already-rotated or revoked token is treated as theft and
// revokes every session of the owning user.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return utils.Fail(c, http.StatusBadRequest, utils.CodeValidation, "refreshToken required")
	}
	oldHash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	newRef, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		h.Logger.Error("refresh: generate token failed", "err", err)
		return utils.Internal(c)
	}
	newHash := utils.HashRefreshRaw(newRef.Raw)

	userID, err := h.Tokens.Rotate(ctx, oldHash, newHash, newRef.Exp)
	switch {
	case errors.Is(err, repository.ErrTokenNotFound):
		return utils.Fail(c, http.StatusUnauthorized, utils.CodeTokenInvalid, "invalid refresh token")
	case errors.Is(err, repository.ErrTokenExpired):
		return utils.Fail(c, http.StatusUnauthorized, utils.CodeTokenExpired, "refresh token expired")
	case errors.Is(err, repository.ErrTokenReused):
		if userID != 0 {
			if revErr := h.Tokens.RevokeAllForUser(ctx, userID); revErr != nil {
				h.Logger.Error("refresh: full revocation failed", "user_id", userID, "err", revErr)
			}
			h.publish(queue.SecurityEvent{
				Kind: queue.EventSessionReuse, UserID: userID,
				IP: c.RealIP(), OccurredAt: time.Now().UTC().Format(time.RFC3339),
			})
		}
		return utils.Fail(c, http.StatusUnauthorized, utils.CodeTokenReuse, "refresh token reuse detected")
	case err != nil:
		h.Logger.Error("refresh: rotate failed", "err", err)
		return utils.Internal(c)
	}

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		// The chain rotated but its owner is gone; retire the fresh token.
		_ = h.Tokens.Revoke(ctx, newHash)
		if errors.Is(err, repository.ErrNotFound) {
			return utils.Fail(c, http.StatusUnauthorized, utils.CodeTokenInvalid, "invalid refresh token")
		}
		h.Logger.Error("refresh: load user failed", "err", err)
		return utils.Internal(c)
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		h.Logger.Error("refresh: issue access failed", "err", err)
		return utils.Internal(c)
	}
	return utils.OK(c, http.StatusOK, "refreshed", authPayload{
		User:         toUserPayload(u),
		AccessToken:  tokenPayload{Token: access.Token, ExpiresAt: access.Exp},
		RefreshToken: tokenPayload{Token: newRef.Raw, ExpiresAt: newRef.Exp},
	})
}

// Logout: revoke the presented refresh token. Revoking an unknown or
// already-revoked token is a no-op success, so the endpoint cannot be used
// to probe which tokens exist.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return utils.Fail(c, http.StatusBadRequest, utils.CodeValidation, "refreshToken required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Tokens.Revoke(ctx, hash); err != nil {
		h.Logger.Error("logout: revoke failed", "err", err)
		return utils.Internal(c)
	}
	return utils.OK(c, http.StatusOK, "logged out", nil)
}

// Me: return the authenticated user's profile. The token may outlive the
// account, so a verified token whose subject no longer exists answers 404.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, utils.CodeTokenInvalid, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.Fail(c, http.StatusNotFound, utils.CodeNotFound, "user not found")
		}
		h.Logger.Error("me: load user failed", "err", err)
		return utils.Internal(c)
	}
	return utils.OK(c, http.StatusOK, "", toUserPayload(u))
}

// issuePair mints an access/refresh pair for a user and persists the
// refresh token hash. The raw refresh token appears in the response exactly
// once and is never stored.
func (h *AuthHandler) issuePair(ctx context.Context, u model.User) (authPayload, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return authPayload{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authPayload{}, err
	}
	if _, err := h.Tokens.Store(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authPayload{}, err
	}
	return authPayload{
		User:         toUserPayload(u),
		AccessToken:  tokenPayload{Token: access.Token, ExpiresAt: access.Exp},
		RefreshToken: tokenPayload{Token: refresh.Raw, ExpiresAt: refresh.Exp},
	}, nil
}

// publish fires a security event without blocking the request path.
func (h *AuthHandler) publish(ev queue.SecurityEvent) {
	if h.Events == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
		defer cancel()
		_ = h.Events.Publish(ctx, ev)
	}()
}
