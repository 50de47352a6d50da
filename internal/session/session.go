// Package session holds the signed-in admin for the lifetime of the process.
package session

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"jobboard/common/cache"
	"jobboard/internal/api"
	"jobboard/internal/errors"
	"jobboard/internal/models"

	"go.uber.org/zap"
)

// TokenKey is the cache key the bearer token is persisted under.
const TokenKey = "adminToken"

const (
	loginFallback  = "Login failed"
	updateFallback = "Profile update failed"
)

// Result reports the outcome of Login and UpdateProfile. Failures are never
// returned as Go errors.
type Result struct {
	Success bool
	Admin   *models.Admin
	Message string
}

type Store struct {
	client *api.Client
	admins api.AdminAPI
	tokens cache.Cache
	ttl    time.Duration
	logger *zap.Logger

	mu      sync.RWMutex
	admin   *models.Admin
	loading bool
}

// New builds the store and binds the client's 401 handling to Logout. The
// store reports Loading until Init returns.
func New(client *api.Client, admins api.AdminAPI, tokens cache.Cache, ttl time.Duration, logger *zap.Logger) *Store {
	s := &Store{
		client:  client,
		admins:  admins,
		tokens:  tokens,
		ttl:     ttl,
		logger:  logger,
		loading: true,
	}
	client.OnUnauthorized(s.Logout)
	return s
}

// Init restores a persisted token and validates it with a profile fetch.
// A token that fails validation is discarded.
func (s *Store) Init(ctx context.Context) {
	defer s.setLoading(false)

	var token string
	if err := s.tokens.Get(ctx, TokenKey, &token); err != nil {
		if !stderrors.Is(err, cache.ErrNotFound) {
			s.logger.Warn("failed to read persisted token", zap.Error(err))
		}
		return
	}
	if token == "" {
		return
	}

	s.client.SetToken(token)
	admin, err := s.admins.Profile(ctx)
	if err != nil {
		s.logger.Info("persisted token rejected, logging out", zap.Error(err))
		s.Logout()
		return
	}

	s.mu.Lock()
	s.admin = admin
	s.mu.Unlock()
	s.logger.Info("session restored", zap.String("admin", admin.Username))
}

func (s *Store) Login(ctx context.Context, email, password string) Result {
	resp, err := s.admins.Login(ctx, models.Credentials{Email: email, Password: password})
	if err != nil {
		s.logger.Warn("login failed", zap.String("email", email), zap.Error(err))
		return Result{Message: errors.Message(err, loginFallback)}
	}

	if err := s.tokens.Set(ctx, TokenKey, resp.Token, s.ttl); err != nil {
		s.logger.Warn("failed to persist token", zap.Error(err))
	}
	s.client.SetToken(resp.Token)

	admin := resp.Admin
	s.mu.Lock()
	s.admin = &admin
	s.mu.Unlock()

	s.logger.Info("logged in", zap.String("admin", admin.Username), zap.String("role", string(admin.Role)))
	return Result{Success: true, Admin: copyAdmin(&admin)}
}

// Logout drops the session without calling the API.
func (s *Store) Logout() {
	s.mu.Lock()
	s.admin = nil
	s.mu.Unlock()
	s.client.ClearToken()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.tokens.Delete(ctx, TokenKey); err != nil && !stderrors.Is(err, cache.ErrNotFound) {
		s.logger.Warn("failed to clear persisted token", zap.Error(err))
	}
}

func (s *Store) UpdateProfile(ctx context.Context, update models.ProfileUpdate) Result {
	admin, err := s.admins.UpdateProfile(ctx, update)
	if err != nil {
		s.logger.Warn("profile update failed", zap.Error(err))
		return Result{Message: errors.Message(err, updateFallback)}
	}
	if admin == nil {
		return Result{Message: updateFallback}
	}

	s.mu.Lock()
	s.admin = admin
	s.mu.Unlock()
	return Result{Success: true, Admin: copyAdmin(admin)}
}

// HasPermission is false with no admin loaded and always true for a main admin.
func (s *Store) HasPermission(perm models.Permission) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.admin == nil {
		return false
	}
	if s.admin.Role == models.RoleMainAdmin {
		return true
	}
	return s.admin.Permissions.Has(perm)
}

func (s *Store) IsMainAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admin.IsMainAdmin()
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.admin != nil
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Admin returns a copy of the signed-in admin, or nil.
func (s *Store) Admin() *models.Admin {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyAdmin(s.admin)
}

// Require returns a Forbidden error unless the session holds perm.
func (s *Store) Require(perm models.Permission) error {
	if !s.IsAuthenticated() {
		return errors.Unauthorized("not logged in", nil)
	}
	if !s.HasPermission(perm) {
		return errors.Forbidden("missing permission "+string(perm), nil)
	}
	return nil
}

// RequireMainAdmin returns a Forbidden error unless the session is a main admin.
func (s *Store) RequireMainAdmin() error {
	if !s.IsAuthenticated() {
		return errors.Unauthorized("not logged in", nil)
	}
	if !s.IsMainAdmin() {
		return errors.Forbidden("main admin access required", nil)
	}
	return nil
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func copyAdmin(a *models.Admin) *models.Admin {
	if a == nil {
		return nil
	}
	c := *a
	if a.LastLogin != nil {
		t := *a.LastLogin
		c.LastLogin = &t
	}
	return &c
}
