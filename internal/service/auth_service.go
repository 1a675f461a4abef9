package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"boxmgr/internal/model"
	"boxmgr/internal/token"
)

const bcryptCost = 12

// UserStore is the user-record store the auth core consumes. The pgx
// implementation lives in internal/repository; tests substitute a mock.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, username string, passwordHash string, isAdmin bool) (model.User, error)
	Update(ctx context.Context, id int64, upd model.UserUpdate) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.User, error)
	Count(ctx context.Context) (int, error)
}

// AuthService verifies credentials and mints session tokens.
type AuthService struct {
	users UserStore
	codec *token.Codec
}

func NewAuthService(users UserStore, codec *token.Codec) *AuthService {
	return &AuthService{users: users, codec: codec}
}

// Login authenticates a username/password pair and returns the identity
// with a freshly issued session token. Unknown usernames and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username string, password string) (model.Identity, string, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, model.ErrUserNotFound) {
		return model.Identity{}, "", model.ErrInvalidCredentials
	}
	if err != nil {
		return model.Identity{}, "", err
	}

	if !s.verifyPassword(ctx, user, password) {
		return model.Identity{}, "", model.ErrInvalidCredentials
	}

	identity := user.Identity()
	tok, err := s.codec.Issue(identity)
	if err != nil {
		return model.Identity{}, "", err
	}

	return identity, tok, nil
}

// verifyPassword checks a bcrypt hash, falling back to a plaintext
// compare for rows imported from the pre-hashing database. A successful
// plaintext login is rehashed in place so the legacy value disappears.
func (s *AuthService) verifyPassword(ctx context.Context, user model.User, password string) bool {
	if strings.HasPrefix(user.PasswordHash, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
	}

	if subtleCompare(user.PasswordHash, password) {
		s.rehash(ctx, user, password)
		return true
	}

	return false
}

func (s *AuthService) rehash(ctx context.Context, user model.User, password string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		slog.Error("rehash legacy password", "user_id", user.ID, "error", err)
		return
	}

	hashed := string(hash)
	if err := s.users.Update(ctx, user.ID, model.UserUpdate{PasswordHash: &hashed}); err != nil {
		slog.Error("store rehashed password", "user_id", user.ID, "error", err)
		return
	}

	slog.Info("migrated legacy plaintext password", "user_id", user.ID)
}

// Setup creates the first admin account. It is only available while the
// user table is empty; afterwards user creation goes through the
// admin-gated user management API.
func (s *AuthService) Setup(ctx context.Context, username string, password string) (model.PublicUser, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return model.PublicUser{}, err
	}
	if count > 0 {
		return model.PublicUser{}, model.ErrSetupComplete
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return model.PublicUser{}, err
	}

	user, err := s.users.Create(ctx, username, string(hash), true)
	if err != nil {
		return model.PublicUser{}, err
	}

	slog.Info("initial admin created", "username", user.Username)
	return user.Public(), nil
}

func (s *AuthService) HasUsers(ctx context.Context) (bool, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func subtleCompare(a string, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
