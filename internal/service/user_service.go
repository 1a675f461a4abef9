package service

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"boxmgr/internal/model"
)

// UserService implements the admin-gated user lifecycle. The last-admin
// invariant itself is enforced atomically by the store; this layer adds
// input normalization and the public projections.
type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) List(ctx context.Context) ([]model.PublicUser, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	public := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}
	return public, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (model.PublicUser, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

func (s *UserService) Create(ctx context.Context, username string, password string, isAdmin bool) (model.PublicUser, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return model.PublicUser{}, model.ErrInvalidInput
	}

	// The unique index is the real guard; this check just gives a clean
	// conflict error without consuming a bcrypt round.
	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return model.PublicUser{}, err
	}
	if exists {
		return model.PublicUser{}, model.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return model.PublicUser{}, err
	}

	user, err := s.users.Create(ctx, username, string(hash), isAdmin)
	if err != nil {
		return model.PublicUser{}, err
	}

	return user.Public(), nil
}

// Update applies a partial update. A blank password means "keep the
// current one". Demoting the last admin fails with ErrLastAdmin, the
// same refusal as delete.
func (s *UserService) Update(ctx context.Context, id int64, req model.UpdateUserRequest) (model.PublicUser, error) {
	upd := model.UserUpdate{IsAdmin: req.IsAdmin}

	if req.Username != nil {
		trimmed := strings.TrimSpace(*req.Username)
		if trimmed == "" {
			return model.PublicUser{}, model.ErrInvalidInput
		}
		upd.Username = &trimmed
	}

	if req.Password != nil && strings.TrimSpace(*req.Password) != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcryptCost)
		if err != nil {
			return model.PublicUser{}, err
		}
		hashed := string(hash)
		upd.PasswordHash = &hashed
	}

	if upd.Empty() {
		return model.PublicUser{}, model.ErrInvalidInput
	}

	if err := s.users.Update(ctx, id, upd); err != nil {
		return model.PublicUser{}, err
	}

	return s.Get(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.users.Delete(ctx, id)
}
