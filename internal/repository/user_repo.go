package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"boxmgr/internal/model"
)

const pgUniqueViolation = "23505"

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, is_admin, created_at
		 FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, is_admin, created_at
		 FROM users WHERE lower(username) = lower($1)`, strings.TrimSpace(username)).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by username: %w", err)
	}
	return u, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE lower(username) = lower($1))`,
		strings.TrimSpace(username)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check username exists: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) Create(ctx context.Context, username string, passwordHash string, isAdmin bool) (model.User, error) {
	u := model.User{Username: strings.TrimSpace(username), PasswordHash: passwordHash, IsAdmin: isAdmin}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, is_admin)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		u.Username, u.PasswordHash, u.IsAdmin).
		Scan(&u.ID, &u.CreatedAt)
	if isUniqueViolation(err) {
		return model.User{}, model.ErrUsernameTaken
	}
	if err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// Update applies a partial update. A demotion goes through the same
// admin-guarded transaction as Delete, so the sole remaining admin
// cannot lose the flag even under concurrent requests.
func (r *UserRepository) Update(ctx context.Context, id int64, upd model.UserUpdate) error {
	if upd.Empty() {
		return model.ErrInvalidInput
	}

	sets := make([]string, 0, 3)
	args := []any{id}

	if upd.Username != nil {
		args = append(args, strings.TrimSpace(*upd.Username))
		sets = append(sets, fmt.Sprintf("username = $%d", len(args)))
	}
	if upd.PasswordHash != nil {
		args = append(args, *upd.PasswordHash)
		sets = append(sets, fmt.Sprintf("password_hash = $%d", len(args)))
	}
	if upd.IsAdmin != nil {
		args = append(args, *upd.IsAdmin)
		sets = append(sets, fmt.Sprintf("is_admin = $%d", len(args)))
	}

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`

	if upd.IsAdmin != nil && !*upd.IsAdmin {
		err := r.execGuardingLastAdmin(ctx, id, query, args)
		if isUniqueViolation(err) {
			return model.ErrUsernameTaken
		}
		return err
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if isUniqueViolation(err) {
		return model.ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// Delete removes a user unless it is the last admin.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return r.execGuardingLastAdmin(ctx, id, `DELETE FROM users WHERE id = $1`, []any{id})
}

// execGuardingLastAdmin runs a removal statement inside a transaction
// that first locks every admin row. A bare count subquery is not enough
// under READ COMMITTED: two statements deleting the last two admins each
// snapshot count=2, touch disjoint rows and both commit. Holding the
// row locks serializes the guards instead; the second waits, recounts
// against the committed state and is refused. Admin rows are locked in
// id order so concurrent guards cannot deadlock.
func (r *UserRepository) execGuardingLastAdmin(ctx context.Context, id int64, stmt string, args []any) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var admins int
		err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM (
			     SELECT id FROM users WHERE is_admin ORDER BY id FOR UPDATE
			 ) locked`).Scan(&admins)
		if err != nil {
			return fmt.Errorf("lock admin rows: %w", err)
		}

		var isAdmin bool
		err = tx.QueryRow(ctx,
			`SELECT is_admin FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&isAdmin)
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("inspect user: %w", err)
		}
		if isAdmin && admins <= 1 {
			return model.ErrLastAdmin
		}

		if _, err := tx.Exec(ctx, stmt, args...); err != nil {
			return fmt.Errorf("remove admin flag or user: %w", err)
		}
		return nil
	})
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, username, password_hash, is_admin, created_at
		 FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func (r *UserRepository) CountAdmins(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE is_admin`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return count, nil
}

// PromoteAllToAdmin is the one-time repair for databases created before
// the is_admin column existed: if users exist but no admin does, every
// user is promoted. Called once at startup, never during requests.
func (r *UserRepository) PromoteAllToAdmin(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_admin = TRUE
		 WHERE NOT EXISTS (SELECT 1 FROM users a WHERE a.is_admin)`)
	if err != nil {
		return 0, fmt.Errorf("promote users to admin: %w", err)
	}
	return tag.RowsAffected(), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
