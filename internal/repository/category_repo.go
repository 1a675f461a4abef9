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

const pgForeignKeyViolation = "23503"

type CategoryRepository struct {
	pool *pgxpool.Pool
}

func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, COALESCE(color, ''), created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) Get(ctx context.Context, id int64) (model.Category, error) {
	var c model.Category
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, COALESCE(color, ''), created_at FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Color, &c.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Category{}, model.ErrCategoryNotFound
	}
	if err != nil {
		return model.Category{}, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

func (r *CategoryRepository) Create(ctx context.Context, name string, color string) (model.Category, error) {
	c := model.Category{Name: strings.TrimSpace(name), Color: color}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (name, color) VALUES ($1, NULLIF($2, ''))
		 RETURNING id, created_at`,
		c.Name, c.Color).
		Scan(&c.ID, &c.CreatedAt)
	if isUniqueViolation(err) {
		return model.Category{}, model.ErrCategoryNameTaken
	}
	if err != nil {
		return model.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (r *CategoryRepository) Update(ctx context.Context, id int64, upd model.UpdateCategoryRequest) error {
	if upd.Name == nil && upd.Color == nil {
		return model.ErrInvalidInput
	}

	sets := make([]string, 0, 2)
	args := []any{id}

	if upd.Name != nil {
		args = append(args, strings.TrimSpace(*upd.Name))
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if upd.Color != nil {
		args = append(args, *upd.Color)
		sets = append(sets, fmt.Sprintf("color = NULLIF($%d, '')", len(args)))
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE categories SET `+strings.Join(sets, ", ")+` WHERE id = $1`, args...)
	if isUniqueViolation(err) {
		return model.ErrCategoryNameTaken
	}
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCategoryNotFound
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return model.ErrCategoryInUse
	}
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCategoryNotFound
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
