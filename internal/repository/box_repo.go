package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"boxmgr/internal/model"
)

type BoxRepository struct {
	pool *pgxpool.Pool
}

func NewBoxRepository(pool *pgxpool.Pool) *BoxRepository {
	return &BoxRepository{pool: pool}
}

const boxColumns = `b.id, b.number, b.name, COALESCE(b.location, ''), COALESCE(b.notes, ''),
	b.category_id, b.created_at, b.updated_at`

func scanBoxWithCategory(row pgx.Row) (model.BoxWithCategory, error) {
	var b model.BoxWithCategory
	err := row.Scan(&b.ID, &b.Number, &b.Name, &b.Location, &b.Notes,
		&b.CategoryID, &b.CreatedAt, &b.UpdatedAt, &b.CategoryName, &b.CategoryColor)
	return b, err
}

// List returns boxes joined with their category, optionally filtered to
// one category, ordered the way the overview page renders them.
func (r *BoxRepository) List(ctx context.Context, categoryID *int64) ([]model.BoxWithCategory, error) {
	query := `SELECT ` + boxColumns + `, c.name, COALESCE(c.color, '')
		 FROM boxes b
		 JOIN categories c ON b.category_id = c.id`
	args := []any{}
	if categoryID != nil {
		query += ` WHERE b.category_id = $1`
		args = append(args, *categoryID)
	}
	query += ` ORDER BY c.name, b.number`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list boxes: %w", err)
	}
	defer rows.Close()

	boxes := make([]model.BoxWithCategory, 0)
	for rows.Next() {
		b, err := scanBoxWithCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan box: %w", err)
		}
		boxes = append(boxes, b)
	}
	return boxes, rows.Err()
}

func (r *BoxRepository) Get(ctx context.Context, id int64) (model.BoxWithCategory, error) {
	b, err := scanBoxWithCategory(r.pool.QueryRow(ctx,
		`SELECT `+boxColumns+`, c.name, COALESCE(c.color, '')
		 FROM boxes b
		 JOIN categories c ON b.category_id = c.id
		 WHERE b.id = $1`, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.BoxWithCategory{}, model.ErrBoxNotFound
	}
	if err != nil {
		return model.BoxWithCategory{}, fmt.Errorf("find box: %w", err)
	}
	return b, nil
}

func (r *BoxRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM boxes WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check box exists: %w", err)
	}
	return exists, nil
}

func (r *BoxRepository) Create(ctx context.Context, req model.CreateBoxRequest) (model.Box, error) {
	b := model.Box{
		Number:     req.Number,
		Name:       strings.TrimSpace(req.Name),
		Location:   req.Location,
		Notes:      req.Notes,
		CategoryID: req.CategoryID,
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO boxes (number, name, location, notes, category_id)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5)
		 RETURNING id, created_at, updated_at`,
		b.Number, b.Name, b.Location, b.Notes, b.CategoryID).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if isForeignKeyViolation(err) {
		return model.Box{}, model.ErrCategoryNotFound
	}
	if err != nil {
		return model.Box{}, fmt.Errorf("create box: %w", err)
	}
	return b, nil
}

func (r *BoxRepository) Update(ctx context.Context, id int64, upd model.UpdateBoxRequest) error {
	sets := make([]string, 0, 5)
	args := []any{id}

	if upd.Number != nil {
		args = append(args, *upd.Number)
		sets = append(sets, fmt.Sprintf("number = $%d", len(args)))
	}
	if upd.Name != nil {
		args = append(args, strings.TrimSpace(*upd.Name))
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if upd.Location != nil {
		args = append(args, *upd.Location)
		sets = append(sets, fmt.Sprintf("location = NULLIF($%d, '')", len(args)))
	}
	if upd.Notes != nil {
		args = append(args, *upd.Notes)
		sets = append(sets, fmt.Sprintf("notes = NULLIF($%d, '')", len(args)))
	}
	if upd.CategoryID != nil {
		args = append(args, *upd.CategoryID)
		sets = append(sets, fmt.Sprintf("category_id = $%d", len(args)))
	}

	if len(sets) == 0 {
		return model.ErrInvalidInput
	}
	sets = append(sets, "updated_at = now()")

	tag, err := r.pool.Exec(ctx,
		`UPDATE boxes SET `+strings.Join(sets, ", ")+` WHERE id = $1`, args...)
	if isForeignKeyViolation(err) {
		return model.ErrCategoryNotFound
	}
	if err != nil {
		return fmt.Errorf("update box: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBoxNotFound
	}
	return nil
}

// Delete removes a box; its box_items rows cascade away.
func (r *BoxRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM boxes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete box: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBoxNotFound
	}
	return nil
}
