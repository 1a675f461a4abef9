package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"boxmgr/internal/model"
)

type ItemRepository struct {
	pool *pgxpool.Pool
}

func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

func (r *ItemRepository) ItemsInBox(ctx context.Context, boxID int64) ([]model.BoxItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT i.id, i.name, i.created_at, bi.quantity
		 FROM box_items bi
		 JOIN items i ON bi.item_id = i.id
		 WHERE bi.box_id = $1
		 ORDER BY i.name`, boxID)
	if err != nil {
		return nil, fmt.Errorf("list box items: %w", err)
	}
	defer rows.Close()

	items := make([]model.BoxItem, 0)
	for rows.Next() {
		var it model.BoxItem
		if err := rows.Scan(&it.ID, &it.Name, &it.CreatedAt, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan box item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// AddToBox records an item in a box, creating the item record on first
// use (item names dedupe case-insensitively) and summing quantities when
// the box already holds the item.
func (r *ItemRepository) AddToBox(ctx context.Context, boxID int64, name string, quantity int) (model.BoxItem, error) {
	if quantity <= 0 {
		quantity = 1
	}

	var added model.BoxItem
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		item, err := findOrCreateItem(ctx, tx, name)
		if err != nil {
			return err
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO box_items (box_id, item_id, quantity)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (box_id, item_id)
			 DO UPDATE SET quantity = box_items.quantity + EXCLUDED.quantity
			 RETURNING quantity`,
			boxID, item.ID, quantity).Scan(&added.Quantity)
		if err != nil {
			return fmt.Errorf("upsert box item: %w", err)
		}

		added.Item = item
		return nil
	})
	if isForeignKeyViolation(err) {
		return model.BoxItem{}, model.ErrBoxNotFound
	}
	if err != nil {
		return model.BoxItem{}, err
	}
	return added, nil
}

// AddNamesToBox inserts many items into one box in a single transaction
// and reports the names that were actually new to the box. Used by the
// scan flow so a failed vision batch never half-applies.
func (r *ItemRepository) AddNamesToBox(ctx context.Context, boxID int64, names []string) ([]string, error) {
	added := make([]string, 0, len(names))
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}

			item, err := findOrCreateItem(ctx, tx, name)
			if err != nil {
				return err
			}

			tag, err := tx.Exec(ctx,
				`INSERT INTO box_items (box_id, item_id, quantity)
				 VALUES ($1, $2, 1)
				 ON CONFLICT (box_id, item_id) DO NOTHING`,
				boxID, item.ID)
			if err != nil {
				return fmt.Errorf("insert box item: %w", err)
			}
			if tag.RowsAffected() > 0 {
				added = append(added, item.Name)
			}
		}
		return nil
	})
	if isForeignKeyViolation(err) {
		return nil, model.ErrBoxNotFound
	}
	if err != nil {
		return nil, err
	}
	return added, nil
}

func (r *ItemRepository) RemoveFromBox(ctx context.Context, boxID int64, itemID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM box_items WHERE box_id = $1 AND item_id = $2`, boxID, itemID)
	if err != nil {
		return fmt.Errorf("remove box item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrItemNotFound
	}
	return nil
}

// Search matches item names by substring, case-insensitively, joined
// with the box and category each match lives in.
func (r *ItemRepository) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT i.id, i.name, bi.quantity,
		        b.id, b.number, b.name,
		        c.id, c.name, COALESCE(c.color, '')
		 FROM items i
		 JOIN box_items bi ON bi.item_id = i.id
		 JOIN boxes b ON bi.box_id = b.id
		 JOIN categories c ON b.category_id = c.id
		 WHERE i.name ILIKE '%' || $1 || '%'
		 ORDER BY c.name, b.number, i.name`, query)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	defer rows.Close()

	results := make([]model.SearchResult, 0)
	for rows.Next() {
		var sr model.SearchResult
		if err := rows.Scan(&sr.ItemID, &sr.ItemName, &sr.Quantity,
			&sr.BoxID, &sr.BoxNumber, &sr.BoxName,
			&sr.CategoryID, &sr.CategoryName, &sr.CategoryColor); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		results = append(results, sr)
	}
	return results, rows.Err()
}

func findOrCreateItem(ctx context.Context, tx pgx.Tx, name string) (model.Item, error) {
	var item model.Item
	err := tx.QueryRow(ctx,
		`SELECT id, name, created_at FROM items WHERE lower(name) = lower($1)`,
		strings.TrimSpace(name)).
		Scan(&item.ID, &item.Name, &item.CreatedAt)
	if err == nil {
		return item, nil
	}
	if err != pgx.ErrNoRows {
		return model.Item{}, fmt.Errorf("find item: %w", err)
	}

	item.Name = strings.TrimSpace(name)
	err = tx.QueryRow(ctx,
		`INSERT INTO items (name) VALUES ($1) RETURNING id, created_at`, item.Name).
		Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return model.Item{}, fmt.Errorf("create item: %w", err)
	}
	return item, nil
}
