package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lasmate/Alisee/internal/model"
)

// ItemFilter narrows ListItems. Zero value lists everything.
type ItemFilter struct {
	AvailableOnly bool
	Category      string
}

const itemColumns = `id, name, description, image, size, price_cents, quantity, category, tags, is_available, is_customisable`

func scanItem(row pgx.Row, it *model.Item) error {
	return row.Scan(&it.ID, &it.Name, &it.Description, &it.Image, &it.Size, &it.Price,
		&it.Quantity, &it.Category, &it.Tags, &it.IsAvailable, &it.IsCustomisable)
}

func (r *ShopRepository) CreateItem(ctx context.Context, it *model.Item) error {
	const query = `
		INSERT INTO items (name, description, image, size, price_cents, quantity, category, tags, is_available, is_customisable)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := r.getExecutor(ctx).QueryRow(ctx, query,
		it.Name, it.Description, it.Image, it.Size, int64(it.Price), it.Quantity,
		it.Category, it.Tags, it.IsAvailable, it.IsCustomisable,
	).Scan(&it.ID)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

func (r *ShopRepository) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	var it model.Item
	err := scanItem(r.getExecutor(ctx).QueryRow(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = $1`, id), &it)
	if err != nil {
		return nil, notFound(err, "item")
	}
	return &it, nil
}

// GetItemByName returns the oldest item with that name.
func (r *ShopRepository) GetItemByName(ctx context.Context, name string) (*model.Item, error) {
	var it model.Item
	err := scanItem(r.getExecutor(ctx).QueryRow(ctx,
		`SELECT `+itemColumns+` FROM items WHERE name = $1 ORDER BY id LIMIT 1`, name), &it)
	if err != nil {
		return nil, notFound(err, "item")
	}
	return &it, nil
}

// UpdateItem overwrites every catalog field of the item with it.ID.
func (r *ShopRepository) UpdateItem(ctx context.Context, it *model.Item) error {
	const query = `
		UPDATE items
		SET name = $2, description = $3, image = $4, size = $5, price_cents = $6, quantity = $7,
			category = $8, tags = $9, is_available = $10, is_customisable = $11
		WHERE id = $1
	`
	tag, err := r.getExecutor(ctx).Exec(ctx, query,
		it.ID, it.Name, it.Description, it.Image, it.Size, int64(it.Price), it.Quantity,
		it.Category, it.Tags, it.IsAvailable, it.IsCustomisable,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return expectAffected(tag, "item")
}

func (r *ShopRepository) ListItems(ctx context.Context, f ItemFilter) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE ($1 = FALSE OR is_available) AND ($2 = '' OR category = $2) ORDER BY id`
	rows, err := r.getExecutor(ctx).Query(ctx, query, f.AvailableOnly, f.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var it model.Item
		if err := scanItem(rows, &it); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

func (r *ShopRepository) CountItems(ctx context.Context) (int64, error) {
	var n int64
	if err := r.getExecutor(ctx).QueryRow(ctx, `SELECT count(*) FROM items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return n, nil
}

func (r *ShopRepository) SetItemAvailability(ctx context.Context, id int64, available bool) error {
	tag, err := r.getExecutor(ctx).Exec(ctx, `UPDATE items SET is_available = $2 WHERE id = $1`, id, available)
	if err != nil {
		return fmt.Errorf("failed to update item availability: %w", err)
	}
	return expectAffected(tag, "item")
}

// CreateImage inserts the image unless one with the same name or path exists.
// It reports whether a row was written.
func (r *ShopRepository) CreateImage(ctx context.Context, img *model.Image) (bool, error) {
	err := r.getExecutor(ctx).QueryRow(ctx,
		`INSERT INTO images (name, path) VALUES ($1, $2) ON CONFLICT DO NOTHING RETURNING id`,
		img.Name, img.Path,
	).Scan(&img.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create image: %w", err)
	}
	return true, nil
}

func (r *ShopRepository) GetImage(ctx context.Context, id int64) (*model.Image, error) {
	var img model.Image
	err := r.getExecutor(ctx).QueryRow(ctx,
		`SELECT id, name, path FROM images WHERE id = $1`, id,
	).Scan(&img.ID, &img.Name, &img.Path)
	if err != nil {
		return nil, notFound(err, "image")
	}
	return &img, nil
}

func (r *ShopRepository) CountImages(ctx context.Context) (int64, error) {
	var n int64
	if err := r.getExecutor(ctx).QueryRow(ctx, `SELECT count(*) FROM images`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count images: %w", err)
	}
	return n, nil
}
