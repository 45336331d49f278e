package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lasmate/Alisee/internal/model"
)

// CreateOrder inserts the order and its lines. Call it inside RunAtomic so both land together.
func (r *ShopRepository) CreateOrder(ctx context.Context, o *model.Order) error {
	exec := r.getExecutor(ctx)

	const orderQuery = `
		INSERT INTO orders (reference, user_id, first_name, last_name, address, city, postal_code, country,
			total_price_cents, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := exec.QueryRow(ctx, orderQuery,
		o.Reference, o.UserID, o.FirstName, o.LastName, o.Address, o.City, o.PostalCode, o.Country,
		int64(o.TotalPrice), string(o.Status), o.CreatedAt,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	const lineQuery = `
		INSERT INTO order_lines (order_id, position, item_id, item_name, customization_id, customization_name,
			unit_price_cents, quantity)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)
	`
	for i, l := range o.Lines {
		if _, err := exec.Exec(ctx, lineQuery,
			o.ID, i, l.ItemID, l.Name, l.CustomizationID, l.CustomizationName, int64(l.UnitPrice), l.Quantity,
		); err != nil {
			return fmt.Errorf("failed to create order line: %w", err)
		}
	}
	return nil
}

const orderColumns = `o.id, o.reference, COALESCE(o.user_id, 0), o.first_name, o.last_name, o.address, o.city,
	o.postal_code, o.country, o.total_price_cents, o.status, o.created_at, o.processed_at, o.shipped_at`

func orderDest(o *model.Order) []any {
	return []any{&o.ID, &o.Reference, &o.UserID, &o.FirstName, &o.LastName, &o.Address, &o.City,
		&o.PostalCode, &o.Country, &o.TotalPrice, &o.Status, &o.CreatedAt, &o.ProcessedAt, &o.ShippedAt}
}

func (r *ShopRepository) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	return r.getOrder(ctx, id, "")
}

// GetOrderForUpdate locks the order row until the surrounding transaction ends.
func (r *ShopRepository) GetOrderForUpdate(ctx context.Context, id int64) (*model.Order, error) {
	return r.getOrder(ctx, id, " FOR UPDATE")
}

func (r *ShopRepository) getOrder(ctx context.Context, id int64, lock string) (*model.Order, error) {
	var o model.Order
	err := r.getExecutor(ctx).QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`+lock, id,
	).Scan(orderDest(&o)...)
	if err != nil {
		return nil, notFound(err, "order")
	}

	lines, err := r.orderLines(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Lines = lines[o.ID]
	return &o, nil
}

func (r *ShopRepository) orderLines(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderLine, error) {
	const query = `
		SELECT order_id, item_id, item_name, customization_id, COALESCE(customization_name, ''),
			unit_price_cents, quantity
		FROM order_lines
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`
	rows, err := r.getExecutor(ctx).Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load order lines: %w", err)
	}
	defer rows.Close()

	lines := make(map[int64][]model.OrderLine, len(orderIDs))
	for rows.Next() {
		var (
			orderID int64
			l       model.OrderLine
		)
		if err := rows.Scan(&orderID, &l.ItemID, &l.Name, &l.CustomizationID, &l.CustomizationName,
			&l.UnitPrice, &l.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		lines[orderID] = append(lines[orderID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order lines: %w", err)
	}
	return lines, nil
}

// ListOrders returns every order joined with its purchaser, newest first.
func (r *ShopRepository) ListOrders(ctx context.Context) ([]model.OrderSummary, error) {
	query := `
		SELECT ` + orderColumns + `, COALESCE(u.name, ''), COALESCE(u.surname, ''), COALESCE(u.email, '')
		FROM orders o
		LEFT JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC, o.id DESC
	`
	rows, err := r.getExecutor(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var (
		summaries []model.OrderSummary
		ids       []int64
	)
	for rows.Next() {
		var s model.OrderSummary
		dest := append(orderDest(&s.Order), &s.UserName, &s.UserSurname, &s.UserEmail)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		s.Completed = s.IsCompleted()
		summaries = append(summaries, s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	if len(ids) == 0 {
		return summaries, nil
	}
	lines, err := r.orderLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		summaries[i].Lines = lines[summaries[i].ID]
	}
	return summaries, nil
}

func (r *ShopRepository) ListOrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	rows, err := r.getExecutor(ctx).Query(ctx,
		`SELECT `+orderColumns+` FROM orders o WHERE o.user_id = $1 ORDER BY o.created_at DESC, o.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user orders: %w", err)
	}

	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Order, error) {
		var o model.Order
		err := row.Scan(orderDest(&o)...)
		return o, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan user orders: %w", err)
	}

	if len(orders) == 0 {
		return orders, nil
	}
	ids := make([]int64, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}
	lines, err := r.orderLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Lines = lines[orders[i].ID]
	}
	return orders, nil
}

// UpdateOrderProgress persists status and lifecycle timestamps.
func (r *ShopRepository) UpdateOrderProgress(ctx context.Context, o *model.Order) error {
	tag, err := r.getExecutor(ctx).Exec(ctx,
		`UPDATE orders SET status = $2, processed_at = $3, shipped_at = $4 WHERE id = $1`,
		o.ID, string(o.Status), o.ProcessedAt, o.ShippedAt)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	return expectAffected(tag, "order")
}

// CountOrdersByStatus returns the number of orders in each status that has at least one.
func (r *ShopRepository) CountOrdersByStatus(ctx context.Context) (map[model.OrderStatus]int64, error) {
	rows, err := r.getExecutor(ctx).Query(ctx, `SELECT status, count(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.OrderStatus]int64)
	for rows.Next() {
		var (
			status string
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan order count: %w", err)
		}
		counts[model.OrderStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order counts: %w", err)
	}
	return counts, nil
}
