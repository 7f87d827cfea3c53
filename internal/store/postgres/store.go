// Package postgres implements core.Store on pgx/v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"uniform-store/internal/core"
)

var (
	_ core.Store = (*Store)(nil)
	_ core.Tx    = (*queries)(nil)
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, enabling shared query helpers.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type queries struct {
	q querier
}

// Store is the PostgreSQL-backed core.Store.
type Store struct {
	queries
	pool *pgxpool.Pool
}

// New wraps a connected pool. Close releases it.
func New(pool *pgxpool.Pool) *Store {
	return &Store{queries: queries{q: pool}, pool: pool}
}

func (s *Store) WithTx(ctx context.Context, fn func(tx core.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&queries{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ── Catalog ──────────────────────────────────────────────────────────────────

const productColumns = `
	p.id, p.name, p.category, p.size, p.color, p.description, p.unit_price, p.unit_cost,
	p.stock, p.min_stock, p.school_id, s.name, p.is_active, p.created_at`

const productFrom = `
	FROM products p
	LEFT JOIN schools s ON s.id = p.school_id`

func scanProduct(row pgx.Row) (core.Product, error) {
	var (
		p          core.Product
		cost       decimal.NullDecimal
		schoolName *string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Category, &p.Size, &p.Color, &p.Description, &p.UnitPrice, &cost,
		&p.Stock, &p.MinStock, &p.SchoolID, &schoolName, &p.IsActive, &p.CreatedAt)
	if err != nil {
		return p, err
	}
	if cost.Valid {
		p.UnitCost = &cost.Decimal
	}
	if schoolName != nil {
		p.SchoolName = *schoolName
	}
	return p, nil
}

func (q *queries) GetProduct(ctx context.Context, id int) (*core.Product, error) {
	p, err := scanProduct(q.q.QueryRow(ctx, "SELECT"+productColumns+productFrom+" WHERE p.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &core.NotFoundError{Entity: "product", ID: id}
		}
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}
	return &p, nil
}

func (q *queries) ListProducts(ctx context.Context, filter core.ProductFilter) ([]core.Product, error) {
	var (
		where []string
		args  []any
	)
	if !filter.IncludeInactive {
		where = append(where, "p.is_active = true")
	}
	if filter.SchoolID != nil {
		args = append(args, *filter.SchoolID)
		where = append(where, fmt.Sprintf("p.school_id = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("p.category = $%d", len(args)))
	}

	sql := "SELECT" + productColumns + productFrom
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += " ORDER BY p.name, p.size, p.id"

	rows, err := q.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []core.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (q *queries) InsertProduct(ctx context.Context, p *core.Product) error {
	err := q.q.QueryRow(ctx, `
		INSERT INTO products (name, category, size, color, description, unit_price, unit_cost,
		                      stock, min_stock, school_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`,
		p.Name, p.Category, p.Size, p.Color, p.Description, p.UnitPrice, p.UnitCost,
		p.Stock, p.MinStock, p.SchoolID, p.IsActive,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (q *queries) UpdateProduct(ctx context.Context, p *core.Product) error {
	tag, err := q.q.Exec(ctx, `
		UPDATE products
		SET name = $2, category = $3, size = $4, color = $5, description = $6,
		    unit_price = $7, unit_cost = $8, min_stock = $9, school_id = $10
		WHERE id = $1`,
		p.ID, p.Name, p.Category, p.Size, p.Color, p.Description,
		p.UnitPrice, p.UnitCost, p.MinStock, p.SchoolID,
	)
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return &core.NotFoundError{Entity: "product", ID: p.ID}
	}
	return nil
}

func (q *queries) SetProductActive(ctx context.Context, id int, active bool) error {
	tag, err := q.q.Exec(ctx, "UPDATE products SET is_active = $2 WHERE id = $1", id, active)
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &core.NotFoundError{Entity: "product", ID: id}
	}
	return nil
}

func (q *queries) DeleteProduct(ctx context.Context, id int) error {
	tag, err := q.q.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &core.NotFoundError{Entity: "product", ID: id}
	}
	return nil
}

func (q *queries) CountActiveDuplicates(ctx context.Context, p *core.Product) (int, error) {
	var n int
	err := q.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM products
		WHERE is_active = true
		  AND lower(name) = lower($1) AND size = $2 AND color = $3
		  AND school_id IS NOT DISTINCT FROM $4
		  AND id <> $5`,
		p.Name, p.Size, p.Color, p.SchoolID, p.ID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count duplicate products: %w", err)
	}
	return n, nil
}

func (q *queries) CountOrderLinesForProduct(ctx context.Context, productID int) (int, error) {
	var n int
	if err := q.q.QueryRow(ctx, "SELECT COUNT(*) FROM order_lines WHERE product_id = $1", productID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count order lines for product %d: %w", productID, err)
	}
	return n, nil
}

// ── Stock ────────────────────────────────────────────────────────────────────

func (q *queries) UpdateStock(ctx context.Context, productID, delta int) error {
	tag, err := q.q.Exec(ctx, "UPDATE products SET stock = stock + $2 WHERE id = $1", productID, delta)
	if err != nil {
		return fmt.Errorf("failed to update stock for product %d: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return &core.NotFoundError{Entity: "product", ID: productID}
	}
	return nil
}

// DecrementStock takes the row lock, so concurrent reservations of one product serialise here.
func (q *queries) DecrementStock(ctx context.Context, productID, qty int) (bool, error) {
	tag, err := q.q.Exec(ctx,
		"UPDATE products SET stock = stock - $2 WHERE id = $1 AND stock >= $2",
		productID, qty,
	)
	if err != nil {
		return false, fmt.Errorf("failed to decrement stock for product %d: %w", productID, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (q *queries) InsertMovement(ctx context.Context, m *core.StockMovement) error {
	err := q.q.QueryRow(ctx, `
		INSERT INTO stock_movements (product_id, order_id, kind, quantity, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		m.ProductID, m.OrderID, string(m.Kind), m.Quantity, m.Note,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}
	return nil
}

func (q *queries) ListMovements(ctx context.Context, productID int) ([]core.StockMovement, error) {
	rows, err := q.q.Query(ctx, `
		SELECT id, product_id, order_id, kind, quantity, note, created_at
		FROM stock_movements
		WHERE product_id = $1
		ORDER BY id`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock movements: %w", err)
	}
	defer rows.Close()

	var movements []core.StockMovement
	for rows.Next() {
		var m core.StockMovement
		var kind string
		if err := rows.Scan(&m.ID, &m.ProductID, &m.OrderID, &kind, &m.Quantity, &m.Note, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stock movement: %w", err)
		}
		m.Kind = core.MovementKind(kind)
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// ── Parties ──────────────────────────────────────────────────────────────────

const clientColumns = "id, name, phone, email, address, birth_date, registered_at"

func scanClient(row pgx.Row) (core.Client, error) {
	var c core.Client
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Address, &c.BirthDate, &c.RegisteredAt)
	return c, err
}

func (q *queries) GetClient(ctx context.Context, id int) (*core.Client, error) {
	c, err := scanClient(q.q.QueryRow(ctx, "SELECT "+clientColumns+" FROM clients WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &core.NotFoundError{Entity: "client", ID: id}
		}
		return nil, fmt.Errorf("failed to fetch client %d: %w", id, err)
	}
	return &c, nil
}

func (q *queries) ListClients(ctx context.Context) ([]core.Client, error) {
	rows, err := q.q.Query(ctx, "SELECT "+clientColumns+" FROM clients ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	var clients []core.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (q *queries) InsertClient(ctx context.Context, c *core.Client) error {
	err := q.q.QueryRow(ctx, `
		INSERT INTO clients (name, phone, email, address, birth_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, registered_at`,
		c.Name, c.Phone, c.Email, c.Address, c.BirthDate,
	).Scan(&c.ID, &c.RegisteredAt)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

func (q *queries) UpdateClient(ctx context.Context, c *core.Client) error {
	tag, err := q.q.Exec(ctx, `
		UPDATE clients SET name = $2, phone = $3, email = $4, address = $5, birth_date = $6
		WHERE id = $1`,
		c.ID, c.Name, c.Phone, c.Email, c.Address, c.BirthDate,
	)
	if err != nil {
		return fmt.Errorf("failed to update client %d: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return &core.NotFoundError{Entity: "client", ID: c.ID}
	}
	return nil
}

func (q *queries) DeleteClient(ctx context.Context, id int) error {
	tag, err := q.q.Exec(ctx, "DELETE FROM clients WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete client %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &core.NotFoundError{Entity: "client", ID: id}
	}
	return nil
}

func (q *queries) CountOrdersForClient(ctx context.Context, clientID int) (int, error) {
	var n int
	if err := q.q.QueryRow(ctx, "SELECT COUNT(*) FROM orders WHERE client_id = $1", clientID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count orders for client %d: %w", clientID, err)
	}
	return n, nil
}

const schoolColumns = "id, name, address, phone, is_active"

func scanSchool(row pgx.Row) (core.School, error) {
	var s core.School
	err := row.Scan(&s.ID, &s.Name, &s.Address, &s.Phone, &s.IsActive)
	return s, err
}

func (q *queries) GetSchool(ctx context.Context, id int) (*core.School, error) {
	s, err := scanSchool(q.q.QueryRow(ctx, "SELECT "+schoolColumns+" FROM schools WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &core.NotFoundError{Entity: "school", ID: id}
		}
		return nil, fmt.Errorf("failed to fetch school %d: %w", id, err)
	}
	return &s, nil
}

func (q *queries) FindSchoolByName(ctx context.Context, name string) (*core.School, error) {
	s, err := scanSchool(q.q.QueryRow(ctx, "SELECT "+schoolColumns+" FROM schools WHERE lower(name) = lower($1)", name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &core.NotFoundError{Entity: "school"}
		}
		return nil, fmt.Errorf("failed to fetch school %q: %w", name, err)
	}
	return &s, nil
}

func (q *queries) ListSchools(ctx context.Context, activeOnly bool) ([]core.School, error) {
	sql := "SELECT " + schoolColumns + " FROM schools"
	if activeOnly {
		sql += " WHERE is_active = true"
	}
	rows, err := q.q.Query(ctx, sql+" ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query schools: %w", err)
	}
	defer rows.Close()

	var schools []core.School
	for rows.Next() {
		s, err := scanSchool(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan school: %w", err)
		}
		schools = append(schools, s)
	}
	return schools, rows.Err()
}

func (q *queries) InsertSchool(ctx context.Context, s *core.School) error {
	err := q.q.QueryRow(ctx, `
		INSERT INTO schools (name, address, phone, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		s.Name, s.Address, s.Phone, s.IsActive,
	).Scan(&s.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrDuplicateSchool
		}
		return fmt.Errorf("failed to create school: %w", err)
	}
	return nil
}

func (q *queries) SetSchoolActive(ctx context.Context, id int, active bool) error {
	tag, err := q.q.Exec(ctx, "UPDATE schools SET is_active = $2 WHERE id = $1", id, active)
	if err != nil {
		return fmt.Errorf("failed to update school %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &core.NotFoundError{Entity: "school", ID: id}
	}
	return nil
}

// ── Orders ───────────────────────────────────────────────────────────────────

const orderColumns = `
	o.id, o.client_id, c.name, o.school_id, s.name, o.status, o.created_at,
	o.expected_delivery_date, o.delivered_at, o.payment_method, o.notes,
	o.quantity_total, o.value_total`

const orderFrom = `
	FROM orders o
	JOIN clients c ON c.id = o.client_id
	LEFT JOIN schools s ON s.id = o.school_id`

func scanOrder(row pgx.Row) (core.Order, error) {
	var (
		o          core.Order
		status     string
		schoolName *string
	)
	err := row.Scan(&o.ID, &o.ClientID, &o.ClientName, &o.SchoolID, &schoolName, &status, &o.CreatedAt,
		&o.ExpectedDeliveryDate, &o.DeliveredAt, &o.PaymentMethod, &o.Notes,
		&o.QuantityTotal, &o.ValueTotal)
	if err != nil {
		return o, err
	}
	o.Status = core.OrderStatus(status)
	if schoolName != nil {
		o.SchoolName = *schoolName
	}
	return o, nil
}

func (q *queries) InsertOrder(ctx context.Context, o *core.Order) error {
	err := q.q.QueryRow(ctx, `
		INSERT INTO orders (client_id, school_id, status, expected_delivery_date, payment_method, notes,
		                    quantity_total, value_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		o.ClientID, o.SchoolID, string(o.Status), o.ExpectedDeliveryDate, o.PaymentMethod, o.Notes,
		o.QuantityTotal, o.ValueTotal,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	for i := range o.Lines {
		l := &o.Lines[i]
		l.OrderID = o.ID
		err := q.q.QueryRow(ctx, `
			INSERT INTO order_lines (order_id, product_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			o.ID, l.ProductID, l.Quantity, l.UnitPrice, l.Subtotal,
		).Scan(&l.ID)
		if err != nil {
			return fmt.Errorf("failed to insert order line %d: %w", i+1, err)
		}
	}
	return nil
}

func (q *queries) GetOrder(ctx context.Context, id int, lock bool) (*core.Order, error) {
	if lock {
		// Lock only the order row; FOR UPDATE cannot apply to the nullable side of the outer join.
		var locked int
		err := q.q.QueryRow(ctx, "SELECT id FROM orders WHERE id = $1 FOR UPDATE", id).Scan(&locked)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, &core.NotFoundError{Entity: "order", ID: id}
			}
			return nil, fmt.Errorf("failed to lock order %d: %w", id, err)
		}
	}

	o, err := scanOrder(q.q.QueryRow(ctx, "SELECT"+orderColumns+orderFrom+" WHERE o.id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &core.NotFoundError{Entity: "order", ID: id}
		}
		return nil, fmt.Errorf("failed to fetch order %d: %w", id, err)
	}
	return &o, nil
}

func (q *queries) GetOrderLines(ctx context.Context, orderID int) ([]core.OrderLine, error) {
	rows, err := q.q.Query(ctx, `
		SELECT l.id, l.order_id, l.product_id, p.name, p.size, p.color, l.quantity, l.unit_price, l.subtotal
		FROM order_lines l
		JOIN products p ON p.id = l.product_id
		WHERE l.order_id = $1
		ORDER BY l.id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order lines for order %d: %w", orderID, err)
	}
	defer rows.Close()

	var lines []core.OrderLine
	for rows.Next() {
		var l core.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.Size, &l.Color,
			&l.Quantity, &l.UnitPrice, &l.Subtotal); err != nil {
			return nil, fmt.Errorf("failed to scan order line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (q *queries) ListOrders(ctx context.Context, filter core.OrderFilter) ([]core.Order, error) {
	var (
		where []string
		args  []any
	)
	if filter.SchoolID != nil {
		args = append(args, *filter.SchoolID)
		where = append(where, fmt.Sprintf("o.school_id = $%d", len(args)))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		where = append(where, fmt.Sprintf("o.client_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("o.status = $%d", len(args)))
	}

	sql := "SELECT" + orderColumns + orderFrom
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	sql += " ORDER BY o.created_at DESC, o.id DESC"

	rows, err := q.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []core.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (q *queries) UpdateOrderStatus(ctx context.Context, id int, status core.OrderStatus, deliveredAt *time.Time) error {
	tag, err := q.q.Exec(ctx,
		"UPDATE orders SET status = $2, delivered_at = COALESCE($3, delivered_at) WHERE id = $1",
		id, string(status), deliveredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &core.NotFoundError{Entity: "order", ID: id}
	}
	return nil
}

func (q *queries) DeleteOrder(ctx context.Context, id int) error {
	tag, err := q.q.Exec(ctx, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete order %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &core.NotFoundError{Entity: "order", ID: id}
	}
	return nil
}

func (q *queries) CountOrdersByStatus(ctx context.Context) (map[core.OrderStatus]int, error) {
	rows, err := q.q.Query(ctx, "SELECT status, COUNT(*) FROM orders GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[core.OrderStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[core.OrderStatus(status)] = n
	}
	return counts, rows.Err()
}
