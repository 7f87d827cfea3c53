// Package sqlite implements core.Store on gorm over a pure-Go SQLite driver.
//
// The database is opened with a single connection (see db.OpenSQLite), so transactions are
// serialised by the pool. Inside WithTx every query must go through the tx handle.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"uniform-store/internal/core"
)

var (
	_ core.Store = (*Store)(nil)
	_ core.Tx    = (*queries)(nil)
)

// queries implements core.Tx over either the root handle or a transaction handle.
type queries struct {
	db *gorm.DB
}

// Store is the SQLite-backed core.Store.
type Store struct {
	queries
}

// New wraps an open gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{queries: queries{db: db}}
}

// AutoMigrate creates or updates every table.
func (s *Store) AutoMigrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(allModels...); err != nil {
		return fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}
	return nil
}

func (s *Store) WithTx(ctx context.Context, fn func(tx core.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&queries{db: tx})
	})
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	return sqlDB.Close()
}

func (q *queries) conn(ctx context.Context) *gorm.DB {
	return q.db.WithContext(ctx)
}

// ── Catalog ──────────────────────────────────────────────────────────────────

func (q *queries) productQuery(ctx context.Context) *gorm.DB {
	return q.conn(ctx).Table("products AS p").
		Select(`p.id, p.name, p.category, p.size, p.color, p.description, p.unit_price, p.unit_cost,
		        p.stock, p.min_stock, p.school_id, s.name AS school_name, p.is_active, p.created_at`).
		Joins("LEFT JOIN schools s ON s.id = p.school_id")
}

func (q *queries) GetProduct(ctx context.Context, id int) (*core.Product, error) {
	var v productView
	res := q.productQuery(ctx).Where("p.id = ?", id).Limit(1).Scan(&v)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, &core.NotFoundError{Entity: "product", ID: id}
	}
	p := v.toCore()
	return &p, nil
}

func (q *queries) ListProducts(ctx context.Context, filter core.ProductFilter) ([]core.Product, error) {
	tx := q.productQuery(ctx)
	if !filter.IncludeInactive {
		tx = tx.Where("p.is_active = ?", true)
	}
	if filter.SchoolID != nil {
		tx = tx.Where("p.school_id = ?", *filter.SchoolID)
	}
	if filter.Category != "" {
		tx = tx.Where("p.category = ?", filter.Category)
	}

	var views []productView
	if err := tx.Order("p.name, p.size, p.id").Scan(&views).Error; err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	products := make([]core.Product, 0, len(views))
	for _, v := range views {
		products = append(products, v.toCore())
	}
	return products, nil
}

func (q *queries) InsertProduct(ctx context.Context, p *core.Product) error {
	row := productRow{
		Name:        p.Name,
		Category:    p.Category,
		Size:        p.Size,
		Color:       p.Color,
		Description: p.Description,
		UnitPrice:   p.UnitPrice,
		UnitCost:    nullDecimal(p.UnitCost),
		Stock:       p.Stock,
		MinStock:    p.MinStock,
		SchoolID:    p.SchoolID,
		IsActive:    p.IsActive,
	}
	if err := q.conn(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	p.ID = row.ID
	p.CreatedAt = row.CreatedAt
	return nil
}

func (q *queries) UpdateProduct(ctx context.Context, p *core.Product) error {
	row := productRow{
		Name:        p.Name,
		Category:    p.Category,
		Size:        p.Size,
		Color:       p.Color,
		Description: p.Description,
		UnitPrice:   p.UnitPrice,
		UnitCost:    nullDecimal(p.UnitCost),
		MinStock:    p.MinStock,
		SchoolID:    p.SchoolID,
	}
	res := q.conn(ctx).Model(&productRow{}).Where("id = ?", p.ID).
		Select("name", "category", "size", "color", "description", "unit_price", "unit_cost", "min_stock", "school_id").
		Updates(&row)
	if res.Error != nil {
		return fmt.Errorf("failed to update product %d: %w", p.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return &core.NotFoundError{Entity: "product", ID: p.ID}
	}
	return nil
}

func (q *queries) SetProductActive(ctx context.Context, id int, active bool) error {
	res := q.conn(ctx).Model(&productRow{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return fmt.Errorf("failed to update product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &core.NotFoundError{Entity: "product", ID: id}
	}
	return nil
}

func (q *queries) DeleteProduct(ctx context.Context, id int) error {
	res := q.conn(ctx).Delete(&productRow{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &core.NotFoundError{Entity: "product", ID: id}
	}
	return nil
}

func (q *queries) CountActiveDuplicates(ctx context.Context, p *core.Product) (int, error) {
	tx := q.conn(ctx).Model(&productRow{}).
		Where("is_active = ? AND lower(name) = lower(?) AND size = ? AND color = ? AND id <> ?",
			true, p.Name, p.Size, p.Color, p.ID)
	if p.SchoolID == nil {
		tx = tx.Where("school_id IS NULL")
	} else {
		tx = tx.Where("school_id = ?", *p.SchoolID)
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count duplicate products: %w", err)
	}
	return int(n), nil
}

func (q *queries) CountOrderLinesForProduct(ctx context.Context, productID int) (int, error) {
	var n int64
	if err := q.conn(ctx).Model(&orderLineRow{}).Where("product_id = ?", productID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count order lines for product %d: %w", productID, err)
	}
	return int(n), nil
}

// ── Stock ────────────────────────────────────────────────────────────────────

func (q *queries) UpdateStock(ctx context.Context, productID, delta int) error {
	res := q.conn(ctx).Model(&productRow{}).Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("failed to update stock for product %d: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return &core.NotFoundError{Entity: "product", ID: productID}
	}
	return nil
}

func (q *queries) DecrementStock(ctx context.Context, productID, qty int) (bool, error) {
	res := q.conn(ctx).Model(&productRow{}).Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, fmt.Errorf("failed to decrement stock for product %d: %w", productID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (q *queries) InsertMovement(ctx context.Context, m *core.StockMovement) error {
	row := stockMovementRow{
		ProductID: m.ProductID,
		OrderID:   m.OrderID,
		Kind:      string(m.Kind),
		Quantity:  m.Quantity,
		Note:      m.Note,
	}
	if err := q.conn(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}
	m.ID = row.ID
	m.CreatedAt = row.CreatedAt
	return nil
}

func (q *queries) ListMovements(ctx context.Context, productID int) ([]core.StockMovement, error) {
	var rows []stockMovementRow
	if err := q.conn(ctx).Where("product_id = ?", productID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query stock movements: %w", err)
	}
	movements := make([]core.StockMovement, 0, len(rows))
	for _, r := range rows {
		movements = append(movements, movementToCore(r))
	}
	return movements, nil
}

// ── Parties ──────────────────────────────────────────────────────────────────

func (q *queries) GetClient(ctx context.Context, id int) (*core.Client, error) {
	var row clientRow
	if err := q.conn(ctx).Take(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &core.NotFoundError{Entity: "client", ID: id}
		}
		return nil, fmt.Errorf("failed to fetch client %d: %w", id, err)
	}
	c := clientToCore(row)
	return &c, nil
}

func (q *queries) ListClients(ctx context.Context) ([]core.Client, error) {
	var rows []clientRow
	if err := q.conn(ctx).Order("name, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	clients := make([]core.Client, 0, len(rows))
	for _, r := range rows {
		clients = append(clients, clientToCore(r))
	}
	return clients, nil
}

func (q *queries) InsertClient(ctx context.Context, c *core.Client) error {
	row := clientRow{Name: c.Name, Phone: c.Phone, Email: c.Email, Address: c.Address, BirthDate: c.BirthDate}
	if err := q.conn(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	c.ID = row.ID
	c.RegisteredAt = row.RegisteredAt
	return nil
}

func (q *queries) UpdateClient(ctx context.Context, c *core.Client) error {
	res := q.conn(ctx).Model(&clientRow{}).Where("id = ?", c.ID).
		Select("name", "phone", "email", "address", "birth_date").
		Updates(&clientRow{Name: c.Name, Phone: c.Phone, Email: c.Email, Address: c.Address, BirthDate: c.BirthDate})
	if res.Error != nil {
		return fmt.Errorf("failed to update client %d: %w", c.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return &core.NotFoundError{Entity: "client", ID: c.ID}
	}
	return nil
}

func (q *queries) DeleteClient(ctx context.Context, id int) error {
	res := q.conn(ctx).Delete(&clientRow{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete client %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &core.NotFoundError{Entity: "client", ID: id}
	}
	return nil
}

func (q *queries) CountOrdersForClient(ctx context.Context, clientID int) (int, error) {
	var n int64
	if err := q.conn(ctx).Model(&orderRow{}).Where("client_id = ?", clientID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count orders for client %d: %w", clientID, err)
	}
	return int(n), nil
}

func (q *queries) GetSchool(ctx context.Context, id int) (*core.School, error) {
	var row schoolRow
	if err := q.conn(ctx).Take(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &core.NotFoundError{Entity: "school", ID: id}
		}
		return nil, fmt.Errorf("failed to fetch school %d: %w", id, err)
	}
	s := schoolToCore(row)
	return &s, nil
}

func (q *queries) FindSchoolByName(ctx context.Context, name string) (*core.School, error) {
	var row schoolRow
	if err := q.conn(ctx).Where("lower(name) = lower(?)", name).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &core.NotFoundError{Entity: "school"}
		}
		return nil, fmt.Errorf("failed to fetch school %q: %w", name, err)
	}
	s := schoolToCore(row)
	return &s, nil
}

func (q *queries) ListSchools(ctx context.Context, activeOnly bool) ([]core.School, error) {
	tx := q.conn(ctx)
	if activeOnly {
		tx = tx.Where("is_active = ?", true)
	}
	var rows []schoolRow
	if err := tx.Order("name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query schools: %w", err)
	}
	schools := make([]core.School, 0, len(rows))
	for _, r := range rows {
		schools = append(schools, schoolToCore(r))
	}
	return schools, nil
}

func (q *queries) InsertSchool(ctx context.Context, s *core.School) error {
	row := schoolRow{Name: s.Name, Address: s.Address, Phone: s.Phone, IsActive: s.IsActive}
	if err := q.conn(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create school: %w", err)
	}
	s.ID = row.ID
	return nil
}

func (q *queries) SetSchoolActive(ctx context.Context, id int, active bool) error {
	res := q.conn(ctx).Model(&schoolRow{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return fmt.Errorf("failed to update school %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &core.NotFoundError{Entity: "school", ID: id}
	}
	return nil
}

// ── Orders ───────────────────────────────────────────────────────────────────

func (q *queries) orderQuery(ctx context.Context) *gorm.DB {
	return q.conn(ctx).Table("orders AS o").
		Select(`o.id, o.client_id, c.name AS client_name, o.school_id, s.name AS school_name, o.status,
		        o.created_at, o.expected_delivery_date, o.delivered_at, o.payment_method, o.notes,
		        o.quantity_total, o.value_total`).
		Joins("JOIN clients c ON c.id = o.client_id").
		Joins("LEFT JOIN schools s ON s.id = o.school_id")
}

func (q *queries) InsertOrder(ctx context.Context, o *core.Order) error {
	row := orderRow{
		ClientID:             o.ClientID,
		SchoolID:             o.SchoolID,
		Status:               string(o.Status),
		ExpectedDeliveryDate: o.ExpectedDeliveryDate,
		PaymentMethod:        o.PaymentMethod,
		Notes:                o.Notes,
		QuantityTotal:        o.QuantityTotal,
		ValueTotal:           o.ValueTotal,
	}
	db := q.conn(ctx)
	if err := db.Omit(clause.Associations).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	o.ID = row.ID
	o.CreatedAt = row.CreatedAt

	lines := make([]orderLineRow, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = orderLineRow{
			OrderID:   row.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal,
		}
	}
	if len(lines) > 0 {
		if err := db.Omit(clause.Associations).Create(&lines).Error; err != nil {
			return fmt.Errorf("failed to create order lines: %w", err)
		}
	}
	for i := range o.Lines {
		o.Lines[i].ID = lines[i].ID
		o.Lines[i].OrderID = row.ID
	}
	return nil
}

// GetOrder ignores lock: the single connection already serialises writers.
func (q *queries) GetOrder(ctx context.Context, id int, lock bool) (*core.Order, error) {
	var v orderView
	res := q.orderQuery(ctx).Where("o.id = ?", id).Limit(1).Scan(&v)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to fetch order %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, &core.NotFoundError{Entity: "order", ID: id}
	}
	o := v.toCore()
	return &o, nil
}

func (q *queries) GetOrderLines(ctx context.Context, orderID int) ([]core.OrderLine, error) {
	var views []orderLineView
	err := q.conn(ctx).Table("order_lines AS l").
		Select("l.id, l.order_id, l.product_id, p.name AS product_name, p.size, p.color, l.quantity, l.unit_price, l.subtotal").
		Joins("JOIN products p ON p.id = l.product_id").
		Where("l.order_id = ?", orderID).
		Order("l.id").
		Scan(&views).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query order lines for order %d: %w", orderID, err)
	}
	lines := make([]core.OrderLine, 0, len(views))
	for _, v := range views {
		lines = append(lines, v.toCore())
	}
	return lines, nil
}

func (q *queries) ListOrders(ctx context.Context, filter core.OrderFilter) ([]core.Order, error) {
	tx := q.orderQuery(ctx)
	if filter.SchoolID != nil {
		tx = tx.Where("o.school_id = ?", *filter.SchoolID)
	}
	if filter.ClientID != nil {
		tx = tx.Where("o.client_id = ?", *filter.ClientID)
	}
	if filter.Status != nil {
		tx = tx.Where("o.status = ?", string(*filter.Status))
	}

	var views []orderView
	if err := tx.Order("o.created_at DESC, o.id DESC").Scan(&views).Error; err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	orders := make([]core.Order, 0, len(views))
	for _, v := range views {
		orders = append(orders, v.toCore())
	}
	return orders, nil
}

func (q *queries) UpdateOrderStatus(ctx context.Context, id int, status core.OrderStatus, deliveredAt *time.Time) error {
	updates := map[string]any{"status": string(status)}
	if deliveredAt != nil {
		updates["delivered_at"] = *deliveredAt
	}
	res := q.conn(ctx).Model(&orderRow{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update order %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &core.NotFoundError{Entity: "order", ID: id}
	}
	return nil
}

func (q *queries) DeleteOrder(ctx context.Context, id int) error {
	db := q.conn(ctx)
	if err := db.Where("order_id = ?", id).Delete(&orderLineRow{}).Error; err != nil {
		return fmt.Errorf("failed to delete lines of order %d: %w", id, err)
	}
	res := db.Delete(&orderRow{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete order %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &core.NotFoundError{Entity: "order", ID: id}
	}
	return nil
}

func (q *queries) CountOrdersByStatus(ctx context.Context) (map[core.OrderStatus]int, error) {
	var rows []struct {
		Status string
		N      int
	}
	err := q.conn(ctx).Model(&orderRow{}).Select("status, COUNT(*) AS n").Group("status").Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	counts := make(map[core.OrderStatus]int, len(rows))
	for _, r := range rows {
		counts[core.OrderStatus(r.Status)] = r.N
	}
	return counts, nil
}
