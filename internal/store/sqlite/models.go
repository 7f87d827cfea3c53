package sqlite

import (
	"time"

	"github.com/shopspring/decimal"

	"uniform-store/internal/core"
)

// Row models mirror migrations/001_init.sql. Money is stored as TEXT so
// decimal values round-trip exactly.

type schoolRow struct {
	ID       int    `gorm:"primaryKey"`
	Name     string `gorm:"not null;uniqueIndex"`
	Address  string
	Phone    string
	IsActive bool `gorm:"not null"`
}

func (schoolRow) TableName() string { return "schools" }

type clientRow struct {
	ID           int    `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Phone        string
	Email        string
	Address      string
	BirthDate    *time.Time
	RegisteredAt time.Time `gorm:"autoCreateTime"`
}

func (clientRow) TableName() string { return "clients" }

type productRow struct {
	ID          int    `gorm:"primaryKey"`
	Name        string `gorm:"not null;index"`
	Category    string
	Size        string
	Color       string
	Description string
	UnitPrice   decimal.Decimal     `gorm:"type:text;not null"`
	UnitCost    decimal.NullDecimal `gorm:"type:text"`
	Stock       int                 `gorm:"not null;check:chk_products_stock,stock >= 0"`
	MinStock    int                 `gorm:"not null"`
	SchoolID    *int                `gorm:"index"`
	IsActive    bool                `gorm:"not null"`
	CreatedAt   time.Time

	School *schoolRow `gorm:"constraint:OnDelete:SET NULL"`
}

func (productRow) TableName() string { return "products" }

type orderRow struct {
	ID                   int    `gorm:"primaryKey"`
	ClientID             int    `gorm:"not null;index"`
	SchoolID             *int   `gorm:"index"`
	Status               string `gorm:"not null;index"`
	CreatedAt            time.Time
	ExpectedDeliveryDate *time.Time
	DeliveredAt          *time.Time
	PaymentMethod        string
	Notes                string
	QuantityTotal        int             `gorm:"not null"`
	ValueTotal           decimal.Decimal `gorm:"type:text;not null"`

	Client *clientRow     `gorm:"constraint:OnDelete:RESTRICT"`
	School *schoolRow     `gorm:"constraint:OnDelete:SET NULL"`
	Lines  []orderLineRow `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (orderRow) TableName() string { return "orders" }

type orderLineRow struct {
	ID        int             `gorm:"primaryKey"`
	OrderID   int             `gorm:"not null;index"`
	ProductID int             `gorm:"not null;index"`
	Quantity  int             `gorm:"not null;check:chk_order_lines_quantity,quantity > 0"`
	UnitPrice decimal.Decimal `gorm:"type:text;not null"`
	Subtotal  decimal.Decimal `gorm:"type:text;not null"`

	Product *productRow `gorm:"constraint:OnDelete:RESTRICT"`
}

func (orderLineRow) TableName() string { return "order_lines" }

// stockMovementRow keeps order_id as a plain number so the journal outlives deleted orders.
type stockMovementRow struct {
	ID        int    `gorm:"primaryKey"`
	ProductID int    `gorm:"not null;index"`
	OrderID   *int   `gorm:"index"`
	Kind      string `gorm:"not null"`
	Quantity  int    `gorm:"not null"`
	Note      string
	CreatedAt time.Time

	Product *productRow `gorm:"constraint:OnDelete:CASCADE"`
}

func (stockMovementRow) TableName() string { return "stock_movements" }

// allModels lists row models in dependency order for AutoMigrate.
var allModels = []any{
	&schoolRow{}, &clientRow{}, &productRow{}, &orderRow{}, &orderLineRow{}, &stockMovementRow{},
}

// ── Joined views ─────────────────────────────────────────────────────────────

type productView struct {
	ID          int
	Name        string
	Category    string
	Size        string
	Color       string
	Description string
	UnitPrice   decimal.Decimal
	UnitCost    decimal.NullDecimal
	Stock       int
	MinStock    int
	SchoolID    *int
	SchoolName  *string
	IsActive    bool
	CreatedAt   time.Time
}

func (v productView) toCore() core.Product {
	p := core.Product{
		ID:          v.ID,
		Name:        v.Name,
		Category:    v.Category,
		Size:        v.Size,
		Color:       v.Color,
		Description: v.Description,
		UnitPrice:   v.UnitPrice,
		Stock:       v.Stock,
		MinStock:    v.MinStock,
		SchoolID:    v.SchoolID,
		IsActive:    v.IsActive,
		CreatedAt:   v.CreatedAt,
	}
	if v.UnitCost.Valid {
		cost := v.UnitCost.Decimal
		p.UnitCost = &cost
	}
	if v.SchoolName != nil {
		p.SchoolName = *v.SchoolName
	}
	return p
}

type orderView struct {
	ID                   int
	ClientID             int
	ClientName           string
	SchoolID             *int
	SchoolName           *string
	Status               string
	CreatedAt            time.Time
	ExpectedDeliveryDate *time.Time
	DeliveredAt          *time.Time
	PaymentMethod        string
	Notes                string
	QuantityTotal        int
	ValueTotal           decimal.Decimal
}

func (v orderView) toCore() core.Order {
	o := core.Order{
		ID:                   v.ID,
		ClientID:             v.ClientID,
		ClientName:           v.ClientName,
		SchoolID:             v.SchoolID,
		Status:               core.OrderStatus(v.Status),
		CreatedAt:            v.CreatedAt,
		ExpectedDeliveryDate: v.ExpectedDeliveryDate,
		DeliveredAt:          v.DeliveredAt,
		PaymentMethod:        v.PaymentMethod,
		Notes:                v.Notes,
		QuantityTotal:        v.QuantityTotal,
		ValueTotal:           v.ValueTotal,
	}
	if v.SchoolName != nil {
		o.SchoolName = *v.SchoolName
	}
	return o
}

type orderLineView struct {
	ID          int
	OrderID     int
	ProductID   int
	ProductName string
	Size        string
	Color       string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

func (v orderLineView) toCore() core.OrderLine {
	return core.OrderLine{
		ID:          v.ID,
		OrderID:     v.OrderID,
		ProductID:   v.ProductID,
		ProductName: v.ProductName,
		Size:        v.Size,
		Color:       v.Color,
		Quantity:    v.Quantity,
		UnitPrice:   v.UnitPrice,
		Subtotal:    v.Subtotal,
	}
}

func clientToCore(r clientRow) core.Client {
	return core.Client{
		ID:           r.ID,
		Name:         r.Name,
		Phone:        r.Phone,
		Email:        r.Email,
		Address:      r.Address,
		BirthDate:    r.BirthDate,
		RegisteredAt: r.RegisteredAt,
	}
}

func schoolToCore(r schoolRow) core.School {
	return core.School{ID: r.ID, Name: r.Name, Address: r.Address, Phone: r.Phone, IsActive: r.IsActive}
}

func movementToCore(r stockMovementRow) core.StockMovement {
	return core.StockMovement{
		ID:        r.ID,
		ProductID: r.ProductID,
		OrderID:   r.OrderID,
		Kind:      core.MovementKind(r.Kind),
		Quantity:  r.Quantity,
		Note:      r.Note,
		CreatedAt: r.CreatedAt,
	}
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
