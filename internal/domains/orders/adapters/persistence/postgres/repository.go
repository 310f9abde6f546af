package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	inventoryports "github.com/olamileke/vendora/internal/domains/inventory/ports"
	"github.com/olamileke/vendora/internal/domains/orders/domain"
	"github.com/olamileke/vendora/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed order repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// orderRecord maps the order aggregate to a relational table.
type orderRecord struct {
	ID               string            `gorm:"primaryKey;column:id;size:36"`
	OrderNumber      string            `gorm:"column:order_number;size:32;uniqueIndex"`
	UserID           *string           `gorm:"column:user_id;size:36;index"`
	Status           string            `gorm:"column:status;type:varchar(16);index"`
	PaymentStatus    string            `gorm:"column:payment_status;type:varchar(16);index"`
	PaymentProvider  string            `gorm:"column:payment_provider;size:16"`
	PaymentReference string            `gorm:"column:payment_reference;size:128"`
	Subtotal         int64             `gorm:"column:subtotal"`
	ShippingFee      int64             `gorm:"column:shipping_fee"`
	Discount         int64             `gorm:"column:discount"`
	Total            int64             `gorm:"column:total"`
	Currency         string            `gorm:"column:currency;size:8"`
	ShippingZoneID   string            `gorm:"column:shipping_zone_id;size:64"`
	ShipFullName     string            `gorm:"column:ship_full_name"`
	ShipPhone        string            `gorm:"column:ship_phone"`
	ShipEmail        string            `gorm:"column:ship_email"`
	ShipLine1        string            `gorm:"column:ship_line1"`
	ShipLine2        string            `gorm:"column:ship_line2"`
	ShipCity         string            `gorm:"column:ship_city"`
	ShipState        string            `gorm:"column:ship_state"`
	ShipPostalCode   string            `gorm:"column:ship_postal_code"`
	ShipCountry      string            `gorm:"column:ship_country"`
	Items            []orderItemRecord `gorm:"foreignKey:OrderID;references:ID"`
	CreatedAt        time.Time         `gorm:"column:created_at;index"`
	UpdatedAt        time.Time         `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

// orderItemRecord carries one purchased line plus catalog snapshot fields.
type orderItemRecord struct {
	ID           int64  `gorm:"primaryKey;autoIncrement;column:id"`
	OrderID      string `gorm:"column:order_id;size:36;index"`
	VariantID    string `gorm:"column:variant_id;size:36;index"`
	ProductID    string `gorm:"column:product_id;size:36"`
	ProductName  string `gorm:"column:product_name"`
	VariantSize  string `gorm:"column:variant_size;size:32"`
	VariantColor string `gorm:"column:variant_color;size:32"`
	Quantity     int    `gorm:"column:quantity"`
	UnitPrice    int64  `gorm:"column:unit_price"`
	Total        int64  `gorm:"column:total"`
}

func (orderItemRecord) TableName() string { return "order_items" }

type variantStockRow struct {
	ID    string
	Stock int
}

// Create reserves stock and inserts the order in one transaction.
//
// Every touched variant row is locked with SELECT ... FOR UPDATE before the
// stock re-check and decrement, so concurrent checkouts against the same
// variant serialize and the sum of successful decrements can never exceed
// the starting stock. Any shortfall or insert failure rolls the whole
// checkout back.
func (r *Repository) Create(ctx context.Context, order *domain.Order) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			var row variantStockRow
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Table("product_variants").
				Select("id, stock").
				Where("id = ?", item.VariantID).
				Take(&row).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return inventoryports.ErrVariantNotFound
				}
				return err
			}
			if row.Stock < item.Quantity {
				return &ports.InsufficientStockError{
					ProductName:  item.ProductName,
					VariantSize:  item.VariantSize,
					VariantColor: item.VariantColor,
					Requested:    item.Quantity,
					Available:    row.Stock,
				}
			}
			if err := tx.Table("product_variants").
				Where("id = ?", item.VariantID).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity)).Error; err != nil {
				return err
			}
		}

		record := toRecord(order)
		if err := tx.Create(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ports.ErrOrderNumberTaken
			}
			return err
		}
		order.CreatedAt = record.CreatedAt
		order.UpdatedAt = record.UpdatedAt
		return nil
	})
}

// GetByID fetches an order with its items.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.getBy(ctx, "id = ?", id)
}

// GetByNumber fetches an order by its customer-facing number.
func (r *Repository) GetByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return r.getBy(ctx, "order_number = ?", orderNumber)
}

// UpdateStatus overwrites the fulfillment status and returns the fresh row.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	result := r.db.WithContext(ctx).Model(&orderRecord{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": string(status), "updated_at": gorm.Expr("NOW()")})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// UpdatePayment persists payment fields. The guard clause keeps a PAID row
// immutable except for the explicit refund transition, so duplicate or
// out-of-order webhook events cannot rewrite a settled payment.
func (r *Repository) UpdatePayment(ctx context.Context, order *domain.Order) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&orderRecord{}).
		Where("id = ?", order.ID).
		Where("payment_status <> ? OR ? = ?",
			string(domain.PaymentPaid), string(order.PaymentStatus), string(domain.PaymentRefunded)).
		Updates(map[string]any{
			"payment_status":    string(order.PaymentStatus),
			"payment_reference": order.PaymentReference,
			"payment_provider":  order.PaymentProvider,
			"updated_at":        gorm.Expr("NOW()"),
		})
	return result.Error
}

func (r *Repository) getBy(ctx context.Context, query string, arg any) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).Preload("Items").First(&record, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	var userID *string
	if order.UserID != "" {
		id := order.UserID
		userID = &id
	}
	record := orderRecord{
		ID:               order.ID,
		OrderNumber:      order.OrderNumber,
		UserID:           userID,
		Status:           string(order.Status),
		PaymentStatus:    string(order.PaymentStatus),
		PaymentProvider:  order.PaymentProvider,
		PaymentReference: order.PaymentReference,
		Subtotal:         order.Subtotal,
		ShippingFee:      order.ShippingFee,
		Discount:         order.Discount,
		Total:            order.Total,
		Currency:         order.Currency,
		ShippingZoneID:   order.ShippingZoneID,
		ShipFullName:     order.ShippingAddress.FullName,
		ShipPhone:        order.ShippingAddress.Phone,
		ShipEmail:        order.ShippingAddress.Email,
		ShipLine1:        order.ShippingAddress.Line1,
		ShipLine2:        order.ShippingAddress.Line2,
		ShipCity:         order.ShippingAddress.City,
		ShipState:        order.ShippingAddress.State,
		ShipPostalCode:   order.ShippingAddress.PostalCode,
		ShipCountry:      order.ShippingAddress.Country,
	}
	record.Items = make([]orderItemRecord, 0, len(order.Items))
	for _, item := range order.Items {
		record.Items = append(record.Items, orderItemRecord{
			OrderID:      order.ID,
			VariantID:    item.VariantID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			VariantSize:  item.VariantSize,
			VariantColor: item.VariantColor,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			Total:        item.Total,
		})
	}
	return record
}

func (r orderRecord) toDomain() *domain.Order {
	var userID string
	if r.UserID != nil {
		userID = *r.UserID
	}
	order := &domain.Order{
		ID:               r.ID,
		OrderNumber:      r.OrderNumber,
		UserID:           userID,
		Status:           domain.Status(r.Status),
		PaymentStatus:    domain.PaymentStatus(r.PaymentStatus),
		PaymentProvider:  r.PaymentProvider,
		PaymentReference: r.PaymentReference,
		Subtotal:         r.Subtotal,
		ShippingFee:      r.ShippingFee,
		Discount:         r.Discount,
		Total:            r.Total,
		Currency:         r.Currency,
		ShippingZoneID:   r.ShippingZoneID,
		ShippingAddress: domain.Address{
			FullName:   r.ShipFullName,
			Phone:      r.ShipPhone,
			Email:      r.ShipEmail,
			Line1:      r.ShipLine1,
			Line2:      r.ShipLine2,
			City:       r.ShipCity,
			State:      r.ShipState,
			PostalCode: r.ShipPostalCode,
			Country:    r.ShipCountry,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	order.Items = make([]domain.Item, 0, len(r.Items))
	for _, item := range r.Items {
		order.Items = append(order.Items, domain.Item{
			VariantID:    item.VariantID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			VariantSize:  item.VariantSize,
			VariantColor: item.VariantColor,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			Total:        item.Total,
		})
	}
	return order
}
