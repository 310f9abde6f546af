package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Intended to replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if err := db.AutoMigrate(
		&productRecord{},
		&productVariantRecord{},
		&shippingZoneRecord{},
		&orderRecord{},
		&orderItemRecord{},
	); err != nil {
		return err
	}
	// Stock can never go negative even if an application-level check is bypassed.
	return db.Exec(`ALTER TABLE product_variants DROP CONSTRAINT IF EXISTS chk_product_variants_stock;
		ALTER TABLE product_variants ADD CONSTRAINT chk_product_variants_stock CHECK (stock >= 0)`).Error
}

// Product schema mirrors the inventory Postgres accessor's join target.
type productRecord struct {
	ID          string         `gorm:"primaryKey;column:id;size:36"`
	Name        string         `gorm:"column:name"`
	Description string         `gorm:"column:description;type:text"`
	BasePrice   int64          `gorm:"column:base_price"`
	Images      pq.StringArray `gorm:"column:images;type:text[]"`
	Category    string         `gorm:"column:category;size:64;index"`
	Active      bool           `gorm:"column:active;index"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

// Variant schema mirrors the inventory Postgres accessor and the stock
// reservation query in the orders Postgres repository.
type productVariantRecord struct {
	ID              string    `gorm:"primaryKey;column:id;size:36"`
	ProductID       string    `gorm:"column:product_id;size:36;index"`
	Size            string    `gorm:"column:size;size:32"`
	Color           string    `gorm:"column:color;size:32"`
	PriceAdjustment int64     `gorm:"column:price_adjustment"`
	Stock           int       `gorm:"column:stock"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (productVariantRecord) TableName() string { return "product_variants" }

// Zone schema mirrors the shipping Postgres repository.
type shippingZoneRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:64"`
	Name      string    `gorm:"column:name"`
	Fee       int64     `gorm:"column:fee"`
	Currency  string    `gorm:"column:currency;size:8"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (shippingZoneRecord) TableName() string { return "shipping_zones" }

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID               string    `gorm:"primaryKey;column:id;size:36"`
	OrderNumber      string    `gorm:"column:order_number;size:32;uniqueIndex"`
	UserID           *string   `gorm:"column:user_id;size:36;index"`
	Status           string    `gorm:"column:status;type:varchar(16);index"`
	PaymentStatus    string    `gorm:"column:payment_status;type:varchar(16);index"`
	PaymentProvider  string    `gorm:"column:payment_provider;size:16"`
	PaymentReference string    `gorm:"column:payment_reference;size:128"`
	Subtotal         int64     `gorm:"column:subtotal"`
	ShippingFee      int64     `gorm:"column:shipping_fee"`
	Discount         int64     `gorm:"column:discount"`
	Total            int64     `gorm:"column:total"`
	Currency         string    `gorm:"column:currency;size:8"`
	ShippingZoneID   string    `gorm:"column:shipping_zone_id;size:64"`
	ShipFullName     string    `gorm:"column:ship_full_name"`
	ShipPhone        string    `gorm:"column:ship_phone"`
	ShipEmail        string    `gorm:"column:ship_email"`
	ShipLine1        string    `gorm:"column:ship_line1"`
	ShipLine2        string    `gorm:"column:ship_line2"`
	ShipCity         string    `gorm:"column:ship_city"`
	ShipState        string    `gorm:"column:ship_state"`
	ShipPostalCode   string    `gorm:"column:ship_postal_code"`
	ShipCountry      string    `gorm:"column:ship_country"`
	CreatedAt        time.Time `gorm:"column:created_at;index"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

// Order item schema mirrors the orders Postgres adapter.
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
