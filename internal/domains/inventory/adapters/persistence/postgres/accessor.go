package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/olamileke/vendora/internal/domains/inventory/domain"
	"github.com/olamileke/vendora/internal/domains/inventory/ports"
)

var _ ports.Accessor = (*Accessor)(nil)

// Accessor reads product variants from PostgreSQL using GORM.
type Accessor struct {
	db *gorm.DB
}

// NewAccessor wires a PostgreSQL-backed variant accessor. Caller manages DB lifecycle.
func NewAccessor(db *gorm.DB) *Accessor {
	return &Accessor{db: db}
}

// variantRow is the joined projection of a variant with its product.
type variantRow struct {
	ID              string
	ProductID       string
	ProductName     string
	Size            string
	Color           string
	BasePrice       int64
	PriceAdjustment int64
	Stock           int
}

// GetVariant loads the variant joined with its product for pricing.
func (a *Accessor) GetVariant(ctx context.Context, id string) (*domain.Variant, error) {
	if err := a.ensureDB(); err != nil {
		return nil, err
	}
	var row variantRow
	err := a.db.WithContext(ctx).
		Table("product_variants").
		Select(`product_variants.id, product_variants.product_id, products.name AS product_name,
			product_variants.size, product_variants.color, products.base_price,
			product_variants.price_adjustment, product_variants.stock`).
		Joins("JOIN products ON products.id = product_variants.product_id").
		Where("product_variants.id = ?", id).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrVariantNotFound
		}
		return nil, err
	}
	return &domain.Variant{
		ID:              row.ID,
		ProductID:       row.ProductID,
		ProductName:     row.ProductName,
		Size:            row.Size,
		Color:           row.Color,
		BasePrice:       row.BasePrice,
		PriceAdjustment: row.PriceAdjustment,
		Stock:           row.Stock,
	}, nil
}

func (a *Accessor) ensureDB() error {
	if a == nil || a.db == nil {
		return errors.New("postgres variant accessor not configured")
	}
	return nil
}
