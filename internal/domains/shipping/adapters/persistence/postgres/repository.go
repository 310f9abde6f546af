package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/olamileke/vendora/internal/domains/shipping/domain"
	"github.com/olamileke/vendora/internal/domains/shipping/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository reads shipping zones from PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed zone repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type zoneRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:64"`
	Name      string    `gorm:"column:name"`
	Fee       int64     `gorm:"column:fee"`
	Currency  string    `gorm:"column:currency;size:8"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (zoneRecord) TableName() string { return "shipping_zones" }

// GetZone fetches a zone by identifier.
func (r *Repository) GetZone(ctx context.Context, id string) (*domain.Zone, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("postgres shipping repository not configured")
	}
	var record zoneRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrZoneNotFound
		}
		return nil, err
	}
	return &domain.Zone{ID: record.ID, Name: record.Name, Fee: record.Fee, Currency: record.Currency}, nil
}
