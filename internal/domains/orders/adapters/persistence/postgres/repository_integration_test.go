//go:build integration

package postgres

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/olamileke/vendora/internal/domains/orders/domain"
	"github.com/olamileke/vendora/internal/domains/orders/ports"
	"github.com/olamileke/vendora/internal/platform/migrations"
)

func setupOrdersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("vendora_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func seedCatalog(t *testing.T, db *gorm.DB, variantID string, stock int) {
	t.Helper()
	require.NoError(t, db.Exec(
		`INSERT INTO products (id, name, base_price, active, created_at, updated_at) VALUES (?, ?, ?, true, NOW(), NOW())`,
		"p-"+variantID, "Ankara Shirt", int64(500000),
	).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO product_variants (id, product_id, size, color, price_adjustment, stock, created_at, updated_at)
		 VALUES (?, ?, 'M', 'Blue', 0, ?, NOW(), NOW())`,
		variantID, "p-"+variantID, stock,
	).Error)
}

func testOrder(id, number, variantID string, quantity int) *domain.Order {
	order, _ := domain.NewOrder(
		id, number, "", "lagos", "NGN",
		domain.Address{FullName: "Ada Obi", Email: "ada@example.com", Line1: "12 Marina Rd", City: "Lagos", Country: "NG"},
		[]domain.Item{{
			VariantID: variantID, ProductID: "p-" + variantID, ProductName: "Ankara Shirt",
			VariantSize: "M", VariantColor: "Blue", Quantity: quantity, UnitPrice: 500000,
		}},
		150000, 0,
	)
	return order
}

func variantStock(t *testing.T, db *gorm.DB, variantID string) int {
	t.Helper()
	var stock int
	require.NoError(t, db.Raw(`SELECT stock FROM product_variants WHERE id = ?`, variantID).Scan(&stock).Error)
	return stock
}

func TestRepository_CreateReservesStock(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	seedCatalog(t, db, "v-1", 5)

	repo := NewRepository(db)
	ctx := context.Background()

	order := testOrder("order-1", "VDR-20250101-AAAA0001", "v-1", 2)
	require.NoError(t, repo.Create(ctx, order))
	assert.Equal(t, 3, variantStock(t, db, "v-1"))

	fetched, err := repo.GetByID(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, fetched.OrderNumber)
	assert.Equal(t, domain.PaymentPending, fetched.PaymentStatus)
	require.Len(t, fetched.Items, 1)
	assert.Equal(t, int64(1000000), fetched.Items[0].Total)

	byNumber, err := repo.GetByNumber(ctx, order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, "order-1", byNumber.ID)
}

func TestRepository_CreateRollsBackOnShortfall(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	seedCatalog(t, db, "v-1", 1)

	repo := NewRepository(db)
	ctx := context.Background()

	order := testOrder("order-1", "VDR-20250101-AAAA0001", "v-1", 2)
	err := repo.Create(ctx, order)
	var stockErr *ports.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Requested)
	assert.Equal(t, 1, stockErr.Available)

	// Nothing was decremented and no order row exists.
	assert.Equal(t, 1, variantStock(t, db, "v-1"))
	_, err = repo.GetByID(ctx, "order-1")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_CreateDuplicateNumber(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	seedCatalog(t, db, "v-1", 10)

	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testOrder("order-1", "VDR-20250101-AAAA0001", "v-1", 1)))
	err := repo.Create(ctx, testOrder("order-2", "VDR-20250101-AAAA0001", "v-1", 1))
	assert.ErrorIs(t, err, ports.ErrOrderNumberTaken)

	// The colliding insert rolled its reservation back too.
	assert.Equal(t, 9, variantStock(t, db, "v-1"))
}

func TestRepository_ConcurrentCreatesNeverOversell(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	seedCatalog(t, db, "v-1", 5)

	repo := NewRepository(db)
	ctx := context.Background()

	const shoppers = 10
	var wg sync.WaitGroup
	errs := make(chan error, shoppers)
	for i := 0; i < shoppers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			order := testOrder(
				fmt.Sprintf("order-%d", i),
				fmt.Sprintf("VDR-20250101-AAAA%04d", i),
				"v-1", 2,
			)
			errs <- repo.Create(ctx, order)
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded int
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var stockErr *ports.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
	}
	// 5 units at 2 per cart: exactly two checkouts can win.
	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 1, variantStock(t, db, "v-1"))
}

func TestRepository_UpdatePaymentGuards(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	seedCatalog(t, db, "v-1", 5)

	repo := NewRepository(db)
	ctx := context.Background()

	order := testOrder("order-1", "VDR-20250101-AAAA0001", "v-1", 1)
	require.NoError(t, repo.Create(ctx, order))

	order.MarkPaid("ref-1")
	order.PaymentProvider = "paystack"
	require.NoError(t, repo.UpdatePayment(ctx, order))

	stored, err := repo.GetByID(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, stored.PaymentStatus)
	assert.Equal(t, "ref-1", stored.PaymentReference)

	// A late FAILED write bounces off the guard.
	late := *stored
	late.PaymentStatus = domain.PaymentFailed
	late.PaymentReference = "ref-2"
	require.NoError(t, repo.UpdatePayment(ctx, &late))

	stored, err = repo.GetByID(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, stored.PaymentStatus)
	assert.Equal(t, "ref-1", stored.PaymentReference)

	// The explicit refund transition is the one allowed overwrite.
	require.NoError(t, stored.MarkRefunded())
	require.NoError(t, repo.UpdatePayment(ctx, stored))
	stored, err = repo.GetByID(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentRefunded, stored.PaymentStatus)
}

func TestRepository_UpdateStatus(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	seedCatalog(t, db, "v-1", 5)

	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testOrder("order-1", "VDR-20250101-AAAA0001", "v-1", 1)))

	updated, err := repo.UpdateStatus(ctx, "order-1", domain.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, updated.Status)

	_, err = repo.UpdateStatus(ctx, "no-such-order", domain.StatusShipped)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
