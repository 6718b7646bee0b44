package service

import (
	"sync"
	"testing"

	"go-storefront-api/internal/model"
	"go-storefront-api/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupCatalog(t *testing.T) (CatalogService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Product{}, &model.StockMovement{}))

	svc := NewCatalogService(repository.NewProductRepo(db), repository.NewMovementRepo(db), db, nil)
	return svc, db
}

func productCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.Product{}).Count(&n).Error)
	return n
}

func intPtr(v int) *int { return &v }

func TestCreateProduct(t *testing.T) {
	svc, db := setupCatalog(t)

	t.Run("round-trips the submitted fields", func(t *testing.T) {
		created, err := svc.CreateProduct(&model.ProductInput{
			Name: "Rice 5kg", SKU: "RICE-5KG", Price: 250.00, Stock: intPtr(20),
		})
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, created.ID)

		fetched, err := svc.GetProduct(created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Rice 5kg", fetched.Name)
		assert.Equal(t, "RICE-5KG", fetched.SKU)
		assert.Equal(t, 250.00, fetched.Price)
		assert.Equal(t, 20, fetched.Stock)
		assert.False(t, fetched.CreatedAt.IsZero())
	})

	t.Run("stock defaults to zero when omitted", func(t *testing.T) {
		created, err := svc.CreateProduct(&model.ProductInput{Name: "Olive Oil", SKU: "OIL-EV-1", Price: 120})
		require.NoError(t, err)
		assert.Equal(t, 0, created.Stock)
	})

	t.Run("name collision alone blocks creation", func(t *testing.T) {
		before := productCount(t, db)
		_, err := svc.CreateProduct(&model.ProductInput{Name: "Rice 5kg", SKU: "FRESH-SKU", Price: 1})
		assert.ErrorIs(t, err, ErrProductExists)
		assert.Equal(t, before, productCount(t, db))
	})

	t.Run("sku collision alone blocks creation", func(t *testing.T) {
		before := productCount(t, db)
		_, err := svc.CreateProduct(&model.ProductInput{Name: "Fresh Name", SKU: "RICE-5KG", Price: 1})
		assert.ErrorIs(t, err, ErrProductExists)
		assert.Equal(t, before, productCount(t, db))
	})

	t.Run("initial stock writes a movement row", func(t *testing.T) {
		movements, err := svc.RecentMovements(50)
		require.NoError(t, err)
		require.NotEmpty(t, movements)
		assert.Equal(t, 20, movements[len(movements)-1].Delta)
		assert.Equal(t, model.MovementManual, movements[len(movements)-1].Source)
	})
}

func TestUpdateProduct(t *testing.T) {
	svc, _ := setupCatalog(t)

	rice, err := svc.CreateProduct(&model.ProductInput{Name: "Rice 5kg", SKU: "RICE-5KG", Price: 250, Stock: intPtr(20)})
	require.NoError(t, err)
	_, err = svc.CreateProduct(&model.ProductInput{Name: "Olive Oil", SKU: "OIL-EV-1", Price: 120})
	require.NoError(t, err)

	t.Run("no-op save succeeds", func(t *testing.T) {
		updated, err := svc.UpdateProduct(rice.ID, &model.ProductInput{
			Name: "Rice 5kg", SKU: "RICE-5KG", Price: 250, Stock: intPtr(20),
		})
		require.NoError(t, err)
		assert.Equal(t, "Rice 5kg", updated.Name)
	})

	t.Run("replaces every mutable field", func(t *testing.T) {
		updated, err := svc.UpdateProduct(rice.ID, &model.ProductInput{
			Name: "Rice 10kg", SKU: "RICE-10KG", Brand: "Harvest", Price: 480, Stock: intPtr(12),
		})
		require.NoError(t, err)
		assert.Equal(t, "Rice 10kg", updated.Name)
		assert.Equal(t, "RICE-10KG", updated.SKU)
		assert.Equal(t, "Harvest", updated.Brand)
		assert.Equal(t, 480.0, updated.Price)
		assert.Equal(t, 12, updated.Stock)
	})

	t.Run("conflict with a different product", func(t *testing.T) {
		_, err := svc.UpdateProduct(rice.ID, &model.ProductInput{
			Name: "Olive Oil", SKU: "RICE-10KG", Price: 480,
		})
		assert.ErrorIs(t, err, ErrProductExists)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.UpdateProduct(uuid.New(), &model.ProductInput{Name: "X", SKU: "X-1", Price: 1})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestDeleteProduct(t *testing.T) {
	svc, db := setupCatalog(t)

	created, err := svc.CreateProduct(&model.ProductInput{Name: "Rice 5kg", SKU: "RICE-5KG", Price: 250})
	require.NoError(t, err)

	t.Run("unknown id leaves the catalog unchanged", func(t *testing.T) {
		before := productCount(t, db)
		err := svc.DeleteProduct(uuid.New())
		assert.ErrorIs(t, err, ErrProductNotFound)
		assert.Equal(t, before, productCount(t, db))
	})

	t.Run("removes the record", func(t *testing.T) {
		require.NoError(t, svc.DeleteProduct(created.ID))
		_, err := svc.GetProduct(created.ID)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestIncrementStockBySKU(t *testing.T) {
	svc, _ := setupCatalog(t)

	_, err := svc.CreateProduct(&model.ProductInput{Name: "Rice 5kg", SKU: "ABC123", Price: 250, Stock: intPtr(5)})
	require.NoError(t, err)

	t.Run("unknown SKU mutates nothing", func(t *testing.T) {
		_, err := svc.IncrementStockBySKU("NOPE", 1)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("sequential increments sum", func(t *testing.T) {
		p, err := svc.IncrementStockBySKU("ABC123", 1)
		require.NoError(t, err)
		assert.Equal(t, 6, p.Stock)

		p, err = svc.IncrementStockBySKU("ABC123", 1)
		require.NoError(t, err)
		assert.Equal(t, 7, p.Stock)
	})

	t.Run("non-positive quantity defaults to one", func(t *testing.T) {
		p, err := svc.IncrementStockBySKU("ABC123", 0)
		require.NoError(t, err)
		assert.Equal(t, 8, p.Stock)
	})

	t.Run("concurrent increments do not lose updates", func(t *testing.T) {
		const workers = 20

		var wg sync.WaitGroup
		wg.Add(workers)
		for i := 0; i < workers; i++ {
			go func() {
				defer wg.Done()
				_, err := svc.IncrementStockBySKU("ABC123", 1)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		sku := "ABC123"
		p, err := svc.IncrementStockBySKU(sku, 1)
		require.NoError(t, err)
		assert.Equal(t, 8+workers+1, p.Stock)
	})

	t.Run("each scan writes a movement row", func(t *testing.T) {
		movements, err := svc.RecentMovements(100)
		require.NoError(t, err)

		scans := 0
		for _, m := range movements {
			if m.Source == model.MovementScan {
				scans++
				assert.Equal(t, "ABC123", m.Product.SKU)
			}
		}
		assert.Equal(t, 24, scans) // 2 sequential + default-qty + 20 concurrent + 1 final
	})
}
