package repository

import (
	"math"
	"strings"

	"go-storefront-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(tx *gorm.DB, product *model.Product) error
	Save(tx *gorm.DB, product *model.Product) error
	Delete(id uuid.UUID) error
	FindByID(id uuid.UUID) (*model.Product, error)
	FindBySKU(sku string) (*model.Product, error)
	FindDuplicate(tx *gorm.DB, name, sku string, excludeID uuid.UUID) (*model.Product, error)
	List(filter model.ProductFilter, page model.Pagination) (*model.ProductPage, error)
	IncrementStockBySKU(tx *gorm.DB, sku string, quantity int) (*model.Product, error)
	Stats(lowStockThreshold int) (*model.CatalogStats, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

// or returns the outer db when no transaction was handed in
func (r *productRepo) or(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *productRepo) Create(tx *gorm.DB, product *model.Product) error {
	return r.or(tx).Create(product).Error
}

func (r *productRepo) Save(tx *gorm.DB, product *model.Product) error {
	return r.or(tx).Save(product).Error
}

func (r *productRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.Product{}, "id = ?", id).Error
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindBySKU is a first-match lookup; the unique index on sku keeps
// duplicates out of committed state.
func (r *productRepo) FindBySKU(sku string) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "sku = ?", sku).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindDuplicate returns the first product whose name OR sku matches the
// submission. excludeID skips the record being edited; pass uuid.Nil on create.
func (r *productRepo) FindDuplicate(tx *gorm.DB, name, sku string, excludeID uuid.UUID) (*model.Product, error) {
	q := r.or(tx).Where("name = ? OR sku = ?", name, sku)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var product model.Product
	err := q.First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// List translates the filter into a single WHERE clause, counts the
// matches, then fetches the requested page slice. Filters AND together;
// the search term is an OR across name, sku and description.
func (r *productRepo) List(filter model.ProductFilter, page model.Pagination) (*model.ProductPage, error) {
	page = page.Normalized()

	q := r.db.Model(&model.Product{})

	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		q = q.Where(
			"LOWER(name) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(description) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.MinStock != nil {
		q = q.Where("stock >= ?", *filter.MinStock)
	}
	if filter.MaxStock != nil {
		q = q.Where("stock <= ?", *filter.MaxStock)
	}
	if filter.Brand != "" {
		q = q.Where("brand = ?", filter.Brand)
	}

	var totalCount int64
	if err := q.Count(&totalCount).Error; err != nil {
		return nil, err
	}

	products := []model.Product{}
	err := q.Order(page.OrderClause()).
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	return &model.ProductPage{
		Products:   products,
		TotalCount: totalCount,
		TotalPages: int(math.Ceil(float64(totalCount) / float64(page.PageSize))),
	}, nil
}

// IncrementStockBySKU applies the delta as a single UPDATE so concurrent
// scans against the same SKU cannot lose an increment.
func (r *productRepo) IncrementStockBySKU(tx *gorm.DB, sku string, quantity int) (*model.Product, error) {
	db := r.or(tx)
	res := db.Model(&model.Product{}).
		Where("sku = ?", sku).
		Update("stock", gorm.Expr("stock + ?", quantity))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var product model.Product
	if err := db.First(&product, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Stats(lowStockThreshold int) (*model.CatalogStats, error) {
	var stats model.CatalogStats

	if err := r.db.Model(&model.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	row := r.db.Model(&model.Product{}).
		Select("COALESCE(SUM(stock), 0), COALESCE(SUM(price * stock), 0)").
		Row()
	if err := row.Scan(&stats.UnitsInStock, &stats.InventoryValue); err != nil {
		return nil, err
	}
	err := r.db.Model(&model.Product{}).
		Where("stock < ?", lowStockThreshold).
		Count(&stats.LowStockCount).Error
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
