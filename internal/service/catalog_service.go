package service

import (
	"errors"
	"fmt"

	"go-storefront-api/internal/model"
	"go-storefront-api/internal/repository"
	"go-storefront-api/internal/ws"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrProductExists   = errors.New("this product already exists")
	ErrProductNotFound = errors.New("this product does not exist")
)

type CatalogService interface {
	CreateProduct(in *model.ProductInput) (*model.Product, error)
	UpdateProduct(id uuid.UUID, in *model.ProductInput) (*model.Product, error)
	DeleteProduct(id uuid.UUID) error
	GetProduct(id uuid.UUID) (*model.Product, error)
	ListProducts(filter model.ProductFilter, page model.Pagination) (*model.ProductPage, error)
	IncrementStockBySKU(sku string, quantity int) (*model.Product, error)
	RecentMovements(limit int) ([]model.StockMovement, error)
}

type catalogService struct {
	products  repository.ProductRepository
	movements repository.MovementRepository
	db        *gorm.DB
	wsHub     *ws.Hub
}

func NewCatalogService(pRepo repository.ProductRepository, mRepo repository.MovementRepository, db *gorm.DB, hub *ws.Hub) CatalogService {
	return &catalogService{
		products:  pRepo,
		movements: mRepo,
		db:        db,
		wsHub:     hub,
	}
}

// CreateProduct persists a new product after the duplicate check. A name
// collision alone blocks creation even with a distinct SKU.
func (s *catalogService) CreateProduct(in *model.ProductInput) (*model.Product, error) {
	product := in.ToProduct()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.products.FindDuplicate(tx, in.Name, in.SKU, uuid.Nil); err == nil {
			return ErrProductExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := s.products.Create(tx, product); err != nil {
			return err
		}

		if product.Stock > 0 {
			return s.movements.Create(tx, &model.StockMovement{
				ProductID:      product.ID,
				Delta:          product.Stock,
				ResultingStock: product.Stock,
				Source:         model.MovementManual,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.PublishCatalogEvent(ws.ActionProductCreated, product,
		fmt.Sprintf("Product '%s' created", product.Name))
	return product, nil
}

// UpdateProduct replaces every mutable field of the identified product.
// The duplicate check excludes the record being edited so a no-op save
// still succeeds.
func (s *catalogService) UpdateProduct(id uuid.UUID, in *model.ProductInput) (*model.Product, error) {
	var updated *model.Product

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing model.Product
		if err := tx.First(&existing, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		if _, err := s.products.FindDuplicate(tx, in.Name, in.SKU, id); err == nil {
			return ErrProductExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		oldStock := existing.Stock
		in.Apply(&existing)

		if err := s.products.Save(tx, &existing); err != nil {
			return err
		}

		if delta := existing.Stock - oldStock; delta != 0 {
			if err := s.movements.Create(tx, &model.StockMovement{
				ProductID:      existing.ID,
				Delta:          delta,
				ResultingStock: existing.Stock,
				Source:         model.MovementManual,
			}); err != nil {
				return err
			}
		}

		updated = &existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.PublishCatalogEvent(ws.ActionProductUpdated, updated,
		fmt.Sprintf("Product '%s' updated", updated.Name))
	return updated, nil
}

func (s *catalogService) DeleteProduct(id uuid.UUID) error {
	product, err := s.products.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	if err := s.products.Delete(id); err != nil {
		return err
	}

	s.wsHub.PublishCatalogEvent(ws.ActionProductDeleted, product,
		fmt.Sprintf("Product '%s' deleted", product.Name))
	return nil
}

func (s *catalogService) GetProduct(id uuid.UUID) (*model.Product, error) {
	product, err := s.products.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *catalogService) ListProducts(filter model.ProductFilter, page model.Pagination) (*model.ProductPage, error) {
	return s.products.List(filter, page)
}

// IncrementStockBySKU is the scan submit path. The stock change is a
// single atomic UPDATE; the movement row rides in the same transaction.
func (s *catalogService) IncrementStockBySKU(sku string, quantity int) (*model.Product, error) {
	if quantity <= 0 {
		quantity = 1
	}

	var product *model.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		p, err := s.products.IncrementStockBySKU(tx, sku, quantity)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		if err := s.movements.Create(tx, &model.StockMovement{
			ProductID:      p.ID,
			Delta:          quantity,
			ResultingStock: p.Stock,
			Source:         model.MovementScan,
		}); err != nil {
			return err
		}

		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.PublishCatalogEvent(ws.ActionStockScanned, product,
		fmt.Sprintf("Stock for '%s' is now %d", product.Name, product.Stock))
	return product, nil
}

func (s *catalogService) RecentMovements(limit int) ([]model.StockMovement, error) {
	return s.movements.FindRecent(limit)
}
