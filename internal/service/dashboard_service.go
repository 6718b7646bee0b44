package service

import (
	"go-storefront-api/internal/model"
	"go-storefront-api/internal/repository"
)

// LowStockThreshold marks products the dashboard flags for reorder.
const LowStockThreshold = 10

type DashboardService interface {
	GetCatalogStats() (*model.CatalogStats, error)
}

type dashboardService struct {
	products repository.ProductRepository
}

func NewDashboardService(pRepo repository.ProductRepository) DashboardService {
	return &dashboardService{products: pRepo}
}

func (s *dashboardService) GetCatalogStats() (*model.CatalogStats, error) {
	return s.products.Stats(LowStockThreshold)
}
