package handler

import (
	"fmt"
	"strconv"

	"go-storefront-api/internal/model"
	"go-storefront-api/internal/service"
	"go-storefront-api/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CatalogHandler struct {
	service service.CatalogService
}

func NewCatalogHandler(s service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: s}
}

// ListProducts serves the server-side paginated/filtered product table
// GET /api/v1/products
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	page := model.Pagination{
		PageNumber: c.QueryInt("pageNumber", 1),
		PageSize:   c.QueryInt("pageSize", model.DefaultPageSize),
		SortBy:     c.Query("sortBy", model.DefaultSortBy),
		SortOrder:  c.Query("sortOrder", model.DefaultSortOrder),
	}

	filter := model.ProductFilter{
		Search:   c.Query("search"),
		Brand:    c.Query("brand"),
		MinPrice: queryFloat(c, "minPrice"),
		MaxPrice: queryFloat(c, "maxPrice"),
		MinStock: queryInt(c, "minStock"),
		MaxStock: queryInt(c, "maxStock"),
	}

	result, err := h.service.ListProducts(filter, page)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load products"})
	}

	return c.JSON(result)
}

// productAction carries the dispatch fields of a products form post
type productAction struct {
	Action   string `json:"action" form:"action"`
	SKU      string `json:"sku" form:"sku"`
	Quantity int    `json:"quantity" form:"quantity"`
}

// SubmitProduct dispatches a products form post: the scan dialog submits
// {action: "incrementStock", sku}, everything else is a create
// POST /api/v1/products
func (h *CatalogHandler) SubmitProduct(c *fiber.Ctx) error {
	var action productAction
	if err := c.BodyParser(&action); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if action.Action == "incrementStock" {
		return h.incrementStock(c, action)
	}
	return h.createProduct(c)
}

func (h *CatalogHandler) incrementStock(c *fiber.Ctx, action productAction) error {
	if action.SKU == "" {
		return c.Status(400).JSON(fiber.Map{"error": "SKU is required"})
	}

	product, err := h.service.IncrementStockBySKU(action.SKU, action.Quantity)
	if err != nil {
		if err == service.ErrProductNotFound {
			return c.Status(404).JSON(fiber.Map{"error": fmt.Sprintf("Product with SKU %s not found", action.SKU)})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update product stock"})
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Stock for '%s' is now %d", product.Name, product.Stock),
		"product": product,
	})
}

func (h *CatalogHandler) createProduct(c *fiber.Ctx) error {
	var input model.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if errs := validation.Check(&input); errs != nil {
		return validationFailed(c, errs, input)
	}

	product, err := h.service.CreateProduct(&input)
	if err != nil {
		if err == service.ErrProductExists {
			return c.Status(409).JSON(fiber.Map{"error": "This product already exists."})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to create product"})
	}

	return c.Status(201).JSON(fiber.Map{"message": "Product created", "product": product})
}

// GetProduct serves the edit form loader
// GET /api/v1/products/:id
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	product, err := h.service.GetProduct(id)
	if err != nil {
		if err == service.ErrProductNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "This product does not exist."})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load product"})
	}

	return c.JSON(fiber.Map{"product": product})
}

// UpdateProduct replaces every mutable field
// PUT /api/v1/products/:id
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var input model.ProductInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if errs := validation.Check(&input); errs != nil {
		return validationFailed(c, errs, input)
	}

	product, err := h.service.UpdateProduct(id, &input)
	if err != nil {
		switch err {
		case service.ErrProductNotFound:
			return c.Status(404).JSON(fiber.Map{"error": "This product does not exist."})
		case service.ErrProductExists:
			return c.Status(409).JSON(fiber.Map{"error": "This product already exists."})
		default:
			return c.Status(500).JSON(fiber.Map{"error": "Failed to update product"})
		}
	}

	return c.JSON(fiber.Map{"message": "Product updated", "product": product})
}

// DeleteProduct removes a product after the existence check
// DELETE /api/v1/products/:id
func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	if err := h.service.DeleteProduct(id); err != nil {
		if err == service.ErrProductNotFound {
			return c.Status(404).JSON(fiber.Map{"error": "This product does not exist."})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Failed to delete product"})
	}

	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// ListMovements serves the stock movement audit feed
// GET /api/v1/stock-movements
func (h *CatalogHandler) ListMovements(c *fiber.Ctx) error {
	movements, err := h.service.RecentMovements(c.QueryInt("limit", 50))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load stock movements"})
	}
	return c.JSON(fiber.Map{"movements": movements})
}

// queryFloat parses an optional numeric query param, nil when absent or malformed
func queryFloat(c *fiber.Ctx, key string) *float64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func queryInt(c *fiber.Ctx, key string) *int {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}
