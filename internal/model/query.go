package model

// ProductFilter narrows a product listing. All fields are optional and
// combine with AND; the search term is an OR across name, SKU and
// description (case-insensitive substring).
type ProductFilter struct {
	Search   string
	MinPrice *float64
	MaxPrice *float64
	MinStock *int
	MaxStock *int
	Brand    string
}

// Pagination describes the requested page slice and ordering.
type Pagination struct {
	PageNumber int // 1-based
	PageSize   int
	SortBy     string
	SortOrder  string // "asc" or "desc"
}

const (
	DefaultPageSize  = 10
	DefaultSortBy    = "created_at"
	DefaultSortOrder = "desc"
)

// sortColumns whitelists the columns a client may order by. Anything
// outside the map falls back to the default so request input never
// reaches the ORDER BY clause verbatim.
var sortColumns = map[string]string{
	"name":       "name",
	"sku":        "sku",
	"brand":      "brand",
	"price":      "price",
	"stock":      "stock",
	"createdAt":  "created_at",
	"created_at": "created_at",
	"updatedAt":  "updated_at",
	"updated_at": "updated_at",
}

// Normalized fills defaults and clamps out-of-domain values.
func (p Pagination) Normalized() Pagination {
	if p.PageNumber < 1 {
		p.PageNumber = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if _, ok := sortColumns[p.SortBy]; !ok {
		p.SortBy = DefaultSortBy
	}
	if p.SortOrder != "asc" && p.SortOrder != "desc" {
		p.SortOrder = DefaultSortOrder
	}
	return p
}

// OrderClause renders the whitelisted ORDER BY expression.
func (p Pagination) OrderClause() string {
	return sortColumns[p.SortBy] + " " + p.SortOrder
}

// Offset is the number of rows skipped before the page slice.
func (p Pagination) Offset() int {
	return (p.PageNumber - 1) * p.PageSize
}

// ProductPage is the shaped result of a listing query.
type ProductPage struct {
	Products   []Product `json:"products"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// CatalogStats backs the dashboard landing page.
type CatalogStats struct {
	TotalProducts  int64   `json:"total_products"`
	UnitsInStock   int64   `json:"units_in_stock"`
	InventoryValue float64 `json:"inventory_value"`
	LowStockCount  int64   `json:"low_stock_count"`
}
