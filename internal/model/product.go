package model

type Product struct {
	BaseModel
	Name        string  `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	SKU         string  `gorm:"type:varchar(64);uniqueIndex;not null" json:"sku" validate:"required"`
	Description string  `gorm:"type:text" json:"description"`
	Brand       string  `gorm:"type:varchar(128)" json:"brand"`
	Price       float64 `gorm:"not null;default:0" json:"price" validate:"gte=0"`
	Stock       int     `gorm:"not null;default:0" json:"stock" validate:"gte=0"`
	ImageURL    string  `gorm:"type:varchar(2048)" json:"image_url" validate:"omitempty,url"`
}

// ProductInput is the validated shape of a create/edit submission.
// Stock is a pointer so an absent field can fall back to 0.
type ProductInput struct {
	Name        string  `json:"name" form:"name" validate:"required"`
	SKU         string  `json:"sku" form:"sku" validate:"required"`
	Description string  `json:"description" form:"description"`
	Brand       string  `json:"brand" form:"brand"`
	Price       float64 `json:"price" form:"price" validate:"gte=0"`
	Stock       *int    `json:"stock" form:"stock" validate:"omitempty,gte=0"`
	ImageURL    string  `json:"image_url" form:"image_url" validate:"omitempty,url"`
}

func (in *ProductInput) StockOrDefault() int {
	if in.Stock == nil {
		return 0
	}
	return *in.Stock
}

// ToProduct builds a new Product from the submission
func (in *ProductInput) ToProduct() *Product {
	return &Product{
		Name:        in.Name,
		SKU:         in.SKU,
		Description: in.Description,
		Brand:       in.Brand,
		Price:       in.Price,
		Stock:       in.StockOrDefault(),
		ImageURL:    in.ImageURL,
	}
}

// Apply replaces every mutable field of an existing Product
func (in *ProductInput) Apply(p *Product) {
	p.Name = in.Name
	p.SKU = in.SKU
	p.Description = in.Description
	p.Brand = in.Brand
	p.Price = in.Price
	p.Stock = in.StockOrDefault()
	p.ImageURL = in.ImageURL
}
