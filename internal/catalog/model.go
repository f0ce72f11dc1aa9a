package catalog

import (
	"time"

	"github.com/gofrs/uuid"
)

type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
)

type Product struct {
	ID            uuid.UUID     `json:"id"`
	Name          string        `json:"nombre"`
	Description   string        `json:"descripcion"`
	ImageURL      string        `json:"imagen"`
	Price         float64       `json:"precio"`
	OriginalPrice *float64      `json:"precio_original,omitempty"`
	Stock         int           `json:"stock"`
	Status        ProductStatus `json:"estado"`
	CategoryID    *uuid.UUID    `json:"categoria_id,omitempty"`
	Rating        float64       `json:"calificacion"`
	Sizes         []string      `json:"tallas"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// HasDiscount reports whether the product is discounted: an original price is
// recorded and it is strictly greater than the current price.
func (p *Product) HasDiscount() bool {
	return p.OriginalPrice != nil && *p.OriginalPrice > p.Price
}

type Category struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"nombre"`
	Status    ProductStatus `json:"estado"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ProductFilter narrows product listings. Zero values mean "no filter".
type ProductFilter struct {
	CategoryID *uuid.UUID
	Status     *ProductStatus
	Search     string
	Page       int
	Limit      int
}
