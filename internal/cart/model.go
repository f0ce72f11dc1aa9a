package cart

import (
	"time"

	"github.com/gofrs/uuid"

	"github.com/camilovelasq/tienda-backend/internal/catalog"
)

// Item is one (user, product, size) line. The combination is unique, enforced
// by a DB constraint; repeated adds increment the quantity instead.
type Item struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"usuario_id"`
	ProductID uuid.UUID `json:"producto_id"`
	Size      string    `json:"talla,omitempty"`
	Quantity  int       `json:"cantidad"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemDetail is a cart line joined with the current product row, the shape
// every cart read returns so callers never chase product state separately.
type ItemDetail struct {
	Item
	ProductName   string                `json:"producto_nombre"`
	ProductPrice  float64               `json:"precio_unitario"`
	ProductStock  int                   `json:"stock_disponible"`
	ProductStatus catalog.ProductStatus `json:"producto_estado"`
	ImageURL      string                `json:"imagen"`
	LineSubtotal  float64               `json:"subtotal"`
}

type IssueKind string

const (
	IssueUnavailable IssueKind = "unavailable"
	IssueLowStock    IssueKind = "low_stock"
)

// Issue describes one problematic cart line found by Validate or AutoAdjust.
type Issue struct {
	ProductID   uuid.UUID `json:"producto_id"`
	ProductName string    `json:"producto_nombre"`
	Size        string    `json:"talla,omitempty"`
	Requested   int       `json:"cantidad_solicitada"`
	Available   int       `json:"stock_disponible"`
	Kind        IssueKind `json:"tipo"`
}

type Summary struct {
	Items        []ItemDetail `json:"items"`
	Count        int          `json:"cantidad_items"`
	Subtotal     float64      `json:"subtotal"`
	FreeShipping bool         `json:"envio_gratis"`
	ShippingCost float64      `json:"costo_envio"`
	Total        float64      `json:"total"`
}

// Defaults for the shipping rule; overridable through configuration.
const (
	DefaultFreeShippingThreshold = 200000
	DefaultShippingFee           = 15000
)
