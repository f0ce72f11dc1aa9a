package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
)

// Order is a customer's checkout request ("solicitud"). Customer, shipping and
// product fields are snapshots captured at creation; later catalog edits never
// change a placed order. Orders are never deleted; cancellation is a status.
type Order struct {
	ID              uuid.UUID `json:"id"`
	Number          string    `json:"numero"`
	UserID          uuid.UUID `json:"usuario_id"`
	CustomerName    string    `json:"nombre_cliente"`
	CustomerEmail   string    `json:"email_cliente"`
	CustomerPhone   string    `json:"telefono_cliente"`
	ShippingAddress string    `json:"direccion_envio"`
	ShippingCity    string    `json:"ciudad_envio"`
	PaymentMethod   string    `json:"metodo_pago"`
	Status          Status    `json:"estado"`
	Subtotal        float64   `json:"subtotal"`
	Total           float64   `json:"total"`
	RejectReason    *string   `json:"motivo_rechazo,omitempty"`
	Items           []Item    `json:"productos"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Item is one order line with the product snapshotted at order time.
type Item struct {
	ID                 uuid.UUID `json:"id"`
	OrderID            uuid.UUID `json:"solicitud_id"`
	ProductID          uuid.UUID `json:"producto_id"`
	ProductName        string    `json:"producto_nombre"`
	ProductDescription string    `json:"producto_descripcion"`
	ProductImageURL    string    `json:"producto_imagen"`
	Size               string    `json:"talla,omitempty"`
	Quantity           int       `json:"cantidad"`
	UnitPrice          float64   `json:"precio_unitario"`
	Subtotal           float64   `json:"subtotal"`
}

// NewOrder is the checkout input.
type NewOrder struct {
	UserID          uuid.UUID
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ShippingAddress string
	ShippingCity    string
	PaymentMethod   string
	Lines           []NewLine
}

type NewLine struct {
	ProductID uuid.UUID
	Quantity  int
	Size      string
}

// Subtotal computes a line subtotal. Line rows always store the result of this
// function; nothing recomputes it implicitly.
func Subtotal(quantity int, unitPrice float64) float64 {
	return float64(quantity) * unitPrice
}

// TotalsByProduct sums line quantities per product. An order may carry the
// same product on several lines (one per size), so stock checks and restores
// must operate on the per-product total, not per line.
func TotalsByProduct(items []Item) map[uuid.UUID]int {
	totals := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		totals[item.ProductID] += item.Quantity
	}
	return totals
}

// NewNumber builds a human-readable order number from the creation time plus a
// random suffix. The generation scheme is not what guarantees uniqueness; the
// DB has a unique constraint on the column.
func NewNumber(now time.Time) (string, error) {
	suffix, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("failed to generate order number suffix: %w", err)
	}
	return fmt.Sprintf("SOL-%s-%s", now.Format("20060102"), strings.ToUpper(suffix.String()[:6])), nil
}
