package models

// DeliveryStatus mirrors the backend's estado_entrega values.
type DeliveryStatus string

const (
	DeliveryPending    DeliveryStatus = "PENDIENTE"
	DeliveryPreparing  DeliveryStatus = "EN_PREPARACION"
	DeliveryShipped    DeliveryStatus = "ENVIADO"
	DeliveryDelivered  DeliveryStatus = "ENTREGADO"
	DeliveryCancelled  DeliveryStatus = "CANCELADO"
)

// Order is a checkout transaction (orden) for one or more line items.
type Order struct {
	ID             int            `json:"id"`
	Date           string         `json:"fecha"`
	TotalAmount    float64        `json:"monto_total,string"`
	PaymentStatus  PaymentStatus  `json:"estado_pago"`
	DeliveryStatus DeliveryStatus `json:"estado_entrega"`
	Items          []OrderItem    `json:"detalles,omitempty"`
	Transactions   []Transaction  `json:"transacciones,omitempty"`
}

// OrderItem is a product line within an order (detalle_orden).
type OrderItem struct {
	ID          int     `json:"id"`
	ProductID   int     `json:"producto"`
	ProductName string  `json:"producto_nombre,omitempty"`
	Quantity    int     `json:"cantidad"`
	UnitPrice   float64 `json:"precio_unitario,string"`
}

// Subtotal returns quantity times unit price.
func (i OrderItem) Subtotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// HasPendingReceipt reports whether a receipt awaits admin review.
func (o *Order) HasPendingReceipt() bool {
	for _, t := range o.Transactions {
		if t.Receipt != "" && t.Status == TransactionPending {
			return true
		}
	}
	return false
}
