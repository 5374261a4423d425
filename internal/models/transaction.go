package models

// TransactionStatus mirrors the backend's transaction estado values.
type TransactionStatus string

const (
	TransactionPending  TransactionStatus = "PENDIENTE"
	TransactionApproved TransactionStatus = "APROBADO"
	TransactionRejected TransactionStatus = "RECHAZADO"
)

// Transaction is an uploaded proof-of-payment (comprobante) tied to an
// enrollment or an order, reviewed by an administrator.
type Transaction struct {
	ID           int               `json:"id"`
	EnrollmentID int               `json:"inscripcion,omitempty"`
	OrderID      int               `json:"orden,omitempty"`
	Amount       float64           `json:"monto,string"`
	Receipt      string            `json:"comprobante,omitempty"`
	Date         string            `json:"fecha,omitempty"`
	Status       TransactionStatus `json:"estado"`
	Note         string            `json:"observacion,omitempty"`
}
