package models

// PaymentStatus mirrors the backend's estado_pago values.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDIENTE"
	PaymentPartial  PaymentStatus = "ABONADO"
	PaymentPaid     PaymentStatus = "PAGADO"
	PaymentVoided   PaymentStatus = "ANULADO"
	PaymentRejected PaymentStatus = "RECHAZADO"
)

// Enrollment is a client's registration in a course or workshop, carrying
// its payment status and any receipt transactions uploaded against it.
type Enrollment struct {
	ID            int           `json:"id"`
	CourseID      int           `json:"curso,omitempty"`
	WorkshopID    int           `json:"taller,omitempty"`
	CourseTitle   string        `json:"curso_titulo,omitempty"`
	WorkshopName  string        `json:"taller_nombre,omitempty"`
	AmountPaid    float64       `json:"monto_pagado,string"`
	PaymentStatus PaymentStatus `json:"estado_pago"`
	EnrolledAt    string        `json:"fecha_inscripcion,omitempty"`
	Progress      int           `json:"progreso,omitempty"`
	Completed     bool          `json:"completado,omitempty"`
	Transactions  []Transaction `json:"transacciones,omitempty"`
}

// HasPendingReceipt reports whether a receipt is already uploaded and
// awaiting admin review, which disables further uploads in the UI.
func (e *Enrollment) HasPendingReceipt() bool {
	for _, t := range e.Transactions {
		if t.Receipt != "" && t.Status == TransactionPending {
			return true
		}
	}
	return false
}

// EnrollmentSets holds the membership sets used to gate "enroll" versus
// "continue" affordances. Purely derived state, never mutated by readers.
type EnrollmentSets struct {
	CourseIDs   map[int]struct{}
	WorkshopIDs map[int]struct{}
}

// NewEnrollmentSets returns empty, non-nil sets.
func NewEnrollmentSets() EnrollmentSets {
	return EnrollmentSets{
		CourseIDs:   make(map[int]struct{}),
		WorkshopIDs: make(map[int]struct{}),
	}
}

func (s EnrollmentSets) HasCourse(id int) bool {
	_, ok := s.CourseIDs[id]
	return ok
}

func (s EnrollmentSets) HasWorkshop(id int) bool {
	_, ok := s.WorkshopIDs[id]
	return ok
}
