package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"tmm-bienestar/internal/middleware"
	"tmm-bienestar/internal/models"
	"tmm-bienestar/internal/services"
)

// ProfileHandler serves the logged-in account area.
type ProfileHandler struct {
	auth     *services.AuthService
	cart     *services.CartService
	payments *services.PaymentFlowService
	renderer *Renderer
	csrf     func(*http.Request) string
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(auth *services.AuthService, cart *services.CartService, payments *services.PaymentFlowService, renderer *Renderer, csrf func(*http.Request) string) *ProfileHandler {
	return &ProfileHandler{auth: auth, cart: cart, payments: payments, renderer: renderer, csrf: csrf}
}

func (h *ProfileHandler) pageData(r *http.Request, title string) PageData {
	browserID := middleware.GetBrowserID(r.Context())
	return PageData{
		Title:     title,
		Session:   middleware.GetSessionFromContext(r.Context()),
		CartCount: services.CartCount(h.cart.Items(r.Context(), browserID)),
		CSRFToken: h.csrf(r),
	}
}

// ProfilePage shows the account with enrollments, orders and pending
// payments in tabs.
func (h *ProfileHandler) ProfilePage(w http.ResponseWriter, r *http.Request) {
	browserID := middleware.GetBrowserID(r.Context())
	client := h.auth.Client(browserID)

	user, err := client.Profile(r.Context())
	if err != nil {
		log.Printf("Failed to load profile: %v", err)
		http.Redirect(w, r, "/login?redirect=/perfil", http.StatusSeeOther)
		return
	}

	courses, workshops, err := client.MyEnrollmentDetails(r.Context())
	if err != nil {
		log.Printf("Failed to load enrollments: %v", err)
	}
	orders, err := client.Orders(r.Context())
	if err != nil {
		log.Printf("Failed to load orders: %v", err)
	}

	tab := r.URL.Query().Get("tab")
	switch tab {
	case "cursos", "talleres", "pedidos", "pagos":
	default:
		tab = "cursos"
	}

	data := h.pageData(r, "Mi cuenta")
	data.Flash = flashMessage(r)
	data.Data = map[string]any{
		"User":      user,
		"Courses":   courses,
		"Workshops": workshops,
		"Orders":    orders,
		"Pending":   pendingPayments(courses, workshops, orders),
		"Tab":       tab,
	}
	h.renderer.Render(w, http.StatusOK, "profile.html", data)
}

// pendingPayment is one unpaid enrollment or order awaiting a receipt.
type pendingPayment struct {
	Kind         string
	EnrollmentID int
	OrderID      int
	Name         string
	Amount       float64
	UnderReview  bool
}

func pendingPayments(courses, workshops []models.Enrollment, orders []models.Order) []pendingPayment {
	var out []pendingPayment
	add := func(e models.Enrollment, kind, name string) {
		if e.PaymentStatus != models.PaymentPending && e.PaymentStatus != models.PaymentRejected {
			return
		}
		out = append(out, pendingPayment{
			Kind:         kind,
			EnrollmentID: e.ID,
			Name:         name,
			Amount:       e.AmountPaid,
			UnderReview:  e.HasPendingReceipt(),
		})
	}
	for _, e := range courses {
		add(e, "curso", e.CourseTitle)
	}
	for _, e := range workshops {
		add(e, "taller", e.WorkshopName)
	}
	for _, o := range orders {
		if o.PaymentStatus != models.PaymentPending && o.PaymentStatus != models.PaymentRejected {
			continue
		}
		out = append(out, pendingPayment{
			Kind:        "pedido",
			OrderID:     o.ID,
			Name:        fmt.Sprintf("Pedido #%d", o.ID),
			Amount:      o.TotalAmount,
			UnderReview: o.HasPendingReceipt(),
		})
	}
	return out
}

// OrderDetailPage shows one order with its line items and transactions.
func (h *ProfileHandler) OrderDetailPage(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	browserID := middleware.GetBrowserID(r.Context())
	client := h.auth.Client(browserID)
	order, err := client.Order(r.Context(), id)
	if err != nil {
		log.Printf("Failed to load order %d: %v", id, err)
		http.Redirect(w, r, "/perfil?tab=pedidos", http.StatusSeeOther)
		return
	}

	data := h.pageData(r, fmt.Sprintf("Pedido #%d", order.ID))
	data.Data = order
	h.renderer.Render(w, http.StatusOK, "order_detail.html", data)
}

// UpdateProfile saves the editable account fields.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	form := models.ProfileUpdateForm{
		FirstName: strings.TrimSpace(r.FormValue("first_name")),
		LastName:  strings.TrimSpace(r.FormValue("last_name")),
		Email:     strings.TrimSpace(r.FormValue("email")),
		Phone:     strings.TrimSpace(r.FormValue("telefono")),
	}
	if err := validate.Struct(form); err != nil {
		http.Redirect(w, r, "/perfil?error=datos", http.StatusSeeOther)
		return
	}

	browserID := middleware.GetBrowserID(r.Context())
	client := h.auth.Client(browserID)
	if _, err := client.UpdateProfile(r.Context(), form); err != nil {
		log.Printf("Failed to update profile: %v", err)
		http.Redirect(w, r, "/perfil?error=guardar", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/perfil?flash=guardado", http.StatusSeeOther)
}

// Enroll opens a payment flow for a course or workshop. The enrollment
// itself is only created once a payment method is picked, so closing the
// modal on the selection step leaves nothing behind.
func (h *ProfileHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	itemType := r.FormValue("tipo")
	id := formInt(r, "id")
	name := r.FormValue("nombre")
	amount := formFloat(r, "monto")
	back := r.FormValue("volver")
	if back == "" {
		back = "/perfil"
	}
	if (itemType != "curso" && itemType != "taller") || id <= 0 {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	browserID := middleware.GetBrowserID(r.Context())
	client := h.auth.Client(browserID)

	confirm := func(ctx context.Context) (int, int, error) {
		enrollmentID, err := client.CreateEnrollment(ctx, itemType, id)
		return enrollmentID, 0, err
	}
	flow := h.payments.Start(amount, name, 0, confirm, nil)
	http.Redirect(w, r, "/pago/"+flow.ID, http.StatusSeeOther)
}

// PayPending reopens the payment flow for an unpaid enrollment or order.
func (h *ProfileHandler) PayPending(w http.ResponseWriter, r *http.Request) {
	enrollmentID := formInt(r, "inscripcion")
	orderID := formInt(r, "orden")
	name := r.FormValue("nombre")
	amount := formFloat(r, "monto")

	if (enrollmentID <= 0) == (orderID <= 0) {
		http.Redirect(w, r, "/perfil?tab=pagos", http.StatusSeeOther)
		return
	}

	flow := h.payments.Resume(amount, name, enrollmentID, orderID)
	http.Redirect(w, r, "/pago/"+flow.ID, http.StatusSeeOther)
}

// CancelEnrollment withdraws from a course or workshop.
func (h *ProfileHandler) CancelEnrollment(w http.ResponseWriter, r *http.Request) {
	itemType := r.FormValue("tipo")
	id := formInt(r, "id")

	browserID := middleware.GetBrowserID(r.Context())
	client := h.auth.Client(browserID)
	if err := client.CancelEnrollment(r.Context(), itemType, id); err != nil {
		log.Printf("Failed to cancel enrollment %s %d: %v", itemType, id, err)
		http.Redirect(w, r, "/perfil?error=cancelar", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/perfil?flash=cancelado", http.StatusSeeOther)
}

// DownloadCertificate streams the completion certificate PDF.
func (h *ProfileHandler) DownloadCertificate(w http.ResponseWriter, r *http.Request) {
	enrollmentID, err := pathInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	browserID := middleware.GetBrowserID(r.Context())
	client := h.auth.Client(browserID)
	pdf, err := client.DownloadCertificate(r.Context(), enrollmentID)
	if err != nil {
		log.Printf("Failed to download certificate %d: %v", enrollmentID, err)
		http.Redirect(w, r, "/perfil?error=certificado", http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=certificado-%d.pdf", enrollmentID))
	w.Write(pdf)
}

func flashMessage(r *http.Request) string {
	switch r.URL.Query().Get("flash") {
	case "guardado":
		return "Datos guardados."
	case "cancelado":
		return "Inscripción cancelada."
	case "pago":
		return "¡Comprobante enviado! Lo revisaremos pronto."
	default:
		return ""
	}
}
