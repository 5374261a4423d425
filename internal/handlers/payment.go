package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"tmm-bienestar/internal/api"
	"tmm-bienestar/internal/middleware"
	"tmm-bienestar/internal/services"
)

// PaymentHandler drives the payment modal pages.
type PaymentHandler struct {
	auth     *services.AuthService
	cart     *services.CartService
	payments *services.PaymentFlowService
	receipts *services.ReceiptProcessor
	renderer *Renderer
	csrf     func(*http.Request) string
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(auth *services.AuthService, cart *services.CartService, payments *services.PaymentFlowService, receipts *services.ReceiptProcessor, renderer *Renderer, csrf func(*http.Request) string) *PaymentHandler {
	return &PaymentHandler{auth: auth, cart: cart, payments: payments, receipts: receipts, renderer: renderer, csrf: csrf}
}

func (h *PaymentHandler) pageData(r *http.Request, title string) PageData {
	browserID := middleware.GetBrowserID(r.Context())
	return PageData{
		Title:     title,
		Session:   middleware.GetSessionFromContext(r.Context()),
		CartCount: services.CartCount(h.cart.Items(r.Context(), browserID)),
		CSRFToken: h.csrf(r),
	}
}

func (h *PaymentHandler) renderFlow(w http.ResponseWriter, r *http.Request, flow *services.Flow, status int, errMsg string) {
	data := h.pageData(r, "Pago")
	data.Error = errMsg
	data.Data = map[string]any{
		"Flow":   flow,
		"Bank":   h.payments.BankDetails(),
		"MPLink": h.payments.MercadoPagoLink(),
	}
	h.renderer.Render(w, status, "payment.html", data)
}

// PaymentPage renders the current step of a flow.
func (h *PaymentHandler) PaymentPage(w http.ResponseWriter, r *http.Request) {
	flow, err := h.payments.Get(chiParam(r, "flowID"))
	if err != nil {
		http.Redirect(w, r, "/perfil", http.StatusSeeOther)
		return
	}
	h.renderFlow(w, r, flow, http.StatusOK, "")
}

// SelectMethod handles the choice on the selection step.
func (h *PaymentHandler) SelectMethod(w http.ResponseWriter, r *http.Request) {
	flowID := chiParam(r, "flowID")
	method := services.PaymentMethod(r.FormValue("metodo"))

	flow, err := h.payments.SelectMethod(r.Context(), flowID, method)
	if err != nil {
		if errors.Is(err, services.ErrFlowNotFound) {
			http.Redirect(w, r, "/perfil", http.StatusSeeOther)
			return
		}
		log.Printf("Failed to select payment method %q: %v", method, err)
		if flow == nil {
			if flow, _ = h.payments.Get(flowID); flow == nil {
				http.Redirect(w, r, "/perfil", http.StatusSeeOther)
				return
			}
		}
		h.renderFlow(w, r, flow, http.StatusBadRequest, userMessage(err))
		return
	}
	http.Redirect(w, r, "/pago/"+flowID, http.StatusSeeOther)
}

// GoToUpload advances from the bank details to the upload step.
func (h *PaymentHandler) GoToUpload(w http.ResponseWriter, r *http.Request) {
	flowID := chiParam(r, "flowID")
	if _, err := h.payments.GoToUpload(flowID); err != nil {
		log.Printf("Failed to advance flow %s to upload: %v", flowID, err)
	}
	http.Redirect(w, r, "/pago/"+flowID, http.StatusSeeOther)
}

// BackToBankDetails returns from the upload step to the bank details.
func (h *PaymentHandler) BackToBankDetails(w http.ResponseWriter, r *http.Request) {
	flowID := chiParam(r, "flowID")
	if _, err := h.payments.BackToBankDetails(flowID); err != nil {
		log.Printf("Failed to move flow %s back: %v", flowID, err)
	}
	http.Redirect(w, r, "/pago/"+flowID, http.StatusSeeOther)
}

// UploadReceipt takes the proof-of-payment file, shrinks oversized images
// and submits it. A failed upload stays on the upload step with the API's
// message.
func (h *PaymentHandler) UploadReceipt(w http.ResponseWriter, r *http.Request) {
	flowID := chiParam(r, "flowID")
	flow, err := h.payments.Get(flowID)
	if err != nil {
		http.Redirect(w, r, "/perfil", http.StatusSeeOther)
		return
	}

	file, header, err := r.FormFile("comprobante")
	if err != nil {
		h.renderFlow(w, r, flow, http.StatusBadRequest, "Selecciona un archivo de comprobante.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Printf("Failed to read receipt upload: %v", err)
		h.renderFlow(w, r, flow, http.StatusBadRequest, api.GenericErrorMessage)
		return
	}

	upload := api.ReceiptUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	upload, err = h.receipts.Prepare(upload)
	if err != nil {
		h.renderFlow(w, r, flow, http.StatusBadRequest, err.Error())
		return
	}

	browserID := middleware.GetBrowserID(r.Context())
	client := h.auth.Client(browserID)
	flow, err = h.payments.SubmitReceipt(r.Context(), client, flowID, upload)
	if err != nil {
		if flow == nil {
			http.Redirect(w, r, "/perfil", http.StatusSeeOther)
			return
		}
		log.Printf("Failed to submit receipt for flow %s: %v", flowID, err)
		h.renderFlow(w, r, flow, http.StatusBadGateway, userMessage(err))
		return
	}
	h.renderFlow(w, r, flow, http.StatusOK, "")
}

// Close abandons the flow and returns to the profile. Enrollments or
// orders already confirmed stay pending server-side.
func (h *PaymentHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.payments.Close(chiParam(r, "flowID"))
	http.Redirect(w, r, "/perfil?tab=pagos", http.StatusSeeOther)
}
