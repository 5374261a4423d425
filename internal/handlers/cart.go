package handlers

import (
	"log"
	"net/http"

	"tmm-bienestar/internal/api"
	"tmm-bienestar/internal/middleware"
	"tmm-bienestar/internal/models"
	"tmm-bienestar/internal/services"
)

// CartHandler serves the cart page and its mutations plus checkout.
type CartHandler struct {
	api      *api.Client
	auth     *services.AuthService
	cart     *services.CartService
	payments *services.PaymentFlowService
	renderer *Renderer
	csrf     func(*http.Request) string
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(apiClient *api.Client, auth *services.AuthService, cart *services.CartService, payments *services.PaymentFlowService, renderer *Renderer, csrf func(*http.Request) string) *CartHandler {
	return &CartHandler{api: apiClient, auth: auth, cart: cart, payments: payments, renderer: renderer, csrf: csrf}
}

func (h *CartHandler) pageData(r *http.Request, title string) PageData {
	browserID := middleware.GetBrowserID(r.Context())
	return PageData{
		Title:     title,
		Session:   middleware.GetSessionFromContext(r.Context()),
		CartCount: services.CartCount(h.cart.Items(r.Context(), browserID)),
		CSRFToken: h.csrf(r),
	}
}

// CartPage renders the cart contents.
func (h *CartHandler) CartPage(w http.ResponseWriter, r *http.Request) {
	browserID := middleware.GetBrowserID(r.Context())
	items := h.cart.Items(r.Context(), browserID)

	data := h.pageData(r, "Carrito")
	data.Data = map[string]any{
		"Items": items,
		"Total": services.CartTotal(items),
	}
	h.renderer.Render(w, http.StatusOK, "cart.html", data)
}

// AddToCart adds one catalog item to the cart, fetching the current price
// and availability from the API rather than trusting the form.
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	itemType := models.CartItemType(r.FormValue("tipo"))
	id := formInt(r, "id")
	quantity := formInt(r, "cantidad")

	item, err := h.lookupItem(r, itemType, id)
	if err != nil {
		log.Printf("Failed to add %s %d to cart: %v", itemType, id, err)
		http.Redirect(w, r, "/carrito?error=agregar", http.StatusSeeOther)
		return
	}
	item.Quantity = quantity

	browserID := middleware.GetBrowserID(r.Context())
	if _, err := h.cart.Add(r.Context(), browserID, item); err != nil {
		log.Printf("Failed to add %s %d to cart: %v", itemType, id, err)
		http.Redirect(w, r, "/carrito?error=agregar", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/carrito", http.StatusSeeOther)
}

// lookupItem resolves a cart line from the catalog.
func (h *CartHandler) lookupItem(r *http.Request, itemType models.CartItemType, id int) (models.CartItem, error) {
	ctx := r.Context()
	switch itemType {
	case models.CartItemProduct:
		p, err := h.api.Product(ctx, id)
		if err != nil {
			return models.CartItem{}, err
		}
		max := 0
		if p.TrackStock {
			max = p.CurrentStock
		}
		return models.CartItem{
			ID: p.ID, Type: itemType, Title: p.Name,
			Price: p.Price, Image: p.Image, MaxQuantity: max,
		}, nil
	case models.CartItemWorkshop:
		t, err := h.api.Workshop(ctx, id)
		if err != nil {
			return models.CartItem{}, err
		}
		return models.CartItem{
			ID: t.ID, Type: itemType, Title: t.Name,
			Price: t.Price, Image: t.Image, MaxQuantity: 1,
		}, nil
	case models.CartItemCourse:
		c, err := h.api.Course(ctx, id)
		if err != nil {
			return models.CartItem{}, err
		}
		return models.CartItem{
			ID: c.ID, Type: itemType, Title: c.Title,
			Price: c.Price, Image: c.Image, MaxQuantity: 1,
		}, nil
	default:
		return models.CartItem{}, models.ErrInvalidInput
	}
}

// UpdateCartItem sets a line's quantity. Zero removes the line.
func (h *CartHandler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	browserID := middleware.GetBrowserID(r.Context())
	uniqueID := r.FormValue("unique_id")
	quantity := formInt(r, "cantidad")

	if _, err := h.cart.UpdateQuantity(r.Context(), browserID, uniqueID, quantity); err != nil {
		log.Printf("Failed to update cart line %s: %v", uniqueID, err)
	}
	http.Redirect(w, r, "/carrito", http.StatusSeeOther)
}

// RemoveCartItem deletes a line.
func (h *CartHandler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	browserID := middleware.GetBrowserID(r.Context())
	uniqueID := r.FormValue("unique_id")

	if _, err := h.cart.Remove(r.Context(), browserID, uniqueID); err != nil {
		log.Printf("Failed to remove cart line %s: %v", uniqueID, err)
	}
	http.Redirect(w, r, "/carrito", http.StatusSeeOther)
}

// ClearCart empties the cart.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	browserID := middleware.GetBrowserID(r.Context())
	if err := h.cart.Clear(r.Context(), browserID); err != nil {
		log.Printf("Failed to clear cart: %v", err)
	}
	http.Redirect(w, r, "/carrito", http.StatusSeeOther)
}

// CheckoutPage shows the order summary before confirming.
func (h *CartHandler) CheckoutPage(w http.ResponseWriter, r *http.Request) {
	browserID := middleware.GetBrowserID(r.Context())
	items := h.cart.Items(r.Context(), browserID)
	if len(items) == 0 {
		http.Redirect(w, r, "/carrito", http.StatusSeeOther)
		return
	}

	data := h.pageData(r, "Finalizar compra")
	data.Data = map[string]any{
		"Items": items,
		"Total": services.CartTotal(items),
	}
	h.renderer.Render(w, http.StatusOK, "checkout.html", data)
}

// Checkout turns the cart into an order and opens a payment flow for it.
// The cart is cleared once the order exists; abandoning the payment later
// does not resurrect it.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	browserID := middleware.GetBrowserID(r.Context())
	items := h.cart.Items(r.Context(), browserID)

	data := h.pageData(r, "Finalizar compra")
	data.Data = map[string]any{"Items": items, "Total": services.CartTotal(items)}

	if len(items) == 0 {
		data.Error = "Tu carrito está vacío."
		h.renderer.Render(w, http.StatusBadRequest, "cart.html", data)
		return
	}

	form := models.CheckoutForm{
		Phone:   r.FormValue("telefono"),
		Address: r.FormValue("direccion"),
		Notes:   r.FormValue("notas"),
	}
	if err := validate.Struct(form); err != nil {
		data.Error = validationMessage(err)
		h.renderer.Render(w, http.StatusBadRequest, "checkout.html", data)
		return
	}

	checkoutItems := make([]api.CheckoutItem, 0, len(items))
	for _, item := range items {
		checkoutItems = append(checkoutItems, api.CheckoutItem{
			Type:     string(item.Type),
			ID:       item.ID,
			Quantity: item.Quantity,
		})
	}

	client := h.auth.Client(browserID)
	orderID, err := client.Checkout(r.Context(), checkoutItems, form)
	if err != nil {
		data.Error = userMessage(err)
		h.renderer.Render(w, http.StatusBadGateway, "checkout.html", data)
		return
	}

	if err := h.cart.Clear(r.Context(), browserID); err != nil {
		log.Printf("Failed to clear cart after checkout: %v", err)
	}

	flow := h.payments.Start(services.CartTotal(items), orderItemName(items), orderID, nil, nil)
	http.Redirect(w, r, "/pago/"+flow.ID, http.StatusSeeOther)
}

func orderItemName(items []models.CartItem) string {
	if len(items) == 1 {
		return items[0].Title
	}
	return "Tu pedido"
}
