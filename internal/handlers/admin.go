package handlers

import (
	"io"
	"log"
	"net/http"
	"strings"

	"tmm-bienestar/internal/api"
	"tmm-bienestar/internal/middleware"
	"tmm-bienestar/internal/models"
	"tmm-bienestar/internal/services"
)

// AdminHandler serves the back-office. Every route behind it requires an
// admin session; the backend authorizes each call again.
type AdminHandler struct {
	auth     *services.AuthService
	renderer *Renderer
	csrf     func(*http.Request) string
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(auth *services.AuthService, renderer *Renderer, csrf func(*http.Request) string) *AdminHandler {
	return &AdminHandler{auth: auth, renderer: renderer, csrf: csrf}
}

func (h *AdminHandler) client(r *http.Request) *api.Client {
	return h.auth.Client(middleware.GetBrowserID(r.Context()))
}

func (h *AdminHandler) pageData(r *http.Request, title string) PageData {
	return PageData{
		Title:     title,
		Session:   middleware.GetSessionFromContext(r.Context()),
		CSRFToken: h.csrf(r),
	}
}

// Dashboard shows the headline business numbers.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.client(r).AdminDashboardStats(r.Context())
	data := h.pageData(r, "Panel")
	if err != nil {
		log.Printf("Failed to load dashboard stats: %v", err)
		data.Error = userMessage(err)
	}
	data.Data = stats
	h.renderer.Render(w, http.StatusOK, "admin_dashboard.html", data)
}

// Revenue shows the revenue breakdown.
func (h *AdminHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	details, err := h.client(r).AdminRevenueDetails(r.Context())
	data := h.pageData(r, "Ingresos")
	if err != nil {
		log.Printf("Failed to load revenue details: %v", err)
		data.Error = userMessage(err)
	}
	data.Data = details
	h.renderer.Render(w, http.StatusOK, "admin_revenue.html", data)
}

// Courses lists courses for management.
func (h *AdminHandler) Courses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.client(r).AdminCourses(r.Context())
	if err != nil {
		log.Printf("Failed to load admin courses: %v", err)
	}
	categories, err := h.client(r).AdminCategories(r.Context())
	if err != nil {
		log.Printf("Failed to load categories: %v", err)
	}
	data := h.pageData(r, "Cursos")
	data.Error = adminError(r)
	data.Data = map[string]any{"Courses": courses, "Categories": categories}
	h.renderer.Render(w, http.StatusOK, "admin_courses.html", data)
}

func courseFormFromRequest(r *http.Request) models.CourseForm {
	return models.CourseForm{
		Title:       strings.TrimSpace(r.FormValue("titulo")),
		Description: r.FormValue("descripcion"),
		Price:       formFloat(r, "precio"),
		Duration:    r.FormValue("duracion"),
		CategoryID:  formInt(r, "categoria"),
		ClientType:  r.FormValue("tipo_cliente"),
		Active:      formBool(r, "esta_activo"),
	}
}

// CreateCourse adds a course.
func (h *AdminHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	form := courseFormFromRequest(r)
	if err := validate.Struct(form); err != nil {
		http.Redirect(w, r, "/admin/cursos?error=datos", http.StatusSeeOther)
		return
	}
	if err := h.client(r).AdminCreateCourse(r.Context(), form); err != nil {
		log.Printf("Failed to create course: %v", err)
		http.Redirect(w, r, "/admin/cursos?error=api", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/cursos", http.StatusSeeOther)
}

// UpdateCourse edits a course.
func (h *AdminHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	form := courseFormFromRequest(r)
	if err := validate.Struct(form); err != nil {
		http.Redirect(w, r, "/admin/cursos?error=datos", http.StatusSeeOther)
		return
	}
	if err := h.client(r).AdminUpdateCourse(r.Context(), id, form); err != nil {
		log.Printf("Failed to update course %d: %v", id, err)
		http.Redirect(w, r, "/admin/cursos?error=api", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/cursos", http.StatusSeeOther)
}

// DeleteCourse removes a course.
func (h *AdminHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.client(r).AdminDeleteCourse(r.Context(), id); err != nil {
		log.Printf("Failed to delete course %d: %v", id, err)
		http.Redirect(w, r, "/admin/cursos?error=api", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/cursos", http.StatusSeeOther)
}

// Workshops lists workshops for management.
func (h *AdminHandler) Workshops(w http.ResponseWriter, r *http.Request) {
	workshops, err := h.client(r).AdminWorkshops(r.Context())
	if err != nil {
		log.Printf("Failed to load admin workshops: %v", err)
	}
	categories, err := h.client(r).AdminCategories(r.Context())
	if err != nil {
		log.Printf("Failed to load categories: %v", err)
	}
	data := h.pageData(r, "Talleres")
	data.Error = adminError(r)
	data.Data = map[string]any{"Workshops": workshops, "Categories": categories}
	h.renderer.Render(w, http.StatusOK, "admin_workshops.html", data)
}

func workshopFormFromRequest(r *http.Request) models.WorkshopForm {
	return models.WorkshopForm{
		Name:        strings.TrimSpace(r.FormValue("nombre")),
		Description: r.FormValue("descripcion"),
		Date:        r.FormValue("fecha_taller"),
		Time:        r.FormValue("hora_taller"),
		Modality:    r.FormValue("modalidad"),
		Price:       formFloat(r, "precio"),
		TotalSlots:  formInt(r, "cupos_totales"),
		CategoryID:  formInt(r, "categoria"),
		ClientType:  r.FormValue("tipo_cliente"),
		Active:      formBool(r, "esta_activo"),
	}
}

// CreateWorkshop adds a workshop.
func (h *AdminHandler) CreateWorkshop(w http.ResponseWriter, r *http.Request) {
	form := workshopFormFromRequest(r)
	if err := validate.Struct(form); err != nil {
		http.Redirect(w, r, "/admin/talleres?error=datos", http.StatusSeeOther)
		return
	}
	if err := h.client(r).AdminCreateWorkshop(r.Context(), form); err != nil {
		log.Printf("Failed to create workshop: %v", err)
		http.Redirect(w, r, "/admin/talleres?error=api", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/talleres", http.StatusSeeOther)
}

// UpdateWorkshop edits a workshop.
func (h *AdminHandler) UpdateWorkshop(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	form := workshopFormFromRequest(r)
	if err := validate.Struct(form); err != nil {
		http.Redirect(w, r, "/admin/talleres?error=datos", http.StatusSeeOther)
		return
	}
	if err := h.client(r).AdminUpdateWorkshop(r.Context(), id, form); err != nil {
		log.Printf("Failed to update workshop %d: %v", id, err)
		http.Redirect(w, r, "/admin/talleres?error=api", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/talleres", http.StatusSeeOther)
}

// DeleteWorkshop removes a workshop.
func (h *AdminHandler) DeleteWorkshop(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.client(r).AdminDeleteWorkshop(r.Context(), id); err != nil {
		log.Printf("Failed to delete workshop %d: %v", id, err)
		http.Redirect(w, r, "/admin/talleres?error=api", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/talleres", http.StatusSeeOther)
}

// Products lists products for management.
func (h *AdminHandler) Products(w http.ResponseWriter, r *http.Request) {
	products, err := h.client(r).AdminProducts(r.Context())
	if err != nil {
		log.Printf("Failed to load admin products: %v", err)
	}
	data := h.pageData(r, "Kits")
	data.Error = adminError(r)
	data.Data = products
	h.renderer.Render(w, http.StatusOK, "admin_products.html", data)
}

func productFormFromRequest(r *http.Request) models.ProductForm {
	return models.ProductForm{
		Name:         strings.TrimSpace(r.FormValue("nombre")),
		Description:  r.FormValue("descripcion"),
		Price:        formFloat(r, "precio_venta"),
		Available:    formBool(r, "esta_disponible"),
		Physical:     formBool(r, "es_fisico"),
		TrackStock:   formBool(r, "controlar_stock"),
		CurrentStock: formInt(r, "stock_actual"),
	}
}

// CreateProduct adds a product.
func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	form := productFormFromRequest(r)
	if err := validate.Struct(form); err != nil {
		http.Redirect(w, r, "/admin/kits?error=datos", http.StatusSeeOther)
		return
	}
	if err := h.client(r).AdminCreateProduct(r.Context(), form); err != nil {
		log.Printf("Failed to create product: %v", err)
		http.Redirect(w, r, "/admin/kits?error=api", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/kits", http.StatusSeeOther)
}

// UpdateProduct edits a product.
func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	form := productFormFromRequest(r)
	if err := validate.Struct(form); err != nil {
		http.Redirect(w, r, "/admin/kits?error=datos", http.StatusSeeOther)
		return
	}
	if err := h.client(r).AdminUpdateProduct(r.Context(), id, form); err != nil {
		log.Printf("Failed to update product %d: %v", id, err)
		http.Redirect(w, r, "/admin/kits?error=api", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/kits", http.StatusSeeOther)
}

// DeleteProduct removes a product.
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.client(r).AdminDeleteProduct(r.Context(), id); err != nil {
		log.Printf("Failed to delete product %d: %v", id, err)
		http.Redirect(w, r, "/admin/kits?error=api", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/kits", http.StatusSeeOther)
}

// Posts lists blog posts for management.
func (h *AdminHandler) Posts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.client(r).AdminPosts(r.Context())
	if err != nil {
		log.Printf("Failed to load admin posts: %v", err)
	}
	categories, err := h.client(r).AdminCategories(r.Context())
	if err != nil {
		log.Printf("Failed to load categories: %v", err)
	}
	data := h.pageData(r, "Blog")
	data.Error = adminError(r)
	data.Data = map[string]any{"Posts": posts, "Categories": categories}
	h.renderer.Render(w, http.StatusOK, "admin_posts.html", data)
}

func postFormFromRequest(r *http.Request) models.PostForm {
	return models.PostForm{
		Title:      strings.TrimSpace(r.FormValue("titulo")),
		Excerpt:    r.FormValue("extracto"),
		Content:    r.FormValue("contenido"),
		CategoryID: formInt(r, "categoria"),
		Published:  formBool(r, "esta_publicado"),
	}
}

// CreatePost adds a blog post.
func (h *AdminHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	form := postFormFromRequest(r)
	if err := validate.Struct(form); err != nil {
		http.Redirect(w, r, "/admin/blog?error=datos", http.StatusSeeOther)
		return
	}
	if err := h.client(r).AdminCreatePost(r.Context(), form); err != nil {
		log.Printf("Failed to create post: %v", err)
		http.Redirect(w, r, "/admin/blog?error=api", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/blog", http.StatusSeeOther)
}

// UpdatePost edits a blog post.
func (h *AdminHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	form := postFormFromRequest(r)
	if err := validate.Struct(form); err != nil {
		http.Redirect(w, r, "/admin/blog?error=datos", http.StatusSeeOther)
		return
	}
	if err := h.client(r).AdminUpdatePost(r.Context(), id, form); err != nil {
		log.Printf("Failed to update post %d: %v", id, err)
		http.Redirect(w, r, "/admin/blog?error=api", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/blog", http.StatusSeeOther)
}

// DeletePost removes a blog post.
func (h *AdminHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.client(r).AdminDeletePost(r.Context(), id); err != nil {
		log.Printf("Failed to delete post %d: %v", id, err)
		http.Redirect(w, r, "/admin/blog?error=api", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/blog", http.StatusSeeOther)
}

// CreateCategory adds an interest category.
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("nombre"))
	back := adminBack(r)
	if name == "" {
		http.Redirect(w, r, back+"?error=datos", http.StatusSeeOther)
		return
	}
	if err := h.client(r).AdminCreateCategory(r.Context(), name); err != nil {
		log.Printf("Failed to create category: %v", err)
		http.Redirect(w, r, back+"?error=api", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// DeleteCategory removes an interest category.
func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	back := adminBack(r)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := h.client(r).AdminDeleteCategory(r.Context(), id); err != nil {
		log.Printf("Failed to delete category %d: %v", id, err)
		http.Redirect(w, r, back+"?error=api", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// Messages lists contact form submissions.
func (h *AdminHandler) Messages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.client(r).AdminMessages(r.Context())
	if err != nil {
		log.Printf("Failed to load messages: %v", err)
	}
	data := h.pageData(r, "Mensajes")
	data.Data = messages
	h.renderer.Render(w, http.StatusOK, "admin_messages.html", data)
}

// Clients lists clients, optionally filtered to B2B or B2C.
func (h *AdminHandler) Clients(w http.ResponseWriter, r *http.Request) {
	clientType := r.URL.Query().Get("tipo")
	switch clientType {
	case "B2B", "B2C":
	default:
		clientType = ""
	}
	clients, err := h.client(r).AdminClients(r.Context(), clientType)
	if err != nil {
		log.Printf("Failed to load clients: %v", err)
	}
	data := h.pageData(r, "Clientes")
	data.Error = adminError(r)
	data.Data = map[string]any{"Clients": clients, "Filter": clientType}
	h.renderer.Render(w, http.StatusOK, "admin_clients.html", data)
}

// ClientDetail shows one client's full record.
func (h *AdminHandler) ClientDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	client, err := h.client(r).AdminClient(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	data := h.pageData(r, client.FullName())
	data.Data = client
	h.renderer.Render(w, http.StatusOK, "admin_client_detail.html", data)
}

// ExportClientsCSV streams the client list as CSV.
func (h *AdminHandler) ExportClientsCSV(w http.ResponseWriter, r *http.Request) {
	csv, err := h.client(r).AdminExportClientsCSV(r.Context())
	if err != nil {
		log.Printf("Failed to export clients CSV: %v", err)
		http.Redirect(w, r, "/admin/clientes?error=api", http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=clientes.csv")
	w.Write(csv)
}

// ImportClientsCSV uploads a CSV of clients.
func (h *AdminHandler) ImportClientsCSV(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("archivo")
	if err != nil {
		http.Redirect(w, r, "/admin/clientes?error=datos", http.StatusSeeOther)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Printf("Failed to read clients CSV: %v", err)
		http.Redirect(w, r, "/admin/clientes?error=datos", http.StatusSeeOther)
		return
	}
	if err := h.client(r).AdminImportClientsCSV(r.Context(), header.Filename, data); err != nil {
		log.Printf("Failed to import clients CSV: %v", err)
		http.Redirect(w, r, "/admin/clientes?error=api", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/clientes", http.StatusSeeOther)
}

// Transactions lists receipts awaiting review.
func (h *AdminHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.client(r).AdminPendingTransactions(r.Context())
	if err != nil {
		log.Printf("Failed to load pending transactions: %v", err)
	}
	data := h.pageData(r, "Verificación de pagos")
	data.Error = adminError(r)
	data.Data = transactions
	h.renderer.Render(w, http.StatusOK, "admin_transactions.html", data)
}

// ReviewTransaction approves or rejects one uploaded receipt.
func (h *AdminHandler) ReviewTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	form := models.TransactionReviewForm{
		Action: r.FormValue("accion"),
		Note:   r.FormValue("observacion"),
	}
	if err := validate.Struct(form); err != nil {
		http.Redirect(w, r, "/admin/pagos?error=datos", http.StatusSeeOther)
		return
	}
	if err := h.client(r).AdminReviewTransaction(r.Context(), id, form.Action, form.Note); err != nil {
		log.Printf("Failed to review transaction %d: %v", id, err)
		http.Redirect(w, r, "/admin/pagos?error=api", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/pagos", http.StatusSeeOther)
}

// BulkEmailPage renders the bulk mail form.
func (h *AdminHandler) BulkEmailPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "admin_bulk_email.html", h.pageData(r, "Email masivo"))
}

// SendBulkEmail dispatches a campaign to the selected client segment.
func (h *AdminHandler) SendBulkEmail(w http.ResponseWriter, r *http.Request) {
	form := models.BulkEmailForm{
		Subject:    strings.TrimSpace(r.FormValue("asunto")),
		Body:       r.FormValue("cuerpo"),
		ClientType: r.FormValue("tipo_cliente"),
	}

	data := h.pageData(r, "Email masivo")
	if err := validate.Struct(form); err != nil {
		data.Error = validationMessage(err)
		h.renderer.Render(w, http.StatusBadRequest, "admin_bulk_email.html", data)
		return
	}
	if err := h.client(r).AdminSendBulkEmail(r.Context(), form); err != nil {
		data.Error = userMessage(err)
		h.renderer.Render(w, http.StatusBadGateway, "admin_bulk_email.html", data)
		return
	}
	data.Flash = "Campaña enviada."
	h.renderer.Render(w, http.StatusOK, "admin_bulk_email.html", data)
}

func adminError(r *http.Request) string {
	switch r.URL.Query().Get("error") {
	case "datos":
		return "Revisa los datos del formulario."
	case "api":
		return api.GenericErrorMessage
	default:
		return ""
	}
}

func adminBack(r *http.Request) string {
	back := r.FormValue("volver")
	if !strings.HasPrefix(back, "/admin/") {
		return "/admin/cursos"
	}
	return back
}
