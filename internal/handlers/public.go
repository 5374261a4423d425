package handlers

import (
	"context"
	"log"
	"net/http"

	"tmm-bienestar/internal/api"
	"tmm-bienestar/internal/middleware"
	"tmm-bienestar/internal/models"
	"tmm-bienestar/internal/services"
	"tmm-bienestar/internal/store"
)

// PublicHandler serves the marketing and catalog pages.
type PublicHandler struct {
	api      *api.Client
	cart     *services.CartService
	store    store.Store
	renderer *Renderer
	csrf     func(*http.Request) string
}

// NewPublicHandler creates a new public handler.
func NewPublicHandler(apiClient *api.Client, cart *services.CartService, st store.Store, renderer *Renderer, csrf func(*http.Request) string) *PublicHandler {
	return &PublicHandler{api: apiClient, cart: cart, store: st, renderer: renderer, csrf: csrf}
}

func (h *PublicHandler) pageData(r *http.Request, title string) PageData {
	browserID := middleware.GetBrowserID(r.Context())
	return PageData{
		Title:     title,
		Session:   middleware.GetSessionFromContext(r.Context()),
		CartCount: services.CartCount(h.cart.Items(r.Context(), browserID)),
		CSRFToken: h.csrf(r),
	}
}

// HomePage renders the homepage with featured courses and workshops.
func (h *PublicHandler) HomePage(w http.ResponseWriter, r *http.Request) {
	courses, err := h.api.Courses(r.Context())
	if err != nil {
		log.Printf("Failed to load courses for home: %v", err)
	}
	workshops, err := h.api.Workshops(r.Context())
	if err != nil {
		log.Printf("Failed to load workshops for home: %v", err)
	}
	if len(courses) > 3 {
		courses = courses[:3]
	}
	if len(workshops) > 3 {
		workshops = workshops[:3]
	}

	data := h.pageData(r, "TMM Bienestar")
	data.Data = map[string]any{
		"Courses":        courses,
		"Workshops":      workshops,
		"ShowNewsletter": !h.newsletterSeen(r),
	}
	h.renderer.Render(w, http.StatusOK, "home.html", data)
}

// AboutPage renders the static about page.
func (h *PublicHandler) AboutPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "about.html", h.pageData(r, "Nosotras"))
}

// ContactPage renders the contact form.
func (h *PublicHandler) ContactPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "contact.html", h.pageData(r, "Contacto"))
}

// SubmitContact posts the contact form to the API.
func (h *PublicHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	form := models.ContactForm{
		FirstName: r.FormValue("nombre"),
		LastName:  r.FormValue("apellido"),
		Email:     r.FormValue("email"),
		Subject:   r.FormValue("asunto"),
		Message:   r.FormValue("mensaje"),
	}

	data := h.pageData(r, "Contacto")
	if err := validate.Struct(form); err != nil {
		data.Error = validationMessage(err)
		h.renderer.Render(w, http.StatusBadRequest, "contact.html", data)
		return
	}
	if err := h.api.SendContactMessage(r.Context(), form); err != nil {
		data.Error = userMessage(err)
		h.renderer.Render(w, http.StatusBadGateway, "contact.html", data)
		return
	}
	data.Flash = "¡Mensaje enviado! Te responderemos pronto."
	h.renderer.Render(w, http.StatusOK, "contact.html", data)
}

// CoursesPage lists the recorded courses.
func (h *PublicHandler) CoursesPage(w http.ResponseWriter, r *http.Request) {
	courses, err := h.api.Courses(r.Context())
	if err != nil {
		log.Printf("Failed to load courses: %v", err)
	}
	data := h.pageData(r, "Cursos")
	data.Data = courses
	h.renderer.Render(w, http.StatusOK, "courses.html", data)
}

// CourseDetailPage shows one course with its reviews and the visitor's
// enrollment status.
func (h *PublicHandler) CourseDetailPage(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	course, err := h.api.Course(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	reviews, err := h.api.Reviews(r.Context(), id, 0)
	if err != nil {
		// Reviews are decoration; the page works without them.
		log.Printf("Failed to load reviews for course %d: %v", id, err)
	}

	session := middleware.GetSessionFromContext(r.Context())
	data := h.pageData(r, course.Title)
	data.Data = map[string]any{
		"Course":   course,
		"Reviews":  reviews,
		"Enrolled": session.IsEnrolledInCourse(id),
	}
	h.renderer.Render(w, http.StatusOK, "course_detail.html", data)
}

// WorkshopsPage lists upcoming workshops.
func (h *PublicHandler) WorkshopsPage(w http.ResponseWriter, r *http.Request) {
	workshops, err := h.api.Workshops(r.Context())
	if err != nil {
		log.Printf("Failed to load workshops: %v", err)
	}
	data := h.pageData(r, "Talleres")
	data.Data = workshops
	h.renderer.Render(w, http.StatusOK, "workshops.html", data)
}

// WorkshopDetailPage shows one workshop.
func (h *PublicHandler) WorkshopDetailPage(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	workshop, err := h.api.Workshop(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	reviews, err := h.api.Reviews(r.Context(), 0, id)
	if err != nil {
		log.Printf("Failed to load reviews for workshop %d: %v", id, err)
	}

	session := middleware.GetSessionFromContext(r.Context())
	data := h.pageData(r, workshop.Name)
	data.Data = map[string]any{
		"Workshop": workshop,
		"Reviews":  reviews,
		"Enrolled": session.IsEnrolledInWorkshop(id),
	}
	h.renderer.Render(w, http.StatusOK, "workshop_detail.html", data)
}

// ProductsPage lists the craft kits.
func (h *PublicHandler) ProductsPage(w http.ResponseWriter, r *http.Request) {
	products, err := h.api.Products(r.Context())
	if err != nil {
		log.Printf("Failed to load products: %v", err)
	}
	data := h.pageData(r, "Kits")
	data.Data = products
	h.renderer.Render(w, http.StatusOK, "products.html", data)
}

// ProductDetailPage shows one product.
func (h *PublicHandler) ProductDetailPage(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	product, err := h.api.Product(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	data := h.pageData(r, product.Name)
	data.Data = product
	h.renderer.Render(w, http.StatusOK, "product_detail.html", data)
}

// BlogPage lists published posts.
func (h *PublicHandler) BlogPage(w http.ResponseWriter, r *http.Request) {
	posts, err := h.api.Posts(r.Context())
	if err != nil {
		log.Printf("Failed to load posts: %v", err)
	}
	data := h.pageData(r, "Blog")
	data.Data = posts
	h.renderer.Render(w, http.StatusOK, "blog.html", data)
}

// PostDetailPage shows one blog post.
func (h *PublicHandler) PostDetailPage(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	post, err := h.api.Post(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	data := h.pageData(r, post.Title)
	data.Data = post
	h.renderer.Render(w, http.StatusOK, "post_detail.html", data)
}

// CalendarPage shows upcoming workshop dates.
func (h *PublicHandler) CalendarPage(w http.ResponseWriter, r *http.Request) {
	events, err := h.api.CalendarEvents(r.Context())
	if err != nil {
		log.Printf("Failed to load calendar: %v", err)
	}
	data := h.pageData(r, "Calendario")
	data.Data = events
	h.renderer.Render(w, http.StatusOK, "calendar.html", data)
}

// SubmitReview posts a review for a course or workshop.
func (h *PublicHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil || !session.Authenticated {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	form := models.ReviewForm{
		Rating:  formInt(r, "calificacion"),
		Comment: r.FormValue("comentario"),
	}
	courseID := formInt(r, "curso")
	workshopID := formInt(r, "taller")
	back := r.FormValue("volver")
	if back == "" {
		back = "/"
	}

	if err := validate.Struct(form); err != nil {
		http.Redirect(w, r, back+"?error=review", http.StatusSeeOther)
		return
	}

	browserID := middleware.GetBrowserID(r.Context())
	client := h.api.WithTokens(store.BrowserTokens{Store: h.store, BrowserID: browserID})
	if err := client.CreateReview(r.Context(), courseID, workshopID, form); err != nil {
		log.Printf("Failed to create review: %v", err)
		http.Redirect(w, r, back+"?error=review", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// DismissNewsletter records that the newsletter modal was shown.
func (h *PublicHandler) DismissNewsletter(w http.ResponseWriter, r *http.Request) {
	browserID := middleware.GetBrowserID(r.Context())
	if err := h.store.Set(r.Context(), browserID, store.KeyNewsletterSeen, "1"); err != nil {
		log.Printf("Failed to persist newsletter flag: %v", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PublicHandler) newsletterSeen(r *http.Request) bool {
	browserID := middleware.GetBrowserID(r.Context())
	return newsletterSeen(r.Context(), h.store, browserID)
}

func newsletterSeen(ctx context.Context, st store.Store, browserID string) bool {
	v, ok, err := st.Get(ctx, browserID, store.KeyNewsletterSeen)
	if err != nil {
		return true
	}
	return ok && v == "1"
}
