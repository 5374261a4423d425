package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"strconv"

	"tmm-bienestar/internal/models"
)

// Admin endpoints. Authorization happens server-side; a non-admin token
// gets a 403 from the backend regardless of what the UI showed.

// AdminDashboardStats fetches the dashboard aggregates.
func (c *Client) AdminDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := c.get(ctx, "/admin/dashboard/", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// AdminRevenueDetails fetches the revenue breakdown.
func (c *Client) AdminRevenueDetails(ctx context.Context) (*models.RevenueDetails, error) {
	var details models.RevenueDetails
	if err := c.get(ctx, "/admin/revenue/", &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// AdminCourses lists all courses, active or not.
func (c *Client) AdminCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := c.get(ctx, "/admin/cursos/", &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (c *Client) AdminCreateCourse(ctx context.Context, form models.CourseForm) error {
	return c.postJSON(ctx, "/admin/cursos/", courseBody(form), nil)
}

func (c *Client) AdminUpdateCourse(ctx context.Context, id int, form models.CourseForm) error {
	return c.putJSON(ctx, fmt.Sprintf("/admin/cursos/%d/", id), courseBody(form), nil)
}

func (c *Client) AdminDeleteCourse(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("/admin/cursos/%d/", id))
}

func courseBody(form models.CourseForm) map[string]any {
	body := map[string]any{
		"titulo":       form.Title,
		"descripcion":  form.Description,
		"precio":       strconv.FormatFloat(form.Price, 'f', 0, 64),
		"duracion":     form.Duration,
		"tipo_cliente": form.ClientType,
		"esta_activo":  form.Active,
	}
	if form.CategoryID > 0 {
		body["categoria"] = form.CategoryID
	}
	return body
}

// AdminWorkshops lists all workshops.
func (c *Client) AdminWorkshops(ctx context.Context) ([]models.Workshop, error) {
	var workshops []models.Workshop
	if err := c.get(ctx, "/admin/talleres/", &workshops); err != nil {
		return nil, err
	}
	return workshops, nil
}

func (c *Client) AdminCreateWorkshop(ctx context.Context, form models.WorkshopForm) error {
	return c.postJSON(ctx, "/admin/talleres/", workshopBody(form), nil)
}

func (c *Client) AdminUpdateWorkshop(ctx context.Context, id int, form models.WorkshopForm) error {
	return c.putJSON(ctx, fmt.Sprintf("/admin/talleres/%d/", id), workshopBody(form), nil)
}

func (c *Client) AdminDeleteWorkshop(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("/admin/talleres/%d/", id))
}

func workshopBody(form models.WorkshopForm) map[string]any {
	body := map[string]any{
		"nombre":        form.Name,
		"descripcion":   form.Description,
		"fecha_taller":  form.Date,
		"modalidad":     form.Modality,
		"precio":        strconv.FormatFloat(form.Price, 'f', 0, 64),
		"cupos_totales": form.TotalSlots,
		"tipo_cliente":  form.ClientType,
		"esta_activo":   form.Active,
	}
	if form.Time != "" {
		body["hora_taller"] = form.Time
	}
	if form.CategoryID > 0 {
		body["categoria"] = form.CategoryID
	}
	return body
}

// AdminProducts lists all products.
func (c *Client) AdminProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.get(ctx, "/admin/productos/", &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) AdminCreateProduct(ctx context.Context, form models.ProductForm) error {
	return c.postJSON(ctx, "/admin/productos/", productBody(form), nil)
}

func (c *Client) AdminUpdateProduct(ctx context.Context, id int, form models.ProductForm) error {
	return c.putJSON(ctx, fmt.Sprintf("/admin/productos/%d/", id), productBody(form), nil)
}

func (c *Client) AdminDeleteProduct(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("/admin/productos/%d/", id))
}

func productBody(form models.ProductForm) map[string]any {
	return map[string]any{
		"nombre":           form.Name,
		"descripcion":      form.Description,
		"precio_venta":     strconv.FormatFloat(form.Price, 'f', 0, 64),
		"esta_disponible":  form.Available,
		"es_fisico":        form.Physical,
		"controlar_stock":  form.TrackStock,
		"stock_actual":     form.CurrentStock,
	}
}

// AdminPosts lists all blog posts, published or not.
func (c *Client) AdminPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := c.get(ctx, "/admin/posts/", &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) AdminCreatePost(ctx context.Context, form models.PostForm) error {
	return c.postJSON(ctx, "/admin/posts/", postBody(form), nil)
}

func (c *Client) AdminUpdatePost(ctx context.Context, id int, form models.PostForm) error {
	return c.putJSON(ctx, fmt.Sprintf("/admin/posts/%d/", id), postBody(form), nil)
}

func (c *Client) AdminDeletePost(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("/admin/posts/%d/", id))
}

func postBody(form models.PostForm) map[string]any {
	body := map[string]any{
		"titulo":         form.Title,
		"extracto":       form.Excerpt,
		"contenido":      form.Content,
		"esta_publicado": form.Published,
	}
	if form.CategoryID > 0 {
		body["categoria"] = form.CategoryID
	}
	return body
}

// AdminCategories lists the interest categories.
func (c *Client) AdminCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := c.get(ctx, "/admin/intereses/", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) AdminCreateCategory(ctx context.Context, name string) error {
	return c.postJSON(ctx, "/admin/intereses/", map[string]string{"nombre": name}, nil)
}

func (c *Client) AdminDeleteCategory(ctx context.Context, id int) error {
	return c.delete(ctx, fmt.Sprintf("/admin/intereses/%d/", id))
}

// AdminMessages lists contact form messages.
func (c *Client) AdminMessages(ctx context.Context) ([]models.ContactMessage, error) {
	var messages []models.ContactMessage
	if err := c.get(ctx, "/admin/mensajes/", &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// AdminClients lists CRM clients, optionally filtered by B2B/B2C type.
func (c *Client) AdminClients(ctx context.Context, clientType string) ([]models.Client, error) {
	var clients []models.Client
	path := "/admin/clientes/" + encodeQuery(map[string]string{"tipo_cliente": clientType})
	if err := c.get(ctx, path, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// AdminClient fetches one client with enrollment history.
func (c *Client) AdminClient(ctx context.Context, id int) (*models.Client, error) {
	var client models.Client
	if err := c.get(ctx, fmt.Sprintf("/admin/clientes/%d/", id), &client); err != nil {
		return nil, err
	}
	return &client, nil
}

// AdminPendingTransactions lists receipts awaiting review.
func (c *Client) AdminPendingTransactions(ctx context.Context) ([]models.Transaction, error) {
	var txs []models.Transaction
	path := "/admin/transacciones/" + encodeQuery(map[string]string{"estado": string(models.TransactionPending)})
	if err := c.get(ctx, path, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// AdminReviewTransaction approves or rejects an uploaded receipt.
// action is "aprobar" or "rechazar".
func (c *Client) AdminReviewTransaction(ctx context.Context, transactionID int, action, note string) error {
	payload := map[string]any{
		"transaccion_id": transactionID,
		"accion":         action,
		"observacion":    note,
	}
	return c.postJSON(ctx, "/admin/payments/verify/", payload, nil)
}

// AdminExportClientsCSV downloads the client book as CSV.
func (c *Client) AdminExportClientsCSV(ctx context.Context) ([]byte, error) {
	var csv []byte
	if err := c.get(ctx, "/admin/clientes/export-csv/", &csv); err != nil {
		return nil, err
	}
	return csv, nil
}

// AdminImportClientsCSV uploads a client CSV for bulk import.
func (c *Client) AdminImportClientsCSV(ctx context.Context, filename string, data []byte) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("archivo", filename)
	if err != nil {
		return fmt.Errorf("failed to create csv part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("failed to write csv data: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return c.do(ctx, "POST", "/admin/clientes/import-csv/", buf.Bytes(), w.FormDataContentType(), nil)
}

// AdminSendBulkEmail dispatches a bulk mail to clients, optionally filtered
// by B2B/B2C type.
func (c *Client) AdminSendBulkEmail(ctx context.Context, form models.BulkEmailForm) error {
	payload := map[string]string{
		"asunto":       form.Subject,
		"cuerpo":       form.Body,
		"tipo_cliente": form.ClientType,
	}
	return c.postJSON(ctx, "/admin/send-bulk-email/", payload, nil)
}
