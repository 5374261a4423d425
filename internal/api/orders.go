package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"strconv"

	"tmm-bienestar/internal/models"
)

func certificatePath(enrollmentID int) string {
	return fmt.Sprintf("/certificados/%d/", enrollmentID)
}

// CheckoutItem is one cart line sent to the order creation endpoint.
type CheckoutItem struct {
	Type     string `json:"tipo"`
	ID       int    `json:"id"`
	Quantity int    `json:"cantidad"`
}

// Checkout creates an order from the cart and returns the order id.
func (c *Client) Checkout(ctx context.Context, items []CheckoutItem, form models.CheckoutForm) (int, error) {
	payload := map[string]any{
		"items":     items,
		"telefono":  form.Phone,
		"direccion": form.Address,
		"notas":     form.Notes,
	}
	var resp struct {
		ID int `json:"id"`
	}
	if err := c.postJSON(ctx, "/checkout/", payload, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// Orders lists the caller's orders.
func (c *Client) Orders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.get(ctx, "/user/orders/", &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Order fetches one of the caller's orders.
func (c *Client) Order(ctx context.Context, id int) (*models.Order, error) {
	var order models.Order
	if err := c.get(ctx, fmt.Sprintf("/user/orders/%d/", id), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ReceiptUpload is a proof-of-payment submission. Exactly one of
// EnrollmentID and OrderID must be set.
type ReceiptUpload struct {
	Amount       float64
	EnrollmentID int
	OrderID      int
	Filename     string
	ContentType  string
	Data         []byte
}

// UploadReceipt submits a receipt as multipart form data. The body is built
// up front so the interceptor can replay it after a token refresh.
func (c *Client) UploadReceipt(ctx context.Context, upload ReceiptUpload) (*models.Transaction, error) {
	if (upload.EnrollmentID == 0) == (upload.OrderID == 0) {
		return nil, fmt.Errorf("%w: receipt needs exactly one of enrollment or order", models.ErrInvalidInput)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("monto", strconv.FormatFloat(upload.Amount, 'f', 0, 64)); err != nil {
		return nil, fmt.Errorf("failed to write monto field: %w", err)
	}
	if upload.EnrollmentID > 0 {
		if err := w.WriteField("inscripcion", strconv.Itoa(upload.EnrollmentID)); err != nil {
			return nil, fmt.Errorf("failed to write inscripcion field: %w", err)
		}
	}
	if upload.OrderID > 0 {
		if err := w.WriteField("orden", strconv.Itoa(upload.OrderID)); err != nil {
			return nil, fmt.Errorf("failed to write orden field: %w", err)
		}
	}

	part, err := w.CreateFormFile("comprobante", upload.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create comprobante part: %w", err)
	}
	if _, err := part.Write(upload.Data); err != nil {
		return nil, fmt.Errorf("failed to write comprobante data: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	var tx models.Transaction
	if err := c.do(ctx, "POST", "/transacciones/", buf.Bytes(), w.FormDataContentType(), &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}
