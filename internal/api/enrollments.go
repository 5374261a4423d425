package api

import (
	"context"
	"encoding/json"

	"tmm-bienestar/internal/models"
)

// RawEnrollments is the membership endpoint's payload before normalization.
// The serializer has answered two shapes over time: entries with a bare
// foreign-key id ({"curso": 3}) and entries nesting the full object
// ({"curso": {"id": 3, ...}}). Callers normalize via the auth service.
type RawEnrollments struct {
	Cursos   []json.RawMessage `json:"cursos"`
	Talleres []json.RawMessage `json:"talleres"`
}

// MyEnrollments fetches the caller's enrollment membership in one call.
func (c *Client) MyEnrollments(ctx context.Context) (*RawEnrollments, error) {
	var raw RawEnrollments
	if err := c.get(ctx, "/my-enrollments/", &raw); err != nil {
		return nil, err
	}
	return &raw, nil
}

// MyEnrollmentDetails fetches the caller's enrollments with payment status
// and transactions, as shown on the profile page.
func (c *Client) MyEnrollmentDetails(ctx context.Context) (courses, workshops []models.Enrollment, err error) {
	var parsed struct {
		Cursos   []models.Enrollment `json:"cursos"`
		Talleres []models.Enrollment `json:"talleres"`
	}
	if err := c.get(ctx, "/my-enrollments/", &parsed); err != nil {
		return nil, nil, err
	}
	return parsed.Cursos, parsed.Talleres, nil
}

// CreateEnrollment registers the caller in a course or workshop and returns
// the new enrollment id. itemType is "curso" or "taller".
func (c *Client) CreateEnrollment(ctx context.Context, itemType string, itemID int) (int, error) {
	payload := map[string]any{"tipo": itemType, "id": itemID}
	var resp struct {
		ID      int    `json:"id"`
		Message string `json:"message"`
	}
	if err := c.postJSON(ctx, "/enroll/", payload, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// CancelEnrollment removes an unpaid enrollment.
func (c *Client) CancelEnrollment(ctx context.Context, itemType string, itemID int) error {
	payload := map[string]any{"tipo": itemType, "id": itemID}
	return c.postJSON(ctx, "/enroll/cancel/", payload, nil)
}

// DownloadCertificate fetches the completion certificate PDF for an
// enrollment.
func (c *Client) DownloadCertificate(ctx context.Context, enrollmentID int) ([]byte, error) {
	var pdf []byte
	if err := c.get(ctx, certificatePath(enrollmentID), &pdf); err != nil {
		return nil, err
	}
	return pdf, nil
}
