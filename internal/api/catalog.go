package api

import (
	"context"
	"fmt"
	"strconv"

	"tmm-bienestar/internal/models"
)

// Courses lists the public recorded-course catalog.
func (c *Client) Courses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := c.get(ctx, "/public/cursos/", &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// Course fetches one course.
func (c *Client) Course(ctx context.Context, id int) (*models.Course, error) {
	var course models.Course
	if err := c.get(ctx, fmt.Sprintf("/public/cursos/%d/", id), &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// Workshops lists the public workshop catalog.
func (c *Client) Workshops(ctx context.Context) ([]models.Workshop, error) {
	var workshops []models.Workshop
	if err := c.get(ctx, "/public/talleres/", &workshops); err != nil {
		return nil, err
	}
	return workshops, nil
}

// Workshop fetches one workshop.
func (c *Client) Workshop(ctx context.Context, id int) (*models.Workshop, error) {
	var workshop models.Workshop
	if err := c.get(ctx, fmt.Sprintf("/public/talleres/%d/", id), &workshop); err != nil {
		return nil, err
	}
	return &workshop, nil
}

// Products lists the public product (kit) catalog.
func (c *Client) Products(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.get(ctx, "/public/productos/", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Product fetches one product.
func (c *Client) Product(ctx context.Context, id int) (*models.Product, error) {
	var product models.Product
	if err := c.get(ctx, fmt.Sprintf("/public/productos/%d/", id), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Posts lists published blog posts.
func (c *Client) Posts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := c.get(ctx, "/public/posts/", &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Post fetches one blog post.
func (c *Client) Post(ctx context.Context, id int) (*models.Post, error) {
	var post models.Post
	if err := c.get(ctx, fmt.Sprintf("/public/posts/%d/", id), &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// Reviews lists reviews for a course or workshop (pass zero for the other).
func (c *Client) Reviews(ctx context.Context, courseID, workshopID int) ([]models.Review, error) {
	params := map[string]string{}
	if courseID > 0 {
		params["curso"] = strconv.Itoa(courseID)
	}
	if workshopID > 0 {
		params["taller"] = strconv.Itoa(workshopID)
	}
	var reviews []models.Review
	if err := c.get(ctx, "/resenas/"+encodeQuery(params), &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// CreateReview posts a review for a course or workshop.
func (c *Client) CreateReview(ctx context.Context, courseID, workshopID int, form models.ReviewForm) error {
	payload := map[string]any{
		"calificacion": form.Rating,
		"comentario":   form.Comment,
	}
	if courseID > 0 {
		payload["curso"] = courseID
	}
	if workshopID > 0 {
		payload["taller"] = workshopID
	}
	return c.postJSON(ctx, "/resenas/", payload, nil)
}

// CalendarEvent is an entry of the public activity calendar.
type CalendarEvent struct {
	ID    int    `json:"id"`
	Title string `json:"titulo"`
	Date  string `json:"fecha"`
	Kind  string `json:"tipo"`
}

// CalendarEvents lists upcoming workshop dates.
func (c *Client) CalendarEvents(ctx context.Context) ([]CalendarEvent, error) {
	var events []CalendarEvent
	if err := c.get(ctx, "/calendar/events/", &events); err != nil {
		return nil, err
	}
	return events, nil
}

// SendContactMessage submits the public contact form.
func (c *Client) SendContactMessage(ctx context.Context, form models.ContactForm) error {
	payload := map[string]string{
		"nombre":   form.FirstName,
		"apellido": form.LastName,
		"email":    form.Email,
		"asunto":   form.Subject,
		"mensaje":  form.Message,
	}
	return c.postJSON(ctx, "/contact/", payload, nil)
}
