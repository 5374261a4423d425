package models

// ClientType distinguishes B2B (business) from B2C (individual) offerings.
type ClientType string

const (
	ClientTypeB2B  ClientType = "B2B"
	ClientTypeB2C  ClientType = "B2C"
	ClientTypeBoth ClientType = "AMBOS"
)

// Workshop represents a live workshop (taller) from the catalog API.
type Workshop struct {
	ID               int        `json:"id"`
	Name             string     `json:"nombre"`
	Description      string     `json:"descripcion"`
	Image            string     `json:"imagen,omitempty"`
	Category         string     `json:"categoria_nombre,omitempty"`
	Date             string     `json:"fecha_taller"`
	Time             string     `json:"hora_taller,omitempty"`
	Modality         string     `json:"modalidad"`
	Price            float64    `json:"precio,string"`
	TotalSlots       int        `json:"cupos_totales"`
	AvailableSlots   int        `json:"cupos_disponibles"`
	Active           bool       `json:"esta_activo"`
	ClientType       ClientType `json:"tipo_cliente"`
	Status           string     `json:"estado_taller,omitempty"`
}

// Course represents a recorded course (curso) from the catalog API.
type Course struct {
	ID          int        `json:"id"`
	Title       string     `json:"titulo"`
	Description string     `json:"descripcion"`
	Image       string     `json:"imagen,omitempty"`
	Category    string     `json:"categoria_nombre,omitempty"`
	Price       float64    `json:"precio,string"`
	Duration    string     `json:"duracion"`
	Rating      float64    `json:"rating,string"`
	Students    int        `json:"estudiantes"`
	Active      bool       `json:"esta_activo"`
	ClientType  ClientType `json:"tipo_cliente"`
}

// Product represents a craft kit (producto) from the catalog API.
type Product struct {
	ID           int     `json:"id"`
	Name         string  `json:"nombre"`
	Description  string  `json:"descripcion"`
	Price        float64 `json:"precio_venta,string"`
	Available    bool    `json:"esta_disponible"`
	Image        string  `json:"imagen,omitempty"`
	Physical     bool    `json:"es_fisico"`
	TrackStock   bool    `json:"controlar_stock"`
	CurrentStock int     `json:"stock_actual"`
}

// Post represents a blog article from the API.
type Post struct {
	ID          int    `json:"id"`
	Title       string `json:"titulo"`
	Excerpt     string `json:"extracto"`
	Content     string `json:"contenido"`
	Image       string `json:"imagen,omitempty"`
	Author      string `json:"autor_nombre,omitempty"`
	Category    string `json:"categoria_nombre,omitempty"`
	PublishedAt string `json:"fecha_publicacion"`
	Published   bool   `json:"esta_publicado"`
}

// Category represents an interest/category (interes) used across the catalog.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"nombre"`
}

// Review represents a course or workshop review (resena).
type Review struct {
	ID         int    `json:"id"`
	ClientName string `json:"cliente_nombre,omitempty"`
	CourseID   int    `json:"curso,omitempty"`
	WorkshopID int    `json:"taller,omitempty"`
	Rating     int    `json:"calificacion"`
	Comment    string `json:"comentario"`
	Date       string `json:"fecha,omitempty"`
}
