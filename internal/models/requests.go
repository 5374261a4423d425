package models

// Form payloads posted by the browser. Validation tags are enforced in the
// handlers before anything is forwarded to the backend API.

// LoginForm is the credentials form.
type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// RegisterForm is the account creation form.
type RegisterForm struct {
	Username  string `form:"username" validate:"required,min=3,max=150"`
	Email     string `form:"email" validate:"required,email"`
	FirstName string `form:"first_name" validate:"required"`
	LastName  string `form:"last_name" validate:"required"`
	Password  string `form:"password" validate:"required,min=8"`
	Password2 string `form:"password2" validate:"required,eqfield=Password"`
}

// ProfileUpdateForm edits the account profile.
type ProfileUpdateForm struct {
	FirstName string `form:"first_name" validate:"required"`
	LastName  string `form:"last_name" validate:"required"`
	Email     string `form:"email" validate:"required,email"`
	Phone     string `form:"telefono" validate:"omitempty,min=8,max=15"`
}

// PasswordResetRequestForm asks for a reset email.
type PasswordResetRequestForm struct {
	Email string `form:"email" validate:"required,email"`
}

// PasswordResetConfirmForm sets the new password.
type PasswordResetConfirmForm struct {
	Password  string `form:"password" validate:"required,min=8"`
	Password2 string `form:"password2" validate:"required,eqfield=Password"`
}

// ContactForm is the public contact form.
type ContactForm struct {
	FirstName string `form:"nombre" validate:"required"`
	LastName  string `form:"apellido" validate:"required"`
	Email     string `form:"email" validate:"required,email"`
	Subject   string `form:"asunto" validate:"required,max=200"`
	Message   string `form:"mensaje" validate:"required"`
}

// ReviewForm posts a course or workshop review.
type ReviewForm struct {
	Rating  int    `form:"calificacion" validate:"required,min=1,max=5"`
	Comment string `form:"comentario" validate:"required,max=2000"`
}

// CheckoutForm confirms the order created from the cart.
type CheckoutForm struct {
	Phone   string `form:"telefono" validate:"omitempty,min=8,max=15"`
	Address string `form:"direccion" validate:"omitempty,max=300"`
	Notes   string `form:"notas" validate:"omitempty,max=500"`
}

// CourseForm is the admin create/update payload for courses.
type CourseForm struct {
	Title       string  `form:"titulo" validate:"required,max=200"`
	Description string  `form:"descripcion" validate:"required"`
	Price       float64 `form:"precio" validate:"required,min=0"`
	Duration    string  `form:"duracion" validate:"required,max=100"`
	CategoryID  int     `form:"categoria" validate:"omitempty,min=1"`
	ClientType  string  `form:"tipo_cliente" validate:"required,oneof=B2B B2C AMBOS"`
	Active      bool    `form:"esta_activo"`
}

// WorkshopForm is the admin create/update payload for workshops.
type WorkshopForm struct {
	Name        string  `form:"nombre" validate:"required,max=200"`
	Description string  `form:"descripcion" validate:"required"`
	Date        string  `form:"fecha_taller" validate:"required,datetime=2006-01-02"`
	Time        string  `form:"hora_taller" validate:"omitempty"`
	Modality    string  `form:"modalidad" validate:"required,oneof=PRESENCIAL ONLINE"`
	Price       float64 `form:"precio" validate:"required,min=0"`
	TotalSlots  int     `form:"cupos_totales" validate:"required,min=1"`
	CategoryID  int     `form:"categoria" validate:"omitempty,min=1"`
	ClientType  string  `form:"tipo_cliente" validate:"required,oneof=B2B B2C AMBOS"`
	Active      bool    `form:"esta_activo"`
}

// ProductForm is the admin create/update payload for products.
type ProductForm struct {
	Name         string  `form:"nombre" validate:"required,max=200"`
	Description  string  `form:"descripcion" validate:"omitempty"`
	Price        float64 `form:"precio_venta" validate:"required,min=0"`
	Available    bool    `form:"esta_disponible"`
	Physical     bool    `form:"es_fisico"`
	TrackStock   bool    `form:"controlar_stock"`
	CurrentStock int     `form:"stock_actual" validate:"min=0"`
}

// PostForm is the admin create/update payload for blog posts.
type PostForm struct {
	Title      string `form:"titulo" validate:"required,max=200"`
	Excerpt    string `form:"extracto" validate:"required"`
	Content    string `form:"contenido" validate:"required"`
	CategoryID int    `form:"categoria" validate:"omitempty,min=1"`
	Published  bool   `form:"esta_publicado"`
}

// BulkEmailForm is the admin bulk mail dispatch payload.
type BulkEmailForm struct {
	Subject    string `form:"asunto" validate:"required,max=200"`
	Body       string `form:"cuerpo" validate:"required"`
	ClientType string `form:"tipo_cliente" validate:"omitempty,oneof=B2B B2C AMBOS"`
}

// TransactionReviewForm approves or rejects an uploaded receipt.
type TransactionReviewForm struct {
	Action string `form:"accion" validate:"required,oneof=aprobar rechazar"`
	Note   string `form:"observacion" validate:"omitempty,max=500"`
}
