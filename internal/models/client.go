package models

// LifecycleState mirrors the backend's estado_ciclo values for a client.
type LifecycleState string

const (
	LifecycleLead     LifecycleState = "LEAD"
	LifecycleProspect LifecycleState = "PROSPECTO"
	LifecycleClient   LifecycleState = "CLIENTE"
	LifecycleInactive LifecycleState = "INACTIVO"
)

// Client is the admin-side CRM record behind a user account.
type Client struct {
	ID             int            `json:"id"`
	FirstName      string         `json:"nombre"`
	LastName       string         `json:"apellido"`
	Email          string         `json:"email"`
	Phone          string         `json:"telefono,omitempty"`
	ClientType     ClientType     `json:"tipo_cliente"`
	LifecycleState LifecycleState `json:"estado_ciclo"`
	Origin         string         `json:"origen,omitempty"`
	Company        string         `json:"empresa_nombre,omitempty"`
	Interests      []string       `json:"intereses,omitempty"`
	Enrollments    []Enrollment   `json:"enrollments,omitempty"`
}

// FullName joins the client's first and last names.
func (c *Client) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// ContactMessage is a message submitted through the public contact form.
type ContactMessage struct {
	ID        int    `json:"id"`
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido"`
	Email     string `json:"email"`
	Subject   string `json:"asunto"`
	Message   string `json:"mensaje"`
	SentAt    string `json:"fecha_envio,omitempty"`
	Read      bool   `json:"leido"`
}
