package models

// DashboardStats aggregates the figures shown on the admin dashboard.
// All aggregation happens server-side; this is a read-only view.
type DashboardStats struct {
	TotalRevenue        float64 `json:"ingresos_totales,string"`
	MonthRevenue        float64 `json:"ingresos_mes,string"`
	PendingAmount       float64 `json:"monto_pendiente,string"`
	TotalClients        int     `json:"total_clientes"`
	NewClientsThisMonth int     `json:"clientes_nuevos_mes"`
	ActiveCourses       int     `json:"cursos_activos"`
	ActiveWorkshops     int     `json:"talleres_activos"`
	PendingReceipts     int     `json:"comprobantes_pendientes"`
	UnreadMessages      int     `json:"mensajes_no_leidos"`
}

// RevenueEntry is one row of the admin revenue breakdown.
type RevenueEntry struct {
	Label    string  `json:"etiqueta"`
	Kind     string  `json:"tipo"`
	Amount   float64 `json:"monto,string"`
	Count    int     `json:"cantidad"`
}

// RevenueDetails is the admin revenue report.
type RevenueDetails struct {
	Total   float64        `json:"total,string"`
	Entries []RevenueEntry `json:"detalle"`
}
