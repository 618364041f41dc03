package domain

// Technician is a technician record held by the external technician backend.
type Technician struct {
	Code     string
	Name     string
	Phone    string
	Password string
}
