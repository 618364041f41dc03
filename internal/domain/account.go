package domain

// Role enumerates staff roles.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "technician"
)

// Account models a staff member allowed onto the dashboard.
type Account struct {
	ID       string
	Username string
	Name     string
	Role     Role
}
