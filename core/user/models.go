package user

import "github.com/trezcool/challan/core"

// Roles
const (
	RoleAdmin      = "admin"
	RoleAccountant = "accountant"
)

var (
	AllRoles = []string{RoleAdmin, RoleAccountant}

	rolePriorities = map[string]int{
		RoleAdmin:      20,
		RoleAccountant: 10,
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

// User is the basic profile of the signed-in staff member.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	CampusID string `json:"campusId,omitempty"`
}

func (u User) IsZero() bool { return u.ID == "" && u.Email == "" }

func (u User) IsAdmin() bool      { return u.Role == RoleAdmin }
func (u User) IsAccountant() bool { return u.Role == RoleAccountant }

// HasRole reports whether the user holds one of roles.
func (u User) HasRole(roles ...string) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

// HomePath is the dashboard route of the user's role.
func (u User) HomePath() string {
	switch u.Role {
	case RoleAdmin:
		return "/admin"
	case RoleAccountant:
		return "/accountant/invoices"
	}
	return "/login"
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate() error {
	c.Email = core.CleanString(c.Email, true /* lower */)
	return core.Validate.Struct(c)
}

// Session is what the backend returns on a successful login.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
