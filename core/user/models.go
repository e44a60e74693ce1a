package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sabaq/backend/core"
)

// Roles
const (
	RoleCurator = "curator"
	RoleStudent = "student"
	RoleSeller  = "seller"
)

var (
	AllRoles = []string{RoleCurator, RoleStudent, RoleSeller}

	Roles = []Role{
		{Name: "Curator", Value: RoleCurator},
		{Name: "Student", Value: RoleStudent},
		{Name: "Seller", Value: RoleSeller},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID        int       `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Role      string    `json:"role" db:"role"`
	CuratorID *int      `json:"curator_id" db:"curator_id"` // students only; not role-checked
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
}

func (u User) IsCurator() bool { return u.Role == RoleCurator }
func (u User) IsStudent() bool { return u.Role == RoleStudent }
func (u User) IsSeller() bool  { return u.Role == RoleSeller }

// NewUser contains information needed to create a new User.
type NewUser struct {
	Username string `json:"username" validate:"required,min=3,username"`
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"omitempty,email"`
	Role     string `json:"role" validate:"required,role"`
	Curator  string `json:"curator" validate:"omitempty"` // curator's username
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	nu.Curator = core.CleanString(nu.Curator, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, nu.Username)
}
