package user

import (
	"errors"
	"strings"

	userModel "github.com/adiwardana/expense-approval/internal/core/datamodel/user"
)

type CreateUserDTO struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	ManagerID *int64 `json:"manager_id,omitempty"`
}

func (dto *CreateUserDTO) Validate() error {
	dto.Email = strings.TrimSpace(strings.ToLower(dto.Email))
	dto.Name = strings.TrimSpace(dto.Name)

	if dto.Email == "" || !strings.Contains(dto.Email, "@") {
		return errors.New("a valid email is required")
	}
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if len(dto.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if dto.Role == "" {
		dto.Role = userModel.RoleEmployee
	}
	if !userModel.ValidRole(dto.Role) {
		return errors.New("role must be admin, manager or employee")
	}
	return nil
}

// UpdateUserDTO carries partial updates; nil fields are left untouched.
type UpdateUserDTO struct {
	Name      *string `json:"name,omitempty"`
	Role      *string `json:"role,omitempty"`
	ManagerID *int64  `json:"manager_id,omitempty"`
	Password  *string `json:"password,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

func (dto *UpdateUserDTO) Validate() error {
	if dto.Role != nil && !userModel.ValidRole(*dto.Role) {
		return errors.New("role must be admin, manager or employee")
	}
	if dto.Password != nil && len(*dto.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if dto.Name != nil && strings.TrimSpace(*dto.Name) == "" {
		return errors.New("name cannot be empty")
	}
	return nil
}

var (
	ErrUserNotFound = errors.New("user not found")
	ErrAdminOnly    = errors.New("admin access required")
)
