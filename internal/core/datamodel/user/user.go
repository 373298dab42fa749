package user

import "time"

const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// User belongs to exactly one company. ManagerID is a weak back reference
// forming the reporting tree; resolution only ever follows it one hop.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	Name         string    `json:"name" gorm:"not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	Role         string    `json:"role" gorm:"not null;default:employee"`
	CompanyID    int64     `json:"company_id" gorm:"column:company_id;not null"`
	ManagerID    *int64    `json:"manager_id,omitempty" gorm:"column:manager_id"`
	IsActive     bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsManager() bool {
	return u.Role == RoleManager
}

// CanDecide reports whether the user may approve or reject expenses.
func (u *User) CanDecide() bool {
	return u.Role == RoleAdmin || u.Role == RoleManager
}

func (u *User) HasManager() bool {
	return u.ManagerID != nil && *u.ManagerID != 0
}

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}
