package company

import "time"

// Company owns its users and at most one approval rule. Currency is the
// ISO 4217 code expenses are normalized into.
type Company struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Currency  string    `json:"currency" gorm:"not null;default:USD"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Company) TableName() string {
	return "companies"
}
