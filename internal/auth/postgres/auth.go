package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/adiwardana/expense-approval/internal/auth"
	companyModel "github.com/adiwardana/expense-approval/internal/core/datamodel/company"
	userModel "github.com/adiwardana/expense-approval/internal/core/datamodel/user"
)

type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) auth.Repository {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) GetUserByEmail(email string) (*userModel.User, error) {
	var u userModel.User
	err := r.db.Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, err
	}
	return &u, nil
}

func (r *AuthRepository) GetUserByID(id int64) (*userModel.User, error) {
	var u userModel.User
	err := r.db.Where("id = ?", id).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateCompanyWithAdmin inserts both rows in a single transaction so a
// failed user insert never leaves an orphan company.
func (r *AuthRepository) CreateCompanyWithAdmin(company *companyModel.Company, admin *userModel.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(company).Error; err != nil {
			return err
		}
		admin.CompanyID = company.ID
		return tx.Create(admin).Error
	})
}
