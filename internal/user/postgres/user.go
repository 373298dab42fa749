package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	approvalModel "github.com/adiwardana/expense-approval/internal/core/datamodel/approval"
	expenseModel "github.com/adiwardana/expense-approval/internal/core/datamodel/expense"
	userModel "github.com/adiwardana/expense-approval/internal/core/datamodel/user"
	"github.com/adiwardana/expense-approval/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(id int64) (*userModel.User, error) {
	var u userModel.User
	err := r.db.Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) ListByCompany(companyID int64, limit, offset int) ([]*userModel.User, error) {
	var users []*userModel.User
	err := r.db.Where("company_id = ?", companyID).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	return users, err
}

func (r *UserRepository) Create(u *userModel.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) Update(u *userModel.User) error {
	u.UpdatedAt = time.Now()
	return r.db.Save(u).Error
}

// Delete removes the user and cascades to their expenses and those
// expenses' approval steps, mirroring the schema's ON DELETE CASCADE for
// stores that lack it (sqlite in tests).
func (r *UserRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var expenseIDs []int64
		if err := tx.Model(&expenseModel.Expense{}).
			Where("user_id = ?", id).
			Pluck("id", &expenseIDs).Error; err != nil {
			return err
		}

		if len(expenseIDs) > 0 {
			if err := tx.Where("expense_id IN ?", expenseIDs).
				Delete(&approvalModel.ApprovalStep{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", expenseIDs).
				Delete(&expenseModel.Expense{}).Error; err != nil {
				return err
			}
		}

		// Subordinates keep working, their manager reference just dangles
		// until reassigned.
		if err := tx.Model(&userModel.User{}).
			Where("manager_id = ?", id).
			Update("manager_id", nil).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", id).Delete(&userModel.User{}).Error
	})
}
