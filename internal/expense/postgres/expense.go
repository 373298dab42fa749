package postgres

import (
	"errors"

	"gorm.io/gorm"

	approvalModel "github.com/adiwardana/expense-approval/internal/core/datamodel/approval"
	companyModel "github.com/adiwardana/expense-approval/internal/core/datamodel/company"
	expenseModel "github.com/adiwardana/expense-approval/internal/core/datamodel/expense"
	userModel "github.com/adiwardana/expense-approval/internal/core/datamodel/user"
	"github.com/adiwardana/expense-approval/internal/expense"
)

// ExpenseRepository implements the expense.Repository interface using GORM
type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) expense.Repository {
	return &ExpenseRepository{db: db}
}

// CreateWithStep writes the expense and its initial step atomically, so a
// failed step insert never leaves a submitted expense half-orchestrated.
func (r *ExpenseRepository) CreateWithStep(exp *expenseModel.Expense, step *approvalModel.ApprovalStep) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(exp).Error; err != nil {
			return err
		}
		if step == nil {
			return nil
		}
		step.ExpenseID = exp.ID
		return tx.Create(step).Error
	})
}

func (r *ExpenseRepository) GetByID(id int64) (*expenseModel.Expense, error) {
	var exp expenseModel.Expense
	err := r.db.Where("id = ?", id).First(&exp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, expense.ErrExpenseNotFound
		}
		return nil, err
	}
	return &exp, nil
}

func (r *ExpenseRepository) GetByUserID(userID int64, limit, offset int) ([]*expenseModel.Expense, error) {
	var expenses []*expenseModel.Expense
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) GetByCompanyID(companyID int64, limit, offset int) ([]*expenseModel.Expense, error) {
	var expenses []*expenseModel.Expense
	err := r.db.
		Joins("JOIN users ON users.id = expenses.user_id").
		Where("users.company_id = ?", companyID).
		Order("expenses.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&expenses).Error
	return expenses, err
}

func (r *ExpenseRepository) GetCompany(id int64) (*companyModel.Company, error) {
	var c companyModel.Company
	if err := r.db.Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ExpenseRepository) GetUserByID(id int64) (*userModel.User, error) {
	var u userModel.User
	if err := r.db.Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}
