package postgres

import (
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/adiwardana/expense-approval/internal/approval"
	approvalModel "github.com/adiwardana/expense-approval/internal/core/datamodel/approval"
	expenseModel "github.com/adiwardana/expense-approval/internal/core/datamodel/expense"
	userModel "github.com/adiwardana/expense-approval/internal/core/datamodel/user"
)

// ApprovalRepository implements approval.Repository using GORM
type ApprovalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) approval.Repository {
	return &ApprovalRepository{db: db}
}

// Transact runs fn against a transaction-bound repository.
func (r *ApprovalRepository) Transact(fn func(approval.Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&ApprovalRepository{db: tx})
	})
}

// GetExpenseForUpdate loads the expense, row-locked when the dialect
// supports it so concurrent decisions on the same expense serialize.
func (r *ApprovalRepository) GetExpenseForUpdate(id int64) (*expenseModel.Expense, error) {
	var exp expenseModel.Expense
	q := r.db
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.Where("id = ?", id).First(&exp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, approval.ErrExpenseNotFound
		}
		return nil, err
	}
	return &exp, nil
}

func (r *ApprovalRepository) UpdateExpenseStatus(id int64, status string) error {
	return r.db.Model(&expenseModel.Expense{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// FirstPendingStep returns the lowest-numbered pending step, or nil when
// none exists.
func (r *ApprovalRepository) FirstPendingStep(expenseID int64) (*approvalModel.ApprovalStep, error) {
	var step approvalModel.ApprovalStep
	err := r.db.Where("expense_id = ? AND status = ?", expenseID, approvalModel.StepStatusPending).
		Order("step_number ASC").
		First(&step).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &step, nil
}

func (r *ApprovalRepository) CountPendingSteps(expenseID int64) (int64, error) {
	var count int64
	err := r.db.Model(&approvalModel.ApprovalStep{}).
		Where("expense_id = ? AND status = ?", expenseID, approvalModel.StepStatusPending).
		Count(&count).Error
	return count, err
}

func (r *ApprovalRepository) NextStepNumber(expenseID int64) (int, error) {
	var max sql.NullInt64
	err := r.db.Model(&approvalModel.ApprovalStep{}).
		Where("expense_id = ?", expenseID).
		Select("MAX(step_number)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return 1, nil
	}
	return int(max.Int64) + 1, nil
}

func (r *ApprovalRepository) CreateStep(step *approvalModel.ApprovalStep) error {
	return r.db.Create(step).Error
}

func (r *ApprovalRepository) UpdateStep(step *approvalModel.ApprovalStep) error {
	step.UpdatedAt = time.Now()
	return r.db.Save(step).Error
}

func (r *ApprovalRepository) StepsForExpense(expenseID int64) ([]*approvalModel.ApprovalStep, error) {
	var steps []*approvalModel.ApprovalStep
	err := r.db.Where("expense_id = ?", expenseID).
		Order("step_number ASC").
		Find(&steps).Error
	return steps, err
}

func (r *ApprovalRepository) GetUserByID(id int64) (*userModel.User, error) {
	var u userModel.User
	if err := r.db.Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetApprovalRule returns the company's rule, or nil when none is
// configured; rule absence is a valid state, not an error.
func (r *ApprovalRepository) GetApprovalRule(companyID int64) (*approvalModel.ApprovalRule, error) {
	var rule approvalModel.ApprovalRule
	err := r.db.Where("company_id = ?", companyID).First(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// FirstAdminForCompany picks the admin with the lowest id so the
// fallback approver stays deterministic. Nil when the company has no
// admin at all.
func (r *ApprovalRepository) FirstAdminForCompany(companyID int64) (*userModel.User, error) {
	var u userModel.User
	err := r.db.Where("company_id = ? AND role = ?", companyID, userModel.RoleAdmin).
		Order("id ASC").
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *ApprovalRepository) PendingExpensesForCompany(companyID int64, limit, offset int) ([]*expenseModel.Expense, error) {
	var expenses []*expenseModel.Expense
	err := r.db.
		Joins("JOIN users ON users.id = expenses.user_id").
		Where("users.company_id = ? AND expenses.status = ?", companyID, expenseModel.StatusPending).
		Order("expenses.created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&expenses).Error
	return expenses, err
}
