package approval

import (
	"errors"

	approvalModel "github.com/adiwardana/expense-approval/internal/core/datamodel/approval"
	expenseModel "github.com/adiwardana/expense-approval/internal/core/datamodel/expense"
	userModel "github.com/adiwardana/expense-approval/internal/core/datamodel/user"
)

const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// Repository defines the data access the approval service needs. Transact
// runs fn against a transaction-bound copy of the repository; reads inside
// it see locked rows where the implementation supports locking.
type Repository interface {
	Transact(fn func(Repository) error) error

	GetExpenseForUpdate(id int64) (*expenseModel.Expense, error)
	UpdateExpenseStatus(id int64, status string) error

	FirstPendingStep(expenseID int64) (*approvalModel.ApprovalStep, error)
	CountPendingSteps(expenseID int64) (int64, error)
	NextStepNumber(expenseID int64) (int, error)
	CreateStep(step *approvalModel.ApprovalStep) error
	UpdateStep(step *approvalModel.ApprovalStep) error
	StepsForExpense(expenseID int64) ([]*approvalModel.ApprovalStep, error)

	GetUserByID(id int64) (*userModel.User, error)
	GetApprovalRule(companyID int64) (*approvalModel.ApprovalRule, error)
	FirstAdminForCompany(companyID int64) (*userModel.User, error)

	PendingExpensesForCompany(companyID int64, limit, offset int) ([]*expenseModel.Expense, error)
}

var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrUnauthorized    = errors.New("not authorized to decide on this expense")
	ErrInvalidState    = errors.New("expense is no longer pending")
	ErrInvalidDecision = errors.New("decision must be approve or reject")
)
