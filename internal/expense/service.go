package expense

import (
	"log/slog"

	"github.com/shopspring/decimal"

	approvalModel "github.com/adiwardana/expense-approval/internal/core/datamodel/approval"
	companyModel "github.com/adiwardana/expense-approval/internal/core/datamodel/company"
	expenseModel "github.com/adiwardana/expense-approval/internal/core/datamodel/expense"
	userModel "github.com/adiwardana/expense-approval/internal/core/datamodel/user"
)

// Repository defines the data access methods for expenses
type Repository interface {
	// CreateWithStep persists the expense and, when step is non-nil, its
	// initial approval step in a single transaction.
	CreateWithStep(exp *expenseModel.Expense, step *approvalModel.ApprovalStep) error
	GetByID(id int64) (*expenseModel.Expense, error)
	GetByUserID(userID int64, limit, offset int) ([]*expenseModel.Expense, error)
	GetByCompanyID(companyID int64, limit, offset int) ([]*expenseModel.Expense, error)
	GetCompany(id int64) (*companyModel.Company, error)
	GetUserByID(id int64) (*userModel.User, error)
}

// StepResolver produces the initial approval step for a freshly
// submitted expense, or nil when no approver can be resolved.
type StepResolver interface {
	InitialStep(owner *userModel.User) (*approvalModel.ApprovalStep, error)
}

// Converter normalizes amounts into the company currency on a
// best-effort basis.
type Converter interface {
	Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, bool)
}

type Service struct {
	repo      Repository
	resolver  StepResolver
	converter Converter
	logger    *slog.Logger
}

func NewService(repo Repository, resolver StepResolver, converter Converter, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		resolver:  resolver,
		converter: converter,
		logger:    logger,
	}
}

// CreateExpense runs the whole submission: persist the pending expense,
// normalize the amount into the company currency when they differ, and
// attach the resolved initial approval step. The rate lookup happens
// before any row is written so the external call never runs inside the
// transaction.
func (s *Service) CreateExpense(owner *userModel.User, dto CreateExpenseDTO) (*expenseModel.Expense, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("expense validation failed", "error", err, "user_id", owner.ID)
		return nil, err
	}

	company, err := s.repo.GetCompany(owner.CompanyID)
	if err != nil {
		s.logger.Error("failed to load company for expense", "error", err, "company_id", owner.CompanyID)
		return nil, err
	}

	exp := &expenseModel.Expense{
		UserID:      owner.ID,
		Amount:      dto.Amount,
		Currency:    dto.Currency,
		Category:    dto.Category,
		Description: dto.Description,
		ExpenseDate: dto.ExpenseDate(),
		Status:      expenseModel.StatusPending,
		ReceiptURL:  dto.ReceiptURL,
	}

	if dto.Currency != company.Currency {
		if converted, ok := s.converter.Convert(dto.Amount, dto.Currency, company.Currency); ok {
			exp.ConvertedAmount = &converted
		}
		// A degraded conversion leaves ConvertedAmount unset; the
		// submission itself still goes through.
	}

	step, err := s.resolver.InitialStep(owner)
	if err != nil {
		s.logger.Error("failed to resolve approver", "error", err, "user_id", owner.ID)
		return nil, err
	}

	if err := s.repo.CreateWithStep(exp, step); err != nil {
		s.logger.Error("failed to create expense", "error", err, "user_id", owner.ID)
		return nil, err
	}

	s.logger.Info("expense created",
		"expense_id", exp.ID,
		"user_id", owner.ID,
		"amount", exp.Amount.String(),
		"currency", exp.Currency,
		"has_approval_step", step != nil)

	return exp, nil
}

// GetExpenseByID retrieves an expense with visibility rules applied:
// owners always see their own, admins and managers see every expense in
// their company.
func (s *Service) GetExpenseByID(id int64, actor *userModel.User) (*expenseModel.Expense, error) {
	exp, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrExpenseNotFound
	}

	if exp.UserID == actor.ID {
		return exp, nil
	}

	if actor.CanDecide() {
		owner, err := s.repo.GetUserByID(exp.UserID)
		if err == nil && owner.CompanyID == actor.CompanyID {
			return exp, nil
		}
	}

	s.logger.Warn("unauthorized access to expense", "expense_id", id, "actor_user_id", actor.ID)
	return nil, ErrUnauthorizedAccess
}

// ListExpenses returns the actor's own expenses, or the whole company's
// when the actor is an admin or manager.
func (s *Service) ListExpenses(actor *userModel.User, limit, offset int) ([]*expenseModel.Expense, error) {
	if actor.CanDecide() {
		return s.repo.GetByCompanyID(actor.CompanyID, limit, offset)
	}
	return s.repo.GetByUserID(actor.ID, limit, offset)
}
