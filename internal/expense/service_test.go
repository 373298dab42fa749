package expense_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	approvalModel "github.com/adiwardana/expense-approval/internal/core/datamodel/approval"
	companyModel "github.com/adiwardana/expense-approval/internal/core/datamodel/company"
	expenseModel "github.com/adiwardana/expense-approval/internal/core/datamodel/expense"
	userModel "github.com/adiwardana/expense-approval/internal/core/datamodel/user"
	"github.com/adiwardana/expense-approval/internal/expense"
)

func TestExpense(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Expense Suite")
}

// Mock repository for testing
type mockExpenseRepository struct {
	expenses    map[int64]*expenseModel.Expense
	savedSteps  map[int64]*approvalModel.ApprovalStep
	companies   map[int64]*companyModel.Company
	users       map[int64]*userModel.User
	createError error
	nextID      int64
}

func newMockExpenseRepository() *mockExpenseRepository {
	return &mockExpenseRepository{
		expenses:   make(map[int64]*expenseModel.Expense),
		savedSteps: make(map[int64]*approvalModel.ApprovalStep),
		companies:  make(map[int64]*companyModel.Company),
		users:      make(map[int64]*userModel.User),
		nextID:     1,
	}
}

func (m *mockExpenseRepository) CreateWithStep(exp *expenseModel.Expense, step *approvalModel.ApprovalStep) error {
	if m.createError != nil {
		return m.createError
	}
	exp.ID = m.nextID
	m.nextID++
	exp.CreatedAt = time.Now()
	exp.UpdatedAt = time.Now()
	m.expenses[exp.ID] = exp
	if step != nil {
		step.ExpenseID = exp.ID
		m.savedSteps[exp.ID] = step
	}
	return nil
}

func (m *mockExpenseRepository) GetByID(id int64) (*expenseModel.Expense, error) {
	exp, ok := m.expenses[id]
	if !ok {
		return nil, errors.New("expense not found")
	}
	return exp, nil
}

func (m *mockExpenseRepository) GetByUserID(userID int64, limit, offset int) ([]*expenseModel.Expense, error) {
	var result []*expenseModel.Expense
	for _, exp := range m.expenses {
		if exp.UserID == userID {
			result = append(result, exp)
		}
	}
	return result, nil
}

func (m *mockExpenseRepository) GetByCompanyID(companyID int64, limit, offset int) ([]*expenseModel.Expense, error) {
	var result []*expenseModel.Expense
	for _, exp := range m.expenses {
		owner, ok := m.users[exp.UserID]
		if ok && owner.CompanyID == companyID {
			result = append(result, exp)
		}
	}
	return result, nil
}

func (m *mockExpenseRepository) GetCompany(id int64) (*companyModel.Company, error) {
	company, ok := m.companies[id]
	if !ok {
		return nil, errors.New("company not found")
	}
	return company, nil
}

func (m *mockExpenseRepository) GetUserByID(id int64) (*userModel.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

// Mock step resolver for testing
type mockStepResolver struct {
	step *approvalModel.ApprovalStep
	err  error
}

func (m *mockStepResolver) InitialStep(owner *userModel.User) (*approvalModel.ApprovalStep, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.step, nil
}

// Mock converter for testing
type mockConverter struct {
	rate     float64
	degraded bool
	calls    int
}

func (m *mockConverter) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, bool) {
	m.calls++
	if m.degraded {
		return amount, false
	}
	return amount.Mul(decimal.NewFromFloat(m.rate)).Round(2), true
}

var _ = Describe("ExpenseService", func() {
	var (
		service   *expense.Service
		mockRepo  *mockExpenseRepository
		resolver  *mockStepResolver
		converter *mockConverter
		owner     *userModel.User
	)

	BeforeEach(func() {
		mockRepo = newMockExpenseRepository()
		resolver = &mockStepResolver{
			step: &approvalModel.ApprovalStep{
				StepNumber:     1,
				ApproverUserID: 10,
				Status:         approvalModel.StepStatusPending,
			},
		}
		converter = &mockConverter{rate: 0.5}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = expense.NewService(mockRepo, resolver, converter, logger)

		mockRepo.companies[1] = &companyModel.Company{ID: 1, Name: "Acme", Currency: "USD"}
		owner = &userModel.User{ID: 20, Role: userModel.RoleEmployee, CompanyID: 1}
		mockRepo.users[owner.ID] = owner
	})

	Describe("CreateExpense", func() {
		validDTO := func() expense.CreateExpenseDTO {
			return expense.CreateExpenseDTO{
				Amount:   decimal.NewFromFloat(42.50),
				Currency: "USD",
				Category: "travel",
				Date:     "2026-08-21",
			}
		}

		Context("when submitted in the company currency", func() {
			It("should create a pending expense without a converted amount", func() {
				result, err := service.CreateExpense(owner, validDTO())

				Expect(err).NotTo(HaveOccurred())
				Expect(result.ID).To(BeNumerically(">", 0))
				Expect(result.Status).To(Equal(expenseModel.StatusPending))
				Expect(result.ConvertedAmount).To(BeNil())
				Expect(converter.calls).To(Equal(0))
			})

			It("should persist the initial approval step with the expense", func() {
				result, err := service.CreateExpense(owner, validDTO())

				Expect(err).NotTo(HaveOccurred())
				step := mockRepo.savedSteps[result.ID]
				Expect(step).NotTo(BeNil())
				Expect(step.ExpenseID).To(Equal(result.ID))
				Expect(step.ApproverUserID).To(Equal(int64(10)))
			})
		})

		Context("when submitted in a foreign currency", func() {
			It("should store the converted amount in the company currency", func() {
				dto := validDTO()
				dto.Amount = decimal.NewFromFloat(100)
				dto.Currency = "EUR"

				result, err := service.CreateExpense(owner, dto)

				Expect(err).NotTo(HaveOccurred())
				Expect(result.Amount.String()).To(Equal("100"))
				Expect(result.Currency).To(Equal("EUR"))
				Expect(result.ConvertedAmount).NotTo(BeNil())
				Expect(result.ConvertedAmount.String()).To(Equal("50"))
			})

			It("should leave the converted amount unset when conversion degrades", func() {
				converter.degraded = true
				dto := validDTO()
				dto.Currency = "EUR"

				result, err := service.CreateExpense(owner, dto)

				Expect(err).NotTo(HaveOccurred())
				Expect(result.ID).To(BeNumerically(">", 0))
				Expect(result.Status).To(Equal(expenseModel.StatusPending))
				Expect(result.ConvertedAmount).To(BeNil())
			})
		})

		Context("when no approver can be resolved", func() {
			It("should still create the expense, just without a step", func() {
				resolver.step = nil

				result, err := service.CreateExpense(owner, validDTO())

				Expect(err).NotTo(HaveOccurred())
				Expect(mockRepo.savedSteps[result.ID]).To(BeNil())
			})
		})

		Context("when validation fails", func() {
			It("should reject a zero amount", func() {
				dto := validDTO()
				dto.Amount = decimal.Zero

				_, err := service.CreateExpense(owner, dto)
				Expect(err).To(HaveOccurred())
			})

			It("should reject an amount with more than 2 decimal places", func() {
				dto := validDTO()
				dto.Amount = decimal.RequireFromString("10.123")

				_, err := service.CreateExpense(owner, dto)
				Expect(err).To(HaveOccurred())
			})

			It("should reject a malformed date", func() {
				dto := validDTO()
				dto.Date = "21-08-2026"

				_, err := service.CreateExpense(owner, dto)
				Expect(err).To(HaveOccurred())
			})

			It("should reject a missing category", func() {
				dto := validDTO()
				dto.Category = "  "

				_, err := service.CreateExpense(owner, dto)
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("GetExpenseByID", func() {
		var created *expenseModel.Expense

		BeforeEach(func() {
			var err error
			created, err = service.CreateExpense(owner, expense.CreateExpenseDTO{
				Amount:   decimal.NewFromFloat(10),
				Currency: "USD",
				Category: "food",
				Date:     "2026-08-21",
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return the expense to its owner", func() {
			result, err := service.GetExpenseByID(created.ID, owner)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.ID).To(Equal(created.ID))
		})

		It("should return the expense to a manager of the same company", func() {
			manager := &userModel.User{ID: 30, Role: userModel.RoleManager, CompanyID: 1}
			mockRepo.users[manager.ID] = manager

			result, err := service.GetExpenseByID(created.ID, manager)

			Expect(err).NotTo(HaveOccurred())
			Expect(result.ID).To(Equal(created.ID))
		})

		It("should deny another employee", func() {
			peer := &userModel.User{ID: 31, Role: userModel.RoleEmployee, CompanyID: 1}

			_, err := service.GetExpenseByID(created.ID, peer)
			Expect(err).To(MatchError(expense.ErrUnauthorizedAccess))
		})

		It("should deny a manager from another company", func() {
			outsider := &userModel.User{ID: 32, Role: userModel.RoleManager, CompanyID: 2}

			_, err := service.GetExpenseByID(created.ID, outsider)
			Expect(err).To(MatchError(expense.ErrUnauthorizedAccess))
		})

		It("should return not found for an unknown id", func() {
			_, err := service.GetExpenseByID(404, owner)
			Expect(err).To(MatchError(expense.ErrExpenseNotFound))
		})
	})

	Describe("ListExpenses", func() {
		BeforeEach(func() {
			peer := &userModel.User{ID: 40, Role: userModel.RoleEmployee, CompanyID: 1}
			mockRepo.users[peer.ID] = peer

			for _, u := range []*userModel.User{owner, peer} {
				_, err := service.CreateExpense(u, expense.CreateExpenseDTO{
					Amount:   decimal.NewFromFloat(5),
					Currency: "USD",
					Category: "food",
					Date:     "2026-08-21",
				})
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("should return only the employee's own expenses", func() {
			result, err := service.ListExpenses(owner, 20, 0)

			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(HaveLen(1))
			Expect(result[0].UserID).To(Equal(owner.ID))
		})

		It("should return the whole company's expenses to an admin", func() {
			admin := &userModel.User{ID: 50, Role: userModel.RoleAdmin, CompanyID: 1}
			mockRepo.users[admin.ID] = admin

			result, err := service.ListExpenses(admin, 20, 0)

			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(HaveLen(2))
		})
	})
})
