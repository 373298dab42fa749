package approval_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/adiwardana/expense-approval/internal/approval"
	approvalModel "github.com/adiwardana/expense-approval/internal/core/datamodel/approval"
	expenseModel "github.com/adiwardana/expense-approval/internal/core/datamodel/expense"
	userModel "github.com/adiwardana/expense-approval/internal/core/datamodel/user"
)

func TestApproval(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Approval Suite")
}

// Mock repository for testing. Transact just runs fn against the same
// mock, which is enough to exercise the decision logic.
type mockApprovalRepository struct {
	expenses map[int64]*expenseModel.Expense
	steps    map[int64][]*approvalModel.ApprovalStep
	users    map[int64]*userModel.User
	rules    map[int64]*approvalModel.ApprovalRule
	admins   map[int64]*userModel.User

	getRuleError  error
	getUserError  error
	getAdminError error
	nextStepID    int64
}

func newMockApprovalRepository() *mockApprovalRepository {
	return &mockApprovalRepository{
		expenses:   make(map[int64]*expenseModel.Expense),
		steps:      make(map[int64][]*approvalModel.ApprovalStep),
		users:      make(map[int64]*userModel.User),
		rules:      make(map[int64]*approvalModel.ApprovalRule),
		admins:     make(map[int64]*userModel.User),
		nextStepID: 1,
	}
}

func (m *mockApprovalRepository) Transact(fn func(approval.Repository) error) error {
	return fn(m)
}

func (m *mockApprovalRepository) GetExpenseForUpdate(id int64) (*expenseModel.Expense, error) {
	exp, ok := m.expenses[id]
	if !ok {
		return nil, approval.ErrExpenseNotFound
	}
	return exp, nil
}

func (m *mockApprovalRepository) UpdateExpenseStatus(id int64, status string) error {
	exp, ok := m.expenses[id]
	if !ok {
		return approval.ErrExpenseNotFound
	}
	exp.Status = status
	return nil
}

func (m *mockApprovalRepository) FirstPendingStep(expenseID int64) (*approvalModel.ApprovalStep, error) {
	var first *approvalModel.ApprovalStep
	for _, step := range m.steps[expenseID] {
		if step.Status != approvalModel.StepStatusPending {
			continue
		}
		if first == nil || step.StepNumber < first.StepNumber {
			first = step
		}
	}
	return first, nil
}

func (m *mockApprovalRepository) CountPendingSteps(expenseID int64) (int64, error) {
	var count int64
	for _, step := range m.steps[expenseID] {
		if step.Status == approvalModel.StepStatusPending {
			count++
		}
	}
	return count, nil
}

func (m *mockApprovalRepository) NextStepNumber(expenseID int64) (int, error) {
	max := 0
	for _, step := range m.steps[expenseID] {
		if step.StepNumber > max {
			max = step.StepNumber
		}
	}
	return max + 1, nil
}

func (m *mockApprovalRepository) CreateStep(step *approvalModel.ApprovalStep) error {
	step.ID = m.nextStepID
	m.nextStepID++
	step.CreatedAt = time.Now()
	m.steps[step.ExpenseID] = append(m.steps[step.ExpenseID], step)
	return nil
}

func (m *mockApprovalRepository) UpdateStep(step *approvalModel.ApprovalStep) error {
	for i, existing := range m.steps[step.ExpenseID] {
		if existing.ID == step.ID {
			m.steps[step.ExpenseID][i] = step
			return nil
		}
	}
	return errors.New("step not found")
}

func (m *mockApprovalRepository) StepsForExpense(expenseID int64) ([]*approvalModel.ApprovalStep, error) {
	return m.steps[expenseID], nil
}

func (m *mockApprovalRepository) GetUserByID(id int64) (*userModel.User, error) {
	if m.getUserError != nil {
		return nil, m.getUserError
	}
	u, ok := m.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func (m *mockApprovalRepository) GetApprovalRule(companyID int64) (*approvalModel.ApprovalRule, error) {
	if m.getRuleError != nil {
		return nil, m.getRuleError
	}
	return m.rules[companyID], nil
}

func (m *mockApprovalRepository) FirstAdminForCompany(companyID int64) (*userModel.User, error) {
	if m.getAdminError != nil {
		return nil, m.getAdminError
	}
	return m.admins[companyID], nil
}

func (m *mockApprovalRepository) PendingExpensesForCompany(companyID int64, limit, offset int) ([]*expenseModel.Expense, error) {
	var result []*expenseModel.Expense
	for _, exp := range m.expenses {
		owner, ok := m.users[exp.UserID]
		if !ok || owner.CompanyID != companyID {
			continue
		}
		if exp.Status == expenseModel.StatusPending {
			result = append(result, exp)
		}
	}
	return result, nil
}

var _ = Describe("ApprovalService Decide", func() {
	var (
		service  *approval.Service
		mockRepo *mockApprovalRepository
		manager  *userModel.User
		employee *userModel.User
	)

	BeforeEach(func() {
		mockRepo = newMockApprovalRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = approval.NewService(mockRepo, logger)

		manager = &userModel.User{ID: 10, Role: userModel.RoleManager, CompanyID: 1}
		employee = &userModel.User{ID: 20, Role: userModel.RoleEmployee, CompanyID: 1, ManagerID: &manager.ID}
		mockRepo.users[manager.ID] = manager
		mockRepo.users[employee.ID] = employee

		mockRepo.expenses[100] = &expenseModel.Expense{
			ID:     100,
			UserID: employee.ID,
			Amount: decimal.NewFromFloat(50),
			Status: expenseModel.StatusPending,
		}
		_ = mockRepo.CreateStep(&approvalModel.ApprovalStep{
			ExpenseID:      100,
			StepNumber:     1,
			ApproverUserID: manager.ID,
			Status:         approvalModel.StepStatusPending,
		})
	})

	Context("when approving the only pending step", func() {
		It("should mark the step and the expense approved", func() {
			err := service.Decide(100, manager, approval.DecisionApprove, "looks good")

			Expect(err).NotTo(HaveOccurred())
			Expect(mockRepo.expenses[100].Status).To(Equal(expenseModel.StatusApproved))
			steps, _ := mockRepo.StepsForExpense(100)
			Expect(steps).To(HaveLen(1))
			Expect(steps[0].Status).To(Equal(approvalModel.StepStatusApproved))
			Expect(steps[0].Comments).To(Equal("looks good"))
		})
	})

	Context("when approving with further pending steps remaining", func() {
		BeforeEach(func() {
			_ = mockRepo.CreateStep(&approvalModel.ApprovalStep{
				ExpenseID:      100,
				StepNumber:     2,
				ApproverUserID: manager.ID,
				Status:         approvalModel.StepStatusPending,
			})
		})

		It("should keep the expense pending", func() {
			err := service.Decide(100, manager, approval.DecisionApprove, "")

			Expect(err).NotTo(HaveOccurred())
			Expect(mockRepo.expenses[100].Status).To(Equal(expenseModel.StatusPending))

			first, _ := mockRepo.FirstPendingStep(100)
			Expect(first).NotTo(BeNil())
			Expect(first.StepNumber).To(Equal(2))
		})
	})

	Context("when rejecting", func() {
		It("should reject the expense even with other pending steps", func() {
			_ = mockRepo.CreateStep(&approvalModel.ApprovalStep{
				ExpenseID:      100,
				StepNumber:     2,
				ApproverUserID: manager.ID,
				Status:         approvalModel.StepStatusPending,
			})

			err := service.Decide(100, manager, approval.DecisionReject, "no receipt")

			Expect(err).NotTo(HaveOccurred())
			Expect(mockRepo.expenses[100].Status).To(Equal(expenseModel.StatusRejected))
		})
	})

	Context("when the expense has no pending step", func() {
		BeforeEach(func() {
			mockRepo.steps[100] = nil
		})

		It("should record the decision as a fresh step", func() {
			err := service.Decide(100, manager, approval.DecisionApprove, "")

			Expect(err).NotTo(HaveOccurred())
			Expect(mockRepo.expenses[100].Status).To(Equal(expenseModel.StatusApproved))

			steps, _ := mockRepo.StepsForExpense(100)
			Expect(steps).To(HaveLen(1))
			Expect(steps[0].StepNumber).To(Equal(1))
			Expect(steps[0].ApproverUserID).To(Equal(manager.ID))
		})
	})

	Context("when the expense is already terminal", func() {
		BeforeEach(func() {
			mockRepo.expenses[100].Status = expenseModel.StatusApproved
		})

		It("should return ErrInvalidState", func() {
			err := service.Decide(100, manager, approval.DecisionReject, "")
			Expect(err).To(MatchError(approval.ErrInvalidState))
		})
	})

	Context("when the actor is an employee", func() {
		It("should return ErrUnauthorized", func() {
			err := service.Decide(100, employee, approval.DecisionApprove, "")
			Expect(err).To(MatchError(approval.ErrUnauthorized))
		})
	})

	Context("when the actor belongs to another company", func() {
		It("should return ErrUnauthorized", func() {
			outsider := &userModel.User{ID: 99, Role: userModel.RoleAdmin, CompanyID: 2}

			err := service.Decide(100, outsider, approval.DecisionApprove, "")
			Expect(err).To(MatchError(approval.ErrUnauthorized))
		})
	})

	Context("when the expense does not exist", func() {
		It("should return ErrExpenseNotFound", func() {
			err := service.Decide(404, manager, approval.DecisionApprove, "")
			Expect(err).To(MatchError(approval.ErrExpenseNotFound))
		})
	})

	Context("when the decision string is unknown", func() {
		It("should return ErrInvalidDecision", func() {
			err := service.Decide(100, manager, "maybe", "")
			Expect(err).To(MatchError(approval.ErrInvalidDecision))
		})
	})
})

var _ = Describe("ApprovalService PendingExpenses", func() {
	var (
		service  *approval.Service
		mockRepo *mockApprovalRepository
	)

	BeforeEach(func() {
		mockRepo = newMockApprovalRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = approval.NewService(mockRepo, logger)
	})

	It("should reject employees", func() {
		employee := &userModel.User{ID: 1, Role: userModel.RoleEmployee, CompanyID: 1}

		_, err := service.PendingExpenses(employee, 20, 0)
		Expect(err).To(MatchError(approval.ErrUnauthorized))
	})

	It("should return only pending expenses of the actor's company", func() {
		admin := &userModel.User{ID: 1, Role: userModel.RoleAdmin, CompanyID: 1}
		insider := &userModel.User{ID: 2, Role: userModel.RoleEmployee, CompanyID: 1}
		outsider := &userModel.User{ID: 3, Role: userModel.RoleEmployee, CompanyID: 2}
		mockRepo.users[admin.ID] = admin
		mockRepo.users[insider.ID] = insider
		mockRepo.users[outsider.ID] = outsider

		mockRepo.expenses[1] = &expenseModel.Expense{ID: 1, UserID: insider.ID, Status: expenseModel.StatusPending}
		mockRepo.expenses[2] = &expenseModel.Expense{ID: 2, UserID: insider.ID, Status: expenseModel.StatusApproved}
		mockRepo.expenses[3] = &expenseModel.Expense{ID: 3, UserID: outsider.ID, Status: expenseModel.StatusPending}

		result, err := service.PendingExpenses(admin, 20, 0)

		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(HaveLen(1))
		Expect(result[0].ID).To(Equal(int64(1)))
	})
})
