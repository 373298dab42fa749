package approval_test

import (
	"errors"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/adiwardana/expense-approval/internal/approval"
	approvalModel "github.com/adiwardana/expense-approval/internal/core/datamodel/approval"
	userModel "github.com/adiwardana/expense-approval/internal/core/datamodel/user"
)

var _ = Describe("ApproverResolution", func() {
	var (
		service  *approval.Service
		mockRepo *mockApprovalRepository
		admin    *userModel.User
		manager  *userModel.User
		employee *userModel.User
	)

	BeforeEach(func() {
		mockRepo = newMockApprovalRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = approval.NewService(mockRepo, logger)

		admin = &userModel.User{ID: 1, Role: userModel.RoleAdmin, CompanyID: 1}
		manager = &userModel.User{ID: 2, Role: userModel.RoleManager, CompanyID: 1}
		employee = &userModel.User{ID: 3, Role: userModel.RoleEmployee, CompanyID: 1, ManagerID: &manager.ID}

		mockRepo.users[admin.ID] = admin
		mockRepo.users[manager.ID] = manager
		mockRepo.users[employee.ID] = employee
		mockRepo.admins[1] = admin
	})

	Context("with a specific-approver rule", func() {
		BeforeEach(func() {
			specificID := admin.ID
			mockRepo.rules[1] = &approvalModel.ApprovalRule{
				CompanyID:      1,
				RuleType:       approvalModel.RuleTypeSpecific,
				SpecificUserID: &specificID,
			}
		})

		It("should pick the configured approver over the manager", func() {
			approver, err := service.ResolveApprover(employee)

			Expect(err).NotTo(HaveOccurred())
			Expect(approver.ID).To(Equal(admin.ID))
		})

		It("should fall back to the manager when the configured approver is gone", func() {
			missing := int64(999)
			mockRepo.rules[1].SpecificUserID = &missing

			approver, err := service.ResolveApprover(employee)

			Expect(err).NotTo(HaveOccurred())
			Expect(approver.ID).To(Equal(manager.ID))
		})
	})

	Context("with a percentage rule", func() {
		BeforeEach(func() {
			pct := decimal.NewFromInt(60)
			mockRepo.rules[1] = &approvalModel.ApprovalRule{
				CompanyID:  1,
				RuleType:   approvalModel.RuleTypePercentage,
				Percentage: &pct,
			}
		})

		It("should resolve to the submitter's manager", func() {
			approver, err := service.ResolveApprover(employee)

			Expect(err).NotTo(HaveOccurred())
			Expect(approver.ID).To(Equal(manager.ID))
		})
	})

	Context("with a hybrid rule", func() {
		It("should behave like the percentage path", func() {
			pct := decimal.NewFromInt(50)
			specificID := admin.ID
			mockRepo.rules[1] = &approvalModel.ApprovalRule{
				CompanyID:      1,
				RuleType:       approvalModel.RuleTypeHybrid,
				Percentage:     &pct,
				SpecificUserID: &specificID,
			}

			approver, err := service.ResolveApprover(employee)

			Expect(err).NotTo(HaveOccurred())
			Expect(approver.ID).To(Equal(manager.ID))
		})
	})

	Context("with no rule configured", func() {
		It("should resolve to the submitter's manager", func() {
			approver, err := service.ResolveApprover(employee)

			Expect(err).NotTo(HaveOccurred())
			Expect(approver.ID).To(Equal(manager.ID))
		})

		It("should fall back to the company admin when the submitter has no manager", func() {
			solo := &userModel.User{ID: 4, Role: userModel.RoleEmployee, CompanyID: 1}
			mockRepo.users[solo.ID] = solo

			approver, err := service.ResolveApprover(solo)

			Expect(err).NotTo(HaveOccurred())
			Expect(approver.ID).To(Equal(admin.ID))
		})

		It("should fall back to the company admin when the manager reference is dangling", func() {
			gone := int64(999)
			orphan := &userModel.User{ID: 5, Role: userModel.RoleEmployee, CompanyID: 1, ManagerID: &gone}
			mockRepo.users[orphan.ID] = orphan

			approver, err := service.ResolveApprover(orphan)

			Expect(err).NotTo(HaveOccurred())
			Expect(approver.ID).To(Equal(admin.ID))
		})

		It("should return nil when neither manager nor admin exists", func() {
			lonely := &userModel.User{ID: 6, Role: userModel.RoleEmployee, CompanyID: 7}
			mockRepo.users[lonely.ID] = lonely

			approver, err := service.ResolveApprover(lonely)

			Expect(err).NotTo(HaveOccurred())
			Expect(approver).To(BeNil())
		})
	})

	Context("when the rule lookup fails", func() {
		It("should propagate the error", func() {
			mockRepo.getRuleError = errors.New("db down")

			_, err := service.ResolveApprover(employee)
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("InitialStep", func() {
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

		manager = &userModel.User{ID: 2, Role: userModel.RoleManager, CompanyID: 1}
		employee = &userModel.User{ID: 3, Role: userModel.RoleEmployee, CompanyID: 1, ManagerID: &manager.ID}
		mockRepo.users[manager.ID] = manager
		mockRepo.users[employee.ID] = employee
	})

	It("should build a pending first step for the resolved approver", func() {
		step, err := service.InitialStep(employee)

		Expect(err).NotTo(HaveOccurred())
		Expect(step).NotTo(BeNil())
		Expect(step.StepNumber).To(Equal(1))
		Expect(step.ApproverUserID).To(Equal(manager.ID))
		Expect(step.Status).To(Equal(approvalModel.StepStatusPending))
		Expect(step.ExpenseID).To(BeZero())
	})

	It("should return nil when no approver can be resolved", func() {
		lonely := &userModel.User{ID: 9, Role: userModel.RoleEmployee, CompanyID: 7}
		mockRepo.users[lonely.ID] = lonely

		step, err := service.InitialStep(lonely)

		Expect(err).NotTo(HaveOccurred())
		Expect(step).To(BeNil())
	})
})
