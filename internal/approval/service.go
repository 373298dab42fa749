package approval

import (
	"log/slog"
	"time"

	approvalModel "github.com/adiwardana/expense-approval/internal/core/datamodel/approval"
	expenseModel "github.com/adiwardana/expense-approval/internal/core/datamodel/expense"
	userModel "github.com/adiwardana/expense-approval/internal/core/datamodel/user"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Decide drives a pending expense to approved or rejected on behalf of
// actor. The whole read-decide-write sequence runs in one transaction with
// the expense row locked, so concurrent decisions on the same expense
// serialize instead of double-transitioning a step.
func (s *Service) Decide(expenseID int64, actor *userModel.User, decision, comments string) error {
	if decision != DecisionApprove && decision != DecisionReject {
		return ErrInvalidDecision
	}

	err := s.repo.Transact(func(tx Repository) error {
		exp, err := tx.GetExpenseForUpdate(expenseID)
		if err != nil {
			return ErrExpenseNotFound
		}

		owner, err := tx.GetUserByID(exp.UserID)
		if err != nil {
			return ErrExpenseNotFound
		}

		if !actor.CanDecide() || actor.CompanyID != owner.CompanyID {
			return ErrUnauthorized
		}

		if exp.IsTerminal() {
			return ErrInvalidState
		}

		stepStatus := approvalModel.StepStatusApproved
		if decision == DecisionReject {
			stepStatus = approvalModel.StepStatusRejected
		}

		step, err := tx.FirstPendingStep(expenseID)
		if err != nil {
			return err
		}

		if step == nil {
			// No pending step should exist only when resolution found no
			// approver at submission time. Self-heal by recording the
			// decision as a fresh step instead of failing.
			next, err := tx.NextStepNumber(expenseID)
			if err != nil {
				return err
			}
			step = &approvalModel.ApprovalStep{
				ExpenseID:      expenseID,
				StepNumber:     next,
				ApproverUserID: actor.ID,
				Status:         stepStatus,
				Comments:       comments,
			}
			if err := tx.CreateStep(step); err != nil {
				return err
			}
			s.logger.Warn("no pending step found, recorded decision as new step",
				"expense_id", expenseID,
				"step_number", step.StepNumber,
				"actor_user_id", actor.ID)
		} else {
			step.Status = stepStatus
			step.Comments = comments
			step.UpdatedAt = time.Now()
			if err := tx.UpdateStep(step); err != nil {
				return err
			}
		}

		if decision == DecisionReject {
			// First rejection wins regardless of other steps.
			return tx.UpdateExpenseStatus(expenseID, expenseModel.StatusRejected)
		}

		remaining, err := tx.CountPendingSteps(expenseID)
		if err != nil {
			return err
		}
		if remaining == 0 {
			return tx.UpdateExpenseStatus(expenseID, expenseModel.StatusApproved)
		}
		return nil
	})

	if err != nil {
		return err
	}

	s.logger.Info("expense decision recorded",
		"expense_id", expenseID,
		"decision", decision,
		"actor_user_id", actor.ID)
	return nil
}

// PendingExpenses lists the pending expenses of the actor's company for
// the approval queue. Admins and managers only.
func (s *Service) PendingExpenses(actor *userModel.User, limit, offset int) ([]*expenseModel.Expense, error) {
	if !actor.CanDecide() {
		return nil, ErrUnauthorized
	}
	return s.repo.PendingExpensesForCompany(actor.CompanyID, limit, offset)
}

// StepsForExpense returns the approval history of one expense.
func (s *Service) StepsForExpense(expenseID int64) ([]*approvalModel.ApprovalStep, error) {
	return s.repo.StepsForExpense(expenseID)
}
