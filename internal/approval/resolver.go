package approval

import (
	approvalModel "github.com/adiwardana/expense-approval/internal/core/datamodel/approval"
	userModel "github.com/adiwardana/expense-approval/internal/core/datamodel/user"
)

// ResolveApprover determines the single responsible approver for a new
// expense submitted by owner. Precedence: a configured specific approver
// wins; everything else, including a missing rule, takes the default
// manager-then-admin path. Returns nil when nobody can be resolved.
func (s *Service) ResolveApprover(owner *userModel.User) (*userModel.User, error) {
	rule, err := s.repo.GetApprovalRule(owner.CompanyID)
	if err != nil {
		return nil, err
	}

	if rule != nil && rule.RuleType == approvalModel.RuleTypeSpecific && rule.SpecificUserID != nil {
		approver, err := s.repo.GetUserByID(*rule.SpecificUserID)
		if err != nil {
			s.logger.Warn("configured specific approver not found, using default resolution",
				"company_id", owner.CompanyID,
				"specific_user_id", *rule.SpecificUserID)
			return s.defaultApprover(owner)
		}
		return approver, nil
	}

	// percentage rules and rule-absent companies share the default path.
	// hybrid lands here too: its percentage threshold is stored but not
	// evaluated anywhere yet, so it behaves exactly like percentage.
	return s.defaultApprover(owner)
}

func (s *Service) defaultApprover(owner *userModel.User) (*userModel.User, error) {
	if owner.HasManager() {
		manager, err := s.repo.GetUserByID(*owner.ManagerID)
		if err == nil {
			return manager, nil
		}
		s.logger.Warn("manager reference is dangling, falling back to company admin",
			"owner_user_id", owner.ID,
			"manager_id", *owner.ManagerID)
	}

	admin, err := s.repo.FirstAdminForCompany(owner.CompanyID)
	if err != nil {
		return nil, err
	}
	return admin, nil
}

// InitialStep builds the pending first approval step for a new expense,
// leaving ExpenseID for the caller to fill in when persisting. A nil step
// means no approver could be resolved; the caller must surface that.
func (s *Service) InitialStep(owner *userModel.User) (*approvalModel.ApprovalStep, error) {
	approver, err := s.ResolveApprover(owner)
	if err != nil {
		return nil, err
	}

	if approver == nil {
		s.logger.Warn("no approver resolved, expense will stay pending without a step",
			"owner_user_id", owner.ID,
			"company_id", owner.CompanyID)
		return nil, nil
	}

	return &approvalModel.ApprovalStep{
		StepNumber:     1,
		ApproverUserID: approver.ID,
		Status:         approvalModel.StepStatusPending,
	}, nil
}
