package approval

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RuleTypePercentage = "percentage"
	RuleTypeSpecific   = "specific"
	RuleTypeHybrid     = "hybrid"
)

const (
	StepStatusPending  = "pending"
	StepStatusApproved = "approved"
	StepStatusRejected = "rejected"
)

// ApprovalRule configures how the approver for a new expense is chosen.
// At most one rule exists per company; absence is a valid state and falls
// back to the default manager-then-admin resolution.
type ApprovalRule struct {
	ID             int64            `json:"id" gorm:"primaryKey"`
	CompanyID      int64            `json:"company_id" gorm:"column:company_id;uniqueIndex;not null"`
	RuleType       string           `json:"rule_type" gorm:"column:rule_type;not null"`
	Percentage     *decimal.Decimal `json:"percentage,omitempty" gorm:"type:numeric(5,2)"`
	SpecificUserID *int64           `json:"specific_user_id,omitempty" gorm:"column:specific_user_id"`
	CreatedAt      time.Time        `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt      time.Time        `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (ApprovalRule) TableName() string {
	return "approval_rules"
}

func ValidRuleType(ruleType string) bool {
	switch ruleType {
	case RuleTypePercentage, RuleTypeSpecific, RuleTypeHybrid:
		return true
	}
	return false
}

// ApprovalStep is one approver's decision record for an expense.
// (expense_id, step_number) is unique; current resolution only ever
// creates step 1, the sequence exists for future chaining.
type ApprovalStep struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	ExpenseID      int64     `json:"expense_id" gorm:"column:expense_id;not null;uniqueIndex:idx_expense_step,priority:1"`
	StepNumber     int       `json:"step_number" gorm:"column:step_number;not null;uniqueIndex:idx_expense_step,priority:2"`
	ApproverUserID int64     `json:"approver_user_id" gorm:"column:approver_user_id;not null"`
	Status         string    `json:"status" gorm:"not null;default:pending"`
	Comments       string    `json:"comments"`
	CreatedAt      time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (ApprovalStep) TableName() string {
	return "approval_steps"
}

func (s *ApprovalStep) IsPending() bool {
	return s.Status == StepStatusPending
}
