package approval

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/adiwardana/expense-approval/internal/auth"
	approvalModel "github.com/adiwardana/expense-approval/internal/core/datamodel/approval"
	expenseModel "github.com/adiwardana/expense-approval/internal/core/datamodel/expense"
	userModel "github.com/adiwardana/expense-approval/internal/core/datamodel/user"
	"github.com/adiwardana/expense-approval/internal/transport"
	"github.com/adiwardana/expense-approval/pkg/logger"
)

type ServiceAPI interface {
	Decide(expenseID int64, actor *userModel.User, decision, comments string) error
	PendingExpenses(actor *userModel.User, limit, offset int) ([]*expenseModel.Expense, error)
	StepsForExpense(expenseID int64) ([]*approvalModel.ApprovalStep, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Service:     service,
	}
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, DecisionApprove)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, DecisionReject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, decision string) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	expenseIDStr := chi.URLParam(r, "id")
	expenseID, err := strconv.ParseInt(expenseIDStr, 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid expense ID")
		return
	}

	// Comments are optional; an empty body is fine.
	var dto DecisionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil && err != io.EOF {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.Decide(expenseID, user, decision, dto.Comments); err != nil {
		h.Logger.Error("decision failed",
			"error", err,
			"expense_id", expenseID,
			"decision", decision,
			"actor_user_id", user.ID)

		switch err {
		case ErrExpenseNotFound:
			h.WriteError(w, http.StatusNotFound, "expense not found")
		case ErrUnauthorized:
			h.WriteError(w, http.StatusForbidden, "you are not authorized to decide on this expense")
		case ErrInvalidState:
			h.WriteError(w, http.StatusConflict, "expense is no longer pending")
		case ErrInvalidDecision:
			h.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			h.WriteError(w, http.StatusInternalServerError, "failed to record decision")
		}
		return
	}

	status := expenseModel.StatusApproved
	if decision == DecisionReject {
		status = expenseModel.StatusRejected
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 20
	offset := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	expenses, err := h.Service.PendingExpenses(user, limit, offset)
	if err != nil {
		if err == ErrUnauthorized {
			h.WriteError(w, http.StatusForbidden, "manager or admin access required")
			return
		}
		h.Logger.Error("failed to list pending expenses", "error", err, "user_id", user.ID)
		h.WriteError(w, http.StatusInternalServerError, "failed to list pending expenses")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"expenses": expenses,
		"limit":    limit,
		"offset":   offset,
	})
}
