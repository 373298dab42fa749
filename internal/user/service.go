package user

import (
	"log/slog"

	"github.com/adiwardana/expense-approval/internal/auth"
	userModel "github.com/adiwardana/expense-approval/internal/core/datamodel/user"
)

type Repository interface {
	GetByID(id int64) (*userModel.User, error)
	ListByCompany(companyID int64, limit, offset int) ([]*userModel.User, error)
	Create(u *userModel.User) error
	Update(u *userModel.User) error
	// Delete removes the user; the store cascades to their expenses.
	Delete(id int64) error
}

type Service struct {
	repo       Repository
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// ListUsers returns the actor's company roster. Admin only, matching the
// user-management surface.
func (s *Service) ListUsers(actor *userModel.User, limit, offset int) ([]*userModel.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	return s.repo.ListByCompany(actor.CompanyID, limit, offset)
}

func (s *Service) GetUser(actor *userModel.User, id int64) (*userModel.User, error) {
	if !actor.IsAdmin() && actor.ID != id {
		return nil, ErrAdminOnly
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if u.CompanyID != actor.CompanyID {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// CreateUser adds a user to the actor's company. New users always land in
// the actor's company regardless of payload.
func (s *Service) CreateUser(actor *userModel.User, dto CreateUserDTO) (*userModel.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if dto.ManagerID != nil {
		if err := s.checkManager(actor.CompanyID, *dto.ManagerID); err != nil {
			return nil, err
		}
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, err
	}

	u := &userModel.User{
		Email:        dto.Email,
		Name:         dto.Name,
		PasswordHash: hash,
		Role:         dto.Role,
		CompanyID:    actor.CompanyID,
		ManagerID:    dto.ManagerID,
		IsActive:     true,
	}

	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, err
	}

	s.logger.Info("user created", "user_id", u.ID, "role", u.Role, "company_id", u.CompanyID)
	return u, nil
}

func (s *Service) UpdateUser(actor *userModel.User, id int64, dto UpdateUserDTO) (*userModel.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.GetUser(actor, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		u.Name = *dto.Name
	}
	if dto.Role != nil {
		u.Role = *dto.Role
	}
	if dto.ManagerID != nil {
		if err := s.checkManager(actor.CompanyID, *dto.ManagerID); err != nil {
			return nil, err
		}
		u.ManagerID = dto.ManagerID
	}
	if dto.IsActive != nil {
		u.IsActive = *dto.IsActive
	}
	if dto.Password != nil {
		hash, err := auth.HashPassword(*dto.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}

	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, err
	}
	return u, nil
}

func (s *Service) DeleteUser(actor *userModel.User, id int64) error {
	if !actor.IsAdmin() {
		return ErrAdminOnly
	}
	if _, err := s.GetUser(actor, id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

// checkManager verifies the manager reference points at a user in the
// same company. Acyclicity beyond self-reference is not enforced; the
// resolver only ever follows one hop.
func (s *Service) checkManager(companyID, managerID int64) error {
	manager, err := s.repo.GetByID(managerID)
	if err != nil || manager.CompanyID != companyID {
		return ErrUserNotFound
	}
	return nil
}
