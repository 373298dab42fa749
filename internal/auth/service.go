package auth

import (
	"log/slog"

	companyModel "github.com/adiwardana/expense-approval/internal/core/datamodel/company"
	userModel "github.com/adiwardana/expense-approval/internal/core/datamodel/user"
)

// Repository defines the data access the auth service needs.
type Repository interface {
	GetUserByEmail(email string) (*userModel.User, error)
	GetUserByID(id int64) (*userModel.User, error)
	// CreateCompanyWithAdmin persists the company and its first admin user
	// atomically.
	CreateCompanyWithAdmin(company *companyModel.Company, admin *userModel.User) error
}

type Service struct {
	repo           Repository
	tokenGenerator TokenGeneratorAPI
	bcryptCost     int
	logger         *slog.Logger
}

func NewService(repo Repository, tokenGen TokenGeneratorAPI, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// Signup creates a company and its first user. The first user is always an
// admin so the company starts with a valid default approver.
func (s *Service) Signup(dto SignupDTO) (*SignupResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetUserByEmail(dto.Email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, err
	}

	company := &companyModel.Company{
		Name:     dto.CompanyName,
		Currency: dto.Currency,
	}
	admin := &userModel.User{
		Email:        dto.Email,
		Name:         dto.Name,
		PasswordHash: hash,
		Role:         userModel.RoleAdmin,
		IsActive:     true,
	}

	if err := s.repo.CreateCompanyWithAdmin(company, admin); err != nil {
		s.logger.Error("failed to create company with admin", "error", err, "company", dto.CompanyName)
		return nil, err
	}

	tokens, err := s.issueTokens(admin)
	if err != nil {
		return nil, err
	}

	s.logger.Info("company signed up",
		"company_id", company.ID,
		"currency", company.Currency,
		"admin_user_id", admin.ID)

	return &SignupResponse{Tokens: tokens, User: admin}, nil
}

// Authenticate validates credentials and returns tokens plus the user.
func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, *userModel.User, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, nil, err
	}

	user, err := s.repo.GetUserByEmail(dto.Email)
	if err != nil {
		return AuthTokens{}, nil, ErrInvalidCredentials
	}

	if err := VerifyPassword(user.PasswordHash, dto.Password); err != nil {
		return AuthTokens{}, nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return AuthTokens{}, nil, ErrUserInactive
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return AuthTokens{}, nil, err
	}

	return tokens, user, nil
}

// RefreshTokens validates refresh token and returns new tokens
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	user, err := s.repo.GetUserByID(claims.UserID)
	if err != nil {
		return AuthTokens{}, ErrInvalidToken
	}
	if !user.IsActive {
		return AuthTokens{}, ErrUserInactive
	}

	return s.issueTokens(user)
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

func (s *Service) GetUserByID(userID int64) (*userModel.User, error) {
	return s.repo.GetUserByID(userID)
}

func (s *Service) issueTokens(user *userModel.User) (AuthTokens, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return AuthTokens{}, err
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
