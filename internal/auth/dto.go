package auth

import (
	"errors"
	"strings"

	"github.com/adiwardana/expense-approval/internal/currency"
	userModel "github.com/adiwardana/expense-approval/internal/core/datamodel/user"
)

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (dto *LoginDTO) Validate() error {
	dto.Email = strings.TrimSpace(strings.ToLower(dto.Email))
	if dto.Email == "" {
		return errors.New("email is required")
	}
	if dto.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

// SignupDTO bootstraps a company together with its first admin user.
type SignupDTO struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	Password    string `json:"password"`
	CompanyName string `json:"company_name"`
	Currency    string `json:"currency"`
}

func (dto *SignupDTO) Validate() error {
	dto.Email = strings.TrimSpace(strings.ToLower(dto.Email))
	dto.Name = strings.TrimSpace(dto.Name)
	dto.CompanyName = strings.TrimSpace(dto.CompanyName)
	dto.Currency = strings.ToUpper(strings.TrimSpace(dto.Currency))

	if dto.Email == "" || !strings.Contains(dto.Email, "@") {
		return errors.New("a valid email is required")
	}
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if len(dto.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if dto.CompanyName == "" {
		return errors.New("company_name is required")
	}
	if dto.Currency == "" {
		dto.Currency = "USD"
	}
	if !currency.ValidCode(dto.Currency) {
		return errors.New("currency must be a 3-letter currency code")
	}
	return nil
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token"`
}

func (dto *RefreshTokenDTO) Validate() error {
	if dto.RefreshToken == "" {
		return errors.New("refresh_token is required")
	}
	return nil
}

type SignupResponse struct {
	Tokens AuthTokens      `json:"tokens"`
	User   *userModel.User `json:"user"`
}
