package services

import (
	"errors"
	"fmt"
	"strings"

	"gym_club_backend/internal/models"
	"gym_club_backend/internal/repositories"
	"gym_club_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// passwordCost is the bcrypt work factor for stored hashes.
const passwordCost = 10

// --- Data Transfer Objects (DTOs) ---

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Email           string  `json:"email" binding:"required,email"`
	Password        string  `json:"password" binding:"required,min=6"`
	ConfirmPassword string  `json:"confirmPassword" binding:"required"`
	FirstName       string  `json:"first_name" binding:"required"`
	LastName        string  `json:"last_name" binding:"required"`
	Phone           *string `json:"phone"`
}

type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type AuthService interface {
	Register(req RegisterRequest) (*AuthResponse, error)
	Login(req LoginRequest) (*AuthResponse, error)
	// ValidateToken verifies the signature and that the user still exists.
	ValidateToken(token string) (*models.Principal, error)
	Me(principal *models.Principal) (*models.User, error)
}

type authService struct {
	users  repositories.UserRepository
	tokens *utils.TokenManager
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(users repositories.UserRepository, tokens *utils.TokenManager) AuthService {
	return &authService{users: users, tokens: tokens}
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (s *authService) issue(user *models.User) (*AuthResponse, error) {
	token, err := s.tokens.Generate(user.ID, user.Email, user.Role, user.IsAdmin)
	if err != nil {
		return nil, upstream(err, "No se pudo generar el token")
	}
	return &AuthResponse{User: user, Token: token}, nil
}

// Register handles the business logic for user registration.
func (s *authService) Register(req RegisterRequest) (*AuthResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	_, err := s.users.FindByEmail(req.Email)
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, upstream(err, "Error al verificar el email")
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		return nil, upstream(err, "Error al registrar el usuario")
	}

	user := &models.User{
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hashed,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        req.Phone,
		IsAdmin:      false,
		Role:         models.RoleUser,
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, upstream(err, "Error al registrar el usuario")
	}
	return s.issue(user)
}

// Login answers unknown email and wrong password with the same error.
func (s *authService) Login(req LoginRequest) (*AuthResponse, error) {
	user, err := s.users.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, upstream(err, "Error al iniciar sesión")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *authService) ValidateToken(token string) (*models.Principal, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.FindByID(claims.Subject)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, upstream(err, "Error al validar el token")
	}
	return &models.Principal{
		UserID:  user.ID,
		Email:   user.Email,
		Role:    user.Role,
		IsAdmin: user.IsAdmin || user.Role == models.RoleAdmin,
	}, nil
}

func (s *authService) Me(principal *models.Principal) (*models.User, error) {
	if principal == nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.FindByID(principal.UserID)
	if err != nil {
		return nil, notFoundOr(err, "Usuario no encontrado", "Error al obtener el perfil")
	}
	return user, nil
}
