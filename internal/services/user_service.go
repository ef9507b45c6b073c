package services

import (
	"errors"
	"strings"

	"gym_club_backend/internal/models"
	"gym_club_backend/internal/repositories"
)

type CreateUserRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=6"`
	FirstName string  `json:"first_name" binding:"required"`
	LastName  string  `json:"last_name" binding:"required"`
	Phone     *string `json:"phone"`
	Role      string  `json:"role" binding:"omitempty,oneof=user admin"`
	IsAdmin   bool    `json:"is_admin"`
}

type UpdateUserRequest struct {
	Email     *string `json:"email" binding:"omitempty,email"`
	Password  *string `json:"password" binding:"omitempty,min=6"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Role      *string `json:"role" binding:"omitempty,oneof=user admin"`
	IsAdmin   *bool   `json:"is_admin"`
}

type UserService interface {
	Create(req CreateUserRequest) (*models.User, error)
	FindAll() ([]models.User, error)
	FindOne(principal *models.Principal, id string) (*models.User, error)
	Update(principal *models.Principal, id string, req UpdateUserRequest) (*models.User, error)
	Remove(id string) error
}

type userService struct {
	users repositories.UserRepository
}

// NewUserService creates a new instance of UserService.
func NewUserService(users repositories.UserRepository) UserService {
	return &userService{users: users}
}

// normalizeRole keeps role and is_admin consistent.
func normalizeRole(user *models.User) {
	if user.Role == models.RoleAdmin || user.IsAdmin {
		user.Role = models.RoleAdmin
		user.IsAdmin = true
		return
	}
	user.Role = models.RoleUser
}

func (s *userService) Create(req CreateUserRequest) (*models.User, error) {
	hashed, err := hashPassword(req.Password)
	if err != nil {
		return nil, upstream(err, "Error al crear el usuario")
	}
	user := &models.User{
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hashed,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        req.Phone,
		Role:         req.Role,
		IsAdmin:      req.IsAdmin,
	}
	normalizeRole(user)

	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, upstream(err, "Error al crear el usuario")
	}
	return user, nil
}

func (s *userService) FindAll() ([]models.User, error) {
	users, err := s.users.FindAll()
	if err != nil {
		return nil, upstream(err, "Error al obtener los usuarios")
	}
	return users, nil
}

func (s *userService) FindOne(principal *models.Principal, id string) (*models.User, error) {
	if !principal.CanAccessUser(id) {
		return nil, ErrAccessDenied
	}
	user, err := s.users.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Usuario no encontrado", "Error al obtener el usuario")
	}
	return user, nil
}

// Update lets users edit their own profile; only admins may change roles.
func (s *userService) Update(principal *models.Principal, id string, req UpdateUserRequest) (*models.User, error) {
	if !principal.CanAccessUser(id) {
		return nil, ErrAccessDenied
	}
	if !principal.IsAdmin && (req.Role != nil || req.IsAdmin != nil) {
		return nil, ErrAccessDenied
	}

	user, err := s.users.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Usuario no encontrado", "Error al obtener el usuario")
	}

	if req.Email != nil {
		user.Email = strings.TrimSpace(*req.Email)
	}
	if req.Password != nil {
		hashed, err := hashPassword(*req.Password)
		if err != nil {
			return nil, upstream(err, "Error al actualizar el usuario")
		}
		user.PasswordHash = hashed
	}
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Role != nil {
		user.Role = *req.Role
		user.IsAdmin = *req.Role == models.RoleAdmin
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
		if !user.IsAdmin {
			user.Role = models.RoleUser
		}
	}
	normalizeRole(user)

	if err := s.users.Update(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, notFoundOr(err, "Usuario no encontrado", "Error al actualizar el usuario")
	}
	return user, nil
}

func (s *userService) Remove(id string) error {
	if err := s.users.Delete(id); err != nil {
		return notFoundOr(err, "Usuario no encontrado", "Error al eliminar el usuario")
	}
	return nil
}
