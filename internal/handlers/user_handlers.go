package handlers

import (
	"net/http"

	"gym_club_backend/internal/models"
	"gym_club_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(us services.UserService) *UserHandler {
	return &UserHandler{userService: us}
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.Create(req)
	if err != nil {
		respondError(c, err, "CreateUser: error from userService.Create")
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.userService.FindAll()
	if err != nil {
		respondError(c, err, "GetUsers: error from userService.FindAll")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetUserByID(c *gin.Context) {
	user, err := h.userService.FindOne(principal(c), c.Param("id"))
	if err != nil {
		respondError(c, err, "GetUserByID: error from userService.FindOne")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req services.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.Update(principal(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "UpdateUser: error from userService.Update")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.Remove(c.Param("id")); err != nil {
		respondError(c, err, "DeleteUser: error from userService.Remove")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Usuario eliminado"})
}
