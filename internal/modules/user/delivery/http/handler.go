package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"naffles.com/pointsbackend/internal/modules/user/dto"
	userService "naffles.com/pointsbackend/internal/modules/user/service"
	"naffles.com/pointsbackend/pkg/response"
	"naffles.com/pointsbackend/pkg/validator"
)

type AuthHandler struct {
	service userService.AuthService
}

func NewAuthHandler(service userService.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	resp, err := h.service.Login(c.Request.Context(), input)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
