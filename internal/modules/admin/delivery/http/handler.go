package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"naffles.com/pointsbackend/internal/modules/admin/dto"
	adminService "naffles.com/pointsbackend/internal/modules/admin/service"
	"naffles.com/pointsbackend/pkg/response"
)

type AdminHandler struct {
	service adminService.Service
}

func NewAdminHandler(service adminService.Service) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) AwardPoints(c *gin.Context) {
	adminID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.AdminAdjustInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.AwardPoints(c.Request.Context(), adminID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (h *AdminHandler) DeductPoints(c *gin.Context) {
	adminID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.AdminAdjustInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.DeductPoints(c.Request.Context(), adminID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (h *AdminHandler) ReverseTransaction(c *gin.Context) {
	adminID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}

	tx, err := h.service.ReverseTransaction(c.Request.Context(), adminID, txID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tx})
}

// BulkCredit accepts a CSV upload with columns Type, Type Value and
// Points Value and credits each resolved user.
func (h *AdminHandler) BulkCredit(c *gin.Context) {
	adminID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}
	defer src.Close()

	report, err := h.service.BulkCreditCSV(c.Request.Context(), adminID, src)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

// Partner token management

func (h *AdminHandler) CreatePartnerToken(c *gin.Context) {
	var req dto.CreatePartnerTokenInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.service.CreatePartnerToken(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": token})
}

func (h *AdminHandler) UpdatePartnerToken(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token id"})
		return
	}

	var req dto.UpdatePartnerTokenInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.service.UpdatePartnerToken(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": token})
}

func (h *AdminHandler) ListPartnerTokens(c *gin.Context) {
	tokens, err := h.service.ListPartnerTokens(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tokens})
}

func (h *AdminHandler) DeletePartnerToken(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token id"})
		return
	}

	if err := h.service.DeletePartnerToken(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
