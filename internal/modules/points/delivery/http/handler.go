package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"naffles.com/pointsbackend/internal/modules/points/dto"
	pointsService "naffles.com/pointsbackend/internal/modules/points/service"
	"naffles.com/pointsbackend/pkg/response"
)

type PointsHandler struct {
	service pointsService.Service
}

func NewPointsHandler(service pointsService.Service) *PointsHandler {
	return &PointsHandler{service: service}
}

// Award credits the calling user for a named activity. Partner services call
// this on behalf of the user after a game settles or a raffle ticket sells.
func (h *PointsHandler) Award(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.AwardInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Award(c.Request.Context(), userID, req.Activity, req.Meta)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (h *PointsHandler) Deduct(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.DeductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Deduct(c.Request.Context(), userID, req.Amount, req.Reason)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (h *PointsHandler) GetInfo(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	info, err := h.service.GetUserPointsInfo(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": info})
}

func (h *PointsHandler) ListTransactions(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	txs, err := h.service.ListTransactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": txs})
}
