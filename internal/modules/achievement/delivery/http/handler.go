package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"naffles.com/pointsbackend/internal/model"
	"naffles.com/pointsbackend/internal/modules/achievement/dto"
	achievementService "naffles.com/pointsbackend/internal/modules/achievement/service"
	"naffles.com/pointsbackend/pkg/response"
)

type AchievementHandler struct {
	service achievementService.Service
}

func NewAchievementHandler(service achievementService.Service) *AchievementHandler {
	return &AchievementHandler{service: service}
}

func (h *AchievementHandler) List(c *gin.Context) {
	achievements, err := h.service.List(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": achievements})
}

func (h *AchievementHandler) ListUserProgress(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	progress, err := h.service.ListUserProgress(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": progress})
}

// Admin endpoints

func (h *AchievementHandler) Create(c *gin.Context) {
	var req dto.CreateAchievementInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rewardMultiplier := req.RewardMultiplier
	if rewardMultiplier == 0 {
		rewardMultiplier = 1
	}

	achievement := &model.Achievement{
		Name:             req.Name,
		Description:      req.Description,
		Category:         req.Category,
		Type:             req.Type,
		RequirementKey:   req.RequirementKey,
		Threshold:        req.Threshold,
		Timeframe:        req.Timeframe,
		RewardPoints:     req.RewardPoints,
		RewardMultiplier: rewardMultiplier,
		IsRepeatable:     req.IsRepeatable,
		IsActive:         true,
	}

	if err := h.service.Create(c.Request.Context(), achievement); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": achievement})
}

func (h *AchievementHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid achievement id"})
		return
	}

	var req dto.UpdateAchievementInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	achievement, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if req.Description != nil {
		achievement.Description = *req.Description
	}
	if req.Threshold != nil {
		achievement.Threshold = *req.Threshold
	}
	if req.RewardPoints != nil {
		achievement.RewardPoints = *req.RewardPoints
	}
	if req.RewardMultiplier != nil {
		achievement.RewardMultiplier = *req.RewardMultiplier
	}
	if req.IsRepeatable != nil {
		achievement.IsRepeatable = *req.IsRepeatable
	}
	if req.IsActive != nil {
		achievement.IsActive = *req.IsActive
	}

	if err := h.service.Update(c.Request.Context(), achievement); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": achievement})
}

func (h *AchievementHandler) UploadBadge(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid achievement id"})
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

	achievement, err := h.service.UploadBadge(c.Request.Context(), id, src, file.Filename)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": achievement})
}
