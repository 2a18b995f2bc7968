package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"naffles.com/pointsbackend/internal/model"
	leaderboardService "naffles.com/pointsbackend/internal/modules/leaderboard/service"
	"naffles.com/pointsbackend/pkg/response"
)

type LeaderboardHandler struct {
	service leaderboardService.Service
}

func NewLeaderboardHandler(service leaderboardService.Service) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

func validCategory(category string) bool {
	switch category {
	case model.CategoryPoints, model.CategoryGaming, model.CategoryRaffles:
		return true
	}
	return false
}

func validPeriod(period string) bool {
	switch period {
	case model.PeriodDaily, model.PeriodWeekly, model.PeriodMonthly, model.PeriodAllTime:
		return true
	}
	return false
}

func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	category := c.DefaultQuery("category", model.CategoryPoints)
	period := c.DefaultQuery("period", model.PeriodAllTime)
	limitStr := c.DefaultQuery("limit", "10")
	limit, _ := strconv.Atoi(limitStr)

	if !validCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
		return
	}
	if !validPeriod(period) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid period"})
		return
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	leaderboard, err := h.service.GetLeaderboard(c.Request.Context(), category, period, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": leaderboard})
}

func (h *LeaderboardHandler) GetMyStanding(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	category := c.DefaultQuery("category", model.CategoryPoints)
	period := c.DefaultQuery("period", model.PeriodAllTime)
	if !validCategory(category) || !validPeriod(period) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category or period"})
		return
	}

	entry, err := h.service.GetUserStanding(c.Request.Context(), userID, category, period)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entry})
}
