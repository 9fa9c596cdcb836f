package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sqlmentor/internal/dto"
	"sqlmentor/internal/service"
)

type StatsController struct {
	statsService service.StatsService
}

func NewStatsController(statsService service.StatsService) *StatsController {
	return &StatsController{statsService: statsService}
}

// GetScores godoc
// @Summary A user's total points, weekly points and streak
// @Tags Stats
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} dto.ScoresResponse "Score summary"
// @Failure 400 {object} dto.ErrorResponse "Invalid user_id"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable"
// @Router /stats/scores/{user_id} [get]
func (c *StatsController) GetScores(ctx *gin.Context) {
	userID, err := strconv.ParseInt(ctx.Param("user_id"), 10, 64)
	if err != nil || userID == 0 {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "user_id must be an integer"})
		return
	}

	resp, err := c.statsService.Scores(ctx.Request.Context(), userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetTopTotals godoc
// @Summary All-time top 10 by total points
// @Tags Stats
// @Produce json
// @Success 200 {array} dto.LeaderboardRow "Leaderboard"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable"
// @Router /stats/top10 [get]
func (c *StatsController) GetTopTotals(ctx *gin.Context) {
	rows, err := c.statsService.TopTotals(ctx.Request.Context())
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, rows)
}

// GetWeeklyHeroes godoc
// @Summary This week's most active users
// @Tags Stats
// @Produce json
// @Success 200 {array} dto.WeeklyHeroRow "Weekly heroes"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable"
// @Router /stats/weekly-heroes [get]
func (c *StatsController) GetWeeklyHeroes(ctx *gin.Context) {
	rows, err := c.statsService.WeeklyHeroes(ctx.Request.Context())
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, rows)
}
