package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"sqlmentor/internal/dto"
	"sqlmentor/internal/service"
)

type ChallengeController struct {
	challengeService service.ChallengeService
}

func NewChallengeController(challengeService service.ChallengeService) *ChallengeController {
	return &ChallengeController{challengeService: challengeService}
}

// GetActiveChallenge godoc
// @Summary Show the currently open daily challenge
// @Tags Challenge
// @Produce json
// @Success 200 {object} dto.ChallengeView "Open challenge"
// @Failure 404 {object} dto.ErrorResponse "No challenge is open"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable"
// @Router /challenge [get]
func (c *ChallengeController) GetActiveChallenge(ctx *gin.Context) {
	resp, err := c.challengeService.Active(ctx.Request.Context())
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SubmitChallengeAnswer godoc
// @Summary Submit an answer to the open challenge
// @Description Stores the answer ungraded; grading happens when the challenge window closes. One submission per user per challenge, first write wins.
// @Tags Challenge
// @Accept json
// @Produce json
// @Param submission body dto.ChallengeSubmitRequest true "Answer payload"
// @Success 202 {object} dto.ChallengeSubmitResponse "Answer accepted"
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "No challenge is open"
// @Failure 409 {object} dto.ErrorResponse "User already submitted"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable"
// @Router /challenge/submit [post]
func (c *ChallengeController) SubmitChallengeAnswer(ctx *gin.Context) {
	var req dto.ChallengeSubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("SubmitChallengeAnswer: failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.challengeService.Submit(ctx.Request.Context(), req.UserID, req.Username, req.Answer)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusAccepted, resp)
}
