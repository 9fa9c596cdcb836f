package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"sqlmentor/internal/dto"
	"sqlmentor/internal/gateway"
	"sqlmentor/internal/service"
)

type PracticeController struct {
	sessionService service.SessionService
}

func NewPracticeController(sessionService service.SessionService) *PracticeController {
	return &PracticeController{sessionService: sessionService}
}

// IssueQuestion godoc
// @Summary Issue a practice question
// @Description Assigns a random unanswered question to the user and starts their session timer. Optional filters: difficulty, topic, company.
// @Tags Practice
// @Accept json
// @Produce json
// @Param user_id query int true "User ID"
// @Param username query string false "Username, stored on first sight"
// @Param difficulty query string false "easy | medium | hard"
// @Param topic query string false "Topic filter"
// @Param company query string false "Company filter"
// @Success 200 {object} dto.IssuedQuestionResponse "Question issued"
// @Failure 400 {object} dto.ErrorResponse "Invalid user_id"
// @Failure 404 {object} dto.ErrorResponse "No questions match the filters"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable"
// @Router /practice/issue [post]
func (c *PracticeController) IssueQuestion(ctx *gin.Context) {
	userID, err := strconv.ParseInt(ctx.Query("user_id"), 10, 64)
	if err != nil || userID == 0 {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "user_id is required and must be an integer"})
		return
	}

	filter := gateway.QuestionFilter{
		Difficulty: optionalQuery(ctx, "difficulty"),
		Topic:      optionalQuery(ctx, "topic"),
		Company:    optionalQuery(ctx, "company"),
	}

	resp, err := c.sessionService.Issue(ctx.Request.Context(), userID, ctx.Query("username"), filter)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SubmitAnswer godoc
// @Summary Submit an answer for the active session
// @Description Grades the answer against the reference solution and applies scoring, streak and attempt-budget rules.
// @Tags Practice
// @Accept json
// @Produce json
// @Param submission body dto.SubmitAnswerRequest true "Answer payload"
// @Success 200 {object} dto.SubmitResultResponse "Graded result"
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 404 {object} dto.ErrorResponse "No active session"
// @Failure 409 {object} dto.ErrorResponse "Attempt budget exhausted"
// @Failure 503 {object} dto.ErrorResponse "Storage unavailable"
// @Router /practice/submit [post]
func (c *PracticeController) SubmitAnswer(ctx *gin.Context) {
	var req dto.SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("SubmitAnswer: failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	resp, err := c.sessionService.Submit(ctx.Request.Context(), req.UserID, req.Answer)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// SkipQuestion godoc
// @Summary Skip the active question
// @Description Ends the session without grading or penalty.
// @Tags Practice
// @Produce json
// @Param user_id query int true "User ID"
// @Success 200 {object} dto.SkipResultResponse "Question skipped"
// @Failure 400 {object} dto.ErrorResponse "Invalid user_id"
// @Failure 404 {object} dto.ErrorResponse "No active session"
// @Router /practice/skip [post]
func (c *PracticeController) SkipQuestion(ctx *gin.Context) {
	userID, err := strconv.ParseInt(ctx.Query("user_id"), 10, 64)
	if err != nil || userID == 0 {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "user_id is required and must be an integer"})
		return
	}

	resp, err := c.sessionService.Skip(ctx.Request.Context(), userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

func optionalQuery(ctx *gin.Context, key string) *string {
	if value := ctx.Query(key); value != "" {
		return &value
	}
	return nil
}
