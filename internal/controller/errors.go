package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"sqlmentor/internal/dto"
	"sqlmentor/internal/service"
)

// respondServiceError maps service errors onto HTTP statuses. Expected
// user-facing outcomes get 4xx with their own message; everything else is a
// masked 503.
func respondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAttemptsExhausted),
		errors.Is(err, service.ErrAlreadySubmitted):
		ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: err.Error()})
	case service.IsUserError(err):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: err.Error()})
	case errors.Is(err, service.ErrServiceUnavailable):
		ctx.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Message: "service temporarily unavailable"})
	default:
		log.Error().Err(err).Str("path", ctx.FullPath()).Msg("Unhandled service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "internal server error"})
	}
}
