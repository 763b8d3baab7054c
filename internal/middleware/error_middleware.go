package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kthdsp/teachalloc/internal/app/models/dto"
	"github.com/kthdsp/teachalloc/internal/pkg/apperrors"
	"github.com/kthdsp/teachalloc/internal/pkg/logger"
)

// HandleAPIError maps engine errors onto HTTP responses. Validation is 400,
// missing resources 404, business-rule rejections 409, everything else is an
// infrastructure failure reported as 500. The specific rule violated is
// passed through in the message.
func HandleAPIError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, err.Error())))

	case errors.Is(err, apperrors.ErrResourceNotFound):
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, err.Error())))

	case errors.Is(err, apperrors.ErrActivityAlreadyExists),
		errors.Is(err, apperrors.ErrPlannedActivityExists):
		c.JSON(http.StatusConflict, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, err.Error())))

	case errors.Is(err, apperrors.ErrAllocationRejected):
		c.JSON(http.StatusConflict, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeAllocationRejected, err.Error())))

	default:
		logger.Error().Err(err).Msg("Unhandled error in API request")
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
	}
}
