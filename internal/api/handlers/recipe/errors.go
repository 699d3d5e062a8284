package recipe

import (
	"context"
	"errors"

	recipeService "recipe-recommender/internal/core/recipe"
	"recipe-recommender/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// toCustomError 將服務層錯誤對應到 API 錯誤
func toCustomError(err error) *common.CustomError {
	var ce *common.CustomError
	switch {
	case errors.As(err, &ce):
		return ce
	case errors.Is(err, recipeService.ErrInvalidLimit):
		return common.ErrInvalidLimit.Wrap(err)
	case common.IsValidationError(err):
		return common.ErrInvalidRequest.Wrap(err)
	case errors.Is(err, recipeService.ErrCatalogUnavailable):
		return common.ErrCatalogUnavailable.Wrap(err)
	case errors.Is(err, context.DeadlineExceeded):
		return common.ErrGatewayTimeout.Wrap(err)
	case errors.Is(err, context.Canceled):
		return common.ErrRequestTimeout.Wrap(err)
	default:
		return common.ErrInternalError.Wrap(err)
	}
}

// respondError 記錄並回傳錯誤
func (h *Handler) respondError(c *gin.Context, requestID, msg string, err error) {
	apiErr := toCustomError(err)

	fields := []zap.Field{
		zap.Error(err),
		zap.String("code", apiErr.Code),
		zap.String("request_id", requestID),
	}
	if apiErr.Status >= 500 {
		common.LogError(msg, fields...)
	} else {
		common.LogWarn(msg, fields...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(apiErr.Status, apiErr.Response(h.debug))
}
