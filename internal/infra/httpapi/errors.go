package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"toolcatalog/internal/domain"
	"toolcatalog/internal/infra/telemetry"
)

type errorBody struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

func statusFromCode(code domain.ErrorCode) int {
	switch code {
	case domain.CodeInvalidArgument:
		return http.StatusBadRequest
	case domain.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, logger *zap.Logger, err error) {
	code, ok := domain.CodeFrom(err)
	if !ok {
		code = domain.CodeInternal
	}
	status := statusFromCode(code)

	detail := domain.UserMessage(err)
	if status == http.StatusInternalServerError {
		telemetry.LoggerWithRequest(c.Request.Context(), logger).Error("request error",
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		if !ok {
			detail = "Internal server error"
		}
	}

	c.AbortWithStatusJSON(status, errorBody{Detail: detail, Code: string(code)})
}
