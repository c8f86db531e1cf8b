package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/KarlYu130/DeepSite/internal/model"
	"github.com/KarlYu130/DeepSite/internal/service"
	"github.com/KarlYu130/DeepSite/pkg/logger"

	"github.com/gin-gonic/gin"
)

// hubTokenCookie 前端登录后写入的 token cookie 名
const hubTokenCookie = "hf_token"

// PublishHandler 处理站点发布请求
type PublishHandler struct {
	publishService *service.PublishService
}

func NewPublishHandler(publishService *service.PublishService) *PublishHandler {
	return &PublishHandler{publishService: publishService}
}

// Deploy POST /api/deploy：把页面发布为托管静态站点。
// 校验类失败返回 400，下游失败返回 500，成功返回站点命名空间。
func (h *PublishHandler) Deploy(c *gin.Context) {
	var req model.DeployRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewAPIError("invalid request body"))
		return
	}

	token := extractToken(c)

	path, err := h.publishService.Publish(c.Request.Context(), token, req)
	if err != nil {
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, model.NewAPIError(err.Error()))
			return
		}
		logger.Errorf("Failed to publish site: %v", err)
		c.JSON(http.StatusInternalServerError, model.NewAPIError(err.Error()))
		return
	}

	c.JSON(http.StatusOK, model.DeployResponse{OK: true, Path: path})
}

// extractToken 先看 Authorization 头，再退回 cookie
func extractToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}

	if token, err := c.Cookie(hubTokenCookie); err == nil {
		return token
	}

	return ""
}

func isValidationError(err error) bool {
	return errors.Is(err, model.ErrMissingHTML) ||
		errors.Is(err, model.ErrMissingTarget) ||
		errors.Is(err, service.ErrMissingToken)
}
