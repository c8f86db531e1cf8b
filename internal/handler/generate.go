package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/KarlYu130/DeepSite/internal/limiter"
	"github.com/KarlYu130/DeepSite/internal/model"
	"github.com/KarlYu130/DeepSite/internal/service"
	"github.com/KarlYu130/DeepSite/internal/utils"
	"github.com/KarlYu130/DeepSite/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GenerateHandler 处理页面生成请求
type GenerateHandler struct {
	generateService *service.GenerateService
	limiter         *limiter.Limiter
	streamTimeout   time.Duration
}

func NewGenerateHandler(generateService *service.GenerateService, lim *limiter.Limiter, streamTimeout time.Duration) *GenerateHandler {
	return &GenerateHandler{
		generateService: generateService,
		limiter:         lim,
		streamTimeout:   streamTimeout,
	}
}

// AskAI POST /api/ask-ai：把补全流以纯文本分块响应转发给浏览器。
// 建流成功前的失败都以 JSON 返回；响应头一旦提交，失败只能断开连接，
// 客户端通过结尾是否出现 </html> 判断内容是否完整。
func (h *GenerateHandler) AskAI(c *gin.Context) {
	requestID := uuid.New().String()
	c.Header("X-Request-Id", requestID)
	log := logger.WithField("request_id", requestID)

	var req model.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewAPIError("invalid request body"))
		return
	}

	if h.limiter != nil {
		clientIP := c.ClientIP()
		if err := h.limiter.Acquire(clientIP); err != nil {
			log.Warnf("Rate limit exceeded for %s", clientIP)
			c.JSON(http.StatusTooManyRequests, model.NewAPIError("too many requests in progress, please wait for the current generation to finish"))
			return
		}
		defer h.limiter.Release(clientIP)
	}

	ctx := c.Request.Context()
	if h.streamTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.streamTimeout)
		defer cancel()
	}

	stream, err := h.generateService.OpenStream(ctx, req)
	if err != nil {
		if errors.Is(err, model.ErrEmptyPrompt) {
			c.JSON(http.StatusBadRequest, model.NewAPIError(model.ErrEmptyPrompt.Error()))
			return
		}
		log.Errorf("Failed to open completion stream: %v", err)
		c.JSON(http.StatusInternalServerError, model.NewAPIError(err.Error()))
		return
	}

	log.Infof("开始生成: model=%s prompt_len=%d iterate=%v", req.Provider, len(req.Prompt), req.HTML != "")

	writer := utils.NewStreamWriter(c.Writer)

	result, err := service.Pump(ctx, stream, writer, service.MarkerStop(service.DocumentEndMarker))
	if err != nil {
		// 响应头已提交，这里只记录日志后断开，不再写任何结构化错误
		log.Errorf("Stream interrupted after %d bytes: %v", writer.Written(), err)
		return
	}

	log.Infof("生成结束: state=%s bytes=%d", result.State, result.Written)
}
