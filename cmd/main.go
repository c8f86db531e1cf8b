package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KarlYu130/DeepSite/internal/completion"
	"github.com/KarlYu130/DeepSite/internal/config"
	"github.com/KarlYu130/DeepSite/internal/handler"
	"github.com/KarlYu130/DeepSite/internal/limiter"
	"github.com/KarlYu130/DeepSite/internal/service"
	"github.com/KarlYu130/DeepSite/internal/spaces"
	"github.com/KarlYu130/DeepSite/internal/utils"
	"github.com/KarlYu130/DeepSite/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.File); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// 初始化服务。补全客户端不设整体超时，流时长由每个请求的 context 控制
	completionClient := completion.NewOpenAIClient(cfg.Completion, utils.NewHTTPClient(0))
	generateService := service.NewGenerateService(completionClient)
	publishService := service.NewPublishService(spaces.NewClient(cfg.Hub))

	var lim *limiter.Limiter
	if cfg.RateLimit.Enabled {
		lim = limiter.NewLimiter(cfg.RateLimit.MaxConcurrent, cfg.RateLimit.IdleTTL, cfg.RateLimit.CleanupInterval)
	}

	// 初始化处理器
	generateHandler := handler.NewGenerateHandler(generateService, lim, cfg.Completion.StreamTimeout)
	publishHandler := handler.NewPublishHandler(publishService)

	// 创建路由
	router := setupRouter(cfg, generateHandler, publishHandler)

	// 创建HTTP服务器
	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	// 启动服务器
	go func() {
		logger.Infof("服务器启动在端口 %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("服务器启动失败: %v", err)
		}
	}()

	// 等待信号优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("服务器正在关闭...")
	if err := server.Close(); err != nil {
		logger.Errorf("服务器关闭失败: %v", err)
	}
	logger.Info("服务器已关闭")
}

func setupRouter(cfg *config.Config, generateHandler *handler.GenerateHandler, publishHandler *handler.PublishHandler) *gin.Engine {
	// 设置gin模式
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CORS配置
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           time.Duration(cfg.CORS.MaxAge) * time.Second,
	}
	router.Use(cors.New(corsConfig))

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})

	// API路由
	api := router.Group("/api")
	{
		api.POST("/ask-ai", generateHandler.AskAI)
		api.POST("/deploy", publishHandler.Deploy)
	}

	return router
}
