package main

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"dcb/internal/app/config"
	"dcb/internal/app/consumer"
	"dcb/internal/app/modules/mdanalysis"
	"dcb/internal/app/server/handlers/analysis"
	"dcb/internal/app/server/routers"
	"dcb/internal/app/services/svanalysis"
	"dcb/internal/app/services/svcallback"
	"dcb/pkg/infra/mysql"
	"dcb/pkg/infra/redis"
	"dcb/pkg/lmstfy"
	"dcb/pkg/logger"
)

// App 应用依赖集合
type App struct {
	Engine           *gin.Engine
	CallbackConsumer *consumer.CallbackConsumer
}

// InitializeApp 组装应用依赖
// 返回 cleanup 函数用于释放连接
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	// 日志
	zapLogger, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger failed: %w", err)
	}

	// 数据库
	db, err := mysql.Open(cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open mysql failed: %w", err)
	}
	reportDAO := mysql.NewReportDAO(db)

	// Redis
	pubsub, err := redis.NewPubSub(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		mysql.Close(db)
		return nil, nil, fmt.Errorf("create redis pubsub failed: %w", err)
	}

	// Lmstfy
	lmstfyClient, err := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
	if err != nil {
		pubsub.Close()
		mysql.Close(db)
		return nil, nil, fmt.Errorf("create lmstfy client failed: %w", err)
	}

	// 模块与服务
	analysisModule := mdanalysis.NewAnalysisModule(
		lmstfyClient, pubsub, cfg.Lmstfy.Queue, cfg.Engine.ReportResultChanTmpl)
	analysisService := svanalysis.NewAnalysisService(reportDAO, analysisModule, cfg.Engine)
	analysisHandler := analysis.NewAnalysisHandler(analysisService)

	// 回调消费者（对账）
	callbackService := svcallback.NewCallbackService(reportDAO, zapLogger)
	callbackConsumer := consumer.NewCallbackConsumer(lmstfyClient, callbackService, &consumer.Config{
		QueueName:    cfg.Lmstfy.CallbackQueue,
		Timeout:      3 * time.Second,
		TTR:          30 * time.Second,
		PollInterval: time.Second,
	}, zapLogger)

	// 路由
	engine := routers.SetupRoutes(analysisHandler)

	cleanup := func() {
		pubsub.Close()
		mysql.Close(db)
		zapLogger.Sync()
	}

	return &App{
		Engine:           engine,
		CallbackConsumer: callbackConsumer,
	}, cleanup, nil
}
