package routers

import (
	"github.com/gin-gonic/gin"

	"dcb/internal/app/server/handlers/analysis"
	"dcb/internal/app/server/middlewares"
)

// SetupRoutes 配置所有路由，使用 Route Group 分类
func SetupRoutes(analysisHandler *analysis.AnalysisHandler) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.CORS())
	r.Use(middlewares.Logger())
	r.Use(middlewares.ErrorHandler())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "dcb",
			"message": "Service is running",
		})
	})

	v1 := r.Group("/api/v1")
	{
		// 不带仓编号的预览走配置的默认仓
		v1.GET("/query", analysisHandler.PreviewQuery)

		analyses := v1.Group("/analyses")
		{
			analyses.POST("", analysisHandler.Create)
			analyses.GET("/:id", analysisHandler.Get)
		}

		depots := v1.Group("/depots")
		{
			depots.GET("/:depot/analyses", analysisHandler.List)
			depots.GET("/:depot/query", analysisHandler.PreviewQuery)
		}
	}

	return r
}
