package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter собирает gin-движок с маршрутами API и /metrics.
func NewRouter(svc SurveyService, defaults JobDefaults, logger *zap.SugaredLogger) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), loggerMiddleware(logger))
	SetupMappings(engine, svc, defaults)
	return engine
}

func SetupMappings(engine *gin.Engine, svc SurveyService, defaults JobDefaults) {
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := engine.Group("/v1")
	{
		v1.POST("/surveys", NewCreateSurveyController(svc, defaults).Handle)
		v1.GET("/surveys", NewListSurveysController(svc).Handle)
		v1.GET("/surveys/:id", NewGetSurveyController(svc).Handle)
		v1.POST("/surveys/:id/cancel", NewCancelSurveyController(svc).Handle)
		v1.GET("/surveys/:id/report", NewSurveyReportController(svc).Handle)
		for _, dir := range artifactDirs {
			v1.GET("/surveys/:id/"+dir+"/:file", NewSurveyArtifactController(svc, dir).Handle)
		}
	}
}

func loggerMiddleware(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		logger.Debugw("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(started),
		)
	}
}
