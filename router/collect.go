package voice_routers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/voicebankai/config"
	"github.com/voicebankai/internal/collect"
	"github.com/voicebankai/pkg/commons"
	"github.com/voicebankai/pkg/utils"
)

// CollectApiRoutes mounts the collection proxy surface on the engine.
func CollectApiRoutes(cfg *config.AppConfig, engine *gin.Engine, logger commons.Logger, api collect.CollectApi) {
	logger.Info("Collect API routes added to engine.")

	engine.HandleMethodNotAllowed = true
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, utils.Failure("Method not allowed"))
	})
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, utils.Failure("Endpoint not found"))
	})

	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Authorization"},
	}))

	apiv1 := engine.Group("/api")
	{
		apiv1.POST("/proxy", api.Proxy)
		apiv1.POST("/recordings", api.Ingest)
		apiv1.GET("/recordings", api.ListRecordings)
		apiv1.DELETE("/recordings", api.PurgeRecordings)
		apiv1.GET("/stats", api.Stats)
		apiv1.GET("/health", api.Health)
	}
}
