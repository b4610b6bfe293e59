package apihandlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	reportTypes "github.com/saladoop/shift-report-backend/pkg/types/report"
)

func (h *HttpEndpoints) AddStagesAPI(rg *gin.RouterGroup) {
	rg.GET("/stages", h.getStages)
}

func (h *HttpEndpoints) getStages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"stages":     reportTypes.AllStageConfigs(),
		"busyLevels": reportTypes.ALL_BUSY_LEVELS,
	})
}
