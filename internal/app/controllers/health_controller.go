package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/campus/internal/app/models/dto"
)

// PingFunc checks one dependency
type PingFunc func(ctx context.Context) error

const (
	statusOK          = "ok"
	statusUnavailable = "unavailable"
	statusDisabled    = "disabled"
)

// HealthController reports the state of the database and, when configured, redis
type HealthController struct {
	database PingFunc
	redis    PingFunc
	timeout  time.Duration
}

// NewHealthController creates a new HealthController. redis may be nil.
func NewHealthController(database, redis PingFunc) *HealthController {
	return &HealthController{database: database, redis: redis, timeout: 2 * time.Second}
}

// Health godoc
// @Summary Liveness and dependency check
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), c.timeout)
	defer cancel()

	resp := dto.HealthResponse{Status: statusOK, Database: statusOK, Redis: statusDisabled}
	code := http.StatusOK

	if err := c.database(reqCtx); err != nil {
		resp.Status = statusUnavailable
		resp.Database = statusUnavailable
		code = http.StatusServiceUnavailable
	}
	// redis only backs logout revocation, the database stays the deciding check
	if c.redis != nil {
		resp.Redis = statusOK
		if err := c.redis(reqCtx); err != nil {
			resp.Redis = statusUnavailable
			if code == http.StatusOK {
				resp.Status = "degraded"
			}
		}
	}

	ctx.JSON(code, resp)
}
