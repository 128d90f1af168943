package handler

import (
	"net/http"

	"github.com/anajbsouza/projeto13-batepapo-uol-api/internal/config"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	driver string
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{driver: cfg.Storage.Driver}
}

func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "batepapo-uol-api",
		"storage": h.driver,
	})
}
