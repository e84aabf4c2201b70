package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler carries the endpoints that belong to no entity.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
