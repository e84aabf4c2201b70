package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medcore/clinic-api/internal/middleware"
	"github.com/medcore/clinic-api/internal/model"
	"github.com/medcore/clinic-api/internal/service/patient"
	"github.com/medcore/clinic-api/pkg/httputil"
)

type Handler struct {
	service *patient.Service
}

func NewHandler(service *patient.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	patients := rg.Group("/patients")
	{
		patients.GET("", h.Roster)
		patients.GET("/me", h.Profile)
		patients.GET("/:id", h.Get)
	}
}

func (h *Handler) Roster(c *gin.Context) {
	var filters model.PatientFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	patients, err := h.service.Roster(c.Request.Context(), middleware.AccessFrom(c), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, patients)
}

func (h *Handler) Profile(c *gin.Context) {
	accessCtx := middleware.AccessFrom(c)
	if accessCtx == nil || !accessCtx.IsPatient() {
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": "not available"})
		return
	}

	p, err := h.service.Profile(c.Request.Context(), accessCtx)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid patient ID"})
		return
	}

	p, err := h.service.Get(c.Request.Context(), middleware.AccessFrom(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}
