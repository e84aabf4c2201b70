package medical

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medcore/clinic-api/internal/middleware"
	"github.com/medcore/clinic-api/internal/model"
	"github.com/medcore/clinic-api/internal/service/medical"
	"github.com/medcore/clinic-api/pkg/httputil"
)

type Handler struct {
	service *medical.Service
}

func NewHandler(service *medical.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/medical-records", h.ListMedicalRecords)
	rg.POST("/medical-records", h.CreateMedicalRecord)
	rg.GET("/lab-tests", h.ListLabTests)
	rg.GET("/prescriptions", h.ListPrescriptions)
	rg.POST("/prescriptions", h.CreatePrescription)
	rg.GET("/payments", h.ListPayments)
}

// appointmentFilter narrows a clinical listing to one appointment when the
// caller asks for it.
func appointmentFilter(c *gin.Context) (model.Filter, bool) {
	filter := model.Filter{}
	if raw := c.Query("appointment_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, false
		}
		filter["appointment_id"] = id
	}
	return filter, true
}

func (h *Handler) ListMedicalRecords(c *gin.Context) {
	filter, ok := appointmentFilter(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid appointment ID"})
		return
	}

	records, err := h.service.ListMedicalRecords(c.Request.Context(), middleware.AccessFrom(c), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, records)
}

func (h *Handler) CreateMedicalRecord(c *gin.Context) {
	var req model.CreateMedicalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	record, err := h.service.CreateMedicalRecord(c.Request.Context(), middleware.AccessFrom(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, record)
}

func (h *Handler) ListLabTests(c *gin.Context) {
	filter, ok := appointmentFilter(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid appointment ID"})
		return
	}

	tests, err := h.service.ListLabTests(c.Request.Context(), middleware.AccessFrom(c), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, tests)
}

func (h *Handler) ListPrescriptions(c *gin.Context) {
	filter, ok := appointmentFilter(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid appointment ID"})
		return
	}

	prescriptions, err := h.service.ListPrescriptions(c.Request.Context(), middleware.AccessFrom(c), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, prescriptions)
}

func (h *Handler) CreatePrescription(c *gin.Context) {
	var req model.CreatePrescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	prescription, err := h.service.CreatePrescription(c.Request.Context(), middleware.AccessFrom(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, prescription)
}

func (h *Handler) ListPayments(c *gin.Context) {
	filter, ok := appointmentFilter(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid appointment ID"})
		return
	}

	payments, err := h.service.ListPayments(c.Request.Context(), middleware.AccessFrom(c), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, payments)
}
