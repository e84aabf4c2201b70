package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/medcore/clinic-api/internal/handler"
	"github.com/medcore/clinic-api/internal/middleware"
	"github.com/medcore/clinic-api/internal/model"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimit rate.Limit
	RateBurst int
}

type Router struct {
	engine *gin.Engine
	auth   *middleware.AuthMiddleware
	h      *handler.Handler
	config Config

	appointmentH  Handler
	patientH      Handler
	medicalH      Handler
	notificationH Handler
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	appointmentH Handler,
	patientH Handler,
	medicalH Handler,
	notificationH Handler,
	h *handler.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	registerSlotValidators()

	return &Router{
		engine:        gin.New(),
		auth:          auth,
		h:             h,
		config:        config,
		appointmentH:  appointmentH,
		patientH:      patientH,
		medicalH:      medicalH,
		notificationH: notificationH,
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) Setup() {
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Logger())
	r.engine.Use(middleware.Recovery())
	if r.config.RateLimit > 0 {
		r.engine.Use(middleware.RateLimit(r.config.RateLimit, r.config.RateBurst))
	}

	r.engine.GET("/health", r.h.Health)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")
	api.Use(r.auth.Authenticate())

	r.appointmentH.RegisterRoutes(api)
	r.patientH.RegisterRoutes(api)
	r.medicalH.RegisterRoutes(api)
	r.notificationH.RegisterRoutes(api)
}

// registerSlotValidators adds the booking-slot formats to gin's binding
// validator so request structs can declare them as tags.
func registerSlotValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterValidation("slotdate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(model.DateLayout, fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("slottime", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(model.TimeLayout, fl.Field().String())
		return err == nil
	})
}
