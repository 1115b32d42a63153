package catalog

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pinewood/booking-api/internal/model"
	catalogService "github.com/pinewood/booking-api/internal/service/catalog"
	"github.com/pinewood/booking-api/pkg/errors"
	"github.com/pinewood/booking-api/pkg/httputil"
)

type Handler struct {
	service *catalogService.Service
}

func NewHandler(service *catalogService.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the public type listing used by the booking form.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/appointment-types", h.ListTypes)
}

// RegisterAdminRoutes mounts catalog management.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	types := r.Group("/appointment-types")
	{
		types.POST("", h.CreateType)
		types.DELETE("/:id", h.DeactivateType)
	}
}

func (h *Handler) ListTypes(c *gin.Context) {
	types, err := h.service.ListTypes(c.Request.Context(), true)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, types)
}

func (h *Handler) CreateType(c *gin.Context) {
	var req model.CreateAppointmentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error(), err))
		return
	}

	t, err := h.service.CreateType(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, t)
}

func (h *Handler) DeactivateType(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid appointment type ID", err))
		return
	}

	if err := h.service.DeactivateType(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, nil)
}
