package availability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pinewood/booking-api/internal/model"
	availabilityService "github.com/pinewood/booking-api/internal/service/availability"
	"github.com/pinewood/booking-api/pkg/errors"
	"github.com/pinewood/booking-api/pkg/httputil"
)

type Handler struct {
	service *availabilityService.Service
}

func NewHandler(service *availabilityService.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the admin availability management surface.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	rules := r.Group("/availability-rules")
	{
		rules.POST("", h.CreateRule)
		rules.GET("", h.ListRules)
		rules.PUT("/:id", h.UpdateRule)
		rules.DELETE("/:id", h.DeleteRule)
	}

	r.GET("/doctors/:id/grid", h.DayGrid)
}

func (h *Handler) CreateRule(c *gin.Context) {
	var req model.CreateAvailabilityRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error(), err))
		return
	}

	rule, err := h.service.CreateRule(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, rule)
}

func (h *Handler) ListRules(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Query("doctor_id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid doctor ID", err))
		return
	}

	rules, err := h.service.ListRules(c.Request.Context(), doctorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, rules)
}

func (h *Handler) UpdateRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid rule ID", err))
		return
	}

	var req model.UpdateAvailabilityRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error(), err))
		return
	}

	rule, err := h.service.UpdateRule(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, rule)
}

func (h *Handler) DeleteRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid rule ID", err))
		return
	}

	if err := h.service.DeleteRule(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, nil)
}

func (h *Handler) DayGrid(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid doctor ID", err))
		return
	}
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid date format, expected YYYY-MM-DD", err))
		return
	}

	slotMinutes := 30
	if v := c.Query("slot_minutes"); v != "" {
		slotMinutes, err = strconv.Atoi(v)
		if err != nil || slotMinutes <= 0 {
			httputil.RespondWithError(c, errors.BadRequest("invalid slot_minutes", err))
			return
		}
	}

	grid, err := h.service.DayGrid(c.Request.Context(), doctorID, date, slotMinutes)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, grid)
}
