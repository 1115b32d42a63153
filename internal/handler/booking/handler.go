package booking

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pinewood/booking-api/internal/model"
	bookingService "github.com/pinewood/booking-api/internal/service/booking"
	"github.com/pinewood/booking-api/pkg/errors"
	"github.com/pinewood/booking-api/pkg/httputil"
)

type Handler struct {
	service *bookingService.Service
}

func NewHandler(service *bookingService.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the patient-facing booking surface. Everything
// here is reachable without authentication; the booking token is the only
// credential for per-appointment access.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("/:id/availability", h.GetOpenIntervals)
		doctors.GET("/:id/slots", h.GetAvailableSlots)
	}

	bookings := r.Group("/bookings")
	{
		bookings.POST("", h.BookAppointment)
		bookings.GET("/:token", h.GetBooking)
		bookings.POST("/:token/confirm", h.ConfirmBooking)
		bookings.DELETE("/:token", h.CancelBooking)
	}
}

// RegisterAdminRoutes mounts the practice-side appointment management.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("", h.ListAppointments)
		appointments.PUT("/:id/reschedule", h.RescheduleAppointment)
		appointments.DELETE("/:id", h.CancelAppointment)
	}
}

func parseDate(c *gin.Context) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid date format, expected YYYY-MM-DD", err))
		return time.Time{}, false
	}
	return date, true
}

func (h *Handler) GetOpenIntervals(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid doctor ID", err))
		return
	}
	date, ok := parseDate(c)
	if !ok {
		return
	}

	intervals, err := h.service.GetOpenIntervals(c.Request.Context(), doctorID, date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, intervals)
}

func (h *Handler) GetAvailableSlots(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid doctor ID", err))
		return
	}
	typeID, err := uuid.Parse(c.Query("appointment_type_id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid appointment type ID", err))
		return
	}
	date, ok := parseDate(c)
	if !ok {
		return
	}

	slots, err := h.service.GetAvailableSlots(c.Request.Context(), doctorID, typeID, date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, slots)
}

func (h *Handler) BookAppointment(c *gin.Context) {
	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error(), err))
		return
	}

	appt, err := h.service.BookAppointment(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, appt)
}

func (h *Handler) GetBooking(c *gin.Context) {
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid booking token", err))
		return
	}

	appt, err := h.service.GetAppointmentByToken(c.Request.Context(), token)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appt)
}

func (h *Handler) ConfirmBooking(c *gin.Context) {
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid booking token", err))
		return
	}

	appt, err := h.service.ConfirmAppointment(c.Request.Context(), token)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appt)
}

func (h *Handler) CancelBooking(c *gin.Context) {
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid booking token", err))
		return
	}

	var req model.CancelAppointmentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.RespondWithError(c, errors.BadRequest(err.Error(), err))
			return
		}
	}

	appt, err := h.service.CancelAppointmentByToken(c.Request.Context(), token, req.Reason)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appt)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	filters := &model.AppointmentFilters{}

	if id := c.Query("doctor_id"); id != "" {
		doctorID, err := uuid.Parse(id)
		if err != nil {
			httputil.RespondWithError(c, errors.BadRequest("invalid doctor ID", err))
			return
		}
		filters.DoctorID = doctorID
	}
	if status := c.Query("status"); status != "" {
		filters.Status = model.AppointmentStatus(status)
	}
	if date := c.Query("start_date"); date != "" {
		start, err := time.Parse("2006-01-02", date)
		if err != nil {
			httputil.RespondWithError(c, errors.BadRequest("invalid start date", err))
			return
		}
		filters.StartDate = start
	}
	if date := c.Query("end_date"); date != "" {
		end, err := time.Parse("2006-01-02", date)
		if err != nil {
			httputil.RespondWithError(c, errors.BadRequest("invalid end date", err))
			return
		}
		filters.EndDate = end
	}

	appointments, err := h.service.ListAppointments(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) RescheduleAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid appointment ID", err))
		return
	}

	var req model.RescheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.BadRequest(err.Error(), err))
		return
	}

	appt, err := h.service.RescheduleAppointment(c.Request.Context(), id, req.StartTime)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appt)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, errors.BadRequest("invalid appointment ID", err))
		return
	}

	var req model.CancelAppointmentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.RespondWithError(c, errors.BadRequest(err.Error(), err))
			return
		}
	}

	appt, err := h.service.CancelAppointment(c.Request.Context(), id, model.CancelActorDoctor, req.Reason)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appt)
}
