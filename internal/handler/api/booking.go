package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	reqdto "openbook/internal/handler/dto/request"
	resdto "openbook/internal/handler/dto/response"
	"openbook/internal/handler/httperr"
	"openbook/internal/handler/middleware"
	"openbook/internal/pkg/clock"
	"openbook/internal/usecase/commands"
	"openbook/internal/usecase/queries"
	"openbook/internal/usecase/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	commands commands.BookingCommands
	sweeper  commands.StatusSweeper
	queries  queries.BookingQueries
	audit    queries.AuditQueries
	calendar queries.CalendarQueries
	clk      clock.Clock
}

func NewBookingHandler(
	bookingCommands commands.BookingCommands,
	sweeper commands.StatusSweeper,
	bookingQueries queries.BookingQueries,
	auditQueries queries.AuditQueries,
	calendarQueries queries.CalendarQueries,
	clk clock.Clock,
) *BookingHandler {
	return &BookingHandler{
		commands: bookingCommands,
		sweeper:  sweeper,
		queries:  bookingQueries,
		audit:    auditQueries,
		calendar: calendarQueries,
		clk:      clk,
	}
}

// @Summary Create booking
// @Description Book memory on a resource for a time window
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateBookingRequest true "Booking request"
// @Success 201 {object} resdto.CreateBookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	actor, ok := middleware.GetIdentity(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errors.New("missing identity"), "Internal server error", nil)
		return
	}

	var req reqdto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	id, err := h.commands.CreateBooking(c.Request.Context(), actor, commands.CreateBookingInput{
		ResourceID: req.ResourceID,
		TaskName:   req.TaskName,
		MemoryGB:   req.MemoryGB,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resdto.CreateBookingResponse{ID: id})
}

// @Summary List own bookings
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} resdto.BookingResponse
// @Failure 401 {object} httperr.Response
// @Router /bookings [get]
func (h *BookingHandler) ListBookings(c *gin.Context) {
	actor, ok := middleware.GetIdentity(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errors.New("missing identity"), "Internal server error", nil)
		return
	}

	limit := queryInt32(c, "limit", 0)
	offset := queryInt32(c, "offset", 0)

	views, err := h.queries.ListOwn(c.Request.Context(), actor, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]*resdto.BookingResponse, len(views))
	for i, view := range views {
		response[i] = resdto.FromBookingView(view)
	}
	c.JSON(http.StatusOK, response)
}

// @Summary Get booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	view, err := h.queries.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary Update booking
// @Description Change task name and/or end time of an upcoming booking
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.UpdateBookingRequest true "Fields to change"
// @Success 204
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /bookings/{id} [patch]
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req reqdto.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	err := h.commands.UpdateBooking(c.Request.Context(), actor, id, commands.UpdateBookingInput{
		TaskName: req.TaskName,
		EndTime:  req.EndTime,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Extend booking
// @Description Push the end time of an active booking by whole hours
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.ExtendBookingRequest true "Extension"
// @Success 204
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /bookings/{id}/extend [post]
func (h *BookingHandler) ExtendBooking(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req reqdto.ExtendBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	if err := h.commands.ExtendBooking(c.Request.Context(), actor, id, req.Hours); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Release booking
// @Description End an active booking immediately, freeing its capacity
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 204
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /bookings/{id}/release [post]
func (h *BookingHandler) ReleaseBooking(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	if err := h.commands.ReleaseBooking(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Cancel booking
// @Description Soft-delete an upcoming booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 204
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /bookings/{id} [delete]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	if err := h.commands.CancelBooking(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Booking audit trail
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {array} resdto.AuditEventResponse
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id}/logs [get]
func (h *BookingHandler) GetBookingLogs(c *gin.Context) {
	actor, id, ok := h.actorAndID(c)
	if !ok {
		return
	}

	views, err := h.audit.ListByBooking(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]*resdto.AuditEventResponse, len(views))
	for i, view := range views {
		response[i] = resdto.FromAuditEventView(view)
	}
	c.JSON(http.StatusOK, response)
}

// @Summary Booking calendar
// @Description Hourly slot view over a window, optionally per resource
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param start query string false "Window start (RFC3339), defaults to Monday of current week"
// @Param end query string false "Window end (RFC3339)"
// @Param resource_id query string false "Resource filter"
// @Success 200 {object} resdto.CalendarResponse
// @Failure 400 {object} httperr.Response
// @Router /bookings/calendar [get]
func (h *BookingHandler) GetCalendar(c *gin.Context) {
	var resourceID *uuid.UUID
	if raw := c.Query("resource_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid resource ID format", nil)
			return
		}
		resourceID = &id
	}

	start, okStart, err := queryTime(c, "start")
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid start time format", nil)
		return
	}
	end, okEnd, err := queryTime(c, "end")
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid end time format", nil)
		return
	}

	var view *queries.CalendarView
	if okStart && okEnd {
		view, err = h.calendar.GetCalendar(c.Request.Context(), resourceID, start, end)
	} else {
		var weekStart *time.Time
		if okStart {
			weekStart = &start
		}
		view, err = h.calendar.GetWeekCalendar(c.Request.Context(), resourceID, weekStart)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCalendarView(view))
}

// @Summary Booking status summary
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.StatusSummaryResponse
// @Router /bookings/status-summary [get]
func (h *BookingHandler) GetStatusSummary(c *gin.Context) {
	view, err := h.queries.StatusSummary(c.Request.Context(), h.clk.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromStatusSummaryView(view))
}

// @Summary Run status sweep
// @Description Apply due lifecycle transitions now (admin)
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.SweepResponse
// @Failure 403 {object} httperr.Response
// @Router /bookings/sweep [post]
func (h *BookingHandler) RunSweep(c *gin.Context) {
	result, err := h.sweeper.Sweep(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.SweepResponse{
		Activated: result.Activated,
		Completed: result.Completed,
		Failed:    result.Failed,
	})
}

func (h *BookingHandler) actorAndID(c *gin.Context) (actor shared.Identity, id uuid.UUID, ok bool) {
	actor, found := middleware.GetIdentity(c)
	if !found {
		httperr.AbortWithError(c, http.StatusInternalServerError, errors.New("missing identity"), "Internal server error", nil)
		return actor, uuid.Nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid booking ID format", nil)
		return actor, uuid.Nil, false
	}
	return actor, id, true
}

func queryInt32(c *gin.Context, key string, fallback int32) int32 {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return fallback
	}
	return int32(v)
}

func queryTime(c *gin.Context, key string) (time.Time, bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
