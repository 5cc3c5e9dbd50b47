package api

import (
	"net/http"
	"time"

	reqdto "openbook/internal/handler/dto/request"
	resdto "openbook/internal/handler/dto/response"
	"openbook/internal/handler/httperr"
	"openbook/internal/pkg/clock"
	"openbook/internal/usecase/commands"
	"openbook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ResourceHandler struct {
	commands commands.ResourceCommands
	queries  queries.ResourceQueries
	clk      clock.Clock
}

func NewResourceHandler(resourceCommands commands.ResourceCommands, resourceQueries queries.ResourceQueries, clk clock.Clock) *ResourceHandler {
	return &ResourceHandler{
		commands: resourceCommands,
		queries:  resourceQueries,
		clk:      clk,
	}
}

// @Summary List resources
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param active_only query bool false "Only active resources"
// @Success 200 {array} resdto.ResourceResponse
// @Router /resources [get]
func (h *ResourceHandler) ListResources(c *gin.Context) {
	activeOnly := c.Query("active_only") == "true"

	views, err := h.queries.List(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]*resdto.ResourceResponse, len(views))
	for i, view := range views {
		response[i] = resdto.FromResourceView(view)
	}
	c.JSON(http.StatusOK, response)
}

// @Summary Get resource
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Success 200 {object} resdto.ResourceResponse
// @Failure 404 {object} httperr.Response
// @Router /resources/{id} [get]
func (h *ResourceHandler) GetResource(c *gin.Context) {
	id, ok := h.resourceID(c)
	if !ok {
		return
	}

	view, err := h.queries.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromResourceView(view))
}

// @Summary Create resource
// @Description Register a bookable resource (admin)
// @Tags resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateResourceRequest true "Resource"
// @Success 201 {object} resdto.CreateResourceResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /resources [post]
func (h *ResourceHandler) CreateResource(c *gin.Context) {
	var req reqdto.CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	id, err := h.commands.CreateResource(c.Request.Context(), commands.CreateResourceInput{
		Name:          req.Name,
		Description:   req.Description,
		TotalMemoryGB: req.TotalMemoryGB,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.CreateResourceResponse{ID: id})
}

// @Summary Update resource
// @Description Patch capacity or availability (admin). Existing bookings are untouched.
// @Tags resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Param request body reqdto.UpdateResourceRequest true "Fields to change"
// @Success 204
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /resources/{id} [patch]
func (h *ResourceHandler) UpdateResource(c *gin.Context) {
	id, ok := h.resourceID(c)
	if !ok {
		return
	}

	var req reqdto.UpdateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	err := h.commands.UpdateResource(c.Request.Context(), id, commands.UpdateResourceInput{
		TotalMemoryGB: req.TotalMemoryGB,
		IsActive:      req.IsActive,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Check availability
// @Description Probe whether a memory demand fits a window. Advisory only.
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Param start query string true "Window start (RFC3339)"
// @Param end query string true "Window end (RFC3339)"
// @Param memory_gb query int true "Requested memory"
// @Success 200 {object} resdto.AvailabilityResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /resources/{id}/availability [get]
func (h *ResourceHandler) CheckAvailability(c *gin.Context) {
	id, ok := h.resourceID(c)
	if !ok {
		return
	}

	start, end, ok := h.window(c)
	if !ok {
		return
	}
	requested := queryInt32(c, "memory_gb", 0)

	view, err := h.queries.CheckAvailability(c.Request.Context(), id, start, end, requested)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAvailabilityView(view))
}

// @Summary Resource utilization stats
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Param start query string false "Period start (RFC3339), defaults to 30 days ago"
// @Param end query string false "Period end (RFC3339), defaults to now"
// @Success 200 {object} resdto.ResourceStatsResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /resources/{id}/stats [get]
func (h *ResourceHandler) GetStats(c *gin.Context) {
	id, ok := h.resourceID(c)
	if !ok {
		return
	}

	now := h.clk.Now()
	start := now.AddDate(0, 0, -30)
	end := now

	if t, found, err := queryTime(c, "start"); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid start time format", nil)
		return
	} else if found {
		start = t
	}
	if t, found, err := queryTime(c, "end"); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid end time format", nil)
		return
	} else if found {
		end = t
	}

	view, err := h.queries.GetStats(c.Request.Context(), id, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromResourceStatsView(view))
}

func (h *ResourceHandler) resourceID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid resource ID format", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *ResourceHandler) window(c *gin.Context) (time.Time, time.Time, bool) {
	start, foundStart, err := queryTime(c, "start")
	if err != nil || !foundStart {
		httperr.AbortWithError(c, http.StatusBadRequest, errOrMissing(err), "Invalid or missing start time", nil)
		return time.Time{}, time.Time{}, false
	}
	end, foundEnd, err := queryTime(c, "end")
	if err != nil || !foundEnd {
		httperr.AbortWithError(c, http.StatusBadRequest, errOrMissing(err), "Invalid or missing end time", nil)
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
