package api

import (
	"errors"
	"net/http"

	resdto "openbook/internal/handler/dto/response"
	"openbook/internal/handler/httperr"
	"openbook/internal/handler/middleware"
	"openbook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	queries queries.UserQueries
}

func NewUserHandler(userQueries queries.UserQueries) *UserHandler {
	return &UserHandler{queries: userQueries}
}

// @Summary Current booking limits
// @Description Effective group policy for the caller, -1 means unlimited
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.LimitsResponse
// @Failure 401 {object} httperr.Response
// @Router /users/me/limits [get]
func (h *UserHandler) GetLimits(c *gin.Context) {
	actor, ok := middleware.GetIdentity(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errors.New("missing identity"), "Internal server error", nil)
		return
	}

	view, err := h.queries.GetLimits(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromLimitsView(view))
}
