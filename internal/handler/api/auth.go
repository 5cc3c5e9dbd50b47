package api

import (
	"errors"
	"net/http"
	"time"

	reqdto "openbook/internal/handler/dto/request"
	resdto "openbook/internal/handler/dto/response"
	"openbook/internal/handler/httperr"
	"openbook/internal/handler/middleware"
	"openbook/internal/pkg/config"
	"openbook/internal/pkg/cookie"
	"openbook/internal/usecase/commands"
	"openbook/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	commands commands.AuthCommands
	users    queries.UserQueries
	cfg      config.Config
}

func NewAuthHandler(authCommands commands.AuthCommands, userQueries queries.UserQueries, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		commands: authCommands,
		users:    userQueries,
		cfg:      cfg,
	}
}

// @Summary User login
// @Description Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body reqdto.LoginRequest true "Login request"
// @Success 200 {object} resdto.LoginResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req reqdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	token, identity, err := h.commands.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	expiry := 24 * time.Hour
	if d, parseErr := time.ParseDuration(h.cfg.JWT.Duration); parseErr == nil {
		expiry = d
	}
	cookie.SetTokenCookie(c, h.cfg.Cookie, token, expiry)

	c.JSON(http.StatusOK, resdto.LoginResponse{
		AccessToken: token,
		UserID:      identity.UserID,
		Group:       identity.Group.String(),
	})
}

// @Summary User logout
// @Tags auth
// @Security BearerAuth
// @Success 204 "No Content"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	cookie.ClearTokenCookie(c, h.cfg.Cookie)
	c.Status(http.StatusNoContent)
}

// @Summary Get current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} resdto.UserResponse
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errors.New("missing identity"), "Internal server error", nil)
		return
	}

	view, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromUserView(view))
}
