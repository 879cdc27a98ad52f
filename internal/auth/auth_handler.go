package auth

import (
	"net/http"
	"os"

	"github.com/jackson951/flexileave-app-sub001/internal/middleware"
	"github.com/jackson951/flexileave-app-sub001/internal/shared/apperror"
	"github.com/jackson951/flexileave-app-sub001/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(s Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("auth.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.handler")
	}
	return &Handler{service: s, logger: l}
}

func (ctrl *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (ctrl *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.writeServiceError(c, err)
		return
	}

	token, userResp, err := ctrl.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		ctrl.writeServiceError(c, err)
		return
	}

	maxAge := int(ctrl.service.TokenTTL().Seconds())
	setAccessCookie(c, token, maxAge)

	response.Success(c, http.StatusOK, LoginResponse{
		User:        userResp,
		AccessToken: token,
		ExpiresIn:   maxAge,
	}, nil)
}

func (ctrl *Handler) Me(c *gin.Context) {
	userResp, err := ctrl.service.GetMe(c.Request.Context(), middleware.Actor(c).UserID)
	if err != nil {
		ctrl.logger.Warn("me lookup failed", zap.Error(err))
		ctrl.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, userResp, nil)
}

func (ctrl *Handler) Logout(c *gin.Context) {
	setAccessCookie(c, "", -1)
	response.Success(c, http.StatusOK, gin.H{"message": "Logout success."}, nil)
}

// setAccessCookie uses the same attributes for login and logout so browsers
// treat them as the same cookie.
func setAccessCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   os.Getenv("APP_ENV") == "production",
		SameSite: http.SameSiteLaxMode,
	})
}
