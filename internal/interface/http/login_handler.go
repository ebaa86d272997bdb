package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/support-expert/internal/domain/auth"
)

// loginHandler exchanges admin credentials for a bearer token.
func loginHandler(svc auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req auth.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
			return
		}
		resp, err := svc.Login(c.Request.Context(), req)
		if err != nil {
			abortWithError(c, fromAppError(err, "login_failed"))
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
