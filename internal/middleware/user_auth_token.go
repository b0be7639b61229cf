package middleware

import (
	"strings"

	"github.com/haierkeys/fast-asset-delivery/pkg/app"
	"github.com/haierkeys/fast-asset-delivery/pkg/code"

	"github.com/gin-gonic/gin"
)

// BearerCredential returns the caller credential from the Authorization header
// or the auth query parameter. The token query parameter is the link token and
// is never read as a credential.
// BearerCredential 读取用户凭证：Authorization 头或 auth 参数
func BearerCredential(c *gin.Context) string {
	if s := c.GetHeader("Authorization"); s != "" {
		if len(s) > 7 && strings.EqualFold(s[:7], "bearer ") {
			return strings.TrimSpace(s[7:])
		}
		return strings.TrimSpace(s)
	}
	return c.Query("auth")
}

// UserAuthTokenWithConfig 用户 Token 认证中间件
func UserAuthTokenWithConfig(tokens app.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := app.NewResponse(c)

		token := BearerCredential(c)
		if token == "" {
			response.ToAbortResponse(code.ErrorNotUserAuthToken)
			return
		}

		user, err := tokens.Parse(token)
		if err != nil {
			response.ToAbortResponse(code.ErrorInvalidUserAuthToken)
			return
		}
		c.Set("user_token", user)

		c.Next()
	}
}
