package middleware

import (
	"github.com/haierkeys/fast-asset-delivery/pkg/app"

	"github.com/gin-gonic/gin"
)

// AppInfo exposes name, version and the public host to handlers
func AppInfo(name, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("app_name", name)
		c.Set("app_version", version)
		c.Set("access_host", app.GetAccessHost(c))

		c.Next()
	}
}
