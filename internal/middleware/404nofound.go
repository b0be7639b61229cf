package middleware

import (
	"github.com/haierkeys/fast-asset-delivery/pkg/app"
	"github.com/haierkeys/fast-asset-delivery/pkg/code"

	"github.com/gin-gonic/gin"
)

// NoFound 404 handler
// NoFound 404 处理
func NoFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		app.NewResponse(c).ToAbortResponse(code.ErrorNotFoundAPI)
	}
}
