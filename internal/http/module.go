// Package http holds the pieces shared between the router and the domain
// modules that mount routes on it.
package http

import (
	"github.com/gin-gonic/gin"
)

// Module mounts one domain's routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext is what the router hands to each Module.
type RouterContext struct {
	Engine *gin.Engine
	// V1 is the /api/v1 group.
	V1 *gin.RouterGroup
	// SaveRateLimit is the shared per-IP limiter for write endpoints.
	SaveRateLimit gin.HandlerFunc
}
