package http

import (
	"bighome_hub/platform/config"

	"github.com/gin-gonic/gin"
)

// Module is a bounded context (leads, directory, notifications, exports)
// that mounts its own routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext carries the route groups a module may mount on.
// V1 is unauthenticated; Protected requires a verified access token.
type RouterContext struct {
	Engine         *gin.Engine
	V1             *gin.RouterGroup
	Protected      *gin.RouterGroup
	Config         config.JWTConfig
	AuthMiddleware gin.HandlerFunc
}
