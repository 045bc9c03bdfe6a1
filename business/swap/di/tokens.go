// Package di contains dependency injection tokens for the swap context.
package di

import (
	"github.com/fd1az/balancer-connector/business/swap/app"
	"github.com/fd1az/balancer-connector/internal/di"
)

// Private service tokens - internal to the swap module
var (
	PathRouter = di.NewToken[app.PathRouter]("swap.PathRouter")
)

// Public service tokens - exposed to other modules
var (
	Registry = di.NewToken[*app.Registry]("swap.Registry")
)

// GetPathRouter resolves the shared routing API client.
func GetPathRouter(c di.ServiceRegistry) app.PathRouter {
	return di.GetToken(c, PathRouter)
}

// GetRegistry resolves the connector registry.
func GetRegistry(c di.ServiceRegistry) *app.Registry {
	return di.GetToken(c, Registry)
}
